package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/humanoid"
	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

// newPlanCmd groups the offline planners. They print what the orchestrator
// would do for a seed without touching a browser.
func newPlanCmd() *cobra.Command {
	var seed string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print behavior plans without a browser",
	}
	cmd.PersistentFlags().StringVarP(&seed, "seed", "s", "", "identity seed (a random UUID when empty)")

	// planner resolves the seed and builds the planner for that identity.
	planner := func(cmd *cobra.Command) (*humanoid.Planner, string, error) {
		svc, err := getService(cmd)
		if err != nil {
			return nil, "", err
		}
		cfg, err := getConfig(cmd)
		if err != nil {
			return nil, "", err
		}
		if seed == "" {
			seed = uuid.NewString()
		}
		return humanoid.NewPlanner(svc.DeriveBiometricProfile(seed), cfg.Humanoid()), seed, nil
	}

	cmd.AddCommand(newPlanMoveCmd(planner), newPlanTypeCmd(planner), newPlanScrollCmd(planner))
	return cmd
}

type plannerFunc func(cmd *cobra.Command) (*humanoid.Planner, string, error)

func newPlanMoveCmd(planner plannerFunc) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Plan a pointer path between two points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parsePoint(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := parsePoint(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			p, seed, err := planner(cmd)
			if err != nil {
				return err
			}
			path := p.MotionPath(seedrand.Derive(seed, "plan", "move"), start, end)
			return writeJSON(cmd.OutOrStdout(), path)
		},
	}
	cmd.Flags().StringVar(&from, "from", "0,0", "start point as x,y")
	cmd.Flags().StringVar(&to, "to", "500,300", "end point as x,y")
	return cmd
}

func newPlanTypeCmd(planner plannerFunc) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "type",
		Short: "Plan the keystrokes for a piece of text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, seed, err := planner(cmd)
			if err != nil {
				return err
			}
			plan := p.TypingPlan(seedrand.Derive(seed, "plan", "type"), text)
			return writeJSON(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "text to type")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newPlanScrollCmd(planner plannerFunc) *cobra.Command {
	var (
		distance   float64
		readPage   bool
		pageHeight float64
		viewport   float64
		words      int
	)

	cmd := &cobra.Command{
		Use:   "scroll",
		Short: "Plan a scroll gesture or a full-page read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, seed, err := planner(cmd)
			if err != nil {
				return err
			}
			plan := p.ScrollPlan(seedrand.Derive(seed, "plan", "scroll"), humanoid.ScrollRequest{
				Distance:      distance,
				ReadWholePage: readPage,
				Metrics: schemas.PageMetrics{
					ViewportWidth:         1280,
					ViewportHeight:        viewport,
					PageHeight:            pageHeight,
					EstimatedWordsVisible: words,
				},
			})
			return writeJSON(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().Float64VarP(&distance, "distance", "d", 1000, "signed distance in pixels, positive scrolls down")
	cmd.Flags().BoolVar(&readPage, "read", false, "read the whole page instead of scrolling a fixed distance")
	cmd.Flags().Float64Var(&pageHeight, "page-height", 5000, "document height in pixels")
	cmd.Flags().Float64Var(&viewport, "viewport-height", 800, "viewport height in pixels")
	cmd.Flags().IntVar(&words, "words", 200, "estimated words visible per screen")
	return cmd
}

// parsePoint parses "x,y".
func parsePoint(s string) (humanoid.Vector2D, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return humanoid.Vector2D{}, fmt.Errorf("expected x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return humanoid.Vector2D{}, fmt.Errorf("invalid x in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return humanoid.Vector2D{}, fmt.Errorf("invalid y in %q: %w", s, err)
	}
	return humanoid.Vector2D{X: x, Y: y}, nil
}
