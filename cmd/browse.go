package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/observability"
	"github.com/xkilldash9x/mimicry/internal/orchestrator"
	"github.com/xkilldash9x/mimicry/internal/service"
)

// newComponentFactory is swapped in tests to avoid launching Chrome.
var newComponentFactory = service.NewComponentFactory

type browseOptions struct {
	identity identityFlags
	headed   bool
	fills    []string
	clicks   []string
	scroll   string
	read     bool
	explore  bool
}

func newBrowseCmd() *cobra.Command {
	var opts browseOptions

	cmd := &cobra.Command{
		Use:   "browse <url>",
		Short: "Open a page in Chrome under a generated identity and interact with it",
		Long: `Launches Chrome, applies the fingerprint for the seed before the first
navigation, loads the URL and then performs the requested interactions with
human-like timing, in this order: --fill, --click, --scroll, --read, --explore.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, args[0], opts)
		},
	}
	opts.identity.register(cmd)
	cmd.Flags().BoolVar(&opts.headed, "headed", false, "show the browser window (overrides browser.headless)")
	cmd.Flags().StringArrayVar(&opts.fills, "fill", nil, "fill a field, as selector=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.clicks, "click", nil, "click the element matching a selector (repeatable)")
	cmd.Flags().StringVar(&opts.scroll, "scroll", "", "scroll by a distance, as down:800 or up:300")
	cmd.Flags().BoolVar(&opts.read, "read", false, "read the whole page top to bottom")
	cmd.Flags().BoolVar(&opts.explore, "explore", false, "idle on the page with a few random actions")
	return cmd
}

func runBrowse(cmd *cobra.Command, url string, opts browseOptions) error {
	ctx := cmd.Context()
	logger := observability.GetLogger()

	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := getService(cmd)
	if err != nil {
		return err
	}
	if opts.headed {
		cfg.SetBrowserHeadless(false)
	}

	fields, err := parseFills(opts.fills)
	if err != nil {
		return err
	}
	var (
		direction orchestrator.Direction
		distance  float64
	)
	if opts.scroll != "" {
		if direction, distance, err = parseScroll(opts.scroll); err != nil {
			return err
		}
	}

	id, err := svc.GenerateIdentity(opts.identity.resolveSeed(), opts.identity.country, schemas.Platform(opts.identity.platform))
	if err != nil {
		return err
	}
	logger.Info("Identity generated",
		zap.String("seed", id.Seed),
		zap.String("country", id.Fingerprint.Country),
		zap.String("platform", id.Fingerprint.Platform.String()))

	components, err := newComponentFactory().Create(ctx, svc, cfg, id, logger)
	if err != nil {
		return err
	}
	defer components.Shutdown()
	orch := components.Orchestrator

	if err := orch.Navigate(ctx, url); err != nil {
		return err
	}
	if len(fields) > 0 {
		if err := orch.FillForm(ctx, fields); err != nil {
			return err
		}
	}
	for _, sel := range opts.clicks {
		if err := orch.Click(ctx, sel); err != nil {
			return err
		}
	}
	if opts.scroll != "" {
		if err := orch.Scroll(ctx, direction, distance); err != nil {
			return err
		}
	}
	if opts.read {
		if err := orch.ReadPage(ctx); err != nil {
			return err
		}
	}
	if opts.explore {
		if err := orch.ExplorePage(ctx); err != nil {
			return err
		}
	}

	logger.Info("Browse finished", zap.String("url", url), zap.String("seed", id.Seed))
	return writeJSON(cmd.OutOrStdout(), struct {
		Seed string `json:"seed"`
		URL  string `json:"url"`
	}{id.Seed, url})
}

// parseFills turns selector=value pairs into a field map. The pair splits at
// the first '=' outside brackets, so attribute selectors such as
// input[name=email] keep their own '='.
func parseFills(pairs []string) (map[string]string, error) {
	fields := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		sel, value, ok := cutSelector(pair)
		if !ok || strings.TrimSpace(sel) == "" {
			return nil, fmt.Errorf("--fill expects selector=value, got %q", pair)
		}
		fields[strings.TrimSpace(sel)] = value
	}
	return fields, nil
}

// cutSelector splits s around the first '=' that is not inside [...] or a
// quoted attribute value.
func cutSelector(s string) (selector, value string, found bool) {
	depth := 0
	var quote rune
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case depth > 0 && (r == '"' || r == '\''):
			quote = r
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case r == '=' && depth == 0:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// parseScroll parses "down:800" style scroll requests.
func parseScroll(s string) (orchestrator.Direction, float64, error) {
	dirText, distText, ok := strings.Cut(s, ":")
	if !ok {
		return "", 0, fmt.Errorf("--scroll expects direction:distance, got %q", s)
	}
	dir, err := orchestrator.ParseDirection(dirText)
	if err != nil {
		return "", 0, err
	}
	var dist float64
	if _, err := fmt.Sscanf(distText, "%g", &dist); err != nil || dist <= 0 {
		return "", 0, fmt.Errorf("--scroll distance must be a positive number, got %q", distText)
	}
	return dir, dist, nil
}
