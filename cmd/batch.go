package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/mimicry/api/schemas"
)

func newBatchCmd() *cobra.Command {
	var (
		count     int
		seedsFile string
		country   string
		platform  string
		lines     bool
	)

	cmd := &cobra.Command{
		Use:   "batch [seeds...]",
		Short: "Generate identities for many seeds concurrently",
		Long: `Generates one identity (fingerprint and behavioral profile) per seed. Seeds come
from the arguments, from --seeds-file (one per line), or are random when only
--count is given. Output order follows input order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getService(cmd)
			if err != nil {
				return err
			}

			seeds, err := collectSeeds(args, seedsFile, count)
			if err != nil {
				return err
			}

			ids, err := svc.GenerateBatch(cmd.Context(), seeds, country, schemas.Platform(platform))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !lines {
				return writeJSON(out, ids)
			}
			enc := json.NewEncoder(out)
			for _, id := range ids {
				if err := enc.Encode(id); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of random seeds to generate")
	cmd.Flags().StringVarP(&seedsFile, "seeds-file", "f", "", "file with one seed per line")
	cmd.Flags().StringVar(&country, "country", "", "ISO 3166-1 alpha-2 country code (default from generator.default_country)")
	cmd.Flags().StringVar(&platform, "platform", "", "force the platform: windows, mac or linux")
	cmd.Flags().BoolVar(&lines, "jsonl", false, "write one JSON object per line")
	return cmd
}

// collectSeeds merges explicit seeds, seeds read from a file and count
// random seeds, in that order.
func collectSeeds(args []string, seedsFile string, count int) ([]string, error) {
	if count < 0 {
		return nil, fmt.Errorf("--count must not be negative, got %d", count)
	}
	seeds := append([]string{}, args...)

	if seedsFile != "" {
		f, err := os.Open(seedsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open seeds file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
				seeds = append(seeds, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read seeds file: %w", err)
		}
	}

	for i := 0; i < count; i++ {
		seeds = append(seeds, uuid.NewString())
	}
	if len(seeds) == 0 {
		return nil, errors.New("no seeds: pass seeds as arguments, --seeds-file or --count")
	}
	return seeds, nil
}
