package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/browser/stealth"
)

// identityFlags are shared by every command that derives an identity.
type identityFlags struct {
	seed     string
	country  string
	platform string
}

func (f *identityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.seed, "seed", "s", "", "identity seed (a random UUID when empty)")
	cmd.Flags().StringVar(&f.country, "country", "", "ISO 3166-1 alpha-2 country code (default from generator.default_country)")
	cmd.Flags().StringVar(&f.platform, "platform", "", "force the platform: windows, mac or linux")
}

// resolveSeed returns the seed flag, or a fresh UUID when it is empty.
func (f *identityFlags) resolveSeed() string {
	if f.seed == "" {
		return uuid.NewString()
	}
	return f.seed
}

func newFingerprintCmd() *cobra.Command {
	var (
		flags     identityFlags
		withPatch bool
	)

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Generate the consistent device fingerprint for a seed",
		Long: `Generates a fingerprint whose every attribute agrees with the others and with
the chosen country. The same seed always yields the same fingerprint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getService(cmd)
			if err != nil {
				return err
			}

			seed := flags.resolveSeed()
			fp, err := svc.GenerateFingerprint(seed, flags.country, schemas.Platform(flags.platform))
			if err != nil {
				return err
			}
			if !withPatch {
				return writeJSON(cmd.OutOrStdout(), fp)
			}

			patch, err := stealth.BuildPatchSet(fp)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Fingerprint schemas.Fingerprint      `json:"fingerprint"`
				Overrides   schemas.OverridePatchSet `json:"overrides"`
			}{fp, patch})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&withPatch, "overrides", false, "also print the browser override set derived from the fingerprint")
	return cmd
}

func newBiometricsCmd() *cobra.Command {
	var seed string

	cmd := &cobra.Command{
		Use:   "biometrics",
		Short: "Derive the behavioral profile for a seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getService(cmd)
			if err != nil {
				return err
			}
			if seed == "" {
				seed = uuid.NewString()
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				Seed string `json:"seed"`
				schemas.BiometricProfile
			}{seed, svc.DeriveBiometricProfile(seed)})
		},
	}
	cmd.Flags().StringVarP(&seed, "seed", "s", "", "identity seed (a random UUID when empty)")
	return cmd
}
