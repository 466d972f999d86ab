// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimicry/internal/config"
	"github.com/xkilldash9x/mimicry/internal/observability"
	"github.com/xkilldash9x/mimicry/internal/service"
)

type contextKey string

const (
	configKey  contextKey = "config"
	serviceKey contextKey = "service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewRootCommand builds a fresh command tree. Each call returns independent
// flag state, so tests and repeated invocations do not leak into each other.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "mimicry",
		Short:         "Mimicry generates consistent browser identities and drives them like a person would.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "mimicry"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger())
			logger := observability.GetLogger()
			logger.Debug("Starting mimicry", zap.String("version", Version))

			svc, err := service.New(cfg, logger)
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configKey, cfg)
			ctx = context.WithValue(ctx, serviceKey, svc)
			cmd.SetContext(ctx)
			return nil
		},
	}
	root.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml or ~/.mimicry/config.yaml)")

	root.AddCommand(
		newFingerprintCmd(),
		newBatchCmd(),
		newBiometricsCmd(),
		newPlanCmd(),
		newBrowseCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI under ctx, which main cancels on SIGINT or SIGTERM.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		// Cancellation is the user asking to stop, not a failure.
		if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
			observability.GetLogger().Debug("Command execution failed", zap.Error(err))
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	observability.Sync()
	return err
}

// initializeConfig points v at the config file and the MIMICRY_ environment.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".mimicry"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("MIMICRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// getConfig returns the configuration loaded by the root command.
func getConfig(cmd *cobra.Command) (config.Interface, error) {
	cfg, ok := cmd.Context().Value(configKey).(config.Interface)
	if !ok {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

// getService returns the service built by the root command.
func getService(cmd *cobra.Command) (*service.Service, error) {
	svc, ok := cmd.Context().Value(serviceKey).(*service.Service)
	if !ok {
		return nil, errors.New("service not initialized")
	}
	return svc, nil
}

// writeJSON prints v as indented JSON to w.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
