package cli

import (
	"context"
	"fmt"

	"resumatch/internal/config"
	"resumatch/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var (
	configFile string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "resumatch",
	Short: "Match resumes against job role skill lists",
	Long: `Resumatch reads a resume (PDF, DOCX or plain text), checks it against the
skill list of a job role and reports which skills were found and which are
missing. Reports can be exported as text or PDF, and a language model can be
asked for suggestions on improving the resume for the role.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initRuntime,
}

// Execute runs the command tree with ctx as the base context
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// initRuntime loads configuration and the logger and attaches both to the command context
func initRuntime(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return err
	}

	logger.Debug("Starting resumatch",
		"version", Version,
		"command", cmd.Name(),
		"log_level", cfg.App.LogLevel,
		"ai_provider", cfg.AI.Provider)

	ctx := context.WithValue(cmd.Context(), configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	cmd.SetContext(ctx)
	return nil
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg, nil
	}
	return nil, errors.NewInternalError(errors.ErrCodeInternal, "configuration not initialized", nil)
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) (*errors.Logger, error) {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger, nil
	}
	return nil, errors.NewInternalError(errors.ErrCodeInternal, "logger not initialized", nil)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./config.yaml, $HOME/.resumatch/config.yaml, /etc/resumatch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Dotenv file loaded before the environment (default: .env)")

	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
