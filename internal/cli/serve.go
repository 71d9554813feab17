package cli

import (
	"context"
	"fmt"
	"time"

	"resumatch/internal/ai"
	"resumatch/internal/analysis"
	"resumatch/internal/config"
	"resumatch/internal/extract"
	"resumatch/internal/observability"
	"resumatch/internal/report"
	"resumatch/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server exposing resume matching over REST.

Available endpoints:
- POST /match: Match an uploaded resume (multipart: resume, role)
- POST /match/report?type=text|pdf: Download the match report
- POST /suggestions: Ask the language model for improvement suggestions
- GET /roles: List job roles and skills
- GET /health: Health check endpoint
- GET /stats: Rate limiting and circuit breaker statistics

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
	_ = serveCmd.RegisterFlagCompletionFunc("tls-mode", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"disabled", "server", "mutual"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// applyServeFlags copies explicitly set flags over the loaded configuration
func applyServeFlags(flags *pflag.FlagSet, cfg *config.ServerConfig) {
	overrides := map[string]*string{
		"port":      &cfg.Port,
		"host":      &cfg.Host,
		"tls-mode":  &cfg.TLS.Mode,
		"cert-file": &cfg.TLS.CertFile,
		"key-file":  &cfg.TLS.KeyFile,
		"ca-file":   &cfg.TLS.CAFile,
	}
	for name, target := range overrides {
		if flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rtCfg, err := getConfigFromContext(ctx)
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(ctx)
	if err != nil {
		return err
	}

	applyServeFlags(cmd.Flags(), &rtCfg.Server)
	if err := rtCfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewManager(rtCfg.Observability, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	cat, err := loadCatalog(rtCfg)
	if err != nil {
		return err
	}

	suggester, err := ai.NewService(ctx, &rtCfg.AI, logger, om.Metrics())
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	deps := server.Dependencies{
		Analyzer:      analysis.New(extract.NewDispatcher(), cat, report.NewGenerator(nil), om.Metrics(), logger),
		Catalog:       cat,
		Suggester:     suggester,
		Observability: om,
	}
	return server.NewServer(rtCfg, Version, deps, logger).Start(ctx)
}
