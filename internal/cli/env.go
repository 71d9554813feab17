package cli

import (
	"context"
	"strings"

	"resumatch/internal/analysis"
	"resumatch/internal/catalog"
	"resumatch/internal/config"
	"resumatch/internal/errors"
	"resumatch/internal/extract"
	"resumatch/internal/observability"
	"resumatch/internal/report"

	"github.com/spf13/cobra"
)

// commandEnv bundles what the document commands need
type commandEnv struct {
	cfg      *config.Config
	logger   *errors.Logger
	catalog  *catalog.Catalog
	analyzer *analysis.Analyzer
}

func newCommandEnv(ctx context.Context, metrics *observability.Metrics) (*commandEnv, error) {
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return nil, err
	}
	logger, err := getLoggerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	return &commandEnv{
		cfg:      cfg,
		logger:   logger,
		catalog:  cat,
		analyzer: analysis.New(extract.NewDispatcher(), cat, report.NewGenerator(nil), metrics, logger),
	}, nil
}

// loadCatalog returns the configured catalog file or the built-in roles
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.App.CatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.App.CatalogFile)
}

// completeRoles offers catalog role names for --role. Completion runs without
// the persistent pre-run, so configuration is loaded here on a best-effort basis.
func completeRoles(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cat := catalog.Default()
	if cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile, EnvFile: envFile}); err == nil {
		if loaded, err := loadCatalog(cfg); err == nil {
			cat = loaded
		}
	}

	var roles []string
	for _, role := range cat.Roles() {
		if strings.HasPrefix(strings.ToLower(role), strings.ToLower(toComplete)) {
			roles = append(roles, role)
		}
	}
	return roles, cobra.ShellCompDirectiveNoFileComp
}

func completeFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	if cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile, EnvFile: envFile}); err == nil && len(cfg.App.SupportedFormats) > 0 {
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json", "text", "markdown"}, cobra.ShellCompDirectiveNoFileComp
}

// addRoleFlag registers the required --role flag with catalog completion
func addRoleFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "role", "r", "", "Job role to match against (see 'resumatch roles')")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.RegisterFlagCompletionFunc("role", completeRoles)
}

// documentArgs completes the resume path argument with the supported extensions
func documentArgs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"pdf", "docx", "txt", "md"}, cobra.ShellCompDirectiveFilterFileExt
}
