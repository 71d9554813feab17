package cli

import (
	"resumatch/internal/common"
	"resumatch/internal/formatters"

	"github.com/spf13/cobra"
)

var rolesConfig common.CommandConfig

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the job roles and their skills",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if rolesConfig.OutputFormat == "" {
			rolesConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(rolesConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newCommandEnv(cmd.Context(), nil)
		if err != nil {
			return err
		}
		return common.NewOutputHandler(rt.logger).
			HandleOutput(formatters.RoleList(rt.catalog.Entries()), rolesConfig)
	},
}

func init() {
	rolesCmd.Flags().StringVarP(&rolesConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	rolesCmd.Flags().StringVar(&rolesConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	_ = rolesCmd.RegisterFlagCompletionFunc("format", completeFormats)
}
