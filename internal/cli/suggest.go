package cli

import (
	"context"

	"resumatch/internal/ai"
	"resumatch/internal/analysis"
	"resumatch/internal/common"

	"github.com/spf13/cobra"
)

var (
	suggestConfig common.CommandConfig
	suggestRole   string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [resume-file] --role ROLE",
	Short: "Ask a language model how to improve a resume for a role",
	Long: `Extract the text of a resume and ask the configured language model
(ai.provider: openai or gemini) for three actionable suggestions to make it a
better fit for the job role.

Failures are reported in place of the suggestions; matching does not depend on
the model being reachable or an API key being set.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: documentArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return common.ValidateRole(suggestRole)
	},
	RunE: runSuggest,
}

func init() {
	addRoleFlag(suggestCmd, &suggestRole)
	suggestCmd.Flags().StringVarP(&suggestConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	rt, err := newCommandEnv(cmd.Context(), nil)
	if err != nil {
		return err
	}

	service, err := ai.NewService(cmd.Context(), &rt.cfg.AI, rt.logger, nil)
	if err != nil {
		return err
	}

	return common.RunDocumentCommand(cmd.Context(), rt.logger, suggestConfig, args[0], rt.cfg.App.MaxFileSize,
		func(ctx context.Context, upload analysis.Upload) (string, error) {
			result, err := rt.analyzer.Analyze(ctx, upload, suggestRole)
			if err != nil {
				return "", err
			}

			rt.logger.Info("Requesting suggestions", "role", suggestRole, "provider", service.Provider(),
				"resume_chars", len(result.ExtractedText))

			return service.GetSuggestions(ctx, result.ExtractedText, suggestRole) + "\n", nil
		})
}
