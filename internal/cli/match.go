package cli

import (
	"context"

	"resumatch/internal/analysis"
	"resumatch/internal/common"

	"github.com/spf13/cobra"
)

var (
	matchConfig   common.CommandConfig
	matchRole     string
	matchShowText bool
)

var matchCmd = &cobra.Command{
	Use:   "match [resume-file] --role ROLE",
	Short: "Match a resume against a job role",
	Long: `Extract the text of a resume (PDF, DOCX or plain text) and check which of
the role's skills it mentions. Skills are matched case-insensitively anywhere in
the text, so "pythonista" counts as "python".`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: documentArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if err := common.ValidateRole(matchRole); err != nil {
			return err
		}
		if matchConfig.OutputFormat == "" {
			matchConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(matchConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runMatch,
}

func init() {
	addRoleFlag(matchCmd, &matchRole)
	matchCmd.Flags().StringVarP(&matchConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	matchCmd.Flags().StringVar(&matchConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	matchCmd.Flags().BoolVar(&matchShowText, "show-text", false, "Include the extracted resume text in the output")
	_ = matchCmd.RegisterFlagCompletionFunc("format", completeFormats)
}

func runMatch(cmd *cobra.Command, args []string) error {
	rt, err := newCommandEnv(cmd.Context(), nil)
	if err != nil {
		return err
	}

	rt.logger.Info("Matching resume", "file", args[0], "role", matchRole, "output_format", matchConfig.OutputFormat)

	return common.RunDocumentCommand(cmd.Context(), rt.logger, matchConfig, args[0], rt.cfg.App.MaxFileSize,
		func(ctx context.Context, upload analysis.Upload) (any, error) {
			result, err := rt.analyzer.Analyze(ctx, upload, matchRole)
			if err != nil {
				return nil, err
			}
			rt.logger.Info("Resume matched", "role", matchRole, "score", result.Match.Score,
				"matched", len(result.Match.MatchedSkills), "missing", len(result.Match.MissingSkills))
			if matchShowText {
				return result, nil
			}
			return result.Match, nil
		})
}
