package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"resumatch/internal/analysis"
	"resumatch/internal/common"
	"resumatch/internal/report"

	"github.com/spf13/cobra"
)

var (
	reportRole string
	reportType string
	reportDir  string
)

var reportCmd = &cobra.Command{
	Use:   "report [resume-file] --role ROLE",
	Short: "Export a match report as text or PDF",
	Long: `Match a resume against a job role and save the result as a downloadable
report. The file is named after the role, for example
Data_Analyst_match_report.pdf, and written to --dir (default: app.outputDir).`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: documentArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := common.ValidateRole(reportRole); err != nil {
			return err
		}
		_, err := report.ParseKind(reportType)
		return err
	},
	RunE: runReport,
}

func init() {
	addRoleFlag(reportCmd, &reportRole)
	reportCmd.Flags().StringVarP(&reportType, "type", "t", string(report.KindText), "Report type: text or pdf")
	reportCmd.Flags().StringVarP(&reportDir, "dir", "d", "", "Directory the report is written to (default from config)")
	_ = reportCmd.RegisterFlagCompletionFunc("type", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return common.ReportKinds(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = reportCmd.MarkFlagDirname("dir")
}

func runReport(cmd *cobra.Command, args []string) error {
	rt, err := newCommandEnv(cmd.Context(), nil)
	if err != nil {
		return err
	}

	kind, err := report.ParseKind(reportType)
	if err != nil {
		return err
	}

	dir := reportDir
	if dir == "" {
		dir = rt.cfg.App.OutputDir
	}

	fileProcessor := common.NewFileProcessor(rt.logger)

	return common.RunDocumentCommand(cmd.Context(), rt.logger, common.CommandConfig{}, args[0], rt.cfg.App.MaxFileSize,
		func(ctx context.Context, upload analysis.Upload) (string, error) {
			result, err := rt.analyzer.Analyze(ctx, upload, reportRole)
			if err != nil {
				return "", err
			}

			rep, err := rt.analyzer.Report(ctx, result.Match, kind)
			if err != nil {
				return "", err
			}

			path := filepath.Join(dir, rep.Filename)
			if err := fileProcessor.WriteFile(path, rep.Content); err != nil {
				return "", err
			}

			rt.logger.Info("Report written", "file", path, "type", kind, "bytes", len(rep.Content))
			return fmt.Sprintf("Match Score: %.2f%%\nReport saved to %s\n", result.Match.Score, path), nil
		})
}
