package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-filler/internal/batch"
	"github.com/a3tai/mcp-pdf-filler/internal/pdf"
)

var (
	batchMapping   mappingFlags
	batchOutputDir string
	batchZip       bool
	batchWorkers   int
	batchJSON      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <template.pdf> <data.csv>",
	Short: "Fill every data row, one PDF per row",
	Long: `Fill every data row into the template. Each row produces one PDF; a
_REPORT.csv lists the status of every row and mapping_rules.json records the
mapping used. Failed rows never stop the batch.

Examples:
  mcp-pdf-filler batch form.pdf people.csv -m Name=FullName --out june
  mcp-pdf-filler batch form.pdf people.csv --mapping-config mapping_rules.json --zip`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := batchMapping.source()
		if err != nil {
			return err
		}
		_, _, svc, err := loadService(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		result, err := svc.GenerateBatch(ctx, pdf.GenerateBatchRequest{
			MappingSource: src,
			TemplatePath:  args[0],
			DataPath:      args[1],
			OutputDir:     batchOutputDir,
			Zip:           batchZip,
			Workers:       batchWorkers,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if batchJSON {
			return writeJSON(out, result)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		for _, e := range result.Entries {
			if e.Status == batch.StatusError {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", e.Row, e.File, e.Status, e.Error)
				continue
			}
			fmt.Fprintf(out, "%d\t%s\t%s\t%d\n", e.Row, e.File, e.Status, e.FilledFields)
		}

		s := result.Summary
		fmt.Fprintf(out, "%d rows: %d OK, %d zero filled, %d errors\n", s.Total, s.OK, s.ZeroFilled, s.Errors)
		if result.ArchivePath != "" {
			fmt.Fprintf(out, "archive: %s\n", result.ArchivePath)
		} else {
			fmt.Fprintf(out, "output: %s\n", result.OutputDir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchMapping.register(batchCmd)
	batchCmd.Flags().StringVar(&batchOutputDir, "out", "", "output directory, relative to the output directory")
	batchCmd.Flags().BoolVar(&batchZip, "zip", false, "write a single ZIP archive")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 1, "rows filled concurrently")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "print JSON")
}
