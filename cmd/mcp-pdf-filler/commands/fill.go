package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-filler/internal/pdf"
)

var (
	fillMapping mappingFlags
	fillRow     int
	fillOutput  string
	fillJSON    bool
)

var fillCmd = &cobra.Command{
	Use:   "fill <template.pdf> <data.csv>",
	Short: "Fill one data row into the template",
	Long: `Fill one data row into the template, for previewing a mapping.

Examples:
  mcp-pdf-filler fill form.pdf people.csv --row 3 -m Name=FullName -m Agree=Consent
  mcp-pdf-filler fill form.pdf people.csv --mapping-config mapping_rules.json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := fillMapping.source()
		if err != nil {
			return err
		}
		_, _, svc, err := loadService(cmd)
		if err != nil {
			return err
		}

		result, err := svc.FillRow(pdf.FillRowRequest{
			MappingSource: src,
			TemplatePath:  args[0],
			DataPath:      args[1],
			Row:           fillRow,
			OutputPath:    fillOutput,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if fillJSON {
			return writeJSON(out, result)
		}
		fmt.Fprintf(out, "%s: %d fields written\n", result.OutputPath, result.Filled)
		for _, w := range result.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fillCmd)
	fillMapping.register(fillCmd)
	fillCmd.Flags().IntVarP(&fillRow, "row", "r", 1, "one-based data row")
	fillCmd.Flags().StringVarP(&fillOutput, "output", "o", "", "output file, relative to the output directory")
	fillCmd.Flags().BoolVar(&fillJSON, "json", false, "print JSON")
}
