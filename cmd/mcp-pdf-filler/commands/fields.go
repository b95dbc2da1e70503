package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-filler/internal/pdf"
)

var (
	fieldsQuery string
	fieldsJSON  bool
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <template.pdf>",
	Short: "List the fillable fields of a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, svc, err := loadService(cmd)
		if err != nil {
			return err
		}

		result, err := svc.ListFields(pdf.ListFieldsRequest{Path: args[0], Query: fieldsQuery})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if fieldsJSON {
			return writeJSON(out, result)
		}
		for _, f := range result.Fields {
			pages := make([]string, 0, len(f.Occurrences))
			for _, occ := range f.Occurrences {
				pages = append(pages, fmt.Sprint(occ.Page))
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", f.Name, f.Type, strings.Join(pages, ","))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
	fieldsCmd.Flags().StringVarP(&fieldsQuery, "query", "q", "", "only list fields containing this text")
	fieldsCmd.Flags().BoolVar(&fieldsJSON, "json", false, "print JSON")
}
