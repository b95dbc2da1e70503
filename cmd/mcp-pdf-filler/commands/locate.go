package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-filler/internal/pdf"
)

var (
	locatePage   int
	locateFields []string
	locateJSON   bool
)

var locateCmd = &cobra.Command{
	Use:   "locate <template.pdf>",
	Short: "Print the widget rectangles on a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, svc, err := loadService(cmd)
		if err != nil {
			return err
		}

		result, err := svc.FieldLocations(pdf.FieldLocationsRequest{
			Path:   args[0],
			Page:   locatePage,
			Fields: locateFields,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if locateJSON {
			return writeJSON(out, result)
		}
		box := result.PageBox
		fmt.Fprintf(out, "page %d mediabox [%g %g %g %g]\n", result.Page, box[0], box[1], box[2], box[3])
		for _, loc := range result.Locations {
			r := loc.Rect
			fmt.Fprintf(out, "%s\t%s\t[%g %g %g %g]\n", loc.Name, loc.Type, r[0], r[1], r[2], r[3])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
	locateCmd.Flags().IntVarP(&locatePage, "page", "p", 0, "zero-based page index")
	locateCmd.Flags().StringSliceVarP(&locateFields, "field", "f", nil, "only these fields")
	locateCmd.Flags().BoolVar(&locateJSON, "json", false, "print JSON")
}
