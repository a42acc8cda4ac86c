package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/julian-george/dali-datascience-app/internal/analysis"
	"github.com/julian-george/dali-datascience-app/internal/dashboard"
	"github.com/julian-george/dali-datascience-app/internal/utils"
)

var (
	anaOutputPath string
	anaSheetName  string
	anaDrill      string
	anaMode       string
	anaJSON       bool
	anaTop        int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <source>",
	Short: "Aggregate a dataset and print the dashboard summary",
	Long: `Aggregate a CSV/TSV/XLSX file or an http(s) URL and print mean profit by
category, order counts by state and county, and monthly quantities.
--drill and --mode select the dashboard view included in the output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		p, err := newPipeline(args[0], anaSheetName, c, nil)
		if err != nil {
			return err
		}
		snap, err := p.snapshot(cmd.Context())
		if err != nil {
			return err
		}

		dash := dashboard.New(c.Layout(), c.Mode(), dashboard.WithLogger(log.Component("dashboard")))
		dash.Load(snap)
		if anaMode != "" {
			m, ok := dashboard.ParseMode(anaMode)
			if !ok {
				return fmt.Errorf("unsupported --mode: %s (use state|county)", anaMode)
			}
			dash.SetMode(m)
		}
		if anaDrill != "" {
			if _, ok := dash.DrillInto(anaDrill); !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: unknown category %q; showing all categories\n", anaDrill)
			}
		}
		frame := dash.Frame()

		var out []byte
		if anaJSON {
			out, err = utils.PrettyJSON(frame)
			if err != nil {
				return err
			}
		} else {
			md := snap.Markdown(analysis.ReportOptions{TopRegions: anaTop}) + viewMarkdown(frame)
			out = []byte(md)
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// viewMarkdown renders the bar and map state of a frame.
func viewMarkdown(f *dashboard.Frame) string {
	var b strings.Builder
	b.WriteString("\n[CURRENT VIEW]\n")
	if f.Drill.Level == dashboard.LevelCategory {
		b.WriteString(fmt.Sprintf("Bars: sub-categories of %s\n", f.Drill.Selected))
	} else {
		b.WriteString("Bars: categories\n")
	}
	for _, v := range f.View {
		b.WriteString(fmt.Sprintf("- %s: %.2f\n", v.Label, v.Mean))
	}
	visible := 0
	for _, c := range f.Circles {
		if c.Visible() {
			visible++
		}
	}
	b.WriteString(fmt.Sprintf("Map: %s mode, %d of %d regions with orders\n", f.Mode, visible, len(f.Circles)))
	return b.String()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the summary")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to read (first sheet if omitted)")
	analyzeCmd.Flags().StringVar(&anaDrill, "drill", "", "show the sub-categories of this category")
	analyzeCmd.Flags().StringVar(&anaMode, "mode", "", "map mode: state|county (config default_mode if omitted)")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the dashboard frame as JSON instead of Markdown")
	analyzeCmd.Flags().IntVar(&anaTop, "top", 10, "number of states to list (0 = all)")
}
