package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/julian-george/dali-datascience-app/internal/analysis"
	"github.com/julian-george/dali-datascience-app/internal/utils"
)

var (
	abOutDir    string
	abSheetName string
	abTop       int
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Summarize several order exports, one report per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := currentConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			p, err := newPipeline(path, abSheetName, c, nil)
			if err != nil {
				return err
			}
			snap, err := p.snapshot(cmd.Context())
			if err != nil {
				return err
			}
			md := snap.Markdown(analysis.ReportOptions{TopRegions: abTop})

			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(out, md)
				}
				continue
			}
			outFile := summaryPath(abOutDir, path, abSheetName)
			if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", filepath.Base(outFile))
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeping literal paths that exist, deduplicated
// and sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// summaryPath names the report for src inside dir, suffixing __2, __3, ...
// when an earlier file in the batch already claimed the name.
func summaryPath(dir, src, sheet string) string {
	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if sheet != "" {
		stem += "__sheet-" + slug(sheet)
	}
	out := filepath.Join(dir, stem+".summary.md")
	if _, err := os.Stat(out); err != nil {
		return out
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d.summary.md", stem, idx))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	if out := strings.Trim(b.String(), "-"); out != "" {
		return out
	}
	return "sheet"
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for <name>.summary.md reports (print to stdout if omitted)")
	analyzeBatchCmd.Flags().StringVar(&abSheetName, "sheet-name", "", "XLSX: sheet name to read (first sheet if omitted)")
	analyzeBatchCmd.Flags().IntVar(&abTop, "top", 10, "number of states to list per report (0 = all)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
