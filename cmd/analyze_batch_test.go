package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyzeBatch_WritesSummariesWithCollisionSuffix(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	resetFlags(analyzeBatchCmd.Flags())

	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	for _, d := range []string{d1, d2} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
		if err := os.WriteFile(filepath.Join(d, "orders.csv"), []byte(ordersCSV), 0o644); err != nil {
			t.Fatalf("write csv: %v", err)
		}
	}
	outDir := filepath.Join(home, "summaries")

	out := runCmd(t, "analyze-batch", filepath.Join(home, "d*", "orders.csv"), "--out-dir", outDir)
	if !strings.Contains(out, "[2/2] Processing orders.csv") {
		t.Fatalf("missing progress output: %q", out)
	}

	b1 := filepath.Join(outDir, "orders.summary.md")
	b2 := filepath.Join(outDir, "orders__2.summary.md")
	for _, p := range []string{b1, b2} {
		body, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("missing summary %s: %v", p, err)
		}
		if !strings.Contains(string(body), "[MEAN PROFIT BY CATEGORY]") {
			t.Fatalf("summary %s lacks category section", p)
		}
	}
	resetFlags(analyzeBatchCmd.Flags())
}

func TestAnalyzeBatch_NoMatches(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	resetFlags(analyzeBatchCmd.Flags())

	if _, err := execCmd("analyze-batch", filepath.Join(home, "missing-*.csv")); err == nil {
		t.Fatal("expected error for unmatched inputs")
	}
}

func TestSummaryPathSheetSlug(t *testing.T) {
	dir := t.TempDir()
	got := summaryPath(dir, "/data/Superstore.xlsx", "Orders 2016!")
	want := filepath.Join(dir, "Superstore__sheet-orders-2016.summary.md")
	if got != want {
		t.Fatalf("summaryPath = %q, want %q", got, want)
	}
	if slug("  !! ") != "sheet" {
		t.Fatalf("empty slug should fall back to sheet")
	}
}
