package analysis

import (
	"strings"
	"testing"

	"github.com/julian-george/dali-datascience-app/internal/dataset"
	"github.com/julian-george/dali-datascience-app/internal/geo"
)

func TestAggregateScenarioC(t *testing.T) {
	rows := []dataset.Row{
		row("Category", "", "Sub-Category", "Phones", "Profit", "999", "State", "Texas", "Order Date", "1/1/2014", "Quantity", "7"),
		row("Category", "Technology", "Sub-Category", "Phones", "Profit", "10", "State", "Texas", "Order Date", "1/1/2014", "Quantity", "1"),
	}
	opt := DefaultOptions()
	opt.States = []geo.Feature{{Name: "Texas", HasCentroid: true}}
	snap := Aggregate(rows, opt)

	if snap.ID == "" || snap.EpochYear != 2013 {
		t.Fatalf("snapshot header = %q/%d", snap.ID, snap.EpochYear)
	}
	if snap.Categories.Len() != 1 {
		t.Fatalf("categories = %v", snap.Categories.Categories())
	}
	if st, _ := snap.Categories.Stat("Technology"); st.Mean != 10 {
		t.Fatalf("blank-category profit leaked into Technology: %+v", st)
	}
	if got := snap.Timeline.Categories(); len(got) != 1 || got[0] != "Technology" {
		t.Fatalf("timeline categories = %v", got)
	}
	if got := snap.Timeline.Value("Technology", 13); got != 1 {
		t.Fatalf("Technology[13] = %d, want 1", got)
	}
	if snap.Diagnostics.Rows != 2 || snap.Diagnostics.BlankCategory != 1 {
		t.Fatalf("diagnostics = %+v", snap.Diagnostics)
	}
	if len(snap.StateCircles) != 1 || snap.StateCircles[0].NumOrders != 2 {
		t.Fatalf("state circles = %+v", snap.StateCircles)
	}
}

func TestAggregateEmpty(t *testing.T) {
	snap := Aggregate(nil, Options{})
	if snap.EpochYear != DefaultEpochYear || snap.Categories.Len() != 0 {
		t.Fatalf("empty snapshot = %+v", snap)
	}
	if len(snap.StateCircles) != 0 || len(snap.CountyCircles) != 0 {
		t.Fatalf("circles without features")
	}
}

func TestMarkdownReport(t *testing.T) {
	rows := []dataset.Row{
		row("Category", "Technology", "Sub-Category", "Phones", "Profit", "1200.5", "State", "California", "Order Date", "3/15/2014", "Quantity", "5"),
		row("Category", "Furniture", "Sub-Category", "Chairs", "Profit", "-3", "State", "New York", "Order Date", "4/2/2014", "Quantity", "2"),
		row("Category", "Furniture", "Profit", "x", "State", "California", "Order Date", "bad"),
	}
	opt := DefaultOptions()
	opt.Name = "superstore.csv"
	md := Aggregate(rows, opt).Markdown(ReportOptions{TopRegions: 1})

	for _, want := range []string{
		"[DATASET SUMMARY]",
		"Source: superstore.csv",
		"Rows: 3",
		"[MEAN PROFIT BY CATEGORY]",
		"- Technology: mean 1,200.50 (n=1)",
		"  • Chairs: mean -3.00 (n=1)",
		"[ORDERS BY STATE]",
		"- California: 2",
		"[QUANTITY BY MONTH]",
		"peak 5 at Apr 14",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "New York: 1") {
		t.Fatalf("TopRegions not applied:\n%s", md)
	}
}
