package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

const superstoreCSV = "\ufeffRow ID,Order Date,Ship Date,State,Postal Code,Category,Sub-Category,Quantity,Profit\n" +
	"1,11/8/2016,11/11/2016,Kentucky,42420,Furniture,Bookcases,2,41.9136\n" +
	"2,3/15/2014,,California,02134,Technology,Phones,5,10\n" +
	"3,,6/1/2015,New York,10024,Office Supplies,Labels\n"

func TestReadCSV(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(superstoreCSV), ',')
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if got := rows[0].Get("Row ID"); got != "1" {
		t.Fatalf("BOM not stripped from first header: Row ID = %q", got)
	}
	if got := rows[1].Get(FieldPostalCode); got != "02134" {
		t.Fatalf("postal code = %q, want 02134", got)
	}
	// short record pads missing trailing columns
	if v, ok := rows[2][FieldProfit]; !ok || v != "" {
		t.Fatalf("short record profit = %q (present %v), want empty", v, ok)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader(""), ','); !errors.Is(err, ErrNoHeader) {
		t.Fatalf("err = %v, want ErrNoHeader", err)
	}
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	data := [][]any{
		{"Category", "Sub-Category", "Profit", "State"},
		{"Technology", "Phones", 10, "California"},
		{"Technology"},
	}
	for i, rec := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &rec); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	writeWorkbook(t, path)

	rows, err := ReadXLSX(path, "")
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Get(FieldProfit) != "10" || rows[0].Get(FieldState) != "California" {
		t.Fatalf("row 0 = %v", rows[0])
	}
	if rows[1].Get(FieldSubCategory) != "" {
		t.Fatalf("short row sub-category = %q, want empty", rows[1].Get(FieldSubCategory))
	}

	if _, err := ReadXLSX(path, "Orders"); !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("missing sheet err = %v, want ErrSheetNotFound", err)
	}
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{Timeout: 5 * time.Second, MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(superstoreCSV))
	}))
	defer srv.Close()

	rows, err := Load(context.Background(), srv.URL+"/superstore.csv", LoadOptions{Fetcher: NewFetcher(fastPolicy(), nil)})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewFetcher(fastPolicy(), nil).Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatalf("expected error for 404")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestFetchGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewFetcher(fastPolicy(), nil).Fetch(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error after retries")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "orders.csv")
	if err := os.WriteFile(csvPath, []byte(superstoreCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	rows, err := Load(context.Background(), csvPath, LoadOptions{})
	if err != nil || len(rows) != 3 {
		t.Fatalf("Load csv = %d rows, err %v", len(rows), err)
	}

	if _, err := Load(context.Background(), filepath.Join(dir, "orders.parquet"), LoadOptions{}); !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("parquet err = %v, want ErrUnsupportedSource", err)
	}
	if _, err := Load(context.Background(), "https://example.invalid/x.csv", LoadOptions{}); !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("remote without fetcher err = %v, want ErrUnsupportedSource", err)
	}
}
