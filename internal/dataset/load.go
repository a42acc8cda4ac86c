package dataset

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// LoadOptions selects how a source is read.
type LoadOptions struct {
	// Sheet names the workbook sheet for .xlsx sources; empty means the first.
	Sheet string
	// Fetcher downloads http(s) sources. Required for remote sources.
	Fetcher *Fetcher
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads rows from a local .csv/.tsv/.xlsx file or an http(s) URL.
func Load(ctx context.Context, source string, opt LoadOptions) ([]Row, error) {
	if IsRemote(source) {
		return loadRemote(ctx, source, opt)
	}
	switch kind(source) {
	case "csv":
		return ReadCSVFile(source)
	case "xlsx":
		return ReadXLSX(source, opt.Sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}
}

func loadRemote(ctx context.Context, source string, opt LoadOptions) ([]Row, error) {
	if opt.Fetcher == nil {
		return nil, fmt.Errorf("%w: no fetcher for %s", ErrUnsupportedSource, source)
	}
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	body, err := opt.Fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	if kind(u.Path) == "xlsx" {
		return ReadXLSXFrom(bytes.NewReader(body), opt.Sheet)
	}
	return ReadCSV(bytes.NewReader(body), sniffDelimiter(u.Path))
}

func kind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return "xlsx"
	case ".csv", ".tsv", ".txt", "":
		return "csv"
	}
	return ""
}
