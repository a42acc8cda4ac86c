package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads rows from the named sheet of a workbook, or the first sheet
// when sheet is empty. Row 1 is the header.
func ReadXLSX(path, sheet string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return readWorkbook(f, sheet)
}

// ReadXLSXFrom is ReadXLSX over an in-memory or streamed workbook.
func ReadXLSXFrom(r io.Reader, sheet string) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return readWorkbook(f, sheet)
}

func readWorkbook(f *excelize.File, sheet string) ([]Row, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrSheetNotFound, sheet, sheets)
	}
	recs, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(recs) == 0 {
		return nil, ErrNoHeader
	}
	header := cleanHeader(recs[0])
	rows := make([]Row, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		rows = append(rows, fromRecord(header, rec))
	}
	return rows, nil
}
