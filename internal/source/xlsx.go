package source

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/estore-app/sheetfeed/internal/csv"
)

// readXLSX extracts the first sheet of a workbook as a raw row table.
// The first row is expected to be the header, same as a CSV export.
func readXLSX(data []byte) (csv.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return csv.RawTable(rows), nil
}
