package loader

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"
)

// readXLSX returns every row of the workbook's first sheet. Cells are read
// raw, so date cells arrive as Excel serial numbers and are converted here.
func readXLSX(data []byte) ([]row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	cells, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheets[0])
	}

	rows := make([]row, 0, len(cells))
	for i, fields := range cells {
		if isBlank(fields) {
			continue
		}
		for col := 2; col < len(fields) && col < 4; col++ {
			fields[col] = serialToDate(fields[col])
		}
		rows = append(rows, row{line: i + 1, fields: fields})
	}
	return rows, nil
}

// serialToDate rewrites an Excel serial date as yyyy-MM-dd and leaves every
// other value untouched.
func serialToDate(s string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || serial <= 0 {
		return s
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
