package loader

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/go-faster/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV returns every row of data with its 1-based line number.
func readCSV(data []byte) ([]row, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.ReuseRecord = false

	var rows []row
	for {
		fields, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "read csv")
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, row{line: line, fields: fields})
	}
}
