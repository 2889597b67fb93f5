package insitu

import (
	"encoding/csv"
	"errors"
	"io"
)

// ParseCSV reads a CSV export.
func ParseCSV(r io.Reader) (*Log, error) {
	cr := csv.NewReader(decodeText(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows []row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			pe := &ParseError{Format: FormatCSV, Msg: "malformed csv", Err: err}
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				pe.Line = csvErr.Line
			}
			return nil, pe
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, newRow(line, record))
	}

	return buildLog(FormatCSV, rows)
}
