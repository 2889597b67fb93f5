package insitu

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// timeLayouts are the timestamp formats seen in exports. Instrument clocks
// are UTC.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"2006/01/02 15:04:05",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// decodeText strips a UTF-8 BOM or converts BOM-tagged UTF-16, which the
// desktop software writes for TXT dumps.
func decodeText(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// row is one line of an export split into trimmed cells.
type row struct {
	Line  int
	Cells []string
}

func (r row) nonEmpty() []string {
	var cells []string
	for _, c := range r.Cells {
		if c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

func newRow(line int, cells []string) row {
	trimmed := make([]string, len(cells))
	for i, c := range cells {
		trimmed[i] = strings.TrimSpace(c)
	}
	return row{Line: line, Cells: trimmed}
}

// isHeader reports whether the first cell names the timestamp column.
func isHeader(r row) bool {
	if len(r.Cells) < 2 {
		return false
	}
	col, ok, _ := resolveColumn(r.Cells[0])
	return ok && col.Channel == ChannelDateTime
}

// buildLog turns the rows of an export into a Log. Rows before the header
// become attributes (two or more cells) or notes (one cell).
func buildLog(format Format, rows []row) (*Log, error) {
	log := &Log{
		Format:     format,
		Attributes: make(map[string]string),
		Notes:      []string{},
	}

	headerAt := -1
	for i, r := range rows {
		if isHeader(r) {
			headerAt = i
			break
		}
		cells := r.nonEmpty()
		switch len(cells) {
		case 0:
		case 1:
			log.Notes = append(log.Notes, cells[0])
		default:
			key := strings.TrimSuffix(cells[0], ":")
			log.Attributes[key] = strings.Join(cells[1:], " ")
		}
	}
	if headerAt < 0 {
		return nil, &ParseError{Format: format, Msg: "no header row with a timestamp column"}
	}

	header := rows[headerAt]
	cols := make([]*column, len(header.Cells))
	for i, cell := range header.Cells {
		if i == 0 {
			continue
		}
		col, ok, err := resolveColumn(cell)
		if err != nil {
			return nil, &ParseError{Format: format, Line: header.Line, Msg: "bad header", Err: err}
		}
		if ok && col.Channel != ChannelDateTime {
			cols[i] = &col
		}
	}

	for _, r := range rows[headerAt+1:] {
		cells := r.nonEmpty()
		if len(cells) == 0 {
			continue
		}
		// Trailing free text after the data, e.g. report footers.
		if len(cells) == 1 {
			log.Notes = append(log.Notes, cells[0])
			continue
		}

		reading, err := parseReading(r, cols)
		if err != nil {
			return nil, &ParseError{Format: format, Line: r.Line, Msg: "bad reading", Err: err}
		}
		log.Readings = append(log.Readings, reading)
	}

	if len(log.Readings) == 0 {
		return nil, &ParseError{Format: format, Msg: "empty log", Err: ErrNoReadings}
	}

	return log, nil
}

func parseReading(r row, cols []*column) (Reading, error) {
	t, err := parseTime(r.Cells[0])
	if err != nil {
		return Reading{}, err
	}

	reading := Reading{Time: t, Values: make(map[string]float64)}
	for i, col := range cols {
		if col == nil || i >= len(r.Cells) || r.Cells[i] == "" {
			continue
		}
		v, err := strconv.ParseFloat(r.Cells[i], 64)
		if err != nil {
			return Reading{}, fmt.Errorf("invalid number %q for %s", r.Cells[i], col.Channel)
		}
		reading.Values[col.Channel] = v * col.Scale
	}
	return reading, nil
}
