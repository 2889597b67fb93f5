// Package insitu reads the log exports of In-Situ multiparameter sondes:
// CSV exports, tab separated TXT dumps and zipped HTML reports.
//
// Every export has the same shape: a block of device attributes and free
// text notes, a header row whose first column is the timestamp, then one
// row per reading. Column headers are mapped to canonical channel names and
// values are scaled to canonical units.
package insitu

import (
	"errors"
	"fmt"
	"time"

	"github.com/ongchi/insitu-logger/pkg/apperrors"
)

// Format identifies the export a log was read from.
type Format string

const (
	FormatCSV        Format = "csv"
	FormatTXT        Format = "txt"
	FormatZippedHTML Format = "zip"
)

// Log is a decoded instrument log. It carries no task association.
type Log struct {
	Format     Format            `json:"format"`
	Attributes map[string]string `json:"attr"`
	Notes      []string          `json:"log_note"`
	Readings   []Reading         `json:"log_data"`
}

// Reading is one timestamped row. Values holds only the channels present
// in the export, keyed by canonical channel name, in canonical units.
type Reading struct {
	Time   time.Time          `json:"datetime"`
	Values map[string]float64 `json:"values"`
}

// Channels returns the canonical channel names present in any reading.
func (l *Log) Channels() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range l.Readings {
		for name := range r.Values {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// ParseError reports a malformed export. Line is 1-based; zero when the
// problem is not tied to a row.
type ParseError struct {
	Format Format
	Line   int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("insitu %s: line %d: %s", e.Format, e.Line, msg)
	}
	return fmt.Sprintf("insitu %s: %s", e.Format, msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == apperrors.ErrParse }

// ErrNoReadings is wrapped by the ParseError returned for a log with a header
// but no data rows.
var ErrNoReadings = errors.New("log contains no readings")
