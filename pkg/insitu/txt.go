package insitu

import (
	"bufio"
	"io"
	"strings"
)

const maxTXTLine = 1 << 20

// ParseTXT reads a tab separated TXT dump.
func ParseTXT(r io.Reader) (*Log, error) {
	scanner := bufio.NewScanner(decodeText(r))
	scanner.Buffer(make([]byte, 0, 64*1024), maxTXTLine)

	var rows []row
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		rows = append(rows, newRow(line, strings.Split(text, "\t")))
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Format: FormatTXT, Line: line + 1, Msg: "read failed", Err: err}
	}

	return buildLog(FormatTXT, rows)
}
