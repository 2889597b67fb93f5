package insitu

import "io"

// Parser exposes the package entry points as methods so callers can accept
// an interface and substitute a fake in tests.
type Parser struct{}

func (Parser) ParseCSV(r io.Reader) (*Log, error) { return ParseCSV(r) }

func (Parser) ParseTXT(r io.Reader) (*Log, error) { return ParseTXT(r) }

func (Parser) ParseZippedHTML(r io.ReaderAt, size int64) (*Log, error) {
	return ParseZippedHTML(r, size)
}
