package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotObject is returned by DecodeObject when the payload is not a JSON object.
var ErrNotObject = errors.New("payload is not a JSON object")

// Field is one member of a JSON object, value left undecoded.
type Field struct {
	Name  string
	Value json.RawMessage
}

// DecodeObject reads a single JSON object from r and returns its members in
// the order they appear. Duplicate keys are kept; later entries follow earlier
// ones.
func DecodeObject(r io.Reader) ([]Field, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNotObject
		}
		return nil, fmt.Errorf("read object start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read value for %q: %w", name, err)
		}
		fields = append(fields, Field{Name: name, Value: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read object end: %w", err)
	}

	// Anything after the closing brace is a malformed payload.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after object")
	}

	return fields, nil
}
