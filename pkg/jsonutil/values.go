package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	errNull       = errors.New("value must not be null")
	errNotBool    = errors.New("expected a boolean")
	errNotString  = errors.New("expected a string")
	errNotNumber  = errors.New("expected a number")
	errNotInteger = errors.New("expected an integer")
)

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Bool decodes a JSON boolean. Null and other types are rejected.
func Bool(raw json.RawMessage) (bool, error) {
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return false, errNull
	}
	return false, errNotBool
}

// Int64 decodes a JSON number that holds an integer. Quoted numbers,
// fractions and exponents are rejected.
func Int64(raw json.RawMessage) (int64, error) {
	s := string(bytes.TrimSpace(raw))
	if s == "null" {
		return 0, errNull
	}
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return 0, errNotInteger
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errNotInteger, s)
	}
	return n, nil
}

// Float64 decodes a JSON number.
func Float64(raw json.RawMessage) (float64, error) {
	s := string(bytes.TrimSpace(raw))
	if s == "null" {
		return 0, errNull
	}
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return 0, errNotNumber
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("%w: %v", errNotNumber, err)
	}
	return f, nil
}

// String decodes a JSON string. Null is rejected.
func String(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return "", errNull
	}
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", errNotString
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", fmt.Errorf("%w: %v", errNotString, err)
	}
	return s, nil
}

// OptionalString decodes a JSON string or null. Null yields nil.
func OptionalString(raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	s, err := String(raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// OptionalFloat decodes a JSON number or null. Null yields nil.
func OptionalFloat(raw json.RawMessage) (*float64, error) {
	if isNull(raw) {
		return nil, nil
	}
	f, err := Float64(raw)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// OptionalInt64 decodes a JSON integer or null. Null yields nil.
func OptionalInt64(raw json.RawMessage) (*int64, error) {
	if isNull(raw) {
		return nil, nil
	}
	n, err := Int64(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
