// Package normalize is the decoding boundary for store API responses. The store wraps its
// lists inconsistently (bare arrays, {"data": [...]}, {"orders": [...]}, {"success": true,
// "data": [...]}), so every list endpoint goes through List before its records are decoded
// into models. Nothing here panics or returns a nil slice.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DecodeError reports a payload, or some records in it, that matched no accepted shape.
type DecodeError struct {
	Reason  string
	Skipped int // records dropped from an otherwise usable list
	Err     error
}

func (e *DecodeError) Error() string {
	msg := "decode: " + e.Reason
	if e.Skipped > 0 {
		msg = fmt.Sprintf("%s (%d records skipped)", msg, e.Skipped)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is, or wraps, a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

type field struct {
	key   string
	value json.RawMessage
}

// objectFields decodes a JSON object keeping its keys in document order.
func objectFields(raw []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not an object")
	}
	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("object key is not a string")
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		fields = append(fields, field{key: key, value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return fields, nil
}

func firstByte(raw []byte) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func isArray(raw []byte) bool { return firstByte(raw) == '[' }

func isObject(raw []byte) bool { return firstByte(raw) == '{' }

func isNull(raw []byte) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// List extracts the records of a list payload. Resolution order:
//
//  1. the payload itself when it is an array;
//  2. the first of keys whose value is an array;
//  3. the first array-valued property, in document order;
//  4. an empty list.
//
// The returned slice is never nil. Case 4 and any syntactically broken payload also return a
// *DecodeError so callers can show a warning.
func List(raw []byte, keys ...string) ([]json.RawMessage, error) {
	items := []json.RawMessage{}

	switch {
	case isArray(raw):
		if err := json.Unmarshal(raw, &items); err != nil {
			return []json.RawMessage{}, &DecodeError{Reason: "malformed array", Err: err}
		}
		return items, nil
	case isObject(raw):
	default:
		return items, &DecodeError{Reason: "payload is not a list or an object"}
	}

	fields, err := objectFields(raw)
	if err != nil {
		return items, &DecodeError{Reason: "malformed object", Err: err}
	}
	for _, k := range keys {
		for _, f := range fields {
			if f.key == k && isArray(f.value) {
				return unmarshalList(f.value)
			}
		}
	}
	for _, f := range fields {
		if isArray(f.value) {
			return unmarshalList(f.value)
		}
	}
	return items, &DecodeError{Reason: "no list found in payload"}
}

func unmarshalList(raw json.RawMessage) ([]json.RawMessage, error) {
	items := []json.RawMessage{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return []json.RawMessage{}, &DecodeError{Reason: "malformed array", Err: err}
	}
	return items, nil
}

// Object extracts a single entity: the first of keys holding an object, else the payload
// itself when it is an object carrying none of keys.
func Object(raw []byte, keys ...string) (json.RawMessage, error) {
	if !isObject(raw) {
		return nil, &DecodeError{Reason: "payload is not an object"}
	}
	fields, err := objectFields(raw)
	if err != nil {
		return nil, &DecodeError{Reason: "malformed object", Err: err}
	}
	for _, k := range keys {
		for _, f := range fields {
			if f.key == k {
				if isObject(f.value) {
					return f.value, nil
				}
				if !isNull(f.value) {
					return nil, &DecodeError{Reason: fmt.Sprintf("%q is not an object", k)}
				}
			}
		}
	}
	for _, f := range fields {
		for _, k := range keys {
			if f.key == k {
				return nil, &DecodeError{Reason: fmt.Sprintf("%q is empty", k)}
			}
		}
	}
	return json.RawMessage(raw), nil
}

// decodeAll runs decode over every record of a list payload. Records that fail to decode are
// dropped and counted in the returned error.
func decodeAll[T any](raw []byte, decode func(json.RawMessage) (T, error), keys ...string) ([]T, error) {
	records, listErr := List(raw, keys...)
	out := make([]T, 0, len(records))
	var skipped int
	var firstErr error
	for _, rec := range records {
		v, err := decode(rec)
		if err != nil {
			skipped++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, v)
	}
	if listErr != nil {
		return out, listErr
	}
	if skipped > 0 {
		return out, &DecodeError{Reason: "malformed records", Skipped: skipped, Err: firstErr}
	}
	return out, nil
}
