package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Collection is the ordered set of articles persisted as one document.
type Collection []Article

// IndexOf returns the position of the first article addressed by code, or -1.
func (c Collection) IndexOf(code string) int {
	for i, a := range c {
		if a.HasCode(code) {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, a := range c {
		out[i] = a.Clone()
	}
	return out
}

// Equal reports element-wise equality, order included.
func (c Collection) Equal(other Collection) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if !c[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// EncodeCollection renders the document layout shared by every backend: a
// JSON array indented with two spaces and terminated by a newline.
func EncodeCollection(c Collection) ([]byte, error) {
	if c == nil {
		c = Collection{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode collection: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCollection parses a persisted document. Anything other than a JSON
// array of JSON objects yields a *FormatError.
func DecodeCollection(data []byte) (Collection, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &FormatError{Err: fmt.Errorf("empty document")}
	}
	if trimmed[0] != '[' {
		return nil, &FormatError{Err: fmt.Errorf("document is not a JSON array")}
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, &FormatError{Err: err}
	}
	out := make(Collection, 0, len(raws))
	for i, raw := range raws {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			return nil, &FormatError{Err: fmt.Errorf("element %d is not a JSON object", i)}
		}
		var a Article
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, &FormatError{Err: fmt.Errorf("element %d: %w", i, err)}
		}
		out = append(out, a)
	}
	return out, nil
}
