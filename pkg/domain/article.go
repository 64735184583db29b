// Package domain defines the article record model, the document codec shared
// by every persistence backend, and the error taxonomy surfaced by the store.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Attribute keys every article must carry on creation.
const (
	FieldCode     = "code"
	FieldCategory = "category"
	FieldPrice    = "price"
	FieldUnit     = "unit"
)

// RequiredFields lists the attributes validated on creation, in report order.
var RequiredFields = []string{FieldCode, FieldCategory, FieldPrice, FieldUnit}

// Field is a single top-level article attribute holding its raw JSON value.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Article is one inventory record. Attributes keep their original order and
// raw JSON encoding so a record survives load/save cycles unchanged,
// including attributes the service knows nothing about.
type Article struct {
	fields []Field
}

// NewArticle builds an article from the given attributes. Later duplicates
// overwrite earlier ones in place.
func NewArticle(fields ...Field) Article {
	var a Article
	for _, f := range fields {
		a.SetRaw(f.Key, f.Value)
	}
	return a
}

// ArticleFromMap builds an article from plain Go values. Keys are added in
// the order given by keys; keys missing from values are skipped.
func ArticleFromMap(keys []string, values map[string]any) (Article, error) {
	var a Article
	for _, k := range keys {
		v, ok := values[k]
		if !ok {
			continue
		}
		if err := a.Set(k, v); err != nil {
			return Article{}, err
		}
	}
	return a, nil
}

// Len reports the number of attributes.
func (a Article) Len() int { return len(a.fields) }

// Fields returns a copy of the attributes in order.
func (a Article) Fields() []Field {
	out := make([]Field, len(a.fields))
	for i, f := range a.fields {
		out[i] = Field{Key: f.Key, Value: cloneRaw(f.Value)}
	}
	return out
}

// Keys returns attribute names in order.
func (a Article) Keys() []string {
	out := make([]string, len(a.fields))
	for i, f := range a.fields {
		out[i] = f.Key
	}
	return out
}

// Get returns the raw JSON value stored under key.
func (a Article) Get(key string) (json.RawMessage, bool) {
	if i := a.index(key); i >= 0 {
		return cloneRaw(a.fields[i].Value), true
	}
	return nil, false
}

// Lookup decodes the attribute stored under key into a plain Go value.
func (a Article) Lookup(key string) (any, bool) {
	raw, ok := a.Get(key)
	if !ok {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

// Set marshals value and stores it under key, overwriting in place when the
// key already exists and appending otherwise.
func (a *Article) Set(key string, value any) error {
	raw, err := marshalNoEscape(value)
	if err != nil {
		return fmt.Errorf("encode attribute %s: %w", key, err)
	}
	a.SetRaw(key, raw)
	return nil
}

// SetRaw stores an already encoded JSON value under key.
func (a *Article) SetRaw(key string, raw json.RawMessage) {
	raw = cloneRaw(raw)
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	if i := a.index(key); i >= 0 {
		a.fields[i].Value = raw
		return
	}
	a.fields = append(a.fields, Field{Key: key, Value: raw})
}

// Code returns the article's identifier. Records whose code is absent or not
// a JSON string report ok=false and are never matched by code lookups.
func (a Article) Code() (string, bool) {
	raw, ok := a.Get(FieldCode)
	if !ok {
		return "", false
	}
	var code string
	if err := json.Unmarshal(raw, &code); err != nil {
		return "", false
	}
	return code, true
}

// HasCode reports whether the article is addressed by code.
func (a Article) HasCode(code string) bool {
	c, ok := a.Code()
	return ok && c == code
}

// MissingFields returns the keys that are absent or carry an empty value:
// null, "", [] or {}. Numeric zero and false count as present.
func (a Article) MissingFields(keys ...string) []string {
	var missing []string
	for _, k := range keys {
		v, ok := a.Lookup(k)
		if !ok || isEmptyValue(v) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Merge returns a copy of a with every attribute of partial applied on top.
// Existing keys keep their position; new keys are appended in partial's order.
// The merge is shallow: nested objects are replaced, not combined.
func (a Article) Merge(partial Article) Article {
	out := a.Clone()
	for _, f := range partial.fields {
		out.SetRaw(f.Key, f.Value)
	}
	return out
}

// Clone returns a deep copy of the article.
func (a Article) Clone() Article {
	if a.fields == nil {
		return Article{}
	}
	return Article{fields: a.Fields()}
}

// Equal reports whether both articles hold the same attributes in the same
// order with byte-identical compacted values.
func (a Article) Equal(b Article) bool {
	if len(a.fields) != len(b.fields) {
		return false
	}
	for i := range a.fields {
		if a.fields[i].Key != b.fields[i].Key {
			return false
		}
		if !bytes.Equal(compactRaw(a.fields[i].Value), compactRaw(b.fields[i].Value)) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the attributes as a JSON object in their stored order.
func (a Article) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range a.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(f.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(f.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, recording attribute order. A JSON null
// leaves the article empty; any other non-object is rejected.
func (a *Article) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("article must be a JSON object")
	}
	var out Article
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in article", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode attribute %s: %w", key, err)
		}
		out.SetRaw(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected trailing data after article")
	}
	if out.fields == nil {
		out.fields = []Field{}
	}
	*a = out
	return nil
}

func (a Article) index(key string) int {
	for i, f := range a.fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

func compactRaw(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
