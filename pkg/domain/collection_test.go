package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleDocument = `[
  {
    "code": "A1",
    "category": "dairy",
    "price": 2.5,
    "unit": "kg"
  },
  {
    "code": "B2",
    "category": "bakery",
    "price": 1.25,
    "unit": "u",
    "gluten_free": true
  }
]
`

func TestDecodeEncodeCollectionIsStable(t *testing.T) {
	c, err := DecodeCollection([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(c) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(c))
	}
	out, err := EncodeCollection(c)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if diff := cmp.Diff(sampleDocument, string(out)); diff != "" {
		t.Fatalf("document changed across decode/encode (-want +got):\n%s", diff)
	}
}

func TestEncodeEmptyCollection(t *testing.T) {
	for _, c := range []Collection{nil, {}} {
		out, err := EncodeCollection(c)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if string(out) != "[]\n" {
			t.Fatalf("expected empty array, got %q", out)
		}
	}
}

func TestDecodeCollectionFormatErrors(t *testing.T) {
	for _, raw := range []string{"", "   ", "null", `{"code":"A1"}`, `[1]`, `[null]`, `[{"code":"A1"}`, `[{"code":"A1"}] x`} {
		_, err := DecodeCollection([]byte(raw))
		if err == nil {
			t.Fatalf("expected error for %q", raw)
		}
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("expected *FormatError for %q, got %T", raw, err)
		}
	}
}

func TestCollectionIndexOfFirstMatch(t *testing.T) {
	c, err := DecodeCollection([]byte(`[{"code":"A1","n":1},{"code":"B2"},{"code":"A1","n":2}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if i := c.IndexOf("A1"); i != 0 {
		t.Fatalf("IndexOf(A1) = %d, want 0", i)
	}
	if i := c.IndexOf("B2"); i != 1 {
		t.Fatalf("IndexOf(B2) = %d, want 1", i)
	}
	if i := c.IndexOf("Z"); i != -1 {
		t.Fatalf("IndexOf(Z) = %d, want -1", i)
	}
}

func TestCollectionCloneAndEqual(t *testing.T) {
	c, _ := DecodeCollection([]byte(sampleDocument))
	cp := c.Clone()
	if !cp.Equal(c) {
		t.Fatalf("clone not equal")
	}
	if err := cp[0].Set("price", 9); err != nil {
		t.Fatalf("set: %v", err)
	}
	if cp.Equal(c) {
		t.Fatalf("clone shares article storage")
	}
	if c.Equal(c[:1]) {
		t.Fatalf("length mismatch must not be equal")
	}
}

func TestErrorPredicates(t *testing.T) {
	read := ReadError(DriverFilesystem, errors.New("boom"))
	write := WriteError(DriverS3, errors.New("boom"))
	if !IsStorage(read, OpRead) || IsStorage(read, OpWrite) || !IsStorage(write, "") {
		t.Fatalf("storage predicates mismatch")
	}
	if !IsValidation(&ValidationError{Missing: []string{"code"}}) || IsValidation(read) {
		t.Fatalf("validation predicate mismatch")
	}
	if !IsNotFound(&NotFoundError{Code: "A1"}) {
		t.Fatalf("not found predicate mismatch")
	}
	if !IsFormat(&FormatError{Err: errors.New("x")}) {
		t.Fatalf("format predicate mismatch")
	}
	if got := (&ValidationError{Missing: []string{"code", "unit"}}).Error(); got != "incomplete article data: missing code, unit" {
		t.Fatalf("unexpected validation message %q", got)
	}
	if got := read.Error(); got != "fs storage read: boom" {
		t.Fatalf("unexpected storage message %q", got)
	}
}
