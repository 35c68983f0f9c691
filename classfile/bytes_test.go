package classfile

import (
	"bytes"
	"errors"
	"testing"
)

func TestModifiedUtf8(t *testing.T) {
	tests := []struct {
		name string
		s    string
		raw  []byte
	}{
		{"ascii", "abc", []byte("abc")},
		{"nul", "a\x00b", []byte{'a', 0xC0, 0x80, 'b'}},
		{"two byte", "é", []byte{0xC3, 0xA9}},
		{"three byte", "€", []byte{0xE2, 0x82, 0xAC}},
		{"supplementary", "\U0001F600", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encodeModifiedUtf8(tt.s); !bytes.Equal(got, tt.raw) {
				t.Errorf("encodeModifiedUtf8(%q) = % x, want % x", tt.s, got, tt.raw)
			}
			if got := decodeModifiedUtf8(tt.raw); got != tt.s {
				t.Errorf("decodeModifiedUtf8(% x) = %q, want %q", tt.raw, got, tt.s)
			}
		})
	}
}

func TestUtf8KeepsRawBytes(t *testing.T) {
	// A lone surrogate cannot be represented in a Go string; the raw
	// bytes must still be written back unchanged.
	raw := []byte{'x', 0xED, 0xA0, 0x80}
	c := newTestClass("Raw")
	c.pool.add("lone", 1, func(w *writer) {
		(&ConstantUtf8Info{Raw: raw}).encode(w)
	})
	input := c.bytes()
	cf, err := ParseBytes(input)
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if u := cf.ConstantPool[0].(*ConstantUtf8Info); !bytes.Equal(u.Raw, raw) {
		t.Errorf("Raw = % x", u.Raw)
	}
	if !bytes.Equal(cf.Bytes(), input) {
		t.Error("round trip differs")
	}
}

func TestReaderFailure(t *testing.T) {
	body := newBodyReader([]byte{1})
	body.readU2()
	if err := body.finish("Test"); !errors.Is(err, ErrCorruptClassFile) {
		t.Errorf("truncated body finish() = %v, want ErrCorruptClassFile", err)
	}

	trailing := newBodyReader([]byte{0, 1, 2})
	if v := trailing.readU2(); v != 1 {
		t.Fatalf("readU2() = %d", v)
	}
	if err := trailing.finish("Test"); !errors.Is(err, ErrCorruptClassFile) {
		t.Errorf("trailing finish() = %v, want ErrCorruptClassFile", err)
	}

	file := &reader{r: bytes.NewReader([]byte{0})}
	file.readU4()
	if err := file.failure("magic"); err == nil || errors.Is(err, ErrCorruptClassFile) {
		t.Errorf("file failure() = %v, want an I/O error", err)
	}
}

func TestReadLargeBytes(t *testing.T) {
	data := bytes.Repeat([]byte{7}, largeRead+10)
	r := &reader{r: bytes.NewReader(data)}
	if got := r.readBytes(len(data)); r.err != nil || len(got) != len(data) {
		t.Fatalf("readBytes() = %d bytes, err %v", len(got), r.err)
	}

	short := &reader{r: bytes.NewReader(data)}
	short.readBytes(len(data) + 1)
	if short.err == nil {
		t.Error("readBytes() past the end did not fail")
	}
}
