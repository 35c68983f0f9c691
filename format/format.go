// Package format renders a parsed class file for people and tools.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/classkit/classfile"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(cf *classfile.ClassFile) error
}

// Names lists the formats accepted by NewEncoder.
var Names = []string{"line", "json", "tree"}

func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "line":
		return NewLineEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "tree":
		return NewTreeEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format: %s (expected line, json, or tree)", name)
}

func encode(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
