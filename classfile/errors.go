package classfile

import (
	"errors"
	"fmt"
)

var (
	ErrCorruptClassFile             = errors.New("corrupt class file")
	ErrIllegalAccessFlagCombination = errors.New("illegal access flag combination")
	ErrWriteAccessDenied            = errors.New("class file opened without write access")
	ErrNoCode                       = errors.New("method has no Code attribute")
)

// FormatError reports a structural violation of the class file format:
// a bad constant pool index, an unexpected tag, an attribute whose body
// does not match its declared length.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "corrupt class file: " + e.Reason
}

func (e *FormatError) Unwrap() error { return ErrCorruptClassFile }

func corruptf(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// AccessFlagError reports a member or class whose access flags break one
// of the JVM rules on legal flag combinations.
type AccessFlagError struct {
	Kind   string // "class", "field" or "method"
	Name   string
	Flags  AccessFlags
	Reason string
}

func (e *AccessFlagError) Error() string {
	return fmt.Sprintf("illegal access flags 0x%04X on %s %s: %s", uint16(e.Flags), e.Kind, e.Name, e.Reason)
}

func (e *AccessFlagError) Unwrap() error { return ErrIllegalAccessFlagCombination }
