// Package classtest assembles small, well-formed class files for tests
// outside the classfile package. Tests inside classfile use their own
// builder, which can also produce corrupt input.
package classtest

import (
	"encoding/binary"

	"github.com/dhamidi/classkit/classfile"
)

type Member struct {
	Flags      classfile.AccessFlags
	Name       string
	Descriptor string

	// Code, when set, becomes a Code attribute with the given limits.
	Code      []byte
	MaxStack  uint16
	MaxLocals uint16
}

type Class struct {
	Name       string
	Super      string
	Flags      classfile.AccessFlags
	Major      uint16
	Interfaces []string
	Fields     []Member
	Methods    []Member
	SourceFile string

	pool    []byte
	next    uint16
	interns map[string]uint16
}

// New returns a public class extending java/lang/Object at Java 8.
func New(name string) *Class {
	return &Class{
		Name:  name,
		Super: "java/lang/Object",
		Flags: classfile.AccPublic | classfile.AccSuper,
		Major: classfile.MajorJava8,
	}
}

func (c *Class) Field(flags classfile.AccessFlags, name, desc string) *Class {
	c.Fields = append(c.Fields, Member{Flags: flags, Name: name, Descriptor: desc})
	return c
}

func (c *Class) Method(flags classfile.AccessFlags, name, desc string, code ...byte) *Class {
	m := Member{Flags: flags, Name: name, Descriptor: desc}
	if len(code) > 0 {
		m.Code, m.MaxStack, m.MaxLocals = code, 4, 8
	}
	c.Methods = append(c.Methods, m)
	return c
}

func (c *Class) intern(key string, enc func() []byte) uint16 {
	if c.interns == nil {
		c.interns = make(map[string]uint16)
		c.next = 1
	}
	if idx, ok := c.interns[key]; ok {
		return idx
	}
	c.pool = append(c.pool, enc()...)
	idx := c.next
	c.next++
	c.interns[key] = idx
	return idx
}

func (c *Class) utf8(s string) uint16 {
	return c.intern("utf8:"+s, func() []byte {
		b := []byte{byte(classfile.ConstantUtf8)}
		b = binary.BigEndian.AppendUint16(b, uint16(len(s)))
		return append(b, s...)
	})
}

func (c *Class) class(name string) uint16 {
	n := c.utf8(name)
	return c.intern("class:"+name, func() []byte {
		return binary.BigEndian.AppendUint16([]byte{byte(classfile.ConstantClass)}, n)
	})
}

// Bytes encodes the class, rebuilding its constant pool.
func (c *Class) Bytes() []byte {
	c.interns, c.pool = nil, nil
	this := c.class(c.Name)
	var super uint16
	if c.Super != "" {
		super = c.class(c.Super)
	}

	var tail []byte
	u2 := func(v uint16) { tail = binary.BigEndian.AppendUint16(tail, v) }
	u4 := func(v uint32) { tail = binary.BigEndian.AppendUint32(tail, v) }

	u2(uint16(c.Flags))
	u2(this)
	u2(super)
	u2(uint16(len(c.Interfaces)))
	for _, name := range c.Interfaces {
		u2(c.class(name))
	}
	for _, members := range [][]Member{c.Fields, c.Methods} {
		u2(uint16(len(members)))
		for _, m := range members {
			u2(uint16(m.Flags))
			u2(c.utf8(m.Name))
			u2(c.utf8(m.Descriptor))
			if m.Code == nil {
				u2(0)
				continue
			}
			u2(1)
			u2(c.utf8("Code"))
			u4(uint32(12 + len(m.Code)))
			u2(m.MaxStack)
			u2(m.MaxLocals)
			u4(uint32(len(m.Code)))
			tail = append(tail, m.Code...)
			u2(0) // exception table
			u2(0) // attributes
		}
	}
	if c.SourceFile != "" {
		u2(1)
		u2(c.utf8("SourceFile"))
		u4(2)
		u2(c.utf8(c.SourceFile))
	} else {
		u2(0)
	}

	var out []byte
	out = binary.BigEndian.AppendUint32(out, classfile.Magic)
	out = binary.BigEndian.AppendUint16(out, 0)
	out = binary.BigEndian.AppendUint16(out, c.Major)
	out = binary.BigEndian.AppendUint16(out, c.next)
	out = append(out, c.pool...)
	return append(out, tail...)
}
