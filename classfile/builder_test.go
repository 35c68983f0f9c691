package classfile

import (
	"fmt"
	"math"
)

// This builder writes through the package's own writer and entry
// encoders, so tests can emit any pool entry, raw attribute bodies and
// malformed structures. internal/classtest covers the well-formed classes
// other packages need; it imports classfile, so tests here cannot use it.

// testPool assembles a constant pool. Entries are appended in the order
// they are first requested.
type testPool struct {
	w       writer
	next    uint16
	interns map[string]uint16
}

func (p *testPool) add(key string, slots uint16, enc func(w *writer)) uint16 {
	if p.interns == nil {
		p.interns = make(map[string]uint16)
		p.next = 1
	}
	if idx, ok := p.interns[key]; ok {
		return idx
	}
	idx := p.next
	enc(&p.w)
	p.next += slots
	p.interns[key] = idx
	return idx
}

func (p *testPool) utf8(s string) uint16 {
	return p.add("utf8:"+s, 1, func(w *writer) { NewUtf8(s).encode(w) })
}

func (p *testPool) class(name string) uint16 {
	n := p.utf8(name)
	return p.add("class:"+name, 1, func(w *writer) { (&ConstantClassInfo{NameIndex: n}).encode(w) })
}

func (p *testPool) str(s string) uint16 {
	n := p.utf8(s)
	return p.add("string:"+s, 1, func(w *writer) { (&ConstantStringInfo{StringIndex: n}).encode(w) })
}

func (p *testPool) integer(v int32) uint16 {
	return p.add(fmt.Sprint("int:", v), 1, func(w *writer) { (&ConstantIntegerInfo{Bits: uint32(v)}).encode(w) })
}

func (p *testPool) long(v int64) uint16 {
	return p.add(fmt.Sprint("long:", v), 2, func(w *writer) { (&ConstantLongInfo{Bits: uint64(v)}).encode(w) })
}

func (p *testPool) double(v float64) uint16 {
	bits := math.Float64bits(v)
	return p.add(fmt.Sprint("double:", bits), 2, func(w *writer) { (&ConstantDoubleInfo{Bits: bits}).encode(w) })
}

func (p *testPool) nameAndType(name, desc string) uint16 {
	n, d := p.utf8(name), p.utf8(desc)
	return p.add("nat:"+name+":"+desc, 1, func(w *writer) {
		(&ConstantNameAndTypeInfo{NameIndex: n, DescriptorIndex: d}).encode(w)
	})
}

func (p *testPool) methodref(owner, name, desc string) uint16 {
	c, nt := p.class(owner), p.nameAndType(name, desc)
	return p.add("mref:"+owner+"."+name+desc, 1, func(w *writer) {
		(&ConstantRefInfo{RefTag: ConstantMethodref, ClassIndex: c, NameAndTypeIndex: nt}).encode(w)
	})
}

type testAttr struct {
	name string
	body []byte
}

type testMember struct {
	flags AccessFlags
	name  string
	desc  string
	attrs []testAttr
}

// testClass describes a class file to assemble. Pool indices referenced
// from attribute bodies must be requested from pool before bytes is
// called.
type testClass struct {
	major      uint16
	flags      AccessFlags
	name       string
	super      string
	interfaces []string
	fields     []testMember
	methods    []testMember
	attrs      []testAttr
	pool       testPool
}

func newTestClass(name string) *testClass {
	return &testClass{
		major: MajorJava8,
		flags: AccPublic | AccSuper,
		name:  name,
		super: "java/lang/Object",
	}
}

func (c *testClass) field(flags AccessFlags, name, desc string, attrs ...testAttr) *testClass {
	c.fields = append(c.fields, testMember{flags, name, desc, attrs})
	return c
}

func (c *testClass) method(flags AccessFlags, name, desc string, attrs ...testAttr) *testClass {
	c.methods = append(c.methods, testMember{flags, name, desc, attrs})
	return c
}

func (c *testClass) attr(name string, body []byte) testAttr {
	c.pool.utf8(name)
	return testAttr{name, body}
}

func (c *testClass) encodeAttrs(w *writer, attrs []testAttr) {
	w.u2(uint16(len(attrs)))
	for _, a := range attrs {
		w.u2(c.pool.utf8(a.name))
		w.u4(uint32(len(a.body)))
		w.bytes(a.body)
	}
}

// code builds a Code attribute body.
func (c *testClass) code(maxStack, maxLocals uint16, code []byte, handlers []ExceptionTableEntry, nested ...testAttr) testAttr {
	w := &writer{}
	w.u2(maxStack)
	w.u2(maxLocals)
	w.u4(uint32(len(code)))
	w.bytes(code)
	w.u2(uint16(len(handlers)))
	for _, h := range handlers {
		w.u2(h.StartPC)
		w.u2(h.EndPC)
		w.u2(h.HandlerPC)
		w.u2(h.CatchType)
	}
	c.encodeAttrs(w, nested)
	return c.attr("Code", w.buf)
}

func (c *testClass) bytes() []byte {
	this := c.pool.class(c.name)
	var super uint16
	if c.super != "" {
		super = c.pool.class(c.super)
	}
	ifaces := make([]uint16, len(c.interfaces))
	for i, name := range c.interfaces {
		ifaces[i] = c.pool.class(name)
	}
	intern := func(ms []testMember) {
		for _, m := range ms {
			c.pool.utf8(m.name)
			c.pool.utf8(m.desc)
			for _, a := range m.attrs {
				c.pool.utf8(a.name)
			}
		}
	}
	intern(c.fields)
	intern(c.methods)
	for _, a := range c.attrs {
		c.pool.utf8(a.name)
	}

	w := &writer{}
	w.u4(Magic)
	w.u2(0)
	w.u2(c.major)
	w.u2(c.pool.next)
	w.bytes(c.pool.w.buf)
	w.u2(uint16(c.flags))
	w.u2(this)
	w.u2(super)
	w.u2s(ifaces)
	for _, ms := range [][]testMember{c.fields, c.methods} {
		w.u2(uint16(len(ms)))
		for _, m := range ms {
			w.u2(uint16(m.flags))
			w.u2(c.pool.utf8(m.name))
			w.u2(c.pool.utf8(m.desc))
			c.encodeAttrs(w, m.attrs)
		}
	}
	c.encodeAttrs(w, c.attrs)
	return w.buf
}

func u2(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func body(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
