package classfile

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestAttributeWrongContext(t *testing.T) {
	c := newTestClass("Context")
	// Code is only defined on methods; on a field it is kept raw.
	c.field(AccPrivate, "f", "I", c.code(1, 1, []byte{0xb1}, nil))
	input := c.bytes()

	cf, err := ParseBytes(input)
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	attr := cf.GetField("f").GetAttribute("Code")
	if attr.AsCode() != nil || attr.AsUnknown() == nil {
		t.Fatalf("Code on a field decoded as %T", attr.Attribute)
	}
	warnings := cf.Diagnostics.Filter(SeverityWarning)
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "not defined on a field") {
		t.Errorf("warnings = %v", warnings)
	}
	if !bytes.Equal(cf.Bytes(), input) {
		t.Error("round trip differs")
	}
}

func TestAttributeBodyLengthMismatch(t *testing.T) {
	tests := []struct {
		name string
		attr func(c *testClass) testAttr
	}{
		{"short ConstantValue", func(c *testClass) testAttr {
			return c.attr("ConstantValue", []byte{0})
		}},
		{"long ConstantValue", func(c *testClass) testAttr {
			return c.attr("ConstantValue", body(u2(c.pool.integer(1)), []byte{0}))
		}},
		{"non-empty Synthetic", func(c *testClass) testAttr {
			return c.attr("Synthetic", []byte{1})
		}},
		{"ConstantValue of wrong tag", func(c *testClass) testAttr {
			return c.attr("ConstantValue", u2(c.pool.utf8("nope")))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClass("Mismatch")
			c.field(AccStatic, "f", "I", tt.attr(c))
			_, err := ParseBytes(c.bytes())
			if !errors.Is(err, ErrCorruptClassFile) {
				t.Errorf("ParseBytes() error = %v, want ErrCorruptClassFile", err)
			}
		})
	}
}

func TestCodeAttributeValidation(t *testing.T) {
	tests := []struct {
		name     string
		code     []byte
		handlers []ExceptionTableEntry
	}{
		{"empty code", nil, nil},
		{"empty range", []byte{0, 0xb1}, []ExceptionTableEntry{{StartPC: 1, EndPC: 1, HandlerPC: 0}}},
		{"range past end", []byte{0, 0xb1}, []ExceptionTableEntry{{StartPC: 0, EndPC: 3, HandlerPC: 0}}},
		{"handler past end", []byte{0, 0xb1}, []ExceptionTableEntry{{StartPC: 0, EndPC: 1, HandlerPC: 2}}},
		{"catch type not a class", []byte{0, 0xb1}, []ExceptionTableEntry{{StartPC: 0, EndPC: 1, HandlerPC: 1, CatchType: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClass("Code")
			c.pool.utf8("first")
			c.method(AccStatic, "m", "()V", c.code(1, 1, tt.code, tt.handlers))
			_, err := ParseBytes(c.bytes())
			if !errors.Is(err, ErrCorruptClassFile) {
				t.Errorf("ParseBytes() error = %v, want ErrCorruptClassFile", err)
			}
		})
	}
}

func TestCodeLengthBeyondBody(t *testing.T) {
	c := newTestClass("Overflow")
	w := &writer{}
	w.u2(1)
	w.u2(1)
	w.u4(1000)
	w.bytes([]byte{0xb1})
	c.method(AccStatic, "m", "()V", c.attr("Code", w.buf))
	_, err := ParseBytes(c.bytes())
	if !errors.Is(err, ErrCorruptClassFile) {
		t.Errorf("ParseBytes() error = %v, want ErrCorruptClassFile", err)
	}
}

func TestAnnotationElementValues(t *testing.T) {
	c := newTestClass("Annotated")
	p := &c.pool
	ann := body(
		u2(1),
		u2(p.utf8("Lcom/example/Marker;")),
		u2(5),
		u2(p.utf8("count")), []byte{'I'}, u2(p.integer(3)),
		u2(p.utf8("label")), []byte{'s'}, u2(p.utf8("x")),
		u2(p.utf8("kind")), []byte{'e'}, u2(p.utf8("Lcom/example/Kind;")), u2(p.utf8("FAST")),
		u2(p.utf8("type")), []byte{'c'}, u2(p.utf8("Ljava/lang/String;")),
		u2(p.utf8("tags")), []byte{'['}, u2(2),
		[]byte{'@'}, u2(p.utf8("Lcom/example/Tag;")), u2(0),
		[]byte{'Z'}, u2(p.integer(1)),
	)
	c.attrs = append(c.attrs, c.attr("RuntimeInvisibleAnnotations", ann))
	c.method(AccAbstract|AccPublic, "value", "()I",
		c.attr("AnnotationDefault", body([]byte{'I'}, u2(p.integer(3)))),
		c.attr("RuntimeVisibleParameterAnnotations", []byte{0}))
	c.flags |= AccAbstract
	input := c.bytes()

	cf, err := ParseBytes(input)
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	a := cf.GetAttribute("RuntimeInvisibleAnnotations").AsAnnotations()
	if a == nil || a.Visible || len(a.Annotations) != 1 {
		t.Fatalf("annotations = %+v", a)
	}
	pairs := a.Annotations[0].ElementValuePairs
	if len(pairs) != 5 {
		t.Fatalf("len(pairs) = %d", len(pairs))
	}
	wantTags := []byte{'I', 's', 'e', 'c', '['}
	for i, p := range pairs {
		if p.Value.ElementTag() != wantTags[i] {
			t.Errorf("pair %d tag = %q, want %q", i, p.Value.ElementTag(), wantTags[i])
		}
	}
	arr := pairs[4].Value.(*ArrayValue)
	if _, ok := arr.Values[0].(*AnnotationValue); !ok || len(arr.Values) != 2 {
		t.Errorf("array values = %+v", arr.Values)
	}

	m := cf.GetMethod("value", "()I")
	if def, ok := m.GetAttribute("AnnotationDefault").Attribute.(*AnnotationDefaultAttribute); !ok || def.DefaultValue.ElementTag() != 'I' {
		t.Errorf("AnnotationDefault = %+v", m.GetAttribute("AnnotationDefault"))
	}
	if !bytes.Equal(cf.Bytes(), input) {
		t.Error("round trip differs")
	}
}

func TestUnknownElementValueTag(t *testing.T) {
	c := newTestClass("BadTag")
	ann := body(u2(1), u2(c.pool.utf8("LMarker;")), u2(1), u2(c.pool.utf8("v")), []byte{'?'}, u2(0))
	c.attrs = append(c.attrs, c.attr("RuntimeVisibleAnnotations", ann))
	_, err := ParseBytes(c.bytes())
	if !errors.Is(err, ErrCorruptClassFile) {
		t.Errorf("ParseBytes() error = %v, want ErrCorruptClassFile", err)
	}
}

func TestLineNumberTableLineFor(t *testing.T) {
	lnt := &LineNumberTableAttribute{LineNumberTable: []LineNumberEntry{
		{StartPC: 0, LineNumber: 10},
		{StartPC: 8, LineNumber: 12},
		{StartPC: 4, LineNumber: 11},
	}}
	for pc, want := range map[uint16]uint16{0: 10, 3: 10, 4: 11, 7: 11, 8: 12, 100: 12} {
		if got := lnt.LineFor(pc); got != want {
			t.Errorf("LineFor(%d) = %d, want %d", pc, got, want)
		}
	}
}

func TestClassLevelAttributes(t *testing.T) {
	c := newTestClass("Outer$Inner")
	p := &c.pool
	c.attrs = append(c.attrs,
		c.attr("EnclosingMethod", body(u2(p.class("Outer")), u2(0))),
		c.attr("NestHost", u2(p.class("Outer"))),
		c.attr("SourceDebugExtension", []byte("SMAP\nInner.kt\n")),
		c.attr("Signature", u2(p.utf8("Ljava/lang/Object;"))),
		c.attr("BootstrapMethods", u2(0)),
	)
	input := c.bytes()
	cf, err := ParseBytes(input)
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if got := cf.Signature(); got != "Ljava/lang/Object;" {
		t.Errorf("Signature() = %q", got)
	}
	sde, ok := cf.GetAttribute("SourceDebugExtension").Attribute.(*SourceDebugExtensionAttribute)
	if !ok || string(sde.DebugExtension) != "SMAP\nInner.kt\n" {
		t.Errorf("SourceDebugExtension = %+v", cf.GetAttribute("SourceDebugExtension"))
	}
	if cf.GetAttribute("BootstrapMethods").AsBootstrapMethods() == nil {
		t.Error("BootstrapMethods not decoded")
	}
	if len(cf.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %v", cf.Diagnostics)
	}
	if !bytes.Equal(cf.Bytes(), input) {
		t.Error("round trip differs")
	}
}

func TestAttributeAsNil(t *testing.T) {
	var missing *AttributeInfo
	if missing.AsCode() != nil || missing.AsSourceFile() != nil || missing.AsUnknown() != nil {
		t.Error("As* on nil attribute returned non-nil")
	}
	if missing.Name() != "" {
		t.Error("Name() on nil attribute")
	}
	sf := &AttributeInfo{Attribute: &SourceFileAttribute{}}
	if sf.AsCode() != nil {
		t.Error("AsCode() on SourceFile returned non-nil")
	}
}
