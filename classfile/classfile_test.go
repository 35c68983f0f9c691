package classfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// richClass exercises most of the structures the parser understands.
func richClass() *testClass {
	c := newTestClass("com/example/Widget")
	c.interfaces = []string{"java/lang/Runnable"}
	p := &c.pool

	answer := p.integer(42)
	big := p.long(1 << 40)
	p.double(0.5)
	greeting := p.str("hello\x00world \U0001F600")
	ioex := p.class("java/io/IOException")
	p.methodref("java/io/PrintStream", "println", "(Ljava/lang/String;)V")

	c.field(AccPublic|AccStatic|AccFinal, "ANSWER", "I",
		c.attr("ConstantValue", u2(answer)))
	c.field(AccPrivate|AccStatic|AccFinal, "BIG", "J",
		c.attr("ConstantValue", u2(big)))
	c.field(AccProtected|AccVolatile, "ratio", "D",
		c.attr("Deprecated", nil),
		c.attr("RuntimeVisibleAnnotations", body(u2(1), u2(p.utf8("Ljava/lang/Deprecated;")), u2(0))))
	c.field(AccPrivate|AccTransient, "names", "[[Ljava/lang/String;",
		c.attr("Signature", u2(p.utf8("[[Ljava/lang/String;"))))

	lnt := c.attr("LineNumberTable", body(u2(2), u2(0), u2(10), u2(4), u2(11)))
	lvt := c.attr("LocalVariableTable", body(u2(2),
		u2(0), u2(6), u2(p.utf8("this")), u2(p.utf8("Lcom/example/Widget;")), u2(0),
		u2(0), u2(6), u2(p.utf8("ratio")), u2(p.utf8("D")), u2(1)))
	// nop x5; return
	code := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0xb1}
	c.method(AccPublic, "<init>", "(D)V",
		c.code(2, 3, code, []ExceptionTableEntry{{StartPC: 0, EndPC: 5, HandlerPC: 5, CatchType: ioex}}, lnt, lvt),
		c.attr("Exceptions", body(u2(1), u2(ioex))))
	c.method(AccPublic|AccAbstract|AccVarargs, "run", "(I[Ljava/lang/String;)V",
		c.attr("MethodParameters", body([]byte{2}, u2(p.utf8("count")), u2(0), u2(p.utf8("args")), u2(0))))
	c.flags |= AccAbstract
	c.method(AccStatic, "<clinit>", "()V",
		c.code(1, 0, []byte{0x12, byte(greeting), 0x57, 0xb1}, nil))

	c.attrs = append(c.attrs,
		c.attr("SourceFile", u2(p.utf8("Widget.java"))),
		c.attr("CustomVendorData", []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}),
		c.attr("InnerClasses", body(u2(1), u2(p.class("com/example/Widget$Part")), u2(p.class("com/example/Widget")), u2(p.utf8("Part")), u2(uint16(AccPublic|AccStatic)))),
	)
	return c
}

func TestParseRoundTrip(t *testing.T) {
	input := richClass().bytes()
	cf, err := ParseBytes(input)
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if got := cf.Bytes(); !bytes.Equal(got, input) {
		t.Fatalf("Bytes() differs from input: got %d bytes, want %d", len(got), len(input))
	}

	var buf bytes.Buffer
	if err := cf.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(buf.Bytes(), input) {
		t.Error("Encode() differs from input")
	}

	again, err := ParseBytes(cf.Bytes())
	if err != nil {
		t.Fatalf("reparse error = %v", err)
	}
	if !bytes.Equal(again.Bytes(), input) {
		t.Error("second round trip differs from input")
	}
}

func TestClassFileLookups(t *testing.T) {
	cf, err := ParseBytes(richClass().bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	t.Run("names", func(t *testing.T) {
		if got := cf.ClassName(); got != "com/example/Widget" {
			t.Errorf("ClassName() = %q", got)
		}
		if got := cf.SuperClassName(); got != "java/lang/Object" {
			t.Errorf("SuperClassName() = %q", got)
		}
		if got := cf.InterfaceNames(); len(got) != 1 || got[0] != "java/lang/Runnable" {
			t.Errorf("InterfaceNames() = %v", got)
		}
		if got := cf.SourceFile(); got != "Widget.java" {
			t.Errorf("SourceFile() = %q", got)
		}
		if got := cf.Version(); got != "52.0" {
			t.Errorf("Version() = %q", got)
		}
	})

	t.Run("kind", func(t *testing.T) {
		if !cf.IsClass() || cf.IsInterface() || cf.IsEnum() || cf.IsAnnotation() || cf.IsModule() {
			t.Errorf("unexpected kind for flags %s", cf.AccessFlags.ClassString())
		}
	})

	t.Run("fields", func(t *testing.T) {
		if len(cf.Fields) != 4 {
			t.Fatalf("len(Fields) = %d, want 4", len(cf.Fields))
		}
		if cf.GetField("ratio") == nil || cf.GetField("missing") != nil {
			t.Error("GetField() lookup mismatch")
		}
	})

	t.Run("methods", func(t *testing.T) {
		if m := cf.GetMethod("<init>", "(D)V"); m == nil || !m.IsConstructor() {
			t.Error("GetMethod(<init>) not found")
		}
		if cf.GetMethod("<init>", "()V") != nil {
			t.Error("GetMethod() matched the wrong descriptor")
		}
		if m := cf.GetMethod("run", ""); m == nil {
			t.Error("GetMethod(run, \"\") not found")
		}
		if got := len(cf.GetMethods("<clinit>")); got != 1 {
			t.Errorf("GetMethods(<clinit>) = %d methods", got)
		}
	})

	t.Run("inner classes", func(t *testing.T) {
		ic := cf.GetAttribute("InnerClasses").AsInnerClasses()
		if ic == nil || len(ic.Classes) != 1 {
			t.Fatalf("InnerClasses = %+v", ic)
		}
		if got := cf.ConstantPool.GetUtf8(ic.Classes[0].InnerNameIndex); got != "Part" {
			t.Errorf("inner name = %q", got)
		}
	})

	t.Run("diagnostics", func(t *testing.T) {
		found := false
		for _, d := range cf.Diagnostics {
			if d.Severity == SeverityDebug && bytes.Contains([]byte(d.Message), []byte("CustomVendorData")) {
				found = true
			}
		}
		if !found {
			t.Errorf("no diagnostic for CustomVendorData in %v", cf.Diagnostics)
		}
		if got := cf.Diagnostics.Filter(SeverityWarning); len(got) != 0 {
			t.Errorf("unexpected warnings: %v", got)
		}
	})
}

func TestUnknownAttributeRoundTrip(t *testing.T) {
	vendor := []byte{0xde, 0xad, 0xbe, 0xef, 0, 1, 2, 3, 4, 5, 6, 7}
	c := newTestClass("Vendor")
	c.attrs = append(c.attrs, c.attr("CustomVendorData", vendor))
	input := c.bytes()

	cf, err := ParseBytes(input)
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	attr := cf.GetAttribute("CustomVendorData")
	unknown := attr.AsUnknown()
	if unknown == nil {
		t.Fatalf("CustomVendorData decoded as %T, want *UnknownAttribute", attr.Attribute)
	}
	if len(unknown.Info) != 12 || !bytes.Equal(unknown.Info, vendor) {
		t.Errorf("Info = %x, want %x", unknown.Info, vendor)
	}
	if !bytes.Equal(cf.Bytes(), input) {
		t.Error("unknown attribute did not reserialize byte-identically")
	}
}

func TestWriteToClassFile(t *testing.T) {
	input := newTestClass("Plain").bytes()
	path := filepath.Join(t.TempDir(), "Plain.class")

	t.Run("denied without write access", func(t *testing.T) {
		cf, err := ParseBytes(input)
		if err != nil {
			t.Fatal(err)
		}
		if err := cf.WriteToClassFile(path); !errors.Is(err, ErrWriteAccessDenied) {
			t.Errorf("WriteToClassFile() error = %v, want ErrWriteAccessDenied", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("file was created without write access")
		}
	})

	t.Run("allowed with write access", func(t *testing.T) {
		cf, err := ParseBytes(input, WithWriteAccess())
		if err != nil {
			t.Fatal(err)
		}
		if !cf.Writable() {
			t.Error("Writable() = false")
		}
		if err := cf.WriteToClassFile(path); err != nil {
			t.Fatalf("WriteToClassFile() error = %v", err)
		}
		written, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(written, input) {
			t.Error("written file differs from input")
		}
		reread, err := ParseFile(path)
		if err != nil {
			t.Fatalf("ParseFile() error = %v", err)
		}
		if reread.ClassName() != "Plain" {
			t.Errorf("ClassName() = %q", reread.ClassName())
		}
	})
}

func TestParseHeaderErrors(t *testing.T) {
	valid := newTestClass("Header").bytes()

	tests := []struct {
		name    string
		input   []byte
		corrupt bool
	}{
		{"bad magic", append([]byte{0xca, 0xfe, 0xba, 0xbf}, valid[4:]...), true},
		{"empty", nil, false},
		{"truncated in pool", valid[:12], false},
		{"truncated before attributes", valid[:len(valid)-1], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes(tt.input)
			if err == nil {
				t.Fatal("ParseBytes() succeeded")
			}
			if got := errors.Is(err, ErrCorruptClassFile); got != tt.corrupt {
				t.Errorf("errors.Is(ErrCorruptClassFile) = %v for %v", got, err)
			}
		})
	}
}

func TestClassFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags AccessFlags
		major uint16
		ok    bool
	}{
		{"plain class", AccPublic | AccSuper, MajorJava8, true},
		{"abstract class", AccPublic | AccAbstract, MajorJava8, true},
		{"final abstract class", AccFinal | AccAbstract, MajorJava8, false},
		{"interface", AccPublic | AccInterface | AccAbstract, MajorJava8, true},
		{"interface without abstract", AccPublic | AccInterface, MajorJava8, false},
		{"java 6 interface without abstract", AccPublic | AccInterface, MajorJava6, false},
		{"java 5 interface without abstract", AccPublic | AccInterface, MajorJava6 - 1, true},
		{"java 5 final interface", AccInterface | AccFinal, MajorJava6 - 1, false},
		{"final interface", AccInterface | AccAbstract | AccFinal, MajorJava8, false},
		{"annotation", AccInterface | AccAbstract | AccAnnotation, MajorJava8, true},
		{"annotation without interface", AccAbstract | AccAnnotation, MajorJava8, false},
		{"enum", AccPublic | AccFinal | AccEnum | AccSuper, MajorJava8, true},
		{"module", AccModule | AccFinal | AccAbstract, MajorJava9, true},
		{"module bit before java 9", AccModule | AccFinal | AccAbstract, MajorJava8, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClass("Flags")
			c.flags = tt.flags
			c.major = tt.major
			if tt.flags.IsInterface() {
				c.method(AccPublic|AccAbstract, "run", "()V")
			}
			_, err := ParseBytes(c.bytes())
			if tt.ok && err != nil {
				t.Errorf("ParseBytes() error = %v", err)
			}
			if !tt.ok {
				var afe *AccessFlagError
				if !errors.As(err, &afe) || afe.Kind != "class" {
					t.Errorf("ParseBytes() error = %v, want class AccessFlagError", err)
				}
			}
		})
	}
}

func TestReservedClassFlagBits(t *testing.T) {
	c := newTestClass("Reserved")
	c.flags |= 0x0100
	cf, err := ParseBytes(c.bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if got := cf.Diagnostics.Filter(SeverityWarning); len(got) != 1 {
		t.Errorf("warnings = %v, want one", got)
	}
}
