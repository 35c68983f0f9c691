package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dhamidi/classkit/classfile"
	"github.com/dhamidi/classkit/internal/classtest"
)

func pointClass(t *testing.T) *classfile.ClassFile {
	t.Helper()
	c := classtest.New("com/example/Point")
	c.Interfaces = []string{"java/io/Serializable"}
	c.SourceFile = "Point.java"
	c.Field(classfile.AccPrivate|classfile.AccFinal, "x", "I")
	// iload_0; i2l; lload_1; ladd; lreturn
	c.Method(classfile.AccPublic|classfile.AccStatic, "sum", "(IJ)J", 0x1a, 0x85, 0x1f, 0x61, 0xad)
	cf, err := classfile.ParseBytes(c.Bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	return cf
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewLineEncoder(&buf).Encode(pointClass(t)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := "class\tcom.example.Point\tpublic,super\t52.0\n" +
		"field\tx\tint\tprivate,final\n" +
		"method\tsum\tlong\tint,long\tpublic,static\n"
	if got := buf.String(); got != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", got, want)
	}
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(pointClass(t)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	var got jsonClass
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.Name != "com.example.Point" || got.SuperClass != "java.lang.Object" || got.SourceFile != "Point.java" {
		t.Errorf("class = %+v", got)
	}
	if len(got.Interfaces) != 1 || got.Interfaces[0] != "java.io.Serializable" {
		t.Errorf("Interfaces = %v", got.Interfaces)
	}
	if len(got.Methods) != 1 {
		t.Fatalf("Methods = %+v", got.Methods)
	}
	sum := got.Methods[0]
	if sum.CodeLength != 5 || sum.ReturnType != "long" {
		t.Errorf("sum = %+v", sum)
	}
	wantParams := []jsonParameter{{Name: "arg0", Type: "int", Slot: 0}, {Name: "arg1", Type: "long", Slot: 1}}
	if len(sum.Parameters) != 2 || sum.Parameters[0] != wantParams[0] || sum.Parameters[1] != wantParams[1] {
		t.Errorf("Parameters = %+v, want %+v", sum.Parameters, wantParams)
	}
	if len(got.Constants) == 0 || got.Constants[0].Index != 1 {
		t.Errorf("Constants = %+v", got.Constants)
	}
}

func TestTreeEncoder(t *testing.T) {
	cf := pointClass(t)
	var buf bytes.Buffer
	if err := NewTreeEncoder(&buf).Encode(cf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if lines[0] != "com.example.Point  public super version 52.0" {
		t.Errorf("first line = %q", lines[0])
	}
	for _, want := range []string{
		"  extends  java.lang.Object",
		"    x  private final int",
		"    sum(IJ)J  public static (int, long) long",
		"        3: ladd",
		"    SourceFile  Point.java",
	} {
		if !containsLine(lines, want) {
			t.Errorf("output lacks line %q:\n%s", want, buf.String())
		}
	}

	root := Build(cf)
	count := 0
	root.Walk(func(n *Node, _ int) { count++ })
	if count != len(lines) {
		t.Errorf("tree has %d nodes, rendering has %d lines", count, len(lines))
	}
	root.Walk(func(n *Node, _ int) {
		if !strings.HasPrefix(strings.TrimLeft(lines[n.Line], " "), n.Label) {
			t.Errorf("node %q is not on line %d: %q", n.Label, n.Line, lines[n.Line])
		}
	})
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func TestFind(t *testing.T) {
	root := Build(pointClass(t))
	var sum *Node
	root.Walk(func(n *Node, _ int) {
		if n.Kind == KindMethod {
			sum = n
		}
	})
	if sum == nil {
		t.Fatal("no method node")
	}
	if got := root.Find(sum.Line); got != sum {
		t.Errorf("Find(%d) = %+v", sum.Line, got)
	}
	if root.Find(-1) != nil {
		t.Error("Find(-1) returned a node")
	}
}

func TestNewEncoder(t *testing.T) {
	for _, name := range Names {
		if _, err := NewEncoder(name, &bytes.Buffer{}); err != nil {
			t.Errorf("NewEncoder(%q) error = %v", name, err)
		}
	}
	if _, err := NewEncoder("java", &bytes.Buffer{}); err == nil {
		t.Error("NewEncoder(java) succeeded")
	}
}

func TestUnknownAttributeDetail(t *testing.T) {
	detail := attributeDetail(nil, &classfile.UnknownAttribute{Name: "Vendor", Info: make([]byte, 12)})
	if detail != "12 bytes, not decoded" {
		t.Errorf("detail = %q", detail)
	}
}
