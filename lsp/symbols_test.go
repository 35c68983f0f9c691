package lsp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/classkit/classfile"
	"github.com/dhamidi/classkit/classpath"
	"github.com/dhamidi/classkit/format"
	"github.com/dhamidi/classkit/internal/classtest"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func counterClass() *classtest.Class {
	c := classtest.New("com/example/Counter")
	c.Field(classfile.AccPrivate, "count", "J")
	// lload_1; lreturn
	c.Method(classfile.AccPublic, "add", "(JI)J", 0x1f, 0xad)
	return c
}

func parseCounter(t *testing.T) *classfile.ClassFile {
	t.Helper()
	cf, err := classfile.ParseBytes(counterClass().Bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	return cf
}

func TestDocumentSymbol(t *testing.T) {
	root := format.Build(parseCounter(t))
	sym := documentSymbol(root)

	if sym.Name != "com.example.Counter" || sym.Kind != protocol.SymbolKindClass {
		t.Errorf("root symbol = %s (%d)", sym.Name, sym.Kind)
	}
	lines := 0
	root.Walk(func(*format.Node, int) { lines++ })
	if got := int(sym.Range.End.Line); got != lines {
		t.Errorf("root range ends at %d, want %d", got, lines)
	}

	var check func(s protocol.DocumentSymbol)
	check = func(s protocol.DocumentSymbol) {
		if s.SelectionRange.Start.Line < s.Range.Start.Line || s.SelectionRange.End.Line > s.Range.End.Line {
			t.Errorf("%s: selection %v outside range %v", s.Name, s.SelectionRange, s.Range)
		}
		for _, c := range s.Children {
			if c.Range.Start.Line < s.Range.Start.Line || c.Range.End.Line > s.Range.End.Line {
				t.Errorf("%s: child %s range %v outside %v", s.Name, c.Name, c.Range, s.Range)
			}
			check(c)
		}
	}
	check(sym)
}

func TestHoverText(t *testing.T) {
	cf := parseCounter(t)
	root := format.Build(cf)

	var method, field *format.Node
	root.Walk(func(n *format.Node, _ int) {
		switch n.Kind {
		case format.KindMethod:
			method = n
		case format.KindField:
			field = n
		}
	})

	text := hoverText(cf, method)
	for _, want := range []string{"**add(JI)J**", "| arg0 | long | 1 |", "| arg1 | int | 3 |", "max_locals 8"} {
		if !strings.Contains(text, want) {
			t.Errorf("method hover lacks %q:\n%s", want, text)
		}
	}
	if got := hoverText(cf, field); got != "**count**\n\n`private long`" {
		t.Errorf("field hover = %q", got)
	}
}

func TestClassSymbols(t *testing.T) {
	names := []string{"com/example/Counter", "com/example/Point", "Main"}

	got := classSymbols(names, "POINT", 10)
	if len(got) != 1 || got[0].Name != "com.example.Point" || got[0].Location.URI != "classkit:com/example/Point" {
		t.Fatalf("classSymbols(POINT) = %+v", got)
	}
	if got[0].ContainerName == nil || *got[0].ContainerName != "com.example" {
		t.Errorf("ContainerName = %v", got[0].ContainerName)
	}

	all := classSymbols(names, "", 10)
	if len(all) != 3 || all[2].ContainerName != nil {
		t.Errorf("classSymbols(\"\") = %+v", all)
	}
	if limited := classSymbols(names, "", 2); len(limited) != 2 {
		t.Errorf("limit ignored: %d symbols", len(limited))
	}
}

func TestServerDocuments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "com", "example", "Counter.class")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, counterClass().Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	loader, err := classpath.New([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	defer loader.Close()

	s := NewServer("test", loader)
	for _, uri := range []string{"file://" + path, "classkit:com/example/Counter"} {
		doc, err := s.document(uri)
		if err != nil {
			t.Fatalf("document(%q) error = %v", uri, err)
		}
		if doc.class.ClassName() != "com/example/Counter" {
			t.Errorf("%s: class %s", uri, doc.class.ClassName())
		}
		again, _ := s.document(uri)
		if again != doc {
			t.Errorf("%s: document parsed twice", uri)
		}
	}

	if _, err := s.document("file://" + filepath.Join(dir, "Counter.java")); err == nil {
		t.Error("document() accepted a non-class file")
	}
	if _, err := NewServer("test", nil).document("classkit:java/lang/Object"); err == nil {
		t.Error("document() resolved a classkit: URI without a classpath")
	}
}

func TestURIToPath(t *testing.T) {
	got, err := uriToPath("file:///tmp/a%20b/C.class")
	if err != nil || got != "/tmp/a b/C.class" {
		t.Errorf("uriToPath() = %q, %v", got, err)
	}
}
