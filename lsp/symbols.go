package lsp

import (
	"fmt"
	"strings"

	"github.com/dhamidi/classkit/classfile"
	"github.com/dhamidi/classkit/format"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func symbolKind(k format.NodeKind) protocol.SymbolKind {
	switch k {
	case format.KindClass:
		return protocol.SymbolKindClass
	case format.KindField:
		return protocol.SymbolKindField
	case format.KindMethod:
		return protocol.SymbolKindMethod
	case format.KindConstant:
		return protocol.SymbolKindConstant
	case format.KindAttribute:
		return protocol.SymbolKindProperty
	case format.KindCode:
		return protocol.SymbolKindOperator
	default:
		return protocol.SymbolKindNamespace
	}
}

// lineRange covers the whole rendered line of n.
func lineRange(n *format.Node) protocol.Range {
	line := protocol.UInteger(n.Line)
	return protocol.Range{
		Start: protocol.Position{Line: line},
		End:   protocol.Position{Line: line + 1},
	}
}

// documentSymbol mirrors the tree rooted at n. A symbol's range spans the
// lines of its whole subtree.
func documentSymbol(n *format.Node) protocol.DocumentSymbol {
	sym := protocol.DocumentSymbol{
		Name:           n.Label,
		Kind:           symbolKind(n.Kind),
		SelectionRange: lineRange(n),
	}
	if n.Detail != "" {
		detail := n.Detail
		sym.Detail = &detail
	}
	last := n.Line
	for _, c := range n.Children {
		child := documentSymbol(c)
		sym.Children = append(sym.Children, child)
		last = max(last, int(child.Range.End.Line)-1)
	}
	sym.Range = protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(n.Line)},
		End:   protocol.Position{Line: protocol.UInteger(last + 1)},
	}
	return sym
}

// hoverText describes n in Markdown. Methods additionally show their
// parameter to local-variable slot mapping.
func hoverText(cf *classfile.ClassFile, n *format.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**", n.Label)
	if n.Detail != "" {
		fmt.Fprintf(&sb, "\n\n`%s`", n.Detail)
	}
	if n.Kind != format.KindMethod {
		return sb.String()
	}
	m := methodForLabel(cf, n.Label)
	if m == nil {
		return sb.String()
	}
	names := m.ParameterNames()
	types := m.ParameterTypeNames()
	if len(types) > 0 {
		sb.WriteString("\n\n| parameter | type | slot |\n|---|---|---|")
		for i := range types {
			fmt.Fprintf(&sb, "\n| %s | %s | %d |", names[i], types[i], m.LocalSlot(i))
		}
	}
	if code := m.Code(); code != nil {
		fmt.Fprintf(&sb, "\n\nmax_stack %d, max_locals %d, %d bytes of code", code.MaxStack, code.MaxLocals, len(code.Code))
	}
	if ex := m.ExceptionTypes(); len(ex) > 0 {
		fmt.Fprintf(&sb, "\n\nthrows %s", classfile.InternalToSourceName(strings.Join(ex, ", ")))
	}
	return sb.String()
}

// methodForLabel finds the method a tree label (name followed by
// descriptor) was rendered from.
func methodForLabel(cf *classfile.ClassFile, label string) *classfile.MethodInfo {
	i := strings.IndexByte(label, '(')
	if i < 0 {
		return nil
	}
	return cf.GetMethod(label[:i], label[i:])
}

// classSymbols returns up to limit classes whose source name contains
// query, ignoring case. Each points at the class's classkit: URI.
func classSymbols(names []string, query string, limit int) []protocol.SymbolInformation {
	query = strings.ToLower(query)
	var out []protocol.SymbolInformation
	for _, name := range names {
		source := classfile.InternalToSourceName(name)
		if !strings.Contains(strings.ToLower(source), query) {
			continue
		}
		sym := protocol.SymbolInformation{
			Name: source,
			Kind: protocol.SymbolKindClass,
			Location: protocol.Location{
				URI:   classScheme + name,
				Range: protocol.Range{},
			},
		}
		if i := strings.LastIndexByte(source, '.'); i > 0 {
			pkg := source[:i]
			sym.ContainerName = &pkg
		}
		out = append(out, sym)
		if len(out) == limit {
			break
		}
	}
	return out
}
