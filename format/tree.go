package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classkit/classfile"
)

type NodeKind string

const (
	KindClass     NodeKind = "class"
	KindGroup     NodeKind = "group"
	KindConstant  NodeKind = "constant"
	KindField     NodeKind = "field"
	KindMethod    NodeKind = "method"
	KindAttribute NodeKind = "attribute"
	KindCode      NodeKind = "instruction"
)

// Node is one line of the inspection tree. Line is the node's zero-based
// line in the TreeEncoder rendering.
type Node struct {
	Kind     NodeKind
	Label    string
	Detail   string
	Line     int
	Children []*Node
}

func (n *Node) add(kind NodeKind, label, detail string) *Node {
	child := &Node{Kind: kind, Label: label, Detail: detail}
	n.Children = append(n.Children, child)
	return child
}

// Walk calls fn for n and every descendant in rendering order.
func (n *Node) Walk(fn func(n *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns the deepest node rendered on line, or nil.
func (n *Node) Find(line int) *Node {
	var found *Node
	n.Walk(func(c *Node, _ int) {
		if c.Line == line {
			found = c
		}
	})
	return found
}

// Build turns cf into a tree of its constant pool, fields, methods and
// attributes with descriptors shown in source form.
func Build(cf *classfile.ClassFile) *Node {
	cp := cf.ConstantPool
	root := &Node{
		Kind:   KindClass,
		Label:  classfile.InternalToSourceName(cf.ClassName()),
		Detail: strings.TrimSpace(cf.AccessFlags.ClassString() + " version " + cf.Version()),
	}
	if super := cf.SuperClassName(); super != "" {
		root.add(KindGroup, "extends", classfile.InternalToSourceName(super))
	}
	if names := cf.InterfaceNames(); len(names) > 0 {
		ifaces := root.add(KindGroup, "implements", fmt.Sprintf("%d", len(names)))
		for _, name := range names {
			ifaces.add(KindGroup, classfile.InternalToSourceName(name), "")
		}
	}

	pool := root.add(KindGroup, "constant pool", fmt.Sprintf("%d entries", cp.Count()-1))
	for i, entry := range cp {
		if entry == nil {
			continue
		}
		index := uint16(i + 1)
		pool.add(KindConstant, fmt.Sprintf("#%d %s", index, entry.Tag()), cp.Describe(index))
	}

	fields := root.add(KindGroup, "fields", fmt.Sprintf("%d", len(cf.Fields)))
	for _, f := range cf.Fields {
		n := fields.add(KindField, f.Name(), strings.TrimSpace(f.AccessFlags.FieldString()+" "+f.Type().String()))
		addAttributes(n, cp, f.Attributes)
	}

	methods := root.add(KindGroup, "methods", fmt.Sprintf("%d", len(cf.Methods)))
	for _, m := range cf.Methods {
		n := methods.add(KindMethod, m.Name()+m.Descriptor(),
			strings.TrimSpace(m.AccessFlags.MethodString()+" "+classfile.Readable(m.Descriptor())))
		addAttributes(n, cp, m.Attributes)
	}

	addAttributes(root.add(KindGroup, "attributes", fmt.Sprintf("%d", len(cf.Attributes))), cp, cf.Attributes)

	line := 0
	root.Walk(func(n *Node, _ int) {
		n.Line = line
		line++
	})
	return root
}

func addAttributes(parent *Node, cp classfile.ConstantPool, attrs []classfile.AttributeInfo) {
	for i := range attrs {
		a := &attrs[i]
		n := parent.add(KindAttribute, a.Name(), attributeDetail(cp, a.Attribute))
		if code := a.AsCode(); code != nil {
			addCode(n, cp, code)
		}
	}
}

func attributeDetail(cp classfile.ConstantPool, a classfile.Attribute) string {
	switch a := a.(type) {
	case *classfile.ConstantValueAttribute:
		return cp.Describe(a.ConstantValueIndex)
	case *classfile.SourceFileAttribute:
		return cp.GetUtf8(a.SourceFileIndex)
	case *classfile.SignatureAttribute:
		return cp.GetUtf8(a.SignatureIndex)
	case *classfile.CodeAttribute:
		return fmt.Sprintf("max_stack=%d max_locals=%d code_length=%d", a.MaxStack, a.MaxLocals, len(a.Code))
	case *classfile.ExceptionsAttribute:
		names := make([]string, len(a.ExceptionIndexTable))
		for i, idx := range a.ExceptionIndexTable {
			names[i] = classfile.InternalToSourceName(cp.GetClassName(idx))
		}
		return strings.Join(names, ", ")
	case *classfile.LineNumberTableAttribute:
		return fmt.Sprintf("%d entries", len(a.LineNumberTable))
	case *classfile.LocalVariableTableAttribute:
		return fmt.Sprintf("%d entries", len(a.LocalVariableTable))
	case *classfile.InnerClassesAttribute:
		return fmt.Sprintf("%d classes", len(a.Classes))
	case *classfile.AnnotationsAttribute:
		names := make([]string, len(a.Annotations))
		for i := range a.Annotations {
			names[i] = "@" + a.Annotations[i].TypeName(cp)
		}
		return strings.Join(names, " ")
	case *classfile.UnknownAttribute:
		return fmt.Sprintf("%d bytes, not decoded", len(a.Info))
	}
	return ""
}

func addCode(parent *Node, cp classfile.ConstantPool, code *classfile.CodeAttribute) {
	instrs, err := classfile.DecodeInstructions(code.Code)
	if err != nil {
		parent.add(KindCode, "error", err.Error())
	}
	for _, in := range instrs {
		if in == nil {
			continue
		}
		parent.add(KindCode, fmt.Sprintf("%d: %s", in.Offset, in.Mnemonic()), operandDetail(cp, in))
	}
	for _, h := range code.ExceptionTable {
		catch := "any"
		if h.CatchType != 0 {
			catch = classfile.InternalToSourceName(cp.GetClassName(h.CatchType))
		}
		parent.add(KindGroup, "handler", fmt.Sprintf("[%d, %d) -> %d %s", h.StartPC, h.EndPC, h.HandlerPC, catch))
	}
	addAttributes(parent, cp, code.Attributes)
}

// operandDetail resolves constant pool operands and branch targets.
func operandDetail(cp classfile.ConstantPool, in *classfile.Instruction) string {
	if targets := in.BranchTargets(); len(targets) > 0 {
		parts := make([]string, len(targets))
		for i, t := range targets {
			parts[i] = fmt.Sprintf("%d", t)
		}
		return "-> " + strings.Join(parts, ", ")
	}
	switch in.Mnemonic() {
	case "ldc":
		return cp.Describe(uint16(in.U1(0)))
	case "ldc_w", "ldc2_w", "getstatic", "putstatic", "getfield", "putfield",
		"invokevirtual", "invokespecial", "invokestatic", "invokeinterface",
		"invokedynamic", "new", "anewarray", "checkcast", "instanceof", "multianewarray":
		return cp.Describe(in.U2(0))
	}
	return ""
}

type TreeEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(cf *classfile.ClassFile) error {
	e.class = cf
	return encode(e.w, e)
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	Build(e.class).Walk(func(n *Node, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.Label)
		if n.Detail != "" {
			sb.WriteString("  ")
			sb.WriteString(n.Detail)
		}
		sb.WriteByte('\n')
	})
	return []byte(sb.String()), nil
}
