package classfile

import (
	"fmt"
	"math/bits"
)

// Member holds what fields and methods share: flags, name, descriptor and
// attributes. Name and descriptor are resolved and checked when the
// member is read.
type Member struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo

	name       string
	descriptor string
	pool       ConstantPool
}

func (m *Member) Name() string       { return m.name }
func (m *Member) Descriptor() string { return m.descriptor }

func (m *Member) GetAttribute(name string) *AttributeInfo {
	return findAttribute(m.Attributes, name)
}

func (m *Member) IsPublic() bool    { return m.AccessFlags.IsPublic() }
func (m *Member) IsPrivate() bool   { return m.AccessFlags.IsPrivate() }
func (m *Member) IsProtected() bool { return m.AccessFlags.IsProtected() }
func (m *Member) IsStatic() bool    { return m.AccessFlags.IsStatic() }
func (m *Member) IsFinal() bool     { return m.AccessFlags.IsFinal() }

// IsSynthetic reports the ACC_SYNTHETIC flag or a Synthetic attribute.
func (m *Member) IsSynthetic() bool {
	return m.AccessFlags.IsSynthetic() || m.GetAttribute("Synthetic") != nil
}

func (m *Member) IsDeprecated() bool {
	return m.GetAttribute("Deprecated") != nil
}

// Signature returns the generic signature, or "" when there is none.
func (m *Member) Signature() string {
	if sig := m.GetAttribute("Signature").AsSignature(); sig != nil {
		return m.pool.GetUtf8(sig.SignatureIndex)
	}
	return ""
}

// Annotations returns the visible and invisible annotations in
// declaration order.
func (m *Member) Annotations() []Annotation {
	var out []Annotation
	for i := range m.Attributes {
		if a := m.Attributes[i].AsAnnotations(); a != nil {
			out = append(out, a.Annotations...)
		}
	}
	return out
}

func (m *Member) encode(w *writer) {
	w.u2(uint16(m.AccessFlags))
	w.u2(m.NameIndex)
	w.u2(m.DescriptorIndex)
	encodeAttributes(w, m.Attributes)
}

// readMember reads the part of field_info and method_info they have in
// common. kind is "field" or "method" and only shapes messages.
func readMember(r *reader, cf *ClassFile, kind string, ctx attrContext) (Member, error) {
	m := Member{
		AccessFlags:     AccessFlags(r.readU2()),
		NameIndex:       r.readU2(),
		DescriptorIndex: r.readU2(),
		pool:            cf.ConstantPool,
	}
	if r.err != nil {
		return Member{}, r.failure(kind)
	}

	var err error
	if m.name, err = cf.ConstantPool.Utf8(m.NameIndex); err != nil {
		return Member{}, fmt.Errorf("%s name: %w", kind, err)
	}
	if m.descriptor, err = cf.ConstantPool.Utf8(m.DescriptorIndex); err != nil {
		return Member{}, fmt.Errorf("%s %s descriptor: %w", kind, m.name, err)
	}

	location := kind + " " + m.name + ":" + m.descriptor
	if m.Attributes, err = readAttributes(r, cf, ctx, location); err != nil {
		return Member{}, fmt.Errorf("%s %s: %w", kind, m.name, err)
	}
	return m, nil
}

func (m *Member) location(kind string) string {
	return kind + " " + m.name + ":" + m.descriptor
}

func visibilityCount(f AccessFlags) int {
	return bits.OnesCount16(uint16(f & visibilityMask))
}
