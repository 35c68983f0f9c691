package classfile

import (
	"fmt"
	"math"
	"strings"
)

type ConstantPoolEntry interface {
	Tag() ConstantTag
	encode(w *writer)
}

type ConstantUtf8Info struct {
	// Raw holds the modified UTF-8 bytes exactly as stored in the file.
	Raw   []byte
	Value string
}

func NewUtf8(s string) *ConstantUtf8Info {
	return &ConstantUtf8Info{Raw: encodeModifiedUtf8(s), Value: s}
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }
func (c *ConstantUtf8Info) encode(w *writer) {
	w.u1(uint8(ConstantUtf8))
	w.u2(uint16(len(c.Raw)))
	w.bytes(c.Raw)
}

type ConstantIntegerInfo struct {
	Bits uint32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }
func (c *ConstantIntegerInfo) Value() int32     { return int32(c.Bits) }
func (c *ConstantIntegerInfo) encode(w *writer) {
	w.u1(uint8(ConstantInteger))
	w.u4(c.Bits)
}

type ConstantFloatInfo struct {
	Bits uint32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }
func (c *ConstantFloatInfo) Value() float32   { return math.Float32frombits(c.Bits) }
func (c *ConstantFloatInfo) encode(w *writer) {
	w.u1(uint8(ConstantFloat))
	w.u4(c.Bits)
}

type ConstantLongInfo struct {
	Bits uint64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }
func (c *ConstantLongInfo) Value() int64     { return int64(c.Bits) }
func (c *ConstantLongInfo) encode(w *writer) {
	w.u1(uint8(ConstantLong))
	w.u4(uint32(c.Bits >> 32))
	w.u4(uint32(c.Bits))
}

type ConstantDoubleInfo struct {
	Bits uint64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }
func (c *ConstantDoubleInfo) Value() float64   { return math.Float64frombits(c.Bits) }
func (c *ConstantDoubleInfo) encode(w *writer) {
	w.u1(uint8(ConstantDouble))
	w.u4(uint32(c.Bits >> 32))
	w.u4(uint32(c.Bits))
}

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }
func (c *ConstantClassInfo) encode(w *writer) {
	w.u1(uint8(ConstantClass))
	w.u2(c.NameIndex)
}

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }
func (c *ConstantStringInfo) encode(w *writer) {
	w.u1(uint8(ConstantString))
	w.u2(c.StringIndex)
}

// ConstantRefInfo is the shared shape of Fieldref, Methodref and
// InterfaceMethodref entries.
type ConstantRefInfo struct {
	RefTag           ConstantTag
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantRefInfo) Tag() ConstantTag { return c.RefTag }
func (c *ConstantRefInfo) encode(w *writer) {
	w.u1(uint8(c.RefTag))
	w.u2(c.ClassIndex)
	w.u2(c.NameAndTypeIndex)
}

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }
func (c *ConstantNameAndTypeInfo) encode(w *writer) {
	w.u1(uint8(ConstantNameAndType))
	w.u2(c.NameIndex)
	w.u2(c.DescriptorIndex)
}

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }
func (c *ConstantMethodHandleInfo) encode(w *writer) {
	w.u1(uint8(ConstantMethodHandle))
	w.u1(uint8(c.ReferenceKind))
	w.u2(c.ReferenceIndex)
}

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }
func (c *ConstantMethodTypeInfo) encode(w *writer) {
	w.u1(uint8(ConstantMethodType))
	w.u2(c.DescriptorIndex)
}

// ConstantDynamicInfo covers both Dynamic and InvokeDynamic entries.
type ConstantDynamicInfo struct {
	DynTag                   ConstantTag
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamicInfo) Tag() ConstantTag { return c.DynTag }
func (c *ConstantDynamicInfo) encode(w *writer) {
	w.u1(uint8(c.DynTag))
	w.u2(c.BootstrapMethodAttrIndex)
	w.u2(c.NameAndTypeIndex)
}

// ConstantNamedInfo covers Module and Package entries.
type ConstantNamedInfo struct {
	NamedTag  ConstantTag
	NameIndex uint16
}

func (c *ConstantNamedInfo) Tag() ConstantTag { return c.NamedTag }
func (c *ConstantNamedInfo) encode(w *writer) {
	w.u1(uint8(c.NamedTag))
	w.u2(c.NameIndex)
}

// ConstantPool is addressed 1-based: index i lives at cp[i-1]. The slot
// after a Long or Double entry is nil.
type ConstantPool []ConstantPoolEntry

// Count is constant_pool_count as stored in the class file.
func (cp ConstantPool) Count() int {
	return len(cp) + 1
}

// Resolve returns the entry at index, rejecting index 0, out of range
// indices and the unusable slot following a Long or Double.
func (cp ConstantPool) Resolve(index uint16) (ConstantPoolEntry, error) {
	if index == 0 || int(index) >= cp.Count() {
		return nil, corruptf("constant pool index %d out of range [1, %d)", index, cp.Count())
	}
	entry := cp[index-1]
	if entry == nil {
		return nil, corruptf("constant pool index %d refers to the second slot of a Long or Double", index)
	}
	return entry, nil
}

// ResolveTag resolves index and checks the entry carries one of tags.
func (cp ConstantPool) ResolveTag(index uint16, tags ...ConstantTag) (ConstantPoolEntry, error) {
	entry, err := cp.Resolve(index)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if entry.Tag() == t {
			return entry, nil
		}
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	return nil, corruptf("constant pool index %d: expected %s, found %s", index, strings.Join(names, " or "), entry.Tag())
}

// resolveOptional accepts 0 as "absent" and otherwise behaves like ResolveTag.
func (cp ConstantPool) resolveOptional(index uint16, tags ...ConstantTag) error {
	if index == 0 {
		return nil
	}
	_, err := cp.ResolveTag(index, tags...)
	return err
}

// Utf8 resolves index to a Utf8 entry and returns its string.
func (cp ConstantPool) Utf8(index uint16) (string, error) {
	entry, err := cp.ResolveTag(index, ConstantUtf8)
	if err != nil {
		return "", err
	}
	return entry.(*ConstantUtf8Info).Value, nil
}

// ClassName resolves index to a Class entry and returns its internal name.
func (cp ConstantPool) ClassName(index uint16) (string, error) {
	entry, err := cp.ResolveTag(index, ConstantClass)
	if err != nil {
		return "", err
	}
	return cp.Utf8(entry.(*ConstantClassInfo).NameIndex)
}

// validate checks every reference from one pool entry to another.
func (cp ConstantPool) validate() error {
	for i, entry := range cp {
		if entry == nil {
			continue
		}
		if err := cp.validateEntry(entry); err != nil {
			return fmt.Errorf("constant pool entry %d (%s): %w", i+1, entry.Tag(), err)
		}
	}
	return nil
}

func (cp ConstantPool) validateEntry(entry ConstantPoolEntry) error {
	switch e := entry.(type) {
	case *ConstantClassInfo:
		_, err := cp.ResolveTag(e.NameIndex, ConstantUtf8)
		return err
	case *ConstantStringInfo:
		_, err := cp.ResolveTag(e.StringIndex, ConstantUtf8)
		return err
	case *ConstantRefInfo:
		if _, err := cp.ResolveTag(e.ClassIndex, ConstantClass); err != nil {
			return err
		}
		_, err := cp.ResolveTag(e.NameAndTypeIndex, ConstantNameAndType)
		return err
	case *ConstantNameAndTypeInfo:
		if _, err := cp.ResolveTag(e.NameIndex, ConstantUtf8); err != nil {
			return err
		}
		_, err := cp.ResolveTag(e.DescriptorIndex, ConstantUtf8)
		return err
	case *ConstantMethodHandleInfo:
		if e.ReferenceKind < RefGetField || e.ReferenceKind > RefInvokeInterface {
			return corruptf("invalid method handle kind %d", e.ReferenceKind)
		}
		_, err := cp.ResolveTag(e.ReferenceIndex, ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref)
		return err
	case *ConstantMethodTypeInfo:
		_, err := cp.ResolveTag(e.DescriptorIndex, ConstantUtf8)
		return err
	case *ConstantDynamicInfo:
		_, err := cp.ResolveTag(e.NameAndTypeIndex, ConstantNameAndType)
		return err
	case *ConstantNamedInfo:
		_, err := cp.ResolveTag(e.NameIndex, ConstantUtf8)
		return err
	}
	return nil
}

func (cp ConstantPool) lookup(index uint16) ConstantPoolEntry {
	if index == 0 || int(index) > len(cp) {
		return nil
	}
	return cp[index-1]
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if entry, ok := cp.lookup(index).(*ConstantUtf8Info); ok {
		return entry.Value
	}
	return ""
}

func (cp ConstantPool) GetClassName(index uint16) string {
	if entry, ok := cp.lookup(index).(*ConstantClassInfo); ok {
		return cp.GetUtf8(entry.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if entry, ok := cp.lookup(index).(*ConstantNameAndTypeInfo); ok {
		return cp.GetUtf8(entry.NameIndex), cp.GetUtf8(entry.DescriptorIndex)
	}
	return "", ""
}

func (cp ConstantPool) GetString(index uint16) string {
	if entry, ok := cp.lookup(index).(*ConstantStringInfo); ok {
		return cp.GetUtf8(entry.StringIndex)
	}
	return ""
}

// GetRef returns the owner, name and descriptor of a Fieldref, Methodref
// or InterfaceMethodref.
func (cp ConstantPool) GetRef(index uint16) (className, name, descriptor string) {
	if entry, ok := cp.lookup(index).(*ConstantRefInfo); ok {
		className = cp.GetClassName(entry.ClassIndex)
		name, descriptor = cp.GetNameAndType(entry.NameAndTypeIndex)
		return
	}
	return "", "", ""
}

// Loadable returns the Go value of an Integer, Float, Long, Double or
// String entry.
func (cp ConstantPool) Loadable(index uint16) (any, error) {
	entry, err := cp.ResolveTag(index, ConstantInteger, ConstantFloat, ConstantLong, ConstantDouble, ConstantString)
	if err != nil {
		return nil, err
	}
	switch e := entry.(type) {
	case *ConstantIntegerInfo:
		return e.Value(), nil
	case *ConstantFloatInfo:
		return e.Value(), nil
	case *ConstantLongInfo:
		return e.Value(), nil
	case *ConstantDoubleInfo:
		return e.Value(), nil
	case *ConstantStringInfo:
		return cp.Utf8(e.StringIndex)
	}
	return nil, nil
}

// Describe renders a one-line human readable view of the entry at index.
func (cp ConstantPool) Describe(index uint16) string {
	switch e := cp.lookup(index).(type) {
	case nil:
		return "(unusable)"
	case *ConstantUtf8Info:
		return fmt.Sprintf("%q", e.Value)
	case *ConstantIntegerInfo:
		return fmt.Sprintf("%d", e.Value())
	case *ConstantFloatInfo:
		return fmt.Sprintf("%gf", e.Value())
	case *ConstantLongInfo:
		return fmt.Sprintf("%dL", e.Value())
	case *ConstantDoubleInfo:
		return fmt.Sprintf("%gd", e.Value())
	case *ConstantClassInfo:
		return InternalToSourceName(cp.GetUtf8(e.NameIndex))
	case *ConstantStringInfo:
		return fmt.Sprintf("%q", cp.GetUtf8(e.StringIndex))
	case *ConstantRefInfo:
		owner, name, desc := cp.GetRef(index)
		return InternalToSourceName(owner) + "." + name + ":" + desc
	case *ConstantNameAndTypeInfo:
		name, desc := cp.GetNameAndType(index)
		return name + ":" + desc
	case *ConstantMethodHandleInfo:
		return fmt.Sprintf("kind=%d %s", e.ReferenceKind, cp.Describe(e.ReferenceIndex))
	case *ConstantMethodTypeInfo:
		return cp.GetUtf8(e.DescriptorIndex)
	case *ConstantDynamicInfo:
		name, desc := cp.GetNameAndType(e.NameAndTypeIndex)
		return fmt.Sprintf("#%d:%s:%s", e.BootstrapMethodAttrIndex, name, desc)
	case *ConstantNamedInfo:
		return cp.GetUtf8(e.NameIndex)
	}
	return ""
}

func (cp ConstantPool) encode(w *writer) {
	w.u2(uint16(cp.Count()))
	for _, entry := range cp {
		if entry == nil {
			continue
		}
		entry.encode(w)
	}
}
