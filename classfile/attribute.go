package classfile

import (
	"fmt"
)

// Attribute is the decoded body of one attribute_info structure. The set
// of implementations is closed; names this package does not decode are
// kept as *UnknownAttribute.
type Attribute interface {
	AttributeName() string
	encode(w *writer)
	validate(cp ConstantPool) error
}

// AttributeInfo pairs a decoded attribute with the constant pool index of
// its name, which is preserved so the attribute re-encodes identically.
type AttributeInfo struct {
	NameIndex uint16
	Attribute Attribute
}

func (a *AttributeInfo) Name() string {
	if a == nil || a.Attribute == nil {
		return ""
	}
	return a.Attribute.AttributeName()
}

type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []AttributeInfo
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

type SyntheticAttribute struct{}

type DeprecatedAttribute struct{}

type LineNumberTableAttribute struct {
	LineNumberTable []LineNumberEntry
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type LocalVariableTableAttribute struct {
	LocalVariableTable []LocalVariableEntry
}

// LocalVariableEntry is shared by LocalVariableTable and
// LocalVariableTypeTable; in the latter DescriptorIndex names a generic
// signature.
type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type LocalVariableTypeTableAttribute struct {
	LocalVariableTypeTable []LocalVariableEntry
}

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

type BootstrapMethodsAttribute struct {
	BootstrapMethods []BootstrapMethod
}

type BootstrapMethod struct {
	BootstrapMethodRef uint16
	BootstrapArguments []uint16
}

type EnclosingMethodAttribute struct {
	ClassIndex  uint16
	MethodIndex uint16
}

type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

type NestHostAttribute struct {
	HostClassIndex uint16
}

type NestMembersAttribute struct {
	Classes []uint16
}

type SourceDebugExtensionAttribute struct {
	DebugExtension []byte
}

// UnknownAttribute keeps an attribute this package does not decode, or one
// found where the JVM does not define it, as raw bytes.
type UnknownAttribute struct {
	Name string
	Info []byte
}

func (*CodeAttribute) AttributeName() string                   { return "Code" }
func (*ConstantValueAttribute) AttributeName() string          { return "ConstantValue" }
func (*ExceptionsAttribute) AttributeName() string             { return "Exceptions" }
func (*SyntheticAttribute) AttributeName() string              { return "Synthetic" }
func (*DeprecatedAttribute) AttributeName() string             { return "Deprecated" }
func (*LineNumberTableAttribute) AttributeName() string        { return "LineNumberTable" }
func (*LocalVariableTableAttribute) AttributeName() string     { return "LocalVariableTable" }
func (*LocalVariableTypeTableAttribute) AttributeName() string { return "LocalVariableTypeTable" }
func (*SourceFileAttribute) AttributeName() string             { return "SourceFile" }
func (*SignatureAttribute) AttributeName() string              { return "Signature" }
func (*InnerClassesAttribute) AttributeName() string           { return "InnerClasses" }
func (*BootstrapMethodsAttribute) AttributeName() string       { return "BootstrapMethods" }
func (*EnclosingMethodAttribute) AttributeName() string        { return "EnclosingMethod" }
func (*MethodParametersAttribute) AttributeName() string       { return "MethodParameters" }
func (*NestHostAttribute) AttributeName() string               { return "NestHost" }
func (*NestMembersAttribute) AttributeName() string            { return "NestMembers" }
func (*SourceDebugExtensionAttribute) AttributeName() string   { return "SourceDebugExtension" }
func (a *UnknownAttribute) AttributeName() string              { return a.Name }

type attrContext uint8

const (
	contextClass attrContext = 1 << iota
	contextField
	contextMethod
	contextCode

	contextMember = contextClass | contextField | contextMethod
)

func (c attrContext) String() string {
	switch c {
	case contextClass:
		return "class"
	case contextField:
		return "field"
	case contextMethod:
		return "method"
	case contextCode:
		return "Code"
	}
	return "attribute"
}

type attributeDecoder struct {
	contexts attrContext
	decode   func(r *reader, cf *ClassFile, location string) (Attribute, error)
}

func plain(fn func(r *reader) Attribute) func(*reader, *ClassFile, string) (Attribute, error) {
	return func(r *reader, _ *ClassFile, _ string) (Attribute, error) {
		return fn(r), nil
	}
}

var attributeDecoders map[string]attributeDecoder

func init() {
	attributeDecoders = map[string]attributeDecoder{
		"ConstantValue":                        {contextField, plain(readConstantValue)},
		"Code":                                 {contextMethod, readCode},
		"Exceptions":                           {contextMethod, plain(readExceptions)},
		"Synthetic":                            {contextMember, plain(func(*reader) Attribute { return &SyntheticAttribute{} })},
		"Deprecated":                           {contextMember, plain(func(*reader) Attribute { return &DeprecatedAttribute{} })},
		"Signature":                            {contextMember, plain(readSignature)},
		"RuntimeVisibleAnnotations":            {contextMember, plain(readAnnotations(true))},
		"RuntimeInvisibleAnnotations":          {contextMember, plain(readAnnotations(false))},
		"RuntimeVisibleParameterAnnotations":   {contextMethod, plain(readParameterAnnotations(true))},
		"RuntimeInvisibleParameterAnnotations": {contextMethod, plain(readParameterAnnotations(false))},
		"AnnotationDefault":                    {contextMethod, plain(readAnnotationDefault)},
		"MethodParameters":                     {contextMethod, plain(readMethodParameters)},
		"LineNumberTable":                      {contextCode, plain(readLineNumberTable)},
		"LocalVariableTable":                   {contextCode, plain(readLocalVariableTable)},
		"LocalVariableTypeTable":               {contextCode, plain(readLocalVariableTypeTable)},
		"SourceFile":                           {contextClass, plain(readSourceFile)},
		"InnerClasses":                         {contextClass, plain(readInnerClasses)},
		"BootstrapMethods":                     {contextClass, plain(readBootstrapMethods)},
		"EnclosingMethod":                      {contextClass, plain(readEnclosingMethod)},
		"NestHost":                             {contextClass, plain(readNestHost)},
		"NestMembers":                          {contextClass, plain(readNestMembers)},
		"SourceDebugExtension":                 {contextClass, plain(readSourceDebugExtension)},
	}
}

func readAttributes(r *reader, cf *ClassFile, ctx attrContext, location string) ([]AttributeInfo, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.failure("attributes count")
	}
	attrs := make([]AttributeInfo, 0, count)
	for i := uint16(0); i < count; i++ {
		attr, err := readAttributeInfo(r, cf, ctx, location)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", i, err)
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func readAttributeInfo(r *reader, cf *ClassFile, ctx attrContext, location string) (AttributeInfo, error) {
	nameIndex := r.readU2()
	length := r.readU4()
	info := r.readBytes(int(length))
	if r.err != nil {
		return AttributeInfo{}, r.failure("attribute")
	}

	name, err := cf.ConstantPool.Utf8(nameIndex)
	if err != nil {
		return AttributeInfo{}, fmt.Errorf("attribute name: %w", err)
	}

	attr := AttributeInfo{NameIndex: nameIndex}
	dec, known := attributeDecoders[name]
	switch {
	case !known:
		cf.Diagnostics.add(SeverityDebug, location, "unrecognized attribute %q (%d bytes) kept as raw data", name, length)
		attr.Attribute = &UnknownAttribute{Name: name, Info: info}
		return attr, nil
	case dec.contexts&ctx == 0:
		cf.Diagnostics.add(SeverityWarning, location, "attribute %q is not defined on a %s, kept as raw data", name, ctx)
		attr.Attribute = &UnknownAttribute{Name: name, Info: info}
		return attr, nil
	}

	body := newBodyReader(info)
	a, err := dec.decode(body, cf, location+"/"+name)
	if err != nil {
		return AttributeInfo{}, fmt.Errorf("%s: %w", name, err)
	}
	if err := body.finish(name); err != nil {
		return AttributeInfo{}, err
	}
	if err := a.validate(cf.ConstantPool); err != nil {
		return AttributeInfo{}, fmt.Errorf("%s: %w", name, err)
	}
	attr.Attribute = a
	return attr, nil
}

func encodeAttributes(w *writer, attrs []AttributeInfo) {
	w.u2(uint16(len(attrs)))
	for i := range attrs {
		encodeAttribute(w, &attrs[i])
	}
}

func encodeAttribute(w *writer, a *AttributeInfo) {
	body := &writer{}
	a.Attribute.encode(body)
	w.u2(a.NameIndex)
	w.u4(uint32(len(body.buf)))
	w.bytes(body.buf)
}

func findAttribute(attrs []AttributeInfo, name string) *AttributeInfo {
	for i := range attrs {
		if attrs[i].Name() == name {
			return &attrs[i]
		}
	}
	return nil
}

func readCode(r *reader, cf *ClassFile, location string) (Attribute, error) {
	code := &CodeAttribute{
		MaxStack:  r.readU2(),
		MaxLocals: r.readU2(),
	}
	codeLength := r.readU4()
	if r.err == nil && int(codeLength) > r.body.Len() {
		return nil, corruptf("code_length %d exceeds attribute body", codeLength)
	}
	code.Code = r.readBytes(int(codeLength))

	exceptionTableLength := r.readU2()
	if r.err != nil {
		return nil, r.failure("Code")
	}
	code.ExceptionTable = make([]ExceptionTableEntry, exceptionTableLength)
	for i := range code.ExceptionTable {
		code.ExceptionTable[i] = ExceptionTableEntry{
			StartPC:   r.readU2(),
			EndPC:     r.readU2(),
			HandlerPC: r.readU2(),
			CatchType: r.readU2(),
		}
	}
	if r.err != nil {
		return nil, r.failure("exception table")
	}

	attrs, err := readAttributes(r, cf, contextCode, location)
	if err != nil {
		return nil, err
	}
	code.Attributes = attrs
	return code, nil
}

func (a *CodeAttribute) encode(w *writer) {
	w.u2(a.MaxStack)
	w.u2(a.MaxLocals)
	w.u4(uint32(len(a.Code)))
	w.bytes(a.Code)
	w.u2(uint16(len(a.ExceptionTable)))
	for _, e := range a.ExceptionTable {
		w.u2(e.StartPC)
		w.u2(e.EndPC)
		w.u2(e.HandlerPC)
		w.u2(e.CatchType)
	}
	encodeAttributes(w, a.Attributes)
}

func (a *CodeAttribute) validate(cp ConstantPool) error {
	if len(a.Code) == 0 {
		return corruptf("empty code array")
	}
	for i, e := range a.ExceptionTable {
		if e.StartPC >= e.EndPC || int(e.EndPC) > len(a.Code) || int(e.HandlerPC) >= len(a.Code) {
			return corruptf("exception table entry %d has invalid range [%d, %d) -> %d", i, e.StartPC, e.EndPC, e.HandlerPC)
		}
		if err := cp.resolveOptional(e.CatchType, ConstantClass); err != nil {
			return fmt.Errorf("exception table entry %d: %w", i, err)
		}
	}
	return nil
}

// GetAttribute returns the nested attribute called name, or nil.
func (a *CodeAttribute) GetAttribute(name string) *AttributeInfo {
	return findAttribute(a.Attributes, name)
}

func readConstantValue(r *reader) Attribute {
	return &ConstantValueAttribute{ConstantValueIndex: r.readU2()}
}

func (a *ConstantValueAttribute) encode(w *writer) { w.u2(a.ConstantValueIndex) }
func (a *ConstantValueAttribute) validate(cp ConstantPool) error {
	_, err := cp.ResolveTag(a.ConstantValueIndex, ConstantInteger, ConstantFloat, ConstantLong, ConstantDouble, ConstantString)
	return err
}

func readExceptions(r *reader) Attribute {
	return &ExceptionsAttribute{ExceptionIndexTable: r.readU2s()}
}

func (a *ExceptionsAttribute) encode(w *writer) { w.u2s(a.ExceptionIndexTable) }
func (a *ExceptionsAttribute) validate(cp ConstantPool) error {
	for _, idx := range a.ExceptionIndexTable {
		if _, err := cp.ResolveTag(idx, ConstantClass); err != nil {
			return err
		}
	}
	return nil
}

func (*SyntheticAttribute) encode(*writer)               {}
func (*SyntheticAttribute) validate(ConstantPool) error  { return nil }
func (*DeprecatedAttribute) encode(*writer)              {}
func (*DeprecatedAttribute) validate(ConstantPool) error { return nil }

func readSignature(r *reader) Attribute {
	return &SignatureAttribute{SignatureIndex: r.readU2()}
}

func (a *SignatureAttribute) encode(w *writer) { w.u2(a.SignatureIndex) }
func (a *SignatureAttribute) validate(cp ConstantPool) error {
	_, err := cp.ResolveTag(a.SignatureIndex, ConstantUtf8)
	return err
}

func readLineNumberTable(r *reader) Attribute {
	count := r.readU2()
	lnt := &LineNumberTableAttribute{LineNumberTable: make([]LineNumberEntry, 0, count)}
	for i := uint16(0); i < count && r.err == nil; i++ {
		lnt.LineNumberTable = append(lnt.LineNumberTable, LineNumberEntry{
			StartPC:    r.readU2(),
			LineNumber: r.readU2(),
		})
	}
	return lnt
}

func (a *LineNumberTableAttribute) encode(w *writer) {
	w.u2(uint16(len(a.LineNumberTable)))
	for _, e := range a.LineNumberTable {
		w.u2(e.StartPC)
		w.u2(e.LineNumber)
	}
}

func (a *LineNumberTableAttribute) validate(ConstantPool) error { return nil }

// LineFor returns the source line of the instruction at pc, or 0.
func (a *LineNumberTableAttribute) LineFor(pc uint16) uint16 {
	var line, best uint16
	found := false
	for _, e := range a.LineNumberTable {
		if e.StartPC <= pc && (!found || e.StartPC >= best) {
			best, line, found = e.StartPC, e.LineNumber, true
		}
	}
	return line
}

func readLocalVariables(r *reader) []LocalVariableEntry {
	count := r.readU2()
	entries := make([]LocalVariableEntry, 0, count)
	for i := uint16(0); i < count && r.err == nil; i++ {
		entries = append(entries, LocalVariableEntry{
			StartPC:         r.readU2(),
			Length:          r.readU2(),
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
			Index:           r.readU2(),
		})
	}
	return entries
}

func encodeLocalVariables(w *writer, entries []LocalVariableEntry) {
	w.u2(uint16(len(entries)))
	for _, e := range entries {
		w.u2(e.StartPC)
		w.u2(e.Length)
		w.u2(e.NameIndex)
		w.u2(e.DescriptorIndex)
		w.u2(e.Index)
	}
}

func validateLocalVariables(cp ConstantPool, entries []LocalVariableEntry) error {
	for i, e := range entries {
		if _, err := cp.ResolveTag(e.NameIndex, ConstantUtf8); err != nil {
			return fmt.Errorf("entry %d name: %w", i, err)
		}
		if _, err := cp.ResolveTag(e.DescriptorIndex, ConstantUtf8); err != nil {
			return fmt.Errorf("entry %d descriptor: %w", i, err)
		}
	}
	return nil
}

func readLocalVariableTable(r *reader) Attribute {
	return &LocalVariableTableAttribute{LocalVariableTable: readLocalVariables(r)}
}

func (a *LocalVariableTableAttribute) encode(w *writer) {
	encodeLocalVariables(w, a.LocalVariableTable)
}

func (a *LocalVariableTableAttribute) validate(cp ConstantPool) error {
	return validateLocalVariables(cp, a.LocalVariableTable)
}

func readLocalVariableTypeTable(r *reader) Attribute {
	return &LocalVariableTypeTableAttribute{LocalVariableTypeTable: readLocalVariables(r)}
}

func (a *LocalVariableTypeTableAttribute) encode(w *writer) {
	encodeLocalVariables(w, a.LocalVariableTypeTable)
}

func (a *LocalVariableTypeTableAttribute) validate(cp ConstantPool) error {
	return validateLocalVariables(cp, a.LocalVariableTypeTable)
}

func readSourceFile(r *reader) Attribute {
	return &SourceFileAttribute{SourceFileIndex: r.readU2()}
}

func (a *SourceFileAttribute) encode(w *writer) { w.u2(a.SourceFileIndex) }
func (a *SourceFileAttribute) validate(cp ConstantPool) error {
	_, err := cp.ResolveTag(a.SourceFileIndex, ConstantUtf8)
	return err
}

func readInnerClasses(r *reader) Attribute {
	count := r.readU2()
	ic := &InnerClassesAttribute{Classes: make([]InnerClassEntry, 0, count)}
	for i := uint16(0); i < count && r.err == nil; i++ {
		ic.Classes = append(ic.Classes, InnerClassEntry{
			InnerClassInfoIndex:   r.readU2(),
			OuterClassInfoIndex:   r.readU2(),
			InnerNameIndex:        r.readU2(),
			InnerClassAccessFlags: AccessFlags(r.readU2()),
		})
	}
	return ic
}

func (a *InnerClassesAttribute) encode(w *writer) {
	w.u2(uint16(len(a.Classes)))
	for _, c := range a.Classes {
		w.u2(c.InnerClassInfoIndex)
		w.u2(c.OuterClassInfoIndex)
		w.u2(c.InnerNameIndex)
		w.u2(uint16(c.InnerClassAccessFlags))
	}
}

func (a *InnerClassesAttribute) validate(cp ConstantPool) error {
	for i, c := range a.Classes {
		if _, err := cp.ResolveTag(c.InnerClassInfoIndex, ConstantClass); err != nil {
			return fmt.Errorf("inner class %d: %w", i, err)
		}
		if err := cp.resolveOptional(c.OuterClassInfoIndex, ConstantClass); err != nil {
			return fmt.Errorf("inner class %d outer: %w", i, err)
		}
		if err := cp.resolveOptional(c.InnerNameIndex, ConstantUtf8); err != nil {
			return fmt.Errorf("inner class %d name: %w", i, err)
		}
	}
	return nil
}

func readBootstrapMethods(r *reader) Attribute {
	count := r.readU2()
	bm := &BootstrapMethodsAttribute{BootstrapMethods: make([]BootstrapMethod, 0, count)}
	for i := uint16(0); i < count && r.err == nil; i++ {
		ref := r.readU2()
		bm.BootstrapMethods = append(bm.BootstrapMethods, BootstrapMethod{
			BootstrapMethodRef: ref,
			BootstrapArguments: r.readU2s(),
		})
	}
	return bm
}

func (a *BootstrapMethodsAttribute) encode(w *writer) {
	w.u2(uint16(len(a.BootstrapMethods)))
	for _, m := range a.BootstrapMethods {
		w.u2(m.BootstrapMethodRef)
		w.u2s(m.BootstrapArguments)
	}
}

func (a *BootstrapMethodsAttribute) validate(cp ConstantPool) error {
	for i, m := range a.BootstrapMethods {
		if _, err := cp.ResolveTag(m.BootstrapMethodRef, ConstantMethodHandle); err != nil {
			return fmt.Errorf("bootstrap method %d: %w", i, err)
		}
		for j, arg := range m.BootstrapArguments {
			if _, err := cp.Resolve(arg); err != nil {
				return fmt.Errorf("bootstrap method %d argument %d: %w", i, j, err)
			}
		}
	}
	return nil
}

func readEnclosingMethod(r *reader) Attribute {
	return &EnclosingMethodAttribute{ClassIndex: r.readU2(), MethodIndex: r.readU2()}
}

func (a *EnclosingMethodAttribute) encode(w *writer) {
	w.u2(a.ClassIndex)
	w.u2(a.MethodIndex)
}

func (a *EnclosingMethodAttribute) validate(cp ConstantPool) error {
	if _, err := cp.ResolveTag(a.ClassIndex, ConstantClass); err != nil {
		return err
	}
	return cp.resolveOptional(a.MethodIndex, ConstantNameAndType)
}

func readMethodParameters(r *reader) Attribute {
	count := r.readU1()
	mp := &MethodParametersAttribute{Parameters: make([]MethodParameter, 0, count)}
	for i := uint8(0); i < count && r.err == nil; i++ {
		mp.Parameters = append(mp.Parameters, MethodParameter{
			NameIndex:   r.readU2(),
			AccessFlags: AccessFlags(r.readU2()),
		})
	}
	return mp
}

func (a *MethodParametersAttribute) encode(w *writer) {
	w.u1(uint8(len(a.Parameters)))
	for _, p := range a.Parameters {
		w.u2(p.NameIndex)
		w.u2(uint16(p.AccessFlags))
	}
}

func (a *MethodParametersAttribute) validate(cp ConstantPool) error {
	for i, p := range a.Parameters {
		if err := cp.resolveOptional(p.NameIndex, ConstantUtf8); err != nil {
			return fmt.Errorf("parameter %d: %w", i, err)
		}
	}
	return nil
}

func readNestHost(r *reader) Attribute {
	return &NestHostAttribute{HostClassIndex: r.readU2()}
}

func (a *NestHostAttribute) encode(w *writer) { w.u2(a.HostClassIndex) }
func (a *NestHostAttribute) validate(cp ConstantPool) error {
	_, err := cp.ResolveTag(a.HostClassIndex, ConstantClass)
	return err
}

func readNestMembers(r *reader) Attribute {
	return &NestMembersAttribute{Classes: r.readU2s()}
}

func (a *NestMembersAttribute) encode(w *writer) { w.u2s(a.Classes) }
func (a *NestMembersAttribute) validate(cp ConstantPool) error {
	for _, idx := range a.Classes {
		if _, err := cp.ResolveTag(idx, ConstantClass); err != nil {
			return err
		}
	}
	return nil
}

func readSourceDebugExtension(r *reader) Attribute {
	return &SourceDebugExtensionAttribute{DebugExtension: r.readBytes(r.body.Len())}
}

func (a *SourceDebugExtensionAttribute) encode(w *writer)            { w.bytes(a.DebugExtension) }
func (a *SourceDebugExtensionAttribute) validate(ConstantPool) error { return nil }

func (a *UnknownAttribute) encode(w *writer)            { w.bytes(a.Info) }
func (a *UnknownAttribute) validate(ConstantPool) error { return nil }

func (a *AttributeInfo) AsCode() *CodeAttribute { return attributeAs[*CodeAttribute](a) }
func (a *AttributeInfo) AsConstantValue() *ConstantValueAttribute {
	return attributeAs[*ConstantValueAttribute](a)
}
func (a *AttributeInfo) AsExceptions() *ExceptionsAttribute {
	return attributeAs[*ExceptionsAttribute](a)
}
func (a *AttributeInfo) AsLineNumberTable() *LineNumberTableAttribute {
	return attributeAs[*LineNumberTableAttribute](a)
}
func (a *AttributeInfo) AsLocalVariableTable() *LocalVariableTableAttribute {
	return attributeAs[*LocalVariableTableAttribute](a)
}
func (a *AttributeInfo) AsSourceFile() *SourceFileAttribute {
	return attributeAs[*SourceFileAttribute](a)
}
func (a *AttributeInfo) AsSignature() *SignatureAttribute {
	return attributeAs[*SignatureAttribute](a)
}
func (a *AttributeInfo) AsInnerClasses() *InnerClassesAttribute {
	return attributeAs[*InnerClassesAttribute](a)
}
func (a *AttributeInfo) AsBootstrapMethods() *BootstrapMethodsAttribute {
	return attributeAs[*BootstrapMethodsAttribute](a)
}
func (a *AttributeInfo) AsAnnotations() *AnnotationsAttribute {
	return attributeAs[*AnnotationsAttribute](a)
}
func (a *AttributeInfo) AsUnknown() *UnknownAttribute {
	return attributeAs[*UnknownAttribute](a)
}

func attributeAs[T Attribute](a *AttributeInfo) T {
	var zero T
	if a == nil || a.Attribute == nil {
		return zero
	}
	if v, ok := a.Attribute.(T); ok {
		return v
	}
	return zero
}
