package classfile

import (
	"fmt"
	"io"
	"os"
)

type ClassFile struct {
	Magic        uint32
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []*FieldInfo
	Methods      []*MethodInfo
	Attributes   []AttributeInfo

	// Diagnostics collects non-fatal findings made while parsing.
	Diagnostics Diagnostics

	writable bool
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (cf *ClassFile) IsClass() bool {
	return !cf.AccessFlags.IsInterface() && !cf.IsModule()
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsAnnotation() bool {
	return cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsEnum() bool {
	return cf.AccessFlags.IsEnum()
}

// IsModule reports a module-info class. The flag is ignored before
// class file version 53.
func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule() && cf.MajorVersion >= MajorJava9
}

// Writable reports whether the class file was parsed WithWriteAccess.
func (cf *ClassFile) Writable() bool { return cf.writable }

func (cf *ClassFile) GetField(name string) *FieldInfo {
	for _, f := range cf.Fields {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// GetMethod finds a method by name and, unless descriptor is empty, by
// descriptor.
func (cf *ClassFile) GetMethod(name, descriptor string) *MethodInfo {
	for _, m := range cf.Methods {
		if m.Name() == name && (descriptor == "" || m.Descriptor() == descriptor) {
			return m
		}
	}
	return nil
}

func (cf *ClassFile) GetMethods(name string) []*MethodInfo {
	var methods []*MethodInfo
	for _, m := range cf.Methods {
		if m.Name() == name {
			methods = append(methods, m)
		}
	}
	return methods
}

func (cf *ClassFile) GetAttribute(name string) *AttributeInfo {
	return findAttribute(cf.Attributes, name)
}

// SourceFile returns the name recorded in the SourceFile attribute.
func (cf *ClassFile) SourceFile() string {
	if sf := cf.GetAttribute("SourceFile").AsSourceFile(); sf != nil {
		return cf.ConstantPool.GetUtf8(sf.SourceFileIndex)
	}
	return ""
}

func (cf *ClassFile) Signature() string {
	if sig := cf.GetAttribute("Signature").AsSignature(); sig != nil {
		return cf.ConstantPool.GetUtf8(sig.SignatureIndex)
	}
	return ""
}

// Version renders the class file version as major.minor.
func (cf *ClassFile) Version() string {
	return fmt.Sprintf("%d.%d", cf.MajorVersion, cf.MinorVersion)
}

func (cf *ClassFile) validateHeader() error {
	if unknown := cf.AccessFlags.Unknown(ClassFlagsMask); unknown != 0 {
		cf.Diagnostics.add(SeverityWarning, "class", "reserved access flag bits 0x%04X set", uint16(unknown))
	}
	name, err := cf.ConstantPool.ClassName(cf.ThisClass)
	if err != nil {
		return fmt.Errorf("this_class: %w", err)
	}
	if err := cf.ConstantPool.resolveOptional(cf.SuperClass, ConstantClass); err != nil {
		return fmt.Errorf("super_class: %w", err)
	}
	for i, idx := range cf.Interfaces {
		if _, err := cf.ConstantPool.ResolveTag(idx, ConstantClass); err != nil {
			return fmt.Errorf("interface %d: %w", i, err)
		}
	}
	if reason := checkClassFlags(cf.AccessFlags, cf.MajorVersion); reason != "" {
		return &AccessFlagError{Kind: "class", Name: name, Flags: cf.AccessFlags, Reason: reason}
	}
	return nil
}

// checkClassFlags applies JVMS 4.1 to a class's flags. ACC_MODULE only
// counts from Java 9, and interfaces older than Java 6 may omit
// ACC_ABSTRACT.
func checkClassFlags(flags AccessFlags, major uint16) string {
	if flags.IsModule() && major >= MajorJava9 {
		return ""
	}
	if flags.IsInterface() {
		if !flags.IsAbstract() && major >= MajorJava6 {
			return "an interface must be abstract"
		}
		if flags&(AccFinal|AccEnum) != 0 {
			return "an interface cannot be " + flags.Intersect(AccFinal|AccEnum).ClassString()
		}
		return ""
	}
	if flags.IsAnnotation() {
		return "an annotation type must be an interface"
	}
	if flags.IsFinal() && flags.IsAbstract() {
		return "a class cannot be both final and abstract"
	}
	return ""
}

// Bytes serializes the class file. For a parsed, unmodified ClassFile
// the result equals the input byte for byte.
func (cf *ClassFile) Bytes() []byte {
	w := &writer{}
	w.u4(cf.Magic)
	w.u2(cf.MinorVersion)
	w.u2(cf.MajorVersion)
	cf.ConstantPool.encode(w)
	w.u2(uint16(cf.AccessFlags))
	w.u2(cf.ThisClass)
	w.u2(cf.SuperClass)
	w.u2s(cf.Interfaces)
	w.u2(uint16(len(cf.Fields)))
	for _, f := range cf.Fields {
		f.encode(w)
	}
	w.u2(uint16(len(cf.Methods)))
	for _, m := range cf.Methods {
		m.encode(w)
	}
	encodeAttributes(w, cf.Attributes)
	return w.buf
}

func (cf *ClassFile) Encode(w io.Writer) error {
	_, err := w.Write(cf.Bytes())
	return err
}

// WriteToClassFile writes the serialized class to path. It requires the
// class file to have been parsed WithWriteAccess.
func (cf *ClassFile) WriteToClassFile(path string) error {
	if !cf.writable {
		return ErrWriteAccessDenied
	}
	if err := os.WriteFile(path, cf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write class file: %w", err)
	}
	return nil
}
