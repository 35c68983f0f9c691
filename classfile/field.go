package classfile

import "fmt"

type FieldInfo struct {
	Member
}

func (f *FieldInfo) IsVolatile() bool  { return f.AccessFlags.IsVolatile() }
func (f *FieldInfo) IsTransient() bool { return f.AccessFlags.IsTransient() }
func (f *FieldInfo) IsEnum() bool      { return f.AccessFlags.IsEnum() }

func (f *FieldInfo) Type() Type {
	return ParseFieldDescriptor(f.descriptor)
}

// ConstantValue returns the value of the ConstantValue attribute as an
// int32, float32, int64, float64 or string. ok is false when the field
// has none.
func (f *FieldInfo) ConstantValue() (value any, ok bool) {
	cv := f.GetAttribute("ConstantValue").AsConstantValue()
	if cv == nil {
		return nil, false
	}
	v, err := f.pool.Loadable(cv.ConstantValueIndex)
	if err != nil {
		return nil, false
	}
	return v, true
}

func readFieldInfo(r *reader, cf *ClassFile) (*FieldInfo, error) {
	m, err := readMember(r, cf, "field", contextField)
	if err != nil {
		return nil, err
	}
	f := &FieldInfo{Member: m}

	if unknown := f.AccessFlags.Unknown(FieldFlagsMask); unknown != 0 {
		cf.Diagnostics.add(SeverityWarning, f.location("field"), "reserved access flag bits 0x%04X set", uint16(unknown))
	}
	if reason := checkFieldFlags(f.AccessFlags, cf.AccessFlags.IsInterface()); reason != "" {
		return nil, &AccessFlagError{Kind: "field", Name: f.name, Flags: f.AccessFlags, Reason: reason}
	}
	if !validFieldDescriptor(f.descriptor) {
		cf.Diagnostics.add(SeverityWarning, f.location("field"), "malformed field descriptor %q", f.descriptor)
	}
	return f, nil
}

// checkFieldFlags applies JVMS 4.5 to a field's flags and returns the
// first violated rule, or "".
func checkFieldFlags(flags AccessFlags, ownerIsInterface bool) string {
	if visibilityCount(flags) > 1 {
		return "at most one of public, private and protected may be set"
	}
	if flags.IsFinal() && flags.IsVolatile() {
		return "a field cannot be both final and volatile"
	}
	if ownerIsInterface {
		if !flags.IsPublic() || !flags.IsStatic() || !flags.IsFinal() {
			return "interface fields must be public, static and final"
		}
		for _, f := range []struct {
			flag AccessFlags
			name string
		}{
			{AccEnum, "enum"},
			{AccTransient, "transient"},
			{AccVolatile, "volatile"},
			{AccProtected, "protected"},
			{AccPrivate, "private"},
		} {
			if flags&f.flag != 0 {
				return fmt.Sprintf("interface fields cannot be %s", f.name)
			}
		}
	}
	return ""
}
