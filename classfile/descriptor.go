package classfile

import "strings"

type Kind uint8

const (
	KindUnknown Kind = iota
	KindVoid
	KindByte
	KindChar
	KindDouble
	KindFloat
	KindInt
	KindLong
	KindShort
	KindBoolean
	KindObject
)

// UnknownTypeName stands in for a type code the descriptor scanner did not
// recognize.
const UnknownTypeName = "(unknown type)"

var primitiveCodes = map[byte]Kind{
	'V': KindVoid,
	'B': KindByte,
	'C': KindChar,
	'D': KindDouble,
	'F': KindFloat,
	'I': KindInt,
	'J': KindLong,
	'S': KindShort,
	'Z': KindBoolean,
}

var kindNames = [...]string{
	KindUnknown: UnknownTypeName,
	KindVoid:    "void",
	KindByte:    "byte",
	KindChar:    "char",
	KindDouble:  "double",
	KindFloat:   "float",
	KindInt:     "int",
	KindLong:    "long",
	KindShort:   "short",
	KindBoolean: "boolean",
	KindObject:  "object",
}

var kindCodes = [...]string{
	KindVoid:    "V",
	KindByte:    "B",
	KindChar:    "C",
	KindDouble:  "D",
	KindFloat:   "F",
	KindInt:     "I",
	KindLong:    "J",
	KindShort:   "S",
	KindBoolean: "Z",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return UnknownTypeName
}

// Type is one token of a descriptor. A Type with Dimensions > 0 is an
// array of that many dimensions whose element is described by Kind and
// ClassName.
type Type struct {
	Kind       Kind
	ClassName  string // internal form, set for KindObject
	Dimensions int
}

func (t Type) IsArray() bool { return t.Dimensions > 0 }

func (t Type) IsPrimitive() bool {
	return t.Dimensions == 0 && t.Kind != KindObject && t.Kind != KindUnknown && t.Kind != KindVoid
}

func (t Type) IsReference() bool {
	return t.Dimensions > 0 || t.Kind == KindObject
}

// IsWide reports whether a value of this type takes two local variable
// slots and two operand stack entries.
func (t Type) IsWide() bool {
	return t.Dimensions == 0 && (t.Kind == KindLong || t.Kind == KindDouble)
}

// Slots is the number of local variable slots a value of this type uses.
func (t Type) Slots() int {
	switch {
	case t.Dimensions == 0 && t.Kind == KindVoid:
		return 0
	case t.IsWide():
		return 2
	}
	return 1
}

// Element strips one array dimension.
func (t Type) Element() Type {
	if t.Dimensions > 0 {
		t.Dimensions--
	}
	return t
}

func (t Type) baseName() string {
	if t.Kind == KindObject {
		return InternalToSourceName(t.ClassName)
	}
	return t.Kind.String()
}

// String renders the type the way Java source spells it.
func (t Type) String() string {
	return t.baseName() + strings.Repeat("[]", t.Dimensions)
}

// Descriptor renders the type back into descriptor syntax.
func (t Type) Descriptor() string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("[", t.Dimensions))
	switch t.Kind {
	case KindObject:
		sb.WriteString("L" + t.ClassName + ";")
	case KindUnknown:
		sb.WriteString("?")
	default:
		sb.WriteString(kindCodes[t.Kind])
	}
	return sb.String()
}

// scanType reads one token starting at desc[start] and returns it with the
// index just past it. A code it does not know becomes a KindUnknown token
// one character wide so the caller can continue.
func scanType(desc string, start int) (Type, int, bool) {
	t := Type{}
	i := start
	for i < len(desc) && desc[i] == '[' {
		t.Dimensions++
		i++
	}
	if i >= len(desc) {
		return t, i, false
	}
	if k, ok := primitiveCodes[desc[i]]; ok {
		t.Kind = k
		return t, i + 1, true
	}
	if desc[i] == 'L' {
		semicolon := strings.IndexByte(desc[i:], ';')
		if semicolon == -1 {
			return t, len(desc), false
		}
		t.Kind = KindObject
		t.ClassName = desc[i+1 : i+semicolon]
		return t, i + semicolon + 1, true
	}
	return t, i + 1, false
}

// ParseFieldDescriptor parses a single field type. Malformed input yields
// a KindUnknown token rather than an error.
func ParseFieldDescriptor(desc string) Type {
	t, _, _ := scanType(desc, 0)
	return t
}

func validFieldDescriptor(desc string) bool {
	t, next, ok := scanType(desc, 0)
	return ok && next == len(desc) && t.Kind != KindVoid
}

type MethodDescriptor struct {
	Parameters []Type
	Return     Type

	// Malformed is set when any token was unrecognized or the parameter
	// list was not properly delimited.
	Malformed bool
}

// ParseMethodDescriptor tokenizes a method descriptor. It never fails:
// unknown codes become KindUnknown tokens and Malformed is set.
func ParseMethodDescriptor(desc string) *MethodDescriptor {
	md := &MethodDescriptor{}
	i := 0
	if strings.HasPrefix(desc, "(") {
		i = 1
	} else {
		md.Malformed = true
	}
	for i < len(desc) && desc[i] != ')' {
		t, next, ok := scanType(desc, i)
		if !ok {
			md.Malformed = true
		}
		md.Parameters = append(md.Parameters, t)
		i = next
	}
	if i >= len(desc) {
		md.Malformed = true
		md.Return = Type{Kind: KindUnknown}
		return md
	}
	t, next, ok := scanType(desc, i+1)
	if !ok || next != len(desc) {
		md.Malformed = true
	}
	md.Return = t
	return md
}

func (md *MethodDescriptor) String() string {
	return "(" + strings.Join(md.ParameterNames(false), ", ") + ") " + md.Return.String()
}

// Descriptor renders md back into descriptor syntax.
func (md *MethodDescriptor) Descriptor() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range md.Parameters {
		sb.WriteString(p.Descriptor())
	}
	sb.WriteByte(')')
	sb.WriteString(md.Return.Descriptor())
	return sb.String()
}

// ParameterNames renders one readable string per parameter. With varargs
// set the trailing array parameter is shown with "..." in place of its
// last "[]"; the Type itself is still an array.
func (md *MethodDescriptor) ParameterNames(varargs bool) []string {
	names := make([]string, len(md.Parameters))
	for i, p := range md.Parameters {
		names[i] = p.String()
	}
	if last := len(md.Parameters) - 1; varargs && last >= 0 && md.Parameters[last].IsArray() {
		names[last] = strings.TrimSuffix(names[last], "[]") + "..."
	}
	return names
}

// LocalSlot maps a parameter index to the local variable slot that holds
// it on method entry. Non-static methods keep the receiver in slot 0;
// long and double parameters take two slots. Returns -1 for an index out
// of range.
func (md *MethodDescriptor) LocalSlot(param int, static bool) int {
	if param < 0 || param >= len(md.Parameters) {
		return -1
	}
	slot := receiverSlots(static)
	for _, p := range md.Parameters[:param] {
		slot += p.Slots()
	}
	return slot
}

// ParameterIndex is the inverse of LocalSlot. Both slots of a long or
// double map to the same parameter. The receiver slot and slots past the
// parameters report false.
func (md *MethodDescriptor) ParameterIndex(slot int, static bool) (int, bool) {
	cur := receiverSlots(static)
	if slot < cur {
		return -1, false
	}
	for i, p := range md.Parameters {
		next := cur + p.Slots()
		if slot < next {
			return i, true
		}
		cur = next
	}
	return -1, false
}

// ArgumentSlots is the number of local slots occupied on entry.
func (md *MethodDescriptor) ArgumentSlots(static bool) int {
	n := receiverSlots(static)
	for _, p := range md.Parameters {
		n += p.Slots()
	}
	return n
}

func receiverSlots(static bool) int {
	if static {
		return 0
	}
	return 1
}

// Readable renders a field or method descriptor for humans.
// "[[I" becomes "int[][]" and "(ILjava/lang/String;)V" becomes
// "(int, java.lang.String) void".
func Readable(desc string) string {
	if strings.HasPrefix(desc, "(") {
		return ParseMethodDescriptor(desc).String()
	}
	var parts []string
	for i := 0; i < len(desc); {
		t, next, _ := scanType(desc, i)
		parts = append(parts, t.String())
		i = next
	}
	return strings.Join(parts, ", ")
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
