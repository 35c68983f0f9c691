package classfile

import "fmt"

type Annotation struct {
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

type ElementValuePair struct {
	ElementNameIndex uint16
	Value            ElementValue
}

// ElementValue is one of ConstValue, EnumConstValue, ClassValue,
// AnnotationValue or ArrayValue.
type ElementValue interface {
	ElementTag() byte
	encodeValue(w *writer)
	validateValue(cp ConstantPool) error
}

// ConstValue holds a primitive or String element; Tag is one of
// B C D F I J S Z s.
type ConstValue struct {
	Tag        byte
	ConstIndex uint16
}

type EnumConstValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

type ClassValue struct {
	ClassInfoIndex uint16
}

type AnnotationValue struct {
	Annotation Annotation
}

type ArrayValue struct {
	Values []ElementValue
}

func (v *ConstValue) ElementTag() byte      { return v.Tag }
func (v *EnumConstValue) ElementTag() byte  { return 'e' }
func (v *ClassValue) ElementTag() byte      { return 'c' }
func (v *AnnotationValue) ElementTag() byte { return '@' }
func (v *ArrayValue) ElementTag() byte      { return '[' }

// AnnotationsAttribute is RuntimeVisibleAnnotations or
// RuntimeInvisibleAnnotations depending on Visible.
type AnnotationsAttribute struct {
	Visible     bool
	Annotations []Annotation
}

// ParameterAnnotationsAttribute is RuntimeVisibleParameterAnnotations or
// RuntimeInvisibleParameterAnnotations depending on Visible.
type ParameterAnnotationsAttribute struct {
	Visible              bool
	ParameterAnnotations [][]Annotation
}

type AnnotationDefaultAttribute struct {
	DefaultValue ElementValue
}

func (a *AnnotationsAttribute) AttributeName() string {
	if a.Visible {
		return "RuntimeVisibleAnnotations"
	}
	return "RuntimeInvisibleAnnotations"
}

func (a *ParameterAnnotationsAttribute) AttributeName() string {
	if a.Visible {
		return "RuntimeVisibleParameterAnnotations"
	}
	return "RuntimeInvisibleParameterAnnotations"
}

func (*AnnotationDefaultAttribute) AttributeName() string { return "AnnotationDefault" }

func readAnnotations(visible bool) func(*reader) Attribute {
	return func(r *reader) Attribute {
		count := r.readU2()
		a := &AnnotationsAttribute{Visible: visible, Annotations: make([]Annotation, 0, count)}
		for i := uint16(0); i < count && r.err == nil; i++ {
			a.Annotations = append(a.Annotations, readAnnotation(r))
		}
		return a
	}
}

func readParameterAnnotations(visible bool) func(*reader) Attribute {
	return func(r *reader) Attribute {
		numParameters := r.readU1()
		a := &ParameterAnnotationsAttribute{Visible: visible, ParameterAnnotations: make([][]Annotation, 0, numParameters)}
		for i := uint8(0); i < numParameters && r.err == nil; i++ {
			count := r.readU2()
			anns := make([]Annotation, 0, count)
			for j := uint16(0); j < count && r.err == nil; j++ {
				anns = append(anns, readAnnotation(r))
			}
			a.ParameterAnnotations = append(a.ParameterAnnotations, anns)
		}
		return a
	}
}

func readAnnotationDefault(r *reader) Attribute {
	return &AnnotationDefaultAttribute{DefaultValue: readElementValue(r)}
}

func readAnnotation(r *reader) Annotation {
	ann := Annotation{TypeIndex: r.readU2()}
	numPairs := r.readU2()
	ann.ElementValuePairs = make([]ElementValuePair, 0, numPairs)
	for i := uint16(0); i < numPairs && r.err == nil; i++ {
		pair := ElementValuePair{ElementNameIndex: r.readU2()}
		pair.Value = readElementValue(r)
		ann.ElementValuePairs = append(ann.ElementValuePairs, pair)
	}
	return ann
}

func readElementValue(r *reader) ElementValue {
	tag := r.readU1()
	if r.err != nil {
		return nil
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		return &ConstValue{Tag: tag, ConstIndex: r.readU2()}
	case 'e':
		return &EnumConstValue{TypeNameIndex: r.readU2(), ConstNameIndex: r.readU2()}
	case 'c':
		return &ClassValue{ClassInfoIndex: r.readU2()}
	case '@':
		return &AnnotationValue{Annotation: readAnnotation(r)}
	case '[':
		numValues := r.readU2()
		arr := &ArrayValue{Values: make([]ElementValue, 0, numValues)}
		for i := uint16(0); i < numValues && r.err == nil; i++ {
			arr.Values = append(arr.Values, readElementValue(r))
		}
		return arr
	}
	// The element has no length prefix, so nothing after it can be located.
	r.err = corruptf("unknown element_value tag %q", tag)
	return nil
}

func (a *Annotation) encode(w *writer) {
	w.u2(a.TypeIndex)
	w.u2(uint16(len(a.ElementValuePairs)))
	for _, p := range a.ElementValuePairs {
		w.u2(p.ElementNameIndex)
		w.u1(p.Value.ElementTag())
		p.Value.encodeValue(w)
	}
}

func (v *ConstValue) encodeValue(w *writer) { w.u2(v.ConstIndex) }
func (v *EnumConstValue) encodeValue(w *writer) {
	w.u2(v.TypeNameIndex)
	w.u2(v.ConstNameIndex)
}
func (v *ClassValue) encodeValue(w *writer)      { w.u2(v.ClassInfoIndex) }
func (v *AnnotationValue) encodeValue(w *writer) { v.Annotation.encode(w) }
func (v *ArrayValue) encodeValue(w *writer) {
	w.u2(uint16(len(v.Values)))
	for _, e := range v.Values {
		w.u1(e.ElementTag())
		e.encodeValue(w)
	}
}

func (a *AnnotationsAttribute) encode(w *writer) {
	w.u2(uint16(len(a.Annotations)))
	for i := range a.Annotations {
		a.Annotations[i].encode(w)
	}
}

func (a *ParameterAnnotationsAttribute) encode(w *writer) {
	w.u1(uint8(len(a.ParameterAnnotations)))
	for _, anns := range a.ParameterAnnotations {
		w.u2(uint16(len(anns)))
		for i := range anns {
			anns[i].encode(w)
		}
	}
}

func (a *AnnotationDefaultAttribute) encode(w *writer) {
	w.u1(a.DefaultValue.ElementTag())
	a.DefaultValue.encodeValue(w)
}

var constValueTags = map[byte]ConstantTag{
	'B': ConstantInteger,
	'C': ConstantInteger,
	'I': ConstantInteger,
	'S': ConstantInteger,
	'Z': ConstantInteger,
	'D': ConstantDouble,
	'F': ConstantFloat,
	'J': ConstantLong,
	's': ConstantUtf8,
}

func (v *ConstValue) validateValue(cp ConstantPool) error {
	_, err := cp.ResolveTag(v.ConstIndex, constValueTags[v.Tag])
	return err
}

func (v *EnumConstValue) validateValue(cp ConstantPool) error {
	if _, err := cp.ResolveTag(v.TypeNameIndex, ConstantUtf8); err != nil {
		return err
	}
	_, err := cp.ResolveTag(v.ConstNameIndex, ConstantUtf8)
	return err
}

func (v *ClassValue) validateValue(cp ConstantPool) error {
	_, err := cp.ResolveTag(v.ClassInfoIndex, ConstantUtf8)
	return err
}

func (v *AnnotationValue) validateValue(cp ConstantPool) error {
	return v.Annotation.validate(cp)
}

func (v *ArrayValue) validateValue(cp ConstantPool) error {
	for _, e := range v.Values {
		if err := e.validateValue(cp); err != nil {
			return err
		}
	}
	return nil
}

func (a *Annotation) validate(cp ConstantPool) error {
	if _, err := cp.ResolveTag(a.TypeIndex, ConstantUtf8); err != nil {
		return fmt.Errorf("annotation type: %w", err)
	}
	for i, p := range a.ElementValuePairs {
		if _, err := cp.ResolveTag(p.ElementNameIndex, ConstantUtf8); err != nil {
			return fmt.Errorf("element %d name: %w", i, err)
		}
		if err := p.Value.validateValue(cp); err != nil {
			return fmt.Errorf("element %d value: %w", i, err)
		}
	}
	return nil
}

func (a *AnnotationsAttribute) validate(cp ConstantPool) error {
	for i := range a.Annotations {
		if err := a.Annotations[i].validate(cp); err != nil {
			return err
		}
	}
	return nil
}

func (a *ParameterAnnotationsAttribute) validate(cp ConstantPool) error {
	for p, anns := range a.ParameterAnnotations {
		for i := range anns {
			if err := anns[i].validate(cp); err != nil {
				return fmt.Errorf("parameter %d: %w", p, err)
			}
		}
	}
	return nil
}

func (a *AnnotationDefaultAttribute) validate(cp ConstantPool) error {
	return a.DefaultValue.validateValue(cp)
}

// TypeName returns the annotation's type in source form, e.g.
// "java.lang.Deprecated".
func (a *Annotation) TypeName(cp ConstantPool) string {
	return ParseFieldDescriptor(cp.GetUtf8(a.TypeIndex)).String()
}
