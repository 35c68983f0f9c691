package format

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/dhamidi/classkit/classfile"
)

type JSONEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(cf *classfile.ClassFile) error {
	e.class = cf
	if err := encode(e.w, e); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, "\n")
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildClassData(), "", "  ")
}

type jsonClass struct {
	Name        string           `json:"name"`
	SuperClass  string           `json:"superClass,omitempty"`
	Interfaces  []string         `json:"interfaces,omitempty"`
	Kind        string           `json:"kind"`
	Modifiers   []string         `json:"modifiers,omitempty"`
	Version     jsonVersion      `json:"version"`
	SourceFile  string           `json:"sourceFile,omitempty"`
	Constants   []jsonConstant   `json:"constantPool"`
	Fields      []jsonField      `json:"fields,omitempty"`
	Methods     []jsonMethod     `json:"methods,omitempty"`
	Attributes  []jsonAttribute  `json:"attributes,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
}

type jsonVersion struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

type jsonConstant struct {
	Index int    `json:"index"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

type jsonField struct {
	Name       string          `json:"name"`
	Descriptor string          `json:"descriptor"`
	Type       string          `json:"type"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonMethod struct {
	Name       string          `json:"name"`
	Descriptor string          `json:"descriptor"`
	ReturnType string          `json:"returnType"`
	Parameters []jsonParameter `json:"parameters,omitempty"`
	Modifiers  []string        `json:"modifiers,omitempty"`
	MaxStack   int             `json:"maxStack,omitempty"`
	MaxLocals  int             `json:"maxLocals,omitempty"`
	CodeLength int             `json:"codeLength,omitempty"`
	Exceptions []string        `json:"exceptions,omitempty"`
	Attributes []jsonAttribute `json:"attributes,omitempty"`
}

type jsonParameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Slot int    `json:"slot"`
}

type jsonAttribute struct {
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

type jsonDiagnostic struct {
	Severity string `json:"severity"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

func (e *JSONEncoder) buildClassData() jsonClass {
	c := e.class
	cp := c.ConstantPool
	data := jsonClass{
		Name:       classfile.InternalToSourceName(c.ClassName()),
		SuperClass: classfile.InternalToSourceName(c.SuperClassName()),
		Kind:       classKind(c),
		Modifiers:  modifiers(c.AccessFlags.ClassString()),
		Version: jsonVersion{
			Major: c.MajorVersion,
			Minor: c.MinorVersion,
		},
		SourceFile: c.SourceFile(),
		Attributes: buildAttributes(cp, c.Attributes),
	}
	for _, name := range c.InterfaceNames() {
		data.Interfaces = append(data.Interfaces, classfile.InternalToSourceName(name))
	}
	for i, entry := range cp {
		if entry == nil {
			continue
		}
		data.Constants = append(data.Constants, jsonConstant{
			Index: i + 1,
			Tag:   entry.Tag().String(),
			Value: cp.Describe(uint16(i + 1)),
		})
	}
	for _, f := range c.Fields {
		data.Fields = append(data.Fields, jsonField{
			Name:       f.Name(),
			Descriptor: f.Descriptor(),
			Type:       f.Type().String(),
			Modifiers:  modifiers(f.AccessFlags.FieldString()),
			Attributes: buildAttributes(cp, f.Attributes),
		})
	}
	for _, m := range c.Methods {
		data.Methods = append(data.Methods, buildMethod(cp, m))
	}
	for _, d := range c.Diagnostics {
		data.Diagnostics = append(data.Diagnostics, jsonDiagnostic{
			Severity: d.Severity.String(),
			Location: d.Location,
			Message:  d.Message,
		})
	}
	return data
}

func buildMethod(cp classfile.ConstantPool, m *classfile.MethodInfo) jsonMethod {
	jm := jsonMethod{
		Name:       m.Name(),
		Descriptor: m.Descriptor(),
		ReturnType: m.ReturnTypeName(),
		Modifiers:  modifiers(m.AccessFlags.MethodString()),
		MaxStack:   m.MaxStack(),
		MaxLocals:  m.MaxLocals(),
		CodeLength: m.CodeLength(),
		Exceptions: m.ExceptionTypes(),
		Attributes: buildAttributes(cp, m.Attributes),
	}
	names := m.ParameterNames()
	for i, typ := range m.ParameterTypeNames() {
		jm.Parameters = append(jm.Parameters, jsonParameter{
			Name: names[i],
			Type: typ,
			Slot: m.LocalSlot(i),
		})
	}
	return jm
}

func buildAttributes(cp classfile.ConstantPool, attrs []classfile.AttributeInfo) []jsonAttribute {
	var out []jsonAttribute
	for i := range attrs {
		out = append(out, jsonAttribute{
			Name:   attrs[i].Name(),
			Detail: attributeDetail(cp, attrs[i].Attribute),
		})
	}
	return out
}

func modifiers(flags string) []string {
	if flags == "" {
		return nil
	}
	return strings.Fields(flags)
}
