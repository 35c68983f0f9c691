package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/classkit/classfile"
)

// LineEncoder writes one tab-separated line per class, field and method,
// suited to grep and cut.
type LineEncoder struct {
	w     io.Writer
	class *classfile.ClassFile
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(cf *classfile.ClassFile) error {
	e.class = cf
	return encode(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	c := e.class

	fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n",
		classKind(c),
		classfile.InternalToSourceName(c.ClassName()),
		orDash(c.AccessFlags.ClassString()),
		c.Version(),
	)

	for _, f := range c.Fields {
		fmt.Fprintf(&sb, "field\t%s\t%s\t%s\n",
			f.Name(),
			f.Type().String(),
			orDash(f.AccessFlags.FieldString()),
		)
	}

	for _, m := range c.Methods {
		fmt.Fprintf(&sb, "method\t%s\t%s\t%s\t%s\n",
			m.Name(),
			m.ReturnTypeName(),
			parametersStr(m.ParameterTypeNames()),
			orDash(m.AccessFlags.MethodString()),
		)
	}

	return []byte(sb.String()), nil
}

func classKind(c *classfile.ClassFile) string {
	switch {
	case c.IsModule():
		return "module"
	case c.IsAnnotation():
		return "annotation"
	case c.IsInterface():
		return "interface"
	case c.IsEnum():
		return "enum"
	default:
		return "class"
	}
}

func parametersStr(params []string) string {
	if len(params) == 0 {
		return "-"
	}
	return strings.Join(params, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, " ", ",")
}
