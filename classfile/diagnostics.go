package classfile

import "fmt"

type Severity uint8

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	}
	return "unknown"
}

// Diagnostic is a non-fatal observation made while loading a class file,
// such as an unrecognized attribute or reserved access flag bits.
type Diagnostic struct {
	Severity Severity
	Location string
	Message  string
}

func (d Diagnostic) String() string {
	if d.Location == "" {
		return d.Severity.String() + ": " + d.Message
	}
	return d.Severity.String() + ": " + d.Location + ": " + d.Message
}

type Diagnostics []Diagnostic

func (ds *Diagnostics) add(sev Severity, location, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Severity: sev,
		Location: location,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Filter returns the diagnostics at or above min.
func (ds Diagnostics) Filter(min Severity) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity >= min {
			out = append(out, d)
		}
	}
	return out
}
