package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/dexdis/dalvik"
	"github.com/dhamidi/dexdis/dex"
)

// LineEncoder writes one tab-separated line for the class and one for each
// of its members, for use with grep, cut and awk.
type LineEncoder struct {
	w     io.Writer
	class *dalvik.Class
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(class *dalvik.Class) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	if e.class == nil {
		return nil, fmt.Errorf("no class to encode")
	}
	var sb strings.Builder
	c := e.class

	fmt.Fprintf(&sb, "%s\t%s\t%s\n", classKind(c), c.Name(), joinFlags(c.AccessFlagNames()))

	e.writeFields(&sb, "static", c.StaticFields())
	e.writeFields(&sb, "instance", c.InstanceFields())
	e.writeMethods(&sb, "direct", c.DirectMethods())
	e.writeMethods(&sb, "virtual", c.VirtualMethods())

	return []byte(sb.String()), nil
}

func (e *LineEncoder) writeFields(sb *strings.Builder, kind string, fields []dalvik.Field) {
	for _, f := range fields {
		value := "-"
		if v, ok := f.InitialValue(); ok {
			value = singleLine(FormatValue(v))
		}
		fmt.Fprintf(sb, "field\t%s\t%s\t%s\t%s\t%s\n",
			f.Name(),
			dex.DescriptorToSourceName(f.Type()),
			kind,
			joinFlags(f.FlagNames()),
			value,
		)
	}
}

func (e *LineEncoder) writeMethods(sb *strings.Builder, kind string, methods []dalvik.Method) {
	for _, m := range methods {
		ret, params := signature(m)
		fmt.Fprintf(sb, "method\t%s\t%s\t%s\t%s\t%s\n",
			m.Name(),
			ret,
			joinFlags(params),
			kind,
			joinFlags(m.FlagNames()),
		)
	}
}

func classKind(c *dalvik.Class) string {
	switch {
	case c.IsAnnotation():
		return "annotation"
	case c.IsEnum():
		return "enum"
	case c.IsInterface():
		return "interface"
	default:
		return "class"
	}
}

func joinFlags(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

// signature returns the source form of a method's return and parameter types.
// A descriptor that does not parse is reported as its raw type strings.
func signature(m dalvik.Method) (string, []string) {
	params, ret := dex.ParseMethodDescriptor(m.Descriptor())
	if ret == nil {
		return m.ReturnType(), m.Parameters()
	}
	names := make([]string, len(params))
	for i := range params {
		names[i] = params[i].String()
	}
	return ret.String(), names
}

// singleLine folds a multi-line literal such as an array onto one line.
func singleLine(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, " ")
}
