package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/dhamidi/dexdis/dex"
)

const indentUnit = "    "

// FormatValue renders an encoded value as a smali literal. Arrays and
// subannotations span several lines, indented relative to column zero.
func FormatValue(v dex.EncodedValue) string {
	var sb strings.Builder
	writeValue(&sb, v, "", Theme{})
	return sb.String()
}

func writeValue(sb *strings.Builder, v dex.EncodedValue, indent string, theme Theme) {
	switch v.Type {
	case dex.ValueArray:
		arr, _ := v.AsArray()
		writeArray(sb, arr, indent, theme)
		return
	case dex.ValueAnnotation:
		ann, _ := v.Value.(*dex.Annotation)
		writeSubannotation(sb, ann, indent, theme)
		return
	case dex.ValueTypeRef:
		s, _ := v.AsString()
		sb.WriteString(theme.typ(s))
		return
	}
	sb.WriteString(theme.literal(literal(v)))
}

func literal(v dex.EncodedValue) string {
	switch v.Type {
	case dex.ValueByte:
		i, _ := v.AsInt()
		return hexInt(i) + "t"
	case dex.ValueShort:
		i, _ := v.AsInt()
		return hexInt(i) + "s"
	case dex.ValueInt:
		i, _ := v.AsInt()
		return hexInt(i)
	case dex.ValueLong:
		i, _ := v.AsInt()
		return hexInt(i) + "L"
	case dex.ValueChar:
		c, _ := v.Value.(uint16)
		return quoteChar(c)
	case dex.ValueFloat:
		f, _ := v.Value.(float32)
		return formatFloat(float64(f), 32) + "f"
	case dex.ValueDouble:
		f, _ := v.Value.(float64)
		return formatFloat(f, 64)
	case dex.ValueString:
		s, _ := v.AsString()
		return QuoteString(s)
	case dex.ValueField:
		f, _ := v.Value.(dex.FieldID)
		return f.String()
	case dex.ValueEnum:
		f, _ := v.Value.(dex.FieldID)
		return ".enum " + f.String()
	case dex.ValueMethod:
		m, _ := v.Value.(dex.MethodID)
		return m.String()
	case dex.ValueMethodType:
		p, _ := v.Value.(dex.Proto)
		return p.Descriptor()
	case dex.ValueMethodHandle:
		h, _ := v.Value.(dex.MethodHandle)
		return fmt.Sprintf("method-handle@%d", h.Index)
	case dex.ValueNull:
		return "null"
	case dex.ValueBoolean:
		b, _ := v.AsBool()
		return strconv.FormatBool(b)
	}
	return fmt.Sprintf("# unknown value type 0x%02x", uint8(v.Type))
}

func hexInt(i int64) string {
	if i < 0 {
		return fmt.Sprintf("-0x%x", uint64(-i))
	}
	return fmt.Sprintf("0x%x", i)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// QuoteString quotes s the way smali string literals are written: printable
// ASCII as is, everything else as \uXXXX UTF-16 escapes.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, u := range utf16.Encode([]rune(s)) {
		writeEscaped(&sb, u, '"')
	}
	sb.WriteByte('"')
	return sb.String()
}

func quoteChar(c uint16) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	writeEscaped(&sb, c, '\'')
	sb.WriteByte('\'')
	return sb.String()
}

func writeEscaped(sb *strings.Builder, u uint16, quote byte) {
	switch {
	case u == uint16(quote) || u == '\\':
		sb.WriteByte('\\')
		sb.WriteByte(byte(u))
	case u == '\n':
		sb.WriteString(`\n`)
	case u == '\r':
		sb.WriteString(`\r`)
	case u == '\t':
		sb.WriteString(`\t`)
	case u >= 0x20 && u < 0x7f:
		sb.WriteByte(byte(u))
	default:
		fmt.Fprintf(sb, `\u%04x`, u)
	}
}

func writeArray(sb *strings.Builder, arr *dex.EncodedArray, indent string, theme Theme) {
	if arr.Len() == 0 {
		sb.WriteString("{}")
		return
	}
	inner := indent + indentUnit
	sb.WriteString("{\n")
	for i, v := range arr.Values {
		sb.WriteString(inner)
		writeValue(sb, v, inner, theme)
		if i < len(arr.Values)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(indent)
	sb.WriteByte('}')
}

func writeSubannotation(sb *strings.Builder, ann *dex.Annotation, indent string, theme Theme) {
	if ann == nil {
		sb.WriteString(theme.literal("null"))
		return
	}
	sb.WriteString(theme.directive(".subannotation"))
	sb.WriteByte(' ')
	sb.WriteString(theme.typ(ann.Type))
	sb.WriteByte('\n')
	writeElements(sb, ann.Elements, indent+indentUnit, theme)
	sb.WriteString(indent)
	sb.WriteString(theme.directive(".end subannotation"))
}

func writeElements(sb *strings.Builder, elements []dex.AnnotationElement, indent string, theme Theme) {
	for _, e := range elements {
		sb.WriteString(indent)
		sb.WriteString(theme.member(e.Name))
		sb.WriteString(" = ")
		writeValue(sb, e.Value, indent, theme)
		sb.WriteByte('\n')
	}
}
