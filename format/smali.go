package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/dexdis/dalvik"
	"github.com/dhamidi/dexdis/dex"
)

// SmaliEncoder writes a class as a smali listing: the class header, its
// annotations and every field and method declaration. Method bodies are not
// disassembled; a comment records where the code item lives.
type SmaliEncoder struct {
	w     io.Writer
	class *dalvik.Class
	Theme Theme
}

func NewSmaliEncoder(w io.Writer) *SmaliEncoder {
	return &SmaliEncoder{w: w}
}

func (e *SmaliEncoder) Encode(class *dalvik.Class) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *SmaliEncoder) MarshalText() ([]byte, error) {
	if e.class == nil {
		return nil, fmt.Errorf("no class to encode")
	}
	var sb strings.Builder
	c := e.class
	t := e.Theme

	sb.WriteString(t.directive(".class"))
	writeFlags(&sb, c.AccessFlagNames(), t)
	sb.WriteByte(' ')
	sb.WriteString(t.typ(c.ClassType()))
	sb.WriteByte('\n')

	if super := c.SuperType(); super != "" {
		fmt.Fprintf(&sb, "%s %s\n", t.directive(".super"), t.typ(super))
	}
	if source, ok := c.SourceFile(); ok {
		fmt.Fprintf(&sb, "%s %s\n", t.directive(".source"), t.literal(QuoteString(source)))
	}

	if ifaces := c.Interfaces(); len(ifaces) > 0 {
		e.section(&sb, "interfaces")
		for _, iface := range ifaces {
			fmt.Fprintf(&sb, "%s %s\n", t.directive(".implements"), t.typ(iface))
		}
	}

	if anns, ok := c.Annotations(); ok && len(anns) > 0 {
		e.section(&sb, "annotations")
		for i, ann := range anns {
			if i > 0 {
				sb.WriteByte('\n')
			}
			writeAnnotation(&sb, ann, "", t)
		}
	}

	if fields := c.StaticFields(); len(fields) > 0 {
		e.section(&sb, "static fields")
		e.writeFields(&sb, fields)
	}
	if fields := c.InstanceFields(); len(fields) > 0 {
		e.section(&sb, "instance fields")
		e.writeFields(&sb, fields)
	}
	if methods := c.DirectMethods(); len(methods) > 0 {
		e.section(&sb, "direct methods")
		e.writeMethods(&sb, methods)
	}
	if methods := c.VirtualMethods(); len(methods) > 0 {
		e.section(&sb, "virtual methods")
		e.writeMethods(&sb, methods)
	}

	return []byte(sb.String()), nil
}

func (e *SmaliEncoder) section(sb *strings.Builder, name string) {
	sb.WriteString("\n\n")
	sb.WriteString(e.Theme.comment("# " + name))
	sb.WriteByte('\n')
}

func (e *SmaliEncoder) writeFields(sb *strings.Builder, fields []dalvik.Field) {
	t := e.Theme
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(t.directive(".field"))
		writeFlags(sb, f.FlagNames(), t)
		fmt.Fprintf(sb, " %s:%s", t.member(f.Name()), t.typ(f.Type()))
		if v, ok := f.InitialValue(); ok {
			sb.WriteString(" = ")
			writeValue(sb, v, "", t)
		}
		sb.WriteByte('\n')

		if set, ok := f.Annotations(); ok && set.Len() > 0 {
			for _, ann := range set.Items {
				writeAnnotation(sb, ann, indentUnit, t)
			}
			sb.WriteString(t.directive(".end field"))
			sb.WriteByte('\n')
		}
	}
}

func (e *SmaliEncoder) writeMethods(sb *strings.Builder, methods []dalvik.Method) {
	t := e.Theme
	for i, m := range methods {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(t.directive(".method"))
		writeFlags(sb, m.FlagNames(), t)
		fmt.Fprintf(sb, " %s%s\n", t.member(m.Name()), t.typ(m.Descriptor()))

		if m.HasCode() {
			fmt.Fprintf(sb, "%s%s\n", indentUnit, t.comment(fmt.Sprintf("# code_item at 0x%x", m.CodeOffset)))
		}

		if sets, ok := m.ParameterAnnotations(); ok {
			for _, set := range sets {
				sb.WriteString(indentUnit)
				sb.WriteString(t.directive(".parameter"))
				sb.WriteByte('\n')
				if set.Len() == 0 {
					continue
				}
				for _, ann := range set.Items {
					writeAnnotation(sb, ann, indentUnit+indentUnit, t)
				}
				sb.WriteString(indentUnit)
				sb.WriteString(t.directive(".end parameter"))
				sb.WriteByte('\n')
			}
		}

		if set, ok := m.Annotations(); ok {
			for _, ann := range set.Items {
				writeAnnotation(sb, ann, indentUnit, t)
			}
		}

		sb.WriteString(t.directive(".end method"))
		sb.WriteByte('\n')
	}
}

func writeFlags(sb *strings.Builder, names []string, t Theme) {
	for _, name := range names {
		sb.WriteByte(' ')
		sb.WriteString(t.keyword(name))
	}
}

func writeAnnotation(sb *strings.Builder, ann dex.Annotation, indent string, t Theme) {
	fmt.Fprintf(sb, "%s%s %s %s\n", indent, t.directive(".annotation"), t.keyword(ann.Visibility.String()), t.typ(ann.Type))
	writeElements(sb, ann.Elements, indent+indentUnit, t)
	sb.WriteString(indent)
	sb.WriteString(t.directive(".end annotation"))
	sb.WriteByte('\n')
}
