package dex

import "strings"

type TypeDescriptor struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

// String renders the type as Java source, e.g. "java.lang.String[]".
func (td *TypeDescriptor) String() string {
	var sb strings.Builder
	if td.BaseType != "" {
		sb.WriteString(td.BaseType)
	} else if td.ClassName != "" {
		sb.WriteString(InternalToSourceName(td.ClassName))
	}
	for i := 0; i < td.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

// ParseTypeDescriptor parses a single type descriptor. It returns nil when
// desc is not a complete descriptor.
func ParseTypeDescriptor(desc string) *TypeDescriptor {
	td, n := parseTypeDescriptor(desc, 0)
	if td == nil || n != len(desc) {
		return nil
	}
	return td
}

// ParseMethodDescriptor splits "(II)V" into parameter and return types.
func ParseMethodDescriptor(desc string) (params []TypeDescriptor, ret *TypeDescriptor) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, nil
	}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		td, consumed := parseTypeDescriptor(desc, i)
		if td == nil {
			return nil, nil
		}
		params = append(params, *td)
		i += consumed
	}
	if i >= len(desc) {
		return nil, nil
	}
	ret = ParseTypeDescriptor(desc[i+1:])
	return params, ret
}

func parseTypeDescriptor(desc string, start int) (*TypeDescriptor, int) {
	if start >= len(desc) {
		return nil, 0
	}

	td := &TypeDescriptor{}
	i := start
	for i < len(desc) && desc[i] == '[' {
		td.ArrayDepth++
		i++
	}
	if i >= len(desc) {
		return nil, 0
	}

	switch desc[i] {
	case 'V':
		td.BaseType = "void"
	case 'Z':
		td.BaseType = "boolean"
	case 'B':
		td.BaseType = "byte"
	case 'S':
		td.BaseType = "short"
	case 'C':
		td.BaseType = "char"
	case 'I':
		td.BaseType = "int"
	case 'J':
		td.BaseType = "long"
	case 'F':
		td.BaseType = "float"
	case 'D':
		td.BaseType = "double"
	case 'L':
		semicolon := strings.IndexByte(desc[i:], ';')
		if semicolon == -1 {
			return nil, 0
		}
		td.ClassName = desc[i+1 : i+semicolon]
		return td, i - start + semicolon + 1
	default:
		return nil, 0
	}
	return td, i - start + 1
}

// DescriptorToSourceName converts a type descriptor to its Java source form.
// Strings that are not descriptors are returned unchanged.
func DescriptorToSourceName(desc string) string {
	td := ParseTypeDescriptor(desc)
	if td == nil {
		return desc
	}
	return td.String()
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// SimpleName returns the unqualified class name of a class descriptor,
// e.g. "Foo" for "Lcom/example/Foo;".
func SimpleName(desc string) string {
	name := DescriptorToSourceName(desc)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
