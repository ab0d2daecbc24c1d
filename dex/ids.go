package dex

import "strings"

type Proto struct {
	Shorty     string
	ReturnType string
	Parameters []string
}

// Descriptor returns the method descriptor, e.g. "(ILjava/lang/String;)V".
func (p Proto) Descriptor() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, param := range p.Parameters {
		sb.WriteString(param)
	}
	sb.WriteByte(')')
	sb.WriteString(p.ReturnType)
	return sb.String()
}

// FieldID is a resolved field_id_item. Index is the field's position in the
// file's field table and identifies it uniquely within the file.
type FieldID struct {
	Index uint32
	Class string
	Type  string
	Name  string
}

func (f FieldID) String() string {
	return f.Class + "->" + f.Name + ":" + f.Type
}

// MethodID is a resolved method_id_item. Index is the method's position in
// the file's method table.
type MethodID struct {
	Index uint32
	Class string
	Name  string
	Proto Proto
}

func (m MethodID) String() string {
	return m.Class + "->" + m.Name + m.Proto.Descriptor()
}

// MethodHandle is a method_handle_item reference. Only the table index is
// kept; the handle table is not decoded.
type MethodHandle struct {
	Index uint32
}
