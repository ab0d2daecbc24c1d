// Package dextest assembles small DEX images for tests.
//
// It must not import package dex, whose own tests use it. Flags, value types
// and visibilities are plain integers holding their on-disk values.
package dextest

import (
	"bytes"
	"encoding/binary"
)

const (
	headerSize  = 0x70
	endianTag   = 0x12345678
	classDefLen = 32

	// NoIndex marks an absent string or type index.
	NoIndex = 0xffffffff
)

// encoded_value types used by the helpers below.
const (
	valueInt     = 0x04
	valueArray   = 0x1c
	valueNull    = 0x1e
	valueBoolean = 0x1f
)

// Builder collects strings, types and ids. Everything a class refers to must
// be interned before Build is called; Build lays out the id tables after the
// header and appends every data item behind them.
type Builder struct {
	strings   []string
	stringIdx map[string]uint32
	types     []uint32
	typeIdx   map[string]uint32
	protos    []protoSpec
	fields    []fieldSpec
	methods   []methodSpec
	classes   []Class
}

type protoSpec struct {
	shorty uint32
	ret    uint32
	params []uint32
}

type fieldSpec struct {
	class, typ uint16
	name       uint32
}

type methodSpec struct {
	class, proto uint16
	name         uint32
}

// Class is one class_def_item. Type, Super and Source are type and string
// indexes; use NoIndex for an absent superclass or source file.
type Class struct {
	Type         uint32
	Flags        uint32
	Super        uint32
	Interfaces   []uint32
	Source       uint32
	Data         *ClassData
	Annotations  *AnnotationDirectory
	StaticValues [][]byte
	HasStatics   bool
}

type FieldEntry struct {
	Index uint32
	Flags uint32
}

type MethodEntry struct {
	Index uint32
	Flags uint32
	Code  uint32
}

type ClassData struct {
	Static, Instance []FieldEntry
	Direct, Virtual  []MethodEntry
}

// Annotation is an annotation_item: a visibility byte followed by an
// encoded_annotation body.
type Annotation struct {
	Visibility byte
	Body       []byte
}

type MemberAnnotations struct {
	Index uint32
	Set   []Annotation
}

// ParameterAnnotations holds one set per parameter; a nil set is written as
// a zero offset.
type ParameterAnnotations struct {
	Index uint32
	Sets  [][]Annotation
}

type AnnotationDirectory struct {
	Class      []Annotation
	Fields     []MemberAnnotations
	Methods    []MemberAnnotations
	Parameters []ParameterAnnotations
}

func NewBuilder() *Builder {
	return &Builder{stringIdx: map[string]uint32{}, typeIdx: map[string]uint32{}}
}

// Str interns s and returns its string index.
func (b *Builder) Str(s string) uint32 {
	if idx, ok := b.stringIdx[s]; ok {
		return idx
	}
	idx := uint32(len(b.strings))
	b.strings = append(b.strings, s)
	b.stringIdx[s] = idx
	return idx
}

// Type interns a type descriptor and returns its type index.
func (b *Builder) Type(desc string) uint32 {
	if idx, ok := b.typeIdx[desc]; ok {
		return idx
	}
	idx := uint32(len(b.types))
	b.types = append(b.types, b.Str(desc))
	b.typeIdx[desc] = idx
	return idx
}

func (b *Builder) Proto(shorty, ret string, params ...string) uint16 {
	ps := protoSpec{shorty: b.Str(shorty), ret: b.Type(ret)}
	for _, p := range params {
		ps.params = append(ps.params, b.Type(p))
	}
	b.protos = append(b.protos, ps)
	return uint16(len(b.protos) - 1)
}

func (b *Builder) Field(class, typ, name string) uint32 {
	b.fields = append(b.fields, fieldSpec{class: uint16(b.Type(class)), typ: uint16(b.Type(typ)), name: b.Str(name)})
	return uint32(len(b.fields) - 1)
}

func (b *Builder) Method(class, name string, proto uint16) uint32 {
	b.methods = append(b.methods, methodSpec{class: uint16(b.Type(class)), proto: proto, name: b.Str(name)})
	return uint32(len(b.methods) - 1)
}

func (b *Builder) AddClass(c Class) {
	b.classes = append(b.classes, c)
}

func writeUleb(buf *bytes.Buffer, v uint32) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf.WriteByte(c | 0x80)
			continue
		}
		buf.WriteByte(c)
		return
	}
}

func ULEB(v uint32) []byte {
	var buf bytes.Buffer
	writeUleb(&buf, v)
	return buf.Bytes()
}

func U4(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

// Value builds an encoded_value from its type, value_arg and payload.
func Value(vt, arg byte, payload ...byte) []byte {
	return append([]byte{arg<<5 | vt}, payload...)
}

func Int(v int32) []byte {
	return Value(valueInt, 3, U4(uint32(v))...)
}

// Index encodes a four-byte index payload for string, type, field, method
// and enum values.
func Index(vt byte, idx uint32) []byte {
	return Value(vt, 3, U4(idx)...)
}

func Bool(v bool) []byte {
	if v {
		return Value(valueBoolean, 1)
	}
	return Value(valueBoolean, 0)
}

func Null() []byte {
	return Value(valueNull, 0)
}

func Array(values ...[]byte) []byte {
	out := Value(valueArray, 0)
	out = append(out, ULEB(uint32(len(values)))...)
	for _, v := range values {
		out = append(out, v...)
	}
	return out
}

type Element struct {
	Name  uint32
	Value []byte
}

// AnnotationBody builds an encoded_annotation without the value header.
func AnnotationBody(typeIdx uint32, elements ...Element) []byte {
	out := ULEB(typeIdx)
	out = append(out, ULEB(uint32(len(elements)))...)
	for _, e := range elements {
		out = append(out, ULEB(e.Name)...)
		out = append(out, e.Value...)
	}
	return out
}

func (b *Builder) Build() []byte {
	idsSize := 4*len(b.strings) + 4*len(b.types) + 12*len(b.protos) +
		8*len(b.fields) + 8*len(b.methods) + classDefLen*len(b.classes)
	dataStart := uint32(headerSize + idsSize)

	var data bytes.Buffer
	off := func() uint32 { return dataStart + uint32(data.Len()) }

	stringOffs := make([]uint32, len(b.strings))
	for i, s := range b.strings {
		stringOffs[i] = off()
		writeUleb(&data, uint32(len(s)))
		data.WriteString(s)
		data.WriteByte(0)
	}

	typeList := func(types []uint32) uint32 {
		if len(types) == 0 {
			return 0
		}
		o := off()
		data.Write(U4(uint32(len(types))))
		for _, t := range types {
			data.Write(binary.LittleEndian.AppendUint16(nil, uint16(t)))
		}
		return o
	}

	protoParams := make([]uint32, len(b.protos))
	for i, p := range b.protos {
		protoParams[i] = typeList(p.params)
	}

	annotationSet := func(set []Annotation) uint32 {
		itemOffs := make([]uint32, len(set))
		for i, a := range set {
			itemOffs[i] = off()
			data.WriteByte(a.Visibility)
			data.Write(a.Body)
		}
		o := off()
		data.Write(U4(uint32(len(set))))
		for _, itemOff := range itemOffs {
			data.Write(U4(itemOff))
		}
		return o
	}

	type classOffs struct {
		interfaces, annotations, classData, staticValues uint32
	}
	offs := make([]classOffs, len(b.classes))
	for i, c := range b.classes {
		offs[i].interfaces = typeList(c.Interfaces)

		if d := c.Annotations; d != nil {
			var classSet uint32
			if d.Class != nil {
				classSet = annotationSet(d.Class)
			}
			fieldSets := make([]uint32, len(d.Fields))
			for j, f := range d.Fields {
				fieldSets[j] = annotationSet(f.Set)
			}
			methodSets := make([]uint32, len(d.Methods))
			for j, m := range d.Methods {
				methodSets[j] = annotationSet(m.Set)
			}
			paramLists := make([]uint32, len(d.Parameters))
			for j, p := range d.Parameters {
				refs := make([]uint32, len(p.Sets))
				for k, s := range p.Sets {
					if s != nil {
						refs[k] = annotationSet(s)
					}
				}
				paramLists[j] = off()
				data.Write(U4(uint32(len(refs))))
				for _, r := range refs {
					data.Write(U4(r))
				}
			}

			offs[i].annotations = off()
			data.Write(U4(classSet))
			data.Write(U4(uint32(len(d.Fields))))
			data.Write(U4(uint32(len(d.Methods))))
			data.Write(U4(uint32(len(d.Parameters))))
			for j, f := range d.Fields {
				data.Write(U4(f.Index))
				data.Write(U4(fieldSets[j]))
			}
			for j, m := range d.Methods {
				data.Write(U4(m.Index))
				data.Write(U4(methodSets[j]))
			}
			for j, p := range d.Parameters {
				data.Write(U4(p.Index))
				data.Write(U4(paramLists[j]))
			}
		}

		if cd := c.Data; cd != nil {
			offs[i].classData = off()
			writeUleb(&data, uint32(len(cd.Static)))
			writeUleb(&data, uint32(len(cd.Instance)))
			writeUleb(&data, uint32(len(cd.Direct)))
			writeUleb(&data, uint32(len(cd.Virtual)))
			for _, list := range [][]FieldEntry{cd.Static, cd.Instance} {
				var prev uint32
				for _, f := range list {
					writeUleb(&data, f.Index-prev)
					writeUleb(&data, f.Flags)
					prev = f.Index
				}
			}
			for _, list := range [][]MethodEntry{cd.Direct, cd.Virtual} {
				var prev uint32
				for _, m := range list {
					writeUleb(&data, m.Index-prev)
					writeUleb(&data, m.Flags)
					writeUleb(&data, m.Code)
					prev = m.Index
				}
			}
		}

		if c.HasStatics {
			offs[i].staticValues = off()
			writeUleb(&data, uint32(len(c.StaticValues)))
			for _, v := range c.StaticValues {
				data.Write(v)
			}
		}
	}

	var out bytes.Buffer
	out.WriteString("dex\n035\x00")
	out.Write(U4(0))            // checksum
	out.Write(make([]byte, 20)) // signature
	fileSize := dataStart + uint32(data.Len())
	out.Write(U4(fileSize))
	out.Write(U4(headerSize))
	out.Write(U4(endianTag))
	out.Write(U4(0)) // link_size
	out.Write(U4(0)) // link_off
	out.Write(U4(0)) // map_off

	pos := uint32(headerSize)
	section := func(count, size int) {
		out.Write(U4(uint32(count)))
		if count == 0 {
			out.Write(U4(0))
			return
		}
		out.Write(U4(pos))
		pos += uint32(count * size)
	}
	section(len(b.strings), 4)
	section(len(b.types), 4)
	section(len(b.protos), 12)
	section(len(b.fields), 8)
	section(len(b.methods), 8)
	section(len(b.classes), classDefLen)
	out.Write(U4(uint32(data.Len())))
	out.Write(U4(dataStart))

	for _, o := range stringOffs {
		out.Write(U4(o))
	}
	for _, t := range b.types {
		out.Write(U4(t))
	}
	for i, p := range b.protos {
		out.Write(U4(p.shorty))
		out.Write(U4(p.ret))
		out.Write(U4(protoParams[i]))
	}
	for _, f := range b.fields {
		out.Write(binary.LittleEndian.AppendUint16(nil, f.class))
		out.Write(binary.LittleEndian.AppendUint16(nil, f.typ))
		out.Write(U4(f.name))
	}
	for _, m := range b.methods {
		out.Write(binary.LittleEndian.AppendUint16(nil, m.class))
		out.Write(binary.LittleEndian.AppendUint16(nil, m.proto))
		out.Write(U4(m.name))
	}
	for i, c := range b.classes {
		out.Write(U4(c.Type))
		out.Write(U4(c.Flags))
		out.Write(U4(c.Super))
		out.Write(U4(offs[i].interfaces))
		out.Write(U4(c.Source))
		out.Write(U4(offs[i].annotations))
		out.Write(U4(offs[i].classData))
		out.Write(U4(offs[i].staticValues))
	}

	out.Write(data.Bytes())
	return out.Bytes()
}
