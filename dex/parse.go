package dex

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("dexdis.dex")

type parser struct {
	data []byte
	f    *File
}

func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dex file: %w", err)
	}
	return Parse(data)
}

func ParseReader(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dex data: %w", err)
	}
	return Parse(data)
}

// Parse decodes a DEX image. The returned File does not retain data.
func Parse(data []byte) (*File, error) {
	p := &parser{data: data, f: &File{}}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	steps := []struct {
		section string
		fn      func() error
	}{
		{"string_ids", p.parseStrings},
		{"type_ids", p.parseTypes},
		{"proto_ids", p.parseProtos},
		{"field_ids", p.parseFields},
		{"method_ids", p.parseMethods},
		{"class_defs", p.parseClassDefs},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", step.section, err)
		}
	}

	log.Debugf("parsed dex %s: %d strings, %d types, %d methods, %d classes",
		p.f.Header.Version(), len(p.f.Strings), len(p.f.Types), len(p.f.Methods), len(p.f.Classes))
	return p.f, nil
}

func (p *parser) parseHeader() error {
	if len(p.data) < HeaderSize {
		return fmt.Errorf("%w: file is %d bytes, header needs %d", ErrNotDex, len(p.data), HeaderSize)
	}
	if !bytes.Equal(p.data[:4], magicPrefix[:]) || p.data[7] != 0 {
		return fmt.Errorf("%w: bad magic %q", ErrNotDex, p.data[:8])
	}

	h := &p.f.Header
	r := newReader(p.data, 0)
	copy(h.Magic[:], r.readBytes(8))
	h.Checksum = r.readU4()
	copy(h.Signature[:], r.readBytes(20))
	h.FileSize = r.readU4()
	h.HeaderSize = r.readU4()
	h.EndianTag = r.readU4()
	h.LinkSize = r.readU4()
	h.LinkOff = r.readU4()
	h.MapOff = r.readU4()
	h.StringIDsSize = r.readU4()
	h.StringIDsOff = r.readU4()
	h.TypeIDsSize = r.readU4()
	h.TypeIDsOff = r.readU4()
	h.ProtoIDsSize = r.readU4()
	h.ProtoIDsOff = r.readU4()
	h.FieldIDsSize = r.readU4()
	h.FieldIDsOff = r.readU4()
	h.MethodIDsSize = r.readU4()
	h.MethodIDsOff = r.readU4()
	h.ClassDefsSize = r.readU4()
	h.ClassDefsOff = r.readU4()
	h.DataSize = r.readU4()
	h.DataOff = r.readU4()
	if r.err != nil {
		return fmt.Errorf("failed to read header: %w", r.err)
	}

	switch h.EndianTag {
	case EndianTag:
	case reverseTag:
		return ErrUnsupportedEndian
	default:
		return fmt.Errorf("%w: endian tag 0x%08x", ErrNotDex, h.EndianTag)
	}
	return nil
}

// table returns a reader positioned at a fixed-size id table after checking
// that count entries of size bytes fit inside the image.
func (p *parser) table(section string, off, count, size uint32) (*reader, error) {
	if uint64(off)+uint64(count)*uint64(size) > uint64(len(p.data)) {
		return nil, &ParseError{Section: section, Offset: off, Message: fmt.Sprintf("%d entries do not fit", count), Err: ErrOutOfBounds}
	}
	return newReader(p.data, off), nil
}

func (p *parser) parseStrings() error {
	h := &p.f.Header
	r, err := p.table("string_ids", h.StringIDsOff, h.StringIDsSize, 4)
	if err != nil {
		return err
	}
	p.f.Strings = make([]string, h.StringIDsSize)
	for i := range p.f.Strings {
		off := r.readU4()
		s, err := p.readStringData(off)
		if err != nil {
			return &ParseError{Section: "string_data", Offset: off, Message: fmt.Sprintf("string %d", i), Err: err}
		}
		p.f.Strings[i] = s
	}
	return r.err
}

func (p *parser) readStringData(off uint32) (string, error) {
	r := newReader(p.data, off)
	size := r.readUleb128()
	if r.err != nil {
		return "", r.err
	}
	s, _ := decodeMUTF8(p.data[r.pos:], size)
	return s, nil
}

func (p *parser) parseTypes() error {
	h := &p.f.Header
	r, err := p.table("type_ids", h.TypeIDsOff, h.TypeIDsSize, 4)
	if err != nil {
		return err
	}
	p.f.Types = make([]string, h.TypeIDsSize)
	for i := range p.f.Types {
		s, err := p.string(r.readU4())
		if err != nil {
			return fmt.Errorf("type %d: %w", i, err)
		}
		p.f.Types[i] = s
	}
	return r.err
}

func (p *parser) parseProtos() error {
	h := &p.f.Header
	r, err := p.table("proto_ids", h.ProtoIDsOff, h.ProtoIDsSize, 12)
	if err != nil {
		return err
	}
	p.f.Protos = make([]Proto, h.ProtoIDsSize)
	for i := range p.f.Protos {
		shortyIdx := r.readU4()
		returnIdx := r.readU4()
		paramsOff := r.readU4()

		proto := &p.f.Protos[i]
		if proto.Shorty, err = p.string(shortyIdx); err != nil {
			return fmt.Errorf("proto %d: %w", i, err)
		}
		if proto.ReturnType, err = p.typeName(returnIdx); err != nil {
			return fmt.Errorf("proto %d: %w", i, err)
		}
		if proto.Parameters, err = p.readTypeList(paramsOff); err != nil {
			return fmt.Errorf("proto %d: %w", i, err)
		}
	}
	return r.err
}

func (p *parser) parseFields() error {
	h := &p.f.Header
	r, err := p.table("field_ids", h.FieldIDsOff, h.FieldIDsSize, 8)
	if err != nil {
		return err
	}
	p.f.Fields = make([]FieldID, h.FieldIDsSize)
	for i := range p.f.Fields {
		classIdx := r.readU2()
		typeIdx := r.readU2()
		nameIdx := r.readU4()

		fid := &p.f.Fields[i]
		fid.Index = uint32(i)
		if fid.Class, err = p.typeName(uint32(classIdx)); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
		if fid.Type, err = p.typeName(uint32(typeIdx)); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
		if fid.Name, err = p.string(nameIdx); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
	}
	return r.err
}

func (p *parser) parseMethods() error {
	h := &p.f.Header
	r, err := p.table("method_ids", h.MethodIDsOff, h.MethodIDsSize, 8)
	if err != nil {
		return err
	}
	p.f.Methods = make([]MethodID, h.MethodIDsSize)
	for i := range p.f.Methods {
		classIdx := r.readU2()
		protoIdx := r.readU2()
		nameIdx := r.readU4()

		mid := &p.f.Methods[i]
		mid.Index = uint32(i)
		if mid.Class, err = p.typeName(uint32(classIdx)); err != nil {
			return fmt.Errorf("method %d: %w", i, err)
		}
		if int(protoIdx) >= len(p.f.Protos) {
			return fmt.Errorf("method %d: %w: proto %d", i, ErrBadIndex, protoIdx)
		}
		mid.Proto = p.f.Protos[protoIdx]
		if mid.Name, err = p.string(nameIdx); err != nil {
			return fmt.Errorf("method %d: %w", i, err)
		}
	}
	return r.err
}

func (p *parser) parseClassDefs() error {
	h := &p.f.Header
	r, err := p.table("class_defs", h.ClassDefsOff, h.ClassDefsSize, classDefLen)
	if err != nil {
		return err
	}
	p.f.Classes = make([]*ClassDef, h.ClassDefsSize)
	for i := range p.f.Classes {
		cd, err := p.readClassDef(r, i)
		if err != nil {
			return fmt.Errorf("class %d: %w", i, err)
		}
		p.f.Classes[i] = cd
	}
	return r.err
}

func (p *parser) readClassDef(r *reader, index int) (*ClassDef, error) {
	classIdx := r.readU4()
	accessFlags := r.readU4()
	superIdx := r.readU4()
	interfacesOff := r.readU4()
	sourceFileIdx := r.readU4()
	annotationsOff := r.readU4()
	classDataOff := r.readU4()
	staticValuesOff := r.readU4()
	if r.err != nil {
		return nil, r.err
	}

	cd := &ClassDef{index: index, accessFlags: AccessFlags(accessFlags)}
	var err error
	if cd.classType, err = p.typeName(classIdx); err != nil {
		return nil, err
	}
	if superIdx != NoIndex {
		if cd.superclass, err = p.typeName(superIdx); err != nil {
			return nil, err
		}
	}
	if cd.interfaces, err = p.readTypeList(interfacesOff); err != nil {
		return nil, &ParseError{Section: "interfaces", Offset: interfacesOff, Message: cd.classType, Err: err}
	}
	if sourceFileIdx != NoIndex {
		if cd.sourceFile, err = p.string(sourceFileIdx); err != nil {
			return nil, err
		}
	}
	if annotationsOff != 0 {
		if cd.annotations, err = p.readAnnotationDirectory(annotationsOff); err != nil {
			return nil, &ParseError{Section: "annotations_directory_item", Offset: annotationsOff, Message: cd.classType, Err: err}
		}
	}
	if classDataOff != 0 {
		if cd.classData, err = p.readClassData(classDataOff); err != nil {
			return nil, &ParseError{Section: "class_data_item", Offset: classDataOff, Message: cd.classType, Err: err}
		}
	}
	if staticValuesOff != 0 {
		sr := newReader(p.data, staticValuesOff)
		arr := p.readEncodedArray(sr, 0)
		if sr.err != nil {
			return nil, &ParseError{Section: "encoded_array_item", Offset: staticValuesOff, Message: cd.classType, Err: sr.err}
		}
		cd.staticValues = arr
	}
	return cd, nil
}

func (p *parser) readTypeList(off uint32) ([]string, error) {
	if off == 0 {
		return nil, nil
	}
	r := newReader(p.data, off)
	size := r.readU4()
	if r.err != nil {
		return nil, r.err
	}
	if uint64(off)+4+uint64(size)*2 > uint64(len(p.data)) {
		return nil, fmt.Errorf("%w: type_list of %d entries", ErrOutOfBounds, size)
	}
	types := make([]string, size)
	for i := range types {
		name, err := p.typeName(uint32(r.readU2()))
		if err != nil {
			return nil, err
		}
		types[i] = name
	}
	return types, r.err
}

func (p *parser) readClassData(off uint32) (*ClassData, error) {
	r := newReader(p.data, off)
	staticFields := r.readUleb128()
	instanceFields := r.readUleb128()
	directMethods := r.readUleb128()
	virtualMethods := r.readUleb128()
	if r.err != nil {
		return nil, r.err
	}
	// every entry takes at least two bytes
	total := uint64(staticFields) + uint64(instanceFields) + uint64(directMethods) + uint64(virtualMethods)
	if uint64(r.pos)+total*2 > uint64(len(p.data)) {
		return nil, fmt.Errorf("%w: %d members", ErrOutOfBounds, total)
	}

	cd := &ClassData{}
	var err error
	if cd.StaticFields, err = p.readEncodedFields(r, staticFields); err != nil {
		return nil, err
	}
	if cd.InstanceFields, err = p.readEncodedFields(r, instanceFields); err != nil {
		return nil, err
	}
	if cd.DirectMethods, err = p.readEncodedMethods(r, directMethods); err != nil {
		return nil, err
	}
	if cd.VirtualMethods, err = p.readEncodedMethods(r, virtualMethods); err != nil {
		return nil, err
	}
	return cd, nil
}

func (p *parser) readEncodedFields(r *reader, count uint32) ([]EncodedField, error) {
	if count == 0 {
		return nil, nil
	}
	fields := make([]EncodedField, count)
	var idx uint32
	for i := range fields {
		idx += r.readUleb128()
		flags := r.readUleb128()
		if r.err != nil {
			return nil, r.err
		}
		fid, err := p.field(idx)
		if err != nil {
			return nil, err
		}
		fields[i] = EncodedField{Field: fid, AccessFlags: AccessFlags(flags)}
	}
	return fields, nil
}

func (p *parser) readEncodedMethods(r *reader, count uint32) ([]EncodedMethod, error) {
	if count == 0 {
		return nil, nil
	}
	methods := make([]EncodedMethod, count)
	var idx uint32
	for i := range methods {
		idx += r.readUleb128()
		flags := r.readUleb128()
		codeOff := r.readUleb128()
		if r.err != nil {
			return nil, r.err
		}
		mid, err := p.method(idx)
		if err != nil {
			return nil, err
		}
		methods[i] = EncodedMethod{Method: mid, AccessFlags: AccessFlags(flags), CodeOffset: codeOff}
	}
	return methods, nil
}

func (p *parser) readAnnotationDirectory(off uint32) (*AnnotationDirectory, error) {
	r := newReader(p.data, off)
	classOff := r.readU4()
	fieldsSize := r.readU4()
	methodsSize := r.readU4()
	paramsSize := r.readU4()
	if r.err != nil {
		return nil, r.err
	}
	total := uint64(fieldsSize) + uint64(methodsSize) + uint64(paramsSize)
	if uint64(r.pos)+total*8 > uint64(len(p.data)) {
		return nil, fmt.Errorf("%w: %d annotation entries", ErrOutOfBounds, total)
	}

	dir := &AnnotationDirectory{}
	var err error
	if classOff != 0 {
		if dir.Class, err = p.readAnnotationSet(classOff); err != nil {
			return nil, err
		}
	}

	dir.Fields = make([]FieldAnnotation, fieldsSize)
	for i := range dir.Fields {
		fieldIdx := r.readU4()
		setOff := r.readU4()
		if dir.Fields[i].Field, err = p.field(fieldIdx); err != nil {
			return nil, err
		}
		if dir.Fields[i].Set, err = p.readAnnotationSet(setOff); err != nil {
			return nil, err
		}
	}

	dir.Methods = make([]MethodAnnotation, methodsSize)
	for i := range dir.Methods {
		methodIdx := r.readU4()
		setOff := r.readU4()
		if dir.Methods[i].Method, err = p.method(methodIdx); err != nil {
			return nil, err
		}
		if dir.Methods[i].Set, err = p.readAnnotationSet(setOff); err != nil {
			return nil, err
		}
	}

	dir.Parameters = make([]ParameterAnnotation, paramsSize)
	for i := range dir.Parameters {
		methodIdx := r.readU4()
		listOff := r.readU4()
		if dir.Parameters[i].Method, err = p.method(methodIdx); err != nil {
			return nil, err
		}
		if dir.Parameters[i].Sets, err = p.readAnnotationSetRefList(listOff); err != nil {
			return nil, err
		}
	}
	return dir, r.err
}

func (p *parser) readAnnotationSetRefList(off uint32) ([]*AnnotationSet, error) {
	r := newReader(p.data, off)
	size := r.readU4()
	if r.err != nil {
		return nil, r.err
	}
	if uint64(off)+4+uint64(size)*4 > uint64(len(p.data)) {
		return nil, fmt.Errorf("%w: annotation_set_ref_list of %d entries", ErrOutOfBounds, size)
	}
	sets := make([]*AnnotationSet, size)
	for i := range sets {
		setOff := r.readU4()
		if setOff == 0 {
			continue
		}
		set, err := p.readAnnotationSet(setOff)
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}
	return sets, r.err
}

func (p *parser) readAnnotationSet(off uint32) (*AnnotationSet, error) {
	r := newReader(p.data, off)
	size := r.readU4()
	if r.err != nil {
		return nil, r.err
	}
	if uint64(off)+4+uint64(size)*4 > uint64(len(p.data)) {
		return nil, fmt.Errorf("%w: annotation_set_item of %d entries", ErrOutOfBounds, size)
	}
	set := &AnnotationSet{Items: make([]Annotation, size)}
	for i := range set.Items {
		itemOff := r.readU4()
		ar := newReader(p.data, itemOff)
		visibility := Visibility(ar.readU1())
		ann := p.readEncodedAnnotation(ar, 0)
		if ar.err != nil {
			return nil, &ParseError{Section: "annotation_item", Offset: itemOff, Message: "bad annotation", Err: ar.err}
		}
		ann.Visibility = visibility
		set.Items[i] = *ann
	}
	return set, r.err
}

func (p *parser) readEncodedAnnotation(r *reader, depth int) *Annotation {
	if depth >= maxValueDepth {
		r.fail(fmt.Errorf("%w: annotation at 0x%x", ErrTooDeep, r.pos))
		return &Annotation{}
	}
	typeIdx := r.readUleb128()
	size := r.readUleb128()
	if r.err != nil {
		return &Annotation{}
	}
	ann := &Annotation{}
	ann.Type, r.err = p.typeName(typeIdx)
	if r.err != nil {
		return ann
	}
	for i := uint32(0); i < size && r.err == nil; i++ {
		nameIdx := r.readUleb128()
		value := p.readEncodedValue(r, depth+1)
		if r.err != nil {
			break
		}
		name, err := p.string(nameIdx)
		if err != nil {
			r.err = err
			break
		}
		ann.Elements = append(ann.Elements, AnnotationElement{Name: name, Value: value})
	}
	return ann
}

func (p *parser) readEncodedArray(r *reader, depth int) *EncodedArray {
	arr := &EncodedArray{}
	if depth >= maxValueDepth {
		r.fail(fmt.Errorf("%w: array at 0x%x", ErrTooDeep, r.pos))
		return arr
	}
	size := r.readUleb128()
	for i := uint32(0); i < size && r.err == nil; i++ {
		v := p.readEncodedValue(r, depth+1)
		if r.err != nil {
			break
		}
		arr.Values = append(arr.Values, v)
	}
	return arr
}

// maxValueDepth bounds how deeply encoded arrays and annotations may nest.
const maxValueDepth = 64

// readEncodedValue decodes one encoded_value. depth counts the enclosing
// arrays and annotations.
func (p *parser) readEncodedValue(r *reader, depth int) EncodedValue {
	header := r.readU1()
	if r.err != nil {
		return EncodedValue{}
	}
	vt := ValueType(header & 0x1f)
	arg := int(header >> 5)
	size := arg + 1

	v := EncodedValue{Type: vt}
	var err error
	switch vt {
	case ValueByte, ValueShort, ValueInt, ValueLong:
		v.Value = r.readSignedSized(size)
	case ValueChar:
		v.Value = uint16(r.readSized(size))
	case ValueFloat:
		if size > 4 {
			err = fmt.Errorf("float of %d bytes at 0x%x", size, r.pos-1)
			break
		}
		bits := r.readSized(size) << (8 * (4 - size))
		v.Value = math.Float32frombits(uint32(bits))
	case ValueDouble:
		bits := r.readSized(size) << (8 * (8 - size))
		v.Value = math.Float64frombits(bits)
	case ValueMethodType:
		idx := uint32(r.readSized(size))
		if int(idx) >= len(p.f.Protos) {
			err = fmt.Errorf("%w: proto %d", ErrBadIndex, idx)
			break
		}
		v.Value = p.f.Protos[idx]
	case ValueMethodHandle:
		v.Value = MethodHandle{Index: uint32(r.readSized(size))}
	case ValueString:
		v.Value, err = p.string(uint32(r.readSized(size)))
	case ValueTypeRef:
		v.Value, err = p.typeName(uint32(r.readSized(size)))
	case ValueField, ValueEnum:
		v.Value, err = p.field(uint32(r.readSized(size)))
	case ValueMethod:
		v.Value, err = p.method(uint32(r.readSized(size)))
	case ValueArray:
		v.Value = p.readEncodedArray(r, depth)
	case ValueAnnotation:
		v.Value = p.readEncodedAnnotation(r, depth)
	case ValueNull:
	case ValueBoolean:
		v.Value = arg != 0
	default:
		err = fmt.Errorf("unknown encoded value type 0x%02x at 0x%x", uint8(vt), r.pos-1)
	}
	if err != nil {
		r.fail(err)
	}
	return v
}

func (p *parser) string(idx uint32) (string, error) {
	if int64(idx) >= int64(len(p.f.Strings)) {
		return "", fmt.Errorf("%w: string %d", ErrBadIndex, idx)
	}
	return p.f.Strings[idx], nil
}

func (p *parser) typeName(idx uint32) (string, error) {
	if int64(idx) >= int64(len(p.f.Types)) {
		return "", fmt.Errorf("%w: type %d", ErrBadIndex, idx)
	}
	return p.f.Types[idx], nil
}

func (p *parser) field(idx uint32) (FieldID, error) {
	if int64(idx) >= int64(len(p.f.Fields)) {
		return FieldID{}, fmt.Errorf("%w: field %d", ErrBadIndex, idx)
	}
	return p.f.Fields[idx], nil
}

func (p *parser) method(idx uint32) (MethodID, error) {
	if int64(idx) >= int64(len(p.f.Methods)) {
		return MethodID{}, fmt.Errorf("%w: method %d", ErrBadIndex, idx)
	}
	return p.f.Methods[idx], nil
}
