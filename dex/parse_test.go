package dex

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/dhamidi/dexdis/internal/dextest"
)

const (
	fooType    = "Lcom/example/Foo;"
	emptyType  = "Lcom/example/Empty;"
	objectType = "Ljava/lang/Object;"
	markerType = "Lcom/example/Marker;"
	nonNull    = "Landroid/annotation/NonNull;"
)

type sample struct {
	data                           []byte
	fieldA, fieldB, fieldC, fieldD uint32
	initMethod, run, compute       uint32
}

func buildSample() sample {
	b := dextest.NewBuilder()
	foo := b.Type(fooType)
	obj := b.Type(objectType)
	runnable := b.Type("Ljava/lang/Runnable;")
	empty := b.Type(emptyType)
	marker := b.Type(markerType)
	notNull := b.Type(nonNull)
	source := b.Str("Foo.java")
	valueName := b.Str("value")
	hello := b.Str("hello")

	s := sample{}
	s.fieldA = b.Field(fooType, "I", "A")
	s.fieldB = b.Field(fooType, "Ljava/lang/String;", "B")
	s.fieldC = b.Field(fooType, "J", "c")
	s.fieldD = b.Field(fooType, "Z", "D")

	voidProto := b.Proto("V", "V")
	computeProto := b.Proto("III", "I", "I", "I")
	s.initMethod = b.Method(fooType, "<init>", voidProto)
	s.run = b.Method(fooType, "run", voidProto)
	s.compute = b.Method(fooType, "compute", computeProto)

	flags := func(f AccessFlags) uint32 { return uint32(f) }
	b.AddClass(dextest.Class{
		Type:       foo,
		Flags:      flags(AccPublic | AccFinal),
		Super:      obj,
		Interfaces: []uint32{runnable},
		Source:     source,
		Data: &dextest.ClassData{
			Static: []dextest.FieldEntry{
				{Index: s.fieldA, Flags: flags(AccPublic | AccStatic | AccFinal)},
				{Index: s.fieldB, Flags: flags(AccStatic)},
				{Index: s.fieldD, Flags: flags(AccPrivate | AccStatic)},
			},
			Instance: []dextest.FieldEntry{{Index: s.fieldC, Flags: flags(AccPrivate)}},
			Direct:   []dextest.MethodEntry{{Index: s.initMethod, Flags: flags(AccPublic | AccConstructor), Code: 0x100}},
			Virtual: []dextest.MethodEntry{
				{Index: s.run, Flags: flags(AccPublic), Code: 0x200},
				{Index: s.compute, Flags: flags(AccPublic | AccFinal), Code: 0x300},
			},
		},
		Annotations: &dextest.AnnotationDirectory{
			Class: []dextest.Annotation{
				annotation(VisibilityRuntime, dextest.AnnotationBody(marker, dextest.Element{Name: valueName, Value: encInt(7)})),
			},
			Fields: []dextest.MemberAnnotations{
				{Index: s.fieldB, Set: []dextest.Annotation{annotation(VisibilityBuild, dextest.AnnotationBody(notNull))}},
			},
			Methods: []dextest.MemberAnnotations{
				{Index: s.run, Set: []dextest.Annotation{annotation(VisibilityRuntime, dextest.AnnotationBody(marker))}},
			},
			Parameters: []dextest.ParameterAnnotations{
				{Index: s.compute, Sets: [][]dextest.Annotation{nil, {annotation(VisibilityBuild, dextest.AnnotationBody(notNull))}}},
			},
		},
		StaticValues: [][]byte{encInt(-42), encIndex(ValueString, hello)},
		HasStatics:   true,
	})
	b.AddClass(dextest.Class{
		Type:   empty,
		Flags:  flags(AccPublic | AccInterface | AccAbstract),
		Super:  obj,
		Source: NoIndex,
	})

	s.data = b.Build()
	return s
}

func TestParse(t *testing.T) {
	s := buildSample()
	f, err := Parse(s.data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	t.Run("header", func(t *testing.T) {
		if got := f.Header.Version(); got != "035" {
			t.Errorf("Version() = %q, want %q", got, "035")
		}
		if f.Header.FileSize != uint32(len(s.data)) {
			t.Errorf("FileSize = %d, want %d", f.Header.FileSize, len(s.data))
		}
	})

	t.Run("classes", func(t *testing.T) {
		want := []string{fooType, emptyType}
		if len(f.Classes) != len(want) {
			t.Fatalf("len(Classes) = %d, want %d", len(f.Classes), len(want))
		}
		for i := range want {
			if got := f.Classes[i].ClassType(); got != want[i] {
				t.Errorf("Classes[%d].ClassType() = %q, want %q", i, got, want[i])
			}
		}
	})

	foo := classByType(f, fooType)
	if foo == nil {
		t.Fatal("Expected to find Foo")
	}

	t.Run("class def", func(t *testing.T) {
		if foo.Index() != 0 {
			t.Errorf("Index() = %d, want 0", foo.Index())
		}
		if foo.AccessFlags() != AccPublic|AccFinal {
			t.Errorf("AccessFlags() = 0x%x, want 0x%x", foo.AccessFlags(), AccPublic|AccFinal)
		}
		if foo.Superclass() != objectType {
			t.Errorf("Superclass() = %q, want %q", foo.Superclass(), objectType)
		}
		if got := foo.Interfaces(); len(got) != 1 || got[0] != "Ljava/lang/Runnable;" {
			t.Errorf("Interfaces() = %v", got)
		}
		if foo.SourceFile() != "Foo.java" {
			t.Errorf("SourceFile() = %q, want %q", foo.SourceFile(), "Foo.java")
		}
	})

	t.Run("class data", func(t *testing.T) {
		cd := foo.ClassData()
		if cd == nil {
			t.Fatal("Expected class data")
		}
		wantStatic := []uint32{s.fieldA, s.fieldB, s.fieldD}
		if len(cd.StaticFields) != len(wantStatic) {
			t.Fatalf("len(StaticFields) = %d, want %d", len(cd.StaticFields), len(wantStatic))
		}
		for i, idx := range wantStatic {
			if cd.StaticFields[i].Field.Index != idx {
				t.Errorf("StaticFields[%d].Index = %d, want %d", i, cd.StaticFields[i].Field.Index, idx)
			}
		}
		if got := cd.StaticFields[1].Field.String(); got != "Lcom/example/Foo;->B:Ljava/lang/String;" {
			t.Errorf("StaticFields[1] = %q", got)
		}
		if len(cd.InstanceFields) != 1 || cd.InstanceFields[0].Field.Name != "c" {
			t.Errorf("InstanceFields = %+v", cd.InstanceFields)
		}
		if len(cd.DirectMethods) != 1 || !cd.DirectMethods[0].IsConstructor() {
			t.Fatalf("DirectMethods = %+v", cd.DirectMethods)
		}
		if cd.DirectMethods[0].CodeOffset != 0x100 {
			t.Errorf("CodeOffset = 0x%x, want 0x100", cd.DirectMethods[0].CodeOffset)
		}
		if len(cd.VirtualMethods) != 2 {
			t.Fatalf("len(VirtualMethods) = %d, want 2", len(cd.VirtualMethods))
		}
		compute := cd.VirtualMethods[1]
		if got := compute.Method.String(); got != "Lcom/example/Foo;->compute(II)I" {
			t.Errorf("compute = %q", got)
		}
		if compute.Method.Proto.Shorty != "III" {
			t.Errorf("Shorty = %q, want %q", compute.Method.Proto.Shorty, "III")
		}
	})

	t.Run("static values", func(t *testing.T) {
		sv := foo.StaticValues()
		if sv.Len() != 2 {
			t.Fatalf("StaticValues().Len() = %d, want 2", sv.Len())
		}
		if v, ok := sv.Values[0].AsInt(); !ok || v != -42 {
			t.Errorf("Values[0] = %v, want -42", sv.Values[0].Value)
		}
		if v, ok := sv.Values[1].AsString(); !ok || v != "hello" {
			t.Errorf("Values[1] = %v, want hello", sv.Values[1].Value)
		}
	})

	t.Run("annotations", func(t *testing.T) {
		dir := foo.AnnotationDirectory()
		if dir == nil {
			t.Fatal("Expected annotation directory")
		}
		if dir.Class.Len() != 1 {
			t.Fatalf("class annotations = %d, want 1", dir.Class.Len())
		}
		ann := dir.Class.Items[0]
		if ann.Type != markerType || ann.Visibility != VisibilityRuntime {
			t.Errorf("class annotation = %+v", ann)
		}
		if len(ann.Elements) != 1 || ann.Elements[0].Name != "value" {
			t.Fatalf("elements = %+v", ann.Elements)
		}
		if v, _ := ann.Elements[0].Value.AsInt(); v != 7 {
			t.Errorf("value = %d, want 7", v)
		}

		if len(dir.Fields) != 1 || dir.Fields[0].Field.Index != s.fieldB {
			t.Errorf("field annotations = %+v", dir.Fields)
		}
		if len(dir.Methods) != 1 || dir.Methods[0].Method.Index != s.run {
			t.Errorf("method annotations = %+v", dir.Methods)
		}
		if len(dir.Parameters) != 1 {
			t.Fatalf("parameter annotations = %d, want 1", len(dir.Parameters))
		}
		sets := dir.Parameters[0].Sets
		if len(sets) != 2 || sets[0] != nil || sets[1].Len() != 1 {
			t.Errorf("parameter sets = %+v", sets)
		}
	})

	t.Run("class without data", func(t *testing.T) {
		empty := classByType(f, emptyType)
		if empty == nil {
			t.Fatal("Expected to find Empty")
		}
		if empty.ClassData() != nil {
			t.Error("ClassData() should be nil")
		}
		if empty.AnnotationDirectory() != nil {
			t.Error("AnnotationDirectory() should be nil")
		}
		if empty.StaticValues() != nil {
			t.Error("StaticValues() should be nil")
		}
		if empty.Interfaces() != nil {
			t.Errorf("Interfaces() = %v, want nil", empty.Interfaces())
		}
		if empty.SourceFile() != "" {
			t.Errorf("SourceFile() = %q, want empty", empty.SourceFile())
		}
	})
}

func TestParseErrors(t *testing.T) {
	valid := buildSample().data

	t.Run("short file", func(t *testing.T) {
		_, err := Parse(valid[:16])
		if !errors.Is(err, ErrNotDex) {
			t.Errorf("err = %v, want ErrNotDex", err)
		}
	})

	t.Run("bad magic", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		copy(data, "cafebabe")
		_, err := Parse(data)
		if !errors.Is(err, ErrNotDex) {
			t.Errorf("err = %v, want ErrNotDex", err)
		}
	})

	t.Run("reverse endian", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		copy(data[0x28:], u4(reverseTag))
		_, err := Parse(data)
		if !errors.Is(err, ErrUnsupportedEndian) {
			t.Errorf("err = %v, want ErrUnsupportedEndian", err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := Parse(valid[:len(valid)-40])
		if err == nil {
			t.Fatal("Expected error for truncated file")
		}
		if !errors.Is(err, ErrOutOfBounds) && !errors.Is(err, ErrBadIndex) {
			t.Errorf("err = %v, want out of bounds", err)
		}
	})

	t.Run("table overflow", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		copy(data[0x38:], u4(0x10000000))
		_, err := Parse(data)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("err = %v, want *ParseError", err)
		}
		if perr.Section != "string_ids" {
			t.Errorf("Section = %q, want %q", perr.Section, "string_ids")
		}
	})
}

func TestReadEncodedValue(t *testing.T) {
	p := &parser{f: &File{
		Strings: []string{"hello"},
		Types:   []string{"Ljava/lang/String;"},
		Fields:  []FieldID{{Index: 0, Class: "LFoo;", Type: "I", Name: "x"}},
		Methods: []MethodID{{Index: 0, Class: "LFoo;", Name: "m", Proto: Proto{Shorty: "V", ReturnType: "V"}}},
		Protos:  []Proto{{Shorty: "V", ReturnType: "V"}},
	}}

	tests := []struct {
		name string
		data []byte
		typ  ValueType
		want any
	}{
		{"byte", encValue(ValueByte, 0, 0xff), ValueByte, int64(-1)},
		{"short", encValue(ValueShort, 1, 0x34, 0x12), ValueShort, int64(0x1234)},
		{"char", encValue(ValueChar, 0, 'A'), ValueChar, uint16('A')},
		{"int one byte", encValue(ValueInt, 0, 0x80), ValueInt, int64(-128)},
		{"int", encInt(100000), ValueInt, int64(100000)},
		{"long", encValue(ValueLong, 7, 0, 0, 0, 0, 0, 0, 0, 0x80), ValueLong, int64(math.MinInt64)},
		{"float", encValue(ValueFloat, 1, 0x80, 0x3f), ValueFloat, float32(1)},
		{"double", encValue(ValueDouble, 0, 0x40), ValueDouble, float64(2)},
		{"string", encIndex(ValueString, 0), ValueString, "hello"},
		{"type", encIndex(ValueTypeRef, 0), ValueTypeRef, "Ljava/lang/String;"},
		{"field", encIndex(ValueField, 0), ValueField, FieldID{Index: 0, Class: "LFoo;", Type: "I", Name: "x"}},
		{"enum", encIndex(ValueEnum, 0), ValueEnum, FieldID{Index: 0, Class: "LFoo;", Type: "I", Name: "x"}},
		{"method handle", encValue(ValueMethodHandle, 0, 3), ValueMethodHandle, MethodHandle{Index: 3}},
		{"null", encNull(), ValueNull, nil},
		{"true", encBool(true), ValueBoolean, true},
		{"false", encBool(false), ValueBoolean, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.data = tt.data
			r := newReader(tt.data, 0)
			v := p.readEncodedValue(r, 0)
			if r.err != nil {
				t.Fatalf("readEncodedValue() error = %v", r.err)
			}
			if v.Type != tt.typ {
				t.Errorf("Type = %v, want %v", v.Type, tt.typ)
			}
			if v.Value != tt.want {
				t.Errorf("Value = %#v, want %#v", v.Value, tt.want)
			}
			if r.pos != uint32(len(tt.data)) {
				t.Errorf("consumed %d bytes, want %d", r.pos, len(tt.data))
			}
		})
	}

	t.Run("array", func(t *testing.T) {
		data := encArray(encInt(1), encBool(true), encNull())
		r := newReader(data, 0)
		v := p.readEncodedValue(r, 0)
		arr, ok := v.AsArray()
		if !ok || r.err != nil {
			t.Fatalf("AsArray() = %v, %v (err %v)", arr, ok, r.err)
		}
		if arr.Len() != 3 {
			t.Fatalf("Len() = %d, want 3", arr.Len())
		}
		if !arr.Values[2].IsNull() {
			t.Error("Values[2] should be null")
		}
	})

	t.Run("method", func(t *testing.T) {
		r := newReader(encIndex(ValueMethod, 0), 0)
		v := p.readEncodedValue(r, 0)
		m, ok := v.Value.(MethodID)
		if !ok || m.String() != "LFoo;->m()V" {
			t.Errorf("Value = %#v", v.Value)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		r := newReader([]byte{0x05}, 0)
		p.readEncodedValue(r, 0)
		if r.err == nil {
			t.Error("Expected error for unknown value type")
		}
	})

	t.Run("bad string index", func(t *testing.T) {
		r := newReader(encIndex(ValueString, 9), 0)
		p.readEncodedValue(r, 0)
		if !errors.Is(r.err, ErrBadIndex) {
			t.Errorf("err = %v, want ErrBadIndex", r.err)
		}
	})

	t.Run("nesting limit", func(t *testing.T) {
		nested := func(levels int) []byte {
			v := encInt(7)
			for i := 0; i < levels; i++ {
				v = encArray(v)
			}
			return v
		}

		r := newReader(nested(maxValueDepth), 0)
		p.readEncodedValue(r, 0)
		if r.err != nil {
			t.Errorf("%d levels: err = %v", maxValueDepth, r.err)
		}

		r = newReader(nested(maxValueDepth+1), 0)
		p.readEncodedValue(r, 0)
		if !errors.Is(r.err, ErrTooDeep) {
			t.Errorf("%d levels: err = %v, want ErrTooDeep", maxValueDepth+1, r.err)
		}
	})

	t.Run("deeply nested headers", func(t *testing.T) {
		var data []byte
		for i := 0; i < 500000; i++ {
			data = append(data, byte(ValueArray), 0x01)
		}
		r := newReader(data, 0)
		p.readEncodedValue(r, 0)
		if !errors.Is(r.err, ErrTooDeep) {
			t.Errorf("err = %v, want ErrTooDeep", r.err)
		}
	})

	t.Run("nested annotations", func(t *testing.T) {
		var data []byte
		for i := 0; i < 1000; i++ {
			// annotation of type 0 with one element named string 0
			data = append(data, byte(ValueAnnotation), 0x00, 0x01, 0x00)
		}
		r := newReader(data, 0)
		p.readEncodedValue(r, 0)
		if !errors.Is(r.err, ErrTooDeep) {
			t.Errorf("err = %v, want ErrTooDeep", r.err)
		}
	})
}

func TestLeb128(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint32
	}{
		{"zero", []byte{0x00}, 0},
		{"one byte", []byte{0x7f}, 127},
		{"two bytes", []byte{0x80, 0x01}, 128},
		{"three bytes", []byte{0xe5, 0x8e, 0x26}, 624485},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newReader(tt.data, 0)
			if got := r.readUleb128(); got != tt.want || r.err != nil {
				t.Errorf("readUleb128() = %d (err %v), want %d", got, r.err, tt.want)
			}
		})
	}

	t.Run("sleb128", func(t *testing.T) {
		cases := map[int32][]byte{
			0:    {0x00},
			-1:   {0x7f},
			63:   {0x3f},
			-128: {0x80, 0x7f},
			128:  {0x80, 0x01},
		}
		for want, data := range cases {
			r := newReader(data, 0)
			if got := r.readSleb128(); got != want {
				t.Errorf("readSleb128(%x) = %d, want %d", data, got, want)
			}
		}
	})

	t.Run("overlong", func(t *testing.T) {
		r := newReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}, 0)
		r.readUleb128()
		if r.err == nil {
			t.Error("Expected error for overlong uleb128")
		}
	})
}

func TestDecodeMUTF8(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		want     string
		consumed int
	}{
		{"ascii", []byte("abc\x00rest"), "abc", 4},
		{"two byte", []byte{0xc3, 0xa9, 0x00}, "é", 3},
		{"embedded nul", []byte{'a', 0xc0, 0x80, 'b', 0x00}, "a\x00b", 5},
		{"surrogate pair", []byte{0xed, 0xa0, 0xbd, 0xed, 0xb8, 0x80, 0x00}, "\U0001F600", 7},
		{"unterminated", []byte("xy"), "xy", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := decodeMUTF8(tt.data, uint32(len(tt.data)))
			if got != tt.want || n != tt.consumed {
				t.Errorf("decodeMUTF8() = %q, %d; want %q, %d", got, n, tt.want, tt.consumed)
			}
		})
	}

	t.Run("bad size hint", func(t *testing.T) {
		if got, _ := decodeMUTF8([]byte{0xc3, 0xa9, 'x', 0x00}, 0xffffffff); got != "éx" {
			t.Errorf("decodeMUTF8() = %q, want %q", got, "éx")
		}
	})
}

// A string in front of a large data section must cost only its own bytes.
func TestReadStringDataAllocations(t *testing.T) {
	data := []byte{0x05}
	data = append(data, "h\xc3\xa9llo\x00"...)
	data = append(data, bytes.Repeat([]byte{'x'}, 1<<20)...)
	p := &parser{data: data, f: &File{}}

	s, err := p.readStringData(0)
	if err != nil || s != "héllo" {
		t.Fatalf("readStringData() = %q, %v", s, err)
	}

	result := testing.Benchmark(func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			p.readStringData(0)
		}
	})
	if got := result.AllocedBytesPerOp(); got > 256 {
		t.Errorf("readStringData allocated %d bytes per string, want at most 256", got)
	}
}
