package format

import (
	"github.com/dhamidi/dexdis/dalvik"
	"github.com/dhamidi/dexdis/dex"
)

type testRecord struct {
	classType  string
	super      string
	flags      dex.AccessFlags
	interfaces []string
	source     string
	data       *dex.ClassData
	dir        *dex.AnnotationDirectory
	values     *dex.EncodedArray
}

func (r *testRecord) ClassType() string                            { return r.classType }
func (r *testRecord) Superclass() string                           { return r.super }
func (r *testRecord) AccessFlags() dex.AccessFlags                 { return r.flags }
func (r *testRecord) Interfaces() []string                         { return r.interfaces }
func (r *testRecord) SourceFile() string                           { return r.source }
func (r *testRecord) ClassData() *dex.ClassData                    { return r.data }
func (r *testRecord) AnnotationDirectory() *dex.AnnotationDirectory { return r.dir }
func (r *testRecord) StaticValues() *dex.EncodedArray              { return r.values }

const fooType = "Lcom/example/Foo;"

func fooField(idx uint32, name, typ string, flags dex.AccessFlags) dex.EncodedField {
	return dex.EncodedField{
		Field:       dex.FieldID{Index: idx, Class: fooType, Type: typ, Name: name},
		AccessFlags: flags,
	}
}

func fooMethod(idx uint32, name string, proto dex.Proto, flags dex.AccessFlags, code uint32) dex.EncodedMethod {
	return dex.EncodedMethod{
		Method:      dex.MethodID{Index: idx, Class: fooType, Name: name, Proto: proto},
		AccessFlags: flags,
		CodeOffset:  code,
	}
}

func annotations(vis dex.Visibility, types ...string) *dex.AnnotationSet {
	set := &dex.AnnotationSet{}
	for _, t := range types {
		set.Items = append(set.Items, dex.Annotation{Visibility: vis, Type: t})
	}
	return set
}

// fooClass is a class exercising every part of a listing.
func fooClass() *dalvik.Class {
	voidProto := dex.Proto{Shorty: "V", ReturnType: "V"}
	computeProto := dex.Proto{Shorty: "III", ReturnType: "I", Parameters: []string{"I", "I"}}
	nonNull := annotations(dex.VisibilityBuild, "Landroid/annotation/NonNull;")

	return dalvik.NewClass(&testRecord{
		classType:  fooType,
		super:      "Ljava/lang/Object;",
		flags:      dex.AccPublic | dex.AccFinal,
		interfaces: []string{"Ljava/lang/Runnable;"},
		source:     "Foo.java",
		data: &dex.ClassData{
			StaticFields: []dex.EncodedField{
				fooField(0, "A", "I", dex.AccPublic|dex.AccStatic|dex.AccFinal),
				fooField(1, "B", "Ljava/lang/String;", dex.AccStatic),
			},
			InstanceFields: []dex.EncodedField{fooField(2, "c", "J", dex.AccPrivate)},
			DirectMethods: []dex.EncodedMethod{
				fooMethod(0, "<init>", voidProto, dex.AccPublic|dex.AccConstructor, 0x100),
			},
			VirtualMethods: []dex.EncodedMethod{
				fooMethod(1, "compute", computeProto, dex.AccPublic|dex.AccFinal, 0x200),
			},
		},
		dir: &dex.AnnotationDirectory{
			Class: &dex.AnnotationSet{Items: []dex.Annotation{{
				Visibility: dex.VisibilityRuntime,
				Type:       "Lcom/example/Marker;",
				Elements: []dex.AnnotationElement{{
					Name:  "value",
					Value: dex.EncodedValue{Type: dex.ValueInt, Value: int64(7)},
				}},
			}}},
			Fields: []dex.FieldAnnotation{{Field: dex.FieldID{Index: 1}, Set: nonNull}},
			Methods: []dex.MethodAnnotation{{
				Method: dex.MethodID{Index: 1},
				Set:    annotations(dex.VisibilityRuntime, "Ljava/lang/Deprecated;"),
			}},
			Parameters: []dex.ParameterAnnotation{{
				Method: dex.MethodID{Index: 1},
				Sets:   []*dex.AnnotationSet{nil, nonNull},
			}},
		},
		values: &dex.EncodedArray{Values: []dex.EncodedValue{
			{Type: dex.ValueInt, Value: int64(-42)},
			{Type: dex.ValueString, Value: "hi\n"},
		}},
	})
}

func simpleClass(desc, super string, flags dex.AccessFlags, interfaces ...string) *dalvik.Class {
	return dalvik.NewClass(&testRecord{
		classType:  desc,
		super:      super,
		flags:      flags,
		interfaces: interfaces,
	})
}
