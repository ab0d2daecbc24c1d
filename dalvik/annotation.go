package dalvik

import "github.com/dhamidi/dexdis/dex"

// AnnotationIndex maps member indices to the annotation sets recorded for
// them in a class's annotation directory. It is built once and never
// modified afterwards.
type AnnotationIndex struct {
	methods    map[uint32]*dex.AnnotationSet
	fields     map[uint32]*dex.AnnotationSet
	parameters map[uint32][]*dex.AnnotationSet
}

// NewAnnotationIndex indexes dir in a single pass. A nil directory yields an
// empty index. When the directory lists the same member more than once, the
// last entry wins.
func NewAnnotationIndex(dir *dex.AnnotationDirectory) *AnnotationIndex {
	ix := &AnnotationIndex{}
	if dir == nil {
		return ix
	}

	ix.methods = make(map[uint32]*dex.AnnotationSet, len(dir.Methods))
	for _, m := range dir.Methods {
		ix.methods[m.Method.Index] = m.Set
	}

	if len(dir.Fields) > 0 {
		ix.fields = make(map[uint32]*dex.AnnotationSet, len(dir.Fields))
		for _, f := range dir.Fields {
			ix.fields[f.Field.Index] = f.Set
		}
	}

	if len(dir.Parameters) > 0 {
		ix.parameters = make(map[uint32][]*dex.AnnotationSet, len(dir.Parameters))
		for _, p := range dir.Parameters {
			ix.parameters[p.Method.Index] = p.Sets
		}
	}
	return ix
}

// MethodAnnotations returns the annotation set of the method with the given
// index in the file's method table.
func (ix *AnnotationIndex) MethodAnnotations(method uint32) (*dex.AnnotationSet, bool) {
	set, ok := ix.methods[method]
	return set, ok
}

func (ix *AnnotationIndex) FieldAnnotations(field uint32) (*dex.AnnotationSet, bool) {
	set, ok := ix.fields[field]
	return set, ok
}

// ParameterAnnotations returns one entry per declared parameter; entries for
// parameters without annotations are nil.
func (ix *AnnotationIndex) ParameterAnnotations(method uint32) ([]*dex.AnnotationSet, bool) {
	sets, ok := ix.parameters[method]
	return sets, ok
}

// Len reports the number of annotated methods.
func (ix *AnnotationIndex) Len() int {
	return len(ix.methods)
}
