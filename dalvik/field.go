package dalvik

import "github.com/dhamidi/dexdis/dex"

// Field is a declared field together with what the class says about it
// elsewhere: its static initial value and its annotations.
type Field struct {
	dex.EncodedField
	initial     dex.EncodedValue
	hasInitial  bool
	annotations *dex.AnnotationSet
}

func (f Field) Name() string { return f.Field.Name }

// Type returns the field's type descriptor.
func (f Field) Type() string { return f.Field.Type }

func (f Field) FlagNames() []string {
	return f.AccessFlags.Names(dex.KindField)
}

// InitialValue returns the value from the class's static values array. Only
// static fields can have one, and trailing static fields without an entry
// report none; their default value is left to the caller.
func (f Field) InitialValue() (dex.EncodedValue, bool) {
	return f.initial, f.hasInitial
}

func (f Field) Annotations() (*dex.AnnotationSet, bool) {
	return f.annotations, f.annotations != nil
}

// projectStaticFields pairs the i-th static field with the i-th static value.
// Values beyond the last field are ignored.
func projectStaticFields(fields []dex.EncodedField, values *dex.EncodedArray, ix *AnnotationIndex) []Field {
	result := make([]Field, len(fields))
	n := values.Len()
	for i, ef := range fields {
		result[i] = newField(ef, ix)
		if i < n {
			result[i].initial = values.Values[i]
			result[i].hasInitial = true
		}
	}
	return result
}

func projectInstanceFields(fields []dex.EncodedField, ix *AnnotationIndex) []Field {
	result := make([]Field, len(fields))
	for i, ef := range fields {
		result[i] = newField(ef, ix)
	}
	return result
}

func newField(ef dex.EncodedField, ix *AnnotationIndex) Field {
	f := Field{EncodedField: ef}
	if set, ok := ix.FieldAnnotations(ef.Field.Index); ok {
		f.annotations = set
	}
	return f
}
