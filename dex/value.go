package dex

// EncodedValue is a decoded encoded_value. Value holds a Go value whose type
// depends on Type:
//
//	ValueByte, ValueShort, ValueInt, ValueLong  int64
//	ValueChar                                   uint16
//	ValueFloat                                  float32
//	ValueDouble                                 float64
//	ValueMethodType                             Proto
//	ValueMethodHandle                           MethodHandle
//	ValueString                                 string
//	ValueTypeRef                                string (type descriptor)
//	ValueField, ValueEnum                       FieldID
//	ValueMethod                                 MethodID
//	ValueArray                                  *EncodedArray
//	ValueAnnotation                             *Annotation
//	ValueNull                                   nil
//	ValueBoolean                                bool
type EncodedValue struct {
	Type  ValueType
	Value any
}

func (v EncodedValue) AsInt() (int64, bool) {
	i, ok := v.Value.(int64)
	return i, ok
}

func (v EncodedValue) AsString() (string, bool) {
	s, ok := v.Value.(string)
	return s, ok
}

func (v EncodedValue) AsBool() (bool, bool) {
	b, ok := v.Value.(bool)
	return b, ok
}

func (v EncodedValue) AsArray() (*EncodedArray, bool) {
	a, ok := v.Value.(*EncodedArray)
	return a, ok
}

func (v EncodedValue) IsNull() bool {
	return v.Type == ValueNull
}

type EncodedArray struct {
	Values []EncodedValue
}

func (a *EncodedArray) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Values)
}
