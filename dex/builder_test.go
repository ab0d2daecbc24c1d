package dex

import "github.com/dhamidi/dexdis/internal/dextest"

func u4(v uint32) []byte {
	return dextest.U4(v)
}

func encValue(vt ValueType, arg byte, payload ...byte) []byte {
	return dextest.Value(byte(vt), arg, payload...)
}

func encInt(v int32) []byte {
	return dextest.Int(v)
}

func encIndex(vt ValueType, idx uint32) []byte {
	return dextest.Index(byte(vt), idx)
}

func encBool(v bool) []byte {
	return dextest.Bool(v)
}

func encNull() []byte {
	return dextest.Null()
}

func encArray(values ...[]byte) []byte {
	return dextest.Array(values...)
}

func annotation(vis Visibility, body []byte) dextest.Annotation {
	return dextest.Annotation{Visibility: byte(vis), Body: body}
}

// classByType looks a class definition up by descriptor.
func classByType(f *File, desc string) *ClassDef {
	for _, c := range f.Classes {
		if c.ClassType() == desc {
			return c
		}
	}
	return nil
}
