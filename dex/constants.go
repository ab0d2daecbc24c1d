package dex

const (
	HeaderSize  = 0x70
	EndianTag   = 0x12345678
	reverseTag  = 0x78563412
	NoIndex     = 0xffffffff
	classDefLen = 32
)

var magicPrefix = [4]byte{'d', 'e', 'x', '\n'}

type AccessFlags uint32

const (
	AccPublic               AccessFlags = 0x1
	AccPrivate              AccessFlags = 0x2
	AccProtected            AccessFlags = 0x4
	AccStatic               AccessFlags = 0x8
	AccFinal                AccessFlags = 0x10
	AccSynchronized         AccessFlags = 0x20
	AccVolatile             AccessFlags = 0x40
	AccBridge               AccessFlags = 0x40
	AccTransient            AccessFlags = 0x80
	AccVarargs              AccessFlags = 0x80
	AccNative               AccessFlags = 0x100
	AccInterface            AccessFlags = 0x200
	AccAbstract             AccessFlags = 0x400
	AccStrict               AccessFlags = 0x800
	AccSynthetic            AccessFlags = 0x1000
	AccAnnotation           AccessFlags = 0x2000
	AccEnum                 AccessFlags = 0x4000
	AccConstructor          AccessFlags = 0x10000
	AccDeclaredSynchronized AccessFlags = 0x20000
)

func (f AccessFlags) IsPublic() bool      { return f&AccPublic != 0 }
func (f AccessFlags) IsPrivate() bool     { return f&AccPrivate != 0 }
func (f AccessFlags) IsProtected() bool   { return f&AccProtected != 0 }
func (f AccessFlags) IsStatic() bool      { return f&AccStatic != 0 }
func (f AccessFlags) IsFinal() bool       { return f&AccFinal != 0 }
func (f AccessFlags) IsNative() bool      { return f&AccNative != 0 }
func (f AccessFlags) IsInterface() bool   { return f&AccInterface != 0 }
func (f AccessFlags) IsAbstract() bool    { return f&AccAbstract != 0 }
func (f AccessFlags) IsSynthetic() bool   { return f&AccSynthetic != 0 }
func (f AccessFlags) IsAnnotation() bool  { return f&AccAnnotation != 0 }
func (f AccessFlags) IsEnum() bool        { return f&AccEnum != 0 }
func (f AccessFlags) IsConstructor() bool { return f&AccConstructor != 0 }

// FlagKind selects which member kind a flag bit is interpreted for. Several
// bits are shared (0x40 is volatile on fields and bridge on methods).
type FlagKind uint8

const (
	KindClass FlagKind = 1 << iota
	KindField
	KindMethod
)

type flagName struct {
	flag  AccessFlags
	name  string
	kinds FlagKind
}

// flagNames is the canonical ordering used whenever flags are listed.
var flagNames = []flagName{
	{AccPublic, "public", KindClass | KindField | KindMethod},
	{AccPrivate, "private", KindClass | KindField | KindMethod},
	{AccProtected, "protected", KindClass | KindField | KindMethod},
	{AccStatic, "static", KindClass | KindField | KindMethod},
	{AccFinal, "final", KindClass | KindField | KindMethod},
	{AccSynchronized, "synchronized", KindMethod},
	{AccVolatile, "volatile", KindField},
	{AccBridge, "bridge", KindMethod},
	{AccTransient, "transient", KindField},
	{AccVarargs, "varargs", KindMethod},
	{AccNative, "native", KindMethod},
	{AccInterface, "interface", KindClass},
	{AccAbstract, "abstract", KindClass | KindMethod},
	{AccStrict, "strictfp", KindMethod},
	{AccSynthetic, "synthetic", KindClass | KindField | KindMethod},
	{AccAnnotation, "annotation", KindClass},
	{AccEnum, "enum", KindClass | KindField},
	{AccConstructor, "constructor", KindMethod},
	{AccDeclaredSynchronized, "declared-synchronized", KindMethod},
}

// Names returns the names of the flags set in f that are meaningful for
// kind, in canonical order.
func (f AccessFlags) Names(kind FlagKind) []string {
	var names []string
	for _, fn := range flagNames {
		if fn.kinds&kind == 0 {
			continue
		}
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

type ValueType uint8

const (
	ValueByte         ValueType = 0x00
	ValueShort        ValueType = 0x02
	ValueChar         ValueType = 0x03
	ValueInt          ValueType = 0x04
	ValueLong         ValueType = 0x06
	ValueFloat        ValueType = 0x10
	ValueDouble       ValueType = 0x11
	ValueMethodType   ValueType = 0x15
	ValueMethodHandle ValueType = 0x16
	ValueString       ValueType = 0x17
	ValueTypeRef      ValueType = 0x18
	ValueField        ValueType = 0x19
	ValueMethod       ValueType = 0x1a
	ValueEnum         ValueType = 0x1b
	ValueArray        ValueType = 0x1c
	ValueAnnotation   ValueType = 0x1d
	ValueNull         ValueType = 0x1e
	ValueBoolean      ValueType = 0x1f
)

func (t ValueType) String() string {
	switch t {
	case ValueByte:
		return "byte"
	case ValueShort:
		return "short"
	case ValueChar:
		return "char"
	case ValueInt:
		return "int"
	case ValueLong:
		return "long"
	case ValueFloat:
		return "float"
	case ValueDouble:
		return "double"
	case ValueMethodType:
		return "method-type"
	case ValueMethodHandle:
		return "method-handle"
	case ValueString:
		return "string"
	case ValueTypeRef:
		return "type"
	case ValueField:
		return "field"
	case ValueMethod:
		return "method"
	case ValueEnum:
		return "enum"
	case ValueArray:
		return "array"
	case ValueAnnotation:
		return "annotation"
	case ValueNull:
		return "null"
	case ValueBoolean:
		return "boolean"
	}
	return "unknown"
}

type Visibility uint8

const (
	VisibilityBuild   Visibility = 0x00
	VisibilityRuntime Visibility = 0x01
	VisibilitySystem  Visibility = 0x02
)

func (v Visibility) String() string {
	switch v {
	case VisibilityBuild:
		return "build"
	case VisibilityRuntime:
		return "runtime"
	case VisibilitySystem:
		return "system"
	}
	return "unknown"
}
