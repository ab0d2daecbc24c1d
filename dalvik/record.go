package dalvik

import "github.com/dhamidi/dexdis/dex"

// Record is a decoded class definition. Optional substructures are nil when
// the class does not have them. Implementations must not change their
// answers over the lifetime of a Class built on them.
type Record interface {
	ClassType() string
	// Superclass returns "" when the class has no superclass.
	Superclass() string
	AccessFlags() dex.AccessFlags
	Interfaces() []string
	SourceFile() string
	ClassData() *dex.ClassData
	AnnotationDirectory() *dex.AnnotationDirectory
	StaticValues() *dex.EncodedArray
}

var _ Record = (*dex.ClassDef)(nil)
