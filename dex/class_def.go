package dex

type EncodedField struct {
	Field       FieldID
	AccessFlags AccessFlags
}

func (f EncodedField) IsStatic() bool { return f.AccessFlags.IsStatic() }

type EncodedMethod struct {
	Method      MethodID
	AccessFlags AccessFlags
	CodeOffset  uint32
}

func (m EncodedMethod) IsConstructor() bool {
	return m.Method.Name == "<init>" || m.Method.Name == "<clinit>"
}

func (m EncodedMethod) HasCode() bool { return m.CodeOffset != 0 }

// ClassData is a decoded class_data_item. Each list is in file order, which
// the format requires to be sorted by field or method index.
type ClassData struct {
	StaticFields   []EncodedField
	InstanceFields []EncodedField
	DirectMethods  []EncodedMethod
	VirtualMethods []EncodedMethod
}

// ClassDef is a fully resolved class_def_item.
type ClassDef struct {
	index        int
	classType    string
	accessFlags  AccessFlags
	superclass   string
	interfaces   []string
	sourceFile   string
	annotations  *AnnotationDirectory
	classData    *ClassData
	staticValues *EncodedArray
}

// Index returns the position of the class in the file's class_defs table.
func (c *ClassDef) Index() int { return c.index }

func (c *ClassDef) ClassType() string        { return c.classType }
func (c *ClassDef) AccessFlags() AccessFlags { return c.accessFlags }

// Superclass returns the superclass descriptor, or "" for java.lang.Object.
func (c *ClassDef) Superclass() string { return c.superclass }

func (c *ClassDef) Interfaces() []string { return c.interfaces }

// SourceFile returns the source file name, or "" when none was recorded.
func (c *ClassDef) SourceFile() string { return c.sourceFile }

func (c *ClassDef) AnnotationDirectory() *AnnotationDirectory { return c.annotations }
func (c *ClassDef) ClassData() *ClassData                     { return c.classData }
func (c *ClassDef) StaticValues() *EncodedArray               { return c.staticValues }
