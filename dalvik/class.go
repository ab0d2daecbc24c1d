package dalvik

import (
	"sync"

	"github.com/dhamidi/dexdis/dex"
)

// Class is a read-only view over a Record. Every derived collection is
// computed on first use and returned unchanged by later calls, so callers
// must not modify the slices they get back.
type Class struct {
	record Record
	dir    *dex.AnnotationDirectory
	index  *AnnotationIndex

	flagsOnce sync.Once
	flags     dex.AccessFlags
	flagNames []string

	descriptorsOnce sync.Once
	classType       string
	superType       string
	sourceFile      string

	interfacesOnce sync.Once
	interfaces     []string

	dataOnce sync.Once
	data     *dex.ClassData

	staticFieldsOnce sync.Once
	staticFields     []Field

	instanceFieldsOnce sync.Once
	instanceFields     []Field

	directMethodsOnce sync.Once
	directMethods     []Method

	virtualMethodsOnce sync.Once
	virtualMethods     []Method

	annotationsOnce sync.Once
	annotations     []dex.Annotation
	hasAnnotations  bool
}

// NewClass wraps r. The annotation index is built here, everything else on
// first access.
func NewClass(r Record) *Class {
	dir := r.AnnotationDirectory()
	return &Class{
		record: r,
		dir:    dir,
		index:  NewAnnotationIndex(dir),
	}
}

func (c *Class) Record() Record { return c.record }

func (c *Class) AnnotationIndex() *AnnotationIndex { return c.index }

func (c *Class) loadFlags() {
	c.flagsOnce.Do(func() {
		c.flags = c.record.AccessFlags()
		c.flagNames = c.flags.Names(dex.KindClass)
	})
}

func (c *Class) AccessFlags() dex.AccessFlags {
	c.loadFlags()
	return c.flags
}

// AccessFlagNames returns the class's access flags as smali keywords in
// flag-bit order, e.g. ["public", "final"].
func (c *Class) AccessFlagNames() []string {
	c.loadFlags()
	return c.flagNames
}

func (c *Class) IsInterface() bool  { return c.AccessFlags().IsInterface() }
func (c *Class) IsAnnotation() bool { return c.AccessFlags().IsAnnotation() }
func (c *Class) IsEnum() bool       { return c.AccessFlags().IsEnum() }

func (c *Class) loadDescriptors() {
	c.descriptorsOnce.Do(func() {
		c.classType = c.record.ClassType()
		c.superType = c.record.Superclass()
		c.sourceFile = c.record.SourceFile()
	})
}

// ClassType returns the class's type descriptor, e.g. "Lcom/example/Foo;".
func (c *Class) ClassType() string {
	c.loadDescriptors()
	return c.classType
}

// SuperType returns the superclass descriptor, or "" for java.lang.Object.
func (c *Class) SuperType() string {
	c.loadDescriptors()
	return c.superType
}

func (c *Class) SourceFile() (string, bool) {
	c.loadDescriptors()
	return c.sourceFile, c.sourceFile != ""
}

// Name returns the class name in source form, e.g. "com.example.Foo".
func (c *Class) Name() string {
	return dex.DescriptorToSourceName(c.ClassType())
}

// Interfaces returns the implemented interface descriptors in declaration
// order. The result is never nil.
func (c *Class) Interfaces() []string {
	c.interfacesOnce.Do(func() {
		ifaces := c.record.Interfaces()
		c.interfaces = make([]string, len(ifaces))
		copy(c.interfaces, ifaces)
	})
	return c.interfaces
}

func (c *Class) classData() *dex.ClassData {
	c.dataOnce.Do(func() {
		c.data = c.record.ClassData()
	})
	return c.data
}

func (c *Class) StaticFields() []Field {
	c.staticFieldsOnce.Do(func() {
		var fields []dex.EncodedField
		if cd := c.classData(); cd != nil {
			fields = cd.StaticFields
		}
		var values *dex.EncodedArray
		if len(fields) > 0 {
			values = c.record.StaticValues()
		}
		c.staticFields = projectStaticFields(fields, values, c.index)
	})
	return c.staticFields
}

func (c *Class) InstanceFields() []Field {
	c.instanceFieldsOnce.Do(func() {
		var fields []dex.EncodedField
		if cd := c.classData(); cd != nil {
			fields = cd.InstanceFields
		}
		c.instanceFields = projectInstanceFields(fields, c.index)
	})
	return c.instanceFields
}

func (c *Class) DirectMethods() []Method {
	c.directMethodsOnce.Do(func() {
		var methods []dex.EncodedMethod
		if cd := c.classData(); cd != nil {
			methods = cd.DirectMethods
		}
		c.directMethods = projectMethods(methods, c.index)
	})
	return c.directMethods
}

func (c *Class) VirtualMethods() []Method {
	c.virtualMethodsOnce.Do(func() {
		var methods []dex.EncodedMethod
		if cd := c.classData(); cd != nil {
			methods = cd.VirtualMethods
		}
		c.virtualMethods = projectMethods(methods, c.index)
	})
	return c.virtualMethods
}

// Annotations returns the class-level annotations in declaration order. A
// class without an annotation directory and one whose directory has no
// class annotation set both report false.
func (c *Class) Annotations() ([]dex.Annotation, bool) {
	c.annotationsOnce.Do(func() {
		if c.dir != nil && c.dir.Class != nil {
			c.annotations = c.dir.Class.Items
			c.hasAnnotations = true
		}
	})
	return c.annotations, c.hasAnnotations
}
