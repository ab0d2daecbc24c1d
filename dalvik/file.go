package dalvik

import (
	"fmt"
	"io"

	"github.com/dhamidi/dexdis/dex"
)

// ClassesFromFile returns a Class for every class definition in f, in
// class_defs order.
func ClassesFromFile(f *dex.File) []*Class {
	classes := make([]*Class, len(f.Classes))
	for i, cd := range f.Classes {
		classes[i] = NewClass(cd)
	}
	return classes
}

func ClassesFromPath(path string) ([]*Class, error) {
	f, err := dex.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return ClassesFromFile(f), nil
}

func ClassesFromReader(r io.Reader) ([]*Class, error) {
	f, err := dex.ParseReader(r)
	if err != nil {
		return nil, err
	}
	return ClassesFromFile(f), nil
}

// FindClass returns the class with the given type descriptor or source name.
func FindClass(classes []*Class, name string) *Class {
	for _, c := range classes {
		if c.ClassType() == name || c.Name() == name {
			return c
		}
	}
	return nil
}
