package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dhamidi/dexdis/dalvik"
	"github.com/dhamidi/dexdis/dex"
)

type JSONEncoder struct {
	w     io.Writer
	class *dalvik.Class
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(class *dalvik.Class) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	if _, err = e.w.Write(text); err != nil {
		return err
	}
	_, err = e.w.Write([]byte{'\n'})
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	if e.class == nil {
		return nil, fmt.Errorf("no class to encode")
	}
	data := e.buildClassData()
	return json.MarshalIndent(data, "", "  ")
}

type jsonClass struct {
	Type           string           `json:"type"`
	Name           string           `json:"name"`
	Kind           string           `json:"kind"`
	SuperType      string           `json:"superType,omitempty"`
	Interfaces     []string         `json:"interfaces"`
	SourceFile     string           `json:"sourceFile,omitempty"`
	AccessFlags    []string         `json:"accessFlags"`
	Annotations    []jsonAnnotation `json:"annotations,omitempty"`
	StaticFields   []jsonField      `json:"staticFields"`
	InstanceFields []jsonField      `json:"instanceFields"`
	DirectMethods  []jsonMethod     `json:"directMethods"`
	VirtualMethods []jsonMethod     `json:"virtualMethods"`
}

type jsonField struct {
	Name         string           `json:"name"`
	Type         string           `json:"type"`
	AccessFlags  []string         `json:"accessFlags"`
	InitialValue *string          `json:"initialValue,omitempty"`
	Annotations  []jsonAnnotation `json:"annotations,omitempty"`
}

type jsonMethod struct {
	Name                 string             `json:"name"`
	Descriptor           string             `json:"descriptor"`
	ReturnType           string             `json:"returnType"`
	Parameters           []string           `json:"parameters"`
	AccessFlags          []string           `json:"accessFlags"`
	CodeOffset           uint32             `json:"codeOffset,omitempty"`
	Annotations          []jsonAnnotation   `json:"annotations,omitempty"`
	ParameterAnnotations [][]jsonAnnotation `json:"parameterAnnotations,omitempty"`
}

type jsonAnnotation struct {
	Type       string            `json:"type"`
	Visibility string            `json:"visibility"`
	Elements   map[string]string `json:"elements,omitempty"`
}

func (e *JSONEncoder) buildClassData() jsonClass {
	c := e.class
	data := jsonClass{
		Type:           c.ClassType(),
		Name:           c.Name(),
		Kind:           classKind(c),
		SuperType:      c.SuperType(),
		Interfaces:     c.Interfaces(),
		AccessFlags:    nonNil(c.AccessFlagNames()),
		StaticFields:   buildFields(c.StaticFields()),
		InstanceFields: buildFields(c.InstanceFields()),
		DirectMethods:  buildMethods(c.DirectMethods()),
		VirtualMethods: buildMethods(c.VirtualMethods()),
	}
	if source, ok := c.SourceFile(); ok {
		data.SourceFile = source
	}
	if anns, ok := c.Annotations(); ok {
		data.Annotations = buildAnnotations(anns)
	}
	return data
}

func buildFields(fields []dalvik.Field) []jsonField {
	result := make([]jsonField, len(fields))
	for i, f := range fields {
		jf := jsonField{
			Name:        f.Name(),
			Type:        f.Type(),
			AccessFlags: nonNil(f.FlagNames()),
		}
		if v, ok := f.InitialValue(); ok {
			s := singleLine(FormatValue(v))
			jf.InitialValue = &s
		}
		if set, ok := f.Annotations(); ok {
			jf.Annotations = buildAnnotations(set.Items)
		}
		result[i] = jf
	}
	return result
}

func buildMethods(methods []dalvik.Method) []jsonMethod {
	result := make([]jsonMethod, len(methods))
	for i, m := range methods {
		ret, params := signature(m)
		jm := jsonMethod{
			Name:        m.Name(),
			Descriptor:  m.Descriptor(),
			ReturnType:  ret,
			Parameters:  nonNil(params),
			AccessFlags: nonNil(m.FlagNames()),
			CodeOffset:  m.CodeOffset,
		}
		if set, ok := m.Annotations(); ok {
			jm.Annotations = buildAnnotations(set.Items)
		}
		if sets, ok := m.ParameterAnnotations(); ok {
			jm.ParameterAnnotations = make([][]jsonAnnotation, len(sets))
			for j, set := range sets {
				if set != nil {
					jm.ParameterAnnotations[j] = buildAnnotations(set.Items)
				}
			}
		}
		result[i] = jm
	}
	return result
}

func buildAnnotations(anns []dex.Annotation) []jsonAnnotation {
	result := make([]jsonAnnotation, len(anns))
	for i, a := range anns {
		ja := jsonAnnotation{Type: a.Type, Visibility: a.Visibility.String()}
		if len(a.Elements) > 0 {
			ja.Elements = make(map[string]string, len(a.Elements))
			for _, el := range a.Elements {
				ja.Elements[el.Name] = singleLine(FormatValue(el.Value))
			}
		}
		result[i] = ja
	}
	return result
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
