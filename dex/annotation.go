package dex

// Annotation is an annotation_item, or an encoded_annotation nested inside a
// value (in which case Visibility is VisibilityBuild and carries no meaning).
type Annotation struct {
	Visibility Visibility
	Type       string
	Elements   []AnnotationElement
}

type AnnotationElement struct {
	Name  string
	Value EncodedValue
}

type AnnotationSet struct {
	Items []Annotation
}

func (s *AnnotationSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}

type FieldAnnotation struct {
	Field FieldID
	Set   *AnnotationSet
}

type MethodAnnotation struct {
	Method MethodID
	Set    *AnnotationSet
}

// ParameterAnnotation holds one annotation set per parameter. A nil entry
// means the parameter has no annotations.
type ParameterAnnotation struct {
	Method MethodID
	Sets   []*AnnotationSet
}

// AnnotationDirectory is an annotations_directory_item. Class is nil when the
// class itself carries no annotations.
type AnnotationDirectory struct {
	Class      *AnnotationSet
	Fields     []FieldAnnotation
	Methods    []MethodAnnotation
	Parameters []ParameterAnnotation
}
