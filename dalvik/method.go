package dalvik

import "github.com/dhamidi/dexdis/dex"

type Method struct {
	dex.EncodedMethod
	annotations *dex.AnnotationSet
	parameters  []*dex.AnnotationSet
}

func (m Method) Name() string { return m.Method.Name }

// Descriptor returns the method descriptor, e.g. "(ILjava/lang/String;)V".
func (m Method) Descriptor() string { return m.Method.Proto.Descriptor() }

func (m Method) Parameters() []string { return m.Method.Proto.Parameters }
func (m Method) ReturnType() string   { return m.Method.Proto.ReturnType }

func (m Method) FlagNames() []string {
	return m.AccessFlags.Names(dex.KindMethod)
}

func (m Method) IsAbstract() bool { return m.AccessFlags.IsAbstract() }
func (m Method) IsNative() bool   { return m.AccessFlags.IsNative() }

// Annotations returns the method-level annotation set, if the class's
// annotation directory has one for this method.
func (m Method) Annotations() (*dex.AnnotationSet, bool) {
	return m.annotations, m.annotations != nil
}

func (m Method) ParameterAnnotations() ([]*dex.AnnotationSet, bool) {
	return m.parameters, m.parameters != nil
}

func projectMethods(methods []dex.EncodedMethod, ix *AnnotationIndex) []Method {
	result := make([]Method, len(methods))
	for i, em := range methods {
		m := Method{EncodedMethod: em}
		if set, ok := ix.MethodAnnotations(em.Method.Index); ok {
			m.annotations = set
		}
		if sets, ok := ix.ParameterAnnotations(em.Method.Index); ok {
			m.parameters = sets
		}
		result[i] = m
	}
	return result
}
