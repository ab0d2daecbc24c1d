package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/dexdis/dalvik"
	"github.com/dhamidi/dexdis/dex"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(class *dalvik.Class) error
}

// NewEncoderFunc creates an Encoder writing to w.
type NewEncoderFunc func(w io.Writer) Encoder

// ByName returns the constructor for the named output format: "smali",
// "line" or "json". The smali encoder uses theme.
func ByName(name string, theme Theme) (NewEncoderFunc, error) {
	switch name {
	case "smali", "":
		return func(w io.Writer) Encoder {
			e := NewSmaliEncoder(w)
			e.Theme = theme
			return e
		}, nil
	case "line":
		return func(w io.Writer) Encoder { return NewLineEncoder(w) }, nil
	case "json":
		return func(w io.Writer) Encoder { return NewJSONEncoder(w) }, nil
	}
	return nil, fmt.Errorf("unknown format %q (want smali, line or json)", name)
}

func sourceName(desc string) string {
	return dex.DescriptorToSourceName(desc)
}
