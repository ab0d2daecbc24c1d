package format

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/dhamidi/dexdis/dalvik"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"
)

var log = commonlog.GetLogger("dexdis.format")

// RenderAll encodes classes with up to workers encoders running at once and
// writes the results to w in the order of classes. Each class is rendered by
// exactly one goroutine. Rendering stops at the first error or when ctx is
// cancelled.
func RenderAll(ctx context.Context, w io.Writer, classes []*dalvik.Class, workers int, newEncoder NewEncoderFunc) error {
	if workers < 1 {
		workers = 1
	}
	outputs := make([][]byte, len(classes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range classes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := newEncoder(&buf).Encode(c); err != nil {
				return fmt.Errorf("failed to render %s: %w", c.ClassType(), err)
			}
			outputs[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Debugf("rendered %d classes with %d workers", len(classes), workers)
	for i, out := range outputs {
		if i > 0 {
			if _, err := w.Write([]byte{'\n'}); err != nil {
				return err
			}
		}
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	return nil
}
