package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"cmrstac/internal"
	"cmrstac/internal/util"
)

type OutputDirs struct {
	Collections        string
	StepFunctionInputs string
}

// WriteOutputs persists a collection file and a step function input file for
// every id in agg. Ids are written concurrently and in no particular order.
func WriteOutputs(ctx context.Context, agg *internal.Aggregated, dirs OutputDirs) error {
	if agg == nil || agg.Len() == 0 {
		return nil
	}

	for _, dir := range []string{dirs.Collections, dirs.StepFunctionInputs} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, id := range agg.Keys() {
		id := id
		group, _ := agg.Get(id)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name, err := util.FileName(id)
			if err != nil {
				return err
			}
			if err := writeJSON(filepath.Join(dirs.Collections, name), group.Collection); err != nil {
				return err
			}
			return writeJSON(filepath.Join(dirs.StepFunctionInputs, name), group.Payload())
		})
	}
	return g.Wait()
}

// writeJSON writes v with two-space indentation, HTML characters unescaped
// and no trailing newline.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, bytes.TrimSuffix(buf.Bytes(), []byte("\n")), 0o644)
}
