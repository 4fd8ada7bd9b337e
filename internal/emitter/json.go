package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// JSONEmitter writes the report as indented JSON to a writer, stdout by
// default.
type JSONEmitter struct {
	w      io.Writer
	closer io.Closer
}

// NewJSONEmitter creates a JSON emitter writing to stdout.
func NewJSONEmitter() *JSONEmitter {
	return &JSONEmitter{w: os.Stdout}
}

// NewJSONFileEmitter creates a JSON emitter writing to the given file,
// truncating any previous content.
func NewJSONFileEmitter(path string) (*JSONEmitter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return &JSONEmitter{w: file, closer: file}, nil
}

// NewJSONWriterEmitter creates a JSON emitter over an arbitrary writer.
func NewJSONWriterEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{w: w}
}

// Emit writes the report.
func (e *JSONEmitter) Emit(_ context.Context, report *types.WasteReport) error {
	enc := json.NewEncoder(e.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Close closes the underlying file, if any.
func (e *JSONEmitter) Close() error {
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}
