// Package emitter defines the output interface for finished waste reports.
package emitter

import (
	"context"

	"github.com/purvarane2002/cloud-cost-guardian/types"
)

// Emitter sends a finished report to one backend.
type Emitter interface {
	// Emit sends the report to the backend.
	Emit(ctx context.Context, report *types.WasteReport) error

	// Close cleans up resources.
	Close() error
}

// MultiEmitter fans out to multiple emitters.
type MultiEmitter struct {
	emitters []Emitter
}

// NewMultiEmitter creates an emitter that sends to multiple backends.
func NewMultiEmitter(emitters ...Emitter) *MultiEmitter {
	return &MultiEmitter{emitters: emitters}
}

// Emit sends to all emitters, returns first error.
func (m *MultiEmitter) Emit(ctx context.Context, report *types.WasteReport) error {
	for _, e := range m.emitters {
		if err := e.Emit(ctx, report); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all emitters.
func (m *MultiEmitter) Close() error {
	for _, e := range m.emitters {
		if err := e.Close(); err != nil {
			return err
		}
	}
	return nil
}
