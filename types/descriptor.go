// Package types defines the shared data model for the waste estimation engine.
package types

import "time"

// ResourceKind identifies the category of a monitored resource.
type ResourceKind string

const (
	KindComputeInstance ResourceKind = "compute_instance"
	KindBlockVolume     ResourceKind = "block_volume"
)

// ResourceDescriptor identifies one monitored entity. It is sourced from the
// inventory collaborator and never mutated by the engine.
type ResourceDescriptor struct {
	ID        string            `json:"id"`
	Kind      ResourceKind      `json:"kind"`
	Class     string            `json:"class"` // size/type class, e.g. "t3.micro" or "gp3"
	Region    string            `json:"region"`
	SizeGB    int               `json:"size_gb,omitempty"`  // block volumes only
	Attached  bool              `json:"attached,omitempty"` // block volumes only
	Tags      map[string]string `json:"tags,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Window is a closed time span, used for scan and evidence windows.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the span length.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Hours returns the span length in hours.
func (w Window) Hours() float64 {
	return w.Duration().Hours()
}

// Contains reports whether t falls inside the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
