package traceyaml

import (
	"sync"
	"time"
)

// SpanInfo captures the name, attributes, status, errors, events, duration
// and children of a span in the order they were registered. YAML tags exist
// on all fields such that it can be marshalled into a stable, diffable form.
type SpanInfo struct {
	Name       string                 `yaml:"name"`
	Attributes map[string]interface{} `yaml:"attributes,omitempty"`
	Events     []string               `yaml:"events,omitempty"`
	Errors     []string               `yaml:"errors,omitempty"`
	Status     string                 `yaml:"status,omitempty"`
	Duration   string                 `yaml:"duration,omitempty"`

	Children []*SpanInfo `yaml:"children,omitempty"`

	// mu is shared by all SpanInfos of one trace.
	mu      *sync.Mutex
	isChild bool
	start   time.Time
}
