package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

//nolint:gochecknoglobals
var noopProvider = trace.NewNoopTracerProvider()

// GetGlobalTracerProvider returns the global TracerProvider registered.
// This is a shorthand for otel.GetTracerProvider().
func GetGlobalTracerProvider() trace.TracerProvider { return otel.GetTracerProvider() }

// SetGlobalTracerProvider sets globally-registered TracerProvider to tp.
// This is a shorthand for otel.SetTracerProvider(tp).
func SetGlobalTracerProvider(tp trace.TracerProvider) { otel.SetTracerProvider(tp) }
