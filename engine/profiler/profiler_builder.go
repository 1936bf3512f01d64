package profiler

import "time"

// ProfilerBuilderOption is a functional option applied to a Profiler during NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithUpdateInterval sets how often statistics are reported.
//
// Parameters:
//   - d: the report interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithUpdateInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = max(d, 0)
	}
}

// WithAttributes sets the source of extra report attributes.
//
// Parameters:
//   - fn: returns alternating keys and values
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithAttributes(fn func() []any) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.attributes = fn
	}
}
