package common

// Coalesce returns the first non-zero value, or the zero value if every value is zero.
// Used to layer caller overrides over built-in defaults.
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero value
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// ValueOr dereferences p, falling back to def when p is nil. Unlike Coalesce, an explicit
// zero (false, 0) is kept, so optional document fields can switch features off.
//
// Parameters:
//   - p: the optional value
//   - def: the fallback
//
// Returns:
//   - T: *p, or def when p is nil
func ValueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
