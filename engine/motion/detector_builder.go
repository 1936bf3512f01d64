package motion

// DetectorBuilderOption is a functional option applied to a detector during NewDetector.
type DetectorBuilderOption func(*detector)

// WithThresholds replaces the default thresholds. A non-positive frame count is raised to 1.
//
// Parameters:
//   - t: the thresholds
//
// Returns:
//   - DetectorBuilderOption: option function to apply
func WithThresholds(t Thresholds) DetectorBuilderOption {
	return func(d *detector) {
		t.Frames = max(t.Frames, 1)
		d.thresholds = t
	}
}

// WithInitialSample sets the sample the first observation is compared against.
//
// Parameters:
//   - s: the baseline sample
//
// Returns:
//   - DetectorBuilderOption: option function to apply
func WithInitialSample(s Sample) DetectorBuilderOption {
	return func(d *detector) {
		d.last = s
	}
}
