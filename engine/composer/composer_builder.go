package composer

// ComposerBuilderOption is a functional option applied to a composer during NewComposer.
type ComposerBuilderOption func(*composer)

// WithMode sets the initial render mode. Defaults to Interactive.
//
// Parameters:
//   - mode: the initial mode
//
// Returns:
//   - ComposerBuilderOption: option function to apply
func WithMode(mode RenderMode) ComposerBuilderOption {
	return func(c *composer) {
		c.mode = mode
	}
}
