package composer

// RenderMode selects which half of the pass chain produces the output.
type RenderMode int

const (
	// Interactive renders the scene once per frame with the unperturbed camera.
	Interactive RenderMode = iota
	// Accumulating renders jittered frames and accumulates them through reprojection.
	Accumulating
)

func (m RenderMode) String() string {
	switch m {
	case Interactive:
		return "interactive"
	case Accumulating:
		return "accumulating"
	}
	return "unknown"
}
