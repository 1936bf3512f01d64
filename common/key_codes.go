package common

// Virtual key codes used by the viewer controls.
// Printable keys match their ASCII value, which is also the GLFW key code.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyT     = 84  // toggle temporal accumulation
	KeyO     = 79  // toggle ambient occlusion
	KeyC     = 67  // toggle occlusion auto-correction
	KeyF     = 70  // frame the scene
	KeyEqual = 61  // exposure up
	KeyMinus = 45  // exposure down
	KeyEsc   = 256 // Escape (GLFW)

	KeyLeft  = 263 // orbit left (GLFW)
	KeyRight = 262 // orbit right (GLFW)
	KeyDown  = 264 // orbit down (GLFW)
	KeyUp    = 265 // orbit up (GLFW)
)
