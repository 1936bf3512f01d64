package jitter

// DefaultLength is the number of offsets in a Sequence built with NewSequence.
const DefaultLength = 16

// Sequence is a fixed jitter table with a cycling cursor.
// The table is generated once and never modified. Not safe for concurrent use;
// the pipeline advances it from a single render goroutine.
type Sequence struct {
	offsets []Offset
	cursor  int
}

// NewSequence creates a Sequence of DefaultLength Halton (2, 3) offsets.
//
// Returns:
//   - *Sequence: the sequence with its cursor at 0
func NewSequence() *Sequence {
	return NewSequenceOfLength(DefaultLength)
}

// NewSequenceOfLength creates a Sequence holding length offsets. length must be positive.
//
// Parameters:
//   - length: table length
//
// Returns:
//   - *Sequence: the sequence with its cursor at 0
func NewSequenceOfLength(length int) *Sequence {
	if length <= 0 {
		panic("jitter: sequence length must be positive")
	}
	return &Sequence{offsets: Generate(length)}
}

// Len returns the table length.
func (s *Sequence) Len() int {
	return len(s.offsets)
}

// Cursor returns the index of the offset Current will return. Always in [0, Len()).
func (s *Sequence) Cursor() int {
	return s.cursor
}

// Current returns the offset at the cursor without advancing.
func (s *Sequence) Current() Offset {
	return s.offsets[s.cursor]
}

// Advance moves the cursor forward by one, wrapping at the end of the table.
func (s *Sequence) Advance() {
	s.cursor = (s.cursor + 1) % len(s.offsets)
}

// Reset moves the cursor back to the first offset.
func (s *Sequence) Reset() {
	s.cursor = 0
}

// Offsets returns a copy of the table.
func (s *Sequence) Offsets() []Offset {
	out := make([]Offset, len(s.offsets))
	copy(out, s.offsets)
	return out
}
