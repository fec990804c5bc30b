package rebuffer

// Direction of a Splitter.
type Direction int

const (
	// DirectionAccumulate merges several pushed Contexts into one output.
	DirectionAccumulate Direction = iota

	// DirectionSlice splits each pushed Context into several outputs.
	DirectionSlice
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionAccumulate:
		return "accumulate"
	case DirectionSlice:
		return "slice"
	default:
		return "unknown"
	}
}

// Setup limits
const (
	minBlocks  = 1    // Smallest block count on either side of a cycle
	maxRatio   = 1024 // Largest supported ratio between block sizes
	singleSide = 1    // Block count required on the fixed side of a cycle
)
