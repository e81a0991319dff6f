package wiki

// Regularity grades how much confidence the flattener has in a parsed
// path. Combining results takes the worst grade; it never improves.
type Regularity int

const (
	// Regular paths are normal and may be included in the data set.
	Regular Regularity = iota
	// Semiregular paths are somewhat irregular but still usable.
	Semiregular
	// Irregular paths are excluded from the data set.
	Irregular
)

// Worst returns the lower-confidence of the two grades.
func (r Regularity) Worst(other Regularity) Regularity {
	if other > r {
		return other
	}
	return r
}

func (r Regularity) String() string {
	switch r {
	case Regular:
		return "regular"
	case Semiregular:
		return "semiregular"
	case Irregular:
		return "irregular"
	default:
		return "unknown"
	}
}
