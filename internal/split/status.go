package split

// Status classifies activation against the optimal range.
type Status string

const (
	StatusNone    Status = "none"
	StatusBelow   Status = "below"
	StatusOptimal Status = "optimal"
	StatusAbove   Status = "above"
)

// Range is the inclusive optimal activation band.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether v lies within the band, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// Widen scales the band outwards by frac on both sides.
func (r Range) Widen(frac float64) Range {
	return Range{Low: r.Low * (1 - frac), High: r.High * (1 + frac)}
}

// OptimalRange returns the activation band for a muscle priority and cycle length.
//
//	low  = 90 × (10 + 0.1·priority) × 7 / cycleLength
//	high = 90 × (20 + 0.1·priority) × 7 × cycleLength
//
// The low bound divides by the cycle length while the high bound multiplies
// by it, so the band widens quickly for long cycles.
func OptimalRange(priority, cycleLength int) Range {
	if cycleLength < 1 {
		cycleLength = 1
	}
	p := float64(priority)
	d := float64(cycleLength)
	return Range{
		Low:  90 * (10 + 0.1*p) * 7 / d,
		High: 90 * (20 + 0.1*p) * 7 * d,
	}
}

// ClassifyStatus places current activation relative to the optimal range.
func ClassifyStatus(priority, cycleLength, current int) Status {
	return classify(OptimalRange(priority, cycleLength), current)
}

// EntryStatus classifies a target entry. A zero target cannot be under- or
// overshot: it is none when untouched and optimal otherwise.
func EntryStatus(e Entry, priority, cycleLength int) Status {
	if e.Target == 0 {
		if e.Current == 0 {
			return StatusNone
		}
		return StatusOptimal
	}
	return ClassifyStatus(priority, cycleLength, e.Current)
}

func classify(r Range, current int) Status {
	v := float64(current)
	switch {
	case current == 0:
		return StatusNone
	case v < r.Low:
		return StatusBelow
	case v > r.High:
		return StatusAbove
	default:
		return StatusOptimal
	}
}
