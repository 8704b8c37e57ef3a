package split

import "time"

// DayIndex returns the 0-based position in the ordered cycle that applies
// to ref.
func DayIndex(s Split, ref time.Time) (int, error) {
	if s.StartDate == nil {
		return 0, ErrNoStartDate
	}
	n := s.CycleLength()
	if n == 0 {
		return 0, ErrEmptySplit
	}
	diff := daysBetween(*s.StartDate, ref)
	if diff < 0 {
		return 0, ErrInvalidDateRange
	}
	return diff % n, nil
}

// ResolveDay returns the split day that applies to ref.
func ResolveDay(s Split, ref time.Time) (Day, error) {
	idx, err := DayIndex(s, ref)
	if err != nil {
		return Day{}, err
	}
	return s.OrderedDays()[idx], nil
}
