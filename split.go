package snippet

import "time"

// Split is a named sub-interval of a token's capture.
type Split struct {
	Started  time.Time
	Ended    time.Time
	Name     string
	Sequence int
}

// Delta returns the length of the split.
func (s Split) Delta() time.Duration {
	return s.Ended.Sub(s.Started)
}

// Percentage returns the share of total taken by the split.
// A non-positive total yields 0.
func (s Split) Percentage(total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	return float64(s.Delta()) / float64(total) * 100
}
