package pipeline

// Progress reports how far a run has advanced, one update per completed
// document.
type Progress struct {
	Completed int
	Total     int
}

// Fraction reports completion as a value in [0, 1]. A run with no
// documents is already complete.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1.0
	}
	return float64(p.Completed) / float64(p.Total)
}

// ProgressFunc receives progress updates. A nil ProgressFunc disables
// reporting.
type ProgressFunc func(Progress)
