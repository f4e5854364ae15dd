package pipeline

import "testing"

func TestProgressFraction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		completed int
		total     int
		want      float64
	}{
		{0, 0, 1.0},
		{0, 4, 0.0},
		{1, 4, 0.25},
		{2, 4, 0.5},
		{4, 4, 1.0},
		{3, 3, 1.0},
	}
	for _, tc := range cases {
		p := Progress{Completed: tc.completed, Total: tc.total}
		if got := p.Fraction(); got != tc.want {
			t.Errorf("Progress{%d, %d}.Fraction() = %v, want %v", tc.completed, tc.total, got, tc.want)
		}
	}
}
