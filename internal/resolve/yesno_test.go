package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/planfill-cli/internal/model"
)

func TestIsYesNoPrompt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		prompt string
		want   bool
	}{
		{"Is vesting immediate?", true},
		{"Does the plan allow loans?", true},
		{"Will the plan permit hardship withdrawals?", true},
		{"Are employees eligible at hire?", true},
		{"Has the plan adopted auto enrollment?", true},
		{"Have forfeitures been allocated?", true},
		{"  IS THE PLAN SAFE HARBOR?  ", true},
		{"Is vesting immediate", false},
		{"What is the eligibility age?", false},
		{"Describe the vesting schedule", false},
		{"Island distributions allowed?", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsYesNoPrompt(tc.prompt); got != tc.want {
			t.Errorf("IsYesNoPrompt(%q) = %v, want %v", tc.prompt, got, tc.want)
		}
	}
}

func TestFromName(t *testing.T) {
	t.Parallel()

	t.Run("yes prefix follows selection", func(t *testing.T) {
		t.Parallel()
		v, ok := FromName("YesAutoEnroll", model.Flag{Selected: 1})
		assert.True(t, ok)
		assert.Equal(t, AnswerYes, v)

		v, ok = FromName("YesAutoEnroll", model.Flag{Selected: 0})
		assert.True(t, ok)
		assert.Equal(t, AnswerNo, v)
	})

	t.Run("no prefix inverts selection", func(t *testing.T) {
		t.Parallel()
		v, ok := FromName("NoAutoEnroll", model.Flag{Selected: 1})
		assert.True(t, ok)
		assert.Equal(t, AnswerNo, v)

		v, ok = FromName("noAutoEnroll", model.Flag{Selected: 0})
		assert.True(t, ok)
		assert.Equal(t, AnswerYes, v)
	})

	t.Run("prefix match is textual", func(t *testing.T) {
		t.Parallel()
		// "NonElective" starts with "no" and therefore reads as negative
		// polarity; callers rely on candidate ordering to avoid this.
		v, ok := FromName("NonElectiveMain", model.Flag{Selected: 1})
		assert.True(t, ok)
		assert.Equal(t, AnswerNo, v)
	})

	t.Run("no polarity prefix", func(t *testing.T) {
		t.Parallel()
		_, ok := FromName("MatchMain", model.Flag{Selected: 1})
		assert.False(t, ok)
	})
}
