package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-sigverify/common"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		accepted   int
		threshold  int
		outcome    Outcome
		confidence int
	}{
		{"well above", 40, 30, Match, 100},
		{"below", 40, 200, Mismatch, 20},
		{"exactly at threshold", 100, 100, Match, 100},
		{"one short", 99, 100, Mismatch, 99},
		{"rounds half up", 1, 200, Mismatch, 1},
		{"rounds down", 1, 300, Mismatch, 0},
		{"zero matches", 0, 10, Mismatch, 0},
		{"clamped at five times", 500, 100, Match, 100},
		{"negative count", -3, 10, Mismatch, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decide(tt.accepted, tt.threshold)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, v.Outcome)
			assert.Equal(t, tt.confidence, v.Confidence)
			assert.Equal(t, tt.threshold, v.Threshold)
			assert.Equal(t, tt.outcome == Match, v.IsMatch())
		})
	}
}

func TestDecideRejectsNonPositiveThreshold(t *testing.T) {
	for _, threshold := range []int{0, -1, -100} {
		v, err := Decide(50, threshold)
		require.Error(t, err)
		assert.True(t, common.IsKind(err, common.KindConfig))
		assert.Equal(t, Verdict{}, v)
	}
}

func TestConfidenceIsMonotonic(t *testing.T) {
	for _, threshold := range []int{10, 37, 100, 300} {
		prev := -1
		for accepted := 0; accepted <= 6*threshold; accepted++ {
			c := Confidence(accepted, threshold)
			assert.GreaterOrEqual(t, c, prev)
			assert.LessOrEqual(t, c, 100)
			prev = c
		}
		assert.Equal(t, 100, Confidence(5*threshold, threshold))
	}
}

func TestValidateThreshold(t *testing.T) {
	assert.NoError(t, ValidateThreshold(MinThreshold))
	assert.NoError(t, ValidateThreshold(DefaultThreshold))
	assert.NoError(t, ValidateThreshold(MaxThreshold))
	assert.True(t, common.IsKind(ValidateThreshold(9), common.KindConfig))
	assert.True(t, common.IsKind(ValidateThreshold(301), common.KindConfig))
}

func TestVerdictString(t *testing.T) {
	v, err := Decide(120, 100)
	require.NoError(t, err)
	assert.Equal(t, "MATCH (120 good matches)", v.String())
}
