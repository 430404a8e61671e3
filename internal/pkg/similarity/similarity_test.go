package similarity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio_Short(t *testing.T) {
	assert.InDelta(t, 1.0, Ratio("abcd", "abcd"), 0.0001)
	assert.InDelta(t, 0.75, Ratio("abcd", "abcx"), 0.0001)
	assert.InDelta(t, 0.0, Ratio("abcd", "wxyz"), 0.0001)
}

func TestRatio_ShortCJK(t *testing.T) {
	assert.InDelta(t, 1.0, Ratio("你好世界", "你好世界"), 0.0001)
	assert.InDelta(t, 0.75, Ratio("你好世界", "你好世间"), 0.0001)
}

func TestRatio_Empty(t *testing.T) {
	assert.InDelta(t, 0.0, Ratio("", ""), 0.0001)
	assert.InDelta(t, 0.0, Ratio("", "abcd"), 0.0001)
	assert.InDelta(t, 0.0, Ratio("abcd", ""), 0.0001)
}

func TestRatio_SelectsFingerprint(t *testing.T) {
	long := strings.Repeat("你好世界天气很好", 20)
	assert.Equal(t, fingerprintRatio(long, long), Ratio(long, long))
	short := "你好"
	// one long text is enough to switch the algorithm
	assert.Equal(t, fingerprintRatio(long, short), Ratio(long, short))
}

func TestRatio_FingerprintStretch(t *testing.T) {
	long := strings.Repeat("你好世界天气很好", 20)
	// identical texts: raw similarity 1.0, stretched by 1.2
	assert.InDelta(t, 1.2, Ratio(long, long), 0.0001)
}

func TestRatio_FingerprintSimilarTexts(t *testing.T) {
	long := strings.Repeat("你好世界天气很好", 20)
	other := long[:len(long)-len("好")] + "坏"
	r := Ratio(long, other)
	assert.Greater(t, r, 0.5)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		args float64
		want int
	}{
		{name: "Low", args: 0.05, want: 10},
		{name: "Band 20", args: 0.1, want: 20},
		{name: "Band 30", args: 0.25, want: 30},
		{name: "Band 40", args: 0.3, want: 40},
		{name: "Band 50", args: 0.45, want: 50},
		{name: "Band 60", args: 0.5999, want: 60},
		{name: "Band 70", args: 0.6, want: 70},
		{name: "Band 80", args: 0.75, want: 80},
		{name: "Band 90", args: 0.8999, want: 90},
		{name: "Top", args: 0.9, want: 100},
		{name: "Over one", args: 1.2, want: 100},
		{name: "Zero - legacy banding", args: 0, want: 100},
		{name: "Negative - legacy banding", args: -0.5, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.args))
		})
	}
}

func TestScore_NonDecreasing(t *testing.T) {
	prev := 0
	for s := 0.01; s < 1.0; s += 0.01 {
		cur := Score(s)
		assert.GreaterOrEqual(t, cur, prev, "similarity %f", s)
		prev = cur
	}
}
