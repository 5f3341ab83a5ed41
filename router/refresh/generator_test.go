package refresh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/polypheny/adaptive-router/router/routing"
)

func TestGenerateEmptySamplesYieldsNil(t *testing.T) {
	logger := zap.NewNop()
	got := generate(nil, Thresholds{}, logger, nil)
	assert.Nil(t, got)
}

func TestGenerateNoRegimeGivesFastestAllTheWeight(t *testing.T) {
	logger := zap.NewNop()
	ps1, ps2 := routing.NewPS(1), routing.NewPS(2)
	samples := []Sample{
		{PS: ps1, MeanNanos: 100},
		{PS: ps2, MeanNanos: 200},
	}
	// ShortLongNanos is 0, so fastestTime (100) >= 0 takes the long
	// branch, and LongSimilarPct 0 falls through to the no-regime case.
	th := Thresholds{ShortLongNanos: 0, ShortSimilarPct: 0, LongSimilarPct: 0}

	got := generate(samples, th, logger, nil)
	assert.Equal(t, routing.Weight(100), got[ps1.Key()])
	assert.Equal(t, routing.Weight(0), got[ps2.Key()])
}

func TestGenerateTieBreakLastOneWins(t *testing.T) {
	logger := zap.NewNop()
	ps1, ps2 := routing.NewPS(1), routing.NewPS(2)
	samples := []Sample{
		{PS: ps1, MeanNanos: 100},
		{PS: ps2, MeanNanos: 100},
	}
	th := Thresholds{ShortLongNanos: 0, ShortSimilarPct: 0, LongSimilarPct: 0}

	got := generate(samples, th, logger, nil)
	// fastestIdx should land on ps2 (last index with MeanNanos <= fastestTime).
	assert.Equal(t, routing.Weight(100), got[ps2.Key()])
	assert.Equal(t, routing.Weight(0), got[ps1.Key()])
}

func TestCalcExcludesOutsideThreshold(t *testing.T) {
	logger := zap.NewNop()
	ps1, ps2, ps3 := routing.NewPS(1), routing.NewPS(2), routing.NewPS(3)
	fastest := Sample{PS: ps1, MeanNanos: 100}
	samples := []Sample{
		fastest,
		{PS: ps2, MeanNanos: 110},
		{PS: ps3, MeanNanos: 1000},
	}

	weights := calc(samples, fastest, 20, logger, nil)
	assert.Equal(t, routing.Weight(0), weights[ps3.Key()])
	assert.Greater(t, int(weights[ps1.Key()]), 0)
	assert.Greater(t, int(weights[ps2.Key()]), 0)
}

func TestCalcDeficitGoesToFastest(t *testing.T) {
	logger := zap.NewNop()
	ps1 := routing.NewPS(1)
	fastest := Sample{PS: ps1, MeanNanos: 1}
	samples := []Sample{fastest, {PS: routing.NewPS(2), MeanNanos: 1}, {PS: routing.NewPS(3), MeanNanos: 1}}

	weights := calc(samples, fastest, 100, logger, nil)

	sum := 0
	for _, w := range weights {
		sum += int(w)
	}
	assert.Equal(t, 100, sum)
	// Each of the three equal candidates floors to 33 (99 total); the
	// 1-point deficit is credited to the PS passed to calc as fastest.
	assert.Equal(t, routing.Weight(34), weights[ps1.Key()])
}

func TestCalcNoOverflowDoesNotInvokeOnMismatch(t *testing.T) {
	logger := zap.NewNop()
	ps1 := routing.NewPS(1)
	fastest := Sample{PS: ps1, MeanNanos: 1}
	samples := []Sample{
		fastest,
		{PS: routing.NewPS(2), MeanNanos: 1},
		{PS: routing.NewPS(3), MeanNanos: 1},
	}

	called := false
	calc(samples, fastest, 100, logger, func() { called = true })
	assert.False(t, called)
}
