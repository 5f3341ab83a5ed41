// Package refresh runs the periodic table refresh: pulling mean execution
// times per placement set from the monitoring service and recomputing each
// query class's weight distribution under the row-generator policy.
package refresh

import (
	"sort"

	"go.uber.org/zap"

	"github.com/polypheny/adaptive-router/router/routing"
)

// Sample is one placement set's mean observed execution time for a query
// class, as reported by the monitoring service over its retention window.
type Sample struct {
	PS        routing.PS
	MeanNanos float64
}

// Thresholds are the refresh-time configuration knobs the row generator
// reads. All three may change between refresh cycles; Thresholds is read
// once at the start of every tick and applied to every query class in it.
type Thresholds struct {
	// ShortLongNanos is short_running_long_running_threshold_ms converted
	// to nanoseconds.
	ShortLongNanos float64
	// ShortSimilarPct is similar_short, a percentage in [0, 100].
	ShortSimilarPct int
	// LongSimilarPct is similar_long, a percentage in [0, 100].
	LongSimilarPct int
}

// generate implements the row generator policy from the table refresher's
// design: pick a regime (short-running / long-running / no-regime) off the
// fastest observed mean time, then call calc for that regime's similarity
// threshold. Returns a weight map keyed by PS.Key(). An empty samples slice
// yields a nil map; the refresher's row-build rule then sets every PS that
// is not NO_PLACEMENT to MISSING_VALUE.
func generate(samples []Sample, th Thresholds, logger *zap.Logger, onMismatch func()) map[string]routing.Weight {
	if len(samples) == 0 {
		return nil
	}

	fastestIdx := 0
	fastestTime := samples[0].MeanNanos
	for i, s := range samples {
		// Ties broken by "last one wins", matching the source.
		if s.MeanNanos <= fastestTime {
			fastestTime = s.MeanNanos
			fastestIdx = i
		}
	}
	fastest := samples[fastestIdx]

	switch {
	case fastestTime < th.ShortLongNanos && th.ShortSimilarPct > 0:
		return calc(samples, fastest, th.ShortSimilarPct, logger, onMismatch)
	case fastestTime >= th.ShortLongNanos && th.LongSimilarPct > 0:
		return calc(samples, fastest, th.LongSimilarPct, logger, onMismatch)
	default:
		weights := make(map[string]routing.Weight, len(samples))
		for _, s := range samples {
			weights[s.PS.Key()] = 0
		}
		if fastestTime > 0 {
			weights[fastest.PS.Key()] = 100
		}
		return weights
	}
}

// calc computes the weight distribution for one similarity regime.
//
// PSs within similarPct of the fastest mean time share a combined 100
// points of weight, in proportion to their own mean time (not its
// inverse) — the fastest of the included set gets the largest share, but
// the shares themselves are drawn from the sum of included mean times.
// PSs outside the threshold get weight 0.
func calc(samples []Sample, fastest Sample, similarPct int, logger *zap.Logger, onMismatch func()) map[string]routing.Weight {
	threshold := fastest.MeanNanos * (1 + float64(similarPct)/100)

	weights := make(map[string]routing.Weight, len(samples))

	type included struct {
		ps   routing.PS
		key  string
		mean float64
	}
	var incl []included
	for _, s := range samples {
		if s.MeanNanos > threshold {
			weights[s.PS.Key()] = 0
			continue
		}
		incl = append(incl, included{ps: s.PS, key: s.PS.Key(), mean: s.MeanNanos})
	}
	if len(incl) == 0 {
		return weights
	}

	var h float64
	for _, e := range incl {
		h += e.mean
	}
	unit := h / 100

	shares := make([]int, len(incl))
	for i, e := range incl {
		share := 100
		if unit > 0 {
			share = int(e.mean / unit)
			if share > 100 {
				share = 100
			}
		}
		shares[i] = share
	}

	sortedShares := append([]int(nil), shares...)
	sort.Sort(sort.Reverse(sort.IntSlice(sortedShares)))

	byAscendingMean := append([]included(nil), incl...)
	sort.Slice(byAscendingMean, func(i, j int) bool { return byAscendingMean[i].mean < byAscendingMean[j].mean })

	sum := 0
	for i, e := range byAscendingMean {
		weights[e.key] = routing.Weight(sortedShares[i])
		sum += sortedShares[i]
	}

	switch {
	case sum < 100:
		weights[fastest.PS.Key()] += routing.Weight(100 - sum)
	case sum > 100:
		logger.Error("row generator shares overflow 100",
			zap.Int("sum", sum),
			zap.String("fastest_ps", fastest.PS.Key()))
		if onMismatch != nil {
			onMismatch()
		}
	}

	return weights
}
