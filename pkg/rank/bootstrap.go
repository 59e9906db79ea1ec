package rank

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"autolytics/pkg/core"
)

// DefaultResamples is the bootstrap resample count used by tasks.
const DefaultResamples = 200

// Bootstrap estimates a 95% interval for the mean of the given scores by
// resampling with replacement. The RNG is seeded from the caller's root seed,
// so the interval is reproducible across runs and scheduling interleavings.
func Bootstrap(metric string, scores []float64, resamples int, seed int64) *core.SummaryStats {
	if len(scores) == 0 {
		return nil
	}
	if resamples <= 0 {
		resamples = DefaultResamples
	}

	rng := rand.New(rand.NewSource(seed))
	means := make([]float64, resamples)
	sample := make([]float64, len(scores))
	for i := 0; i < resamples; i++ {
		for j := range sample {
			sample[j] = scores[rng.Intn(len(scores))]
		}
		means[i] = stat.Mean(sample, nil)
	}
	sort.Float64s(means)

	return &core.SummaryStats{
		Metric:    metric,
		Mean:      stat.Mean(scores, nil),
		Lower:     stat.Quantile(0.025, stat.Empirical, means, nil),
		Upper:     stat.Quantile(0.975, stat.Empirical, means, nil),
		Resamples: resamples,
	}
}
