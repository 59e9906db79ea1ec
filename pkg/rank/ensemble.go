package rank

import "autolytics/pkg/core"

// Ensemble combines the top-K leaderboard entries into a score-weighted
// ensemble reference. Weights are the entries' objective values shifted to be
// positive and normalized to sum to one, so a better validation score always
// means a larger weight regardless of metric direction.
func Ensemble(board []core.LeaderboardEntry, metric core.Metric, topK int) *core.EnsembleRef {
	if len(board) == 0 {
		return nil
	}
	if topK > len(board) {
		topK = len(board)
	}
	top := board[:topK]

	worst := top[len(top)-1].Metrics[metric.Name]
	const eps = 1e-9
	raw := make([]float64, len(top))
	var sum float64
	for i, entry := range top {
		v := entry.Metrics[metric.Name]
		if metric.Direction == core.Minimize {
			raw[i] = worst - v + eps
		} else {
			raw[i] = v - worst + eps
		}
		sum += raw[i]
	}

	ref := &core.EnsembleRef{
		TrialIDs: make([]string, len(top)),
		Weights:  make([]float64, len(top)),
	}
	for i, entry := range top {
		ref.TrialIDs[i] = entry.TrialID
		ref.Weights[i] = raw[i] / sum
	}
	return ref
}
