package pipeline

import (
	"sort"

	"VisionAlertServer/iface"
)

// Filter drops candidates below the confidence threshold and caps the
// survivors at maxCount, keeping the highest-confidence subset. Ties are
// broken by original order and the returned slice preserves the input
// order of the survivors. The input slice is not modified.
func Filter(candidates []iface.Candidate, threshold float64, maxCount int) []iface.Candidate {
	kept := make([]iface.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Confidence >= threshold {
			kept = append(kept, c)
		}
	}
	if maxCount <= 0 || len(kept) <= maxCount {
		return kept
	}

	idx := make([]int, len(kept))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return kept[idx[a]].Confidence > kept[idx[b]].Confidence
	})
	idx = idx[:maxCount]
	sort.Ints(idx)

	out := make([]iface.Candidate, 0, maxCount)
	for _, i := range idx {
		out = append(out, kept[i])
	}
	return out
}
