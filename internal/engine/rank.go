// Thalir - Weather-Aware Crop Recommendation Engine
// Copyright 2026 Thalir AI
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/thalir-ai/thalir

package engine

import "sort"

// RankedCrop is one class from the classifier's output distribution.
type RankedCrop struct {
	ClassIndex  int
	Probability float64
}

// SelectTop returns the k highest-probability classes, sorted by
// probability descending with ties broken by ascending class index.
// Probabilities are reported verbatim, never renormalized. The result
// length is min(k, len(probs)).
func SelectTop(k int, probs []float64) []RankedCrop {
	ranked := make([]RankedCrop, len(probs))
	for i, p := range probs {
		ranked[i] = RankedCrop{ClassIndex: i, Probability: p}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Probability != ranked[b].Probability {
			return ranked[a].Probability > ranked[b].Probability
		}
		return ranked[a].ClassIndex < ranked[b].ClassIndex
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
