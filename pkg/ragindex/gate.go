package ragindex

import (
	"sort"
	"strings"
)

// Sufficiency gate thresholds.
const (
	gateMinHits    = 2
	gateMinVolume  = 250  // combined word count of the top 3 hits
	gateMinMargin  = 0.05 // top score must clear the median by this much
	gateVolumeHits = 3
)

// IsSufficient decides whether retrieved chunks constitute adequate evidence
// to claim the answer was found in the document. Three conjunctive checks,
// short-circuiting on the first failure: enough corroborating chunks, enough
// raw evidence volume, and a top hit that stands out from the middle of the
// retrieved set. Flat scores mean the match is not confidently about the
// question, so the gate refuses document grounding.
func IsSufficient(hits []RetrievalHit) bool {
	if len(hits) < gateMinHits {
		return false
	}

	volume := 0
	for i, h := range hits {
		if i >= gateVolumeHits {
			break
		}
		volume += len(strings.Fields(h.Chunk))
	}
	if volume < gateMinVolume {
		return false
	}

	return hits[0].Score-medianScore(hits) >= gateMinMargin
}

func medianScore(hits []RetrievalHit) float64 {
	scores := make([]float64, len(hits))
	for i, h := range hits {
		scores[i] = h.Score
	}
	sort.Float64s(scores)

	mid := len(scores) / 2
	if len(scores)%2 == 1 {
		return scores[mid]
	}
	return (scores[mid-1] + scores[mid]) / 2
}
