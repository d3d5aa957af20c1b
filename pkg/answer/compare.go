package answer

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"ai-salesagent-be/pkg/store"
	"ai-salesagent-be/pkg/topic"
)

const compareSuffix = "\n(looked up on the web)"

// CompareInit stores both topics on the session. No indexing: comparison is
// web-only and never touches the document index.
func (o *Orchestrator) CompareInit(sess *store.Session, a, b topic.Topic) {
	sess.Compare = &store.ComparisonState{A: a, B: b}
}

// CompareAsk answers the same question for both topics through the web
// pipeline concurrently, then asks for a short recommendation. Asking before
// init returns a structured placeholder, not an error.
func (o *Orchestrator) CompareAsk(ctx context.Context, sess *store.Session, question string) *CompareResult {
	if sess.Compare == nil {
		return &CompareResult{
			A:              struct{}{},
			B:              struct{}{},
			Matrix:         []MatrixRow{},
			Recommendation: "Initialize comparison first.",
		}
	}

	webFor := func(t topic.Topic) (string, []string) {
		ans, urls := o.web.Answer(ctx, &t, question)
		if ans != "" && !strings.Contains(ans, webMarker) {
			ans = strings.TrimSpace(ans) + compareSuffix
		}
		return ans, urls
	}

	var (
		aAns, bAns   string
		aURLs, bURLs []string
	)

	// Barrier: both lookups finish before anything downstream runs. A branch
	// degrades to a diagnostic string inside the pipeline, never an error.
	var g errgroup.Group
	g.Go(func() error {
		aAns, aURLs = webFor(sess.Compare.A)
		return nil
	})
	g.Go(func() error {
		bAns, bURLs = webFor(sess.Compare.B)
		return nil
	})
	_ = g.Wait()

	reco := o.completeInline(ctx,
		"Recommend A or B concisely (2 lines). If ambiguous, say what extra info is needed.",
		fmt.Sprintf("Question: %s\n\nA: %s\n\nB: %s", question, aAns, bAns),
	)

	result := &CompareResult{
		A: SidePayload{Summary: aAns, Sources: aURLs, Confidence: webConfidence},
		B: SidePayload{Summary: bAns, Sources: bURLs, Confidence: webConfidence},
		Matrix: []MatrixRow{
			{
				Dimension: "Answer (web)",
				AValue:    aAns,
				BValue:    bAns,
				ACites:    indexRange(len(aURLs)),
				BCites:    indexRange(len(bURLs)),
			},
		},
		Comparator:     "partial",
		Recommendation: strings.TrimSpace(reco),
	}
	return result
}

func indexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
