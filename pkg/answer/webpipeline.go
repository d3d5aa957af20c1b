package answer

import (
	"context"
	"fmt"
	"strings"

	"ai-salesagent-be/internal/pkg/logger"
	"ai-salesagent-be/pkg/extract"
	"ai-salesagent-be/pkg/llm"
	"ai-salesagent-be/pkg/topic"
	"ai-salesagent-be/pkg/websearch"
)

const (
	pageMinChars     = 400  // extracted page text shorter than this is discarded
	pageCompressTo   = 1800 // per-source character budget sent to the model
	promptTokenCap   = 4000 // crude total budget, ~4 chars per token
	maxSourcePages   = 3
	defaultSearchNum = 3
)

const estimatedSuffix = "\n(This answer is estimated, since no reliable sources were found)"

const competitorRules = "\n- IMPORTANT: Structure your response as follows:\n" +
	"  1. Concise answer about the requested product first\n" +
	"  2. Bullets with value props/specs of the requested product\n" +
	"  3. LAST: Add a 'Competitor Alternatives' section with 2-3 alternatives and their positive points\n" +
	"- Use inline [1], [2], [3] citations corresponding to the URLs"

// WebPipeline answers a question from live web evidence: search, extract a
// few sources, compress them under the token budget and summarize. It never
// returns an error; every failure degrades to a diagnostic or estimated
// answer so the caller always has something to show (and to fuse).
type WebPipeline struct {
	search websearch.SearchProvider
	pages  extract.PageExtractor
	llm    llm.LLMProvider
	log    logger.ILogger
}

func NewWebPipeline(search websearch.SearchProvider, pages extract.PageExtractor, provider llm.LLMProvider, log logger.ILogger) *WebPipeline {
	return &WebPipeline{
		search: search,
		pages:  pages,
		llm:    provider,
		log:    log,
	}
}

// Answer runs the search-extract-summarize pipeline for the topic+question.
// Returns the answer text and the source URLs actually used, in discovery
// order.
func (w *WebPipeline) Answer(ctx context.Context, t *topic.Topic, question string) (string, []string) {
	query := w.buildQuery(t, question)

	results, err := w.search.Search(ctx, query, defaultSearchNum)
	if err != nil {
		w.log.Warn("WEB", "search failed, degrading to sourceless answer", map[string]interface{}{"error": err.Error()})
		results = nil
	}

	type sourcePage struct {
		url  string
		text string
	}
	var pages []sourcePage
	var urls []string
	for _, r := range results {
		if r.Link == "" {
			continue
		}
		text, err := w.pages.ExtractMainText(ctx, r.Link)
		if err != nil || len(text) < pageMinChars {
			continue
		}
		pages = append(pages, sourcePage{url: r.Link, text: compressText(text, pageCompressTo)})
		urls = append(urls, r.Link)
		if len(pages) >= maxSourcePages {
			break
		}
	}

	if len(pages) > 0 {
		var blocks []string
		for _, p := range pages {
			blocks = append(blocks, fmt.Sprintf("URL: %s\nTEXT:\n%s", p.url, p.text))
		}

		system := "You are an expert sales agent who synthesizes accurate, sales-ready answers " +
			"from multiple web sources with inline [n] citations. Always suggest competitor " +
			"alternatives with their positive benefits and advantages. Act in the customer's best " +
			"interest by presenting multiple product options and helping them make informed decisions."
		user := fmt.Sprintf("Question: %s\nProduct/Topic: %s\n\nSources:\n%s\n\nRules:%s\n",
			question, topicLine(t), strings.Join(blocks, "\n\n"), competitorRules)

		// Drop trailing source blocks until the whole prompt fits the budget.
		for approxTokens(system+user) > promptTokenCap {
			cut := strings.LastIndex(user, "\n\nURL:")
			if cut <= strings.Index(user, "Sources:") {
				break
			}
			user = strings.TrimRight(user[:cut], " \n")
		}

		return w.complete(ctx, system, user), urls
	}

	// Sourceless fallback: still answer, clearly marked as estimated.
	system := "You are an expert sales agent and consultant. Always suggest competitor " +
		"alternatives with positive points and advantages for any product inquiry. Act in the " +
		"customer's best interest by presenting multiple product options to help them make " +
		"informed decisions. Even without sources, try to answer based on general knowledge and reasoning."
	user := fmt.Sprintf("Question: %s\nProduct/Topic: %s\n\n"+
		"Note: No reliable sources were found. Please give your best possible answer.\n"+
		"If you are estimating, clearly mark it as (estimated).%s",
		question, topicLine(t), competitorRules)

	return w.complete(ctx, system, user) + estimatedSuffix, nil
}

func (w *WebPipeline) complete(ctx context.Context, system, user string) string {
	reply, err := w.llm.Complete(ctx, system, user)
	if err != nil {
		w.log.Error("WEB", "completion failed", map[string]interface{}{"error": err.Error()})
		return fmt.Sprintf("Completion provider unavailable: %v", err)
	}
	return reply
}

func (w *WebPipeline) buildQuery(t *topic.Topic, question string) string {
	var parts []string
	if t != nil {
		if p := strings.TrimSpace(t.Primary); p != "" {
			parts = append(parts, p)
		}
		aliases := t.Aliases
		if len(aliases) > 3 {
			aliases = aliases[:3]
		}
		if alias := strings.TrimSpace(strings.Join(aliases, " ")); alias != "" {
			parts = append(parts, alias)
		}
	}
	if q := strings.TrimSpace(question); q != "" {
		parts = append(parts, q)
	}
	if len(parts) == 0 {
		return question
	}
	return strings.Join(parts, " ")
}

func topicLine(t *topic.Topic) string {
	if t == nil {
		return ""
	}
	line := t.Primary
	if len(t.Aliases) > 0 {
		line += " (aka " + strings.Join(t.Aliases, ", ") + ")"
	}
	return line
}

// compressText collapses whitespace and cuts to the budget, preferring to end
// at a sentence boundary when one lands reasonably deep into the text.
func compressText(text string, limit int) string {
	t := strings.Join(strings.Fields(text), " ")
	if len(t) <= limit {
		return t
	}
	cut := t[:limit]
	if last := strings.LastIndex(cut, ". "); last > 400 {
		cut = cut[:last+1]
	}
	return cut
}

func approxTokens(s string) int {
	n := len(s) / 4
	if n < 1 {
		return 1
	}
	return n
}
