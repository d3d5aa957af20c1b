package answer

import (
	"context"
	"fmt"
	"strings"

	"ai-salesagent-be/internal/pkg/logger"
	"ai-salesagent-be/pkg/embedding"
	"ai-salesagent-be/pkg/extract"
	"ai-salesagent-be/pkg/llm"
	"ai-salesagent-be/pkg/ragindex"
	"ai-salesagent-be/pkg/store"
	"ai-salesagent-be/pkg/topic"
)

const (
	retrieveK     = 8 // hits fetched per question
	synthesizeTop = 5 // hits handed to doc synthesis

	docConfidence = 0.75
	webConfidence = 0.7

	pdfMarker          = "(found in PDF)"
	webMarker          = "(looked up on the web"
	webSuffix          = "\n(looked up on the web since not in PDF)"
	insufficientMarker = "insufficient evidence"
)

// OCR routing policies for document init.
const (
	OCRModeAuto  = "auto"
	OCRModeForce = "force"
	OCRModeOff   = "off"
)

// InitTopicInput is the source of a topic (re)initialization. Exactly one of
// Document, URL or ProductName drives text acquisition; ProductName doubles
// as the detector hint in all cases.
type InitTopicInput struct {
	Document    []byte
	Filename    string
	URL         string
	ProductName string
	RagEnabled  *bool
	OCRMode     string
}

// Orchestrator coordinates topic init (with OCR routing), the dual-engine
// answer pipeline with its deterministic fallback, and comparison mode. All
// session state lives in the store.Session passed into each call; the
// orchestrator itself is stateless and shared across sessions.
type Orchestrator struct {
	embedder embedding.EmbeddingProvider
	llm      llm.LLMProvider
	web      *WebPipeline
	docs     extract.DocumentExtractor
	scans    extract.ScanDetector
	ocr      extract.OCRProvider
	pages    extract.PageExtractor
	log      logger.ILogger
}

func NewOrchestrator(
	embedder embedding.EmbeddingProvider,
	provider llm.LLMProvider,
	web *WebPipeline,
	docs extract.DocumentExtractor,
	scans extract.ScanDetector,
	ocr extract.OCRProvider,
	pages extract.PageExtractor,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		embedder: embedder,
		llm:      provider,
		web:      web,
		docs:     docs,
		scans:    scans,
		ocr:      ocr,
		pages:    pages,
		log:      log,
	}
}

// InitTopic (re)sets the session topic from a document, a URL or a bare
// product name, and rebuilds the chunk index when RAG is on and document
// text is present. OCR failures degrade to plain extraction with the error
// recorded in the topic meta rather than failing the call.
func (o *Orchestrator) InitTopic(ctx context.Context, sess *store.Session, in InitTopicInput) (*InitTopicResult, error) {
	if in.RagEnabled != nil {
		sess.RagEnabled = *in.RagEnabled
	}
	if in.OCRMode == "" {
		in.OCRMode = OCRModeAuto
	}

	text := ""
	meta := topic.Meta{Source: topic.SourceManual}

	switch {
	case len(in.Document) > 0:
		meta.Source = topic.SourcePDF
		meta.Filename = in.Filename
		text = o.extractDocument(ctx, in, &meta)
		sess.DocText = text

	case in.URL != "":
		meta.Source = topic.SourceURL
		pageText, err := o.pages.ExtractMainText(ctx, in.URL)
		if err != nil {
			o.log.Warn("TOPIC", "url extraction failed", map[string]interface{}{"url": in.URL, "error": err.Error()})
		}
		text = pageText
		sess.DocText = "" // web text is not cached as an index source

	default:
		sess.DocText = ""
	}

	t := detectSafe(text, in.ProductName)
	t.Meta = meta
	sess.Topic = &t

	status := IndexStatusDisabled
	if sess.RagEnabled && sess.DocText != "" {
		idx := ragindex.NewIndex(o.embedder)
		if err := idx.Build(sess.DocText); err != nil {
			sess.Index = nil
			return nil, fmt.Errorf("index build failed: %w", err)
		}
		sess.Index = idx
		status = IndexStatusReady
	} else {
		sess.Index = nil
	}

	return &InitTopicResult{
		Topic:       sess.Topic,
		RagEnabled:  sess.RagEnabled,
		IndexStatus: status,
	}, nil
}

func (o *Orchestrator) extractDocument(ctx context.Context, in InitTopicInput, meta *topic.Meta) string {
	needsOCR := in.OCRMode == OCRModeForce
	if in.OCRMode == OCRModeAuto {
		scanned, err := o.scans.LooksScanned(ctx, in.Document)
		if err != nil {
			// Fail closed to non-OCR extraction.
			o.log.Warn("TOPIC", "scan detection failed", map[string]interface{}{"error": err.Error()})
		} else {
			needsOCR = scanned
		}
	}

	ocrUsed := false
	var text string
	if needsOCR {
		recognized, err := o.ocr.Recognize(ctx, in.Document)
		if err != nil {
			meta.OCRError = fmt.Sprintf("OCR_FAILED: %v", err)
			text = o.plainExtract(ctx, in.Document)
		} else {
			text = recognized
			ocrUsed = true
		}
	} else {
		text = o.plainExtract(ctx, in.Document)
	}

	meta.OCRUsed = &ocrUsed
	return text
}

func (o *Orchestrator) plainExtract(ctx context.Context, doc []byte) string {
	text, err := o.docs.ExtractText(ctx, doc)
	if err != nil {
		o.log.Warn("TOPIC", "document extraction failed", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return text
}

// ResolveTopic detects a topic from an independent source (document bytes,
// URL or bare name) without touching session state. Comparison mode resolves
// each side through here.
func (o *Orchestrator) ResolveTopic(ctx context.Context, doc []byte, url, name string) topic.Topic {
	text := ""
	switch {
	case len(doc) > 0:
		text = o.plainExtract(ctx, doc)
	case url != "":
		pageText, err := o.pages.ExtractMainText(ctx, url)
		if err != nil {
			o.log.Warn("TOPIC", "url extraction failed", map[string]interface{}{"url": url, "error": err.Error()})
		}
		text = pageText
	}
	return detectSafe(text, name)
}

// detectSafe shields the caller from any detector blow-up: heuristics must
// never take the whole init call down.
func detectSafe(text, nameHint string) (t topic.Topic) {
	defer func() {
		if r := recover(); r != nil {
			t = topic.Fallback(nameHint)
		}
	}()
	return topic.Detect(text, nameHint)
}

type webOutcome struct {
	answer string
	urls   []string
}

// AnswerDual answers one question with the web pipeline running concurrently
// against local retrieval. The sufficiency gate decides whether the document
// grounds the answer; otherwise the web candidate stands alone with a
// provenance marker. History gets exactly one user and one ai entry, appended
// only after both branches have resolved.
func (o *Orchestrator) AnswerDual(ctx context.Context, sess *store.Session, question string) *Result {
	webCh := make(chan webOutcome, 1)
	go func() {
		ans, urls := o.web.Answer(ctx, sess.Topic, question)
		webCh <- webOutcome{answer: ans, urls: urls}
	}()

	rag := o.documentCandidate(ctx, sess, question)

	web := <-webCh
	cseAnswer := web.answer
	if cseAnswer != "" && !strings.Contains(cseAnswer, pdfMarker) && !strings.Contains(cseAnswer, webMarker) {
		cseAnswer = strings.TrimSpace(cseAnswer) + webSuffix
	}

	out := &Result{
		Rag: rag,
		Cse: CsePayload{Summary: cseAnswer, Sources: web.urls, Confidence: webConfidence},
	}

	if rag.Status != "known" {
		out.FinalAnswer = cseAnswer
		out.FinalCitations = urlCitations(web.urls)
	} else {
		o.fuse(ctx, out, question, rag.Summary, cseAnswer, web.urls)
	}

	sess.History = append(sess.History,
		store.HistoryEntry{Role: store.RoleUser, Text: question},
		store.HistoryEntry{Role: store.RoleAI, Text: out.FinalAnswer},
	)

	return out
}

// documentCandidate runs retrieval, the gate and doc synthesis. Any failure
// or weak evidence leaves the candidate at "unknown" so the web path takes
// over; nothing here is allowed to fail the question.
func (o *Orchestrator) documentCandidate(ctx context.Context, sess *store.Session, question string) RagPayload {
	unknown := RagPayload{Status: "unknown"}

	if !sess.RagEnabled || sess.Index == nil {
		return unknown
	}

	hits, err := sess.Index.Retrieve(question, retrieveK)
	if err != nil {
		o.log.Warn("RAG", "retrieval failed", map[string]interface{}{"error": err.Error()})
		return unknown
	}
	if !ragindex.IsSufficient(hits) {
		return unknown
	}

	top := hits
	if len(top) > synthesizeTop {
		top = top[:synthesizeTop]
	}
	chunks := make([]string, len(top))
	for i, h := range top {
		chunks[i] = h.Chunk
	}

	summary, err := o.synthesizeFromChunks(ctx, question, chunks)
	if err != nil {
		o.log.Warn("RAG", "doc synthesis failed", map[string]interface{}{"error": err.Error()})
		return unknown
	}
	if strings.Contains(strings.ToLower(summary), insufficientMarker) {
		return unknown
	}

	return RagPayload{
		Status:     "known",
		Summary:    strings.TrimSpace(summary),
		Citations:  []Citation{},
		Confidence: docConfidence,
	}
}

// synthesizeFromChunks asks the model for a cautious, doc-grounded answer.
// The prompt demands the literal insufficient-evidence marker when the
// excerpts cannot answer, which downgrades the candidate upstream.
func (o *Orchestrator) synthesizeFromChunks(ctx context.Context, question string, chunks []string) (string, error) {
	system := "You are a sales-focused assistant who answers using the provided document excerpts. " +
		"If the excerpts are insufficient, reply with 'insufficient evidence'. Be concise and factual. " +
		"Structure your response: 1) Answer from documents first, 2) LAST: Add a 'Competitor Alternatives' " +
		"section with positive points about alternatives to help customers make informed decisions."

	var sb strings.Builder
	for i, c := range chunks {
		fmt.Fprintf(&sb, "[Doc %d] %s\n\n", i+1, c)
	}
	user := fmt.Sprintf("Question: %s\n\nUse only this context:\n%s", question, sb.String())

	return o.llm.Complete(ctx, system, user)
}

// fuse merges the doc and web candidates: a short agreement/difference line
// plus a final answer grounded primarily in the document candidate. Fused
// citations lead with the document reference.
func (o *Orchestrator) fuse(ctx context.Context, out *Result, question, docAnswer, webAnswer string, urls []string) {
	salesRules := " Structure response: 1) Answer about requested product first, 2) LAST: Add " +
		"'Competitor Alternatives' section with positive points about alternatives to help customers decide."

	fusedSummary := o.completeInline(ctx,
		"Merge two short answers, noting agreements or differences in <=2 lines."+salesRules,
		fmt.Sprintf("Answer A (doc): %s\n\nAnswer B (web): %s", docAnswer, webAnswer),
	)
	final := o.completeInline(ctx,
		"Compose a single direct answer grounded primarily in Answer A (doc). "+
			"Use Answer B (web) only to fill small gaps. Keep it concise."+salesRules,
		fmt.Sprintf("Question: %s\n\nAnswer A (doc): %s\n\nAnswer B (web): %s", question, docAnswer, webAnswer),
	)

	out.Fused = &FusedPayload{Comparator: "aligned", Summary: strings.TrimSpace(fusedSummary)}
	out.FinalAnswer = strings.TrimSpace(final)
	out.FinalCitations = append([]Citation{{Type: CitationPDF, Ref: "document"}}, urlCitations(urls)...)
}

// completeInline converts completion failures into diagnostic answer text;
// fusion must degrade, never abort the question.
func (o *Orchestrator) completeInline(ctx context.Context, system, user string) string {
	reply, err := o.llm.Complete(ctx, system, user)
	if err != nil {
		o.log.Error("FUSE", "completion failed", map[string]interface{}{"error": err.Error()})
		return fmt.Sprintf("Completion provider unavailable: %v", err)
	}
	return reply
}

// SetRAG flips the retrieval flag. Disabling frees the index immediately;
// re-enabling with cached document text rebuilds it eagerly.
func (o *Orchestrator) SetRAG(ctx context.Context, sess *store.Session, enabled bool) (bool, error) {
	sess.RagEnabled = enabled
	if !enabled {
		sess.Index = nil
		return sess.RagEnabled, nil
	}
	if sess.DocText != "" {
		idx := ragindex.NewIndex(o.embedder)
		if err := idx.Build(sess.DocText); err != nil {
			sess.Index = nil
			return sess.RagEnabled, fmt.Errorf("index rebuild failed: %w", err)
		}
		sess.Index = idx
	}
	return sess.RagEnabled, nil
}

// History returns a copy of the conversation so far.
func (o *Orchestrator) History(sess *store.Session) []store.HistoryEntry {
	out := make([]store.HistoryEntry, len(sess.History))
	copy(out, sess.History)
	return out
}

// Clear resets the whole session.
func (o *Orchestrator) Clear(sess *store.Session) {
	sess.Reset()
}

func urlCitations(urls []string) []Citation {
	out := make([]Citation, 0, len(urls))
	for _, u := range urls {
		out = append(out, Citation{Type: CitationURL, Ref: u})
	}
	return out
}
