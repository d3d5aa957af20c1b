package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-salesagent-be/pkg/embedding"
	"ai-salesagent-be/pkg/llm"
	"ai-salesagent-be/pkg/store"
	"ai-salesagent-be/pkg/topic"
	"ai-salesagent-be/pkg/websearch"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// llmStub routes on the system prompt so concurrent branches get stable
// replies regardless of call order.
type llmStub struct {
	docReply   string
	webReply   string
	fuseReply  string
	finalReply string
	recoReply  string
	err        error
}

func (f *llmStub) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (f *llmStub) Complete(ctx context.Context, system, user string, _ ...llm.Option) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	switch {
	case strings.Contains(system, "document excerpts"):
		return f.docReply, nil
	case strings.Contains(system, "Merge two short answers"):
		return f.fuseReply, nil
	case strings.Contains(system, "grounded primarily in Answer A"):
		return f.finalReply, nil
	case strings.Contains(system, "Recommend A or B"):
		return f.recoReply, nil
	default:
		return f.webReply, nil
	}
}

func topicFor(name string) topic.Topic {
	return topic.Topic{Primary: name, Aliases: []string{}}
}

type axisEmbedder struct {
	vocab []string
}

func (e *axisEmbedder) embed(text string) *embedding.EmbeddingResponse {
	values := make([]float32, len(e.vocab))
	lower := strings.ToLower(text)
	for i, kw := range e.vocab {
		values[i] = float32(strings.Count(lower, kw))
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: values}}
}

func (e *axisEmbedder) Generate(text string, _ string) (*embedding.EmbeddingResponse, error) {
	return e.embed(text), nil
}

func (e *axisEmbedder) GenerateBatch(texts []string, _ string) ([]*embedding.EmbeddingResponse, error) {
	out := make([]*embedding.EmbeddingResponse, len(texts))
	for i, t := range texts {
		out[i] = e.embed(t)
	}
	return out, nil
}

type fakeSearch struct {
	results []websearch.Result
	err     error
}

func (f *fakeSearch) Search(ctx context.Context, query string, num int) ([]websearch.Result, error) {
	return f.results, f.err
}

type fakePages struct {
	pages map[string]string
}

func (f *fakePages) ExtractMainText(ctx context.Context, pageURL string) (string, error) {
	text, ok := f.pages[pageURL]
	if !ok {
		return "", errors.New("fetch failed")
	}
	return text, nil
}

type fakeDocs struct {
	text string
	err  error
}

func (f *fakeDocs) ExtractText(ctx context.Context, doc []byte) (string, error) {
	return f.text, f.err
}

type fakeScan struct {
	scanned bool
	err     error
}

func (f *fakeScan) LooksScanned(ctx context.Context, doc []byte) (bool, error) {
	return f.scanned, f.err
}

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) Recognize(ctx context.Context, doc []byte) (string, error) {
	return f.text, f.err
}

func repeatWords(word string, n int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", n))
}

func newTestOrchestrator(llmFake *llmStub, emb *axisEmbedder, search *fakeSearch, pages *fakePages, docs *fakeDocs, scan *fakeScan, o *fakeOCR) *Orchestrator {
	web := NewWebPipeline(search, pages, llmFake, nopLogger{})
	return NewOrchestrator(emb, llmFake, web, docs, scan, o, pages, nopLogger{})
}

func TestInitTopicFromDocument(t *testing.T) {
	docText := "Acme X200 (Smart Widget) Guide\n" +
		"The Acme X200 charges in two hours. Acme X200 supports app control.\n" +
		repeatWords("battery", 50)
	orch := newTestOrchestrator(
		&llmStub{},
		&axisEmbedder{vocab: []string{"battery"}},
		&fakeSearch{}, &fakePages{},
		&fakeDocs{text: docText},
		&fakeScan{scanned: false},
		&fakeOCR{},
	)

	sess := store.NewSession("s1")
	res, err := orch.InitTopic(context.Background(), sess, InitTopicInput{
		Document: []byte("%PDF-"),
		Filename: "guide.pdf",
	})
	if err != nil {
		t.Fatalf("InitTopic: %v", err)
	}

	if sess.Topic == nil || sess.Topic.Primary != "Acme X200" {
		t.Fatalf("Topic = %+v, want primary Acme X200", sess.Topic)
	}
	if sess.Topic.Meta.Source != "pdf" || sess.Topic.Meta.Filename != "guide.pdf" {
		t.Errorf("Meta = %+v, want pdf source with filename", sess.Topic.Meta)
	}
	if sess.Topic.Meta.OCRUsed == nil || *sess.Topic.Meta.OCRUsed {
		t.Error("OCRUsed should be set and false for a text document")
	}
	if res.IndexStatus != IndexStatusReady {
		t.Errorf("IndexStatus = %q, want %q", res.IndexStatus, IndexStatusReady)
	}
	if sess.Index == nil || sess.Index.Len() == 0 {
		t.Error("index should be built from document text")
	}
	if sess.DocText != docText {
		t.Error("document text should be cached on the session")
	}
}

func TestInitTopicOCRFailureDegrades(t *testing.T) {
	orch := newTestOrchestrator(
		&llmStub{},
		&axisEmbedder{vocab: []string{"battery"}},
		&fakeSearch{}, &fakePages{},
		&fakeDocs{text: "Orion Drone notes. Orion Drone flight. Orion Drone safety."},
		&fakeScan{scanned: true},
		&fakeOCR{err: errors.New("ocr backend down")},
	)

	sess := store.NewSession("s1")
	_, err := orch.InitTopic(context.Background(), sess, InitTopicInput{
		Document: []byte("%PDF-"),
		OCRMode:  OCRModeForce,
	})
	if err != nil {
		t.Fatalf("InitTopic: %v", err)
	}

	if !strings.HasPrefix(sess.Topic.Meta.OCRError, "OCR_FAILED:") {
		t.Errorf("OCRError = %q, want OCR_FAILED prefix", sess.Topic.Meta.OCRError)
	}
	if sess.Topic.Meta.OCRUsed == nil || *sess.Topic.Meta.OCRUsed {
		t.Error("OCRUsed should be false when OCR failed and plain extraction ran")
	}
	if sess.Topic.Primary != "Orion Drone" {
		t.Errorf("Primary = %q, want Orion Drone from the plain-extracted text", sess.Topic.Primary)
	}
}

func TestInitTopicFromURLDoesNotIndex(t *testing.T) {
	pages := &fakePages{pages: map[string]string{
		"https://example.com/p": "Vortex Cleaner overview. Vortex Cleaner specs. Vortex Cleaner pricing.",
	}}
	orch := newTestOrchestrator(
		&llmStub{},
		&axisEmbedder{vocab: []string{"battery"}},
		&fakeSearch{}, pages,
		&fakeDocs{}, &fakeScan{}, &fakeOCR{},
	)

	sess := store.NewSession("s1")
	res, err := orch.InitTopic(context.Background(), sess, InitTopicInput{URL: "https://example.com/p"})
	if err != nil {
		t.Fatalf("InitTopic: %v", err)
	}
	if sess.Topic.Primary != "Vortex Cleaner" {
		t.Errorf("Primary = %q, want Vortex Cleaner", sess.Topic.Primary)
	}
	if sess.Topic.Meta.Source != "url" {
		t.Errorf("Source = %q, want url", sess.Topic.Meta.Source)
	}
	if sess.DocText != "" || sess.Index != nil {
		t.Error("URL-sourced text must not be cached or indexed")
	}
	if res.IndexStatus != IndexStatusDisabled {
		t.Errorf("IndexStatus = %q, want %q", res.IndexStatus, IndexStatusDisabled)
	}
}

func TestAnswerDualWebOnly(t *testing.T) {
	llmFake := &llmStub{webReply: "Around 10 hours per charge."}
	orch := newTestOrchestrator(
		llmFake,
		&axisEmbedder{vocab: []string{"battery"}},
		&fakeSearch{}, &fakePages{},
		&fakeDocs{}, &fakeScan{}, &fakeOCR{},
	)

	sess := store.NewSession("s1")
	sess.Topic = &topicFixture

	res := orch.AnswerDual(context.Background(), sess, "How long does the battery last?")

	if res.Rag.Status != "unknown" {
		t.Errorf("Rag.Status = %q, want unknown without an index", res.Rag.Status)
	}
	if !strings.Contains(res.FinalAnswer, "(This answer is estimated") {
		t.Errorf("FinalAnswer = %q, want estimated suffix without sources", res.FinalAnswer)
	}
	if res.Fused != nil {
		t.Error("Fused must be nil on the web-only path")
	}
	if len(res.FinalCitations) != 0 {
		t.Errorf("FinalCitations = %v, want none without sources", res.FinalCitations)
	}

	if len(sess.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(sess.History))
	}
	if sess.History[0].Role != store.RoleUser || sess.History[1].Role != store.RoleAI {
		t.Errorf("history roles = %q,%q, want user,ai", sess.History[0].Role, sess.History[1].Role)
	}
	if sess.History[1].Text != res.FinalAnswer {
		t.Error("ai history entry must mirror the final answer")
	}
}

func TestAnswerDualWebMarker(t *testing.T) {
	llmFake := &llmStub{webReply: "It weighs 2.3 kg."}
	search := &fakeSearch{results: []websearch.Result{{Title: "Spec page", Link: "https://example.com/spec"}}}
	pages := &fakePages{pages: map[string]string{
		"https://example.com/spec": repeatWords("specification detail", 120),
	}}
	orch := newTestOrchestrator(
		llmFake,
		&axisEmbedder{vocab: []string{"battery"}},
		search, pages,
		&fakeDocs{}, &fakeScan{}, &fakeOCR{},
	)

	sess := store.NewSession("s1")
	sess.Topic = &topicFixture

	res := orch.AnswerDual(context.Background(), sess, "How heavy is it?")

	if !strings.HasSuffix(res.FinalAnswer, "(looked up on the web since not in PDF)") {
		t.Errorf("FinalAnswer = %q, want the web provenance marker appended", res.FinalAnswer)
	}
	if len(res.FinalCitations) != 1 || res.FinalCitations[0].Type != CitationURL {
		t.Errorf("FinalCitations = %v, want one url citation", res.FinalCitations)
	}
	if res.Cse.Confidence != 0.7 {
		t.Errorf("Cse.Confidence = %v, want 0.7", res.Cse.Confidence)
	}
}

func TestAnswerDualFusion(t *testing.T) {
	llmFake := &llmStub{
		docReply:   "Battery lasts 10 hours per the manual.",
		webReply:   "Reviews report about 9-10 hours.",
		fuseReply:  "Both sources agree on roughly 10 hours.",
		finalReply: "About 10 hours on a full charge.",
	}
	sess := fusionReadySession(t, llmFake)
	orch := sess.orch

	res := orch.AnswerDual(context.Background(), sess.sess, "How long does the battery last?")

	if res.Rag.Status != "known" {
		t.Fatalf("Rag.Status = %q, want known", res.Rag.Status)
	}
	if res.Rag.Confidence != 0.75 {
		t.Errorf("Rag.Confidence = %v, want 0.75", res.Rag.Confidence)
	}
	if res.Fused == nil || res.Fused.Comparator != "aligned" {
		t.Fatalf("Fused = %+v, want aligned comparator", res.Fused)
	}
	if res.FinalAnswer != "About 10 hours on a full charge." {
		t.Errorf("FinalAnswer = %q", res.FinalAnswer)
	}
	if len(res.FinalCitations) == 0 || res.FinalCitations[0].Type != CitationPDF {
		t.Errorf("FinalCitations = %v, want document citation first", res.FinalCitations)
	}
}

func TestAnswerDualInsufficientEvidenceDowngrades(t *testing.T) {
	llmFake := &llmStub{
		docReply: "Insufficient evidence.",
		webReply: "The warranty runs two years.",
	}
	sess := fusionReadySession(t, llmFake)

	res := sess.orch.AnswerDual(context.Background(), sess.sess, "How long does the battery last?")

	if res.Rag.Status != "unknown" {
		t.Errorf("Rag.Status = %q, want unknown after the insufficient-evidence reply", res.Rag.Status)
	}
	if res.Fused != nil {
		t.Error("Fused must be nil when the document candidate is downgraded")
	}
	if !strings.Contains(res.FinalAnswer, "The warranty runs two years.") {
		t.Errorf("FinalAnswer = %q, want the web candidate", res.FinalAnswer)
	}
}

func TestSetRAG(t *testing.T) {
	llmFake := &llmStub{}
	sess := fusionReadySession(t, llmFake)
	orch, s := sess.orch, sess.sess

	builtLen := s.Index.Len()
	if builtLen == 0 {
		t.Fatal("fixture should start with a built index")
	}

	enabled, err := orch.SetRAG(context.Background(), s, false)
	if err != nil {
		t.Fatalf("SetRAG(false): %v", err)
	}
	if enabled || s.Index != nil {
		t.Error("disabling must clear the index")
	}

	enabled, err = orch.SetRAG(context.Background(), s, true)
	if err != nil {
		t.Fatalf("SetRAG(true): %v", err)
	}
	if !enabled || s.Index == nil {
		t.Fatal("re-enabling with cached text must rebuild the index")
	}
	if s.Index.Len() != builtLen {
		t.Errorf("rebuilt index has %d chunks, want %d", s.Index.Len(), builtLen)
	}
}

func TestClearAndHistory(t *testing.T) {
	llmFake := &llmStub{webReply: "Sure."}
	sess := fusionReadySession(t, llmFake)
	orch, s := sess.orch, sess.sess

	orch.AnswerDual(context.Background(), s, "anything?")
	hist := orch.History(s)
	if len(hist) != 2 {
		t.Fatalf("history length = %d, want 2", len(hist))
	}

	hist[0].Text = "mutated"
	if s.History[0].Text == "mutated" {
		t.Error("History must return a copy")
	}

	orch.Clear(s)
	if s.Topic != nil || s.DocText != "" || s.Index != nil || len(s.History) != 0 || s.Compare != nil {
		t.Errorf("session not fully reset: %+v", s)
	}

	orch.Clear(s) // idempotent
	if len(s.History) != 0 {
		t.Error("second Clear must leave the session empty")
	}
}

var topicFixture = topicFor("Acme X200")

type fixture struct {
	orch *Orchestrator
	sess *store.Session
}

// fusionReadySession builds a session whose index passes the sufficiency gate
// for a battery question: a battery-heavy chunk plus a warranty-heavy one, so
// retrieval has two hits with a clear top margin.
func fusionReadySession(t *testing.T, llmFake *llmStub) *fixture {
	t.Helper()

	emb := &axisEmbedder{vocab: []string{"battery", "warranty"}}
	orch := newTestOrchestrator(
		llmFake, emb,
		&fakeSearch{}, &fakePages{},
		&fakeDocs{}, &fakeScan{}, &fakeOCR{},
	)

	sess := store.NewSession("s1")
	sess.Topic = &topicFixture
	sess.DocText = repeatWords("battery", 800) + " " + repeatWords("warranty", 200)
	if _, err := orch.SetRAG(context.Background(), sess, true); err != nil {
		t.Fatalf("index build: %v", err)
	}
	if sess.Index == nil || sess.Index.Len() < 2 {
		t.Fatalf("fixture index has %d chunks, want >= 2", sess.Index.Len())
	}
	return &fixture{orch: orch, sess: sess}
}
