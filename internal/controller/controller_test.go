package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"ai-salesagent-be/internal/pkg/mailer"
	"ai-salesagent-be/internal/pkg/serverutils"
	"ai-salesagent-be/internal/repository/memory"
	"ai-salesagent-be/pkg/answer"
	"ai-salesagent-be/pkg/embedding"
	"ai-salesagent-be/pkg/events"
	"ai-salesagent-be/pkg/llm"
	"ai-salesagent-be/pkg/speech"
	"ai-salesagent-be/pkg/websearch"
)

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type stubLLM struct{}

func (stubLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (stubLLM) Complete(context.Context, string, string, ...llm.Option) (string, error) {
	return "stub answer", nil
}

type stubEmbedder struct{}

func (stubEmbedder) Generate(string, string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1}},
	}, nil
}

func (stubEmbedder) GenerateBatch(texts []string, _ string) ([]*embedding.EmbeddingResponse, error) {
	out := make([]*embedding.EmbeddingResponse, len(texts))
	for i := range out {
		out[i] = &embedding.EmbeddingResponse{
			Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1}},
		}
	}
	return out, nil
}

type stubSearch struct{}

func (stubSearch) Search(context.Context, string, int) ([]websearch.Result, error) {
	return nil, nil
}

type stubPages struct{}

func (stubPages) ExtractMainText(context.Context, string) (string, error) {
	return "", errors.New("no network in tests")
}

type stubDocs struct{}

func (stubDocs) ExtractText(context.Context, []byte) (string, error) {
	return "Acme X200 overview. Acme X200 specs. Acme X200 pricing.", nil
}

type stubScan struct{}

func (stubScan) LooksScanned(context.Context, []byte) (bool, error) { return false, nil }

type stubOCR struct{}

func (stubOCR) Recognize(context.Context, []byte) (string, error) {
	return "", errors.New("not used")
}

type stubTTS struct{}

func (stubTTS) Voices(context.Context) ([]speech.Voice, error) {
	return []speech.Voice{{ID: "alloy", Name: "Alloy"}}, nil
}

func (stubTTS) Synthesize(context.Context, speech.SynthesisRequest) ([]byte, error) {
	return []byte("RIFFaudio"), nil
}

func newTestApp() *fiber.App {
	web := answer.NewWebPipeline(stubSearch{}, stubPages{}, stubLLM{}, nopLogger{})
	orch := answer.NewOrchestrator(stubEmbedder{}, stubLLM{}, web, stubDocs{}, stubScan{}, stubOCR{}, stubPages{}, nopLogger{})

	sessions := memory.NewSessionRepository()
	bus := events.NewBus()
	mail := mailer.NewEmailService("", 0, "", "", "bot@example.com", "manager@example.com")

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewTopicController(orch, sessions, bus).RegisterRoutes(api)
	NewSalesController(mail, bus).RegisterRoutes(api)
	NewSpeechController(stubTTS{}).RegisterRoutes(api)
	return app
}

func postForm(t *testing.T, app *fiber.App, path, sessionID string, form url.Values) (int, envelope, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sessionID != "" {
		req.Header.Set("X-Session-Id", sessionID)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return resp.StatusCode, env, resp.Header.Get("X-Session-Id")
}

func TestInitTopicEndpoint(t *testing.T) {
	app := newTestApp()

	status, env, sid := postForm(t, app, "/api/init-topic", "", url.Values{
		"product_name": {"Acme X200"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.OK)
	assert.NotEmpty(t, sid, "a fresh session id must be echoed back")

	var data struct {
		Primary     string `json:"primary"`
		RagEnabled  bool   `json:"rag_enabled"`
		IndexStatus string `json:"index_status"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Acme X200", data.Primary)
	assert.True(t, data.RagEnabled)
	assert.Equal(t, "disabled_or_empty", data.IndexStatus)
}

func TestAskEndpointRequiresQuestion(t *testing.T) {
	app := newTestApp()

	status, env, _ := postForm(t, app, "/api/ask", "s-1", url.Values{})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.OK)
	assert.Contains(t, env.Error, "question is required")
}

func TestAskAndHistoryRoundTrip(t *testing.T) {
	app := newTestApp()

	_, initEnv, sid := postForm(t, app, "/api/init-topic", "", url.Values{
		"product_name": {"Acme X200"},
	})
	assert.True(t, initEnv.OK)

	status, env, _ := postForm(t, app, "/api/ask", sid, url.Values{
		"question": {"battery life?"},
	})
	assert.Equal(t, fiber.StatusOK, status)

	var ask struct {
		Answer  string   `json:"answer"`
		Sources []string `json:"sources"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &ask))
	assert.Contains(t, ask.Answer, "stub answer")
	assert.NotNil(t, ask.Sources)

	req := httptest.NewRequest("GET", "/api/history", nil)
	req.Header.Set("X-Session-Id", sid)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var histEnv struct {
		OK   bool `json:"ok"`
		Data []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(body, &histEnv))
	assert.Len(t, histEnv.Data, 2)
	assert.Equal(t, "user", histEnv.Data[0].Role)
	assert.Equal(t, "ai", histEnv.Data[1].Role)
}

func TestClearEndpoint(t *testing.T) {
	app := newTestApp()

	_, _, sid := postForm(t, app, "/api/init-topic", "", url.Values{"product_name": {"Acme X200"}})
	postForm(t, app, "/api/ask", sid, url.Values{"question": {"anything?"}})

	status, env, _ := postForm(t, app, "/api/clear", sid, url.Values{})
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.OK)

	req := httptest.NewRequest("GET", "/api/history", nil)
	req.Header.Set("X-Session-Id", sid)
	resp, _ := app.Test(req, -1)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `"data":[]`)
}

func TestSalesPrepareAndSend(t *testing.T) {
	app := newTestApp()

	status, env, _ := postForm(t, app, "/api/sales/connect/prepare", "s-1", url.Values{
		"user_name": {"Dana"},
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.OK)

	status, env, _ = postForm(t, app, "/api/sales/connect/prepare", "s-1", url.Values{
		"user_name":   {"Dana"},
		"user_email":  {"dana@example.com"},
		"user_phone":  {"+1 555 0100"},
		"product_ref": {"Acme X200"},
		"summary":     {"Asked about bulk pricing."},
	})
	assert.Equal(t, fiber.StatusOK, status)

	var prep struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &prep))
	assert.Equal(t, "manager@example.com", prep.To)
	assert.Equal(t, "Lead: Acme X200 - Price/Discount Inquiry from Dana", prep.Subject)
	assert.Contains(t, prep.Body, "Prospect: Dana")

	status, env, _ = postForm(t, app, "/api/sales/connect/send", "s-1", url.Values{
		"subject": {prep.Subject},
		"body":    {prep.Body},
	})
	assert.Equal(t, fiber.StatusOK, status)

	var send struct {
		Status string `json:"status"`
		Info   string `json:"info"`
	}
	assert.NoError(t, json.Unmarshal(env.Data, &send))
	assert.Equal(t, "preview", send.Status, "unconfigured SMTP must dry-run")
	assert.Contains(t, send.Info, "EMAIL PREVIEW (DRY RUN)")
}

func TestSpeechVoicesEndpoint(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/api/speech/voices", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"alloy"`)
}
