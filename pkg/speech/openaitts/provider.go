package openaitts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-salesagent-be/pkg/speech"
)

// OpenAITTSProvider implements TTSProvider against an OpenAI-compatible
// /v1/audio/speech endpoint (also served by local engines like openedai-speech).
type OpenAITTSProvider struct {
	BaseURL string
	ApiKey  string
	Model   string
	Client  *http.Client
}

var _ speech.TTSProvider = &OpenAITTSProvider{}

func NewOpenAITTSProvider(baseURL, apiKey, model string) *OpenAITTSProvider {
	if model == "" {
		model = "tts-1"
	}
	return &OpenAITTSProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		ApiKey:  apiKey,
		Model:   model,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed,omitempty"`
	ResponseFormat string  `json:"response_format"`
}

// Voices returns the fixed voice set of the OpenAI speech API; the endpoint
// has no listing call, so the known roster is served statically.
func (p *OpenAITTSProvider) Voices(ctx context.Context) ([]speech.Voice, error) {
	names := []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}
	voices := make([]speech.Voice, len(names))
	for i, n := range names {
		voices[i] = speech.Voice{ID: n, Name: n, Language: "en"}
	}
	return voices, nil
}

func (p *OpenAITTSProvider) Synthesize(ctx context.Context, req speech.SynthesisRequest) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("text is empty")
	}

	voice := req.VoiceID
	if voice == "" {
		voice = "alloy"
	}

	payload := speechRequest{
		Model:          p.Model,
		Input:          req.Text,
		Voice:          voice,
		Speed:          req.Speed,
		ResponseFormat: "wav",
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.BaseURL+"/v1/audio/speech", bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.ApiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.ApiKey)
	}

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
