package speech

import "context"

// Voice describes one synthesizer voice.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

// SynthesisRequest carries the text plus optional voice tuning.
type SynthesisRequest struct {
	Text    string
	VoiceID string
	Speed   float64 // 1.0 = normal rate
}

// TTSProvider defines the interface for text-to-speech backends.
type TTSProvider interface {
	Voices(ctx context.Context) ([]Voice, error)
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
}
