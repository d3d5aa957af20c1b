package dto

import "ai-salesagent-be/pkg/speech"

type SynthesizeRequest struct {
	Text  string  `json:"text" form:"text"`
	Voice string  `json:"voice" form:"voice"`
	Speed float64 `json:"speed" form:"speed"`
}

type VoicesResponse struct {
	Voices []speech.Voice `json:"voices"`
}
