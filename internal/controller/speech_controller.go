package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"ai-salesagent-be/internal/dto"
	"ai-salesagent-be/internal/pkg/serverutils"
	"ai-salesagent-be/pkg/speech"
)

type ISpeechController interface {
	RegisterRoutes(r fiber.Router)
	Voices(ctx *fiber.Ctx) error
	Synthesize(ctx *fiber.Ctx) error
}

type speechController struct {
	tts speech.TTSProvider
}

func NewSpeechController(tts speech.TTSProvider) ISpeechController {
	return &speechController{tts: tts}
}

func (c *speechController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/speech")
	h.Get("/voices", c.Voices)
	h.Post("/synthesize", c.Synthesize)
}

func (c *speechController) Voices(ctx *fiber.Ctx) error {
	voices, err := c.tts.Voices(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(dto.VoicesResponse{Voices: voices}))
}

func (c *speechController) Synthesize(ctx *fiber.Ctx) error {
	var req dto.SynthesizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "text is required")
	}

	wav, err := c.tts.Synthesize(ctx.Context(), speech.SynthesisRequest{
		Text:    req.Text,
		VoiceID: req.Voice,
		Speed:   req.Speed,
	})
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "audio/wav")
	return ctx.Send(wav)
}
