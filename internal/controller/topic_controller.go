package controller

import (
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"ai-salesagent-be/internal/dto"
	"ai-salesagent-be/internal/pkg/serverutils"
	"ai-salesagent-be/internal/repository/memory"
	"ai-salesagent-be/pkg/answer"
	"ai-salesagent-be/pkg/events"
)

type ITopicController interface {
	RegisterRoutes(r fiber.Router)
	InitTopic(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	RagToggle(ctx *fiber.Ctx) error
}

type topicController struct {
	orchestrator *answer.Orchestrator
	sessions     *memory.SessionRepository
	bus          *events.Bus
}

func NewTopicController(orchestrator *answer.Orchestrator, sessions *memory.SessionRepository, bus *events.Bus) ITopicController {
	return &topicController{
		orchestrator: orchestrator,
		sessions:     sessions,
		bus:          bus,
	}
}

func (c *topicController) RegisterRoutes(r fiber.Router) {
	r.Post("/init-topic", c.InitTopic)
	r.Post("/ask", c.Ask)
	r.Get("/history", c.History)
	r.Post("/clear", c.Clear)
	r.Post("/rag", c.RagToggle)
}

func (c *topicController) InitTopic(ctx *fiber.Ctx) error {
	sess := resolveSession(ctx, c.sessions)

	in := answer.InitTopicInput{
		URL:         ctx.FormValue("url"),
		ProductName: ctx.FormValue("product_name"),
		OCRMode:     ctx.FormValue("ocr_mode", answer.OCRModeAuto),
	}

	if v := ctx.FormValue("rag_enabled"); v != "" {
		enabled := truthy(v)
		in.RagEnabled = &enabled
	}

	if file, err := ctx.FormFile("pdf"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "cannot read uploaded file")
		}
		defer f.Close()
		docBytes, err := io.ReadAll(f)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "cannot read uploaded file")
		}
		in.Document = docBytes
		in.Filename = file.Filename
	}

	result, err := c.orchestrator.InitTopic(ctx.Context(), sess, in)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(dto.InitTopicResponse{
		Primary:     sess.Topic.Primary,
		Meta:        sess.Topic.Meta,
		RagEnabled:  result.RagEnabled,
		IndexStatus: result.IndexStatus,
		Topic:       sess.Topic,
	}))
}

func (c *topicController) Ask(ctx *fiber.Ctx) error {
	sess := resolveSession(ctx, c.sessions)

	question := strings.TrimSpace(ctx.FormValue("question"))
	if question == "" {
		return fiber.NewError(fiber.StatusBadRequest, "question is required")
	}

	result := c.orchestrator.AnswerDual(ctx.Context(), sess, question)

	publishEvent(ctx, c.bus, events.TypeAnswerRecorded, map[string]interface{}{
		"session_id": sess.ID,
		"question":   question,
		"grounded":   result.Rag.Status == "known",
	})

	sources := make([]string, 0, len(result.FinalCitations))
	for _, cit := range result.FinalCitations {
		sources = append(sources, cit.Ref)
	}

	return ctx.JSON(serverutils.SuccessResponse(dto.AskResponse{
		Answer:  result.FinalAnswer,
		Sources: sources,
		Raw:     result,
	}))
}

func (c *topicController) History(ctx *fiber.Ctx) error {
	sess := resolveSession(ctx, c.sessions)
	return ctx.JSON(serverutils.SuccessResponse(dto.HistoryResponse(c.orchestrator.History(sess))))
}

func (c *topicController) Clear(ctx *fiber.Ctx) error {
	sess := resolveSession(ctx, c.sessions)
	c.orchestrator.Clear(sess)
	return ctx.JSON(serverutils.SuccessResponse(dto.ClearResponse{Ok: true}))
}

func (c *topicController) RagToggle(ctx *fiber.Ctx) error {
	sess := resolveSession(ctx, c.sessions)

	enabled, err := c.orchestrator.SetRAG(ctx.Context(), sess, truthy(ctx.FormValue("enabled")))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(dto.RagToggleResponse{RagEnabled: enabled}))
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// publishEvent is a helper shared by the controllers; bus failures only log.
func publishEvent(ctx *fiber.Ctx, bus *events.Bus, eventType string, data map[string]interface{}) {
	if bus == nil {
		return
	}
	_ = bus.Publish(ctx.Context(), events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	})
}
