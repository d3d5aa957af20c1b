package controller

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ai-salesagent-be/internal/dto"
	"ai-salesagent-be/internal/pkg/serverutils"
	"ai-salesagent-be/internal/repository/memory"
	"ai-salesagent-be/pkg/answer"
	"ai-salesagent-be/pkg/events"
)

type ICompareController interface {
	RegisterRoutes(r fiber.Router)
	Init(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
}

type compareController struct {
	orchestrator *answer.Orchestrator
	sessions     *memory.SessionRepository
	bus          *events.Bus
}

func NewCompareController(orchestrator *answer.Orchestrator, sessions *memory.SessionRepository, bus *events.Bus) ICompareController {
	return &compareController{
		orchestrator: orchestrator,
		sessions:     sessions,
		bus:          bus,
	}
}

func (c *compareController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/compare")
	h.Post("/init-topic", c.Init)
	h.Post("/ask", c.Ask)
}

func (c *compareController) Init(ctx *fiber.Ctx) error {
	sess := resolveSession(ctx, c.sessions)

	aBytes := readUpload(ctx, "a_pdf")
	bBytes := readUpload(ctx, "b_pdf")

	topicA := c.orchestrator.ResolveTopic(ctx.Context(), aBytes, ctx.FormValue("a_url"), ctx.FormValue("a_name"))
	topicB := c.orchestrator.ResolveTopic(ctx.Context(), bBytes, ctx.FormValue("b_url"), ctx.FormValue("b_name"))

	c.orchestrator.CompareInit(sess, topicA, topicB)

	return ctx.JSON(serverutils.SuccessResponse(dto.CompareInitResponse{
		TopicA: topicA,
		TopicB: topicB,
	}))
}

func (c *compareController) Ask(ctx *fiber.Ctx) error {
	sess := resolveSession(ctx, c.sessions)

	question := strings.TrimSpace(ctx.FormValue("question"))
	if question == "" {
		return fiber.NewError(fiber.StatusBadRequest, "question is required")
	}

	result := c.orchestrator.CompareAsk(ctx.Context(), sess, question)

	publishEvent(ctx, c.bus, events.TypeComparisonRecorded, map[string]interface{}{
		"session_id": sess.ID,
		"question":   question,
	})

	return ctx.JSON(serverutils.SuccessResponse(result))
}

func readUpload(ctx *fiber.Ctx, field string) []byte {
	file, err := ctx.FormFile(field)
	if err != nil || file == nil {
		return nil
	}
	return readMultipartFile(file)
}

func readMultipartFile(file *multipart.FileHeader) []byte {
	f, err := file.Open()
	if err != nil {
		return nil
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil
	}
	return data
}
