package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-salesagent-be/internal/dto"
	"ai-salesagent-be/internal/pkg/mailer"
	"ai-salesagent-be/internal/pkg/serverutils"
	"ai-salesagent-be/pkg/events"
)

type ISalesController interface {
	RegisterRoutes(r fiber.Router)
	Prepare(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
}

type salesController struct {
	mail mailer.IEmailService
	bus  *events.Bus
}

func NewSalesController(mail mailer.IEmailService, bus *events.Bus) ISalesController {
	return &salesController{
		mail: mail,
		bus:  bus,
	}
}

func (c *salesController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sales/connect")
	h.Post("/prepare", c.Prepare)
	h.Post("/send", c.Send)
}

// Prepare builds the handoff subject and body for the UI to preview before
// dispatch. Nothing is sent here.
func (c *salesController) Prepare(ctx *fiber.Ctx) error {
	details := mailer.LeadDetails{
		UserName:    ctx.FormValue("user_name"),
		UserEmail:   ctx.FormValue("user_email"),
		UserPhone:   ctx.FormValue("user_phone"),
		ProductRef:  ctx.FormValue("product_ref"),
		Summary:     ctx.FormValue("summary"),
		BestTime:    ctx.FormValue("best_time"),
		QuotedPrice: ctx.FormValue("quoted_price"),
	}
	for _, required := range []string{details.UserName, details.UserEmail, details.UserPhone, details.ProductRef, details.Summary} {
		if strings.TrimSpace(required) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_name, user_email, user_phone, product_ref and summary are required")
		}
	}

	return ctx.JSON(serverutils.SuccessResponse(dto.SalesPrepareResponse{
		To:        c.mail.ManagerEmail(),
		Subject:   mailer.BuildLeadSubject(details.ProductRef, details.UserName),
		Body:      mailer.BuildLeadBody(details),
		RequestID: uuid.NewString(),
	}))
}

func (c *salesController) Send(ctx *fiber.Ctx) error {
	subject := ctx.FormValue("subject")
	body := ctx.FormValue("body")
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "subject and body are required")
	}

	sent, info := c.mail.SendLead(subject, body)

	status := "preview"
	if sent {
		status = "sent"
	}

	publishEvent(ctx, c.bus, events.TypeLeadDispatched, map[string]interface{}{
		"status":  status,
		"subject": subject,
	})

	return ctx.JSON(serverutils.SuccessResponse(dto.SalesSendResponse{
		Status: status,
		To:     c.mail.ManagerEmail(),
		Info:   info,
	}))
}
