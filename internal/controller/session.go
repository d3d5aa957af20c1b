package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-salesagent-be/internal/repository/memory"
	"ai-salesagent-be/pkg/store"
)

const sessionHeader = "X-Session-Id"

// resolveSession loads (or creates) the caller's session from the
// X-Session-Id header and echoes the id back so new callers can keep it.
func resolveSession(ctx *fiber.Ctx, repo *memory.SessionRepository) *store.Session {
	id := ctx.Get(sessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	ctx.Set(sessionHeader, id)
	return repo.GetOrCreate(id)
}
