package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// LivenessProbe проверяет, что приложение работает
func (h *Handler) LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe готов, когда отвечает хранилище калибровок
func (h *Handler) ReadinessProbe(c fiber.Ctx) error {
	if err := h.repo.Ping(c.Context()); err != nil {
		httpLog.Error().Err(err).Msg("readiness check failed")
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
		})
	}
	return c.JSON(fiber.Map{
		"status":   "ready",
		"sessions": h.sessions.Len(),
	})
}
