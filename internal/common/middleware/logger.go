package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

// Logger логирует запросы API. Пробы /health не логируются,
// в production цвета отключены.
func Logger(production bool) fiber.Handler {
	return logger.New(logger.Config{
		Next: func(c fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/health/")
		},
		Format:        "[${time}] ${status} - ${latency} ${method} ${path} | ${bytesReceived}B in ${bytesSent}B out\n",
		TimeFormat:    "15:04:05",
		TimeZone:      "Local",
		DisableColors: production,
	})
}
