package handlers

import (
	"net/http"

	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Presets
// ============================================================

type presetRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	View        string  `json:"view" validate:"required,oneof=front back sleeveL sleeveR"`
	XCm         float64 `json:"x_cm"`
	YCm         float64 `json:"y_cm"`
	WidthCm     float64 `json:"width_cm" validate:"gt=0"`
	HeightCm    float64 `json:"height_cm" validate:"gt=0"`
	Mode        string  `json:"mode" validate:"omitempty,oneof=fixed proportional"`
	Description string  `json:"description" validate:"max=500"`
}

// ListPresets встроенные и пользовательские пресеты, опционально по виду (?view=front).
func (h *Handler) ListPresets(c fiber.Ctx) error {
	presets, err := h.presets.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	if view := c.Query("view"); view != "" {
		filtered := presets[:0]
		for _, p := range presets {
			if string(p.View) == view {
				filtered = append(filtered, p)
			}
		}
		presets = filtered
	}
	if presets == nil {
		presets = []models.Preset{}
	}
	return c.JSON(fiber.Map{"presets": presets})
}

func (h *Handler) CreatePreset(c fiber.Ctx) error {
	var req presetRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	created, err := h.repo.CreatePreset(c.Context(), models.Preset{
		Name:        req.Name,
		View:        models.View(req.View),
		XCm:         req.XCm,
		YCm:         req.YCm,
		WidthCm:     req.WidthCm,
		HeightCm:    req.HeightCm,
		Mode:        models.Mode(req.Mode),
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(created)
}

func (h *Handler) DeletePreset(c fiber.Ctx) error {
	if err := h.repo.DeletePreset(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
