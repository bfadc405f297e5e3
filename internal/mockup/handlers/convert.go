package handlers

import (
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/overlay"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/scaling"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/units"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Stateless conversions
// ============================================================

type convertRequest struct {
	Value    *float64 `json:"value" validate:"required"`
	PxPerCm  float64  `json:"px_per_cm"`
	Decimals *int32   `json:"decimals" validate:"omitempty,min=0,max=6"`
}

type convertResponse struct {
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

func (h *Handler) convert(c fiber.Ctx, fn func(v, r float64) (float64, error), unit units.Unit) error {
	var req convertRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := fn(*req.Value, req.PxPerCm)
	if err != nil {
		return respondError(c, err)
	}
	decimals := int32(1)
	if req.Decimals != nil {
		decimals = *req.Decimals
	}
	return c.JSON(convertResponse{Value: out, Formatted: units.FormatMeasurement(out, unit, decimals)})
}

func (h *Handler) CmToPx(c fiber.Ctx) error {
	return h.convert(c, units.CmToPx, units.Px)
}

func (h *Handler) PxToCm(c fiber.Ctx) error {
	return h.convert(c, units.PxToCm, units.Cm)
}

// ============================================================
// Overlay
// ============================================================

type gridRequest struct {
	Canvas    models.CanvasSize       `json:"canvas"`
	Ratio     models.CalibrationRatio `json:"ratio"`
	SpacingCm float64                 `json:"spacing_cm" validate:"gte=0"`
}

func (h *Handler) Grid(c fiber.Ctx) error {
	var req gridRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	spacing := req.SpacingCm
	if spacing == 0 {
		spacing = h.overlay.SpacingCm
	}
	return c.JSON(overlay.GridLines(req.Canvas, req.Ratio, spacing))
}

type rulerRequest struct {
	LengthPx        float64                 `json:"length_px" validate:"gte=0"`
	Ratio           models.CalibrationRatio `json:"ratio"`
	MajorIntervalCm float64                 `json:"major_interval_cm" validate:"gte=0"`
	MinorIntervalCm float64                 `json:"minor_interval_cm" validate:"gte=0"`
}

func (h *Handler) Ruler(c fiber.Ctx) error {
	var req rulerRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	opts := h.overlay
	if req.MajorIntervalCm > 0 {
		opts.MajorIntervalCm = req.MajorIntervalCm
	}
	if req.MinorIntervalCm > 0 {
		opts.MinorIntervalCm = req.MinorIntervalCm
	}
	return c.JSON(overlay.RulerMarks(req.LengthPx, req.Ratio, opts))
}

// ============================================================
// Scaling
// ============================================================

// scalingRequest принимает либо пару ширин груди, либо таблицу размеров и целевой размер.
type scalingRequest struct {
	BaseChestCm   float64           `json:"base_chest_cm"`
	TargetChestCm float64           `json:"target_chest_cm"`
	SizeTable     *models.SizeTable `json:"size_table"`
	TargetSize    string            `json:"target_size" validate:"required_with=SizeTable"`
	Footprint     *models.Footprint `json:"footprint"`
}

type scalingResponse struct {
	Factor    float64           `json:"factor"`
	Footprint *models.Footprint `json:"footprint,omitempty"`
}

func (h *Handler) ScalingFactor(c fiber.Ctx) error {
	var req scalingRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}

	var (
		factor float64
		err    error
	)
	if req.SizeTable != nil {
		factor, err = scaling.FactorFor(*req.SizeTable, req.TargetSize)
	} else {
		factor, err = scaling.Factor(req.BaseChestCm, req.TargetChestCm)
	}
	if err != nil {
		return respondError(c, err)
	}

	resp := scalingResponse{Factor: factor}
	if req.Footprint != nil {
		scaled := scaling.ScaleProportional(*req.Footprint, factor)
		resp.Footprint = &scaled
	}
	return c.JSON(resp)
}
