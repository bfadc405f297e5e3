package handlers

import (
	"net/http"

	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/calibration"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/editor"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Sessions
// ============================================================

type sessionResponse struct {
	ID      string          `json:"id"`
	Session editor.Snapshot `json:"session"`
}

func (h *Handler) CreateSession(c fiber.Ctx) error {
	id, snap := h.sessions.Create()
	return c.Status(http.StatusCreated).JSON(sessionResponse{ID: id, Session: snap})
}

// snapshot выполняет fn и отвечает актуальным снимком сессии.
func (h *Handler) snapshot(c fiber.Ctx, fn func(*editor.Session) error) error {
	id := c.Params("id")
	var snap editor.Snapshot
	err := h.sessions.With(id, func(s *editor.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		snap = s.Snapshot()
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessionResponse{ID: id, Session: snap})
}

func (h *Handler) GetSession(c fiber.Ctx) error {
	return h.snapshot(c, func(*editor.Session) error { return nil })
}

func (h *Handler) DeleteSession(c fiber.Ctx) error {
	if !h.sessions.Delete(c.Params("id")) {
		return respondError(c, models.ErrNotFound)
	}
	return c.SendStatus(http.StatusNoContent)
}

type referenceRequest struct {
	SubjectID    string   `json:"subject_id" validate:"required"`
	ViewID       string   `json:"view_id" validate:"required_without=View"`
	View         string   `json:"view" validate:"omitempty,oneof=front back sleeveL sleeveR"`
	BaseSize     string   `json:"base_size"`
	KnownPxPerCm *float64 `json:"px_per_cm" validate:"omitempty,gt=0"`
}

func (h *Handler) SelectReference(c fiber.Ctx) error {
	var req referenceRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	ref := models.ReferenceImage{
		SubjectID:    req.SubjectID,
		ViewID:       req.ViewID,
		View:         models.View(req.View),
		BaseSize:     req.BaseSize,
		KnownPxPerCm: req.KnownPxPerCm,
	}
	if err := h.sessions.SelectReference(c.Context(), c.Params("id"), ref); err != nil {
		return respondError(c, err)
	}
	return h.GetSession(c)
}

// ============================================================
// Calibration
// ============================================================

type calibrationResponse struct {
	State   calibration.State        `json:"state"`
	Preview *float64                 `json:"preview_px_per_cm,omitempty"`
	Ratio   *models.CalibrationRatio `json:"ratio,omitempty"`
}

func (h *Handler) calibrationStep(c fiber.Ctx, fn func(*editor.Session) error) error {
	var resp calibrationResponse
	err := h.sessions.With(c.Params("id"), func(s *editor.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		resp.State = s.CalibrationState()
		if preview, ok := resp.State.Preview(); ok {
			resp.Preview = &preview
		}
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *Handler) StartCalibration(c fiber.Ctx) error {
	return h.calibrationStep(c, (*editor.Session).StartMeasuring)
}

type clickRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func (h *Handler) CalibrationClick(c fiber.Ctx) error {
	var req clickRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.calibrationStep(c, func(s *editor.Session) error {
		return s.Click(models.MeasurementPoint{X: *req.X, Y: *req.Y})
	})
}

type lengthRequest struct {
	Value string `json:"value"`
}

func (h *Handler) CalibrationLength(c fiber.Ctx) error {
	var req lengthRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.calibrationStep(c, func(s *editor.Session) error {
		_, _, err := s.EnterLength(req.Value)
		return err
	})
}

func (h *Handler) ConfirmCalibration(c fiber.Ctx) error {
	var resp calibrationResponse
	err := h.sessions.With(c.Params("id"), func(s *editor.Session) error {
		ratio, err := s.Confirm(c.Context())
		if err != nil {
			return err
		}
		resp.State = s.CalibrationState()
		resp.Ratio = &ratio
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *Handler) ResetCalibration(c fiber.Ctx) error {
	return h.calibrationStep(c, func(s *editor.Session) error {
		s.ResetCalibration()
		return nil
	})
}

// ============================================================
// Footprints
// ============================================================

type footprintRequest struct {
	ID          string   `json:"id"`
	XCm         float64  `json:"x_cm"`
	YCm         float64  `json:"y_cm"`
	WidthCm     float64  `json:"width_cm" validate:"gt=0"`
	HeightCm    float64  `json:"height_cm" validate:"gt=0"`
	RotationDeg *float64 `json:"rotation_deg"`
	OpacityPct  *float64 `json:"opacity_pct" validate:"omitempty,gte=0,lte=100"`
	Mode        string   `json:"mode" validate:"omitempty,oneof=fixed proportional"`
}

func (r footprintRequest) footprint() models.Footprint {
	return models.Footprint{
		ID:          r.ID,
		XCm:         r.XCm,
		YCm:         r.YCm,
		WidthCm:     r.WidthCm,
		HeightCm:    r.HeightCm,
		RotationDeg: r.RotationDeg,
		OpacityPct:  r.OpacityPct,
		Mode:        models.Mode(r.Mode),
	}
}

func (h *Handler) footprintOp(c fiber.Ctx, status int, fn func(*editor.Session) (models.Footprint, error)) error {
	var out models.Footprint
	err := h.sessions.With(c.Params("id"), func(s *editor.Session) error {
		f, err := fn(s)
		out = f
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(status).JSON(out)
}

func (h *Handler) AddFootprint(c fiber.Ctx) error {
	var req footprintRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.footprintOp(c, http.StatusCreated, func(s *editor.Session) (models.Footprint, error) {
		return s.AddFootprint(req.footprint())
	})
}

type footprintPxRequest struct {
	Rect models.RectGeometry `json:"rect"`
	Mode string              `json:"mode" validate:"omitempty,oneof=fixed proportional"`
}

func (h *Handler) AddFootprintPx(c fiber.Ctx) error {
	var req footprintPxRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.footprintOp(c, http.StatusCreated, func(s *editor.Session) (models.Footprint, error) {
		return s.AddFootprintPx(req.Rect, models.Mode(req.Mode))
	})
}

func (h *Handler) UpdateFootprint(c fiber.Ctx) error {
	var req footprintRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	req.ID = c.Params("fid")
	return h.footprintOp(c, http.StatusOK, func(s *editor.Session) (models.Footprint, error) {
		return s.UpdateFootprint(req.footprint())
	})
}

type applyPresetRequest struct {
	Preset string `json:"preset" validate:"required"`
}

func (h *Handler) ApplyPreset(c fiber.Ctx) error {
	var req applyPresetRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx := c.Context()
	return h.footprintOp(c, http.StatusOK, func(s *editor.Session) (models.Footprint, error) {
		return s.ApplyPreset(ctx, c.Params("fid"), req.Preset)
	})
}

func (h *Handler) FootprintPx(c fiber.Ctx) error {
	var rect models.RectGeometry
	err := h.sessions.With(c.Params("id"), func(s *editor.Session) error {
		r, err := s.FootprintPx(c.Params("fid"))
		rect = r
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rect)
}

// ============================================================
// Size & overlay
// ============================================================

// sizeRequest size_table заменяет таблицу перед выбором размера.
type sizeRequest struct {
	SizeTable *models.SizeTable `json:"size_table"`
	Size      string            `json:"size"`
}

func (h *Handler) SelectSize(c fiber.Ctx) error {
	var req sizeRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.SizeTable == nil && req.Size == "" {
		return respondError(c, models.NewDomainError(models.ErrInvalidInput.Code, "size or size_table required"))
	}
	return h.snapshot(c, func(s *editor.Session) error {
		if req.SizeTable != nil {
			if err := s.SetSizeTable(*req.SizeTable); err != nil {
				return err
			}
		}
		if req.Size == "" {
			return nil
		}
		return s.SelectSize(req.Size)
	})
}

type canvasRequest struct {
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

func (h *Handler) SessionOverlay(c fiber.Ctx) error {
	var req canvasRequest
	if err := h.decode(c, &req); err != nil {
		return respondError(c, err)
	}
	var out models.Overlay
	err := h.sessions.With(c.Params("id"), func(s *editor.Session) error {
		out = s.Overlay(models.CanvasSize{Width: req.Width, Height: req.Height})
		return nil
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
