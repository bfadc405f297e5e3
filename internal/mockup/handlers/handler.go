package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/LOSTXKER/anajak-mockup-god/internal/common/logger"
	"github.com/LOSTXKER/anajak-mockup-god/internal/mockup/repository"
	"github.com/LOSTXKER/anajak-mockup-god/internal/mockup/service"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/overlay"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/preset"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

var httpLog = logger.For("http")

// ============================================================
// Mockup Handler
// ============================================================

type Handler struct {
	repo     *repository.Repository
	sessions *service.SessionManager
	presets  preset.Provider
	overlay  overlay.Options
	validate *validator.Validate
}

func New(repo *repository.Repository, sessions *service.SessionManager, opts overlay.Options) *Handler {
	return &Handler{
		repo:     repo,
		sessions: sessions,
		presets:  preset.Chain(preset.Builtin(), repo.Presets()),
		overlay:  opts,
		validate: validator.New(),
	}
}

// Register вешает маршруты API на router (обычно группа /api/v1).
func (h *Handler) Register(r fiber.Router) {
	r.Post("/convert/cm-to-px", h.CmToPx)
	r.Post("/convert/px-to-cm", h.PxToCm)
	r.Post("/overlay/grid", h.Grid)
	r.Post("/overlay/ruler", h.Ruler)
	r.Post("/scaling/factor", h.ScalingFactor)

	r.Get("/presets", h.ListPresets)
	r.Post("/presets", h.CreatePreset)
	r.Delete("/presets/:id", h.DeletePreset)

	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions/:id", h.GetSession)
	r.Delete("/sessions/:id", h.DeleteSession)
	r.Post("/sessions/:id/reference", h.SelectReference)

	r.Post("/sessions/:id/calibration/start", h.StartCalibration)
	r.Post("/sessions/:id/calibration/click", h.CalibrationClick)
	r.Post("/sessions/:id/calibration/length", h.CalibrationLength)
	r.Post("/sessions/:id/calibration/confirm", h.ConfirmCalibration)
	r.Post("/sessions/:id/calibration/reset", h.ResetCalibration)

	r.Post("/sessions/:id/footprints", h.AddFootprint)
	r.Post("/sessions/:id/footprints/px", h.AddFootprintPx)
	r.Put("/sessions/:id/footprints/:fid", h.UpdateFootprint)
	r.Get("/sessions/:id/footprints/:fid/px", h.FootprintPx)
	r.Post("/sessions/:id/footprints/:fid/preset", h.ApplyPreset)

	r.Post("/sessions/:id/size", h.SelectSize)
	r.Post("/sessions/:id/overlay", h.SessionOverlay)
}

// ============================================================
// Request decoding & errors
// ============================================================

var errBadJSON = errors.New("invalid json")

// decode читает JSON тело через sonic и проверяет теги validate.
func (h *Handler) decode(c fiber.Ctx, out any) error {
	body := c.Body()
	if len(body) == 0 {
		return errBadJSON
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return errBadJSON
	}
	if err := h.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" "+fe.Tag())
			}
			return models.NewDomainError(models.ErrInvalidInput.Code, "validation failed: "+strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}

func statusFor(code string) int {
	switch {
	case code == models.ErrPresetRequiresCalibration.Code:
		return http.StatusConflict
	case code == models.ErrCalibrationIncomplete.Code,
		code == models.ErrInvalidTransition.Code,
		strings.HasPrefix(code, "INVALID_"):
		return http.StatusUnprocessableEntity
	case strings.HasSuffix(code, "NOT_FOUND"):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondError(c fiber.Ctx, err error) error {
	if errors.Is(err, errBadJSON) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "code": models.ErrInvalidInput.Code})
	}

	code := models.CodeOf(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		httpLog.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(status).JSON(fiber.Map{"error": "internal error", "code": "INTERNAL"})
	}

	httpLog.Warn().Err(err).Str("path", c.Path()).Str("code", code).Msg("request rejected")
	return c.Status(status).JSON(fiber.Map{"error": err.Error(), "code": code})
}
