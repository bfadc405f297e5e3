// Package editor ties calibration, overlay, scaling and presets together
// for a single design-editing session. A Session is driven by one user's
// sequential actions and is not safe for concurrent use.
package editor

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/LOSTXKER/anajak-mockup-god/internal/common/logger"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/calibration"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/overlay"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/preset"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/scaling"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/units"

	"github.com/google/uuid"
)

var editorLog = logger.For("editor")

// CalibrationListener получает зафиксированные соотношения (обычно хранилище).
type CalibrationListener interface {
	CalibrationCommitted(ctx context.Context, ratio models.CalibrationRatio) error
}

type viewKey struct {
	subjectID string
	viewID    string
}

// placement footprint плюс геометрия, от которой считается масштаб.
type placement struct {
	origin     models.Footprint
	originSize string
	current    models.Footprint
}

// ============================================================
// Session
// ============================================================

type Session struct {
	reference  *models.ReferenceImage
	ratio      models.CalibrationRatio
	committed  map[viewKey]models.CalibrationRatio
	machine    *calibration.Machine
	defaultCm  float64
	placements map[string]*placement
	order      []string
	sizes      models.SizeTable
	size       string
	presets    preset.Provider
	listener   CalibrationListener
	overlay    overlay.Options
	now        func() time.Time
}

type Option func(*Session)

func WithPresets(p preset.Provider) Option {
	return func(s *Session) { s.presets = p }
}

func WithListener(l CalibrationListener) Option {
	return func(s *Session) { s.listener = l }
}

func WithOverlayOptions(o overlay.Options) Option {
	return func(s *Session) { s.overlay = o }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithDefaultReferenceCm подставляет длину эталона после второго клика.
func WithDefaultReferenceCm(cm float64) Option {
	return func(s *Session) { s.defaultCm = cm }
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		committed:  make(map[viewKey]models.CalibrationRatio),
		placements: make(map[string]*placement),
		presets:    preset.Builtin(),
		overlay:    overlay.DefaultOptions(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.machine = calibration.NewMachine("", "", calibration.WithClock(s.now))
	return s
}

// ============================================================
// Reference image
// ============================================================

// SelectReference переключает изображение. Незавершённая калибровка
// сбрасывается в Instruction. Соотношение берётся в порядке: калибровка
// пользователя для этого subject/view, известное соотношение изображения,
// иначе некалиброванное.
func (s *Session) SelectReference(ref models.ReferenceImage) error {
	if ref.SubjectID == "" {
		return fmt.Errorf("%w: subject id required", models.ErrInvalidInput)
	}
	if ref.View != "" {
		if _, err := models.ParseView(string(ref.View)); err != nil {
			return err
		}
	}
	if ref.ViewID == "" {
		ref.ViewID = string(ref.View)
	}
	// калибровка хранится по subject/view, без вида её некуда сохранить
	if ref.ViewID == "" {
		return fmt.Errorf("%w: view or view id required", models.ErrInvalidInput)
	}
	if ref.KnownPxPerCm != nil {
		if err := units.CheckRatio(*ref.KnownPxPerCm); err != nil {
			return err
		}
	}

	s.machine.Retarget(ref.SubjectID, ref.ViewID)
	s.reference = &ref

	key := viewKey{ref.SubjectID, ref.ViewID}
	switch user, ok := s.committed[key]; {
	case ok:
		s.ratio = user
	case ref.KnownPxPerCm != nil:
		at := s.now().UTC()
		s.ratio = models.CalibrationRatio{
			PxPerCm:      *ref.KnownPxPerCm,
			IsCalibrated: true,
			CalibratedAt: &at,
			SubjectID:    ref.SubjectID,
			ViewID:       ref.ViewID,
			Source:       models.SourceReference,
		}
		editorLog.Info().
			Str("subject_id", ref.SubjectID).
			Str("view_id", ref.ViewID).
			Float64("px_per_cm", s.ratio.PxPerCm).
			Msg("auto-calibrated from reference")
	default:
		s.ratio = models.Uncalibrated(ref.SubjectID, ref.ViewID)
	}
	return nil
}

func (s *Session) Reference() (models.ReferenceImage, bool) {
	if s.reference == nil {
		return models.ReferenceImage{}, false
	}
	return *s.reference, true
}

// Ratio текущее соотношение для выбранного изображения.
func (s *Session) Ratio() models.CalibrationRatio {
	return s.ratio
}

// ============================================================
// Calibration flow
// ============================================================

func (s *Session) CalibrationState() calibration.State {
	return s.machine.State()
}

// StartMeasuring открывает измерение. После Result поток начинается заново.
func (s *Session) StartMeasuring() error {
	if s.reference == nil {
		return fmt.Errorf("%w: select a reference image first", models.ErrInvalidTransition)
	}
	if s.machine.State().Step == calibration.StepResult {
		s.machine.Reset()
	}
	return s.machine.Start()
}

func (s *Session) Click(p models.MeasurementPoint) error {
	if err := s.machine.Click(p.X, p.Y); err != nil {
		return err
	}
	st := s.machine.State()
	if st.Step == calibration.StepInput && st.CmInput == "" && s.defaultCm > 0 {
		return s.machine.EnterLength(strconv.FormatFloat(s.defaultCm, 'f', -1, 64))
	}
	return nil
}

// EnterLength возвращает живое px/cm; ok == false, пока значение не годится.
func (s *Session) EnterLength(value string) (float64, bool, error) {
	if err := s.machine.EnterLength(value); err != nil {
		return 0, false, err
	}
	preview, ok := s.machine.Preview()
	return preview, ok, nil
}

// Confirm фиксирует калибровку пользователя и уведомляет listener.
// Ошибка listener только логируется.
func (s *Session) Confirm(ctx context.Context) (models.CalibrationRatio, error) {
	ratio, err := s.machine.Confirm()
	if err != nil {
		return models.CalibrationRatio{}, err
	}
	s.committed[viewKey{ratio.SubjectID, ratio.ViewID}] = ratio
	s.ratio = ratio

	editorLog.Info().
		Str("subject_id", ratio.SubjectID).
		Str("view_id", ratio.ViewID).
		Float64("px_per_cm", ratio.PxPerCm).
		Msg("calibration committed")

	if s.listener != nil {
		if err := s.listener.CalibrationCommitted(ctx, ratio); err != nil {
			editorLog.Warn().Err(err).
				Str("subject_id", ratio.SubjectID).
				Str("view_id", ratio.ViewID).
				Msg("calibration listener failed")
		}
	}
	return ratio, nil
}

// ResetCalibration сбрасывает только измерение, не зафиксированное соотношение.
func (s *Session) ResetCalibration() {
	s.machine.Reset()
}

// ============================================================
// Footprints
// ============================================================

func validateFootprint(f models.Footprint) (models.Footprint, error) {
	mode, err := models.ParseMode(string(f.Mode))
	if err != nil {
		return f, err
	}
	f.Mode = mode
	for _, v := range []float64{f.XCm, f.YCm, f.WidthCm, f.HeightCm} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return f, fmt.Errorf("%w: footprint values must be finite", models.ErrInvalidInput)
		}
	}
	if f.WidthCm <= 0 || f.HeightCm <= 0 {
		return f, fmt.Errorf("%w: footprint size must be positive", models.ErrInvalidInput)
	}
	return f, nil
}

// AddFootprint добавляет размещение на текущем размере. Пустой ID генерируется.
func (s *Session) AddFootprint(f models.Footprint) (models.Footprint, error) {
	f, err := validateFootprint(f)
	if err != nil {
		return models.Footprint{}, err
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if _, exists := s.placements[f.ID]; exists {
		return models.Footprint{}, fmt.Errorf("%w: footprint %q already exists", models.ErrInvalidInput, f.ID)
	}
	s.placements[f.ID] = &placement{origin: f, originSize: s.size, current: f}
	s.order = append(s.order, f.ID)
	return f, nil
}

// AddFootprintPx добавляет размещение, нарисованное на холсте в пикселях.
func (s *Session) AddFootprintPx(rect models.RectGeometry, mode models.Mode) (models.Footprint, error) {
	if !units.IsValidCalibration(s.ratio) {
		return models.Footprint{}, fmt.Errorf("%w: canvas is not calibrated", models.ErrCalibrationIncomplete)
	}
	f, err := units.FootprintFromPx(rect, s.ratio.PxPerCm, "", mode)
	if err != nil {
		return models.Footprint{}, err
	}
	return s.AddFootprint(f)
}

func (s *Session) lookup(id string) (*placement, error) {
	p, ok := s.placements[id]
	if !ok {
		return nil, fmt.Errorf("%w: footprint %q", models.ErrNotFound, id)
	}
	return p, nil
}

func (s *Session) Footprint(id string) (models.Footprint, error) {
	p, err := s.lookup(id)
	if err != nil {
		return models.Footprint{}, err
	}
	return p.current, nil
}

// Footprints в порядке добавления.
func (s *Session) Footprints() []models.Footprint {
	out := make([]models.Footprint, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.placements[id].current)
	}
	return out
}

// UpdateFootprint правка пользователя: становится новой исходной геометрией
// на текущем размере.
func (s *Session) UpdateFootprint(f models.Footprint) (models.Footprint, error) {
	p, err := s.lookup(f.ID)
	if err != nil {
		return models.Footprint{}, err
	}
	f, err = validateFootprint(f)
	if err != nil {
		return models.Footprint{}, err
	}
	s.rebase(p, f)
	return f, nil
}

func (s *Session) rebase(p *placement, f models.Footprint) {
	p.origin = f
	p.originSize = s.size
	p.current = f
}

// ApplyPreset без калибровки возвращает ErrPresetRequiresCalibration
// и не меняет размещение.
func (s *Session) ApplyPreset(ctx context.Context, id, presetKey string) (models.Footprint, error) {
	p, err := s.lookup(id)
	if err != nil {
		return models.Footprint{}, err
	}
	if !units.IsValidCalibration(s.ratio) {
		return p.current, fmt.Errorf("%w: preset %q", models.ErrPresetRequiresCalibration, presetKey)
	}
	pr, err := s.presets.Get(ctx, presetKey)
	if err != nil {
		return p.current, err
	}
	applied, err := preset.Apply(p.current, pr, s.ratio)
	if err != nil {
		return p.current, err
	}
	s.rebase(p, applied)
	editorLog.Debug().Str("footprint_id", id).Str("preset", pr.Name).Msg("preset applied")
	return applied, nil
}

// FootprintPx размещение в пикселях для отрисовки.
func (s *Session) FootprintPx(id string) (models.RectGeometry, error) {
	p, err := s.lookup(id)
	if err != nil {
		return models.RectGeometry{}, err
	}
	if !units.IsValidCalibration(s.ratio) {
		return models.RectGeometry{}, fmt.Errorf("%w: canvas is not calibrated", models.ErrCalibrationIncomplete)
	}
	return units.FootprintToPx(p.current, s.ratio.PxPerCm)
}

// ============================================================
// Sizes
// ============================================================

func validateSizeTable(t models.SizeTable) error {
	if t.BaseSize == "" {
		return fmt.Errorf("%w: base size not set", models.ErrInvalidSizeTable)
	}
	seen := make(map[string]struct{}, len(t.Entries))
	for _, e := range t.Entries {
		if _, dup := seen[e.Label]; dup {
			return fmt.Errorf("%w: duplicate size %q", models.ErrInvalidSizeTable, e.Label)
		}
		seen[e.Label] = struct{}{}
		if !(e.ChestWidthCm > 0) || math.IsInf(e.ChestWidthCm, 1) {
			return fmt.Errorf("%w: size %q chest width %v cm", models.ErrInvalidSizeTable, e.Label, e.ChestWidthCm)
		}
	}
	if _, ok := seen[t.BaseSize]; !ok {
		return fmt.Errorf("%w: base size %q not in table", models.ErrInvalidSizeTable, t.BaseSize)
	}
	return nil
}

// SetSizeTable подключает таблицу размеров. Текущая геометрия размещений
// считается нарисованной на базовом размере, выбранный размер сбрасывается на базовый.
func (s *Session) SetSizeTable(t models.SizeTable) error {
	if err := validateSizeTable(t); err != nil {
		return err
	}
	s.sizes = t
	s.size = t.BaseSize
	for _, id := range s.order {
		p := s.placements[id]
		s.rebase(p, p.current)
	}
	return nil
}

func (s *Session) SizeTable() models.SizeTable {
	return s.sizes
}

func (s *Session) SelectedSize() string {
	return s.size
}

// SelectSize пересчитывает Proportional размещения от их исходной геометрии.
// При ошибке ни одно размещение не меняется.
func (s *Session) SelectSize(label string) error {
	if _, err := scaling.FactorFor(s.sizes, label); err != nil {
		return err
	}

	next := make(map[string]models.Footprint, len(s.order))
	for _, id := range s.order {
		p := s.placements[id]
		if p.origin.Mode != models.ModeProportional {
			next[id] = p.origin
			continue
		}
		f, err := scaling.Rescale(p.origin, s.sizes, p.originSize, label)
		if err != nil {
			return err
		}
		next[id] = f
	}

	for id, f := range next {
		s.placements[id].current = f
	}
	editorLog.Info().Str("from", s.size).Str("to", label).Int("footprints", len(next)).Msg("size switched")
	s.size = label
	return nil
}

// ============================================================
// Overlay
// ============================================================

// Overlay сетка и линейки для текущего соотношения; пусто без калибровки.
func (s *Session) Overlay(canvas models.CanvasSize) models.Overlay {
	return overlay.Build(canvas, s.ratio, s.overlay)
}

// ============================================================
// Snapshot
// ============================================================

type Snapshot struct {
	Reference    *models.ReferenceImage  `json:"reference,omitempty"`
	Ratio        models.CalibrationRatio `json:"ratio"`
	Calibration  calibration.State       `json:"calibration"`
	SizeTable    models.SizeTable        `json:"size_table"`
	SelectedSize string                  `json:"selected_size"`
	Footprints   []models.Footprint      `json:"footprints"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Ratio:        s.ratio,
		Calibration:  s.machine.State(),
		SizeTable:    s.sizes,
		SelectedSize: s.size,
		Footprints:   s.Footprints(),
	}
	if ref, ok := s.Reference(); ok {
		snap.Reference = &ref
	}
	return snap
}
