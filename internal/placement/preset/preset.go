// Package preset applies named centimeter-space placement templates.
// Where presets are stored is a collaborator concern: the engine reads them
// through a Provider.
package preset

import (
	"context"
	"errors"
	"fmt"

	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/units"
)

// ============================================================
// Provider
// ============================================================

// Provider read-only источник пресетов. Get ищет по ID или по имени.
type Provider interface {
	List(ctx context.Context) ([]models.Preset, error)
	Get(ctx context.Context, key string) (models.Preset, error)
}

var builtin = []models.Preset{
	{Name: "Left Chest", View: models.ViewFront, XCm: 3.0, YCm: 7.5, WidthCm: 9.0, HeightCm: 7.5, Mode: models.ModeFixed},
	{Name: "Center Chest (A4)", View: models.ViewFront, XCm: 10.5, YCm: 15.0, WidthCm: 21.0, HeightCm: 29.7, Mode: models.ModeFixed},
	{Name: "Back Center (A3)", View: models.ViewBack, XCm: 8.0, YCm: 12.0, WidthCm: 29.7, HeightCm: 42.0, Mode: models.ModeFixed},
	{Name: "Sleeve Logo", View: models.ViewSleeveLeft, XCm: 2.0, YCm: 6.0, WidthCm: 8.0, HeightCm: 8.0, Mode: models.ModeFixed},
}

type static []models.Preset

// Builtin встроенные пресеты.
func Builtin() Provider {
	return static(builtin)
}

// Static провайдер поверх фиксированного списка.
func Static(presets ...models.Preset) Provider {
	return static(append([]models.Preset{}, presets...))
}

func (s static) List(_ context.Context) ([]models.Preset, error) {
	return append([]models.Preset{}, s...), nil
}

func (s static) Get(_ context.Context, key string) (models.Preset, error) {
	for _, p := range s {
		if (p.ID != "" && p.ID == key) || p.Name == key {
			return p, nil
		}
	}
	return models.Preset{}, fmt.Errorf("%w: %q", models.ErrPresetNotFound, key)
}

type chain []Provider

// Chain объединяет провайдеры; при совпадении ключей побеждает первый.
func Chain(providers ...Provider) Provider {
	return chain(providers)
}

func (c chain) List(ctx context.Context) ([]models.Preset, error) {
	var out []models.Preset
	for _, p := range c {
		presets, err := p.List(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, presets...)
	}
	return out, nil
}

func (c chain) Get(ctx context.Context, key string) (models.Preset, error) {
	for _, p := range c {
		preset, err := p.Get(ctx, key)
		if err == nil {
			return preset, nil
		}
		if !errors.Is(err, models.ErrPresetNotFound) {
			return models.Preset{}, err
		}
	}
	return models.Preset{}, fmt.Errorf("%w: %q", models.ErrPresetNotFound, key)
}

// ============================================================
// Application
// ============================================================

// Validate проверяет геометрию пресета перед сохранением.
func Validate(p models.Preset) error {
	if p.Name == "" {
		return fmt.Errorf("%w: preset name required", models.ErrInvalidInput)
	}
	if _, err := models.ParseView(string(p.View)); err != nil {
		return err
	}
	if _, err := models.ParseMode(string(p.Mode)); err != nil {
		return err
	}
	if !(p.WidthCm > 0) || !(p.HeightCm > 0) {
		return fmt.Errorf("%w: preset size must be positive", models.ErrInvalidInput)
	}
	return nil
}

// Apply копирует x, y, width, height и mode пресета в target, сохраняя его ID.
// Без калибровки ничего не меняется: возвращается исходный target.
func Apply(target models.Footprint, p models.Preset, ratio models.CalibrationRatio) (models.Footprint, error) {
	if !units.IsValidCalibration(ratio) {
		return target, fmt.Errorf("%w: preset %q", models.ErrPresetRequiresCalibration, p.Name)
	}
	mode := p.Mode
	if mode == "" {
		mode = models.ModeFixed
	}
	out := target
	out.XCm = p.XCm
	out.YCm = p.YCm
	out.WidthCm = p.WidthCm
	out.HeightCm = p.HeightCm
	out.Mode = mode
	return out, nil
}
