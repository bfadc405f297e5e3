// Package scaling rescales placement footprints across garment sizes
// using the chest-width ratio from a size table.
package scaling

import (
	"fmt"
	"math"

	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"
)

// Factor targetChestCm / baseChestCm.
func Factor(baseChestCm, targetChestCm float64) (float64, error) {
	if !(baseChestCm > 0) || math.IsInf(baseChestCm, 1) {
		return 0, fmt.Errorf("%w: base chest width %v cm", models.ErrInvalidSizeTable, baseChestCm)
	}
	if !(targetChestCm > 0) || math.IsInf(targetChestCm, 1) {
		return 0, fmt.Errorf("%w: target chest width %v cm", models.ErrInvalidSizeTable, targetChestCm)
	}
	return targetChestCm / baseChestCm, nil
}

// Between коэффициент между двумя размерами таблицы.
func Between(table models.SizeTable, from, to string) (float64, error) {
	src, ok := table.Lookup(from)
	if !ok {
		return 0, fmt.Errorf("%w: size %q not in table", models.ErrInvalidSizeTable, from)
	}
	dst, ok := table.Lookup(to)
	if !ok {
		return 0, fmt.Errorf("%w: size %q not in table", models.ErrInvalidSizeTable, to)
	}
	if from == to {
		// точная единица, даже если ширина в таблице кривая
		if _, err := Factor(src.ChestWidthCm, dst.ChestWidthCm); err != nil {
			return 0, err
		}
		return 1, nil
	}
	return Factor(src.ChestWidthCm, dst.ChestWidthCm)
}

// FactorFor коэффициент от базового размера таблицы к target.
func FactorFor(table models.SizeTable, target string) (float64, error) {
	if table.BaseSize == "" {
		return 0, fmt.Errorf("%w: base size not set", models.ErrInvalidSizeTable)
	}
	return Between(table, table.BaseSize, target)
}

// ScaleProportional Fixed возвращается без изменений; Proportional получает
// новые ширину и высоту, позиция не масштабируется.
func ScaleProportional(f models.Footprint, factor float64) models.Footprint {
	if f.Mode != models.ModeProportional {
		return f
	}
	out := f
	out.WidthCm = f.WidthCm * factor
	out.HeightCm = f.HeightCm * factor
	return out
}

// Rescale масштабирует footprint, заданный на размере origin, к размеру target.
// Коэффициент всегда считается от исходного размера, поэтому
// повторные переключения не накапливают ошибку.
func Rescale(origin models.Footprint, table models.SizeTable, originSize, target string) (models.Footprint, error) {
	factor, err := Between(table, originSize, target)
	if err != nil {
		return origin, err
	}
	return ScaleProportional(origin, factor), nil
}
