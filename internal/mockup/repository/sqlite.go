package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LOSTXKER/anajak-mockup-god/internal/common/logger"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/preset"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/units"

	"github.com/google/uuid"
)

//go:embed migrations/*.sql
var migrations embed.FS

var repoLog = logger.For("repository")

// ============================================================
// SQLite Repository
// ============================================================

// Repository хранит калибровки по subject/view и пользовательские пресеты.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Init применяет встроенные миграции.
func (r *Repository) Init(ctx context.Context) error {
	if err := r.runMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ============================================================
// Calibrations
// ============================================================

// SaveCalibration перезаписывает соотношение для subject/view.
// Некалиброванные и неположительные значения не сохраняются.
func (r *Repository) SaveCalibration(ctx context.Context, ratio models.CalibrationRatio) error {
	if !units.IsValidCalibration(ratio) {
		return fmt.Errorf("%w: refusing to store uncalibrated ratio", models.ErrInvalidRatio)
	}
	if ratio.SubjectID == "" || ratio.ViewID == "" {
		return fmt.Errorf("%w: subject and view ids required", models.ErrInvalidInput)
	}
	at := r.now().UTC()
	if ratio.CalibratedAt != nil {
		at = ratio.CalibratedAt.UTC()
	}
	source := ratio.Source
	if source == models.SourceNone {
		source = models.SourceManual
	}

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO calibrations (subject_id, view_id, px_per_cm, source, calibrated_at)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (subject_id, view_id) DO UPDATE SET
            px_per_cm = excluded.px_per_cm,
            source = excluded.source,
            calibrated_at = excluded.calibrated_at
    `, ratio.SubjectID, ratio.ViewID, ratio.PxPerCm, string(source), at.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save calibration: %w", err)
	}
	return nil
}

func (r *Repository) GetCalibration(ctx context.Context, subjectID, viewID string) (models.CalibrationRatio, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT px_per_cm, source, calibrated_at
        FROM calibrations
        WHERE subject_id = ? AND view_id = ?
    `, subjectID, viewID)

	var (
		pxPerCm float64
		source  string
		rawAt   string
	)
	if err := row.Scan(&pxPerCm, &source, &rawAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CalibrationRatio{}, fmt.Errorf("%w: calibration %s/%s", models.ErrNotFound, subjectID, viewID)
		}
		return models.CalibrationRatio{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, rawAt)
	if err != nil {
		return models.CalibrationRatio{}, fmt.Errorf("parse calibrated_at: %w", err)
	}
	return models.CalibrationRatio{
		PxPerCm:      pxPerCm,
		IsCalibrated: true,
		CalibratedAt: &at,
		SubjectID:    subjectID,
		ViewID:       viewID,
		Source:       models.CalibrationSource(source),
	}, nil
}

// CalibrationCommitted сохраняет калибровку, подтверждённую в редакторе.
func (r *Repository) CalibrationCommitted(ctx context.Context, ratio models.CalibrationRatio) error {
	if err := r.SaveCalibration(ctx, ratio); err != nil {
		return err
	}
	repoLog.Debug().
		Str("subject_id", ratio.SubjectID).
		Str("view_id", ratio.ViewID).
		Float64("px_per_cm", ratio.PxPerCm).
		Msg("calibration stored")
	return nil
}

// ============================================================
// Presets
// ============================================================

func (r *Repository) CreatePreset(ctx context.Context, p models.Preset) (models.Preset, error) {
	mode, err := models.ParseMode(string(p.Mode))
	if err != nil {
		return models.Preset{}, err
	}
	p.Mode = mode
	if err := preset.Validate(p); err != nil {
		return models.Preset{}, err
	}
	// встроенные пресеты в цепочке идут первыми и перекрыли бы пользовательский
	if _, err := preset.Builtin().Get(ctx, p.Name); err == nil {
		return models.Preset{}, fmt.Errorf("%w: preset %q is built in", models.ErrInvalidInput, p.Name)
	}
	if _, err := r.GetPreset(ctx, p.Name); err == nil {
		return models.Preset{}, fmt.Errorf("%w: preset %q already exists", models.ErrInvalidInput, p.Name)
	} else if !errors.Is(err, models.ErrPresetNotFound) {
		return models.Preset{}, err
	}

	p.ID = uuid.NewString()
	p.Custom = true
	_, err = r.db.ExecContext(ctx, `
        INSERT INTO presets (id, name, view, x_cm, y_cm, width_cm, height_cm, mode, description, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, p.ID, p.Name, string(p.View), p.XCm, p.YCm, p.WidthCm, p.HeightCm, string(p.Mode), p.Description,
		r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return models.Preset{}, fmt.Errorf("insert preset: %w", err)
	}
	return p, nil
}

const presetColumns = `id, name, view, x_cm, y_cm, width_cm, height_cm, mode, description`

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(s scanner) (models.Preset, error) {
	var (
		p          models.Preset
		view, mode string
	)
	if err := s.Scan(&p.ID, &p.Name, &view, &p.XCm, &p.YCm, &p.WidthCm, &p.HeightCm, &mode, &p.Description); err != nil {
		return models.Preset{}, err
	}
	p.View = models.View(view)
	p.Mode = models.Mode(mode)
	p.Custom = true
	return p, nil
}

func (r *Repository) ListPresets(ctx context.Context) ([]models.Preset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+presetColumns+` FROM presets ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	presets := []models.Preset{}
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// GetPreset ищет по ID или имени.
func (r *Repository) GetPreset(ctx context.Context, key string) (models.Preset, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+presetColumns+` FROM presets WHERE id = ? OR name = ? LIMIT 1`, key, key)
	p, err := scanPreset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Preset{}, fmt.Errorf("%w: %q", models.ErrPresetNotFound, key)
		}
		return models.Preset{}, err
	}
	return p, nil
}

func (r *Repository) DeletePreset(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM presets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", models.ErrPresetNotFound, id)
	}
	return nil
}

type presetStore struct {
	repo *Repository
}

func (s presetStore) List(ctx context.Context) ([]models.Preset, error) {
	return s.repo.ListPresets(ctx)
}

func (s presetStore) Get(ctx context.Context, key string) (models.Preset, error) {
	return s.repo.GetPreset(ctx, key)
}

// Presets пользовательские пресеты как read-only провайдер для редактора.
func (r *Repository) Presets() preset.Provider {
	return presetStore{repo: r}
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, e := range entries {
		data, err := migrations.ReadFile("migrations/" + e.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", e.Name(), err)
		}
		repoLog.Debug().Str("migration", e.Name()).Msg("applied")
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
