package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LOSTXKER/anajak-mockup-god/internal/common/logger"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/editor"
	"github.com/LOSTXKER/anajak-mockup-god/internal/placement/models"

	"github.com/google/uuid"
)

var svcLog = logger.For("sessions")

// CalibrationStore хранилище калибровок по subject/view.
type CalibrationStore interface {
	editor.CalibrationListener
	GetCalibration(ctx context.Context, subjectID, viewID string) (models.CalibrationRatio, error)
}

// ============================================================
// Session Manager
// ============================================================

type slot struct {
	mu      sync.Mutex
	session *editor.Session
}

// SessionManager держит сессии редактора в памяти. Каждая сессия
// обрабатывает действия пользователя последовательно под своим мьютексом.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*slot
	store    CalibrationStore
	options  []editor.Option
}

func NewSessionManager(store CalibrationStore, opts ...editor.Option) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*slot),
		store:    store,
		options:  opts,
	}
}

func (m *SessionManager) Create() (string, editor.Snapshot) {
	opts := m.options
	if m.store != nil {
		opts = append(append([]editor.Option{}, opts...), editor.WithListener(m.store))
	}
	s := editor.NewSession(opts...)

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.sessions[id] = &slot{session: s}
	return id, s.Snapshot()
}

func (m *SessionManager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// With выполняет fn над сессией id под её мьютексом.
func (m *SessionManager) With(id string, fn func(*editor.Session) error) error {
	m.mu.Lock()
	sl, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: session %q", models.ErrNotFound, id)
	}

	sl.mu.Lock()
	defer sl.mu.Unlock()
	return fn(sl.session)
}

// SelectReference подставляет сохранённую калибровку как известное
// соотношение, если изображение пришло без него.
func (m *SessionManager) SelectReference(ctx context.Context, id string, ref models.ReferenceImage) error {
	viewID := ref.ViewID
	if viewID == "" {
		viewID = string(ref.View)
	}
	if ref.KnownPxPerCm == nil && m.store != nil && ref.SubjectID != "" {
		stored, err := m.store.GetCalibration(ctx, ref.SubjectID, viewID)
		switch {
		case err == nil:
			px := stored.PxPerCm
			ref.KnownPxPerCm = &px
		case errors.Is(err, models.ErrNotFound):
		default:
			svcLog.Warn().Err(err).
				Str("subject_id", ref.SubjectID).
				Str("view_id", viewID).
				Msg("stored calibration lookup failed")
		}
	}

	return m.With(id, func(s *editor.Session) error {
		return s.SelectReference(ref)
	})
}
