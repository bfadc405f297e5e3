package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ============================================================
// Logger
// ============================================================

// sink позволяет перенастроить вывод после того, как пакеты уже
// создали свои sub-логгеры на этапе init.
type sink struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *sink) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

var (
	out  = &sink{w: os.Stderr}
	base = zerolog.New(out).With().Timestamp().Logger()
)

// Setup задаёт уровень и формат (console | json) для всего процесса.
func Setup(level, format string) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	if strings.EqualFold(format, "json") {
		out.set(os.Stdout)
	} else {
		out.set(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"})
	}
	log.Logger = base
}

// SetOutput перенаправляет вывод (используется в тестах).
func SetOutput(w io.Writer) {
	out.set(w)
}

// For возвращает sub-логгер модуля с полем module=<name>.
func For(module string) zerolog.Logger {
	return base.With().Str("module", module).Logger()
}

func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
