// Package logger envuelve zerolog para inyectarlo en casos de uso, handlers y workers.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	App    string    // se añade como campo "app" a cada línea
	Env    string    // development: consola legible, debug por defecto; resto: JSON
	Level  string    // trace, debug, info, warn, error; vacío = según Env
	Output io.Writer // por defecto os.Stdout
}

// Logger logger estructurado de la aplicación.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger raíz. También reemplaza el logger global de zerolog para que
// las librerías que lo usan escriban con el mismo formato.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	dev := cfg.Env == "" || cfg.Env == "development"
	if dev {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).Level(levelFor(cfg.Level, dev)).With().Timestamp()
	if cfg.App != "" {
		ctx = ctx.Str("app", cfg.App)
	}
	zl := ctx.Logger()
	log.Logger = zl
	return &Logger{zl: zl}
}

// Nop descarta todo.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func levelFor(s string, dev bool) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		if dev {
			return zerolog.DebugLevel
		}
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Named sublogger con el campo component fijo (http, tally_registry, ws_hub...).
func (l *Logger) Named(component string) *Logger {
	return l.With("component", component)
}

// With sublogger con un campo de texto fijo, p. ej. agent_id.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// Enabled indica si el nivel dado se escribe; evita armar eventos caros en vano.
func (l *Logger) Enabled(level zerolog.Level) bool {
	return l.zl.GetLevel() <= level && level != zerolog.Disabled
}
