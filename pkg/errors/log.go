package errors

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var stderrLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()

// LogHandler is an ErrorHandler that writes reports through zerolog.
// The zero value logs to stderr.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Logger overrides the destination logger.
	Logger *zerolog.Logger
}

func (h *LogHandler) logger() *zerolog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return &stderrLogger
}

// HandleError logs a MutorError.
func (h *LogHandler) HandleError(err *MutorError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().Str("op", err.Op).Stringer("kind", err.Kind).AnErr("error", err.Err)
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("mutor error")
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().Interface("value", err.Value)
	if err.Op != "" {
		ev = ev.Str("op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("mutor panic")
}

// HandleEffectError logs an EffectError.
func (h *LogHandler) HandleEffectError(err *EffectError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().Uint64("effect", err.Effect).Str("phase", err.Phase).Interface("value", err.Recovered)
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("effect failed")
}

// HandleDiagnostic logs a Diagnostic at warn level.
func (h *LogHandler) HandleDiagnostic(d *Diagnostic) {
	if d == nil {
		return
	}
	ev := h.logger().Warn().Str("op", d.Op).Stringer("kind", d.Kind)
	if d.Value != nil {
		ev = ev.Str("value_type", fmt.Sprintf("%T", d.Value))
	}
	ev.Msg(d.Message)
}
