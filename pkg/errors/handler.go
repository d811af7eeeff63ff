package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	handlerMu sync.RWMutex
	handler   ErrorHandler = &LogHandler{}
)

// SetHandler replaces the process-wide error handler. Pass nil to restore
// a LogHandler writing to the global zerolog logger.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	handlerMu.Lock()
	handler = h
	handlerMu.Unlock()
}

// Handler returns the process-wide error handler.
func Handler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return handler
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// Report delivers err to the handler, stamping it if needed.
func Report(err *MutorError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleError(err)
}

// ReportPanic delivers a recovered panic to the handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandlePanic(err)
}

// ReportEffectError delivers an effect failure to the handler.
func ReportEffectError(err *EffectError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleEffectError(err)
}

// Warn delivers a diagnostic to the handler.
func Warn(d *Diagnostic) {
	if d == nil {
		return
	}
	Handler().HandleDiagnostic(d)
}

// NewPanicError records a recovered value with the stack of the recovering
// goroutine.
func NewPanicError(op string, recovered any) *PanicError {
	return &PanicError{
		Op:         op,
		Value:      recovered,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	}
}

// Recover reports a panic under op. Use it directly in a defer:
//
//	defer errors.Recover("reactive.Dispatch")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(NewPanicError(op, r))
	}
}

// CaptureStack formats up to 32 frames of the caller's stack, one
// "function\n\tfile:line" pair per frame.
func CaptureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for n > 0 {
		frame, more := frames.Next()
		sb.WriteString(frame.Function + "\n\t" + frame.File + ":" + strconv.Itoa(frame.Line) + "\n")
		if !more {
			break
		}
	}
	return sb.String()
}
