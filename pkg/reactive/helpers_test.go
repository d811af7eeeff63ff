package reactive

import (
	"testing"

	"github.com/go-drift/mutor/pkg/errors"
)

// fakeDependent counts refreshes.
type fakeDependent struct {
	name      string
	depth     int
	refreshes int
	onRefresh func() error
	log       *[]string
}

func (f *fakeDependent) Depth() int { return f.depth }

func (f *fakeDependent) Refresh() error {
	f.refreshes++
	if f.log != nil {
		*f.log = append(*f.log, f.name)
	}
	if f.onRefresh != nil {
		return f.onRefresh()
	}
	return nil
}

// captureHandler records everything reported to the global error handler.
type captureHandler struct {
	errors       []*errors.MutorError
	panics       []*errors.PanicError
	effectErrors []*errors.EffectError
	diagnostics  []*errors.Diagnostic
}

func (h *captureHandler) HandleError(err *errors.MutorError) { h.errors = append(h.errors, err) }
func (h *captureHandler) HandlePanic(err *errors.PanicError) { h.panics = append(h.panics, err) }
func (h *captureHandler) HandleEffectError(err *errors.EffectError) {
	h.effectErrors = append(h.effectErrors, err)
}
func (h *captureHandler) HandleDiagnostic(d *errors.Diagnostic) { h.diagnostics = append(h.diagnostics, d) }

func captureErrors(t *testing.T) *captureHandler {
	t.Helper()
	h := &captureHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return h
}
