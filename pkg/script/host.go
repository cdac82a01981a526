package script

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"tessera/pkg/html"
)

// ErrUnsupported matches any UnsupportedError via errors.Is.
var ErrUnsupported = errors.New("script execution unsupported")

// UnsupportedError is returned by hosts that cannot run scripts. It is a
// diagnostic: rendering proceeds without the scripts.
type UnsupportedError struct {
	ScriptCount int
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("script execution unsupported (%d scripts)", e.ScriptCount)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// Host receives the scripts of a rendered document.
type Host interface {
	Execute(scripts []Snippet) error
}

// Diagnostic is a syntax problem found in a snippet.
type Diagnostic struct {
	NodeID html.NodeID
	Err    error
}

// StubHost records scripts without running them. Each snippet is compiled
// (never run) so syntax errors can be reported alongside the unsupported
// signal.
type StubHost struct {
	log         *zap.Logger
	captured    []Snippet
	diagnostics []Diagnostic
}

func NewStubHost(log *zap.Logger) *StubHost {
	if log == nil {
		log = zap.NewNop()
	}
	return &StubHost{log: log.Named("script")}
}

// Execute captures scripts. An empty list succeeds; otherwise the result is
// an *UnsupportedError carrying the number of scripts.
func (h *StubHost) Execute(scripts []Snippet) error {
	h.captured = append(h.captured, scripts...)
	if len(scripts) == 0 {
		return nil
	}
	for _, s := range scripts {
		name := fmt.Sprintf("script#%d", s.NodeID)
		if _, err := goja.Compile(name, s.Code, false); err != nil {
			h.diagnostics = append(h.diagnostics, Diagnostic{NodeID: s.NodeID, Err: err})
			h.log.Debug("Script does not compile", zap.Int("node", int(s.NodeID)), zap.Error(err))
		}
	}
	return &UnsupportedError{ScriptCount: len(scripts)}
}

// Captured returns every snippet passed to Execute so far.
func (h *StubHost) Captured() []Snippet {
	return h.captured
}

func (h *StubHost) Diagnostics() []Diagnostic {
	return h.diagnostics
}
