package flowdi_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/testutil"
)

// ============================================================================
// Shared Test Types
// ============================================================================

// TService is a basic service for testing.
type TService struct {
	ID    string
	Value int
}

// TDependency is a basic dependency for testing.
type TDependency struct {
	Name string
}

// TServiceWithDeps demonstrates factory wiring.
type TServiceWithDeps struct {
	Svc *TService
	Dep *TDependency
}

// closeRecorder remembers the order in which disposables are closed.
type closeRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *closeRecorder) record(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, id)
}

func (r *closeRecorder) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// ============================================================================
// Helpers
// ============================================================================

func newContainer(t *testing.T, opts ...flowdi.Option) *flowdi.Container {
	t.Helper()
	return testutil.NewContainerBuilder(t, opts...).Build()
}

// newLoggedContainer returns a container whose debug log is captured in buf.
func newLoggedContainer(t *testing.T, opts ...flowdi.Option) (*flowdi.Container, *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return newContainer(t, append(opts, flowdi.WithLogger(logger))...), buf
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func value(v any) flowdi.Factory {
	return func(flowdi.Locator) (any, error) { return v, nil }
}

func dependsOn(keys ...string) flowdi.Factory {
	return func(l flowdi.Locator) (any, error) {
		for _, k := range keys {
			if _, err := l.Resolve(k); err != nil {
				return nil, err
			}
		}
		return &TService{ID: "deps"}, nil
	}
}
