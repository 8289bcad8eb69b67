package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Common test errors
var (
	ErrTest        = errors.New("test error")
	ErrIntentional = errors.New("intentional error")
	ErrDisposal    = errors.New("disposal error")
)

// TestLogger records messages.
type TestLogger struct {
	mu       sync.Mutex
	messages []string
}

// Log records msg.
func (l *TestLogger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// Messages returns the recorded messages.
func (l *TestLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

// TestDatabase is a disposable dependency.
type TestDatabase struct {
	ID       string
	closed   atomic.Bool
	CloseErr error
	OnClose  func(id string)
}

// NewTestDatabase returns a database with a fresh ID.
func NewTestDatabase() *TestDatabase {
	return &TestDatabase{ID: uuid.NewString()}
}

// Close marks the database closed.
func (d *TestDatabase) Close() error {
	d.closed.Store(true)
	if d.OnClose != nil {
		d.OnClose(d.ID)
	}
	return d.CloseErr
}

// IsClosed reports whether Close ran.
func (d *TestDatabase) IsClosed() bool {
	return d.closed.Load()
}

// TestService depends on a logger and a database.
type TestService struct {
	ID       string
	Logger   *TestLogger
	Database *TestDatabase
}
