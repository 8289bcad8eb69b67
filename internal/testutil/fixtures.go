package testutil

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/flowra/flowdi"
)

// Counter wraps factories and counts their invocations.
type Counter struct {
	calls atomic.Int32
}

// Calls returns the number of invocations so far.
func (c *Counter) Calls() int {
	return int(c.calls.Load())
}

// Wrap returns a factory that counts calls and then runs build.
func (c *Counter) Wrap(build flowdi.Factory) flowdi.Factory {
	return func(l flowdi.Locator) (any, error) {
		c.calls.Add(1)
		return build(l)
	}
}

// Fresh returns a factory that builds a new *TestService on every call.
func (c *Counter) Fresh() flowdi.Factory {
	return c.Wrap(func(flowdi.Locator) (any, error) {
		return &TestService{ID: uuid.NewString()}, nil
	})
}

// Slow is Fresh with a delay, to widen race windows.
func (c *Counter) Slow(d time.Duration) flowdi.Factory {
	return c.Wrap(func(flowdi.Locator) (any, error) {
		time.Sleep(d)
		return &TestService{ID: uuid.NewString()}, nil
	})
}

// CommonRegistrations registers a logger, a database and a service that
// depends on both.
func CommonRegistrations() flowdi.Registrations {
	return flowdi.Registrations{
		"logger": flowdi.Factory(func(flowdi.Locator) (any, error) {
			return &TestLogger{}, nil
		}),
		"database": flowdi.Factory(func(flowdi.Locator) (any, error) {
			return NewTestDatabase(), nil
		}),
		"service": flowdi.Factory(func(l flowdi.Locator) (any, error) {
			logger, err := flowdi.Resolve[*TestLogger](l, "logger")
			if err != nil {
				return nil, err
			}
			db, err := flowdi.Resolve[*TestDatabase](l, "database")
			if err != nil {
				return nil, err
			}
			logger.Log("service.created")
			return &TestService{ID: uuid.NewString(), Logger: logger, Database: db}, nil
		}),
	}
}
