package flowdi

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

type tracked struct {
	key      string
	instance any
}

// lifecycleManager remembers constructed singletons that need cleanup.
type lifecycleManager struct {
	mu          sync.Mutex
	disposables []tracked
}

func newLifecycleManager() *lifecycleManager {
	return &lifecycleManager{}
}

// track records instance if it is Disposable or DisposableWithContext.
func (m *lifecycleManager) track(key string, instance any) {
	switch instance.(type) {
	case Disposable, DisposableWithContext:
	default:
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Aliases resolve to the same instance as their target.
	if reflect.TypeOf(instance).Comparable() {
		for _, t := range m.disposables {
			if t.instance == instance {
				return
			}
		}
	}
	m.disposables = append(m.disposables, tracked{key: key, instance: instance})
}

// dispose closes tracked instances in reverse order.
func (m *lifecycleManager) dispose(ctx context.Context) error {
	m.mu.Lock()
	disposables := m.disposables
	m.disposables = nil
	m.mu.Unlock()

	var errs []error
	for i := len(disposables) - 1; i >= 0; i-- {
		t := disposables[i]

		var err error
		switch d := t.instance.(type) {
		case DisposableWithContext:
			err = d.Close(ctx)
		case Disposable:
			err = d.Close()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.key, err))
		}
	}

	if len(errs) > 0 {
		return &DisposalError{Context: "container", Errors: errs}
	}
	return nil
}

// count returns the number of tracked instances.
func (m *lifecycleManager) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.disposables)
}
