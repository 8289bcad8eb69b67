package flowdi

import "context"

// Disposable is implemented by singletons that hold resources.
// Container.Close calls Close on every constructed singleton that implements
// it, newest first.
//
//	type databaseManager struct {
//	    pool *sql.DB
//	}
//
//	func (m *databaseManager) Close() error {
//	    return m.pool.Close()
//	}
type Disposable interface {
	Close() error
}

// DisposableWithContext is the context-aware form of Disposable. It receives
// the context passed to Container.CloseContext.
//
// Example:
//
//	type queueClient struct {
//	    conn *amqp.Connection
//	}
//
//	func (q *queueClient) Close(ctx context.Context) error {
//	    done := make(chan error, 1)
//	    go func() {
//	        done <- q.conn.Close()
//	    }()
//
//	    select {
//	    case err := <-done:
//	        return err
//	    case <-ctx.Done():
//	        return ctx.Err()
//	    }
//	}
type DisposableWithContext interface {
	Close(ctx context.Context) error
}
