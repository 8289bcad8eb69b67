package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/config"
)

// Infrastructure keys.
const (
	KeyDatabaseManager = "databaseManager"
	KeyCacheManager    = "cacheManager"
	KeyRedisManager    = "redisManager"
	KeyRedisFactory    = "redisFactory"
	KeyMailer          = "mailer"
)

var errManagerClosed = errors.New("manager is closed")

// DatabaseManager hands out named connections. Connections are in-memory
// tables; a real driver would sit behind the same methods.
type DatabaseManager struct {
	logger *slog.Logger

	mu     sync.Mutex
	conns  map[string]*Connection
	closed bool
}

// Connection is a named in-memory store of rows keyed by table.
type Connection struct {
	Name string

	mu     sync.Mutex
	tables map[string][]map[string]any
}

// Connection returns the named connection, creating it on first use.
func (m *DatabaseManager) Connection(name string) (*Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errManagerClosed
	}
	if name == "" {
		name = "default"
	}

	conn, ok := m.conns[name]
	if !ok {
		conn = &Connection{Name: name, tables: make(map[string][]map[string]any)}
		m.conns[name] = conn
		m.logger.Debug("database.connection.opened", slog.String("connection", name))
	}
	return conn, nil
}

// Close drops every connection.
func (m *DatabaseManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.logger.Debug("database.closed", slog.Int("connections", len(m.conns)))
	m.conns = nil
	return nil
}

// Insert appends row to table.
func (c *Connection) Insert(table string, row map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[table] = append(c.tables[table], row)
}

// All returns a copy of the rows in table.
func (c *Connection) All(table string) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]map[string]any(nil), c.tables[table]...)
}

// CacheManager hands out named cache clients.
type CacheManager struct {
	logger *slog.Logger
	prefix string

	mu      sync.Mutex
	clients map[string]*CacheClient
}

// CacheClient is a named key/value cache.
type CacheClient struct {
	Name string

	mu     sync.RWMutex
	values map[string]any
}

// Client returns the named client, creating it on first use.
func (m *CacheManager) Client(name string) *CacheClient {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		name = "default"
	}
	cl, ok := m.clients[name]
	if !ok {
		cl = &CacheClient{Name: m.prefix + name, values: make(map[string]any)}
		m.clients[name] = cl
	}
	return cl
}

// Close releases every client.
func (m *CacheManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger.Debug("cache.closed", slog.Int("clients", len(m.clients)))
	m.clients = nil
	return nil
}

// Get returns the cached value for key.
func (c *CacheClient) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Set stores value under key.
func (c *CacheClient) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// RedisFactory returns a cache client by name.
type RedisFactory func(name string) *CacheClient

// Message is an outgoing mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends mail.
type Mailer interface {
	SendMail(msg Message) error
}

// logMailer is used when no transport is configured: it only logs.
type logMailer struct {
	logger *slog.Logger
	from   string
}

func (m *logMailer) SendMail(msg Message) error {
	m.logger.Warn("mailer.transport.unavailable",
		slog.String("from", m.from),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}

// RegisterInfrastructure registers the shared managers. It expects
// RegisterCore to have run.
func RegisterInfrastructure(c *flowdi.Container) error {
	regs := flowdi.Registrations{
		KeyDatabaseManager: flowdi.Provide(KeyLogger, func(logger *slog.Logger) (any, error) {
			return &DatabaseManager{logger: logger, conns: make(map[string]*Connection)}, nil
		}),

		KeyCacheManager: flowdi.Factory(func(l flowdi.Locator) (any, error) {
			logger, err := flowdi.Resolve[*slog.Logger](l, KeyLogger)
			if err != nil {
				return nil, err
			}
			cfg, err := flowdi.Resolve[*config.Config](l, KeyConfig)
			if err != nil {
				return nil, err
			}
			return &CacheManager{
				logger:  logger,
				prefix:  cfg.GetString("cache.prefix", ""),
				clients: make(map[string]*CacheClient),
			}, nil
		}),

		KeyRedisFactory: flowdi.Factory(func(l flowdi.Locator) (any, error) {
			return RedisFactory(func(name string) *CacheClient {
				return flowdi.MustResolve[*CacheManager](l, KeyCacheManager).Client(name)
			}), nil
		}),

		KeyMailer: flowdi.Factory(func(l flowdi.Locator) (any, error) {
			logger, err := flowdi.Resolve[*slog.Logger](l, KeyLogger)
			if err != nil {
				return nil, err
			}
			cradle := flowdi.NewCradle(l)
			from := "noreply@localhost"
			if v, _ := cradle.Get(KeyConfig); v != nil {
				if cfg, ok := v.(*config.Config); ok {
					from = cfg.GetString("mail.from", from)
				}
			}
			var mailer Mailer = &logMailer{logger: logger, from: from}
			return mailer, nil
		}),
	}

	if err := c.RegisterAll(regs); err != nil {
		return fmt.Errorf("register infrastructure: %w", err)
	}

	if err := c.Alias(KeyRedisManager, KeyCacheManager); err != nil {
		return fmt.Errorf("register infrastructure: %w", err)
	}
	return nil
}
