package bootstrap_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/bootstrap"
	"github.com/flowra/flowdi/internal/config"
	"github.com/flowra/flowdi/internal/manifest"
	"github.com/flowra/flowdi/internal/testutil"
)

func pingDefinitions() map[string]flowdi.ModuleDefinition {
	return map[string]flowdi.ModuleDefinition{
		manifest.DefaultPath("ping"): {
			Name: "ping",
			Register: flowdi.NewModule("ping",
				flowdi.AddFactory("services.main", flowdi.Provide(bootstrap.KeyLogger, func(l *slog.Logger) (any, error) {
					return "pong", nil
				})),
			),
			Aliases: map[string]string{"pingService": "services.main"},
		},
	}
}

func pingManifest(enabled bool) *manifest.Manifest {
	return &manifest.Manifest{Modules: []flowdi.ManifestEntry{
		{Name: "ping", Path: manifest.DefaultPath("ping"), Enabled: enabled},
	}}
}

func build(t *testing.T, opts bootstrap.Options) (*flowdi.Container, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	opts.LogOutput = &buf
	c, err := bootstrap.Build(opts)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })
	return c, &buf
}

func TestBuild(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Log.Level = "debug"

	c, logs := build(t, bootstrap.Options{
		Config:      cfg,
		Definitions: pingDefinitions(),
		Manifest:    pingManifest(true),
	})

	for _, key := range []string{
		bootstrap.KeyConfig,
		bootstrap.KeyLogger,
		bootstrap.KeyValidationFactory,
		bootstrap.KeyDatabaseManager,
		bootstrap.KeyCacheManager,
		bootstrap.KeyRedisManager,
		bootstrap.KeyRedisFactory,
		bootstrap.KeyMailer,
		"modules",
		"modules.meta",
		"modules.ping",
		"pingService",
	} {
		assert.True(t, c.Has(key), key)
	}

	assert.Same(t, cfg, testutil.AssertResolvable[*config.Config](t, c, bootstrap.KeyConfig))
	assert.Equal(t, "pong", testutil.AssertResolvable[string](t, c, "pingService"))

	out := logs.String()
	assert.Contains(t, out, "msg=container.ready")
	assert.Contains(t, out, "app=flowdi")
	assert.Contains(t, out, "msg=modules.registered")
}

func TestBuild_DisabledModule(t *testing.T) {
	t.Parallel()

	c, _ := build(t, bootstrap.Options{
		Definitions: pingDefinitions(),
		Manifest:    pingManifest(false),
	})

	assert.False(t, c.Has("modules.ping"))
	assert.False(t, c.Has("pingService"))

	root := testutil.AssertResolvable[*flowdi.Accessor](t, c, "modules")
	assert.Equal(t, 0, root.Len())
}

func TestBuild_ManifestFromConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "modules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("modules:\n  - name: ping\n"), 0o600))

	cfg := config.Default()
	cfg.Manifest = path

	c, _ := build(t, bootstrap.Options{Config: cfg, Definitions: pingDefinitions()})
	assert.True(t, c.Has("modules.ping.services.main"))
}

func TestBuild_Fallback(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Manifest = filepath.Join(t.TempDir(), "missing.yaml")

	c, _ := build(t, bootstrap.Options{
		Config:           cfg,
		Definitions:      pingDefinitions(),
		FallbackManifest: pingManifest(true),
	})
	assert.True(t, c.Has("pingService"))

	_, err := bootstrap.Build(bootstrap.Options{Config: cfg, LogOutput: &bytes.Buffer{}})
	assert.ErrorContains(t, err, "load manifest")
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown module", func(t *testing.T) {
		_, err := bootstrap.Build(bootstrap.Options{
			Manifest:  &manifest.Manifest{Modules: []flowdi.ManifestEntry{{Name: "billing", Enabled: true}}},
			LogOutput: &bytes.Buffer{},
		})
		assert.ErrorIs(t, err, flowdi.ErrModuleNotDefined)
		assert.ErrorContains(t, err, "build module catalog")
	})

	t.Run("strict registration rejects collisions", func(t *testing.T) {
		cfg := config.Default()
		cfg.Strict = true

		defs := map[string]flowdi.ModuleDefinition{
			"shadow": {
				Name: "shadow",
				// Aliases are global; this one collides with a core key.
				Aliases: map[string]string{bootstrap.KeyLogger: "anything"},
			},
		}
		_, err := bootstrap.Build(bootstrap.Options{
			Config:      cfg,
			Definitions: defs,
			Manifest:    &manifest.Manifest{Modules: []flowdi.ManifestEntry{{Name: "shadow", Enabled: true}}},
			LogOutput:   &bytes.Buffer{},
		})
		assert.ErrorIs(t, err, flowdi.ErrKeyExists)
	})
}

func TestRegisterCore_ValidationFactory(t *testing.T) {
	t.Parallel()

	c := flowdi.New()
	t.Cleanup(func() { c.Close() })
	require.NoError(t, bootstrap.RegisterCore(c, config.Default(), slog.New(slog.DiscardHandler)))

	reg, ok := c.Describe(bootstrap.KeyValidationFactory)
	require.True(t, ok)
	assert.Equal(t, flowdi.Transient, reg.Lifetime)

	factory := testutil.AssertResolvable[bootstrap.ValidatorFactory](t, c, bootstrap.KeyValidationFactory)
	v := factory("", "username", "email")
	assert.Equal(t, "default", v.Connection())

	assert.Empty(t, v.Validate(map[string]any{"username": "ada", "email": "ada@example.com"}))
	assert.Equal(t, []string{"username", "email"}, v.Validate(map[string]any{"username": "  ", "email": nil}))
}

func TestRegisterInfrastructure(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Set("cache.prefix", "app:")
	cfg.Set("mail.from", "team@example.com")

	c := flowdi.New()
	require.NoError(t, bootstrap.RegisterCore(c, cfg, slog.New(slog.DiscardHandler)))
	require.NoError(t, bootstrap.RegisterInfrastructure(c))

	t.Run("redisManager aliases cacheManager", func(t *testing.T) {
		cache := testutil.AssertSameInstance(t, c, bootstrap.KeyRedisManager, bootstrap.KeyCacheManager)
		assert.IsType(t, &bootstrap.CacheManager{}, cache)
	})

	t.Run("redis factory shares clients", func(t *testing.T) {
		redis := testutil.AssertResolvable[bootstrap.RedisFactory](t, c, bootstrap.KeyRedisFactory)
		client := redis("sessions")
		client.Set("token", "abc")

		manager := testutil.AssertResolvable[*bootstrap.CacheManager](t, c, bootstrap.KeyCacheManager)
		same := manager.Client("sessions")
		assert.Same(t, client, same)
		assert.Equal(t, "app:sessions", same.Name)

		v, ok := same.Get("token")
		assert.True(t, ok)
		assert.Equal(t, "abc", v)
	})

	t.Run("database connections", func(t *testing.T) {
		db := testutil.AssertResolvable[*bootstrap.DatabaseManager](t, c, bootstrap.KeyDatabaseManager)
		conn, err := db.Connection("")
		require.NoError(t, err)
		assert.Equal(t, "default", conn.Name)

		conn.Insert("users", map[string]any{"username": "ada"})
		again, err := db.Connection("default")
		require.NoError(t, err)
		assert.Len(t, again.All("users"), 1)
	})

	t.Run("mailer", func(t *testing.T) {
		mailer := testutil.AssertResolvable[bootstrap.Mailer](t, c, bootstrap.KeyMailer)
		assert.NoError(t, mailer.SendMail(bootstrap.Message{To: "ada@example.com", Subject: "hi"}))
	})

	t.Run("close disposes managers", func(t *testing.T) {
		db := testutil.AssertResolvable[*bootstrap.DatabaseManager](t, c, bootstrap.KeyDatabaseManager)
		require.NoError(t, c.Close())

		_, err := db.Connection("default")
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := bootstrap.NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"key":"value"`)

	buf.Reset()
	bootstrap.NewLogger(config.LogConfig{Level: "debug", Format: "text"}, &buf).Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
