package demo

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/bootstrap"
	"github.com/flowra/flowdi/internal/config"
)

// SystemInfo describes the running process.
type SystemInfo struct {
	Environment string
	GoVersion   string
	Uptime      time.Duration
}

// SystemInfoQuery reports process information.
type SystemInfoQuery struct {
	started     time.Time
	environment string
	now         func() time.Time
}

// Execute returns the current system info.
func (q *SystemInfoQuery) Execute() SystemInfo {
	return SystemInfo{
		Environment: q.environment,
		GoVersion:   runtime.Version(),
		Uptime:      q.now().Sub(q.started),
	}
}

// LandingContext is what the landing page renders.
type LandingContext struct {
	Environment string
	GoVersion   string
	Uptime      string
	CurrentYear int
}

// WelcomeService builds the landing page context.
type WelcomeService struct {
	logger *slog.Logger
	query  *SystemInfoQuery
}

// LandingContext collects system info for the landing page.
func (s *WelcomeService) LandingContext() LandingContext {
	info := s.query.Execute()
	ctx := LandingContext{
		Environment: info.Environment,
		GoVersion:   info.GoVersion,
		Uptime:      FormatUptime(info.Uptime),
		CurrentYear: s.query.now().Year(),
	}
	s.logger.Debug("welcome.service.context_resolved", slog.String("uptime", ctx.Uptime))
	return ctx
}

// WelcomeController serves the landing page.
type WelcomeController struct {
	service *WelcomeService
}

// Index returns the landing page context.
func (c *WelcomeController) Index() LandingContext {
	return c.service.LandingContext()
}

// FormatUptime renders d as "1 day, 2 hours, 3 minutes, 4 seconds", leaving
// out zero units. Seconds are always shown when nothing else is.
func FormatUptime(d time.Duration) string {
	if d < 0 {
		return "Unknown"
	}

	total := int64(d / time.Second)
	units := []struct {
		n    int64
		name string
	}{
		{total / 86400, "day"},
		{(total / 3600) % 24, "hour"},
		{(total / 60) % 60, "minute"},
	}

	var parts []string
	for _, u := range units {
		if u.n > 0 {
			parts = append(parts, plural(u.n, u.name))
		}
	}
	if seconds := total % 60; len(parts) == 0 || seconds > 0 {
		parts = append(parts, plural(seconds, "second"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// WelcomeModule is the welcome module definition.
func WelcomeModule() flowdi.ModuleDefinition {
	return flowdi.ModuleDefinition{
		Name: "welcome",
		Register: flowdi.NewModule("welcome",
			flowdi.AddFactory("queries.systemInfo", newSystemInfoQuery),
			flowdi.AddFactory("services.landing", newWelcomeService),
			flowdi.AddFactory("controllers.home", newWelcomeController),
		),
		Routes: []Route{
			{Method: "GET", Path: "/", Controller: "homeController", Action: "Index"},
		},
		Aliases: map[string]string{"homeController": "controllers.home"},
	}
}

func newSystemInfoQuery(l flowdi.Locator) (any, error) {
	env := os.Getenv("APP_ENV")
	if cfg, ok, err := flowdi.Optional[*config.Config](l, bootstrap.KeyConfig); err != nil {
		return nil, err
	} else if ok {
		env = cfg.GetString("app_env", env)
	}
	if env == "" {
		env = "development"
	}
	return &SystemInfoQuery{started: time.Now(), environment: env, now: time.Now}, nil
}

func newWelcomeService(l flowdi.Locator) (any, error) {
	logger, err := flowdi.Resolve[*slog.Logger](l, bootstrap.KeyLogger)
	if err != nil {
		return nil, err
	}
	query, err := flowdi.Resolve[*SystemInfoQuery](l, "modules.welcome.queries.systemInfo")
	if err != nil {
		return nil, err
	}
	return &WelcomeService{logger: logger, query: query}, nil
}

func newWelcomeController(l flowdi.Locator) (any, error) {
	service, err := flowdi.Resolve[*WelcomeService](l, "modules.welcome.services.landing")
	if err != nil {
		return nil, err
	}
	return &WelcomeController{service: service}, nil
}
