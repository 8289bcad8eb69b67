package flowdi_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/flowra/flowdi"
)

// Example demonstrates basic registration and resolution.
func Example() {
	c := flowdi.New()
	defer c.Close()

	_ = c.Register("logger", func(flowdi.Locator) (any, error) {
		return &Logger{prefix: "[APP] "}, nil
	})
	_ = c.Register("users", func(l flowdi.Locator) (any, error) {
		logger, err := flowdi.Resolve[*Logger](l, "logger")
		if err != nil {
			return nil, err
		}
		return &UserService{logger: logger}, nil
	})

	users, err := flowdi.Resolve[*UserService](c, "users")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(users.Greet("John Doe"))
	// Output: [APP] hello John Doe
}

// ExampleContainer_Register_transient shows that a transient factory builds a
// new value on every call while a singleton is shared.
func ExampleContainer_Register_transient() {
	c := flowdi.New()
	defer c.Close()

	_ = c.Register("shared", func(flowdi.Locator) (any, error) { return &Logger{}, nil })
	_ = c.Register("fresh", func(flowdi.Locator) (any, error) { return &Logger{}, nil }, flowdi.AsTransient())

	a, _ := c.Resolve("shared")
	b, _ := c.Resolve("shared")
	x, _ := c.Resolve("fresh")
	y, _ := c.Resolve("fresh")

	fmt.Println(a == b, x == y)
	// Output: true false
}

// ExampleContainer_Register_nested shows how nested mappings are flattened.
func ExampleContainer_Register_nested() {
	c := flowdi.New()
	defer c.Close()

	_ = c.Register("infra", flowdi.Registrations{
		"db":    "postgres://localhost",
		"cache": flowdi.Registrations{"redis": "redis://localhost"},
	})

	fmt.Println(strings.Join(c.Keys(), " "))
	fmt.Println(c.Has("infra"))
	// Output:
	// infra.cache.redis infra.db
	// false
}

// ExampleScope_Finalize demonstrates accessor synthesis for a module scope.
func ExampleScope_Finalize() {
	c := flowdi.New()
	defer c.Close()

	scope, _ := c.CreateScope("modules.users")
	_ = scope.Register(flowdi.Registrations{
		"services": flowdi.Registrations{
			"main": flowdi.AsFunction(func(flowdi.Locator) (any, error) {
				return &UserService{logger: &Logger{}}, nil
			}).Singleton(),
		},
	})
	_ = scope.Finalize()

	direct, _ := c.Resolve("modules.users.services.main")
	root, _ := flowdi.Resolve[*flowdi.Accessor](c, "modules.users")
	viaRoot, _ := root.Lookup("services.main")

	fmt.Println(root)
	fmt.Println(direct == viaRoot)
	// Output:
	// users{services}
	// true
}

// ExampleRegisterModules mounts a module and reads its metadata.
func ExampleRegisterModules() {
	c := flowdi.New()
	defer c.Close()

	err := flowdi.RegisterModules(c, []flowdi.ModuleDescriptor{{
		Name: "welcome",
		Register: flowdi.NewModule("welcome",
			flowdi.AddFactory("controllers.home", func(flowdi.Locator) (any, error) {
				return "home controller", nil
			}),
		),
		Routes:   []string{"GET /"},
		Aliases:  map[string]string{"homeController": "controllers.home"},
		Manifest: flowdi.ManifestEntry{Name: "welcome", Path: "./Welcome/welcome.module", Enabled: true},
	}})
	if err != nil {
		log.Fatal(err)
	}

	home, _ := c.Resolve("homeController")
	meta, _ := flowdi.ModuleMetas(c)

	fmt.Println(home)
	fmt.Println(meta["welcome"].HasRoutes, meta["welcome"].Manifest.Path)
	// Output:
	// home controller
	// true ./Welcome/welcome.module
}

// ExampleCradle shows optional lookups through the cradle.
func ExampleCradle() {
	c := flowdi.New()
	defer c.Close()

	_ = c.Register("config", map[string]any{"port": 8080})

	cradle := c.Cradle()
	port, _ := cradle.Get("config.port")
	mailer, _ := cradle.Get("mailer")

	fmt.Println(port, mailer)
	// Output: 8080 <nil>
}

type Logger struct {
	prefix string
}

func (l *Logger) Format(msg string) string {
	return l.prefix + msg
}

type UserService struct {
	logger *Logger
}

func (s *UserService) Greet(name string) string {
	return s.logger.Format("hello " + name)
}
