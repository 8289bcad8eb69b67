package demo

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/bootstrap"
)

// ErrValidation is returned when a payload misses required fields.
var ErrValidation = errors.New("validation failed")

// UserModel persists users through a database connection.
type UserModel struct {
	conn  *bootstrap.Connection
	table string
}

// Save stores a user row.
func (m *UserModel) Save(row map[string]any) {
	m.conn.Insert(m.table, row)
}

// FindAll returns every stored user.
func (m *UserModel) FindAll() []map[string]any {
	return m.conn.All(m.table)
}

// UsersService implements user operations.
type UsersService struct {
	logger     *slog.Logger
	model      *UserModel
	validators bootstrap.ValidatorFactory
}

// Create validates payload and stores the user.
func (s *UsersService) Create(payload map[string]any) (map[string]any, error) {
	validator := s.validators("default", "username", "fullname", "email")
	if missing := validator.Validate(payload); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}

	s.logger.Info("modules.users.create", slog.Any("username", payload["username"]))
	s.model.Save(map[string]any{
		"username": payload["username"],
		"fullname": payload["fullname"],
		"email":    payload["email"],
	})

	return map[string]any{
		"message":  "User created successfully",
		"username": payload["username"],
	}, nil
}

// List returns every stored user.
func (s *UsersService) List() []map[string]any {
	return s.model.FindAll()
}

// UsersController adapts UsersService to request payloads.
type UsersController struct {
	logger  *slog.Logger
	service *UsersService
}

// Store handles a create request.
func (c *UsersController) Store(payload map[string]any) (map[string]any, error) {
	return c.service.Create(payload)
}

// Index lists users.
func (c *UsersController) Index() []map[string]any {
	return c.service.List()
}

// UsersModule is the users module definition.
func UsersModule() flowdi.ModuleDefinition {
	return flowdi.ModuleDefinition{
		Name: "users",
		Register: flowdi.NewModule("users",
			flowdi.AddRegistrations(flowdi.Registrations{
				"models": flowdi.Registrations{
					"user": flowdi.AsFunction(newUserModel).Singleton(),
				},
				"services": flowdi.Registrations{
					"main": flowdi.AsFunction(newUsersService).Singleton(),
				},
				"controllers": flowdi.Registrations{
					"main": flowdi.AsFunction(newUsersController).Singleton(),
				},
			}),
			flowdi.AddAlias("usersController", "controllers.main"),
		),
		Routes: []Route{
			{Method: "GET", Path: "/users", Controller: "usersController", Action: "Index"},
			{Method: "POST", Path: "/users", Controller: "usersController", Action: "Store"},
		},
	}
}

func newUserModel(l flowdi.Locator) (any, error) {
	db, err := flowdi.Resolve[*bootstrap.DatabaseManager](l, bootstrap.KeyDatabaseManager)
	if err != nil {
		return nil, err
	}
	conn, err := db.Connection("default")
	if err != nil {
		return nil, err
	}
	return &UserModel{conn: conn, table: "users"}, nil
}

func newUsersService(l flowdi.Locator) (any, error) {
	logger, err := flowdi.Resolve[*slog.Logger](l, bootstrap.KeyLogger)
	if err != nil {
		return nil, err
	}
	model, err := flowdi.Resolve[*UserModel](l, "modules.users.models.user")
	if err != nil {
		return nil, err
	}
	validators, err := flowdi.Resolve[bootstrap.ValidatorFactory](l, bootstrap.KeyValidationFactory)
	if err != nil {
		return nil, err
	}
	return &UsersService{logger: logger, model: model, validators: validators}, nil
}

func newUsersController(l flowdi.Locator) (any, error) {
	logger, err := flowdi.Resolve[*slog.Logger](l, bootstrap.KeyLogger)
	if err != nil {
		return nil, err
	}
	service, err := flowdi.Resolve[*UsersService](l, "modules.users.services.main")
	if err != nil {
		return nil, err
	}
	return &UsersController{logger: logger, service: service}, nil
}
