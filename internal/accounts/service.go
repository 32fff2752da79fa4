package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/canteenhub/canteen-backend/pkg/db/models"
	"github.com/canteenhub/canteen-backend/pkg/enums"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/identity"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

// Service exposes the admin-gated employee directory.
type Service interface {
	ListEmployees(ctx context.Context, actorIdentityID string) ([]EmployeeDTO, error)
	CreateEmployee(ctx context.Context, actorIdentityID string, input CreateEmployeeInput) (*EmployeeDTO, error)
	GetEmployee(ctx context.Context, actorIdentityID, employeeID string) (*EmployeeDTO, error)
	UpdateEmployee(ctx context.Context, actorIdentityID, employeeID string, input UpdateEmployeeInput) (*EmployeeDTO, error)
	DeleteEmployee(ctx context.Context, actorIdentityID, employeeID string) (*DeletedEmployeeDTO, error)
}

// CreateEmployeeInput holds the validated payload to provision an employee.
type CreateEmployeeInput struct {
	Username     string
	Password     string
	FirstName    string
	LastName     string
	Role         enums.Role
	RestaurantID *uuid.UUID
}

// UpdateEmployeeInput holds optional mutation values. Nil fields stay
// untouched both remotely and locally.
type UpdateEmployeeInput struct {
	Username     *string
	Password     *string
	FirstName    *string
	LastName     *string
	Role         *enums.Role
	RestaurantID *uuid.UUID
}

type accountsRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByIdentityID(ctx context.Context, identityID string) (*models.Account, error)
	ListByRoles(ctx context.Context, roles ...enums.Role) ([]models.Account, error)
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) (*models.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type restaurantLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
}

type identityGateway interface {
	GetUser(ctx context.Context, id string) (*identity.User, error)
	CreateUser(ctx context.Context, params identity.CreateUserParams) (*identity.User, error)
	UpdateUser(ctx context.Context, id string, params identity.UpdateUserParams) (*identity.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type service struct {
	repo        accountsRepo
	restaurants restaurantLoader
	gateway     identityGateway
	logger      *logger.Logger
}

// NewService constructs the directory service.
func NewService(repo accountsRepo, restaurants restaurantLoader, gateway identityGateway, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if restaurants == nil {
		return nil, fmt.Errorf("restaurants repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("identity gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		restaurants: restaurants,
		gateway:     gateway,
		logger:      logg,
	}, nil
}

// ListEmployees returns every manager and worker account joined with
// provider profile data. Rows whose identity lookup fails degrade to
// placeholder names instead of aborting the list.
func (s *service) ListEmployees(ctx context.Context, actorIdentityID string) ([]EmployeeDTO, error) {
	if _, err := s.requireAdmin(ctx, actorIdentityID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByRoles(ctx, enums.RoleManager, enums.RoleWorker)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list employee accounts")
	}

	restaurantNames := map[uuid.UUID]string{}
	employees := make([]EmployeeDTO, 0, len(rows))
	var lookupErrs error
	for i := range rows {
		account := &rows[i]

		user, userErr := s.gateway.GetUser(ctx, account.IdentityID)
		if userErr != nil {
			lookupErrs = multierr.Append(lookupErrs, fmt.Errorf("account %s: %w", account.ID, userErr))
			user = nil
		}

		employees = append(employees, *newEmployeeDTO(account, user, s.restaurantName(ctx, account.RestaurantID, restaurantNames)))
	}

	if lookupErrs != nil {
		ctx = s.logger.WithField(ctx, "degraded_rows", len(multierr.Errors(lookupErrs)))
		s.logger.Warn(ctx, fmt.Sprintf("employee list degraded: %v", lookupErrs))
	}
	return employees, nil
}

// CreateEmployee provisions the remote identity first, then links it
// to a local account. A remote failure leaves no local record behind.
func (s *service) CreateEmployee(ctx context.Context, actorIdentityID string, input CreateEmployeeInput) (*EmployeeDTO, error) {
	if _, err := s.requireAdmin(ctx, actorIdentityID); err != nil {
		return nil, err
	}
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}
	restaurantName, err := s.ensureRestaurant(ctx, input.RestaurantID)
	if err != nil {
		return nil, err
	}

	user, err := s.gateway.CreateUser(ctx, identity.CreateUserParams{
		Username:  input.Username,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		return nil, err
	}

	account, err := s.repo.Create(ctx, &models.Account{
		IdentityID:   user.ID,
		Role:         input.Role,
		RestaurantID: input.RestaurantID,
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert employee account")
	}

	return newEmployeeDTO(account, user, restaurantName), nil
}

// GetEmployee joins one local account with its provider profile.
func (s *service) GetEmployee(ctx context.Context, actorIdentityID, employeeID string) (*EmployeeDTO, error) {
	if _, err := s.requireAdmin(ctx, actorIdentityID); err != nil {
		return nil, err
	}
	id, err := parseEmployeeID(employeeID)
	if err != nil {
		return nil, err
	}

	account, err := s.loadEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	user, err := s.gateway.GetUser(ctx, account.IdentityID)
	if err != nil {
		return nil, err
	}

	return newEmployeeDTO(account, user, s.restaurantName(ctx, account.RestaurantID, nil)), nil
}

// UpdateEmployee applies a partial update. Profile fields go to the
// provider in a single call before any local write; role and
// restaurant changes stay local.
func (s *service) UpdateEmployee(ctx context.Context, actorIdentityID, employeeID string, input UpdateEmployeeInput) (*EmployeeDTO, error) {
	if _, err := s.requireAdmin(ctx, actorIdentityID); err != nil {
		return nil, err
	}
	id, err := parseEmployeeID(employeeID)
	if err != nil {
		return nil, err
	}
	if err := validateUpdateInput(&input); err != nil {
		return nil, err
	}

	account, err := s.loadEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.RestaurantID != nil {
		if _, err := s.ensureRestaurant(ctx, input.RestaurantID); err != nil {
			return nil, err
		}
	}

	remote := identity.UpdateUserParams{
		Username:  input.Username,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	}

	var user *identity.User
	if remote.Empty() {
		user, err = s.gateway.GetUser(ctx, account.IdentityID)
	} else {
		user, err = s.gateway.UpdateUser(ctx, account.IdentityID, remote)
	}
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		account.Role = *input.Role
	}
	if input.RestaurantID != nil {
		account.RestaurantID = input.RestaurantID
	}
	if input.Role != nil || input.RestaurantID != nil {
		if account, err = s.repo.Update(ctx, account); err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return nil, typed
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update employee account")
		}
	}

	return newEmployeeDTO(account, user, s.restaurantName(ctx, account.RestaurantID, nil)), nil
}

// DeleteEmployee removes the local account first, then the remote
// identity. A remote failure is reported to the caller but the local
// deletion stands.
func (s *service) DeleteEmployee(ctx context.Context, actorIdentityID, employeeID string) (*DeletedEmployeeDTO, error) {
	if _, err := s.requireAdmin(ctx, actorIdentityID); err != nil {
		return nil, err
	}
	id, err := parseEmployeeID(employeeID)
	if err != nil {
		return nil, err
	}

	account, err := s.loadEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.Role.IsEmployee() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Can only delete manager or worker accounts")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete employee account")
	}

	if err := s.gateway.DeleteUser(ctx, account.IdentityID); err != nil {
		ctx = s.logger.WithAccountID(ctx, account.ID.String())
		s.logger.Warn(ctx, "local account deleted but identity deletion failed")
		return nil, err
	}

	return &DeletedEmployeeDTO{ID: account.ID}, nil
}

// requireAdmin resolves the caller's account and enforces the admin gate.
func (s *service) requireAdmin(ctx context.Context, actorIdentityID string) (*models.Account, error) {
	if strings.TrimSpace(actorIdentityID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}
	actor, err := s.repo.FindByIdentityID(ctx, actorIdentityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "No account for this session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load caller account")
	}
	if actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Administrator access required")
	}
	return actor, nil
}

func (s *service) loadEmployee(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load employee account")
	}
	return account, nil
}

// ensureRestaurant verifies the reference and returns the venue name.
func (s *service) ensureRestaurant(ctx context.Context, id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}
	restaurant, err := s.restaurants.FindByID(ctx, *id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "Restaurant not found").
				WithDetails(map[string]string{"restaurant_id": "does not reference an existing restaurant"})
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load restaurant")
	}
	return restaurant.Name, nil
}

// restaurantName resolves the venue name for display, degrading to the
// placeholder when the reference is dangling. The optional cache keeps
// list rendering from refetching the same venue per row.
func (s *service) restaurantName(ctx context.Context, id *uuid.UUID, cache map[uuid.UUID]string) string {
	if id == nil {
		return ""
	}
	if cache != nil {
		if name, ok := cache[*id]; ok {
			return name
		}
	}
	name := UnknownPlaceholder
	if restaurant, err := s.restaurants.FindByID(ctx, *id); err == nil {
		name = restaurant.Name
	}
	if cache != nil {
		cache[*id] = name
	}
	return name
}

func parseEmployeeID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid employee ID")
	}
	return id, nil
}

func validateCreateInput(input *CreateEmployeeInput) error {
	details := map[string]string{}

	input.Username = strings.TrimSpace(input.Username)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	if input.Username == "" {
		details["username"] = "is required"
	}
	if input.Password == "" {
		details["password"] = "is required"
	}
	if input.FirstName == "" {
		details["first_name"] = "is required"
	}
	if input.LastName == "" {
		details["last_name"] = "is required"
	}
	if !input.Role.IsEmployee() {
		details["role"] = "must be manager or worker"
	}
	if input.RestaurantID == nil {
		details["restaurant_id"] = "is required"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid employee payload").WithDetails(details)
	}
	return nil
}

func validateUpdateInput(input *UpdateEmployeeInput) error {
	details := map[string]string{}

	if input.Username != nil {
		trimmed := strings.TrimSpace(*input.Username)
		if trimmed == "" {
			details["username"] = "cannot be blank"
		}
		input.Username = &trimmed
	}
	if input.Password != nil && *input.Password == "" {
		details["password"] = "cannot be blank"
	}
	if input.FirstName != nil {
		trimmed := strings.TrimSpace(*input.FirstName)
		if trimmed == "" {
			details["first_name"] = "cannot be blank"
		}
		input.FirstName = &trimmed
	}
	if input.LastName != nil {
		trimmed := strings.TrimSpace(*input.LastName)
		if trimmed == "" {
			details["last_name"] = "cannot be blank"
		}
		input.LastName = &trimmed
	}
	if input.Role != nil && !input.Role.IsEmployee() {
		details["role"] = "must be manager or worker"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid employee payload").WithDetails(details)
	}
	return nil
}
