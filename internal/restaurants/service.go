package restaurants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/canteenhub/canteen-backend/pkg/db"
	"github.com/canteenhub/canteen-backend/pkg/db/models"
	"github.com/canteenhub/canteen-backend/pkg/enums"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
	"github.com/canteenhub/canteen-backend/pkg/types"
)

// Service exposes restaurant catalog management. Reads are open to any
// authenticated caller; mutations require an admin account.
type Service interface {
	List(ctx context.Context) ([]RestaurantDTO, error)
	Get(ctx context.Context, restaurantID string) (*RestaurantDTO, error)
	Create(ctx context.Context, actorIdentityID string, input CreateRestaurantInput) (*RestaurantDTO, error)
	Update(ctx context.Context, actorIdentityID, restaurantID string, input UpdateRestaurantInput) (*RestaurantDTO, error)
	Delete(ctx context.Context, actorIdentityID, restaurantID string) (*DeletedRestaurantDTO, error)
}

// CreateRestaurantInput holds the payload to create a venue.
type CreateRestaurantInput struct {
	Name         string
	Address      string
	ImageURL     string
	WorkingHours []string
	Location     types.Point
}

// UpdateRestaurantInput holds optional mutation values for a venue.
type UpdateRestaurantInput struct {
	Name         *string
	Address      *string
	ImageURL     *string
	WorkingHours *[]string
	Location     *types.Point
}

type restaurantsRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	List(ctx context.Context) ([]models.Restaurant, error)
	Create(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error)
	Update(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type actorResolver interface {
	FindByIdentityID(ctx context.Context, identityID string) (*models.Account, error)
}

type service struct {
	repo     restaurantsRepo
	accounts actorResolver
	logger   *logger.Logger
}

// NewService constructs the restaurant catalog service.
func NewService(repo restaurantsRepo, accounts actorResolver, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("restaurants repository required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, accounts: accounts, logger: logg}, nil
}

// List returns all venues sorted by name.
func (s *service) List(ctx context.Context) ([]RestaurantDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list restaurants")
	}
	restaurants := make([]RestaurantDTO, 0, len(rows))
	for i := range rows {
		restaurants = append(restaurants, *newRestaurantDTO(&rows[i]))
	}
	return restaurants, nil
}

// Get loads a single venue.
func (s *service) Get(ctx context.Context, restaurantID string) (*RestaurantDTO, error) {
	id, err := parseRestaurantID(restaurantID)
	if err != nil {
		return nil, err
	}
	restaurant, err := s.loadRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}
	return newRestaurantDTO(restaurant), nil
}

// Create validates the payload and persists the venue.
func (s *service) Create(ctx context.Context, actorIdentityID string, input CreateRestaurantInput) (*RestaurantDTO, error) {
	if err := s.requireAdmin(ctx, actorIdentityID); err != nil {
		return nil, err
	}
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	restaurant, err := s.repo.Create(ctx, &models.Restaurant{
		Name:         input.Name,
		Address:      input.Address,
		ImageURL:     input.ImageURL,
		WorkingHours: normalizeHours(input.WorkingHours),
		Location:     input.Location,
	})
	if err != nil {
		return nil, s.mapWriteError(err, "db: insert restaurant")
	}
	return newRestaurantDTO(restaurant), nil
}

// Update applies a partial update; only supplied fields are validated
// and written.
func (s *service) Update(ctx context.Context, actorIdentityID, restaurantID string, input UpdateRestaurantInput) (*RestaurantDTO, error) {
	if err := s.requireAdmin(ctx, actorIdentityID); err != nil {
		return nil, err
	}
	id, err := parseRestaurantID(restaurantID)
	if err != nil {
		return nil, err
	}
	if err := validateUpdateInput(&input); err != nil {
		return nil, err
	}

	restaurant, err := s.loadRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdateToRestaurant(restaurant, input)
	if restaurant, err = s.repo.Update(ctx, restaurant); err != nil {
		return nil, s.mapWriteError(err, "db: update restaurant")
	}
	return newRestaurantDTO(restaurant), nil
}

// Delete removes the venue and echoes its identifier.
func (s *service) Delete(ctx context.Context, actorIdentityID, restaurantID string) (*DeletedRestaurantDTO, error) {
	if err := s.requireAdmin(ctx, actorIdentityID); err != nil {
		return nil, err
	}
	id, err := parseRestaurantID(restaurantID)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadRestaurant(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete restaurant")
	}
	return &DeletedRestaurantDTO{ID: id}, nil
}

func (s *service) requireAdmin(ctx context.Context, actorIdentityID string) error {
	if strings.TrimSpace(actorIdentityID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}
	actor, err := s.accounts.FindByIdentityID(ctx, actorIdentityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "No account for this session")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load caller account")
	}
	if actor.Role != enums.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Administrator access required")
	}
	return nil
}

func (s *service) loadRestaurant(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	restaurant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load restaurant")
	}
	return restaurant, nil
}

func (s *service) mapWriteError(err error, msg string) error {
	if db.IsUniqueViolation(err, "idx_restaurants_name") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Restaurant with this name already exists").
			WithDetails(map[string]string{"name": "is already taken"})
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func parseRestaurantID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid restaurant ID")
	}
	return id, nil
}

func validateCreateInput(input *CreateRestaurantInput) error {
	details := map[string]string{}

	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	input.ImageURL = strings.TrimSpace(input.ImageURL)

	if input.Name == "" {
		details["name"] = "is required"
	}
	if input.Address == "" {
		details["address"] = "is required"
	}
	if len(normalizeHours(input.WorkingHours)) == 0 {
		details["working_hours"] = "must contain at least one entry"
	}
	if err := input.Location.Validate(); err != nil {
		details["location"] = err.Error()
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid restaurant payload").WithDetails(details)
	}
	return nil
}

func validateUpdateInput(input *UpdateRestaurantInput) error {
	details := map[string]string{}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			details["name"] = "cannot be blank"
		}
		input.Name = &trimmed
	}
	if input.Address != nil {
		trimmed := strings.TrimSpace(*input.Address)
		if trimmed == "" {
			details["address"] = "cannot be blank"
		}
		input.Address = &trimmed
	}
	if input.ImageURL != nil {
		trimmed := strings.TrimSpace(*input.ImageURL)
		input.ImageURL = &trimmed
	}
	if input.WorkingHours != nil && len(normalizeHours(*input.WorkingHours)) == 0 {
		details["working_hours"] = "must contain at least one entry"
	}
	if input.Location != nil {
		if err := input.Location.Validate(); err != nil {
			details["location"] = err.Error()
		}
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid restaurant payload").WithDetails(details)
	}
	return nil
}

func applyUpdateToRestaurant(restaurant *models.Restaurant, input UpdateRestaurantInput) {
	if input.Name != nil {
		restaurant.Name = *input.Name
	}
	if input.Address != nil {
		restaurant.Address = *input.Address
	}
	if input.ImageURL != nil {
		restaurant.ImageURL = *input.ImageURL
	}
	if input.WorkingHours != nil {
		restaurant.WorkingHours = normalizeHours(*input.WorkingHours)
	}
	if input.Location != nil {
		restaurant.Location = *input.Location
	}
}

func normalizeHours(hours []string) []string {
	out := make([]string, 0, len(hours))
	for _, entry := range hours {
		trimmed := strings.TrimSpace(entry)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
