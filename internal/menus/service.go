package menus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/canteenhub/canteen-backend/pkg/db/models"
	"github.com/canteenhub/canteen-backend/pkg/enums"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
	"github.com/canteenhub/canteen-backend/pkg/types"
)

// Service manages daily menus. Reads are open; writes require an admin
// or a manager/worker assigned to the target restaurant.
type Service interface {
	Upsert(ctx context.Context, actorIdentityID, restaurantID, date string, input UpsertMenuInput) (*MenuDTO, error)
	Get(ctx context.Context, restaurantID, date string) (*MenuDTO, error)
	ListForDate(ctx context.Context, date string) ([]MenuDTO, error)
}

// MenuItemInput is one dish entry in an upsert payload.
type MenuItemInput struct {
	DishID     uuid.UUID
	Available  bool
	LastServed time.Time
}

// UpsertMenuInput replaces a day's item list wholesale.
type UpsertMenuInput struct {
	Items []MenuItemInput
}

type menusRepo interface {
	FindByRestaurantAndDate(ctx context.Context, restaurantID uuid.UUID, date time.Time) (*models.Menu, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Menu, error)
	Save(ctx context.Context, menu *models.Menu) (*models.Menu, error)
}

type actorResolver interface {
	FindByIdentityID(ctx context.Context, identityID string) (*models.Account, error)
}

type restaurantLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
}

type dishChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dish, error)
}

type service struct {
	repo        menusRepo
	accounts    actorResolver
	restaurants restaurantLoader
	dishes      dishChecker
	logger      *logger.Logger
}

// NewService constructs the menu service.
func NewService(repo menusRepo, accounts actorResolver, restaurants restaurantLoader, dishes dishChecker, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("menus repository required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if restaurants == nil {
		return nil, fmt.Errorf("restaurants repository required")
	}
	if dishes == nil {
		return nil, fmt.Errorf("dishes repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		accounts:    accounts,
		restaurants: restaurants,
		dishes:      dishes,
		logger:      logg,
	}, nil
}

// Upsert creates or replaces the menu for one restaurant and day.
func (s *service) Upsert(ctx context.Context, actorIdentityID, restaurantID, date string, input UpsertMenuInput) (*MenuDTO, error) {
	restID, err := parseRestaurantID(restaurantID)
	if err != nil {
		return nil, err
	}
	day, err := parseMenuDate(date)
	if err != nil {
		return nil, err
	}

	actor, err := s.requireMenuWriter(ctx, actorIdentityID, restID)
	if err != nil {
		return nil, err
	}

	if _, err := s.restaurants.FindByID(ctx, restID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load restaurant")
	}

	items, err := s.validateItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	menu, err := s.repo.FindByRestaurantAndDate(ctx, restID, day)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load menu")
		}
		menu = &models.Menu{RestaurantID: restID, MenuDate: day}
	}
	menu.Items = items
	menu.LastUpdatedBy = actor.ID

	if menu, err = s.repo.Save(ctx, menu); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: save menu")
	}
	return newMenuDTO(menu), nil
}

// Get loads one restaurant's menu for a day.
func (s *service) Get(ctx context.Context, restaurantID, date string) (*MenuDTO, error) {
	restID, err := parseRestaurantID(restaurantID)
	if err != nil {
		return nil, err
	}
	day, err := parseMenuDate(date)
	if err != nil {
		return nil, err
	}

	menu, err := s.repo.FindByRestaurantAndDate(ctx, restID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Menu not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load menu")
	}
	return newMenuDTO(menu), nil
}

// ListForDate returns every restaurant's menu for a day.
func (s *service) ListForDate(ctx context.Context, date string) ([]MenuDTO, error) {
	day, err := parseMenuDate(date)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByDate(ctx, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list menus")
	}
	menus := make([]MenuDTO, 0, len(rows))
	for i := range rows {
		menus = append(menus, *newMenuDTO(&rows[i]))
	}
	return menus, nil
}

// requireMenuWriter allows admins and staff assigned to the restaurant.
func (s *service) requireMenuWriter(ctx context.Context, actorIdentityID string, restaurantID uuid.UUID) (*models.Account, error) {
	if strings.TrimSpace(actorIdentityID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}
	actor, err := s.accounts.FindByIdentityID(ctx, actorIdentityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "No account for this session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load caller account")
	}
	if actor.Role == enums.RoleAdmin {
		return actor, nil
	}
	if actor.Role.IsEmployee() && actor.RestaurantID != nil && *actor.RestaurantID == restaurantID {
		return actor, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Menu can only be managed by admins or the restaurant's staff")
}

// validateItems checks every referenced dish exists and no dish
// appears twice.
func (s *service) validateItems(ctx context.Context, items []MenuItemInput) (types.MenuItems, error) {
	out := make(types.MenuItems, 0, len(items))
	seen := map[uuid.UUID]bool{}
	details := map[string]string{}

	for _, item := range items {
		if item.DishID == uuid.Nil {
			details["items"] = "dish reference is required"
			continue
		}
		if seen[item.DishID] {
			details[item.DishID.String()] = "appears more than once"
			continue
		}
		seen[item.DishID] = true

		if _, err := s.dishes.FindByID(ctx, item.DishID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				details[item.DishID.String()] = "does not reference an existing dish"
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load dish")
		}

		out = append(out, types.MenuItem{
			DishID:     item.DishID,
			Available:  item.Available,
			LastServed: item.LastServed,
		})
	}

	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid menu payload").WithDetails(details)
	}
	return out, nil
}

func parseRestaurantID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid restaurant ID")
	}
	return id, nil
}

func parseMenuDate(raw string) (time.Time, error) {
	day, err := time.Parse(MenuDateFormat, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "Invalid menu date").
			WithDetails(map[string]string{"date": "must be formatted YYYY-MM-DD"})
	}
	return day, nil
}
