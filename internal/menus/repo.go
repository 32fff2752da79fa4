package menus

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/canteenhub/canteen-backend/pkg/db/models"
)

// Repository wires menu persistence to GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByRestaurantAndDate loads the menu for one restaurant and day.
func (r *Repository) FindByRestaurantAndDate(ctx context.Context, restaurantID uuid.UUID, date time.Time) (*models.Menu, error) {
	var menu models.Menu
	err := r.db.WithContext(ctx).
		First(&menu, "restaurant_id = ? AND menu_date = ?", restaurantID, date).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

// ListByDate returns every restaurant's menu for the day.
func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]models.Menu, error) {
	var menus []models.Menu
	err := r.db.WithContext(ctx).
		Where("menu_date = ?", date).
		Order("restaurant_id ASC").
		Find(&menus).Error
	if err != nil {
		return nil, err
	}
	return menus, nil
}

// Save inserts or updates the menu row.
func (r *Repository) Save(ctx context.Context, menu *models.Menu) (*models.Menu, error) {
	if err := r.db.WithContext(ctx).Save(menu).Error; err != nil {
		return nil, err
	}
	return menu, nil
}
