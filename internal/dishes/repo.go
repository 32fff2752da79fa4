package dishes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/canteenhub/canteen-backend/pkg/db/models"
)

// Repository wires dish persistence to GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads the dish by ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dish, error) {
	var dish models.Dish
	if err := r.db.WithContext(ctx).First(&dish, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dish, nil
}

// List returns all dishes sorted by name.
func (r *Repository) List(ctx context.Context) ([]models.Dish, error) {
	var dishes []models.Dish
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&dishes).Error; err != nil {
		return nil, err
	}
	return dishes, nil
}

// Create inserts the dish.
func (r *Repository) Create(ctx context.Context, dish *models.Dish) (*models.Dish, error) {
	if err := r.db.WithContext(ctx).Create(dish).Error; err != nil {
		return nil, err
	}
	return dish, nil
}

// Update persists the dish fields.
func (r *Repository) Update(ctx context.Context, dish *models.Dish) (*models.Dish, error) {
	if err := r.db.WithContext(ctx).Save(dish).Error; err != nil {
		return nil, err
	}
	return dish, nil
}

// Delete removes the dish by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Dish{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
