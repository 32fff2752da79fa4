package dishes

import (
	"time"

	"github.com/google/uuid"

	"github.com/canteenhub/canteen-backend/pkg/db/models"
)

// DishDTO is the catalog payload returned to clients.
type DishDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	Allergens   []string  `json:"allergens"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeletedDishDTO echoes the removed dish.
type DeletedDishDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func newDishDTO(dish *models.Dish) *DishDTO {
	allergens := []string(dish.Allergens)
	if allergens == nil {
		allergens = []string{}
	}
	return &DishDTO{
		ID:          dish.ID,
		Name:        dish.Name,
		Description: dish.Description,
		Category:    dish.Category,
		ImageURL:    dish.ImageURL,
		Allergens:   allergens,
		CreatedAt:   dish.CreatedAt,
		UpdatedAt:   dish.UpdatedAt,
	}
}
