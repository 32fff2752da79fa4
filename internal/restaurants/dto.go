package restaurants

import (
	"time"

	"github.com/google/uuid"

	"github.com/canteenhub/canteen-backend/pkg/db/models"
	"github.com/canteenhub/canteen-backend/pkg/types"
)

// RestaurantDTO is the venue payload returned to clients.
type RestaurantDTO struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Address      string      `json:"address"`
	ImageURL     string      `json:"image_url"`
	WorkingHours []string    `json:"working_hours"`
	Location     types.Point `json:"location"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// DeletedRestaurantDTO echoes the removed venue.
type DeletedRestaurantDTO struct {
	ID uuid.UUID `json:"id"`
}

func newRestaurantDTO(restaurant *models.Restaurant) *RestaurantDTO {
	hours := []string(restaurant.WorkingHours)
	if hours == nil {
		hours = []string{}
	}
	return &RestaurantDTO{
		ID:           restaurant.ID,
		Name:         restaurant.Name,
		Address:      restaurant.Address,
		ImageURL:     restaurant.ImageURL,
		WorkingHours: hours,
		Location:     restaurant.Location,
		CreatedAt:    restaurant.CreatedAt,
		UpdatedAt:    restaurant.UpdatedAt,
	}
}
