package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/canteenhub/canteen-backend/pkg/db/models"
	"github.com/canteenhub/canteen-backend/pkg/enums"
	"github.com/canteenhub/canteen-backend/pkg/identity"
)

// UnknownPlaceholder is rendered when a joined record cannot be
// resolved (identity lookup failed or the restaurant is gone).
const UnknownPlaceholder = "Unknown"

// EmployeeDTO joins the local account with the provider-side profile
// and the referenced restaurant's name.
type EmployeeDTO struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Role           enums.Role `json:"role"`
	RestaurantID   *uuid.UUID `json:"restaurant_id,omitempty"`
	RestaurantName string     `json:"restaurant_name"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DeletedEmployeeDTO echoes the removed account.
type DeletedEmployeeDTO struct {
	ID uuid.UUID `json:"id"`
}

// newEmployeeDTO builds the joined payload. A nil user degrades the
// profile fields to placeholders instead of failing the whole row.
func newEmployeeDTO(account *models.Account, user *identity.User, restaurantName string) *EmployeeDTO {
	dto := &EmployeeDTO{
		ID:             account.ID,
		Username:       UnknownPlaceholder,
		FirstName:      UnknownPlaceholder,
		LastName:       UnknownPlaceholder,
		Role:           account.Role,
		RestaurantID:   account.RestaurantID,
		RestaurantName: restaurantName,
		CreatedAt:      account.CreatedAt,
		UpdatedAt:      account.UpdatedAt,
	}
	if user != nil {
		dto.Username = user.Username
		dto.FirstName = user.FirstName
		dto.LastName = user.LastName
	}
	return dto
}
