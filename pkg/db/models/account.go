package models

import (
	"time"

	"github.com/canteenhub/canteen-backend/pkg/enums"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account links an identity-provider record to a local role and, for
// staff roles, a restaurant assignment.
type Account struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IdentityID   string     `gorm:"column:identity_id;type:text;not null;uniqueIndex"`
	Role         enums.Role `gorm:"column:role;type:text;not null"`
	RestaurantID *uuid.UUID `gorm:"column:restaurant_id;type:uuid"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeSave rejects role/restaurant combinations the schema forbids.
// Managers and workers must be assigned to a restaurant; admins and
// students must not be. Violations fail the write instead of being
// silently corrected.
func (a *Account) BeforeSave(tx *gorm.DB) error {
	if !a.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "Role is required").
			WithDetails(map[string]string{"role": "is not a valid role"})
	}
	if a.Role.RequiresRestaurant() {
		if a.RestaurantID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "Restaurant ID is required for managers and workers").
				WithDetails(map[string]string{"restaurantId": "is required"})
		}
		return nil
	}
	if a.RestaurantID != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "Admin and student accounts cannot have a restaurant ID").
			WithDetails(map[string]string{"restaurantId": "must be absent"})
	}
	return nil
}
