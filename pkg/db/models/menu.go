package models

import (
	"time"

	"github.com/canteenhub/canteen-backend/pkg/types"
	"github.com/google/uuid"
)

// Menu is a restaurant's dish selection for a single day.
type Menu struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RestaurantID  uuid.UUID       `gorm:"column:restaurant_id;type:uuid;not null;uniqueIndex:idx_menus_restaurant_date"`
	MenuDate      time.Time       `gorm:"column:menu_date;type:date;not null;uniqueIndex:idx_menus_restaurant_date"`
	LastUpdatedBy uuid.UUID       `gorm:"column:last_updated_by;type:uuid;not null"`
	Items         types.MenuItems `gorm:"column:items;type:jsonb;not null;default:'[]'"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
