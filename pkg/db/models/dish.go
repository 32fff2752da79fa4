package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Dish represents a catalog entry that menus can reference.
type Dish struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string         `gorm:"column:name;type:text;not null;uniqueIndex"`
	Description string         `gorm:"column:description;type:text;not null"`
	Category    string         `gorm:"column:category;type:text;not null"`
	ImageURL    string         `gorm:"column:image_url;type:text;not null"`
	Allergens   pq.StringArray `gorm:"column:allergens;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
