package menus

import (
	"time"

	"github.com/google/uuid"

	"github.com/canteenhub/canteen-backend/pkg/db/models"
)

// MenuDateFormat is the wire format for menu days.
const MenuDateFormat = "2006-01-02"

// MenuItemDTO is one dish entry on a day's menu.
type MenuItemDTO struct {
	DishID     uuid.UUID `json:"dish_id"`
	Available  bool      `json:"available"`
	LastServed time.Time `json:"last_served"`
}

// MenuDTO is a restaurant's dish selection for one day.
type MenuDTO struct {
	ID            uuid.UUID     `json:"id"`
	RestaurantID  uuid.UUID     `json:"restaurant_id"`
	Date          string        `json:"date"`
	Items         []MenuItemDTO `json:"items"`
	LastUpdatedBy uuid.UUID     `json:"last_updated_by"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func newMenuDTO(menu *models.Menu) *MenuDTO {
	items := make([]MenuItemDTO, 0, len(menu.Items))
	for _, item := range menu.Items {
		items = append(items, MenuItemDTO{
			DishID:     item.DishID,
			Available:  item.Available,
			LastServed: item.LastServed,
		})
	}
	return &MenuDTO{
		ID:            menu.ID,
		RestaurantID:  menu.RestaurantID,
		Date:          menu.MenuDate.Format(MenuDateFormat),
		Items:         items,
		LastUpdatedBy: menu.LastUpdatedBy,
		CreatedAt:     menu.CreatedAt,
		UpdatedAt:     menu.UpdatedAt,
	}
}
