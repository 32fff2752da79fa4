package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MenuItem references a dish offered on a daily menu.
type MenuItem struct {
	DishID     uuid.UUID `json:"dish_id"`
	Available  bool      `json:"available"`
	LastServed time.Time `json:"last_served"`
}

// MenuItems is the JSONB-persisted list of menu entries.
type MenuItems []MenuItem

// Value marshals the list into JSON for the store.
func (m MenuItems) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the list.
func (m *MenuItems) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("menu items: unsupported scan type %T", value)
	}

	var result MenuItems
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*m = result
	return nil
}
