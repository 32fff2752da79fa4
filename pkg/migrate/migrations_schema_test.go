package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/canteenhub/canteen-backend/pkg/migrate"
)

func TestMigrationsDirectoryIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestAccountsMigrationEnforcesRoleCoupling(t *testing.T) {
	content := readMigration(t, "*_create_accounts.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS accounts",
		"CHECK (role IN ('student', 'admin', 'manager', 'worker'))",
		"(role IN ('manager', 'worker') AND restaurant_id IS NOT NULL)",
		"(role IN ('student', 'admin') AND restaurant_id IS NULL)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_identity_id",
		"DROP TABLE IF EXISTS accounts",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCatalogMigrationsEnforceUniqueNames(t *testing.T) {
	dishes := readMigration(t, "*_create_dishes.sql")
	if !strings.Contains(dishes, "CREATE UNIQUE INDEX IF NOT EXISTS idx_dishes_name") {
		t.Errorf("dishes migration missing unique name index")
	}

	restaurants := readMigration(t, "*_create_restaurants.sql")
	for _, sub := range []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_restaurants_name",
		"CHECK (cardinality(working_hours) > 0)",
	} {
		if !strings.Contains(restaurants, sub) {
			t.Errorf("restaurants migration missing %q", sub)
		}
	}
}

func TestMenusMigrationHasDayUniqueness(t *testing.T) {
	content := readMigration(t, "*_create_menus.sql")

	checks := []string{
		"FOREIGN KEY (restaurant_id) REFERENCES restaurants(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_menus_restaurant_date ON menus (restaurant_id, menu_date)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
