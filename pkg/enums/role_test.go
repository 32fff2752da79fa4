package enums

import "testing"

func TestRoleIsValid(t *testing.T) {
	for _, role := range []Role{RoleStudent, RoleAdmin, RoleManager, RoleWorker} {
		if !role.IsValid() {
			t.Fatalf("expected %s to be valid", role)
		}
	}
	if Role("owner").IsValid() {
		t.Fatalf("unknown role should be invalid")
	}
}

func TestRoleIsEmployee(t *testing.T) {
	if !RoleManager.IsEmployee() || !RoleWorker.IsEmployee() {
		t.Fatalf("manager and worker are directory-managed")
	}
	if RoleAdmin.IsEmployee() || RoleStudent.IsEmployee() {
		t.Fatalf("admin and student are never directory-managed")
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("worker")
	if err != nil {
		t.Fatalf("parse worker: %v", err)
	}
	if role != RoleWorker {
		t.Fatalf("expected worker, got %s", role)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}
