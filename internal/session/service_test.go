package session

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"

	dbmodels "github.com/canteenhub/canteen-backend/pkg/db/models"
	"github.com/canteenhub/canteen-backend/pkg/enums"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/identity"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

type stubRepo struct {
	byIdentity map[string]*dbmodels.Account
	creates    int
}

func newStubRepo(accounts ...*dbmodels.Account) *stubRepo {
	repo := &stubRepo{byIdentity: map[string]*dbmodels.Account{}}
	for _, account := range accounts {
		repo.byIdentity[account.IdentityID] = account
	}
	return repo
}

func (r *stubRepo) FindByIdentityID(_ context.Context, identityID string) (*dbmodels.Account, error) {
	account, ok := r.byIdentity[identityID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return account, nil
}

func (r *stubRepo) FirstOrCreateByIdentityID(_ context.Context, identityID string, defaults *dbmodels.Account) (*dbmodels.Account, error) {
	if account, ok := r.byIdentity[identityID]; ok {
		return account, nil
	}
	r.creates++
	account := &dbmodels.Account{
		ID:           uuid.New(),
		IdentityID:   defaults.IdentityID,
		Role:         defaults.Role,
		RestaurantID: defaults.RestaurantID,
	}
	r.byIdentity[identityID] = account
	return account, nil
}

type stubGateway struct {
	users map[string]*identity.User
}

func (g *stubGateway) GetUser(_ context.Context, id string) (*identity.User, error) {
	user, ok := g.users[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "identity get user failed")
	}
	return user, nil
}

func testService(t *testing.T, repo *stubRepo, gateway *stubGateway) Service {
	t.Helper()
	if gateway == nil {
		gateway = &stubGateway{users: map[string]*identity.User{}}
	}
	svc, err := NewService(repo, gateway, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestResolveCreatesStudentOnFirstLogin(t *testing.T) {
	repo := newStubRepo()
	svc := testService(t, repo, nil)

	resolved, err := svc.Resolve(context.Background(), "user_new")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Role != enums.RoleStudent {
		t.Fatalf("expected student role, got %s", resolved.Role)
	}
	if resolved.RestaurantID != nil {
		t.Fatalf("student must have no restaurant assignment")
	}
	if repo.creates != 1 {
		t.Fatalf("expected one create, got %d", repo.creates)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	svc := testService(t, repo, nil)
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "user_1")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := svc.Resolve(ctx, "user_1")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.AccountID != second.AccountID {
		t.Fatalf("resolve must land on the same account: %s vs %s", first.AccountID, second.AccountID)
	}
	if repo.creates != 1 {
		t.Fatalf("expected a single create across resolves, got %d", repo.creates)
	}
}

func TestResolveKeepsExistingRole(t *testing.T) {
	restaurantID := uuid.New()
	manager := &dbmodels.Account{
		ID:           uuid.New(),
		IdentityID:   "mgr_1",
		Role:         enums.RoleManager,
		RestaurantID: &restaurantID,
	}
	repo := newStubRepo(manager)
	svc := testService(t, repo, nil)

	resolved, err := svc.Resolve(context.Background(), "mgr_1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Role != enums.RoleManager {
		t.Fatalf("existing role must be preserved, got %s", resolved.Role)
	}
	if resolved.RestaurantID == nil || *resolved.RestaurantID != restaurantID {
		t.Fatalf("restaurant assignment must be preserved")
	}
}

func TestResolveRequiresIdentity(t *testing.T) {
	svc := testService(t, newStubRepo(), nil)
	if _, err := svc.Resolve(context.Background(), "  "); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestProfileJoinsProviderRecord(t *testing.T) {
	repo := newStubRepo()
	gateway := &stubGateway{users: map[string]*identity.User{
		"user_1": {ID: "user_1", Username: "stud.ivan", FirstName: "Ivan", LastName: "Kovac"},
	}}
	svc := testService(t, repo, gateway)

	profile, err := svc.Profile(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if profile.Username != "stud.ivan" || profile.Role != enums.RoleStudent {
		t.Fatalf("unexpected profile %+v", profile)
	}
}
