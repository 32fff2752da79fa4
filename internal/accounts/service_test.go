package accounts

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/canteenhub/canteen-backend/pkg/db/models"
	"github.com/canteenhub/canteen-backend/pkg/enums"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/identity"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

type stubAccountsRepo struct {
	byID       map[uuid.UUID]*models.Account
	byIdentity map[string]*models.Account
	created    []*models.Account
	updated    []*models.Account
	deleted    []uuid.UUID
	createErr  error
	deleteErr  error
}

func newStubAccountsRepo(accounts ...*models.Account) *stubAccountsRepo {
	repo := &stubAccountsRepo{
		byID:       map[uuid.UUID]*models.Account{},
		byIdentity: map[string]*models.Account{},
	}
	for _, account := range accounts {
		repo.byID[account.ID] = account
		repo.byIdentity[account.IdentityID] = account
	}
	return repo
}

func (r *stubAccountsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	account, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return account, nil
}

func (r *stubAccountsRepo) FindByIdentityID(_ context.Context, identityID string) (*models.Account, error) {
	account, ok := r.byIdentity[identityID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return account, nil
}

func (r *stubAccountsRepo) ListByRoles(_ context.Context, roles ...enums.Role) ([]models.Account, error) {
	var out []models.Account
	for _, account := range r.byID {
		for _, role := range roles {
			if account.Role == role {
				out = append(out, *account)
			}
		}
	}
	return out, nil
}

func (r *stubAccountsRepo) Create(_ context.Context, account *models.Account) (*models.Account, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	r.created = append(r.created, account)
	r.byID[account.ID] = account
	r.byIdentity[account.IdentityID] = account
	return account, nil
}

func (r *stubAccountsRepo) Update(_ context.Context, account *models.Account) (*models.Account, error) {
	r.updated = append(r.updated, account)
	r.byID[account.ID] = account
	return account, nil
}

func (r *stubAccountsRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	account, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.byID, id)
	delete(r.byIdentity, account.IdentityID)
	r.deleted = append(r.deleted, id)
	return nil
}

type stubRestaurants struct {
	byID map[uuid.UUID]*models.Restaurant
}

func (r *stubRestaurants) FindByID(_ context.Context, id uuid.UUID) (*models.Restaurant, error) {
	restaurant, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return restaurant, nil
}

type stubGateway struct {
	users      map[string]*identity.User
	getErr     map[string]error
	createErr  error
	updateErr  error
	deleteErr  error
	created    []identity.CreateUserParams
	updates    []identity.UpdateUserParams
	deletions  []string
	getCalls   int
	nextUserID string
}

func newStubGateway() *stubGateway {
	return &stubGateway{users: map[string]*identity.User{}, getErr: map[string]error{}}
}

func (g *stubGateway) GetUser(_ context.Context, id string) (*identity.User, error) {
	g.getCalls++
	if err := g.getErr[id]; err != nil {
		return nil, err
	}
	user, ok := g.users[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "identity get user failed")
	}
	return user, nil
}

func (g *stubGateway) CreateUser(_ context.Context, params identity.CreateUserParams) (*identity.User, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, params)
	id := g.nextUserID
	if id == "" {
		id = "user_" + uuid.NewString()
	}
	user := &identity.User{ID: id, Username: params.Username, FirstName: params.FirstName, LastName: params.LastName}
	g.users[id] = user
	return user, nil
}

func (g *stubGateway) UpdateUser(_ context.Context, id string, params identity.UpdateUserParams) (*identity.User, error) {
	if g.updateErr != nil {
		return nil, g.updateErr
	}
	g.updates = append(g.updates, params)
	user, ok := g.users[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "identity update user failed")
	}
	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}
	return user, nil
}

func (g *stubGateway) DeleteUser(_ context.Context, id string) error {
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deletions = append(g.deletions, id)
	delete(g.users, id)
	return nil
}

func testService(t *testing.T, repo *stubAccountsRepo, restaurants *stubRestaurants, gateway *stubGateway) Service {
	t.Helper()
	if restaurants == nil {
		restaurants = &stubRestaurants{byID: map[uuid.UUID]*models.Restaurant{}}
	}
	svc, err := NewService(repo, restaurants, gateway, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func adminAccount() *models.Account {
	return &models.Account{ID: uuid.New(), IdentityID: "admin_1", Role: enums.RoleAdmin}
}

func managerAccount(restaurantID uuid.UUID) *models.Account {
	rid := restaurantID
	return &models.Account{ID: uuid.New(), IdentityID: "mgr_1", Role: enums.RoleManager, RestaurantID: &rid}
}

func TestAuthorizationGate(t *testing.T) {
	admin := adminAccount()
	student := &models.Account{ID: uuid.New(), IdentityID: "stud_1", Role: enums.RoleStudent}
	repo := newStubAccountsRepo(admin, student)
	svc := testService(t, repo, nil, newStubGateway())
	ctx := context.Background()

	if _, err := svc.ListEmployees(ctx, ""); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("empty actor: expected unauthorized, got %v", err)
	}
	if _, err := svc.ListEmployees(ctx, "ghost"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("unknown actor: expected unauthorized, got %v", err)
	}
	if _, err := svc.ListEmployees(ctx, "stud_1"); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("student actor: expected forbidden, got %v", err)
	}
	if _, err := svc.ListEmployees(ctx, "admin_1"); err != nil {
		t.Fatalf("admin actor: unexpected error %v", err)
	}
}

func TestListEmployeesDegradesFailedLookups(t *testing.T) {
	admin := adminAccount()
	restaurantID := uuid.New()
	healthy := managerAccount(restaurantID)
	broken := &models.Account{ID: uuid.New(), IdentityID: "wrk_broken", Role: enums.RoleWorker, RestaurantID: &restaurantID}

	repo := newStubAccountsRepo(admin, healthy, broken)
	gateway := newStubGateway()
	gateway.users["mgr_1"] = &identity.User{ID: "mgr_1", Username: "mgr.ana", FirstName: "Ana", LastName: "Novak"}
	gateway.getErr["wrk_broken"] = pkgerrors.New(pkgerrors.CodeDependency, "identity down")
	restaurants := &stubRestaurants{byID: map[uuid.UUID]*models.Restaurant{
		restaurantID: {ID: restaurantID, Name: "Main Hall"},
	}}

	svc := testService(t, repo, restaurants, gateway)
	employees, err := svc.ListEmployees(context.Background(), "admin_1")
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(employees))
	}

	byID := map[uuid.UUID]EmployeeDTO{}
	for _, dto := range employees {
		byID[dto.ID] = dto
	}
	if got := byID[healthy.ID]; got.FirstName != "Ana" || got.RestaurantName != "Main Hall" {
		t.Fatalf("unexpected healthy row %+v", got)
	}
	if got := byID[broken.ID]; got.FirstName != UnknownPlaceholder || got.LastName != UnknownPlaceholder {
		t.Fatalf("expected degraded row, got %+v", got)
	}
}

func TestListEmployeesRendersUnknownRestaurant(t *testing.T) {
	admin := adminAccount()
	gone := uuid.New()
	orphan := managerAccount(gone)

	repo := newStubAccountsRepo(admin, orphan)
	gateway := newStubGateway()
	gateway.users["mgr_1"] = &identity.User{ID: "mgr_1", Username: "mgr.ana"}

	svc := testService(t, repo, nil, gateway)
	employees, err := svc.ListEmployees(context.Background(), "admin_1")
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(employees) != 1 || employees[0].RestaurantName != UnknownPlaceholder {
		t.Fatalf("expected Unknown restaurant, got %+v", employees)
	}
}

func TestCreateEmployeeRejectsNonEmployeeRoleBeforeRemoteCall(t *testing.T) {
	admin := adminAccount()
	repo := newStubAccountsRepo(admin)
	gateway := newStubGateway()
	restaurantID := uuid.New()

	svc := testService(t, repo, nil, gateway)
	_, err := svc.CreateEmployee(context.Background(), "admin_1", CreateEmployeeInput{
		Username:     "new.admin",
		Password:     "longenough",
		FirstName:    "Eva",
		LastName:     "Horvat",
		Role:         enums.RoleAdmin,
		RestaurantID: &restaurantID,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(gateway.created) != 0 {
		t.Fatalf("gateway should not be called for invalid role")
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok || details["role"] == "" {
		t.Fatalf("expected role-keyed details, got %v", pkgerrors.As(err).Details())
	}
}

func TestCreateEmployeeRemoteFailureLeavesNoLocalRecord(t *testing.T) {
	admin := adminAccount()
	restaurantID := uuid.New()
	repo := newStubAccountsRepo(admin)
	gateway := newStubGateway()
	gateway.createErr = pkgerrors.New(pkgerrors.CodeConflict, identity.MsgUsernameTaken)
	restaurants := &stubRestaurants{byID: map[uuid.UUID]*models.Restaurant{
		restaurantID: {ID: restaurantID, Name: "Main Hall"},
	}}

	svc := testService(t, repo, restaurants, gateway)
	_, err := svc.CreateEmployee(context.Background(), "admin_1", CreateEmployeeInput{
		Username:     "taken",
		Password:     "longenough",
		FirstName:    "Eva",
		LastName:     "Horvat",
		Role:         enums.RoleWorker,
		RestaurantID: &restaurantID,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if got := pkgerrors.As(err).Message(); got != identity.MsgUsernameTaken {
		t.Fatalf("unexpected message %q", got)
	}
	if len(repo.created) != 0 {
		t.Fatalf("no local account should exist after remote failure")
	}
}

func TestCreateEmployeeSuccess(t *testing.T) {
	admin := adminAccount()
	restaurantID := uuid.New()
	repo := newStubAccountsRepo(admin)
	gateway := newStubGateway()
	gateway.nextUserID = "user_new"
	restaurants := &stubRestaurants{byID: map[uuid.UUID]*models.Restaurant{
		restaurantID: {ID: restaurantID, Name: "Main Hall"},
	}}

	svc := testService(t, repo, restaurants, gateway)
	dto, err := svc.CreateEmployee(context.Background(), "admin_1", CreateEmployeeInput{
		Username:     "  wrk.eva  ",
		Password:     "longenough",
		FirstName:    " Eva ",
		LastName:     " Horvat ",
		Role:         enums.RoleWorker,
		RestaurantID: &restaurantID,
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	if dto.Username != "wrk.eva" || dto.FirstName != "Eva" {
		t.Fatalf("expected trimmed fields, got %+v", dto)
	}
	if dto.Role != enums.RoleWorker || dto.RestaurantName != "Main Hall" {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if len(repo.created) != 1 || repo.created[0].IdentityID != "user_new" {
		t.Fatalf("local account not linked to remote identity: %+v", repo.created)
	}
}

func TestGetEmployeeInvalidAndMissingID(t *testing.T) {
	admin := adminAccount()
	repo := newStubAccountsRepo(admin)
	svc := testService(t, repo, nil, newStubGateway())
	ctx := context.Background()

	if _, err := svc.GetEmployee(ctx, "admin_1", "not-a-uuid"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for malformed id, got %v", err)
	}
	if _, err := svc.GetEmployee(ctx, "admin_1", uuid.NewString()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateEmployeeSendsOnlySuppliedFieldsRemotely(t *testing.T) {
	admin := adminAccount()
	restaurantID := uuid.New()
	manager := managerAccount(restaurantID)
	repo := newStubAccountsRepo(admin, manager)
	gateway := newStubGateway()
	gateway.users["mgr_1"] = &identity.User{ID: "mgr_1", Username: "mgr.ana", FirstName: "Ana", LastName: "Novak"}
	restaurants := &stubRestaurants{byID: map[uuid.UUID]*models.Restaurant{
		restaurantID: {ID: restaurantID, Name: "Main Hall"},
	}}

	svc := testService(t, repo, restaurants, gateway)
	first := "Anamarija"
	dto, err := svc.UpdateEmployee(context.Background(), "admin_1", manager.ID.String(), UpdateEmployeeInput{
		FirstName: &first,
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if dto.FirstName != "Anamarija" || dto.LastName != "Novak" {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if len(gateway.updates) != 1 {
		t.Fatalf("expected one remote update, got %d", len(gateway.updates))
	}
	update := gateway.updates[0]
	if update.FirstName == nil || update.Username != nil || update.Password != nil || update.LastName != nil {
		t.Fatalf("remote update should carry only supplied fields: %+v", update)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("no local write expected for profile-only update")
	}
}

func TestUpdateEmployeeLocalOnlyChangeSkipsRemoteUpdate(t *testing.T) {
	admin := adminAccount()
	restaurantID := uuid.New()
	otherID := uuid.New()
	manager := managerAccount(restaurantID)
	repo := newStubAccountsRepo(admin, manager)
	gateway := newStubGateway()
	gateway.users["mgr_1"] = &identity.User{ID: "mgr_1", Username: "mgr.ana"}
	restaurants := &stubRestaurants{byID: map[uuid.UUID]*models.Restaurant{
		restaurantID: {ID: restaurantID, Name: "Main Hall"},
		otherID:      {ID: otherID, Name: "Annex"},
	}}

	svc := testService(t, repo, restaurants, gateway)
	dto, err := svc.UpdateEmployee(context.Background(), "admin_1", manager.ID.String(), UpdateEmployeeInput{
		RestaurantID: &otherID,
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if len(gateway.updates) != 0 {
		t.Fatalf("no remote update expected for local-only change")
	}
	if dto.RestaurantName != "Annex" {
		t.Fatalf("expected reassigned restaurant, got %+v", dto)
	}
	if len(repo.updated) != 1 {
		t.Fatalf("expected one local write, got %d", len(repo.updated))
	}
}

func TestDeleteEmployeeForbiddenForManagerActor(t *testing.T) {
	restaurantID := uuid.New()
	manager := managerAccount(restaurantID)
	worker := &models.Account{ID: uuid.New(), IdentityID: "wrk_1", Role: enums.RoleWorker, RestaurantID: &restaurantID}
	repo := newStubAccountsRepo(manager, worker)
	gateway := newStubGateway()

	svc := testService(t, repo, nil, gateway)
	_, err := svc.DeleteEmployee(context.Background(), "mgr_1", worker.ID.String())
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("manager actor: expected forbidden, got %v", err)
	}
	if _, stillThere := repo.byID[worker.ID]; !stillThere {
		t.Fatalf("target must remain untouched")
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("no local deletion expected, got %v", repo.deleted)
	}
	if len(gateway.deletions) != 0 {
		t.Fatalf("no remote deletion expected, got %v", gateway.deletions)
	}
}

func TestDeleteEmployeeRejectsNonEmployeeTarget(t *testing.T) {
	admin := adminAccount()
	otherAdmin := &models.Account{ID: uuid.New(), IdentityID: "admin_2", Role: enums.RoleAdmin}
	repo := newStubAccountsRepo(admin, otherAdmin)
	gateway := newStubGateway()

	svc := testService(t, repo, nil, gateway)
	_, err := svc.DeleteEmployee(context.Background(), "admin_1", otherAdmin.ID.String())
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := pkgerrors.As(err).Message(); got != "Can only delete manager or worker accounts" {
		t.Fatalf("unexpected message %q", got)
	}
	if _, stillThere := repo.byID[otherAdmin.ID]; !stillThere {
		t.Fatalf("target must remain untouched")
	}
}

func TestDeleteEmployeeLocalWinsOnRemoteFailure(t *testing.T) {
	admin := adminAccount()
	restaurantID := uuid.New()
	manager := managerAccount(restaurantID)
	repo := newStubAccountsRepo(admin, manager)
	gateway := newStubGateway()
	gateway.deleteErr = pkgerrors.New(pkgerrors.CodeDependency, identity.MsgUserDeleteFailed)

	svc := testService(t, repo, nil, gateway)
	_, err := svc.DeleteEmployee(context.Background(), "admin_1", manager.ID.String())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if _, stillThere := repo.byID[manager.ID]; stillThere {
		t.Fatalf("local record should stay deleted despite remote failure")
	}
}

func TestDeleteEmployeeLocalFailureSkipsRemote(t *testing.T) {
	admin := adminAccount()
	restaurantID := uuid.New()
	manager := managerAccount(restaurantID)
	repo := newStubAccountsRepo(admin, manager)
	repo.deleteErr = gorm.ErrInvalidTransaction
	gateway := newStubGateway()

	svc := testService(t, repo, nil, gateway)
	if _, err := svc.DeleteEmployee(context.Background(), "admin_1", manager.ID.String()); err == nil {
		t.Fatalf("expected error from local deletion")
	}
	if len(gateway.deletions) != 0 {
		t.Fatalf("remote deletion must not run after local failure")
	}
}

func TestDeleteEmployeeSuccess(t *testing.T) {
	admin := adminAccount()
	restaurantID := uuid.New()
	manager := managerAccount(restaurantID)
	repo := newStubAccountsRepo(admin, manager)
	gateway := newStubGateway()
	gateway.users["mgr_1"] = &identity.User{ID: "mgr_1"}

	svc := testService(t, repo, nil, gateway)
	dto, err := svc.DeleteEmployee(context.Background(), "admin_1", manager.ID.String())
	if err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}
	if dto.ID != manager.ID {
		t.Fatalf("unexpected deleted id %s", dto.ID)
	}
	if len(gateway.deletions) != 1 || gateway.deletions[0] != "mgr_1" {
		t.Fatalf("expected remote deletion of mgr_1, got %v", gateway.deletions)
	}
}
