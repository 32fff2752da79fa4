package dishes

import (
	"context"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/canteenhub/canteen-backend/pkg/db/models"
	"github.com/canteenhub/canteen-backend/pkg/enums"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

type stubDishesRepo struct {
	byID map[uuid.UUID]*models.Dish
}

func newStubDishesRepo(dishes ...*models.Dish) *stubDishesRepo {
	repo := &stubDishesRepo{byID: map[uuid.UUID]*models.Dish{}}
	for _, dish := range dishes {
		repo.byID[dish.ID] = dish
	}
	return repo
}

func (r *stubDishesRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Dish, error) {
	dish, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *dish
	return &copied, nil
}

func (r *stubDishesRepo) List(_ context.Context) ([]models.Dish, error) {
	var out []models.Dish
	for _, dish := range r.byID {
		out = append(out, *dish)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubDishesRepo) Create(_ context.Context, dish *models.Dish) (*models.Dish, error) {
	for _, existing := range r.byID {
		if existing.Name == dish.Name {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "idx_dishes_name"}
		}
	}
	dish.ID = uuid.New()
	r.byID[dish.ID] = dish
	return dish, nil
}

func (r *stubDishesRepo) Update(_ context.Context, dish *models.Dish) (*models.Dish, error) {
	for id, existing := range r.byID {
		if id != dish.ID && existing.Name == dish.Name {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "idx_dishes_name"}
		}
	}
	r.byID[dish.ID] = dish
	return dish, nil
}

func (r *stubDishesRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubAccounts struct {
	byIdentity map[string]*models.Account
}

func (r *stubAccounts) FindByIdentityID(_ context.Context, identityID string) (*models.Account, error) {
	account, ok := r.byIdentity[identityID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return account, nil
}

type stubUploader struct {
	uploads []string
	err     error
}

func (u *stubUploader) Upload(_ context.Context, objectPath, _ string, _ io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.uploads = append(u.uploads, objectPath)
	return "https://blob.example/" + objectPath, nil
}

func testService(t *testing.T, repo *stubDishesRepo, uploader *stubUploader) Service {
	t.Helper()
	if uploader == nil {
		uploader = &stubUploader{}
	}
	accounts := &stubAccounts{byIdentity: map[string]*models.Account{
		"admin_1": {ID: uuid.New(), IdentityID: "admin_1", Role: enums.RoleAdmin},
		"stud_1":  {ID: uuid.New(), IdentityID: "stud_1", Role: enums.RoleStudent},
	}}
	svc, err := NewService(repo, accounts, uploader, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc := testService(t, newStubDishesRepo(), nil)
	ctx := context.Background()

	input := CreateDishInput{Name: "Burek", Description: "Flaky pastry", Category: "main"}
	if _, err := svc.Create(ctx, "", input); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.Create(ctx, "stud_1", input); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateValidatesFieldsBeforeWrite(t *testing.T) {
	repo := newStubDishesRepo()
	svc := testService(t, repo, nil)

	_, err := svc.Create(context.Background(), "admin_1", CreateDishInput{Name: "   ", Category: " main "})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field-keyed details, got %v", pkgerrors.As(err).Details())
	}
	if details["name"] == "" || details["description"] == "" {
		t.Fatalf("expected name and description keys, got %v", details)
	}
	if _, present := details["category"]; present {
		t.Fatalf("category was supplied and should not be flagged: %v", details)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("nothing should be written on validation failure")
	}
}

func TestCreateTrimsAndRoundTrips(t *testing.T) {
	repo := newStubDishesRepo()
	svc := testService(t, repo, nil)

	dto, err := svc.Create(context.Background(), "admin_1", CreateDishInput{
		Name:        "  Burek  ",
		Description: " Flaky pastry ",
		Category:    " main ",
		Allergens:   []string{" gluten ", "", "dairy"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if dto.Name != "Burek" || dto.Description != "Flaky pastry" || dto.Category != "main" {
		t.Fatalf("expected trimmed fields, got %+v", dto)
	}
	if len(dto.Allergens) != 2 || dto.Allergens[0] != "gluten" || dto.Allergens[1] != "dairy" {
		t.Fatalf("unexpected allergens %v", dto.Allergens)
	}

	fetched, err := svc.Get(context.Background(), dto.ID.String())
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if fetched.Name != dto.Name || len(fetched.Allergens) != 2 {
		t.Fatalf("round trip mismatch: %+v", fetched)
	}
}

func TestCreateDuplicateNameIsFieldKeyedConflict(t *testing.T) {
	repo := newStubDishesRepo()
	svc := testService(t, repo, nil)
	ctx := context.Background()

	input := CreateDishInput{Name: "Burek", Description: "d", Category: "main"}
	if _, err := svc.Create(ctx, "admin_1", input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, "admin_1", input)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	if !ok || details["name"] == "" {
		t.Fatalf("expected name-keyed conflict details, got %v", pkgerrors.As(err).Details())
	}
}

func TestCreateWithImageUploadsBeforeWrite(t *testing.T) {
	repo := newStubDishesRepo()
	uploader := &stubUploader{}
	svc := testService(t, repo, uploader)

	dto, err := svc.Create(context.Background(), "admin_1", CreateDishInput{
		Name:        "Burek",
		Description: "d",
		Category:    "main",
		Image: &ImageUpload{
			Filename:    "burek.png",
			ContentType: "image/png",
			Body:        strings.NewReader("img"),
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(uploader.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(uploader.uploads))
	}
	if !strings.HasPrefix(uploader.uploads[0], "dishes/") || !strings.HasSuffix(uploader.uploads[0], "-burek.png") {
		t.Fatalf("unexpected object path %q", uploader.uploads[0])
	}
	if !strings.HasPrefix(dto.ImageURL, "https://blob.example/dishes/") {
		t.Fatalf("unexpected image url %q", dto.ImageURL)
	}
}

func TestCreateImageUploadFailureAbortsWrite(t *testing.T) {
	repo := newStubDishesRepo()
	uploader := &stubUploader{err: pkgerrors.New(pkgerrors.CodeDependency, "image upload failed")}
	svc := testService(t, repo, uploader)

	_, err := svc.Create(context.Background(), "admin_1", CreateDishInput{
		Name:        "Burek",
		Description: "d",
		Category:    "main",
		Image:       &ImageUpload{Filename: "burek.png", ContentType: "image/png", Body: strings.NewReader("img")},
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("dish must not be written when the upload fails")
	}
}

func TestListIsSortedByName(t *testing.T) {
	repo := newStubDishesRepo(
		&models.Dish{ID: uuid.New(), Name: "Zagorski strukli"},
		&models.Dish{ID: uuid.New(), Name: "Burek"},
		&models.Dish{ID: uuid.New(), Name: "Grah"},
	)
	svc := testService(t, repo, nil)

	dishes, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	names := make([]string, 0, len(dishes))
	for _, dish := range dishes {
		names = append(names, dish.Name)
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("expected names sorted ascending, got %v", names)
	}
}

func TestUpdatePartialLeavesOtherFieldsUntouched(t *testing.T) {
	dish := &models.Dish{
		ID:          uuid.New(),
		Name:        "Burek",
		Description: "Flaky pastry",
		Category:    "main",
		Allergens:   []string{"gluten"},
	}
	repo := newStubDishesRepo(dish)
	svc := testService(t, repo, nil)

	category := " snack "
	dto, err := svc.Update(context.Background(), "admin_1", dish.ID.String(), UpdateDishInput{Category: &category})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if dto.Category != "snack" {
		t.Fatalf("expected trimmed category update, got %q", dto.Category)
	}
	if dto.Name != "Burek" || dto.Description != "Flaky pastry" || len(dto.Allergens) != 1 {
		t.Fatalf("unsupplied fields must stay untouched: %+v", dto)
	}
}

func TestUpdateAndDeleteIDHandling(t *testing.T) {
	svc := testService(t, newStubDishesRepo(), nil)
	ctx := context.Background()
	name := "x"

	if _, err := svc.Update(ctx, "admin_1", "nope", UpdateDishInput{Name: &name}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("update malformed id: expected validation error, got %v", err)
	}
	if _, err := svc.Update(ctx, "admin_1", uuid.NewString(), UpdateDishInput{Name: &name}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("update missing id: expected not found, got %v", err)
	}
	if _, err := svc.Delete(ctx, "admin_1", "nope"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("delete malformed id: expected validation error, got %v", err)
	}
	if _, err := svc.Delete(ctx, "admin_1", uuid.NewString()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("delete missing id: expected not found, got %v", err)
	}
}

func TestDeleteEchoesIDAndName(t *testing.T) {
	dish := &models.Dish{ID: uuid.New(), Name: "Burek", Description: "d", Category: "main"}
	repo := newStubDishesRepo(dish)
	svc := testService(t, repo, nil)

	deleted, err := svc.Delete(context.Background(), "admin_1", dish.ID.String())
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if deleted.ID != dish.ID || deleted.Name != "Burek" {
		t.Fatalf("unexpected echo %+v", deleted)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("dish should be gone")
	}
}
