package dishes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/canteenhub/canteen-backend/pkg/db"
	"github.com/canteenhub/canteen-backend/pkg/db/models"
	"github.com/canteenhub/canteen-backend/pkg/enums"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
	"github.com/canteenhub/canteen-backend/pkg/storage/blob"
)

// Service exposes dish catalog management. Reads are open to any
// authenticated caller; mutations require an admin account.
type Service interface {
	List(ctx context.Context) ([]DishDTO, error)
	Get(ctx context.Context, dishID string) (*DishDTO, error)
	Create(ctx context.Context, actorIdentityID string, input CreateDishInput) (*DishDTO, error)
	Update(ctx context.Context, actorIdentityID, dishID string, input UpdateDishInput) (*DishDTO, error)
	Delete(ctx context.Context, actorIdentityID, dishID string) (*DeletedDishDTO, error)
}

// ImageUpload carries an optional dish image to store alongside the record.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CreateDishInput holds the payload to create a dish.
type CreateDishInput struct {
	Name        string
	Description string
	Category    string
	ImageURL    string
	Allergens   []string
	Image       *ImageUpload
}

// UpdateDishInput holds optional mutation values for a dish.
type UpdateDishInput struct {
	Name        *string
	Description *string
	Category    *string
	ImageURL    *string
	Allergens   *[]string
	Image       *ImageUpload
}

type dishesRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dish, error)
	List(ctx context.Context) ([]models.Dish, error)
	Create(ctx context.Context, dish *models.Dish) (*models.Dish, error)
	Update(ctx context.Context, dish *models.Dish) (*models.Dish, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type actorResolver interface {
	FindByIdentityID(ctx context.Context, identityID string) (*models.Account, error)
}

type imageUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, body io.Reader) (string, error)
}

type service struct {
	repo     dishesRepo
	accounts actorResolver
	uploader imageUploader
	logger   *logger.Logger
	now      func() time.Time
}

// NewService constructs the dish catalog service.
func NewService(repo dishesRepo, accounts actorResolver, uploader imageUploader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dishes repository required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("image uploader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		accounts: accounts,
		uploader: uploader,
		logger:   logg,
		now:      time.Now,
	}, nil
}

// List returns the whole catalog sorted by name.
func (s *service) List(ctx context.Context) ([]DishDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list dishes")
	}
	dishes := make([]DishDTO, 0, len(rows))
	for i := range rows {
		dishes = append(dishes, *newDishDTO(&rows[i]))
	}
	return dishes, nil
}

// Get loads a single dish.
func (s *service) Get(ctx context.Context, dishID string) (*DishDTO, error) {
	id, err := parseDishID(dishID)
	if err != nil {
		return nil, err
	}
	dish, err := s.loadDish(ctx, id)
	if err != nil {
		return nil, err
	}
	return newDishDTO(dish), nil
}

// Create validates the payload, uploads the optional image, persists
// the dish, and reports a duplicate name as a field-keyed conflict.
func (s *service) Create(ctx context.Context, actorIdentityID string, input CreateDishInput) (*DishDTO, error) {
	if err := s.requireAdmin(ctx, actorIdentityID); err != nil {
		return nil, err
	}
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	imageURL := input.ImageURL
	if input.Image != nil {
		uploaded, err := s.uploadImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		imageURL = uploaded
	}

	dish, err := s.repo.Create(ctx, &models.Dish{
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		ImageURL:    imageURL,
		Allergens:   normalizeAllergens(input.Allergens),
	})
	if err != nil {
		return nil, s.mapWriteError(err, "db: insert dish")
	}
	return newDishDTO(dish), nil
}

// Update applies a partial update; only supplied fields are validated
// and written.
func (s *service) Update(ctx context.Context, actorIdentityID, dishID string, input UpdateDishInput) (*DishDTO, error) {
	if err := s.requireAdmin(ctx, actorIdentityID); err != nil {
		return nil, err
	}
	id, err := parseDishID(dishID)
	if err != nil {
		return nil, err
	}
	if err := validateUpdateInput(&input); err != nil {
		return nil, err
	}

	dish, err := s.loadDish(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Image != nil {
		uploaded, err := s.uploadImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		input.ImageURL = &uploaded
	}

	applyUpdateToDish(dish, input)
	if dish, err = s.repo.Update(ctx, dish); err != nil {
		return nil, s.mapWriteError(err, "db: update dish")
	}
	return newDishDTO(dish), nil
}

// Delete removes the dish and echoes its identifier and name.
func (s *service) Delete(ctx context.Context, actorIdentityID, dishID string) (*DeletedDishDTO, error) {
	if err := s.requireAdmin(ctx, actorIdentityID); err != nil {
		return nil, err
	}
	id, err := parseDishID(dishID)
	if err != nil {
		return nil, err
	}

	dish, err := s.loadDish(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Dish not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete dish")
	}
	return &DeletedDishDTO{ID: dish.ID, Name: dish.Name}, nil
}

func (s *service) requireAdmin(ctx context.Context, actorIdentityID string) error {
	if strings.TrimSpace(actorIdentityID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}
	actor, err := s.accounts.FindByIdentityID(ctx, actorIdentityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "No account for this session")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load caller account")
	}
	if actor.Role != enums.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Administrator access required")
	}
	return nil
}

func (s *service) loadDish(ctx context.Context, id uuid.UUID) (*models.Dish, error) {
	dish, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Dish not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load dish")
	}
	return dish, nil
}

func (s *service) uploadImage(ctx context.Context, image *ImageUpload) (string, error) {
	objectPath := blob.ObjectPath("dishes", image.Filename, s.now())
	return s.uploader.Upload(ctx, objectPath, image.ContentType, image.Body)
}

func (s *service) mapWriteError(err error, msg string) error {
	if db.IsUniqueViolation(err, "idx_dishes_name") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Dish with this name already exists").
			WithDetails(map[string]string{"name": "is already taken"})
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func parseDishID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid dish ID")
	}
	return id, nil
}

func validateCreateInput(input *CreateDishInput) error {
	details := map[string]string{}

	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	input.ImageURL = strings.TrimSpace(input.ImageURL)

	if input.Name == "" {
		details["name"] = "is required"
	}
	if input.Description == "" {
		details["description"] = "is required"
	}
	if input.Category == "" {
		details["category"] = "is required"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid dish payload").WithDetails(details)
	}
	return nil
}

func validateUpdateInput(input *UpdateDishInput) error {
	details := map[string]string{}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			details["name"] = "cannot be blank"
		}
		input.Name = &trimmed
	}
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed == "" {
			details["description"] = "cannot be blank"
		}
		input.Description = &trimmed
	}
	if input.Category != nil {
		trimmed := strings.TrimSpace(*input.Category)
		if trimmed == "" {
			details["category"] = "cannot be blank"
		}
		input.Category = &trimmed
	}
	if input.ImageURL != nil {
		trimmed := strings.TrimSpace(*input.ImageURL)
		input.ImageURL = &trimmed
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid dish payload").WithDetails(details)
	}
	return nil
}

func applyUpdateToDish(dish *models.Dish, input UpdateDishInput) {
	if input.Name != nil {
		dish.Name = *input.Name
	}
	if input.Description != nil {
		dish.Description = *input.Description
	}
	if input.Category != nil {
		dish.Category = *input.Category
	}
	if input.ImageURL != nil {
		dish.ImageURL = *input.ImageURL
	}
	if input.Allergens != nil {
		dish.Allergens = normalizeAllergens(*input.Allergens)
	}
}

func normalizeAllergens(allergens []string) []string {
	out := make([]string, 0, len(allergens))
	for _, allergen := range allergens {
		trimmed := strings.TrimSpace(allergen)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
