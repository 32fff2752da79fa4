package accounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/canteenhub/canteen-backend/pkg/db/models"
	"github.com/canteenhub/canteen-backend/pkg/enums"
)

// Repository wires account persistence to GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads the account by local ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByIdentityID loads the account linked to a provider user ID.
func (r *Repository) FindByIdentityID(ctx context.Context, identityID string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "identity_id = ?", identityID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FirstOrCreateByIdentityID returns the account for the identity,
// creating one with the supplied defaults when none exists yet.
func (r *Repository) FirstOrCreateByIdentityID(ctx context.Context, identityID string, defaults *models.Account) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Attrs(defaults).
		FirstOrCreate(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListByRoles returns accounts with any of the given roles, oldest first.
func (r *Repository) ListByRoles(ctx context.Context, roles ...enums.Role) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.WithContext(ctx).
		Where("role IN ?", roles).
		Order("created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// Create inserts the account.
func (r *Repository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// Update persists the mutable account fields.
func (r *Repository) Update(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes the account by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Account{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
