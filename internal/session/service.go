package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/canteenhub/canteen-backend/pkg/db"
	dbmodels "github.com/canteenhub/canteen-backend/pkg/db/models"
	"github.com/canteenhub/canteen-backend/pkg/enums"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/identity"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

// Service resolves a verified session into a local account.
type Service interface {
	Resolve(ctx context.Context, identityID string) (*ResolvedSessionDTO, error)
	Profile(ctx context.Context, identityID string) (*ProfileDTO, error)
}

// ResolvedSessionDTO tells the client which surface the session lands on.
type ResolvedSessionDTO struct {
	AccountID    uuid.UUID  `json:"account_id"`
	Role         enums.Role `json:"role"`
	RestaurantID *uuid.UUID `json:"restaurant_id,omitempty"`
}

// ProfileDTO joins the local role with the provider-side profile.
type ProfileDTO struct {
	AccountID    uuid.UUID  `json:"account_id"`
	Username     string     `json:"username"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         enums.Role `json:"role"`
	RestaurantID *uuid.UUID `json:"restaurant_id,omitempty"`
}

type accountsRepo interface {
	FindByIdentityID(ctx context.Context, identityID string) (*dbmodels.Account, error)
	FirstOrCreateByIdentityID(ctx context.Context, identityID string, defaults *dbmodels.Account) (*dbmodels.Account, error)
}

type identityGateway interface {
	GetUser(ctx context.Context, id string) (*identity.User, error)
}

type service struct {
	repo    accountsRepo
	gateway identityGateway
	logger  *logger.Logger
}

// NewService constructs the session service.
func NewService(repo accountsRepo, gateway identityGateway, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("identity gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, gateway: gateway, logger: logg}, nil
}

// Resolve returns the account for the identity, creating a student
// account on first login. Calling it repeatedly for the same identity
// always lands on the same record.
func (s *service) Resolve(ctx context.Context, identityID string) (*ResolvedSessionDTO, error) {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required")
	}

	account, err := s.repo.FirstOrCreateByIdentityID(ctx, identityID, &dbmodels.Account{
		IdentityID: identityID,
		Role:       enums.RoleStudent,
	})
	if err != nil {
		// Two first logins can race on the unique identity index; the
		// loser re-reads the winner's row.
		if db.IsUniqueViolation(err, "idx_accounts_identity_id") {
			account, err = s.repo.FindByIdentityID(ctx, identityID)
		}
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return nil, typed
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve session account")
		}
	}

	return &ResolvedSessionDTO{
		AccountID:    account.ID,
		Role:         account.Role,
		RestaurantID: account.RestaurantID,
	}, nil
}

// Profile returns the caller's joined local and provider-side record.
func (s *service) Profile(ctx context.Context, identityID string) (*ProfileDTO, error) {
	resolved, err := s.Resolve(ctx, identityID)
	if err != nil {
		return nil, err
	}

	user, err := s.gateway.GetUser(ctx, identityID)
	if err != nil {
		return nil, err
	}

	return &ProfileDTO{
		AccountID:    resolved.AccountID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Role:         resolved.Role,
		RestaurantID: resolved.RestaurantID,
	}, nil
}
