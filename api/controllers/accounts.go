package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/canteenhub/canteen-backend/api/middleware"
	"github.com/canteenhub/canteen-backend/api/responses"
	"github.com/canteenhub/canteen-backend/api/validators"
	accountsvc "github.com/canteenhub/canteen-backend/internal/accounts"
	"github.com/canteenhub/canteen-backend/pkg/enums"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

type createEmployeeRequest struct {
	Username     string  `json:"username"`
	Password     string  `json:"password"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Role         string  `json:"role"`
	RestaurantID *string `json:"restaurant_id,omitempty"`
}

type updateEmployeeRequest struct {
	Username     *string `json:"username,omitempty"`
	Password     *string `json:"password,omitempty"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Role         *string `json:"role,omitempty"`
	RestaurantID *string `json:"restaurant_id,omitempty"`
}

func parseEmployeeRole(raw string) (enums.Role, error) {
	role, err := enums.ParseRole(strings.TrimSpace(raw))
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Invalid employee payload").
			WithDetails(map[string]string{"role": "must be manager or worker"})
	}
	return role, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	parsed, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid employee payload").
			WithDetails(map[string]string{field: "must be a valid id"})
	}
	return &parsed, nil
}

func (r createEmployeeRequest) toInput() (accountsvc.CreateEmployeeInput, error) {
	input := accountsvc.CreateEmployeeInput{
		Username:  r.Username,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}

	if strings.TrimSpace(r.Role) != "" {
		role, err := parseEmployeeRole(r.Role)
		if err != nil {
			return accountsvc.CreateEmployeeInput{}, err
		}
		input.Role = role
	}

	restaurantID, err := parseOptionalUUID(r.RestaurantID, "restaurant_id")
	if err != nil {
		return accountsvc.CreateEmployeeInput{}, err
	}
	input.RestaurantID = restaurantID

	return input, nil
}

func (r updateEmployeeRequest) toInput() (accountsvc.UpdateEmployeeInput, error) {
	input := accountsvc.UpdateEmployeeInput{
		Username:  r.Username,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}

	if r.Role != nil {
		role, err := parseEmployeeRole(*r.Role)
		if err != nil {
			return accountsvc.UpdateEmployeeInput{}, err
		}
		input.Role = &role
	}

	restaurantID, err := parseOptionalUUID(r.RestaurantID, "restaurant_id")
	if err != nil {
		return accountsvc.UpdateEmployeeInput{}, err
	}
	input.RestaurantID = restaurantID

	return input, nil
}

// ListEmployees returns the full manager and worker directory.
func ListEmployees(svc accountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		employees, err := svc.ListEmployees(r.Context(), middleware.IdentityIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, employees)
	}
}

// CreateEmployee provisions an identity user and its local account.
func CreateEmployee(svc accountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var payload createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.CreateEmployee(r.Context(), middleware.IdentityIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, employee)
	}
}

// GetEmployee returns a single directory entry.
func GetEmployee(svc accountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		employee, err := svc.GetEmployee(r.Context(), middleware.IdentityIDFromContext(r.Context()), chi.URLParam(r, "employeeID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, employee)
	}
}

// UpdateEmployee applies a partial update across the identity provider and
// the local account.
func UpdateEmployee(svc accountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var payload updateEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		employee, err := svc.UpdateEmployee(r.Context(), middleware.IdentityIDFromContext(r.Context()), chi.URLParam(r, "employeeID"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, employee)
	}
}

// DeleteEmployee removes a manager or worker account.
func DeleteEmployee(svc accountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		deleted, err := svc.DeleteEmployee(r.Context(), middleware.IdentityIDFromContext(r.Context()), chi.URLParam(r, "employeeID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deleted)
	}
}
