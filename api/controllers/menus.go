package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/canteenhub/canteen-backend/api/middleware"
	"github.com/canteenhub/canteen-backend/api/responses"
	"github.com/canteenhub/canteen-backend/api/validators"
	menusvc "github.com/canteenhub/canteen-backend/internal/menus"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

type menuItemRequest struct {
	DishID     string     `json:"dish_id" validate:"required"`
	Available  bool       `json:"available"`
	LastServed *time.Time `json:"last_served,omitempty"`
}

type upsertMenuRequest struct {
	Items []menuItemRequest `json:"items"`
}

func (r upsertMenuRequest) toInput() (menusvc.UpsertMenuInput, error) {
	items := make([]menusvc.MenuItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		dishID, err := uuid.Parse(strings.TrimSpace(item.DishID))
		if err != nil {
			return menusvc.UpsertMenuInput{}, pkgerrors.New(pkgerrors.CodeValidation, "Invalid menu payload").
				WithDetails(map[string]string{"dish_id": "must be a valid id"})
		}
		entry := menusvc.MenuItemInput{DishID: dishID, Available: item.Available}
		if item.LastServed != nil {
			entry.LastServed = *item.LastServed
		}
		items = append(items, entry)
	}
	return menusvc.UpsertMenuInput{Items: items}, nil
}

// UpsertMenu replaces a restaurant's dish selection for one day.
func UpsertMenu(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menus service unavailable"))
			return
		}

		var payload upsertMenuRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		menu, err := svc.Upsert(
			r.Context(),
			middleware.IdentityIDFromContext(r.Context()),
			chi.URLParam(r, "restaurantID"),
			chi.URLParam(r, "date"),
			input,
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, menu)
	}
}

// GetMenu returns one restaurant's menu for a given day.
func GetMenu(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menus service unavailable"))
			return
		}

		menu, err := svc.Get(r.Context(), chi.URLParam(r, "restaurantID"), chi.URLParam(r, "date"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, menu)
	}
}

// ListMenusForDate returns every restaurant menu published for a day. The
// date defaults to today when the query parameter is absent.
func ListMenusForDate(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menus service unavailable"))
			return
		}

		date := strings.TrimSpace(r.URL.Query().Get("date"))
		if date == "" {
			date = time.Now().UTC().Format(menusvc.MenuDateFormat)
		}

		menus, err := svc.ListForDate(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, menus)
	}
}
