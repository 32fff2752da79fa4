package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canteenhub/canteen-backend/api/middleware"
	"github.com/canteenhub/canteen-backend/api/responses"
	"github.com/canteenhub/canteen-backend/api/validators"
	restaurantsvc "github.com/canteenhub/canteen-backend/internal/restaurants"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
	"github.com/canteenhub/canteen-backend/pkg/types"
)

type createRestaurantRequest struct {
	Name         string      `json:"name"`
	Address      string      `json:"address"`
	ImageURL     string      `json:"image_url,omitempty"`
	WorkingHours []string    `json:"working_hours"`
	Location     types.Point `json:"location"`
}

type updateRestaurantRequest struct {
	Name         *string      `json:"name,omitempty"`
	Address      *string      `json:"address,omitempty"`
	ImageURL     *string      `json:"image_url,omitempty"`
	WorkingHours *[]string    `json:"working_hours,omitempty"`
	Location     *types.Point `json:"location,omitempty"`
}

// CreateRestaurant adds a venue to the catalog.
func CreateRestaurant(svc restaurantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "restaurants service unavailable"))
			return
		}

		var payload createRestaurantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		restaurant, err := svc.Create(r.Context(), middleware.IdentityIDFromContext(r.Context()), restaurantsvc.CreateRestaurantInput{
			Name:         payload.Name,
			Address:      payload.Address,
			ImageURL:     payload.ImageURL,
			WorkingHours: payload.WorkingHours,
			Location:     payload.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, restaurant)
	}
}

// ListRestaurants returns all venues sorted by name.
func ListRestaurants(svc restaurantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "restaurants service unavailable"))
			return
		}

		restaurants, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, restaurants)
	}
}

// GetRestaurant returns a single venue by id.
func GetRestaurant(svc restaurantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "restaurants service unavailable"))
			return
		}

		restaurant, err := svc.Get(r.Context(), chi.URLParam(r, "restaurantID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, restaurant)
	}
}

// UpdateRestaurant applies a partial update to a venue.
func UpdateRestaurant(svc restaurantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "restaurants service unavailable"))
			return
		}

		var payload updateRestaurantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		restaurant, err := svc.Update(r.Context(), middleware.IdentityIDFromContext(r.Context()), chi.URLParam(r, "restaurantID"), restaurantsvc.UpdateRestaurantInput{
			Name:         payload.Name,
			Address:      payload.Address,
			ImageURL:     payload.ImageURL,
			WorkingHours: payload.WorkingHours,
			Location:     payload.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, restaurant)
	}
}

// DeleteRestaurant removes a venue from the catalog.
func DeleteRestaurant(svc restaurantsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "restaurants service unavailable"))
			return
		}

		deleted, err := svc.Delete(r.Context(), middleware.IdentityIDFromContext(r.Context()), chi.URLParam(r, "restaurantID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deleted)
	}
}
