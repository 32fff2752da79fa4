package controllers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canteenhub/canteen-backend/api/middleware"
	"github.com/canteenhub/canteen-backend/api/responses"
	"github.com/canteenhub/canteen-backend/api/validators"
	dishsvc "github.com/canteenhub/canteen-backend/internal/dishes"
	pkgerrors "github.com/canteenhub/canteen-backend/pkg/errors"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

// maxDishUploadBytes caps multipart form memory for dish image uploads.
const maxDishUploadBytes = 10 << 20

type createDishRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	ImageURL    string   `json:"image_url,omitempty"`
	Allergens   []string `json:"allergens,omitempty"`
}

type updateDishRequest struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Allergens   *[]string `json:"allergens,omitempty"`
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "multipart/form-data"
}

// dishImageFromForm pulls the optional image part out of a parsed multipart
// form. The returned closer, when non-nil, must be closed after the service
// call consumed the body.
func dishImageFromForm(r *http.Request) (*dishsvc.ImageUpload, func(), error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	}

	upload := &dishsvc.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return upload, func() { _ = file.Close() }, nil
}

func formAllergens(r *http.Request) []string {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.Value["allergens"]
}

// CreateDish creates a catalog dish, optionally uploading an image supplied
// as a multipart part named "image".
func CreateDish(svc dishsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dishes service unavailable"))
			return
		}

		var input dishsvc.CreateDishInput

		if isMultipart(r) {
			if err := r.ParseMultipartForm(maxDishUploadBytes); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
				return
			}

			image, closeImage, err := dishImageFromForm(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if closeImage != nil {
				defer closeImage()
			}

			input = dishsvc.CreateDishInput{
				Name:        r.FormValue("name"),
				Description: r.FormValue("description"),
				Category:    r.FormValue("category"),
				ImageURL:    r.FormValue("image_url"),
				Allergens:   formAllergens(r),
				Image:       image,
			}
		} else {
			var payload createDishRequest
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input = dishsvc.CreateDishInput{
				Name:        payload.Name,
				Description: payload.Description,
				Category:    payload.Category,
				ImageURL:    payload.ImageURL,
				Allergens:   payload.Allergens,
			}
		}

		dish, err := svc.Create(r.Context(), middleware.IdentityIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dish)
	}
}

// ListDishes returns the dish catalog sorted by name.
func ListDishes(svc dishsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dishes service unavailable"))
			return
		}

		dishes, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dishes)
	}
}

// GetDish returns a single dish by id.
func GetDish(svc dishsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dishes service unavailable"))
			return
		}

		dish, err := svc.Get(r.Context(), chi.URLParam(r, "dishID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dish)
	}
}

// UpdateDish applies a partial update, optionally replacing the dish image.
func UpdateDish(svc dishsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dishes service unavailable"))
			return
		}

		var input dishsvc.UpdateDishInput

		if isMultipart(r) {
			if err := r.ParseMultipartForm(maxDishUploadBytes); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
				return
			}

			image, closeImage, err := dishImageFromForm(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if closeImage != nil {
				defer closeImage()
			}

			input = dishsvc.UpdateDishInput{Image: image}
			for field, values := range r.MultipartForm.Value {
				if len(values) == 0 {
					continue
				}
				value := values[0]
				switch field {
				case "name":
					input.Name = &value
				case "description":
					input.Description = &value
				case "category":
					input.Category = &value
				case "image_url":
					input.ImageURL = &value
				case "allergens":
					allergens := append([]string(nil), values...)
					input.Allergens = &allergens
				}
			}
		} else {
			var payload updateDishRequest
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input = dishsvc.UpdateDishInput{
				Name:        payload.Name,
				Description: payload.Description,
				Category:    payload.Category,
				ImageURL:    payload.ImageURL,
				Allergens:   payload.Allergens,
			}
		}

		dish, err := svc.Update(r.Context(), middleware.IdentityIDFromContext(r.Context()), chi.URLParam(r, "dishID"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dish)
	}
}

// DeleteDish removes a dish from the catalog.
func DeleteDish(svc dishsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dishes service unavailable"))
			return
		}

		deleted, err := svc.Delete(r.Context(), middleware.IdentityIDFromContext(r.Context()), chi.URLParam(r, "dishID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, deleted)
	}
}
