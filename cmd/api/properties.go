package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"rentora/internal/accesscontrol"
	"rentora/internal/auth"
	"rentora/internal/store"
)

type CreatePropertyPayload struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Address     string   `json:"address" validate:"required,max=300"`
	City        string   `json:"city" validate:"required,max=100"`
	MonthlyRent float64  `json:"monthly_rent" validate:"required,gt=0"`
	Bedrooms    int      `json:"bedrooms" validate:"gte=0"`
	Description *string  `json:"description"`
	Amenities   []string `json:"amenities"`
	BrokerID    *int64   `json:"broker_id"`
	OwnerID     *int64   `json:"owner_id"`
}

// createPropertyHandler godoc
//
//	@Summary		Create a property
//	@Tags			properties
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreatePropertyPayload	true	"Property details"
//	@Success		201		{object}	store.Property
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Router			/properties [post]
func (app *application) createPropertyHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := app.authorize(w, r, accesscontrol.ResourceProperties, accesscontrol.ActionCreate, 0)
	if !ok {
		return
	}

	var payload CreatePropertyPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	callerID, err := claims.UserID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	property := &store.Property{
		OwnerID:     callerID,
		BrokerID:    payload.BrokerID,
		Title:       payload.Title,
		Address:     payload.Address,
		City:        payload.City,
		MonthlyRent: payload.MonthlyRent,
		Bedrooms:    payload.Bedrooms,
		Description: payload.Description,
		Amenities:   payload.Amenities,
		Status:      "available",
	}

	// brokers list on behalf of an owner, who must be named explicitly
	if claims.Role == auth.RoleBroker {
		if payload.OwnerID == nil {
			app.badRequestResponse(w, r, errors.New("owner_id is required for broker listings"))
			return
		}
		property.OwnerID = *payload.OwnerID
		property.BrokerID = &callerID
	} else if claims.Role == auth.RoleAdmin && payload.OwnerID != nil {
		property.OwnerID = *payload.OwnerID
	}

	if err := app.store.Properties.Create(r.Context(), property); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, property); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listPropertiesHandler godoc
//
//	@Summary		List properties
//	@Description	Owners see their own listings, everyone else sees all of them
//	@Tags			properties
//	@Produce		json
//	@Success		200	{array}	store.Property
//	@Failure		403	{object}	error
//	@Router			/properties [get]
func (app *application) listPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := app.authorize(w, r, accesscontrol.ResourceProperties, accesscontrol.ActionRead, 0)
	if !ok {
		return
	}

	var (
		properties []store.Property
		err        error
	)

	if claims.Role == auth.RoleOwner {
		var ownerID int64
		ownerID, err = claims.UserID()
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}
		properties, err = app.store.Properties.ListByOwner(r.Context(), ownerID)
	} else {
		properties, err = app.store.Properties.List(r.Context())
	}
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, properties); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getPropertyHandler godoc
//
//	@Summary	Fetch a property
//	@Tags		properties
//	@Produce	json
//	@Param		propertyID	path		int	true	"Property ID"
//	@Success	200			{object}	store.Property
//	@Failure	404			{object}	error
//	@Router		/properties/{propertyID} [get]
func (app *application) getPropertyHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := idParam(r, "propertyID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// reads are role-gated only: tenants browse listings they do not own
	if _, ok := app.authorize(w, r, accesscontrol.ResourceProperties, accesscontrol.ActionRead, 0); !ok {
		return
	}

	property, err := app.store.Properties.GetByID(r.Context(), propertyID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, property); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdatePropertyPayload struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Address     *string  `json:"address" validate:"omitempty,max=300"`
	City        *string  `json:"city" validate:"omitempty,max=100"`
	MonthlyRent *float64 `json:"monthly_rent" validate:"omitempty,gt=0"`
	Bedrooms    *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Description *string  `json:"description"`
	Amenities   []string `json:"amenities"`
	Status      *string  `json:"status" validate:"omitempty,oneof=available rented maintenance"`
}

// updatePropertyHandler godoc
//
//	@Summary	Update a property
//	@Tags		properties
//	@Accept		json
//	@Produce	json
//	@Param		propertyID	path		int						true	"Property ID"
//	@Param		payload		body		UpdatePropertyPayload	true	"Fields to update"
//	@Success	200			{object}	store.Property
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/properties/{propertyID} [patch]
func (app *application) updatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := idParam(r, "propertyID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceProperties, accesscontrol.ActionUpdate, propertyID); !ok {
		return
	}

	var payload UpdatePropertyPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	property, err := app.store.Properties.GetByID(r.Context(), propertyID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if payload.Title != nil {
		property.Title = *payload.Title
	}
	if payload.Address != nil {
		property.Address = *payload.Address
	}
	if payload.City != nil {
		property.City = *payload.City
	}
	if payload.MonthlyRent != nil {
		property.MonthlyRent = *payload.MonthlyRent
	}
	if payload.Bedrooms != nil {
		property.Bedrooms = *payload.Bedrooms
	}
	if payload.Description != nil {
		property.Description = payload.Description
	}
	if payload.Amenities != nil {
		property.Amenities = payload.Amenities
	}
	if payload.Status != nil {
		property.Status = *payload.Status
	}

	if err := app.store.Properties.Update(r.Context(), property); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, property); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deletePropertyHandler godoc
//
//	@Summary	Delete a property
//	@Tags		properties
//	@Param		propertyID	path		int	true	"Property ID"
//	@Success	204			{string}	string	"Property deleted"
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/properties/{propertyID} [delete]
func (app *application) deletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := idParam(r, "propertyID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceProperties, accesscontrol.ActionDelete, propertyID); !ok {
		return
	}

	if err := app.store.Properties.Delete(r.Context(), propertyID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// uploadPropertyPhotoHandler godoc
//
//	@Summary		Upload property photos
//	@Description	Accepts multipart form files under the "photos" field
//	@Tags			properties
//	@Accept			mpfd
//	@Produce		json
//	@Param			propertyID	path		int	true	"Property ID"
//	@Success		200			{object}	store.Property
//	@Failure		400			{object}	error
//	@Failure		403			{object}	error
//	@Router			/properties/{propertyID}/photos [post]
func (app *application) uploadPropertyPhotoHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := idParam(r, "propertyID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceProperties, accesscontrol.ActionUpdate, propertyID); !ok {
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("parse multipart form: %w", err))
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		app.badRequestResponse(w, r, errors.New("no photos provided"))
		return
	}

	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			app.internalServerError(w, r, fmt.Errorf("open file: %w", err))
			return
		}

		photoURL, err := app.uploadPropertyPhoto(file, propertyID)
		file.Close()
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}

		if err := app.store.Properties.AddPhotoURL(r.Context(), propertyID, photoURL); err != nil {
			app.internalServerError(w, r, err)
			return
		}
	}

	property, err := app.store.Properties.GetByID(r.Context(), propertyID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, property); err != nil {
		app.internalServerError(w, r, err)
	}
}

type DeletePhotoPayload struct {
	URL string `json:"url" validate:"required,url"`
}

// deletePropertyPhotoHandler godoc
//
//	@Summary	Delete a property photo
//	@Tags		properties
//	@Accept		json
//	@Param		propertyID	path		int					true	"Property ID"
//	@Param		payload		body		DeletePhotoPayload	true	"Photo URL"
//	@Success	204			{string}	string				"Photo deleted"
//	@Failure	400			{object}	error
//	@Failure	403			{object}	error
//	@Router		/properties/{propertyID}/photos [delete]
func (app *application) deletePropertyPhotoHandler(w http.ResponseWriter, r *http.Request) {
	propertyID, err := idParam(r, "propertyID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceProperties, accesscontrol.ActionUpdate, propertyID); !ok {
		return
	}

	var payload DeletePhotoPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.deletePhotoFromCloudinary(payload.URL); err != nil {
		app.logger.Errorw("cloudinary destroy failed", "url", payload.URL, "error", err)
	}

	if err := app.store.Properties.RemovePhotoURL(r.Context(), propertyID, payload.URL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) uploadPropertyPhoto(file io.Reader, propertyID int64) (string, error) {
	resp, err := app.cld.Upload.Upload(
		context.Background(),
		file,
		uploader.UploadParams{Folder: fmt.Sprintf("properties/%d", propertyID)},
	)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}

func (app *application) deletePhotoFromCloudinary(photoURL string) error {
	publicID, err := extractPublicIDFromURL(photoURL)
	if err != nil {
		return fmt.Errorf("extract public ID: %w", err)
	}

	_, err = app.cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}

func extractPublicIDFromURL(photoURL string) (string, error) {
	parsedURL, err := url.Parse(photoURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	pathParts := strings.Split(parsedURL.Path, "/")
	for i, part := range pathParts {
		if part == "upload" && i+1 < len(pathParts) {
			return strings.Join(pathParts[i+1:], "/"), nil
		}
	}

	return "", errors.New("no upload segment in URL")
}
