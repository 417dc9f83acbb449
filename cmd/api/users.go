package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rentora/internal/accesscontrol"
	"rentora/internal/auth"
	"rentora/internal/store"
)

func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// listUsersHandler godoc
//
//	@Summary		List users
//	@Tags			users
//	@Produce		json
//	@Success		200	{array}	map[string]any
//	@Failure		401	{object}	error
//	@Failure		403	{object}	error
//	@Router			/users [get]
func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := app.authorize(w, r, accesscontrol.ResourceUsers, accesscontrol.ActionRead, 0)
	if !ok {
		return
	}

	users, err := app.store.Users.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	records := make([]map[string]any, 0, len(users))
	for i := range users {
		records = append(records, accesscontrol.RedactSensitiveFields(users[i].Record(), claims.Role))
	}

	if err := app.jsonResponse(w, http.StatusOK, records); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateUserPayload struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"required,max=20"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Role      string `json:"role" validate:"required"`
}

// createUserHandler creates an already-active account. Unlike the public
// registration flow this may mint any role, including admin, which is why
// the matrix restricts it to admins.
//
//	@Summary	Create a user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		CreateUserPayload	true	"User details"
//	@Success	201		{object}	map[string]any
//	@Failure	400		{object}	error
//	@Failure	403		{object}	error
//	@Router		/users [post]
func (app *application) createUserHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := app.authorize(w, r, accesscontrol.ResourceUsers, accesscontrol.ActionCreate, 0)
	if !ok {
		return
	}

	var payload CreateUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	role := auth.NormalizeRole(payload.Role)
	if !role.Valid() {
		app.badRequestResponse(w, r, errors.New("invalid role "+payload.Role))
		return
	}

	user := &store.User{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Role:      role,
		IsActive:  true,
	}

	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.Create(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail), errors.Is(err, store.ErrDuplicatePhoneNumber):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	record := accesscontrol.RedactSensitiveFields(user.Record(), claims.Role)
	if err := app.jsonResponse(w, http.StatusCreated, record); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getUserHandler godoc
//
//	@Summary	Fetch a user
//	@Tags		users
//	@Produce	json
//	@Param		userID	path		int	true	"User ID"
//	@Success	200		{object}	map[string]any
//	@Failure	403		{object}	error
//	@Failure	404		{object}	error
//	@Router		/users/{userID} [get]
func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	claims, ok := app.authorize(w, r, accesscontrol.ResourceUsers, accesscontrol.ActionRead, 0)
	if !ok {
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	record := accesscontrol.RedactSensitiveFields(user.Record(), claims.Role)
	if err := app.jsonResponse(w, http.StatusOK, record); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateUserPayload struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

// updateUserHandler godoc
//
//	@Summary	Update a user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		userID	path		int					true	"User ID"
//	@Param		payload	body		UpdateUserPayload	true	"Fields to update"
//	@Success	200		{object}	map[string]any
//	@Failure	400		{object}	error
//	@Failure	403		{object}	error
//	@Failure	404		{object}	error
//	@Router		/users/{userID} [put]
func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	claims, ok := app.authorize(w, r, accesscontrol.ResourceUsers, accesscontrol.ActionUpdate, 0)
	if !ok {
		return
	}

	var payload UpdateUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if payload.FirstName != nil {
		user.FirstName = *payload.FirstName
	}
	if payload.LastName != nil {
		user.LastName = *payload.LastName
	}
	if payload.Phone != nil {
		user.Phone = *payload.Phone
	}
	if payload.Role != nil {
		role := auth.NormalizeRole(*payload.Role)
		if !role.Valid() {
			app.badRequestResponse(w, r, errors.New("invalid role "+*payload.Role))
			return
		}
		user.Role = role
	}
	if payload.IsActive != nil {
		user.IsActive = *payload.IsActive
	}

	if err := app.store.Users.Update(r.Context(), user); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	record := accesscontrol.RedactSensitiveFields(user.Record(), claims.Role)
	if err := app.jsonResponse(w, http.StatusOK, record); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteUserHandler godoc
//
//	@Summary	Delete a user
//	@Tags		users
//	@Param		userID	path		int	true	"User ID"
//	@Success	204		{string}	string	"User deleted"
//	@Failure	403		{object}	error
//	@Failure	404		{object}	error
//	@Router		/users/{userID} [delete]
func (app *application) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceUsers, accesscontrol.ActionDelete, 0); !ok {
		return
	}

	if err := app.store.Users.Delete(r.Context(), userID); err != nil {
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

type RegisterPushTokenPayload struct {
	Token string `json:"token" validate:"required"`
}

// registerPushTokenHandler stores the caller's Expo push token so ticket
// updates can reach their device.
//
//	@Summary	Register a push token
//	@Tags		users
//	@Accept		json
//	@Param		payload	body		RegisterPushTokenPayload	true	"Expo push token"
//	@Success	204		{string}	string
//	@Failure	400		{object}	error
//	@Failure	401		{object}	error
//	@Router		/users/push-token [post]
func (app *application) registerPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	claims := getSessionFromContext(r)

	userID, err := claims.UserID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	var payload RegisterPushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.PushTokens.Save(r.Context(), userID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
