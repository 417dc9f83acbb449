package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rentora/internal/accesscontrol"
	"rentora/internal/store"
)

// listSettingsHandler godoc
//
//	@Summary	List settings
//	@Tags		settings
//	@Produce	json
//	@Success	200	{array}	store.Setting
//	@Failure	403	{object}	error
//	@Router		/settings [get]
func (app *application) listSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.authorize(w, r, accesscontrol.ResourceSettings, accesscontrol.ActionRead, 0); !ok {
		return
	}

	settings, err := app.store.Settings.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, settings); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getSettingHandler godoc
//
//	@Summary	Fetch a setting
//	@Tags		settings
//	@Produce	json
//	@Param		key	path		string	true	"Setting key"
//	@Success	200	{object}	store.Setting
//	@Failure	404	{object}	error
//	@Router		/settings/{key} [get]
func (app *application) getSettingHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.authorize(w, r, accesscontrol.ResourceSettings, accesscontrol.ActionRead, 0); !ok {
		return
	}

	key := chi.URLParam(r, "key")

	setting, err := app.store.Settings.Get(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, setting); err != nil {
		app.internalServerError(w, r, err)
	}
}

type PutSettingPayload struct {
	Value string `json:"value" validate:"required,max=2000"`
}

// putSettingHandler godoc
//
//	@Summary	Create or update a setting
//	@Tags		settings
//	@Accept		json
//	@Produce	json
//	@Param		key		path		string				true	"Setting key"
//	@Param		payload	body		PutSettingPayload	true	"Setting value"
//	@Success	200		{object}	store.Setting
//	@Failure	400		{object}	error
//	@Failure	403		{object}	error
//	@Router		/settings/{key} [put]
func (app *application) putSettingHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.authorize(w, r, accesscontrol.ResourceSettings, accesscontrol.ActionUpdate, 0); !ok {
		return
	}

	key := chi.URLParam(r, "key")

	var payload PutSettingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Settings.Set(r.Context(), key, payload.Value); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	setting, err := app.store.Settings.Get(r.Context(), key)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, setting); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteSettingHandler godoc
//
//	@Summary	Delete a setting
//	@Tags		settings
//	@Param		key	path		string	true	"Setting key"
//	@Success	204	{string}	string	"Setting deleted"
//	@Failure	403	{object}	error
//	@Failure	404	{object}	error
//	@Router		/settings/{key} [delete]
func (app *application) deleteSettingHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.authorize(w, r, accesscontrol.ResourceSettings, accesscontrol.ActionDelete, 0); !ok {
		return
	}

	key := chi.URLParam(r, "key")

	if err := app.store.Settings.Delete(r.Context(), key); err != nil {
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
