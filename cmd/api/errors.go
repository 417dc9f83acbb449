package main

import (
	"errors"
	"net/http"

	"rentora/internal/auth"
	"rentora/internal/store"
)

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("not found", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusNotFound, "not found")
}

// unauthorizedErrorResponse is for authentication failures: the client has
// no valid session and should log in (or refresh) again.
func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusUnauthorized, "authentication required")
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic", "method", r.Method, "path", r.URL.Path, "error", err)
	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "authentication required")
}

// forbiddenResponse is for authorization failures: a valid identity that
// lacks permission. Re-authenticating will not help, so the message differs
// from the 401 path. The matrix entry itself is never echoed back.
func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSONError(w, http.StatusForbidden, "you do not have permission to perform this action")
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter string) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Retry-After", retryAfter)
	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded, retry after: "+retryAfter)
}

// authFailureResponse maps core error kinds onto responses: authentication
// failures to 401, authorization failures to 403, configuration errors and
// everything else (e.g. a failed ownership lookup) to 500. Configuration
// errors are bugs, not user-facing conditions.
func (app *application) authFailureResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		app.unauthorizedErrorResponse(w, r, err)
	case errors.Is(err, auth.ErrForbidden):
		app.forbiddenResponse(w, r, err)
	case errors.Is(err, auth.ErrConfig):
		app.logger.Errorw("access control misconfiguration", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
	case errors.Is(err, store.ErrNotFound):
		app.notFoundResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
