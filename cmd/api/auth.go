package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rentora/internal/auth"
	"rentora/internal/mailer"
	"rentora/internal/store"
)

type RegisterUserPayload struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"required,max=20"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	Role      string `json:"role" validate:"required"`
}

type UserWithToken struct {
	*store.User
	Token string `json:"token"`
}

// registerUserHandler godoc
//
//	@Summary		Register a user
//	@Description	Registers a user and sends an activation email
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RegisterUserPayload	true	"User credentials"
//	@Success		201		{object}	UserWithToken		"User registered"
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Router			/authentication/user [post]
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	role := auth.NormalizeRole(payload.Role)
	if !role.Valid() || role == auth.RoleAdmin {
		app.badRequestResponse(w, r, fmt.Errorf("invalid role %q", payload.Role))
		return
	}

	user := &store.User{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Role:      role,
	}

	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	plainToken := uuid.New().String()

	// Only the hash is persisted; the plain token travels in the email.
	hash := sha256.Sum256([]byte(plainToken))
	hashToken := hex.EncodeToString(hash[:])

	err := app.store.Users.CreateAndInvite(r.Context(), user, hashToken, app.config.mail.exp)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateEmail):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, store.ErrDuplicatePhoneNumber):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	userWithToken := UserWithToken{
		User:  user,
		Token: plainToken,
	}

	activationURL := fmt.Sprintf("%s/confirm/%s", app.config.frontendURL, plainToken)

	vars := struct {
		Username      string
		ActivationURL string
	}{
		Username:      user.FirstName,
		ActivationURL: activationURL,
	}

	status, err := app.mailer.Send(mailer.UserWelcomeTemplate, user.FirstName, user.Email, vars)
	if err != nil {
		app.logger.Errorw("error sending welcome email", "error", err)

		// rollback user creation if email fails (SAGA pattern)
		if err := app.store.Users.Delete(r.Context(), user.ID); err != nil {
			app.logger.Errorw("error deleting user", "error", err)
		}

		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("email sent", "status code", status)

	if err := app.jsonResponse(w, http.StatusCreated, userWithToken); err != nil {
		app.internalServerError(w, r, err)
	}
}

// activateUserHandler godoc
//
//	@Summary		Activate a user
//	@Tags			authentication
//	@Produce		json
//	@Param			token	path		string	true	"Invitation token"
//	@Success		204		{string}	string	"User activated"
//	@Failure		404		{object}	error
//	@Router			/authentication/activate/{token} [put]
func (app *application) activateUserHandler(w http.ResponseWriter, r *http.Request) {
	plainToken := chi.URLParam(r, "token")

	hash := sha256.Sum256([]byte(plainToken))
	hashToken := hex.EncodeToString(hash[:])

	if err := app.store.Users.Activate(r.Context(), hashToken); err != nil {
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

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// loginHandler godoc
//
//	@Summary		Log in
//	@Description	Verifies credentials and sets the auth cookies
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		LoginPayload	true	"Login credentials"
//	@Success		200		{object}	store.User
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Router			/authentication/token [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			// same response as a wrong password, no account probing
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if !user.Password.Compare(payload.Password) {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid credentials for %s", payload.Email))
		return
	}

	name := fmt.Sprintf("%s %s", user.FirstName, user.LastName)
	accessToken, refreshToken, err := app.authenticator.GenerateTokens(user.ID, user.Email, user.Role, name)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SaveRefreshToken(r.Context(), user.ID, refreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.authenticator.SetAuthCookies(w, accessToken, refreshToken)

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

// refreshTokenHandler godoc
//
//	@Summary		Refresh the session
//	@Description	Rotates both tokens using the refresh-token cookie
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	store.User
//	@Failure		401	{object}	error
//	@Router			/authentication/refresh [post]
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.RefreshTokenCookie)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, auth.ErrUnauthenticated)
		return
	}

	claims, err := app.authenticator.ValidateRefreshToken(cookie.Value)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	stored, err := app.store.Users.GetRefreshToken(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	if stored == "" || stored != cookie.Value {
		// token was rotated or revoked elsewhere
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("refresh token mismatch for user %d", userID))
		return
	}

	// re-read the user so a role change lands in the new access token
	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	name := fmt.Sprintf("%s %s", user.FirstName, user.LastName)
	accessToken, refreshToken, err := app.authenticator.GenerateTokens(user.ID, user.Email, user.Role, name)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SaveRefreshToken(r.Context(), user.ID, refreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.authenticator.SetAuthCookies(w, accessToken, refreshToken)

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

// sessionHandler godoc
//
//	@Summary		Current session
//	@Description	Returns the identity behind the auth-token cookie
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		401	{object}	error
//	@Router			/authentication/session [get]
func (app *application) sessionHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := app.authenticator.Authenticate(r)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	session := map[string]any{
		"user_id": userID,
		"email":   claims.Email,
		"role":    claims.Role,
		"name":    claims.Name,
	}

	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// logoutHandler godoc
//
//	@Summary		Log out
//	@Description	Revokes the refresh token and clears both cookies
//	@Tags			authentication
//	@Success		204	{string}	string	"Logged out"
//	@Failure		401	{object}	error
//	@Router			/authentication/logout [post]
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	claims := getSessionFromContext(r)

	userID, err := claims.UserID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	if err := app.store.Users.DeleteRefreshToken(r.Context(), userID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.authenticator.ClearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

type RequestResetPasswordPayload struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// requestResetPasswordHandler godoc
//
//	@Summary		Request a password reset
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RequestResetPasswordPayload	true	"Account email"
//	@Success		202		{string}	string						"Reset email queued"
//	@Failure		400		{object}	error
//	@Router			/authentication/reset-password [post]
func (app *application) requestResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload RequestResetPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// a 202 either way, no account probing
			w.WriteHeader(http.StatusAccepted)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	plainToken := uuid.New().String()
	hash := sha256.Sum256([]byte(plainToken))
	hashToken := hex.EncodeToString(hash[:])

	expires := time.Now().Add(time.Hour)
	if err := app.store.Users.UpdateResetToken(r.Context(), user.Email, hashToken, expires); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", app.config.frontendURL, plainToken)

	vars := struct {
		Username string
		ResetURL string
	}{
		Username: user.FirstName,
		ResetURL: resetURL,
	}

	status, err := app.mailer.Send(mailer.ResetPasswordTemplate, user.FirstName, user.Email, vars)
	if err != nil {
		app.logger.Errorw("error sending reset email", "error", err)
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("reset email sent", "status code", status)
	w.WriteHeader(http.StatusAccepted)
}

type ResetPasswordPayload struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// resetPasswordHandler godoc
//
//	@Summary		Reset the password
//	@Tags			authentication
//	@Accept			json
//	@Param			payload	body		ResetPasswordPayload	true	"Reset token and new password"
//	@Success		204		{string}	string					"Password updated"
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Router			/authentication/reset-password [patch]
func (app *application) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload ResetPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	hash := sha256.Sum256([]byte(payload.Token))
	hashToken := hex.EncodeToString(hash[:])

	user, err := app.store.Users.GetByResetToken(r.Context(), hashToken)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if user.ResetPasswordExpires.Before(time.Now()) {
		app.badRequestResponse(w, r, fmt.Errorf("reset token expired"))
		return
	}

	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = time.Time{}

	if err := app.store.Users.Update(r.Context(), user); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// changing the password invalidates the open session
	if err := app.store.Users.DeleteRefreshToken(r.Context(), user.ID); err != nil {
		app.logger.Errorw("error revoking refresh token", "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
