package auth

import "net/http"

// Cookie names for the token transport. Both cookies are HttpOnly; the
// browser stores and sends them automatically and JS cannot read them.
const (
	AccessTokenCookie  = "auth-token"
	RefreshTokenCookie = "refresh-token"
)

// SetAuthCookies writes both tokens as HttpOnly cookies. No Domain
// attribute is set, so the cookies scope to whichever host served them;
// that keeps the binary portable across deployment environments.
func (a *JWTAuthenticator) SetAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cfg.Production,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(a.cfg.AccessTokenExp.Seconds()),
	})

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.cfg.Production,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(a.cfg.RefreshTokenExp.Seconds()),
	})
}

// ClearAuthCookies expires both cookies. Used at logout; the tokens
// themselves die at their signed expiry.
func (a *JWTAuthenticator) ClearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   a.cfg.Production,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}
