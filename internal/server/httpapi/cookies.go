package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/viewtube/internal/server/services"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// setAuthCookies delivers both tokens as HttpOnly, Secure cookies.
func setAuthCookies(w http.ResponseWriter, pair services.TokenPair) {
	http.SetCookie(w, authCookie(accessTokenCookie, pair.AccessToken, 0))
	http.SetCookie(w, authCookie(refreshTokenCookie, pair.RefreshToken, 0))
}

// clearAuthCookies expires both token cookies.
func clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, authCookie(accessTokenCookie, "", -1))
	http.SetCookie(w, authCookie(refreshTokenCookie, "", -1))
}

func authCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
