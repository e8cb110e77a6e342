package httphandler

import (
	"net/http"
	"time"

	"github.com/ericfisherdev/streamfinder/internal/application"
	"github.com/ericfisherdev/streamfinder/internal/domain/model"
)

// Cookie names of the per-client ephemeral credential channel. All three are
// httpOnly: readable by this server on every request, invisible to page
// scripts on the client.
const (
	cookieAuthKey  = "stremio_authKey"
	cookieEmail    = "stremio_email"
	cookiePassword = "stremio_password"
)

// ReadCookieCredentials extracts the ephemeral channel from request cookies.
// Absent cookies yield empty fields. Exported because the web driving
// adapter reads the same channel for the redirect flow.
func ReadCookieCredentials(r *http.Request) application.CookieCredentials {
	return application.CookieCredentials{
		AuthKey:  cookieValue(r, cookieAuthKey),
		Email:    cookieValue(r, cookieEmail),
		Password: cookieValue(r, cookiePassword),
	}
}

// setSessionCookies writes the {authKey, email, password} subset of a session
// record into the client's cookie jar.
func setSessionCookies(w http.ResponseWriter, record model.SessionRecord, maxAge time.Duration) {
	seconds := int(maxAge.Seconds())
	for name, value := range map[string]string{
		cookieAuthKey:  record.AuthKey,
		cookieEmail:    record.Email,
		cookiePassword: record.Password,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			MaxAge:   seconds,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
