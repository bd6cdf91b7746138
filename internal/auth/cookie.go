package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type CookieTransport struct {
	Name     string
	MaxAge   time.Duration
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

func (t *CookieTransport) Write(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     t.Name,
		Value:    token,
		Path:     t.path(),
		Domain:   t.Domain,
		MaxAge:   int(t.MaxAge.Seconds()),
		Expires:  time.Now().Add(t.MaxAge),
		Secure:   t.Secure,
		HttpOnly: t.HTTPOnly,
		SameSite: t.SameSite,
	})
}

// Clear sends an expiring delete directive; merely omitting the cookie would
// leave the old token on the client.
func (t *CookieTransport) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     t.Name,
		Value:    "",
		Path:     t.path(),
		Domain:   t.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   t.Secure,
		HttpOnly: t.HTTPOnly,
		SameSite: t.SameSite,
	})
}

func (t *CookieTransport) Read(c echo.Context) (string, bool) {
	ck, err := c.Cookie(t.Name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

func (t *CookieTransport) path() string {
	if t.Path == "" {
		return "/"
	}
	return t.Path
}
