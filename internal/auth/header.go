package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

type HeaderTransport struct {
	Name   string
	Scheme string // optional prefix, e.g. "Bearer"
}

func (t *HeaderTransport) Write(c echo.Context, token string) {
	value := token
	if t.Scheme != "" {
		value = t.Scheme + " " + token
	}
	c.Response().Header().Set(t.Name, value)
}

func (t *HeaderTransport) Clear(c echo.Context) {
	c.Response().Header().Set(t.Name, "")
}

// Read strips the scheme prefix when present. A header without a prefix is
// taken as the bare token; an empty remainder reports absent.
func (t *HeaderTransport) Read(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(t.Name)
	if header == "" {
		return "", false
	}
	if i := strings.IndexByte(header, ' '); i >= 0 {
		token := strings.TrimSpace(header[i+1:])
		if token == "" {
			return "", false
		}
		return token, true
	}
	return header, true
}
