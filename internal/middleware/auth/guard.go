package authmw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkurbatov/jobhub/internal/auth"
)

// Access control is evaluated per route once the principal is known: open
// routes take no guard, everything else wraps one of these.

func Authenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if auth.PrincipalFrom(c).IsAnonymous() {
			return echo.NewHTTPError(http.StatusUnauthorized, auth.DetailAuthenticationRequired).
				SetInternal(auth.ErrAuthenticationRequired)
		}
		return next(c)
	}
}

func Superuser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := auth.PrincipalFrom(c)
		if p.IsAnonymous() {
			return echo.NewHTTPError(http.StatusUnauthorized, auth.DetailAuthenticationRequired).
				SetInternal(auth.ErrAuthenticationRequired)
		}
		if !p.IsSuperuser {
			return echo.NewHTTPError(http.StatusForbidden, auth.DetailAuthorizationFailed).
				SetInternal(auth.ErrAuthorizationFailed)
		}
		return next(c)
	}
}
