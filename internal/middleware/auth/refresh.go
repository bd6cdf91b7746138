package authmw

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/mkurbatov/jobhub/internal/auth"
	"github.com/mkurbatov/jobhub/internal/logging"
	"github.com/mkurbatov/jobhub/internal/tokens"
)

// Refresh silently renews an expired or missing access token before the
// handler runs. The renewed token is stashed on the request so the handler
// and downstream middleware see it immediately, and written out in a
// response hook once the final response is being committed — the latest
// point a Set-Cookie can still go out.
func Refresh(svc *auth.TokenAuth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if svc.Read(c, tokens.KindAccess) == nil {
				if err := svc.RefreshAccess(c); err != nil {
					// The request proceeds as anonymous; only the explicit
					// refresh endpoint surfaces this condition.
					if !errors.Is(err, auth.ErrRefreshNotValid) {
						logging.FromContext(c.Request().Context()).Warn("silent refresh failed", "error", err)
					}
				}
			}

			// Re-check the refresh token at commit time: a logout or
			// revocation during handling must not resurrect the session.
			c.Response().Before(func() {
				if svc.Read(c, tokens.KindRefresh) != nil {
					svc.InjectRefreshedToken(c)
				}
			})

			return next(c)
		}
	}
}
