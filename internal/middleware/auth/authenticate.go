package authmw

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/mkurbatov/jobhub/internal/auth"
	"github.com/mkurbatov/jobhub/internal/models"
	"github.com/mkurbatov/jobhub/internal/tokens"
)

// UserLookup is the contract to the relational user store. The middleware
// only ever needs lookup by id.
type UserLookup interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
}

// Authenticate resolves the caller from the access token and attaches a
// principal to the request. A deleted account behind a still-valid token
// resolves to anonymous, never to an authenticated user. Runs downstream of
// Refresh so it observes a token minted this same request.
func Authenticate(svc *auth.TokenAuth, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := svc.Read(c, tokens.KindAccess)
			if claims == nil {
				auth.SetPrincipal(c, auth.Anonymous())
				return next(c)
			}

			user, err := users.ByID(c.Request().Context(), claims.UserID)
			if err != nil || user == nil {
				auth.SetPrincipal(c, auth.Anonymous())
				return next(c)
			}

			auth.SetPrincipal(c, auth.PrincipalFromUser(user))
			return next(c)
		}
	}
}
