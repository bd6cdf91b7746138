package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/mkurbatov/jobhub/internal/models"
)

const principalContextKey = "auth_principal"

// Principal is the identity attached to every request: either a real user or
// the anonymous sentinel. Anonymous is a value, not the absence of one, so
// identity fields render as null instead of the whole thing going missing.
type Principal struct {
	ID          *uint   `json:"id"`
	Email       *string `json:"email"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
	IsVerified  bool    `json:"is_verified"`
}

func Anonymous() Principal {
	return Principal{IsActive: true}
}

func PrincipalFromUser(u *models.User) Principal {
	return Principal{
		ID:          &u.ID,
		Email:       &u.Email,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		IsVerified:  u.IsVerified,
	}
}

func (p Principal) IsAnonymous() bool {
	return p.ID == nil
}

func SetPrincipal(c echo.Context, p Principal) {
	c.Set(principalContextKey, p)
}

// PrincipalFrom returns the principal attached by the authentication
// middleware, or Anonymous when nothing ran upstream.
func PrincipalFrom(c echo.Context) Principal {
	if p, ok := c.Get(principalContextKey).(Principal); ok {
		return p
	}
	return Anonymous()
}
