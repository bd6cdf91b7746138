package auth

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/mkurbatov/jobhub/internal/logging"
	"github.com/mkurbatov/jobhub/internal/models"
	"github.com/mkurbatov/jobhub/internal/tokens"
)

const refreshedTokenContextKey = "auth_refreshed_access_token"

// TokenAuth orchestrates the codec, the transport bindings and the optional
// revocation store against a single request/response pair (the echo context).
// Without a store it degrades to signature+expiry validation only.
type TokenAuth struct {
	codec      *tokens.Codec
	transports map[tokens.Kind][]Transport
	store      *RevocationStore
}

func NewTokenAuth(codec *tokens.Codec, transports map[tokens.Kind][]Transport, store *RevocationStore) *TokenAuth {
	return &TokenAuth{codec: codec, transports: transports, store: store}
}

// Login issues one access and one refresh token for the user, writes each to
// its bound transports and records both in the store when one is configured.
func (a *TokenAuth) Login(c echo.Context, user *models.User) error {
	for _, kind := range []tokens.Kind{tokens.KindAccess, tokens.KindRefresh} {
		raw, err := a.codec.Issue(kind, user.ID, user.IsSuperuser)
		if err != nil {
			return err
		}
		a.write(c, kind, raw)
		if err := a.record(c.Request().Context(), raw); err != nil {
			return err
		}
	}
	return nil
}

// Logout revokes every token of the attached principal and clears all bound
// transports for both kinds. It never fails: a second call is a no-op with
// respect to already cleared transports, and a store error must not keep
// cookies on the client.
func (a *TokenAuth) Logout(c echo.Context) {
	if a.store != nil {
		if p := PrincipalFrom(c); !p.IsAnonymous() {
			if err := a.store.RevokeAll(c.Request().Context(), *p.ID); err != nil {
				logging.FromContext(c.Request().Context()).Warn("logout: revoke all failed", "error", err)
			}
		}
	}
	for _, ts := range a.transports {
		for _, t := range ts {
			t.Clear(c)
		}
	}
}

// Read locates the raw token via the bound transports (preferring a token
// refreshed earlier in this same request), decodes it and, when a store is
// configured, additionally requires the jti to still be active. A validly
// decoded but revoked token reads the same as an absent one.
func (a *TokenAuth) Read(c echo.Context, kind tokens.Kind) *tokens.Claims {
	raw, ok := a.rawToken(c, kind)
	if !ok {
		return nil
	}
	claims, ok := a.codec.Read(raw)
	if !ok {
		return nil
	}
	if a.store != nil && claims.ID != "" {
		active, err := a.store.IsActive(c.Request().Context(), claims.ID)
		if err != nil {
			logging.FromContext(c.Request().Context()).Warn("token activity check failed", "error", err)
			return nil
		}
		if !active {
			return nil
		}
	}
	return claims
}

// RefreshAccess mints a new access token from a valid refresh token and
// stashes it on the request so same-request reads see it immediately. The
// token is written to the response later, by InjectRefreshedToken — the
// single authoritative write point.
func (a *TokenAuth) RefreshAccess(c echo.Context) error {
	refresh := a.Read(c, tokens.KindRefresh)
	if refresh == nil {
		return ErrRefreshNotValid
	}

	access, err := a.codec.Issue(tokens.KindAccess, refresh.UserID, refresh.IsSuperuser)
	if err != nil {
		return err
	}

	c.Set(refreshedTokenContextKey, access)
	return a.record(c.Request().Context(), access)
}

// InjectRefreshedToken writes a token minted by RefreshAccess during this
// request into the access transports. Called from the refresh middleware once
// the final response is being committed.
func (a *TokenAuth) InjectRefreshedToken(c echo.Context) {
	if raw, ok := c.Get(refreshedTokenContextKey).(string); ok && raw != "" {
		a.write(c, tokens.KindAccess, raw)
	}
}

// RevokeUser invalidates every outstanding token of the given user.
// Exposed as a superuser-only administrative operation.
func (a *TokenAuth) RevokeUser(ctx context.Context, userID uint) error {
	if a.store == nil {
		return ErrNoRevocationStore
	}
	return a.store.RevokeAll(ctx, userID)
}

func (a *TokenAuth) write(c echo.Context, kind tokens.Kind, raw string) {
	for _, t := range a.transports[kind] {
		t.Write(c, raw)
	}
}

func (a *TokenAuth) rawToken(c echo.Context, kind tokens.Kind) (string, bool) {
	if kind == tokens.KindAccess {
		if raw, ok := c.Get(refreshedTokenContextKey).(string); ok && raw != "" {
			return raw, true
		}
	}
	for _, t := range a.transports[kind] {
		if raw, ok := t.Read(c); ok {
			return raw, true
		}
	}
	return "", false
}

func (a *TokenAuth) record(ctx context.Context, raw string) error {
	if a.store == nil {
		return nil
	}
	claims, ok := a.codec.Read(raw)
	if !ok {
		return nil
	}
	return a.store.Record(ctx, claims)
}
