package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mkurbatov/jobhub/internal/auth"
	"github.com/mkurbatov/jobhub/internal/events"
	"github.com/mkurbatov/jobhub/internal/hash"
	"github.com/mkurbatov/jobhub/internal/logging"
	"github.com/mkurbatov/jobhub/internal/repo"
)

type AuthHandler struct {
	Users    *repo.UserRepo
	Auth     *auth.TokenAuth
	Producer *events.Producer
}

// Login verifies credentials and writes both tokens to their transports.
// Token values never appear in the JSON body.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.ByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return echo.NewHTTPError(http.StatusUnauthorized, auth.DetailInvalidCredentials).SetInternal(auth.ErrInvalidCredentials)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	if !hash.CheckPassword(user.HashedPassword, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch")
		return echo.NewHTTPError(http.StatusUnauthorized, auth.DetailInvalidCredentials).SetInternal(auth.ErrInvalidCredentials)
	}

	if err := h.Auth.Login(c, user); err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not issue tokens")
	}

	publishUserEvent(c, h.Producer, "user_logged_in", user.ID)
	l.Info("login_successful", "user_id", user.ID)

	return c.JSON(http.StatusOK, echo.Map{"message": "tokens set"})
}

// Logout always succeeds and always clears the transports, even when called
// without a session.
func (h *AuthHandler) Logout(c echo.Context) error {
	p := auth.PrincipalFrom(c)
	h.Auth.Logout(c)

	if !p.IsAnonymous() {
		publishUserEvent(c, h.Producer, "user_logged_out", *p.ID)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "tokens deleted"})
}

// Refresh is the explicit refresh endpoint. Unlike the silent middleware
// path, a bad refresh token surfaces here as a 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	if err := h.Auth.RefreshAccess(c); err != nil {
		if errors.Is(err, auth.ErrRefreshNotValid) {
			return echo.NewHTTPError(http.StatusUnauthorized, auth.DetailRefreshNotValid)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not refresh token")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "token refreshed"})
}

// Me reports the attached principal. Anonymous renders with null identity
// fields rather than an error.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, auth.PrincipalFrom(c))
}

// RevokeUser invalidates every outstanding token of the given user.
// Superuser-only; routed behind the guard.
func (h *AuthHandler) RevokeUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_revoke_user")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.Auth.RevokeUser(ctx, uint(id)); err != nil {
		if errors.Is(err, auth.ErrNoRevocationStore) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "revocation is not available")
		}
		l.Error("revoke_failed", "user_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not revoke tokens")
	}

	publishUserEvent(c, h.Producer, "user_tokens_revoked", uint(id))
	l.Info("tokens_revoked", "user_id", id)

	return c.JSON(http.StatusOK, echo.Map{"message": "tokens revoked"})
}

func publishUserEvent(c echo.Context, producer *events.Producer, eventType string, userID uint) {
	if producer == nil {
		return
	}
	event := map[string]any{
		"type":    eventType,
		"user_id": userID,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := producer.PublishEvent(ctx, events.TopicUserEvents, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
