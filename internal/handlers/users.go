package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mkurbatov/jobhub/internal/auth"
	"github.com/mkurbatov/jobhub/internal/events"
	"github.com/mkurbatov/jobhub/internal/hash"
	"github.com/mkurbatov/jobhub/internal/logging"
	"github.com/mkurbatov/jobhub/internal/models"
	"github.com/mkurbatov/jobhub/internal/repo"
)

type UserHandler struct {
	Users    *repo.UserRepo
	Producer *events.Producer
}

func (h *UserHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_register")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "email and a password of at least 6 characters are required")
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not hash password")
	}

	user := models.User{
		Email:          req.Email,
		HashedPassword: hashed,
		IsActive:       true,
	}
	if err := h.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, "Email is already taken.")
		}
		l.Error("register_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create user")
	}

	publishUserEvent(c, h.Producer, "user_registered", user.ID)
	l.Info("user_registered", "user_id", user.ID)

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.Users.ByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.requireSelfOrSuperuser(c, uint(id)); err != nil {
		return err
	}

	var req struct {
		Email      *string `json:"email"`
		IsActive   *bool   `json:"is_active"`
		IsVerified *bool   `json:"is_verified"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.ByID(ctx, uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
	}
	if err := h.Users.Update(ctx, user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.requireSelfOrSuperuser(c, uint(id)); err != nil {
		return err
	}

	if err := h.Users.Delete(c.Request().Context(), uint(id)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete user")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) requireSelfOrSuperuser(c echo.Context, id uint) error {
	p := auth.PrincipalFrom(c)
	if p.IsSuperuser {
		return nil
	}
	if p.ID != nil && *p.ID == id {
		return nil
	}
	return echo.NewHTTPError(http.StatusForbidden, auth.DetailAuthorizationFailed)
}
