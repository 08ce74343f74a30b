package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hostellog/hostel-admin/internal/config"
	"github.com/hostellog/hostel-admin/internal/middleware"
	"github.com/hostellog/hostel-admin/internal/model"
	"github.com/hostellog/hostel-admin/internal/repository"
)

// UserHandler lets admins manage console accounts.
type UserHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Tokens: t}
}

type resetPasswordReq struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type createUserReq struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName string  `json:"full_name" validate:"required,max=150"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Role     string  `json:"role" validate:"required"`
	HostelID *uint64 `json:"hostel_id"`
}

func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be admin, staff or guest"})
	}
	if role == model.RoleAdmin {
		req.HostelID = nil
	} else if req.HostelID == nil || *req.HostelID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hostel_id is required for " + string(role) + " accounts"})
	}

	u := model.User{
		HostelID: req.HostelID,
		FullName: strings.TrimSpace(req.FullName),
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     role,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Create(ctx, &u, req.Password, h.Cfg.BcryptCost); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, u)
}

// List returns every account, or one hostel's with ?hostel_id=.
func (h *UserHandler) List(c echo.Context) error {
	hostelID, ok := queryID(c, "hostel_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hostel_id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Users.List(ctx, hostelID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Delete removes an account.  Admins cannot delete themselves.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if me, ok := middleware.CurrentIdentity(c); ok && me.UserID == id {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete your own account"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword sets a new password for a staff or guest account that lost
// its own, and logs the account out everywhere.
func (h *UserHandler) ResetPassword(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req resetPasswordReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetPassword(ctx, id, req.Password, h.Cfg.BcryptCost); err != nil {
		return fail(err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
