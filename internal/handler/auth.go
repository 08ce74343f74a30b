package handler

import (
    "context"  // bounds DB calls per request
    "errors"   // sentinel error matching
    "net/http" // HTTP status codes
    "strings"  // header and input trimming
    "time"     // timeouts for DB calls

    "github.com/labstack/echo/v4"

    "github.com/hostellog/hostel-admin/internal/access"
    "github.com/hostellog/hostel-admin/internal/config"
    "github.com/hostellog/hostel-admin/internal/middleware"
    "github.com/hostellog/hostel-admin/internal/model"
    "github.com/hostellog/hostel-admin/internal/repository"
    "github.com/hostellog/hostel-admin/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Tokens  *repository.TokenRepo
	Hostels *repository.HostelRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, h *repository.HostelRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Hostels: h}
}

// ----- DTOs -----

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64     `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     model.Role `json:"role"`
	HostelID *uint64    `json:"hostel_id"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func partOf(u *model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, HostelID: u.HostelID}
}

// mint builds a new token pair for u without persisting it.
func (h *AuthHandler) mint(u *model.User) (authResp, string, error) {
	at, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.HostelID, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, "", err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, "", err
	}
	return authResp{
		User:    partOf(u),
		Access:  tokenPart{Token: at.Token, Expires: at.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, utils.HashRefreshRaw(refresh.Raw), nil
}

// issue mints a pair for u and stores the refresh token.
func (h *AuthHandler) issue(ctx context.Context, u *model.User) (authResp, error) {
	resp, hash, err := h.mint(u)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, hash, resp.Refresh.Expires); err != nil {
		return authResp{}, err
	}
	return resp, nil
}

// Login: verify credentials and return a new pair.  Deactivated accounts
// cannot log in.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return fail(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account is deactivated"})
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// refreshOwner validates the refresh token in the body and loads its
// active owner.
func (h *AuthHandler) refreshOwner(ctx context.Context, c echo.Context) (*model.User, string, error) {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return nil, "", c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return nil, "", c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return nil, "", fail(err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) || (err == nil && !u.IsActive) {
		return nil, "", c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return nil, "", fail(err)
	}
	return u, hash, nil
}

// Refresh exchanges a refresh token for a new pair. The old token is
// revoked in the same transaction that stores its replacement.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, hash, err := h.refreshOwner(ctx, c)
	if u == nil {
		return err
	}
	resp, next, err := h.mint(u)
	if err != nil {
		return fail(err)
	}
	err = h.Tokens.Rotate(ctx, hash, u.ID, next, resp.Refresh.Expires)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAccess returns a new access token without rotating the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, _, err := h.refreshOwner(ctx, c)
	if u == nil {
		return err
	}
	at, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.HostelID, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: at.Token, Expires: at.Exp},
	})
}

// Logout revokes one session when a refresh_token is posted, or every
// session of the bearer when only an Authorization header is sent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var uid uint64
	if raw, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer "); ok {
		if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimSpace(raw)); err == nil {
			uid, _ = claims.UserID()
		}
	}

	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch {
	case refreshToken != "":
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return fail(err)
		}
	case uid != 0:
		if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
			return fail(err)
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword replaces the caller's password after checking the
// current one.  Every session of the account is revoked, so other devices
// must log in again.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	var req changePasswordReq
	if ok, err := bind(c, &req); !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		return fail(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
	}
	if err := h.Users.SetPassword(ctx, u.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return fail(err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, u.ID); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's profile, their hostel and the console routes
// their role may open.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		return fail(err)
	}
	var hostel *model.Hostel
	if u.HostelID != nil {
		if hostel, err = h.Hostels.GetByID(ctx, *u.HostelID); err != nil {
			return fail(err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":   partOf(u),
		"hostel": hostel,
		"routes": access.VisibleRoutes(u.Role),
	})
}
