package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"videohalls/internal/config"
	"videohalls/internal/middleware"
	"videohalls/internal/repository"
	"videohalls/internal/utils"
)

// minPasswordLen is the minimum accepted password length at signup.
const minPasswordLen = 8

// AuthHandler bundles dependencies for signup, login and session endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type signupReq struct {
	Username  string `json:"username" form:"username"`
	Password1 string `json:"password1" form:"password1"`
	Password2 string `json:"password2" form:"password2"`
}

type loginReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

// SignUp handles POST /signup. It validates the new-account form, creates
// the user and immediately establishes a session for it (token pair plus
// cookies) before redirecting to the dashboard. The implicit login is a
// deliberate UX choice, not an oversight.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)

	errs := map[string][]string{}
	if req.Username == "" {
		errs["username"] = append(errs["username"], "This field is required.")
	}
	if req.Password1 == "" {
		errs["password1"] = append(errs["password1"], "This field is required.")
	} else if len(req.Password1) < minPasswordLen {
		errs["password1"] = append(errs["password1"], "This password is too short.")
	}
	if req.Password2 != req.Password1 {
		errs["password2"] = append(errs["password2"], "The two password fields didn't match.")
	}
	if len(errs) > 0 {
		return fieldErrors(c, errs, echo.Map{"username": req.Username})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Password1, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return fieldErrors(c,
				map[string][]string{"username": {"A user with that username already exists."}},
				echo.Map{"username": req.Username})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	if err := h.establishSession(c, ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.Redirect(http.StatusFound, "/dashboard")
}

// Login handles POST /login: verify credentials and establish a session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := h.establishSession(c, ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.Redirect(http.StatusFound, "/dashboard")
}

// LoginForm handles GET /login so the AuthRequired redirect has somewhere
// to land. Rendering is out of scope for this service, so it returns the
// form description.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"form": []string{"username", "password"}})
}

// Logout handles POST /logout: revoke the session's refresh token, clear
// the cookies and return to the home page.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)
	if raw == "" {
		if ck, err := c.Cookie("refresh_token"); err == nil {
			raw = ck.Value
		}
	}
	if raw != "" {
		_ = h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	}

	clearCookie(c, middleware.AccessCookie)
	clearCookie(c, "refresh_token")
	return c.Redirect(http.StatusFound, "/")
}

// Refresh handles POST /auth/refresh: validate by hash, revoke the old
// refresh token and issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	if err := h.establishSession(c, ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me is a simple protected endpoint returning the caller's identity.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": u.ID, "username": u.Username})
}

// establishSession issues an access JWT and a refresh token for the user,
// stores the refresh hash and sets both as HttpOnly cookies so that the
// browser carries the session across the 302 redirects.
func (h *AuthHandler) establishSession(c echo.Context, ctx context.Context, uid uint64) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, h.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return err
	}
	if err := h.Tokens.StoreRefresh(ctx, uid, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return err
	}

	setCookie(c, middleware.AccessCookie, access.Token, access.Exp)
	setCookie(c, "refresh_token", refresh.Raw, refresh.Exp)
	return nil
}

func setCookie(c echo.Context, name, value string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
