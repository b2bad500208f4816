package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/study_planner/internal/logging"
	"github.com/Skotchmaster/study_planner/internal/middleware/auth"
	"github.com/Skotchmaster/study_planner/internal/service"
	"github.com/Skotchmaster/study_planner/internal/tokens"
)

type AuthHandler struct {
	Auth         *service.AuthService
	SecureCookie bool
	AppURL       string
}

func (h *AuthHandler) Register(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_register")

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sess, err := h.Auth.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(auth.CreateCookie(sess.Token, tokens.TTL, h.SecureCookie))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "account created",
		"userId":  sess.User.ID,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sess, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(auth.CreateCookie(sess.Token, tokens.TTL, h.SecureCookie))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged in"})
}

// Logout is stateless: dropping the cookie is all there is to do.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(auth.DeleteCookie(h.SecureCookie))
	return c.Redirect(http.StatusFound, auth.BaseURL(c.Request(), h.AppURL)+"/")
}

func (h *AuthHandler) GetProfile(c echo.Context) error {
	id, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	}

	user, err := h.Auth.Profile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"name": user.Name, "email": user.Email})
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	id, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	}

	var req service.ProfileUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Auth.UpdateProfile(c.Request().Context(), id, req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
}
