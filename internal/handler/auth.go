package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saas-webapp/web/internal/model"
	"github.com/saas-webapp/web/internal/service"
	"go.uber.org/zap"
)

type sessionService interface {
	Login(ctx context.Context, creds model.Credentials) (*model.Session, error)
	Refresh(ctx context.Context, sess *model.Session) (*model.Session, error)
	SignOut(ctx context.Context, sess *model.Session) error
}

type cookieEncoder interface {
	Encode(sessionKey string) (string, error)
	CookieConfig() service.CookieConfig
}

type AuthHandler struct {
	svc     sessionService
	cookies cookieEncoder
	logger  *zap.Logger
}

func NewAuthHandler(svc sessionService, cookies cookieEncoder, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, cookies: cookies, logger: logger}
}

// Login godoc
// @Summary Login with credentials
// @Description Relays credentials to the auth backend and opens a local session.
// @Tags auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Success 200 {object} model.LoginResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var creds model.Credentials
	if err := c.ShouldBind(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), creds)
	if err != nil {
		writeLoginError(c, err)
		return
	}

	if err := h.setSessionCookie(c, sess.Key); err != nil {
		h.logger.Error("failed to sign session cookie", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{User: sess.User()})
}

// Session godoc
// @Summary Get current session
// @Tags auth
// @Produce json
// @Success 200 {object} model.SessionResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	sess := GetSession(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, model.SessionResponse{User: sess.User()})
}

// Logout godoc
// @Summary Logout
// @Description Destroys the local session (if present) and clears the cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} model.LogoutResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := GetSession(c); sess != nil {
		if err := h.svc.SignOut(c.Request.Context(), sess); err != nil {
			h.logger.Warn("sign out failed", zap.Error(err))
		}
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, model.LogoutResponse{Status: "logged_out"})
}

// RefreshUser godoc
// @Summary Refresh session user
// @Description Re-reads the user from the auth backend with the session's access token.
// @Tags auth
// @Produce json
// @Success 200 {object} model.RefreshUserResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/refresh-user [post]
func (h *AuthHandler) RefreshUser(c *gin.Context) {
	sess := GetSession(c)
	if sess == nil || sess.AccessToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token found"})
		return
	}

	updated, err := h.svc.Refresh(c.Request.Context(), sess)
	if err != nil {
		h.logger.Warn("session refresh failed", zap.String("user_id", sess.ID), zap.Error(err))
		writeRefreshError(c, err)
		return
	}

	c.Set(sessionKey, updated)
	c.JSON(http.StatusOK, model.RefreshUserResponse{
		Message: "Session updated",
		User:    updated.User(),
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, key string) error {
	value, err := h.cookies.Encode(key)
	if err != nil {
		return err
	}
	cfg := h.cookies.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, value, cfg.MaxAge, cfg.Path, cfg.Domain, cfg.Secure, true)
	return nil
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	cfg := h.cookies.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(cfg.Name, "", -1, cfg.Path, cfg.Domain, cfg.Secure, true)
}

// Login is all-or-nothing; every relay failure surfaces as the same generic response.
func writeLoginError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMisconfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrTokenMissing),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrUpstreamUnavailable):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
	}
}

func writeRefreshError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, service.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
	case errors.Is(err, service.ErrRefreshFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user data"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
