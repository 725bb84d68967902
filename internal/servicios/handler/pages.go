package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/auth"
	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/middleware"
)

// PagesHandler enforces the page-level routing rules: the protected area
// requires a session, the login page bounces authenticated visitors back,
// and self-registration is permanently disabled.
type PagesHandler struct {
	authClient *auth.Client
}

// hasSession resolves the visitor's cookie (or bearer token) against the
// auth provider. Any failure counts as "no session" for redirect purposes.
func (h *PagesHandler) hasSession(c *gin.Context) bool {
	token := ""
	if cookie, err := c.Cookie(middleware.SessionCookie); err == nil {
		token = cookie
	} else if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		return false
	}
	_, err := h.authClient.GetUser(c.Request.Context(), token)
	return err == nil
}

// Home handles GET /: the protected area entry point.
func (h *PagesHandler) Home(c *gin.Context) {
	if !h.hasSession(c) {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.String(http.StatusOK, "Taller — panel de servicios")
}

// Login handles GET /login.
func (h *PagesHandler) Login(c *gin.Context) {
	if h.hasSession(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.String(http.StatusOK, "Taller — iniciar sesión")
}

// Register handles GET /register: self-registration is disabled for good.
func (h *PagesHandler) Register(c *gin.Context) {
	c.Redirect(http.StatusPermanentRedirect, "/login")
}
