package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	auth   *service.Authenticator
	reader *service.DataReader
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(auth *service.Authenticator, reader *service.DataReader) *AuthHandlers {
	return &AuthHandlers{
		auth:   auth,
		reader: reader,
	}
}

// Login handles the wallet login request. Without an address the wallet's current account is used.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Address string `json:"address"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}

	var (
		session *core.Session
		err     error
	)
	if req.Address != "" {
		session, err = h.auth.Authenticate(c.Request.Context(), core.Account{Address: req.Address})
	} else {
		session, err = h.auth.Login(c.Request.Context())
	}
	if err != nil {
		statusCode := http.StatusInternalServerError
		kind := core.KindOf(err)

		// Map specific errors to appropriate status codes
		switch kind {
		case core.UserDenied:
			statusCode = http.StatusForbidden
		case core.WalletError:
			statusCode = http.StatusServiceUnavailable
		case core.NetworkError:
			statusCode = http.StatusBadGateway
		case core.InvalidSignature:
			statusCode = http.StatusUnauthorized
		}

		c.JSON(statusCode, gin.H{"error": err.Error(), "kind": kind.String()})
		return
	}

	c.JSON(http.StatusOK, session)
}

// Session returns the current session
func (h *AuthHandlers) Session(c *gin.Context) {
	session, err := h.auth.CurrentSession(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNoSession):
			c.JSON(http.StatusNotFound, gin.H{"error": "Not logged in"})
		case errors.Is(err, core.ErrTokenExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read session"})
		}
		return
	}

	c.JSON(http.StatusOK, session)
}

// Logout handles session logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	// Session is set by the auth middleware
	value, exists := c.Get(sessionKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Session not found in context"})
		return
	}

	c.JSON(http.StatusOK, value.(*core.Session).User)
}

// Project returns project details
func (h *AuthHandlers) Project(c *gin.Context) {
	project, err := h.reader.Project(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load project"})
		return
	}

	c.JSON(http.StatusOK, project)
}

// TopicSearch returns social mention counts for the q parameter.
// from and to are RFC3339 and default to the last 30 days.
func (h *AuthHandlers) TopicSearch(c *gin.Context) {
	q := core.TopicQuery{
		SearchText: c.Query("q"),
		Interval:   c.Query("interval"),
	}
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &q.From}, {"to", &q.To}} {
		if v := c.Query(p.name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + p.name})
				return
			}
			*p.dst = t
		}
	}

	result, err := h.reader.TopicSearch(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, core.ErrEmptySearch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search text"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to search topic"})
		return
	}
	c.JSON(http.StatusOK, result)
}
