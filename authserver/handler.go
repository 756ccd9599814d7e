package authserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletauth/adapters/graphql"
	"github.com/layer-3/walletauth/core"
)

// Handler serves the subset of the GraphQL API the client uses
type Handler struct {
	service *Service
}

// NewHandler creates new GraphQL handlers
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SetupRouter sets up the Gin router
func SetupRouter(service *Service) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	h := NewHandler(service)
	router.POST("/graphql", h.GraphQL)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// GraphQL dispatches on the operation name, falling back to the query text
func (h *Handler) GraphQL(c *gin.Context) {
	var req graphql.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []graphql.Error{{Message: "invalid request"}}})
		return
	}

	switch operation(req) {
	case "ethLogin":
		h.ethLogin(c, req)
	case "project":
		h.project(c, req)
	case "topicSearch":
		h.topicSearch(c, req)
	default:
		c.JSON(http.StatusOK, gin.H{"errors": []graphql.Error{{Message: "unsupported operation"}}})
	}
}

func (h *Handler) ethLogin(c *gin.Context, req graphql.Request) {
	login := core.LoginRequest{
		Signature:   stringVar(req, "signature"),
		Address:     stringVar(req, "address"),
		MessageHash: stringVar(req, "messageHash"),
	}

	payload, err := h.service.EthLogin(c.Request.Context(), login)
	if err != nil {
		message := "Authentication failed"

		// Map specific errors to client-facing messages
		switch {
		case errors.Is(err, core.ErrInvalidAddress):
			message = "Invalid address"
		case errors.Is(err, core.ErrInvalidChallenge):
			message = "Invalid message hash"
		case errors.Is(err, ErrSignatureRejected):
			message = "Invalid signature"
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"errors": []graphql.Error{{Message: message}}})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data":   gin.H{"ethLogin": nil},
			"errors": []graphql.Error{{Message: message, Path: []any{"ethLogin"}}},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"ethLogin": payload}})
}

func (h *Handler) project(c *gin.Context, req graphql.Request) {
	if !h.optionalAuth(c) {
		return
	}

	project, err := h.service.Project(c.Request.Context(), stringVar(req, "id"))
	if err != nil {
		if errors.Is(err, core.ErrProjectNotFound) {
			c.JSON(http.StatusOK, gin.H{"data": gin.H{"project": nil}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"errors": []graphql.Error{{Message: "Failed to load project"}}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"project": project}})
}

func (h *Handler) topicSearch(c *gin.Context, req graphql.Request) {
	if !h.optionalAuth(c) {
		return
	}

	q := core.TopicQuery{
		SearchText: stringVar(req, "searchText"),
		Interval:   stringVar(req, "interval"),
	}
	var err error
	if q.From, err = time.Parse(time.RFC3339, stringVar(req, "from")); err == nil {
		q.To, err = time.Parse(time.RFC3339, stringVar(req, "to"))
	}
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"data":   gin.H{"topicSearch": nil},
			"errors": []graphql.Error{{Message: "Invalid datetime", Path: []any{"topicSearch"}}},
		})
		return
	}

	result, err := h.service.TopicSearch(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"data":   gin.H{"topicSearch": nil},
			"errors": []graphql.Error{{Message: err.Error(), Path: []any{"topicSearch"}}},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"topicSearch": result}})
}

// optionalAuth allows anonymous reads but rejects an invalid presented token
func (h *Handler) optionalAuth(c *gin.Context) bool {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return true
	}
	if !strings.HasPrefix(auth, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []graphql.Error{{Message: "Invalid authorization header"}}})
		return false
	}
	if _, err := h.service.Authenticate(c.Request.Context(), strings.TrimPrefix(auth, "Bearer ")); err != nil {
		message := "Invalid token"
		if errors.Is(err, core.ErrTokenExpired) {
			message = "Token expired"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []graphql.Error{{Message: message}}})
		return false
	}
	return true
}

func operation(req graphql.Request) string {
	if req.OperationName != "" {
		return req.OperationName
	}
	for _, op := range []string{"ethLogin", "project", "topicSearch"} {
		if strings.Contains(req.Query, op+"(") {
			return op
		}
	}
	return ""
}

func stringVar(req graphql.Request, name string) string {
	switch v := req.Variables[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
