// Package api exposes the catalogue and user profile over HTTP.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"synthlobby/internal/catalog"
	"synthlobby/internal/model"
	"synthlobby/internal/storage"
)

// Handler serves the REST API.
type Handler struct {
	store      storage.Storage
	catalog    *catalog.Store
	windowDays int
	log        *slog.Logger
}

// NewHandler creates an API handler over the given stores.
func NewHandler(store storage.Storage, cat *catalog.Store, windowDays int, log *slog.Logger) *Handler {
	return &Handler{
		store:      store,
		catalog:    cat,
		windowDays: windowDays,
		log:        log,
	}
}

// Router builds the gin engine with all API routes registered.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/synths", h.ListSynths)
		api.GET("/synths/:id", h.GetSynth)
		api.GET("/synths/:id/history", h.GetPriceHistory)
		api.GET("/synths/:id/change", h.GetPriceChange)
		api.GET("/brands", h.ListBrands)
		api.GET("/meta/last-scrape", h.GetLastScrape)

		user := api.Group("/user")
		{
			user.GET("/profile", h.GetProfile)
			user.POST("/likes/toggle", h.ToggleLike)
			user.POST("/compare/toggle", h.ToggleCompare)
			user.POST("/notifications/toggle", h.ToggleNotifications)
		}
	}

	return r
}

// authUser resolves the bearer token to a user, creating the account on
// first sight. Returns nil without writing a response when no token is
// present.
func (h *Handler) authUser(c *gin.Context) (*model.User, error) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, nil
	}
	return h.store.GetOrCreateUser(c.Request.Context(), strings.TrimSpace(token))
}

// requireUser is authUser plus a 401 response when no token is present.
func (h *Handler) requireUser(c *gin.Context) *model.User {
	user, err := h.authUser(c)
	if err != nil {
		h.log.Error("resolve user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve account"})
		return nil
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return nil
	}
	return user
}
