package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"synthlobby/internal/catalog"
	"synthlobby/internal/pricing"
	"synthlobby/internal/storage"
)

// ListSynths returns one page of the catalogue, filtered and sorted per the
// query parameters. The liked and compared filters need a bearer token so
// the profile's ID sets can be resolved.
func (h *Handler) ListSynths(c *gin.Context) {
	q := catalog.Query{
		Search:          c.Query("search"),
		Sort:            catalog.Sort(c.Query("sort")),
		Availability:    c.Query("availability"),
		LikedOnly:       boolParam(c, "liked"),
		ComparedOnly:    boolParam(c, "compared"),
		ChangedOnly:     boolParam(c, "changed"),
		IncludeUnpriced: boolParam(c, "include_unpriced"),
	}

	switch q.Sort {
	case catalog.SortNone, catalog.SortAscending, catalog.SortDescending:
	case "none":
		q.Sort = catalog.SortNone
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sort"})
		return
	}

	var err error
	if q.MinPrice, err = floatParam(c, "min_price"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_price"})
		return
	}
	if q.MaxPrice, err = floatParam(c, "max_price"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_price"})
		return
	}

	page := 1
	if v := c.Query("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return
		}
	}

	if q.LikedOnly || q.ComparedOnly {
		user := h.requireUser(c)
		if user == nil {
			return
		}
		profile, err := h.store.GetProfile(c.Request.Context(), user.ID)
		if err != nil {
			h.log.Error("get profile", "user_id", user.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
			return
		}
		q.LikedIDs = profile.WatchedIDs()
		q.ComparedIDs = profile.CompareIDs()
	}

	filtered := catalog.FilterAndSort(h.catalog.Snapshot(), q, time.Now())
	c.JSON(http.StatusOK, catalog.Paginate(filtered, page))
}

// GetSynth returns a single catalogue entry by ID.
func (h *Handler) GetSynth(c *gin.Context) {
	synth, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, synth)
}

// GetPriceHistory returns the price points recorded within the last N days
// (query parameter days, default the standard window).
func (h *Handler) GetPriceHistory(c *gin.Context) {
	synth, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	days, err := daysParam(c, h.windowDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
		return
	}
	c.JSON(http.StatusOK, pricing.RecentHistory(synth.Prices, time.Now(), days))
}

// GetPriceChange returns the recent price change analysis for one synth.
func (h *Handler) GetPriceChange(c *gin.Context) {
	synth, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	days, err := daysParam(c, h.windowDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
		return
	}
	c.JSON(http.StatusOK, pricing.RecentChange(synth.Prices, time.Now(), days))
}

// ListBrands returns the distinct brands in the catalogue, optionally
// filtered by a search substring.
func (h *Handler) ListBrands(c *gin.Context) {
	brands := catalog.Brands(h.catalog.Snapshot(), c.Query("search"))
	if brands == nil {
		brands = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// GetLastScrape reports when the catalogue data was last scraped.
func (h *Handler) GetLastScrape(c *gin.Context) {
	t := h.catalog.LastScrape()
	if t.IsZero() {
		c.JSON(http.StatusOK, gin.H{"lastScrape": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lastScrape": t.UTC().Format(time.RFC3339)})
}

// GetProfile returns the authenticated user's wishlist and compare list.
func (h *Handler) GetProfile(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	profile, err := h.store.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error("get profile", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

type toggleRequest struct {
	SynthID string `json:"synthId" binding:"required"`
}

type notificationsRequest struct {
	SynthID string `json:"synthId" binding:"required"`
	Enable  *bool  `json:"enable" binding:"required"`
}

// ToggleLike adds or removes a synth from the wishlist and returns the
// updated profile.
func (h *Handler) ToggleLike(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	profile, err := h.store.ToggleWatch(c.Request.Context(), user.ID, req.SynthID)
	if err != nil {
		h.log.Error("toggle watch", "user_id", user.ID, "synth_id", req.SynthID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update wishlist"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ToggleCompare adds or removes a synth from the compare list and returns
// the updated profile.
func (h *Handler) ToggleCompare(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	profile, err := h.store.ToggleCompare(c.Request.Context(), user.ID, req.SynthID)
	if err != nil {
		h.log.Error("toggle compare", "user_id", user.ID, "synth_id", req.SynthID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update compare list"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ToggleNotifications flips price-drop alerts for a wishlist entry and
// returns the updated profile. The synth must already be on the wishlist.
func (h *Handler) ToggleNotifications(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	var req notificationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	profile, err := h.store.SetNotifications(c.Request.Context(), user.ID, req.SynthID, *req.Enable)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "synth is not on the wishlist"})
			return
		}
		h.log.Error("set notifications", "user_id", user.ID, "synth_id", req.SynthID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notifications"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func boolParam(c *gin.Context, name string) bool {
	v := c.Query(name)
	return v == "1" || v == "true"
}

func floatParam(c *gin.Context, name string) (float64, error) {
	v := c.Query(name)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func daysParam(c *gin.Context, fallback int) (int, error) {
	v := c.Query("days")
	if v == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(v)
	if err != nil || days < 1 {
		return 0, errors.New("invalid days")
	}
	return days, nil
}
