package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"property-search/internal/models"
	"property-search/internal/presenter"
	"property-search/internal/query"
	"property-search/internal/session"
)

// SessionHandler serves the search session events sent by the page
type SessionHandler struct {
	store   *session.Store
	timeout time.Duration
}

// NewSessionHandler creates a new session handler. timeout bounds each
// collaborator fetch triggered by an event.
func NewSessionHandler(store *session.Store, timeout time.Duration) *SessionHandler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SessionHandler{store: store, timeout: timeout}
}

// Register mounts the session routes under g
func (h *SessionHandler) Register(g *gin.RouterGroup) {
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id/filters", h.UpdateFilters)
	g.POST("/:id/amenities/:key", h.AddAmenity)
	g.DELETE("/:id/amenities/:key", h.RemoveAmenity)
	g.PUT("/:id/sort", h.SetSort)
	g.POST("/:id/page", h.ChangePage)
	g.POST("/:id/retry", h.Retry)
	g.POST("/:id/map/load", h.MapLoad)
	g.POST("/:id/map/settled", h.MapSettled)
	g.POST("/:id/select", h.Select)
	g.DELETE("/:id/select", h.ClearSelection)
	g.GET("/:id/opinions", h.Opinions)
}

type sortRequest struct {
	Sort models.SortOrder `json:"sort" binding:"required"`
}

type pageRequest struct {
	Page      *int                `json:"page"`
	Direction presenter.Direction `json:"direction"`
}

type selectRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
}

// Create starts a session, optionally with initial filters, and loads
// its first page
func (h *SessionHandler) Create(c *gin.Context) {
	var patch query.Patch
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
	}

	s, _ := h.store.Create()
	ticket, _, err := s.Update(patch)
	if err != nil {
		h.store.Delete(s.ID)
		abortWithError(c, err)
		return
	}

	h.fetchAndRespond(c, s, ticket, http.StatusCreated)
}

// Get returns the current view of a session
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// Delete ends a session
func (h *SessionHandler) Delete(c *gin.Context) {
	h.store.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// UpdateFilters applies a filter patch (page reset to 1) and refetches
func (h *SessionHandler) UpdateFilters(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var patch query.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	ticket, changed, err := s.Update(patch)
	h.respondUpdate(c, s, ticket, changed, err)
}

// AddAmenity adds an amenity filter
func (h *SessionHandler) AddAmenity(c *gin.Context) {
	h.toggleAmenity(c, true)
}

// RemoveAmenity removes an amenity filter
func (h *SessionHandler) RemoveAmenity(c *gin.Context) {
	h.toggleAmenity(c, false)
}

func (h *SessionHandler) toggleAmenity(c *gin.Context, on bool) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ticket, changed, err := s.SetAmenity(c.Param("key"), on)
	h.respondUpdate(c, s, ticket, changed, err)
}

// SetSort changes the sort order, keeping the current page
func (h *SessionHandler) SetSort(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ticket, changed, err := s.Update(query.Patch{Sort: &req.Sort})
	h.respondUpdate(c, s, ticket, changed, err)
}

// ChangePage navigates by direction or jumps to an explicit page
func (h *SessionHandler) ChangePage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var (
		ticket session.Ticket
		err    error
	)
	switch {
	case req.Page != nil:
		ticket, err = s.GoToPage(*req.Page)
	case req.Direction == presenter.Next || req.Direction == presenter.Prev:
		ticket, err = s.Navigate(req.Direction)
	default:
		badRequest(c, fmt.Errorf("either page or direction (next|prev) is required"))
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.fetchAndRespond(c, s, ticket, http.StatusOK)
}

// Retry reissues the current query after a failed load
func (h *SessionHandler) Retry(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.fetchAndRespond(c, s, s.Retry(), http.StatusOK)
}

// MapLoad attaches the page's map and returns how to position it
func (h *SessionHandler) MapLoad(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	inst, layer := s.MapLoaded()
	c.JSON(http.StatusOK, gin.H{
		"instruction": inst,
		"markers":     layer,
	})
}

// MapSettled turns the settled viewport into a bbox filter and refetches
func (h *SessionHandler) MapSettled(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var b models.Bounds
	if err := c.ShouldBindJSON(&b); err != nil {
		badRequest(c, err)
		return
	}
	ticket, changed, err := s.MapSettled(b)
	h.respondUpdate(c, s, ticket, changed, err)
}

// Select selects a listing from a card, a marker or the overlay button
func (h *SessionHandler) Select(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := s.Select(req.ListingID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// ClearSelection drops the selection
func (h *SessionHandler) ClearSelection(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.ClearSelection()
	c.JSON(http.StatusOK, s.View())
}

// Opinions loads the opinions for the selected listing
func (h *SessionHandler) Opinions(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	ticket, err := s.OpinionsTicket()
	if err != nil {
		abortWithError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	_, err = s.FetchOpinions(ctx, ticket)

	v := s.View()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "opinions": v.Opinions})
		return
	}
	c.JSON(http.StatusOK, v.Opinions)
}

func (h *SessionHandler) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.store.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return s, true
}

// respondUpdate fetches after a state change, or just returns the view
// when the event left the query unchanged
func (h *SessionHandler) respondUpdate(c *gin.Context, s *session.Session, ticket session.Ticket, changed bool, err error) {
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !changed {
		c.JSON(http.StatusOK, s.View())
		return
	}
	h.fetchAndRespond(c, s, ticket, http.StatusOK)
}

// fetchAndRespond runs the fetch for ticket and returns the session view.
// A superseded fetch still answers with the current view. A failed one
// answers with the error status and the view holding the previous page.
func (h *SessionHandler) fetchAndRespond(c *gin.Context, s *session.Session, ticket session.Ticket, status int) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	applied, err := s.Fetch(ctx, ticket)
	if err != nil {
		log.Printf("[Session API] id=%s duration_ms=%d error=%v", s.ID, time.Since(start).Milliseconds(), err)
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "session": s.View()})
		return
	}
	if !applied {
		log.Printf("[Session API] id=%s version=%d superseded", s.ID, ticket.Version)
	}
	c.JSON(status, s.View())
}
