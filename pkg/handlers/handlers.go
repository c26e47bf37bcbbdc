package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/arnavshah/club-teams-api/pkg/balancer"
	"github.com/arnavshah/club-teams-api/pkg/database"
	"github.com/arnavshah/club-teams-api/pkg/metrics"
	"github.com/arnavshah/club-teams-api/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	Store            *database.Store
	Log              zerolog.Logger
	Metrics          *metrics.Metrics
	DefaultTeamCount int
}

// writeError maps store errors to an HTTP response
func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	h.Log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// paramID parses a positive integer path parameter, answering 400 when it is not one
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// bindOptionalJSON binds a JSON body, accepting an empty one
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// balance runs the team balancer and records the outcome
func (h *Handler) balance(members []models.Member, teamCount int) models.BalanceResponse {
	if teamCount <= 0 {
		teamCount = h.DefaultTeamCount
	}

	teams := balancer.AssignTeams(members, teamCount)
	spread := balancer.Spread(teams)
	h.Metrics.ObserveBalance(spread)

	return models.BalanceResponse{
		Teams:        teams,
		Spread:       spread,
		BalanceScore: balancer.BalanceScore(teams),
	}
}

// Health reports whether the database is reachable
func (h *Handler) Health(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		h.Log.Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListMembers returns all registered members
func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.Store.ListMembers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// CreateMember registers a new member
func (h *Handler) CreateMember(c *gin.Context) {
	var req models.Member
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	member, err := h.Store.CreateMember(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.Log.Info().Uint("member_id", member.ID).Msg("member registered")
	c.JSON(http.StatusCreated, member)
}

// ListEvents returns all events, newest first
func (h *Handler) ListEvents(c *gin.Context) {
	events, err := h.Store.ListEvents(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateEvent schedules a new event
func (h *Handler) CreateEvent(c *gin.Context) {
	var req models.Event
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	event, err := h.Store.CreateEvent(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.Log.Info().Uint("event_id", event.ID).Msg("event created")
	c.JSON(http.StatusCreated, event)
}

// GetEvent returns an event together with every member's attendance status
func (h *Handler) GetEvent(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	event, err := h.Store.GetEvent(ctx, eventID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	members, err := h.Store.ListMembers(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	rows, err := h.Store.GetAttendanceForEvent(ctx, eventID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	statusByMember := make(map[uint]string, len(rows))
	for _, r := range rows {
		statusByMember[r.MemberID] = r.Status
	}

	withStatus := make([]models.MemberStatus, len(members))
	for i, m := range members {
		status, found := statusByMember[m.ID]
		if !found {
			status = models.AttendanceNone
		}
		withStatus[i] = models.MemberStatus{Member: m, Status: status}
	}

	c.JSON(http.StatusOK, gin.H{
		"event":   event,
		"members": withStatus,
	})
}

// SetAttendance records a member's answer for an event
func (h *Handler) SetAttendance(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		MemberID uint   `json:"member_id" binding:"required"`
		Status   string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Store.GetEvent(ctx, eventID); err != nil {
		h.writeError(c, err)
		return
	}

	if err := h.Store.SetAttendance(ctx, eventID, req.MemberID, req.Status); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Attendance{EventID: eventID, MemberID: req.MemberID, Status: req.Status})
}

// ListAttendees returns the members attending an event
func (h *Handler) ListAttendees(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.Store.GetEvent(ctx, eventID); err != nil {
		h.writeError(c, err)
		return
	}

	attendees, err := h.Store.GetAttendees(ctx, eventID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendees": attendees})
}
