package handlers

import (
	"errors"
	"net/http"

	"github.com/arnavshah/club-teams-api/pkg/database"
	"github.com/arnavshah/club-teams-api/pkg/models"
	"github.com/gin-gonic/gin"
)

// GetEventSummary returns attendance totals and the latest saved team set for an event
func (h *Handler) GetEventSummary(c *gin.Context) {
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

	rows, err := h.Store.GetAttendanceForEvent(ctx, eventID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	byStatus := make(map[string]int)
	for _, r := range rows {
		byStatus[r.Status]++
	}

	sets, err := h.Store.GetTeamSetsForEvent(ctx, eventID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var latest gin.H
	set, err := h.Store.LatestTeamSet(ctx, eventID)
	switch {
	case err == nil:
		groups, err := h.Store.GetTeamMembersForSet(ctx, set.ID)
		if err != nil {
			h.writeError(c, err)
			return
		}
		members := 0
		for _, g := range groups {
			members += len(g.Members)
		}
		latest = gin.H{
			"id":         set.ID,
			"created_at": set.CreatedAt,
			"teams":      len(groups),
			"members":    members,
		}
	case !errors.Is(err, database.ErrNotFound):
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event": event,
		"attendance": gin.H{
			"responses": len(rows),
			"by_status": byStatus,
			"attendees": byStatus[models.AttendanceYes],
		},
		"team_sets":  len(sets),
		"latest_set": latest,
	})
}
