package handlers

import (
	"fmt"
	"net/http"

	"github.com/arnavshah/club-teams-api/pkg/balancer"
	"github.com/arnavshah/club-teams-api/pkg/database"
	"github.com/arnavshah/club-teams-api/pkg/models"
	"github.com/gin-gonic/gin"
)

// savedTeam is a stored team as presented to clients
type savedTeam struct {
	TeamIndex  int             `json:"team_index"`
	Members    []models.Member `json:"members"`
	TotalSkill int             `json:"total_skill"`
}

// BalanceTeams splits the given members, or every registered member when none
// are given, into skill-balanced teams
func (h *Handler) BalanceTeams(c *gin.Context) {
	var input models.BalanceInput
	if err := bindOptionalJSON(c, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	members := input.Members
	if members == nil {
		all, err := h.Store.ListMembers(c.Request.Context())
		if err != nil {
			h.writeError(c, err)
			return
		}
		members = all
	}

	c.JSON(http.StatusOK, h.balance(members, input.TeamCount))
}

// BalanceEventTeams splits an event's attendees into teams without saving them
func (h *Handler) BalanceEventTeams(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.BalanceInput
	if err := bindOptionalJSON(c, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, attendees, ok := h.eventAttendees(c, eventID)
	if !ok {
		return
	}

	result := h.balance(attendees, input.TeamCount)
	c.JSON(http.StatusOK, gin.H{
		"event":         event,
		"attendees":     attendees,
		"teams":         result.Teams,
		"spread":        result.Spread,
		"balance_score": result.BalanceScore,
	})
}

// SaveEventTeams balances an event's attendees and persists the result
func (h *Handler) SaveEventTeams(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.BalanceInput
	if err := bindOptionalJSON(c, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, attendees, ok := h.eventAttendees(c, eventID)
	if !ok {
		return
	}
	if len(attendees) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "event has no attendees"})
		return
	}

	result := h.balance(attendees, input.TeamCount)
	setID, err := h.Store.SaveTeamSet(c.Request.Context(), eventID, result.Teams)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.Metrics.TeamSetSaved()

	h.Log.Info().
		Uint("event_id", eventID).
		Uint("set_id", setID).
		Int("teams", len(result.Teams)).
		Int("spread", result.Spread).
		Msg("team set saved")

	c.JSON(http.StatusCreated, gin.H{
		"set_id":        setID,
		"event_id":      eventID,
		"teams":         result.Teams,
		"spread":        result.Spread,
		"balance_score": result.BalanceScore,
	})
}

// ListTeamSets returns the saved team sets of an event, most recent first
func (h *Handler) ListTeamSets(c *gin.Context) {
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

	sets, err := h.Store.GetTeamSetsForEvent(ctx, eventID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event, "team_sets": sets})
}

// GetTeamSet returns one saved team set with its teams
func (h *Handler) GetTeamSet(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	setID, ok := paramID(c, "set_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	event, err := h.Store.GetEvent(ctx, eventID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	set, err := h.Store.GetTeamSet(ctx, setID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if set.EventID != eventID {
		h.writeError(c, fmt.Errorf("team set %d does not belong to event %d: %w", setID, eventID, database.ErrNotFound))
		return
	}

	groups, err := h.Store.GetTeamMembersForSet(ctx, setID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	teams := make([]savedTeam, len(groups))
	for i, g := range groups {
		teams[i] = savedTeam{TeamIndex: g.TeamIndex, Members: g.Members, TotalSkill: g.TotalSkill()}
	}

	c.JSON(http.StatusOK, gin.H{
		"event":    event,
		"team_set": set,
		"teams":    teams,
	})
}

// GetTeamBalance returns per-team skill totals of the event's most recent
// saved set, suitable for charting
func (h *Handler) GetTeamBalance(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.Store.GetEvent(ctx, eventID); err != nil {
		h.writeError(c, err)
		return
	}

	set, err := h.Store.LatestTeamSet(ctx, eventID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	groups, err := h.Store.GetTeamMembersForSet(ctx, set.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	teams := balancer.FromGroups(groups)

	labels := make([]string, len(groups))
	scores := make([]int, len(groups))
	for i, g := range groups {
		labels[i] = fmt.Sprintf("Team %d", g.TeamIndex+1)
		scores[i] = teams[i].TotalSkill
	}

	c.JSON(http.StatusOK, gin.H{
		"set_id":        set.ID,
		"labels":        labels,
		"scores":        scores,
		"spread":        balancer.Spread(teams),
		"balance_score": balancer.BalanceScore(teams),
	})
}

// eventAttendees loads an event and its attendees, writing the error response on failure
func (h *Handler) eventAttendees(c *gin.Context, eventID uint) (models.Event, []models.Member, bool) {
	ctx := c.Request.Context()

	event, err := h.Store.GetEvent(ctx, eventID)
	if err != nil {
		h.writeError(c, err)
		return models.Event{}, nil, false
	}

	attendees, err := h.Store.GetAttendees(ctx, eventID)
	if err != nil {
		h.writeError(c, err)
		return models.Event{}, nil, false
	}
	return event, attendees, true
}
