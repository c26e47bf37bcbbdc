package handlers

import (
	"fmt"
	"net/http"

	"github.com/arnavshah/club-teams-api/pkg/balancer"
	"github.com/arnavshah/club-teams-api/pkg/models"
	"github.com/gin-gonic/gin"
)

// ValidateBalanceInput checks a balancing request without running it
func (h *Handler) ValidateBalanceInput(c *gin.Context) {
	var input models.BalanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if len(input.Members) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one member is required",
		})
		return
	}

	// Check for duplicate IDs
	memberIDs := make(map[uint]bool)
	totalSkill := 0
	unrated := 0
	for _, m := range input.Members {
		if memberIDs[m.ID] {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": fmt.Sprintf("Duplicate member ID: %d", m.ID)})
			return
		}
		memberIDs[m.ID] = true

		if m.Skill == nil {
			unrated++
		}
		totalSkill += m.SkillValue()
	}

	teamCount := input.TeamCount
	if teamCount <= 0 {
		teamCount = h.DefaultTeamCount
	}
	if teamCount < balancer.MinTeamCount {
		teamCount = balancer.MinTeamCount
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"member_count":    len(input.Members),
			"team_count":      teamCount,
			"total_skill":     totalSkill,
			"unrated_members": unrated,
		},
	})
}
