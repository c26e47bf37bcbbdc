package balancer

import (
	"math"
	"sort"

	"github.com/arnavshah/club-teams-api/pkg/models"
)

// MinTeamCount is the fewest teams a balancing run ever produces
const MinTeamCount = 2

// AssignTeams splits members into teamCount skill-balanced teams.
// Members are taken strongest first and each one joins the team with the
// lowest running skill total (the first such team on ties). Members without a
// skill rating count as zero. The caller's slice and members are not modified.
func AssignTeams(members []models.Member, teamCount int) []models.Team {
	if teamCount < MinTeamCount {
		teamCount = MinTeamCount
	}

	sorted := normalize(members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SkillValue() > sorted[j].SkillValue()
	})

	teams := make([]models.Team, teamCount)
	for i := range teams {
		teams[i].Members = []models.Member{}
	}

	for _, m := range sorted {
		idx := lowestTeam(teams)
		teams[idx].Members = append(teams[idx].Members, m)
		teams[idx].TotalSkill += m.SkillValue()
	}

	return teams
}

// normalize copies members, filling in a zero skill where none is set
func normalize(members []models.Member) []models.Member {
	out := make([]models.Member, len(members))
	for i, m := range members {
		skill := m.SkillValue()
		m.Skill = &skill
		out[i] = m
	}
	return out
}

func lowestTeam(teams []models.Team) int {
	best := 0
	for i := 1; i < len(teams); i++ {
		if teams[i].TotalSkill < teams[best].TotalSkill {
			best = i
		}
	}
	return best
}

// Spread returns the gap between the strongest and weakest team totals
func Spread(teams []models.Team) int {
	if len(teams) == 0 {
		return 0
	}
	lo, hi := teams[0].TotalSkill, teams[0].TotalSkill
	for _, t := range teams[1:] {
		if t.TotalSkill < lo {
			lo = t.TotalSkill
		}
		if t.TotalSkill > hi {
			hi = t.TotalSkill
		}
	}
	return hi - lo
}

// BalanceScore returns a percentage (0-100) representing how evenly skill is
// spread across teams. 100% means every team has the same total.
func BalanceScore(teams []models.Team) float64 {
	if len(teams) == 0 {
		return 100.0
	}

	var sum float64
	for _, t := range teams {
		sum += float64(t.TotalSkill)
	}

	if sum == 0 {
		return 100.0
	}

	mean := sum / float64(len(teams))

	var varianceSum float64
	for _, t := range teams {
		diff := float64(t.TotalSkill) - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(teams)))

	// 0% once the standard deviation reaches the mean
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

// FromGroups rebuilds teams from saved groups, recomputing each total from
// the members' current skill
func FromGroups(groups []models.TeamGroup) []models.Team {
	teams := make([]models.Team, len(groups))
	for i, g := range groups {
		teams[i] = models.Team{Members: g.Members, TotalSkill: g.TotalSkill()}
	}
	return teams
}
