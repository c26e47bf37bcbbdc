package models

import "time"

// AttendanceYes is the attendance status that makes a member an attendee
const AttendanceYes = "yes"

// AttendanceNone is reported for members without an attendance record
const AttendanceNone = "none"

// UnknownMemberName is shown for team members that no longer resolve
const UnknownMemberName = "unknown"

// Member represents a registered club member
type Member struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Skill    *int   `json:"skill"`
	Phone    string `json:"phone,omitempty"`
}

// SkillValue returns the member's skill, treating a missing rating as zero
func (m Member) SkillValue() int {
	if m.Skill == nil {
		return 0
	}
	return *m.Skill
}

// Team is one group of a balancing result
type Team struct {
	Members    []Member `json:"members"`
	TotalSkill int      `json:"total_skill"`
}

// Event is a scheduled club match or meeting
type Event struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date,omitempty"`
	Place string `json:"place,omitempty"`
	Memo  string `json:"memo,omitempty"`
}

// Attendance records a member's answer for an event
type Attendance struct {
	EventID  uint   `json:"event_id"`
	MemberID uint   `json:"member_id"`
	Status   string `json:"status"`
}

// MemberStatus pairs a member with their attendance status for one event
type MemberStatus struct {
	Member
	Status string `json:"status"`
}

// TeamSet is one saved balancing outcome for an event
type TeamSet struct {
	ID        uint      `json:"id"`
	EventID   uint      `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamGroup is a saved team read back from storage
type TeamGroup struct {
	TeamIndex int      `json:"team_index"`
	Members   []Member `json:"members"`
}

// TotalSkill sums the current skill of the group's members
func (g TeamGroup) TotalSkill() int {
	total := 0
	for _, m := range g.Members {
		total += m.SkillValue()
	}
	return total
}

// BalanceInput is the data structure for the balancing endpoints
type BalanceInput struct {
	TeamCount int      `json:"team_count"`
	Members   []Member `json:"members"`
}

// BalanceResponse is the data structure for a balancing result
type BalanceResponse struct {
	Teams        []Team  `json:"teams"`
	Spread       int     `json:"spread"`
	BalanceScore float64 `json:"balance_score"`
}
