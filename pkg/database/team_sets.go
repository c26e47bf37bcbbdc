package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/club-teams-api/pkg/models"
	"gorm.io/gorm"
)

// SaveTeamSet persists a balancing result for an event and returns the new set id.
// The set row and its membership rows are written in one transaction. The
// event is not checked for existence here.
func (s *Store) SaveTeamSet(ctx context.Context, eventID uint, teams []models.Team) (uint, error) {
	set := TeamSet{
		EventID:   eventID,
		CreatedAt: s.now().Truncate(time.Second),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&set).Error; err != nil {
			return fmt.Errorf("failed to create team set: %w", err)
		}

		var rows []TeamMembership
		for idx, team := range teams {
			for _, m := range team.Members {
				rows = append(rows, TeamMembership{
					SetID:     set.ID,
					TeamIndex: idx,
					MemberID:  m.ID,
				})
			}
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, 500).Error; err != nil {
			return fmt.Errorf("failed to create team memberships: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return set.ID, nil
}

// GetTeamSetsForEvent lists the saved sets of an event, most recent first
func (s *Store) GetTeamSetsForEvent(ctx context.Context, eventID uint) ([]models.TeamSet, error) {
	var rows []TeamSet
	err := s.DB.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list team sets: %w", err)
	}

	sets := make([]models.TeamSet, len(rows))
	for i, r := range rows {
		sets[i] = r.toModel()
	}
	return sets, nil
}

// GetTeamSet returns a single team set or ErrNotFound
func (s *Store) GetTeamSet(ctx context.Context, setID uint) (models.TeamSet, error) {
	var row TeamSet
	err := s.DB.WithContext(ctx).Where("id = ?", setID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TeamSet{}, fmt.Errorf("team set with ID %d does not exist: %w", setID, ErrNotFound)
		}
		return models.TeamSet{}, fmt.Errorf("failed to retrieve team set: %w", err)
	}
	return row.toModel(), nil
}

// LatestTeamSet returns the most recently saved set of an event or ErrNotFound
func (s *Store) LatestTeamSet(ctx context.Context, eventID uint) (models.TeamSet, error) {
	var row TeamSet
	err := s.DB.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id desc").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TeamSet{}, fmt.Errorf("event %d has no saved team sets: %w", eventID, ErrNotFound)
		}
		return models.TeamSet{}, fmt.Errorf("failed to retrieve team set: %w", err)
	}
	return row.toModel(), nil
}

// GetTeamMembersForSet reads a saved set back grouped by team index. Members
// are resolved against the current members table; ids that no longer exist
// come back as an "unknown" placeholder. An unknown set yields no groups.
func (s *Store) GetTeamMembersForSet(ctx context.Context, setID uint) ([]models.TeamGroup, error) {
	db := s.DB.WithContext(ctx)

	var rows []TeamMembership
	err := db.Where("set_id = ?", setID).
		Order("team_index, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list team memberships: %w", err)
	}

	groups := []models.TeamGroup{}
	if len(rows) == 0 {
		return groups, nil
	}

	memberIDs := make([]uint, 0, len(rows))
	for _, r := range rows {
		memberIDs = append(memberIDs, r.MemberID)
	}

	var members []Member
	if err := db.Where("id IN ?", memberIDs).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve team members: %w", err)
	}
	byID := make(map[uint]models.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m.toModel()
	}

	for _, r := range rows {
		member, ok := byID[r.MemberID]
		if !ok {
			member = models.Member{ID: r.MemberID, Name: models.UnknownMemberName}
		}

		if n := len(groups); n == 0 || groups[n-1].TeamIndex != r.TeamIndex {
			groups = append(groups, models.TeamGroup{TeamIndex: r.TeamIndex})
		}
		last := &groups[len(groups)-1]
		last.Members = append(last.Members, member)
	}

	return groups, nil
}

func (r TeamSet) toModel() models.TeamSet {
	return models.TeamSet{
		ID:        r.ID,
		EventID:   r.EventID,
		CreatedAt: r.CreatedAt,
	}
}
