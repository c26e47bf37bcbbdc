package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/club-teams-api/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a referenced event or team set does not exist
var ErrNotFound = errors.New("not found")

// Store provides access to club data
type Store struct {
	DB  *gorm.DB
	now func() time.Time
}

// NewStore creates a Store over an open connection
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db, now: time.Now}
}

// WithClock returns a copy of the store that stamps records using now
func (s *Store) WithClock(now func() time.Time) *Store {
	return &Store{DB: s.DB, now: now}
}

// Ping checks the underlying connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// ListMembers returns all members ordered by id
func (s *Store) ListMembers(ctx context.Context) ([]models.Member, error) {
	var rows []Member
	if err := s.DB.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	members := make([]models.Member, len(rows))
	for i, r := range rows {
		members[i] = r.toModel()
	}
	return members, nil
}

// CreateMember registers a new member
func (s *Store) CreateMember(ctx context.Context, m models.Member) (models.Member, error) {
	row := Member{
		Name:     m.Name,
		Position: m.Position,
		Skill:    m.Skill,
		Phone:    m.Phone,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Member{}, fmt.Errorf("failed to create member: %w", err)
	}
	return row.toModel(), nil
}

// ListEvents returns all events, newest first
func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	var rows []Event
	if err := s.DB.WithContext(ctx).Order("id desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]models.Event, len(rows))
	for i, r := range rows {
		events[i] = r.toModel()
	}
	return events, nil
}

// CreateEvent schedules a new event
func (s *Store) CreateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	row := Event{
		Title: e.Title,
		Date:  e.Date,
		Place: e.Place,
		Memo:  e.Memo,
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	return row.toModel(), nil
}

// GetEvent returns a single event or ErrNotFound
func (s *Store) GetEvent(ctx context.Context, id uint) (models.Event, error) {
	var row Event
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Event{}, fmt.Errorf("event with ID %d does not exist: %w", id, ErrNotFound)
		}
		return models.Event{}, fmt.Errorf("failed to retrieve event: %w", err)
	}
	return row.toModel(), nil
}

// GetAttendanceForEvent returns every attendance answer recorded for an event
func (s *Store) GetAttendanceForEvent(ctx context.Context, eventID uint) ([]models.Attendance, error) {
	var rows []Attendance
	err := s.DB.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("member_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	out := make([]models.Attendance, len(rows))
	for i, r := range rows {
		out[i] = models.Attendance{EventID: r.EventID, MemberID: r.MemberID, Status: r.Status}
	}
	return out, nil
}

// SetAttendance records a member's status for an event, replacing any earlier answer
func (s *Store) SetAttendance(ctx context.Context, eventID, memberID uint, status string) error {
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "member_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status"}),
	}).Create(&Attendance{
		EventID:  eventID,
		MemberID: memberID,
		Status:   status,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to set attendance: %w", err)
	}
	return nil
}

// GetAttendees returns the members who answered yes for an event, ordered by id
func (s *Store) GetAttendees(ctx context.Context, eventID uint) ([]models.Member, error) {
	var rows []Member
	err := s.DB.WithContext(ctx).
		Joins("JOIN attendance ON attendance.member_id = members.id").
		Where("attendance.event_id = ? AND attendance.status = ?", eventID, models.AttendanceYes).
		Order("members.id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}

	members := make([]models.Member, len(rows))
	for i, r := range rows {
		members[i] = r.toModel()
	}
	return members, nil
}

func (r Member) toModel() models.Member {
	return models.Member{
		ID:       r.ID,
		Name:     r.Name,
		Position: r.Position,
		Skill:    r.Skill,
		Phone:    r.Phone,
	}
}

func (r Event) toModel() models.Event {
	return models.Event{
		ID:    r.ID,
		Title: r.Title,
		Date:  r.Date,
		Place: r.Place,
		Memo:  r.Memo,
	}
}
