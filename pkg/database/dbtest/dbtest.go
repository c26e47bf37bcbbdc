package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arnavshah/club-teams-api/pkg/database"
	"github.com/arnavshah/club-teams-api/pkg/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// ConnectForTests opens a fresh sqlite database in a temporary directory
func ConnectForTests(t *testing.T) *database.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "club.db")
	conn, err := database.Open(database.Options{DataPath: path}, zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return database.NewStore(conn)
}

// Skill returns a pointer to v for building members
func Skill(v int) *int {
	return &v
}

// CreateMembers registers members and returns them with their assigned ids
func CreateMembers(t *testing.T, store *database.Store, members ...models.Member) []models.Member {
	t.Helper()

	var created []models.Member
	for _, m := range members {
		if m.Name == "" {
			m.Name = "member"
		}
		record, err := store.CreateMember(context.Background(), m)
		require.NoError(t, err)
		created = append(created, record)
	}
	return created
}

// CreateEvent schedules an event with a default title when none is given
func CreateEvent(t *testing.T, store *database.Store, event models.Event) models.Event {
	t.Helper()

	if event.Title == "" {
		event.Title = "Friday match"
	}
	record, err := store.CreateEvent(context.Background(), event)
	require.NoError(t, err)
	return record
}

// Attend marks every given member as attending the event
func Attend(t *testing.T, store *database.Store, eventID uint, members ...models.Member) {
	t.Helper()

	for _, m := range members {
		require.NoError(t, store.SetAttendance(context.Background(), eventID, m.ID, models.AttendanceYes))
	}
}
