package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/arnavshah/club-teams-api/pkg/database/dbtest"
	"github.com/arnavshah/club-teams-api/pkg/metrics"
	"github.com/arnavshah/club-teams-api/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	h      *Handler
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	h := &Handler{
		Store:            dbtest.ConnectForTests(t),
		Log:              zerolog.Nop(),
		Metrics:          metrics.New(),
		DefaultTeamCount: 2,
	}
	return &testServer{h: h, router: NewRouter(h)}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func teamIDs(team models.Team) []uint {
	out := make([]uint, 0, len(team.Members))
	for _, m := range team.Members {
		out = append(out, m.ID)
	}
	return out
}

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, Version, decode[map[string]string](t, rec)["version"])

	rec = s.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestMembers(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/members", map[string]any{"name": "Han", "position": "FW", "skill": 7})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Member](t, rec)
	require.NotZero(t, created.ID)
	require.Equal(t, 7, created.SkillValue())

	rec = s.do(t, http.MethodPost, "/members", map[string]any{"name": "Yoon"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Nil(t, decode[models.Member](t, rec).Skill)

	rec = s.do(t, http.MethodPost, "/members", map[string]any{"position": "DF"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/members", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Members []models.Member `json:"members"`
	}](t, rec)
	require.Len(t, list.Members, 2)
	require.Equal(t, "Han", list.Members[0].Name)
}

func TestEvents(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/events", map[string]any{"title": "Sunday league", "date": "2026-04-05"})
	require.Equal(t, http.StatusCreated, rec.Code)
	event := decode[models.Event](t, rec)

	rec = s.do(t, http.MethodPost, "/events", map[string]any{"place": "nowhere"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	members := dbtest.CreateMembers(t, s.h.Store, models.Member{Name: "a"}, models.Member{Name: "b"})

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/events/%d/attendance", event.ID), map[string]any{"member_id": members[1].ID, "status": "yes"})
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("detail with statuses", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, fmt.Sprintf("/events/%d", event.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		detail := decode[struct {
			Event   models.Event          `json:"event"`
			Members []models.MemberStatus `json:"members"`
		}](t, rec)
		require.Equal(t, "Sunday league", detail.Event.Title)
		require.Len(t, detail.Members, 2)
		require.Equal(t, models.AttendanceNone, detail.Members[0].Status)
		require.Equal(t, "yes", detail.Members[1].Status)
	})

	t.Run("attendees", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, fmt.Sprintf("/events/%d/attendees", event.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[struct {
			Attendees []models.Member `json:"attendees"`
		}](t, rec)
		require.Len(t, body.Attendees, 1)
		require.Equal(t, members[1].ID, body.Attendees[0].ID)
	})

	t.Run("not found", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/events/999", nil).Code)
		require.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/events/999/attendance", map[string]any{"member_id": 1, "status": "yes"}).Code)
		require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/events/999/teams/saved", nil).Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/events/abc", nil).Code)
		require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/events/0/attendees", nil).Code)
	})

	t.Run("attendance requires fields", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, fmt.Sprintf("/events/%d/attendance", event.ID), map[string]any{"status": "yes"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBalanceTeams(t *testing.T) {
	s := newTestServer(t)

	t.Run("explicit members", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/teams", map[string]any{
			"team_count": 2,
			"members": []map[string]any{
				{"id": 1, "name": "A", "skill": 9},
				{"id": 2, "name": "B", "skill": 7},
				{"id": 3, "name": "C", "skill": 5},
				{"id": 4, "name": "D", "skill": 3},
			},
		})
		require.Equal(t, http.StatusOK, rec.Code)

		result := decode[models.BalanceResponse](t, rec)
		require.Len(t, result.Teams, 2)
		require.Equal(t, []uint{1, 4}, teamIDs(result.Teams[0]))
		require.Equal(t, []uint{2, 3}, teamIDs(result.Teams[1]))
		require.Zero(t, result.Spread)
		require.Equal(t, 100.0, result.BalanceScore)
	})

	t.Run("all members with default team count", func(t *testing.T) {
		dbtest.CreateMembers(t, s.h.Store,
			models.Member{Name: "x", Skill: dbtest.Skill(4)},
			models.Member{Name: "y"},
			models.Member{Name: "z", Skill: dbtest.Skill(1)},
		)

		rec := s.do(t, http.MethodPost, "/teams", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		result := decode[models.BalanceResponse](t, rec)
		require.Len(t, result.Teams, 2)
		require.Equal(t, 4, result.Teams[0].TotalSkill)
		require.Equal(t, 1, result.Teams[1].TotalSkill)
		require.Len(t, result.Teams[1].Members, 2)
	})

	t.Run("empty member list", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/teams", map[string]any{"team_count": 3, "members": []any{}})
		require.Equal(t, http.StatusOK, rec.Code)

		result := decode[models.BalanceResponse](t, rec)
		require.Len(t, result.Teams, 3)
		for _, team := range result.Teams {
			require.Empty(t, team.Members)
			require.Zero(t, team.TotalSkill)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/teams", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestValidateBalanceInput(t *testing.T) {
	s := newTestServer(t)

	type response struct {
		Valid bool           `json:"valid"`
		Error string         `json:"error"`
		Stats map[string]int `json:"stats"`
	}

	rec := s.do(t, http.MethodPost, "/teams/validate", map[string]any{"members": []any{}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decode[response](t, rec).Valid)

	rec = s.do(t, http.MethodPost, "/teams/validate", map[string]any{
		"members": []map[string]any{{"id": 1, "skill": 2}, {"id": 1}},
	})
	body := decode[response](t, rec)
	require.False(t, body.Valid)
	require.Equal(t, "Duplicate member ID: 1", body.Error)

	rec = s.do(t, http.MethodPost, "/teams/validate", map[string]any{
		"team_count": 1,
		"members":    []map[string]any{{"id": 1, "skill": 2}, {"id": 2}, {"id": 3, "skill": 6}},
	})
	body = decode[response](t, rec)
	require.True(t, body.Valid)
	require.Equal(t, 3, body.Stats["member_count"])
	require.Equal(t, 2, body.Stats["team_count"])
	require.Equal(t, 8, body.Stats["total_skill"])
	require.Equal(t, 1, body.Stats["unrated_members"])
}

func TestEventTeamSets(t *testing.T) {
	s := newTestServer(t)
	store := s.h.Store

	event := dbtest.CreateEvent(t, store, models.Event{Title: "Cup final"})
	other := dbtest.CreateEvent(t, store, models.Event{Title: "Friendly"})
	members := dbtest.CreateMembers(t, store,
		models.Member{Name: "A", Skill: dbtest.Skill(9)},
		models.Member{Name: "B", Skill: dbtest.Skill(7)},
		models.Member{Name: "C", Skill: dbtest.Skill(5)},
		models.Member{Name: "D", Skill: dbtest.Skill(3)},
		models.Member{Name: "absent", Skill: dbtest.Skill(10)},
	)
	dbtest.Attend(t, store, event.ID, members[:4]...)
	require.NoError(t, store.SetAttendance(context.Background(), event.ID, members[4].ID, "no"))

	base := fmt.Sprintf("/events/%d", event.ID)

	t.Run("no saved sets yet", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, base+"/teams/balance", nil).Code)
	})

	t.Run("balance attendees", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, base+"/teams", map[string]any{"team_count": 2})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[struct {
			Attendees []models.Member `json:"attendees"`
			Teams     []models.Team   `json:"teams"`
		}](t, rec)
		require.Len(t, body.Attendees, 4)
		require.Equal(t, []uint{members[0].ID, members[3].ID}, teamIDs(body.Teams[0]))
		require.Equal(t, []uint{members[1].ID, members[2].ID}, teamIDs(body.Teams[1]))
	})

	var setID uint
	t.Run("save", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, base+"/teams/save", nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decode[struct {
			SetID uint          `json:"set_id"`
			Teams []models.Team `json:"teams"`
		}](t, rec)
		require.NotZero(t, body.SetID)
		require.Len(t, body.Teams, 2)
		setID = body.SetID
	})

	t.Run("list saved", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, base+"/teams/saved", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[struct {
			TeamSets []models.TeamSet `json:"team_sets"`
		}](t, rec)
		require.Len(t, body.TeamSets, 1)
		require.Equal(t, setID, body.TeamSets[0].ID)
		require.Equal(t, event.ID, body.TeamSets[0].EventID)
	})

	t.Run("saved detail", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, fmt.Sprintf("%s/teams/saved/%d", base, setID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[struct {
			Teams []savedTeam `json:"teams"`
		}](t, rec)
		require.Len(t, body.Teams, 2)
		require.Equal(t, 0, body.Teams[0].TeamIndex)
		require.Equal(t, 12, body.Teams[0].TotalSkill)
		require.Equal(t, members[0].ID, body.Teams[0].Members[0].ID)
		require.Equal(t, 1, body.Teams[1].TeamIndex)
		require.Equal(t, 12, body.Teams[1].TotalSkill)
	})

	t.Run("saved detail not found", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, base+"/teams/saved/9999", nil).Code)
		require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, fmt.Sprintf("/events/%d/teams/saved/%d", other.ID, setID), nil).Code)
	})

	t.Run("balance chart", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, base+"/teams/balance", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[struct {
			SetID  uint     `json:"set_id"`
			Labels []string `json:"labels"`
			Scores []int    `json:"scores"`
			Spread int      `json:"spread"`
		}](t, rec)
		require.Equal(t, setID, body.SetID)
		require.Equal(t, []string{"Team 1", "Team 2"}, body.Labels)
		require.Equal(t, []int{12, 12}, body.Scores)
		require.Zero(t, body.Spread)
	})

	t.Run("summary", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, base+"/summary", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[struct {
			Attendance struct {
				Responses int            `json:"responses"`
				ByStatus  map[string]int `json:"by_status"`
				Attendees int            `json:"attendees"`
			} `json:"attendance"`
			TeamSets  int `json:"team_sets"`
			LatestSet struct {
				ID      uint `json:"id"`
				Teams   int  `json:"teams"`
				Members int  `json:"members"`
			} `json:"latest_set"`
		}](t, rec)
		require.Equal(t, 5, body.Attendance.Responses)
		require.Equal(t, 4, body.Attendance.Attendees)
		require.Equal(t, 1, body.Attendance.ByStatus["no"])
		require.Equal(t, 1, body.TeamSets)
		require.Equal(t, setID, body.LatestSet.ID)
		require.Equal(t, 2, body.LatestSet.Teams)
		require.Equal(t, 4, body.LatestSet.Members)
	})

	t.Run("save without attendees", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, fmt.Sprintf("/events/%d/teams/save", other.ID), map[string]any{"team_count": 3})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = s.do(t, http.MethodGet, fmt.Sprintf("/events/%d/summary", other.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Nil(t, decode[map[string]any](t, rec)["latest_set"])
	})

	t.Run("metrics", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "club_team_sets_saved_total 1")
		require.Contains(t, rec.Body.String(), "club_balance_runs_total 2")
	})
}
