package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/susu3304/studybot/internal/config"
	"github.com/susu3304/studybot/internal/db"
	"github.com/susu3304/studybot/internal/mogakco"
	"github.com/susu3304/studybot/internal/settlement"
	"github.com/susu3304/studybot/internal/study"
)

type fakeHistory struct {
	rows []db.StudySettlement
	err  error
}

func (f *fakeHistory) ListAttendanceSettlements(ctx context.Context, channelID string) ([]db.StudySettlement, error) {
	var out []db.StudySettlement
	for _, s := range f.rows {
		if s.ChannelID == channelID {
			out = append(out, s)
		}
	}
	return out, f.err
}

type fakeRooms map[string][]settlement.Standing

func (f fakeRooms) Standings(ctx context.Context, channelID string) ([]settlement.Standing, error) {
	st, ok := f[channelID]
	if !ok {
		return nil, mogakco.ErrNoActiveRoom
	}
	return st, nil
}

func newTestAPI(t *testing.T) (*API, *study.Service) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret", Policy: settlement.DefaultPolicy()}
	studies := study.NewService(cfg.Policy)
	if _, err := studies.Create("c1", "Go study", 4, 50000, "org", []string{"kim", "lee"}); err != nil {
		t.Fatal(err)
	}
	if _, err := studies.AddSession("c1", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	history := &fakeHistory{rows: []db.StudySettlement{{ID: 7, ChannelID: "c1", Title: "Go study"}}}
	rooms := fakeRooms{"r1": {{Participant: "kim", TotalScore: 100, Rank: 1, Reward: 5000}}}
	return New(cfg, history, studies, rooms), studies
}

func do(t *testing.T, a *API, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := a.issueToken(userID, userID, time.Now())
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleAttendanceSettlement(t *testing.T) {
	a, _ := newTestAPI(t)
	body := `{"participants":["kim","lee"],"records":{"kim":[true,true,true,true],"lee":[true,false]},"total_sessions":4,"deposit_amount":50000}`

	w := do(t, a, "POST", "/api/settlements/attendance", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var report settlement.AttendanceReport
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Results[0].Refund != 50000 || report.Results[1].Refund != 20000 {
		t.Errorf("results = %+v", report.Results)
	}
	if report.TotalPenalty != 30000 {
		t.Errorf("TotalPenalty = %d", report.TotalPenalty)
	}
}

func TestHandleAttendanceSettlementInvalid(t *testing.T) {
	a, _ := newTestAPI(t)
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"participants":`},
		{"zero sessions", `{"participants":["a"],"total_sessions":0,"deposit_amount":1}`},
		{"duplicate participant", `{"participants":["a","a"],"total_sessions":1,"deposit_amount":1}`},
		{"negative deposit", `{"participants":["a"],"total_sessions":1,"deposit_amount":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, a, "POST", "/api/settlements/attendance", "", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestHandleMissionSettlement(t *testing.T) {
	a, _ := newTestAPI(t)
	body := `{
		"participants": ["me", "kim"],
		"missions": [{"id": "m1", "title": "tests", "progress": {"me": 100, "kim": 100}}],
		"base_scores": [{"participant": "kim", "score": 30}]
	}`
	w := do(t, a, "POST", "/api/settlements/missions", "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var report settlement.MissionReport
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if len(report.Standings) != 2 {
		t.Fatalf("standings = %+v", report.Standings)
	}
	if first := report.Standings[0]; first.Participant != "kim" || first.TotalScore != 110 || first.Reward != 5000 {
		t.Errorf("first = %+v", first)
	}

	bad := `{"reward_tiers":[{"rank":3,"amount":1}]}`
	if w := do(t, a, "POST", "/api/settlements/missions", "", bad); w.Code != http.StatusBadRequest {
		t.Errorf("invalid tiers status = %d, want 400", w.Code)
	}
}

func TestProtectedRequiresToken(t *testing.T) {
	a, _ := newTestAPI(t)
	if w := do(t, a, "GET", "/api/studies/c1", "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/studies/c1", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}
}

func TestHandleGetStudy(t *testing.T) {
	a, _ := newTestAPI(t)
	tests := []struct {
		name   string
		path   string
		user   string
		status int
	}{
		{"participant", "/api/studies/c1", "kim", http.StatusOK},
		{"organizer", "/api/studies/c1", "org", http.StatusOK},
		{"outsider", "/api/studies/c1", "stranger", http.StatusForbidden},
		{"unknown channel", "/api/studies/nope", "kim", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, a, "GET", tt.path, tt.user, "")
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var v studyView
			if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
				t.Fatal(err)
			}
			if v.Title != "Go study" || v.CurrentSession != 1 || len(v.Participants) != 2 {
				t.Errorf("view = %+v", v)
			}
		})
	}
}

func TestHandleSetAttendanceAndSettlement(t *testing.T) {
	a, studies := newTestAPI(t)

	body := `{"user_id":"kim","session":1,"attended":true}`
	if w := do(t, a, "POST", "/api/studies/c1/attendance", "kim", body); w.Code != http.StatusForbidden {
		t.Errorf("participant edit status = %d, want 403", w.Code)
	}
	if w := do(t, a, "POST", "/api/studies/c1/attendance", "org", body); w.Code != http.StatusOK {
		t.Fatalf("organizer edit status = %d, body = %s", w.Code, w.Body.String())
	}
	st, _ := studies.Get("c1")
	if !st.Attendance["kim"][0] {
		t.Error("attendance was not recorded")
	}

	outOfRange := `{"user_id":"kim","session":3,"attended":true}`
	if w := do(t, a, "POST", "/api/studies/c1/attendance", "org", outOfRange); w.Code != http.StatusBadRequest {
		t.Errorf("out of range status = %d, want 400", w.Code)
	}

	w := do(t, a, "GET", "/api/studies/c1/settlement", "lee", "")
	if w.Code != http.StatusOK {
		t.Fatalf("settlement status = %d", w.Code)
	}
	var report settlement.AttendanceReport
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.TotalRefund != 30000 {
		t.Errorf("TotalRefund = %d, want 30000: %+v", report.TotalRefund, report.Results)
	}
}

func TestHandleStudyHistory(t *testing.T) {
	a, _ := newTestAPI(t)
	w := do(t, a, "GET", "/api/studies/c1/history", "kim", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []db.StudySettlement
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 7 {
		t.Errorf("history = %+v", got)
	}

	a.history = &fakeHistory{err: errors.New("connection refused")}
	if w := do(t, a, "GET", "/api/studies/c1/history", "kim", ""); w.Code != http.StatusInternalServerError {
		t.Errorf("failing store status = %d, want 500", w.Code)
	}
}

func TestHandleRoomStandings(t *testing.T) {
	a, _ := newTestAPI(t)
	w := do(t, a, "GET", "/api/rooms/r1/standings", "kim", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []settlement.Standing
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Reward != 5000 {
		t.Errorf("standings = %+v", got)
	}

	if w := do(t, a, "GET", "/api/rooms/none/standings", "kim", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing room status = %d, want 404", w.Code)
	}
}

func TestGenerateRandomString(t *testing.T) {
	s := generateRandomString(32)
	if len(s) != 32 {
		t.Errorf("len = %d, want 32", len(s))
	}
	if s == generateRandomString(32) {
		t.Error("two random strings are equal")
	}
}
