package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/susu3304/studybot/internal/mogakco"
	"github.com/susu3304/studybot/internal/settlement"
	"github.com/susu3304/studybot/internal/study"
)

// Public handlers
func (a *API) handleAttendanceSettlement(w http.ResponseWriter, r *http.Request) {
	var sheet settlement.AttendanceSheet
	if err := json.NewDecoder(r.Body).Decode(&sheet); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	report, err := sheet.Settle(a.config.Policy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleMissionSettlement(w http.ResponseWriter, r *http.Request) {
	var sheet settlement.MissionSheet
	if err := json.NewDecoder(r.Body).Decode(&sheet); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	report, err := sheet.Settle(a.config.Policy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type studyView struct {
	ChannelID      string            `json:"channel_id"`
	Title          string            `json:"title"`
	OrganizerID    string            `json:"organizer_id"`
	Status         study.Status      `json:"status"`
	TotalSessions  int               `json:"total_sessions"`
	CurrentSession int               `json:"current_session"`
	DepositAmount  int64             `json:"deposit_amount"`
	Participants   []string          `json:"participants"`
	Attendance     map[string][]bool `json:"attendance"`
	SessionDates   []time.Time       `json:"session_dates"`
	Applications   int               `json:"pending_applications"`
}

// Protected handlers
func (a *API) handleGetStudy(w http.ResponseWriter, r *http.Request) {
	st, ok := a.memberStudy(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, studyView{
		ChannelID:      st.ChannelID,
		Title:          st.Title,
		OrganizerID:    st.OrganizerID,
		Status:         st.Status,
		TotalSessions:  st.TotalSessions,
		CurrentSession: st.CurrentSession,
		DepositAmount:  st.DepositAmount,
		Participants:   st.Participants,
		Attendance:     st.Attendance,
		SessionDates:   st.SessionDates,
		Applications:   len(st.Applications),
	})
}

func (a *API) handleStudySettlement(w http.ResponseWriter, r *http.Request) {
	st, ok := a.memberStudy(w, r)
	if !ok {
		return
	}
	results, err := a.studies.Settlement(st.ChannelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlement.AttendanceReport{
		Results:      results,
		TotalRefund:  settlement.TotalRefund(results),
		TotalPenalty: settlement.TotalPenalty(results),
	})
}

func (a *API) handleSetAttendance(w http.ResponseWriter, r *http.Request) {
	st, ok := a.memberStudy(w, r)
	if !ok {
		return
	}
	if claimsFrom(r.Context()).UserID != st.OrganizerID {
		http.Error(w, "only the organizer can edit attendance", http.StatusForbidden)
		return
	}

	var req struct {
		UserID   string `json:"user_id"`
		Session  int    `json:"session"`
		Attended bool   `json:"attended"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.studies.SetAttendance(st.ChannelID, req.UserID, req.Session, req.Attended); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "attendance updated",
	})
}

func (a *API) handleStudyHistory(w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["channel_id"]
	history, err := a.history.ListAttendanceSettlements(r.Context(), channelID)
	if err != nil {
		log.Printf("list settlements for %s: %v", channelID, err)
		http.Error(w, "failed to list settlements", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (a *API) handleRoomStandings(w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["channel_id"]
	standings, err := a.rooms.Standings(r.Context(), channelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

// memberStudy loads the study of the request's channel and checks that the
// caller organises or attends it. It writes the error response itself.
func (a *API) memberStudy(w http.ResponseWriter, r *http.Request) (study.Study, bool) {
	st, err := a.studies.Get(mux.Vars(r)["channel_id"])
	if err != nil {
		writeError(w, err)
		return study.Study{}, false
	}
	userID := claimsFrom(r.Context()).UserID
	if userID == st.OrganizerID {
		return st, true
	}
	for _, p := range st.Participants {
		if p == userID {
			return st, true
		}
	}
	http.Error(w, "forbidden", http.StatusForbidden)
	return study.Study{}, false
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, study.ErrStudyNotFound), errors.Is(err, mogakco.ErrNoActiveRoom):
		status = http.StatusNotFound
	case errors.Is(err, study.ErrStudyCompleted):
		status = http.StatusConflict
	case errors.Is(err, study.ErrNotParticipant), errors.Is(err, study.ErrSessionOutOfRange):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("api error: %v", err)
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}
