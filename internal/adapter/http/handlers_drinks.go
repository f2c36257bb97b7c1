package adapthttp

import (
	"net/http"

	"github.com/gorilla/mux"

	"nightcap/internal/domain"
)

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	session, err := s.drinks.Start(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleSessionsRecent(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	limit := intQuery(r, "limit", 20)
	sessions, err := s.drinks.Recent(r.Context(), user.ID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleSessionActive(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	session, err := s.drinks.Active(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if session == nil {
		writeJSON(w, http.StatusOK, map[string]any{"session": nil})
		return
	}

	bac, err := s.drinks.CurrentBAC(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":    session,
		"currentBac": bac,
		"status":     domain.StatusForBAC(bac),
	})
}

func (s *Server) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	summary, err := s.drinks.Summarize(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id := mux.Vars(r)["id"]

	active, err := s.drinks.Active(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if active == nil || active.ID != id {
		writeDomainError(w, domain.ErrSessionNotFound)
		return
	}

	session, err := s.drinks.End(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogDrink(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var body struct {
		DrinkType string  `json:"drinkType"`
		Quantity  float64 `json:"quantity"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.drinks.LogDrink(r.Context(), user.ID, domain.DrinkType(body.DrinkType), body.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
