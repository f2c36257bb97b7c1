package adapthttp

import (
	"errors"
	"net/http"

	"nightcap/internal/domain"
)

func (s *Server) handleUniversityLeaderboard(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing university name"))
		return
	}

	entries, err := s.leaderboard.University(r.Context(), name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleGroupLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := int64Var(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid group id"))
		return
	}

	entries, err := s.leaderboard.Group(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
