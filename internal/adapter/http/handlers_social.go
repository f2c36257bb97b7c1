package adapthttp

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func int64Var(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[key], 10, 64)
}

func (s *Server) handleFriendRequest(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var body struct {
		AddresseeID int64 `json:"addresseeId"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	friendship, err := s.social.Request(r.Context(), user.ID, body.AddresseeID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, friendship)
}

func (s *Server) handleFriendList(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	friendships, err := s.social.Friends(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"friendships": friendships})
}

func (s *Server) handleFriendRespond(w http.ResponseWriter, r *http.Request) {
	id, err := int64Var(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid friendship id"))
		return
	}

	var body struct {
		Accept bool `json:"accept"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.social.Respond(r.Context(), id, body.Accept); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFriendVisibility(w http.ResponseWriter, r *http.Request) {
	id, err := int64Var(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid friendship id"))
		return
	}

	var body struct {
		CanSeeDrinks bool `json:"canSeeDrinks"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.social.SetVisibility(r.Context(), id, body.CanSeeDrinks); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNightOverride(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var body struct {
		SessionID string `json:"sessionId"`
		FriendID  int64  `json:"friendId"`
		CanSee    bool   `json:"canSee"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.social.SetNightOverride(r.Context(), user.ID, body.SessionID, body.FriendID, body.CanSee); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGroupCreate(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var body struct {
		Name string `json:"name"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	group, err := s.social.CreateGroup(r.Context(), user.ID, body.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (s *Server) handleGroupList(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	groups, err := s.social.Groups(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

func (s *Server) handleGroupAddMember(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id, err := int64Var(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid group id"))
		return
	}

	var body struct {
		UserID int64 `json:"userId"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.social.AddGroupMember(r.Context(), user.ID, id, body.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	limit := intQuery(r, "limit", 20)
	alerts, err := s.alerts.Alerts(r.Context(), user.ID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (s *Server) handleAlertRead(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	id, err := int64Var(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid alert id"))
		return
	}

	if err := s.alerts.MarkRead(r.Context(), user.ID, id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
