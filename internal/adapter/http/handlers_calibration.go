package adapthttp

import (
	"net/http"
)

func (s *Server) handleCalibrationSubmit(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var body struct {
		DrinksConsumed  int  `json:"drinksConsumed"`
		FeelingRating   int  `json:"feelingRating"`
		CouldHandleMore bool `json:"couldHandleMore"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.calibration.Submit(r.Context(), user.ID, body.DrinksConsumed, body.FeelingRating, body.CouldHandleMore)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCalibrationStatus(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	count, complete, err := s.calibration.Status(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionsCompleted":   count,
		"calibrationComplete": complete,
	})
}
