package adapthttp

import (
	"net/http"

	"nightcap/internal/domain"
)

func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	profile, err := s.profiles.Get(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var body struct {
		DisplayName        *string  `json:"displayName"`
		BiologicalSex      *string  `json:"biologicalSex"`
		WeightLbs          *float64 `json:"weightLbs"`
		HeightInches       *int     `json:"heightInches"`
		UniversityName     *string  `json:"universityName"`
		PersonalDrinkLimit *int     `json:"personalDrinkLimit"`
		ShowOnLeaderboard  *bool    `json:"showOnLeaderboard"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	upd := domain.ProfileUpdate{
		DisplayName:        body.DisplayName,
		WeightLbs:          body.WeightLbs,
		HeightInches:       body.HeightInches,
		UniversityName:     body.UniversityName,
		PersonalDrinkLimit: body.PersonalDrinkLimit,
		ShowOnLeaderboard:  body.ShowOnLeaderboard,
	}
	if body.BiologicalSex != nil {
		sex := domain.Sex(*body.BiologicalSex)
		if sex != domain.SexMale && sex != domain.SexFemale {
			writeError(w, http.StatusBadRequest, domain.ErrInvalidSex)
			return
		}
		upd.BiologicalSex = &sex
	}

	profile, err := s.profiles.Update(r.Context(), user.ID, upd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	limits, err := s.profiles.Limits(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, limits)
}
