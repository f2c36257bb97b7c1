package adapthttp

import (
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/mux"
	"golang.org/x/oauth2"

	"nightcap/internal/app"
)

// OIDCConfig carries the optional single sign-on configuration.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth        *app.AuthService
	profiles    *app.ProfileService
	drinks      *app.SessionService
	calibration *app.CalibrationService
	social      *app.SocialService
	alerts      *app.AlertService
	leaderboard *app.LeaderboardService
	oidcConfig  OIDCConfig
	webDir      string
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, profiles *app.ProfileService, drinks *app.SessionService,
	calibration *app.CalibrationService, social *app.SocialService, alerts *app.AlertService,
	leaderboard *app.LeaderboardService, oidcConfig OIDCConfig, webDir string) *Server {
	return &Server{
		auth:        auth,
		profiles:    profiles,
		drinks:      drinks,
		calibration: calibration,
		social:      social,
		alerts:      alerts,
		leaderboard: leaderboard,
		oidcConfig:  oidcConfig,
		webDir:      webDir,
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}).Methods(http.MethodGet)

	api.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/auth/config", s.handleAuthConfig).Methods(http.MethodGet)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin).Methods(http.MethodGet)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback).Methods(http.MethodGet)

	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(s.authMiddleware)

	authed.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)

	authed.HandleFunc("/profile", s.handleProfileGet).Methods(http.MethodGet)
	authed.HandleFunc("/profile", s.handleProfileUpdate).Methods(http.MethodPut)
	authed.HandleFunc("/profile/limits", s.handleLimits).Methods(http.MethodGet)

	authed.HandleFunc("/drinks/sessions", s.handleSessionStart).Methods(http.MethodPost)
	authed.HandleFunc("/drinks/sessions", s.handleSessionsRecent).Methods(http.MethodGet)
	authed.HandleFunc("/drinks/sessions/active", s.handleSessionActive).Methods(http.MethodGet)
	authed.HandleFunc("/drinks/sessions/{id}", s.handleSessionSummary).Methods(http.MethodGet)
	authed.HandleFunc("/drinks/sessions/{id}/end", s.handleSessionEnd).Methods(http.MethodPost)
	authed.HandleFunc("/drinks/log", s.handleLogDrink).Methods(http.MethodPost)

	authed.HandleFunc("/calibration", s.handleCalibrationSubmit).Methods(http.MethodPost)
	authed.HandleFunc("/calibration/status", s.handleCalibrationStatus).Methods(http.MethodGet)

	authed.HandleFunc("/social/friends", s.handleFriendRequest).Methods(http.MethodPost)
	authed.HandleFunc("/social/friends", s.handleFriendList).Methods(http.MethodGet)
	authed.HandleFunc("/social/friends/{id}/respond", s.handleFriendRespond).Methods(http.MethodPost)
	authed.HandleFunc("/social/friends/{id}/visibility", s.handleFriendVisibility).Methods(http.MethodPut)
	authed.HandleFunc("/social/privacy", s.handleNightOverride).Methods(http.MethodPost)
	authed.HandleFunc("/social/groups", s.handleGroupCreate).Methods(http.MethodPost)
	authed.HandleFunc("/social/groups", s.handleGroupList).Methods(http.MethodGet)
	authed.HandleFunc("/social/groups/{id}/members", s.handleGroupAddMember).Methods(http.MethodPost)

	authed.HandleFunc("/leaderboard/university", s.handleUniversityLeaderboard).Methods(http.MethodGet)
	authed.HandleFunc("/leaderboard/group/{id}", s.handleGroupLeaderboard).Methods(http.MethodGet)

	authed.HandleFunc("/alerts", s.handleAlerts).Methods(http.MethodGet)
	authed.HandleFunc("/alerts/{id}/read", s.handleAlertRead).Methods(http.MethodPost)

	if s.webDir != "" {
		r.PathPrefix("/").Handler(spaFromDisk(s.webDir))
	}

	return s.loggingMiddleware(withNoCache(r))
}
