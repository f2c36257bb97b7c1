package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	adapthttp "nightcap/internal/adapter/http"
	"nightcap/internal/adapter/postgres"
	"nightcap/internal/adapter/sqlite"
	"nightcap/internal/app"
	"nightcap/internal/domain"
)

var (
	serveAddr   string
	serveWebDir string
	sqlitePath  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", env("ADDR", ":8080"), "listen address")
	serveCmd.Flags().StringVar(&serveWebDir, "web-dir", env("WEB_DIR", "web"), "static frontend directory")
	serveCmd.Flags().StringVar(&sqlitePath, "sqlite", env("SQLITE_PATH", "nightcap.db"), "SQLite path used when DATABASE_URL is unset")
	rootCmd.AddCommand(serveCmd)
}

// repos is the full set of persistence ports, satisfied by either the
// postgres or the sqlite adapter.
type repos interface {
	domain.UserRepository
	domain.ProfileRepository
	domain.DrinkSessionRepository
	domain.DrinkEventRepository
	domain.CalibrationRepository
	domain.FriendshipRepository
	domain.FriendAlertRepository
	domain.PrivacyOverrideRepository
	domain.GroupRepository
	domain.LeaderboardRepository
}

func runServe(cmd *cobra.Command, args []string) error {
	var (
		store       repos
		sessionRepo domain.SessionRepository
		closeStore  func() error
	)

	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		db, err := postgres.Open(connStr)
		if err != nil {
			return err
		}
		store = db
		sessionRepo = postgres.NewSessionRepo(db)
		closeStore = db.Close
		log.Printf("using postgres")
	} else {
		db, err := sqlite.Open(sqlitePath)
		if err != nil {
			return err
		}
		store = db
		sessionRepo = sqlite.NewSessionRepo(db)
		closeStore = db.Close
		log.Printf("using sqlite at %s", sqlitePath)
	}
	defer func() { _ = closeStore() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authSvc := app.NewAuthService(store, sessionRepo, store)
	alertSvc := app.NewAlertService(store, store, store)
	sessionSvc := app.NewSessionService(store, store, store, alertSvc)
	profileSvc := app.NewProfileService(store, store)
	calibrationSvc := app.NewCalibrationService(store, store,
		app.RecalibratePolicy(env("RECALIBRATE_POLICY", string(app.PolicyOnce))))
	socialSvc := app.NewSocialService(store, store, store)
	leaderboardSvc := app.NewLeaderboardService(store, store)

	oidcConfig, err := loadOIDCConfig(ctx)
	if err != nil {
		return err
	}

	monitor := app.NewMonitor(store, store, app.DefaultRecomputeInterval)
	go monitor.Run(ctx)

	srv := adapthttp.New(authSvc, profileSvc, sessionSvc, calibrationSvc, socialSvc, alertSvc, leaderboardSvc, oidcConfig, serveWebDir)
	httpServer := &http.Server{
		Addr:              serveAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", serveAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// loadOIDCConfig reads the optional SSO settings. SSO stays disabled unless
// all of issuer, client id and client secret are set.
func loadOIDCConfig(ctx context.Context) (adapthttp.OIDCConfig, error) {
	issuer := os.Getenv("OIDC_ISSUER")
	clientID := os.Getenv("OIDC_CLIENT_ID")
	clientSecret := os.Getenv("OIDC_CLIENT_SECRET")
	if issuer == "" || clientID == "" || clientSecret == "" {
		return adapthttp.OIDCConfig{}, nil
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}

	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  env("OIDC_REDIRECT_URL", "http://localhost:8080/api/auth/sso/callback"),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}
