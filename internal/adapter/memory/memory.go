// Package memory implements an in-memory store for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"nightcap/internal/domain"
)

// DB implements every domain repository in memory behind one mutex.
type DB struct {
	mu sync.Mutex

	users         []*domain.User
	loginSessions map[string]*domain.Session
	profiles      map[int64]*domain.Profile
	sessions      []*domain.DrinkSession
	events        []domain.DrinkEvent
	calibrations  []domain.CalibrationRecord
	friendships   []*domain.Friendship
	alerts        []domain.FriendAlert
	overrides     []domain.NightPrivacyOverride
	groups        []*domain.FriendGroup

	userIDCounter        int64
	eventIDCounter       int64
	calibrationIDCounter int64
	friendshipIDCounter  int64
	alertIDCounter       int64
	groupIDCounter       int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		loginSessions: make(map[string]*domain.Session),
		profiles:      make(map[int64]*domain.Profile),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)
var _ domain.ProfileRepository = (*DB)(nil)
var _ domain.DrinkSessionRepository = (*DB)(nil)
var _ domain.DrinkEventRepository = (*DB)(nil)
var _ domain.CalibrationRepository = (*DB)(nil)
var _ domain.FriendshipRepository = (*DB)(nil)
var _ domain.FriendAlertRepository = (*DB)(nil)
var _ domain.PrivacyOverrideRepository = (*DB)(nil)
var _ domain.GroupRepository = (*DB)(nil)
var _ domain.LeaderboardRepository = (*DB)(nil)

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository (login sessions) ---

// SessionRepo implements login session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new login session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new login session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.loginSessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a login session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.loginSessions[token]; ok {
		return s, nil
	}
	return nil, nil
}

// Delete deletes a login session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.loginSessions, token)
	return nil
}

// DeleteExpired deletes all expired login sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.loginSessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.loginSessions, k)
		}
	}
	return nil
}

// --- ProfileRepository ---

// CreateProfile creates an empty profile for a new user.
func (db *DB) CreateProfile(ctx context.Context, userID int64, displayName string) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.profiles[userID]; ok {
		return nil, errors.New("profile already exists")
	}

	now := time.Now().UTC()
	p := &domain.Profile{
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	db.profiles[userID] = p
	cp := *p
	return &cp, nil
}

// GetProfile retrieves a profile by user ID.
func (db *DB) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// UpdateProfile applies a partial profile edit.
func (db *DB) UpdateProfile(ctx context.Context, userID int64, upd domain.ProfileUpdate) (*domain.Profile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return nil, nil
	}

	if upd.DisplayName != nil {
		p.DisplayName = *upd.DisplayName
	}
	if upd.BiologicalSex != nil {
		p.BiologicalSex = *upd.BiologicalSex
	}
	if upd.WeightLbs != nil {
		p.WeightLbs = *upd.WeightLbs
	}
	if upd.HeightInches != nil {
		p.HeightInches = *upd.HeightInches
	}
	if upd.UniversityName != nil {
		p.UniversityName = *upd.UniversityName
	}
	if upd.PersonalDrinkLimit != nil {
		p.PersonalDrinkLimit = *upd.PersonalDrinkLimit
	}
	if upd.ShowOnLeaderboard != nil {
		p.ShowOnLeaderboard = *upd.ShowOnLeaderboard
	}
	p.UpdatedAt = time.Now().UTC()

	cp := *p
	return &cp, nil
}

// SetLimits writes the calculated limit fields.
func (db *DB) SetLimits(ctx context.Context, userID int64, limits domain.LimitThresholds) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.Limits = limits
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// SetCalibrationState writes the calibration counter and, when non-nil, the
// adjusted limits in one step.
func (db *DB) SetCalibrationState(ctx context.Context, userID int64, count int, limits *domain.LimitThresholds) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.profiles[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	p.CalibrationCount = count
	if limits != nil {
		p.Limits = *limits
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// --- DrinkSessionRepository ---

// CreateSession opens a new drinking session.
func (db *DB) CreateSession(ctx context.Context, id string, userID int64, startedAt time.Time) (*domain.DrinkSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, s := range db.sessions {
		if s.UserID == userID && s.IsActive {
			return nil, domain.ErrSessionConflict
		}
	}

	s := &domain.DrinkSession{
		ID:        id,
		UserID:    userID,
		StartedAt: startedAt.UTC(),
		IsActive:  true,
		Status:    "active",
	}
	db.sessions = append(db.sessions, s)
	cp := *s
	return &cp, nil
}

// ActiveSession returns the user's active session, or nil.
func (db *DB) ActiveSession(ctx context.Context, userID int64) (*domain.DrinkSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, s := range db.sessions {
		if s.UserID == userID && s.IsActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

// ActiveSessions returns every active session.
func (db *DB) ActiveSessions(ctx context.Context) ([]domain.DrinkSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.DrinkSession
	for _, s := range db.sessions {
		if s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

// GetSession retrieves a session by ID.
func (db *DB) GetSession(ctx context.Context, id string) (*domain.DrinkSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, s := range db.sessions {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

// UpdateTotals writes running totals; peak merges with max().
func (db *DB) UpdateTotals(ctx context.Context, id string, totalStandardDrinks, peakBAC float64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, s := range db.sessions {
		if s.ID == id {
			s.TotalStandardDrinks = totalStandardDrinks
			if peakBAC > s.PeakBAC {
				s.PeakBAC = peakBAC
			}
			return nil
		}
	}
	return domain.ErrSessionNotFound
}

// EndSession closes a session.
func (db *DB) EndSession(ctx context.Context, id string, endedAt time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, s := range db.sessions {
		if s.ID == id {
			ended := endedAt.UTC()
			s.IsActive = false
			s.EndedAt = &ended
			s.Status = "completed"
			return nil
		}
	}
	return domain.ErrSessionNotFound
}

// RecentSessions lists the user's most recent sessions.
func (db *DB) RecentSessions(ctx context.Context, userID int64, limit int) ([]domain.DrinkSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.DrinkSession
	for _, s := range db.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- DrinkEventRepository ---

// AddDrinkEvent appends a drink event.
func (db *DB) AddDrinkEvent(ctx context.Context, ev domain.DrinkEvent) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.eventIDCounter++
	ev.ID = db.eventIDCounter
	if ev.LoggedAt.IsZero() {
		ev.LoggedAt = time.Now()
	}
	ev.LoggedAt = ev.LoggedAt.UTC()
	db.events = append(db.events, ev)
	return ev.ID, nil
}

// ListDrinkEvents lists a session's events in logged order.
func (db *DB) ListDrinkEvents(ctx context.Context, sessionID string) ([]domain.DrinkEvent, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.DrinkEvent
	for _, e := range db.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LoggedAt.Before(out[j].LoggedAt)
	})
	return out, nil
}

// --- CalibrationRepository ---

// AddCalibrationRecord appends a calibration self-report.
func (db *DB) AddCalibrationRecord(ctx context.Context, rec domain.CalibrationRecord) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.calibrationIDCounter++
	rec.ID = db.calibrationIDCounter
	rec.CreatedAt = time.Now().UTC()
	db.calibrations = append(db.calibrations, rec)
	return rec.ID, nil
}

// ListCalibrationRecords lists a user's records ordered by session number.
func (db *DB) ListCalibrationRecords(ctx context.Context, userID int64) ([]domain.CalibrationRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.CalibrationRecord
	for _, r := range db.calibrations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SessionNumber < out[j].SessionNumber
	})
	return out, nil
}

// --- FriendshipRepository ---

// CreateFriendship creates a pending friendship.
func (db *DB) CreateFriendship(ctx context.Context, requesterID, addresseeID int64) (*domain.Friendship, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.friendshipIDCounter++
	f := &domain.Friendship{
		ID:           db.friendshipIDCounter,
		RequesterID:  requesterID,
		AddresseeID:  addresseeID,
		Status:       domain.FriendshipPending,
		CanSeeDrinks: true,
		CreatedAt:    time.Now().UTC(),
	}
	db.friendships = append(db.friendships, f)
	cp := *f
	return &cp, nil
}

// SetFriendshipStatus updates a friendship's lifecycle state.
func (db *DB) SetFriendshipStatus(ctx context.Context, id int64, status domain.FriendshipStatus) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, f := range db.friendships {
		if f.ID == id {
			f.Status = status
			return nil
		}
	}
	return errors.New("friendship not found")
}

// SetFriendshipVisibility toggles drink visibility on a friendship.
func (db *DB) SetFriendshipVisibility(ctx context.Context, id int64, canSeeDrinks bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, f := range db.friendships {
		if f.ID == id {
			f.CanSeeDrinks = canSeeDrinks
			return nil
		}
	}
	return errors.New("friendship not found")
}

// ListFriendships lists all friendships involving the user.
func (db *DB) ListFriendships(ctx context.Context, userID int64) ([]domain.Friendship, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Friendship
	for _, f := range db.friendships {
		if f.RequesterID == userID || f.AddresseeID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

// AcceptedVisibleFriendships lists accepted friendships with visibility on.
func (db *DB) AcceptedVisibleFriendships(ctx context.Context, userID int64) ([]domain.Friendship, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Friendship
	for _, f := range db.friendships {
		if (f.RequesterID == userID || f.AddresseeID == userID) &&
			f.Status == domain.FriendshipAccepted && f.CanSeeDrinks {
			out = append(out, *f)
		}
	}
	return out, nil
}

// --- FriendAlertRepository ---

// AddFriendAlert inserts an over-limit alert.
func (db *DB) AddFriendAlert(ctx context.Context, alert domain.FriendAlert) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.alertIDCounter++
	alert.ID = db.alertIDCounter
	alert.CreatedAt = time.Now().UTC()
	db.alerts = append(db.alerts, alert)
	return alert.ID, nil
}

// ListFriendAlerts lists the most recent alerts delivered to a friend.
func (db *DB) ListFriendAlerts(ctx context.Context, friendID int64, limit int) ([]domain.FriendAlert, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.FriendAlert
	for _, a := range db.alerts {
		if a.FriendID == friendID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkAlertRead marks an alert as read.
func (db *DB) MarkAlertRead(ctx context.Context, friendID, alertID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.alerts {
		if db.alerts[i].ID == alertID && db.alerts[i].FriendID == friendID {
			db.alerts[i].Read = true
			return nil
		}
	}
	return errors.New("alert not found")
}

// --- PrivacyOverrideRepository ---

// SetNightPrivacyOverride upserts a per-night visibility switch.
func (db *DB) SetNightPrivacyOverride(ctx context.Context, o domain.NightPrivacyOverride) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.overrides {
		ex := &db.overrides[i]
		if ex.UserID == o.UserID && ex.SessionID == o.SessionID && ex.FriendID == o.FriendID {
			ex.CanSee = o.CanSee
			return nil
		}
	}
	db.overrides = append(db.overrides, o)
	return nil
}

// ListNightPrivacyOverrides lists overrides for one user's session.
func (db *DB) ListNightPrivacyOverrides(ctx context.Context, userID int64, sessionID string) ([]domain.NightPrivacyOverride, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.NightPrivacyOverride
	for _, o := range db.overrides {
		if o.UserID == userID && o.SessionID == sessionID {
			out = append(out, o)
		}
	}
	return out, nil
}

// --- GroupRepository ---

func copyGroup(g *domain.FriendGroup) domain.FriendGroup {
	cp := *g
	cp.MemberIDs = append([]int64(nil), g.MemberIDs...)
	return cp
}

// CreateGroup creates an empty friend group.
func (db *DB) CreateGroup(ctx context.Context, creatorID int64, name string) (*domain.FriendGroup, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.groupIDCounter++
	g := &domain.FriendGroup{
		ID:        db.groupIDCounter,
		CreatorID: creatorID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	db.groups = append(db.groups, g)
	cp := copyGroup(g)
	return &cp, nil
}

// GetGroup retrieves a group with its member ids, or nil.
func (db *DB) GetGroup(ctx context.Context, id int64) (*domain.FriendGroup, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, g := range db.groups {
		if g.ID == id {
			cp := copyGroup(g)
			return &cp, nil
		}
	}
	return nil, nil
}

// GroupsByCreator lists the groups a user created.
func (db *DB) GroupsByCreator(ctx context.Context, creatorID int64) ([]domain.FriendGroup, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.FriendGroup
	for _, g := range db.groups {
		if g.CreatorID == creatorID {
			out = append(out, copyGroup(g))
		}
	}
	return out, nil
}

// AddGroupMember adds a user to a group; re-adding is a no-op.
func (db *DB) AddGroupMember(ctx context.Context, groupID, userID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, g := range db.groups {
		if g.ID != groupID {
			continue
		}
		for _, m := range g.MemberIDs {
			if m == userID {
				return nil
			}
		}
		g.MemberIDs = append(g.MemberIDs, userID)
		return nil
	}
	return domain.ErrGroupNotFound
}

// --- LeaderboardRepository ---

func (db *DB) completedSessionCount(userID int64) int {
	n := 0
	for _, s := range db.sessions {
		if s.UserID == userID && s.Status == "completed" {
			n++
		}
	}
	return n
}

func sortStandings(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Sessions > entries[j].Sessions
	})
}

// UniversityStandings ranks opted-in profiles at one university.
func (db *DB) UniversityStandings(ctx context.Context, universityName string, limit int) ([]domain.LeaderboardEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.LeaderboardEntry
	for _, p := range db.profiles {
		if p.UniversityName != universityName || !p.ShowOnLeaderboard {
			continue
		}
		out = append(out, domain.LeaderboardEntry{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Sessions:    db.completedSessionCount(p.UserID),
		})
	}
	sortStandings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GroupStandings ranks the members of one group.
func (db *DB) GroupStandings(ctx context.Context, groupID int64) ([]domain.LeaderboardEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var group *domain.FriendGroup
	for _, g := range db.groups {
		if g.ID == groupID {
			group = g
			break
		}
	}
	if group == nil {
		return nil, nil
	}

	var out []domain.LeaderboardEntry
	for _, userID := range group.MemberIDs {
		entry := domain.LeaderboardEntry{
			UserID:   userID,
			Sessions: db.completedSessionCount(userID),
		}
		if p, ok := db.profiles[userID]; ok {
			entry.DisplayName = p.DisplayName
		}
		out = append(out, entry)
	}
	sortStandings(out)
	return out, nil
}
