package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"nightcap/internal/adapter/memory"
	"nightcap/internal/app"
	"nightcap/internal/domain"
)

// newRankedUser creates an opted-in (or out) profile at a university with a
// number of completed sessions behind it.
func newRankedUser(t *testing.T, db *memory.DB, userID int64, name, university string, optIn bool, completed int) {
	t.Helper()
	ctx := context.Background()

	if _, err := db.CreateProfile(ctx, userID, name); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if _, err := db.UpdateProfile(ctx, userID, domain.ProfileUpdate{
		UniversityName:    &university,
		ShowOnLeaderboard: &optIn,
	}); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	start := time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)
	for i := 0; i < completed; i++ {
		id := fmt.Sprintf("s-%d-%d", userID, i)
		if _, err := db.CreateSession(ctx, id, userID, start); err != nil {
			t.Fatalf("create session: %v", err)
		}
		if err := db.EndSession(ctx, id, start.Add(4*time.Hour)); err != nil {
			t.Fatalf("end session: %v", err)
		}
	}
}

func TestUniversityLeaderboard(t *testing.T) {
	db := memory.New()
	newRankedUser(t, db, 1, "alice", "State U", true, 3)
	newRankedUser(t, db, 2, "bob", "State U", true, 5)
	newRankedUser(t, db, 3, "carol", "State U", false, 9)
	newRankedUser(t, db, 4, "dave", "Other U", true, 7)

	svc := app.NewLeaderboardService(db, db)
	entries, err := svc.University(context.Background(), "State U")
	if err != nil {
		t.Fatalf("university: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 opted-in entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].UserID != 2 || entries[0].Sessions != 5 {
		t.Fatalf("first entry = %+v; want bob with 5 sessions", entries[0])
	}
	if entries[1].UserID != 1 || entries[1].Sessions != 3 {
		t.Fatalf("second entry = %+v; want alice with 3 sessions", entries[1])
	}
}

func TestGroupLeaderboard(t *testing.T) {
	db := memory.New()
	// Opted out of the university board, but group standings show everyone.
	newRankedUser(t, db, 1, "alice", "State U", false, 2)
	newRankedUser(t, db, 2, "bob", "State U", true, 4)

	social := app.NewSocialService(db, db, db)
	ctx := context.Background()

	group, err := social.CreateGroup(ctx, 1, "flat 4b")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	for _, member := range []int64{1, 2} {
		if err := social.AddGroupMember(ctx, 1, group.ID, member); err != nil {
			t.Fatalf("add member %d: %v", member, err)
		}
	}

	svc := app.NewLeaderboardService(db, db)
	entries, err := svc.Group(ctx, group.ID)
	if err != nil {
		t.Fatalf("group standings: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserID != 2 || entries[1].UserID != 1 {
		t.Fatalf("standings out of order: %+v", entries)
	}

	if _, err := svc.Group(ctx, 999); !errors.Is(err, domain.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound for missing group, got %v", err)
	}
}

func TestCreateGroup_RejectsEmptyName(t *testing.T) {
	db := memory.New()
	svc := app.NewSocialService(db, db, db)

	if _, err := svc.CreateGroup(context.Background(), 1, ""); !errors.Is(err, app.ErrEmptyGroupName) {
		t.Fatalf("expected ErrEmptyGroupName, got %v", err)
	}
}

func TestAddGroupMember_OnlyOwner(t *testing.T) {
	db := memory.New()
	svc := app.NewSocialService(db, db, db)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, 1, "flat 4b")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	if err := svc.AddGroupMember(ctx, 2, group.ID, 3); !errors.Is(err, app.ErrNotGroupOwner) {
		t.Fatalf("expected ErrNotGroupOwner, got %v", err)
	}
	if err := svc.AddGroupMember(ctx, 1, 999, 3); !errors.Is(err, domain.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
	if err := svc.AddGroupMember(ctx, 1, group.ID, 3); err != nil {
		t.Fatalf("owner add: %v", err)
	}

	groups, err := svc.Groups(ctx, 1)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 1 || len(groups[0].MemberIDs) != 1 || groups[0].MemberIDs[0] != 3 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
}
