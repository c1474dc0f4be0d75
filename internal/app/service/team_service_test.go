package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"huntserver/internal/common"
	"huntserver/internal/domain/repository"
	"huntserver/internal/testutil"
)

func newTestTeamService(t *testing.T, db *sql.DB) *TeamService {
	t.Helper()

	huntService := NewHuntService(repository.NewPgHuntRepository(db), db)
	puzzleRepo := repository.NewPgPuzzleRepository(db)
	submissionRepo := repository.NewPgSubmissionRepository(db)
	unlockService := NewUnlockService(puzzleRepo, submissionRepo)
	return NewTeamService(repository.NewPgTeamRepository(db), submissionRepo, huntService, unlockService, db)
}

func TestCreateTeamUnlocksEntryPuzzles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestTeamService(t, db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	entry := testutil.CreateTestPuzzle(t, db, hunt.ID, 1, "apple", 0)
	gated := testutil.CreateTestPuzzle(t, db, hunt.ID, 2, "pear", 1)
	testutil.AddUnlockEdge(t, db, entry.ID, gated.ID)
	person := testutil.CreateTestPerson(t, db, "alice")

	team, err := svc.CreateTeam(ctx, person.ID, CreateTeamRequest{TeamName: "Lemurs"})
	if err != nil {
		t.Fatalf("Failed to create team: %v", err)
	}
	if len(team.JoinCode) != 5 {
		t.Errorf("Expected a 5-character join code, got %q", team.JoinCode)
	}

	puzzles, err := svc.UnlockedPuzzles(ctx, team.ID)
	if err != nil {
		t.Fatalf("Failed to list unlocked puzzles: %v", err)
	}
	if len(puzzles) != 1 {
		t.Fatalf("Expected only the entry puzzle unlocked, got %d", len(puzzles))
	}
	if puzzles[0].ID != entry.PuzzleID {
		t.Errorf("Expected entry puzzle %s unlocked, got %s", entry.PuzzleID, puzzles[0].ID)
	}
}

func TestCreateTeamDuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestTeamService(t, db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	person := testutil.CreateTestPerson(t, db, "alice")
	testutil.CreateTestTeam(t, db, hunt.ID, "Lemurs", "ABCDE")

	// Name comparison ignores case.
	if _, err := svc.CreateTeam(ctx, person.ID, CreateTeamRequest{TeamName: "lemurs"}); !errors.Is(err, common.ErrConflict) {
		t.Fatalf("Expected ErrConflict for duplicate team name, got %v", err)
	}
}

func TestJoinTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestTeamService(t, db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 2, true)
	alice := testutil.CreateTestPerson(t, db, "alice")
	bob := testutil.CreateTestPerson(t, db, "bob")
	carol := testutil.CreateTestPerson(t, db, "carol")
	team := testutil.CreateTestTeam(t, db, hunt.ID, "Lemurs", "ABCDE", alice.ID)

	if _, err := svc.JoinTeam(ctx, bob.ID, "Lemurs", "XXXXX"); !errors.Is(err, common.ErrBadJoinCode) {
		t.Fatalf("Expected ErrBadJoinCode for wrong code, got %v", err)
	}

	// Code matching ignores case.
	joined, err := svc.JoinTeam(ctx, bob.ID, "Lemurs", "abcde")
	if err != nil {
		t.Fatalf("Failed to join with lowercase code: %v", err)
	}
	if joined.ID != team.ID {
		t.Errorf("Joined the wrong team: %s", joined.ID)
	}

	// Team size 2 is now reached.
	if _, err := svc.JoinTeam(ctx, carol.ID, "Lemurs", "ABCDE"); !errors.Is(err, common.ErrTeamFull) {
		t.Fatalf("Expected ErrTeamFull at capacity, got %v", err)
	}

	if n := testutil.CountRows(t, db, "team_members", "team_id = $1", team.ID); n != 2 {
		t.Errorf("Expected 2 members, got %d", n)
	}
}

func TestJoinTeamIdempotentForMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestTeamService(t, db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	alice := testutil.CreateTestPerson(t, db, "alice")
	team := testutil.CreateTestTeam(t, db, hunt.ID, "Lemurs", "ABCDE", alice.ID)

	if _, err := svc.JoinTeam(ctx, alice.ID, "Lemurs", "ABCDE"); err != nil {
		t.Fatalf("Rejoining own team failed: %v", err)
	}
	if n := testutil.CountRows(t, db, "team_members", "team_id = $1", team.ID); n != 1 {
		t.Errorf("Expected membership unchanged, got %d rows", n)
	}
}

func TestLeaveTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestTeamService(t, db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	alice := testutil.CreateTestPerson(t, db, "alice")
	team := testutil.CreateTestTeam(t, db, hunt.ID, "Lemurs", "ABCDE", alice.ID)

	if err := svc.LeaveTeam(ctx, alice.ID, team.ID); err != nil {
		t.Fatalf("Failed to leave team: %v", err)
	}
	if n := testutil.CountRows(t, db, "team_members", "team_id = $1", team.ID); n != 0 {
		t.Errorf("Expected no members left, got %d", n)
	}
}
