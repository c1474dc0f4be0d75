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

func newTestSubmissionService(t *testing.T, db *sql.DB) *SubmissionService {
	t.Helper()

	puzzleRepo := repository.NewPgPuzzleRepository(db)
	submissionRepo := repository.NewPgSubmissionRepository(db)
	unlockService := NewUnlockService(puzzleRepo, submissionRepo)
	return NewSubmissionService(submissionRepo, puzzleRepo, repository.NewPgTeamRepository(db), unlockService, nil, db)
}

func TestGradeSubmissionCorrect(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestSubmissionService(t, db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	puzzle := testutil.CreateTestPuzzle(t, db, hunt.ID, 1, "banana", 0)
	alice := testutil.CreateTestPerson(t, db, "alice")
	team := testutil.CreateTestTeam(t, db, hunt.ID, "Lemurs", "ABCDE", alice.ID)
	testutil.UnlockPuzzle(t, db, team.ID, puzzle.ID)

	result, err := svc.GradeSubmission(ctx, team.ID, puzzle.ID, "BANANA")
	if err != nil {
		t.Fatalf("Failed to grade submission: %v", err)
	}
	if !result.Correct {
		t.Error("Case-insensitive match must grade correct")
	}
	if result.ResponseText != "Correct!" {
		t.Errorf("Expected %q, got %q", "Correct!", result.ResponseText)
	}
	if result.SolveTime == nil {
		t.Error("Expected a solve time on a correct grade")
	}
	if n := testutil.CountRows(t, db, "solves", "team_id = $1 AND puzzle_id = $2", team.ID, puzzle.ID); n != 1 {
		t.Fatalf("Expected exactly one solve, got %d", n)
	}

	// Resubmitting the answer records the submission but no second solve.
	result, err = svc.GradeSubmission(ctx, team.ID, puzzle.ID, "banana")
	if err != nil {
		t.Fatalf("Failed to grade resubmission: %v", err)
	}
	if !result.Correct {
		t.Error("Resubmission must still grade correct")
	}
	if n := testutil.CountRows(t, db, "solves", "team_id = $1 AND puzzle_id = $2", team.ID, puzzle.ID); n != 1 {
		t.Fatalf("Expected solve count unchanged, got %d", n)
	}
	if n := testutil.CountRows(t, db, "submissions", "team_id = $1", team.ID); n != 2 {
		t.Errorf("Expected both submissions persisted, got %d", n)
	}
}

func TestGradeSubmissionIncorrectWithResponse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestSubmissionService(t, db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	puzzle := testutil.CreateTestPuzzle(t, db, hunt.ID, 1, "banana", 0)
	testutil.AddResponse(t, db, puzzle.ID, "ban.*", "Keep peeling", 1)
	testutil.AddResponse(t, db, puzzle.ID, ".*", "Nope", 2)
	alice := testutil.CreateTestPerson(t, db, "alice")
	team := testutil.CreateTestTeam(t, db, hunt.ID, "Lemurs", "ABCDE", alice.ID)
	testutil.UnlockPuzzle(t, db, team.ID, puzzle.ID)

	result, err := svc.GradeSubmission(ctx, team.ID, puzzle.ID, "bandana")
	if err != nil {
		t.Fatalf("Failed to grade submission: %v", err)
	}
	if result.Correct {
		t.Error("Wrong answer must not grade correct")
	}
	if result.ResponseText != "Keep peeling" {
		t.Errorf("Expected first matching canned response, got %q", result.ResponseText)
	}
	if n := testutil.CountRows(t, db, "solves", "team_id = $1", team.ID); n != 0 {
		t.Errorf("Expected no solves on a miss, got %d", n)
	}
}

func TestGradeSubmissionLockedPuzzle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestSubmissionService(t, db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	puzzle := testutil.CreateTestPuzzle(t, db, hunt.ID, 1, "banana", 1)
	alice := testutil.CreateTestPerson(t, db, "alice")
	team := testutil.CreateTestTeam(t, db, hunt.ID, "Lemurs", "ABCDE", alice.ID)

	if _, err := svc.GradeSubmission(ctx, team.ID, puzzle.ID, "banana"); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("Expected ErrForbidden on a locked puzzle, got %v", err)
	}
	if n := testutil.CountRows(t, db, "submissions", "team_id = $1", team.ID); n != 0 {
		t.Errorf("Expected no submission persisted, got %d", n)
	}
}

func TestGradeSubmissionBlankText(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestSubmissionService(t, db)
	ctx := context.Background()

	if _, err := svc.GradeSubmission(ctx, "t", "p", "   "); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("Expected ErrValidation for blank text, got %v", err)
	}
}

func TestGradeSubmissionCascadesUnlocks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestSubmissionService(t, db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	first := testutil.CreateTestPuzzle(t, db, hunt.ID, 1, "apple", 0)
	second := testutil.CreateTestPuzzle(t, db, hunt.ID, 2, "pear", 0)
	meta := testutil.CreateTestPuzzle(t, db, hunt.ID, 3, "orchard", 2)
	testutil.AddUnlockEdge(t, db, first.ID, meta.ID)
	testutil.AddUnlockEdge(t, db, second.ID, meta.ID)
	alice := testutil.CreateTestPerson(t, db, "alice")
	team := testutil.CreateTestTeam(t, db, hunt.ID, "Lemurs", "ABCDE", alice.ID)
	testutil.UnlockPuzzle(t, db, team.ID, first.ID)
	testutil.UnlockPuzzle(t, db, team.ID, second.ID)

	// One of two required solves: the meta stays locked.
	result, err := svc.GradeSubmission(ctx, team.ID, first.ID, "apple")
	if err != nil {
		t.Fatalf("Failed to grade first solve: %v", err)
	}
	if len(result.NewlyUnlocked) != 0 {
		t.Fatalf("Expected nothing unlocked after 1 of 2 solves, got %v", result.NewlyUnlocked)
	}

	result, err = svc.GradeSubmission(ctx, team.ID, second.ID, "pear")
	if err != nil {
		t.Fatalf("Failed to grade second solve: %v", err)
	}
	if len(result.NewlyUnlocked) != 1 {
		t.Fatalf("Expected the meta to unlock after 2 of 2 solves, got %v", result.NewlyUnlocked)
	}
	if result.NewlyUnlocked[0].ID != meta.PuzzleID {
		t.Errorf("Expected puzzle %s unlocked, got %s", meta.PuzzleID, result.NewlyUnlocked[0].ID)
	}
	if n := testutil.CountRows(t, db, "unlocks", "team_id = $1 AND puzzle_id = $2", team.ID, meta.ID); n != 1 {
		t.Errorf("Expected one unlock row for the meta, got %d", n)
	}
}

func TestGradeSubmissionGrantsUnlockables(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestSubmissionService(t, db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	puzzle := testutil.CreateTestPuzzle(t, db, hunt.ID, 1, "banana", 0)
	if _, err := db.Exec(`
		INSERT INTO unlockables (id, puzzle_id, content_type, content)
		VALUES ('11111111-1111-1111-1111-111111111111', $1, 'TXT', 'You found the bonus')
	`, puzzle.ID); err != nil {
		t.Fatalf("Failed to create unlockable: %v", err)
	}
	alice := testutil.CreateTestPerson(t, db, "alice")
	team := testutil.CreateTestTeam(t, db, hunt.ID, "Lemurs", "ABCDE", alice.ID)
	testutil.UnlockPuzzle(t, db, team.ID, puzzle.ID)

	if _, err := svc.GradeSubmission(ctx, team.ID, puzzle.ID, "banana"); err != nil {
		t.Fatalf("Failed to grade submission: %v", err)
	}
	if n := testutil.CountRows(t, db, "team_unlockables", "team_id = $1", team.ID); n != 1 {
		t.Errorf("Expected the unlockable granted on solve, got %d rows", n)
	}
}

func TestUpdateResponseText(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newTestSubmissionService(t, db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	puzzle := testutil.CreateTestPuzzle(t, db, hunt.ID, 1, "banana", 0)
	alice := testutil.CreateTestPerson(t, db, "alice")
	team := testutil.CreateTestTeam(t, db, hunt.ID, "Lemurs", "ABCDE", alice.ID)
	testutil.UnlockPuzzle(t, db, team.ID, puzzle.ID)

	result, err := svc.GradeSubmission(ctx, team.ID, puzzle.ID, "grape")
	if err != nil {
		t.Fatalf("Failed to grade submission: %v", err)
	}

	updated, err := svc.UpdateResponseText(ctx, result.Submission.ID, "Think fruit, but longer")
	if err != nil {
		t.Fatalf("Failed to update response text: %v", err)
	}
	if updated.ResponseText != "Think fruit, but longer" {
		t.Errorf("Expected updated response text, got %q", updated.ResponseText)
	}
	if !updated.ModifiedAt.After(updated.SubmissionTime) {
		t.Errorf("Expected modified timestamp to advance past submission time")
	}
}
