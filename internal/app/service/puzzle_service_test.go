package service

import (
	"context"
	"errors"
	"testing"

	"huntserver/internal/common"
	"huntserver/internal/domain/repository"
	"huntserver/internal/testutil"
)

func TestCreatePuzzleDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewPuzzleService(repository.NewPgPuzzleRepository(db), db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)

	puzzle, err := svc.CreatePuzzle(ctx, CreatePuzzleRequest{
		HuntID:       hunt.ID,
		PuzzleNumber: 1,
		PuzzleName:   "The First Step",
		Answer:       "banana",
		NumPages:     2,
	})
	if err != nil {
		t.Fatalf("Failed to create puzzle: %v", err)
	}
	if puzzle.Link != "/puzzle/the-first-step" {
		t.Errorf("Expected slugged default link, got %q", puzzle.Link)
	}
	if len(puzzle.PuzzleID) != 8 {
		t.Errorf("Expected an 8-hex-char puzzle id, got %q", puzzle.PuzzleID)
	}
}

func TestCreatePuzzleValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewPuzzleService(repository.NewPgPuzzleRepository(db), db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)

	if _, err := svc.CreatePuzzle(ctx, CreatePuzzleRequest{HuntID: hunt.ID, PuzzleName: "No Answer"}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("Expected ErrValidation without an answer, got %v", err)
	}
	if _, err := svc.CreatePuzzle(ctx, CreatePuzzleRequest{
		HuntID: hunt.ID, PuzzleName: "Negative", Answer: "x", NumRequiredToUnlock: -1,
	}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("Expected ErrValidation for a negative threshold, got %v", err)
	}
}

func TestSetUnlocksReplaces(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewPuzzleService(repository.NewPgPuzzleRepository(db), db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	a := testutil.CreateTestPuzzle(t, db, hunt.ID, 1, "apple", 0)
	b := testutil.CreateTestPuzzle(t, db, hunt.ID, 2, "pear", 1)
	c := testutil.CreateTestPuzzle(t, db, hunt.ID, 3, "plum", 1)

	if err := svc.SetUnlocks(ctx, a.ID, []string{b.ID}); err != nil {
		t.Fatalf("Failed to set unlocks: %v", err)
	}
	if err := svc.SetUnlocks(ctx, a.ID, []string{c.ID}); err != nil {
		t.Fatalf("Failed to replace unlocks: %v", err)
	}

	if n := testutil.CountRows(t, db, "puzzle_unlocks", "puzzle_id = $1", a.ID); n != 1 {
		t.Fatalf("Expected the edge set replaced, got %d rows", n)
	}
	if n := testutil.CountRows(t, db, "puzzle_unlocks", "puzzle_id = $1 AND unlocks_id = $2", a.ID, c.ID); n != 1 {
		t.Errorf("Expected the edge to point at the new puzzle")
	}
}

func TestAddUnlockableRejectsUnknownType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewPuzzleService(repository.NewPgPuzzleRepository(db), db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	puzzle := testutil.CreateTestPuzzle(t, db, hunt.ID, 1, "apple", 0)

	if _, err := svc.AddUnlockable(ctx, puzzle.ID, AddUnlockableRequest{ContentType: "GIF", Content: "x"}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("Expected ErrValidation for unknown content type, got %v", err)
	}
	if _, err := svc.AddUnlockable(ctx, puzzle.ID, AddUnlockableRequest{ContentType: "TXT", Content: "bonus"}); err != nil {
		t.Fatalf("Failed to add unlockable: %v", err)
	}
}

func TestAddResponseOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewPuzzleService(repository.NewPgPuzzleRepository(db), db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	puzzle := testutil.CreateTestPuzzle(t, db, hunt.ID, 1, "apple", 0)

	if _, err := svc.AddResponse(ctx, puzzle.ID, AddResponseRequest{Regex: ".*", Text: "Nope", SortOrder: 2}); err != nil {
		t.Fatalf("Failed to add response: %v", err)
	}
	if _, err := svc.AddResponse(ctx, puzzle.ID, AddResponseRequest{Regex: "app.*", Text: "Warmer", SortOrder: 1}); err != nil {
		t.Fatalf("Failed to add response: %v", err)
	}

	responses, err := svc.ListResponses(ctx, puzzle.ID)
	if err != nil {
		t.Fatalf("Failed to list responses: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("Expected 2 responses, got %d", len(responses))
	}
	if responses[0].Text != "Warmer" {
		t.Errorf("Expected responses ordered by sort order, got %q first", responses[0].Text)
	}
}
