package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"huntserver/internal/common"
	"huntserver/internal/domain/repository"
	"huntserver/internal/testutil"
)

func TestHuntSingleCurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewHuntService(repository.NewPgHuntRepository(db), db)
	ctx := context.Background()

	first, err := svc.CreateHunt(ctx, CreateHuntRequest{
		HuntName:   "Spring Hunt",
		HuntNumber: 1,
		TeamSize:   4,
		StartDate:  time.Now().Add(-time.Hour),
		EndDate:    time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Failed to create hunt: %v", err)
	}
	second, err := svc.CreateHunt(ctx, CreateHuntRequest{
		HuntName:   "Fall Hunt",
		HuntNumber: 2,
		TeamSize:   4,
		StartDate:  time.Now().Add(-time.Hour),
		EndDate:    time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Failed to create hunt: %v", err)
	}

	// No hunt is current yet: corrupted from the reader's point of view.
	if _, err := svc.Current(ctx); !errors.Is(err, common.ErrIntegrity) {
		t.Fatalf("Expected ErrIntegrity with no current hunt, got %v", err)
	}

	if _, err := svc.SetCurrent(ctx, first.ID); err != nil {
		t.Fatalf("Failed to set current hunt: %v", err)
	}
	current, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("Failed to fetch current hunt: %v", err)
	}
	if current.ID != first.ID {
		t.Errorf("Expected hunt %s current, got %s", first.ID, current.ID)
	}

	// Moving the flag must supersede, never accumulate.
	if _, err := svc.SetCurrent(ctx, second.ID); err != nil {
		t.Fatalf("Failed to move current flag: %v", err)
	}
	if n := testutil.CountRows(t, db, "hunts", "is_current"); n != 1 {
		t.Fatalf("Expected exactly one current hunt, found %d", n)
	}
	current, err = svc.Current(ctx)
	if err != nil {
		t.Fatalf("Failed to fetch current hunt: %v", err)
	}
	if current.ID != second.ID {
		t.Errorf("Expected hunt %s current, got %s", second.ID, current.ID)
	}

	// Re-setting the already-current hunt is a harmless no-op.
	if _, err := svc.SetCurrent(ctx, second.ID); err != nil {
		t.Fatalf("Re-setting the current hunt failed: %v", err)
	}
	if n := testutil.CountRows(t, db, "hunts", "is_current"); n != 1 {
		t.Fatalf("Expected exactly one current hunt, found %d", n)
	}
}

func TestHuntSetCurrentUnknownID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewHuntService(repository.NewPgHuntRepository(db), db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)

	if _, err := svc.SetCurrent(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown hunt, got %v", err)
	}

	// A failed move must leave the existing flag untouched.
	current, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("Failed to fetch current hunt: %v", err)
	}
	if current.ID != hunt.ID {
		t.Errorf("Expected hunt %s to remain current, got %s", hunt.ID, current.ID)
	}
}

func TestHuntUpdateCannotUnsetCurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewHuntService(repository.NewPgHuntRepository(db), db)
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)

	off := false
	if _, err := svc.UpdateHunt(ctx, hunt.ID, UpdateHuntRequest{IsCurrent: &off}); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("Expected ErrValidation when unsetting the current flag, got %v", err)
	}
}

func TestPreviousHuntsHidesRunningCurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewHuntService(repository.NewPgHuntRepository(db), db)
	ctx := context.Background()

	// The current hunt is still running, so it is hidden from listings.
	current := testutil.CreateTestHunt(t, db, 2, 4, true)
	testutil.CreateTestHunt(t, db, 1, 4, false)

	hunts, err := svc.PreviousHunts(ctx)
	if err != nil {
		t.Fatalf("Failed to list previous hunts: %v", err)
	}
	if len(hunts) != 1 {
		t.Fatalf("Expected 1 previous hunt, got %d", len(hunts))
	}
	if hunts[0].ID == current.ID {
		t.Errorf("A running current hunt must not appear in the listing")
	}
}
