package service

import (
	"context"
	"errors"
	"testing"

	"huntserver/internal/common"
	"huntserver/internal/domain/repository"
	"huntserver/internal/testutil"
)

func TestMessages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewMessageService(repository.NewPgMessageRepository(db), repository.NewPgTeamRepository(db))
	ctx := context.Background()

	hunt := testutil.CreateTestHunt(t, db, 1, 4, true)
	team := testutil.CreateTestTeam(t, db, hunt.ID, "Lemurs", "ABCDE")

	if _, err := svc.CreateMessage(ctx, team.ID, "  ", false); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("Expected ErrValidation for blank message, got %v", err)
	}
	if _, err := svc.CreateMessage(ctx, "00000000-0000-0000-0000-000000000000", "hello", false); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for unknown team, got %v", err)
	}

	if _, err := svc.CreateMessage(ctx, team.ID, "We are stuck on puzzle 3", false); err != nil {
		t.Fatalf("Failed to create message: %v", err)
	}
	if _, err := svc.CreateMessage(ctx, team.ID, "Look at the border", true); err != nil {
		t.Fatalf("Failed to create reply: %v", err)
	}

	messages, err := svc.ListForTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("Failed to list messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].IsResponse || !messages[1].IsResponse {
		t.Errorf("Expected request then reply in time order")
	}
}
