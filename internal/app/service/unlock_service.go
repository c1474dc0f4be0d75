package service

import (
	"context"
	"database/sql"
	"time"

	"huntserver/internal/common"
	"huntserver/internal/domain/model"
	"huntserver/internal/domain/repository"

	"github.com/google/uuid"
)

// UnlockService recomputes puzzle visibility for a team. A puzzle
// unlocks once the team has solved at least num_required_to_unlock of
// its prerequisite puzzles; entry puzzles (no requirement) unlock
// immediately. Evaluation is a fixed-point iteration bounded by the
// puzzle count, so misconfigured cyclic unlock edges cannot loop
// forever.
type UnlockService struct {
	puzzleRepo     repository.PuzzleRepository
	submissionRepo repository.SubmissionRepository
}

func NewUnlockService(puzzleRepo repository.PuzzleRepository, submissionRepo repository.SubmissionRepository) *UnlockService {
	return &UnlockService{puzzleRepo: puzzleRepo, submissionRepo: submissionRepo}
}

// EvaluateTeam runs the unlock computation for a team inside the
// caller's transaction and records an Unlock row per newly visible
// puzzle. Re-evaluation is idempotent: already-unlocked puzzles are
// never recorded twice. It returns the puzzles that became visible in
// this pass.
func (s *UnlockService) EvaluateTeam(ctx context.Context, tx *sql.Tx, team *model.Team) ([]model.Puzzle, error) {
	puzzles, err := s.puzzleRepo.ListByHunt(ctx, team.HuntID)
	if err != nil {
		return nil, common.Errorf("failed to list hunt puzzles: %w", err)
	}
	prereqs, err := s.puzzleRepo.ListPrerequisites(ctx, tx, team.HuntID)
	if err != nil {
		return nil, common.Errorf("failed to list puzzle prerequisites: %w", err)
	}
	solvedIDs, err := s.submissionRepo.ListSolvedPuzzleIDs(ctx, tx, team.ID)
	if err != nil {
		return nil, common.Errorf("failed to list solved puzzles: %w", err)
	}
	unlockedIDs, err := s.submissionRepo.ListUnlockedPuzzleIDs(ctx, tx, team.ID)
	if err != nil {
		return nil, common.Errorf("failed to list unlocked puzzles: %w", err)
	}

	solved := make(map[string]bool, len(solvedIDs))
	for _, id := range solvedIDs {
		solved[id] = true
	}
	unlocked := make(map[string]bool, len(unlockedIDs))
	for _, id := range unlockedIDs {
		unlocked[id] = true
	}
	required := make(map[string]int, len(puzzles))
	byID := make(map[string]model.Puzzle, len(puzzles))
	order := make([]string, 0, len(puzzles))
	for _, p := range puzzles {
		required[p.ID] = p.NumRequiredToUnlock
		byID[p.ID] = p
		order = append(order, p.ID)
	}

	newlyIDs := computeNewlyUnlocked(order, required, prereqs, solved, unlocked)

	now := time.Now()
	newly := make([]model.Puzzle, 0, len(newlyIDs))
	for _, id := range newlyIDs {
		unlock := &model.Unlock{
			ID:         uuid.NewString(),
			PuzzleID:   id,
			TeamID:     team.ID,
			UnlockedAt: now,
		}
		created, err := s.submissionRepo.CreateUnlock(ctx, tx, unlock)
		if err != nil {
			return nil, common.Errorf("failed to record unlock for puzzle %s: %w", id, err)
		}
		if created {
			newly = append(newly, byID[id])
		}
	}
	return newly, nil
}

// computeNewlyUnlocked finds every still-locked puzzle whose solved
// prerequisite count meets its threshold, repeating until a full pass
// makes no progress. The pass count is capped at the puzzle count, so
// cyclic prerequisite graphs terminate.
func computeNewlyUnlocked(puzzleIDs []string, required map[string]int, prereqs map[string][]string, solved, unlocked map[string]bool) []string {
	newly := []string{}
	for pass := 0; pass < len(puzzleIDs); pass++ {
		progress := false
		for _, id := range puzzleIDs {
			if unlocked[id] {
				continue
			}
			solvedCount := 0
			for _, pre := range prereqs[id] {
				if solved[pre] {
					solvedCount++
				}
			}
			if solvedCount >= required[id] {
				unlocked[id] = true
				newly = append(newly, id)
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	return newly
}
