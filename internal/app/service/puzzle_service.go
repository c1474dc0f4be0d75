package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"huntserver/internal/common"
	"huntserver/internal/domain/model"
	"huntserver/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// PuzzleService is organizer-side puzzle administration: the puzzles
// themselves, their unlock edges, canned responses and unlockables.
type PuzzleService struct {
	puzzleRepo repository.PuzzleRepository
	db         *sql.DB // For transactions
}

func NewPuzzleService(puzzleRepo repository.PuzzleRepository, db *sql.DB) *PuzzleService {
	return &PuzzleService{puzzleRepo: puzzleRepo, db: db}
}

type CreatePuzzleRequest struct {
	HuntID              string   `json:"hunt_id"`
	PuzzleNumber        int      `json:"puzzle_number"`
	PuzzleName          string   `json:"puzzle_name"`
	Answer              string   `json:"answer"`
	Link                string   `json:"link"`
	NumRequiredToUnlock int      `json:"num_required_to_unlock"`
	NumPages            int      `json:"num_pages"`
	Unlocks             []string `json:"unlocks"`
}

func (s *PuzzleService) CreatePuzzle(ctx context.Context, req CreatePuzzleRequest) (*model.Puzzle, error) {
	if req.HuntID == "" || req.PuzzleName == "" || req.Answer == "" {
		return nil, common.Errorf("hunt, name and answer are required for a puzzle: %w", common.ErrValidation)
	}
	if req.NumRequiredToUnlock < 0 {
		return nil, common.Errorf("num_required_to_unlock must not be negative: %w", common.ErrValidation)
	}

	externalID, err := generatePuzzleID()
	if err != nil {
		return nil, common.Errorf("failed to generate puzzle id: %w", err)
	}

	link := req.Link
	if link == "" {
		link = "/puzzle/" + slug.Make(req.PuzzleName)
	}

	puzzle := &model.Puzzle{
		ID:                  uuid.NewString(),
		HuntID:              req.HuntID,
		PuzzleNumber:        req.PuzzleNumber,
		PuzzleName:          req.PuzzleName,
		PuzzleID:            externalID,
		Answer:              req.Answer,
		Link:                link,
		NumRequiredToUnlock: req.NumRequiredToUnlock,
		NumPages:            req.NumPages,
		Unlocks:             req.Unlocks,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.puzzleRepo.Create(ctx, tx, puzzle); err != nil {
		return nil, err
	}
	if len(req.Unlocks) > 0 {
		if err := s.puzzleRepo.SetUnlocks(ctx, tx, puzzle.ID, req.Unlocks); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}
	return puzzle, nil
}

// SetUnlocks replaces the set of puzzles this puzzle contributes to
// unlocking.
func (s *PuzzleService) SetUnlocks(ctx context.Context, puzzleID string, unlockIDs []string) error {
	if _, err := s.puzzleRepo.FindByID(ctx, puzzleID); err != nil {
		return err
	}
	return s.puzzleRepo.SetUnlocks(ctx, nil, puzzleID, unlockIDs)
}

type AddResponseRequest struct {
	Regex     string `json:"regex"`
	Text      string `json:"text"`
	SortOrder int    `json:"sort_order"`
}

func (s *PuzzleService) AddResponse(ctx context.Context, puzzleID string, req AddResponseRequest) (*model.Response, error) {
	if req.Regex == "" || req.Text == "" {
		return nil, common.Errorf("response regex and text are required: %w", common.ErrValidation)
	}
	if _, err := s.puzzleRepo.FindByID(ctx, puzzleID); err != nil {
		return nil, err
	}
	resp := &model.Response{
		ID:        uuid.NewString(),
		PuzzleID:  puzzleID,
		Regex:     req.Regex,
		Text:      req.Text,
		SortOrder: req.SortOrder,
	}
	if err := s.puzzleRepo.AddResponse(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

type AddUnlockableRequest struct {
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

func (s *PuzzleService) AddUnlockable(ctx context.Context, puzzleID string, req AddUnlockableRequest) (*model.Unlockable, error) {
	switch req.ContentType {
	case model.UnlockableTypeImage, model.UnlockableTypePDF, model.UnlockableTypeText, model.UnlockableTypeLink:
	default:
		return nil, common.Errorf("unknown unlockable content type %q: %w", req.ContentType, common.ErrValidation)
	}
	if _, err := s.puzzleRepo.FindByID(ctx, puzzleID); err != nil {
		return nil, err
	}
	u := &model.Unlockable{
		ID:          uuid.NewString(),
		PuzzleID:    puzzleID,
		ContentType: req.ContentType,
		Content:     req.Content,
	}
	if err := s.puzzleRepo.AddUnlockable(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *PuzzleService) ListByHunt(ctx context.Context, huntID string) ([]model.Puzzle, error) {
	return s.puzzleRepo.ListByHunt(ctx, huntID)
}

func (s *PuzzleService) ListResponses(ctx context.Context, puzzleID string) ([]model.Response, error) {
	return s.puzzleRepo.ListResponses(ctx, puzzleID)
}

func (s *PuzzleService) ListUnlockables(ctx context.Context, puzzleID string) ([]model.Unlockable, error) {
	return s.puzzleRepo.ListUnlockables(ctx, puzzleID)
}

// generatePuzzleID produces the short hex identifier used in puzzle
// links and status payloads.
func generatePuzzleID() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
