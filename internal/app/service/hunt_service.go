package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"huntserver/internal/common"
	"huntserver/internal/domain/model"
	"huntserver/internal/domain/repository"

	"github.com/google/uuid"
)

// HuntService owns the single-current-hunt invariant. The current flag
// only ever moves inside SetCurrent's transaction; it is never unset
// directly.
type HuntService struct {
	huntRepo repository.HuntRepository
	db       *sql.DB // For transactions
}

func NewHuntService(huntRepo repository.HuntRepository, db *sql.DB) *HuntService {
	return &HuntService{huntRepo: huntRepo, db: db}
}

type CreateHuntRequest struct {
	HuntName   string    `json:"hunt_name"`
	HuntNumber int       `json:"hunt_number"`
	TeamSize   int       `json:"team_size"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Location   string    `json:"location"`
}

func (s *HuntService) CreateHunt(ctx context.Context, req CreateHuntRequest) (*model.Hunt, error) {
	if req.HuntName == "" || req.TeamSize <= 0 {
		return nil, common.Errorf("hunt name and positive team size are required: %w", common.ErrValidation)
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, common.Errorf("hunt end date must be after start date: %w", common.ErrValidation)
	}

	hunt := &model.Hunt{
		ID:         uuid.NewString(),
		HuntName:   req.HuntName,
		HuntNumber: req.HuntNumber,
		TeamSize:   req.TeamSize,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Location:   req.Location,
		IsCurrent:  false,
	}
	if err := s.huntRepo.Create(ctx, hunt); err != nil {
		return nil, common.Errorf("failed to create hunt: %w", err)
	}
	return hunt, nil
}

// SetCurrent atomically moves the current flag: every other hunt loses
// it and the target gains it, within one transaction.
func (s *HuntService) SetCurrent(ctx context.Context, huntID string) (*model.Hunt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.huntRepo.ClearCurrent(ctx, tx, huntID); err != nil {
		return nil, common.Errorf("failed to clear current flag: %w", err)
	}
	if err := s.huntRepo.SetCurrent(ctx, tx, huntID); err != nil {
		return nil, common.Errorf("failed to set current hunt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	return s.huntRepo.FindByID(ctx, huntID)
}

type UpdateHuntRequest struct {
	HuntName   *string    `json:"hunt_name,omitempty"`
	HuntNumber *int       `json:"hunt_number,omitempty"`
	TeamSize   *int       `json:"team_size,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Location   *string    `json:"location,omitempty"`
	IsCurrent  *bool      `json:"is_current,omitempty"`
}

// UpdateHunt adjusts hunt fields. Un-setting the current flag on the
// hunt that holds it is rejected; the flag only moves by setting a
// different hunt current.
func (s *HuntService) UpdateHunt(ctx context.Context, huntID string, req UpdateHuntRequest) (*model.Hunt, error) {
	hunt, err := s.huntRepo.FindByID(ctx, huntID)
	if err != nil {
		return nil, err
	}

	if req.IsCurrent != nil && hunt.IsCurrent && !*req.IsCurrent {
		return nil, common.Errorf("there must always be one current hunt: %w", common.ErrValidation)
	}

	if req.HuntName != nil {
		hunt.HuntName = *req.HuntName
	}
	if req.HuntNumber != nil {
		hunt.HuntNumber = *req.HuntNumber
	}
	if req.TeamSize != nil {
		hunt.TeamSize = *req.TeamSize
	}
	if req.StartDate != nil {
		hunt.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		hunt.EndDate = *req.EndDate
	}
	if req.Location != nil {
		hunt.Location = *req.Location
	}
	if !hunt.EndDate.After(hunt.StartDate) {
		return nil, common.Errorf("hunt end date must be after start date: %w", common.ErrValidation)
	}

	if err := s.huntRepo.Update(ctx, hunt); err != nil {
		return nil, common.Errorf("failed to update hunt: %w", err)
	}

	if req.IsCurrent != nil && *req.IsCurrent && !hunt.IsCurrent {
		return s.SetCurrent(ctx, hunt.ID)
	}
	return hunt, nil
}

// Current returns the one current hunt. Zero or multiple current rows
// is corrupted state: it is reported loudly as ErrIntegrity, never
// repaired in place.
func (s *HuntService) Current(ctx context.Context) (*model.Hunt, error) {
	hunts, err := s.huntRepo.FindCurrent(ctx)
	if err != nil {
		return nil, common.Errorf("failed to look up current hunt: %w", err)
	}
	if len(hunts) != 1 {
		log.Printf("ALERT: expected exactly one current hunt, found %d", len(hunts))
		return nil, common.Errorf("expected exactly one current hunt, found %d: %w", len(hunts), common.ErrIntegrity)
	}
	return &hunts[0], nil
}

// PreviousHunts lists hunts ordered by number. The current hunt is
// included only once it has gone public.
func (s *HuntService) PreviousHunts(ctx context.Context) ([]model.Hunt, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	hunts, err := s.huntRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if current.IsPublic(time.Now()) {
		return hunts, nil
	}

	previous := make([]model.Hunt, 0, len(hunts))
	for _, h := range hunts {
		if h.ID != current.ID {
			previous = append(previous, h)
		}
	}
	return previous, nil
}

func (s *HuntService) GetHunt(ctx context.Context, id string) (*model.Hunt, error) {
	return s.huntRepo.FindByID(ctx, id)
}
