package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"huntserver/internal/common"
	"huntserver/internal/domain/model"
	"huntserver/internal/domain/repository"

	"github.com/google/uuid"
)

// TeamService handles join-code-gated team formation within the
// current hunt.
type TeamService struct {
	teamRepo       repository.TeamRepository
	submissionRepo repository.SubmissionRepository
	huntService    *HuntService
	unlockService  *UnlockService
	db             *sql.DB // For transactions
}

func NewTeamService(
	teamRepo repository.TeamRepository,
	submissionRepo repository.SubmissionRepository,
	huntService *HuntService,
	unlockService *UnlockService,
	db *sql.DB,
) *TeamService {
	return &TeamService{
		teamRepo:       teamRepo,
		submissionRepo: submissionRepo,
		huntService:    huntService,
		unlockService:  unlockService,
		db:             db,
	}
}

type CreateTeamRequest struct {
	TeamName   string `json:"team_name"`
	Location   string `json:"location"`
	Playtester bool   `json:"playtester"`
}

// CreateTeam registers a team in the current hunt with the creator as
// its first member. Entry puzzles are unlocked for the new team right
// away.
func (s *TeamService) CreateTeam(ctx context.Context, personID string, req CreateTeamRequest) (*model.Team, error) {
	if strings.TrimSpace(req.TeamName) == "" {
		return nil, common.Errorf("team name must not be blank: %w", common.ErrValidation)
	}

	hunt, err := s.huntService.Current(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.teamRepo.FindByName(ctx, hunt.ID, req.TeamName); err == nil {
		return nil, common.Errorf("team %q already exists in this hunt: %w", req.TeamName, common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	joinCode, err := generateJoinCode()
	if err != nil {
		return nil, common.Errorf("failed to generate join code: %w", err)
	}

	team := &model.Team{
		ID:         uuid.NewString(),
		HuntID:     hunt.ID,
		TeamName:   strings.TrimSpace(req.TeamName),
		Location:   req.Location,
		JoinCode:   joinCode,
		Playtester: req.Playtester,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.teamRepo.Create(ctx, tx, team); err != nil {
		return nil, err
	}
	if err := s.teamRepo.AddMember(ctx, tx, team.ID, personID); err != nil {
		return nil, err
	}
	if _, err := s.unlockService.EvaluateTeam(ctx, tx, team); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}
	return team, nil
}

// JoinTeam adds a person to a team in the current hunt. It fails with
// ErrTeamFull at capacity and ErrBadJoinCode when the code does not
// match case-insensitively.
func (s *TeamService) JoinTeam(ctx context.Context, personID, teamName, joinCode string) (*model.Team, error) {
	hunt, err := s.huntService.Current(ctx)
	if err != nil {
		return nil, err
	}
	team, err := s.teamRepo.FindByName(ctx, hunt.ID, teamName)
	if err != nil {
		return nil, common.Errorf("team %q not found: %w", teamName, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	count, err := s.teamRepo.CountMembers(ctx, tx, team.ID)
	if err != nil {
		return nil, err
	}
	if count >= hunt.TeamSize {
		return nil, common.ErrTeamFull
	}
	if !strings.EqualFold(joinCode, team.JoinCode) {
		return nil, common.ErrBadJoinCode
	}
	if err := s.teamRepo.AddMember(ctx, tx, team.ID, personID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}
	return team, nil
}

// LeaveTeam removes the membership unconditionally.
func (s *TeamService) LeaveTeam(ctx context.Context, personID, teamID string) error {
	return s.teamRepo.RemoveMember(ctx, teamID, personID)
}

// TeamForPerson returns the person's team in the current hunt.
func (s *TeamService) TeamForPerson(ctx context.Context, personID string) (*model.Team, error) {
	hunt, err := s.huntService.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.teamRepo.FindForPerson(ctx, personID, hunt.ID)
}

// ListTeams lists the current hunt's teams for the registration page.
func (s *TeamService) ListTeams(ctx context.Context) ([]model.Team, error) {
	hunt, err := s.huntService.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.teamRepo.ListByHunt(ctx, hunt.ID)
}

func (s *TeamService) ListMembers(ctx context.Context, teamID string) ([]model.Person, error) {
	return s.teamRepo.ListMembers(ctx, teamID)
}

// UnlockedPuzzles returns the puzzles visible to a team, ordered by
// puzzle number.
func (s *TeamService) UnlockedPuzzles(ctx context.Context, teamID string) ([]model.PuzzleSummary, error) {
	puzzles, err := s.submissionRepo.ListUnlockedPuzzles(ctx, teamID)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.PuzzleSummary, 0, len(puzzles))
	for _, p := range puzzles {
		summaries = append(summaries, p.Summary())
	}
	return summaries, nil
}

func (s *TeamService) ListUnlockables(ctx context.Context, teamID string) ([]model.Unlockable, error) {
	return s.submissionRepo.ListTeamUnlockables(ctx, teamID)
}

// generateJoinCode draws JoinCodeLength characters from the unambiguous
// join-code alphabet. The alphabet length divides 256, so byte
// reduction introduces no bias.
func generateJoinCode() (string, error) {
	buf := make([]byte, model.JoinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	code := make([]byte, model.JoinCodeLength)
	for i, b := range buf {
		code[i] = model.JoinCodeAlphabet[int(b)%len(model.JoinCodeAlphabet)]
	}
	return string(code), nil
}
