package service

import (
	"context"
	"database/sql"
	"log"
	"regexp"
	"strings"
	"time"

	"huntserver/internal/common"
	"huntserver/internal/domain/model"
	"huntserver/internal/domain/repository"
	"huntserver/internal/platform/events"

	"github.com/google/uuid"
)

const correctResponseText = "Correct!"

// SubmissionService grades answer submissions. A correct answer creates
// at most one Solve per (team, puzzle) and cascades unlock evaluation,
// all inside one transaction; incorrect answers are matched against the
// puzzle's canned regex responses for near-miss hints. Every submission
// is persisted, right or wrong.
type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	puzzleRepo     repository.PuzzleRepository
	teamRepo       repository.TeamRepository
	unlockService  *UnlockService
	publisher      events.Publisher // May be nil
	db             *sql.DB          // For transactions
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	puzzleRepo repository.PuzzleRepository,
	teamRepo repository.TeamRepository,
	unlockService *UnlockService,
	publisher events.Publisher,
	db *sql.DB,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		puzzleRepo:     puzzleRepo,
		teamRepo:       teamRepo,
		unlockService:  unlockService,
		publisher:      publisher,
		db:             db,
	}
}

type GradeResult struct {
	Correct       bool                  `json:"correct"`
	ResponseText  string                `json:"response_text"`
	SolveTime     *time.Time            `json:"solve_time,omitempty"`
	Submission    *model.Submission     `json:"submission"`
	NewlyUnlocked []model.PuzzleSummary `json:"newly_unlocked,omitempty"`
}

type teamStatusEvent struct {
	StatusType string              `json:"status_type"` // "submission", "solve" or "unlock"
	Puzzle     model.PuzzleSummary `json:"puzzle"`
	TeamID     string              `json:"team_id"`
	TimeStr    string              `json:"time_str"`
}

// GradeSubmission grades raw submitted text for a team+puzzle pair.
func (s *SubmissionService) GradeSubmission(ctx context.Context, teamID, puzzleID, text string) (*GradeResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.Errorf("submission text must not be blank: %w", common.ErrValidation)
	}

	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, common.Errorf("team not found: %w", err)
	}
	puzzle, err := s.puzzleRepo.FindByID(ctx, puzzleID)
	if err != nil {
		return nil, common.Errorf("puzzle not found: %w", err)
	}
	if puzzle.HuntID != team.HuntID {
		return nil, common.Errorf("puzzle does not belong to the team's hunt: %w", common.ErrBadRequest)
	}

	unlockedForTeam, err := s.submissionRepo.HasUnlock(ctx, team.ID, puzzle.ID)
	if err != nil {
		return nil, err
	}
	if !unlockedForTeam {
		return nil, common.Errorf("puzzle is not unlocked for this team: %w", common.ErrForbidden)
	}

	correct := strings.EqualFold(text, puzzle.Answer)
	responseText := ""
	if correct {
		responseText = correctResponseText
	} else {
		responses, err := s.puzzleRepo.ListResponses(ctx, puzzle.ID)
		if err != nil {
			return nil, err
		}
		responseText = matchResponse(responses, text)
	}

	now := time.Now()
	submission := &model.Submission{
		ID:             uuid.NewString(),
		TeamID:         team.ID,
		PuzzleID:       puzzle.ID,
		SubmissionText: text,
		ResponseText:   responseText,
		SubmissionTime: now,
		ModifiedAt:     now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.submissionRepo.CreateSubmission(ctx, tx, submission); err != nil {
		return nil, common.Errorf("failed to persist submission: %w", err)
	}

	result := &GradeResult{
		Correct:      correct,
		ResponseText: responseText,
		Submission:   submission,
	}

	var newlyUnlocked []model.Puzzle
	var solveCreated bool
	if correct {
		solve := &model.Solve{
			ID:           uuid.NewString(),
			PuzzleID:     puzzle.ID,
			TeamID:       team.ID,
			SubmissionID: submission.ID,
		}
		// A lost race or a resubmission after a solve both land here
		// with created=false; that is idempotent success, not an error.
		solveCreated, err = s.submissionRepo.CreateSolve(ctx, tx, solve)
		if err != nil {
			return nil, common.Errorf("failed to create solve: %w", err)
		}
		result.SolveTime = &now

		if solveCreated {
			if err := s.submissionRepo.GrantPuzzleUnlockables(ctx, tx, team.ID, puzzle.ID); err != nil {
				return nil, err
			}
			newlyUnlocked, err = s.unlockService.EvaluateTeam(ctx, tx, team)
			if err != nil {
				return nil, common.Errorf("failed to evaluate unlocks: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	for _, p := range newlyUnlocked {
		result.NewlyUnlocked = append(result.NewlyUnlocked, p.Summary())
	}

	s.publishStatus(ctx, team.ID, "submission", puzzle.Summary(), now)
	if solveCreated {
		s.publishStatus(ctx, team.ID, "solve", puzzle.Summary(), now)
	}
	for _, p := range newlyUnlocked {
		s.publishStatus(ctx, team.ID, "unlock", p.Summary(), now)
	}

	return result, nil
}

// matchResponse evaluates the puzzle's canned responses in declaration
// order and returns the text of the first regex that matches, or "".
// Patterns are matched case-insensitively; an invalid pattern is
// skipped rather than failing the grade.
func matchResponse(responses []model.Response, text string) string {
	for _, resp := range responses {
		re, err := regexp.Compile("(?i)" + resp.Regex)
		if err != nil {
			log.Printf("WARN: skipping invalid response regex %q: %v", resp.Regex, err)
			continue
		}
		if re.MatchString(text) {
			return resp.Text
		}
	}
	return ""
}

// UpdateResponseText lets staff replace the graded response on an
// existing submission; the modified timestamp is stamped explicitly
// here, at save time.
func (s *SubmissionService) UpdateResponseText(ctx context.Context, submissionID, responseText string) (*model.Submission, error) {
	if err := s.submissionRepo.UpdateResponseText(ctx, submissionID, responseText, time.Now()); err != nil {
		return nil, err
	}
	return s.submissionRepo.GetSubmissionByID(ctx, submissionID)
}

func (s *SubmissionService) ListForTeamPuzzle(ctx context.Context, teamID, puzzleID string) ([]model.Submission, error) {
	return s.submissionRepo.ListForTeamPuzzle(ctx, teamID, puzzleID)
}

func (s *SubmissionService) publishStatus(ctx context.Context, teamID, statusType string, puzzle model.PuzzleSummary, t time.Time) {
	if s.publisher == nil {
		return
	}
	event := teamStatusEvent{
		StatusType: statusType,
		Puzzle:     puzzle,
		TeamID:     teamID,
		TimeStr:    t.Format("3:04 pm"),
	}
	if err := s.publisher.PublishTeamStatus(ctx, teamID, event); err != nil {
		log.Printf("WARN: failed to publish %s event for team %s: %v", statusType, teamID, err)
	}
}
