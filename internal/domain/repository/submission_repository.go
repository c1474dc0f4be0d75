package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"huntserver/internal/common"
	"huntserver/internal/domain/model"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	ListForTeamPuzzle(ctx context.Context, teamID, puzzleID string) ([]model.Submission, error)
	// UpdateResponseText rewrites the graded response of an existing
	// submission and stamps the modified time.
	UpdateResponseText(ctx context.Context, id, responseText string, modified time.Time) error

	// CreateSolve inserts a solve record unless the (puzzle, team) pair
	// already has one; it reports whether a row was actually created.
	CreateSolve(ctx context.Context, tx *sql.Tx, solve *model.Solve) (bool, error)
	ListSolvedPuzzleIDs(ctx context.Context, tx *sql.Tx, teamID string) ([]string, error)

	// CreateUnlock inserts an unlock record unless the (puzzle, team)
	// pair already has one; it reports whether a row was actually
	// created.
	CreateUnlock(ctx context.Context, tx *sql.Tx, unlock *model.Unlock) (bool, error)
	HasUnlock(ctx context.Context, teamID, puzzleID string) (bool, error)
	ListUnlockedPuzzleIDs(ctx context.Context, tx *sql.Tx, teamID string) ([]string, error)
	ListUnlockedPuzzles(ctx context.Context, teamID string) ([]model.Puzzle, error)

	// GrantPuzzleUnlockables attaches all of the puzzle's unlockables to
	// the team, skipping ones it already holds.
	GrantPuzzleUnlockables(ctx context.Context, tx *sql.Tx, teamID, puzzleID string) error
	ListTeamUnlockables(ctx context.Context, teamID string) ([]model.Unlockable, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, s *model.Submission) error {
	query := `INSERT INTO submissions (id, team_id, puzzle_id, submission_text, response_text, submission_time, modified_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, s.ID, s.TeamID, s.PuzzleID, s.SubmissionText, s.ResponseText, s.SubmissionTime, s.ModifiedAt)
	} else {
		_, err = r.db.ExecContext(ctx, query, s.ID, s.TeamID, s.PuzzleID, s.SubmissionText, s.ResponseText, s.SubmissionTime, s.ModifiedAt)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT id, team_id, puzzle_id, submission_text, response_text, submission_time, modified_at
	          FROM submissions WHERE id = $1`
	sub := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.TeamID, &sub.PuzzleID, &sub.SubmissionText, &sub.ResponseText, &sub.SubmissionTime, &sub.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) ListForTeamPuzzle(ctx context.Context, teamID, puzzleID string) ([]model.Submission, error) {
	query := `SELECT id, team_id, puzzle_id, submission_text, response_text, submission_time, modified_at
	          FROM submissions WHERE team_id = $1 AND puzzle_id = $2 ORDER BY submission_time ASC`
	rows, err := r.db.QueryContext(ctx, query, teamID, puzzleID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListForTeamPuzzle query: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.TeamID, &s.PuzzleID, &s.SubmissionText, &s.ResponseText, &s.SubmissionTime, &s.ModifiedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListForTeamPuzzle scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListForTeamPuzzle rows.Err: %w", err)
	}
	return subs, nil
}

func (r *pgSubmissionRepository) UpdateResponseText(ctx context.Context, id, responseText string, modified time.Time) error {
	query := `UPDATE submissions SET response_text = $1, modified_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, responseText, modified, id)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.UpdateResponseText: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgSubmissionRepository) CreateSolve(ctx context.Context, tx *sql.Tx, s *model.Solve) (bool, error) {
	// ON CONFLICT keeps a concurrent duplicate from aborting the
	// surrounding transaction; the unique constraint remains the
	// last-resort guard.
	query := `INSERT INTO solves (id, puzzle_id, team_id, submission_id)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (puzzle_id, team_id) DO NOTHING`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, s.ID, s.PuzzleID, s.TeamID, s.SubmissionID)
	} else {
		res, err = r.db.ExecContext(ctx, query, s.ID, s.PuzzleID, s.TeamID, s.SubmissionID)
	}
	if err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.CreateSolve: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *pgSubmissionRepository) ListSolvedPuzzleIDs(ctx context.Context, tx *sql.Tx, teamID string) ([]string, error) {
	query := `SELECT puzzle_id FROM solves WHERE team_id = $1`
	return r.listIDs(ctx, tx, query, teamID)
}

func (r *pgSubmissionRepository) CreateUnlock(ctx context.Context, tx *sql.Tx, u *model.Unlock) (bool, error) {
	query := `INSERT INTO unlocks (id, puzzle_id, team_id, unlocked_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (puzzle_id, team_id) DO NOTHING`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, u.ID, u.PuzzleID, u.TeamID, u.UnlockedAt)
	} else {
		res, err = r.db.ExecContext(ctx, query, u.ID, u.PuzzleID, u.TeamID, u.UnlockedAt)
	}
	if err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.CreateUnlock: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *pgSubmissionRepository) HasUnlock(ctx context.Context, teamID, puzzleID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM unlocks WHERE team_id = $1 AND puzzle_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, teamID, puzzleID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.HasUnlock: %w", err)
	}
	return exists, nil
}

func (r *pgSubmissionRepository) ListUnlockedPuzzleIDs(ctx context.Context, tx *sql.Tx, teamID string) ([]string, error) {
	query := `SELECT puzzle_id FROM unlocks WHERE team_id = $1`
	return r.listIDs(ctx, tx, query, teamID)
}

func (r *pgSubmissionRepository) ListUnlockedPuzzles(ctx context.Context, teamID string) ([]model.Puzzle, error) {
	query := `SELECT p.id, p.hunt_id, p.puzzle_number, p.puzzle_name, p.puzzle_id, p.answer, p.link, p.num_required_to_unlock, p.num_pages
	          FROM puzzles p
	          JOIN unlocks u ON u.puzzle_id = p.id
	          WHERE u.team_id = $1
	          ORDER BY p.puzzle_number ASC`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListUnlockedPuzzles query: %w", err)
	}
	defer rows.Close()

	puzzles := []model.Puzzle{}
	for rows.Next() {
		var p model.Puzzle
		if err := rows.Scan(
			&p.ID, &p.HuntID, &p.PuzzleNumber, &p.PuzzleName,
			&p.PuzzleID, &p.Answer, &p.Link, &p.NumRequiredToUnlock, &p.NumPages,
		); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListUnlockedPuzzles scan: %w", err)
		}
		puzzles = append(puzzles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListUnlockedPuzzles rows.Err: %w", err)
	}
	return puzzles, nil
}

func (r *pgSubmissionRepository) GrantPuzzleUnlockables(ctx context.Context, tx *sql.Tx, teamID, puzzleID string) error {
	query := `INSERT INTO team_unlockables (team_id, unlockable_id)
	          SELECT $1, id FROM unlockables WHERE puzzle_id = $2
	          ON CONFLICT DO NOTHING`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, teamID, puzzleID)
	} else {
		_, err = r.db.ExecContext(ctx, query, teamID, puzzleID)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.GrantPuzzleUnlockables: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) ListTeamUnlockables(ctx context.Context, teamID string) ([]model.Unlockable, error) {
	query := `SELECT u.id, u.puzzle_id, u.content_type, u.content
	          FROM unlockables u
	          JOIN team_unlockables tu ON tu.unlockable_id = u.id
	          WHERE tu.team_id = $1`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListTeamUnlockables query: %w", err)
	}
	defer rows.Close()

	unlockables := []model.Unlockable{}
	for rows.Next() {
		var u model.Unlockable
		if err := rows.Scan(&u.ID, &u.PuzzleID, &u.ContentType, &u.Content); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListTeamUnlockables scan: %w", err)
		}
		unlockables = append(unlockables, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListTeamUnlockables rows.Err: %w", err)
	}
	return unlockables, nil
}

func (r *pgSubmissionRepository) listIDs(ctx context.Context, tx *sql.Tx, query string, arg string) ([]string, error) {
	var rows *sql.Rows
	var err error
	if tx != nil {
		rows, err = tx.QueryContext(ctx, query, arg)
	} else {
		rows, err = r.db.QueryContext(ctx, query, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.listIDs query: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.listIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.listIDs rows.Err: %w", err)
	}
	return ids, nil
}
