package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"huntserver/internal/common"
	"huntserver/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type PuzzleRepository interface {
	Create(ctx context.Context, tx *sql.Tx, puzzle *model.Puzzle) error
	Update(ctx context.Context, tx *sql.Tx, puzzle *model.Puzzle) error
	FindByID(ctx context.Context, id string) (*model.Puzzle, error)
	FindByPuzzleID(ctx context.Context, puzzleID string) (*model.Puzzle, error)
	ListByHunt(ctx context.Context, huntID string) ([]model.Puzzle, error)

	// SetUnlocks replaces the outgoing unlock edges of a puzzle.
	SetUnlocks(ctx context.Context, tx *sql.Tx, puzzleID string, unlockIDs []string) error
	// ListPrerequisites returns, per puzzle row ID in the hunt, the row
	// IDs of the puzzles whose solve counts toward unlocking it
	// (reverse of the unlocks edges).
	ListPrerequisites(ctx context.Context, tx *sql.Tx, huntID string) (map[string][]string, error)

	AddResponse(ctx context.Context, resp *model.Response) error
	ListResponses(ctx context.Context, puzzleID string) ([]model.Response, error)

	AddUnlockable(ctx context.Context, u *model.Unlockable) error
	ListUnlockables(ctx context.Context, puzzleID string) ([]model.Unlockable, error)
}

type pgPuzzleRepository struct {
	db *sql.DB
}

func NewPgPuzzleRepository(db *sql.DB) PuzzleRepository {
	return &pgPuzzleRepository{db: db}
}

const puzzleColumns = `id, hunt_id, puzzle_number, puzzle_name, puzzle_id, answer, link, num_required_to_unlock, num_pages`

func (r *pgPuzzleRepository) Create(ctx context.Context, tx *sql.Tx, p *model.Puzzle) error {
	query := `INSERT INTO puzzles (id, hunt_id, puzzle_number, puzzle_name, puzzle_id, answer, link, num_required_to_unlock, num_pages)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, p.ID, p.HuntID, p.PuzzleNumber, p.PuzzleName, p.PuzzleID, p.Answer, p.Link, p.NumRequiredToUnlock, p.NumPages)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.ID, p.HuntID, p.PuzzleNumber, p.PuzzleName, p.PuzzleID, p.Answer, p.Link, p.NumRequiredToUnlock, p.NumPages)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // puzzle_id unique
			return fmt.Errorf("puzzle with this external id already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgPuzzleRepository.Create: %w", err)
	}
	return nil
}

func (r *pgPuzzleRepository) Update(ctx context.Context, tx *sql.Tx, p *model.Puzzle) error {
	query := `UPDATE puzzles SET
	            puzzle_number = $1, puzzle_name = $2, answer = $3, link = $4,
	            num_required_to_unlock = $5, num_pages = $6
	          WHERE id = $7`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, p.PuzzleNumber, p.PuzzleName, p.Answer, p.Link, p.NumRequiredToUnlock, p.NumPages, p.ID)
	} else {
		_, err = r.db.ExecContext(ctx, query, p.PuzzleNumber, p.PuzzleName, p.Answer, p.Link, p.NumRequiredToUnlock, p.NumPages, p.ID)
	}
	if err != nil {
		return fmt.Errorf("pgPuzzleRepository.Update: %w", err)
	}
	return nil
}

func (r *pgPuzzleRepository) FindByID(ctx context.Context, id string) (*model.Puzzle, error) {
	return r.findOne(ctx, `SELECT `+puzzleColumns+` FROM puzzles WHERE id = $1`, id)
}

func (r *pgPuzzleRepository) FindByPuzzleID(ctx context.Context, puzzleID string) (*model.Puzzle, error) {
	return r.findOne(ctx, `SELECT `+puzzleColumns+` FROM puzzles WHERE puzzle_id = $1`, puzzleID)
}

func (r *pgPuzzleRepository) findOne(ctx context.Context, query, arg string) (*model.Puzzle, error) {
	puzzle := &model.Puzzle{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&puzzle.ID, &puzzle.HuntID, &puzzle.PuzzleNumber, &puzzle.PuzzleName,
		&puzzle.PuzzleID, &puzzle.Answer, &puzzle.Link, &puzzle.NumRequiredToUnlock, &puzzle.NumPages,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPuzzleRepository.findOne: %w", err)
	}
	return puzzle, nil
}

func (r *pgPuzzleRepository) ListByHunt(ctx context.Context, huntID string) ([]model.Puzzle, error) {
	query := `SELECT ` + puzzleColumns + ` FROM puzzles WHERE hunt_id = $1 ORDER BY puzzle_number ASC`
	rows, err := r.db.QueryContext(ctx, query, huntID)
	if err != nil {
		return nil, fmt.Errorf("pgPuzzleRepository.ListByHunt query: %w", err)
	}
	defer rows.Close()

	puzzles := []model.Puzzle{}
	for rows.Next() {
		var p model.Puzzle
		if err := rows.Scan(
			&p.ID, &p.HuntID, &p.PuzzleNumber, &p.PuzzleName,
			&p.PuzzleID, &p.Answer, &p.Link, &p.NumRequiredToUnlock, &p.NumPages,
		); err != nil {
			return nil, fmt.Errorf("pgPuzzleRepository.ListByHunt scan: %w", err)
		}
		puzzles = append(puzzles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPuzzleRepository.ListByHunt rows.Err: %w", err)
	}
	return puzzles, nil
}

func (r *pgPuzzleRepository) SetUnlocks(ctx context.Context, tx *sql.Tx, puzzleID string, unlockIDs []string) error {
	deleteQuery := `DELETE FROM puzzle_unlocks WHERE puzzle_id = $1`
	insertQuery := `INSERT INTO puzzle_unlocks (puzzle_id, unlocks_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, deleteQuery, puzzleID)
	} else {
		_, err = r.db.ExecContext(ctx, deleteQuery, puzzleID)
	}
	if err != nil {
		return fmt.Errorf("pgPuzzleRepository.SetUnlocks delete: %w", err)
	}

	for _, target := range unlockIDs {
		if tx != nil {
			_, err = tx.ExecContext(ctx, insertQuery, puzzleID, target)
		} else {
			_, err = r.db.ExecContext(ctx, insertQuery, puzzleID, target)
		}
		if err != nil {
			return fmt.Errorf("pgPuzzleRepository.SetUnlocks insert %s: %w", target, err)
		}
	}
	return nil
}

func (r *pgPuzzleRepository) ListPrerequisites(ctx context.Context, tx *sql.Tx, huntID string) (map[string][]string, error) {
	query := `SELECT pu.unlocks_id, pu.puzzle_id
	          FROM puzzle_unlocks pu
	          JOIN puzzles p ON pu.unlocks_id = p.id
	          WHERE p.hunt_id = $1`

	var rows *sql.Rows
	var err error
	if tx != nil {
		rows, err = tx.QueryContext(ctx, query, huntID)
	} else {
		rows, err = r.db.QueryContext(ctx, query, huntID)
	}
	if err != nil {
		return nil, fmt.Errorf("pgPuzzleRepository.ListPrerequisites query: %w", err)
	}
	defer rows.Close()

	prereqs := make(map[string][]string)
	for rows.Next() {
		var target, source string
		if err := rows.Scan(&target, &source); err != nil {
			return nil, fmt.Errorf("pgPuzzleRepository.ListPrerequisites scan: %w", err)
		}
		prereqs[target] = append(prereqs[target], source)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPuzzleRepository.ListPrerequisites rows.Err: %w", err)
	}
	return prereqs, nil
}

func (r *pgPuzzleRepository) AddResponse(ctx context.Context, resp *model.Response) error {
	query := `INSERT INTO responses (id, puzzle_id, regex, text, sort_order) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, resp.ID, resp.PuzzleID, resp.Regex, resp.Text, resp.SortOrder)
	if err != nil {
		return fmt.Errorf("pgPuzzleRepository.AddResponse: %w", err)
	}
	return nil
}

func (r *pgPuzzleRepository) ListResponses(ctx context.Context, puzzleID string) ([]model.Response, error) {
	query := `SELECT id, puzzle_id, regex, text, sort_order FROM responses WHERE puzzle_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, puzzleID)
	if err != nil {
		return nil, fmt.Errorf("pgPuzzleRepository.ListResponses query: %w", err)
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		var resp model.Response
		if err := rows.Scan(&resp.ID, &resp.PuzzleID, &resp.Regex, &resp.Text, &resp.SortOrder); err != nil {
			return nil, fmt.Errorf("pgPuzzleRepository.ListResponses scan: %w", err)
		}
		responses = append(responses, resp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPuzzleRepository.ListResponses rows.Err: %w", err)
	}
	return responses, nil
}

func (r *pgPuzzleRepository) AddUnlockable(ctx context.Context, u *model.Unlockable) error {
	query := `INSERT INTO unlockables (id, puzzle_id, content_type, content) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.PuzzleID, u.ContentType, u.Content)
	if err != nil {
		return fmt.Errorf("pgPuzzleRepository.AddUnlockable: %w", err)
	}
	return nil
}

func (r *pgPuzzleRepository) ListUnlockables(ctx context.Context, puzzleID string) ([]model.Unlockable, error) {
	query := `SELECT id, puzzle_id, content_type, content FROM unlockables WHERE puzzle_id = $1`
	rows, err := r.db.QueryContext(ctx, query, puzzleID)
	if err != nil {
		return nil, fmt.Errorf("pgPuzzleRepository.ListUnlockables query: %w", err)
	}
	defer rows.Close()

	unlockables := []model.Unlockable{}
	for rows.Next() {
		var u model.Unlockable
		if err := rows.Scan(&u.ID, &u.PuzzleID, &u.ContentType, &u.Content); err != nil {
			return nil, fmt.Errorf("pgPuzzleRepository.ListUnlockables scan: %w", err)
		}
		unlockables = append(unlockables, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgPuzzleRepository.ListUnlockables rows.Err: %w", err)
	}
	return unlockables, nil
}
