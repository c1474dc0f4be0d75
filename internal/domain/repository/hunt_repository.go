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

type HuntRepository interface {
	Create(ctx context.Context, hunt *model.Hunt) error
	Update(ctx context.Context, hunt *model.Hunt) error
	FindByID(ctx context.Context, id string) (*model.Hunt, error)
	ListAll(ctx context.Context) ([]model.Hunt, error)

	// FindCurrent returns every hunt holding the current flag. The
	// service layer enforces that exactly one exists; the repository
	// reports what is actually stored.
	FindCurrent(ctx context.Context) ([]model.Hunt, error)

	ClearCurrent(ctx context.Context, tx *sql.Tx, exceptID string) error
	SetCurrent(ctx context.Context, tx *sql.Tx, id string) error
}

type pgHuntRepository struct {
	db *sql.DB
}

func NewPgHuntRepository(db *sql.DB) HuntRepository {
	return &pgHuntRepository{db: db}
}

const huntColumns = `id, hunt_name, hunt_number, team_size, start_date, end_date, location, is_current`

func (r *pgHuntRepository) Create(ctx context.Context, h *model.Hunt) error {
	query := `INSERT INTO hunts (id, hunt_name, hunt_number, team_size, start_date, end_date, location, is_current)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, h.ID, h.HuntName, h.HuntNumber, h.TeamSize, h.StartDate, h.EndDate, h.Location, h.IsCurrent)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // hunt_number unique
			return fmt.Errorf("hunt with this number already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgHuntRepository.Create: %w", err)
	}
	return nil
}

// Update writes the mutable hunt fields. The current flag is not
// touched here; it only moves via ClearCurrent/SetCurrent inside a
// transaction.
func (r *pgHuntRepository) Update(ctx context.Context, h *model.Hunt) error {
	query := `UPDATE hunts SET
	            hunt_name = $1, hunt_number = $2, team_size = $3,
	            start_date = $4, end_date = $5, location = $6
	          WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query, h.HuntName, h.HuntNumber, h.TeamSize, h.StartDate, h.EndDate, h.Location, h.ID)
	if err != nil {
		return fmt.Errorf("pgHuntRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgHuntRepository) FindByID(ctx context.Context, id string) (*model.Hunt, error) {
	query := `SELECT ` + huntColumns + ` FROM hunts WHERE id = $1`
	hunt := &model.Hunt{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&hunt.ID, &hunt.HuntName, &hunt.HuntNumber, &hunt.TeamSize,
		&hunt.StartDate, &hunt.EndDate, &hunt.Location, &hunt.IsCurrent,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgHuntRepository.FindByID: %w", err)
	}
	return hunt, nil
}

func (r *pgHuntRepository) ListAll(ctx context.Context) ([]model.Hunt, error) {
	query := `SELECT ` + huntColumns + ` FROM hunts ORDER BY hunt_number ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgHuntRepository.ListAll query: %w", err)
	}
	defer rows.Close()

	return scanHunts(rows)
}

func (r *pgHuntRepository) FindCurrent(ctx context.Context) ([]model.Hunt, error) {
	query := `SELECT ` + huntColumns + ` FROM hunts WHERE is_current = TRUE`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgHuntRepository.FindCurrent query: %w", err)
	}
	defer rows.Close()

	return scanHunts(rows)
}

func (r *pgHuntRepository) ClearCurrent(ctx context.Context, tx *sql.Tx, exceptID string) error {
	query := `UPDATE hunts SET is_current = FALSE WHERE is_current = TRUE AND id <> $1`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, exceptID)
	} else {
		_, err = r.db.ExecContext(ctx, query, exceptID)
	}
	if err != nil {
		return fmt.Errorf("pgHuntRepository.ClearCurrent: %w", err)
	}
	return nil
}

func (r *pgHuntRepository) SetCurrent(ctx context.Context, tx *sql.Tx, id string) error {
	query := `UPDATE hunts SET is_current = TRUE WHERE id = $1`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, id)
	} else {
		res, err = r.db.ExecContext(ctx, query, id)
	}
	if err != nil {
		return fmt.Errorf("pgHuntRepository.SetCurrent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanHunts(rows *sql.Rows) ([]model.Hunt, error) {
	hunts := []model.Hunt{}
	for rows.Next() {
		var h model.Hunt
		if err := rows.Scan(
			&h.ID, &h.HuntName, &h.HuntNumber, &h.TeamSize,
			&h.StartDate, &h.EndDate, &h.Location, &h.IsCurrent,
		); err != nil {
			return nil, fmt.Errorf("scanHunts: %w", err)
		}
		hunts = append(hunts, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanHunts rows.Err: %w", err)
	}
	return hunts, nil
}
