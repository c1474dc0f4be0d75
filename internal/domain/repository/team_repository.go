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

type TeamRepository interface {
	Create(ctx context.Context, tx *sql.Tx, team *model.Team) error
	FindByID(ctx context.Context, id string) (*model.Team, error)
	// FindByName matches the team name case-insensitively within a hunt.
	FindByName(ctx context.Context, huntID, name string) (*model.Team, error)
	ListByHunt(ctx context.Context, huntID string) ([]model.Team, error)

	CountMembers(ctx context.Context, tx *sql.Tx, teamID string) (int, error)
	AddMember(ctx context.Context, tx *sql.Tx, teamID, personID string) error
	RemoveMember(ctx context.Context, teamID, personID string) error
	ListMembers(ctx context.Context, teamID string) ([]model.Person, error)

	// FindForPerson returns the team the person belongs to within the
	// given hunt, or ErrNotFound.
	FindForPerson(ctx context.Context, personID, huntID string) (*model.Team, error)
}

type pgTeamRepository struct {
	db *sql.DB
}

func NewPgTeamRepository(db *sql.DB) TeamRepository {
	return &pgTeamRepository{db: db}
}

const teamColumns = `id, hunt_id, team_name, location, join_code, playtester`

func (r *pgTeamRepository) Create(ctx context.Context, tx *sql.Tx, t *model.Team) error {
	query := `INSERT INTO teams (id, hunt_id, team_name, location, join_code, playtester)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, t.ID, t.HuntID, t.TeamName, t.Location, t.JoinCode, t.Playtester)
	} else {
		_, err = r.db.ExecContext(ctx, query, t.ID, t.HuntID, t.TeamName, t.Location, t.JoinCode, t.Playtester)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // (hunt_id, lower(team_name)) unique
			return fmt.Errorf("team with this name already exists in the hunt: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgTeamRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) FindByID(ctx context.Context, id string) (*model.Team, error) {
	return r.findOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
}

func (r *pgTeamRepository) FindByName(ctx context.Context, huntID, name string) (*model.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE hunt_id = $1 AND lower(team_name) = lower($2)`
	team := &model.Team{}
	err := r.db.QueryRowContext(ctx, query, huntID, name).Scan(
		&team.ID, &team.HuntID, &team.TeamName, &team.Location, &team.JoinCode, &team.Playtester,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.FindByName: %w", err)
	}
	return team, nil
}

func (r *pgTeamRepository) findOne(ctx context.Context, query, arg string) (*model.Team, error) {
	team := &model.Team{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&team.ID, &team.HuntID, &team.TeamName, &team.Location, &team.JoinCode, &team.Playtester,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.findOne: %w", err)
	}
	return team, nil
}

func (r *pgTeamRepository) ListByHunt(ctx context.Context, huntID string) ([]model.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE hunt_id = $1 ORDER BY team_name ASC`
	rows, err := r.db.QueryContext(ctx, query, huntID)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListByHunt query: %w", err)
	}
	defer rows.Close()

	teams := []model.Team{}
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.HuntID, &t.TeamName, &t.Location, &t.JoinCode, &t.Playtester); err != nil {
			return nil, fmt.Errorf("pgTeamRepository.ListByHunt scan: %w", err)
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListByHunt rows.Err: %w", err)
	}
	return teams, nil
}

func (r *pgTeamRepository) CountMembers(ctx context.Context, tx *sql.Tx, teamID string) (int, error) {
	query := `SELECT COUNT(*) FROM team_members WHERE team_id = $1`
	var count int
	var err error
	if tx != nil {
		err = tx.QueryRowContext(ctx, query, teamID).Scan(&count)
	} else {
		err = r.db.QueryRowContext(ctx, query, teamID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("pgTeamRepository.CountMembers: %w", err)
	}
	return count, nil
}

func (r *pgTeamRepository) AddMember(ctx context.Context, tx *sql.Tx, teamID, personID string) error {
	query := `INSERT INTO team_members (team_id, person_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, teamID, personID)
	} else {
		_, err = r.db.ExecContext(ctx, query, teamID, personID)
	}
	if err != nil {
		return fmt.Errorf("pgTeamRepository.AddMember: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) RemoveMember(ctx context.Context, teamID, personID string) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND person_id = $2`
	_, err := r.db.ExecContext(ctx, query, teamID, personID)
	if err != nil {
		return fmt.Errorf("pgTeamRepository.RemoveMember: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) ListMembers(ctx context.Context, teamID string) ([]model.Person, error) {
	query := `SELECT p.id, p.username, p.email, p.phone, p.allergies, p.comments, p.created_at, p.updated_at
	          FROM persons p
	          JOIN team_members tm ON tm.person_id = p.id
	          WHERE tm.team_id = $1
	          ORDER BY p.username ASC`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListMembers query: %w", err)
	}
	defer rows.Close()

	members := []model.Person{}
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.Username, &p.Email, &p.Phone, &p.Allergies, &p.Comments, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgTeamRepository.ListMembers scan: %w", err)
		}
		members = append(members, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListMembers rows.Err: %w", err)
	}
	return members, nil
}

func (r *pgTeamRepository) FindForPerson(ctx context.Context, personID, huntID string) (*model.Team, error) {
	query := `SELECT t.id, t.hunt_id, t.team_name, t.location, t.join_code, t.playtester
	          FROM teams t
	          JOIN team_members tm ON tm.team_id = t.id
	          WHERE tm.person_id = $1 AND t.hunt_id = $2`
	team := &model.Team{}
	err := r.db.QueryRowContext(ctx, query, personID, huntID).Scan(
		&team.ID, &team.HuntID, &team.TeamName, &team.Location, &team.JoinCode, &team.Playtester,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTeamRepository.FindForPerson: %w", err)
	}
	return team, nil
}
