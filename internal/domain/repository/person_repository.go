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

type PersonRepository interface {
	Create(ctx context.Context, person *model.Person) error
	FindByEmail(ctx context.Context, email string) (*model.Person, error)
	FindByUsername(ctx context.Context, username string) (*model.Person, error)
	FindByID(ctx context.Context, id string) (*model.Person, error)
}

type pgPersonRepository struct {
	db *sql.DB
}

func NewPgPersonRepository(db *sql.DB) PersonRepository {
	return &pgPersonRepository{db: db}
}

func (r *pgPersonRepository) Create(ctx context.Context, p *model.Person) error {
	query := `INSERT INTO persons (id, username, email, hashed_password, phone, allergies, comments)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Username, p.Email, p.HashedPassword, p.Phone, p.Allergies, p.Comments)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("person with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgPersonRepository.Create: %w", err)
	}
	return nil
}

func (r *pgPersonRepository) FindByEmail(ctx context.Context, email string) (*model.Person, error) {
	return r.findOne(ctx, `email = $1`, email)
}

func (r *pgPersonRepository) FindByUsername(ctx context.Context, username string) (*model.Person, error) {
	return r.findOne(ctx, `username = $1`, username)
}

func (r *pgPersonRepository) FindByID(ctx context.Context, id string) (*model.Person, error) {
	return r.findOne(ctx, `id = $1`, id)
}

func (r *pgPersonRepository) findOne(ctx context.Context, where, arg string) (*model.Person, error) {
	query := `SELECT id, username, email, hashed_password, phone, allergies, comments, created_at, updated_at
	          FROM persons WHERE ` + where
	person := &model.Person{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&person.ID, &person.Username, &person.Email, &person.HashedPassword,
		&person.Phone, &person.Allergies, &person.Comments, &person.CreatedAt, &person.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgPersonRepository.findOne: %w", err)
	}
	return person, nil
}
