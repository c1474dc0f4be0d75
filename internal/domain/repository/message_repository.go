package repository

import (
	"context"
	"database/sql"
	"fmt"

	"huntserver/internal/domain/model"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ListForTeam(ctx context.Context, teamID string) ([]model.Message, error)
}

type pgMessageRepository struct {
	db *sql.DB
}

func NewPgMessageRepository(db *sql.DB) MessageRepository {
	return &pgMessageRepository{db: db}
}

func (r *pgMessageRepository) Create(ctx context.Context, m *model.Message) error {
	query := `INSERT INTO messages (id, team_id, is_response, text, time) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.TeamID, m.IsResponse, m.Text, m.Time)
	if err != nil {
		return fmt.Errorf("pgMessageRepository.Create: %w", err)
	}
	return nil
}

func (r *pgMessageRepository) ListForTeam(ctx context.Context, teamID string) ([]model.Message, error) {
	query := `SELECT id, team_id, is_response, text, time FROM messages WHERE team_id = $1 ORDER BY time ASC`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("pgMessageRepository.ListForTeam query: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.TeamID, &m.IsResponse, &m.Text, &m.Time); err != nil {
			return nil, fmt.Errorf("pgMessageRepository.ListForTeam scan: %w", err)
		}
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgMessageRepository.ListForTeam rows.Err: %w", err)
	}
	return messages, nil
}
