package service

import (
	"context"
	"strings"
	"time"

	"huntserver/internal/common"
	"huntserver/internal/domain/model"
	"huntserver/internal/domain/repository"

	"github.com/google/uuid"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	teamRepo    repository.TeamRepository
}

func NewMessageService(messageRepo repository.MessageRepository, teamRepo repository.TeamRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo, teamRepo: teamRepo}
}

// CreateMessage records a team-directed note; isResponse distinguishes
// a staff reply from a team request.
func (s *MessageService) CreateMessage(ctx context.Context, teamID, text string, isResponse bool) (*model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.Errorf("message text must not be blank: %w", common.ErrValidation)
	}
	if _, err := s.teamRepo.FindByID(ctx, teamID); err != nil {
		return nil, err
	}
	msg := &model.Message{
		ID:         uuid.NewString(),
		TeamID:     teamID,
		IsResponse: isResponse,
		Text:       text,
		Time:       time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) ListForTeam(ctx context.Context, teamID string) ([]model.Message, error) {
	return s.messageRepo.ListForTeam(ctx, teamID)
}
