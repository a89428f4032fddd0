package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cheatwell/cheatwell-api/internal/dto"
	"github.com/cheatwell/cheatwell-api/internal/repository"
)

// ErrConversationNotFound indicates the requested record does not exist.
var ErrConversationNotFound = errors.New("conversation not found")

const defaultHistoryLimit = 50

// HistoryService exposes the processed-submission archive.
type HistoryService interface {
	List(ctx context.Context, limit int) ([]dto.ConversationResponse, error)
	Get(ctx context.Context, id string) (dto.ConversationResponse, error)
	Delete(ctx context.Context, id string) error
}

type historyService struct {
	repo   repository.ConversationRepository
	logger zerolog.Logger
}

// NewHistoryService builds the history service.
func NewHistoryService(repo repository.ConversationRepository, logger zerolog.Logger) HistoryService {
	return &historyService{
		repo:   repo,
		logger: logger.With().Str("component", "history_service").Logger(),
	}
}

func (s *historyService) List(ctx context.Context, limit int) ([]dto.ConversationResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}

	conversations, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	return dto.NewConversationResponseSlice(conversations), nil
}

func (s *historyService) Get(ctx context.Context, id string) (dto.ConversationResponse, error) {
	conversation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ConversationResponse{}, ErrConversationNotFound
		}

		return dto.ConversationResponse{}, err
	}

	return dto.NewConversationResponse(conversation), nil
}

func (s *historyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConversationNotFound
		}
		return err
	}

	s.logger.Info().Str("conversation_id", id).Msg("conversation deleted")
	return nil
}
