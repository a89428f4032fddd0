package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/cheatwell/cheatwell-api/internal/models"
)

// ConversationRepository defines persistence operations for processed
// submissions.
type ConversationRepository interface {
	Save(ctx context.Context, conversation *models.Conversation) error
	List(ctx context.Context, limit int) ([]models.Conversation, error)
	GetByID(ctx context.Context, id string) (models.Conversation, error)
	Delete(ctx context.Context, id string) error
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository instantiates a GORM-backed repository.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Save(ctx context.Context, conversation *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

func (r *conversationRepository) List(ctx context.Context, limit int) ([]models.Conversation, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var conversations []models.Conversation
	if err := query.Find(&conversations).Error; err != nil {
		return nil, err
	}

	return conversations, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error; err != nil {
		return models.Conversation{}, err
	}

	return conversation, nil
}

func (r *conversationRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Conversation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
