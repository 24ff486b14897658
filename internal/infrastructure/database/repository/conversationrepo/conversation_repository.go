package conversationrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"todo-server/services/todo-api/internal/domain/conversation"
	"todo-server/services/todo-api/internal/infrastructure/database/dbschema"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

type ConversationGormRepository struct {
	db *gorm.DB
}

var _ conversation.ConversationRepository = (*ConversationGormRepository)(nil)

func NewConversationGormRepository(db *gorm.DB) conversation.ConversationRepository {
	return &ConversationGormRepository{db: db}
}

func (repo *ConversationGormRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	entity := dbschema.NewSchemaConversation(conv)
	if err := repo.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"e5f6a7b8-c9d0-4e1f-8a2b-3c4d5e6f7a8b",
		)
	}
	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

func (repo *ConversationGormRepository) FindByFilter(ctx context.Context, filter conversation.ConversationFilter) ([]*conversation.Conversation, error) {
	var entities []dbschema.Conversation
	query := repo.db.WithContext(ctx)
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.PublicID != nil {
		query = query.Where("public_id = ?", *filter.PublicID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if err := query.Order("updated_at DESC, id DESC").Find(&entities).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list conversations",
			err,
			"a7b8c9d0-e1f2-4a3b-8c4d-5e6f7a8b9c0d",
		)
	}

	conversations := make([]*conversation.Conversation, 0, len(entities))
	for i := range entities {
		conversations = append(conversations, entities[i].EtoD())
	}
	return conversations, nil
}

func (repo *ConversationGormRepository) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	var entity dbschema.Conversation
	err := repo.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"conversation not found",
			nil,
			"c9d0e1f2-a3b4-4c5d-8e6f-7a8b9c0d1e2f",
		)
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find conversation",
			err,
			"e1f2a3b4-c5d6-4e7f-8a8b-9c0d1e2f3a4b",
		)
	}
	return entity.EtoD(), nil
}

func (repo *ConversationGormRepository) Update(ctx context.Context, conv *conversation.Conversation) error {
	entity := dbschema.NewSchemaConversation(conv)
	if err := repo.db.WithContext(ctx).Save(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update conversation",
			err,
			"a3b4c5d6-e7f8-4a9b-8c0d-1e2f3a4b5c6d",
		)
	}
	return nil
}

// AddMessage persists the message and bumps the parent conversation's
// updated_at inside one transaction so recency ordering never drifts from
// the message log.
func (repo *ConversationGormRepository) AddMessage(ctx context.Context, conversationID uint, msg *conversation.Message) error {
	entity, err := dbschema.NewSchemaMessage(msg)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to encode message",
			err,
			"c5d6e7f8-a9b0-4c1d-8e2f-3a4b5c6d7e8f",
		)
	}
	entity.ConversationID = conversationID

	err = repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entity).Error; err != nil {
			return err
		}
		return tx.Model(&dbschema.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", time.Now().UTC()).
			Error
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to append message",
			err,
			"e7f8a9b0-c1d2-4e3f-8a4b-5c6d7e8f9a0b",
		)
	}

	msg.ID = entity.ID
	msg.CreatedAt = entity.CreatedAt
	return nil
}

// RecentMessages loads the newest limit messages, then reverses them so the
// caller sees the window oldest-first.
func (repo *ConversationGormRepository) RecentMessages(ctx context.Context, conversationID uint, limit int) ([]*conversation.Message, error) {
	var entities []dbschema.Message
	err := repo.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entities).
		Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load recent messages",
			err,
			"a9b0c1d2-e3f4-4a5b-8c6d-7e8f9a0b1c2d",
		)
	}

	messages := make([]*conversation.Message, 0, len(entities))
	for i := len(entities) - 1; i >= 0; i-- {
		msg, err := entities[i].EtoD()
		if err != nil {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeDatabaseError,
				"failed to decode message",
				err,
				"c1d2e3f4-a5b6-4c7d-8e8f-9a0b1c2d3e4f",
			)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (repo *ConversationGormRepository) AllMessages(ctx context.Context, conversationID uint) ([]*conversation.Message, error) {
	var entities []dbschema.Message
	err := repo.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to load messages",
			err,
			"e3f4a5b6-c7d8-4e9f-8a0b-1c2d3e4f5a6c",
		)
	}

	messages := make([]*conversation.Message, 0, len(entities))
	for i := range entities {
		msg, err := entities[i].EtoD()
		if err != nil {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeDatabaseError,
				"failed to decode message",
				err,
				"a5b6c7d8-e9f0-4a1b-8c2d-3e4f5a6b7c8e",
			)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (repo *ConversationGormRepository) CountMessages(ctx context.Context, conversationID uint) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&dbschema.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).
		Error
	if err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count messages",
			err,
			"c7d8e9f0-a1b2-4c3d-8e4f-5a6b7c8d9e10",
		)
	}
	return count, nil
}
