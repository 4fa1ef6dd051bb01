package repositories

import (
	"context"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	FindByPair(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error)
	// CreateIfAbsent inserts conv unless its pair already owns a conversation,
	// and returns whichever conversation the pair ends up with. created is
	// true only for the caller whose insert won.
	CreateIfAbsent(ctx context.Context, conv *models.Conversation) (stored *models.Conversation, created bool, err error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	ResetUnread(ctx context.Context, conversationID, userID uuid.UUID) error
}

type GormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

var _ ConversationRepository = (*GormConversationRepository)(nil)

func withParticipants(db *gorm.DB) *gorm.DB {
	return db.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_at asc")
	})
}

func (r *GormConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	return findConversation(r.db.WithContext(ctx), "id = ?", id)
}

func (r *GormConversationRepository) FindByPair(ctx context.Context, a, b uuid.UUID) (*models.Conversation, error) {
	return findConversation(r.db.WithContext(ctx), "pair_key = ?", models.PairKey(a, b))
}

func findConversation(db *gorm.DB, query string, arg any) (*models.Conversation, error) {
	var conv models.Conversation
	if err := withParticipants(db).Where(query, arg).First(&conv).Error; err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

func (r *GormConversationRepository) CreateIfAbsent(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	var stored *models.Conversation
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		participants := conv.Participants
		result := tx.Omit("Participants").
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "pair_key"}}, DoNothing: true}).
			Create(conv)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 1 {
			created = true
			for i := range participants {
				participants[i].ConversationID = conv.ID
			}
			if err := tx.Create(&participants).Error; err != nil {
				return err
			}
		}

		var err error
		stored, err = findConversation(tx, "pair_key = ?", conv.PairKey)
		return err
	})
	if err != nil {
		return nil, false, translate(err)
	}
	return stored, created, nil
}

func (r *GormConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	conversations := make([]models.Conversation, 0)
	err := withParticipants(r.db.WithContext(ctx)).
		Where("id IN (?)", r.db.Model(&models.ConversationParticipant{}).Select("conversation_id").Where("user_id = ?", userID)).
		Order("updated_at desc").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *GormConversationRepository) ResetUnread(ctx context.Context, conversationID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("unread_count", 0)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// touchConversation records msg as the conversation's latest message and bumps
// every other participant's unread counter in place.
func touchConversation(tx *gorm.DB, msg *models.Message, now time.Time) error {
	result := tx.Model(&models.Conversation{}).
		Where("id = ?", msg.ConversationID).
		Updates(map[string]any{
			"last_message_content":     msg.Content,
			"last_message_sender_id":   msg.SenderID,
			"last_message_sender_name": msg.SenderName,
			"last_message_at":          msg.CreatedAt,
			"updated_at":               now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return tx.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id <> ?", msg.ConversationID, msg.SenderID).
		Update("unread_count", gorm.Expr("unread_count + ?", 1)).Error
}
