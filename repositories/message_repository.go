package repositories

import (
	"context"
	"time"

	"github.com/anjiri1684/school_admin/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository interface {
	// Append stores msg, adds its sender to the read-by set and updates the
	// owning conversation's summary and unread counters as one unit.
	Append(ctx context.Context, msg *models.Message) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
	// MarkRead adds readerID to the read-by set of every message in the
	// conversation that the reader did not send. Returns the rows added.
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) (int64, error)
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

var _ MessageRepository = (*GormMessageRepository)(nil)

func (r *GormMessageRepository) Append(ctx context.Context, msg *models.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		read := models.MessageRead{MessageID: msg.ID, UserID: msg.SenderID, ReadAt: msg.CreatedAt}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&read).Error; err != nil {
			return err
		}
		return touchConversation(tx, msg, msg.CreatedAt)
	})
	if err != nil {
		return translate(err)
	}
	msg.ReadBy = []uuid.UUID{msg.SenderID}
	return nil
}

func (r *GormMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return messages, nil
	}

	ids := make([]uuid.UUID, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}
	var reads []models.MessageRead
	if err := r.db.WithContext(ctx).Where("message_id IN ?", ids).Order("read_at asc").Find(&reads).Error; err != nil {
		return nil, err
	}

	readers := make(map[uuid.UUID][]uuid.UUID, len(messages))
	for _, read := range reads {
		readers[read.MessageID] = append(readers[read.MessageID], read.UserID)
	}
	for i := range messages {
		messages[i].ReadBy = readers[messages[i].ID]
		if messages[i].ReadBy == nil {
			messages[i].ReadBy = []uuid.UUID{}
		}
	}
	return messages, nil
}

func (r *GormMessageRepository) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) (int64, error) {
	unread := r.db.Model(&models.Message{}).
		Select("id").
		Where("conversation_id = ? AND sender_id <> ?", conversationID, readerID).
		Where("NOT EXISTS (?)", r.db.Model(&models.MessageRead{}).
			Select("1").
			Where("message_reads.message_id = messages.id AND message_reads.user_id = ?", readerID))

	var ids []uuid.UUID
	if err := unread.WithContext(ctx).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	reads := make([]models.MessageRead, len(ids))
	for i, id := range ids {
		reads[i] = models.MessageRead{MessageID: id, UserID: readerID, ReadAt: at}
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&reads)
	return result.RowsAffected, result.Error
}
