package chat

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// GetOrCreateConversation is the atomic lookup-or-create for one
// (bot, session) pair. Concurrent first messages for the same fresh
// session id converge on one row: the loser of the insert race falls
// back to fetching the winner's row via the unique index.
func (r *Repo) GetOrCreateConversation(ctx context.Context, botID, sessionID string) (*Conversation, bool, error) {
	var conv Conversation
	err := r.db.WithContext(ctx).
		Where("bot_id = ? AND session_id = ?", botID, sessionID).
		First(&conv).Error
	if err == nil {
		return &conv, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created := Conversation{BotID: botID, SessionID: sessionID}
	createErr := r.db.WithContext(ctx).Create(&created).Error
	if createErr == nil {
		return &created, true, nil
	}

	// Unique-index conflict: someone else created it between our
	// lookup and insert.
	err = r.db.WithContext(ctx).
		Where("bot_id = ? AND session_id = ?", botID, sessionID).
		First(&conv).Error
	if err == nil {
		return &conv, false, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, createErr
	}
	return nil, false, err
}

func (r *Repo) GetConversation(ctx context.Context, botID, sessionID string) (*Conversation, error) {
	var conv Conversation
	if err := r.db.WithContext(ctx).
		Where("bot_id = ? AND session_id = ?", botID, sessionID).
		First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListRecentMessagesDesc returns the most recent messages newest-first;
// callers reverse for provider context.
func (r *Repo) ListRecentMessagesDesc(ctx context.Context, conversationID uint64, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// RecentMessages returns up to limit most recent messages in
// chronological order.
func (r *Repo) RecentMessages(ctx context.Context, conversationID uint64, limit int) ([]Message, error) {
	desc, err := r.ListRecentMessagesDesc(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}
	asc := make([]Message, 0, len(desc))
	for i := len(desc) - 1; i >= 0; i-- {
		asc = append(asc, desc[i])
	}
	return asc, nil
}

// DeleteSessionMessages removes the conversation for (bot, session)
// together with all its messages. Returns false when no such
// conversation exists, so clearing twice reports true then false. A
// later turn for the same session lazily recreates the conversation.
func (r *Repo) DeleteSessionMessages(ctx context.Context, botID, sessionID string) (bool, error) {
	conv, err := r.GetConversation(ctx, botID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conv.ID).Delete(&Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Conversation{}, conv.ID).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
