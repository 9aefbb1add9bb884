package webhook

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, w *Webhook) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Webhook, error) {
	var w Webhook
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repo) ListForBot(ctx context.Context, botID string, activeOnly bool) ([]Webhook, error) {
	q := r.db.WithContext(ctx).Where("bot_id = ?", botID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var hooks []Webhook
	if err := q.Find(&hooks).Error; err != nil {
		return nil, err
	}
	return hooks, nil
}

// ListActiveForEvent returns the bot's active subscriptions whose event
// set contains event. Membership is checked in Go since events are
// stored comma-separated.
func (r *Repo) ListActiveForEvent(ctx context.Context, botID, event string) ([]Webhook, error) {
	hooks, err := r.ListForBot(ctx, botID, true)
	if err != nil {
		return nil, err
	}
	matched := hooks[:0]
	for _, w := range hooks {
		if w.SubscribedTo(event) {
			matched = append(matched, w)
		}
	}
	return matched, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&Webhook{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *Repo) Save(ctx context.Context, w *Webhook) error {
	return r.db.WithContext(ctx).Save(w).Error
}

// RecordDelivery bumps the call counter and stores the latest outcome.
// The increment is a DB-side expression so concurrent deliveries don't
// lose counts.
func (r *Repo) RecordDelivery(ctx context.Context, id string, statusCode int, errMsg *string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&Webhook{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_calls":      gorm.Expr("total_calls + 1"),
			"last_called_at":   now,
			"last_status_code": statusCode,
			"last_error":       errMsg,
		}).Error
}
