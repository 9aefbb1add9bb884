package bot

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetBot(ctx context.Context, id string) (*Bot, error) {
	var b Bot
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) ListBots(ctx context.Context) ([]Bot, error) {
	var bots []Bot
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&bots).Error; err != nil {
		return nil, err
	}
	return bots, nil
}

func (r *Repo) CreateBot(ctx context.Context, b *Bot) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *Repo) SaveBot(ctx context.Context, b *Bot) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *Repo) DeleteBot(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&Bot{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *Repo) GetAPIKey(ctx context.Context, id string) (*APIKey, error) {
	var k APIKey
	if err := r.db.WithContext(ctx).First(&k, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *Repo) CreateAPIKey(ctx context.Context, k *APIKey) error {
	return r.db.WithContext(ctx).Create(k).Error
}
