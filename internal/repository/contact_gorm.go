package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"chemsite/internal/model"
)

// GormContactStore stores contact messages through gorm. It backs the mysql
// contact store.
type GormContactStore struct {
	db *gorm.DB
}

func NewGormContactStore(db *gorm.DB) *GormContactStore {
	return &GormContactStore{db: db}
}

func (r *GormContactStore) Migrate() error {
	if err := r.db.AutoMigrate(&model.ContactMessage{}); err != nil {
		return fmt.Errorf("auto migrate contact messages failed: %w", err)
	}
	return nil
}

func (r *GormContactStore) Create(ctx context.Context, msg *model.ContactMessage) error {
	msg.ID = 0
	msg.CreatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("create contact message failed: %w", err)
	}
	return nil
}

func (r *GormContactStore) Get(ctx context.Context, id uint) (*model.ContactMessage, error) {
	var msg model.ContactMessage
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("get contact message failed: %w", err)
	}
	return &msg, nil
}

func (r *GormContactStore) List(ctx context.Context, limit, offset int) ([]model.ContactMessage, error) {
	limit, offset = normalizePage(limit, offset)

	var messages []model.ContactMessage
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Offset(offset).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list contact messages failed: %w", err)
	}
	return messages, nil
}

func (r *GormContactStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ContactMessage{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count contact messages failed: %w", err)
	}
	return count, nil
}

func (r *GormContactStore) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormContactStore) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
