package repo

import (
	"CodeVault/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRepository — счётчики показов контейнеров в SQL-БД.
type UsageRepository struct {
	db *gorm.DB
}

// NewUsageRepository создаёт репозиторий счётчиков.
func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Current возвращает счётчик контейнера; для неизвестного id — 0.
func (r *UsageRepository) Current(ctx context.Context, containerID string) (int, error) {
	var u model.CodeUsage
	err := r.db.WithContext(ctx).Where("container_id = ?", containerID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return u.Reveals, nil
}

// Increment атомарно увеличивает счётчик (upsert) и возвращает новое значение.
func (r *UsageRepository) Increment(ctx context.Context, containerID string) (int, error) {
	var n int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &model.CodeUsage{ContainerID: containerID, Reveals: 1}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "container_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"reveals":    gorm.Expr("code_usages.reveals + 1"),
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).Create(row).Error; err != nil {
			return err
		}
		var u model.CodeUsage
		if err := tx.Where("container_id = ?", containerID).First(&u).Error; err != nil {
			return err
		}
		n = u.Reveals
		return nil
	})
	return n, err
}
