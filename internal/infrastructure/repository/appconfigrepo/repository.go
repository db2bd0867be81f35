package appconfigrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"r2-dashboard/internal/domain/appconfig"
	"r2-dashboard/internal/infrastructure/database/entities"
	"r2-dashboard/internal/utils/platformerrors"
)

// Repository persists dashboard settings in the app_config table.
type Repository struct {
	db *gorm.DB
}

var _ appconfig.Repository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]appconfig.Entry, error) {
	var rows []entities.AppConfig
	if err := r.db.WithContext(ctx).Order("key").Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list configuration",
			err,
			"3e7b1c90-a4d2-4f58-b6e1-9c0d2a5f7e38",
		)
	}
	entries := make([]appconfig.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, mapEntity(row))
	}
	return entries, nil
}

// Upsert writes entries in one transaction, replacing the value of existing keys.
func (r *Repository) Upsert(ctx context.Context, entries []appconfig.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]entities.AppConfig, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, entities.AppConfig{Key: e.Key, Value: e.Value, IsSecret: e.IsSecret})
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "is_secret", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to save configuration",
			err,
			"b58d0f4e-2c61-47a9-83e5-d1f7a6c09b24",
		)
	}
	return nil
}

func mapEntity(row entities.AppConfig) appconfig.Entry {
	return appconfig.Entry{
		ID:        row.ID,
		Key:       row.Key,
		Value:     row.Value,
		IsSecret:  row.IsSecret,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
