package settings

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Repository persists settings blocks by key.
type Repository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Find(ctx context.Context, keys ...enums.SettingKey) ([]models.Setting, error)
	Upsert(ctx context.Context, key enums.SettingKey, value datatypes.JSON) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a settings repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]models.Setting, error) {
	var rows []models.Setting
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Find(ctx context.Context, keys ...enums.SettingKey) ([]models.Setting, error) {
	var rows []models.Setting
	if len(keys) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Where("key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Upsert(ctx context.Context, key enums.SettingKey, value datatypes.JSON) error {
	row := models.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}
