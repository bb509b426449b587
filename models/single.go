package models

import (
	"context"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
	"gorm.io/gorm/clause"
)

// Single stores settings documents as (doctype, field, value) rows.
type Single struct {
	Doctype string `gorm:"primaryKey;size:140" json:"doctype"`
	Field   string `gorm:"primaryKey;size:140" json:"field"`
	Value   string `gorm:"type:text" json:"value"`
}

func singleCacheKey(doctype, field string) string {
	return "Single:" + doctype + ":" + field
}

// GetSingleValue returns "" for a setting that was never saved.
func GetSingleValue(ctx context.Context, doctype, field string) (string, error) {
	return utils.CacheThrough(singleCacheKey(doctype, field), func() (string, error) {
		var values []string
		db := config.GetDB()
		err := db.WithContext(ctx).Model(&Single{}).
			Where("doctype = ? AND field = ?", doctype, field).
			Limit(1).
			Pluck("value", &values).Error
		if err != nil || len(values) == 0 {
			return "", err
		}
		return values[0], nil
	})
}

func SetSingleValue(ctx context.Context, doctype, field, value string) error {
	db := config.GetDB()
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doctype"}, {Name: "field"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&Single{Doctype: doctype, Field: field, Value: value}).Error
	if err != nil {
		return err
	}
	return utils.InvalidateCache(singleCacheKey(doctype, field))
}
