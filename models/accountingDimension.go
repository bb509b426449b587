package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
)

// AccountingDimension is an extra analysis field stored as its own column on gl_entries.
type AccountingDimension struct {
	Fieldname    string `gorm:"primaryKey;size:64" json:"fieldname"`
	Label        string `gorm:"size:140;not null" json:"label"`
	DocumentType string `gorm:"size:140;not null" json:"document_type"`
	IsTree       bool   `gorm:"not null;default:false" json:"is_tree"`
	Disabled     bool   `gorm:"not null;default:false" json:"disabled"`
}

type NewAccountingDimension struct {
	Fieldname    string `json:"fieldname"`
	Label        string `json:"label" validate:"required"`
	DocumentType string `json:"document_type" validate:"required"`
	IsTree       bool   `json:"is_tree"`
}

const accountingDimensionCacheKey = "AccountingDimensions"

// Table is where the dimension's values live ("Cost Center" -> cost_centers).
func (d AccountingDimension) Table() string {
	return utils.DocTypeTable(d.DocumentType)
}

// CreateAccountingDimension registers a dimension and adds its column to gl_entries.
func CreateAccountingDimension(ctx context.Context, input *NewAccountingDimension) (*AccountingDimension, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	fieldname := input.Fieldname
	if fieldname == "" {
		fieldname = utils.Scrub(strings.TrimSpace(input.Label))
	}
	if !utils.IsIdentifier(fieldname) {
		return nil, utils.NewValidationError(utils.ErrInvalidFilter, "dimension fieldname %q", fieldname)
	}
	dim := AccountingDimension{
		Fieldname:    fieldname,
		Label:        input.Label,
		DocumentType: input.DocumentType,
		IsTree:       input.IsTree,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&dim).Error; err != nil {
		return nil, err
	}
	if !db.Migrator().HasColumn(&GLEntry{}, fieldname) {
		sql := fmt.Sprintf("ALTER TABLE gl_entries ADD COLUMN `%s` VARCHAR(140) NULL", fieldname)
		if err := db.WithContext(ctx).Exec(sql).Error; err != nil {
			return nil, err
		}
	}
	if err := utils.InvalidateCache(accountingDimensionCacheKey); err != nil {
		config.LogError(config.GetLogger(), "models", "CreateAccountingDimension", "InvalidateCache", fieldname, err)
	}
	return &dim, nil
}

// GetAccountingDimensions returns the enabled dimensions ordered by fieldname.
func GetAccountingDimensions(ctx context.Context) ([]AccountingDimension, error) {
	return utils.CacheThrough(accountingDimensionCacheKey, func() ([]AccountingDimension, error) {
		dims := []AccountingDimension{}
		db := config.GetDB()
		err := db.WithContext(ctx).Where("disabled = ?", false).Order("fieldname").Find(&dims).Error
		return dims, err
	})
}
