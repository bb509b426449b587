package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
)

type Supplier struct {
	Name          string    `gorm:"primaryKey;size:140" json:"name"`
	SupplierName  string    `gorm:"index;size:140;not null" json:"supplier_name"`
	SupplierGroup string    `gorm:"index;size:140" json:"supplier_group"`
	Disabled      bool      `gorm:"not null;default:false" json:"disabled"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name          string `json:"name" validate:"required"`
	SupplierName  string `json:"supplier_name"`
	SupplierGroup string `json:"supplier_group"`
}

const supplierGroupCacheKey = "SupplierGroup"

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	supplier := Supplier{
		Name:          strings.TrimSpace(input.Name),
		SupplierName:  input.SupplierName,
		SupplierGroup: input.SupplierGroup,
	}
	if supplier.SupplierName == "" {
		supplier.SupplierName = supplier.Name
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	if err := utils.InvalidateCache(supplierGroupCacheKey); err != nil {
		config.LogError(config.GetLogger(), "models", "CreateSupplier", "InvalidateCache", supplier.Name, err)
	}
	return &supplier, nil
}

// GetSupplierGroups maps every enabled supplier to its supplier group.
func GetSupplierGroups(ctx context.Context) (map[string]string, error) {
	return utils.CacheThrough(supplierGroupCacheKey, func() (map[string]string, error) {
		var rows []struct {
			Name          string
			SupplierGroup string
		}
		db := config.GetDB()
		err := db.WithContext(ctx).Model(&Supplier{}).
			Select("name, supplier_group").
			Where("disabled = ?", false).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		result := make(map[string]string, len(rows))
		for _, r := range rows {
			result[r.Name] = r.SupplierGroup
		}
		return result, nil
	})
}
