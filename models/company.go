package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
	"gorm.io/gorm"
)

type Company struct {
	Name            string    `gorm:"primaryKey;size:140" json:"name"`
	Abbr            string    `gorm:"size:10;not null" json:"abbr"`
	DefaultCurrency string    `gorm:"size:3;not null" json:"default_currency"`
	RoundOffAccount string    `gorm:"size:140" json:"round_off_account"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompany struct {
	Name            string `json:"name" validate:"required"`
	Abbr            string `json:"abbr" validate:"required,max=10"`
	DefaultCurrency string `json:"default_currency" validate:"required,len=3"`
	RoundOffAccount string `json:"round_off_account"`
}

func companyCacheKey(name string) string {
	return "Company:" + name
}

func CreateCompany(ctx context.Context, input *NewCompany) (*Company, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	company := Company{
		Name:            strings.TrimSpace(input.Name),
		Abbr:            input.Abbr,
		DefaultCurrency: strings.ToUpper(input.DefaultCurrency),
		RoundOffAccount: input.RoundOffAccount,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&company).Error; err != nil {
		return nil, err
	}
	if err := utils.InvalidateCache(companyCacheKey(company.Name)); err != nil {
		config.LogError(config.GetLogger(), "models", "CreateCompany", "InvalidateCache", company.Name, err)
	}
	return &company, nil
}

func GetCompany(ctx context.Context, name string) (*Company, error) {
	if name == "" {
		return nil, errBlankName
	}
	company, err := utils.CacheThrough(companyCacheKey(name), func() (Company, error) {
		var c Company
		db := config.GetDB()
		err := db.WithContext(ctx).Where("name = ?", name).First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c, utils.NewValidationError(utils.ErrRecordNotFound, "company %q", name)
		}
		return c, err
	})
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetCompanyCurrency returns "" when the company is unset or unknown.
func GetCompanyCurrency(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	company, err := GetCompany(ctx, name)
	if errors.Is(err, utils.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return company.DefaultCurrency, nil
}

func GetRoundOffAccount(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	company, err := GetCompany(ctx, name)
	if errors.Is(err, utils.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return company.RoundOffAccount, nil
}

// GetDefaultCompany reads Global Defaults.default_company.
func GetDefaultCompany(ctx context.Context) (string, error) {
	return GetSingleValue(ctx, "Global Defaults", "default_company")
}
