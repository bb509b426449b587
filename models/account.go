package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
)

// Account is a chart-of-accounts node. Name is the unique key ("Write Off - AC").
type Account struct {
	Name          string      `gorm:"primaryKey;size:140" json:"name"`
	AccountName   string      `gorm:"size:140;not null" json:"account_name"`
	Company       string      `gorm:"index;size:140;not null" json:"company"`
	AccountType   AccountType `gorm:"index;size:64" json:"account_type"`
	RootType      RootType    `gorm:"size:16" json:"root_type"`
	ParentAccount string      `gorm:"index;size:140" json:"parent_account"`
	IsGroup       bool        `gorm:"not null;default:false" json:"is_group"`
	Disabled      bool        `gorm:"not null;default:false" json:"disabled"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAccount struct {
	Name          string      `json:"name" validate:"required"`
	AccountName   string      `json:"account_name"`
	Company       string      `json:"company" validate:"required"`
	AccountType   AccountType `json:"account_type"`
	RootType      RootType    `json:"root_type"`
	ParentAccount string      `json:"parent_account"`
	IsGroup       bool        `json:"is_group"`
}

func accountsByTypeCacheKey(company string, accountType AccountType) string {
	return "AccountsByType:" + company + ":" + string(accountType)
}

func CreateAccount(ctx context.Context, input *NewAccount) (*Account, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	account := Account{
		Name:          strings.TrimSpace(input.Name),
		AccountName:   input.AccountName,
		Company:       input.Company,
		AccountType:   input.AccountType,
		RootType:      input.RootType,
		ParentAccount: input.ParentAccount,
		IsGroup:       input.IsGroup,
	}
	if account.AccountName == "" {
		account.AccountName = account.Name
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&account).Error; err != nil {
		return nil, err
	}
	if err := utils.InvalidateCache(accountsByTypeCacheKey(account.Company, account.AccountType)); err != nil {
		config.LogError(config.GetLogger(), "models", "CreateAccount", "InvalidateCache", account.Name, err)
	}
	return &account, nil
}

// GetAccountNamesByType lists the company's accounts of one type, sorted by name.
func GetAccountNamesByType(ctx context.Context, company string, accountType AccountType) ([]string, error) {
	if company == "" {
		return []string{}, nil
	}
	return utils.CacheThrough(accountsByTypeCacheKey(company, accountType), func() ([]string, error) {
		db := config.GetDB()
		names := []string{}
		err := db.WithContext(ctx).Model(&Account{}).
			Where("company = ? AND account_type = ?", company, accountType).
			Order("name").
			Pluck("name", &names).Error
		return names, err
	})
}
