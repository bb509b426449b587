package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
)

type Customer struct {
	Name                string    `gorm:"primaryKey;size:140" json:"name"`
	CustomerName        string    `gorm:"index;size:140;not null" json:"customer_name"`
	CustomerGroup       string    `gorm:"index;size:140" json:"customer_group"`
	Territory           string    `gorm:"index;size:140" json:"territory"`
	PaymentTerms        string    `gorm:"size:140" json:"payment_terms"`
	DefaultSalesPartner string    `gorm:"size:140" json:"default_sales_partner"`
	Disabled            bool      `gorm:"not null;default:false" json:"disabled"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name                string   `json:"name" validate:"required"`
	CustomerName        string   `json:"customer_name"`
	CustomerGroup       string   `json:"customer_group"`
	Territory           string   `json:"territory"`
	PaymentTerms        string   `json:"payment_terms"`
	DefaultSalesPartner string   `json:"default_sales_partner"`
	SalesPersons        []string `json:"sales_persons"`
}

// CustomerClassification is the territory and group shown next to a customer's ledger row.
type CustomerClassification struct {
	Territory     string `json:"territory"`
	CustomerGroup string `json:"customer_group"`
}

const customerClassificationCacheKey = "CustomerClassification"

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	customer := Customer{
		Name:                strings.TrimSpace(input.Name),
		CustomerName:        input.CustomerName,
		CustomerGroup:       input.CustomerGroup,
		Territory:           input.Territory,
		PaymentTerms:        input.PaymentTerms,
		DefaultSalesPartner: input.DefaultSalesPartner,
	}
	if customer.CustomerName == "" {
		customer.CustomerName = customer.Name
	}
	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if err := tx.Create(&customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, person := range utils.UniqueSlice(input.SalesPersons) {
		team := SalesTeam{ParentType: "Customer", Parent: customer.Name, SalesPerson: person}
		if err := tx.Create(&team).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	if err := utils.InvalidateCache(customerClassificationCacheKey); err != nil {
		config.LogError(config.GetLogger(), "models", "CreateCustomer", "InvalidateCache", customer.Name, err)
	}
	return &customer, nil
}

// GetCustomerClassifications maps every enabled customer to its territory and group.
func GetCustomerClassifications(ctx context.Context) (map[string]CustomerClassification, error) {
	return utils.CacheThrough(customerClassificationCacheKey, func() (map[string]CustomerClassification, error) {
		var rows []struct {
			Name          string
			Territory     string
			CustomerGroup string
		}
		db := config.GetDB()
		err := db.WithContext(ctx).Model(&Customer{}).
			Select("name, territory, customer_group").
			Where("disabled = ?", false).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		result := make(map[string]CustomerClassification, len(rows))
		for _, r := range rows {
			result[r.Name] = CustomerClassification{Territory: r.Territory, CustomerGroup: r.CustomerGroup}
		}
		return result, nil
	})
}
