package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/shopspring/decimal"
)

type SalesInvoice struct {
	Name          string                 `gorm:"primaryKey;size:140" json:"name"`
	Company       string                 `gorm:"index;size:140;not null" json:"company"`
	Customer      string                 `gorm:"index;size:140;not null" json:"customer"`
	PostingDate   time.Time              `gorm:"type:date;index;not null" json:"posting_date"`
	IsReturn      bool                   `gorm:"not null;default:false" json:"is_return"`
	ReturnAgainst string                 `gorm:"size:140" json:"return_against"`
	DocStatus     DocStatus              `gorm:"column:docstatus;not null;default:0" json:"docstatus"`
	GrandTotal    decimal.Decimal        `gorm:"type:decimal(21,9);not null;default:0" json:"grand_total"`
	Taxes         []SalesTaxesAndCharges `gorm:"foreignKey:Parent;references:Name" json:"taxes"`
	CreatedAt     time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseInvoice struct {
	Name          string                    `gorm:"primaryKey;size:140" json:"name"`
	Company       string                    `gorm:"index;size:140;not null" json:"company"`
	Supplier      string                    `gorm:"index;size:140;not null" json:"supplier"`
	PostingDate   time.Time                 `gorm:"type:date;index;not null" json:"posting_date"`
	IsReturn      bool                      `gorm:"not null;default:false" json:"is_return"`
	ReturnAgainst string                    `gorm:"size:140" json:"return_against"`
	DocStatus     DocStatus                 `gorm:"column:docstatus;not null;default:0" json:"docstatus"`
	GrandTotal    decimal.Decimal           `gorm:"type:decimal(21,9);not null;default:0" json:"grand_total"`
	Taxes         []PurchaseTaxesAndCharges `gorm:"foreignKey:Parent;references:Name" json:"taxes"`
	CreatedAt     time.Time                 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                 `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetReturnInvoiceNames lists submitted credit notes (customers) or debit notes (suppliers)
// posted between from and to inclusive.
func GetReturnInvoiceNames(ctx context.Context, company string, partyType PartyType, from, to time.Time) (map[string]bool, error) {
	var model interface{} = &SalesInvoice{}
	if partyType == PartyTypeSupplier {
		model = &PurchaseInvoice{}
	}
	var names []string
	db := config.GetDB()
	query := db.WithContext(ctx).Model(model).
		Where("is_return = ? AND docstatus = ?", true, DocStatusSubmitted).
		Where("posting_date BETWEEN ? AND ?", from, to)
	if company != "" {
		query = query.Where("company = ?", company)
	}
	err := query.Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]bool, len(names))
	for _, n := range names {
		result[n] = true
	}
	return result, nil
}
