package models

import (
	"github.com/shopspring/decimal"
)

// SalesTaxesAndCharges is one tax line of a sales document.
// ItemWiseTaxDetails is a JSON object keyed by item code, see ItemWiseTaxDetail.
type SalesTaxesAndCharges struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	ParentType         string          `gorm:"size:140;not null;default:'Sales Invoice'" json:"parent_type"`
	Parent             string          `gorm:"index;size:140;not null" json:"parent"`
	AccountHead        string          `gorm:"size:140;not null" json:"account_head"`
	Rate               decimal.Decimal `gorm:"type:decimal(21,9);not null;default:0" json:"rate"`
	TaxAmount          decimal.Decimal `gorm:"type:decimal(21,9);not null;default:0" json:"tax_amount"`
	ItemWiseTaxDetails string          `gorm:"type:longtext" json:"item_wise_tax_details"`
}

func (SalesTaxesAndCharges) TableName() string {
	return "sales_taxes_and_charges"
}

type PurchaseTaxesAndCharges struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	ParentType         string          `gorm:"size:140;not null;default:'Purchase Invoice'" json:"parent_type"`
	Parent             string          `gorm:"index;size:140;not null" json:"parent"`
	AccountHead        string          `gorm:"size:140;not null" json:"account_head"`
	Rate               decimal.Decimal `gorm:"type:decimal(21,9);not null;default:0" json:"rate"`
	TaxAmount          decimal.Decimal `gorm:"type:decimal(21,9);not null;default:0" json:"tax_amount"`
	ItemWiseTaxDetails string          `gorm:"type:longtext" json:"item_wise_tax_details"`
}

func (PurchaseTaxesAndCharges) TableName() string {
	return "purchase_taxes_and_charges"
}
