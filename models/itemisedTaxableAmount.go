package models

import (
	"github.com/mmdatafocus/ledger_backend/deprecation"
	"github.com/shopspring/decimal"
)

type ItemNetAmount struct {
	ItemCode  string          `json:"item_code"`
	ItemName  string          `json:"item_name"`
	NetAmount decimal.Decimal `json:"net_amount"`
}

// GetItemisedTaxableAmount sums net amount per item code (item name when the code is blank).
var GetItemisedTaxableAmount = deprecation.Func(deprecation.Notice{
	Original:   "models.GetItemisedTaxableAmount",
	Marked:     "2024-11-07",
	Graduation: "v17",
	Message:    "read NetAmount from ItemWiseTaxDetail instead",
}, itemisedTaxableAmount)

func itemisedTaxableAmount(items []ItemNetAmount) map[string]decimal.Decimal {
	result := make(map[string]decimal.Decimal, len(items))
	for _, item := range items {
		key := item.ItemCode
		if key == "" {
			key = item.ItemName
		}
		result[key] = result[key].Add(item.NetAmount)
	}
	return result
}
