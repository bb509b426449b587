package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GLEntry is one posted general ledger line. Rows are written by the posting layer and only read here.
// Accounting dimension columns are added to gl_entries at runtime (see CreateAccountingDimension).
type GLEntry struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	Company            string          `gorm:"index;size:140;not null" json:"company"`
	PostingDate        time.Time       `gorm:"type:date;index;not null" json:"posting_date"`
	Account            string          `gorm:"index;size:140;not null" json:"account"`
	PartyType          string          `gorm:"index;size:20" json:"party_type"`
	Party              string          `gorm:"index;size:140" json:"party"`
	VoucherType        string          `gorm:"index;size:140;not null" json:"voucher_type"`
	VoucherNo          string          `gorm:"index;size:140;not null" json:"voucher_no"`
	AgainstVoucherType string          `gorm:"size:140" json:"against_voucher_type"`
	AgainstVoucher     string          `gorm:"index;size:140" json:"against_voucher"`
	Debit              decimal.Decimal `gorm:"type:decimal(21,9);not null;default:0" json:"debit"`
	Credit             decimal.Decimal `gorm:"type:decimal(21,9);not null;default:0" json:"credit"`
	IsOpening          string          `gorm:"size:3;not null;default:'No'" json:"is_opening"`
	IsCancelled        bool            `gorm:"not null;default:false" json:"is_cancelled"`
	DocStatus          *DocStatus      `gorm:"column:docstatus;not null;default:1" json:"docstatus"`
	FinanceBook        string          `gorm:"size:140" json:"finance_book"`
	CostCenter         string          `gorm:"index;size:140" json:"cost_center"`
	Project            string          `gorm:"index;size:140" json:"project"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// CreateGLEntries inserts posted ledger lines. A voucher must balance (sum debit == sum credit).
// Lines without a DocStatus are stored as submitted.
func CreateGLEntries(ctx context.Context, entries []*GLEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := prepareGLEntries(entries); err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&entries).Error
	})
}

func prepareGLEntries(entries []*GLEntry) error {
	byVoucher := make(map[string]decimal.Decimal)
	for _, e := range entries {
		if e.IsOpening == "" {
			e.IsOpening = IsOpeningNo
		}
		if e.DocStatus == nil {
			e.DocStatus = DocStatusSubmitted.Ptr()
		}
		key := e.VoucherType + "|" + e.VoucherNo
		byVoucher[key] = byVoucher[key].Add(e.Debit).Sub(e.Credit)
	}
	for voucher, diff := range byVoucher {
		if !diff.IsZero() {
			return errors.New("voucher " + voucher + " is not balanced (difference " + diff.String() + ")")
		}
	}
	return nil
}
