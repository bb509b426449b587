package models

import (
	"errors"
	"strings"

	"github.com/mmdatafocus/ledger_backend/utils"
)

type PartyType string

const (
	PartyTypeCustomer PartyType = "Customer"
	PartyTypeSupplier PartyType = "Supplier"
)

func ParsePartyType(s string) (PartyType, error) {
	switch strings.TrimSpace(s) {
	case string(PartyTypeCustomer):
		return PartyTypeCustomer, nil
	case string(PartyTypeSupplier):
		return PartyTypeSupplier, nil
	}
	return "", utils.NewValidationError(utils.ErrInvalidPartyType, "%q", s)
}

func (t PartyType) IsValid() bool {
	return t == PartyTypeCustomer || t == PartyTypeSupplier
}

// InvoiceDoctype is the document whose returns are credit (customer) or debit (supplier) notes.
func (t PartyType) InvoiceDoctype() string {
	if t == PartyTypeCustomer {
		return "Sales Invoice"
	}
	return "Purchase Invoice"
}

// AdjustmentAccountType is the account type whose rows are reported as party adjustments.
func (t PartyType) AdjustmentAccountType() AccountType {
	if t == PartyTypeCustomer {
		return AccountTypeExpense
	}
	return AccountTypeIncome
}

// ReturnLabel is the heading used for return_amount.
func (t PartyType) ReturnLabel() string {
	if t == PartyTypeCustomer {
		return "Credit Note"
	}
	return "Debit Note"
}

// NamingSetting is the single value that decides whether party names differ from party ids.
func (t PartyType) NamingSetting() (doctype string, field string) {
	if t == PartyTypeCustomer {
		return "Selling Settings", "cust_master_name"
	}
	return "Buying Settings", "supp_master_name"
}

type AccountType string

const (
	AccountTypeExpense    AccountType = "Expense Account"
	AccountTypeIncome     AccountType = "Income Account"
	AccountTypeReceivable AccountType = "Receivable"
	AccountTypePayable    AccountType = "Payable"
	AccountTypeBank       AccountType = "Bank"
	AccountTypeCash       AccountType = "Cash"
	AccountTypeRoundOff   AccountType = "Round Off"
	AccountTypeTax        AccountType = "Tax"
)

type RootType string

const (
	RootTypeAsset     RootType = "Asset"
	RootTypeLiability RootType = "Liability"
	RootTypeEquity    RootType = "Equity"
	RootTypeIncome    RootType = "Income"
	RootTypeExpense   RootType = "Expense"
)

type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

func (s DocStatus) Ptr() *DocStatus { return &s }

const (
	IsOpeningYes = "Yes"
	IsOpeningNo  = "No"
)

// NamingByNamingSeries means parties are keyed by a series code, so the name needs its own column.
const NamingByNamingSeries = "Naming Series"

var errBlankName = errors.New("name is required")
