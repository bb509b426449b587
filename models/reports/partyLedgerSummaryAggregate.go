package reports

import (
	"sort"
	"time"

	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

// EntryClass is the bucket a ledger entry is folded into.
type EntryClass int

const (
	EntryOpening EntryClass = iota
	EntryInvoice
	EntryReturn
	EntryPayment
)

func (c EntryClass) String() string {
	switch c {
	case EntryOpening:
		return "Opening"
	case EntryInvoice:
		return "Invoice"
	case EntryReturn:
		return "Return"
	case EntryPayment:
		return "Payment"
	}
	return "Unknown"
}

// signedAmount is debit - credit for customers and credit - debit for suppliers,
// so a positive amount always grows what the party owes (or is owed).
func signedAmount(partyType models.PartyType, debit, credit decimal.Decimal) decimal.Decimal {
	if partyType == models.PartyTypeSupplier {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

func classifyEntry(e LedgerEntry, amount decimal.Decimal, fromDate time.Time, returns map[string]bool) EntryClass {
	if utils.TruncateToDate(e.PostingDate).Before(fromDate) || e.IsOpening == models.IsOpeningYes {
		return EntryOpening
	}
	if amount.IsPositive() {
		return EntryInvoice
	}
	if returns[e.VoucherNo] {
		return EntryReturn
	}
	return EntryPayment
}

// aggregateLedgerEntries folds entries into one row per party, in order of first appearance.
func aggregateLedgerEntries(partyType models.PartyType, entries []LedgerEntry, fromDate time.Time, returns map[string]bool) []*PartySummaryRow {
	var rows []*PartySummaryRow
	byParty := make(map[string]*PartySummaryRow)

	for _, e := range entries {
		row, ok := byParty[e.Party]
		if !ok {
			row = &PartySummaryRow{Party: e.Party, PartyName: e.PartyName}
			byParty[e.Party] = row
			rows = append(rows, row)
		}

		amount := signedAmount(partyType, e.Debit, e.Credit)
		row.ClosingBalance = row.ClosingBalance.Add(amount)

		switch classifyEntry(e, amount, fromDate, returns) {
		case EntryOpening:
			row.OpeningBalance = row.OpeningBalance.Add(amount)
		case EntryInvoice:
			row.InvoicedAmount = row.InvoicedAmount.Add(amount)
		case EntryReturn:
			row.ReturnAmount = row.ReturnAmount.Sub(amount)
		case EntryPayment:
			row.PaidAmount = row.PaidAmount.Sub(amount)
		}
	}
	return rows
}

func isZeroRow(row *PartySummaryRow) bool {
	return row.OpeningBalance.IsZero() &&
		row.InvoicedAmount.IsZero() &&
		row.PaidAmount.IsZero() &&
		row.ReturnAmount.IsZero() &&
		row.ClosingBalance.IsZero()
}

func dropZeroRows(rows []*PartySummaryRow) []*PartySummaryRow {
	out := make([]*PartySummaryRow, 0, len(rows))
	for _, row := range rows {
		if !isZeroRow(row) {
			out = append(out, row)
		}
	}
	return out
}

// applyAdjustments nets each party's total adjustment out of paid_amount and fills one amount per adjustment account.
func applyAdjustments(rows []*PartySummaryRow, detail AdjustmentDetail, accounts []string) []*PartySummaryRow {
	for _, row := range rows {
		partyAdjustments := detail[row.Party]
		total := decimal.Zero
		for _, amount := range partyAdjustments {
			total = total.Add(amount)
		}
		row.PaidAmount = row.PaidAmount.Sub(total)

		row.Adjustments = make(map[string]decimal.Decimal, len(accounts))
		for _, account := range accounts {
			row.Adjustments[account] = partyAdjustments[account]
		}
	}
	return rows
}

type voucherKey struct {
	voucherType string
	voucherNo   string
}

// computeAdjustments splits vouchers that mix party rows with adjustment-account rows.
//
// Party rows add reverse - invoice side, adjustment-account rows add invoice - reverse side.
// Round-off rows are ignored; any other row marks the voucher as having an irrelevant entry.
// A voucher with a single party gets every account attributed to it; a voucher with a single
// account and no irrelevant entry attributes that account to each party. Anything else is skipped.
func computeAdjustments(partyType models.PartyType, entries []AdjustmentEntry, adjustmentAccounts map[string]bool, roundOffAccount string) (AdjustmentDetail, []string) {
	var order []voucherKey
	vouchers := make(map[voucherKey][]AdjustmentEntry)
	for _, e := range entries {
		k := voucherKey{voucherType: e.VoucherType, voucherNo: e.VoucherNo}
		if _, ok := vouchers[k]; !ok {
			order = append(order, k)
		}
		vouchers[k] = append(vouchers[k], e)
	}

	detail := AdjustmentDetail{}
	used := make(map[string]bool)
	add := func(party, account string, amount decimal.Decimal) {
		if detail[party] == nil {
			detail[party] = make(map[string]decimal.Decimal)
		}
		detail[party][account] = detail[party][account].Add(amount)
		used[account] = true
	}

	for _, k := range order {
		parties := make(map[string]decimal.Decimal)
		accounts := make(map[string]decimal.Decimal)
		var partyOrder, accountOrder []string
		hasIrrelevantEntry := false

		for _, e := range vouchers[k] {
			amount := signedAmount(partyType, e.Debit, e.Credit)
			switch {
			case roundOffAccount != "" && e.Account == roundOffAccount:
				continue
			case e.Party != "":
				if _, ok := parties[e.Party]; !ok {
					partyOrder = append(partyOrder, e.Party)
				}
				parties[e.Party] = parties[e.Party].Sub(amount)
			case adjustmentAccounts[e.Account]:
				if _, ok := accounts[e.Account]; !ok {
					accountOrder = append(accountOrder, e.Account)
				}
				accounts[e.Account] = accounts[e.Account].Add(amount)
			default:
				hasIrrelevantEntry = true
			}
		}

		if len(parties) == 0 || len(accounts) == 0 {
			continue
		}
		if len(parties) == 1 {
			party := partyOrder[0]
			for _, account := range accountOrder {
				add(party, account, accounts[account])
			}
		} else if len(accounts) == 1 && !hasIrrelevantEntry {
			account := accountOrder[0]
			for _, party := range partyOrder {
				add(party, account, parties[party])
			}
		}
	}

	names := make([]string, 0, len(used))
	for account := range used {
		names = append(names, account)
	}
	sort.Strings(names)
	return detail, names
}

func currencyColumn(label, fieldname string) ReportColumn {
	return ReportColumn{Label: label, Fieldname: fieldname, Fieldtype: "Currency", Options: "currency", Width: 120}
}

// partyLedgerColumns describes the report columns in display order.
func partyLedgerColumns(partyType models.PartyType, namingBy string, adjustmentAccounts []string) []ReportColumn {
	columns := []ReportColumn{
		{Label: string(partyType), Fieldname: "party", Fieldtype: "Link", Options: string(partyType), Width: 200},
	}
	if namingBy == models.NamingByNamingSeries {
		columns = append(columns, ReportColumn{
			Label: string(partyType) + " Name", Fieldname: "party_name", Fieldtype: "Data", Width: 110,
		})
	}
	columns = append(columns,
		currencyColumn("Opening Balance", "opening_balance"),
		currencyColumn("Invoiced Amount", "invoiced_amount"),
		currencyColumn("Paid Amount", "paid_amount"),
		currencyColumn(partyType.ReturnLabel(), "return_amount"),
	)
	for _, account := range adjustmentAccounts {
		c := currencyColumn(account, "adj_"+utils.Scrub(account))
		c.IsAdjustment = true
		columns = append(columns, c)
	}
	columns = append(columns,
		currencyColumn("Closing Balance", "closing_balance"),
		ReportColumn{Label: "Currency", Fieldname: "currency", Fieldtype: "Link", Options: "Currency", Width: 50},
	)

	// hidden, used for permission filtering
	if partyType == models.PartyTypeCustomer {
		columns = append(columns,
			ReportColumn{Label: "Territory", Fieldname: "territory", Fieldtype: "Link", Options: "Territory", Hidden: true},
			ReportColumn{Label: "Customer Group", Fieldname: "customer_group", Fieldtype: "Link", Options: "Customer Group", Hidden: true},
		)
	} else {
		columns = append(columns,
			ReportColumn{Label: "Supplier Group", Fieldname: "supplier_group", Fieldtype: "Link", Options: "Supplier Group", Hidden: true},
		)
	}
	return columns
}
