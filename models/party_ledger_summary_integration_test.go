package models_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/models/reports"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, err := time.Parse(utils.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedLedger creates company masters and a small customer ledger for February 2024.
func seedLedger(t *testing.T, ctx context.Context) {
	t.Helper()

	if _, err := models.CreateCompany(ctx, &models.NewCompany{
		Name: "Acme Corp", Abbr: "AC", DefaultCurrency: "USD", RoundOffAccount: "Round Off - AC",
	}); err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}
	if err := models.SetSingleValue(ctx, "Global Defaults", "default_company", "Acme Corp"); err != nil {
		t.Fatalf("SetSingleValue: %v", err)
	}
	if err := models.SetSingleValue(ctx, "Selling Settings", "cust_master_name", models.NamingByNamingSeries); err != nil {
		t.Fatalf("SetSingleValue: %v", err)
	}

	for _, a := range []models.NewAccount{
		{Name: "Debtors - AC", AccountType: models.AccountTypeReceivable, RootType: models.RootTypeAsset},
		{Name: "Cash - AC", AccountType: models.AccountTypeCash, RootType: models.RootTypeAsset},
		{Name: "Sales - AC", AccountType: models.AccountTypeIncome, RootType: models.RootTypeIncome},
		{Name: "Write Off 5% - AC", AccountType: models.AccountTypeExpense, RootType: models.RootTypeExpense},
		{Name: "Round Off - AC", AccountType: models.AccountTypeRoundOff, RootType: models.RootTypeExpense},
		{Name: "Temporary Opening - AC", RootType: models.RootTypeEquity},
	} {
		a.Company = "Acme Corp"
		if _, err := models.CreateAccount(ctx, &a); err != nil {
			t.Fatalf("CreateAccount(%s): %v", a.Name, err)
		}
	}

	if _, err := models.CreateCostCenter(ctx, &models.NewCostCenter{Name: "Main - AC", Company: "Acme Corp", IsGroup: true}); err != nil {
		t.Fatalf("CreateCostCenter: %v", err)
	}
	if _, err := models.CreateCostCenter(ctx, &models.NewCostCenter{Name: "Branch - AC", Company: "Acme Corp", ParentCostCenter: "Main - AC"}); err != nil {
		t.Fatalf("CreateCostCenter: %v", err)
	}

	if _, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "CUST-0001", CustomerName: "Acme Retail", Territory: "North", CustomerGroup: "Retail"}); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if _, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "CUST-0002", CustomerName: "Globex", Territory: "South", SalesPersons: []string{"Jo"}}); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&models.SalesInvoice{
		Name: "CN-1", Company: "Acme Corp", Customer: "CUST-0001", PostingDate: day("2024-02-20"),
		IsReturn: true, ReturnAgainst: "SINV-1", DocStatus: models.DocStatusSubmitted, GrandTotal: amt("-20"),
	}).Error; err != nil {
		t.Fatalf("create return invoice: %v", err)
	}

	customer := string(models.PartyTypeCustomer)
	entries := []*models.GLEntry{
		// opening
		{PostingDate: day("2024-01-01"), Account: "Debtors - AC", PartyType: customer, Party: "CUST-0001", VoucherType: "Journal Entry", VoucherNo: "JV-OPEN", Debit: amt("100"), IsOpening: models.IsOpeningYes},
		{PostingDate: day("2024-01-01"), Account: "Temporary Opening - AC", VoucherType: "Journal Entry", VoucherNo: "JV-OPEN", Credit: amt("100"), IsOpening: models.IsOpeningYes},
		// invoice
		{PostingDate: day("2024-02-01"), Account: "Debtors - AC", PartyType: customer, Party: "CUST-0001", VoucherType: "Sales Invoice", VoucherNo: "SINV-1", Debit: amt("200"), CostCenter: "Branch - AC"},
		{PostingDate: day("2024-02-01"), Account: "Sales - AC", VoucherType: "Sales Invoice", VoucherNo: "SINV-1", Credit: amt("200"), CostCenter: "Branch - AC"},
		// payment
		{PostingDate: day("2024-02-15"), Account: "Cash - AC", VoucherType: "Payment Entry", VoucherNo: "PE-1", Debit: amt("150")},
		{PostingDate: day("2024-02-15"), Account: "Debtors - AC", PartyType: customer, Party: "CUST-0001", VoucherType: "Payment Entry", VoucherNo: "PE-1", Credit: amt("150")},
		// credit note
		{PostingDate: day("2024-02-20"), Account: "Sales - AC", VoucherType: "Sales Invoice", VoucherNo: "CN-1", Debit: amt("20")},
		{PostingDate: day("2024-02-20"), Account: "Debtors - AC", PartyType: customer, Party: "CUST-0001", VoucherType: "Sales Invoice", VoucherNo: "CN-1", Credit: amt("20")},
		// write off with round off
		{PostingDate: day("2024-02-25"), Account: "Write Off 5% - AC", VoucherType: "Journal Entry", VoucherNo: "JV-WO", Debit: amt("9.5")},
		{PostingDate: day("2024-02-25"), Account: "Round Off - AC", VoucherType: "Journal Entry", VoucherNo: "JV-WO", Debit: amt("0.5")},
		{PostingDate: day("2024-02-25"), Account: "Debtors - AC", PartyType: customer, Party: "CUST-0001", VoucherType: "Journal Entry", VoucherNo: "JV-WO", Credit: amt("10")},
		// second customer, fully settled
		{PostingDate: day("2024-02-05"), Account: "Debtors - AC", PartyType: customer, Party: "CUST-0002", VoucherType: "Sales Invoice", VoucherNo: "SINV-2", Debit: amt("50")},
		{PostingDate: day("2024-02-05"), Account: "Sales - AC", VoucherType: "Sales Invoice", VoucherNo: "SINV-2", Credit: amt("50")},
		{PostingDate: day("2024-02-06"), Account: "Cash - AC", VoucherType: "Payment Entry", VoucherNo: "PE-2", Debit: amt("50")},
		{PostingDate: day("2024-02-06"), Account: "Debtors - AC", PartyType: customer, Party: "CUST-0002", VoucherType: "Payment Entry", VoucherNo: "PE-2", Credit: amt("50")},
		// cancelled, never reported
		{PostingDate: day("2024-02-07"), Account: "Debtors - AC", PartyType: customer, Party: "CUST-0002", VoucherType: "Sales Invoice", VoucherNo: "SINV-X", Debit: amt("999"), IsCancelled: true},
		{PostingDate: day("2024-02-07"), Account: "Sales - AC", VoucherType: "Sales Invoice", VoucherNo: "SINV-X", Credit: amt("999"), IsCancelled: true},
	}
	for _, e := range entries {
		e.Company = "Acme Corp"
	}
	if err := models.CreateGLEntries(ctx, entries); err != nil {
		t.Fatalf("CreateGLEntries: %v", err)
	}
}

func findRow(rows []*reports.PartySummaryRow, party string) *reports.PartySummaryRow {
	for _, r := range rows {
		if r.Party == party {
			return r
		}
	}
	return nil
}

func expectAmount(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(amt(want)) {
		t.Fatalf("%s = %s, want %s", field, got, want)
	}
}

func TestCustomerLedgerSummary_Integration(t *testing.T) {
	ctx := setupIntegration(t)
	ctx = utils.SetCompanyInContext(ctx, "Acme Corp")
	seedLedger(t, ctx)

	// company left blank: taken from the request
	summary, err := reports.GetCustomerLedgerSummary(ctx, reports.PartyLedgerSummaryFilters{
		FromDate: "2024-02-01",
		ToDate:   "2024-02-29",
	})
	if err != nil {
		t.Fatalf("GetCustomerLedgerSummary: %v", err)
	}
	if summary.Company != "Acme Corp" {
		t.Fatalf("company = %q", summary.Company)
	}
	if len(summary.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(summary.Rows))
	}

	acme := findRow(summary.Rows, "CUST-0001")
	if acme == nil {
		t.Fatalf("CUST-0001 missing")
	}
	if acme.PartyName != "Acme Retail" || acme.Currency != "USD" || acme.Territory != "North" {
		t.Fatalf("unexpected row details: %+v", acme)
	}
	expectAmount(t, "opening_balance", acme.OpeningBalance, "100")
	expectAmount(t, "invoiced_amount", acme.InvoicedAmount, "200")
	expectAmount(t, "return_amount", acme.ReturnAmount, "20")
	// 150 paid + 10 written off, minus the 9.5 write off adjustment
	expectAmount(t, "paid_amount", acme.PaidAmount, "150.5")
	expectAmount(t, "adjustment", acme.Adjustments["Write Off 5% - AC"], "9.5")
	expectAmount(t, "closing_balance", acme.ClosingBalance, "120")

	globex := findRow(summary.Rows, "CUST-0002")
	expectAmount(t, "globex invoiced", globex.InvoicedAmount, "50")
	expectAmount(t, "globex closing", globex.ClosingBalance, "0")

	var hasPartyName, hasAdjustment bool
	for _, c := range summary.Columns {
		hasPartyName = hasPartyName || c.Fieldname == "party_name"
		hasAdjustment = hasAdjustment || (c.IsAdjustment && c.Fieldname == "adj_write_off_5%___ac")
	}
	if !hasPartyName || !hasAdjustment {
		t.Fatalf("columns = %+v", summary.Columns)
	}
}

func TestCustomerLedgerSummary_CompanyIntegration(t *testing.T) {
	ctx := setupIntegration(t)
	seedLedger(t, utils.SetCompanyInContext(ctx, "Acme Corp"))

	// no request company: Global Defaults
	summary, err := reports.GetCustomerLedgerSummary(ctx, reports.PartyLedgerSummaryFilters{
		FromDate: "2024-02-01",
		ToDate:   "2024-02-29",
	})
	if err != nil {
		t.Fatalf("GetCustomerLedgerSummary: %v", err)
	}
	if summary.Company != "Acme Corp" || len(summary.Rows) != 2 {
		t.Fatalf("company = %q rows = %d", summary.Company, len(summary.Rows))
	}
	// credit note still classified as a return outside a request scope
	expectAmount(t, "return_amount", findRow(summary.Rows, "CUST-0001").ReturnAmount, "20")

	_, err = reports.GetCustomerLedgerSummary(utils.SetCompanyInContext(ctx, "Other Co"), reports.PartyLedgerSummaryFilters{
		Company:  "Acme Corp",
		FromDate: "2024-02-01",
		ToDate:   "2024-02-29",
	})
	if !errors.Is(err, utils.ErrInvalidFilter) {
		t.Fatalf("cross company read: err = %v", err)
	}
}

func TestCustomerLedgerSummary_DocStatusIntegration(t *testing.T) {
	ctx := setupIntegration(t)
	ctx = utils.SetCompanyInContext(ctx, "Acme Corp")
	seedLedger(t, ctx)

	customer := string(models.PartyTypeCustomer)
	entries := []*models.GLEntry{
		{PostingDate: day("2024-02-10"), Account: "Debtors - AC", PartyType: customer, Party: "CUST-0002", VoucherType: "Sales Invoice", VoucherNo: "SINV-D", Debit: amt("30"), DocStatus: models.DocStatusDraft.Ptr()},
		{PostingDate: day("2024-02-10"), Account: "Sales - AC", VoucherType: "Sales Invoice", VoucherNo: "SINV-D", Credit: amt("30"), DocStatus: models.DocStatusDraft.Ptr()},
		{PostingDate: day("2024-02-11"), Account: "Debtors - AC", PartyType: customer, Party: "CUST-0002", VoucherType: "Sales Invoice", VoucherNo: "SINV-C", Debit: amt("40"), DocStatus: models.DocStatusCancelled.Ptr()},
		{PostingDate: day("2024-02-11"), Account: "Sales - AC", VoucherType: "Sales Invoice", VoucherNo: "SINV-C", Credit: amt("40"), DocStatus: models.DocStatusCancelled.Ptr()},
	}
	for _, e := range entries {
		e.Company = "Acme Corp"
	}
	if err := models.CreateGLEntries(ctx, entries); err != nil {
		t.Fatalf("CreateGLEntries: %v", err)
	}

	summary, err := reports.GetCustomerLedgerSummary(ctx, reports.PartyLedgerSummaryFilters{
		FromDate: "2024-02-01",
		ToDate:   "2024-02-29",
	})
	if err != nil {
		t.Fatalf("GetCustomerLedgerSummary: %v", err)
	}
	globex := findRow(summary.Rows, "CUST-0002")
	if globex == nil {
		t.Fatalf("CUST-0002 missing")
	}
	// draft counted, docstatus 2 skipped
	expectAmount(t, "invoiced_amount", globex.InvoicedAmount, "80")
	expectAmount(t, "closing_balance", globex.ClosingBalance, "30")
}

func TestCustomerLedgerSummary_FiltersIntegration(t *testing.T) {
	ctx := setupIntegration(t)
	ctx = utils.SetCompanyInContext(ctx, "Acme Corp")
	seedLedger(t, ctx)

	// parent cost center includes its children
	summary, err := reports.GetCustomerLedgerSummary(ctx, reports.PartyLedgerSummaryFilters{
		Company:    "Acme Corp",
		FromDate:   "2024-02-01",
		ToDate:     "2024-02-29",
		CostCenter: []string{"Main - AC"},
	})
	if err != nil {
		t.Fatalf("GetCustomerLedgerSummary: %v", err)
	}
	if len(summary.Rows) != 1 {
		t.Fatalf("expected only the cost center party, got %d rows", len(summary.Rows))
	}
	expectAmount(t, "invoiced_amount", summary.Rows[0].InvoicedAmount, "200")
	expectAmount(t, "opening_balance", summary.Rows[0].OpeningBalance, "0")

	summary, err = reports.GetCustomerLedgerSummary(ctx, reports.PartyLedgerSummaryFilters{
		Company:     "Acme Corp",
		FromDate:    "2024-02-01",
		ToDate:      "2024-02-29",
		SalesPerson: "Jo",
	})
	if err != nil {
		t.Fatalf("GetCustomerLedgerSummary: %v", err)
	}
	if len(summary.Rows) != 1 || summary.Rows[0].Party != "CUST-0002" {
		t.Fatalf("sales person filter rows = %+v", summary.Rows)
	}

	_, err = reports.GetCustomerLedgerSummary(ctx, reports.PartyLedgerSummaryFilters{
		Company:    "Acme Corp",
		CostCenter: []string{"Nowhere - AC"},
	})
	if !errors.Is(err, utils.ErrInvalidFilter) {
		t.Fatalf("unknown cost center: err = %v", err)
	}
}
