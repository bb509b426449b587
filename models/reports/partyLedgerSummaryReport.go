package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ledger_backend/reports")

// PartyLedgerSummaryFilters are the user-facing report filters. Empty fields are not applied.
type PartyLedgerSummaryFilters struct {
	Company              string              `json:"company" form:"company" validate:"max=140"`
	FromDate             string              `json:"from_date" form:"from_date" validate:"omitempty,datetime=2006-01-02"`
	ToDate               string              `json:"to_date" form:"to_date" validate:"omitempty,datetime=2006-01-02"`
	FinanceBook          string              `json:"finance_book" form:"finance_book" validate:"max=140"`
	Party                string              `json:"party" form:"party" validate:"max=140"`
	CustomerGroup        string              `json:"customer_group" form:"customer_group"`
	Territory            string              `json:"territory" form:"territory"`
	PaymentTermsTemplate string              `json:"payment_terms_template" form:"payment_terms_template"`
	SalesPartner         string              `json:"sales_partner" form:"sales_partner"`
	SalesPerson          string              `json:"sales_person" form:"sales_person"`
	SupplierGroup        string              `json:"supplier_group" form:"supplier_group"`
	CostCenter           []string            `json:"cost_center" form:"cost_center" validate:"dive,required"`
	Project              []string            `json:"project" form:"project" validate:"dive,required"`
	Dimensions           map[string][]string `json:"dimensions" form:"-" validate:"dive,dive,required"`
}

// LedgerEntry is one GL row of a party, as read for the summary.
type LedgerEntry struct {
	PostingDate        time.Time       `json:"posting_date"`
	Party              string          `json:"party"`
	PartyName          string          `json:"party_name"`
	VoucherType        string          `json:"voucher_type"`
	VoucherNo          string          `json:"voucher_no"`
	AgainstVoucherType string          `json:"against_voucher_type"`
	AgainstVoucher     string          `json:"against_voucher"`
	Debit              decimal.Decimal `json:"debit"`
	Credit             decimal.Decimal `json:"credit"`
	IsOpening          string          `json:"is_opening"`
}

// PartySummaryRow is the folded summary of one party.
// Adjustments holds an amount for every adjustment account of the report, zero included.
type PartySummaryRow struct {
	Party          string                     `json:"party"`
	PartyName      string                     `json:"party_name"`
	OpeningBalance decimal.Decimal            `json:"opening_balance"`
	InvoicedAmount decimal.Decimal            `json:"invoiced_amount"`
	PaidAmount     decimal.Decimal            `json:"paid_amount"`
	ReturnAmount   decimal.Decimal            `json:"return_amount"`
	Adjustments    map[string]decimal.Decimal `json:"adjustment_amounts"`
	ClosingBalance decimal.Decimal            `json:"closing_balance"`
	Currency       string                     `json:"currency"`
	Territory      string                     `json:"territory,omitempty"`
	CustomerGroup  string                     `json:"customer_group,omitempty"`
	SupplierGroup  string                     `json:"supplier_group,omitempty"`
}

// AdjustmentDetail maps party -> adjustment account -> amount.
type AdjustmentDetail map[string]map[string]decimal.Decimal

type ReportColumn struct {
	Label        string `json:"label"`
	Fieldname    string `json:"fieldname"`
	Fieldtype    string `json:"fieldtype"`
	Options      string `json:"options,omitempty"`
	Width        int    `json:"width,omitempty"`
	Hidden       bool   `json:"hidden,omitempty"`
	IsAdjustment bool   `json:"is_adjustment,omitempty"`
}

type PartyLedgerSummary struct {
	PartyType models.PartyType   `json:"party_type"`
	Company   string             `json:"company"`
	FromDate  string             `json:"from_date"`
	ToDate    string             `json:"to_date"`
	Columns   []ReportColumn     `json:"columns"`
	Rows      []*PartySummaryRow `json:"rows"`
}

func GetCustomerLedgerSummary(ctx context.Context, filters PartyLedgerSummaryFilters) (*PartyLedgerSummary, error) {
	return GetPartyLedgerSummary(ctx, models.PartyTypeCustomer, filters)
}

func GetSupplierLedgerSummary(ctx context.Context, filters PartyLedgerSummaryFilters) (*PartyLedgerSummary, error) {
	return GetPartyLedgerSummary(ctx, models.PartyTypeSupplier, filters)
}

// GetPartyLedgerSummary folds the party ledger of the period into one row per party.
func GetPartyLedgerSummary(ctx context.Context, partyType models.PartyType, filters PartyLedgerSummaryFilters) (*PartyLedgerSummary, error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "reports.GetPartyLedgerSummary", trace.WithAttributes(
		attribute.String("party_type", string(partyType)),
	))
	defer span.End()

	result, err := runPartyLedgerSummary(ctx, partyType, filters)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !utils.IsValidationError(err) {
			config.LogError(config.GetLogger(), "reports", "GetPartyLedgerSummary", string(partyType), filters, err)
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(result.Rows)))
	logSlowReport(ctx, "party_ledger_summary", started, map[string]any{
		"party_type": partyType,
		"rows":       len(result.Rows),
	})
	return result, nil
}

func runPartyLedgerSummary(ctx context.Context, partyType models.PartyType, filters PartyLedgerSummaryFilters) (*PartyLedgerSummary, error) {
	q, err := newPartyLedgerQuery(ctx, partyType, filters)
	if err != nil {
		return nil, err
	}

	cacheKey := ""
	if config.ReportCacheEnabled() {
		cacheKey = reportCacheKey("PartyLedgerSummary", q.cacheFingerprint())
		var cached PartyLedgerSummary
		if ok, err := cacheGet(cacheKey, &cached); err != nil {
			config.LogError(config.GetLogger(), "reports", "GetPartyLedgerSummary", "cacheGet", cacheKey, err)
		} else if ok {
			return &cached, nil
		}
	}

	namingDoctype, namingField := partyType.NamingSetting()
	namingBy, err := models.GetSingleValue(ctx, namingDoctype, namingField)
	if err != nil {
		return nil, err
	}

	entries, err := q.fetchLedgerEntries(ctx)
	if err != nil {
		return nil, err
	}

	classify, err := partyClassifier(ctx, partyType)
	if err != nil {
		return nil, err
	}

	returns, err := models.GetReturnInvoiceNames(ctx, q.company, partyType, q.fromDate, q.toDate)
	if err != nil {
		return nil, err
	}

	adjustments, adjustmentAccounts, err := q.fetchAdjustments(ctx)
	if err != nil {
		return nil, err
	}

	currency, err := models.GetCompanyCurrency(ctx, q.company)
	if err != nil {
		return nil, err
	}

	rows := aggregateLedgerEntries(partyType, entries, q.fromDate, returns)
	for _, row := range rows {
		row.Currency = currency
		classify(row)
	}
	rows = applyAdjustments(dropZeroRows(rows), adjustments, adjustmentAccounts)

	result := &PartyLedgerSummary{
		PartyType: partyType,
		Company:   q.company,
		FromDate:  q.fromDate.Format(utils.DateLayout),
		ToDate:    q.toDate.Format(utils.DateLayout),
		Columns:   partyLedgerColumns(partyType, namingBy, adjustmentAccounts),
		Rows:      rows,
	}

	if cacheKey != "" {
		if err := cacheSet(cacheKey, result, config.ReportCacheTTL()); err != nil {
			config.LogError(config.GetLogger(), "reports", "GetPartyLedgerSummary", "cacheSet", cacheKey, err)
		}
	}
	return result, nil
}

// partyClassifier attaches territory/group tags used for permission filtering downstream.
func partyClassifier(ctx context.Context, partyType models.PartyType) (func(*PartySummaryRow), error) {
	if partyType == models.PartyTypeCustomer {
		customers, err := models.GetCustomerClassifications(ctx)
		if err != nil {
			return nil, err
		}
		return func(row *PartySummaryRow) {
			c := customers[row.Party]
			row.Territory = c.Territory
			row.CustomerGroup = c.CustomerGroup
		}, nil
	}
	groups, err := models.GetSupplierGroups(ctx)
	if err != nil {
		return nil, err
	}
	return func(row *PartySummaryRow) {
		row.SupplierGroup = groups[row.Party]
	}, nil
}

// Records flattens rows into column-keyed records; adjustment amounts become adj_<account> fields.
func (s *PartyLedgerSummary) Records() []map[string]interface{} {
	adjustmentFields := make(map[string]string)
	for _, c := range s.Columns {
		if c.IsAdjustment {
			adjustmentFields[c.Label] = c.Fieldname
		}
	}
	records := make([]map[string]interface{}, 0, len(s.Rows))
	for _, row := range s.Rows {
		rec := map[string]interface{}{
			"party":           row.Party,
			"party_name":      row.PartyName,
			"opening_balance": row.OpeningBalance,
			"invoiced_amount": row.InvoicedAmount,
			"paid_amount":     row.PaidAmount,
			"return_amount":   row.ReturnAmount,
			"closing_balance": row.ClosingBalance,
			"currency":        row.Currency,
		}
		if s.PartyType == models.PartyTypeCustomer {
			rec["territory"] = row.Territory
			rec["customer_group"] = row.CustomerGroup
		} else {
			rec["supplier_group"] = row.SupplierGroup
		}
		for account, field := range adjustmentFields {
			rec[field] = row.Adjustments[account]
		}
		records = append(records, rec)
	}
	return records
}
