package reports

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

type dimensionFilter struct {
	Fieldname string   `json:"fieldname"`
	Param     string   `json:"-"`
	Values    []string `json:"values"`
}

// partyLedgerQuery is the validated, defaulted and tree-expanded form of the filters.
type partyLedgerQuery struct {
	partyType   models.PartyType
	company     string
	fromDate    time.Time
	toDate      time.Time
	filters     PartyLedgerSummaryFilters
	costCenters []string
	dimensions  []dimensionFilter
}

func newPartyLedgerQuery(ctx context.Context, partyType models.PartyType, filters PartyLedgerSummaryFilters) (*partyLedgerQuery, error) {
	if !partyType.IsValid() {
		return nil, utils.NewValidationError(utils.ErrInvalidPartyType, "%q", partyType)
	}
	if err := utils.ValidateStruct(filters); err != nil {
		return nil, err
	}
	fromDate, err := utils.ParseDate(filters.FromDate)
	if err != nil {
		return nil, err
	}
	toDate, err := utils.ParseDate(filters.ToDate)
	if err != nil {
		return nil, err
	}
	if fromDate.After(toDate) {
		return nil, utils.NewValidationError(utils.ErrFromDateAfterToDate, "%s > %s",
			fromDate.Format(utils.DateLayout), toDate.Format(utils.DateLayout))
	}

	company, err := RequestCompany(ctx, filters.Company)
	if err != nil {
		return nil, err
	}
	q := &partyLedgerQuery{
		partyType: partyType,
		company:   company,
		fromDate:  fromDate,
		toDate:    toDate,
		filters:   filters,
	}
	if q.company == "" {
		if q.company, err = models.GetDefaultCompany(ctx); err != nil {
			return nil, err
		}
	}

	if len(filters.CostCenter) > 0 {
		if q.costCenters, err = models.GetTreeWithChildren(ctx, "cost_centers", filters.CostCenter); err != nil {
			return nil, err
		}
	}
	if q.dimensions, err = resolveDimensionFilters(ctx, filters.Dimensions); err != nil {
		return nil, err
	}
	return q, nil
}

// RequestCompany pins the report to the request's company when one is set.
// A different company in the filters is rejected.
func RequestCompany(ctx context.Context, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	scoped, _ := utils.GetCompanyFromContext(ctx)
	scoped = strings.TrimSpace(scoped)
	if scoped == "" || utils.IsCompanyScopeSkipped(ctx) {
		return requested, nil
	}
	if requested != "" && requested != scoped {
		return "", utils.NewValidationError(utils.ErrInvalidFilter, "company %q does not match the request company %q", requested, scoped)
	}
	return scoped, nil
}

// resolveDimensionFilters keeps only known, enabled dimensions and expands tree dimensions to their subtrees.
func resolveDimensionFilters(ctx context.Context, requested map[string][]string) ([]dimensionFilter, error) {
	fieldnames := make([]string, 0, len(requested))
	for fieldname, values := range requested {
		if len(values) > 0 {
			fieldnames = append(fieldnames, fieldname)
		}
	}
	if len(fieldnames) == 0 {
		return nil, nil
	}
	sort.Strings(fieldnames)

	dims, err := models.GetAccountingDimensions(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]models.AccountingDimension, len(dims))
	for _, d := range dims {
		known[d.Fieldname] = d
	}

	result := make([]dimensionFilter, 0, len(fieldnames))
	for _, fieldname := range fieldnames {
		dim, ok := known[fieldname]
		if !ok || !utils.IsIdentifier(fieldname) {
			return nil, utils.NewValidationError(utils.ErrInvalidFilter, "unknown accounting dimension %q", fieldname)
		}
		values := utils.UniqueSlice(requested[fieldname])
		if dim.IsTree {
			if values, err = models.GetTreeWithChildren(ctx, dim.Table(), values); err != nil {
				return nil, err
			}
		}
		result = append(result, dimensionFilter{Fieldname: fieldname, Param: "dim_" + fieldname, Values: values})
	}
	return result, nil
}

// partyLedgerConditions narrows gl_entries (aliased {{ .t }}) to the report filters.
const partyLedgerConditions = `
	{{- if .company }} AND {{ .t }}.company = @company {{- end }}
	{{- if .financeBook }} AND COALESCE({{ .t }}.finance_book, '') = @financeBook {{- end }}
	{{- if .party }} AND {{ .t }}.party = @party {{- end }}
	{{- if .customerGroup }} AND {{ .t }}.party IN (SELECT name FROM customers WHERE customer_group = @customerGroup) {{- end }}
	{{- if .territory }} AND {{ .t }}.party IN (SELECT name FROM customers WHERE territory = @territory) {{- end }}
	{{- if .paymentTerms }} AND {{ .t }}.party IN (SELECT name FROM customers WHERE payment_terms = @paymentTerms) {{- end }}
	{{- if .salesPartner }} AND {{ .t }}.party IN (SELECT name FROM customers WHERE default_sales_partner = @salesPartner) {{- end }}
	{{- if .salesPerson }} AND {{ .t }}.party IN (SELECT parent FROM sales_teams WHERE sales_person = @salesPerson) {{- end }}
	{{- if .supplierGroup }} AND {{ .t }}.party IN (SELECT name FROM suppliers WHERE supplier_group = @supplierGroup) {{- end }}
	{{- if .costCenter }} AND {{ .t }}.cost_center IN @costCenter {{- end }}
	{{- if .project }} AND {{ .t }}.project IN @project {{- end }}
	{{- range .dimensions }} AND {{ $.t }}.{{ .Fieldname }} IN @{{ .Param }} {{- end }}`

// conditions renders the filter clause for one alias of gl_entries.
func (q *partyLedgerQuery) conditions(alias string) (string, error) {
	isCustomer := q.partyType == models.PartyTypeCustomer
	return utils.ExecTemplate(partyLedgerConditions, map[string]interface{}{
		"t":             alias,
		"company":       q.company != "",
		"financeBook":   q.filters.FinanceBook != "",
		"party":         q.filters.Party != "",
		"customerGroup": isCustomer && q.filters.CustomerGroup != "",
		"territory":     isCustomer && q.filters.Territory != "",
		"paymentTerms":  isCustomer && q.filters.PaymentTermsTemplate != "",
		"salesPartner":  isCustomer && q.filters.SalesPartner != "",
		"salesPerson":   isCustomer && q.filters.SalesPerson != "",
		"supplierGroup": !isCustomer && q.filters.SupplierGroup != "",
		"costCenter":    len(q.costCenters) > 0,
		"project":       len(q.filters.Project) > 0,
		"dimensions":    q.dimensions,
	})
}

// params are the named bind values shared by every report statement.
func (q *partyLedgerQuery) params() map[string]interface{} {
	p := map[string]interface{}{
		"partyType":     string(q.partyType),
		"company":       q.company,
		"fromDate":      q.fromDate,
		"toDate":        q.toDate,
		"financeBook":   q.filters.FinanceBook,
		"party":         q.filters.Party,
		"customerGroup": q.filters.CustomerGroup,
		"territory":     q.filters.Territory,
		"paymentTerms":  q.filters.PaymentTermsTemplate,
		"salesPartner":  q.filters.SalesPartner,
		"salesPerson":   q.filters.SalesPerson,
		"supplierGroup": q.filters.SupplierGroup,
		"costCenter":    q.costCenters,
		"project":       q.filters.Project,
	}
	for _, d := range q.dimensions {
		p[d.Param] = d.Values
	}
	return p
}

func (q *partyLedgerQuery) partyMaster() (table, nameColumn string) {
	if q.partyType == models.PartyTypeCustomer {
		return "customers", "customer_name"
	}
	return "suppliers", "supplier_name"
}

// fetchLedgerEntries reads every party row up to to_date, oldest first.
func (q *partyLedgerQuery) fetchLedgerEntries(ctx context.Context) ([]LedgerEntry, error) {
	ctx, span := tracer.Start(ctx, "reports.partyLedger.fetchLedgerEntries")
	defer span.End()

	sqlT := `
SELECT
    gle.posting_date,
    gle.party,
    COALESCE(master.{{ .nameColumn }}, '') AS party_name,
    gle.voucher_type,
    gle.voucher_no,
    COALESCE(gle.against_voucher_type, '') AS against_voucher_type,
    COALESCE(gle.against_voucher, '') AS against_voucher,
    gle.debit,
    gle.credit,
    gle.is_opening
FROM
    gl_entries gle
    LEFT JOIN {{ .master }} master ON master.name = gle.party
WHERE
    gle.docstatus < 2
    AND gle.is_cancelled = 0
    AND gle.party_type = @partyType
    AND COALESCE(gle.party, '') <> ''
    AND gle.posting_date <= @toDate
    {{ .conditions }}
ORDER BY
    gle.posting_date, gle.id
`
	conditions, err := q.conditions("gle")
	if err != nil {
		return nil, err
	}
	master, nameColumn := q.partyMaster()
	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"master":     master,
		"nameColumn": nameColumn,
		"conditions": conditions,
	})
	if err != nil {
		return nil, err
	}

	var entries []LedgerEntry
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, q.params()).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// AdjustmentEntry is a row of a voucher that touched both the party ledger and an adjustment account.
type AdjustmentEntry struct {
	PostingDate time.Time       `json:"posting_date"`
	Account     string          `json:"account"`
	Party       string          `json:"party"`
	VoucherType string          `json:"voucher_type"`
	VoucherNo   string          `json:"voucher_no"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// fetchAdjustments reads in-period vouchers that hit an expense (customer) or income (supplier) account
// and also carry a filtered party row, then splits them into per-party adjustment amounts.
func (q *partyLedgerQuery) fetchAdjustments(ctx context.Context) (AdjustmentDetail, []string, error) {
	ctx, span := tracer.Start(ctx, "reports.partyLedger.fetchAdjustments")
	defer span.End()

	accounts, err := models.GetAccountNamesByType(ctx, q.company, q.partyType.AdjustmentAccountType())
	if err != nil {
		return nil, nil, err
	}
	roundOffAccount, err := models.GetRoundOffAccount(ctx, q.company)
	if err != nil {
		return nil, nil, err
	}
	accountSet := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		accountSet[a] = true
	}
	// IN () is invalid SQL; "" matches no account
	if len(accounts) == 0 {
		accounts = []string{""}
	}

	sqlT := `
SELECT
    gl.posting_date,
    gl.account,
    COALESCE(gl.party, '') AS party,
    gl.voucher_type,
    gl.voucher_no,
    gl.debit,
    gl.credit
FROM
    gl_entries gl
WHERE
    gl.docstatus < 2
    AND gl.is_cancelled = 0
    AND (gl.voucher_type, gl.voucher_no) IN (
        SELECT acc.voucher_type, acc.voucher_no
        FROM gl_entries acc
        WHERE acc.account IN @adjustmentAccounts
            AND acc.posting_date BETWEEN @fromDate AND @toDate
    )
    AND (gl.voucher_type, gl.voucher_no) IN (
        SELECT sub.voucher_type, sub.voucher_no
        FROM gl_entries sub
        WHERE sub.docstatus < 2
            AND sub.party_type = @partyType
            AND COALESCE(sub.party, '') <> ''
            AND sub.posting_date BETWEEN @fromDate AND @toDate
            {{ .conditions }}
    )
ORDER BY
    gl.posting_date, gl.id
`
	conditions, err := q.conditions("sub")
	if err != nil {
		return nil, nil, err
	}
	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{"conditions": conditions})
	if err != nil {
		return nil, nil, err
	}
	params := q.params()
	params["adjustmentAccounts"] = accounts

	var entries []AdjustmentEntry
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, params).Scan(&entries).Error; err != nil {
		return nil, nil, err
	}

	detail, adjustmentAccounts := computeAdjustments(q.partyType, entries, accountSet, roundOffAccount)
	return detail, adjustmentAccounts, nil
}

// cacheFingerprint identifies the effective query, after defaults and tree expansion.
func (q *partyLedgerQuery) cacheFingerprint() string {
	b, _ := json.Marshal(struct {
		PartyType   models.PartyType          `json:"party_type"`
		Company     string                    `json:"company"`
		FromDate    string                    `json:"from_date"`
		ToDate      string                    `json:"to_date"`
		Filters     PartyLedgerSummaryFilters `json:"filters"`
		CostCenters []string                  `json:"cost_centers"`
		Dimensions  []dimensionFilter         `json:"dimensions"`
	}{
		PartyType:   q.partyType,
		Company:     q.company,
		FromDate:    q.fromDate.Format(utils.DateLayout),
		ToDate:      q.toDate.Format(utils.DateLayout),
		Filters:     q.filters,
		CostCenters: q.costCenters,
		Dimensions:  q.dimensions,
	})
	return string(b)
}
