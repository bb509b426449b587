package reports

import (
	"bytes"
	"testing"

	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestExportPartyLedgerSummaryExcel(t *testing.T) {
	summary := &PartyLedgerSummary{
		PartyType: models.PartyTypeCustomer,
		Columns:   partyLedgerColumns(models.PartyTypeCustomer, "", []string{"Write Off - AC"}),
		Rows: []*PartySummaryRow{{
			Party:          "Acme",
			InvoicedAmount: d("200"),
			PaidAmount:     d("120"),
			Adjustments:    map[string]decimal.Decimal{"Write Off - AC": d("30")},
			ClosingBalance: d("50"),
			Currency:       "USD",
			Territory:      "hidden",
		}},
	}

	b, err := ExportPartyLedgerSummaryExcelBytes(summary)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(partyLedgerSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	header := rows[0]
	want := []string{"Customer", "Opening Balance", "Invoiced Amount", "Paid Amount", "Credit Note", "Write Off - AC", "Closing Balance", "Currency"}
	if len(header) != len(want) {
		t.Fatalf("header = %v", header)
	}
	for i := range want {
		if header[i] != want[i] {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], want[i])
		}
	}
	if rows[1][0] != "Acme" || rows[1][7] != "USD" {
		t.Fatalf("data row = %v", rows[1])
	}
	raw, err := f.GetCellValue(partyLedgerSheet, "F2", excelize.Options{RawCellValue: true})
	if err != nil || raw != "30" {
		t.Fatalf("adjustment cell = %q (%v)", raw, err)
	}
}
