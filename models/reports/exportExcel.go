package reports

import (
	"bytes"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const partyLedgerSheet = "Party Ledger Summary"

// ExportPartyLedgerSummaryExcel writes the visible columns of the report into a single-sheet workbook.
func ExportPartyLedgerSummaryExcel(summary *PartyLedgerSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", partyLedgerSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	var columns []ReportColumn
	for _, c := range summary.Columns {
		if !c.Hidden {
			columns = append(columns, c)
		}
	}

	for i, c := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(partyLedgerSheet, cell, c.Label); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(partyLedgerSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		if c.Width > 0 {
			colName, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return nil, err
			}
			// report widths are pixels; excel widths are roughly characters
			if err := f.SetColWidth(partyLedgerSheet, colName, colName, float64(c.Width)/7); err != nil {
				return nil, err
			}
		}
	}

	for r, rec := range summary.Records() {
		for i, c := range columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			value := rec[c.Fieldname]
			if d, ok := value.(decimal.Decimal); ok {
				value = d.InexactFloat64()
				if err := f.SetCellStyle(partyLedgerSheet, cell, cell, amountStyle); err != nil {
					return nil, err
				}
			}
			if err := f.SetCellValue(partyLedgerSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func ExportPartyLedgerSummaryExcelBytes(summary *PartyLedgerSummary) ([]byte, error) {
	f, err := ExportPartyLedgerSummaryExcel(summary)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
