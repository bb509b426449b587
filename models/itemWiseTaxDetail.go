package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/deprecation"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const ItemWiseTaxDetailsColumn = "item_wise_tax_details"

// ItemWiseTaxDetail is the per-item tax breakdown stored under each item code.
type ItemWiseTaxDetail struct {
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	NetAmount decimal.Decimal
}

// stored as plain JSON numbers, not decimal strings
func (d ItemWiseTaxDetail) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TaxRate   json.Number `json:"tax_rate"`
		TaxAmount json.Number `json:"tax_amount"`
		NetAmount json.Number `json:"net_amount"`
	}{
		TaxRate:   json.Number(d.TaxRate.String()),
		TaxAmount: json.Number(d.TaxAmount.String()),
		NetAmount: json.Number(d.NetAmount.String()),
	})
}

func (d *ItemWiseTaxDetail) UnmarshalJSON(data []byte) error {
	var aux struct {
		TaxRate   json.RawMessage `json:"tax_rate"`
		TaxAmount json.RawMessage `json:"tax_amount"`
		NetAmount json.RawMessage `json:"net_amount"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.TaxRate = rawToDecimal(aux.TaxRate)
	d.TaxAmount = rawToDecimal(aux.TaxAmount)
	d.NetAmount = rawToDecimal(aux.NetAmount)
	return nil
}

var legacyTaxDetailRead = deprecation.Notice{
	Original:   "models.ParseItemWiseTaxDetails(legacy encoding)",
	Marked:     "2024-11-07",
	Graduation: "v17",
	Message:    "run cmd/migrate-item-wise-tax-data so stored values use {tax_rate, tax_amount, net_amount}",
}

// ParseItemWiseTaxDetails decodes an item_wise_tax_details value.
// Legacy encodings are still accepted but warn.
func ParseItemWiseTaxDetails(raw string) (map[string]ItemWiseTaxDetail, error) {
	result := map[string]ItemWiseTaxDetail{}
	if strings.TrimSpace(raw) == "" {
		return result, nil
	}
	normalized, changed, err := NormalizeItemWiseTaxDetails(raw)
	if err != nil {
		return nil, err
	}
	if changed {
		deprecation.Warn(legacyTaxDetailRead)
	}
	if err := json.Unmarshal([]byte(normalized), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// rawToDecimal reads a JSON number or numeric string; anything else is zero.
func rawToDecimal(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}
		return utils.Flt(s)
	}
	return utils.Flt(string(raw))
}

// legacyTaxDetail converts one legacy per-item value. ok is false when the value is left as-is.
//
//	[rate, amount] -> {rate, amount, 0}
//	"rate"         -> {rate, 0, 0}
func legacyTaxDetail(raw json.RawMessage) (ItemWiseTaxDetail, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ItemWiseTaxDetail{}, false
	}
	switch raw[0] {
	case '[':
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return ItemWiseTaxDetail{}, false
		}
		return ItemWiseTaxDetail{
			TaxRate:   rawToDecimal(pair[0]),
			TaxAmount: rawToDecimal(pair[1]),
			NetAmount: decimal.Zero,
		}, true
	case '"':
		return ItemWiseTaxDetail{TaxRate: rawToDecimal(raw)}, true
	}
	return ItemWiseTaxDetail{}, false
}

// NormalizeItemWiseTaxDetails rewrites legacy entries of one stored value.
// changed is false (and out == raw) when nothing needed rewriting.
func NormalizeItemWiseTaxDetails(raw string) (out string, changed bool, err error) {
	if strings.TrimSpace(raw) == "" {
		return raw, false, nil
	}
	var items map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return raw, false, fmt.Errorf("decode %s: %w", ItemWiseTaxDetailsColumn, err)
	}
	rewritten := make(map[string]interface{}, len(items))
	for item, value := range items {
		if detail, ok := legacyTaxDetail(value); ok {
			rewritten[item] = detail
			changed = true
			continue
		}
		rewritten[item] = value
	}
	if !changed {
		return raw, false, nil
	}
	b, err := json.Marshal(rewritten)
	if err != nil {
		return raw, false, err
	}
	return string(b), true, nil
}

type ItemWiseTaxMigrationOptions struct {
	DryRun    bool
	BatchSize int
}

type ItemWiseTaxTableStats struct {
	Table   string        `json:"table"`
	Scanned int           `json:"scanned"`
	Updated int           `json:"updated"`
	Elapsed time.Duration `json:"elapsed"`
}

// ItemWiseTaxTables lists tables of the current schema that carry item_wise_tax_details.
func ItemWiseTaxTables(ctx context.Context, db *gorm.DB) ([]string, error) {
	var tables []string
	err := db.WithContext(ctx).Raw(`
		SELECT DISTINCT table_name
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND column_name = ?
		ORDER BY table_name`, ItemWiseTaxDetailsColumn).Scan(&tables).Error
	return tables, err
}

// MigrateItemWiseTaxDetails rewrites legacy item_wise_tax_details values in every table that has the column.
// Each table is one transaction; the first failure rolls that table back and stops the run.
// Running it again on migrated data writes nothing.
func MigrateItemWiseTaxDetails(ctx context.Context, db *gorm.DB, opts ItemWiseTaxMigrationOptions, logger *logrus.Logger) ([]ItemWiseTaxTableStats, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	tables, err := ItemWiseTaxTables(ctx, db)
	if err != nil {
		return nil, err
	}

	stats := make([]ItemWiseTaxTableStats, 0, len(tables))
	for _, table := range tables {
		if !utils.IsIdentifier(table) {
			logger.WithField("table", table).Warn("skipping table with unexpected name")
			continue
		}
		started := time.Now()
		st := ItemWiseTaxTableStats{Table: table}
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return migrateItemWiseTaxTable(tx, table, opts, &st)
		})
		st.Elapsed = time.Since(started)
		stats = append(stats, st)
		if err != nil {
			config.LogError(logger, "models", "MigrateItemWiseTaxDetails", table, st, err)
			return stats, fmt.Errorf("%s: %w", table, err)
		}
		logger.WithFields(logrus.Fields{
			"table":   table,
			"scanned": st.Scanned,
			"updated": st.Updated,
			"dry_run": opts.DryRun,
			"elapsed": st.Elapsed.String(),
		}).Info("item wise tax details migrated")
	}
	return stats, nil
}

func migrateItemWiseTaxTable(tx *gorm.DB, table string, opts ItemWiseTaxMigrationOptions, st *ItemWiseTaxTableStats) error {
	selectSQL := fmt.Sprintf(`SELECT id, %[2]s AS details FROM %[1]s
		WHERE id > ? AND %[2]s IS NOT NULL AND %[2]s <> ''
		ORDER BY id LIMIT ?`, table, ItemWiseTaxDetailsColumn)
	updateSQL := fmt.Sprintf("UPDATE %s SET %s = ? WHERE id = ?", table, ItemWiseTaxDetailsColumn)

	lastID := 0
	for {
		var rows []struct {
			ID      int
			Details string
		}
		if err := tx.Raw(selectSQL, lastID, opts.BatchSize).Scan(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for _, row := range rows {
			lastID = row.ID
			st.Scanned++
			out, changed, err := NormalizeItemWiseTaxDetails(row.Details)
			if err != nil {
				return fmt.Errorf("row %d: %w", row.ID, err)
			}
			if !changed {
				continue
			}
			st.Updated++
			if opts.DryRun {
				continue
			}
			if err := tx.Exec(updateSQL, out, row.ID).Error; err != nil {
				return fmt.Errorf("row %d: %w", row.ID, err)
			}
		}
	}
}
