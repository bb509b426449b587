package models_test

import (
	"testing"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestMigrateItemWiseTaxDetails_Integration(t *testing.T) {
	ctx := setupIntegration(t)
	db := config.GetDB()

	sales := []models.SalesTaxesAndCharges{
		{Parent: "SINV-1", AccountHead: "VAT - AC", ItemWiseTaxDetails: `{"ITEM-1": [18, 36], "ITEM-2": "5"}`},
		{Parent: "SINV-2", AccountHead: "VAT - AC", ItemWiseTaxDetails: `{"ITEM-1": {"tax_rate": 18, "tax_amount": 9, "net_amount": 50}}`},
		{Parent: "SINV-3", AccountHead: "VAT - AC"},
	}
	if err := db.WithContext(ctx).Create(&sales).Error; err != nil {
		t.Fatalf("seed sales taxes: %v", err)
	}
	purchase := models.PurchaseTaxesAndCharges{Parent: "PINV-1", AccountHead: "VAT - AC", ItemWiseTaxDetails: `{"RAW-1": [7.5, 15]}`}
	if err := db.WithContext(ctx).Create(&purchase).Error; err != nil {
		t.Fatalf("seed purchase taxes: %v", err)
	}

	logger, _ := test.NewNullLogger()

	dry, err := models.MigrateItemWiseTaxDetails(ctx, db, models.ItemWiseTaxMigrationOptions{DryRun: true}, logger)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if updated := totalUpdated(dry); updated != 2 {
		t.Fatalf("dry run would update %d rows, want 2", updated)
	}
	var unchanged models.SalesTaxesAndCharges
	if err := db.WithContext(ctx).First(&unchanged, sales[0].ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if unchanged.ItemWiseTaxDetails != sales[0].ItemWiseTaxDetails {
		t.Fatalf("dry run wrote %q", unchanged.ItemWiseTaxDetails)
	}

	first, err := models.MigrateItemWiseTaxDetails(ctx, db, models.ItemWiseTaxMigrationOptions{BatchSize: 1}, logger)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected both tax tables, got %+v", first)
	}
	if updated := totalUpdated(first); updated != 2 {
		t.Fatalf("updated %d rows, want 2", updated)
	}

	var migrated models.SalesTaxesAndCharges
	if err := db.WithContext(ctx).First(&migrated, sales[0].ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	details, err := models.ParseItemWiseTaxDetails(migrated.ItemWiseTaxDetails)
	if err != nil {
		t.Fatalf("parse migrated value: %v", err)
	}
	if details["ITEM-1"].TaxAmount.String() != "36" || details["ITEM-2"].TaxRate.String() != "5" {
		t.Fatalf("migrated = %s", migrated.ItemWiseTaxDetails)
	}

	second, err := models.MigrateItemWiseTaxDetails(ctx, db, models.ItemWiseTaxMigrationOptions{}, logger)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if updated := totalUpdated(second); updated != 0 {
		t.Fatalf("second run updated %d rows, want 0", updated)
	}
}

func totalUpdated(stats []models.ItemWiseTaxTableStats) int {
	n := 0
	for _, s := range stats {
		n += s.Updated
	}
	return n
}
