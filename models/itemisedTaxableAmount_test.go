package models

import (
	"testing"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/deprecation"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestGetItemisedTaxableAmount(t *testing.T) {
	logger, hook := test.NewNullLogger()
	deprecation.SetLogger(logger)
	t.Cleanup(func() { deprecation.SetLogger(config.GetLogger()) })
	t.Setenv("DEPRECATION_WARN_ALWAYS", "true")

	got := GetItemisedTaxableAmount([]ItemNetAmount{
		{ItemCode: "A", NetAmount: decimal.NewFromInt(100)},
		{ItemCode: "A", NetAmount: decimal.RequireFromString("50.25")},
		{ItemName: "Loose item", NetAmount: decimal.NewFromInt(10)},
	})

	if !got["A"].Equal(decimal.RequireFromString("150.25")) {
		t.Fatalf("A = %s", got["A"])
	}
	if !got["Loose item"].Equal(decimal.NewFromInt(10)) {
		t.Fatalf("Loose item = %s", got["Loose item"])
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a deprecation warning, got %v", hook.AllEntries())
	}
	if entry.Data["category"] != deprecation.Category {
		t.Fatalf("category = %v", entry.Data["category"])
	}
}
