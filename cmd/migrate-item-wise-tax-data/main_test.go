package main

import (
	"errors"
	"flag"
	"io"
	"testing"
	"time"

	"github.com/mmdatafocus/ledger_backend/models"
)

func TestParseFlags_Defaults(t *testing.T) {
	opts, err := parseFlags(nil, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.dryRun || opts.noLock || opts.batchSize != 500 || opts.lockTTL != time.Minute {
		t.Fatalf("defaults = %+v", opts)
	}
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--dry-run", "--batch-size", "50", "--lock-ttl", "30s"}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !opts.dryRun || opts.batchSize != 50 || opts.lockTTL != 30*time.Second {
		t.Fatalf("options = %+v", opts)
	}

	// the lock TTL is unused without a lock
	if _, err := parseFlags([]string{"--no-lock", "--lock-ttl", "0s"}, io.Discard); err != nil {
		t.Fatalf("--no-lock: %v", err)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero batch", []string{"--batch-size", "0"}},
		{"negative batch", []string{"--batch-size", "-10"}},
		{"non numeric batch", []string{"--batch-size", "many"}},
		{"short lock ttl", []string{"--lock-ttl", "1s"}},
		{"unknown flag", []string{"--tables", "sales_invoice_items"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseFlags(tt.args, io.Discard); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}

	if _, err := parseFlags([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("-h: err = %v", err)
	}
}

func TestSummaryFields(t *testing.T) {
	fields := summaryFields([]models.ItemWiseTaxTableStats{
		{Table: "sales_invoice_items", Scanned: 10, Updated: 4},
		{Table: "purchase_invoice_items", Scanned: 5, Updated: 0},
	}, true, time.Second)
	if fields["tables"] != 2 || fields["scanned"] != 15 || fields["updated"] != 4 || fields["dry_run"] != true {
		t.Fatalf("fields = %v", fields)
	}
}
