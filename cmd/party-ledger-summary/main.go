package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/models/reports"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/sirupsen/logrus"
)

// dimensionFlags collects repeated --dimension fieldname=a,b flags.
type dimensionFlags map[string][]string

func (d dimensionFlags) String() string {
	parts := make([]string, 0, len(d))
	for k, v := range d {
		parts = append(parts, k+"="+strings.Join(v, ","))
	}
	return strings.Join(parts, ";")
}

func (d dimensionFlags) Set(value string) error {
	field, values, ok := strings.Cut(value, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return fmt.Errorf("expected fieldname=value[,value], got %q", value)
	}
	d[field] = append(d[field], utils.SplitAndTrim(values)...)
	return nil
}

type options struct {
	partyType models.PartyType
	filters   reports.PartyLedgerSummaryFilters
	xlsxPath  string
	timeout   time.Duration
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("party-ledger-summary", flag.ContinueOnError)
	fs.SetOutput(stderr)

	partyType := fs.String("party-type", "Customer", "Customer or Supplier")
	f := reports.PartyLedgerSummaryFilters{}
	fs.StringVar(&f.Company, "company", "", "Company (default: Global Defaults)")
	fs.StringVar(&f.FromDate, "from-date", "", "Start date YYYY-MM-DD (default: today)")
	fs.StringVar(&f.ToDate, "to-date", "", "End date YYYY-MM-DD (default: today)")
	fs.StringVar(&f.FinanceBook, "finance-book", "", "Finance book")
	fs.StringVar(&f.Party, "party", "", "Single party")
	fs.StringVar(&f.CustomerGroup, "customer-group", "", "Customer group (customers only)")
	fs.StringVar(&f.Territory, "territory", "", "Territory (customers only)")
	fs.StringVar(&f.PaymentTermsTemplate, "payment-terms-template", "", "Payment terms template (customers only)")
	fs.StringVar(&f.SalesPartner, "sales-partner", "", "Sales partner (customers only)")
	fs.StringVar(&f.SalesPerson, "sales-person", "", "Sales person (customers only)")
	fs.StringVar(&f.SupplierGroup, "supplier-group", "", "Supplier group (suppliers only)")
	costCenters := fs.String("cost-center", "", "Comma separated cost centers; children are included")
	projects := fs.String("project", "", "Comma separated projects")
	dims := dimensionFlags{}
	fs.Var(dims, "dimension", "Accounting dimension filter fieldname=a,b (repeatable)")
	xlsxPath := fs.String("xlsx", "", "Write an .xlsx workbook to this path instead of printing JSON")
	timeout := fs.Duration("timeout", 5*time.Minute, "Overall timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	pt, err := models.ParsePartyType(*partyType)
	if err != nil {
		return nil, err
	}
	f.CostCenter = utils.SplitAndTrim(*costCenters)
	f.Project = utils.SplitAndTrim(*projects)
	if len(dims) > 0 {
		f.Dimensions = dims
	}
	return &options{partyType: pt, filters: f, xlsxPath: *xlsxPath, timeout: *timeout}, nil
}

func writeOutput(summary *reports.PartyLedgerSummary, opts *options, stdout io.Writer) error {
	if opts.xlsxPath == "" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	f, err := reports.ExportPartyLedgerSummaryExcel(summary)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(opts.xlsxPath)
}

// party-ledger-summary prints the customer or supplier ledger summary for a period.
//
// Example:
//
//	party-ledger-summary --party-type Supplier --company "Acme Corp" --from-date 2024-01-01 --to-date 2024-03-31 --xlsx q1.xlsx
func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := config.GetLogger()
	config.ConnectDatabaseWithRetry()
	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedisWithRetry()
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	if opts.filters.Company != "" {
		ctx = utils.SetCompanyInContext(ctx, opts.filters.Company)
	}

	summary, err := reports.GetPartyLedgerSummary(ctx, opts.partyType, opts.filters)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := writeOutput(summary, opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.xlsxPath != "" {
		logger.WithFields(logrus.Fields{
			"party_type": opts.partyType,
			"company":    summary.Company,
			"rows":       len(summary.Rows),
			"path":       opts.xlsxPath,
		}).Info("party ledger summary written")
	}
}
