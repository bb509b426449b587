package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/sirupsen/logrus"
)

const lockKey = "lock:migrate-item-wise-tax-data"

var errLockHeld = errors.New("another migration is running")

type options struct {
	dryRun    bool
	batchSize int
	noLock    bool
	lockTTL   time.Duration
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("migrate-item-wise-tax-data", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.BoolVar(&opts.dryRun, "dry-run", false, "If true, do not write; only count rows that would change")
	fs.IntVar(&opts.batchSize, "batch-size", 500, "Rows read per query")
	fs.BoolVar(&opts.noLock, "no-lock", false, "Skip the redis single-run lock")
	fs.DurationVar(&opts.lockTTL, "lock-ttl", time.Minute, "Lock TTL; refreshed while the migration runs")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.batchSize <= 0 {
		return nil, errors.New("--batch-size must be positive")
	}
	if !opts.noLock && opts.lockTTL < 2*time.Second {
		return nil, errors.New("--lock-ttl must be at least 2s")
	}
	return opts, nil
}

// migrate-item-wise-tax-data rewrites legacy item_wise_tax_details values ([rate, amount] lists and bare
// rates) into {"tax_rate","tax_amount","net_amount"} objects in every table that has the column.
//
// Each table is committed in its own transaction; the first failing row rolls back its table and stops the run.
// Run with --dry-run first to see the counts.
func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, opts, config.GetLogger())
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run returns instead of exiting so the lock is always released.
func run(ctx context.Context, opts *options, logger *logrus.Logger) error {
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		return errors.New("database not initialized")
	}

	migrate := func(ctx context.Context) error {
		if opts.dryRun {
			fmt.Println("[dry-run] no changes will be written")
		}

		// Rows of every company are migrated.
		ctx = utils.SkipCompanyScope(ctx)
		started := time.Now()
		stats, err := models.MigrateItemWiseTaxDetails(ctx, db, models.ItemWiseTaxMigrationOptions{
			DryRun:    opts.dryRun,
			BatchSize: opts.batchSize,
		}, logger)

		entry := logger.WithFields(summaryFields(stats, opts.dryRun, time.Since(started)))
		if err != nil {
			entry.Error("item wise tax migration failed: " + err.Error())
			return err
		}
		entry.Info("item wise tax migration finished")
		return nil
	}

	if opts.noLock {
		return migrate(ctx)
	}
	config.ConnectRedisWithRetry()
	return withLock(ctx, config.GetRedisLock(), opts.lockTTL, logger, migrate)
}

// withLock runs fn while holding lockKey and releases the lock whatever fn returns.
func withLock(ctx context.Context, locker *redislock.Client, ttl time.Duration, logger *logrus.Logger, fn func(context.Context) error) error {
	if locker == nil {
		return errors.New("redis not initialized")
	}
	lock, err := locker.Obtain(ctx, lockKey, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return errLockHeld
	}
	if err != nil {
		return fmt.Errorf("obtain lock: %w", err)
	}

	lockCtx, stopRefresh := context.WithCancel(ctx)
	defer func() {
		stopRefresh()
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.WithField("lock", lockKey).Warn("failed to release lock: " + err.Error())
		}
	}()
	go keepLock(lockCtx, lock, ttl, logger)

	return fn(ctx)
}

func summaryFields(stats []models.ItemWiseTaxTableStats, dryRun bool, elapsed time.Duration) logrus.Fields {
	scanned, updated := 0, 0
	for _, st := range stats {
		scanned += st.Scanned
		updated += st.Updated
	}
	return logrus.Fields{
		"tables":  len(stats),
		"scanned": scanned,
		"updated": updated,
		"dry_run": dryRun,
		"elapsed": elapsed.String(),
	}
}

// keepLock refreshes the lock at half its TTL until ctx is done.
func keepLock(ctx context.Context, lock *redislock.Lock, ttl time.Duration, logger *logrus.Logger) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := lock.Refresh(ctx, ttl, nil); err != nil {
				logger.WithField("lock", lockKey).Warn("failed to refresh lock: " + err.Error())
			}
		}
	}
}
