package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fuyalasmit/money-map/internal/domain"
)

// TaskError accumulates the per-item errors of one bulk phase.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Sink receives exported accounts, transfers and flags.
type Sink interface {
	Ping(ctx context.Context) error
	UpsertAccount(ctx context.Context, accountID, holder string) error
	UpsertTransaction(ctx context.Context, tx domain.Transaction) error
	UpsertFlag(ctx context.Context, flag domain.Flag) error
}

// ExportStats counts what an export wrote.
type ExportStats struct {
	Accounts     int
	Transactions int
	Flags        int
}

// BulkExporter pushes an analysis result into a Sink using a worker pool.
type BulkExporter struct {
	sink    Sink
	workers int
	logger  *slog.Logger
}

// NewBulkExporter creates a BulkExporter with the provided concurrency.
func NewBulkExporter(sink Sink, workers int, logger *slog.Logger) *BulkExporter {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BulkExporter{sink: sink, workers: workers, logger: logger.With("component", "exporter")}
}

// Export checks the sink is reachable, then writes accounts, then transfers,
// then flags, so every flag finds its transfers already present. A failing
// phase stops the export.
func (be *BulkExporter) Export(ctx context.Context, res Result) (ExportStats, error) {
	var stats ExportStats
	if err := be.sink.Ping(ctx); err != nil {
		return stats, err
	}
	txs := res.Store.AllByTime()

	holders := make(map[string]string)
	var accounts []string
	note := func(acct, name string) {
		if _, ok := holders[acct]; ok {
			return
		}
		holders[acct] = name
		accounts = append(accounts, acct)
	}
	for _, tx := range txs {
		note(tx.Sender, tx.SenderName)
		note(tx.Receiver, tx.ReceiverName)
	}

	if err := be.run(ctx, len(accounts), func(idx int) error {
		return be.sink.UpsertAccount(ctx, accounts[idx], holders[accounts[idx]])
	}); err != nil {
		return stats, fmt.Errorf("export accounts: %w", err)
	}
	stats.Accounts = len(accounts)
	be.logger.Debug("accounts exported", "count", stats.Accounts)

	if err := be.run(ctx, len(txs), func(idx int) error {
		return be.sink.UpsertTransaction(ctx, txs[idx])
	}); err != nil {
		return stats, fmt.Errorf("export transactions: %w", err)
	}
	stats.Transactions = len(txs)
	be.logger.Debug("transactions exported", "count", stats.Transactions)

	flags := res.Report.Flags
	if err := be.run(ctx, len(flags), func(idx int) error {
		return be.sink.UpsertFlag(ctx, flags[idx])
	}); err != nil {
		return stats, fmt.Errorf("export flags: %w", err)
	}
	stats.Flags = len(flags)
	be.logger.Debug("flags exported", "count", stats.Flags)
	return stats, nil
}

func (be *BulkExporter) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				errCh <- err
			}
		}
	}

	for i := 0; i < be.workers; i++ {
		wg.Add(1)
		go worker()
	}

	cancelled := false
Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			cancelled = true
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if cancelled {
		return ctx.Err()
	}

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
