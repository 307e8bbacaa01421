package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pocketbook/internal/amqp"
	"pocketbook/internal/cache"
	"pocketbook/internal/core"
	applog "pocketbook/internal/log"
	"pocketbook/internal/sheets"
)

const (
	// DefaultPendingLimit bounds the retry buffer; beyond it failures are
	// handed back to the broker for redelivery.
	DefaultPendingLimit = 100
	// seenLimit and seenTTL bound the window in which a redelivered
	// transaction is recognised as already exported.
	seenLimit = 4096
	seenTTL   = 24 * time.Hour
)

// ReceiptWorker exports recorded transactions to a ReceiptWriter. Failed
// appends are parked in a bounded pending buffer and retried by
// FlushPending; redelivered transactions already exported are skipped.
type ReceiptWorker struct {
	writer       sheets.ReceiptWriter
	pendingLimit int

	seen *cache.LRUCache[struct{}]

	mu      sync.Mutex
	pending []core.Transaction
	stats   Stats
}

// Stats counts worker outcomes since start.
type Stats struct {
	Exported   int
	Duplicates int
	Failed     int
	Pending    int
}

func NewReceiptWorker(writer sheets.ReceiptWriter, pendingLimit int) *ReceiptWorker {
	if pendingLimit <= 0 {
		pendingLimit = DefaultPendingLimit
	}
	return &ReceiptWorker{
		writer:       writer,
		pendingLimit: pendingLimit,
		seen:         cache.NewLRUCache[struct{}](seenLimit, seenTTL),
	}
}

// HandleTransactionRecorded processes one AMQP message. It returns an error
// only when the append failed and the pending buffer is full.
func (w *ReceiptWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	tx := msg.Transaction

	if w.alreadyExported(tx.ID) {
		w.mu.Lock()
		w.stats.Duplicates++
		w.mu.Unlock()
		slog.InfoContext(ctx, "Skipping already exported transaction",
			applog.FieldComponent, applog.ComponentWorker, applog.FieldTxID, tx.ID)
		return nil
	}

	if err := w.export(ctx, tx); err != nil {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.stats.Failed++
		if len(w.pending) >= w.pendingLimit {
			return fmt.Errorf("export transaction %s: %w", tx.ID, err)
		}
		w.pending = append(w.pending, tx)
		slog.WarnContext(ctx, "Receipt export failed, parked for retry",
			applog.FieldComponent, applog.ComponentWorker,
			applog.FieldTxID, tx.ID,
			applog.FieldError, err,
			"pending", len(w.pending))
	}
	return nil
}

// FlushPending retries every parked transaction once. Transactions that
// fail again stay parked.
func (w *ReceiptWorker) FlushPending(ctx context.Context) error {
	w.mu.Lock()
	batch := w.pending
	w.pending = nil
	w.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Retrying pending receipts",
		applog.FieldComponent, applog.ComponentWorker, applog.FieldCount, len(batch))

	var failed []core.Transaction
	var lastErr error
	for _, tx := range batch {
		if ctx.Err() != nil {
			failed = append(failed, tx)
			continue
		}
		if w.alreadyExported(tx.ID) {
			continue
		}
		if err := w.export(ctx, tx); err != nil {
			failed = append(failed, tx)
			lastErr = err
		}
	}

	w.mu.Lock()
	w.pending = append(failed, w.pending...)
	w.mu.Unlock()

	if lastErr != nil {
		return fmt.Errorf("%d receipts still pending: %w", len(failed), lastErr)
	}
	return ctx.Err()
}

// RunPendingFlusher calls FlushPending every interval until ctx is done.
func (w *ReceiptWorker) RunPendingFlusher(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.seen.CleanExpired()
			if err := w.FlushPending(ctx); err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Pending receipt flush failed",
					applog.FieldComponent, applog.ComponentWorker, applog.FieldError, err)
			}
		}
	}
}

func (w *ReceiptWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.stats
	s.Pending = len(w.pending)
	return s
}

func (w *ReceiptWorker) export(ctx context.Context, tx core.Transaction) error {
	ref, err := w.writer.AppendReceipt(ctx, tx)
	if err != nil {
		return err
	}

	w.seen.Set(tx.ID, struct{}{})
	w.mu.Lock()
	w.stats.Exported++
	w.mu.Unlock()

	slog.InfoContext(ctx, "Receipt exported",
		append(applog.NewFields().
			WithComponent(applog.ComponentWorker).
			WithTransaction(tx.ID, tx.Name, tx.Amount, string(tx.Type)).
			ToSlice(), applog.FieldSheetsRef, ref)...)
	return nil
}

func (w *ReceiptWorker) alreadyExported(id string) bool {
	_, ok := w.seen.Get(id)
	return ok
}
