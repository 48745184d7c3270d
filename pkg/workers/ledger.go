package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/fakegame/pkg/log"
	"github.com/cbodonnell/fakegame/pkg/repositories"
	"github.com/cbodonnell/fakegame/pkg/repositories/models"
)

// drainTimeout bounds how long pending entries are written after shutdown.
const drainTimeout = 2 * time.Second

type LedgerWorker struct {
	repository repositories.Repository
	entries    <-chan models.Transaction
}

type NewLedgerWorkerOptions struct {
	Repository repositories.Repository
	Entries    <-chan models.Transaction
}

// NewLedgerWorker creates a new LedgerWorker.
// The worker records the transactions applied by the reconciler
// to the ledger repository, off the reconciler's loop.
func NewLedgerWorker(opts NewLedgerWorkerOptions) *LedgerWorker {
	return &LedgerWorker{
		repository: opts.Repository,
		entries:    opts.Entries,
	}
}

// Start records entries until ctx is done or the entries channel is closed.
// Entries already buffered when ctx is done are still written.
func (w *LedgerWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case tx, ok := <-w.entries:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				w.drain(tx)
				return
			}
			w.record(ctx, tx)
		}
	}
}

func (w *LedgerWorker) drain(pending ...models.Transaction) {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for _, tx := range pending {
		w.record(ctx, tx)
	}
	for {
		select {
		case tx, ok := <-w.entries:
			if !ok {
				return
			}
			w.record(ctx, tx)
		default:
			return
		}
	}
}

func (w *LedgerWorker) record(ctx context.Context, tx models.Transaction) {
	if err := w.repository.RecordTransaction(ctx, tx); err != nil {
		log.Error("Failed to record %s transaction %s: %v", tx.Kind, tx.ID, err)
		return
	}
	log.Trace("Recorded %s transaction %s", tx.Kind, tx.ID)
}
