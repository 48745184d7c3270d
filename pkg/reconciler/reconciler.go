package reconciler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cbodonnell/fakegame/pkg/entitlements"
	"github.com/cbodonnell/fakegame/pkg/iap"
	"github.com/cbodonnell/fakegame/pkg/log"
	"github.com/cbodonnell/fakegame/pkg/repositories/models"
	"github.com/google/uuid"
)

var (
	// ErrRequestInFlight is returned when a purchase or restore is requested
	// while another one is still awaiting the gateway.
	ErrRequestInFlight = errors.New("reconciler: a purchase or restore is already in flight")
	// ErrStopped is returned when the reconciler loop is no longer running.
	ErrStopped = errors.New("reconciler: stopped")
)

// Store persists the entitlement record.
type Store interface {
	Load() (entitlements.GameData, error)
	Save(data entitlements.GameData) error
	Reset() (entitlements.GameData, error)
	Export() (map[string]any, bool)
}

type OutcomeKind string

const (
	OutcomeUpdated          OutcomeKind = "updated"
	OutcomeRestored         OutcomeKind = "restored"
	OutcomeNothingToRestore OutcomeKind = "nothing_to_restore"
	OutcomeFailed           OutcomeKind = "failed"
)

// Outcome is the result of a purchase or restore once it has been applied.
type Outcome struct {
	Kind        OutcomeKind           `json:"kind"`
	GameData    entitlements.GameData `json:"game_data"`
	Transaction *iap.Transaction      `json:"transaction,omitempty"`
	Restored    int                   `json:"restored,omitempty"`
	Err         error                 `json:"-"`
}

// Reconciler applies purchase, restore and consumption events to the
// entitlement record, persists it and signals the UI.
//
// The record, the catalog and the store are owned by the loop run by Start.
// Gateway calls run on their own goroutines and their results are applied
// on the loop in completion order.
type Reconciler struct {
	store    Store
	gateway  iap.Gateway
	notifier Notifier
	ledger   chan<- models.Transaction

	ops      chan func()
	stopped  chan struct{}
	stopOnce sync.Once
	inFlight atomic.Bool

	// Owned by the loop.
	data     entitlements.GameData
	products []iap.Item
}

type NewReconcilerOptions struct {
	Store    Store
	Gateway  iap.Gateway
	Notifier Notifier
	// Ledger receives every applied transition. Optional.
	Ledger chan<- models.Transaction
}

// NewReconciler creates a new Reconciler and loads the persisted record.
// A record that cannot be loaded is replaced by the defaults.
func NewReconciler(opts NewReconcilerOptions) *Reconciler {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	data, err := opts.Store.Load()
	if err != nil {
		log.Warn("Failed to load game data, using defaults: %v", err)
		data = entitlements.GameData{}
	}

	return &Reconciler{
		store:    opts.Store,
		gateway:  opts.Gateway,
		notifier: notifier,
		ledger:   opts.Ledger,
		ops:      make(chan func()),
		stopped:  make(chan struct{}),
		data:     data,
	}
}

// Start runs the loop that owns the record until ctx is done.
func (r *Reconciler) Start(ctx context.Context) {
	defer r.stopOnce.Do(func() { close(r.stopped) })
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-r.ops:
			op()
		}
	}
}

// LoadCatalog fetches the product catalog from the gateway and keeps it for
// slot lookups. It shares the single in-flight slot with purchases and
// restores and returns ErrRequestInFlight while one of them is pending.
func (r *Reconciler) LoadCatalog(ctx context.Context) error {
	if err := r.begin(ctx); err != nil {
		return err
	}

	products, err := r.gateway.ListProducts(ctx)

	var applyErr error
	if callErr := r.call(context.WithoutCancel(ctx), func() {
		defer r.inFlight.Store(false)
		r.notifier.NotifyBusy(false)
		if err != nil {
			applyErr = iap.NewGatewayError("list products", err)
			log.Warn("Failed to load product catalog: %v", applyErr)
			r.notifier.NotifyError(applyErr)
			return
		}
		r.products = products
		log.Debug("Loaded %d products", len(products))
	}); callErr != nil {
		r.inFlight.Store(false)
		return callErr
	}
	return applyErr
}

// Purchase buys item through the gateway. The returned channel receives a
// single Outcome once the result has been applied, then is closed.
//
// ErrPaymentsDisabled is returned without contacting the gateway when
// payments are not allowed. ErrRequestInFlight is returned while another
// purchase or restore is pending. Once sent, a purchase cannot be canceled.
func (r *Reconciler) Purchase(ctx context.Context, item iap.Item) (<-chan Outcome, error) {
	if !r.gateway.CanMakePayments() {
		return nil, iap.ErrPaymentsDisabled
	}
	if err := r.begin(ctx); err != nil {
		return nil, err
	}

	outcomes := make(chan Outcome, 1)
	go func() {
		tx, err := r.gateway.Buy(context.WithoutCancel(ctx), item)
		r.complete(outcomes, func() Outcome {
			if err != nil {
				return r.fail(iap.NewGatewayError("buy", err))
			}
			r.data = entitlements.ApplyPurchase(r.data, entitlements.KeywordFor(item.ID))
			log.Debug("Applied purchase of %s: %+v", item.ID, r.data)
			r.persist()
			txID := ""
			if tx != nil {
				txID = tx.ID
			}
			r.record(models.TransactionKindPurchase, txID, item.ID, "")
			r.notifier.NotifyUpdate(r.data)
			return Outcome{Kind: OutcomeUpdated, GameData: r.data, Transaction: tx}
		})
	}()
	return outcomes, nil
}

// RestorePurchases asks the gateway to restore previous purchases. Only the
// maps unlock is restorable. The returned channel behaves as for Purchase.
func (r *Reconciler) RestorePurchases(ctx context.Context) (<-chan Outcome, error) {
	if err := r.begin(ctx); err != nil {
		return nil, err
	}

	outcomes := make(chan Outcome, 1)
	go func() {
		restored, err := r.gateway.Restore(context.WithoutCancel(ctx))
		r.complete(outcomes, func() Outcome {
			if err != nil {
				return r.fail(iap.NewGatewayError("restore", err))
			}
			if restored <= 0 {
				log.Info("Nothing to restore")
				r.notifier.NotifyRestoreEmpty()
				return Outcome{Kind: OutcomeNothingToRestore, GameData: r.data}
			}
			r.data = entitlements.ApplyRestore(r.data)
			log.Debug("Restored %d purchases: %+v", restored, r.data)
			r.persist()
			r.record(models.TransactionKindRestore, "", "", "")
			r.notifier.NotifyUpdate(r.data)
			r.notifier.NotifyRestoreDone()
			return Outcome{Kind: OutcomeRestored, GameData: r.data, Restored: restored}
		})
	}()
	return outcomes, nil
}

// Consume uses one unit of a consumable resource and persists the result.
// A depleted resource returns entitlements.ErrDepleted and nothing changes.
func (r *Reconciler) Consume(ctx context.Context, resource entitlements.Resource) (entitlements.GameData, error) {
	var (
		data       entitlements.GameData
		consumeErr error
	)
	err := r.call(ctx, func() {
		next, err := entitlements.Consume(r.data, resource)
		if err != nil {
			consumeErr = err
			data = r.data
			return
		}
		r.data = next
		r.persist()
		r.record(models.TransactionKindConsume, "", "", string(resource))
		r.notifier.NotifyUpdate(r.data)
		data = r.data
	})
	if err != nil {
		return entitlements.GameData{}, err
	}
	return data, consumeErr
}

// Reset restores the factory record through the store's reset chain.
func (r *Reconciler) Reset(ctx context.Context) (entitlements.GameData, error) {
	var (
		data     entitlements.GameData
		resetErr error
	)
	err := r.call(ctx, func() {
		next, err := r.store.Reset()
		if err != nil {
			log.Error("Failed to reset game data: %v", err)
			// The reset chain may have removed the file; write the kept record back.
			r.persist()
			resetErr = err
			data = r.data
			return
		}
		r.data = next
		r.record(models.TransactionKindReset, "", "", "")
		r.notifier.NotifyUpdate(r.data)
		data = r.data
	})
	if err != nil {
		return entitlements.GameData{}, err
	}
	return data, resetErr
}

// GameData returns a copy of the current record.
func (r *Reconciler) GameData(ctx context.Context) (entitlements.GameData, error) {
	var data entitlements.GameData
	err := r.call(ctx, func() {
		data = r.data
	})
	return data, err
}

// Products returns the loaded catalog.
func (r *Reconciler) Products(ctx context.Context) ([]iap.Item, error) {
	var products []iap.Item
	err := r.call(ctx, func() {
		products = make([]iap.Item, len(r.products))
		copy(products, r.products)
	})
	return products, err
}

// ItemForSlot returns the first catalog item matching the keyword of a
// store list row. It returns false if the catalog is not loaded or holds
// no match.
func (r *Reconciler) ItemForSlot(ctx context.Context, index int) (iap.Item, bool, error) {
	keyword, ok := entitlements.SlotKeyword(index)
	if !ok {
		return iap.Item{}, false, nil
	}
	var (
		item  iap.Item
		found bool
	)
	err := r.call(ctx, func() {
		item, found = iap.FindItem(r.products, keyword.Matches)
	})
	return item, found, err
}

// PriceFormatted returns the localized price of item.
func (r *Reconciler) PriceFormatted(item iap.Item) (string, bool) {
	return r.gateway.PriceFormatted(item)
}

// Export returns the raw content of the settings file.
func (r *Reconciler) Export(ctx context.Context) (map[string]any, bool, error) {
	var (
		m  map[string]any
		ok bool
	)
	err := r.call(ctx, func() {
		m, ok = r.store.Export()
	})
	return m, ok, err
}

// begin claims the single in-flight slot and signals busy.
func (r *Reconciler) begin(ctx context.Context) error {
	if !r.inFlight.CompareAndSwap(false, true) {
		return ErrRequestInFlight
	}
	if err := r.call(ctx, func() { r.notifier.NotifyBusy(true) }); err != nil {
		r.inFlight.Store(false)
		return err
	}
	return nil
}

// complete applies a gateway result on the loop and delivers its outcome.
func (r *Reconciler) complete(outcomes chan<- Outcome, apply func() Outcome) {
	op := func() {
		r.notifier.NotifyBusy(false)
		outcome := apply()
		r.inFlight.Store(false)
		outcomes <- outcome
		close(outcomes)
	}
	select {
	case r.ops <- op:
	case <-r.stopped:
		r.inFlight.Store(false)
		outcomes <- Outcome{Kind: OutcomeFailed, Err: ErrStopped}
		close(outcomes)
	}
}

// fail must be called on the loop.
func (r *Reconciler) fail(err error) Outcome {
	log.Warn("In-app purchase request failed: %v", err)
	r.notifier.NotifyError(err)
	return Outcome{Kind: OutcomeFailed, GameData: r.data, Err: err}
}

// persist must be called on the loop. Failures leave the in-memory record
// authoritative until the next successful save.
func (r *Reconciler) persist() {
	if err := r.store.Save(r.data); err != nil {
		log.Error("Failed to persist game data: %v", err)
	}
}

// record must be called on the loop. It never blocks.
func (r *Reconciler) record(kind models.TransactionKind, id string, productID string, detail string) {
	if r.ledger == nil {
		return
	}
	if id == "" {
		id = uuid.NewString()
	}
	tx := models.Transaction{
		ID:              id,
		Kind:            kind,
		ProductID:       productID,
		Detail:          detail,
		Timestamp:       time.Now().UnixMilli(),
		ExtraLives:      r.data.ExtraLives,
		SuperPowers:     r.data.SuperPowers,
		AllMapsUnlocked: r.data.AllMapsUnlocked,
	}
	select {
	case r.ledger <- tx:
	default:
		log.Warn("Ledger buffer full, dropping %s transaction %s", kind, id)
	}
}

// call runs op on the loop and waits for it to finish.
func (r *Reconciler) call(ctx context.Context, op func()) error {
	done := make(chan struct{})
	select {
	case r.ops <- func() {
		defer close(done)
		op()
	}:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}
