package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	iapmocks "github.com/cbodonnell/fakegame/mocks/github.com/cbodonnell/fakegame/pkg/iap"
	notifiermocks "github.com/cbodonnell/fakegame/mocks/github.com/cbodonnell/fakegame/pkg/reconciler"
	"github.com/cbodonnell/fakegame/pkg/entitlements"
	"github.com/cbodonnell/fakegame/pkg/iap"
	"github.com/cbodonnell/fakegame/pkg/repositories/models"
	"github.com/cbodonnell/fakegame/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	extraLivesItem  = iap.Item{ID: "com.appcoda.fakegame.extra_lives", Title: "Extra Lives", Consumable: true}
	superPowersItem = iap.Item{ID: "com.appcoda.fakegame.superpowers", Title: "Super Powers", Consumable: true}
	unlockMapsItem  = iap.Item{ID: "com.appcoda.fakegame.unlock_maps", Title: "Unlock All Maps"}
	catalog         = []iap.Item{extraLivesItem, superPowersItem, unlockMapsItem}
)

type recordingNotifier struct {
	lock    sync.Mutex
	signals []string
}

func (n *recordingNotifier) add(signal string) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.signals = append(n.signals, signal)
}

func (n *recordingNotifier) NotifyBusy(busy bool) { n.add(fmt.Sprintf("busy:%t", busy)) }
func (n *recordingNotifier) NotifyUpdate(entitlements.GameData) { n.add("update") }
func (n *recordingNotifier) NotifyError(error) { n.add("error") }
func (n *recordingNotifier) NotifyRestoreEmpty() { n.add("restore_empty") }
func (n *recordingNotifier) NotifyRestoreDone() { n.add("restore_done") }

func (n *recordingNotifier) Signals() []string {
	n.lock.Lock()
	defer n.lock.Unlock()
	return append([]string(nil), n.signals...)
}

type testReconciler struct {
	*Reconciler
	store    *settings.Store[entitlements.GameData]
	notifier *recordingNotifier
}

type testOptions struct {
	initial  *entitlements.GameData
	template fstest.MapFS
	ledger   chan<- models.Transaction
}

func newTestReconciler(t *testing.T, gateway iap.Gateway, opts testOptions) *testReconciler {
	t.Helper()
	storeOpts := settings.NewStoreOptions{Dir: t.TempDir()}
	if opts.template != nil {
		storeOpts.Template = opts.template
	}
	store, err := settings.NewStore[entitlements.GameData](storeOpts)
	require.NoError(t, err)
	if opts.initial != nil {
		require.NoError(t, store.Save(*opts.initial))
	}

	notifier := &recordingNotifier{}
	r := NewReconciler(NewReconcilerOptions{
		Store:    store,
		Gateway:  gateway,
		Notifier: notifier,
		Ledger:   opts.ledger,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go r.Start(ctx)

	return &testReconciler{Reconciler: r, store: store, notifier: notifier}
}

func waitOutcome(t *testing.T, outcomes <-chan Outcome) Outcome {
	t.Helper()
	select {
	case outcome, ok := <-outcomes:
		require.True(t, ok, "outcome channel closed without an outcome")
		return outcome
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for outcome")
		return Outcome{}
	}
}

func persisted(t *testing.T, r *testReconciler) entitlements.GameData {
	t.Helper()
	data, err := r.store.Load()
	require.NoError(t, err)
	return data
}

func TestReconciler_Purchase(t *testing.T) {
	tests := []struct {
		name    string
		initial entitlements.GameData
		item    iap.Item
		want    entitlements.GameData
	}{
		{
			name: "extra lives",
			item: extraLivesItem,
			want: entitlements.GameData{ExtraLives: 3},
		},
		{
			name:    "extra lives is a flat grant",
			initial: entitlements.GameData{ExtraLives: 5},
			item:    extraLivesItem,
			want:    entitlements.GameData{ExtraLives: 3},
		},
		{
			name:    "super powers",
			initial: entitlements.GameData{ExtraLives: 1},
			item:    superPowersItem,
			want:    entitlements.GameData{ExtraLives: 1, SuperPowers: 2},
		},
		{
			name:    "unlock maps",
			initial: entitlements.GameData{SuperPowers: 1},
			item:    unlockMapsItem,
			want:    entitlements.GameData{SuperPowers: 1, AllMapsUnlocked: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := iapmocks.NewGateway(t)
			gateway.EXPECT().CanMakePayments().Return(true).Once()
			gateway.EXPECT().Buy(mock.Anything, tt.item).Return(&iap.Transaction{ID: "tx-1", ProductID: tt.item.ID}, nil).Once()

			initial := tt.initial
			r := newTestReconciler(t, gateway, testOptions{initial: &initial})

			outcomes, err := r.Purchase(context.Background(), tt.item)
			require.NoError(t, err)
			outcome := waitOutcome(t, outcomes)

			assert.Equal(t, OutcomeUpdated, outcome.Kind)
			assert.NoError(t, outcome.Err)
			assert.Equal(t, tt.want, outcome.GameData)
			assert.Equal(t, "tx-1", outcome.Transaction.ID)
			assert.Equal(t, tt.want, persisted(t, r))
			assert.Equal(t, []string{"busy:true", "busy:false", "update"}, r.notifier.Signals())

			_, open := <-outcomes
			assert.False(t, open, "outcome channel should be closed")
		})
	}
}

func TestReconciler_PurchasePaymentsDisabled(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	gateway.EXPECT().CanMakePayments().Return(false).Once()

	r := newTestReconciler(t, gateway, testOptions{})

	outcomes, err := r.Purchase(context.Background(), extraLivesItem)
	assert.ErrorIs(t, err, iap.ErrPaymentsDisabled)
	assert.Nil(t, outcomes)
	gateway.AssertNotCalled(t, "Buy", mock.Anything, mock.Anything)
	assert.Empty(t, r.notifier.Signals())

	// Payments disabled does not leave a request in flight.
	gateway.EXPECT().Restore(mock.Anything).Return(0, nil).Once()
	outcomes, err = r.RestorePurchases(context.Background())
	require.NoError(t, err)
	waitOutcome(t, outcomes)
}

func TestReconciler_PurchaseGatewayFailure(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	gateway.EXPECT().CanMakePayments().Return(true).Once()
	gateway.EXPECT().Buy(mock.Anything, unlockMapsItem).Return(nil, errors.New("payment declined")).Once()

	initial := entitlements.GameData{ExtraLives: 2}
	r := newTestReconciler(t, gateway, testOptions{initial: &initial})

	outcomes, err := r.Purchase(context.Background(), unlockMapsItem)
	require.NoError(t, err)
	outcome := waitOutcome(t, outcomes)

	assert.Equal(t, OutcomeFailed, outcome.Kind)
	assert.True(t, iap.IsGatewayFailure(outcome.Err))
	assert.ErrorContains(t, outcome.Err, "payment declined")
	assert.Equal(t, initial, outcome.GameData)
	assert.Equal(t, initial, persisted(t, r))
	assert.Equal(t, []string{"busy:true", "busy:false", "error"}, r.notifier.Signals())
}

func TestReconciler_SingleRequestInFlight(t *testing.T) {
	release := make(chan struct{})
	gateway := iapmocks.NewGateway(t)
	gateway.EXPECT().CanMakePayments().Return(true)
	gateway.EXPECT().Buy(mock.Anything, extraLivesItem).RunAndReturn(func(ctx context.Context, item iap.Item) (*iap.Transaction, error) {
		<-release
		return &iap.Transaction{ID: "tx", ProductID: item.ID}, nil
	}).Times(2)

	initial := entitlements.GameData{ExtraLives: 1}
	r := newTestReconciler(t, gateway, testOptions{initial: &initial})
	ctx := context.Background()

	first, err := r.Purchase(ctx, extraLivesItem)
	require.NoError(t, err)

	_, err = r.Purchase(ctx, extraLivesItem)
	assert.ErrorIs(t, err, ErrRequestInFlight)
	_, err = r.RestorePurchases(ctx)
	assert.ErrorIs(t, err, ErrRequestInFlight)

	// Consumption does not wait for the gateway.
	data, err := r.Consume(ctx, entitlements.ResourceExtraLives)
	require.NoError(t, err)
	assert.Equal(t, 0, data.ExtraLives)

	close(release)
	outcome := waitOutcome(t, first)
	assert.Equal(t, OutcomeUpdated, outcome.Kind)
	assert.Equal(t, 3, outcome.GameData.ExtraLives)

	second, err := r.Purchase(ctx, extraLivesItem)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, waitOutcome(t, second).Kind)
}

func TestReconciler_RestorePurchases(t *testing.T) {
	tests := []struct {
		name        string
		restored    int
		restoreErr  error
		initial     entitlements.GameData
		wantKind    OutcomeKind
		want        entitlements.GameData
		wantSignals []string
	}{
		{
			name:        "restored",
			restored:    1,
			initial:     entitlements.GameData{ExtraLives: 2, SuperPowers: 1},
			wantKind:    OutcomeRestored,
			want:        entitlements.GameData{ExtraLives: 2, SuperPowers: 1, AllMapsUnlocked: true},
			wantSignals: []string{"busy:true", "busy:false", "update", "restore_done"},
		},
		{
			name:        "nothing to restore",
			restored:    0,
			initial:     entitlements.GameData{ExtraLives: 2},
			wantKind:    OutcomeNothingToRestore,
			want:        entitlements.GameData{ExtraLives: 2},
			wantSignals: []string{"busy:true", "busy:false", "restore_empty"},
		},
		{
			name:        "gateway failure",
			restoreErr:  errors.New("not signed in"),
			initial:     entitlements.GameData{SuperPowers: 1},
			wantKind:    OutcomeFailed,
			want:        entitlements.GameData{SuperPowers: 1},
			wantSignals: []string{"busy:true", "busy:false", "error"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := iapmocks.NewGateway(t)
			gateway.EXPECT().Restore(mock.Anything).Return(tt.restored, tt.restoreErr).Once()

			initial := tt.initial
			r := newTestReconciler(t, gateway, testOptions{initial: &initial})

			outcomes, err := r.RestorePurchases(context.Background())
			require.NoError(t, err)
			outcome := waitOutcome(t, outcomes)

			assert.Equal(t, tt.wantKind, outcome.Kind)
			assert.Equal(t, tt.want, outcome.GameData)
			assert.Equal(t, tt.want, persisted(t, r))
			assert.Equal(t, tt.wantSignals, r.notifier.Signals())
			if tt.restoreErr != nil {
				assert.True(t, iap.IsGatewayFailure(outcome.Err))
			} else {
				assert.NoError(t, outcome.Err)
			}
		})
	}
}

func TestReconciler_RestoreIdempotent(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	gateway.EXPECT().Restore(mock.Anything).Return(1, nil).Times(2)

	r := newTestReconciler(t, gateway, testOptions{})
	ctx := context.Background()

	outcomes, err := r.RestorePurchases(ctx)
	require.NoError(t, err)
	once := waitOutcome(t, outcomes)

	outcomes, err = r.RestorePurchases(ctx)
	require.NoError(t, err)
	twice := waitOutcome(t, outcomes)

	assert.Equal(t, once.GameData, twice.GameData)
	assert.Equal(t, entitlements.GameData{AllMapsUnlocked: true}, twice.GameData)
}

func TestReconciler_Consume(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	initial := entitlements.GameData{ExtraLives: 1, SuperPowers: 2}
	r := newTestReconciler(t, gateway, testOptions{initial: &initial})
	ctx := context.Background()

	data, err := r.Consume(ctx, entitlements.ResourceExtraLives)
	require.NoError(t, err)
	assert.Equal(t, entitlements.GameData{ExtraLives: 0, SuperPowers: 2}, data)
	assert.Equal(t, data, persisted(t, r))

	data, err = r.Consume(ctx, entitlements.ResourceSuperPowers)
	require.NoError(t, err)
	assert.Equal(t, entitlements.GameData{ExtraLives: 0, SuperPowers: 1}, data)

	data, err = r.Consume(ctx, entitlements.ResourceExtraLives)
	assert.ErrorIs(t, err, entitlements.ErrDepleted)
	assert.Equal(t, 0, data.ExtraLives)
	assert.Equal(t, entitlements.GameData{ExtraLives: 0, SuperPowers: 1}, persisted(t, r))

	assert.Equal(t, []string{"update", "update"}, r.notifier.Signals())
}

func TestReconciler_LoadCatalogAndItemForSlot(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	gateway.EXPECT().ListProducts(mock.Anything).Return(catalog, nil).Once()

	r := newTestReconciler(t, gateway, testOptions{})
	ctx := context.Background()

	_, found, err := r.ItemForSlot(ctx, 0)
	require.NoError(t, err)
	assert.False(t, found, "catalog not loaded yet")

	require.NoError(t, r.LoadCatalog(ctx))
	assert.Equal(t, []string{"busy:true", "busy:false"}, r.notifier.Signals())

	for index, want := range catalog {
		item, found, err := r.ItemForSlot(ctx, index)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, want, item)
	}

	_, found, err = r.ItemForSlot(ctx, 3)
	require.NoError(t, err)
	assert.False(t, found)

	products, err := r.Products(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog, products)
}

func TestReconciler_ItemForSlotMissingProduct(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	gateway.EXPECT().ListProducts(mock.Anything).Return([]iap.Item{extraLivesItem}, nil).Once()

	r := newTestReconciler(t, gateway, testOptions{})
	ctx := context.Background()
	require.NoError(t, r.LoadCatalog(ctx))

	_, found, err := r.ItemForSlot(ctx, 2)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReconciler_LoadCatalogSharesInFlightSlot(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gateway := iapmocks.NewGateway(t)
	gateway.EXPECT().ListProducts(mock.Anything).RunAndReturn(func(ctx context.Context) ([]iap.Item, error) {
		close(started)
		<-release
		return catalog, nil
	}).Once()
	gateway.EXPECT().CanMakePayments().Return(true).Once()

	r := newTestReconciler(t, gateway, testOptions{})
	ctx := context.Background()

	loaded := make(chan error, 1)
	go func() {
		loaded <- r.LoadCatalog(ctx)
	}()
	<-started

	_, err := r.Purchase(ctx, extraLivesItem)
	assert.ErrorIs(t, err, ErrRequestInFlight)
	_, err = r.RestorePurchases(ctx)
	assert.ErrorIs(t, err, ErrRequestInFlight)
	assert.ErrorIs(t, r.LoadCatalog(ctx), ErrRequestInFlight)

	close(release)
	require.NoError(t, <-loaded)
	assert.Equal(t, []string{"busy:true", "busy:false"}, r.notifier.Signals())
	assert.False(t, r.inFlight.Load())

	_, found, err := r.ItemForSlot(ctx, 0)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestReconciler_LoadCatalogFailure(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	gateway.EXPECT().ListProducts(mock.Anything).Return(nil, errors.New("offline")).Once()

	r := newTestReconciler(t, gateway, testOptions{})

	err := r.LoadCatalog(context.Background())
	assert.True(t, iap.IsGatewayFailure(err))
	assert.Equal(t, []string{"busy:true", "busy:false", "error"}, r.notifier.Signals())
}

func TestReconciler_Reset(t *testing.T) {
	template := fstest.MapFS{
		"GameData.plist": &fstest.MapFile{Data: []byte(`<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>didUnlockAllMaps</key>
	<false/>
	<key>extraLives</key>
	<integer>1</integer>
	<key>superPowers</key>
	<integer>0</integer>
</dict>
</plist>
`)},
	}
	gateway := iapmocks.NewGateway(t)
	initial := entitlements.GameData{ExtraLives: 3, SuperPowers: 2, AllMapsUnlocked: true}
	r := newTestReconciler(t, gateway, testOptions{initial: &initial, template: template})

	data, err := r.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entitlements.GameData{ExtraLives: 1}, data)

	current, err := r.GameData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, data, current)
	assert.Equal(t, []string{"update"}, r.notifier.Signals())
}

func TestReconciler_ResetFailureKeepsRecord(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	initial := entitlements.GameData{ExtraLives: 2}
	r := newTestReconciler(t, gateway, testOptions{initial: &initial})

	data, err := r.Reset(context.Background())
	assert.ErrorIs(t, err, settings.ErrBackupNotFound)
	assert.Equal(t, initial, data)
	assert.Empty(t, r.notifier.Signals())

	// The kept record is written back after the failed reset removed the file.
	assert.FileExists(t, r.store.Path())
	assert.Equal(t, initial, persisted(t, r))
}

func TestReconciler_Export(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	initial := entitlements.GameData{SuperPowers: 2}
	r := newTestReconciler(t, gateway, testOptions{initial: &initial})

	m, ok, err := r.Export(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 2, m["superPowers"])
}

func TestReconciler_Ledger(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	gateway.EXPECT().CanMakePayments().Return(true).Once()
	gateway.EXPECT().Buy(mock.Anything, unlockMapsItem).Return(&iap.Transaction{ID: "store-tx"}, nil).Once()

	ledger := make(chan models.Transaction, 10)
	initial := entitlements.GameData{ExtraLives: 1}
	r := newTestReconciler(t, gateway, testOptions{initial: &initial, ledger: ledger})
	ctx := context.Background()

	outcomes, err := r.Purchase(ctx, unlockMapsItem)
	require.NoError(t, err)
	waitOutcome(t, outcomes)

	_, err = r.Consume(ctx, entitlements.ResourceExtraLives)
	require.NoError(t, err)

	purchase := <-ledger
	assert.Equal(t, "store-tx", purchase.ID)
	assert.Equal(t, models.TransactionKindPurchase, purchase.Kind)
	assert.Equal(t, unlockMapsItem.ID, purchase.ProductID)
	assert.True(t, purchase.AllMapsUnlocked)

	consume := <-ledger
	assert.Equal(t, models.TransactionKindConsume, consume.Kind)
	assert.Equal(t, "lives", consume.Detail)
	assert.Equal(t, 0, consume.ExtraLives)
	assert.NotEmpty(t, consume.ID)
}

func TestReconciler_NotifierOrder(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	gateway.EXPECT().CanMakePayments().Return(true).Once()
	gateway.EXPECT().Buy(mock.Anything, superPowersItem).Return(&iap.Transaction{ID: "tx"}, nil).Once()

	notifier := notifiermocks.NewNotifier(t)
	busyOn := notifier.EXPECT().NotifyBusy(true).Return().Once()
	busyOff := notifier.EXPECT().NotifyBusy(false).Return().Once().NotBefore(busyOn)
	notifier.EXPECT().NotifyUpdate(entitlements.GameData{SuperPowers: 2}).Return().Once().NotBefore(busyOff)

	store, err := settings.NewStore[entitlements.GameData](settings.NewStoreOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	r := NewReconciler(NewReconcilerOptions{Store: store, Gateway: gateway, Notifier: notifier})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go r.Start(ctx)

	outcomes, err := r.Purchase(context.Background(), superPowersItem)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, waitOutcome(t, outcomes).Kind)
}

func TestReconciler_Stopped(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	store, err := settings.NewStore[entitlements.GameData](settings.NewStoreOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	r := NewReconciler(NewReconcilerOptions{Store: store, Gateway: gateway})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()
	cancel()
	<-done

	_, err = r.GameData(context.Background())
	assert.ErrorIs(t, err, ErrStopped)

	_, err = r.RestorePurchases(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
	assert.False(t, r.inFlight.Load())
}

type failingStore struct {
	data entitlements.GameData
}

func (s *failingStore) Load() (entitlements.GameData, error) {
	return entitlements.GameData{}, fmt.Errorf("%w: truncated file", settings.ErrCorruptState)
}

func (s *failingStore) Save(entitlements.GameData) error {
	return &settings.IOError{Op: "write", Path: "GameData.plist", Err: errors.New("disk full")}
}

func (s *failingStore) Reset() (entitlements.GameData, error) {
	return entitlements.GameData{}, settings.ErrBackupNotFound
}

func (s *failingStore) Export() (map[string]any, bool) {
	return nil, false
}

func TestReconciler_StorageFailuresDegrade(t *testing.T) {
	gateway := iapmocks.NewGateway(t)
	gateway.EXPECT().CanMakePayments().Return(true).Once()
	gateway.EXPECT().Buy(mock.Anything, extraLivesItem).Return(&iap.Transaction{ID: "tx"}, nil).Once()

	notifier := &recordingNotifier{}
	r := NewReconciler(NewReconcilerOptions{Store: &failingStore{}, Gateway: gateway, Notifier: notifier})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go r.Start(ctx)

	data, err := r.GameData(ctx)
	require.NoError(t, err)
	assert.Equal(t, entitlements.GameData{}, data, "corrupt state falls back to defaults")

	outcomes, err := r.Purchase(ctx, extraLivesItem)
	require.NoError(t, err)
	outcome := waitOutcome(t, outcomes)
	assert.Equal(t, OutcomeUpdated, outcome.Kind)
	assert.Equal(t, 3, outcome.GameData.ExtraLives)
	assert.Equal(t, []string{"busy:true", "busy:false", "update"}, notifier.Signals())

	_, ok, err := r.Export(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
