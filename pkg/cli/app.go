package cli

import (
	"context"
	"fmt"

	"github.com/cbodonnell/fakegame/pkg/config"
	"github.com/cbodonnell/fakegame/pkg/entitlements"
	"github.com/cbodonnell/fakegame/pkg/iap/simulator"
	"github.com/cbodonnell/fakegame/pkg/log"
	"github.com/cbodonnell/fakegame/pkg/reconciler"
	"github.com/cbodonnell/fakegame/pkg/repositories"
	"github.com/cbodonnell/fakegame/pkg/repositories/models"
	"github.com/cbodonnell/fakegame/pkg/settings"
	"github.com/cbodonnell/fakegame/pkg/workers"
)

const ledgerBufferSize = 100

// app wires the reconciler to its store, gateway and ledger.
type app struct {
	reconciler *reconciler.Reconciler
	repository repositories.Repository
	cancel     context.CancelFunc
	workerDone chan struct{}
}

func openApp(ctx context.Context, cfg *config.Config, notifier reconciler.Notifier) (*app, error) {
	codec, err := settings.CodecByName(cfg.SettingsFormat)
	if err != nil {
		return nil, err
	}
	store, err := settings.NewStore[entitlements.GameData](settings.NewStoreOptions{
		Dir:      cfg.SettingsDir,
		Codec:    codec,
		Template: entitlements.Templates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create settings store: %w", err)
	}
	log.Debug("Settings file is %s", store.Path())

	catalog := simulator.DefaultCatalog()
	if cfg.Catalog != "" {
		catalog, err = simulator.LoadCatalog(cfg.Catalog)
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	a := &app{
		cancel:     cancel,
		workerDone: make(chan struct{}),
	}

	var ledger chan models.Transaction
	if cfg.LedgerURL != "" {
		repository, err := repositories.Open(ctx, cfg.LedgerURL)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		a.repository = repository
		ledger = make(chan models.Transaction, ledgerBufferSize)
		worker := workers.NewLedgerWorker(workers.NewLedgerWorkerOptions{
			Repository: repository,
			Entries:    ledger,
		})
		go func() {
			worker.Start(ctx)
			close(a.workerDone)
		}()
	} else {
		close(a.workerDone)
	}

	a.reconciler = reconciler.NewReconciler(reconciler.NewReconcilerOptions{
		Store:    store,
		Gateway:  simulator.NewGateway(catalog),
		Notifier: notifier,
		Ledger:   ledger,
	})
	go a.reconciler.Start(ctx)
	return a, nil
}

// Close stops the reconciler and flushes the ledger.
func (a *app) Close() {
	a.cancel()
	<-a.workerDone
	if a.repository != nil {
		if err := a.repository.Close(context.Background()); err != nil {
			log.Error("Failed to close ledger: %v", err)
		}
	}
}

// logNotifier reports reconciler signals in the log.
type logNotifier struct{}

func (logNotifier) NotifyBusy(busy bool) {
	log.Trace("Busy: %t", busy)
}

func (logNotifier) NotifyUpdate(data entitlements.GameData) {
	log.Debug("Game data updated: %+v", data)
}

func (logNotifier) NotifyError(err error) {
	log.Warn("Store error: %v", err)
}

func (logNotifier) NotifyRestoreEmpty() {
	log.Info("There are no purchased items to restore")
}

func (logNotifier) NotifyRestoreDone() {
	log.Info("All previous in-app purchases have been restored")
}
