package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/fakegame/pkg/iap"
	"github.com/cbodonnell/fakegame/pkg/log"
	"github.com/google/uuid"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Gateway is an in-process iap.Gateway driven by a Catalog.
// It is safe for concurrent use.
type Gateway struct {
	lock            sync.RWMutex
	products        []iap.Item
	owned           map[string]struct{}
	paymentsEnabled bool
	latency         time.Duration
	fail            Failures
	printer         *message.Printer
}

var _ iap.Gateway = (*Gateway)(nil)

// NewGateway creates a new simulated gateway.
func NewGateway(catalog *Catalog) *Gateway {
	owned := make(map[string]struct{}, len(catalog.Owned))
	for _, id := range catalog.Owned {
		owned[id] = struct{}{}
	}
	tag := language.AmericanEnglish
	if catalog.Locale != "" {
		if parsed, err := language.Parse(catalog.Locale); err == nil {
			tag = parsed
		} else {
			log.Warn("Unknown catalog locale %q, using %s", catalog.Locale, tag)
		}
	}
	products := make([]iap.Item, len(catalog.Products))
	copy(products, catalog.Products)
	return &Gateway{
		products:        products,
		owned:           owned,
		paymentsEnabled: catalog.PaymentsEnabled,
		latency:         catalog.Latency,
		fail:            catalog.Fail,
		printer:         message.NewPrinter(tag),
	}
}

// SetPaymentsEnabled toggles whether purchases are allowed.
func (g *Gateway) SetPaymentsEnabled(enabled bool) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.paymentsEnabled = enabled
}

// SetFailures replaces the configured failures.
func (g *Gateway) SetFailures(fail Failures) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.fail = fail
}

func (g *Gateway) ListProducts(ctx context.Context) ([]iap.Item, error) {
	if err := g.wait(ctx); err != nil {
		return nil, iap.NewGatewayError("list products", err)
	}

	g.lock.RLock()
	defer g.lock.RUnlock()
	if g.fail.List != "" {
		return nil, iap.NewGatewayError("list products", errors.New(g.fail.List))
	}
	products := make([]iap.Item, len(g.products))
	copy(products, g.products)
	return products, nil
}

func (g *Gateway) CanMakePayments() bool {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return g.paymentsEnabled
}

func (g *Gateway) Buy(ctx context.Context, item iap.Item) (*iap.Transaction, error) {
	if err := g.wait(ctx); err != nil {
		return nil, iap.NewGatewayError("buy", err)
	}

	g.lock.Lock()
	defer g.lock.Unlock()
	if g.fail.Buy != "" {
		return nil, iap.NewGatewayError("buy", errors.New(g.fail.Buy))
	}
	if !g.paymentsEnabled {
		return nil, iap.NewGatewayError("buy", iap.ErrPaymentsDisabled)
	}
	product, ok := g.product(item.ID)
	if !ok {
		return nil, iap.NewGatewayError("buy", fmt.Errorf("unknown product %q", item.ID))
	}
	if !product.Consumable {
		g.owned[product.ID] = struct{}{}
	}

	tx := &iap.Transaction{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		Timestamp: time.Now().UnixMilli(),
	}
	log.Debug("Simulated purchase %s of %s", tx.ID, tx.ProductID)
	return tx, nil
}

func (g *Gateway) Restore(ctx context.Context) (int, error) {
	if err := g.wait(ctx); err != nil {
		return 0, iap.NewGatewayError("restore", err)
	}

	g.lock.RLock()
	defer g.lock.RUnlock()
	if g.fail.Restore != "" {
		return 0, iap.NewGatewayError("restore", errors.New(g.fail.Restore))
	}
	restored := 0
	for id := range g.owned {
		if product, ok := g.product(id); ok && !product.Consumable {
			restored++
		}
	}
	return restored, nil
}

func (g *Gateway) PriceFormatted(item iap.Item) (string, bool) {
	if item.Currency == "" {
		return "", false
	}
	unit, err := currency.ParseISO(item.Currency)
	if err != nil {
		return "", false
	}

	// message.Printer is not safe for concurrent use.
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.printer.Sprint(currency.Symbol(unit.Amount(item.Price))), true
}

// product must be called with the lock held.
func (g *Gateway) product(id string) (iap.Item, bool) {
	for _, p := range g.products {
		if p.ID == id {
			return p, true
		}
	}
	return iap.Item{}, false
}

func (g *Gateway) wait(ctx context.Context) error {
	g.lock.RLock()
	latency := g.latency
	g.lock.RUnlock()
	if latency == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
