package iap

import (
	"context"
	"errors"
	"fmt"
)

// ErrPaymentsDisabled is returned when the device or account cannot make payments.
// No purchase is sent to the gateway in that case.
var ErrPaymentsDisabled = errors.New("iap: payments are disabled")

// Item is a purchasable product listed by the store.
type Item struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Price       float64 `json:"price" yaml:"price"`
	Currency    string  `json:"currency" yaml:"currency"`
	Consumable  bool    `json:"consumable" yaml:"consumable"`
}

// Transaction is the receipt of a completed purchase.
type Transaction struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Timestamp int64  `json:"timestamp"`
}

// Gateway is the platform in-app purchase service.
// Blocking calls honor ctx; timeouts are the gateway's concern.
type Gateway interface {
	// ListProducts fetches the product catalog.
	ListProducts(ctx context.Context) ([]Item, error)
	// CanMakePayments reports whether purchases are allowed on this device and account.
	CanMakePayments() bool
	// Buy purchases item and returns once the store has completed the payment.
	Buy(ctx context.Context, item Item) (*Transaction, error)
	// Restore re-grants previous non-consumable purchases and returns how many were restored.
	Restore(ctx context.Context) (int, error)
	// PriceFormatted returns the localized price of item.
	PriceFormatted(item Item) (string, bool)
}

// GatewayError wraps a failure reported by the purchase provider.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError wraps err as a failure of the gateway operation op.
// A nil err yields nil.
func NewGatewayError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return err
	}
	return &GatewayError{Op: op, Err: err}
}

// IsGatewayFailure returns true if err was reported by the purchase provider.
func IsGatewayFailure(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr)
}

// FindItem returns the first item whose identifier satisfies match.
func FindItem(items []Item, match func(id string) bool) (Item, bool) {
	for _, item := range items {
		if match(item.ID) {
			return item, true
		}
	}
	return Item{}, false
}
