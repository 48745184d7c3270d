package models

type TransactionKind string

const (
	TransactionKindPurchase TransactionKind = "purchase"
	TransactionKindRestore  TransactionKind = "restore"
	TransactionKindConsume  TransactionKind = "consume"
	TransactionKindReset    TransactionKind = "reset"
)

// Transaction is one applied entitlement change and the resulting balances.
type Transaction struct {
	ID              string          `json:"id"`
	Kind            TransactionKind `json:"kind"`
	ProductID       string          `json:"product_id,omitempty"`
	Detail          string          `json:"detail,omitempty"`
	Timestamp       int64           `json:"timestamp"`
	ExtraLives      int             `json:"extra_lives"`
	SuperPowers     int             `json:"super_powers"`
	AllMapsUnlocked bool            `json:"all_maps_unlocked"`
}
