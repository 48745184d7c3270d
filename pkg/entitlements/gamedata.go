package entitlements

import (
	"errors"
	"fmt"
)

const (
	// ExtraLivesGrant is the balance set by an extra lives purchase.
	ExtraLivesGrant = 3
	// SuperPowersGrant is the balance set by a super powers purchase.
	SuperPowersGrant = 2
)

var (
	// ErrDepleted is returned when consuming a resource with a zero balance.
	ErrDepleted = errors.New("entitlements: resource depleted")
	// ErrUnknownResource is returned when consuming a resource that is not consumable.
	ErrUnknownResource = errors.New("entitlements: unknown resource")
)

// GameData is the persisted entitlement record of the player.
// The zero value is the first-run default.
type GameData struct {
	ExtraLives      int  `json:"extraLives" plist:"extraLives"`
	SuperPowers     int  `json:"superPowers" plist:"superPowers"`
	AllMapsUnlocked bool `json:"didUnlockAllMaps" plist:"didUnlockAllMaps"`
}

// RequiredKeys lists the keys a settings file must hold for the record to
// be fully defined.
func (GameData) RequiredKeys() []string {
	return []string{"extraLives", "superPowers", "didUnlockAllMaps"}
}

// Validate reports whether the record holds values that can be produced
// by the transition rules.
func (g GameData) Validate() error {
	if g.ExtraLives < 0 {
		return fmt.Errorf("extra lives is negative: %d", g.ExtraLives)
	}
	if g.SuperPowers < 0 {
		return fmt.Errorf("super powers is negative: %d", g.SuperPowers)
	}
	return nil
}

// Balance returns the current balance of a consumable resource.
func (g GameData) Balance(resource Resource) (int, error) {
	switch resource {
	case ResourceExtraLives:
		return g.ExtraLives, nil
	case ResourceSuperPowers:
		return g.SuperPowers, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
}

// ApplyPurchase returns the record after a completed purchase of a product
// matching keyword. Consumable grants overwrite the balance, they do not stack.
// Any keyword other than the two consumables unlocks all maps.
func ApplyPurchase(g GameData, keyword Keyword) GameData {
	switch keyword {
	case KeywordExtraLives:
		g.ExtraLives = ExtraLivesGrant
	case KeywordSuperPowers:
		g.SuperPowers = SuperPowersGrant
	default:
		g.AllMapsUnlocked = true
	}
	return g
}

// ApplyRestore returns the record after a successful restore. Only the
// non-consumable unlock is restorable.
func ApplyRestore(g GameData) GameData {
	g.AllMapsUnlocked = true
	return g
}

// Consume returns the record with one unit of resource used.
// A zero balance yields ErrDepleted and the record is returned unchanged.
func Consume(g GameData, resource Resource) (GameData, error) {
	balance, err := g.Balance(resource)
	if err != nil {
		return g, err
	}
	if balance <= 0 {
		return g, fmt.Errorf("%w: %s", ErrDepleted, resource)
	}

	switch resource {
	case ResourceExtraLives:
		g.ExtraLives--
	case ResourceSuperPowers:
		g.SuperPowers--
	}
	return g, nil
}

// IsDepleted returns true if err reports a depleted resource.
func IsDepleted(err error) bool {
	return errors.Is(err, ErrDepleted)
}
