package entitlements

import (
	"fmt"
	"strings"
)

// Keyword is the fragment of a product identifier that selects which
// entitlement a product grants.
type Keyword string

const (
	KeywordExtraLives  Keyword = "extra_lives"
	KeywordSuperPowers Keyword = "superpowers"
	KeywordUnlockMaps  Keyword = "unlock_maps"
)

// Slots lists the keyword shown on each row of the store list, in display order.
var Slots = []Keyword{
	KeywordExtraLives,
	KeywordSuperPowers,
	KeywordUnlockMaps,
}

// SlotKeyword maps a store list row index to its keyword.
func SlotKeyword(index int) (Keyword, bool) {
	if index < 0 || index >= len(Slots) {
		return "", false
	}
	return Slots[index], true
}

// KeywordFor returns the first recognized keyword contained in a product
// identifier. Identifiers with no recognized keyword yield an empty keyword,
// which ApplyPurchase treats as the unlock.
func KeywordFor(productID string) Keyword {
	for _, keyword := range Slots {
		if strings.Contains(productID, string(keyword)) {
			return keyword
		}
	}
	return ""
}

// Matches returns true if the product identifier contains the keyword.
func (k Keyword) Matches(productID string) bool {
	return k != "" && strings.Contains(productID, string(k))
}

// Resource is a consumable entitlement.
type Resource string

const (
	ResourceExtraLives  Resource = "lives"
	ResourceSuperPowers Resource = "superpowers"
)

// ParseResource parses a resource name as used by the CLI and HTTP surface.
func ParseResource(s string) (Resource, error) {
	switch strings.ToLower(s) {
	case "lives", "life", "extra_lives":
		return ResourceExtraLives, nil
	case "superpowers", "superpower", "powers":
		return ResourceSuperPowers, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownResource, s)
	}
}
