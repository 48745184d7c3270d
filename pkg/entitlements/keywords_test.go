package entitlements

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotKeyword(t *testing.T) {
	tests := []struct {
		index  int
		want   Keyword
		wantOK bool
	}{
		{index: 0, want: KeywordExtraLives, wantOK: true},
		{index: 1, want: KeywordSuperPowers, wantOK: true},
		{index: 2, want: KeywordUnlockMaps, wantOK: true},
		{index: 3, wantOK: false},
		{index: -1, wantOK: false},
	}
	for _, tt := range tests {
		got, ok := SlotKeyword(tt.index)
		assert.Equal(t, tt.wantOK, ok, "index %d", tt.index)
		assert.Equal(t, tt.want, got, "index %d", tt.index)
	}
}

func TestKeywordFor(t *testing.T) {
	tests := []struct {
		productID string
		want      Keyword
	}{
		{productID: "com.appcoda.fakegame.extra_lives", want: KeywordExtraLives},
		{productID: "com.appcoda.fakegame.superpowers", want: KeywordSuperPowers},
		{productID: "com.appcoda.fakegame.unlock_maps", want: KeywordUnlockMaps},
		{productID: "com.appcoda.fakegame.skins", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KeywordFor(tt.productID), tt.productID)
	}
}

func TestKeyword_Matches(t *testing.T) {
	assert.True(t, KeywordUnlockMaps.Matches("fakegame.unlock_maps"))
	assert.False(t, KeywordUnlockMaps.Matches("fakegame.extra_lives"))
	assert.False(t, Keyword("").Matches("fakegame.extra_lives"))
}

func TestParseResource(t *testing.T) {
	r, err := ParseResource("Lives")
	assert.NoError(t, err)
	assert.Equal(t, ResourceExtraLives, r)

	r, err = ParseResource("superpowers")
	assert.NoError(t, err)
	assert.Equal(t, ResourceSuperPowers, r)

	_, err = ParseResource("maps")
	assert.ErrorIs(t, err, ErrUnknownResource)
}
