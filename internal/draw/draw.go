// Package draw implements the deterministic day-card selection.
//
// The draw is a pure function of (user id, calendar day, deck): hash the
// seed "<userID>-<YYYY-MM-DD>" with SHA-256, read the leading 8 bytes as a
// big-endian integer and reduce it modulo the deck length. The calendar day
// is taken at a fixed reference location so every user crosses midnight at
// the same moment regardless of where the process runs. Nothing is cached;
// the same inputs give the same card across calls and restarts.
package draw

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/olgafebr/mira/internal/deck"
)

// StableIndex maps (userID, day-at-loc) to an index in [0, deckLen).
func StableIndex(userID int64, deckLen int, now time.Time, loc *time.Location) (int, error) {
	if deckLen <= 0 {
		return 0, deck.ErrEmptyDeck
	}
	day := now.In(loc).Format("2006-01-02")
	seed := fmt.Sprintf("%d-%s", userID, day)
	sum := sha256.Sum256([]byte(seed))
	n := binary.BigEndian.Uint64(sum[:8])
	return int(n % uint64(deckLen)), nil
}

// StableCard returns the user's card of the day from d.
func StableCard(userID int64, d deck.Deck, now time.Time, loc *time.Location) (deck.Card, error) {
	idx, err := StableIndex(userID, len(d), now, loc)
	if err != nil {
		return deck.Card{}, err
	}
	return d[idx], nil
}
