package deck

import (
	"errors"
	"math/rand"
)

var ErrEmptyDeck = errors.New("deck is empty")

// Card is a single entry of a catalog. Cards have no id of their own;
// identity is the position inside the owning deck.
type Card struct {
	Name         string   `json:"name" validate:"required"`
	Image        string   `json:"image"`
	Description  string   `json:"description"`
	Descriptions []string `json:"descriptions,omitempty" validate:"omitempty,min=1,dive,required"`
}

// Deck is an ordered, read-only collection of cards.
type Deck []Card

// Catalog holds the two decks the bot draws from.
type Catalog struct {
	Tarot Deck
	Mind  Deck
}

// Combined returns tarot followed by mind. The concatenation order defines
// the index space of the deterministic day draw, so it must never change.
func (c *Catalog) Combined() Deck {
	out := make(Deck, 0, len(c.Tarot)+len(c.Mind))
	out = append(out, c.Tarot...)
	out = append(out, c.Mind...)
	return out
}

// Random returns a uniformly chosen card from the deck.
func (d Deck) Random(rng *rand.Rand) (Card, error) {
	if len(d) == 0 {
		return Card{}, ErrEmptyDeck
	}
	return d[rng.Intn(len(d))], nil
}

// PickDescription chooses one of the card's description variants, or falls
// back to the single description field. It consumes randomness when variants
// exist, so callers must not cache the result.
func PickDescription(c Card, rng *rand.Rand) string {
	if len(c.Descriptions) > 0 {
		return c.Descriptions[rng.Intn(len(c.Descriptions))]
	}
	return c.Description
}
