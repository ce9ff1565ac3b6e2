package flow

import (
	"time"

	"github.com/olgafebr/mira/internal/deck"
)

// Keyboard names the reply markup the dispatch layer should attach.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	// KeyboardMenu is the persistent three-mode reply keyboard.
	KeyboardMenu
	// KeyboardOffer is the inline accept/decline pair under the consult offer.
	KeyboardOffer
	// KeyboardConsult is the inline button linking to the consult chat.
	KeyboardConsult
)

// Action is one outbound step the dispatch layer must perform. The engine
// only produces actions; it never talks to the network itself.
type Action interface {
	isAction()
}

// Say sends a plain text message.
type Say struct {
	Text     string
	Keyboard Keyboard
}

// Deal sends one card: image with caption when the image resolves, text
// otherwise. Description is already chosen, so rendering is deterministic.
type Deal struct {
	Prefix      string
	Card        deck.Card
	Description string
}

// Pause is a cosmetic delay before the next action. Not cancellable; a
// process shutdown mid-pause simply loses the follow-up message.
type Pause struct {
	For time.Duration
}

func (Say) isAction()   {}
func (Deal) isAction()  {}
func (Pause) isAction() {}
