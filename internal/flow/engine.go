// Package flow is the conversation state machine. It turns inbound events
// into ordered outbound actions and owns all per-user mode transitions.
package flow

import (
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/olgafebr/mira/internal/deck"
	"github.com/olgafebr/mira/internal/draw"
	"github.com/olgafebr/mira/internal/observability"
	"github.com/olgafebr/mira/internal/throttle"
)

// minQuestionRunes is the shortest trimmed free text accepted as a question.
const minQuestionRunes = 3

// EventKind tags an inbound event after the dispatch layer has mapped menu
// labels and callback data.
type EventKind int

const (
	EventStart EventKind = iota
	EventDayCard
	EventResponseCard
	EventAskQuestion
	EventFreeText
	EventOfferAccept
	EventOfferDecline
)

type Event struct {
	UserID int64
	Kind   EventKind
	Text   string
}

// Options configures an Engine. Zero durations fall back to the defaults the
// original bot shipped with.
type Options struct {
	Location        *time.Location
	Now             func() time.Time
	Rand            *rand.Rand
	Metrics         *observability.Metrics
	PauseBeforeCard time.Duration
	PauseBeforeMenu time.Duration
}

// Engine drives the conversation. Safe for concurrent use across users; the
// rng has its own lock because math/rand sources are not goroutine safe.
type Engine struct {
	catalog  *deck.Catalog
	combined deck.Deck
	limiter  *throttle.Limiter
	states   *Store
	loc      *time.Location
	now      func() time.Time
	metrics  *observability.Metrics

	rngMu sync.Mutex
	rng   *rand.Rand

	pauseBeforeCard time.Duration
	pauseBeforeMenu time.Duration
}

func NewEngine(catalog *deck.Catalog, limiter *throttle.Limiter, states *Store, opts Options) *Engine {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.PauseBeforeCard <= 0 {
		opts.PauseBeforeCard = time.Second
	}
	if opts.PauseBeforeMenu <= 0 {
		opts.PauseBeforeMenu = 2 * time.Second
	}
	return &Engine{
		catalog:         catalog,
		combined:        catalog.Combined(),
		limiter:         limiter,
		states:          states,
		loc:             opts.Location,
		now:             opts.Now,
		metrics:         opts.Metrics,
		rng:             opts.Rand,
		pauseBeforeCard: opts.PauseBeforeCard,
		pauseBeforeMenu: opts.PauseBeforeMenu,
	}
}

// States exposes the backing store for status reporting.
func (e *Engine) States() *Store {
	return e.states
}

// Handle applies one event and returns the actions to perform, in order.
func (e *Engine) Handle(ev Event) []Action {
	switch ev.Kind {
	case EventStart:
		e.states.SetMode(ev.UserID, ModeIdle)
		return []Action{Say{Text: textGreeting, Keyboard: KeyboardMenu}}

	case EventDayCard:
		e.states.SetMode(ev.UserID, ModeIdle)
		card, err := draw.StableCard(ev.UserID, e.combined, e.now(), e.loc)
		if err != nil {
			return []Action{Say{Text: textNoCards, Keyboard: KeyboardMenu}}
		}
		e.metrics.Draw("day")
		return e.dealActions(textBreathDay, "🌿 ", card)

	case EventResponseCard:
		e.states.SetMode(ev.UserID, ModeIdle)
		card, err := e.randomCard(e.catalog.Mind)
		if err != nil {
			return []Action{Say{Text: textNoCards, Keyboard: KeyboardMenu}}
		}
		e.metrics.Draw("response")
		return e.dealActions(textBreathResponse, "🫧 ", card)

	case EventAskQuestion:
		e.states.SetMode(ev.UserID, ModeAwaitingQuestion)
		if e.states.ObserveGuidance(ev.UserID) {
			return []Action{Say{Text: textAskExtended}}
		}
		return []Action{Say{Text: textAskShort}}

	case EventFreeText:
		return e.handleFreeText(ev)

	case EventOfferAccept:
		e.states.SetMode(ev.UserID, ModeIdle)
		e.metrics.Offer("accepted")
		return []Action{Say{Text: textConsult, Keyboard: KeyboardConsult}}

	case EventOfferDecline:
		e.states.SetMode(ev.UserID, ModeIdle)
		e.metrics.Offer("declined")
		return []Action{
			Pause{For: e.pauseBeforeMenu},
			Say{Text: textDeclineBye, Keyboard: KeyboardMenu},
		}
	}
	return nil
}

func (e *Engine) handleFreeText(ev Event) []Action {
	if e.states.Mode(ev.UserID) != ModeAwaitingQuestion {
		return []Action{Say{Text: textFallback, Keyboard: KeyboardMenu}}
	}

	trimmed := strings.TrimSpace(ev.Text)
	if utf8.RuneCountInString(trimmed) < minQuestionRunes {
		// Too short to count as a question: stay in AwaitingQuestion and do
		// not touch the throttle.
		e.metrics.Question("short")
		return []Action{Say{Text: textMoreDetail}}
	}

	// Validate deck availability before recording the interaction, so an
	// aborted draw never counts toward the offer window.
	card, err := e.randomCard(e.catalog.Tarot)
	if err != nil {
		e.states.SetMode(ev.UserID, ModeIdle)
		return []Action{Say{Text: textNoCards, Keyboard: KeyboardMenu}}
	}

	e.states.SetMode(ev.UserID, ModeIdle)
	e.metrics.Question("answered")
	e.metrics.Draw("question")
	actions := e.dealActions(textBreathQuestion, "🔮 ", card)

	if e.limiter.Record(ev.UserID, e.now()) {
		e.metrics.Offer("shown")
		actions = append(actions, Say{Text: textOffer, Keyboard: KeyboardOffer})
	}
	return actions
}

func (e *Engine) dealActions(breath, prefix string, card deck.Card) []Action {
	desc := e.pickDescription(card)
	return []Action{
		Say{Text: breath},
		Pause{For: e.pauseBeforeCard},
		Deal{Prefix: prefix, Card: card, Description: desc},
	}
}

func (e *Engine) pickDescription(card deck.Card) string {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return deck.PickDescription(card, e.rng)
}

func (e *Engine) randomCard(d deck.Deck) (deck.Card, error) {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return d.Random(e.rng)
}
