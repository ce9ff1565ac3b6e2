package flow

import (
	"math/rand"
	"testing"
	"time"

	"github.com/olgafebr/mira/internal/deck"
	"github.com/olgafebr/mira/internal/throttle"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testCatalog() *deck.Catalog {
	return &deck.Catalog{
		Tarot: deck.Deck{
			{Name: "Башня", Image: "tower.jpg", Description: "Перемены."},
			{Name: "Луна", Image: "moon.jpg", Description: "Интуиция."},
			{Name: "Солнце", Image: "sun.jpg", Description: "Свет."},
		},
		Mind: deck.Deck{
			{Name: "Дом", Image: "home.jpg", Descriptions: []string{"Опора.", "Тепло."}},
			{Name: "Река", Image: "river.jpg", Description: "Течение."},
		},
	}
}

func newTestEngine(catalog *deck.Catalog, clock *fakeClock) *Engine {
	limiter := throttle.NewLimiter(30*time.Minute, 6*time.Hour, 5)
	return NewEngine(catalog, limiter, NewStore(), Options{
		Location: time.UTC,
		Now:      clock.Now,
		Rand:     rand.New(rand.NewSource(1)),
	})
}

func newDefaultEngine(t *testing.T) (*Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return newTestEngine(testCatalog(), clock), clock
}

func lastSay(t *testing.T, actions []Action) Say {
	t.Helper()
	for i := len(actions) - 1; i >= 0; i-- {
		if say, ok := actions[i].(Say); ok {
			return say
		}
	}
	t.Fatalf("no Say action in %#v", actions)
	return Say{}
}

func dealOf(t *testing.T, actions []Action) Deal {
	t.Helper()
	for _, a := range actions {
		if d, ok := a.(Deal); ok {
			return d
		}
	}
	t.Fatalf("no Deal action in %#v", actions)
	return Deal{}
}

func TestStartGreetsWithMenu(t *testing.T) {
	e, _ := newDefaultEngine(t)
	actions := e.Handle(Event{UserID: 1, Kind: EventStart})
	say := lastSay(t, actions)
	if say.Keyboard != KeyboardMenu {
		t.Fatalf("start keyboard = %v, want menu", say.Keyboard)
	}
	if e.States().Mode(1) != ModeIdle {
		t.Fatalf("mode after start = %v, want idle", e.States().Mode(1))
	}
}

func TestDayCardIsStableWithinOneDay(t *testing.T) {
	e, clock := newDefaultEngine(t)

	first := dealOf(t, e.Handle(Event{UserID: 42, Kind: EventDayCard}))
	clock.Advance(3 * time.Hour)
	second := dealOf(t, e.Handle(Event{UserID: 42, Kind: EventDayCard}))
	if first.Card.Name != second.Card.Name {
		t.Fatalf("same-day draws differ: %q vs %q", first.Card.Name, second.Card.Name)
	}
	if first.Prefix != "🌿 " {
		t.Fatalf("day prefix = %q", first.Prefix)
	}
}

func TestDayCardChangesAcrossDates(t *testing.T) {
	e, clock := newDefaultEngine(t)

	first := dealOf(t, e.Handle(Event{UserID: 42, Kind: EventDayCard}))
	same := true
	for day := 0; day < 30 && same; day++ {
		clock.Advance(24 * time.Hour)
		next := dealOf(t, e.Handle(Event{UserID: 42, Kind: EventDayCard}))
		same = next.Card.Name == first.Card.Name
	}
	if same {
		t.Fatalf("day card constant across 30 dates")
	}
}

func TestResponseCardComesFromMindDeck(t *testing.T) {
	e, _ := newDefaultEngine(t)
	d := dealOf(t, e.Handle(Event{UserID: 1, Kind: EventResponseCard}))
	if d.Card.Name != "Дом" && d.Card.Name != "Река" {
		t.Fatalf("response card %q is not from the mind deck", d.Card.Name)
	}
	if d.Prefix != "🫧 " {
		t.Fatalf("response prefix = %q", d.Prefix)
	}
}

func TestAskQuestionShowsGuidanceOnce(t *testing.T) {
	e, _ := newDefaultEngine(t)

	first := lastSay(t, e.Handle(Event{UserID: 1, Kind: EventAskQuestion}))
	if first.Text != textAskExtended {
		t.Fatalf("first ask prompt = %q, want extended guidance", first.Text)
	}
	if e.States().Mode(1) != ModeAwaitingQuestion {
		t.Fatalf("mode after ask = %v, want awaiting", e.States().Mode(1))
	}

	// Complete a question, then ask again: abbreviated prompt.
	e.Handle(Event{UserID: 1, Kind: EventFreeText, Text: "Что меня ждёт?"})
	second := lastSay(t, e.Handle(Event{UserID: 1, Kind: EventAskQuestion}))
	if second.Text != textAskShort {
		t.Fatalf("second ask prompt = %q, want abbreviated", second.Text)
	}
}

func TestStartPreservesGuidanceFlag(t *testing.T) {
	e, _ := newDefaultEngine(t)
	e.Handle(Event{UserID: 1, Kind: EventAskQuestion})
	e.Handle(Event{UserID: 1, Kind: EventStart})

	say := lastSay(t, e.Handle(Event{UserID: 1, Kind: EventAskQuestion}))
	if say.Text != textAskShort {
		t.Fatalf("guidance flag lost across /start: got %q", say.Text)
	}
}

func TestShortQuestionStaysAwaitingAndSkipsThrottle(t *testing.T) {
	e, _ := newDefaultEngine(t)
	e.Handle(Event{UserID: 1, Kind: EventAskQuestion})

	for _, text := range []string{"", "  ", "а", " ок "} {
		actions := e.Handle(Event{UserID: 1, Kind: EventFreeText, Text: text})
		if say := lastSay(t, actions); say.Text != textMoreDetail {
			t.Fatalf("short question %q reply = %q, want re-prompt", text, say.Text)
		}
		if e.States().Mode(1) != ModeAwaitingQuestion {
			t.Fatalf("short question %q left AwaitingQuestion", text)
		}
		for _, a := range actions {
			if _, ok := a.(Deal); ok {
				t.Fatalf("short question %q produced a draw", text)
			}
		}
	}

	// Short inputs must not count: four more valid questions should not be
	// enough to fire the offer (it takes five).
	for i := 0; i < 4; i++ {
		actions := e.Handle(Event{UserID: 1, Kind: EventFreeText, Text: "Что мне важно увидеть?"})
		if say := lastSay(t, actions); say.Keyboard == KeyboardOffer {
			t.Fatalf("offer fired on valid question %d; short inputs were counted", i+1)
		}
		e.Handle(Event{UserID: 1, Kind: EventAskQuestion})
	}
}

func TestValidQuestionDrawsTarotAndReturnsIdle(t *testing.T) {
	e, _ := newDefaultEngine(t)
	e.Handle(Event{UserID: 1, Kind: EventAskQuestion})

	actions := e.Handle(Event{UserID: 1, Kind: EventFreeText, Text: "Куда направить внимание?"})
	d := dealOf(t, actions)
	if d.Prefix != "🔮 " {
		t.Fatalf("question prefix = %q", d.Prefix)
	}
	tarotNames := map[string]bool{"Башня": true, "Луна": true, "Солнце": true}
	if !tarotNames[d.Card.Name] {
		t.Fatalf("question card %q is not from the tarot deck", d.Card.Name)
	}
	if e.States().Mode(1) != ModeIdle {
		t.Fatalf("mode after answer = %v, want idle", e.States().Mode(1))
	}
}

func TestOfferShownExactlyOnceOnFifthQuestion(t *testing.T) {
	e, clock := newDefaultEngine(t)

	for i := 0; i < 5; i++ {
		e.Handle(Event{UserID: 7, Kind: EventAskQuestion})
		actions := e.Handle(Event{UserID: 7, Kind: EventFreeText, Text: "Что меня ждёт дальше?"})
		say := lastSay(t, actions)
		if i < 4 && say.Keyboard == KeyboardOffer {
			t.Fatalf("offer shown on question %d, want only on the 5th", i+1)
		}
		if i == 4 {
			if say.Keyboard != KeyboardOffer || say.Text != textOffer {
				t.Fatalf("no offer on the 5th question: %#v", say)
			}
		}
		clock.Advance(10 * time.Second)
	}

	// Immediately after, the cooldown suppresses a 6th.
	e.Handle(Event{UserID: 7, Kind: EventAskQuestion})
	say := lastSay(t, e.Handle(Event{UserID: 7, Kind: EventFreeText, Text: "И что теперь?"}))
	if say.Keyboard == KeyboardOffer {
		t.Fatalf("offer repeated during cooldown")
	}
}

func TestOfferAcceptHandsOffToConsult(t *testing.T) {
	e, _ := newDefaultEngine(t)
	say := lastSay(t, e.Handle(Event{UserID: 1, Kind: EventOfferAccept}))
	if say.Keyboard != KeyboardConsult {
		t.Fatalf("accept keyboard = %v, want consult", say.Keyboard)
	}
	if e.States().Mode(1) != ModeIdle {
		t.Fatalf("mode after accept = %v, want idle", e.States().Mode(1))
	}
}

func TestOfferDeclinePausesThenReturnsMenu(t *testing.T) {
	e, _ := newDefaultEngine(t)
	actions := e.Handle(Event{UserID: 1, Kind: EventOfferDecline})
	if len(actions) != 2 {
		t.Fatalf("decline actions = %d, want pause + message", len(actions))
	}
	if _, ok := actions[0].(Pause); !ok {
		t.Fatalf("decline does not pause first: %#v", actions[0])
	}
	say := lastSay(t, actions)
	if say.Keyboard != KeyboardMenu {
		t.Fatalf("decline keyboard = %v, want menu", say.Keyboard)
	}
}

func TestFreeTextWhileIdleFallsBackToMenu(t *testing.T) {
	e, _ := newDefaultEngine(t)
	say := lastSay(t, e.Handle(Event{UserID: 1, Kind: EventFreeText, Text: "привет"}))
	if say.Text != textFallback || say.Keyboard != KeyboardMenu {
		t.Fatalf("idle free text reply = %#v, want fallback with menu", say)
	}
}

func TestEmptyMindDeckIsRecoverable(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	catalog := testCatalog()
	catalog.Mind = deck.Deck{}
	e := newTestEngine(catalog, clock)

	say := lastSay(t, e.Handle(Event{UserID: 1, Kind: EventResponseCard}))
	if say.Text != textNoCards {
		t.Fatalf("empty mind deck reply = %q, want apology", say.Text)
	}
}

func TestEmptyTarotDeckSkipsThrottleRecording(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	catalog := &deck.Catalog{Tarot: deck.Deck{}, Mind: deck.Deck{}}
	limiter := throttle.NewLimiter(30*time.Minute, 6*time.Hour, 5)
	e := NewEngine(catalog, limiter, NewStore(), Options{
		Location: time.UTC,
		Now:      clock.Now,
		Rand:     rand.New(rand.NewSource(1)),
	})

	e.Handle(Event{UserID: 1, Kind: EventAskQuestion})
	say := lastSay(t, e.Handle(Event{UserID: 1, Kind: EventFreeText, Text: "Что меня ждёт?"}))
	if say.Text != textNoCards {
		t.Fatalf("empty tarot deck reply = %q, want apology", say.Text)
	}
	if limiter.PendingCount(1) != 0 {
		t.Fatalf("aborted draw was recorded in the throttle")
	}
}
