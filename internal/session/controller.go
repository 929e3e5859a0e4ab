// Package session runs a single study session over a frozen snapshot of the
// cards selected at start.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// DefaultAdvanceDelay is the pause between an answer and the next card.
const DefaultAdvanceDelay = time.Second

// State is the lifecycle position of the controller.
type State int

const (
	Idle State = iota
	Active
	Complete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// CardStore is the part of the card store a session needs.
type CardStore interface {
	Filtered(category string) []domain.Flashcard
	SelectedCategory() string
	SetCategory(label string)
	Get(id string) (domain.Flashcard, bool)
	RecordStudy(id string, correct bool, at time.Time) (domain.Flashcard, error)
}

// Progress is a point-in-time view of the running session.
type Progress struct {
	State    State
	Category string
	Index    int
	Total    int
	Studied  int
	Correct  int
	Elapsed  time.Duration
}

// Position is the 1-based number of the card being shown, capped at Total.
func (p Progress) Position() int {
	return min(p.Index+1, p.Total)
}

// Percent is how far through the snapshot the session is, by position.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return int(math.Round(float64(p.Position()) / float64(p.Total) * 100))
}

// Controller owns the one study session that may be running. The cards of a
// session are copied at Start; later store mutations never move the index or
// change TotalCards.
type Controller struct {
	store     CardStore
	scheduler Scheduler
	delay     time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	state    State
	category string
	session  domain.StudySession
	cards    []domain.Flashcard
	index    int
	answered bool
	pending  Timer
	epoch    uint64
	hooks    []func(Progress)
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler sets the scheduler used for auto-advance.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithAdvanceDelay sets the pause between Answer and the automatic Advance.
func WithAdvanceDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithClock sets the time source for start times and LastStudied stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController returns an idle controller over store.
func NewController(store CardStore, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		scheduler: WallClock,
		delay:     DefaultAdvanceDelay,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "session")
	return c
}

// OnAdvance registers fn to be called after every advance with the new
// progress. Hooks run without the controller lock held.
func (c *Controller) OnAdvance(fn func(Progress)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// Start begins a session over the cards of category, or of the store's
// selected category when category is empty. It fails with ErrSessionActive
// unless idle and with ErrEmptySelection when no card matches.
func (c *Controller) Start(category string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return domain.ErrSessionActive
	}

	category = strings.TrimSpace(category)
	if category == "" {
		category = c.store.SelectedCategory()
	}
	cards := c.store.Filtered(category)
	if len(cards) == 0 {
		return fmt.Errorf("start session for %q: %w", category, domain.ErrEmptySelection)
	}
	c.store.SetCategory(category)

	c.epoch++
	c.state = Active
	c.category = category
	c.cards = cards
	c.index = 0
	c.answered = false
	c.session = domain.StudySession{
		TotalCards: len(cards),
		StartTime:  c.now(),
	}

	c.logger.Info("study session started", "category", category, "cards", len(cards))
	return nil
}

// RecordAnswer counts an answer for a card of the current session, both on
// the card and on the session. It does not advance. The current card can be
// answered once, through either RecordAnswer or Answer.
func (c *Controller) RecordAnswer(cardID string, correct bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireActive(); err != nil {
		return err
	}
	isCurrent := c.cards[c.index].ID == cardID
	if isCurrent && c.answered {
		return domain.ErrAlreadyAnswered
	}
	if err := c.recordLocked(cardID, correct); err != nil {
		return err
	}
	if isCurrent {
		c.answered = true
	}
	return nil
}

// Answer records an answer for the current card and schedules the advance to
// the next one after the configured delay.
func (c *Controller) Answer(correct bool) error {
	c.mu.Lock()
	if err := c.requireActive(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.answered {
		c.mu.Unlock()
		return domain.ErrAlreadyAnswered
	}
	if err := c.recordLocked(c.cards[c.index].ID, correct); err != nil {
		c.mu.Unlock()
		return err
	}
	c.answered = true
	epoch, delay := c.epoch, c.delay
	c.mu.Unlock()

	t := c.scheduler.AfterFunc(delay, func() { c.autoAdvance(epoch) })

	c.mu.Lock()
	if c.epoch == epoch {
		c.pending = t
	} else {
		// Already advanced or ended while scheduling.
		t.Stop()
	}
	c.mu.Unlock()
	return nil
}

// Advance moves to the next card, cancelling a pending auto-advance. Moving
// past the last card completes the session.
func (c *Controller) Advance() error {
	c.mu.Lock()
	if err := c.requireActive(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.advanceLocked()
	p, hooks := c.progressLocked(), c.hooksLocked()
	c.mu.Unlock()

	for _, h := range hooks {
		h(p)
	}
	return nil
}

// End discards the session from Active or Complete and returns to Idle.
func (c *Controller) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return domain.ErrNoActiveSession
	}
	c.stopPendingLocked()
	c.epoch++

	c.logger.Info("study session ended",
		"category", c.category,
		"state", c.state.String(),
		"studied", c.session.StudiedCards,
		"correct", c.session.CorrectAnswers,
		"accuracy", c.session.Accuracy(),
		"duration", c.now().Sub(c.session.StartTime).Round(time.Second),
	)

	c.state = Idle
	c.category = ""
	c.session = domain.StudySession{}
	c.cards = nil
	c.index = 0
	c.answered = false
	return nil
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the running or completed session.
func (c *Controller) Session() (domain.StudySession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.state != Idle
}

// Current returns the card at the index while a session is active. The
// store's latest copy is preferred; a card deleted mid-session is returned as
// it was snapshotted.
func (c *Controller) Current() (domain.Flashcard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Active {
		return domain.Flashcard{}, false
	}
	card := c.cards[c.index]
	if latest, ok := c.store.Get(card.ID); ok {
		return latest, true
	}
	return card, true
}

// Answered reports whether the current card has been answered via Answer.
func (c *Controller) Answered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answered
}

// Progress returns the current progress. It is the zero value when idle.
func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressLocked()
}

func (c *Controller) autoAdvance(epoch uint64) {
	c.mu.Lock()
	if c.epoch != epoch || c.state != Active {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.advanceLocked()
	p, hooks := c.progressLocked(), c.hooksLocked()
	c.mu.Unlock()

	for _, h := range hooks {
		h(p)
	}
}

func (c *Controller) requireActive() error {
	switch c.state {
	case Idle:
		return domain.ErrNoActiveSession
	case Complete:
		return domain.ErrSessionComplete
	}
	return nil
}

func (c *Controller) recordLocked(cardID string, correct bool) error {
	if !c.inSnapshot(cardID) {
		return fmt.Errorf("record answer for %s: %w", cardID, domain.ErrCardNotInSession)
	}

	if _, err := c.store.RecordStudy(cardID, correct, c.now()); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("record answer for %s: %w", cardID, err)
		}
		c.logger.Warn("answered card no longer in store", "id", cardID)
	}

	c.session.StudiedCards++
	if correct {
		c.session.CorrectAnswers++
	}
	c.logger.Debug("answer recorded", "id", cardID, "correct", correct,
		"studied", c.session.StudiedCards)
	return nil
}

func (c *Controller) advanceLocked() {
	c.stopPendingLocked()
	c.epoch++
	c.index++
	c.answered = false
	if c.index >= len(c.cards) {
		c.state = Complete
		c.logger.Info("study session complete", "accuracy", c.session.Accuracy())
	}
}

func (c *Controller) stopPendingLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Controller) inSnapshot(id string) bool {
	for _, card := range c.cards {
		if card.ID == id {
			return true
		}
	}
	return false
}

func (c *Controller) progressLocked() Progress {
	if c.state == Idle {
		return Progress{}
	}
	return Progress{
		State:    c.state,
		Category: c.category,
		Index:    c.index,
		Total:    len(c.cards),
		Studied:  c.session.StudiedCards,
		Correct:  c.session.CorrectAnswers,
		Elapsed:  c.now().Sub(c.session.StartTime),
	}
}

func (c *Controller) hooksLocked() []func(Progress) {
	return slices.Clone(c.hooks)
}
