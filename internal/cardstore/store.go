// Package cardstore holds the in-memory flashcard collection and the
// currently selected category.
package cardstore

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/fingerprint"
)

// Store is the single source of truth for cards. Cards keep insertion order.
// All methods return copies; callers never hold references into the store.
type Store struct {
	mu       sync.Mutex
	cards    []domain.Flashcard
	selected string
	newID    func() string
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for mutation events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIDGenerator replaces the UUID generator, mostly for tests.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// New creates an empty store with "All" selected.
func New(opts ...Option) *Store {
	s := &Store{
		selected: domain.AllCategories,
		newID:    uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "cardstore")
	return s
}

// Add validates the draft and appends a new card with zeroed counters.
func (s *Store) Add(d domain.Draft) (domain.Flashcard, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return domain.Flashcard{}, err
	}

	card := domain.Flashcard{
		ID:         s.newID(),
		Front:      d.Front,
		Back:       d.Back,
		Category:   d.Category,
		Difficulty: d.Difficulty,
	}

	s.mu.Lock()
	s.cards = append(s.cards, card)
	s.mu.Unlock()

	s.logger.Debug("card added", "id", card.ID, "category", card.Category)
	return card, nil
}

// Get returns the card with the given id.
func (s *Store) Get(id string) (domain.Flashcard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Flashcard{}, false
	}
	return s.cards[i], true
}

// Update merges the patch into the matching card. An unknown id returns
// ErrNotFound and an invalid result returns a *domain.ValidationError; in
// both cases nothing changes.
func (s *Store) Update(id string, p domain.Patch) (domain.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Flashcard{}, fmt.Errorf("update %s: %w", id, domain.ErrNotFound)
	}
	updated, err := p.Apply(s.cards[i])
	if err != nil {
		return s.cards[i], err
	}
	s.cards[i] = updated

	s.logger.Debug("card updated", "id", id)
	return updated, nil
}

// Delete removes the matching card and reports whether one was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.cards = append(s.cards[:i:i], s.cards[i+1:]...)

	s.logger.Debug("card deleted", "id", id)
	return true
}

// RecordStudy counts one answer against the card and stamps LastStudied.
func (s *Store) RecordStudy(id string, correct bool, at time.Time) (domain.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Flashcard{}, fmt.Errorf("record study %s: %w", id, domain.ErrNotFound)
	}
	c := &s.cards[i]
	c.TimesStudied++
	if correct {
		c.CorrectCount++
	}
	c.LastStudied = &at

	return *c, nil
}

// All returns every card in insertion order.
func (s *Store) All() []domain.Flashcard {
	return s.Filtered(domain.AllCategories)
}

// Len returns the number of cards.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

// Filtered returns every card for "All" or an empty label, otherwise the cards
// whose category matches exactly.
func (s *Store) Filtered(category string) []domain.Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered(category)
}

// Count returns len(Filtered(category)) without copying.
func (s *Store) Count(category string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isAll(category) {
		return len(s.cards)
	}
	n := 0
	for _, c := range s.cards {
		if c.Category == category {
			n++
		}
	}
	return n
}

// Categories returns "All" followed by each distinct category in order of
// first appearance.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []string{domain.AllCategories}
	seen := make(map[string]bool)
	for _, c := range s.cards {
		if !seen[c.Category] {
			seen[c.Category] = true
			out = append(out, c.Category)
		}
	}
	return out
}

// SelectedCategory returns the current selection.
func (s *Store) SelectedCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SetCategory changes the selection. An empty label selects "All". The label
// does not have to match an existing category.
func (s *Store) SetCategory(label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		label = domain.AllCategories
	}

	s.mu.Lock()
	s.selected = label
	s.mu.Unlock()

	s.logger.Debug("category selected", "category", label)
}

// FilteredSelected filters by the selected category.
func (s *Store) FilteredSelected() []domain.Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered(s.selected)
}

// Stats summarizes the collection. AverageAccuracy averages the per-card
// rates, counting never-studied cards as 0.
func (s *Store) Stats() domain.DeckStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := domain.DeckStats{TotalCards: len(s.cards)}
	categories := make(map[string]bool)
	var rateSum float64
	for _, c := range s.cards {
		categories[c.Category] = true
		if c.Studied() {
			stats.StudiedCards++
			rateSum += float64(c.CorrectCount) / float64(c.TimesStudied) * 100
		}
	}
	stats.Categories = len(categories)
	if len(s.cards) > 0 {
		stats.AverageAccuracy = int(math.Round(rateSum / float64(len(s.cards))))
	}
	return stats
}

// Seed adds every draft whose fingerprint is not already in the store or
// earlier in the batch. It stops at the first invalid draft, keeping the
// cards added before it.
func (s *Store) Seed(drafts []domain.Draft) (int, error) {
	s.mu.Lock()
	seen := make(map[string]bool, len(s.cards)+len(drafts))
	for _, c := range s.cards {
		seen[fingerprint.Of(c.Draft())] = true
	}
	s.mu.Unlock()

	added := 0
	for i, d := range drafts {
		d = d.Normalize()
		fp := fingerprint.Of(d)
		if seen[fp] {
			s.logger.Debug("skipping duplicate seed card", "front", d.Front)
			continue
		}
		if _, err := s.Add(d); err != nil {
			return added, fmt.Errorf("seed card %d: %w", i+1, err)
		}
		seen[fp] = true
		added++
	}

	s.logger.Info("deck seeded", "added", added, "skipped", len(drafts)-added)
	return added, nil
}

func (s *Store) filtered(category string) []domain.Flashcard {
	out := make([]domain.Flashcard, 0, len(s.cards))
	for _, c := range s.cards {
		if isAll(category) || c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) indexOf(id string) int {
	for i, c := range s.cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func isAll(category string) bool {
	return category == "" || category == domain.AllCategories
}
