package cardstore

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/flashdeck/internal/domain"
)

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("card-%d", n)
	})
}

func newTestStore(t *testing.T, drafts ...domain.Draft) *Store {
	t.Helper()
	s := New(sequentialIDs())
	for _, d := range drafts {
		_, err := s.Add(d)
		require.NoError(t, err)
	}
	return s
}

func draft(front, category string) domain.Draft {
	return domain.Draft{Front: front, Back: front + " answer", Category: category}
}

func TestAddRoundTrip(t *testing.T) {
	s := newTestStore(t)

	added, err := s.Add(domain.Draft{Front: "Q", Back: "A", Category: "C", Difficulty: domain.Easy})
	require.NoError(t, err)

	got, ok := s.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, "Q", got.Front)
	assert.Equal(t, "A", got.Back)
	assert.Equal(t, "C", got.Category)
	assert.Equal(t, domain.Easy, got.Difficulty)
	assert.Zero(t, got.TimesStudied)
	assert.Zero(t, got.CorrectCount)
	assert.Nil(t, got.LastStudied)
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	s := New()
	a, err := s.Add(draft("one", "C"))
	require.NoError(t, err)
	b, err := s.Add(draft("one", "C"))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, s.Len())
}

func TestAddRejectsInvalidDraft(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Add(domain.Draft{Front: " ", Back: "A", Category: "C"})
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"front"}, verr.Fields)
	assert.Zero(t, s.Len())
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t, draft("Q", "Math"))
	id := s.All()[0].ID

	t.Run("merges fields", func(t *testing.T) {
		category := "History"
		updated, err := s.Update(id, domain.Patch{Category: &category})
		require.NoError(t, err)
		assert.Equal(t, "History", updated.Category)
		assert.Equal(t, "Q", updated.Front)

		got, _ := s.Get(id)
		assert.Equal(t, updated, got)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		front := "x"
		_, err := s.Update("missing", domain.Patch{Front: &front})
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("invalid merge changes nothing", func(t *testing.T) {
		before, _ := s.Get(id)
		blank := "  "
		_, err := s.Update(id, domain.Patch{Back: &blank})
		require.ErrorIs(t, err, domain.ErrValidation)

		after, _ := s.Get(id)
		assert.Equal(t, before, after)
	})
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t, draft("a", "C"), draft("b", "C"))
	id := s.All()[0].ID

	assert.True(t, s.Delete(id))
	afterFirst := s.All()

	assert.False(t, s.Delete(id))
	assert.Equal(t, afterFirst, s.All())
	assert.Len(t, afterFirst, 1)
	assert.Equal(t, "b", afterFirst[0].Front)
}

func TestCategoriesAndFiltering(t *testing.T) {
	s := newTestStore(t,
		draft("1+1", "Math"),
		draft("2+2", "Math"),
		draft("1066", "History"),
	)

	assert.Equal(t, []string{"All", "Math", "History"}, s.Categories())

	math := s.Filtered("Math")
	require.Len(t, math, 2)
	for _, c := range math {
		assert.Equal(t, "Math", c.Category)
	}

	assert.Len(t, s.Filtered("All"), 3)
	assert.Len(t, s.Filtered(""), 3)
	assert.Empty(t, s.Filtered("math"), "filtering is case-sensitive")
	assert.Equal(t, 2, s.Count("Math"))
	assert.Equal(t, 3, s.Count("All"))
	assert.Zero(t, s.Count("Art"))
}

func TestCategoriesDropRemovedLabels(t *testing.T) {
	s := newTestStore(t, draft("a", "Math"), draft("b", "History"))
	s.Delete(s.Filtered("Math")[0].ID)

	assert.Equal(t, []string{"All", "History"}, s.Categories())
	assert.Equal(t, []string{"All"}, New().Categories())
}

func TestFilteredReturnsCopies(t *testing.T) {
	s := newTestStore(t, draft("a", "C"))
	cards := s.All()
	cards[0].Front = "mutated"

	got, _ := s.Get(cards[0].ID)
	assert.Equal(t, "a", got.Front)
}

func TestSelectedCategory(t *testing.T) {
	s := newTestStore(t, draft("a", "Math"), draft("b", "History"))
	assert.Equal(t, "All", s.SelectedCategory())
	assert.Len(t, s.FilteredSelected(), 2)

	s.SetCategory("History")
	assert.Equal(t, "History", s.SelectedCategory())
	require.Len(t, s.FilteredSelected(), 1)
	assert.Equal(t, "b", s.FilteredSelected()[0].Front)

	s.SetCategory("  ")
	assert.Equal(t, "All", s.SelectedCategory())
}

func TestRecordStudy(t *testing.T) {
	s := newTestStore(t, draft("a", "C"))
	id := s.All()[0].ID
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	card, err := s.RecordStudy(id, true, at)
	require.NoError(t, err)
	assert.Equal(t, 1, card.TimesStudied)
	assert.Equal(t, 1, card.CorrectCount)
	require.NotNil(t, card.LastStudied)
	assert.True(t, card.LastStudied.Equal(at))

	for i := 0; i < 3; i++ {
		card, err = s.RecordStudy(id, false, at.Add(time.Minute))
		require.NoError(t, err)
		assert.LessOrEqual(t, card.CorrectCount, card.TimesStudied)
	}
	assert.Equal(t, 4, card.TimesStudied)
	assert.Equal(t, 1, card.CorrectCount)
	assert.Equal(t, 25, card.Accuracy())

	_, err = s.RecordStudy("missing", true, at)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStats(t *testing.T) {
	assert.Equal(t, domain.DeckStats{}, New().Stats())

	s := newTestStore(t, draft("a", "Math"), draft("b", "Math"), draft("c", "History"))
	cards := s.All()
	now := time.Now()
	_, _ = s.RecordStudy(cards[0].ID, true, now)
	_, _ = s.RecordStudy(cards[1].ID, true, now)
	_, _ = s.RecordStudy(cards[1].ID, false, now)

	// (100 + 50 + 0) / 3
	assert.Equal(t, domain.DeckStats{
		TotalCards:      3,
		StudiedCards:    2,
		Categories:      2,
		AverageAccuracy: 50,
	}, s.Stats())
}

func TestSeed(t *testing.T) {
	s := newTestStore(t, draft("existing", "C"))

	added, err := s.Seed([]domain.Draft{
		draft("existing", "C"),
		draft("new", "C"),
		{Front: "NEW ", Back: "new answer", Category: "c"},
		draft("other", "D"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 3, s.Len())

	added, err = s.Seed([]domain.Draft{draft("fresh", "C"), {Front: "broken"}})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, added)
	assert.Equal(t, 4, s.Len())
}
