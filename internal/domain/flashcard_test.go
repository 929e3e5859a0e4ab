package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestAccuracy(t *testing.T) {
	testCases := []struct {
		name     string
		correct  int
		total    int
		expected int
	}{
		{name: "No answers", correct: 0, total: 0, expected: 0},
		{name: "Half", correct: 1, total: 2, expected: 50},
		{name: "Rounds down", correct: 1, total: 3, expected: 33},
		{name: "Rounds up", correct: 2, total: 3, expected: 67},
		{name: "Rounds half up", correct: 1, total: 8, expected: 13},
		{name: "All correct", correct: 4, total: 4, expected: 100},
		{name: "Negative total", correct: 1, total: -1, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Accuracy(tc.correct, tc.total); got != tc.expected {
				t.Errorf("Expected accuracy %d, but got %d", tc.expected, got)
			}
		})
	}
}

func TestDraftValidate(t *testing.T) {
	testCases := []struct {
		name           string
		draft          Draft
		expectedFields []string
	}{
		{
			name:  "Valid draft",
			draft: Draft{Front: "Q", Back: "A", Category: "C", Difficulty: Easy},
		},
		{
			name:  "Difficulty defaults to medium",
			draft: Draft{Front: "Q", Back: "A", Category: "C"},
		},
		{
			name:           "Blank front and back",
			draft:          Draft{Front: "   ", Back: "", Category: "C"},
			expectedFields: []string{"front", "back"},
		},
		{
			name:           "Missing category",
			draft:          Draft{Front: "Q", Back: "A"},
			expectedFields: []string{"category"},
		},
		{
			name:           "Reserved category",
			draft:          Draft{Front: "Q", Back: "A", Category: AllCategories},
			expectedFields: []string{"category"},
		},
		{
			name:           "Unknown difficulty",
			draft:          Draft{Front: "Q", Back: "A", Category: "C", Difficulty: "brutal"},
			expectedFields: []string{"difficulty"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Normalize().Validate()
			if tc.expectedFields == nil {
				if err != nil {
					t.Fatalf("Validate() returned an unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Expected a validation error, but got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, but got %T", err)
			}
			if !reflect.DeepEqual(verr.Fields, tc.expectedFields) {
				t.Errorf("Expected fields %v, but got %v", tc.expectedFields, verr.Fields)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	d := Draft{Front: "  Q \n", Back: "\tA", Category: " Math ", Difficulty: "HARD"}.Normalize()
	expected := Draft{Front: "Q", Back: "A", Category: "Math", Difficulty: Hard}
	if d != expected {
		t.Errorf("Expected normalized draft %+v, but got %+v", expected, d)
	}
}

func TestPatchApply(t *testing.T) {
	card := Flashcard{ID: "1", Front: "Q", Back: "A", Category: "C", Difficulty: Easy, TimesStudied: 3, CorrectCount: 2}

	t.Run("merges given fields", func(t *testing.T) {
		back := "New answer"
		hard := Hard
		got, err := Patch{Back: &back, Difficulty: &hard}.Apply(card)
		if err != nil {
			t.Fatalf("Apply() returned an unexpected error: %v", err)
		}
		if got.Front != "Q" || got.Back != "New answer" || got.Difficulty != Hard {
			t.Errorf("Unexpected merge result: %+v", got)
		}
		if got.ID != card.ID || got.TimesStudied != 3 || got.CorrectCount != 2 {
			t.Errorf("Expected id and counters to be preserved, but got %+v", got)
		}
	})

	t.Run("invalid merge leaves card untouched", func(t *testing.T) {
		empty := ""
		got, err := Patch{Front: &empty}.Apply(card)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("Expected a validation error, but got %v", err)
		}
		if got != card {
			t.Errorf("Expected card to be unchanged, but got %+v", got)
		}
	})

	t.Run("empty patch", func(t *testing.T) {
		if !(Patch{}).Empty() {
			t.Error("Expected zero Patch to be empty")
		}
	})
}

func TestFlashcardAccuracy(t *testing.T) {
	card := Flashcard{}
	if card.Studied() || card.Accuracy() != 0 {
		t.Errorf("Expected an unstudied card with 0%% accuracy, but got %+v", card)
	}
	card.TimesStudied, card.CorrectCount = 3, 2
	if got := card.Accuracy(); got != 67 {
		t.Errorf("Expected accuracy 67, but got %d", got)
	}
}

func TestStudySessionAccuracy(t *testing.T) {
	s := StudySession{TotalCards: 2, StudiedCards: 2, CorrectAnswers: 1}
	if got := s.Accuracy(); got != 50 {
		t.Errorf("Expected accuracy 50, but got %d", got)
	}
	if got := (StudySession{}).Accuracy(); got != 0 {
		t.Errorf("Expected accuracy 0 for an empty session, but got %d", got)
	}
}
