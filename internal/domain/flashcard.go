package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// AllCategories is the synthetic category that disables filtering.
const AllCategories = "All"

// Difficulty is the self-assessed difficulty of a card.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts any casing of easy, medium or hard.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, true
	}
	return "", false
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Flashcard is a front/back pair with its category, difficulty and study counters.
// CorrectCount never exceeds TimesStudied.
type Flashcard struct {
	ID           string
	Front        string
	Back         string
	Category     string
	Difficulty   Difficulty
	TimesStudied int
	CorrectCount int
	LastStudied  *time.Time
}

// Studied reports whether the card has been answered at least once.
func (c Flashcard) Studied() bool {
	return c.TimesStudied > 0
}

// Accuracy is the rounded percentage of correct answers, 0 if never studied.
func (c Flashcard) Accuracy() int {
	return Accuracy(c.CorrectCount, c.TimesStudied)
}

// Draft returns the editable fields of the card.
func (c Flashcard) Draft() Draft {
	return Draft{
		Front:      c.Front,
		Back:       c.Back,
		Category:   c.Category,
		Difficulty: c.Difficulty,
	}
}

// Draft holds the user-editable fields of a card.
type Draft struct {
	Front      string     `validate:"required"`
	Back       string     `validate:"required"`
	Category   string     `validate:"required,ne=All"`
	Difficulty Difficulty `validate:"oneof=easy medium hard"`
}

// Normalize trims the text fields and defaults an empty difficulty to medium.
func (d Draft) Normalize() Draft {
	d.Front = strings.TrimSpace(d.Front)
	d.Back = strings.TrimSpace(d.Back)
	d.Category = strings.TrimSpace(d.Category)
	if d.Difficulty == "" {
		d.Difficulty = Medium
	} else if parsed, ok := ParseDifficulty(string(d.Difficulty)); ok {
		d.Difficulty = parsed
	}
	return d
}

// Validate checks a normalized draft and returns a *ValidationError naming
// every offending field.
func (d Draft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, strings.ToLower(fe.Field()))
	}
	return verr
}

// Patch carries the fields of an update. Nil fields are left unchanged.
type Patch struct {
	Front      *string
	Back       *string
	Category   *string
	Difficulty *Difficulty
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Front == nil && p.Back == nil && p.Category == nil && p.Difficulty == nil
}

// Apply merges the patch into card and validates the result. The card is
// returned unchanged alongside any validation error.
func (p Patch) Apply(card Flashcard) (Flashcard, error) {
	d := card.Draft()
	if p.Front != nil {
		d.Front = *p.Front
	}
	if p.Back != nil {
		d.Back = *p.Back
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Difficulty != nil {
		d.Difficulty = *p.Difficulty
	}
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return card, err
	}
	card.Front, card.Back, card.Category, card.Difficulty = d.Front, d.Back, d.Category, d.Difficulty
	return card, nil
}

// Accuracy returns round(correct / total * 100), or 0 when total is not positive.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
