package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an id does not match any card.
	ErrNotFound = errors.New("card not found")

	// ErrEmptySelection is returned when a session is started over zero cards.
	ErrEmptySelection = errors.New("no cards available for study")

	// ErrSessionActive is returned when starting while a session is running.
	ErrSessionActive = errors.New("a study session is already active")

	// ErrNoActiveSession is returned by session operations while idle.
	ErrNoActiveSession = errors.New("no active study session")

	// ErrSessionComplete is returned when answering or advancing past the last card.
	ErrSessionComplete = errors.New("study session is complete")

	// ErrCardNotInSession is returned when answering a card outside the session's snapshot.
	ErrCardNotInSession = errors.New("card is not part of the current session")

	// ErrAlreadyAnswered is returned when the current card is answered a second time.
	ErrAlreadyAnswered = errors.New("current card has already been answered")
)

// ValidationError lists the fields of a card that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s", ErrValidation, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
