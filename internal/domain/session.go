package domain

import "time"

// StudySession aggregates the answers given during one run through a
// filtered set of cards.
type StudySession struct {
	TotalCards     int
	StudiedCards   int
	CorrectAnswers int
	StartTime      time.Time
}

// Accuracy is measured against TotalCards, so unanswered cards count as misses.
func (s StudySession) Accuracy() int {
	return Accuracy(s.CorrectAnswers, s.TotalCards)
}

// DeckStats summarizes the whole collection.
type DeckStats struct {
	TotalCards      int
	StudiedCards    int
	Categories      int
	AverageAccuracy int
}
