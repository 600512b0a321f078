// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RatingChangedEvent names the rating notification channel in logs and metrics.
const RatingChangedEvent = "ratingChanged"

// Score is a star rating. Valid scores are MinScore..MaxScore; Unrated means none.
type Score int

// Score bounds.
const (
	Unrated  Score = 0
	MinScore Score = 1
	MaxScore Score = 5
)

// Valid reports whether s is one of the five selectable stars.
func (s Score) Valid() bool { return s >= MinScore && s <= MaxScore }

// String renders s the way it is persisted in the client store.
func (s Score) String() string { return strconv.Itoa(int(s)) }

// ParseScore parses a persisted score. Anything that is not a valid star
// count yields Unrated and false.
func ParseScore(raw string) (Score, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Unrated, false
	}
	s := Score(n)
	if !s.Valid() {
		return Unrated, false
	}
	return s, true
}

// Scores lists the choices a rating widget offers, lowest first.
func Scores() []Score {
	return []Score{1, 2, 3, 4, 5}
}

// Rating is one rater's value for one subject.
type Rating struct {
	SubjectID string
	RaterID   string
	Value     Score
}

// RatingChanged is the ephemeral notification published after a rating
// was accepted by the backend. It is never persisted.
type RatingChanged struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	Value     Score     `json:"value"`
	At        time.Time `json:"at"`
}

// NewRatingChanged stamps a notification with a fresh id and time.
func NewRatingChanged(subjectID string, value Score) RatingChanged {
	return RatingChanged{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Value:     value,
		At:        time.Now().UTC(),
	}
}

// WidgetState is a snapshot of a rating widget.
type WidgetState struct {
	SubjectID  string  `json:"subject_id"`
	Current    Score   `json:"current"`
	Preview    Score   `json:"preview"`
	Submitting bool    `json:"submitting"`
	Stars      [5]bool `json:"stars"`
}

// UserRating is an entry of the backend's per-user rating list.
type UserRating struct {
	GameID int64 `json:"game_id"`
	Rating Score `json:"rating"`
}
