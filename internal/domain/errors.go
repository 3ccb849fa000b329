package domain

import "errors"

var (
	// ErrInvalidWord is returned when submitted text is not a single alphabetic word.
	ErrInvalidWord = errors.New("invalid word")
	// ErrInvalidEntry is returned when an entry has an empty or placeholder meaning.
	ErrInvalidEntry = errors.New("invalid word entry")
	// ErrEnrichmentFailed covers gateway errors and unusable responses.
	ErrEnrichmentFailed = errors.New("enrichment failed")
	// ErrInsufficientData means the vocabulary cannot produce a quiz.
	ErrInsufficientData = errors.New("insufficient data for quiz")
	// ErrSessionComplete is returned when a finished quiz is queried or answered.
	ErrSessionComplete = errors.New("quiz session complete")
	// ErrNoWords is returned when the vocabulary is empty.
	ErrNoWords = errors.New("no words saved")
)
