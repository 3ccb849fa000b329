package domain

import (
	"fmt"
	"time"
)

const (
	// MinQuizWords is the smallest vocabulary that can yield 4 distinct options.
	MinQuizWords = 4
	// MaxQuizCandidates caps how many words are considered for one quiz.
	MaxQuizCandidates = 5
	// MinQuizQuestions is the shortest quiz that may be started.
	MinQuizQuestions = 3
	// OptionsPerQuestion is the target word plus three distractors.
	OptionsPerQuestion = 4
)

var (
	// ErrNotEnoughWords means the vocabulary has fewer than MinQuizWords entries.
	ErrNotEnoughWords = fmt.Errorf("%w: need at least %d words", ErrInsufficientData, MinQuizWords)
	// ErrNotEnoughSynonyms means too few candidates had a synonym to prompt with.
	ErrNotEnoughSynonyms = fmt.Errorf("%w: need at least %d words with synonyms", ErrInsufficientData, MinQuizQuestions)
)

// Question is one multiple-choice item: pick the word matching Synonym
type Question struct {
	Word    string   `json:"word"`
	Synonym string   `json:"synonym"`
	Options []string `json:"options"`
}

// QuizSession is the transient quiz state attached to one conversation
type QuizSession struct {
	ID           string     `json:"id"`
	Questions    []Question `json:"questions"`
	CurrentIndex int        `json:"current_index"`
	Score        int        `json:"score"`
	StartedAt    time.Time  `json:"started_at"`
}

// Done reports whether every question has been answered
func (s *QuizSession) Done() bool {
	return s.CurrentIndex >= len(s.Questions)
}

// Total returns the number of questions
func (s *QuizSession) Total() int {
	return len(s.Questions)
}

// ExpectedAnswer returns the target word of the current question
func (s *QuizSession) ExpectedAnswer() (string, error) {
	if s.Done() {
		return "", ErrSessionComplete
	}
	return s.Questions[s.CurrentIndex].Word, nil
}

// QuestionView is what the user sees for the active question
type QuestionView struct {
	Synonym string
	Options []string
	Number  int
	Total   int
}

// AnswerResult summarizes one answer submission
type AnswerResult struct {
	Correct     bool
	CorrectWord string
	Done        bool
	Score       int
	Total       int
}
