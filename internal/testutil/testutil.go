package testutil

import (
	"alyabot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestEntry creates a test word entry
func NewTestEntry(word, meaning string, synonyms ...string) domain.WordEntry {
	if synonyms == nil {
		synonyms = []string{}
	}
	return domain.WordEntry{
		Word:     word,
		Meaning:  meaning,
		Synonyms: synonyms,
		Example:  "An example with " + word + ".",
	}
}

// NewTestVocabulary builds a vocabulary from entries keyed by their Word
func NewTestVocabulary(entries ...domain.WordEntry) domain.Vocabulary {
	vocab := domain.Vocabulary{}
	for _, e := range entries {
		vocab[e.Word] = e
	}
	return vocab
}

// QuizVocabulary is the four-word store where one word has no synonyms
func QuizVocabulary() domain.Vocabulary {
	return NewTestVocabulary(
		NewTestEntry("alpha", "أ", "beta"),
		NewTestEntry("bravo", "ب"),
		NewTestEntry("charlie", "ج", "gamma"),
		NewTestEntry("delta", "د", "echo"),
	)
}
