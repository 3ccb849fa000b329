package domain

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// PlaceholderMeanings are template fragments the enrichment model sometimes
// echoes back instead of a real translation.
var PlaceholderMeanings = []string{
	"كلمة أو كلمتين",
	"كلمة أو اثنتين",
	"معنى الكلمة بالعربية",
}

// WordEntry represents one learned vocabulary item
type WordEntry struct {
	Word     string   `json:"-"`
	Meaning  string   `json:"meaning"`
	Synonyms []string `json:"synonyms"`
	Example  string   `json:"example"`
}

// Validate rejects entries that must never reach the store
func (e WordEntry) Validate() error {
	meaning := strings.TrimSpace(e.Meaning)
	if meaning == "" {
		return fmt.Errorf("%w: empty meaning", ErrInvalidEntry)
	}
	if IsPlaceholderMeaning(meaning) {
		return fmt.Errorf("%w: placeholder meaning %q", ErrInvalidEntry, meaning)
	}
	return nil
}

// SynonymsText returns synonyms joined for display, or "None"
func (e WordEntry) SynonymsText() string {
	if len(e.Synonyms) == 0 {
		return "None"
	}
	return strings.Join(e.Synonyms, ", ")
}

// IsPlaceholderMeaning reports whether meaning contains a known placeholder
func IsPlaceholderMeaning(meaning string) bool {
	for _, p := range PlaceholderMeanings {
		if strings.Contains(meaning, p) {
			return true
		}
	}
	return false
}

// NormalizeWord trims and lowercases raw input and checks it is letters only
func NormalizeWord(raw string) (string, error) {
	word := strings.ToLower(strings.TrimSpace(raw))
	if word == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidWord)
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidWord, raw)
		}
	}
	return word, nil
}

// Vocabulary maps a normalized word to its entry
type Vocabulary map[string]WordEntry

// Upsert inserts or replaces the entry keyed by word.
// The caller is responsible for saving the vocabulary afterwards.
func (v Vocabulary) Upsert(word string, entry WordEntry) error {
	key, err := NormalizeWord(word)
	if err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	entry.Word = key
	if entry.Synonyms == nil {
		entry.Synonyms = []string{}
	}
	v[key] = entry
	return nil
}

// Words returns the stored keys in alphabetical order
func (v Vocabulary) Words() []string {
	words := make([]string, 0, len(v))
	for w := range v {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Entries returns all entries sorted by word, with Word populated
func (v Vocabulary) Entries() []WordEntry {
	entries := make([]WordEntry, 0, len(v))
	for _, w := range v.Words() {
		e := v[w]
		e.Word = w
		entries = append(entries, e)
	}
	return entries
}

// Get returns the entry for word with Word populated
func (v Vocabulary) Get(word string) (WordEntry, bool) {
	e, ok := v[word]
	if !ok {
		return WordEntry{}, false
	}
	e.Word = word
	return e, true
}
