package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"alyabot/internal/domain"
	"alyabot/internal/repository"

	"go.uber.org/zap"
)

// Enricher fetches meaning, synonyms and an example for a word
type Enricher interface {
	Fetch(ctx context.Context, word string) (domain.WordEntry, error)
}

// WordService handles word-related business logic.
// Every mutation is a load-modify-save under one mutex, so concurrent
// add-word requests cannot lose each other's updates.
type WordService struct {
	wordRepo repository.WordRepository
	enricher Enricher
	logger   *zap.Logger

	mu    sync.Mutex
	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewWordService creates a new word service
func NewWordService(wordRepo repository.WordRepository, enricher Enricher, logger *zap.Logger) *WordService {
	return NewWordServiceWithRand(wordRepo, enricher, logger, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWordServiceWithRand allows deterministic word-of-day picks in tests
func NewWordServiceWithRand(wordRepo repository.WordRepository, enricher Enricher, logger *zap.Logger, rnd *rand.Rand) *WordService {
	return &WordService{
		wordRepo: wordRepo,
		enricher: enricher,
		logger:   logger,
		rnd:      rnd,
	}
}

// AddWord validates raw input, enriches it and stores the result.
// Invalid input never reaches the enricher.
func (s *WordService) AddWord(ctx context.Context, raw string) (domain.WordEntry, error) {
	word, err := domain.NormalizeWord(raw)
	if err != nil {
		return domain.WordEntry{}, err
	}

	entry, err := s.enricher.Fetch(ctx, word)
	if err != nil {
		return domain.WordEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vocab, err := s.wordRepo.Load()
	if err != nil {
		return domain.WordEntry{}, fmt.Errorf("load vocabulary: %w", err)
	}

	if err := vocab.Upsert(word, entry); err != nil {
		return domain.WordEntry{}, fmt.Errorf("%w: %v", domain.ErrEnrichmentFailed, err)
	}

	if err := s.wordRepo.Save(vocab); err != nil {
		return domain.WordEntry{}, fmt.Errorf("save vocabulary: %w", err)
	}

	saved, _ := vocab.Get(word)
	s.logger.Info("Word saved",
		zap.String("word", word),
		zap.Int("vocabulary_size", len(vocab)),
	)
	return saved, nil
}

// Vocabulary returns a fresh copy of the stored words
func (s *WordService) Vocabulary() (domain.Vocabulary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wordRepo.Load()
}

// ListWords returns all stored entries sorted by word
func (s *WordService) ListWords() ([]domain.WordEntry, error) {
	vocab, err := s.Vocabulary()
	if err != nil {
		return nil, err
	}
	return vocab.Entries(), nil
}

// WordOfDay returns one random stored entry
func (s *WordService) WordOfDay() (domain.WordEntry, error) {
	vocab, err := s.Vocabulary()
	if err != nil {
		return domain.WordEntry{}, err
	}
	if len(vocab) == 0 {
		return domain.WordEntry{}, domain.ErrNoWords
	}

	words := vocab.Words()
	s.rndMu.Lock()
	pick := words[s.rnd.Intn(len(words))]
	s.rndMu.Unlock()

	entry, _ := vocab.Get(pick)
	return entry, nil
}
