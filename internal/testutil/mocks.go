package testutil

import (
	"context"

	"alyabot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockWordRepository is a mock for WordRepository
type MockWordRepository struct {
	mock.Mock
}

func (m *MockWordRepository) Load() (domain.Vocabulary, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Vocabulary), args.Error(1)
}

func (m *MockWordRepository) Save(vocab domain.Vocabulary) error {
	args := m.Called(vocab)
	return args.Error(0)
}

// MockEnricher is a mock for the enrichment gateway
type MockEnricher struct {
	mock.Mock
}

func (m *MockEnricher) Fetch(ctx context.Context, word string) (domain.WordEntry, error) {
	args := m.Called(ctx, word)
	return args.Get(0).(domain.WordEntry), args.Error(1)
}

// MockGenerator is a mock for enrichment.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
