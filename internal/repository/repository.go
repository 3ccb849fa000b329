package repository

import (
	"context"

	"alyabot/internal/domain"
)

// WordRepository persists the whole vocabulary.
// Load never returns a partially read vocabulary; Save writes the complete mapping.
type WordRepository interface {
	Load() (domain.Vocabulary, error)
	Save(vocab domain.Vocabulary) error
}

// SessionRepository stores per-session conversation snapshots
type SessionRepository interface {
	Get(ctx context.Context, sessionID int64) (*domain.Conversation, bool, error)
	Save(ctx context.Context, conv *domain.Conversation) error
	Delete(ctx context.Context, sessionID int64) error
}
