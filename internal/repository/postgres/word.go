package postgres

import (
	"database/sql"
	"fmt"

	"alyabot/internal/domain"

	"github.com/lib/pq"
)

// WordRepo implements repository.WordRepository on a single words table
type WordRepo struct {
	db *sql.DB
}

// NewWordRepo creates a new word repository
func NewWordRepo(db *sql.DB) *WordRepo {
	return &WordRepo{db: db}
}

// Load returns every stored word
func (r *WordRepo) Load() (domain.Vocabulary, error) {
	query := `
		SELECT word, meaning, synonyms, example
		FROM words
		ORDER BY word
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vocab := domain.Vocabulary{}
	for rows.Next() {
		var e domain.WordEntry
		var synonyms []string
		if err := rows.Scan(&e.Word, &e.Meaning, pq.Array(&synonyms), &e.Example); err != nil {
			return nil, err
		}
		if synonyms == nil {
			synonyms = []string{}
		}
		e.Synonyms = synonyms
		vocab[e.Word] = e
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vocab, nil
}

// Save replaces the table contents with vocab in one transaction
func (r *WordRepo) Save(vocab domain.Vocabulary) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM words`); err != nil {
		return fmt.Errorf("clear words: %w", err)
	}

	query := `
		INSERT INTO words (word, meaning, synonyms, example)
		VALUES ($1, $2, $3, $4)
	`
	for _, e := range vocab.Entries() {
		synonyms := e.Synonyms
		if synonyms == nil {
			synonyms = []string{}
		}
		if _, err := tx.Exec(query, e.Word, e.Meaning, pq.Array(synonyms), e.Example); err != nil {
			return fmt.Errorf("insert word %q: %w", e.Word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
