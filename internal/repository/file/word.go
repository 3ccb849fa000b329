package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"alyabot/internal/domain"

	"go.uber.org/zap"
)

// WordRepo implements repository.WordRepository on a single JSON file
type WordRepo struct {
	path   string
	logger *zap.Logger
}

// NewWordRepo creates a new file-backed word repository
func NewWordRepo(path string, logger *zap.Logger) *WordRepo {
	return &WordRepo{path: path, logger: logger}
}

// Path returns the backing file path
func (r *WordRepo) Path() string {
	return r.path
}

// Load reads the vocabulary file.
// A missing, unreadable or corrupt file yields an empty vocabulary.
func (r *WordRepo) Load() (domain.Vocabulary, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Vocabulary{}, nil
	}
	if err != nil {
		r.logger.Warn("Failed to read vocabulary file, using empty store",
			zap.String("path", r.path),
			zap.Error(err),
		)
		return domain.Vocabulary{}, nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return domain.Vocabulary{}, nil
	}

	var vocab domain.Vocabulary
	if err := json.Unmarshal(data, &vocab); err != nil || vocab == nil {
		r.logger.Warn("Vocabulary file is corrupt, using empty store",
			zap.String("path", r.path),
			zap.Error(err),
		)
		return domain.Vocabulary{}, nil
	}

	for word, entry := range vocab {
		entry.Word = word
		if entry.Synonyms == nil {
			entry.Synonyms = []string{}
		}
		vocab[word] = entry
	}

	return vocab, nil
}

// Save writes the complete vocabulary.
// Data goes to a temp file in the same directory which then replaces the
// old file, so readers never observe a half-written store.
func (r *WordRepo) Save(vocab domain.Vocabulary) error {
	if vocab == nil {
		vocab = domain.Vocabulary{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalize(vocab)); err != nil {
		return fmt.Errorf("encode vocabulary: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace vocabulary file: %w", err)
	}
	return nil
}

// normalize makes empty synonym lists serialize as [] rather than null
func normalize(vocab domain.Vocabulary) domain.Vocabulary {
	out := make(domain.Vocabulary, len(vocab))
	for word, entry := range vocab {
		if entry.Synonyms == nil {
			entry.Synonyms = []string{}
		}
		out[word] = entry
	}
	return out
}
