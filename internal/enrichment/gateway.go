package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"alyabot/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds one enrichment call
const DefaultTimeout = 10 * time.Second

// Generator turns a prompt into model text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gateway enriches a bare word with meaning, synonyms and an example.
// Concurrent requests for the same word share one generator call.
type Gateway struct {
	gen     Generator
	timeout time.Duration
	logger  *zap.Logger
	sf      singleflight.Group
}

// NewGateway creates a new enrichment gateway
func NewGateway(gen Generator, timeout time.Duration, logger *zap.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		gen:     gen,
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch returns a fully populated entry or an error wrapping domain.ErrEnrichmentFailed.
// The call may be shared with other sessions asking for the same word, so
// it is bounded only by the gateway timeout, never by the caller's context.
func (g *Gateway) Fetch(ctx context.Context, word string) (domain.WordEntry, error) {
	detached := context.WithoutCancel(ctx)
	result, err, shared := g.sf.Do(word, func() (interface{}, error) {
		return g.fetch(detached, word)
	})
	if shared {
		g.logger.Debug("Shared enrichment result", zap.String("word", word))
	}
	if err != nil {
		return domain.WordEntry{}, err
	}

	entry := result.(domain.WordEntry)
	entry.Synonyms = append([]string(nil), entry.Synonyms...)
	return entry, nil
}

func (g *Gateway) fetch(ctx context.Context, word string) (domain.WordEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	text, err := g.gen.Generate(ctx, BuildPrompt(word))
	if err != nil {
		g.logger.Warn("Enrichment request failed",
			zap.String("word", word),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return domain.WordEntry{}, fmt.Errorf("%w: %v", domain.ErrEnrichmentFailed, err)
	}

	entry, err := ParseResponse(word, text)
	if err != nil {
		g.logger.Warn("Unusable enrichment response",
			zap.String("word", word),
			zap.String("response", text),
			zap.Error(err),
		)
		return domain.WordEntry{}, err
	}

	g.logger.Info("Word enriched",
		zap.String("word", word),
		zap.Int("synonyms", len(entry.Synonyms)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return entry, nil
}

// BuildPrompt asks the model for a strict JSON dictionary record
func BuildPrompt(word string) string {
	return fmt.Sprintf(`
You are a bilingual English-Arabic dictionary assistant.
For the English word "%[1]s", respond ONLY with a JSON object in this format:
{
  "word": "%[1]s",
  "meaning_arabic": "معنى الكلمة بالعربية (كلمة أو اثنتين)",
  "synonyms": ["synonym1", "synonym2", "synonym3"],
  "example": "An English sentence using the word."
}
`, word)
}

type dictionaryRecord struct {
	Word          string   `json:"word"`
	MeaningArabic string   `json:"meaning_arabic"`
	Synonyms      []string `json:"synonyms"`
	Example       string   `json:"example"`
}

var fencePattern = regexp.MustCompile("```(?:json)?")

// CleanResponse strips Markdown code fences around the model output
func CleanResponse(text string) string {
	text = fencePattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ParseResponse decodes model output into an entry for word
func ParseResponse(word, text string) (domain.WordEntry, error) {
	cleaned := CleanResponse(text)
	if cleaned == "" {
		return domain.WordEntry{}, fmt.Errorf("%w: empty response", domain.ErrEnrichmentFailed)
	}

	var rec dictionaryRecord
	if err := json.Unmarshal([]byte(cleaned), &rec); err != nil {
		return domain.WordEntry{}, fmt.Errorf("%w: malformed response: %v", domain.ErrEnrichmentFailed, err)
	}

	entry := domain.WordEntry{
		Word:     word,
		Meaning:  strings.TrimSpace(rec.MeaningArabic),
		Synonyms: cleanSynonyms(word, rec.Synonyms),
		Example:  strings.TrimSpace(rec.Example),
	}
	if err := entry.Validate(); err != nil {
		return domain.WordEntry{}, fmt.Errorf("%w: %v", domain.ErrEnrichmentFailed, err)
	}
	return entry, nil
}

func cleanSynonyms(word string, raw []string) []string {
	synonyms := make([]string, 0, len(raw))
	seen := map[string]bool{word: true}
	for _, s := range raw {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		synonyms = append(synonyms, s)
	}
	return synonyms
}
