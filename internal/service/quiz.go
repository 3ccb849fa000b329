package service

import (
	"math/rand"
	"sync"
	"time"

	"alyabot/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuizService builds multiple-choice quizzes from a vocabulary and scores answers
type QuizService struct {
	logger *zap.Logger
	now    func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewQuizService creates a new quiz service
func NewQuizService(logger *zap.Logger) *QuizService {
	return NewQuizServiceWithRand(logger, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewQuizServiceWithRand allows deterministic quizzes in tests
func NewQuizServiceWithRand(logger *zap.Logger, rnd *rand.Rand) *QuizService {
	return &QuizService{
		logger: logger,
		now:    time.Now,
		rnd:    rnd,
	}
}

// StartQuiz picks up to MaxQuizCandidates random words and turns every one
// that has a synonym into a question. It fails with domain.ErrInsufficientData
// rather than returning a quiz shorter than MinQuizQuestions.
func (s *QuizService) StartQuiz(vocab domain.Vocabulary) (*domain.QuizSession, error) {
	if len(vocab) < domain.MinQuizWords {
		return nil, domain.ErrNotEnoughWords
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := vocab.Words()
	candidates := append([]string(nil), all...)
	s.shuffle(candidates)
	if len(candidates) > domain.MaxQuizCandidates {
		candidates = candidates[:domain.MaxQuizCandidates]
	}

	questions := make([]domain.Question, 0, len(candidates))
	for _, word := range candidates {
		synonyms := vocab[word].Synonyms
		if len(synonyms) == 0 {
			continue
		}

		options := append([]string{word}, s.sampleDistractors(all, word, domain.OptionsPerQuestion-1)...)
		s.shuffle(options)

		questions = append(questions, domain.Question{
			Word:    word,
			Synonym: synonyms[s.rnd.Intn(len(synonyms))],
			Options: options,
		})
	}

	if len(questions) < domain.MinQuizQuestions {
		return nil, domain.ErrNotEnoughSynonyms
	}

	session := &domain.QuizSession{
		ID:        uuid.NewString(),
		Questions: questions,
		StartedAt: s.now(),
	}
	s.logger.Info("Quiz started",
		zap.String("quiz_id", session.ID),
		zap.Int("questions", len(questions)),
		zap.Int("vocabulary_size", len(vocab)),
	)
	return session, nil
}

// CurrentQuestion returns the active question without changing the session
func (s *QuizService) CurrentQuestion(session *domain.QuizSession) (domain.QuestionView, error) {
	if session.Done() {
		return domain.QuestionView{}, domain.ErrSessionComplete
	}
	q := session.Questions[session.CurrentIndex]
	return domain.QuestionView{
		Synonym: q.Synonym,
		Options: append([]string(nil), q.Options...),
		Number:  session.CurrentIndex + 1,
		Total:   session.Total(),
	}, nil
}

// SubmitAnswer scores chosen against the current question and advances the
// cursor by exactly one, whether or not the answer was right.
func (s *QuizService) SubmitAnswer(session *domain.QuizSession, chosen string) (domain.AnswerResult, error) {
	expected, err := session.ExpectedAnswer()
	if err != nil {
		return domain.AnswerResult{}, err
	}

	correct := chosen == expected
	if correct {
		session.Score++
	}
	session.CurrentIndex++

	result := domain.AnswerResult{
		Correct:     correct,
		CorrectWord: expected,
		Done:        session.Done(),
		Score:       session.Score,
		Total:       session.Total(),
	}
	if result.Done {
		s.logger.Info("Quiz finished",
			zap.String("quiz_id", session.ID),
			zap.Int("score", result.Score),
			zap.Int("total", result.Total),
		)
	}
	return result, nil
}

// sampleDistractors draws n distinct words other than exclude without
// replacement. The pool must hold at least n other words, which the
// MinQuizWords check guarantees.
func (s *QuizService) sampleDistractors(all []string, exclude string, n int) []string {
	pool := make([]string, 0, len(all)-1)
	for _, w := range all {
		if w != exclude {
			pool = append(pool, w)
		}
	}
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + s.rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

func (s *QuizService) shuffle(words []string) {
	s.rnd.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})
}
