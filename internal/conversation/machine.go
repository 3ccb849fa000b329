package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"alyabot/internal/domain"
	"alyabot/internal/repository"
)

// WordBook is the word store surface the conversation needs
type WordBook interface {
	AddWord(ctx context.Context, raw string) (domain.WordEntry, error)
	Vocabulary() (domain.Vocabulary, error)
	ListWords() ([]domain.WordEntry, error)
	WordOfDay() (domain.WordEntry, error)
}

// Quizzer generates and scores quizzes
type Quizzer interface {
	StartQuiz(vocab domain.Vocabulary) (*domain.QuizSession, error)
	CurrentQuestion(session *domain.QuizSession) (domain.QuestionView, error)
	SubmitAnswer(session *domain.QuizSession, chosen string) (domain.AnswerResult, error)
}

// Layout tells the transport how to arrange options
type Layout int

const (
	LayoutColumn Layout = iota
	LayoutRow
)

// Option is one selectable button
type Option struct {
	Label   string
	Kind    domain.EventKind
	Payload string
}

// Reply is one outbound message
type Reply struct {
	Text    string
	Options []Option
	Layout  Layout
}

// Response is everything produced by handling one event
type Response struct {
	Replies []Reply
	State   domain.State
}

// Machine runs the conversation for every session
type Machine struct {
	sessions repository.SessionRepository
	words    WordBook
	quiz     Quizzer
	logger   *zap.Logger

	locksMu sync.Mutex
	locks   map[int64]*sessionLock
}

// sessionLock serializes one session; refs counts holders and waiters so
// the entry can be dropped once nobody needs it
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewMachine(sessions repository.SessionRepository, words WordBook, quiz Quizzer, logger *zap.Logger) *Machine {
	return &Machine{
		sessions: sessions,
		words:    words,
		quiz:     quiz,
		logger:   logger,
		locks:    make(map[int64]*sessionLock),
	}
}

func (m *Machine) acquire(sessionID int64) *sessionLock {
	m.locksMu.Lock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		m.locks[sessionID] = lock
	}
	lock.refs++
	m.locksMu.Unlock()

	lock.mu.Lock()
	return lock
}

func (m *Machine) release(sessionID int64, lock *sessionLock) {
	lock.mu.Unlock()

	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(m.locks, sessionID)
	}
}

// Handle processes one event. Events for the same session are serialized;
// different sessions proceed independently. Errors never escape: they are
// logged and turned into a failure reply that returns the session to the menu.
func (m *Machine) Handle(ctx context.Context, ev domain.Event) Response {
	lock := m.acquire(ev.SessionID)
	defer m.release(ev.SessionID, lock)

	conv, ok, err := m.sessions.Get(ctx, ev.SessionID)
	if err != nil {
		m.logger.Error("Failed to load session",
			zap.Int64("session_id", ev.SessionID),
			zap.Error(err))
		conv, ok = nil, false
	}
	if !ok {
		conv = domain.NewConversation(ev.SessionID)
	}

	action := Transition(conv.State, ev)
	m.logger.Debug("Handling event",
		zap.Int64("session_id", ev.SessionID),
		zap.String("state", string(conv.State)),
		zap.String("kind", string(ev.Kind)),
		zap.String("action", string(action)))

	replies, next, err := m.run(ctx, conv, action, ev)
	if err != nil {
		m.logger.Error("Action failed",
			zap.Int64("session_id", ev.SessionID),
			zap.String("action", string(action)),
			zap.Error(err))
		replies = []Reply{failureReply()}
		next = domain.StateMenu
		conv.Quiz = nil
	}

	conv.State = next
	m.persist(ctx, conv)

	return Response{Replies: replies, State: next}
}

func (m *Machine) persist(ctx context.Context, conv *domain.Conversation) {
	var err error
	if conv.State == domain.StateTerminated {
		err = m.sessions.Delete(ctx, conv.SessionID)
	} else {
		err = m.sessions.Save(ctx, conv)
	}
	if err != nil {
		m.logger.Error("Failed to persist session",
			zap.Int64("session_id", conv.SessionID),
			zap.Error(err))
	}
}

func (m *Machine) run(ctx context.Context, conv *domain.Conversation, action Action, ev domain.Event) (replies []Reply, next domain.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", action, r)
		}
	}()

	switch action {
	case ActionShowMenu:
		conv.Quiz = nil
		return []Reply{menuReply()}, domain.StateMenu, nil
	case ActionPromptWord:
		return []Reply{plain(textPromptWord)}, domain.StateAwaitingWord, nil
	case ActionAddWord:
		return m.addWord(ctx, ev.Payload)
	case ActionStartQuiz:
		return m.startQuiz(conv)
	case ActionAnswer:
		return m.answer(conv, ev.Payload)
	case ActionRepeatQuestion:
		return m.poseQuestion(conv)
	case ActionListWords:
		return m.listWords()
	case ActionWordOfDay:
		return m.wordOfDay()
	case ActionInvalidChoice:
		return []Reply{withBack(textInvalidChoice)}, domain.StateMenu, nil
	case ActionTerminate:
		conv.Quiz = nil
		return []Reply{plain(textEnded)}, domain.StateTerminated, nil
	case ActionStartHint:
		return []Reply{plain(textStartHint)}, domain.StateTerminated, nil
	default:
		return nil, conv.State, fmt.Errorf("unknown action %q", action)
	}
}

func (m *Machine) addWord(ctx context.Context, raw string) ([]Reply, domain.State, error) {
	entry, err := m.words.AddWord(ctx, raw)
	switch {
	case err == nil:
		return []Reply{savedReply(entry)}, domain.StateMenu, nil
	case errors.Is(err, domain.ErrInvalidWord):
		return []Reply{withBack(textInvalidWord)}, domain.StateMenu, nil
	case errors.Is(err, domain.ErrEnrichmentFailed):
		m.logger.Warn("Enrichment failed", zap.String("input", raw), zap.Error(err))
		return []Reply{withBack(textWordNotFound)}, domain.StateMenu, nil
	default:
		return nil, domain.StateMenu, err
	}
}

func (m *Machine) startQuiz(conv *domain.Conversation) ([]Reply, domain.State, error) {
	vocab, err := m.words.Vocabulary()
	if err != nil {
		return nil, domain.StateMenu, err
	}

	session, err := m.quiz.StartQuiz(vocab)
	switch {
	case errors.Is(err, domain.ErrNotEnoughWords):
		return []Reply{withBack(textNeedMoreWords)}, domain.StateMenu, nil
	case errors.Is(err, domain.ErrInsufficientData):
		return []Reply{withBack(textNeedMoreSynonyms)}, domain.StateMenu, nil
	case err != nil:
		return nil, domain.StateMenu, err
	}

	conv.Quiz = session
	return m.poseQuestion(conv)
}

func (m *Machine) poseQuestion(conv *domain.Conversation) ([]Reply, domain.State, error) {
	if conv.Quiz == nil {
		return nil, domain.StateMenu, errors.New("no active quiz")
	}
	view, err := m.quiz.CurrentQuestion(conv.Quiz)
	if err != nil {
		return nil, domain.StateMenu, err
	}
	return []Reply{questionReply(view)}, domain.StateAwaitingQuizAnswer, nil
}

func (m *Machine) answer(conv *domain.Conversation, chosen string) ([]Reply, domain.State, error) {
	if conv.Quiz == nil {
		return nil, domain.StateMenu, errors.New("no active quiz")
	}

	result, err := m.quiz.SubmitAnswer(conv.Quiz, chosen)
	if err != nil {
		return nil, domain.StateMenu, err
	}

	replies := []Reply{answerReply(result)}
	if result.Done {
		conv.Quiz = nil
		return append(replies, finalScoreReply(result)), domain.StateMenu, nil
	}

	next, state, err := m.poseQuestion(conv)
	if err != nil {
		return nil, domain.StateMenu, err
	}
	return append(replies, next...), state, nil
}

func (m *Machine) listWords() ([]Reply, domain.State, error) {
	entries, err := m.words.ListWords()
	if err != nil {
		return nil, domain.StateMenu, err
	}
	if len(entries) == 0 {
		return []Reply{withBack(textNoWords)}, domain.StateMenu, nil
	}
	return listReplies(entries), domain.StateMenu, nil
}

func (m *Machine) wordOfDay() ([]Reply, domain.State, error) {
	entry, err := m.words.WordOfDay()
	if errors.Is(err, domain.ErrNoWords) {
		return []Reply{withBack(textNoWords)}, domain.StateMenu, nil
	}
	if err != nil {
		return nil, domain.StateMenu, err
	}
	return []Reply{wordOfDayReply(entry)}, domain.StateMenu, nil
}
