package conversation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alyabot/internal/domain"
	"alyabot/internal/repository/file"
	"alyabot/internal/repository/memory"
	"alyabot/internal/service"
	"alyabot/internal/testutil"
)

const sessionID int64 = 42

type fixture struct {
	machine  *Machine
	sessions *memory.SessionStore
	words    *file.WordRepo
	enricher *testutil.MockEnricher
}

func newFixture(t *testing.T, vocab domain.Vocabulary) *fixture {
	t.Helper()
	logger := testutil.NewTestLogger()

	words := file.NewWordRepo(filepath.Join(t.TempDir(), "words.json"), logger)
	if vocab != nil {
		require.NoError(t, words.Save(vocab))
	}

	enricher := new(testutil.MockEnricher)
	sessions := memory.NewSessionStore(time.Hour)
	wordService := service.NewWordServiceWithRand(words, enricher, logger, rand.New(rand.NewSource(1)))
	quizService := service.NewQuizServiceWithRand(logger, rand.New(rand.NewSource(1)))

	return &fixture{
		machine:  NewMachine(sessions, wordService, quizService, logger),
		sessions: sessions,
		words:    words,
		enricher: enricher,
	}
}

func (f *fixture) send(t *testing.T, kind domain.EventKind, payload string) Response {
	t.Helper()
	return f.machine.Handle(context.Background(), domain.Event{SessionID: sessionID, Kind: kind, Payload: payload})
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	resp := f.send(t, domain.EventCommand, domain.CommandStart)
	require.Equal(t, domain.StateMenu, resp.State)
}

func (f *fixture) conversation(t *testing.T) *domain.Conversation {
	t.Helper()
	conv, ok, err := f.sessions.Get(context.Background(), sessionID)
	require.NoError(t, err)
	require.True(t, ok)
	return conv
}

func TestMachine_StartShowsMenu(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.send(t, domain.EventCommand, domain.CommandStart)

	assert.Equal(t, domain.StateMenu, resp.State)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, textWelcome, resp.Replies[0].Text)
	assert.Equal(t, LayoutColumn, resp.Replies[0].Layout)
	assert.Equal(t, []Option{optAddWord, optQuiz, optListWords, optWordOfDay}, resp.Replies[0].Options)
	assert.Equal(t, domain.StateMenu, f.conversation(t).State)
}

func TestMachine_EventsBeforeStart(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.send(t, domain.EventSelection, domain.SelectQuiz)

	assert.Equal(t, domain.StateTerminated, resp.State)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, textStartHint, resp.Replies[0].Text)
	assert.Equal(t, 0, f.sessions.Len())
}

func TestMachine_ListWordsEmpty(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)

	resp := f.send(t, domain.EventSelection, domain.SelectListWords)

	assert.Equal(t, domain.StateMenu, resp.State)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, textNoWords, resp.Replies[0].Text)
}

func TestMachine_ListWordsSorted(t *testing.T) {
	f := newFixture(t, testutil.QuizVocabulary())
	f.start(t)

	resp := f.send(t, domain.EventSelection, domain.SelectListWords)

	assert.Equal(t, domain.StateMenu, resp.State)
	require.Len(t, resp.Replies, 1)
	text := resp.Replies[0].Text
	assert.Less(t, strings.Index(text, "🔤 alpha"), strings.Index(text, "🔤 bravo"))
	assert.Less(t, strings.Index(text, "🔤 charlie"), strings.Index(text, "🔤 delta"))
}

func TestMachine_WordOfDay(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		f := newFixture(t, nil)
		f.start(t)

		resp := f.send(t, domain.EventSelection, domain.SelectWordOfDay)

		assert.Equal(t, domain.StateMenu, resp.State)
		assert.Equal(t, textNoWords, resp.Replies[0].Text)
	})

	t.Run("picks a stored word", func(t *testing.T) {
		f := newFixture(t, testutil.QuizVocabulary())
		f.start(t)

		resp := f.send(t, domain.EventSelection, domain.SelectWordOfDay)

		assert.Equal(t, domain.StateMenu, resp.State)
		require.Len(t, resp.Replies, 1)
		assert.Contains(t, resp.Replies[0].Text, "🌟 Word of the Day: ")
		assert.Equal(t, []Option{optBack}, resp.Replies[0].Options)
	})
}

func TestMachine_AddWord(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)

	f.enricher.On("Fetch", mock.Anything, "apple").Return(domain.WordEntry{
		Meaning:  "تفاحة",
		Synonyms: []string{"fruit"},
		Example:  "I ate an apple.",
	}, nil)

	resp := f.send(t, domain.EventSelection, domain.SelectAddWord)
	assert.Equal(t, domain.StateAwaitingWord, resp.State)
	assert.Equal(t, textPromptWord, resp.Replies[0].Text)

	resp = f.send(t, domain.EventText, "  Apple ")
	assert.Equal(t, domain.StateMenu, resp.State)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, "✅ Word 'apple' saved!\n\n📝 Arabic meaning: تفاحة\n🟰 Synonyms: fruit\n📖 Example: I ate an apple.",
		resp.Replies[0].Text)
	assert.Equal(t, []Option{optBack, optCancel}, resp.Replies[0].Options)

	vocab, err := f.words.Load()
	require.NoError(t, err)
	assert.Contains(t, vocab, "apple")
	f.enricher.AssertExpectations(t)
}

func TestMachine_AddWordInvalid(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)
	f.send(t, domain.EventSelection, domain.SelectAddWord)

	resp := f.send(t, domain.EventText, "Apple123")

	assert.Equal(t, domain.StateMenu, resp.State)
	assert.Equal(t, textInvalidWord, resp.Replies[0].Text)
	f.enricher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestMachine_AddWordEnrichmentFailures(t *testing.T) {
	tests := []struct {
		name  string
		entry domain.WordEntry
		err   error
	}{
		{
			name: "gateway failure",
			err:  fmt.Errorf("%w: timeout", domain.ErrEnrichmentFailed),
		},
		{
			name:  "placeholder meaning",
			entry: domain.WordEntry{Meaning: "كلمة أو كلمتين", Synonyms: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.start(t)
			f.enricher.On("Fetch", mock.Anything, "xyzzy").Return(tt.entry, tt.err)

			f.send(t, domain.EventSelection, domain.SelectAddWord)
			resp := f.send(t, domain.EventText, "xyzzy")

			assert.Equal(t, domain.StateMenu, resp.State)
			assert.Equal(t, textWordNotFound, resp.Replies[0].Text)

			vocab, err := f.words.Load()
			require.NoError(t, err)
			assert.Empty(t, vocab)
		})
	}
}

func TestMachine_QuizInsufficientData(t *testing.T) {
	tests := []struct {
		name  string
		vocab domain.Vocabulary
		want  string
	}{
		{
			name: "too few words",
			vocab: testutil.NewTestVocabulary(
				testutil.NewTestEntry("alpha", "أ", "beta"),
				testutil.NewTestEntry("bravo", "ب", "charlie"),
			),
			want: textNeedMoreWords,
		},
		{
			name: "too few synonyms",
			vocab: testutil.NewTestVocabulary(
				testutil.NewTestEntry("alpha", "أ", "beta"),
				testutil.NewTestEntry("bravo", "ب"),
				testutil.NewTestEntry("charlie", "ج"),
				testutil.NewTestEntry("delta", "د"),
			),
			want: textNeedMoreSynonyms,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.vocab)
			f.start(t)

			resp := f.send(t, domain.EventSelection, domain.SelectQuiz)

			assert.Equal(t, domain.StateMenu, resp.State)
			assert.Equal(t, tt.want, resp.Replies[0].Text)
			assert.Nil(t, f.conversation(t).Quiz)
		})
	}
}

func TestMachine_QuizScoresTwoOfThree(t *testing.T) {
	f := newFixture(t, testutil.QuizVocabulary())
	f.start(t)

	resp := f.send(t, domain.EventSelection, domain.SelectQuiz)
	require.Equal(t, domain.StateAwaitingQuizAnswer, resp.State)
	require.Len(t, resp.Replies, 1)
	assert.Contains(t, resp.Replies[0].Text, "❓ Question 1/3:")
	assert.Len(t, resp.Replies[0].Options, domain.OptionsPerQuestion)

	quiz := f.conversation(t).Quiz
	require.NotNil(t, quiz)
	require.Equal(t, 3, quiz.Total())

	// correct
	resp = f.send(t, domain.EventAnswer, quiz.Questions[0].Word)
	assert.Equal(t, domain.StateAwaitingQuizAnswer, resp.State)
	require.Len(t, resp.Replies, 2)
	assert.Equal(t, textCorrect, resp.Replies[0].Text)
	assert.Contains(t, resp.Replies[1].Text, "❓ Question 2/3:")

	// wrong
	wrong := wrongOption(quiz.Questions[1])
	resp = f.send(t, domain.EventAnswer, wrong)
	assert.Equal(t, domain.StateAwaitingQuizAnswer, resp.State)
	assert.Equal(t, "❌ Wrong. The correct word was: "+quiz.Questions[1].Word, resp.Replies[0].Text)

	// correct, finishes
	resp = f.send(t, domain.EventAnswer, quiz.Questions[2].Word)
	assert.Equal(t, domain.StateMenu, resp.State)
	require.Len(t, resp.Replies, 2)
	assert.Equal(t, textCorrect, resp.Replies[0].Text)
	assert.Equal(t, "🎉 Quiz finished! Your score: 2/3", resp.Replies[1].Text)
	assert.Nil(t, f.conversation(t).Quiz)

	// a late answer is not accepted as part of a quiz
	resp = f.send(t, domain.EventAnswer, quiz.Questions[2].Word)
	assert.Equal(t, domain.StateMenu, resp.State)
	assert.Equal(t, textInvalidChoice, resp.Replies[0].Text)
}

func TestMachine_QuizRepeatsQuestionOnText(t *testing.T) {
	f := newFixture(t, testutil.QuizVocabulary())
	f.start(t)
	first := f.send(t, domain.EventSelection, domain.SelectQuiz)

	resp := f.send(t, domain.EventText, "what?")

	assert.Equal(t, domain.StateAwaitingQuizAnswer, resp.State)
	assert.Equal(t, first.Replies, resp.Replies)
	assert.Equal(t, 0, f.conversation(t).Quiz.CurrentIndex)
}

func TestMachine_BackToMenuAbandonsQuiz(t *testing.T) {
	f := newFixture(t, testutil.QuizVocabulary())
	f.start(t)
	f.send(t, domain.EventSelection, domain.SelectQuiz)

	resp := f.send(t, domain.EventSelection, domain.SelectMenu)

	assert.Equal(t, domain.StateMenu, resp.State)
	assert.Equal(t, textWelcome, resp.Replies[0].Text)
	assert.Nil(t, f.conversation(t).Quiz)
}

func TestMachine_CancelMidQuiz(t *testing.T) {
	f := newFixture(t, testutil.QuizVocabulary())
	f.start(t)
	f.send(t, domain.EventSelection, domain.SelectQuiz)

	resp := f.send(t, domain.EventCommand, domain.CommandCancel)
	assert.Equal(t, domain.StateTerminated, resp.State)
	assert.Equal(t, textEnded, resp.Replies[0].Text)
	assert.Equal(t, 0, f.sessions.Len())

	resp = f.send(t, domain.EventAnswer, "alpha")
	assert.Equal(t, domain.StateTerminated, resp.State)
	assert.Equal(t, textStartHint, resp.Replies[0].Text)

	f.start(t)
	assert.Nil(t, f.conversation(t).Quiz)
}

func TestMachine_InvalidChoice(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)

	resp := f.send(t, domain.EventSelection, "dance")

	assert.Equal(t, domain.StateMenu, resp.State)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, textInvalidChoice, resp.Replies[0].Text)
	assert.Equal(t, []Option{optBack}, resp.Replies[0].Options)
}

func TestMachine_StoreFailureRecoversToMenu(t *testing.T) {
	logger := testutil.NewTestLogger()
	repo := new(testutil.MockWordRepository)
	repo.On("Load").Return(nil, errors.New("disk on fire"))

	sessions := memory.NewSessionStore(time.Hour)
	m := NewMachine(sessions,
		service.NewWordService(repo, new(testutil.MockEnricher), logger),
		service.NewQuizService(logger),
		logger)
	ctx := context.Background()

	m.Handle(ctx, domain.Event{SessionID: sessionID, Kind: domain.EventCommand, Payload: domain.CommandStart})
	resp := m.Handle(ctx, domain.Event{SessionID: sessionID, Kind: domain.EventSelection, Payload: domain.SelectListWords})

	assert.Equal(t, domain.StateMenu, resp.State)
	require.Len(t, resp.Replies, 1)
	assert.Equal(t, textFailure, resp.Replies[0].Text)
}

type panickingQuizzer struct{}

func (panickingQuizzer) StartQuiz(domain.Vocabulary) (*domain.QuizSession, error) {
	panic("boom")
}

func (panickingQuizzer) CurrentQuestion(*domain.QuizSession) (domain.QuestionView, error) {
	return domain.QuestionView{}, nil
}

func (panickingQuizzer) SubmitAnswer(*domain.QuizSession, string) (domain.AnswerResult, error) {
	return domain.AnswerResult{}, nil
}

func TestMachine_PanicRecoversToMenu(t *testing.T) {
	logger := testutil.NewTestLogger()
	words := file.NewWordRepo(filepath.Join(t.TempDir(), "words.json"), logger)
	m := NewMachine(memory.NewSessionStore(time.Hour),
		service.NewWordService(words, new(testutil.MockEnricher), logger),
		panickingQuizzer{},
		logger)
	ctx := context.Background()

	m.Handle(ctx, domain.Event{SessionID: sessionID, Kind: domain.EventCommand, Payload: domain.CommandStart})
	resp := m.Handle(ctx, domain.Event{SessionID: sessionID, Kind: domain.EventSelection, Payload: domain.SelectQuiz})

	assert.Equal(t, domain.StateMenu, resp.State)
	assert.Equal(t, textFailure, resp.Replies[0].Text)
}

func TestMachine_SessionsAreIsolated(t *testing.T) {
	f := newFixture(t, testutil.QuizVocabulary())
	ctx := context.Background()

	var wg sync.WaitGroup
	for id := int64(1); id <= 20; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			f.machine.Handle(ctx, domain.Event{SessionID: id, Kind: domain.EventCommand, Payload: domain.CommandStart})
			if id%2 == 0 {
				f.machine.Handle(ctx, domain.Event{SessionID: id, Kind: domain.EventSelection, Payload: domain.SelectQuiz})
			}
		}(id)
	}
	wg.Wait()
	assert.Equal(t, 0, f.lockCount())

	for id := int64(1); id <= 20; id++ {
		conv, ok, err := f.sessions.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		if id%2 == 0 {
			assert.Equal(t, domain.StateAwaitingQuizAnswer, conv.State)
			assert.NotNil(t, conv.Quiz)
		} else {
			assert.Equal(t, domain.StateMenu, conv.State)
			assert.Nil(t, conv.Quiz)
		}
	}
}

func wrongOption(q domain.Question) string {
	for _, o := range q.Options {
		if o != q.Word {
			return o
		}
	}
	return ""
}


func (f *fixture) lockCount() int {
	f.machine.locksMu.Lock()
	defer f.machine.locksMu.Unlock()
	return len(f.machine.locks)
}

func TestMachine_ReleasesSessionLocks(t *testing.T) {
	f := newFixture(t, testutil.QuizVocabulary())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := int64(i % 5)
			f.machine.Handle(ctx, domain.Event{SessionID: id, Kind: domain.EventCommand, Payload: domain.CommandStart})
			f.machine.Handle(ctx, domain.Event{SessionID: id, Kind: domain.EventCommand, Payload: domain.CommandCancel})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, f.lockCount())
	assert.Equal(t, 0, f.sessions.Len())
}
