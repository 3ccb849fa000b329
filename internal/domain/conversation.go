package domain

import "time"

// State represents where a conversation currently is
type State string

const (
	StateMenu               State = "menu"
	StateAwaitingWord       State = "awaiting_word"
	StateAwaitingQuizAnswer State = "awaiting_quiz_answer"
	StateTerminated         State = "terminated"
)

// EventKind classifies inbound events from the transport
type EventKind string

const (
	EventSelection EventKind = "selection"
	EventText      EventKind = "text"
	EventAnswer    EventKind = "answer"
	EventCommand   EventKind = "command"
)

// Menu selections and commands understood by the conversation
const (
	SelectAddWord   = "add_word"
	SelectQuiz      = "quiz"
	SelectListWords = "list_words"
	SelectWordOfDay = "word_of_day"
	SelectMenu      = "menu"
	SelectCancel    = "cancel"

	CommandStart  = "start"
	CommandCancel = "cancel"
)

// Event is one inbound interaction for a session
type Event struct {
	SessionID int64
	Kind      EventKind
	Payload   string
}

// Conversation holds per-session state between events
type Conversation struct {
	SessionID int64        `json:"session_id"`
	State     State        `json:"state"`
	Quiz      *QuizSession `json:"quiz,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewConversation returns a conversation that has not been started yet
func NewConversation(sessionID int64) *Conversation {
	return &Conversation{SessionID: sessionID, State: StateTerminated}
}

// Clone returns a deep copy so stored snapshots are not shared
func (c *Conversation) Clone() *Conversation {
	out := *c
	if c.Quiz != nil {
		q := *c.Quiz
		q.Questions = make([]Question, len(c.Quiz.Questions))
		for i, question := range c.Quiz.Questions {
			question.Options = append([]string(nil), question.Options...)
			q.Questions[i] = question
		}
		out.Quiz = &q
	}
	return &out
}
