package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConversation(t *testing.T) {
	conv := NewConversation(42)

	assert.Equal(t, int64(42), conv.SessionID)
	assert.Equal(t, StateTerminated, conv.State)
	assert.Nil(t, conv.Quiz)
}

func TestConversation_Clone(t *testing.T) {
	conv := &Conversation{
		SessionID: 1,
		State:     StateAwaitingQuizAnswer,
		Quiz: &QuizSession{
			ID: "quiz",
			Questions: []Question{
				{Word: "alpha", Synonym: "first", Options: []string{"alpha", "bravo", "charlie", "delta"}},
			},
		},
	}

	clone := conv.Clone()
	clone.State = StateMenu
	clone.Quiz.Score = 5
	clone.Quiz.Questions[0].Options[0] = "changed"

	assert.Equal(t, StateAwaitingQuizAnswer, conv.State)
	assert.Equal(t, 0, conv.Quiz.Score)
	assert.Equal(t, "alpha", conv.Quiz.Questions[0].Options[0])
}
