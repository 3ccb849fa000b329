package conversation

import "alyabot/internal/domain"

// Action is what the machine does in response to an event
type Action string

const (
	ActionShowMenu       Action = "show_menu"
	ActionPromptWord     Action = "prompt_word"
	ActionAddWord        Action = "add_word"
	ActionStartQuiz      Action = "start_quiz"
	ActionAnswer         Action = "answer"
	ActionRepeatQuestion Action = "repeat_question"
	ActionListWords      Action = "list_words"
	ActionWordOfDay      Action = "word_of_day"
	ActionInvalidChoice  Action = "invalid_choice"
	ActionTerminate      Action = "terminate"
	ActionStartHint      Action = "start_hint"
)

// Transition maps the current state and an inbound event to an action.
// It has no side effects; the machine runs the action and settles the next state.
func Transition(state domain.State, ev domain.Event) Action {
	if ev.Kind == domain.EventCommand {
		switch ev.Payload {
		case domain.CommandStart:
			return ActionShowMenu
		case domain.CommandCancel:
			return ActionTerminate
		}
	}

	switch state {
	case domain.StateMenu:
		return menuTransition(ev)
	case domain.StateAwaitingWord:
		return awaitingWordTransition(ev)
	case domain.StateAwaitingQuizAnswer:
		return awaitingAnswerTransition(ev)
	default:
		return ActionStartHint
	}
}

func menuTransition(ev domain.Event) Action {
	if ev.Kind != domain.EventSelection {
		return ActionInvalidChoice
	}
	switch ev.Payload {
	case domain.SelectAddWord:
		return ActionPromptWord
	case domain.SelectQuiz:
		return ActionStartQuiz
	case domain.SelectListWords:
		return ActionListWords
	case domain.SelectWordOfDay:
		return ActionWordOfDay
	case domain.SelectMenu:
		return ActionShowMenu
	case domain.SelectCancel:
		return ActionTerminate
	default:
		return ActionInvalidChoice
	}
}

func awaitingWordTransition(ev domain.Event) Action {
	switch ev.Kind {
	case domain.EventText:
		return ActionAddWord
	case domain.EventSelection:
		switch ev.Payload {
		case domain.SelectMenu:
			return ActionShowMenu
		case domain.SelectCancel:
			return ActionTerminate
		}
	}
	return ActionPromptWord
}

func awaitingAnswerTransition(ev domain.Event) Action {
	switch ev.Kind {
	case domain.EventAnswer:
		return ActionAnswer
	case domain.EventSelection:
		switch ev.Payload {
		case domain.SelectMenu:
			return ActionShowMenu
		case domain.SelectCancel:
			return ActionTerminate
		}
	}
	return ActionRepeatQuestion
}
