package handler

import (
	"context"

	"alyabot/internal/conversation"
	"alyabot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Conversation drives the per-session state machine
type Conversation interface {
	Handle(ctx context.Context, ev domain.Event) conversation.Response
}

// Handler manages all bot interactions
type Handler struct {
	bot     *tele.Bot
	machine Conversation
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(bot *tele.Bot, machine Conversation, logger *zap.Logger) *Handler {
	return &Handler{
		bot:     bot,
		machine: machine,
		logger:  logger,
	}
}

// Callback uniques: one for menu selections, one for quiz answers
const (
	uniqueSelection = "menu"
	uniqueAnswer    = "answer"
)

var (
	btnSelection = tele.Btn{Unique: uniqueSelection}
	btnAnswer    = tele.Btn{Unique: uniqueAnswer}
)

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/cancel", h.handleCancel)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnSelection, h.handleCallback)
	h.bot.Handle(&btnAnswer, h.handleCallback)

	// Generic callback handler for buttons whose unique did not come through
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

func (h *Handler) handleStart(c tele.Context) error {
	h.logger.Info("User started bot",
		zap.Int64("user_id", c.Sender().ID),
		zap.String("username", c.Sender().Username),
	)
	return h.dispatch(c, domain.EventCommand, domain.CommandStart)
}

func (h *Handler) handleCancel(c tele.Context) error {
	return h.dispatch(c, domain.EventCommand, domain.CommandCancel)
}

// dispatch feeds one event to the conversation and sends every reply in order
func (h *Handler) dispatch(c tele.Context, kind domain.EventKind, payload string) error {
	ev := domain.Event{
		SessionID: c.Sender().ID,
		Kind:      kind,
		Payload:   payload,
	}

	resp := h.machine.Handle(context.Background(), ev)

	for _, reply := range resp.Replies {
		if err := c.Send(reply.Text, sendOptions(reply)...); err != nil {
			h.logger.Error("Failed to send reply",
				zap.Error(err),
				zap.Int64("user_id", ev.SessionID),
			)
			return err
		}
	}
	return nil
}

// sendOptions renders reply options as an inline keyboard
func sendOptions(reply conversation.Reply) []interface{} {
	if len(reply.Options) == 0 {
		return nil
	}

	markup := &tele.ReplyMarkup{}
	btns := make([]tele.Btn, 0, len(reply.Options))
	for _, opt := range reply.Options {
		btns = append(btns, markup.Data(opt.Label, uniqueFor(opt.Kind), opt.Payload))
	}

	if reply.Layout == conversation.LayoutRow {
		markup.Inline(markup.Row(btns...))
	} else {
		rows := make([]tele.Row, 0, len(btns))
		for _, btn := range btns {
			rows = append(rows, markup.Row(btn))
		}
		markup.Inline(rows...)
	}
	return []interface{}{markup}
}

func uniqueFor(kind domain.EventKind) string {
	if kind == domain.EventAnswer {
		return uniqueAnswer
	}
	return uniqueSelection
}
