package handler

import (
	"strings"

	"alyabot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText handles all text messages; the conversation decides what they mean
func (h *Handler) handleText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())

	// Ignore unknown commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	// Enrichment can take a while
	if err := c.Notify(tele.Typing); err != nil {
		h.logger.Debug("Failed to send chat action", zap.Error(err))
	}

	return h.dispatch(c, domain.EventText, text)
}
