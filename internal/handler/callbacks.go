package handler

import (
	"strings"
	"unicode"

	"alyabot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// parseCallback resolves a callback into an event kind and payload.
// When no unique handler matched, telebot leaves Unique empty and the raw
// data still reads "\f<unique>|<payload>"; bare data is treated as a selection.
func parseCallback(unique, data string) (domain.EventKind, string, bool) {
	data = cleanCallbackData(data)

	if unique == "" {
		if u, payload, found := strings.Cut(data, "|"); found {
			unique, data = u, payload
		} else {
			unique = uniqueSelection
		}
	}

	switch unique {
	case uniqueSelection:
		return domain.EventSelection, data, true
	case uniqueAnswer:
		return domain.EventAnswer, data, true
	default:
		return "", "", false
	}
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	kind, payload, ok := parseCallback(callback.Unique, callback.Data)
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data_raw", callback.Data),
		zap.String("unique", callback.Unique),
		zap.String("payload", payload),
		zap.Int64("user_id", c.Sender().ID),
	)

	// Always acknowledge so the button stops spinning
	if err := c.Respond(); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}

	if !ok {
		h.logger.Warn("Unhandled callback",
			zap.String("data", callback.Data),
			zap.String("unique", callback.Unique),
		)
		return nil
	}

	return h.dispatch(c, kind, payload)
}
