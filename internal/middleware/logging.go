package middleware

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// LoggingMiddleware logs every update and turns handler panics into errors.
// Returned errors are left to the bot's OnError hook.
func LoggingMiddleware(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			start := time.Now()
			userID := senderID(c)

			defer func() {
				if r := recover(); r != nil {
					logger.Error("Handler panicked",
						zap.Int64("user_id", userID),
						zap.Any("panic", r),
					)
					err = fmt.Errorf("handler panic: %v", r)
				}

				logger.Debug("Update handled",
					zap.Int64("user_id", userID),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err),
				)
			}()

			return next(c)
		}
	}
}

func senderID(c tele.Context) int64 {
	if sender := c.Sender(); sender != nil {
		return sender.ID
	}
	return 0
}
