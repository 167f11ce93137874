package push

import (
	"context"

	"github.com/We2399/idea-launcher-pro-sub001/internal/application/notification"
	"go.uber.org/zap"
)

// LogSender stands in for FCM when push is disabled
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a sender that only logs
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the message
func (s *LogSender) Send(_ context.Context, token string, msg notification.PushMessage) error {
	s.logger.Debug("Push disabled, message not sent",
		zap.String("title", msg.Title),
		zap.Int("token_len", len(token)))
	return nil
}

var _ notification.PushSender = (*LogSender)(nil)
