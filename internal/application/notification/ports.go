// Package notification delivers push notifications and serves the polling counters.
package notification

import (
	"context"
	"errors"
)

// ErrTokenUnregistered is returned by a PushSender when the device token is
// no longer valid and should be forgotten
var ErrTokenUnregistered = errors.New("push token unregistered")

// PushMessage is the content of one push notification
type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}

// PushSender delivers one message to one device token
type PushSender interface {
	Send(ctx context.Context, token string, msg PushMessage) error
}
