// Package push sends notifications through the FCM HTTP v1 API.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/application/notification"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/config"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultEndpoint = "https://fcm.googleapis.com"
	messagingScope  = "https://www.googleapis.com/auth/firebase.messaging"
	maxErrorBody    = 64 << 10
)

// FCMClient implements notification.PushSender
type FCMClient struct {
	httpClient *http.Client
	sendURL    string
	logger     *zap.Logger
}

// NewFCMClient builds a client. Tokens come from the service account file
// when configured, otherwise from the static access token.
func NewFCMClient(ctx context.Context, cfg config.PushConfig, logger *zap.Logger) (*FCMClient, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("push: project id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var source oauth2.TokenSource
	switch {
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("push: read credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, messagingScope)
		if err != nil {
			return nil, fmt.Errorf("push: parse credentials: %w", err)
		}
		source = creds.TokenSource
	case cfg.AccessToken != "":
		source = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
	default:
		return nil, errors.New("push: credentials file or access token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := oauth2.NewClient(ctx, source)
	httpClient.Timeout = timeout

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &FCMClient{
		httpClient: httpClient,
		sendURL:    fmt.Sprintf("%s/v1/projects/%s/messages:send", endpoint, cfg.ProjectID),
		logger:     logger,
	}, nil
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      *fcmAndroid       `json:"android,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroid struct {
	Priority string `json:"priority"`
}

// Send delivers one message to one device token
func (c *FCMClient) Send(ctx context.Context, token string, msg notification.PushMessage) error {
	body, err := json.Marshal(fcmRequest{Message: fcmMessage{
		Token:        token,
		Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
		Android:      &fcmAndroid{Priority: "high"},
	}})
	if err != nil {
		return fmt.Errorf("push: encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("push: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return classifyError(resp.StatusCode, raw)
}

// classifyError maps an FCM error body. UNREGISTERED and the NOT_FOUND
// status both mean the token is dead.
func classifyError(status int, body []byte) error {
	parsed := gjson.ParseBytes(body)
	errorCode := ""
	parsed.Get("error.details").ForEach(func(_, detail gjson.Result) bool {
		if code := detail.Get("errorCode"); code.Exists() {
			errorCode = code.String()
			return false
		}
		return true
	})
	apiStatus := parsed.Get("error.status").String()
	message := parsed.Get("error.message").String()

	if errorCode == "UNREGISTERED" || apiStatus == "NOT_FOUND" {
		return fmt.Errorf("push: %s: %w", message, notification.ErrTokenUnregistered)
	}
	if errorCode == "" {
		errorCode = apiStatus
	}
	return fmt.Errorf("push: fcm returned %d %s: %s", status, errorCode, message)
}

var _ notification.PushSender = (*FCMClient)(nil)
