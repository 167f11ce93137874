// Package llm calls an OpenAI-compatible chat completions gateway.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/application/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/config"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const maxResponseBody = 1 << 20

const systemPrompt = `You translate public holiday names for an HR application.
Reply with a single JSON object whose keys are the requested locale codes and whose values are the translated names.
Use the official local name of the holiday where one exists. Do not add commentary.`

// Translator implements leave.HolidayTranslator
type Translator struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *zap.Logger
}

// NewTranslator creates a gateway client
func NewTranslator(cfg config.LLMConfig, logger *zap.Logger) (*Translator, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("llm: base url is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm: model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Translator{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// Translate returns the name in each target locale. Locales the model
// leaves out are missing from the result.
func (t *Translator) Translate(ctx context.Context, name string, targets []string) (map[string]string, error) {
	if strings.TrimSpace(name) == "" || len(targets) == 0 {
		return map[string]string{}, nil
	}
	body, err := json.Marshal(chatRequest{
		Model: t.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Holiday: %q\nLocales: %s", name, strings.Join(targets, ", "))},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(raw, "error.message").String()
		return nil, fmt.Errorf("llm: gateway returned %d: %s", resp.StatusCode, msg)
	}

	content := gjson.GetBytes(raw, "choices.0.message.content").String()
	names, err := parseTranslations(content, targets)
	if err != nil {
		return nil, err
	}
	t.logger.Info("Holiday translated",
		zap.String("model", t.model),
		zap.Int("locales", len(names)),
		zap.Duration("duration", time.Since(start)))
	return names, nil
}

// parseTranslations reads the JSON object in the reply, tolerating a
// markdown code fence around it
func parseTranslations(content string, targets []string) (map[string]string, error) {
	content = strings.TrimSpace(content)
	if i := strings.Index(content, "{"); i >= 0 {
		if j := strings.LastIndex(content, "}"); j > i {
			content = content[i : j+1]
		}
	}
	if !gjson.Valid(content) {
		return nil, errors.New("llm: reply is not a JSON object")
	}
	parsed := gjson.Parse(content)
	out := make(map[string]string, len(targets))
	for _, locale := range targets {
		if v := parsed.Get(gjson.Escape(locale)); v.Exists() && strings.TrimSpace(v.String()) != "" {
			out[locale] = strings.TrimSpace(v.String())
		}
	}
	return out, nil
}

var _ leave.HolidayTranslator = (*Translator)(nil)
