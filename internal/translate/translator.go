// Package translate produces broadcast text in every supported
// language through an OpenAI-compatible chat completion endpoint.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/otabekh/minbar/internal/domain"
	"github.com/otabekh/minbar/internal/httpclient"
)

const (
	requestTimeout     = 60 * time.Second
	minRequestInterval = 1100 * time.Millisecond

	allLanguagesPrompt = `You are a professional translator. Translate the user's message into Arabic, Uzbek, Russian, and English. Respond with ONLY a JSON object of the form {"ar": "...", "uz": "...", "ru": "...", "en": "..."}. Preserve meaning and tone. No commentary, no markdown.`
)

// Status is the outcome class of a translation fan-out.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Result carries the outcome of a best-effort translation fan-out.
// When the service fails or returns something unusable, Texts echoes
// the source text in every language and NeedsReview is set so an
// operator can fix the copies by hand. Detail describes the failure
// when Status is StatusError.
type Result struct {
	Texts       domain.Localized
	NeedsReview bool
	Status      Status
	Detail      string
}

type Translator struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
	model   string
}

func NewTranslator(baseURL, apiKey, model string) *Translator {
	httpc := &http.Client{Timeout: requestTimeout}
	return &Translator{
		client:  httpclient.NewClient(httpc, minRequestInterval),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// TranslateAll renders text into all four supported languages. It
// never fails: any service or parsing problem degrades to echoing the
// source text everywhere with NeedsReview set.
func (t *Translator) TranslateAll(ctx context.Context, text string) Result {
	fallback := Result{NeedsReview: true, Status: StatusError}
	for _, lang := range domain.Languages() {
		fallback.Texts.Set(lang, text)
	}

	raw, err := t.complete(ctx, allLanguagesPrompt, text)
	if err != nil {
		fallback.Detail = fmt.Sprintf("translation failed: %v", err)
		return fallback
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		fallback.Detail = "translation response was not valid JSON"
		return fallback
	}

	out := Result{Status: StatusOK}
	for _, lang := range domain.Languages() {
		value := strings.TrimSpace(parsed[string(lang)])
		if value == "" {
			fallback.Detail = fmt.Sprintf("translation response missing %q", lang)
			return fallback
		}
		out.Texts.Set(lang, value)
	}
	return out
}

// Translate renders text into a single target language.
func (t *Translator) Translate(ctx context.Context, text string, target domain.Language) (string, error) {
	prompt := fmt.Sprintf("You are a professional translator. Translate the user's message into %s. Respond with ONLY the translated text. No commentary, no markdown.", languageName(target))
	raw, err := t.complete(ctx, prompt, text)
	if err != nil {
		return "", &domain.TranslationError{Err: err}
	}
	out := strings.TrimSpace(stripFences(raw))
	if out == "" {
		return "", &domain.TranslationError{Err: fmt.Errorf("empty translation for %s", target)}
	}
	return out, nil
}

func (t *Translator) complete(ctx context.Context, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: t.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translator returned status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("translator returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// stripFences removes a markdown code fence wrapper that chat models
// sometimes add despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func languageName(lang domain.Language) string {
	switch lang {
	case domain.LangAR:
		return "Arabic"
	case domain.LangUZ:
		return "Uzbek"
	case domain.LangRU:
		return "Russian"
	default:
		return "English"
	}
}
