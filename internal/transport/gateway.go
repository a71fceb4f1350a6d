package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/otabekh/minbar/internal/httpclient"
)

const (
	requestTimeout     = 30 * time.Second
	minRequestInterval = 50 * time.Millisecond
)

// GatewaySender pushes outbound messages to the conversational
// gateway over HTTP. The gateway owns the actual chat platform
// connection.
type GatewaySender struct {
	client  *httpclient.Client
	baseURL string
}

func NewGatewaySender(baseURL string) *GatewaySender {
	return &GatewaySender{
		client:  httpclient.NewClient(&http.Client{Timeout: requestTimeout}, minRequestInterval),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (g *GatewaySender) SendText(ctx context.Context, chatID int64, text string) error {
	return g.post(ctx, "/send/text", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
}

func (g *GatewaySender) SendAudio(ctx context.Context, chatID int64, fileID, caption string) error {
	return g.post(ctx, "/send/audio", map[string]any{
		"chat_id": chatID,
		"file_id": fileID,
		"caption": caption,
	})
}

func (g *GatewaySender) post(ctx context.Context, path string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
