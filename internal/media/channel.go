package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/otabekh/minbar/internal/constants"
	"github.com/otabekh/minbar/internal/domain"
	"github.com/otabekh/minbar/internal/httpclient"
)

// ChannelHost talks to the storage channel service over HTTP. It is
// the production Host implementation.
type ChannelHost struct {
	client  *httpclient.Client
	baseURL string
}

func NewChannelHost(baseURL string) *ChannelHost {
	httpc := &http.Client{Timeout: constants.MediaHTTPTimeout}
	return &ChannelHost{
		client:  httpclient.NewClient(httpc, 100*time.Millisecond),
		baseURL: baseURL,
	}
}

type relayResponse struct {
	FileID   string  `json:"file_id"`
	Duration float64 `json:"duration"`
}

func (h *ChannelHost) Relay(ctx context.Context, handle string) (Relayed, error) {
	endpoint := h.baseURL + "/relay?handle=" + url.QueryEscape(handle)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return Relayed{}, &domain.RelayError{Handle: handle, Err: err}
	}
	return h.do(req, handle)
}

func (h *ChannelHost) RelayFile(ctx context.Context, path, filename string) (Relayed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Relayed{}, &domain.RelayError{Handle: filename, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return Relayed{}, &domain.RelayError{Handle: filename, Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return Relayed{}, &domain.RelayError{Handle: filename, Err: err}
	}
	if err := mw.Close(); err != nil {
		return Relayed{}, &domain.RelayError{Handle: filename, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/upload", &body)
	if err != nil {
		return Relayed{}, &domain.RelayError{Handle: filename, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.do(req, filename)
}

func (h *ChannelHost) do(req *http.Request, handle string) (Relayed, error) {
	resp, err := h.client.Do(req.Context(), req)
	if err != nil {
		return Relayed{}, &domain.RelayError{Handle: handle, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Relayed{}, &domain.RelayError{
			Handle: handle,
			Err:    fmt.Errorf("media host returned status %d", resp.StatusCode),
		}
	}

	var parsed relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Relayed{}, &domain.RelayError{Handle: handle, Err: err}
	}
	if parsed.FileID == "" {
		return Relayed{}, &domain.RelayError{
			Handle: handle,
			Err:    fmt.Errorf("media host returned no durable handle"),
		}
	}

	return Relayed{
		DurableHandle: parsed.FileID,
		Duration:      time.Duration(parsed.Duration * float64(time.Second)),
	}, nil
}
