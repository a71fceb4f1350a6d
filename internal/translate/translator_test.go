package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/otabekh/minbar/internal/domain"
)

func writeJSON(t *testing.T, w http.ResponseWriter, body any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func newChatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		body := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		writeJSON(t, w, body)
	}))
}

func TestTranslateAll(t *testing.T) {
	server := newChatServer(t, `{"ar":"مرحبا","uz":"Salom","ru":"Привет","en":"Hello"}`, http.StatusOK)
	defer server.Close()

	tr := NewTranslator(server.URL, "test-key", "test-model")
	result := tr.TranslateAll(context.Background(), "Привет")
	if result.NeedsReview {
		t.Fatalf("NeedsReview = true, detail %q", result.Detail)
	}
	if result.Status != StatusOK {
		t.Errorf("Status = %q, want %q", result.Status, StatusOK)
	}
	if got := result.Texts.Get(domain.LangEN); got != "Hello" {
		t.Errorf("en = %q, want Hello", got)
	}
	if got := result.Texts.Get(domain.LangAR); got != "مرحبا" {
		t.Errorf("ar = %q", got)
	}
}

func TestTranslateAllStripsFences(t *testing.T) {
	fenced := "```json\n{\"ar\":\"أ\",\"uz\":\"u\",\"ru\":\"р\",\"en\":\"e\"}\n```"
	server := newChatServer(t, fenced, http.StatusOK)
	defer server.Close()

	tr := NewTranslator(server.URL, "test-key", "test-model")
	result := tr.TranslateAll(context.Background(), "text")
	if result.NeedsReview {
		t.Fatalf("NeedsReview = true, detail %q", result.Detail)
	}
	if got := result.Texts.Get(domain.LangUZ); got != "u" {
		t.Errorf("uz = %q, want u", got)
	}
}

func TestTranslateAllFallback(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  int
	}{
		{"service error", "", http.StatusInternalServerError},
		{"not json", "sorry, I cannot help with that", http.StatusOK},
		{"missing language", `{"ar":"أ","uz":"u","ru":"р"}`, http.StatusOK},
		{"empty value", `{"ar":"أ","uz":"","ru":"р","en":"e"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newChatServer(t, tt.content, tt.status)
			defer server.Close()

			tr := NewTranslator(server.URL, "test-key", "test-model")
			result := tr.TranslateAll(context.Background(), "original")
			if !result.NeedsReview {
				t.Fatal("NeedsReview = false, want true")
			}
			if result.Status != StatusError {
				t.Errorf("Status = %q, want %q", result.Status, StatusError)
			}
			if result.Detail == "" {
				t.Error("Detail is empty, want a failure description")
			}
			for _, lang := range domain.Languages() {
				if got := result.Texts.Get(lang); got != "original" {
					t.Errorf("%s = %q, want echoed source", lang, got)
				}
			}
		})
	}
}

func TestTranslateSingleLanguage(t *testing.T) {
	server := newChatServer(t, "Hello", http.StatusOK)
	defer server.Close()

	tr := NewTranslator(server.URL, "test-key", "test-model")
	out, err := tr.Translate(context.Background(), "Привет", domain.LangEN)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "Hello" {
		t.Errorf("out = %q, want Hello", out)
	}
}

func TestTranslateSingleLanguageError(t *testing.T) {
	server := newChatServer(t, "", http.StatusBadGateway)
	defer server.Close()

	tr := NewTranslator(server.URL, "test-key", "test-model")
	_, err := tr.Translate(context.Background(), "Привет", domain.LangEN)
	var trErr *domain.TranslationError
	if !errors.As(err, &trErr) {
		t.Fatalf("error type = %T, want *domain.TranslationError", err)
	}
}
