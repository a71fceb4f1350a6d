package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/otabekh/minbar/internal/domain"
)

func (h *Handler) EnterChat(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	threadID, err := h.Relay.EnterChat(userID)
	if err != nil {
		http.Error(w, "failed to open chat", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"thread_id": threadID})
}

func (h *Handler) ExitChat(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	h.Relay.ExitChat(userID)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UserChatMessage stores an inbound message and pings the operator
// once per exchange.
func (h *Handler) UserChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var body struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Body == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	threadID, notify, err := h.Relay.UserMessage(userID, body.Body)
	if err != nil {
		http.Error(w, "failed to deliver message", http.StatusInternalServerError)
		return
	}

	if notify {
		ping := fmt.Sprintf("New message from user %d:\n%s", userID, body.Body)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.Sender.SendText(ctx, h.Operator.ID, ping); err != nil {
			// The message is stored either way; the operator will
			// see it on the next thread check.
			h.Log.Warn("failed to ping operator", "error", err)
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"thread_id": threadID, "notified": notify})
}

func (h *Handler) OperatorChatReply(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var body struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Body == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	threadID, err := h.Relay.OperatorMessage(callerID(r), userID, body.Body)
	if err != nil {
		var authErr *domain.AuthorizationError
		if errors.As(err, &authErr) {
			http.Error(w, "not authorized", http.StatusForbidden)
			return
		}
		http.Error(w, "failed to deliver message", http.StatusInternalServerError)
		return
	}

	if err := h.Sender.SendText(r.Context(), userID, body.Body); err != nil {
		h.Log.Warn("failed to forward reply", "user_id", userID, "error", err)
	}

	h.writeJSON(w, http.StatusOK, map[string]int64{"thread_id": threadID})
}

func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.Relay.History(userID, limit)
	if err != nil {
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, messages)
}

// Announce translates and fans an announcement out to every user.
// Runs synchronously; the gateway calls it without a client timeout.
func (h *Handler) Announce(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text   string `json:"text"`
		Source string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	source := domain.LangRU
	if body.Source != "" {
		lang, err := domain.ParseLanguage(body.Source)
		if err != nil {
			http.Error(w, "unknown source language", http.StatusBadRequest)
			return
		}
		source = lang
	}

	report, err := h.Broadcast.Announce(r.Context(), callerID(r), body.Text, source)
	if err != nil {
		var authErr *domain.AuthorizationError
		if errors.As(err, &authErr) {
			http.Error(w, "not authorized", http.StatusForbidden)
			return
		}
		http.Error(w, "broadcast failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}
