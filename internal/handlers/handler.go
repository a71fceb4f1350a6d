// Package handlers exposes the service's HTTP surface. The
// conversational gateway calls the user and chat endpoints on behalf
// of its users; the operator endpoints drive ingestion, broadcasts,
// and daily-feature pinning.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/otabekh/minbar/internal/auth"
	"github.com/otabekh/minbar/internal/broadcast"
	"github.com/otabekh/minbar/internal/feature"
	"github.com/otabekh/minbar/internal/ingest"
	"github.com/otabekh/minbar/internal/logger"
	"github.com/otabekh/minbar/internal/media"
	"github.com/otabekh/minbar/internal/relay"
	"github.com/otabekh/minbar/internal/session"
	"github.com/otabekh/minbar/internal/store"
	"github.com/otabekh/minbar/internal/transport"
)

type Handler struct {
	Store      *store.DB
	Feature    *feature.Service
	Relay      *relay.Service
	Broadcast  *broadcast.Service
	Committer  *ingest.Committer
	Archiver   *ingest.Archiver
	Reports    *ingest.ReportLog
	Sessions   *session.Registry
	Sender     transport.Sender
	Host       media.Host
	Translator AllTranslator
	Operator   auth.Operator
	Log        *logger.Logger
}

func NewHandler(deps Handler) *Handler {
	h := deps
	h.Log = deps.Log.WithComponent("http")
	return &h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)

	r.Get("/performers", h.ListPerformers)
	r.Post("/performers", h.CreatePerformer)
	r.Get("/performers/{id}/tracks", h.ListTracks)
	r.Get("/performers/{id}/tracks/{position}", h.PlayTrack)
	r.Post("/performers/{id}/tracks/{position}", h.UploadTrack)
	r.Delete("/performers/{id}", h.DeletePerformer)

	r.Get("/songs", h.ListSongs)
	r.Post("/songs", h.CreateSong)

	r.Get("/search/tracks", h.SearchTracks)
	r.Get("/search/users", h.SearchUsers)

	r.Get("/users/{id}", h.GetUserProfile)
	r.Post("/users/{id}", h.UpsertUser)
	r.Post("/users/{id}/language/{lang}", h.SetLanguage)
	r.Post("/users/{id}/favorites/tracks/{trackID}/toggle", h.ToggleFavoriteTrack)
	r.Get("/users/{id}/favorites/tracks", h.FavoriteTracks)
	r.Post("/users/{id}/favorites/songs/{songID}/toggle", h.ToggleFavoriteSong)
	r.Get("/users/{id}/favorites/songs", h.FavoriteSongs)

	r.Get("/daily/track", h.DailyTrack)
	r.Get("/daily/song", h.DailySong)
	r.Post("/daily/track/{id}", h.SetDailyTrack)
	r.Post("/daily/song/{id}", h.SetDailySong)

	r.Post("/chat/{id}/enter", h.EnterChat)
	r.Post("/chat/{id}/exit", h.ExitChat)
	r.Post("/chat/{id}/message", h.UserChatMessage)
	r.Post("/chat/{id}/reply", h.OperatorChatReply)
	r.Get("/chat/{id}/history", h.ChatHistory)

	r.Post("/ingest/batch/{performerID}/start", h.StartBatch)
	r.Post("/ingest/batch/item", h.StageBatchItem)
	r.Post("/ingest/batch/finish", h.FinishBatch)
	r.Post("/ingest/batch/cancel", h.CancelBatch)
	r.Post("/ingest/archive/{performerID}", h.IngestArchive)
	r.Get("/reports/ingest", h.IngestReports)

	r.Post("/broadcast", h.Announce)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Log.Error("failed to encode response", "error", err)
	}
}
