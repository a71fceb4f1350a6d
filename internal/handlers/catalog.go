package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/otabekh/minbar/internal/constants"
	"github.com/otabekh/minbar/internal/domain"
	"github.com/otabekh/minbar/internal/translate"
)

// AllTranslator renders one text into every supported language.
type AllTranslator interface {
	TranslateAll(ctx context.Context, text string) translate.Result
}

// CreatePerformer registers a new performer. Operator only.
func (h *Handler) CreatePerformer(w http.ResponseWriter, r *http.Request) {
	if err := h.Operator.Require(callerID(r)); err != nil {
		http.Error(w, "not authorized", http.StatusForbidden)
		return
	}

	var body struct {
		Photo string           `json:"photo"`
		Names domain.Localized `json:"names"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Names.RU == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.Store.AddPerformer(body.Photo, body.Names)
	if err != nil {
		http.Error(w, "failed to add performer", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"performer_id": id})
}

// DeletePerformer removes the performer with all tracks and favorite
// memberships. Operator only.
func (h *Handler) DeletePerformer(w http.ResponseWriter, r *http.Request) {
	if err := h.Operator.Require(callerID(r)); err != nil {
		http.Error(w, "not authorized", http.StatusForbidden)
		return
	}
	performerID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid performer id", http.StatusBadRequest)
		return
	}

	photo, err := h.Store.DeletePerformer(performerID)
	if err != nil {
		http.Error(w, "failed to delete performer", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"released_photo": photo})
}

// CreateSong relays the submitted audio to permanent storage and
// saves the song with its title translated into every language.
// Operator only.
func (h *Handler) CreateSong(w http.ResponseWriter, r *http.Request) {
	if err := h.Operator.Require(callerID(r)); err != nil {
		http.Error(w, "not authorized", http.StatusForbidden)
		return
	}

	var body struct {
		Handle    string `json:"handle"`
		Title     string `json:"title"`
		Performer string `json:"performer"`
		Cover     string `json:"cover"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Handle == "" || body.Title == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	relayed, err := h.Host.Relay(r.Context(), body.Handle)
	if err != nil {
		http.Error(w, "failed to store audio", http.StatusBadGateway)
		return
	}

	titles := h.Translator.TranslateAll(r.Context(), body.Title)
	if titles.NeedsReview {
		h.Log.Warn("song title needs review", "detail", titles.Detail)
	}

	id, err := h.Store.AddSong(relayed.DurableHandle, titles.Texts, body.Performer, body.Cover)
	if err != nil {
		http.Error(w, "failed to save song", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"song_id":      id,
		"needs_review": titles.NeedsReview,
	})
}

func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	songs, err := h.Store.ListSongs(limit, offset)
	if err != nil {
		http.Error(w, "failed to list songs", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, songs)
}

// DailySong serves today's featured song, falling back to a random
// pick when nothing is pinned.
func (h *Handler) DailySong(w http.ResponseWriter, r *http.Request) {
	song, featured, err := h.Feature.SongOfDay()
	if err != nil {
		http.Error(w, "failed to load daily song", http.StatusInternalServerError)
		return
	}
	if !featured {
		song, err = h.Feature.RandomSong()
		if err != nil {
			http.Error(w, "no songs available", http.StatusNotFound)
			return
		}
	}
	h.Feature.RecordSongPlay(song.ID)
	h.writeJSON(w, http.StatusOK, map[string]any{"song": song, "featured": featured})
}

func (h *Handler) ToggleFavoriteSong(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	songID, err := pathID(r, "songID")
	if err != nil {
		http.Error(w, "invalid song id", http.StatusBadRequest)
		return
	}

	nowFavorite, err := h.Feature.ToggleFavoriteSong(userID, songID)
	if err != nil {
		http.Error(w, "failed to toggle favorite", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"favorite": nowFavorite})
}

func (h *Handler) FavoriteSongs(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	songs, err := h.Feature.FavoriteSongs(userID)
	if err != nil {
		http.Error(w, "failed to list favorites", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, songs)
}

// SearchTracks matches by localized name or position number.
func (h *Handler) SearchTracks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}
	lang := domain.LangRU
	if raw := r.URL.Query().Get("lang"); raw != "" {
		parsed, err := domain.ParseLanguage(raw)
		if err != nil {
			http.Error(w, "unknown language", http.StatusBadRequest)
			return
		}
		lang = parsed
	}

	tracks, err := h.Store.SearchTracks(query, lang)
	if err != nil {
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, tracks)
}

// SearchUsers matches by name, handle, or exact id. Operator only.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	if err := h.Operator.Require(callerID(r)); err != nil {
		http.Error(w, "not authorized", http.StatusForbidden)
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	users, err := h.Store.SearchUsers(query)
	if err != nil {
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}
