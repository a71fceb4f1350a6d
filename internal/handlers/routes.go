package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/otabekh/minbar/internal/constants"
	"github.com/otabekh/minbar/internal/domain"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.Store.CountUsers()
	if err != nil {
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	active, err := h.Store.CountActiveToday()
	if err != nil {
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	songs, err := h.Store.CountSongs()
	if err != nil {
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, domain.Stats{
		TotalUsers:  total,
		ActiveToday: active,
		TotalSongs:  songs,
	})
}

func (h *Handler) ListPerformers(w http.ResponseWriter, r *http.Request) {
	performers, err := h.Store.ListPerformers()
	if err != nil {
		http.Error(w, "failed to list performers", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, performers)
}

func (h *Handler) ListTracks(w http.ResponseWriter, r *http.Request) {
	performerID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid performer id", http.StatusBadRequest)
		return
	}
	if _, err := h.Store.GetPerformer(performerID); err != nil {
		http.Error(w, "performer not found", http.StatusNotFound)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = constants.MaxTrackPosition
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	tracks, err := h.Store.ListTracks(performerID, limit, offset)
	if err != nil {
		http.Error(w, "failed to list tracks", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, tracks)
}

// PlayTrack resolves one recitation by performer and position and hands
// back the durable media handle the gateway replays to the user.
func (h *Handler) PlayTrack(w http.ResponseWriter, r *http.Request) {
	performerID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid performer id", http.StatusBadRequest)
		return
	}
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil || position < 1 || position > constants.MaxTrackPosition {
		http.Error(w, "invalid track position", http.StatusBadRequest)
		return
	}

	handle, err := h.Store.GetTrackHandle(performerID, position)
	if err != nil {
		http.Error(w, "track not found", http.StatusNotFound)
		return
	}
	if trackID, err := h.Store.FindTrackID(performerID, position); err == nil {
		h.Feature.RecordTrackPlay(trackID)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"position": position,
		"file_id":  handle,
	})
}

// GetUserProfile returns the stored profile, favorites counts excluded.
func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.Store.GetUser(userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var body struct {
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Store.UpsertUser(userID, body.Username, body.FirstName); err != nil {
		http.Error(w, "failed to save user", http.StatusInternalServerError)
		return
	}
	if err := h.Store.RecordActivity(userID); err != nil {
		h.Log.Warn("failed to record activity", "user_id", userID, "error", err)
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"user_id": userID})
}

func (h *Handler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	lang, err := domain.ParseLanguage(chi.URLParam(r, "lang"))
	if err != nil {
		http.Error(w, "unknown language", http.StatusBadRequest)
		return
	}

	if err := h.Store.SetLanguage(userID, lang); err != nil {
		http.Error(w, "failed to save language", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"language": string(lang)})
}

func (h *Handler) ToggleFavoriteTrack(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	trackID, err := pathID(r, "trackID")
	if err != nil {
		http.Error(w, "invalid track id", http.StatusBadRequest)
		return
	}

	nowFavorite, err := h.Feature.ToggleFavoriteTrack(userID, trackID)
	if err != nil {
		http.Error(w, "failed to toggle favorite", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"favorite": nowFavorite})
}

func (h *Handler) FavoriteTracks(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	tracks, err := h.Feature.FavoriteTracks(userID)
	if err != nil {
		http.Error(w, "failed to list favorites", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, tracks)
}

// DailyTrack serves today's featured track, falling back to a random
// pick when nothing is pinned.
func (h *Handler) DailyTrack(w http.ResponseWriter, r *http.Request) {
	track, featured, err := h.Feature.TrackOfDay()
	if err != nil {
		http.Error(w, "failed to load daily track", http.StatusInternalServerError)
		return
	}
	if !featured {
		track, err = h.Feature.RandomTrack()
		if err != nil {
			http.Error(w, "no tracks available", http.StatusNotFound)
			return
		}
	}
	h.Feature.RecordTrackPlay(track.ID)
	h.writeJSON(w, http.StatusOK, map[string]any{"track": track, "featured": featured})
}

// callerID reads the operator identity asserted by the deployment's
// reverse proxy. The HTTP surface is not reachable from the public
// network.
func callerID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-Operator-Id"), 10, 64)
	return id
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *Handler) SetDailyTrack(w http.ResponseWriter, r *http.Request) {
	trackID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid track id", http.StatusBadRequest)
		return
	}

	if err := h.Feature.SetTrackOfDay(callerID(r), trackID); err != nil {
		var authErr *domain.AuthorizationError
		if errors.As(err, &authErr) {
			http.Error(w, "not authorized", http.StatusForbidden)
			return
		}
		http.Error(w, "failed to pin track", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"track_id": trackID})
}

func (h *Handler) SetDailySong(w http.ResponseWriter, r *http.Request) {
	songID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid song id", http.StatusBadRequest)
		return
	}

	if err := h.Feature.SetSongOfDay(callerID(r), songID); err != nil {
		var authErr *domain.AuthorizationError
		if errors.As(err, &authErr) {
			http.Error(w, "not authorized", http.StatusForbidden)
			return
		}
		http.Error(w, "failed to pin song", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"song_id": songID})
}
