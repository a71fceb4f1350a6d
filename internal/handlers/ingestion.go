package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/otabekh/minbar/internal/constants"
	"github.com/otabekh/minbar/internal/ingest"
	"github.com/otabekh/minbar/internal/reference"
)

// ingestTimeout bounds one background ingestion run, pacing pauses
// included.
const ingestTimeout = 2 * time.Hour

func (h *Handler) StartBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.Operator.Require(callerID(r)); err != nil {
		http.Error(w, "not authorized", http.StatusForbidden)
		return
	}
	performerID, err := pathID(r, "performerID")
	if err != nil {
		http.Error(w, "invalid performer id", http.StatusBadRequest)
		return
	}
	if _, err := h.Store.GetPerformer(performerID); err != nil {
		http.Error(w, "performer not found", http.StatusNotFound)
		return
	}

	b := ingest.NewBatch(performerID, 0)
	h.Sessions.StartBatch(h.Operator.ID, b)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"batch_id":      b.ID,
		"next_position": b.NextPosition(),
	})
}

func (h *Handler) StageBatchItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Operator.Require(callerID(r)); err != nil {
		http.Error(w, "not authorized", http.StatusForbidden)
		return
	}
	b := h.Sessions.Batch(h.Operator.ID)
	if b == nil {
		http.Error(w, "no batch in progress", http.StatusConflict)
		return
	}

	var body struct {
		Handle string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Handle == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	position, full, err := b.Stage(body.Handle)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"position":      position,
		"full":          full,
		"next_position": b.NextPosition(),
	})
}

// FinishBatch commits the pending batch in the background and reports
// the summary to the operator's chat when done.
func (h *Handler) FinishBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.Operator.Require(callerID(r)); err != nil {
		http.Error(w, "not authorized", http.StatusForbidden)
		return
	}
	b := h.Sessions.TakeBatch(h.Operator.ID)
	if b == nil {
		http.Error(w, "no batch in progress", http.StatusConflict)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()

		summary, err := h.Committer.Commit(ctx, b)
		if err != nil {
			h.Log.Error("batch commit failed", "batch_id", b.ID, "error", err)
			h.notifyOperator(fmt.Sprintf("Batch %s failed: %v", b.ID, err))
			return
		}
		h.notifyOperator(fmt.Sprintf(
			"Batch %s done: %d attempted, %d saved, %d failed.",
			b.ID, summary.Attempted, summary.Succeeded, summary.Failed))
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]any{
		"batch_id": b.ID,
		"staged":   b.StagedCount(),
	})
}

func (h *Handler) CancelBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.Operator.Require(callerID(r)); err != nil {
		http.Error(w, "not authorized", http.StatusForbidden)
		return
	}
	b := h.Sessions.TakeBatch(h.Operator.ID)
	if b == nil {
		http.Error(w, "no batch in progress", http.StatusConflict)
		return
	}
	b.Cancel()
	h.writeJSON(w, http.StatusOK, map[string]string{"batch_id": b.ID, "status": "cancelled"})
}

// UploadTrack relays one submitted audio for a chosen position,
// replacing whatever the catalog holds there. Unlike batch mode the
// rest of the collection stays untouched.
func (h *Handler) UploadTrack(w http.ResponseWriter, r *http.Request) {
	if err := h.Operator.Require(callerID(r)); err != nil {
		http.Error(w, "not authorized", http.StatusForbidden)
		return
	}
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
	if _, err := h.Store.GetPerformer(performerID); err != nil {
		http.Error(w, "performer not found", http.StatusNotFound)
		return
	}

	var body struct {
		Handle string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Handle == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	relayed, err := h.Host.Relay(r.Context(), body.Handle)
	if err != nil {
		h.Log.Error("track relay failed", "performer_id", performerID, "position", position, "error", err)
		http.Error(w, "failed to relay audio", http.StatusBadGateway)
		return
	}
	if err := h.Store.UpsertTrack(performerID, position, relayed.DurableHandle, reference.Names(position)); err != nil {
		http.Error(w, "failed to save track", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"position": position,
		"file_id":  relayed.DurableHandle,
	})
}

// IngestArchive spools the uploaded archive to disk and processes it
// in the background; the report lands in the report log and the
// operator's chat.
func (h *Handler) IngestArchive(w http.ResponseWriter, r *http.Request) {
	if err := h.Operator.Require(callerID(r)); err != nil {
		http.Error(w, "not authorized", http.StatusForbidden)
		return
	}
	performerID, err := pathID(r, "performerID")
	if err != nil {
		http.Error(w, "invalid performer id", http.StatusBadRequest)
		return
	}
	if _, err := h.Store.GetPerformer(performerID); err != nil {
		http.Error(w, "performer not found", http.StatusNotFound)
		return
	}

	archivePath := filepath.Join(h.Archiver.ScratchDir(), uuid.New().String()+".zip")
	out, err := os.Create(archivePath)
	if err != nil {
		http.Error(w, "failed to store archive", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(out, r.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(archivePath)
		http.Error(w, "failed to store archive", http.StatusInternalServerError)
		return
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(archivePath)
		http.Error(w, "failed to store archive", http.StatusInternalServerError)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()

		report, err := h.Archiver.IngestArchive(ctx, archivePath, performerID)
		if report != nil {
			h.Reports.Add(report)
		}
		if err != nil {
			h.Log.Error("archive ingestion failed", "performer_id", performerID, "error", err)
			h.notifyOperator(fmt.Sprintf("Archive ingestion failed: %v", err))
			return
		}
		h.notifyOperator(formatReport(report))
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]int64{"performer_id": performerID})
}

func (h *Handler) IngestReports(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.Reports.Recent())
}

func (h *Handler) notifyOperator(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := h.Sender.SendText(ctx, h.Operator.ID, text); err != nil {
		h.Log.Warn("failed to notify operator", "error", err)
	}
}

func formatReport(r *ingest.Report) string {
	msg := fmt.Sprintf("Archive ingestion %s: %d uploaded, %d skipped.", r.Status(), r.Uploaded, r.Skipped)
	if preview, overflow := r.MissingPreview(); len(preview) > 0 {
		msg += fmt.Sprintf("\nMissing positions: %v", preview)
		if overflow > 0 {
			msg += fmt.Sprintf(" and %d more", overflow)
		}
	}
	if preview, overflow := r.ErrorPreview(); len(preview) > 0 {
		msg += "\nProblems:"
		for _, e := range preview {
			msg += "\n- " + e
		}
		if overflow > 0 {
			msg += fmt.Sprintf("\n(and %d more)", overflow)
		}
	}
	return msg
}
