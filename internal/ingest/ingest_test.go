package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/otabekh/minbar/internal/domain"
	"github.com/otabekh/minbar/internal/logger"
	"github.com/otabekh/minbar/internal/media"
	"github.com/otabekh/minbar/internal/store"
)

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// fakeHost records relays and fails on demand.
type fakeHost struct {
	relayed   []string
	failOn    map[string]bool
	durations map[string]time.Duration
}

func newFakeHost() *fakeHost {
	return &fakeHost{failOn: make(map[string]bool), durations: make(map[string]time.Duration)}
}

func (h *fakeHost) Relay(_ context.Context, handle string) (media.Relayed, error) {
	if h.failOn[handle] {
		return media.Relayed{}, &domain.RelayError{Handle: handle, Err: errors.New("host rejected item")}
	}
	h.relayed = append(h.relayed, handle)
	return media.Relayed{DurableHandle: "durable-" + handle, Duration: 3 * time.Minute}, nil
}

func (h *fakeHost) RelayFile(_ context.Context, path, filename string) (media.Relayed, error) {
	if h.failOn[filename] {
		return media.Relayed{}, &domain.RelayError{Handle: filename, Err: errors.New("host rejected item")}
	}
	h.relayed = append(h.relayed, filename)
	duration := 3 * time.Minute
	if d, ok := h.durations[filename]; ok {
		duration = d
	}
	return media.Relayed{DurableHandle: "durable-" + filename, Duration: duration}, nil
}

func TestBatchStateMachine(t *testing.T) {
	b := NewBatch(1, 3)
	if got := b.NextPosition(); got != 1 {
		t.Fatalf("NextPosition = %d, want 1", got)
	}

	for i := 1; i <= 3; i++ {
		pos, full, err := b.Stage(fmt.Sprintf("handle-%d", i))
		if err != nil {
			t.Fatalf("Stage %d: %v", i, err)
		}
		if pos != i {
			t.Errorf("staged position = %d, want %d", pos, i)
		}
		if full != (i == 3) {
			t.Errorf("full after %d = %v", i, full)
		}
	}

	if got := b.NextPosition(); got != 0 {
		t.Errorf("NextPosition after filling = %d, want 0", got)
	}
	if _, _, err := b.Stage("extra"); err == nil {
		t.Error("staging past the maximum should fail")
	}

	items, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	if b.State() != StateCompleted {
		t.Errorf("state = %s, want completed", b.State())
	}
	if _, err := b.Finish(); err == nil {
		t.Error("double Finish should fail")
	}
}

func TestBatchCancel(t *testing.T) {
	b := NewBatch(1, 10)
	if _, _, err := b.Stage("h1"); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	b.Cancel()
	if b.State() != StateCancelled {
		t.Fatalf("state = %s, want cancelled", b.State())
	}
	if b.StagedCount() != 0 {
		t.Errorf("StagedCount after cancel = %d, want 0", b.StagedCount())
	}
	if _, _, err := b.Stage("h2"); err == nil {
		t.Error("staging into a cancelled batch should fail")
	}
}

func TestCommitPartialFailure(t *testing.T) {
	db := setupTestDB(t)
	performerID, err := db.AddPerformer("photo-1", domain.Localized{AR: "أ", UZ: "P", RU: "П", EN: "P"})
	if err != nil {
		t.Fatalf("adding performer: %v", err)
	}

	host := newFakeHost()
	host.failOn["handle-3"] = true

	b := NewBatch(performerID, 5)
	for i := 1; i <= 5; i++ {
		if _, _, err := b.Stage(fmt.Sprintf("handle-%d", i)); err != nil {
			t.Fatalf("Stage %d: %v", i, err)
		}
	}

	c := NewCommitter(db, host, logger.Default())
	c.BatchPause = 0
	c.ItemDelay = 0

	summary, err := c.Commit(context.Background(), b)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if summary.Attempted != 5 || summary.Succeeded != 4 || summary.Failed != 1 {
		t.Fatalf("summary = %+v, want attempted 5 succeeded 4 failed 1", summary)
	}
	if len(summary.Failures) != 1 {
		t.Fatalf("failures = %v, want one entry", summary.Failures)
	}

	for _, pos := range []int{1, 2, 4, 5} {
		if _, err := db.FindTrackID(performerID, pos); err != nil {
			t.Errorf("position %d not persisted: %v", pos, err)
		}
	}
	if _, err := db.FindTrackID(performerID, 3); err == nil {
		t.Error("failed position 3 should not be persisted")
	}
}

func writeArchive(t *testing.T, path string, files map[string][]byte) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating entry %s: %v", name, err)
		}
		if _, err := w.Write(body); err != nil {
			t.Fatalf("writing entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing archive file: %v", err)
	}
}

func TestIngestArchiveMissingPositions(t *testing.T) {
	db := setupTestDB(t)
	performerID, err := db.AddPerformer("photo-1", domain.Localized{AR: "أ", UZ: "P", RU: "П", EN: "P"})
	if err != nil {
		t.Fatalf("adding performer: %v", err)
	}

	payload := bytes.Repeat([]byte("a"), 20000)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "upload.zip")
	writeArchive(t, archivePath, map[string][]byte{
		"001.ogg":      payload,
		"002.ogg":      payload,
		"004.ogg":      payload,
		"notes.txt":    []byte("ignore me"),
		"nodigits.ogg": payload,
	})

	host := newFakeHost()
	a := NewArchiver(db, host, logger.Default(), filepath.Join(dir, "scratch"))
	a.MaxPosition = 4

	report, err := a.IngestArchive(context.Background(), archivePath, performerID)
	if err != nil {
		t.Fatalf("IngestArchive: %v", err)
	}
	if report.Uploaded != 3 {
		t.Errorf("Uploaded = %d, want 3", report.Uploaded)
	}
	if len(report.Missing) != 1 || report.Missing[0] != 3 {
		t.Errorf("Missing = %v, want [3]", report.Missing)
	}
	if report.Status() != "warning" {
		t.Errorf("Status = %q, want warning", report.Status())
	}
	for _, pos := range []int{1, 2, 4} {
		if _, err := db.FindTrackID(performerID, pos); err != nil {
			t.Errorf("position %d not persisted: %v", pos, err)
		}
	}
	if _, err := os.Stat(archivePath); !os.IsNotExist(err) {
		t.Error("archive file was not cleaned up")
	}
}

func TestIngestArchivePerEntryIsolation(t *testing.T) {
	db := setupTestDB(t)
	performerID, err := db.AddPerformer("photo-1", domain.Localized{AR: "أ", UZ: "P", RU: "П", EN: "P"})
	if err != nil {
		t.Fatalf("adding performer: %v", err)
	}

	payload := bytes.Repeat([]byte("a"), 20000)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "upload.zip")
	writeArchive(t, archivePath, map[string][]byte{
		"001.ogg": payload,
		"002.ogg": {}, // zero-byte entry
		"003.ogg": payload,
	})

	host := newFakeHost()
	host.failOn["003.ogg"] = true

	a := NewArchiver(db, host, logger.Default(), filepath.Join(dir, "scratch"))
	a.MaxPosition = 3

	report, err := a.IngestArchive(context.Background(), archivePath, performerID)
	if err != nil {
		t.Fatalf("IngestArchive: %v", err)
	}
	if report.Uploaded != 1 || report.Skipped != 2 {
		t.Fatalf("uploaded %d skipped %d, want 1/2", report.Uploaded, report.Skipped)
	}
	if len(report.Errors) != 2 {
		t.Errorf("Errors = %v, want two entries", report.Errors)
	}
	if report.Status() != "warning" {
		t.Errorf("Status = %q, want warning", report.Status())
	}
}

func TestIngestArchiveNoValidEntries(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "upload.zip")
	writeArchive(t, archivePath, map[string][]byte{
		"readme.txt": []byte("wrong content"),
	})

	a := NewArchiver(db, newFakeHost(), logger.Default(), filepath.Join(dir, "scratch"))
	_, err := a.IngestArchive(context.Background(), archivePath, 1)
	var valErr *domain.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error type = %T, want *domain.ValidationError", err)
	}
}

func TestIngestArchiveCorrupt(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "upload.zip")
	if err := os.WriteFile(archivePath, []byte("this is not a zip archive"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	a := NewArchiver(db, newFakeHost(), logger.Default(), filepath.Join(dir, "scratch"))
	_, err := a.IngestArchive(context.Background(), archivePath, 1)
	var valErr *domain.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error type = %T, want *domain.ValidationError", err)
	}
	if _, err := os.Stat(archivePath); !os.IsNotExist(err) {
		t.Error("corrupt archive was not cleaned up")
	}
}

func TestReportPreviews(t *testing.T) {
	r := &Report{Uploaded: 1}
	for i := 0; i < 15; i++ {
		r.Errors = append(r.Errors, fmt.Sprintf("error %d", i))
		r.Missing = append(r.Missing, i+1)
	}

	preview, overflow := r.ErrorPreview()
	if len(preview) != 10 || overflow != 5 {
		t.Errorf("ErrorPreview = %d items overflow %d, want 10/5", len(preview), overflow)
	}
	missing, overflow := r.MissingPreview()
	if len(missing) != 10 || overflow != 5 {
		t.Errorf("MissingPreview = %d items overflow %d, want 10/5", len(missing), overflow)
	}
}

func TestReportLog(t *testing.T) {
	l := NewReportLog(2)
	for i := 0; i < 3; i++ {
		l.Add(&Report{Uploaded: i})
	}
	recent := l.Recent()
	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(recent))
	}
	if recent[0].Uploaded != 2 || recent[1].Uploaded != 1 {
		t.Errorf("recent = [%d %d], want newest-first [2 1]", recent[0].Uploaded, recent[1].Uploaded)
	}
}
