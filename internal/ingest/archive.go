package ingest

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/otabekh/minbar/internal/constants"
	"github.com/otabekh/minbar/internal/domain"
	"github.com/otabekh/minbar/internal/filesystem"
	"github.com/otabekh/minbar/internal/logger"
	"github.com/otabekh/minbar/internal/media"
	"github.com/otabekh/minbar/internal/reference"
	"github.com/otabekh/minbar/internal/store"
)

var positionPattern = regexp.MustCompile(`\d+`)

var allowedExtensions = map[string]bool{
	constants.ExtMP3: true,
	constants.ExtM4A: true,
	constants.ExtOGG: true,
}

// Archiver ingests a whole performer catalog from one ZIP archive.
type Archiver struct {
	store      *store.DB
	host       media.Host
	log        *logger.Logger
	scratchDir string

	// MaxPosition bounds the expected position universe. Production
	// uses the full range; tests shrink it.
	MaxPosition int
}

func NewArchiver(db *store.DB, host media.Host, log *logger.Logger, scratchDir string) *Archiver {
	return &Archiver{
		store:       db,
		host:        host,
		log:         log.WithComponent("ingest"),
		scratchDir:  scratchDir,
		MaxPosition: constants.MaxTrackPosition,
	}
}

// ScratchDir is where uploads and extractions are spooled.
func (a *Archiver) ScratchDir() string {
	return a.scratchDir
}

type archiveEntry struct {
	position int
	path     string
}

// IngestArchive validates, extracts, and ingests every recognizable
// audio entry of the archive at archivePath. The archive file and all
// extracted scratch data are removed before returning, on every path.
// A *domain.ValidationError means nothing was ingested; per-entry
// problems are recorded in the report and never abort the run.
func (a *Archiver) IngestArchive(ctx context.Context, archivePath string, performerID int64) (*Report, error) {
	defer func() {
		_ = os.Remove(archivePath)
	}()

	report := &Report{PerformerID: performerID, StartedAt: time.Now()}
	log := a.log.WithBatch(uuid.New().String(), performerID)

	if err := verifyArchive(archivePath); err != nil {
		return report, &domain.ValidationError{Reason: fmt.Sprintf("archive failed integrity check: %v", err)}
	}

	scratch := filepath.Join(a.scratchDir, uuid.New().String())
	if err := filesystem.EnsureDir(scratch); err != nil {
		return report, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(scratch)
	}()

	entries, err := a.extract(archivePath, scratch)
	if err != nil {
		return report, err
	}
	if len(entries) == 0 {
		return report, &domain.ValidationError{Reason: "archive contains no usable audio entries"}
	}

	report.Missing = missingPositions(entries, a.MaxPosition)
	if len(report.Missing) > 0 {
		log.Warn("archive has position gaps", "missing", len(report.Missing))
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].position < entries[j].position })

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		a.ingestEntry(ctx, entry, performerID, report, log)
	}

	log.Info("archive ingestion finished",
		"uploaded", report.Uploaded,
		"skipped", report.Skipped,
		"status", report.Status())
	return report, nil
}

func (a *Archiver) ingestEntry(ctx context.Context, entry archiveEntry, performerID int64, report *Report, log *logger.Logger) {
	info, err := os.Stat(entry.path)
	if err != nil {
		report.Skipped++
		report.Errors = append(report.Errors, fmt.Sprintf("position %d: %v", entry.position, err))
		return
	}
	if info.Size() == 0 {
		report.Skipped++
		report.Errors = append(report.Errors, fmt.Sprintf("position %d: file is empty", entry.position))
		return
	}
	if info.Size() < constants.SuspectFileSize {
		report.Warnings = append(report.Warnings, fmt.Sprintf("position %d: file is only %d bytes", entry.position, info.Size()))
	}
	if strings.EqualFold(filepath.Ext(entry.path), constants.ExtMP3) {
		if _, err := media.ProbeMP3(entry.path); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("position %d: unreadable tag header", entry.position))
		}
	}

	relayed, err := a.host.RelayFile(ctx, entry.path, filepath.Base(entry.path))
	if err != nil {
		log.Warn("relay failed", "position", entry.position, "error", err)
		report.Skipped++
		report.Errors = append(report.Errors, fmt.Sprintf("position %d: %v", entry.position, err))
		return
	}
	if relayed.Duration < time.Second {
		report.Warnings = append(report.Warnings, fmt.Sprintf("position %d: duration %s looks wrong", entry.position, relayed.Duration))
	}

	names := reference.Names(entry.position)
	if err := a.store.UpsertTrack(performerID, entry.position, relayed.DurableHandle, names); err != nil {
		log.Error("failed to persist track", "position", entry.position, "error", err)
		report.Skipped++
		report.Errors = append(report.Errors, fmt.Sprintf("position %d: %v", entry.position, err))
		return
	}
	report.Uploaded++
}

// verifyArchive reads every entry end to end so CRC mismatches and
// truncation surface before any extraction happens.
func verifyArchive(path string) error {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = reader.Close()
	}()

	for _, f := range reader.File {
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("entry %s: %w", f.Name, err)
		}
		_, err = io.Copy(io.Discard, rc)
		closeErr := rc.Close()
		if err != nil {
			return fmt.Errorf("entry %s: %w", f.Name, err)
		}
		if closeErr != nil {
			return fmt.Errorf("entry %s: %w", f.Name, closeErr)
		}
	}
	return nil
}

func (a *Archiver) extract(archivePath, scratch string) ([]archiveEntry, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	var entries []archiveEntry
	seen := make(map[int]bool)
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filesystem.Sanitize(filepath.Base(f.Name))
		if !allowedExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		position, ok := parsePosition(name, a.MaxPosition)
		if !ok || seen[position] {
			continue
		}

		dest, ok := filesystem.SafeJoin(scratch, name)
		if !ok {
			continue
		}
		if err := extractFile(f, dest); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", name, err)
		}
		seen[position] = true
		entries = append(entries, archiveEntry{position: position, path: dest})
	}
	return entries, nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() {
		_ = rc.Close()
	}()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, constants.FilePermissions)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	_, err = io.Copy(out, rc)
	return err
}

// parsePosition takes the first run of digits in the filename as the
// track position, keeping only values inside the expected universe.
func parsePosition(name string, maxPosition int) (int, bool) {
	match := positionPattern.FindString(name)
	if match == "" {
		return 0, false
	}
	position, err := strconv.Atoi(match)
	if err != nil || position < 1 || position > maxPosition {
		return 0, false
	}
	return position, true
}

func missingPositions(entries []archiveEntry, maxPosition int) []int {
	found := make(map[int]bool, len(entries))
	for _, e := range entries {
		found[e.position] = true
	}
	var missing []int
	for p := 1; p <= maxPosition; p++ {
		if !found[p] {
			missing = append(missing, p)
		}
	}
	return missing
}
