package store

import (
	"strconv"

	"github.com/otabekh/minbar/internal/constants"
	"github.com/otabekh/minbar/internal/domain"
)

// UpsertTrack stores a recitation at {performerID, position}. A prior
// row in the same slot is replaced wholesale, which may regenerate the
// track id; nothing guarantees id stability across re-ingestion.
func (db *DB) UpsertTrack(performerID int64, position int, fileID string, names domain.Localized) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO tracks (performer_id, position, file_id, name_ar, name_uz, name_ru, name_en)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		performerID, position, fileID, names.AR, names.UZ, names.RU, names.EN)
	return storeErr("upsert track", err)
}

func (db *DB) GetTrack(id int64) (*domain.Track, error) {
	var t domain.Track
	err := db.Get(&t, "SELECT * FROM tracks WHERE track_id = ?", id)
	if err != nil {
		return nil, storeErr("get track", err)
	}
	return &t, nil
}

func (db *DB) ListTracks(performerID int64, limit, offset int) ([]*domain.Track, error) {
	var tracks []*domain.Track
	err := db.Select(&tracks, `
		SELECT * FROM tracks
		WHERE performer_id = ?
		ORDER BY position
		LIMIT ? OFFSET ?`,
		performerID, limit, offset)
	if err != nil {
		return nil, storeErr("list tracks", err)
	}
	return tracks, nil
}

func (db *DB) GetTrackHandle(performerID int64, position int) (string, error) {
	var fileID string
	err := db.Get(&fileID,
		"SELECT file_id FROM tracks WHERE performer_id = ? AND position = ?",
		performerID, position)
	if err != nil {
		return "", storeErr("get track handle", err)
	}
	return fileID, nil
}

func (db *DB) FindTrackID(performerID int64, position int) (int64, error) {
	var id int64
	err := db.Get(&id,
		"SELECT track_id FROM tracks WHERE performer_id = ? AND position = ?",
		performerID, position)
	if err != nil {
		return 0, storeErr("find track id", err)
	}
	return id, nil
}

// nameColumn maps the enumerated language to its column. Queries never
// build column names from raw input.
func nameColumn(lang domain.Language) string {
	switch lang {
	case domain.LangAR:
		return "name_ar"
	case domain.LangUZ:
		return "name_uz"
	case domain.LangEN:
		return "name_en"
	default:
		return "name_ru"
	}
}

// SearchTracks matches the query against the caller's language name,
// the Arabic name, or the exact position when the query is numeric.
func (db *DB) SearchTracks(query string, lang domain.Language) ([]*domain.Track, error) {
	position := -1
	if n, ok := numericQuery(query); ok {
		position = int(n)
	}
	like := "%" + query + "%"

	var tracks []*domain.Track
	err := db.Select(&tracks, `
		SELECT * FROM tracks
		WHERE `+nameColumn(lang)+` LIKE ? OR name_ar LIKE ? OR position = ?
		ORDER BY position
		LIMIT ?`,
		like, like, position, constants.SearchResultLimit)
	if err != nil {
		return nil, storeErr("search tracks", err)
	}
	return tracks, nil
}

func (db *DB) IncrementTrackPlays(id int64) error {
	_, err := db.Exec("UPDATE tracks SET plays = plays + 1 WHERE track_id = ?", id)
	return storeErr("increment track plays", err)
}

// RandomTrack picks uniformly over all tracks. ORDER BY RANDOM() is
// fine at this catalog's scale; swap for rowid sampling if it grows.
func (db *DB) RandomTrack() (*domain.Track, error) {
	var t domain.Track
	err := db.Get(&t, "SELECT * FROM tracks ORDER BY RANDOM() LIMIT 1")
	if err != nil {
		return nil, storeErr("random track", err)
	}
	return &t, nil
}

// numericQuery parses a search term as a positive integer.
func numericQuery(q string) (int64, bool) {
	n, err := strconv.ParseInt(q, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
