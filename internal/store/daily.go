package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/otabekh/minbar/internal/domain"
)

func today() string {
	return time.Now().Format("2006-01-02")
}

// FeaturedTrack returns today's featured track, or (nil, nil) when no
// track has been pinned for the current date.
func (db *DB) FeaturedTrack() (*domain.Track, error) {
	var t domain.Track
	err := db.Get(&t, `
		SELECT t.* FROM daily_features df
		JOIN tracks t ON df.track_id = t.track_id
		WHERE df.feature_date = ?`,
		today())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("featured track", err)
	}
	return &t, nil
}

// FeaturedSong returns today's featured song, or (nil, nil) when no
// song has been pinned for the current date.
func (db *DB) FeaturedSong() (*domain.Song, error) {
	var s domain.Song
	err := db.Get(&s, `
		SELECT s.* FROM daily_features df
		JOIN songs s ON df.song_id = s.song_id
		WHERE df.feature_date = ?`,
		today())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("featured song", err)
	}
	return &s, nil
}

// SetFeaturedTrack pins a track for today. Only the track pointer is
// written; a song already pinned for the same date stays untouched.
func (db *DB) SetFeaturedTrack(trackID int64) error {
	_, err := db.Exec(`
		INSERT INTO daily_features (feature_date, track_id) VALUES (?, ?)
		ON CONFLICT(feature_date) DO UPDATE SET track_id = excluded.track_id`,
		today(), trackID)
	return storeErr("set featured track", err)
}

// SetFeaturedSong pins a song for today, leaving the track pointer alone.
func (db *DB) SetFeaturedSong(songID int64) error {
	_, err := db.Exec(`
		INSERT INTO daily_features (feature_date, song_id) VALUES (?, ?)
		ON CONFLICT(feature_date) DO UPDATE SET song_id = excluded.song_id`,
		today(), songID)
	return storeErr("set featured song", err)
}

// GetDailyFeature returns the raw feature row for today, or nil.
func (db *DB) GetDailyFeature() (*domain.DailyFeature, error) {
	var df domain.DailyFeature
	err := db.Get(&df, "SELECT * FROM daily_features WHERE feature_date = ?", today())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get daily feature", err)
	}
	return &df, nil
}
