package store

import (
	"github.com/otabekh/minbar/internal/domain"
)

// Favorite membership is keyed by the pair, so re-adding is a no-op
// and removing a non-member is a no-op. Both directions idempotent.

func (db *DB) AddFavoriteTrack(userID, trackID int64) error {
	_, err := db.Exec(
		"INSERT OR IGNORE INTO favorite_tracks (user_id, track_id) VALUES (?, ?)",
		userID, trackID)
	return storeErr("add favorite track", err)
}

func (db *DB) RemoveFavoriteTrack(userID, trackID int64) error {
	_, err := db.Exec(
		"DELETE FROM favorite_tracks WHERE user_id = ? AND track_id = ?",
		userID, trackID)
	return storeErr("remove favorite track", err)
}

func (db *DB) IsFavoriteTrack(userID, trackID int64) (bool, error) {
	var one int
	err := db.Get(&one,
		"SELECT COUNT(*) FROM favorite_tracks WHERE user_id = ? AND track_id = ?",
		userID, trackID)
	if err != nil {
		return false, storeErr("is favorite track", err)
	}
	return one > 0, nil
}

// ListFavoriteTracks returns the user's favorites, most recently
// added first.
func (db *DB) ListFavoriteTracks(userID int64) ([]*domain.Track, error) {
	var tracks []*domain.Track
	err := db.Select(&tracks, `
		SELECT t.* FROM favorite_tracks ft
		JOIN tracks t ON ft.track_id = t.track_id
		WHERE ft.user_id = ?
		ORDER BY ft.added_at DESC, t.track_id DESC`,
		userID)
	if err != nil {
		return nil, storeErr("list favorite tracks", err)
	}
	return tracks, nil
}

func (db *DB) AddFavoriteSong(userID, songID int64) error {
	_, err := db.Exec(
		"INSERT OR IGNORE INTO favorite_songs (user_id, song_id) VALUES (?, ?)",
		userID, songID)
	return storeErr("add favorite song", err)
}

func (db *DB) RemoveFavoriteSong(userID, songID int64) error {
	_, err := db.Exec(
		"DELETE FROM favorite_songs WHERE user_id = ? AND song_id = ?",
		userID, songID)
	return storeErr("remove favorite song", err)
}

func (db *DB) IsFavoriteSong(userID, songID int64) (bool, error) {
	var one int
	err := db.Get(&one,
		"SELECT COUNT(*) FROM favorite_songs WHERE user_id = ? AND song_id = ?",
		userID, songID)
	if err != nil {
		return false, storeErr("is favorite song", err)
	}
	return one > 0, nil
}

func (db *DB) ListFavoriteSongs(userID int64) ([]*domain.Song, error) {
	var songs []*domain.Song
	err := db.Select(&songs, `
		SELECT s.* FROM favorite_songs fs
		JOIN songs s ON fs.song_id = s.song_id
		WHERE fs.user_id = ?
		ORDER BY fs.added_at DESC, s.song_id DESC`,
		userID)
	if err != nil {
		return nil, storeErr("list favorite songs", err)
	}
	return songs, nil
}
