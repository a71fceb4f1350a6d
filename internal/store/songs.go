package store

import (
	"github.com/otabekh/minbar/internal/domain"
)

func (db *DB) AddSong(fileID string, titles domain.Localized, performer, cover string) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO songs (file_id, title_ar, title_uz, title_ru, title_en, performer, cover)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fileID, titles.AR, titles.UZ, titles.RU, titles.EN, performer, cover)
	if err != nil {
		return 0, storeErr("add song", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("add song", err)
	}
	return id, nil
}

func (db *DB) GetSong(id int64) (*domain.Song, error) {
	var s domain.Song
	err := db.Get(&s, "SELECT * FROM songs WHERE song_id = ?", id)
	if err != nil {
		return nil, storeErr("get song", err)
	}
	return &s, nil
}

func (db *DB) ListSongs(limit, offset int) ([]*domain.Song, error) {
	var songs []*domain.Song
	err := db.Select(&songs, `
		SELECT * FROM songs
		ORDER BY created_at DESC, song_id DESC
		LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, storeErr("list songs", err)
	}
	return songs, nil
}

func (db *DB) CountSongs() (int, error) {
	var count int
	err := db.Get(&count, "SELECT COUNT(song_id) FROM songs")
	return count, storeErr("count songs", err)
}

func (db *DB) IncrementSongPlays(id int64) error {
	_, err := db.Exec("UPDATE songs SET plays = plays + 1 WHERE song_id = ?", id)
	return storeErr("increment song plays", err)
}

func (db *DB) RandomSong() (*domain.Song, error) {
	var s domain.Song
	err := db.Get(&s, "SELECT * FROM songs ORDER BY RANDOM() LIMIT 1")
	if err != nil {
		return nil, storeErr("random song", err)
	}
	return &s, nil
}
