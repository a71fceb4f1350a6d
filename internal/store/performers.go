package store

import (
	"github.com/otabekh/minbar/internal/domain"
)

func (db *DB) AddPerformer(photo string, names domain.Localized) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO performers (photo, name_ar, name_uz, name_ru, name_en)
		VALUES (?, ?, ?, ?, ?)`,
		photo, names.AR, names.UZ, names.RU, names.EN)
	if err != nil {
		return 0, storeErr("add performer", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("add performer", err)
	}
	return id, nil
}

func (db *DB) GetPerformer(id int64) (*domain.Performer, error) {
	var p domain.Performer
	err := db.Get(&p, "SELECT * FROM performers WHERE performer_id = ?", id)
	if err != nil {
		return nil, storeErr("get performer", err)
	}
	return &p, nil
}

func (db *DB) ListPerformers() ([]*domain.Performer, error) {
	var performers []*domain.Performer
	err := db.Select(&performers, "SELECT * FROM performers ORDER BY performer_id")
	if err != nil {
		return nil, storeErr("list performers", err)
	}
	return performers, nil
}

// DeletePerformer removes the performer, all of its tracks, and every
// favorite membership pointing at those tracks in one transaction: a
// failure anywhere leaves everything in place. Returns the photo
// reference so the caller can release the stored image.
func (db *DB) DeletePerformer(id int64) (string, error) {
	tx, err := db.Beginx()
	if err != nil {
		return "", storeErr("delete performer", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var photo string
	if err := tx.Get(&photo, "SELECT photo FROM performers WHERE performer_id = ?", id); err != nil {
		return "", storeErr("delete performer", err)
	}

	if _, err := tx.Exec(`
		DELETE FROM favorite_tracks
		WHERE track_id IN (SELECT track_id FROM tracks WHERE performer_id = ?)`, id); err != nil {
		return "", storeErr("delete performer favorites", err)
	}

	if _, err := tx.Exec("DELETE FROM tracks WHERE performer_id = ?", id); err != nil {
		return "", storeErr("delete performer tracks", err)
	}

	if _, err := tx.Exec("DELETE FROM performers WHERE performer_id = ?", id); err != nil {
		return "", storeErr("delete performer", err)
	}

	if err := tx.Commit(); err != nil {
		return "", storeErr("delete performer", err)
	}
	return photo, nil
}
