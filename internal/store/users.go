package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/otabekh/minbar/internal/domain"
)

// UpsertUser records first contact or refreshes the profile. A fresh
// user is created with language NULL; updates never touch language,
// only the user's own explicit choice does (SetLanguage).
func (db *DB) UpsertUser(id int64, username, firstName string) error {
	_, err := db.Exec(`
		INSERT INTO users (user_id, username, first_name, last_active)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_active = CURRENT_TIMESTAMP`,
		id, username, firstName)
	return storeErr("upsert user", err)
}

func (db *DB) GetUser(id int64) (*domain.User, error) {
	var u domain.User
	err := db.Get(&u, "SELECT * FROM users WHERE user_id = ?", id)
	if err != nil {
		return nil, storeErr("get user", err)
	}
	return &u, nil
}

// RecordActivity bumps today's action counter for the user. The upsert
// is a single statement so concurrent calls never lose increments.
func (db *DB) RecordActivity(userID int64) error {
	today := time.Now().Format("2006-01-02")
	_, err := db.Exec(`
		INSERT INTO daily_activity (user_id, activity_date, actions)
		VALUES (?, ?, 1)
		ON CONFLICT(user_id, activity_date) DO UPDATE SET actions = actions + 1`,
		userID, today)
	return storeErr("record activity", err)
}

// GetLanguage reports the user's chosen language. The second return is
// false while the user has not picked one (or does not exist yet), so
// "unset" stays distinguishable from every concrete language.
func (db *DB) GetLanguage(userID int64) (domain.Language, bool, error) {
	var lang sql.NullString
	err := db.Get(&lang, "SELECT language FROM users WHERE user_id = ?", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("get language", err)
	}
	if !lang.Valid || lang.String == "" {
		return "", false, nil
	}
	parsed, perr := domain.ParseLanguage(lang.String)
	if perr != nil {
		return "", false, nil
	}
	return parsed, true, nil
}

func (db *DB) SetLanguage(userID int64, lang domain.Language) error {
	_, err := db.Exec("UPDATE users SET language = ? WHERE user_id = ?", string(lang), userID)
	return storeErr("set language", err)
}

func (db *DB) ListUsers() ([]*domain.User, error) {
	var users []*domain.User
	err := db.Select(&users, "SELECT * FROM users ORDER BY registered_at DESC")
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

// SearchUsers matches display name, handle, or exact numeric id.
func (db *DB) SearchUsers(query string) ([]*domain.User, error) {
	idArg := int64(-1)
	if id, ok := numericQuery(query); ok {
		idArg = id
	}
	like := "%" + query + "%"

	var users []*domain.User
	err := db.Select(&users, `
		SELECT * FROM users
		WHERE first_name LIKE ? OR username LIKE ? OR user_id = ?
		LIMIT 20`,
		like, like, idArg)
	if err != nil {
		return nil, storeErr("search users", err)
	}
	return users, nil
}

func (db *DB) CountUsers() (int, error) {
	var count int
	err := db.Get(&count, "SELECT COUNT(*) FROM users")
	return count, storeErr("count users", err)
}

// CountActiveToday reports how many distinct users acted today.
func (db *DB) CountActiveToday() (int, error) {
	today := time.Now().Format("2006-01-02")
	var count int
	err := db.Get(&count,
		"SELECT COUNT(DISTINCT user_id) FROM daily_activity WHERE activity_date = ?", today)
	return count, storeErr("count active today", err)
}

// ActivityCount returns the user's action counter for today.
func (db *DB) ActivityCount(userID int64) (int, error) {
	today := time.Now().Format("2006-01-02")
	var count int
	err := db.Get(&count,
		"SELECT COALESCE(SUM(actions), 0) FROM daily_activity WHERE user_id = ? AND activity_date = ?",
		userID, today)
	return count, storeErr("activity count", err)
}
