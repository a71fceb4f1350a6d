package store

import (
	"github.com/otabekh/minbar/internal/constants"
	"github.com/otabekh/minbar/internal/domain"
)

// GetOrCreateThread finds the single thread for the (operator, user)
// pair, creating it on first need. The insert tolerates the unique
// constraint so two racing first-messages both land on the same row.
func (db *DB) GetOrCreateThread(operatorID, userID int64) (int64, error) {
	_, err := db.Exec(`
		INSERT INTO threads (operator_id, user_id, is_active)
		VALUES (?, ?, 1)
		ON CONFLICT(operator_id, user_id) DO NOTHING`,
		operatorID, userID)
	if err != nil {
		return 0, storeErr("create thread", err)
	}

	var id int64
	err = db.Get(&id,
		"SELECT thread_id FROM threads WHERE operator_id = ? AND user_id = ?",
		operatorID, userID)
	if err != nil {
		return 0, storeErr("get thread", err)
	}
	return id, nil
}

func (db *DB) GetThread(id int64) (*domain.Thread, error) {
	var t domain.Thread
	err := db.Get(&t, "SELECT * FROM threads WHERE thread_id = ?", id)
	if err != nil {
		return nil, storeErr("get thread", err)
	}
	return &t, nil
}

// SetThreadActive flips the advisory active flag. It is metadata only
// and never gates message acceptance.
func (db *DB) SetThreadActive(id int64, active bool) error {
	_, err := db.Exec("UPDATE threads SET is_active = ? WHERE thread_id = ?", active, id)
	return storeErr("set thread active", err)
}

func (db *DB) AppendMessage(threadID, senderID int64, body string, fromOperator bool) error {
	_, err := db.Exec(`
		INSERT INTO messages (thread_id, sender_id, body, from_operator)
		VALUES (?, ?, ?, ?)`,
		threadID, senderID, body, fromOperator)
	return storeErr("append message", err)
}

// ListMessages returns the newest messages first. A non-positive
// limit falls back to the default history window.
func (db *DB) ListMessages(threadID int64, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	var msgs []*domain.Message
	err := db.Select(&msgs, `
		SELECT * FROM messages
		WHERE thread_id = ?
		ORDER BY sent_at DESC, message_id DESC
		LIMIT ?`,
		threadID, limit)
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	return msgs, nil
}
