package store

const Schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY,
	username TEXT,
	first_name TEXT NOT NULL DEFAULT '',
	language TEXT,
	registered_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	last_active DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS performers (
	performer_id INTEGER PRIMARY KEY AUTOINCREMENT,
	photo TEXT NOT NULL DEFAULT '',
	name_ar TEXT NOT NULL DEFAULT '',
	name_uz TEXT NOT NULL DEFAULT '',
	name_ru TEXT NOT NULL DEFAULT '',
	name_en TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tracks (
	track_id INTEGER PRIMARY KEY AUTOINCREMENT,
	performer_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	file_id TEXT NOT NULL,
	name_ar TEXT NOT NULL DEFAULT '',
	name_uz TEXT NOT NULL DEFAULT '',
	name_ru TEXT NOT NULL DEFAULT '',
	name_en TEXT NOT NULL DEFAULT '',
	cover TEXT NOT NULL DEFAULT '',
	plays INTEGER NOT NULL DEFAULT 0,
	UNIQUE (performer_id, position)
);

CREATE INDEX IF NOT EXISTS idx_tracks_performer ON tracks(performer_id, position);

CREATE TABLE IF NOT EXISTS songs (
	song_id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id TEXT NOT NULL,
	title_ar TEXT NOT NULL DEFAULT '',
	title_uz TEXT NOT NULL DEFAULT '',
	title_ru TEXT NOT NULL DEFAULT '',
	title_en TEXT NOT NULL DEFAULT '',
	performer TEXT NOT NULL DEFAULT '',
	cover TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	plays INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS favorite_tracks (
	user_id INTEGER NOT NULL,
	track_id INTEGER NOT NULL,
	added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, track_id)
);

CREATE TABLE IF NOT EXISTS favorite_songs (
	user_id INTEGER NOT NULL,
	song_id INTEGER NOT NULL,
	added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, song_id)
);

-- One row per calendar date; track and song pointers are set
-- independently of each other.
CREATE TABLE IF NOT EXISTS daily_features (
	feature_date TEXT PRIMARY KEY,
	track_id INTEGER,
	song_id INTEGER,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS threads (
	thread_id INTEGER PRIMARY KEY AUTOINCREMENT,
	operator_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (operator_id, user_id)
);

CREATE TABLE IF NOT EXISTS messages (
	message_id INTEGER PRIMARY KEY AUTOINCREMENT,
	thread_id INTEGER NOT NULL,
	sender_id INTEGER NOT NULL,
	body TEXT NOT NULL,
	sent_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	from_operator BOOLEAN NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id, sent_at);

CREATE TABLE IF NOT EXISTS daily_activity (
	user_id INTEGER NOT NULL,
	activity_date TEXT NOT NULL,
	actions INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, activity_date)
);
`
