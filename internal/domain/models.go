package domain

import (
	"database/sql"
	"fmt"
	"time"
)

// Language is one of the four fixed interface languages.
type Language string

const (
	LangAR Language = "ar"
	LangUZ Language = "uz"
	LangRU Language = "ru"
	LangEN Language = "en"
)

// Languages lists every supported language in a stable order.
func Languages() []Language {
	return []Language{LangAR, LangUZ, LangRU, LangEN}
}

// ParseLanguage validates a raw language code.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LangAR, LangUZ, LangRU, LangEN:
		return Language(s), nil
	}
	return "", fmt.Errorf("unknown language %q", s)
}

// Localized holds one value per supported language. It replaces
// string-built column lookups with an enumerated accessor.
type Localized struct {
	AR string `json:"ar"`
	UZ string `json:"uz"`
	RU string `json:"ru"`
	EN string `json:"en"`
}

// Get returns the value for lang, falling back to Russian for
// unknown codes.
func (l Localized) Get(lang Language) string {
	switch lang {
	case LangAR:
		return l.AR
	case LangUZ:
		return l.UZ
	case LangEN:
		return l.EN
	default:
		return l.RU
	}
}

// Set assigns the value for lang.
func (l *Localized) Set(lang Language, v string) {
	switch lang {
	case LangAR:
		l.AR = v
	case LangUZ:
		l.UZ = v
	case LangEN:
		l.EN = v
	case LangRU:
		l.RU = v
	}
}

// User is an end user of the listening bot. Language stays NULL until
// the user explicitly picks one; profile refreshes never touch it.
type User struct {
	ID           int64          `json:"id" db:"user_id"`
	Username     sql.NullString `json:"username" db:"username"`
	FirstName    string         `json:"first_name" db:"first_name"`
	Language     *Language      `json:"language,omitempty" db:"language"`
	RegisteredAt time.Time      `json:"registered_at" db:"registered_at"`
	LastActive   time.Time      `json:"last_active" db:"last_active"`
}

// Performer is a reciter whose numbered tracks form a collection.
type Performer struct {
	ID        int64     `json:"id" db:"performer_id"`
	Photo     string    `json:"photo,omitempty" db:"photo"`
	NameAR    string    `json:"name_ar" db:"name_ar"`
	NameUZ    string    `json:"name_uz" db:"name_uz"`
	NameRU    string    `json:"name_ru" db:"name_ru"`
	NameEN    string    `json:"name_en" db:"name_en"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Name returns the performer's name in lang.
func (p *Performer) Name(lang Language) string {
	return Localized{AR: p.NameAR, UZ: p.NameUZ, RU: p.NameRU, EN: p.NameEN}.Get(lang)
}

// Track is one numbered recitation belonging to one performer.
// {PerformerID, Position} is unique; re-ingesting the same slot
// replaces the row and may regenerate the id.
type Track struct {
	ID          int64  `json:"id" db:"track_id"`
	PerformerID int64  `json:"performer_id" db:"performer_id"`
	Position    int    `json:"position" db:"position"`
	FileID      string `json:"file_id" db:"file_id"`
	NameAR      string `json:"name_ar" db:"name_ar"`
	NameUZ      string `json:"name_uz" db:"name_uz"`
	NameRU      string `json:"name_ru" db:"name_ru"`
	NameEN      string `json:"name_en" db:"name_en"`
	Cover       string `json:"cover,omitempty" db:"cover"`
	Plays       int64  `json:"plays" db:"plays"`
}

// Name returns the track's name in lang.
func (t *Track) Name(lang Language) string {
	return Localized{AR: t.NameAR, UZ: t.NameUZ, RU: t.NameRU, EN: t.NameEN}.Get(lang)
}

// Song is a standalone devotional audio item without performer grouping.
type Song struct {
	ID        int64     `json:"id" db:"song_id"`
	FileID    string    `json:"file_id" db:"file_id"`
	TitleAR   string    `json:"title_ar" db:"title_ar"`
	TitleUZ   string    `json:"title_uz" db:"title_uz"`
	TitleRU   string    `json:"title_ru" db:"title_ru"`
	TitleEN   string    `json:"title_en" db:"title_en"`
	Performer string    `json:"performer" db:"performer"`
	Cover     string    `json:"cover,omitempty" db:"cover"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Plays     int64     `json:"plays" db:"plays"`
}

// Title returns the song's title in lang.
func (s *Song) Title(lang Language) string {
	return Localized{AR: s.TitleAR, UZ: s.TitleUZ, RU: s.TitleRU, EN: s.TitleEN}.Get(lang)
}

// DailyFeature pins at most one track and one song to a calendar date.
// The two pointers are independently settable.
type DailyFeature struct {
	Date      string        `json:"date" db:"feature_date"`
	TrackID   sql.NullInt64 `json:"track_id" db:"track_id"`
	SongID    sql.NullInt64 `json:"song_id" db:"song_id"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// Thread is the single conversation channel between the operator and
// one user. IsActive is advisory metadata; it never gates messages.
type Thread struct {
	ID         int64     `json:"id" db:"thread_id"`
	OperatorID int64     `json:"operator_id" db:"operator_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Message is one entry in a thread's log.
type Message struct {
	ID           int64     `json:"id" db:"message_id"`
	ThreadID     int64     `json:"thread_id" db:"thread_id"`
	SenderID     int64     `json:"sender_id" db:"sender_id"`
	Body         string    `json:"body" db:"body"`
	SentAt       time.Time `json:"sent_at" db:"sent_at"`
	FromOperator bool      `json:"from_operator" db:"from_operator"`
}

// Stats aggregates user counts for the operator dashboard.
type Stats struct {
	TotalUsers  int `json:"total_users"`
	ActiveToday int `json:"active_today"`
	TotalSongs  int `json:"total_songs"`
}
