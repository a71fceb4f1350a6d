package store

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/otabekh/minbar/internal/domain"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		if cErr := db.Close(); cErr != nil {
			t.Logf("db.Close error: %v", cErr)
		}
	})
	return db
}

func addTestPerformer(t *testing.T, db *DB) int64 {
	t.Helper()
	id, err := db.AddPerformer("photo.jpg", domain.Localized{
		AR: "القارئ", UZ: "Qori", RU: "Чтец", EN: "Reciter",
	})
	if err != nil {
		t.Fatalf("AddPerformer failed: %v", err)
	}
	return id
}

func TestDB_Users(t *testing.T) {
	db := setupTestDB(t)

	// First contact creates the user with language unset
	if err := db.UpsertUser(100, "abdullah", "Abdullah"); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	u, err := db.GetUser(100)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u.FirstName != "Abdullah" {
		t.Errorf("Expected first name 'Abdullah', got %s", u.FirstName)
	}
	if u.Language != nil {
		t.Errorf("Expected unset language for fresh user, got %v", *u.Language)
	}

	lang, ok, err := db.GetLanguage(100)
	if err != nil {
		t.Fatalf("GetLanguage failed: %v", err)
	}
	if ok {
		t.Errorf("Expected unset language, got %s", lang)
	}

	// Explicit choice sets it
	if err := db.SetLanguage(100, domain.LangRU); err != nil {
		t.Fatalf("SetLanguage failed: %v", err)
	}
	lang, ok, err = db.GetLanguage(100)
	if err != nil {
		t.Fatalf("GetLanguage failed: %v", err)
	}
	if !ok || lang != domain.LangRU {
		t.Errorf("Expected ru, got %s (set=%v)", lang, ok)
	}

	// Profile refresh must not revert the language
	if err := db.UpsertUser(100, "abdullah2", "Abdullah B."); err != nil {
		t.Fatalf("UpsertUser update failed: %v", err)
	}
	lang, ok, _ = db.GetLanguage(100)
	if !ok || lang != domain.LangRU {
		t.Errorf("Language reverted by profile refresh: got %s (set=%v)", lang, ok)
	}
	u, _ = db.GetUser(100)
	if u.FirstName != "Abdullah B." {
		t.Errorf("Expected updated first name, got %s", u.FirstName)
	}

	// Unknown user reads as unset, not an error
	_, ok, err = db.GetLanguage(999)
	if err != nil {
		t.Errorf("GetLanguage for unknown user failed: %v", err)
	}
	if ok {
		t.Error("Expected unset language for unknown user")
	}
}

func TestDB_SearchUsers(t *testing.T) {
	db := setupTestDB(t)

	users := []struct {
		id       int64
		username string
		name     string
	}{
		{1, "ahmad", "Ahmad"},
		{2, "yusuf_k", "Yusuf"},
		{3, "", "Fatima"},
	}
	for _, u := range users {
		if err := db.UpsertUser(u.id, u.username, u.name); err != nil {
			t.Fatalf("UpsertUser failed: %v", err)
		}
	}

	byName, err := db.SearchUsers("Yus")
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != 2 {
		t.Errorf("Expected user 2 by name prefix, got %v", byName)
	}

	byID, err := db.SearchUsers("3")
	if err != nil {
		t.Fatalf("SearchUsers by id failed: %v", err)
	}
	if len(byID) != 1 || byID[0].ID != 3 {
		t.Errorf("Expected user 3 by id, got %v", byID)
	}
}

func TestDB_RecordActivityConcurrent(t *testing.T) {
	db := setupTestDB(t)

	if err := db.UpsertUser(7, "u", "U"); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	// High enough that the pool opens extra connections; every one of
	// them must carry the busy timeout or increments get lost.
	const n = 200
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- db.RecordActivity(7)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("RecordActivity failed: %v", err)
		}
	}

	count, err := db.ActivityCount(7)
	if err != nil {
		t.Fatalf("ActivityCount failed: %v", err)
	}
	if count != n {
		t.Errorf("Expected counter %d after %d concurrent increments, got %d", n, n, count)
	}

	active, err := db.CountActiveToday()
	if err != nil {
		t.Fatalf("CountActiveToday failed: %v", err)
	}
	if active != 1 {
		t.Errorf("Expected 1 active user today, got %d", active)
	}
}

func TestDB_Tracks(t *testing.T) {
	db := setupTestDB(t)
	performerID := addTestPerformer(t, db)

	names := domain.Localized{AR: "الفاتحة", UZ: "Fotiha", RU: "Аль-Фатиха", EN: "Al-Fatiha"}
	if err := db.UpsertTrack(performerID, 1, "file_1", names); err != nil {
		t.Fatalf("UpsertTrack failed: %v", err)
	}

	handle, err := db.GetTrackHandle(performerID, 1)
	if err != nil {
		t.Fatalf("GetTrackHandle failed: %v", err)
	}
	if handle != "file_1" {
		t.Errorf("Expected handle file_1, got %s", handle)
	}

	// Replace-on-conflict for the same slot
	names2 := domain.Localized{AR: "الفاتحة", UZ: "Fotiha suras", RU: "Фатиха", EN: "The Opening"}
	if err := db.UpsertTrack(performerID, 1, "file_1b", names2); err != nil {
		t.Fatalf("UpsertTrack replace failed: %v", err)
	}

	tracks, err := db.ListTracks(performerID, 10, 0)
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("Expected exactly 1 row for the slot after replace, got %d", len(tracks))
	}
	if tracks[0].FileID != "file_1b" {
		t.Errorf("Expected replaced handle file_1b, got %s", tracks[0].FileID)
	}
	if tracks[0].NameEN != "The Opening" {
		t.Errorf("Expected replaced name, got %s", tracks[0].NameEN)
	}

	// Ordering and pagination
	for pos := 2; pos <= 5; pos++ {
		if err := db.UpsertTrack(performerID, pos, "f", domain.Localized{}); err != nil {
			t.Fatalf("UpsertTrack failed: %v", err)
		}
	}
	page, err := db.ListTracks(performerID, 2, 2)
	if err != nil {
		t.Fatalf("ListTracks paged failed: %v", err)
	}
	if len(page) != 2 || page[0].Position != 3 || page[1].Position != 4 {
		t.Errorf("Expected positions [3 4], got %v", page)
	}

	id, err := db.FindTrackID(performerID, 3)
	if err != nil {
		t.Fatalf("FindTrackID failed: %v", err)
	}
	track, err := db.GetTrack(id)
	if err != nil {
		t.Fatalf("GetTrack failed: %v", err)
	}
	if track.Position != 3 {
		t.Errorf("Expected position 3, got %d", track.Position)
	}

	if err := db.IncrementTrackPlays(id); err != nil {
		t.Fatalf("IncrementTrackPlays failed: %v", err)
	}
	track, _ = db.GetTrack(id)
	if track.Plays != 1 {
		t.Errorf("Expected 1 play, got %d", track.Plays)
	}
}

func TestDB_SearchTracks(t *testing.T) {
	db := setupTestDB(t)
	performerID := addTestPerformer(t, db)

	seed := []struct {
		pos   int
		ru    string
		ar    string
		en    string
	}{
		{1, "Аль-Фатиха", "الفاتحة", "Al-Fatiha"},
		{2, "Аль-Бакара", "البقرة", "Al-Baqara"},
		{36, "Ясин", "يس", "Ya-Sin"},
	}
	for _, s := range seed {
		err := db.UpsertTrack(performerID, s.pos, "f", domain.Localized{AR: s.ar, RU: s.ru, EN: s.en})
		if err != nil {
			t.Fatalf("UpsertTrack failed: %v", err)
		}
	}

	tests := []struct {
		name      string
		query     string
		lang      domain.Language
		wantCount int
		wantPos   int
	}{
		{"primary language match", "Бакара", domain.LangRU, 1, 2},
		{"arabic fallback match", "يس", domain.LangRU, 1, 36},
		{"numeric position match", "36", domain.LangRU, 1, 36},
		{"no match", "غافر", domain.LangEN, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.SearchTracks(tt.query, tt.lang)
			if err != nil {
				t.Fatalf("SearchTracks failed: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Fatalf("Expected %d results, got %d", tt.wantCount, len(got))
			}
			if tt.wantCount > 0 && got[0].Position != tt.wantPos {
				t.Errorf("Expected position %d, got %d", tt.wantPos, got[0].Position)
			}
		})
	}
}

func TestDB_DeletePerformerCascade(t *testing.T) {
	db := setupTestDB(t)
	performerID := addTestPerformer(t, db)
	otherID := addTestPerformer(t, db)

	for pos := 1; pos <= 3; pos++ {
		if err := db.UpsertTrack(performerID, pos, "f", domain.Localized{}); err != nil {
			t.Fatalf("UpsertTrack failed: %v", err)
		}
	}
	if err := db.UpsertTrack(otherID, 1, "g", domain.Localized{}); err != nil {
		t.Fatalf("UpsertTrack failed: %v", err)
	}

	// Two users favorite tracks of the performer being deleted
	trackID, _ := db.FindTrackID(performerID, 2)
	keptTrackID, _ := db.FindTrackID(otherID, 1)
	if err := db.AddFavoriteTrack(10, trackID); err != nil {
		t.Fatalf("AddFavoriteTrack failed: %v", err)
	}
	if err := db.AddFavoriteTrack(11, trackID); err != nil {
		t.Fatalf("AddFavoriteTrack failed: %v", err)
	}
	if err := db.AddFavoriteTrack(10, keptTrackID); err != nil {
		t.Fatalf("AddFavoriteTrack failed: %v", err)
	}

	photo, err := db.DeletePerformer(performerID)
	if err != nil {
		t.Fatalf("DeletePerformer failed: %v", err)
	}
	if photo != "photo.jpg" {
		t.Errorf("Expected removed photo ref photo.jpg, got %s", photo)
	}

	tracks, _ := db.ListTracks(performerID, 200, 0)
	if len(tracks) != 0 {
		t.Errorf("Expected zero tracks after cascade, got %d", len(tracks))
	}
	if fav, _ := db.IsFavoriteTrack(10, trackID); fav {
		t.Error("Expected favorite membership removed by cascade")
	}
	if fav, _ := db.IsFavoriteTrack(11, trackID); fav {
		t.Error("Expected favorite membership removed by cascade")
	}
	if _, err := db.GetPerformer(performerID); err == nil {
		t.Error("Expected performer row gone")
	}

	// Unrelated rows survive
	if fav, _ := db.IsFavoriteTrack(10, keptTrackID); !fav {
		t.Error("Expected unrelated favorite to survive cascade")
	}
	if _, err := db.GetPerformer(otherID); err != nil {
		t.Errorf("Expected unrelated performer to survive: %v", err)
	}

	// Cascade with zero tracks and zero favorites still works
	emptyID := addTestPerformer(t, db)
	if _, err := db.DeletePerformer(emptyID); err != nil {
		t.Errorf("DeletePerformer with no tracks failed: %v", err)
	}
}

func TestDB_RandomTrack(t *testing.T) {
	db := setupTestDB(t)
	performerID := addTestPerformer(t, db)

	if _, err := db.RandomTrack(); err == nil {
		t.Error("Expected error on empty table")
	}

	for pos := 1; pos <= 10; pos++ {
		if err := db.UpsertTrack(performerID, pos, "f", domain.Localized{}); err != nil {
			t.Fatalf("UpsertTrack failed: %v", err)
		}
	}

	seen := make(map[int]bool)
	for i := 0; i < 100; i++ {
		tr, err := db.RandomTrack()
		if err != nil {
			t.Fatalf("RandomTrack failed: %v", err)
		}
		if tr == nil {
			t.Fatal("RandomTrack returned nil on non-empty table")
		}
		seen[tr.Position] = true
	}
	if len(seen) < 2 {
		t.Errorf("Random pick concentrated on a single row over 100 trials: %v", seen)
	}
}
