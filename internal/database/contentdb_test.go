package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/contentcrawler/internal/model"
)

func openTestDB(t *testing.T) *ContentDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	})
	return db
}

func testRecord(url, title string) *model.ContentRecord {
	return &model.ContentRecord{
		URL:            url,
		Title:          title,
		Summary:        "summary of " + title,
		KeyPoints:      []string{"point one", "point two"},
		DatePublished:  "2025-06-01",
		RelevanceScore: 7,
		SearchQuery:    "test topic",
		CrawledAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOpenRequiresExistingDatabase(t *testing.T) {
	t.Parallel()

	opts := Options{CreateIfNotExists: false}
	if _, err := Open(t.TempDir(), opts); err == nil {
		t.Error("Open() without CreateIfNotExists succeeded on a missing database")
	}
}

func TestSaveAndGetContent(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	sessionID, err := db.StartSession(ctx, "test topic")
	if err != nil {
		t.Fatalf("StartSession() = %v", err)
	}
	if sessionID == "" {
		t.Fatal("StartSession() returned an empty ID")
	}

	rec := testRecord("https://example.com/a", "First Article")
	id, err := db.SaveContent(ctx, sessionID, rec)
	if err != nil {
		t.Fatalf("SaveContent() = %v", err)
	}
	if id == 0 {
		t.Error("SaveContent() returned row id 0")
	}

	got, err := db.GetContent(ctx, sessionID, rec.URL)
	if err != nil {
		t.Fatalf("GetContent() = %v", err)
	}
	if got == nil {
		t.Fatal("GetContent() = nil for a saved record")
	}
	if got.Title != rec.Title || got.RelevanceScore != rec.RelevanceScore {
		t.Errorf("round-trip mismatch: got %+v", got)
	}
	if len(got.KeyPoints) != 2 {
		t.Errorf("KeyPoints = %v, want 2 entries", got.KeyPoints)
	}

	if missing, err := db.GetContent(ctx, sessionID, "https://example.com/missing"); err != nil || missing != nil {
		t.Errorf("GetContent(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestSaveContentUpsert(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	sessionID, err := db.StartSession(ctx, "test topic")
	if err != nil {
		t.Fatalf("StartSession() = %v", err)
	}

	first := testRecord("https://example.com/a", "Original Title")
	firstID, err := db.SaveContent(ctx, sessionID, first)
	if err != nil {
		t.Fatalf("SaveContent() = %v", err)
	}

	updated := testRecord("https://example.com/a", "Updated Title")
	updatedID, err := db.SaveContent(ctx, sessionID, updated)
	if err != nil {
		t.Fatalf("SaveContent() update = %v", err)
	}
	if updatedID != firstID {
		t.Errorf("upsert changed the row id: %d then %d", firstID, updatedID)
	}

	got, err := db.GetContent(ctx, sessionID, "https://example.com/a")
	if err != nil {
		t.Fatalf("GetContent() = %v", err)
	}
	if got.Title != "Updated Title" {
		t.Errorf("Title = %q after upsert, want updated", got.Title)
	}

	records, err := db.SessionContents(ctx, sessionID)
	if err != nil {
		t.Fatalf("SessionContents() = %v", err)
	}
	if len(records) != 1 {
		t.Errorf("SessionContents() has %d records, want 1 after upsert", len(records))
	}
}

func TestSessionStorePersist(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	sessionID, err := db.StartSession(ctx, "test topic")
	if err != nil {
		t.Fatalf("StartSession() = %v", err)
	}

	store := NewSessionStore(db, sessionID)
	location, err := store.Persist(ctx, testRecord("https://example.com/a", "Stored"))
	if err != nil {
		t.Fatalf("Persist() = %v", err)
	}
	if !strings.HasPrefix(location, dbFileName+"#") {
		t.Errorf("location = %q, want %s#<rowid>", location, dbFileName)
	}
}

func TestFinishSession(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	sessionID, err := db.StartSession(ctx, "test topic")
	if err != nil {
		t.Fatalf("StartSession() = %v", err)
	}

	result := &model.CrawlResult{
		Topic:    "test topic",
		Duration: 42 * time.Second,
		Stats:    model.CrawlStats{PagesVisited: 10, ContentFound: 4},
	}
	if err := db.FinishSession(ctx, sessionID, result); err != nil {
		t.Fatalf("FinishSession() = %v", err)
	}

	if err := db.FinishSession(ctx, "no-such-session", result); err == nil {
		t.Error("FinishSession() on a missing session succeeded")
	}
}

func TestListSessions(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	first, err := db.StartSession(ctx, "topic one")
	if err != nil {
		t.Fatalf("StartSession() = %v", err)
	}
	if _, err := db.SaveContent(ctx, first, testRecord("https://example.com/a", "A")); err != nil {
		t.Fatalf("SaveContent() = %v", err)
	}
	if _, err := db.SaveContent(ctx, first, testRecord("https://example.com/b", "B")); err != nil {
		t.Fatalf("SaveContent() = %v", err)
	}
	if _, err := db.StartSession(ctx, "topic two"); err != nil {
		t.Fatalf("StartSession() = %v", err)
	}

	sessions, err := db.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("ListSessions() has %d sessions, want 2", len(sessions))
	}

	counts := make(map[string]int)
	for _, s := range sessions {
		counts[s.Topic] = s.ContentCount
	}
	if counts["topic one"] != 2 || counts["topic two"] != 0 {
		t.Errorf("content counts = %v", counts)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	loc1, err := store.Persist(ctx, testRecord("https://example.com/a", "A"))
	if err != nil {
		t.Fatalf("Persist() = %v", err)
	}
	loc2, err := store.Persist(ctx, testRecord("https://example.com/b", "B"))
	if err != nil {
		t.Fatalf("Persist() = %v", err)
	}
	if loc1 == loc2 {
		t.Errorf("locations not distinct: %q", loc1)
	}
	if got := store.Records(); len(got) != 2 || got[0].Title != "A" {
		t.Errorf("Records() = %v", got)
	}
}
