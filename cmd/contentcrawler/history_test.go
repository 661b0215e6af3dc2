package main

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/nao1215/contentcrawler/internal/database"
	"github.com/nao1215/contentcrawler/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history [session-id]" {
			t.Errorf("expected use 'history [session-id]', got %q", cmd.Use)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has db-dir flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("db-dir") == nil {
			t.Error("expected db-dir flag")
		}
	})
}

// TestRunHistoryCmd_NoDatabase tests that history fails gracefully when
// no database exists yet.
func TestRunHistoryCmd_NoDatabase(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	cmd.SetArgs([]string{"--db-dir", t.TempDir()})

	err := cmd.Execute()
	if err == nil {
		t.Error("expected error when no database exists")
	}
	if !strings.Contains(err.Error(), "no crawl history") {
		t.Errorf("expected 'no crawl history' error, got %v", err)
	}
}

// seedHistoryDB creates a database with one session and one content record.
func seedHistoryDB(t *testing.T) (dbDir, sessionID string) {
	t.Helper()

	dbDir = t.TempDir()
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	sessionID, err = db.StartSession(ctx, "quantum computing")
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}

	store := database.NewSessionStore(db, sessionID)
	if _, err := store.Persist(ctx, &model.ContentRecord{
		URL:            "https://example.com/article",
		Title:          "Quantum Error Correction Milestone",
		Summary:        "A short summary.",
		DatePublished:  "2025-06-01",
		RelevanceScore: 8,
		SearchQuery:    "quantum computing",
	}); err != nil {
		t.Fatalf("failed to persist record: %v", err)
	}

	return dbDir, sessionID
}

// captureStdout runs fn while capturing everything written to os.Stdout.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = oldStdout

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	if fnErr != nil {
		t.Fatalf("unexpected error: %v", fnErr)
	}
	return string(out)
}

// TestRunHistoryCmd_ListSessions tests session listing.
// Not parallel because it captures os.Stdout.
func TestRunHistoryCmd_ListSessions(t *testing.T) {
	dbDir, sessionID := seedHistoryDB(t)

	output := captureStdout(t, func() error {
		cmd := NewHistoryCmd()
		cmd.SetArgs([]string{"--db-dir", dbDir})
		return cmd.Execute()
	})

	if !strings.Contains(output, "quantum computing") {
		t.Errorf("expected topic in output, got: %s", output)
	}
	if !strings.Contains(output, sessionID) {
		t.Errorf("expected session ID in output, got: %s", output)
	}
}

// TestRunHistoryCmd_SessionContents tests content listing for a session.
// Not parallel because it captures os.Stdout.
func TestRunHistoryCmd_SessionContents(t *testing.T) {
	dbDir, sessionID := seedHistoryDB(t)

	output := captureStdout(t, func() error {
		cmd := NewHistoryCmd()
		cmd.SetArgs([]string{"--db-dir", dbDir, sessionID})
		return cmd.Execute()
	})

	if !strings.Contains(output, "Quantum Error Correction Milestone") {
		t.Errorf("expected record title in output, got: %s", output)
	}
	if !strings.Contains(output, "https://example.com/article") {
		t.Errorf("expected record URL in output, got: %s", output)
	}
}

// TestRunHistoryCmd_JSONOutput tests JSON session listing.
// Not parallel because it captures os.Stdout.
func TestRunHistoryCmd_JSONOutput(t *testing.T) {
	dbDir, _ := seedHistoryDB(t)

	output := captureStdout(t, func() error {
		cmd := NewHistoryCmd()
		cmd.SetArgs([]string{"--db-dir", dbDir, "--json"})
		return cmd.Execute()
	})

	if !strings.Contains(output, "quantum computing") {
		t.Errorf("expected topic in JSON output, got: %s", output)
	}
	if !strings.HasPrefix(strings.TrimSpace(output), "[") {
		t.Errorf("expected JSON array output, got: %s", output)
	}
}
