package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/contentcrawler/internal/config"
	"github.com/nao1215/contentcrawler/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command inspects crawl sessions stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: "List past crawl sessions and their collected content",
		Long: `History inspects crawl sessions stored in the local database.

Without arguments it lists all stored sessions, newest first. Given a
session ID it prints the content records collected during that session.

Examples:
  # List all stored sessions
  contentcrawler history

  # Show the content collected during a session
  contentcrawler history 0f2c8a6e-7c1d-4f2a-9b47-1c2d3e4f5a6b

  # Output session contents as JSON
  contentcrawler history --json 0f2c8a6e-7c1d-4f2a-9b47-1c2d3e4f5a6b`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().String("db-dir", "",
		"Directory for the SQLite database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Open read-only: history never creates a database
	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl history found (run 'contentcrawler crawl' first): %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if len(args) == 0 {
		return listSessions(ctx, db, jsonOutput)
	}
	return showSessionContents(ctx, db, args[0], jsonOutput)
}

// listSessions lists all stored crawl sessions.
func listSessions(ctx context.Context, db *database.ContentDB, jsonOutput bool) error {
	sessions, err := db.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println("No crawl sessions found in the database.")
		fmt.Println("\nUse 'contentcrawler crawl <topic>' to start a crawl.")
		return nil
	}

	fmt.Printf("Crawl sessions (%d):\n\n", len(sessions))
	fmt.Printf("  %-38s  %-20s  %-8s  %s\n", "Session ID", "Started", "Items", "Topic")
	fmt.Println("  " + strings.Repeat("-", 90))

	for _, meta := range sessions {
		fmt.Printf("  %-38s  %-20s  %-8d  %s\n",
			meta.ID,
			meta.StartedAt.Format("2006-01-02 15:04:05"),
			meta.ContentCount,
			meta.Topic,
		)
	}

	fmt.Println("\nUse 'contentcrawler history <session-id>' to see the content of a session.")

	return nil
}

// showSessionContents prints the content records collected during a session.
func showSessionContents(ctx context.Context, db *database.ContentDB, sessionID string, jsonOutput bool) error {
	records, err := db.SessionContents(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session contents: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	if len(records) == 0 {
		return errors.New("no content found for this session (check the ID with 'contentcrawler history')")
	}

	fmt.Printf("Content collected in session %s (%d items):\n\n", sessionID, len(records))

	for i, rec := range records {
		fmt.Printf("%d. %s\n", i+1, rec.Title)
		fmt.Printf("   URL:       %s\n", rec.URL)
		fmt.Printf("   Published: %s\n", rec.DatePublished)
		fmt.Printf("   Relevance: %.0f/10\n", rec.RelevanceScore)
		if rec.Summary != "" {
			fmt.Printf("   Summary:   %s\n", rec.Summary)
		}
		fmt.Println()
	}

	return nil
}
