package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/nao1215/contentcrawler/internal/model"
)

// SessionStore binds a ContentDB and a session into the crawler's
// Store interface: each persisted record lands in that session.
type SessionStore struct {
	db        *ContentDB
	sessionID string
}

// NewSessionStore creates a store writing into the given session.
func NewSessionStore(db *ContentDB, sessionID string) *SessionStore {
	return &SessionStore{
		db:        db,
		sessionID: sessionID,
	}
}

// Persist saves the record and returns its storage location in
// "file#rowid" form.
func (s *SessionStore) Persist(ctx context.Context, rec *model.ContentRecord) (string, error) {
	id, err := s.db.SaveContent(ctx, s.sessionID, rec)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s#%d", dbFileName, id), nil
}

// MemoryStore keeps records in memory. Used when database persistence
// is disabled; the run summary still gets real storage locations.
type MemoryStore struct {
	mu      sync.Mutex
	records []*model.ContentRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Persist implements crawler.Store.
func (m *MemoryStore) Persist(_ context.Context, rec *model.ContentRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return fmt.Sprintf("memory#%d", len(m.records)), nil
}

// Records returns the persisted records in acceptance order.
func (m *MemoryStore) Records() []*model.ContentRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.ContentRecord, len(m.records))
	copy(out, m.records)
	return out
}
