package session

import (
	"sort"
	"sync"
	"time"

	"github.com/zapline/whatsapp-server/internal/client"
)

// Record is the runtime state of one session. PhoneNumber, DisplayName and
// ConnectedAt stay unset until the session reaches the connected status and
// are never cleared afterwards.
type Record struct {
	SessionID   string
	Status      Status
	ObserverID  string
	PhoneNumber string
	DisplayName string
	ConnectedAt time.Time
	Adapter     client.Adapter

	// LatestQR holds the most recent QR image data URI, cleared once the
	// session authenticates.
	LatestQR string
}

// Store is the in-memory session registry. It holds no state beyond process
// memory; readers get copies, writers go through Update.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

// Put inserts a new record. Fails if the id is already present.
func (s *Store) Put(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.SessionID]; exists {
		return &DuplicateSessionError{SessionID: rec.SessionID}
	}
	s.records[rec.SessionID] = rec
	return nil
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[id]
	if !exists {
		return Record{}, false
	}
	return *rec, true
}

// Update applies fn to the live record for id under the write lock.
func (s *Store) Update(id string, fn func(*Record)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.records[id]
	if !exists {
		return false
	}
	fn(rec)
	return true
}

// Remove deletes the record for id. Idempotent.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
}

// List returns a snapshot of all current records in creation order (session
// ids embed their creation timestamp).
func (s *Store) List() []Record {
	s.mu.RLock()
	snapshot := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		snapshot = append(snapshot, *rec)
	}
	s.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].SessionID < snapshot[j].SessionID
	})
	return snapshot
}

// Len returns the number of live records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
