package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNoSnapshot is returned by LoadSnapshot when a document has never been
// saved.
var ErrNoSnapshot = errors.New("no snapshot for document")

// Snapshot is the persisted state of one document: the serialized operation
// log up to Seq. Replaying it against a fresh complex reproduces the document.
type Snapshot struct {
	DocID     string    `json:"docId"`
	Seq       int64     `json:"seq"`
	Payload   []byte    `json:"payload"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentInfo is the listing entry for a saved document.
type DocumentInfo struct {
	DocID     string    `json:"docId"`
	Seq       int64     `json:"seq"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists document snapshots. Implementations must be safe for
// concurrent use.
type Store interface {
	SaveSnapshot(ctx context.Context, docID string, seq int64, payload []byte) error
	LoadSnapshot(ctx context.Context, docID string) (*Snapshot, error)
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
}

// MemoryStore keeps snapshots in process memory. It is the default backend
// when no database is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*Snapshot)}
}

func (s *MemoryStore) SaveSnapshot(ctx context.Context, docID string, seq int64, payload []byte) error {
	buf := make([]byte, len(payload))
	copy(buf, payload)

	s.mu.Lock()
	s.snapshots[docID] = &Snapshot{
		DocID:     docID,
		Seq:       seq,
		Payload:   buf,
		UpdatedAt: time.Now(),
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LoadSnapshot(ctx context.Context, docID string) (*Snapshot, error) {
	s.mu.RLock()
	snap, ok := s.snapshots[docID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNoSnapshot
	}
	out := *snap
	out.Payload = make([]byte, len(snap.Payload))
	copy(out.Payload, snap.Payload)
	return &out, nil
}

func (s *MemoryStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	s.mu.RLock()
	out := make([]DocumentInfo, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, DocumentInfo{DocID: snap.DocID, Seq: snap.Seq, UpdatedAt: snap.UpdatedAt})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return out, nil
}
