package storage

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/drawing-board/backend/internal/models"
	"github.com/google/uuid"
)

// DefaultMaxArtifacts is how many exports are retained when no limit is configured.
const DefaultMaxArtifacts = 50

// ErrArtifactNotFound is returned for unknown or evicted artifact IDs.
var ErrArtifactNotFound = errors.New("artifact not found")

// Store defines the interface for export storage.
type Store interface {
	Save(sessionID, name, mimeType string, data []byte) (*models.Artifact, error)
	Get(id string) (*models.Artifact, error)
	Open(id string) (*models.Artifact, []byte, error)
	List(limit int) ([]*models.Artifact, error)
	Delete(id string) error
}

// MemoryStore keeps recent exports in memory. When full, saving evicts the
// oldest artifact. Nothing survives a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]*entry
	max       int
	now       func() time.Time
}

type entry struct {
	info *models.Artifact
	data []byte
}

// NewMemoryStore creates a store holding at most max artifacts.
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = DefaultMaxArtifacts
	}
	return &MemoryStore{
		artifacts: make(map[string]*entry),
		max:       max,
		now:       time.Now,
	}
}

// Save stores a copy of data.
func (s *MemoryStore) Save(sessionID, name, mimeType string, data []byte) (*models.Artifact, error) {
	if name == "" {
		return nil, fmt.Errorf("artifact name is required")
	}
	info := &models.Artifact{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Name:      name,
		MIMEType:  mimeType,
		Size:      int64(len(data)),
		CreatedAt: s.now(),
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.artifacts) >= s.max {
		s.evictOldest()
	}
	s.artifacts[info.ID] = &entry{info: info, data: buf}
	return info, nil
}

// Get retrieves artifact metadata by ID.
func (s *MemoryStore) Get(id string) (*models.Artifact, error) {
	info, _, err := s.Open(id)
	return info, err
}

// Open retrieves an artifact and its contents.
func (s *MemoryStore) Open(id string) (*models.Artifact, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.artifacts[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, id)
	}
	return e.info, e.data, nil
}

// List returns the most recent artifacts.
func (s *MemoryStore) List(limit int) ([]*models.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.Artifact, 0, len(s.artifacts))
	for _, e := range s.artifacts {
		list = append(list, e.info)
	}

	// Sort by CreatedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Delete removes an artifact.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artifacts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrArtifactNotFound, id)
	}
	delete(s.artifacts, id)
	return nil
}

// evictOldest must be called with s.mu held.
func (s *MemoryStore) evictOldest() {
	var oldest *models.Artifact
	for _, e := range s.artifacts {
		if oldest == nil || e.info.CreatedAt.Before(oldest.CreatedAt) {
			oldest = e.info
		}
	}
	if oldest != nil {
		delete(s.artifacts, oldest.ID)
	}
}

var _ Store = (*MemoryStore)(nil)
