package store

import (
	"context"
	"sync"

	"github.com/TimeoSitruk/tupref/models"
)

// MemoryStore keeps rooms in a mutex-guarded map. State is lost on restart,
// which the engine contract explicitly allows.
//
// Rooms are cloned on the way in and out, matching the snapshot behavior
// the JSON round-trip gives the Redis and Postgres backends: a room handed
// to a caller must never alias the stored one, or a later mutation would
// race with the caller still serializing its snapshot.
type MemoryStore struct {
	rooms map[string]*models.Room
	mu    sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*models.Room),
	}
}

func (s *MemoryStore) Create(_ context.Context, id string, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[id]; exists {
		return ErrAlreadyExists
	}
	s.rooms[id] = room.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, exists := s.rooms[id]
	if !exists {
		return nil, ErrNotFound
	}
	return room.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, id string, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[id] = room.Clone()
	return nil
}
