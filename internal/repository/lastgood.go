// Package repository holds the process-lifetime overlay state: the last
// successfully assembled payload per slug, used to serve stale data when a
// fresh computation fails.
package repository

import (
	"sync"

	"github.com/MrChallah/cxhunt/internal/domain"
)

type OverlayStore struct {
	mu       sync.RWMutex
	lastGood map[string]domain.Record
}

func NewOverlayStore() *OverlayStore {
	return &OverlayStore{lastGood: make(map[string]domain.Record)}
}

// Record stores payload as the last known good overlay for slug,
// overwriting any previous entry. Entries never expire.
func (s *OverlayStore) Record(slug string, payload domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGood[slug] = payload
}

// Stale returns a copy of the last good payload for slug with the stale
// marker set, or false when no success has been recorded yet.
func (s *OverlayStore) Stale(slug string) (domain.Record, bool) {
	s.mu.RLock()
	payload, ok := s.lastGood[slug]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	out := payload.Clone()
	out["stale"] = true
	return out, true
}
