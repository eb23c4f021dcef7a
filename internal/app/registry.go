package app

import "sync"

// Registry maps room IDs to live sessions and participant identities to
// their session. It is owned by one Service instance, never a package
// global, so tests can run engines side by side.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]*Session
	byPlayer map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]*Session),
		byPlayer: make(map[string]*Session),
	}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[s.RoomID()] = s
	for _, id := range s.participantIDs() {
		r.byPlayer[id] = s
	}
}

func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, s.RoomID())
	for _, id := range s.participantIDs() {
		if r.byPlayer[id] == s {
			delete(r.byPlayer, id)
		}
	}
}

func (r *Registry) Get(roomID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.rooms[roomID]
	return s, ok
}

func (r *Registry) ByParticipant(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byPlayer[userID]
	return s, ok
}

func (r *Registry) HasParticipant(userID string) bool {
	_, ok := r.ByParticipant(userID)
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
