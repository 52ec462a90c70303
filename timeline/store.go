package timeline

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Loaded is a timeline together with the ID of the load that produced it.
type Loaded struct {
	TrackID  string
	Timeline *Timeline
}

// Store holds the current timeline. Replacement swaps the whole value so a
// reader never sees a partially updated set.
type Store struct {
	current atomic.Pointer[Loaded]
}

func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Current never returns nil.
func (s *Store) Current() *Timeline {
	return s.Loaded().Timeline
}

func (s *Store) Loaded() *Loaded {
	if l := s.current.Load(); l != nil {
		return l
	}
	return &Loaded{Timeline: Empty()}
}

// Replace installs tl and returns the new track ID.
func (s *Store) Replace(tl *Timeline) string {
	if tl == nil {
		tl = Empty()
	}
	id := uuid.NewString()
	s.current.Store(&Loaded{TrackID: id, Timeline: tl})
	return id
}

func (s *Store) Reset() {
	s.current.Store(&Loaded{Timeline: Empty()})
}
