// Package session keeps the per visitor state of the card grid: the
// filtered view of the repositories loaded on the last page load and the
// hover state of the grid.
package session

import (
	"sync"

	"github.com/portfolio-site/showcase/popup"
	"github.com/portfolio-site/showcase/store"
)

type Session struct {
	ID string

	mu      sync.Mutex
	view    *store.View
	tracker *popup.Tracker
}

// mount replaces the state of a previous page load, its timers are stopped
func (s *Session) mount(view *store.View, tracker *popup.Tracker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tracker != nil {
		s.tracker.Close()
	}

	s.view = view
	s.tracker = tracker
}

func (s *Session) View() *store.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view
}

func (s *Session) Tracker() *popup.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tracker
}

// Close tears the session down
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tracker != nil {
		s.tracker.Close()
	}
}
