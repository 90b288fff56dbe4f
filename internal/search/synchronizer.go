package search

import (
	"net/url"
	"sync"
)

// Navigator replaces the current location without adding a history entry
type Navigator interface {
	Replace(target string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(target string)

func (f NavigatorFunc) Replace(target string) { f(target) }

// Synchronizer mirrors typed search input into the URL once typing pauses.
// It never talks to the server; the listing reacts to the replaced URL.
type Synchronizer struct {
	mu        sync.Mutex
	current   *url.URL
	nav       Navigator
	debouncer *Debouncer
}

// NewSynchronizer starts from the current location
func NewSynchronizer(current *url.URL, nav Navigator, debouncer *Debouncer) *Synchronizer {
	return &Synchronizer{
		current:   current,
		nav:       nav,
		debouncer: debouncer,
	}
}

// Input records a keystroke. Only the value present when the debouncer
// fires is applied.
func (s *Synchronizer) Input(term string) {
	s.debouncer.Trigger(func() {
		s.mu.Lock()
		s.current = ReplaceQuery(s.current, term)
		target := s.current.RequestURI()
		s.mu.Unlock()

		s.nav.Replace(target)
	})
}

// Current returns the location as last replaced
func (s *Synchronizer) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.RequestURI()
}

// Close drops any pending update
func (s *Synchronizer) Close() {
	s.debouncer.Stop()
}
