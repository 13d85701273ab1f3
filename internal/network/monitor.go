// Package network provides the online/offline signal consumed by the fetch
// layer and the synchronization core.
package network

import (
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

// signal holds the current reachability value and fans changes out to
// subscribers. Slow subscribers only ever see the latest value.
type signal struct {
	mu     sync.RWMutex
	online bool
	subs   map[int]chan bool
	nextID int
}

func newSignal(online bool) *signal {
	return &signal{online: online, subs: make(map[int]chan bool)}
}

func (s *signal) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

func (s *signal) Subscribe() (<-chan bool, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan bool, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// set updates the value and reports whether it changed.
func (s *signal) set(online bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online == online {
		return false
	}
	s.online = online
	for _, ch := range s.subs {
		// Drop a pending stale value so the latest always lands
		select {
		case <-ch:
		default:
		}
		ch <- online
	}
	return true
}

// Static is a reachability signal driven by explicit Set calls.
type Static struct {
	*signal
}

var _ domain.Reachability = (*Static)(nil)

// NewStatic returns a signal fixed at online until Set is called.
func NewStatic(online bool) *Static {
	return &Static{signal: newSignal(online)}
}

// Set changes the value, notifying subscribers when it differs.
func (s *Static) Set(online bool) {
	s.set(online)
}
