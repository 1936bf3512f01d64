package config

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// Listener receives the snapshots before and after an accepted update.
type Listener func(prev, next PipelineConfig)

type subscription struct {
	id uint64
	fn Listener
}

type store struct {
	mu *sync.Mutex

	current   PipelineConfig
	listeners []subscription
	nextID    uint64
}

// Store owns the current PipelineConfig. Readers get copies; writers go through Update,
// which validates the result and notifies listeners only when something changed.
type Store interface {
	// Current returns a copy of the current snapshot.
	Current() PipelineConfig

	// Update applies fn to a copy of the current snapshot and installs it if it validates.
	// Listeners run synchronously after the store is unlocked, in subscription order.
	//
	// Parameters:
	//   - fn: the mutation to apply
	//
	// Returns:
	//   - PipelineConfig: the snapshot now current
	//   - bool: whether the snapshot changed
	//   - error: a wrapped ErrInvalidConfig when the result was rejected
	Update(fn func(*PipelineConfig)) (PipelineConfig, bool, error)

	// Replace installs c wholesale, with the same validation and notification as Update.
	//
	// Parameters:
	//   - c: the new snapshot
	//
	// Returns:
	//   - bool: whether the snapshot changed
	//   - error: a wrapped ErrInvalidConfig when c was rejected
	Replace(c PipelineConfig) (bool, error)

	// Subscribe registers l for every accepted change.
	//
	// Parameters:
	//   - l: the listener
	//
	// Returns:
	//   - func(): removes the listener
	Subscribe(l Listener) func()
}

var _ Store = &store{}

// NewStore creates a store holding initial. An invalid initial snapshot is replaced by the defaults.
//
// Parameters:
//   - initial: the starting snapshot
//
// Returns:
//   - Store: the store
func NewStore(initial PipelineConfig) Store {
	if err := initial.Validate(); err != nil {
		common.Logger().Warn("config rejected, using defaults", "err", err)
		initial = DefaultPipelineConfig()
	}
	return &store{
		mu:      &sync.Mutex{},
		current: initial,
	}
}

func (s *store) Current() PipelineConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *store) Update(fn func(*PipelineConfig)) (PipelineConfig, bool, error) {
	s.mu.Lock()
	next := s.current
	fn(&next)
	s.mu.Unlock()

	changed, err := s.Replace(next)
	return s.Current(), changed, err
}

func (s *store) Replace(c PipelineConfig) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	old := s.current
	if old == c {
		s.mu.Unlock()
		return false, nil
	}
	s.current = c
	listeners := make([]Listener, 0, len(s.listeners))
	for _, sub := range s.listeners {
		listeners = append(listeners, sub.fn)
	}
	s.mu.Unlock()

	common.Logger().Info("config updated", "sao", c.SAOEnabled, "taa", c.TAAAllowed, "exposure", c.Exposure)
	for _, l := range listeners {
		l(old, c)
	}
	return true, nil
}

func (s *store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: l})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
