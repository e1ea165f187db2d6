package store

import (
	"sort"
	"sync"

	"github.com/fiffu/streamwatch/lib/models"
)

// Store maps streamers to their active subscriptions. A streamer is tracked
// exactly while it has at least one subscription.
type Store struct {
	mu         sync.RWMutex
	byStreamer map[string]models.Subscriptions
}

func New() *Store {
	return &Store{byStreamer: make(map[string]models.Subscriptions)}
}

// Add appends sub to its streamer's collection and reports whether the
// streamer became tracked as a result.
func (s *Store) Add(sub models.Subscription) (tracked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, ok := s.byStreamer[sub.Streamer]
	s.byStreamer[sub.Streamer] = append(subs, sub)
	return !ok
}

// RemoveAllForSubscriber drops every subscription owned by subscriber and
// returns the streamers that are no longer tracked, sorted.
func (s *Store) RemoveAllForSubscriber(subscriber string) (removed int, untracked []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for streamer := range s.byStreamer {
		n, empty := s.removeLocked(streamer, subscriber)
		removed += n
		if empty {
			untracked = append(untracked, streamer)
		}
	}
	sort.Strings(untracked)
	return removed, untracked
}

func (s *Store) RemoveForSubscriberAndStreamer(subscriber, streamer string) (removed int, untracked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(models.Canonical(streamer), subscriber)
}

func (s *Store) removeLocked(streamer, subscriber string) (int, bool) {
	subs, ok := s.byStreamer[streamer]
	if !ok {
		return 0, false
	}
	if len(subs) == 0 {
		panic("store: empty subscription list for tracked streamer " + streamer)
	}

	kept := make(models.Subscriptions, 0, len(subs))
	for _, sub := range subs {
		if !sub.OwnedBy(subscriber) {
			kept = append(kept, sub)
		}
	}

	removed := len(subs) - len(kept)
	if len(kept) == 0 {
		delete(s.byStreamer, streamer)
		return removed, true
	}
	if removed > 0 {
		s.byStreamer[streamer] = kept
	}
	return removed, false
}

// ListForSubscriber returns the subscriber's subscriptions ordered by
// streamer, then by insertion.
func (s *Store) ListForSubscriber(subscriber string) models.Subscriptions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(models.Subscriptions, 0)
	for _, streamer := range s.streamersLocked() {
		for _, sub := range s.byStreamer[streamer] {
			if sub.OwnedBy(subscriber) {
				result = append(result, sub)
			}
		}
	}
	return result
}

// Lookup returns a copy of the streamer's subscriptions, or nil when the
// streamer is not tracked.
func (s *Store) Lookup(streamer string) models.Subscriptions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs, ok := s.byStreamer[models.Canonical(streamer)]
	if !ok {
		return nil
	}
	out := make(models.Subscriptions, len(subs))
	copy(out, subs)
	return out
}

func (s *Store) IsTracked(streamer string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byStreamer[models.Canonical(streamer)]
	return ok
}

// Streamers returns the tracked streamers, sorted.
func (s *Store) Streamers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.streamersLocked()
}

func (s *Store) streamersLocked() []string {
	streamers := make([]string, 0, len(s.byStreamer))
	for streamer := range s.byStreamer {
		streamers = append(streamers, streamer)
	}
	sort.Strings(streamers)
	return streamers
}

// Len is the total number of subscriptions across all streamers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, subs := range s.byStreamer {
		n += len(subs)
	}
	return n
}
