// Package memory is the in-process ledger store. It keeps a bounded working
// set of events and evicts the oldest globally once over capacity.
package memory

import (
	"context"
	"hash/fnv"
	"sync"

	"assetcore/internal/ledger"
	"assetcore/pkg/platform/sentinel"
)

// DefaultCapacity is the working-set size used when none is configured.
const DefaultCapacity = 2000

const stripes = 64

// InMemoryStore implements ledger.Store.
//
// Appends for one asset are serialized by a striped per-asset mutex; the
// global critical section only covers the map and slice updates. Tips live
// apart from the evictable events so an asset whose events were all evicted
// still links new events to its true predecessor.
type InMemoryStore struct {
	capacity int
	assets   [stripes]sync.Mutex

	mu      sync.RWMutex
	order   []string
	events  map[string]ledger.Event
	byAsset map[string][]string
	tips    map[string]ledger.Tip
	evicted int
}

type Option func(*InMemoryStore)

// WithCapacity bounds the number of retained events. Non-positive values keep
// the default.
func WithCapacity(n int) Option {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		capacity: DefaultCapacity,
		events:   make(map[string]ledger.Event),
		byAsset:  make(map[string][]string),
		tips:     make(map[string]ledger.Tip),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) stripe(assetID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(assetID))
	return &s.assets[h.Sum32()%stripes]
}

func (s *InMemoryStore) Append(ctx context.Context, assetID string, build ledger.BuildFunc) (*ledger.Event, error) {
	lock := s.stripe(assetID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var tip *ledger.Tip
	if t, ok := s.tips[assetID]; ok {
		tip = &t
	}
	s.mu.RUnlock()

	history := func(ctx context.Context) ([]ledger.Event, error) {
		return s.History(ctx, assetID)
	}
	ev, err := build(ctx, tip, history)
	if err != nil || ev == nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.EventID] = *ev
	s.order = append(s.order, ev.EventID)
	s.byAsset[assetID] = append(s.byAsset[assetID], ev.EventID)
	s.tips[assetID] = ledger.Tip{EventID: ev.EventID, EventHash: ev.EventHash}
	for len(s.order) > s.capacity {
		s.evictOldestLocked()
	}
	return ev, nil
}

// evictOldestLocked drops the globally oldest event. The oldest global event
// is also the oldest of its asset, so it is always the head of that asset's list.
func (s *InMemoryStore) evictOldestLocked() {
	id := s.order[0]
	s.order[0] = ""
	s.order = s.order[1:]

	ev, ok := s.events[id]
	if !ok {
		return
	}
	delete(s.events, id)
	s.evicted++

	ids := s.byAsset[ev.AssetID]
	if len(ids) > 0 && ids[0] == id {
		ids = ids[1:]
	}
	if len(ids) == 0 {
		delete(s.byAsset, ev.AssetID)
		return
	}
	s.byAsset[ev.AssetID] = ids
}

func (s *InMemoryStore) History(_ context.Context, assetID string) ([]ledger.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byAsset[assetID]
	out := make([]ledger.Event, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, s.events[ids[i]])
	}
	return out, nil
}

func (s *InMemoryStore) Get(_ context.Context, eventID string) (*ledger.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &ev, nil
}

func (s *InMemoryStore) Tip(_ context.Context, assetID string) (*ledger.Tip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tips[assetID]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// Len returns the number of retained events.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Evicted returns how many events have been dropped from the working set.
func (s *InMemoryStore) Evicted() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evicted
}
