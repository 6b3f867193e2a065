package middleware

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/common"
)

// counterEntry is one client's window state inside the bounded store.
type counterEntry struct {
	key        string
	count      int64
	expiration time.Time
}

// BoundedStore is an in-memory limiter.Store with a hard key capacity. When
// full, the oldest-inserted key is evicted, which approximates LRU closely
// enough for rate limiting while keeping eviction O(1). A periodic sweep
// drops expired windows so idle keys do not occupy capacity forever.
type BoundedStore struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = oldest inserted

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewBoundedStore creates a BoundedStore holding at most capacity keys and
// starts its sweep loop.
func NewBoundedStore(capacity int, sweepInterval time.Duration) *BoundedStore {
	if capacity <= 0 {
		capacity = 1
	}
	s := &BoundedStore{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		stopChan: make(chan struct{}),
	}
	go s.sweepLoop(sweepInterval)
	return s
}

var _ limiter.Store = (*BoundedStore)(nil)

// Get returns the limit context for the key, counting this request.
func (s *BoundedStore) Get(ctx context.Context, key string, rate limiter.Rate) (limiter.Context, error) {
	return s.Increment(ctx, key, 1, rate)
}

// Peek returns the limit context for the key without counting a request.
func (s *BoundedStore) Peek(ctx context.Context, key string, rate limiter.Rate) (limiter.Context, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		entry := elem.Value.(*counterEntry)
		if now.Before(entry.expiration) {
			return common.GetContextFromState(now, rate, entry.expiration, entry.count), nil
		}
	}
	return common.GetContextFromState(now, rate, now.Add(rate.Period), 0), nil
}

// Reset clears the key's window.
func (s *BoundedStore) Reset(ctx context.Context, key string, rate limiter.Rate) (limiter.Context, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		s.order.Remove(elem)
		delete(s.entries, key)
	}
	return common.GetContextFromState(now, rate, now.Add(rate.Period), 0), nil
}

// Increment adds count to the key's window, creating or restarting it as
// needed, and returns the resulting limit context.
func (s *BoundedStore) Increment(ctx context.Context, key string, count int64, rate limiter.Rate) (limiter.Context, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if ok {
		entry := elem.Value.(*counterEntry)
		if now.Before(entry.expiration) {
			entry.count += count
			return common.GetContextFromState(now, rate, entry.expiration, entry.count), nil
		}
		// Window elapsed; restart it and move the key to the back of the
		// eviction order.
		entry.count = count
		entry.expiration = now.Add(rate.Period)
		s.order.MoveToBack(elem)
		return common.GetContextFromState(now, rate, entry.expiration, entry.count), nil
	}

	if len(s.entries) >= s.capacity {
		s.evictOldest()
	}

	entry := &counterEntry{
		key:        key,
		count:      count,
		expiration: now.Add(rate.Period),
	}
	s.entries[key] = s.order.PushBack(entry)
	return common.GetContextFromState(now, rate, entry.expiration, entry.count), nil
}

// Close stops the sweep loop.
func (s *BoundedStore) Close() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// Len reports how many keys the store currently tracks.
func (s *BoundedStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *BoundedStore) evictOldest() {
	front := s.order.Front()
	if front == nil {
		return
	}
	entry := front.Value.(*counterEntry)
	s.order.Remove(front)
	delete(s.entries, entry.key)
}

func (s *BoundedStore) sweepLoop(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now())
		case <-s.stopChan:
			return
		}
	}
}

func (s *BoundedStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for elem := s.order.Front(); elem != nil; {
		next := elem.Next()
		entry := elem.Value.(*counterEntry)
		if !now.Before(entry.expiration) {
			s.order.Remove(elem)
			delete(s.entries, entry.key)
		}
		elem = next
	}
}
