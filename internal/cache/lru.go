package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is the in-process store for generated schedules. The mortgage
// service keys it with MortgageParams.Key, so two requests for the same loan
// on the same start date share one []core.Installment. Entries leave the
// cache when their TTL passes or when the cache is full and they are the
// least recently read.
type LRUCache[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	index    map[string]*list.Element
	recency  *list.List // front is most recently used
	now      func() time.Time
}

type entry[T any] struct {
	key     string
	value   T
	expires time.Time
}

// NewLRUCache returns a cache holding at most capacity entries for ttl each.
// A capacity below one is raised to one.
func NewLRUCache[T any](capacity int, ttl time.Duration) *LRUCache[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache[T]{
		capacity: capacity,
		ttl:      ttl,
		index:    make(map[string]*list.Element, capacity),
		recency:  list.New(),
		now:      time.Now,
	}
}

// Get returns the value for key if it is present and not expired. A hit
// marks the entry as most recently used; an expired entry is dropped.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.index[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if e.expired(c.now()) {
		c.drop(elem)
		return zero, false
	}
	c.recency.MoveToFront(elem)
	return e.value, true
}

// Set stores value under key with a fresh TTL.
func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value, expires: c.now().Add(c.ttl)}
	if elem, ok := c.index[key]; ok {
		elem.Value = e
		c.recency.MoveToFront(elem)
		return
	}
	c.index[key] = c.recency.PushFront(e)
	for c.recency.Len() > c.capacity {
		c.drop(c.recency.Back())
	}
}

// Delete removes key if present.
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		c.drop(elem)
	}
}

// CleanExpired drops every expired entry and reports how many went.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	// prev is read before drop unlinks elem.
	for elem := c.recency.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*entry[T]).expired(now) {
			c.drop(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Size returns the number of entries, expired ones included until they
// are read or cleaned.
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *LRUCache[T]) drop(elem *list.Element) {
	delete(c.index, elem.Value.(*entry[T]).key)
	c.recency.Remove(elem)
}

func (e *entry[T]) expired(now time.Time) bool {
	return now.After(e.expires)
}
