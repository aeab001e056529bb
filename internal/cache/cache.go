package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
	Delete(key string)
	Clear()
}

type Item[V any] struct {
	Key        string
	Value      V
	Expiration time.Time
}

// EvictFunc is called outside the cache lock for every entry that leaves the
// cache through expiry, capacity pressure, Delete or Clear.
type EvictFunc[V any] func(key string, value V)

// LRUCache is a capacity-bounded LRU whose entries expire ttl after their
// last access.
type LRUCache[V any] struct {
	capacity  int
	items     map[string]*list.Element
	evictList *list.List
	mu        sync.Mutex
	ttl       time.Duration
	onEvict   EvictFunc[V]
	now       func() time.Time
}

func New[V any](capacity int, ttl time.Duration) *LRUCache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache[V]{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
		ttl:       ttl,
		now:       time.Now,
	}
}

// OnEvict registers fn and returns the cache for chaining.
func (c *LRUCache[V]) OnEvict(fn EvictFunc[V]) *LRUCache[V] {
	c.onEvict = fn
	return c
}

func (c *LRUCache[V]) Get(key string) (V, bool) {
	var zero V
	var evicted []*Item[V]

	c.mu.Lock()
	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}
	item := elem.Value.(*Item[V])
	if c.now().After(item.Expiration) {
		evicted = append(evicted, c.removeElement(elem))
		c.mu.Unlock()
		c.notify(evicted)
		return zero, false
	}
	item.Expiration = c.now().Add(c.ttl)
	c.evictList.MoveToFront(elem)
	c.mu.Unlock()

	return item.Value, true
}

// GetOrCreate returns the live value for key, building and storing one with
// create when it is missing or expired.
func (c *LRUCache[V]) GetOrCreate(key string, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}

	c.mu.Lock()
	if elem, ok := c.items[key]; ok {
		item := elem.Value.(*Item[V])
		item.Expiration = c.now().Add(c.ttl)
		c.evictList.MoveToFront(elem)
		c.mu.Unlock()
		return item.Value
	}
	v := create()
	evicted := c.insertLocked(key, v)
	c.mu.Unlock()

	c.notify(evicted)
	return v
}

func (c *LRUCache[V]) Set(key string, value V) {
	c.mu.Lock()
	var evicted []*Item[V]
	if elem, ok := c.items[key]; ok {
		item := elem.Value.(*Item[V])
		item.Value = value
		item.Expiration = c.now().Add(c.ttl)
		c.evictList.MoveToFront(elem)
	} else {
		evicted = c.insertLocked(key, value)
	}
	c.mu.Unlock()

	c.notify(evicted)
}

func (c *LRUCache[V]) Delete(key string) {
	c.mu.Lock()
	var evicted []*Item[V]
	if elem, ok := c.items[key]; ok {
		evicted = append(evicted, c.removeElement(elem))
	}
	c.mu.Unlock()

	c.notify(evicted)
}

func (c *LRUCache[V]) Clear() {
	c.mu.Lock()
	evicted := make([]*Item[V], 0, len(c.items))
	for elem := c.evictList.Front(); elem != nil; elem = elem.Next() {
		evicted = append(evicted, elem.Value.(*Item[V]))
	}
	c.items = make(map[string]*list.Element)
	c.evictList.Init()
	c.mu.Unlock()

	c.notify(evicted)
}

func (c *LRUCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *LRUCache[V]) insertLocked(key string, value V) []*Item[V] {
	item := &Item[V]{
		Key:        key,
		Value:      value,
		Expiration: c.now().Add(c.ttl),
	}
	c.items[key] = c.evictList.PushFront(item)

	var evicted []*Item[V]
	for c.evictList.Len() > c.capacity {
		evicted = append(evicted, c.removeElement(c.evictList.Back()))
	}
	return evicted
}

func (c *LRUCache[V]) removeElement(elem *list.Element) *Item[V] {
	c.evictList.Remove(elem)
	item := elem.Value.(*Item[V])
	delete(c.items, item.Key)
	return item
}

func (c *LRUCache[V]) notify(items []*Item[V]) {
	if c.onEvict == nil {
		return
	}
	for _, item := range items {
		c.onEvict(item.Key, item.Value)
	}
}

func (c *LRUCache[V]) CleanExpired() {
	c.mu.Lock()
	now := c.now()
	var evicted []*Item[V]
	for elem := c.evictList.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*Item[V]).Expiration) {
			evicted = append(evicted, c.removeElement(elem))
		}
		elem = prev
	}
	c.mu.Unlock()

	c.notify(evicted)
}

func (c *LRUCache[V]) StartCleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.CleanExpired()
			case <-ctx.Done():
				return
			}
		}
	}()
}
