// Package cache remembers recently handled keys so redelivered events can
// be acknowledged without repeating their work.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Recent is a bounded set of keys that expire after ttl. When full, the
// least recently marked key is evicted.
type Recent struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	order   *list.List
	now     func() time.Time
}

type entry struct {
	key       string
	expiresAt time.Time
}

func NewRecent(maxSize int, ttl time.Duration) *Recent {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Recent{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Seen reports whether key was marked and has not expired.
func (r *Recent) Seen(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.items[key]
	if !ok {
		return false
	}
	if r.now().After(elem.Value.(*entry).expiresAt) {
		r.remove(elem)
		return false
	}
	return true
}

// Mark records key, refreshing its expiry when already present.
func (r *Recent) Mark(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiresAt := r.now().Add(r.ttl)
	if elem, ok := r.items[key]; ok {
		elem.Value.(*entry).expiresAt = expiresAt
		r.order.MoveToFront(elem)
		return
	}

	r.items[key] = r.order.PushFront(&entry{key: key, expiresAt: expiresAt})
	if r.order.Len() > r.maxSize {
		r.remove(r.order.Back())
	}
}

// Len returns the number of keys held, expired or not.
func (r *Recent) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

func (r *Recent) remove(elem *list.Element) {
	delete(r.items, elem.Value.(*entry).key)
	r.order.Remove(elem)
}
