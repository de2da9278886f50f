package mailcache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Registry owns the per-user caches for the process lifetime. It is itself
// LRU-bounded so total memory stays bounded no matter how many distinct users
// pass through: past capacity, the longest-untouched user's cache is dropped
// wholesale.
//
// The registry lives at the dependency-injection root rather than in a
// package-level table, so tests and restarts get a fresh, discardable
// instance.
type Registry struct {
	mu           sync.Mutex
	users        *lru.Cache[string, *Cache]
	perUserLimit int
}

// NewRegistry creates a registry bounded to maxUsers distinct users, each
// holding at most perUserLimit entries. Non-positive values fall back to
// DefaultMaxSize.
func NewRegistry(maxUsers, perUserLimit int) *Registry {
	if maxUsers <= 0 {
		maxUsers = DefaultMaxSize
	}
	if perUserLimit <= 0 {
		perUserLimit = DefaultMaxSize
	}
	users, _ := lru.New[string, *Cache](maxUsers)
	return &Registry{users: users, perUserLimit: perUserLimit}
}

// ForUser returns the user's cache, creating it on first use. The get-or-create
// is atomic so concurrent requests for the same user share one instance.
func (r *Registry) ForUser(userID string) *Cache {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cache, ok := r.users.Get(userID); ok {
		return cache
	}
	cache := NewCache(userID, r.perUserLimit)
	r.users.Add(userID, cache)
	return cache
}

// Users returns the number of distinct users currently held.
func (r *Registry) Users() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users.Len()
}
