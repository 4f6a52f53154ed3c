// Package lock provides keyed mutual exclusion for session-mutating
// critical sections. Locks are process-local: the persistent store stays
// the source of truth, and every decision gated by a lock re-reads the
// store after acquiring it.
package lock

import "sync"

// Category namespaces lock keys so a game's start-session lock and its
// sync-start lock are distinct instances.
type Category string

const (
	CategoryChallenge    Category = "challenge"
	CategoryStartSession Category = "start-session"
	CategorySyncStart    Category = "sync-start"
	CategoryDeploy       Category = "deploy"
	CategoryArbitrary    Category = "arbitrary"
)

type lockKey struct {
	category Category
	key      string
}

// Registry hands out one mutex per (category, key) for the process
// lifetime; locks are never evicted. Holding the lock for a key serializes
// all critical sections acquiring the same key and guarantees nothing
// about other keys.
//
// Operations needing both the start-session and the sync-start lock for a
// game must acquire start-session first.
type Registry struct {
	locks sync.Map // lockKey -> *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Get returns the lock for (category, key), creating it atomically on
// first use. Every caller passing the same pair gets the same instance.
func (r *Registry) Get(category Category, key string) *sync.Mutex {
	v, _ := r.locks.LoadOrStore(lockKey{category: category, key: key}, &sync.Mutex{})
	return v.(*sync.Mutex)
}
