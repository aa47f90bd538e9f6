// Package directory implements the in-memory registered-user directory
// and rate-limiting engine at the core of the contact discovery service:
// a registered-user table, two time-windowed delta sets, and two
// leaky-bucket rate limiters, coordinated under a single mutex so that
// every externally observable operation appears atomic.
package directory

import (
	"crypto/rand"
	"sync"
	"time"
)

// maxSyntheticUsers bounds CreateRandomUsers so a misbehaving test client
// cannot exhaust memory synthesizing a population.
const maxSyntheticUsers = 10_000_000

// Config fixes the parameters that govern Directory's two delta sets and
// two buckets for the lifetime of the process. Changing these at runtime
// would invalidate already-stored bucket state, since stored drain-empty
// timestamps depend on the leak rate derived from Capacity and the
// relevant period; the service does not support runtime reconfiguration.
type Config struct {
	// Delta is the expiration window Δ shared by both delta sets, and
	// also the drain period for the full-sync bucket.
	Delta time.Duration
	// IncrementalPeriod is the drain period for the incremental-sync
	// bucket (P_inc).
	IncrementalPeriod time.Duration
	// MaxContacts is the maximum contacts per sync request (C), and the
	// capacity of both buckets.
	MaxContacts int
}

// Directory composes one UserSet, two ExpiringSets (added/removed deltas),
// and two LeakyBuckets (full/incremental) behind a single mutex. A single
// coarse lock is sufficient because every operation is O(len(contacts))
// memory-bound work with no I/O inside the critical section.
type Directory struct {
	mu  sync.Mutex
	cfg Config

	users   *UserSet
	added   *ExpiringSet
	removed *ExpiringSet
	full    *LeakyBucket
	incr    *LeakyBucket
}

// New constructs a Directory from cfg.
func New(cfg Config) *Directory {
	return &Directory{
		cfg:     cfg,
		users:   NewUserSet(),
		added:   NewExpiringSet(cfg.Delta),
		removed: NewExpiringSet(cfg.Delta),
		full:    NewLeakyBucket(cfg.MaxContacts, cfg.Delta),
		incr:    NewLeakyBucket(cfg.MaxContacts, cfg.IncrementalPeriod),
	}
}

// Sweep runs the pre-operation sweep of both delta sets. Callers (the
// request handlers) run this before every externally observable
// operation, so that any subsequent intersection reflects only in-window
// events for the current clock.
func (d *Directory) Sweep(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.added.Sweep(now)
	d.removed.Sweep(now)
}

// Register binds token to user. Registration does not authenticate — it
// creates the binding — so a just-registered user is immediately removed
// from the pending-removal delta and announced via the added delta.
func (d *Directory) Register(user, token []byte, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users.Add(user, token)
	d.added.Add(user, now)
	d.removed.Remove(user)
}

// Unregister authenticates user/token, then removes the registration and
// announces the removal via the removed delta.
func (d *Directory) Unregister(user, token []byte, now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.users.IsValid(user, token) {
		return ErrAuthenticationInvalid
	}
	d.users.Remove(user)
	d.added.Remove(user)
	d.removed.Add(user, now)
	return nil
}

// FullSync authenticates user/token and, if admitted by the full-sync
// bucket, returns the subset of contacts that are registered users. An
// empty contact list short-circuits to an empty result without touching
// the bucket, so liveness can be probed for free.
func (d *Directory) FullSync(user, token []byte, contacts [][]byte, now time.Time) ([][]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.users.IsValid(user, token) {
		return nil, ErrAuthenticationInvalid
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	if len(contacts) > d.cfg.MaxContacts {
		return nil, ErrRateLimitExceeded
	}
	if !d.full.Admit(user, len(contacts), now) {
		return nil, ErrRateLimitExceeded
	}
	return d.users.Intersect(contacts), nil
}

// IncrementalSync authenticates user/token and, if admitted by the
// incremental-sync bucket, returns which of contacts were registered or
// unregistered within the delta window.
func (d *Directory) IncrementalSync(user, token []byte, contacts [][]byte, now time.Time) (added, removedIDs [][]byte, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.users.IsValid(user, token) {
		return nil, nil, ErrAuthenticationInvalid
	}
	if len(contacts) == 0 {
		return nil, nil, nil
	}
	if len(contacts) > d.cfg.MaxContacts {
		return nil, nil, ErrRateLimitExceeded
	}
	if !d.incr.Admit(user, len(contacts), now) {
		return nil, nil, ErrRateLimitExceeded
	}
	return d.added.Intersect(contacts), d.removed.Intersect(contacts), nil
}

// Reset clears all five state containers. Intended for test/debug use.
func (d *Directory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users.Clear()
	d.added.Clear()
	d.removed.Clear()
	d.full.Clear()
	d.incr.Clear()
}

// CreateRandomUsers registers n synthetic users with random 16-byte
// identifiers and tokens. Refuses if n exceeds maxSyntheticUsers.
func (d *Directory) CreateRandomUsers(n int, now time.Time) error {
	if n > maxSyntheticUsers {
		return ErrTooManyUsers
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < n; i++ {
		user := make([]byte, 16)
		token := make([]byte, 16)
		if _, err := rand.Read(user); err != nil {
			return err
		}
		if _, err := rand.Read(token); err != nil {
			return err
		}
		d.users.Add(user, token)
		d.added.Add(user, now)
		d.removed.Remove(user)
	}
	return nil
}

// AddMany registers each of ids with a freshly generated random token.
func (d *Directory) AddMany(ids [][]byte, now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range ids {
		token := make([]byte, 16)
		if _, err := rand.Read(token); err != nil {
			return err
		}
		d.users.Add(id, token)
		d.added.Add(id, now)
		d.removed.Remove(id)
	}
	return nil
}

// Stats is a point-in-time snapshot of container sizes, used by the
// metrics collector.
type Stats struct {
	RegisteredUsers        int
	DeltaAddedUsers        int
	DeltaRemovedUsers      int
	FullBucketUsers        int
	IncrementalBucketUsers int
}

// Stats returns a snapshot of current container sizes.
func (d *Directory) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		RegisteredUsers:        d.users.Count(),
		DeltaAddedUsers:        d.added.Count(),
		DeltaRemovedUsers:      d.removed.Count(),
		FullBucketUsers:        d.full.Count(),
		IncrementalBucketUsers: d.incr.Count(),
	}
}
