package directory

import (
	"math"
	"time"
)

// LeakyBucket rate-limits each user independently using the drain-empty
// timestamp encoding: rather than storing a current level, it stores τ(u),
// the future instant at which the bucket would next be fully empty. This
// keeps the per-user state to one scalar, makes admit/level O(1), and
// needs no periodic leak work — the level is derived lazily from the
// elapsed time to τ(u).
type LeakyBucket struct {
	capacity    int
	drainPeriod float64 // seconds
	rate        float64 // leak rate, capacity/drainPeriod, in units/second
	empty       map[string]float64
}

// NewLeakyBucket creates a bucket of the given capacity that fully drains
// over drainPeriod.
func NewLeakyBucket(capacity int, drainPeriod time.Duration) *LeakyBucket {
	period := drainPeriod.Seconds()
	return &LeakyBucket{
		capacity:    capacity,
		drainPeriod: period,
		rate:        float64(capacity) / period,
		empty:       make(map[string]float64),
	}
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// Admit implements the decision table from the bucket specification:
// requests larger than capacity always fail without mutating state;
// an absent or already-empty bucket is refilled to amount and admitted;
// otherwise the request is admitted only if it would not push the bucket
// past its capacity horizon.
func (b *LeakyBucket) Admit(user []byte, amount int, now time.Time) bool {
	if amount > b.capacity {
		return false
	}
	key := string(user)
	t := unixSeconds(now)
	tau, ok := b.empty[key]
	if !ok || tau <= t {
		b.empty[key] = t + float64(amount)/b.rate
		return true
	}
	next := tau + float64(amount)/b.rate
	if next > t+b.drainPeriod {
		return false
	}
	b.empty[key] = next
	return true
}

// Level returns the current bucket occupancy for user, in [0, capacity].
func (b *LeakyBucket) Level(user []byte, now time.Time) int {
	tau, ok := b.empty[string(user)]
	t := unixSeconds(now)
	if !ok || tau <= t {
		return 0
	}
	level := int(math.Ceil((tau - t) * b.rate))
	if level > b.capacity {
		level = b.capacity
	}
	return level
}

// Sweep drops every entry whose bucket has fully drained by now.
func (b *LeakyBucket) Sweep(now time.Time) {
	t := unixSeconds(now)
	for k, tau := range b.empty {
		if tau <= t {
			delete(b.empty, k)
		}
	}
}

// Count returns the number of stored entries, including any whose bucket
// has already drained but has not yet been removed by Sweep.
func (b *LeakyBucket) Count() int {
	return len(b.empty)
}

// Clear removes every entry.
func (b *LeakyBucket) Clear() {
	b.empty = make(map[string]float64)
}
