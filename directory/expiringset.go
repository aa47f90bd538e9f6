package directory

import "time"

// ExpiringSet maps an identifier to a deadline (unix seconds) after which
// it is eligible for removal by Sweep. The expiration window Δ is fixed
// at construction.
type ExpiringSet struct {
	delta     int64 // seconds
	deadlines map[string]int64
}

// NewExpiringSet creates an ExpiringSet with expiration window delta.
func NewExpiringSet(delta time.Duration) *ExpiringSet {
	return &ExpiringSet{
		delta:     int64(delta.Seconds()),
		deadlines: make(map[string]int64),
	}
}

// Add sets id's deadline to now+Δ, overwriting any previous deadline.
func (s *ExpiringSet) Add(id []byte, now time.Time) {
	s.deadlines[string(id)] = now.Unix() + s.delta
}

// Remove deletes id if present. Idempotent when absent.
func (s *ExpiringSet) Remove(id []byte) {
	delete(s.deadlines, string(id))
}

// Intersect returns the subset of ids present in the set, preserving input
// order and duplicates. Membership is based purely on key presence: an
// entry whose deadline has passed but has not yet been swept is still
// reported present. Callers must sweep before relying on this for
// window-bounded semantics.
func (s *ExpiringSet) Intersect(ids [][]byte) [][]byte {
	if len(ids) == 0 {
		return nil
	}
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.deadlines[string(id)]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Sweep removes every entry with deadline <= now and returns the count
// removed.
func (s *ExpiringSet) Sweep(now time.Time) int {
	t := now.Unix()
	removed := 0
	for k, deadline := range s.deadlines {
		if deadline <= t {
			delete(s.deadlines, k)
			removed++
		}
	}
	return removed
}

// Count returns the number of entries currently stored, including any not
// yet swept past their deadline.
func (s *ExpiringSet) Count() int {
	return len(s.deadlines)
}

// Clear removes every entry.
func (s *ExpiringSet) Clear() {
	s.deadlines = make(map[string]int64)
}
