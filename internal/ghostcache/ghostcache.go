/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package ghostcache implements a bounded FIFO of recently-evicted keys.
// It never holds data, only membership, and is consulted by the adaptive
// GC threshold to tell a genuine reinsertion-after-eviction (a sign the
// cache is too small or the threshold too aggressive) apart from a key
// that was never touched again. Grounded on the original ssd_waf
// GhostCache type (ghost_cache.h/.cpp).
package ghostcache

import "container/list"

// GhostCache is a fixed-capacity FIFO set: pushing past capacity evicts
// the oldest member. Access reports membership and removes a key it
// finds; no operation moves a key within the order (it is NOT an LRU —
// insertion order alone determines eviction, matching
// the original's plain deque+set pairing).
type GhostCache struct {
	capacity int
	order    *list.List
	members  map[uint64]*list.Element
	evicted  uint64
}

// New creates a GhostCache that retains at most capacity keys. A
// capacity of 0 disables the ghost cache: Push is a no-op and Access
// always reports a miss.
func New(capacity int) *GhostCache {
	return &GhostCache{
		capacity: capacity,
		order:    list.New(),
		members:  make(map[uint64]*list.Element),
	}
}

// Push records k as freshly evicted. If k is already present, it is NOT
// moved to the back (matching the original: a ghost hit doesn't refresh
// its own recency, since it is about to be removed by the caller anyway
// via Access). If the cache is over capacity afterward, the oldest
// entries are dropped.
func (g *GhostCache) Push(k uint64) {
	if g.capacity <= 0 {
		return
	}
	if _, ok := g.members[k]; ok {
		return
	}
	el := g.order.PushBack(k)
	g.members[k] = el
	for g.order.Len() > g.capacity {
		front := g.order.Front()
		g.order.Remove(front)
		delete(g.members, front.Value.(uint64))
		g.evicted++
	}
}

// Access reports whether k is present, removing it if so (a ghost hit
// consumes the membership: the caller is expected to treat this as "this
// key was evicted and came back", a one-shot signal).
func (g *GhostCache) Access(k uint64) bool {
	el, ok := g.members[k]
	if !ok {
		return false
	}
	g.order.Remove(el)
	delete(g.members, k)
	return true
}

// Contains reports membership without consuming it.
func (g *GhostCache) Contains(k uint64) bool {
	_, ok := g.members[k]
	return ok
}

// Len returns the current number of tracked keys.
func (g *GhostCache) Len() int { return g.order.Len() }

// Capacity returns the configured maximum size.
func (g *GhostCache) Capacity() int { return g.capacity }

// EvictedCount returns the cumulative number of keys the ghost cache has
// itself dropped to stay within capacity (distinct from cache evictions).
func (g *GhostCache) EvictedCount() uint64 { return g.evicted }
