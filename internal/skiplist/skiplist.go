// Copyright 2024 BINARY Members
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package skiplist implements the ordered structure backing a single KvTable
// column: entries are ordered lexicographically by key, then ascending by
// timestamp, which is exactly the order a column's version chain needs.
package skiplist

import (
	"math/rand"
	"time"

	"github.com/oriumlabs/txnkv/types"
)

// SkipList holds the (key, timestamp) -> value cells of one KvTable column.
//
// Level 3:       (k,3) ----------- (k,9) ----------- (m,2)
// Level 2:       (k,3) ----- (k,6) (k,9) ------ (k,19) -- (m,2)
// Level 1:       (k,3) -- (k,6) -- (k,7) -- (k,9) -- (k,12) -- (k,19) -- (m,2)
type SkipList struct {
	maxLevel int
	p        float64
	level    int
	rand     *rand.Rand
	size     int
	head     *element
}

type element struct {
	key   types.Key
	ts    types.Timestamp
	value types.Value
	next  []*element
}

// compare orders two (key, ts) cells: key ascending, then timestamp
// ascending. Ties are impossible in legal use since timestamps are unique
// per (column, key).
func compare(aKey types.Key, aTs types.Timestamp, bKey types.Key, bTs types.Timestamp) int {
	if c := types.CompareKeys(aKey, bKey); c != 0 {
		return c
	}
	switch {
	case aTs < bTs:
		return -1
	case aTs > bTs:
		return 1
	default:
		return 0
	}
}

// New builds an empty skip list with the given max level and level-up
// probability p.
func New(maxLevel int, p float64) *SkipList {
	return &SkipList{
		maxLevel: maxLevel,
		p:        p,
		level:    1,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		head: &element{
			next: make([]*element, maxLevel),
		},
	}
}

// Reset returns a fresh, empty skip list with the same parameters.
func (s *SkipList) Reset() *SkipList {
	return New(s.maxLevel, s.p)
}

// Len returns the number of cells currently stored.
func (s *SkipList) Len() int {
	return s.size
}

// Set inserts or replaces the cell at (key, ts). Replacing an existing
// (key, ts) pair is a write-after-erase and is not an error, matching the
// KvTable.write contract.
func (s *SkipList) Set(key types.Key, ts types.Timestamp, value types.Value) {
	curr := s.head
	update := make([]*element, s.maxLevel)

	for i := s.maxLevel - 1; i >= 0; i-- {
		for curr.next[i] != nil && compare(curr.next[i].key, curr.next[i].ts, key, ts) < 0 {
			curr = curr.next[i]
		}
		update[i] = curr
	}

	if next := curr.next[0]; next != nil && compare(next.key, next.ts, key, ts) == 0 {
		next.value = value
		return
	}

	level := s.randomLevel()
	if level > s.level {
		for i := s.level; i < level; i++ {
			update[i] = s.head
		}
		s.level = level
	}

	e := &element{
		key:   key,
		ts:    ts,
		value: value,
		next:  make([]*element, level),
	}
	for i := range level {
		e.next[i] = update[i].next[i]
		update[i].next[i] = e
	}
	s.size++
}

// floor returns the last element with (key, ts) <= (targetKey, targetTs), or
// nil if none exists (i.e. everything in the list sorts after the target).
func (s *SkipList) floor(targetKey types.Key, targetTs types.Timestamp) *element {
	curr := s.head
	for i := s.maxLevel - 1; i >= 0; i-- {
		for curr.next[i] != nil && compare(curr.next[i].key, curr.next[i].ts, targetKey, targetTs) <= 0 {
			curr = curr.next[i]
		}
	}
	if curr == s.head {
		return nil
	}
	return curr
}

// Read returns the cell for key with the largest timestamp in
// [tsStartInclusive, tsEndInclusive], or false if no such cell exists.
func (s *SkipList) Read(key types.Key, tsStartInclusive, tsEndInclusive types.Timestamp) (types.Cell, bool) {
	e := s.floor(key, tsEndInclusive)
	if e == nil || !types.EqualKeys(e.key, key) || e.ts < tsStartInclusive {
		return types.Cell{}, false
	}
	return types.Cell{Key: e.key, Ts: e.ts, Value: e.value}, true
}

// Get returns the exact cell at (key, ts), if present.
func (s *SkipList) Get(key types.Key, ts types.Timestamp) (types.Value, bool) {
	e := s.floor(key, ts)
	if e == nil || !types.EqualKeys(e.key, key) || e.ts != ts {
		return types.Value{}, false
	}
	return e.value, true
}

// EraseUpTo removes every cell for key with timestamp <= upperTs, returning
// the number of cells removed.
func (s *SkipList) EraseUpTo(key types.Key, upperTs types.Timestamp) int {
	removed := 0
	for {
		first := s.firstVersion(key)
		if first == nil || first.ts > upperTs {
			return removed
		}
		s.deleteExact(key, first.ts)
		removed++
	}
}

// firstVersion returns the element holding the smallest timestamp recorded
// for key, or nil if key has no cells.
func (s *SkipList) firstVersion(key types.Key) *element {
	// The predecessor of (key, 0) is the last cell strictly before key's
	// version chain; its successor is either key's first version or some
	// other, later key entirely.
	pred := s.floor(key, 0)
	var candidate *element
	if pred == nil {
		candidate = s.head.next[0]
	} else if types.EqualKeys(pred.key, key) {
		candidate = pred
	} else {
		candidate = pred.next[0]
	}
	if candidate == nil || !types.EqualKeys(candidate.key, key) {
		return nil
	}
	return candidate
}

func (s *SkipList) deleteExact(key types.Key, ts types.Timestamp) bool {
	curr := s.head
	update := make([]*element, s.maxLevel)

	for i := s.maxLevel - 1; i >= 0; i-- {
		for curr.next[i] != nil && compare(curr.next[i].key, curr.next[i].ts, key, ts) < 0 {
			curr = curr.next[i]
		}
		update[i] = curr
	}

	target := curr.next[0]
	if target == nil || !types.EqualKeys(target.key, key) || target.ts != ts {
		return false
	}

	for i := range s.level {
		if update[i].next[i] != target {
			continue
		}
		update[i].next[i] = target.next[i]
	}
	s.size--

	for s.level > 1 && s.head.next[s.level-1] == nil {
		s.level--
	}
	return true
}

// All returns every cell in the column, ordered by key then timestamp.
// Linear; acceptable for the in-memory reference engine (see the cleanup
// scans it backs).
func (s *SkipList) All() []types.Cell {
	var all []types.Cell
	for curr := s.head.next[0]; curr != nil; curr = curr.next[0] {
		all = append(all, types.Cell{Key: curr.key, Ts: curr.ts, Value: curr.value})
	}
	return all
}

// n <= maxLevel, level >= n has probability p^(n-1).
func (s *SkipList) randomLevel() int {
	level := 1
	for s.rand.Float64() < s.p && level < s.maxLevel {
		level++
	}
	return level
}
