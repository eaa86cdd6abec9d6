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

// Package filter implements a murmur3-seeded bloom filter. The KvTable uses
// one instance over the Lock column so a Get that hits no lock at all never
// has to walk the skip list for the lock-presence check.
package filter

import (
	"math"
	"sync"

	"github.com/spaolacci/murmur3"
)

const _defaultP = 0.01

// Filter is a concurrency-safe bloom filter: KvTable calls Add and Contains
// while MemoryStorage's single mutex is held, but the filter doesn't assume
// that, since it may outlive the lock scope it was built under.
type Filter struct {
	mu     sync.RWMutex
	bitset []bool
	k      int
	m      int
}

// New creates a Filter sized for n expected keys at false-positive rate p.
func New(n int, p float64) *Filter {
	if n <= 0 {
		n = 1
	}
	if p <= 0 {
		p = _defaultP
	}
	// m = -(n * ln(p)) / (ln(2)^2)
	m := int(math.Ceil(-float64(n) * math.Log(p) / math.Pow(math.Log(2), 2)))
	if m < 1 {
		m = 1
	}
	// k = (m/n) * ln(2)
	k := int(math.Round((float64(m) / float64(n)) * math.Log(2)))
	if k < 1 {
		k = 1
	}

	return &Filter{
		bitset: make([]bool, m),
		k:      k,
		m:      m,
	}
}

func (f *Filter) index(key []byte, seed uint32) int {
	h := murmur3.New32WithSeed(seed)
	_, _ = h.Write(key)
	return int(h.Sum32()) % f.m
}

// Add records key as present. Unlike the Lock column itself, the filter
// never forgets a key once added, which is safe because Contains is only
// ever used as a "definitely absent" fast path, with every positive still
// verified against the real column.
func (f *Filter) Add(key []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < f.k; i++ {
		f.bitset[f.index(key, uint32(i))] = true
	}
}

// Contains reports whether key might be present. False means definitely
// absent; true means maybe present and the caller must still check the
// authoritative structure.
func (f *Filter) Contains(key []byte) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for i := 0; i < f.k; i++ {
		if !f.bitset[f.index(key, uint32(i))] {
			return false
		}
	}
	return true
}
