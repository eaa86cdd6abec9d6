// Copyright 2025 BINARY Members
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

package txnkv

import (
	"sync"
	"time"

	"github.com/oriumlabs/txnkv/internal/watermark"
)

// TimestampOracle hands out timestamps that strictly increase across every
// call, latching against wall-clock time stepping backward. The same value
// serves as both start_ts and commit_ts depending on which RPC asked for
// it; callers distinguish the two roles, not the oracle.
type TimestampOracle struct {
	mu   sync.Mutex
	last uint64

	// readMark tracks start timestamps of outstanding reads so
	// LowWatermark can report the oldest version any live Get might still
	// need. This is bookkeeping only — the engine performs no GC on it.
	readMark *watermark.WaterMark
}

// NewTimestampOracle starts a TimestampOracle seeded from wall-clock time.
func NewTimestampOracle() *TimestampOracle {
	return &TimestampOracle{
		last:     uint64(time.Now().UnixNano()),
		readMark: watermark.New(),
	}
}

// Stop releases the oracle's background bookkeeping goroutine.
func (o *TimestampOracle) Stop() {
	o.readMark.Stop()
}

// GetTimestamp returns a timestamp strictly greater than every timestamp
// this oracle has returned before.
func (o *TimestampOracle) GetTimestamp() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := uint64(time.Now().UnixNano())
	if now <= o.last {
		now = o.last + 1
	}
	o.last = now
	return now
}

// Now reports the oracle's notion of current time, for TTL comparisons in
// the lock-cleanup path. Unlike GetTimestamp it is not guaranteed unique or
// monotonic relative to prior calls — it is a clock reading, not a ticket.
func (o *TimestampOracle) Now() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := uint64(time.Now().UnixNano())
	if now < o.last {
		now = o.last
	}
	return now
}

// BeginRead records start_ts as an outstanding read's snapshot.
func (o *TimestampOracle) BeginRead(startTs uint64) {
	o.readMark.Begin(startTs)
}

// DoneRead retires a read begun with BeginRead at the same start_ts.
func (o *TimestampOracle) DoneRead(startTs uint64) {
	o.readMark.Done(startTs)
}

// LowWatermark returns the highest start_ts below which no read is still
// outstanding. It is a hint for a future version-GC pass, not one this
// engine performs.
func (o *TimestampOracle) LowWatermark() uint64 {
	return o.readMark.DoneUntil()
}
