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
	"github.com/klauspost/compress/s2"

	"github.com/oriumlabs/txnkv/internal/filter"
	"github.com/oriumlabs/txnkv/internal/logger"
	"github.com/oriumlabs/txnkv/internal/skiplist"
	"github.com/oriumlabs/txnkv/types"
)

// kvTable is the multi-version, three-column in-memory store: Data, Lock
// and Write are each an independent ordered mapping from (key, timestamp)
// to a value. MemoryStorage is the only thing that mutates it, always
// under its own single mutex — kvTable itself has no locking of its own.
type kvTable struct {
	data  *skiplist.SkipList
	lock  *skiplist.SkipList
	write *skiplist.SkipList

	// lockFilter is a fast-path membership check over the Lock column's
	// keys: if it reports absent, Get skips straight past the lock-check
	// walk. It never forgets a key once added, so a cleared lock still
	// reports present — callers must still consult lock for ground truth.
	lockFilter *filter.Filter

	compressionThreshold int
}

func newKvTable(cfg Config) *kvTable {
	return &kvTable{
		data:                 skiplist.New(cfg.SkipListMaxLevel, cfg.SkipListP),
		lock:                 skiplist.New(cfg.SkipListMaxLevel, cfg.SkipListP),
		write:                skiplist.New(cfg.SkipListMaxLevel, cfg.SkipListP),
		lockFilter:           filter.New(cfg.LockFilterExpectedKeys, cfg.LockFilterFalsePositiveRate),
		compressionThreshold: cfg.CompressionThresholdBytes,
	}
}

func (t *kvTable) columnFor(col types.Column) *skiplist.SkipList {
	switch col {
	case types.Data:
		return t.data
	case types.Lock:
		return t.lock
	case types.Write:
		return t.write
	default:
		logger.Get().Panicf("kvtable: unknown column %v", col)
		return nil
	}
}

// read returns the entry for key in column with the largest timestamp in
// [tsStartInclusive, tsEndInclusive]. Bounds of 0 and types.MaxTimestamp
// stand in for "unbounded".
func (t *kvTable) read(key types.Key, col types.Column, tsStartInclusive, tsEndInclusive types.Timestamp) (types.Cell, bool) {
	cell, ok := t.columnFor(col).Read(key, tsStartInclusive, tsEndInclusive)
	if !ok || col != types.Data || cell.Value.Kind != types.KindBytes {
		return cell, ok
	}
	cell.Value.Bytes = t.decompress(cell.Value.Bytes)
	return cell, true
}

// write inserts or replaces the entry at (key, ts) in column.
func (t *kvTable) write(key types.Key, col types.Column, ts types.Timestamp, value types.Value) {
	if col == types.Data && value.Kind == types.KindBytes {
		value.Bytes = t.compress(value.Bytes)
	}
	t.columnFor(col).Set(key, ts, value)
	if col == types.Lock {
		t.lockFilter.Add(key)
	}
}

// erase removes every entry for key in column with timestamp <= upperTs.
// Write is immortal: erasing it is a no-op.
func (t *kvTable) erase(key types.Key, col types.Column, upperTs types.Timestamp) {
	if col == types.Write {
		return
	}
	t.columnFor(col).EraseUpTo(key, upperTs)
}

// mightHaveLock is the bloom-filter fast path for the Lock column: false
// means key definitely holds no lock at any timestamp, ever. True requires
// a real read() to confirm.
func (t *kvTable) mightHaveLock(key types.Key) bool {
	return t.lockFilter.Contains(key)
}

// scanLocks calls fn for every (key, ts, primary) entry in the Lock column.
// Used by get_uncommitted_keys during cleanup.
func (t *kvTable) scanLocks(fn func(key types.Key, ts types.Timestamp, primary []byte)) {
	for _, cell := range t.lock.All() {
		fn(cell.Key, cell.Ts, cell.Value.AsBytes())
	}
}

// scanWrites calls fn for every (key, commitTs, startTs) entry in the
// Write column. Used by get_commit_ts during cleanup.
func (t *kvTable) scanWrites(fn func(key types.Key, commitTs types.Timestamp, startTs types.Timestamp)) {
	for _, cell := range t.write.All() {
		fn(cell.Key, cell.Ts, cell.Value.AsTs())
	}
}

// Stored Data bytes carry a one-byte tag so decompress never has to guess
// from length alone whether compress applied s2 to this particular value.
const (
	_tagRaw       byte = 0
	_tagCompressed byte = 1
)

func (t *kvTable) compress(b []byte) []byte {
	if len(b) <= t.compressionThreshold {
		return append([]byte{_tagRaw}, b...)
	}
	encoded := s2.Encode(nil, b)
	return append([]byte{_tagCompressed}, encoded...)
}

func (t *kvTable) decompress(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	tag, payload := b[0], b[1:]
	if tag == _tagRaw {
		return payload
	}
	decoded, err := s2.Decode(nil, payload)
	if err != nil {
		logger.Get().Errorf("kvtable: s2 decode failed: %v", err)
		return payload
	}
	return decoded
}
