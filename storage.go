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
	"bytes"
	"sync"

	"github.com/oriumlabs/txnkv/internal/kway"
	"github.com/oriumlabs/txnkv/internal/logger"
	"github.com/oriumlabs/txnkv/types"
)

// MemoryStorage is the Percolator transactional engine: one kvTable behind
// one exclusive mutex, exposing Get, Prewrite and Commit plus the
// lock-cleanup recovery path. Every handler holds the mutex for the full
// duration of its critical section and releases it before returning.
type MemoryStorage struct {
	mu     sync.Mutex
	table  *kvTable
	oracle *TimestampOracle
	cfg    Config
}

// NewMemoryStorage builds an empty engine backed by oracle for timestamps
// and TTL decisions.
func NewMemoryStorage(oracle *TimestampOracle, cfg Config) *MemoryStorage {
	_ = cfg.validate()
	return &MemoryStorage{
		table:  newKvTable(cfg),
		oracle: oracle,
		cfg:    cfg,
	}
}

// Get reads key as of start_ts. A nil, nil return means the key has no
// committed version visible at start_ts.
func (s *MemoryStorage) Get(key types.Key, startTs types.Timestamp) ([]byte, error) {
	s.oracle.BeginRead(startTs)
	defer s.oracle.DoneRead(startTs)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table.mightHaveLock(key) {
		if _, ok := s.table.read(key, types.Lock, 0, startTs); ok {
			s.backOffMaybeCleanUpLock(startTs, key)
			return nil, newError(Backoff, key, "live lock blocks read at start_ts")
		}
	}

	writeCell, ok := s.table.read(key, types.Write, 0, startTs)
	if !ok {
		return nil, nil
	}
	return s.fetchData(key, writeCell.Value.AsTs()), nil
}

// BatchGet reads keys as of start_ts, folding each key's independent
// snapshot read into one key-ordered result via internal/kway. The mutex
// is held once for the whole batch, same as a single Get.
func (s *MemoryStorage) BatchGet(keys []types.Key, startTs types.Timestamp) ([]types.Entry, error) {
	s.oracle.BeginRead(startTs)
	defer s.oracle.DoneRead(startTs)

	s.mu.Lock()
	defer s.mu.Unlock()

	lists := make([][]types.Entry, len(keys))
	for i, key := range keys {
		if s.table.mightHaveLock(key) {
			if _, ok := s.table.read(key, types.Lock, 0, startTs); ok {
				s.backOffMaybeCleanUpLock(startTs, key)
				return nil, newError(Backoff, key, "live lock blocks batch read at start_ts")
			}
		}

		writeCell, ok := s.table.read(key, types.Write, 0, startTs)
		if !ok {
			lists[i] = []types.Entry{{Key: key, Found: false}}
			continue
		}
		lists[i] = []types.Entry{{Key: key, Value: s.fetchData(key, writeCell.Value.AsTs()), Found: true}}
	}
	return kway.Merge(lists...), nil
}

// fetchData follows a Write entry's Ts pointer to its Data row. Absence
// here means I1 was violated elsewhere and is a bug, not a recoverable
// runtime condition.
func (s *MemoryStorage) fetchData(key types.Key, dataTs types.Timestamp) []byte {
	dataCell, ok := s.table.read(key, types.Data, dataTs, dataTs)
	if !ok {
		logger.Get().Panicf("storage: Write->Data indirection broken for key %q at ts %d", key, dataTs)
	}
	return dataCell.Value.AsBytes()
}

// Prewrite reserves key for the transaction starting at start_ts, pointing
// its lock at primaryKey.
func (s *MemoryStorage) Prewrite(key types.Key, value []byte, primaryKey types.Key, startTs types.Timestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.table.read(key, types.Write, startTs, types.MaxTimestamp); ok {
		return newError(WriteConflict, key, "a write exists at or after start_ts")
	}
	if _, ok := s.table.read(key, types.Lock, 0, types.MaxTimestamp); ok {
		return newError(LockConflict, key, "a foreign lock is already held on this key")
	}

	s.table.write(key, types.Data, startTs, types.BytesValue(value))
	s.table.write(key, types.Lock, startTs, types.BytesValue(primaryKey))
	return nil
}

// Commit finalizes key at commit_ts for the transaction that started at
// start_ts. isPrimary selects whether the primary's own-lock check runs;
// secondaries trust that the primary has already linearized.
func (s *MemoryStorage) Commit(key types.Key, startTs, commitTs types.Timestamp, isPrimary bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if isPrimary {
		if _, ok := s.table.read(key, types.Lock, startTs, startTs); !ok {
			return newError(LockNotFound, key, "primary lock missing, already resolved by a concurrent cleanup")
		}
	}

	s.table.write(key, types.Write, commitTs, types.TsValue(startTs))
	s.table.erase(key, types.Lock, commitTs)
	return nil
}

// backOffMaybeCleanUpLock resolves a lock a reader found blocking it at
// start_ts. Runs under the engine mutex, called only from inside Get and
// BatchGet.
func (s *MemoryStorage) backOffMaybeCleanUpLock(startTs types.Timestamp, key types.Key) {
	lockCell, ok := s.table.read(key, types.Lock, 0, startTs)
	if !ok {
		// Another recoverer already resolved it.
		return
	}
	lockTs := lockCell.Ts
	primary := lockCell.Value.AsBytes()

	now := s.oracle.Now()
	if now <= lockTs || now-lockTs <= uint64(s.cfg.LockTTL) {
		logger.Get().Debugf("storage: lock on %q at %d within TTL, leaving for owner", key, lockTs)
		return
	}

	if _, ok := s.table.read(primary, types.Lock, lockTs, lockTs); ok {
		logger.Get().Infof("storage: rolling back transaction %d (primary %q never committed)", lockTs, primary)
		for _, k := range s.getUncommittedKeys(lockTs, primary) {
			s.table.erase(k, types.Data, lockTs)
			s.table.erase(k, types.Lock, lockTs)
		}
		return
	}

	commitTs, ok := s.getCommitTs(lockTs, primary)
	if !ok {
		logger.Get().Warnf("storage: cleanup found neither a live lock nor a commit for primary %q at start_ts %d", primary, lockTs)
		return
	}
	logger.Get().Infof("storage: rolling forward transaction %d to commit_ts %d (primary %q already committed)", lockTs, commitTs, primary)
	for _, k := range s.getUncommittedKeys(lockTs, primary) {
		s.table.write(k, types.Write, commitTs, types.TsValue(lockTs))
		s.table.erase(k, types.Lock, commitTs)
	}
}

// getUncommittedKeys scans the Lock column for every key held by the
// transaction that started at lockTs with the given primary.
func (s *MemoryStorage) getUncommittedKeys(lockTs types.Timestamp, primary []byte) []types.Key {
	var keys []types.Key
	s.table.scanLocks(func(key types.Key, ts types.Timestamp, p []byte) {
		if ts == lockTs && bytes.Equal(p, primary) {
			keys = append(keys, key)
		}
	})
	return keys
}

// getCommitTs scans the Write column for the commit timestamp the primary
// key's transaction started at lockTs landed at.
func (s *MemoryStorage) getCommitTs(lockTs types.Timestamp, primary []byte) (types.Timestamp, bool) {
	var commitTs types.Timestamp
	var found bool
	s.table.scanWrites(func(key types.Key, ct types.Timestamp, st types.Timestamp) {
		if types.EqualKeys(key, primary) && st == lockTs {
			commitTs = ct
			found = true
		}
	})
	return commitTs, found
}
