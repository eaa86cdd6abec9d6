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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumlabs/txnkv/types"
)

func newTestStorage(t *testing.T) (*MemoryStorage, *TimestampOracle) {
	t.Helper()
	oracle := NewTimestampOracle()
	t.Cleanup(oracle.Stop)
	return NewMemoryStorage(oracle, DefaultConfig), oracle
}

// S1: single-key commit visible to a later reader.
func TestSingleKeyCommitVisibleToLaterReader(t *testing.T) {
	s, _ := newTestStorage(t)

	require.NoError(t, s.Prewrite(types.Key("x"), []byte("1"), types.Key("x"), 10))
	require.NoError(t, s.Commit(types.Key("x"), 10, 11, true))

	got, err := s.Get(types.Key("x"), 12)
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
}

// S2: a reader whose start_ts predates the commit sees nothing.
func TestReaderBelowCommitSeesNothing(t *testing.T) {
	s, _ := newTestStorage(t)

	require.NoError(t, s.Prewrite(types.Key("x"), []byte("1"), types.Key("x"), 10))
	require.NoError(t, s.Commit(types.Key("x"), 10, 11, true))

	got, err := s.Get(types.Key("x"), 9)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// S3: write conflict.
func TestPrewriteFailsOnNewerCommittedWrite(t *testing.T) {
	s, _ := newTestStorage(t)

	require.NoError(t, s.Prewrite(types.Key("x"), []byte("1"), types.Key("x"), 10))
	require.NoError(t, s.Commit(types.Key("x"), 10, 11, true))

	err := s.Prewrite(types.Key("x"), []byte("2"), types.Key("x"), 5)
	require.Error(t, err)
	assertKind(t, err, WriteConflict)
}

// S4: lock conflict.
func TestPrewriteFailsOnForeignLock(t *testing.T) {
	s, _ := newTestStorage(t)

	require.NoError(t, s.Prewrite(types.Key("y"), []byte("a"), types.Key("y"), 20))

	err := s.Prewrite(types.Key("y"), []byte("b"), types.Key("y"), 21)
	require.Error(t, err)
	assertKind(t, err, LockConflict)
}

// S5: a dead transaction's lock is rolled back after TTL.
func TestDeadTransactionLockIsRolledBack(t *testing.T) {
	cfg := DefaultConfig
	cfg.LockTTL = 10 * time.Millisecond
	oracle := NewTimestampOracle()
	t.Cleanup(oracle.Stop)
	s := NewMemoryStorage(oracle, cfg)

	require.NoError(t, s.Prewrite(types.Key("z"), []byte("q"), types.Key("z"), 30))

	time.Sleep(20 * time.Millisecond)

	_, err := s.Get(types.Key("z"), 40)
	require.Error(t, err)
	assertKind(t, err, Backoff)

	got, err := s.Get(types.Key("z"), 50)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, hasLock := s.table.read(types.Key("z"), types.Lock, 0, types.MaxTimestamp)
	assert.False(t, hasLock)
	_, hasData := s.table.read(types.Key("z"), types.Data, 0, types.MaxTimestamp)
	assert.False(t, hasData)
}

// S6: a secondary abandoned after the primary commits is rolled forward.
func TestSecondaryAbandonedAfterPrimaryCommitIsRolledForward(t *testing.T) {
	cfg := DefaultConfig
	cfg.LockTTL = 10 * time.Millisecond
	oracle := NewTimestampOracle()
	t.Cleanup(oracle.Stop)
	s := NewMemoryStorage(oracle, cfg)

	require.NoError(t, s.Prewrite(types.Key("p"), []byte("pv"), types.Key("p"), 40))
	require.NoError(t, s.Prewrite(types.Key("sec"), []byte("sv"), types.Key("p"), 40))
	require.NoError(t, s.Commit(types.Key("p"), 40, 41, true))
	// client crashes before committing "sec"

	time.Sleep(20 * time.Millisecond)

	_, err := s.Get(types.Key("sec"), 50)
	require.Error(t, err)
	assertKind(t, err, Backoff)

	got, err := s.Get(types.Key("sec"), 50)
	require.NoError(t, err)
	assert.Equal(t, []byte("sv"), got)
}

func TestCommitMissingPrimaryLockReturnsLockNotFound(t *testing.T) {
	s, _ := newTestStorage(t)

	require.NoError(t, s.Prewrite(types.Key("x"), []byte("1"), types.Key("x"), 10))
	require.NoError(t, s.Commit(types.Key("x"), 10, 11, true))

	err := s.Commit(types.Key("x"), 10, 12, true)
	require.Error(t, err)
	assertKind(t, err, LockNotFound)
}

func TestGetOfNeverWrittenKeyReturnsNil(t *testing.T) {
	s, _ := newTestStorage(t)
	got, err := s.Get(types.Key("absent"), 100)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBatchGetMergesAndOrdersByKey(t *testing.T) {
	s, _ := newTestStorage(t)

	require.NoError(t, s.Prewrite(types.Key("b"), []byte("2"), types.Key("b"), 10))
	require.NoError(t, s.Commit(types.Key("b"), 10, 11, true))
	require.NoError(t, s.Prewrite(types.Key("a"), []byte("1"), types.Key("a"), 10))
	require.NoError(t, s.Commit(types.Key("a"), 10, 11, true))

	got, err := s.BatchGet([]types.Key{types.Key("b"), types.Key("a"), types.Key("missing")}, 12)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.Key("a"), got[0].Key)
	assert.Equal(t, types.Key("b"), got[1].Key)
}

func TestBatchGetBackoffOnLiveLock(t *testing.T) {
	s, _ := newTestStorage(t)
	require.NoError(t, s.Prewrite(types.Key("y"), []byte("a"), types.Key("y"), 20))

	_, err := s.BatchGet([]types.Key{types.Key("y")}, 21)
	require.Error(t, err)
	assertKind(t, err, Backoff)
}

func assertKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, kind, e.Kind)
}
