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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oriumlabs/txnkv/types"
)

func TestKvTableWriteAndReadData(t *testing.T) {
	table := newKvTable(DefaultConfig)
	table.write(types.Key("x"), types.Data, 10, types.BytesValue([]byte("1")))

	cell, ok := table.read(types.Key("x"), types.Data, 0, types.MaxTimestamp)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), cell.Value.AsBytes())
}

func TestKvTableReadLargestInRange(t *testing.T) {
	table := newKvTable(DefaultConfig)
	table.write(types.Key("x"), types.Write, 11, types.TsValue(10))
	table.write(types.Key("x"), types.Write, 21, types.TsValue(20))

	cell, ok := table.read(types.Key("x"), types.Write, 0, 15)
	assert.True(t, ok)
	assert.Equal(t, types.Timestamp(11), cell.Ts)

	cell, ok = table.read(types.Key("x"), types.Write, 0, types.MaxTimestamp)
	assert.True(t, ok)
	assert.Equal(t, types.Timestamp(21), cell.Ts)
}

func TestKvTableEraseUpToIsInclusive(t *testing.T) {
	table := newKvTable(DefaultConfig)
	table.write(types.Key("x"), types.Lock, 10, types.BytesValue([]byte("x")))
	table.erase(types.Key("x"), types.Lock, 10)

	_, ok := table.read(types.Key("x"), types.Lock, 0, types.MaxTimestamp)
	assert.False(t, ok)
}

func TestKvTableEraseOnWriteIsNoOp(t *testing.T) {
	table := newKvTable(DefaultConfig)
	table.write(types.Key("x"), types.Write, 11, types.TsValue(10))
	table.erase(types.Key("x"), types.Write, 11)

	_, ok := table.read(types.Key("x"), types.Write, 0, types.MaxTimestamp)
	assert.True(t, ok)
}

func TestKvTableLargeDataValueRoundTripsCompressed(t *testing.T) {
	cfg := DefaultConfig
	cfg.CompressionThresholdBytes = 16
	table := newKvTable(cfg)

	large := bytes.Repeat([]byte("percolator"), 100)
	table.write(types.Key("x"), types.Data, 10, types.BytesValue(large))

	cell, ok := table.read(types.Key("x"), types.Data, 10, 10)
	assert.True(t, ok)
	assert.Equal(t, large, cell.Value.AsBytes())
}

func TestKvTableSmallDataValueRoundTripsUncompressed(t *testing.T) {
	cfg := DefaultConfig
	cfg.CompressionThresholdBytes = 4096
	table := newKvTable(cfg)

	table.write(types.Key("x"), types.Data, 10, types.BytesValue([]byte("tiny")))

	cell, ok := table.read(types.Key("x"), types.Data, 10, 10)
	assert.True(t, ok)
	assert.Equal(t, []byte("tiny"), cell.Value.AsBytes())
}

func TestKvTableLockFilterFastPath(t *testing.T) {
	table := newKvTable(DefaultConfig)
	assert.False(t, table.mightHaveLock(types.Key("never-locked")))

	table.write(types.Key("x"), types.Lock, 10, types.BytesValue([]byte("x")))
	assert.True(t, table.mightHaveLock(types.Key("x")))
}

func TestKvTableScanLocksAndWrites(t *testing.T) {
	table := newKvTable(DefaultConfig)
	table.write(types.Key("p"), types.Lock, 40, types.BytesValue([]byte("p")))
	table.write(types.Key("s"), types.Lock, 40, types.BytesValue([]byte("p")))
	table.write(types.Key("p"), types.Write, 41, types.TsValue(40))

	var locked []string
	table.scanLocks(func(key types.Key, ts types.Timestamp, primary []byte) {
		if ts == 40 && string(primary) == "p" {
			locked = append(locked, string(key))
		}
	})
	assert.ElementsMatch(t, []string{"p", "s"}, locked)

	var commitTs types.Timestamp
	table.scanWrites(func(key types.Key, ct types.Timestamp, st types.Timestamp) {
		if string(key) == "p" && st == 40 {
			commitTs = ct
		}
	})
	assert.Equal(t, types.Timestamp(41), commitTs)
}
