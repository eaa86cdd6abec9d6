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

package skiplist

import (
	"testing"

	"github.com/oriumlabs/txnkv/types"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	sl := New(4, 0.5)
	assert.NotNil(t, sl)
	assert.Equal(t, 1, sl.level)
	assert.Equal(t, 0, sl.Len())
}

func TestSetAndGet(t *testing.T) {
	sl := New(4, 0.5)
	sl.Set(types.Key("x"), 10, types.BytesValue([]byte("v1")))

	v, ok := sl.Get(types.Key("x"), 10)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), v.AsBytes())

	// replace at the same (key, ts)
	sl.Set(types.Key("x"), 10, types.BytesValue([]byte("v2")))
	v, ok = sl.Get(types.Key("x"), 10)
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), v.AsBytes())
	assert.Equal(t, 1, sl.Len())
}

func TestGetMissing(t *testing.T) {
	sl := New(4, 0.5)
	_, ok := sl.Get(types.Key("nope"), 1)
	assert.False(t, ok)
}

func TestReadLargestInRange(t *testing.T) {
	sl := New(4, 0.5)
	sl.Set(types.Key("k"), 5, types.TsValue(50))
	sl.Set(types.Key("k"), 10, types.TsValue(100))
	sl.Set(types.Key("k"), 20, types.TsValue(200))

	cell, ok := sl.Read(types.Key("k"), 0, types.MaxTimestamp)
	assert.True(t, ok)
	assert.Equal(t, types.Timestamp(20), cell.Ts)

	cell, ok = sl.Read(types.Key("k"), 0, 15)
	assert.True(t, ok)
	assert.Equal(t, types.Timestamp(10), cell.Ts)

	cell, ok = sl.Read(types.Key("k"), 12, 15)
	assert.False(t, ok)
	_ = cell

	_, ok = sl.Read(types.Key("other"), 0, types.MaxTimestamp)
	assert.False(t, ok)
}

func TestEraseUpTo(t *testing.T) {
	sl := New(4, 0.5)
	sl.Set(types.Key("k"), 5, types.BytesValue([]byte("a")))
	sl.Set(types.Key("k"), 10, types.BytesValue([]byte("b")))
	sl.Set(types.Key("k"), 20, types.BytesValue([]byte("c")))
	sl.Set(types.Key("other"), 5, types.BytesValue([]byte("z")))

	removed := sl.EraseUpTo(types.Key("k"), 10)
	assert.Equal(t, 2, removed)

	_, ok := sl.Get(types.Key("k"), 5)
	assert.False(t, ok)
	_, ok = sl.Get(types.Key("k"), 10)
	assert.False(t, ok)
	_, ok = sl.Get(types.Key("k"), 20)
	assert.True(t, ok)
	_, ok = sl.Get(types.Key("other"), 5)
	assert.True(t, ok)
}

func TestAllOrdered(t *testing.T) {
	sl := New(4, 0.5)
	sl.Set(types.Key("b"), 1, types.BytesValue(nil))
	sl.Set(types.Key("a"), 2, types.BytesValue(nil))
	sl.Set(types.Key("a"), 1, types.BytesValue(nil))

	all := sl.All()
	assert.Len(t, all, 3)
	assert.Equal(t, types.Key("a"), all[0].Key)
	assert.Equal(t, types.Timestamp(1), all[0].Ts)
	assert.Equal(t, types.Key("a"), all[1].Key)
	assert.Equal(t, types.Timestamp(2), all[1].Ts)
	assert.Equal(t, types.Key("b"), all[2].Key)
}

func TestReset(t *testing.T) {
	sl := New(4, 0.5)
	sl.Set(types.Key("x"), 1, types.BytesValue(nil))
	sl = sl.Reset()
	assert.Equal(t, 0, sl.Len())
	assert.Equal(t, 1, sl.level)
}
