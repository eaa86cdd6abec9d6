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

package kway

import (
	"testing"

	"github.com/oriumlabs/txnkv/types"
	"github.com/stretchr/testify/assert"
)

func TestMergeOrdersByKey(t *testing.T) {
	list1 := []types.Entry{
		{Key: types.Key("a"), Value: []byte("1"), Found: true},
		{Key: types.Key("c"), Value: []byte("3"), Found: true},
	}
	list2 := []types.Entry{
		{Key: types.Key("b"), Value: []byte("2"), Found: true},
		{Key: types.Key("d"), Value: []byte("4"), Found: true},
	}

	got := Merge(list1, list2)
	want := []types.Entry{
		{Key: types.Key("a"), Value: []byte("1"), Found: true},
		{Key: types.Key("b"), Value: []byte("2"), Found: true},
		{Key: types.Key("c"), Value: []byte("3"), Found: true},
		{Key: types.Key("d"), Value: []byte("4"), Found: true},
	}
	assert.Equal(t, want, got)
}

func TestMergeLaterListWinsOnCollision(t *testing.T) {
	list1 := []types.Entry{{Key: types.Key("a"), Value: []byte("old"), Found: true}}
	list2 := []types.Entry{{Key: types.Key("a"), Value: []byte("new"), Found: true}}

	got := Merge(list1, list2)
	assert.Equal(t, []types.Entry{{Key: types.Key("a"), Value: []byte("new"), Found: true}}, got)
}

func TestMergeDropsNotFound(t *testing.T) {
	list1 := []types.Entry{{Key: types.Key("a"), Found: false}}
	list2 := []types.Entry{{Key: types.Key("b"), Value: []byte("2"), Found: true}}

	got := Merge(list1, list2)
	assert.Equal(t, []types.Entry{{Key: types.Key("b"), Value: []byte("2"), Found: true}}, got)
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, Merge())
}
