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

// Package kway merges independently-sorted entry lists into one sorted,
// deduplicated list. MemoryStorage.BatchGet uses it to fold N single-key
// snapshot reads (each its own one-element "list") into a single key-ordered
// result, the same role it plays folding memtable/SSTable layers in the
// teacher engine this was adapted from.
package kway

import (
	"cmp"
	"container/heap"
	"slices"

	"github.com/oriumlabs/txnkv/types"
)

// Merge merges lists (each already sorted by key) into one list ordered by
// key, keeping the entry from the highest-indexed list on key collisions —
// "the larger the list index, the newer the value" — and dropping entries
// with Found == false.
func Merge(lists ...[]types.Entry) []types.Entry {
	h := &entryHeap{}
	heap.Init(h)

	for i, list := range lists {
		if len(list) > 0 {
			heap.Push(h, heapItem{Entry: list[0], listIndex: i})
			lists[i] = list[1:]
		}
	}

	latest := make(map[string]types.Entry)
	order := make([]string, 0)

	for h.Len() > 0 {
		item := heap.Pop(h).(heapItem)
		k := string(item.Entry.Key)
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = item.Entry

		if len(lists[item.listIndex]) > 0 {
			heap.Push(h, heapItem{Entry: lists[item.listIndex][0], listIndex: item.listIndex})
			lists[item.listIndex] = lists[item.listIndex][1:]
		}
	}

	merged := make([]types.Entry, 0, len(order))
	for _, k := range order {
		if e := latest[k]; e.Found {
			merged = append(merged, e)
		}
	}
	slices.SortFunc(merged, func(a, b types.Entry) int {
		return cmp.Compare(string(a.Key), string(b.Key))
	})
	return merged
}

type heapItem struct {
	types.Entry
	listIndex int
}

// entryHeap is a min-heap ordered by key, then by list index (so a later
// list wins a same-key tie when both are popped at once).
type entryHeap []heapItem

func (h *entryHeap) Len() int { return len(*h) }

func (h *entryHeap) Less(i, j int) bool {
	if c := types.CompareKeys((*h)[i].Key, (*h)[j].Key); c != 0 {
		return c < 0
	}
	return (*h)[i].listIndex < (*h)[j].listIndex
}

func (h *entryHeap) Swap(i, j int) { (*h)[i], (*h)[j] = (*h)[j], (*h)[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(heapItem)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
