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

// Package watermark tracks the timestamps outstanding Get calls read at and
// reports the highest one at or below which every read has finished. The
// TimestampOracle exposes it as LowWatermark so a
// future GC pass (not implemented here) would know which versions no
// in-flight read can still observe.
package watermark

import (
	"container/heap"
	"context"
	"sync/atomic"
)

type mark struct {
	ts     uint64
	done   bool
	waiter chan struct{}
}

// WaterMark computes the highest ts passed to Begin at or below which every
// Begin has been retired with a matching Done.
type WaterMark struct {
	markC     chan mark
	stopC     chan struct{}
	doneUntil atomic.Uint64
}

// New starts a WaterMark's background bookkeeping goroutine. Call Stop when
// it's no longer needed.
func New() *WaterMark {
	w := &WaterMark{
		markC: make(chan mark),
		stopC: make(chan struct{}),
	}
	go w.process()
	return w
}

// Stop shuts down the bookkeeping goroutine.
func (w *WaterMark) Stop() {
	close(w.stopC)
}

// Begin records ts as in use by a new read.
func (w *WaterMark) Begin(ts uint64) {
	w.markC <- mark{ts: ts, done: false}
}

// Done retires ts, recorded by an earlier Begin.
func (w *WaterMark) Done(ts uint64) {
	w.markC <- mark{ts: ts, done: true}
}

// DoneUntil returns the highest ts below which every Begin has a matching
// Done. A ts with no Begin ever issued reads as 0.
func (w *WaterMark) DoneUntil() uint64 {
	return w.doneUntil.Load()
}

// WaitForMark blocks until ts is retired, or ctx is done first.
func (w *WaterMark) WaitForMark(ctx context.Context, ts uint64) error {
	if w.DoneUntil() >= ts {
		return nil
	}
	waitCh := make(chan struct{})
	w.markC <- mark{ts: ts, waiter: waitCh}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-waitCh:
		return nil
	}
}

func (w *WaterMark) process() {
	var indices tsHeap
	pending := make(map[uint64]int)
	waiters := make(map[uint64][]chan struct{})

	heap.Init(&indices)

	for {
		select {
		case <-w.stopC:
			return
		case m := <-w.markC:
			if m.waiter != nil {
				if w.doneUntil.Load() >= m.ts {
					close(m.waiter)
				} else {
					waiters[m.ts] = append(waiters[m.ts], m.waiter)
				}
				continue
			}

			if _, ok := pending[m.ts]; !ok {
				heap.Push(&indices, m.ts)
			}
			delta := 1
			if m.done {
				delta = -1
			}
			pending[m.ts] += delta

			for len(indices) > 0 {
				ts := indices[0]
				if cnt := pending[ts]; cnt > 0 {
					break
				}
				heap.Pop(&indices)
				delete(pending, ts)
				w.doneUntil.Store(ts)
				for _, ch := range waiters[ts] {
					close(ch)
				}
				delete(waiters, ts)
			}
		}
	}
}

// tsHeap is a min-heap of outstanding timestamps.
type tsHeap []uint64

func (h tsHeap) Len() int            { return len(h) }
func (h tsHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h tsHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *tsHeap) Push(x any)         { *h = append(*h, x.(uint64)) }
func (h *tsHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
