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

// Package bufferpool pools the byte buffers the wire codec uses to marshal
// RPC messages, so a busy MemoryStorage doesn't allocate one per request.
package bufferpool

import (
	"bytes"
	"sync"
)

// Messages is the pool the wire package reaches for: most RPC payloads
// (a key, a value, a couple of timestamps) are small enough that pooling
// pays off immediately, unlike the teacher's single generic pool sized for
// SSTable blocks.
var Messages = New(256)

// Pool hands out reset *bytes.Buffer values sized around hint bytes.
type Pool struct {
	hint int
	pool sync.Pool
}

// New creates a Pool whose buffers are pre-grown to hint bytes.
func New(hint int) *Pool {
	p := &Pool{hint: hint}
	p.pool.New = func() any {
		return bytes.NewBuffer(make([]byte, 0, hint))
	}
	return p
}

// Get returns an empty buffer ready to write into.
func (p *Pool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Put resets buf and returns it to the pool. Buffers that grew far past the
// pool's hint are dropped instead of retained, so one oversized message
// doesn't permanently bloat the pool.
func (p *Pool) Put(buf *bytes.Buffer) {
	if buf.Cap() > p.hint*16 {
		return
	}
	buf.Reset()
	p.pool.Put(buf)
}
