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

package txnkv

import "time"

const (
	_kb = 1024
)

// Config tunes the engine's in-memory structures and the lock-cleanup
// policy. Zero-valued fields are filled from DefaultConfig by validate.
type Config struct {
	// SkipList Config — one skip list backs each of the Data, Lock and
	// Write columns per KvTable.
	SkipListMaxLevel int
	SkipListP        float64

	// LockFilter Config — a bloom filter over the Lock column lets Get
	// skip the skip-list walk entirely when a key definitely holds no
	// lock.
	LockFilterExpectedKeys      int
	LockFilterFalsePositiveRate float64

	// CompressionThresholdBytes is the Data-column value size above which
	// Bytes payloads are s2-compressed before being stored.
	CompressionThresholdBytes int

	// LockTTL bounds how long a lock may block readers before
	// back_off_maybe_clean_up_lock treats its owner as dead.
	LockTTL time.Duration
}

var DefaultConfig = Config{
	SkipListMaxLevel:            9,
	SkipListP:                   0.5,
	LockFilterExpectedKeys:      4096,
	LockFilterFalsePositiveRate: 0.01,
	CompressionThresholdBytes:   4 * _kb,
	LockTTL:                     100 * time.Millisecond,
}

func (c *Config) validate() error {
	if c.SkipListMaxLevel <= 0 {
		c.SkipListMaxLevel = DefaultConfig.SkipListMaxLevel
	}
	if c.SkipListP <= 0 {
		c.SkipListP = DefaultConfig.SkipListP
	}
	if c.LockFilterExpectedKeys <= 0 {
		c.LockFilterExpectedKeys = DefaultConfig.LockFilterExpectedKeys
	}
	if c.LockFilterFalsePositiveRate <= 0 {
		c.LockFilterFalsePositiveRate = DefaultConfig.LockFilterFalsePositiveRate
	}
	if c.CompressionThresholdBytes <= 0 {
		c.CompressionThresholdBytes = DefaultConfig.CompressionThresholdBytes
	}
	if c.LockTTL <= 0 {
		c.LockTTL = DefaultConfig.LockTTL
	}
	return nil
}
