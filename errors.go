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

import "fmt"

// Kind tags the handful of outcomes a caller needs to distinguish: whether
// to retry, or to abort and restart with a fresh timestamp.
type Kind int

const (
	// Backoff means a live lock blocked a read; the client should retry
	// after a short wait.
	Backoff Kind = iota
	// WriteConflict means Prewrite found a commit newer than start_ts; the
	// transaction must abort and restart with a fresh start_ts.
	WriteConflict
	// LockConflict means Prewrite found a foreign lock already held on the
	// key; the transaction must abort.
	LockConflict
	// LockNotFound means a primary Commit found its own lock missing,
	// already resolved by a concurrent cleanup.
	LockNotFound
)

func (k Kind) String() string {
	switch k {
	case Backoff:
		return "Backoff"
	case WriteConflict:
		return "WriteConflict"
	case LockConflict:
		return "LockConflict"
	case LockNotFound:
		return "LockNotFound"
	default:
		return "Unknown"
	}
}

// Error is the only error type the engine returns. Kind is what callers
// branch on; the message is for logs.
type Error struct {
	Kind Kind
	Key  []byte
	msg  string
}

func newError(kind Kind, key []byte, msg string) *Error {
	return &Error{Kind: kind, Key: key, msg: msg}
}

func (e *Error) Error() string {
	if len(e.Key) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.msg)
	}
	return fmt.Sprintf("%s: key=%q: %s", e.Kind, e.Key, e.msg)
}

// Is matches any *Error target of the same Kind, so
// errors.Is(err, &Error{Kind: Backoff}) holds whatever the key or message;
// txnkv never wraps these errors further.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}
