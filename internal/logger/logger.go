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

// Package logger provides the swappable leveled logger MemoryStorage, the
// KvTable and the service layer log through. Nothing in this package
// forces a particular logging backend on a caller; it exists so a host
// process can plug in its own Logger instead of inheriting one.
package logger

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
)

// Level filters which calls reach the underlying Logger.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger is the interface txnkv logs through. Implement it to route output
// anywhere other than stderr.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Panicf(format string, args ...any)
}

const _logPrefix = "txnkv "
const _calldepth = 3

// StdLogger wraps the standard library logger and adds level filtering on
// top, so a caller can silence Debugf in production without replacing the
// whole Logger.
type StdLogger struct {
	level atomic.Int32
	*log.Logger
}

// NewStdLogger builds a StdLogger writing to os.Stderr at level.
func NewStdLogger(level Level) *StdLogger {
	l := &StdLogger{Logger: log.New(os.Stderr, _logPrefix, log.Ldate|log.Ltime|log.Lmicroseconds)}
	l.level.Store(int32(level))
	return l
}

// SetLevel changes the minimum level that reaches output.
func (l *StdLogger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *StdLogger) enabled(level Level) bool {
	return int32(level) >= l.level.Load()
}

func (l *StdLogger) header(tag string) string {
	_, file, line, ok := runtime.Caller(_calldepth)
	if !ok {
		file, line = "???", 0
	}
	return fmt.Sprintf("%s:%d [%s]", file, line, tag)
}

func (l *StdLogger) Debugf(format string, args ...any) {
	if !l.enabled(LevelDebug) {
		return
	}
	_ = l.Output(_calldepth, fmt.Sprintf("%s %s\n", l.header("DEBUG"), fmt.Sprintf(format, args...)))
}

func (l *StdLogger) Infof(format string, args ...any) {
	if !l.enabled(LevelInfo) {
		return
	}
	_ = l.Output(_calldepth, fmt.Sprintf("%s %s\n", l.header("INFO"), fmt.Sprintf(format, args...)))
}

func (l *StdLogger) Warnf(format string, args ...any) {
	if !l.enabled(LevelWarn) {
		return
	}
	_ = l.Output(_calldepth, fmt.Sprintf("%s %s\n", l.header("WARN"), fmt.Sprintf(format, args...)))
}

func (l *StdLogger) Errorf(format string, args ...any) {
	if !l.enabled(LevelError) {
		return
	}
	_ = l.Output(_calldepth, fmt.Sprintf("%s %s\n", l.header("ERROR"), fmt.Sprintf(format, args...)))
}

func (l *StdLogger) Fatalf(format string, args ...any) {
	_ = l.Output(_calldepth, fmt.Sprintf("%s %s\n", l.header("FATAL"), fmt.Sprintf(format, args...)))
	os.Exit(1)
}

func (l *StdLogger) Panicf(format string, args ...any) {
	msg := fmt.Sprintf("%s %s\n", l.header("PANIC"), fmt.Sprintf(format, args...))
	_ = l.Output(_calldepth, msg)
	panic(msg)
}

var (
	_mu      sync.RWMutex
	_default Logger = NewStdLogger(LevelInfo)
)

// Set installs l as the package-level logger.
func Set(l Logger) {
	_mu.Lock()
	defer _mu.Unlock()
	_default = l
}

// Get returns the current package-level logger.
func Get() Logger {
	_mu.RLock()
	defer _mu.RUnlock()
	return _default
}

// Reset restores the default stderr logger at LevelInfo, mainly useful
// between tests that install a stub.
func Reset() {
	Set(NewStdLogger(LevelInfo))
}
