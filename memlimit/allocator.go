// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package memlimit provides a memory.Allocator that enforces a byte budget.
//
// The Go allocator only fails by crashing the process, so callers that want
// allocation failure to surface as an error wrap their allocator in a
// memlimit.Allocator. Over-budget requests panic with an error wrapping
// ErrLimitExceeded, which the sort kernels recover and report as
// compute.ErrOutOfMemory.
package memlimit

import (
	"errors"
	"sync/atomic"

	"github.com/apache/arrow/go/v17/arrow/memory"
	"golang.org/x/xerrors"
)

// ErrLimitExceeded is the error an Allocator panics with when a request
// would exceed its budget.
var ErrLimitExceeded = errors.New("memory limit exceeded")

// Allocator wraps another memory.Allocator and refuses requests that would
// take the number of outstanding bytes above Limit.
type Allocator struct {
	mem   memory.Allocator
	limit int64
	sz    int64
}

// NewAllocator returns an Allocator drawing from mem with a budget of limit
// bytes. A nil mem uses memory.DefaultAllocator.
func NewAllocator(mem memory.Allocator, limit int) *Allocator {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &Allocator{mem: mem, limit: int64(limit)}
}

// CurrentAlloc returns the number of bytes currently allocated.
func (a *Allocator) CurrentAlloc() int { return int(atomic.LoadInt64(&a.sz)) }

// Limit returns the budget in bytes.
func (a *Allocator) Limit() int { return int(a.limit) }

func (a *Allocator) reserve(delta int64) {
	if delta <= 0 {
		atomic.AddInt64(&a.sz, delta)
		return
	}

	for {
		cur := atomic.LoadInt64(&a.sz)
		if cur+delta > a.limit {
			panic(xerrors.Errorf("allocating %d bytes with %d of %d in use: %w",
				delta, cur, a.limit, ErrLimitExceeded))
		}
		if atomic.CompareAndSwapInt64(&a.sz, cur, cur+delta) {
			return
		}
	}
}

func (a *Allocator) Allocate(size int) []byte {
	a.reserve(int64(size))
	return a.mem.Allocate(size)
}

func (a *Allocator) Reallocate(size int, b []byte) []byte {
	a.reserve(int64(size - len(b)))
	return a.mem.Reallocate(size, b)
}

func (a *Allocator) Free(b []byte) {
	atomic.AddInt64(&a.sz, -int64(len(b)))
	a.mem.Free(b)
}

var (
	_ memory.Allocator = (*Allocator)(nil)
)
