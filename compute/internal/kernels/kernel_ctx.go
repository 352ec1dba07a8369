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

package kernels

import (
	"context"
	"errors"
	"fmt"

	"github.com/JohnCGriffin/overflow"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

var (
	// ErrUnsupportedType is returned for element types no sort strategy
	// handles.
	ErrUnsupportedType = fmt.Errorf("%w: sort_to_indices unsupported type", arrow.ErrNotImplemented)
	// ErrOutOfMemory is returned when the output permutation or a scratch
	// buffer could not be allocated.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrCancelled is returned when the context was cancelled between
	// sort phases. The error also wraps the context's own error.
	ErrCancelled = errors.New("cancelled")
)

// KernelCtx is the execution context handed by pointer to the dispatcher
// and to every strategy. All buffers come from Mem; Ctx is only consulted
// for cancellation between phases and may be nil.
type KernelCtx struct {
	Ctx context.Context
	Mem memory.Allocator
}

func (k *KernelCtx) allocator() memory.Allocator {
	if k.Mem == nil {
		return memory.DefaultAllocator
	}
	return k.Mem
}

// Err reports whether the caller has asked the sort to stop.
func (k *KernelCtx) Err() error {
	if k.Ctx == nil {
		return nil
	}
	if err := k.Ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

// Allocate returns a buffer of nbytes bytes. A panicking allocator is
// reported as ErrOutOfMemory and leaves nothing allocated.
func (k *KernelCtx) Allocate(nbytes int) (buf *memory.Buffer, err error) {
	buf = memory.NewResizableBuffer(k.allocator())
	defer func() {
		if r := recover(); r != nil {
			buf.Release()
			buf = nil
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: requesting %d bytes: %w", ErrOutOfMemory, nbytes, e)
			} else {
				err = fmt.Errorf("%w: requesting %d bytes: %v", ErrOutOfMemory, nbytes, r)
			}
		}
	}()

	buf.Resize(nbytes)
	return buf, nil
}

// allocateSlots allocates n uint64 slots. The slots are not guaranteed
// to be zeroed.
func (k *KernelCtx) allocateSlots(n int64) (*memory.Buffer, []uint64, error) {
	nbytes, ok := overflow.Mul64(n, int64(arrow.Uint64SizeBytes))
	if n < 0 || !ok || nbytes != int64(int(nbytes)) {
		return nil, nil, fmt.Errorf("%w: %d index slots overflow the address space", arrow.ErrInvalid, n)
	}

	buf, err := k.Allocate(int(nbytes))
	if err != nil {
		return nil, nil, err
	}
	return buf, reinterpret[uint64](buf.Bytes()), nil
}
