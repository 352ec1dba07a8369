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

package compute

import (
	"context"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	arrowcompute "github.com/apache/arrow/go/v17/arrow/compute"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/arrowkernels/sortindices/compute/internal/kernels"
)

type (
	SortToIndicesOptions = kernels.SortToIndicesOptions
	Order                = kernels.Order
	NullPlacement        = kernels.NullPlacement
	Strategy             = kernels.Strategy
)

const (
	Ascending  = kernels.Ascending
	Descending = kernels.Descending

	AtEnd   = kernels.AtEnd
	AtStart = kernels.AtStart

	StrategyAuto       = kernels.StrategyAuto
	StrategyCounting   = kernels.StrategyCounting
	StrategyComparison = kernels.StrategyComparison

	DefaultCountingSortRatio    = kernels.DefaultCountingSortRatio
	DefaultMaxCountingSortRange = kernels.DefaultMaxCountingSortRange
)

var (
	ErrUnsupportedType = kernels.ErrUnsupportedType
	ErrOutOfMemory     = kernels.ErrOutOfMemory
	ErrCancelled       = kernels.ErrCancelled
)

// DefaultSortToIndicesOptions sorts ascending with nulls at the end.
func DefaultSortToIndicesOptions() *SortToIndicesOptions {
	return kernels.DefaultSortToIndicesOptions()
}

// WithAllocator returns a context carrying mem; sorts run with that
// context allocate every buffer from it.
func WithAllocator(ctx context.Context, mem memory.Allocator) context.Context {
	return arrowcompute.WithAllocator(ctx, mem)
}

// GetAllocator returns the allocator in ctx, or memory.DefaultAllocator.
func GetAllocator(ctx context.Context) memory.Allocator {
	return arrowcompute.GetAllocator(ctx)
}

// SortToIndices returns the permutation that sorts values according to
// opts. The result has values.Len() elements and no nulls, and must be
// released by the caller. values itself is never modified.
//
// Errors are ErrUnsupportedType for element types that cannot be sorted,
// ErrOutOfMemory when the allocator refuses a buffer and ErrCancelled
// when ctx is done before the sort completes. No result is returned
// alongside an error.
func SortToIndices(ctx context.Context, values arrow.Array, opts SortToIndicesOptions) (*array.Uint64, error) {
	kctx := kernels.KernelCtx{Ctx: ctx, Mem: GetAllocator(ctx)}
	buf, _, err := kernels.SortToIndices(&kctx, values.Data(), &opts)
	if err != nil {
		return nil, err
	}
	defer buf.Release()

	data := array.NewData(arrow.PrimitiveTypes.Uint64, values.Len(),
		[]*memory.Buffer{nil, buf}, nil, 0, 0)
	defer data.Release()
	return array.NewUint64Data(data), nil
}
