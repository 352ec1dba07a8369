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
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/arrowkernels/sortindices/internal/debug"
)

// SortToIndices computes the permutation that sorts values. The returned
// buffer holds values.Len() uint64 positions and is owned by the caller.
// The strategy that produced it is returned alongside.
//
// values is only read. The buffer is allocated from ctx before any
// sorting starts; on error nothing stays allocated.
func SortToIndices(ctx *KernelCtx, values arrow.ArrayData, opts *SortToIndicesOptions) (*memory.Buffer, Strategy, error) {
	v := viewOfData(values)
	return sortView(ctx, &v, opts)
}

func sortView(ctx *KernelCtx, v *arrayView, opts *SortToIndicesOptions) (*memory.Buffer, Strategy, error) {
	var o SortToIndicesOptions
	if opts != nil {
		o = *opts
	}
	o = o.withDefaults()

	switch v.typ.ID() {
	case arrow.INT8:
		return sortIntegers[int8](ctx, v, &o)
	case arrow.INT16:
		return sortIntegers[int16](ctx, v, &o)
	case arrow.INT32, arrow.DATE32, arrow.TIME32:
		return sortIntegers[int32](ctx, v, &o)
	case arrow.INT64, arrow.DATE64, arrow.TIME64, arrow.TIMESTAMP, arrow.DURATION:
		return sortIntegers[int64](ctx, v, &o)
	case arrow.UINT8:
		return sortIntegers[uint8](ctx, v, &o)
	case arrow.UINT16:
		return sortIntegers[uint16](ctx, v, &o)
	case arrow.UINT32:
		return sortIntegers[uint32](ctx, v, &o)
	case arrow.UINT64:
		return sortIntegers[uint64](ctx, v, &o)
	case arrow.FLOAT32:
		return sortFloats[float32](ctx, v, &o)
	case arrow.FLOAT64:
		return sortFloats[float64](ctx, v, &o)
	}
	return nil, StrategyAuto, fmt.Errorf("%w: %s", ErrUnsupportedType, v.typ)
}

func sortIntegers[T IntegerTypes](ctx *KernelCtx, v *arrayView, opts *SortToIndicesOptions) (*memory.Buffer, Strategy, error) {
	var (
		vals     = valuesOf[T](v)
		strategy = opts.Strategy
		lo       T
		spread   uint64
	)

	if strategy != StrategyComparison {
		var (
			hi T
			ok bool
		)
		lo, hi, ok = minMax(vals, v)
		if ok {
			spread = valueRange(lo, hi)
		}
		if strategy == StrategyAuto {
			strategy = StrategyComparison
			if opts.countingApplies(spread, v.len) {
				strategy = StrategyCounting
			}
		}
	}

	debug.Log(func() string {
		return fmt.Sprintf("sort_to_indices: type=%s len=%d nulls=%d range=%d strategy=%s",
			v.typ, v.len, v.nulls, spread, strategy)
	})

	if err := ctx.Err(); err != nil {
		return nil, strategy, err
	}

	buf, out, err := ctx.allocateSlots(v.len)
	if err != nil {
		return nil, strategy, err
	}

	if strategy == StrategyCounting {
		err = countingSort(ctx, vals, v, opts, lo, spread, out)
	} else {
		err = comparisonSort(ctx, vals, v, opts, out)
	}
	if err != nil {
		buf.Release()
		return nil, strategy, err
	}

	verifyPermutation(vals, v, opts, out)
	return buf, strategy, nil
}

func sortFloats[T FloatTypes](ctx *KernelCtx, v *arrayView, opts *SortToIndicesOptions) (*memory.Buffer, Strategy, error) {
	if opts.Strategy == StrategyCounting {
		return nil, StrategyCounting, fmt.Errorf("%w: counting sort requires integer input, got %s",
			ErrUnsupportedType, v.typ)
	}

	if err := ctx.Err(); err != nil {
		return nil, StrategyComparison, err
	}

	vals := valuesOf[T](v)
	buf, out, err := ctx.allocateSlots(v.len)
	if err != nil {
		return nil, StrategyComparison, err
	}

	if err := comparisonSort(ctx, vals, v, opts, out); err != nil {
		buf.Release()
		return nil, StrategyComparison, err
	}

	verifyPermutation(vals, v, opts, out)
	return buf, StrategyComparison, nil
}
