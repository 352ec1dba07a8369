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
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/compute/exec"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/arrowkernels/sortindices/internal/testing/gen"
	"github.com/arrowkernels/sortindices/memlimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortIndices(t *testing.T, mem memory.Allocator, arr arrow.Array, opts SortToIndicesOptions) ([]uint64, Strategy) {
	t.Helper()

	ctx := KernelCtx{Ctx: context.Background(), Mem: mem}
	buf, strategy, err := SortToIndices(&ctx, arr.Data(), &opts)
	require.NoError(t, err)
	defer buf.Release()

	out := reinterpret[uint64](buf.Bytes())
	require.Len(t, out, arr.Len())
	return append([]uint64{}, out...), strategy
}

func referenceIndicesOf[T SortableTypes](arr arrow.Array, opts SortToIndicesOptions) []uint64 {
	v := viewOfData(arr.Data())
	vals := valuesOf[T](&v)
	idx := make([]uint64, arr.Len())
	for i := range idx {
		idx[i] = uint64(i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return compareIndices(vals, &v, &opts, int64(idx[a]), int64(idx[b])) < 0
	})
	return idx
}

// referenceIndices sorts arr with sort.SliceStable under the same total
// order the strategies implement.
func referenceIndices(t *testing.T, arr arrow.Array, opts SortToIndicesOptions) []uint64 {
	switch arr.DataType().ID() {
	case arrow.INT8:
		return referenceIndicesOf[int8](arr, opts)
	case arrow.INT16:
		return referenceIndicesOf[int16](arr, opts)
	case arrow.INT32, arrow.DATE32, arrow.TIME32:
		return referenceIndicesOf[int32](arr, opts)
	case arrow.INT64, arrow.DATE64, arrow.TIME64, arrow.TIMESTAMP, arrow.DURATION:
		return referenceIndicesOf[int64](arr, opts)
	case arrow.UINT8:
		return referenceIndicesOf[uint8](arr, opts)
	case arrow.UINT16:
		return referenceIndicesOf[uint16](arr, opts)
	case arrow.UINT32:
		return referenceIndicesOf[uint32](arr, opts)
	case arrow.UINT64:
		return referenceIndicesOf[uint64](arr, opts)
	case arrow.FLOAT32:
		return referenceIndicesOf[float32](arr, opts)
	case arrow.FLOAT64:
		return referenceIndicesOf[float64](arr, opts)
	}
	t.Fatalf("no reference sort for %s", arr.DataType())
	return nil
}

func fromJSON(t *testing.T, mem memory.Allocator, dt arrow.DataType, data string) arrow.Array {
	arr, _, err := array.FromJSON(mem, dt, strings.NewReader(data))
	require.NoError(t, err)
	return arr
}

func TestSortToIndicesExample(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	arr := fromJSON(t, mem, arrow.PrimitiveTypes.Int64, `[5, null, 5, 3, null]`)
	defer arr.Release()

	for _, strategy := range []Strategy{StrategyAuto, StrategyCounting, StrategyComparison} {
		t.Run(strategy.String(), func(t *testing.T) {
			out, used := sortIndices(t, mem, arr, SortToIndicesOptions{Strategy: strategy})
			assert.Equal(t, []uint64{3, 0, 2, 1, 4}, out)
			if strategy != StrategyAuto {
				assert.Equal(t, strategy, used)
			}
		})
	}
}

func TestSortToIndicesLayouts(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	tests := []struct {
		dt       arrow.DataType
		data     string
		opts     SortToIndicesOptions
		expected []uint64
	}{
		{arrow.PrimitiveTypes.Int32, `[1, 2, 1, null, 2]`,
			SortToIndicesOptions{Order: Descending}, []uint64{1, 4, 0, 2, 3}},
		{arrow.PrimitiveTypes.Int32, `[1, 2, 1, null, 2]`,
			SortToIndicesOptions{NullPlacement: AtStart}, []uint64{3, 0, 2, 1, 4}},
		{arrow.PrimitiveTypes.Int32, `[1, 2, 1, null, 2]`,
			SortToIndicesOptions{Order: Descending, NullPlacement: AtStart}, []uint64{3, 1, 4, 0, 2}},
		{arrow.PrimitiveTypes.Uint8, `[255, 0, null, 128, 0]`,
			SortToIndicesOptions{}, []uint64{1, 4, 3, 0, 2}},
		{arrow.PrimitiveTypes.Int8, `[-128, 127, -1, 0, -128]`,
			SortToIndicesOptions{Order: Descending}, []uint64{1, 3, 2, 0, 4}},
		{arrow.PrimitiveTypes.Int64, `[null, null, null, null, null]`,
			SortToIndicesOptions{}, []uint64{0, 1, 2, 3, 4}},
		{arrow.PrimitiveTypes.Int64, `[null, null, null]`,
			SortToIndicesOptions{Order: Descending, NullPlacement: AtStart}, []uint64{0, 1, 2}},
		{arrow.PrimitiveTypes.Int16, `[7]`, SortToIndicesOptions{}, []uint64{0}},
		{arrow.PrimitiveTypes.Uint64, `[12, 0, 1]`,
			SortToIndicesOptions{}, []uint64{1, 2, 0}},
		{arrow.FixedWidthTypes.Date32, `[10959, 10956, null, 10957]`,
			SortToIndicesOptions{}, []uint64{1, 3, 0, 2}},
		{arrow.FixedWidthTypes.Duration_s, `[30, -5, 30, null]`,
			SortToIndicesOptions{Order: Descending}, []uint64{0, 2, 1, 3}},
	}

	for _, tt := range tests {
		for _, strategy := range []Strategy{StrategyCounting, StrategyComparison} {
			tt.opts.Strategy = strategy
			t.Run(fmt.Sprintf("%s %s %s/%s", tt.dt, tt.data, tt.opts.Order, tt.opts.NullPlacement), func(t *testing.T) {
				arr := fromJSON(t, mem, tt.dt, tt.data)
				defer arr.Release()

				out, _ := sortIndices(t, mem, arr, tt.opts)
				assert.Equal(t, tt.expected, out, strategy.String())
			})
		}
	}
}

func TestSortToIndicesEmpty(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	for _, dt := range []arrow.DataType{arrow.PrimitiveTypes.Int64, arrow.PrimitiveTypes.Float32} {
		arr := fromJSON(t, mem, dt, `[]`)
		out, _ := sortIndices(t, mem, arr, SortToIndicesOptions{})
		assert.Empty(t, out)
		arr.Release()
	}
}

func TestSortToIndicesFloats(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	bldr := array.NewFloat64Builder(mem)
	defer bldr.Release()
	bldr.AppendValues(
		[]float64{3, math.NaN(), 0, math.Copysign(0, -1), 0, 1, math.NaN()},
		[]bool{true, true, false, true, true, true, true})
	arr := bldr.NewArray()
	defer arr.Release()

	tests := []struct {
		opts     SortToIndicesOptions
		expected []uint64
	}{
		{SortToIndicesOptions{}, []uint64{3, 4, 5, 0, 1, 6, 2}},
		{SortToIndicesOptions{Order: Descending}, []uint64{0, 5, 3, 4, 1, 6, 2}},
		{SortToIndicesOptions{NullPlacement: AtStart}, []uint64{2, 1, 6, 3, 4, 5, 0}},
		{SortToIndicesOptions{Order: Descending, NullPlacement: AtStart}, []uint64{2, 1, 6, 0, 5, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.opts.Order.String()+"/"+tt.opts.NullPlacement.String(), func(t *testing.T) {
			out, strategy := sortIndices(t, mem, arr, tt.opts)
			assert.Equal(t, StrategyComparison, strategy)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestSortToIndicesSliced(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	arr := fromJSON(t, mem, arrow.PrimitiveTypes.Int64, `[9, 1, null, 4, 1, null, 0]`)
	defer arr.Release()
	slice := array.NewSlice(arr, 1, 6)
	defer slice.Release()

	for _, strategy := range []Strategy{StrategyCounting, StrategyComparison} {
		out, _ := sortIndices(t, mem, slice, SortToIndicesOptions{Strategy: strategy})
		assert.Equal(t, []uint64{0, 3, 2, 1, 4}, out, strategy.String())
	}
}

func TestSortToIndicesUnknownNullCount(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	arr := fromJSON(t, mem, arrow.PrimitiveTypes.Int64, `[9, 5, null, 5, 3, null, 0]`)
	defer arr.Release()

	// same buffers, null count left for the kernel to work out
	data := array.NewData(arrow.PrimitiveTypes.Int64, 5, arr.Data().Buffers(), nil, array.UnknownNullCount, 1)
	defer data.Release()
	unknown := array.MakeFromData(data)
	defer unknown.Release()

	slice := array.NewSlice(arr, 1, 6)
	defer slice.Release()

	for _, in := range []arrow.Array{unknown, slice} {
		for _, strategy := range []Strategy{StrategyCounting, StrategyComparison} {
			out, _ := sortIndices(t, mem, in, SortToIndicesOptions{Strategy: strategy})
			assert.Equal(t, []uint64{3, 0, 2, 1, 4}, out, strategy.String())
		}

		var span exec.ArraySpan
		span.SetMembers(in.Data())
		v := viewOfSpan(&span)
		assert.EqualValues(t, 2, v.nulls)
		assert.NotNil(t, v.validity)
	}
}

func TestStrategiesAgree(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	const size = 1000
	rng := gen.NewRandomArrayGenerator(0x0ff1ce, mem)
	makers := []struct {
		name string
		make func(nullProb float64) arrow.Array
	}{
		{"int8", func(p float64) arrow.Array { return rng.Int8(size, math.MinInt8, math.MaxInt8, p) }},
		{"int16", func(p float64) arrow.Array { return rng.Int16(size, -50, 50, p) }},
		{"int32", func(p float64) arrow.Array { return rng.Int32(size, -1000, 1000, p) }},
		{"int64", func(p float64) arrow.Array { return rng.Int64(size, -100, 100, p) }},
		{"uint8", func(p float64) arrow.Array { return rng.Uint8(size, 0, math.MaxUint8, p) }},
		{"uint16", func(p float64) arrow.Array { return rng.Uint16(size, 100, 400, p) }},
		{"uint32", func(p float64) arrow.Array { return rng.Uint32(size, 1<<31, 1<<31+10, p) }},
		{"uint64", func(p float64) arrow.Array { return rng.Uint64(size, math.MaxUint64-1000, math.MaxUint64, p) }},
		{"timestamp", func(p float64) arrow.Array { return rng.Timestamp(size, 1e9, 1e9+500, p) }},
	}

	for _, mk := range makers {
		for _, nullProb := range []float64{0, 0.1, 0.5, 1} {
			arr := mk.make(nullProb)
			for _, order := range []Order{Ascending, Descending} {
				for _, placement := range []NullPlacement{AtEnd, AtStart} {
					t.Run(fmt.Sprintf("%s nulls=%v %s %s", mk.name, nullProb, order, placement), func(t *testing.T) {
						opts := SortToIndicesOptions{Order: order, NullPlacement: placement}
						expected := referenceIndices(t, arr, opts)

						opts.Strategy = StrategyCounting
						counting, _ := sortIndices(t, mem, arr, opts)
						opts.Strategy = StrategyComparison
						comparison, _ := sortIndices(t, mem, arr, opts)

						assert.Equal(t, expected, counting)
						assert.Equal(t, expected, comparison)
					})
				}
			}
			arr.Release()
		}
	}
}

func TestComparisonSortMatchesReference(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	rng := gen.NewRandomArrayGenerator(42, mem)
	arrs := []arrow.Array{
		rng.Int64(3000, math.MinInt64, math.MaxInt64, 0.2),
		rng.Uint64(3000, 0, math.MaxUint64, 0),
		rng.Float32(3000, -10, 10, 0.1, 0.05),
		rng.Float64(3000, -1e6, 1e6, 0, 0.01),
		rng.Float64(33, -1, 1, 0.3, 0.3),
	}
	defer func() {
		for _, a := range arrs {
			a.Release()
		}
	}()

	for _, arr := range arrs {
		for _, order := range []Order{Ascending, Descending} {
			for _, placement := range []NullPlacement{AtEnd, AtStart} {
				opts := SortToIndicesOptions{Order: order, NullPlacement: placement}
				out, strategy := sortIndices(t, mem, arr, opts)
				assert.Equal(t, StrategyComparison, strategy)
				assert.Equal(t, referenceIndices(t, arr, opts), out,
					"%s %s %s", arr.DataType(), order, placement)
			}
		}
	}
}

func TestAutoStrategy(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	rng := gen.NewRandomArrayGenerator(0x0ff1ce, mem)
	dense := rng.Int64(10000, -100, 100, 0.01)
	defer dense.Release()
	full := rng.Int64(10000, math.MinInt64, math.MaxInt64, 0.01)
	defer full.Release()
	nulls := rng.Int64(100, -100, 100, 1)
	defer nulls.Release()

	_, strategy := sortIndices(t, mem, dense, SortToIndicesOptions{})
	assert.Equal(t, StrategyCounting, strategy)

	_, strategy = sortIndices(t, mem, full, SortToIndicesOptions{})
	assert.Equal(t, StrategyComparison, strategy)

	_, strategy = sortIndices(t, mem, dense, SortToIndicesOptions{CountingSortRatio: 0.001})
	assert.Equal(t, StrategyComparison, strategy)

	_, strategy = sortIndices(t, mem, dense, SortToIndicesOptions{MaxCountingSortRange: 200})
	assert.Equal(t, StrategyComparison, strategy)

	out, _ := sortIndices(t, mem, nulls, SortToIndicesOptions{})
	for i, idx := range out {
		assert.EqualValues(t, i, idx)
	}
}

func TestCountingApplies(t *testing.T) {
	opts := DefaultSortToIndicesOptions()
	assert.True(t, opts.countingApplies(0, 0))
	assert.True(t, opts.countingApplies(100, 100))
	assert.False(t, opts.countingApplies(101, 100))
	assert.False(t, opts.countingApplies(DefaultMaxCountingSortRange, math.MaxInt64))
	assert.True(t, opts.countingApplies(DefaultMaxCountingSortRange-1, math.MaxInt64))
	assert.False(t, opts.countingApplies(math.MaxUint64, math.MaxInt64))
}

func TestValueRange(t *testing.T) {
	assert.EqualValues(t, uint64(math.MaxUint64), valueRange[int64](math.MinInt64, math.MaxInt64))
	assert.EqualValues(t, uint64(math.MaxUint64), valueRange[uint64](0, math.MaxUint64))
	assert.EqualValues(t, 255, valueRange[int8](math.MinInt8, math.MaxInt8))
	assert.EqualValues(t, 200, valueRange[int32](-100, 100))
	assert.EqualValues(t, 0, valueRange[uint16](7, 7))
}

func TestMergeSortIndicesStable(t *testing.T) {
	vals := make([]int16, 1000)
	for i := range vals {
		vals[i] = int16((i * 7919) % 13)
	}

	idx := make([]uint64, len(vals))
	expected := make([]uint64, len(vals))
	for i := range idx {
		idx[i] = uint64(i)
		expected[i] = uint64(i)
	}
	sort.SliceStable(expected, func(a, b int) bool { return vals[expected[a]] < vals[expected[b]] })

	mergeSortIndices(idx, make([]uint64, len(idx)), vals)
	assert.Equal(t, expected, idx)
}

func TestForcedStrategyErrors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)
	ctx := KernelCtx{Ctx: context.Background(), Mem: mem}

	floats := fromJSON(t, mem, arrow.PrimitiveTypes.Float64, `[1.5, 0.5]`)
	defer floats.Release()
	_, _, err := SortToIndices(&ctx, floats.Data(), &SortToIndicesOptions{Strategy: StrategyCounting})
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.ErrorIs(t, err, arrow.ErrNotImplemented)

	bldr := array.NewInt64Builder(mem)
	defer bldr.Release()
	bldr.AppendValues([]int64{math.MinInt64, math.MaxInt64}, nil)
	wide := bldr.NewArray()
	defer wide.Release()
	buf, _, err := SortToIndices(&ctx, wide.Data(), &SortToIndicesOptions{Strategy: StrategyCounting})
	if buf != nil {
		buf.Release()
	}
	assert.ErrorIs(t, err, arrow.ErrInvalid)

	strs := fromJSON(t, mem, arrow.BinaryTypes.String, `["b", "a"]`)
	defer strs.Release()
	_, _, err = SortToIndices(&ctx, strs.Data(), nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestAllocationFailure(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	rng := gen.NewRandomArrayGenerator(7, mem)
	dense := rng.Int64(1000, -100, 100, 0.1)
	defer dense.Release()
	full := rng.Int64(1000, math.MinInt64, math.MaxInt64, 0.1)
	defer full.Release()

	tests := []struct {
		name  string
		arr   arrow.Array
		limit int
	}{
		// no room for the permutation itself
		{"output", dense, 100},
		// room for the permutation but not the counting table
		{"counts", dense, 9000},
		// room for the permutation but not the merge scratch
		{"scratch", full, 9000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checked := memory.NewCheckedAllocator(memory.DefaultAllocator)
			defer checked.AssertSize(t, 0)

			ctx := KernelCtx{Ctx: context.Background(), Mem: memlimit.NewAllocator(checked, tt.limit)}
			buf, _, err := SortToIndices(&ctx, tt.arr.Data(), nil)
			assert.Nil(t, buf)
			assert.ErrorIs(t, err, ErrOutOfMemory)
			assert.ErrorIs(t, err, memlimit.ErrLimitExceeded)
		})
	}
}

func TestAllocateSlotsOverflow(t *testing.T) {
	ctx := KernelCtx{}
	_, _, err := ctx.allocateSlots(math.MaxInt64 / 4)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
	_, _, err = ctx.allocateSlots(-1)
	assert.ErrorIs(t, err, arrow.ErrInvalid)
}

func TestCancelled(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer mem.AssertSize(t, 0)

	arr := fromJSON(t, mem, arrow.PrimitiveTypes.Int32, `[3, 1, 2]`)
	defer arr.Release()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	ctx := KernelCtx{Ctx: cancelled, Mem: mem}
	for _, strategy := range []Strategy{StrategyCounting, StrategyComparison} {
		buf, _, err := SortToIndices(&ctx, arr.Data(), &SortToIndicesOptions{Strategy: strategy})
		assert.Nil(t, buf)
		assert.ErrorIs(t, err, ErrCancelled)
		assert.True(t, errors.Is(err, context.Canceled))
	}
}
