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

// Package gen builds seeded random arrays for the sort kernel tests and
// benchmarks.
package gen

import (
	"math"
	"unsafe"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/bitutil"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// RandomArrayGenerator is a struct used for constructing random Arrow
// arrays. The same seed always produces the same arrays.
type RandomArrayGenerator struct {
	seed  uint64
	extra uint64
	mem   memory.Allocator
}

// NewRandomArrayGenerator constructs a new generator with the requested seed.
func NewRandomArrayGenerator(seed uint64, mem memory.Allocator) RandomArrayGenerator {
	return RandomArrayGenerator{seed: seed, mem: mem}
}

func (r *RandomArrayGenerator) nextSource() rand.Source {
	r.extra++
	return rand.NewSource(r.seed + r.extra)
}

// GenerateBitmap generates a bitmap of n bits and stores it into buffer. Prob is the probability
// that a given bit will be zero, with 1-prob being the probability it will be 1. The return value
// is the number of bits that were left unset. The assumption being that buffer is currently
// zero initialized as this function does not clear any bits, it only sets 1s.
func (r *RandomArrayGenerator) GenerateBitmap(buffer []byte, n int64, prob float64) int64 {
	count := int64(0)

	// bernoulli distribution uses P to determine the probability of a 0 or a 1,
	// which we'll use to generate the bitmap.
	dist := distuv.Bernoulli{P: 1 - prob, Src: r.nextSource()}
	for i := 0; int64(i) < n; i++ {
		if dist.Rand() != float64(0.0) {
			bitutil.SetBit(buffer, i)
		} else {
			count++
		}
	}

	return count
}

func (r *RandomArrayGenerator) baseGenPrimitive(size int64, prob float64, byteWidth int) ([]*memory.Buffer, int64) {
	buffers := make([]*memory.Buffer, 2)

	buffers[0] = memory.NewResizableBuffer(r.mem)
	buffers[0].Resize(int(bitutil.BytesForBits(size)))
	memory.Set(buffers[0].Bytes(), 0)
	nullCount := r.GenerateBitmap(buffers[0].Bytes(), size, prob)

	buffers[1] = memory.NewResizableBuffer(r.mem)
	buffers[1].Resize(int(size) * byteWidth)

	return buffers, nullCount
}

type primitive interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func castBuffer[T primitive](b []byte) []T {
	var z T
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), len(b)/int(unsafe.Sizeof(z)))
}

func (r *RandomArrayGenerator) makeArray(dt arrow.DataType, size int64, buffers []*memory.Buffer, nullCount int64) arrow.Array {
	for _, b := range buffers {
		defer b.Release()
	}

	data := array.NewData(dt, int(size), buffers, nil, int(nullCount), 0)
	defer data.Release()
	return array.MakeFromData(data)
}

// integers fills an array of dt with values drawn uniformly from
// [min, max]. Both bounds are inclusive and may span the whole type.
func integers[T ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64](r *RandomArrayGenerator, dt arrow.DataType, size int64, min, max T, nullProb float64) arrow.Array {
	var z T
	buffers, nullCount := r.baseGenPrimitive(size, nullProb, int(unsafe.Sizeof(z)))

	dist := rand.New(r.nextSource())
	spread := uint64(max) - uint64(min)
	out := castBuffer[T](buffers[1].Bytes())
	for i := range out {
		if spread == math.MaxUint64 {
			out[i] = T(dist.Uint64())
		} else {
			out[i] = T(uint64(min) + dist.Uint64n(spread+1))
		}
	}

	return r.makeArray(dt, size, buffers, nullCount)
}

func floats[T ~float32 | ~float64](r *RandomArrayGenerator, dt arrow.DataType, size int64, min, max T, nullProb, nanProb float64) arrow.Array {
	var z T
	buffers, nullCount := r.baseGenPrimitive(size, nullProb, int(unsafe.Sizeof(z)))

	dist := distuv.Uniform{Min: float64(min), Max: float64(max), Src: r.nextSource()}
	nan := distuv.Bernoulli{P: nanProb, Src: r.nextSource()}
	out := castBuffer[T](buffers[1].Bytes())
	for i := range out {
		if nanProb > 0 && nan.Rand() == 1 {
			out[i] = T(math.NaN())
		} else {
			out[i] = T(dist.Rand())
		}
	}

	return r.makeArray(dt, size, buffers, nullCount)
}

func (r *RandomArrayGenerator) Int8(size int64, min, max int8, nullProb float64) arrow.Array {
	return integers(r, arrow.PrimitiveTypes.Int8, size, min, max, nullProb)
}

func (r *RandomArrayGenerator) Int16(size int64, min, max int16, nullProb float64) arrow.Array {
	return integers(r, arrow.PrimitiveTypes.Int16, size, min, max, nullProb)
}

func (r *RandomArrayGenerator) Int32(size int64, min, max int32, nullProb float64) arrow.Array {
	return integers(r, arrow.PrimitiveTypes.Int32, size, min, max, nullProb)
}

func (r *RandomArrayGenerator) Int64(size int64, min, max int64, nullProb float64) arrow.Array {
	return integers(r, arrow.PrimitiveTypes.Int64, size, min, max, nullProb)
}

func (r *RandomArrayGenerator) Uint8(size int64, min, max uint8, nullProb float64) arrow.Array {
	return integers(r, arrow.PrimitiveTypes.Uint8, size, min, max, nullProb)
}

func (r *RandomArrayGenerator) Uint16(size int64, min, max uint16, nullProb float64) arrow.Array {
	return integers(r, arrow.PrimitiveTypes.Uint16, size, min, max, nullProb)
}

func (r *RandomArrayGenerator) Uint32(size int64, min, max uint32, nullProb float64) arrow.Array {
	return integers(r, arrow.PrimitiveTypes.Uint32, size, min, max, nullProb)
}

func (r *RandomArrayGenerator) Uint64(size int64, min, max uint64, nullProb float64) arrow.Array {
	return integers(r, arrow.PrimitiveTypes.Uint64, size, min, max, nullProb)
}

// Timestamp generates nanosecond timestamps in [min, max].
func (r *RandomArrayGenerator) Timestamp(size int64, min, max arrow.Timestamp, nullProb float64) arrow.Array {
	return integers(r, arrow.FixedWidthTypes.Timestamp_ns, size, min, max, nullProb)
}

func (r *RandomArrayGenerator) Float32(size int64, min, max float32, nullProb, nanProb float64) arrow.Array {
	return floats(r, arrow.PrimitiveTypes.Float32, size, min, max, nullProb, nanProb)
}

func (r *RandomArrayGenerator) Float64(size int64, min, max float64, nullProb, nanProb float64) arrow.Array {
	return floats(r, arrow.PrimitiveTypes.Float64, size, min, max, nullProb, nanProb)
}
