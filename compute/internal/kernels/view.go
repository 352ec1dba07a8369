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
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/bitutil"
	"github.com/apache/arrow/go/v17/arrow/compute/exec"
	"github.com/arrowkernels/sortindices/internal/bitutils"
)

// arrayView is the read-only window the strategies work through: the
// validity bitmap and the raw value buffer of a fixed-width array,
// together with the slice offset that applies to both.
type arrayView struct {
	typ    arrow.DataType
	len    int64
	offset int64
	nulls  int64
	// validity is nil when the array has no nulls
	validity []byte
	values   []byte
}

func viewOfData(data arrow.ArrayData) arrayView {
	v := arrayView{
		typ:    data.DataType(),
		len:    int64(data.Len()),
		offset: int64(data.Offset()),
	}

	bufs := data.Buffers()
	if len(bufs) > 1 && bufs[1] != nil {
		v.values = bufs[1].Bytes()
	}
	if v.len == 0 {
		return v
	}

	var bitmap []byte
	if len(bufs) > 0 && bufs[0] != nil {
		bitmap = bufs[0].Bytes()
	}
	v.setValidity(bitmap, int64(data.NullN()))
	return v
}

func viewOfSpan(span *exec.ArraySpan) arrayView {
	v := arrayView{
		typ:    span.Type,
		len:    span.Len,
		offset: span.Offset,
		values: span.Buffers[1].Buf,
	}
	if v.len == 0 {
		return v
	}

	v.setValidity(span.Buffers[0].Buf, span.Nulls)
	return v
}

// setValidity records the bitmap and null count. Slices leave the null
// count unknown (negative) until someone counts it, so it is counted here.
func (v *arrayView) setValidity(bitmap []byte, nulls int64) {
	if nulls < 0 {
		nulls = 0
		if bitmap != nil {
			nulls = v.len - int64(bitutil.CountSetBits(bitmap, int(v.offset), int(v.len)))
		}
	}
	v.nulls = nulls
	if nulls > 0 {
		v.validity = bitmap
	}
}

func (v *arrayView) validCount() int64 { return v.len - v.nulls }

// isValid reports whether logical position i holds a value.
func (v *arrayView) isValid(i int64) bool {
	return v.validity == nil || bitutil.BitIsSet(v.validity, int(v.offset+i))
}

// blocks iterates the validity bitmap a word at a time.
func (v *arrayView) blocks() *bitutils.OptionalBitBlockCounter {
	return bitutils.NewOptionalBitBlockCounter(v.validity, v.offset, v.len)
}

// valuesOf returns the value buffer of v typed as T, indexed by logical
// position.
func valuesOf[T SortableTypes](v *arrayView) []T {
	if v.len == 0 {
		return nil
	}
	return reinterpret[T](v.values)[v.offset : v.offset+v.len]
}
