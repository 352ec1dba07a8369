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
)

// countingSort fills out with the sorted permutation of v by bucketing
// every valid value by its distance from lo. valueRange must be
// hi - lo as returned by minMax. Scanning positions in ascending order
// during the scatter pass is what makes the result stable.
func countingSort[T IntegerTypes](ctx *KernelCtx, vals []T, v *arrayView, opts *SortToIndicesOptions, lo T, valueRange uint64, out []uint64) error {
	if valueRange >= opts.MaxCountingSortRange {
		return fmt.Errorf("%w: value range %d too large for counting sort (max %d)",
			arrow.ErrInvalid, valueRange, opts.MaxCountingSortRange)
	}

	nbuckets := int64(valueRange) + 1
	buf, counts, err := ctx.allocateSlots(nbuckets)
	if err != nil {
		return err
	}
	defer buf.Release()
	clear(counts)

	base := uint64(lo)
	counter := v.blocks()
	for pos := int64(0); pos < v.len; {
		block := counter.NextBlock()
		end := pos + int64(block.Len)
		switch {
		case block.AllSet():
			for _, x := range vals[pos:end] {
				counts[uint64(x)-base]++
			}
		case block.NoneSet():
		default:
			for i := pos; i < end; i++ {
				if v.isValid(i) {
					counts[uint64(vals[i])-base]++
				}
			}
		}
		pos = end
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	starts := layoutGroups(v.validCount(), 0, v.nulls, opts.NullPlacement)
	offset := uint64(starts.values)
	if opts.Order == Descending {
		for b := len(counts) - 1; b >= 0; b-- {
			c := counts[b]
			counts[b] = offset
			offset += c
		}
	} else {
		for b, c := range counts {
			counts[b] = offset
			offset += c
		}
	}

	nullPos := starts.nulls
	counter = v.blocks()
	for pos := int64(0); pos < v.len; {
		block := counter.NextBlock()
		end := pos + int64(block.Len)
		switch {
		case block.AllSet():
			for i := pos; i < end; i++ {
				b := uint64(vals[i]) - base
				out[counts[b]] = uint64(i)
				counts[b]++
			}
		case block.NoneSet():
			for i := pos; i < end; i++ {
				out[nullPos] = uint64(i)
				nullPos++
			}
		default:
			for i := pos; i < end; i++ {
				if v.isValid(i) {
					b := uint64(vals[i]) - base
					out[counts[b]] = uint64(i)
					counts[b]++
				} else {
					out[nullPos] = uint64(i)
					nullPos++
				}
			}
		}
		pos = end
	}
	return nil
}
