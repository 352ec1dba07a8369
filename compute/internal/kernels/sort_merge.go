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

// insertionSortRun is the length of the runs sorted by insertion sort
// before merging starts.
const insertionSortRun = 32

// comparisonSort fills out with the sorted permutation of v using a
// stable merge sort over positions. Any supported type may use it.
func comparisonSort[T SortableTypes](ctx *KernelCtx, vals []T, v *arrayView, opts *SortToIndicesOptions, out []uint64) error {
	lo, hi := partitionIndices(vals, v, opts.NullPlacement, out)
	idx := out[lo:hi]
	if len(idx) < 2 {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	var scratch []uint64
	if len(idx) > insertionSortRun {
		buf, slots, err := ctx.allocateSlots(int64(len(idx)))
		if err != nil {
			return err
		}
		defer buf.Release()
		scratch = slots
	}

	mergeSortIndices(idx, scratch, vals)
	if opts.Order == Descending {
		reverseKeepTies(idx, vals)
	}
	return nil
}

// mergeSortIndices sorts the positions in idx by vals[position],
// ascending and stable. scratch must be at least len(idx) long unless
// len(idx) <= insertionSortRun.
func mergeSortIndices[T SortableTypes](idx, scratch []uint64, vals []T) {
	n := len(idx)
	for lo := 0; lo < n; lo += insertionSortRun {
		insertionSortIndices(idx[lo:min(lo+insertionSortRun, n)], vals)
	}
	if n <= insertionSortRun {
		return
	}

	src, dst := idx, scratch[:n]
	for width := insertionSortRun; width < n; width *= 2 {
		for lo := 0; lo < n; lo += 2 * width {
			mid, hi := min(lo+width, n), min(lo+2*width, n)
			mergeRuns(dst[lo:hi], src[lo:mid], src[mid:hi], vals)
		}
		src, dst = dst, src
	}

	// after an odd number of passes the result sits in scratch
	if &src[0] != &idx[0] {
		copy(idx, src)
	}
}

func insertionSortIndices[T SortableTypes](idx []uint64, vals []T) {
	for i := 1; i < len(idx); i++ {
		cur := idx[i]
		x := vals[cur]
		j := i
		for ; j > 0 && x < vals[idx[j-1]]; j-- {
			idx[j] = idx[j-1]
		}
		idx[j] = cur
	}
}

// mergeRuns merges two sorted runs into dst. On equal values the left
// run wins, which keeps the merge stable.
func mergeRuns[T SortableTypes](dst, left, right []uint64, vals []T) {
	if len(right) == 0 || !(vals[right[0]] < vals[left[len(left)-1]]) {
		// already in order
		n := copy(dst, left)
		copy(dst[n:], right)
		return
	}

	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if vals[right[j]] < vals[left[i]] {
			dst[k] = right[j]
			j++
		} else {
			dst[k] = left[i]
			i++
		}
		k++
	}
	k += copy(dst[k:], left[i:])
	copy(dst[k:], right[j:])
}
