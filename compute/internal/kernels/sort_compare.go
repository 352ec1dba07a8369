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

// The total order used by every strategy:
//
//   - non-null values ordered by value (ascending or descending)
//   - NaN after every other value, in index order
//   - nulls in index order, after the NaNs (AtEnd) or before them (AtStart)
//   - equal values in index order
//
// The strategies never call compareIndices in their inner loops; they
// inline the same rules for their own layout. compareIndices is the
// reference the results are checked against.

func isNaN[T SortableTypes](x T) bool { return x != x }

// compareIndices compares positions i and j under the full sort order,
// returning a negative number when i sorts first.
func compareIndices[T SortableTypes](vals []T, v *arrayView, opts *SortToIndicesOptions, i, j int64) int {
	rank := func(p int64) int {
		// 0: value, 1: NaN, 2: null when nulls go at the end;
		// reversed when they go at the start.
		r := 0
		switch {
		case !v.isValid(p):
			r = 2
		case isNaN(vals[p]):
			r = 1
		}
		if opts.NullPlacement == AtStart {
			r = 2 - r
		}
		return r
	}

	ri, rj := rank(i), rank(j)
	if ri != rj {
		return ri - rj
	}

	if v.isValid(i) && !isNaN(vals[i]) {
		a, b := vals[i], vals[j]
		if opts.Order == Descending {
			a, b = b, a
		}
		switch {
		case a < b:
			return -1
		case b < a:
			return 1
		}
	}

	switch {
	case i < j:
		return -1
	case i > j:
		return 1
	}
	return 0
}

// groupStarts gives the first output slot of each group.
type groupStarts struct {
	values, nans, nulls int64
}

func layoutGroups(nvalues, nnans, nnulls int64, placement NullPlacement) groupStarts {
	if placement == AtStart {
		return groupStarts{nulls: 0, nans: nnulls, values: nnulls + nnans}
	}
	return groupStarts{values: 0, nans: nvalues, nulls: nvalues + nnans}
}

func countNaNs[T SortableTypes](vals []T, v *arrayView) (n int64) {
	if !isFloating[T]() {
		return 0
	}

	counter := v.blocks()
	for pos := int64(0); pos < v.len; {
		block := counter.NextBlock()
		end := pos + int64(block.Len)
		switch {
		case block.AllSet():
			for _, x := range vals[pos:end] {
				if isNaN(x) {
					n++
				}
			}
		case block.NoneSet():
		default:
			for i := pos; i < end; i++ {
				if v.isValid(i) && isNaN(vals[i]) {
					n++
				}
			}
		}
		pos = end
	}
	return n
}

// partitionIndices writes every position of v into out, grouped into
// values, NaNs and nulls according to placement, each group in index
// order. It returns the bounds of the values group, which is what is left
// to sort.
func partitionIndices[T SortableTypes](vals []T, v *arrayView, placement NullPlacement, out []uint64) (lo, hi int64) {
	nnans := countNaNs(vals, v)
	nvalues := v.validCount() - nnans
	starts := layoutGroups(nvalues, nnans, v.nulls, placement)
	valPos, nanPos, nullPos := starts.values, starts.nans, starts.nulls

	counter := v.blocks()
	for pos := int64(0); pos < v.len; {
		block := counter.NextBlock()
		end := pos + int64(block.Len)
		switch {
		case block.AllSet() && nnans == 0:
			for i := pos; i < end; i++ {
				out[valPos] = uint64(i)
				valPos++
			}
		case block.NoneSet():
			for i := pos; i < end; i++ {
				out[nullPos] = uint64(i)
				nullPos++
			}
		default:
			for i := pos; i < end; i++ {
				switch {
				case !v.isValid(i):
					out[nullPos] = uint64(i)
					nullPos++
				case isNaN(vals[i]):
					out[nanPos] = uint64(i)
					nanPos++
				default:
					out[valPos] = uint64(i)
					valPos++
				}
			}
		}
		pos = end
	}
	return starts.values, starts.values + nvalues
}

// minMax scans the valid values of v once. ok is false when there are
// none.
func minMax[T IntegerTypes](vals []T, v *arrayView) (lo, hi T, ok bool) {
	lo, hi = MaxOf[T](), MinOf[T]()
	counter := v.blocks()
	for pos := int64(0); pos < v.len; {
		block := counter.NextBlock()
		end := pos + int64(block.Len)
		switch {
		case block.AllSet():
			for _, x := range vals[pos:end] {
				lo, hi = min(lo, x), max(hi, x)
			}
		case block.NoneSet():
		default:
			for i := pos; i < end; i++ {
				if v.isValid(i) {
					lo, hi = min(lo, vals[i]), max(hi, vals[i])
				}
			}
		}
		pos = end
	}
	return lo, hi, v.validCount() > 0
}

// reverseKeepTies turns an ascending, index-stable ordering of idx into
// a descending one that is still index-stable: the whole slice is
// reversed, then every run of equal values is reversed back.
func reverseKeepTies[T SortableTypes](idx []uint64, vals []T) {
	reverse(idx)
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && vals[idx[end]] == vals[idx[start]] {
			end++
		}
		reverse(idx[start:end])
		start = end
	}
}

func reverse(idx []uint64) {
	for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
		idx[i], idx[j] = idx[j], idx[i]
	}
}
