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

//go:build assert

package kernels

import (
	"fmt"

	"github.com/arrowkernels/sortindices/internal/bitutils"
	"github.com/arrowkernels/sortindices/internal/debug"
)

// verifyPermutation checks the output of a strategy against the
// reference comparator. Only compiled in with the assert tag.
func verifyPermutation[T SortableTypes](vals []T, v *arrayView, opts *SortToIndicesOptions, out []uint64) {
	seen := make([]bool, len(out))
	for _, p := range out {
		debug.Assert(p < uint64(len(out)) && !seen[p], func() string {
			return fmt.Sprintf("sort_to_indices: position %d out of range or repeated", p)
		})
		seen[p] = true
	}

	// the null group holds exactly the null positions, in index order
	starts := layoutGroups(v.validCount(), 0, v.nulls, opts.NullPlacement)
	next := starts.nulls
	bitutils.VisitBitBlocks(v.validity, v.offset, v.len, func(int64) {}, func(pos int64) {
		debug.Assert(out[next] == uint64(pos), func() string {
			return fmt.Sprintf("sort_to_indices: null position %d not at slot %d", pos, next)
		})
		next++
	})

	for i := 1; i < len(out); i++ {
		a, b := int64(out[i-1]), int64(out[i])
		debug.Assert(compareIndices(vals, v, opts, a, b) < 0, func() string {
			return fmt.Sprintf("sort_to_indices: positions %d and %d out of order", a, b)
		})
	}
}
