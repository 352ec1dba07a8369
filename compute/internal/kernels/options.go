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

import "fmt"

type Order int8

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	}
	return fmt.Sprintf("Order(%d)", int8(o))
}

// NullPlacement says which end of the output receives the null (and
// NaN) positions. The zero value places them at the end.
type NullPlacement int8

const (
	AtEnd NullPlacement = iota
	AtStart
)

func (n NullPlacement) String() string {
	switch n {
	case AtEnd:
		return "at_end"
	case AtStart:
		return "at_start"
	}
	return fmt.Sprintf("NullPlacement(%d)", int8(n))
}

// Strategy selects the sorting algorithm. StrategyAuto lets the
// dispatcher pick; the others exist so tests and benchmarks can pin a
// code path.
type Strategy int8

const (
	StrategyAuto Strategy = iota
	StrategyCounting
	StrategyComparison
)

func (s Strategy) String() string {
	switch s {
	case StrategyAuto:
		return "auto"
	case StrategyCounting:
		return "counting"
	case StrategyComparison:
		return "comparison"
	}
	return fmt.Sprintf("Strategy(%d)", int8(s))
}

const (
	// DefaultCountingSortRatio allows counting sort while the value range
	// is at most the array length, keeping the counting table no larger
	// than the permutation itself.
	DefaultCountingSortRatio = 1.0
	// DefaultMaxCountingSortRange caps the counting table at 128MiB.
	DefaultMaxCountingSortRange uint64 = 1 << 24
)

// SortToIndicesOptions controls the sort_to_indices kernel. The zero
// value sorts ascending with nulls at the end and default thresholds.
type SortToIndicesOptions struct {
	Order         Order         `compute:"order"`
	NullPlacement NullPlacement `compute:"null_placement"`
	Strategy      Strategy      `compute:"strategy"`
	// CountingSortRatio: integer input is counting sorted when
	// (max - min) <= CountingSortRatio * length. Zero means the default.
	CountingSortRatio float64 `compute:"counting_sort_ratio"`
	// MaxCountingSortRange is the largest number of counting buckets,
	// (max - min + 1), ever allocated. Zero means the default.
	MaxCountingSortRange uint64 `compute:"max_counting_sort_range"`
}

func (*SortToIndicesOptions) TypeName() string { return "SortToIndicesOptions" }

// DefaultSortToIndicesOptions returns the options used when none are given.
func DefaultSortToIndicesOptions() *SortToIndicesOptions {
	return &SortToIndicesOptions{
		CountingSortRatio:    DefaultCountingSortRatio,
		MaxCountingSortRange: DefaultMaxCountingSortRange,
	}
}

func (o SortToIndicesOptions) withDefaults() SortToIndicesOptions {
	if o.CountingSortRatio <= 0 {
		o.CountingSortRatio = DefaultCountingSortRatio
	}
	if o.MaxCountingSortRange == 0 {
		o.MaxCountingSortRange = DefaultMaxCountingSortRange
	}
	return o
}

// countingApplies reports whether a value range is cheap enough to
// counting sort for an array of the given length.
func (o *SortToIndicesOptions) countingApplies(valueRange uint64, length int64) bool {
	return valueRange < o.MaxCountingSortRange &&
		float64(valueRange) <= o.CountingSortRatio*float64(length)
}
