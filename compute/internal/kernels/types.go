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
	"unsafe"

	"github.com/apache/arrow/go/v17/arrow"
	"golang.org/x/exp/constraints"
)

// IntTypes is a type constraint for raw values represented as signed
// integer types by Arrow. We aren't just using constraints.Signed
// because we don't want to include the raw `int` type here whose size
// changes based on the architecture.
type IntTypes interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// UintTypes is the unsigned counterpart of IntTypes, again excluding
// `uint` and `uintptr`.
type UintTypes interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// IntegerTypes are the physical encodings eligible for counting sort.
type IntegerTypes interface {
	IntTypes | UintTypes
}

// FloatTypes is a type constraint for raw floating point values. float16
// is not included since it has no native ordering in Go.
type FloatTypes interface {
	constraints.Float
}

// SortableTypes is every physical encoding the sort kernels accept.
type SortableTypes interface {
	IntegerTypes | FloatTypes
}

// sortableTypeIDs lists the logical types registered with the sort
// kernels. Temporal types sort by their physical integer value.
var sortableTypeIDs = []arrow.Type{
	arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
	arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
	arrow.FLOAT32, arrow.FLOAT64,
	arrow.DATE32, arrow.DATE64, arrow.TIME32, arrow.TIME64,
	arrow.TIMESTAMP, arrow.DURATION,
}

// reinterpret views a byte slice as a slice of T without copying.
func reinterpret[T SortableTypes](b []byte) []T {
	var z T
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), len(b)/int(unsafe.Sizeof(z)))
}

func isFloating[T SortableTypes]() bool {
	switch any(T(0)).(type) {
	case float32, float64:
		return true
	}
	return false
}
