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

package compute

import (
	"context"
	"sync"

	arrowcompute "github.com/apache/arrow/go/v17/arrow/compute"
	"github.com/arrowkernels/sortindices/compute/internal/kernels"
)

var sortToIndicesDoc = arrowcompute.FunctionDoc{
	Summary: "Return the indices that would sort an array",
	Description: "This function computes an array of indices that define a stable sort\n" +
		"of the input array. By default, null values are considered greater\n" +
		"than any other value and are therefore sorted at the end of the array.\n" +
		"For floating-point types, NaNs are considered greater than any\n" +
		"other non-null value, but smaller than null values.",
	ArgNames:    []string{"array"},
	OptionsType: "SortToIndicesOptions",
}

// RegisterSortToIndices registers the "sort_to_indices" vector function
// in registry. It reports false when a function of that name already
// exists.
func RegisterSortToIndices(registry arrowcompute.FunctionRegistry) bool {
	vf := arrowcompute.NewVectorFunction("sort_to_indices", arrowcompute.Unary(), sortToIndicesDoc)
	vf.SetDefaultOptions(DefaultSortToIndicesOptions())
	ks := kernels.GetVectorSortingKernels()
	for i := range ks {
		if err := vf.AddKernel(ks[i]); err != nil {
			panic(err)
		}
	}
	return registry.AddFunction(vf, false)
}

var registerOnce sync.Once

// SortToIndicesDatum is SortToIndices through the Arrow function
// registry, registering the function in the global registry on first
// use. The result is an array datum of uint64 positions.
func SortToIndicesDatum(ctx context.Context, opts SortToIndicesOptions, input arrowcompute.Datum) (arrowcompute.Datum, error) {
	registerOnce.Do(func() {
		RegisterSortToIndices(arrowcompute.GetFunctionRegistry())
	})
	return arrowcompute.CallFunction(ctx, "sort_to_indices", &opts, input)
}
