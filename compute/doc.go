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

// Package compute sorts Arrow arrays into index permutations.
//
// SortToIndices returns, for a fixed-width array, the positions that
// visit its elements in sorted order: non-null values ascending (or
// descending), ties in original index order, nulls together at one end.
// Small-range integer input is counting sorted in linear time while
// everything else uses a stable merge sort; both produce the same
// permutation.
//
// All memory comes from the allocator carried by the context, see
// WithAllocator. The same kernels are also available through the Arrow
// compute function registry as "sort_to_indices".
package compute
