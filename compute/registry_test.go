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

package compute_test

import (
	"testing"

	arrowcompute "github.com/apache/arrow/go/v17/arrow/compute"
	"github.com/arrowkernels/sortindices/compute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSortToIndices(t *testing.T) {
	registry := arrowcompute.NewRegistry()
	nfuncs := registry.NumFunctions()

	assert.True(t, compute.RegisterSortToIndices(registry))
	assert.False(t, compute.RegisterSortToIndices(registry))
	assert.Equal(t, nfuncs+1, registry.NumFunctions())

	fn, ok := registry.GetFunction("sort_to_indices")
	require.True(t, ok)
	assert.Equal(t, arrowcompute.FuncVector, fn.Kind())
	assert.Equal(t, arrowcompute.Unary(), fn.Arity())
	assert.Equal(t, "SortToIndicesOptions", fn.Doc().OptionsType)
	assert.Equal(t, compute.DefaultSortToIndicesOptions(), fn.DefaultOptions())
	assert.NoError(t, fn.Validate())
}
