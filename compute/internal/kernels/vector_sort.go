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
	"github.com/apache/arrow/go/v17/arrow/compute/exec"
)

type SortToIndicesState = SortToIndicesOptions

func sortToIndicesInit(_ *exec.KernelCtx, args exec.KernelInitArgs) (exec.KernelState, error) {
	if args.Options == nil {
		return *DefaultSortToIndicesOptions(), nil
	}
	if opts, ok := args.Options.(*SortToIndicesOptions); ok {
		if opts == nil {
			return *DefaultSortToIndicesOptions(), nil
		}
		return *opts, nil
	}

	return nil, fmt.Errorf("%w: attempted to initialize kernel state from invalid function options",
		arrow.ErrInvalid)
}

// GetVectorSortingKernels returns one sort_to_indices kernel per
// supported input type, each producing a uint64 permutation.
func GetVectorSortingKernels() []exec.VectorKernel {
	base := exec.NewVectorKernelWithSig(nil, sortToIndicesExec, sortToIndicesInit)
	base.CanExecuteChunkWise = false
	base.OutputChunked = false
	base.NullHandling = exec.NullNoOutput
	base.MemAlloc = exec.MemNoPrealloc

	outType := exec.NewOutputType(arrow.PrimitiveTypes.Uint64)
	kernels := make([]exec.VectorKernel, 0, len(sortableTypeIDs))
	for _, id := range sortableTypeIDs {
		base.Signature = &exec.KernelSignature{
			InputTypes: []exec.InputType{exec.NewIDInput(id)},
			OutType:    outType,
		}
		kernels = append(kernels, base)
	}
	return kernels
}

func sortToIndicesExec(ctx *exec.KernelCtx, batch *exec.ExecSpan, out *exec.ExecResult) error {
	if !batch.Values[0].IsArray() {
		return fmt.Errorf("%w: input to sort_to_indices must be an array", arrow.ErrInvalid)
	}

	opts := ctx.State.(SortToIndicesState)
	kctx := KernelCtx{Ctx: ctx.Ctx, Mem: exec.GetAllocator(ctx.Ctx)}
	v := viewOfSpan(&batch.Values[0].Array)

	buf, _, err := sortView(&kctx, &v, &opts)
	if err != nil {
		return err
	}

	out.Type = arrow.PrimitiveTypes.Uint64
	out.Len = v.len
	out.Nulls = 0
	out.Buffers[1].WrapBuffer(buf)
	out.Buffers[1].SelfAlloc = true
	return nil
}
