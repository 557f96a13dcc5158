/*
 * ZK32 - BN254 scalar field syscalls
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package syscall

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/rcornwell/ZK32/curves/bn254"
	"github.com/rcornwell/ZK32/emu/memory"
	"github.com/rcornwell/ZK32/emu/record"
)

const (
	opMul = record.OpMul
	opMac = record.OpMac
)

// Handler for both BN254 scalar field syscalls; op picks the variant.
type bn254ScalarSyscall struct {
	op record.Bn254FieldOperation
}

func (s *bn254ScalarSyscall) ExtraCycles() uint32 {
	return 1
}

func (s *bn254ScalarSyscall) Execute(ctx *Context, code Code, arg1, arg2 uint32) (uint32, bool, error) {
	event, err := createBn254ScalarArithEvent(ctx, arg1, arg2, s.op)
	if err != nil {
		return 0, false, err
	}
	ctx.Record().AddPrecompileEvent(code.SyscallID(), record.PrecompileEvent{
		Kind:  record.KindBn254,
		Bn254: event,
	})
	return 0, false, nil
}

// Build the event for one scalar field operation.
//
// arg1 points at the 8 word operand updated in place. For Mul, arg2 points at
// the 8 word second operand. For Mac, arg2 points at a 2 word descriptor
// {a_ptr, b_ptr} and the update is arg1 <- a*b + arg1 mod r. Operands are
// read at the issuing clock, the writeback lands one tick later.
func createBn254ScalarArithEvent(ctx *Context, arg1, arg2 uint32,
	op record.Bn254FieldOperation) (*record.Bn254FieldArithEvent, error) {
	startClk := ctx.Clk
	pPtr, qPtr := arg1, arg2

	if !memory.Aligned(pPtr) {
		return nil, fmt.Errorf("p_ptr %08x misaligned: %w", pPtr, ErrInvariant)
	}
	if !memory.Aligned(qPtr) {
		return nil, fmt.Errorf("q_ptr %08x misaligned: %w", qPtr, ErrInvariant)
	}

	arg1Words, err := ctx.SliceUnsafe(pPtr, bn254.NumWordsPerFE)
	if err != nil {
		return nil, err
	}

	var arg2Access record.FieldReadAccess
	arg2Len := bn254.NumWordsPerFE
	if op == opMac {
		// Two pointers to the real operands.
		arg2Len = 2
	}
	arg2Records, _, err := ctx.ReadSlice(qPtr, arg2Len)
	if err != nil {
		return nil, err
	}
	arg2Access = record.FieldReadAccess{Ptr: qPtr, Records: arg2Records}

	bnArg1 := new(big.Int).SetBytes(reverse(bn254.WordsToBytesLE(arg1Words)))
	modulus := bn254.ScalarModulus()

	var a, b *record.FieldReadAccess
	out := new(big.Int)
	if op == opMac {
		aPtr := arg2Access.Records[0].Value
		bPtr := arg2Access.Records[1].Value
		if !memory.Aligned(aPtr) {
			return nil, fmt.Errorf("a_ptr %08x misaligned: %w", aPtr, ErrInvariant)
		}
		if !memory.Aligned(bPtr) {
			return nil, fmt.Errorf("b_ptr %08x misaligned: %w", bPtr, ErrInvariant)
		}
		aRecords, _, err := ctx.ReadSlice(aPtr, bn254.NumWordsPerFE)
		if err != nil {
			return nil, err
		}
		bRecords, _, err := ctx.ReadSlice(bPtr, bn254.NumWordsPerFE)
		if err != nil {
			return nil, err
		}
		a = &record.FieldReadAccess{Ptr: aPtr, Records: aRecords}
		b = &record.FieldReadAccess{Ptr: bPtr, Records: bRecords}

		out.Mul(a.Value(), b.Value())
		out.Add(out, bnArg1)
		out.Mod(out, modulus)
	} else {
		out.Mul(bnArg1, arg2Access.Value())
		out.Mod(out, modulus)
	}

	slog.Debug("bn254 scalar syscall",
		slog.Uint64("shard", uint64(ctx.CurrentShard())),
		slog.Uint64("clk", uint64(startClk)),
		slog.String("op", op.String()))

	ctx.Clk++

	arg1Records, err := ctx.WriteSlice(pPtr, bn254.BigToWordsLE(out))
	if err != nil {
		return nil, err
	}

	return &record.Bn254FieldArithEvent{
		LookupID:       ctx.LookupID(),
		Shard:          ctx.CurrentShard(),
		Clk:            startClk,
		Op:             op,
		Arg1:           record.FieldWriteAccess{Ptr: pPtr, Records: arg1Records},
		Arg2:           arg2Access,
		A:              a,
		B:              b,
		LocalMemAccess: ctx.Postprocess(),
	}, nil
}

func reverse(b []uint8) []uint8 {
	r := make([]uint8, len(b))
	for i, v := range b {
		r[len(b)-1-i] = v
	}
	return r
}
