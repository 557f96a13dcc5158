/*
 * ZK32 - BN254 scalar multiply accumulate chip
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

package bn254

import (
	"math/big"

	curve "github.com/rcornwell/ZK32/curves/bn254"
	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/emu/syscall"
	"github.com/rcornwell/ZK32/prover/air"
	"github.com/rcornwell/ZK32/prover/field"
	"github.com/rcornwell/ZK32/prover/fieldop"
)

type macCols struct {
	isReal     int
	shard      int
	clk        int
	nonce      int
	arg1Ptr    int
	arg2Ptr    int
	arg1Access [curve.NumWordsPerFE]air.MemoryWriteCols
	arg2Access [2]air.MemoryReadCols
	aAccess    [curve.NumWordsPerFE]air.MemoryReadCols
	bAccess    [curve.NumWordsPerFE]air.MemoryReadCols
	mulEval    fieldop.Cols
	addEval    fieldop.Cols
}

func newMacCols() (macCols, int) {
	l := &air.Layout{}
	c := macCols{
		isReal:  l.Col(),
		shard:   l.Col(),
		clk:     l.Col(),
		nonce:   l.Col(),
		arg1Ptr: l.Col(),
		arg2Ptr: l.Col(),
	}
	for i := range c.arg1Access {
		c.arg1Access[i] = air.NewMemoryWriteCols(l)
	}
	for i := range c.arg2Access {
		c.arg2Access[i] = air.NewMemoryReadCols(l)
	}
	for i := range c.aAccess {
		c.aAccess[i] = air.NewMemoryReadCols(l)
	}
	for i := range c.bAccess {
		c.bAccess[i] = air.NewMemoryReadCols(l)
	}
	par := fieldop.Bn254ScalarParams()
	c.mulEval = fieldop.NewCols(l, par)
	c.addEval = fieldop.NewCols(l, par)
	return c, l.Width()
}

var macLayout, macWidth = newMacCols()

// MacChip proves acc <- a*b + acc mod r rows. The intermediate product lands
// in mulEval, the accumulate in addEval.
type MacChip struct {
	FixedLog2Rows int
}

func NewMacChip() *MacChip {
	return &MacChip{}
}

func (c *MacChip) Name() string {
	return "Bn254ScalarMac"
}

func (c *MacChip) Width() int {
	return macWidth
}

func (c *MacChip) Included(input *record.ExecutionRecord) bool {
	return len(input.GetPrecompileEvents(syscall.BN254ScalarMac.SyscallID())) != 0
}

func (c *MacChip) GenerateTrace(input, output *record.ExecutionRecord) *air.Matrix {
	events := input.GetPrecompileEvents(syscall.BN254ScalarMac.SyscallID())
	lo := macLayout

	var rows [][]air.F
	for _, pe := range events {
		ev := pe.Bn254
		row := make([]air.F, macWidth)

		arg1 := ev.Arg1.PrevValue()
		a := ev.A.Value()
		b := ev.B.Value()

		row[lo.isReal] = field.One
		row[lo.shard] = field.New(ev.Shard)
		row[lo.clk] = field.New(ev.Clk)
		row[lo.arg1Ptr] = field.New(ev.Arg1.Ptr)
		row[lo.arg2Ptr] = field.New(ev.Arg2.Ptr)

		mul, err := lo.mulEval.Populate(row, ev.Shard, a, b, fieldop.OpMul, output)
		if err != nil {
			panic(err)
		}
		if _, err := lo.addEval.Populate(row, ev.Shard, arg1, mul, fieldop.OpAdd, output); err != nil {
			panic(err)
		}

		for i := range lo.arg1Access {
			lo.arg1Access[i].Populate(row, ev.Arg1.Records[i], output)
		}
		for i := range lo.arg2Access {
			lo.arg2Access[i].Populate(row, ev.Arg2.Records[i], output)
		}
		for i := range lo.aAccess {
			lo.aAccess[i].Populate(row, ev.A.Records[i], output)
		}
		for i := range lo.bAccess {
			lo.bAccess[i].Populate(row, ev.B.Records[i], output)
		}

		output.NonceLookup[ev.LookupID] = uint32(len(rows))
		rows = append(rows, row)
	}

	rows = air.PadRows(rows, c.FixedLog2Rows, func() []air.F {
		row := make([]air.F, macWidth)
		zero := new(big.Int)
		if _, err := lo.mulEval.Populate(row, 0, zero, zero, fieldop.OpMul, nil); err != nil {
			panic(err)
		}
		if _, err := lo.addEval.Populate(row, 0, zero, zero, fieldop.OpAdd, nil); err != nil {
			panic(err)
		}
		return row
	})
	for i, row := range rows {
		row[lo.nonce] = field.New(uint32(i))
	}
	return air.NewMatrix(rows, macWidth)
}

func (c *MacChip) Eval(b air.Builder, row []air.F) {
	lo := macLayout
	isReal := row[lo.isReal]
	b.AssertBool(isReal)

	arg1 := air.LimbsFromPrevAccess(row, lo.arg1Access[:])
	aLimbs := air.LimbsFromReadAccess(row, lo.aAccess[:])
	bLimbs := air.LimbsFromReadAccess(row, lo.bAccess[:])

	lo.mulEval.Eval(b, row, aLimbs, bLimbs, fieldop.OpMul, isReal)
	lo.addEval.Eval(b, row, arg1, lo.mulEval.ResultLimbs(row), fieldop.OpAdd, isReal)

	// The writeback carries the accumulate result.
	written := air.LimbsFromAccess(row, lo.arg1Access[:])
	result := lo.addEval.ResultLimbs(row)
	on := b.When(isReal)
	for i := range result {
		on.AssertEq(result[i], written[i])
	}

	shard := row[lo.shard]
	clk := row[lo.clk]
	air.EvalMemoryReadSlice(b, row, lo.arg2Access[:], row[lo.arg2Ptr], shard, clk, isReal)
	air.EvalMemoryWriteSlice(b, row, lo.arg1Access[:], row[lo.arg1Ptr], shard, clk.Add(field.One), isReal)

	// The descriptor bytes recompose into the operand pointers.
	arg2 := air.LimbsFromReadAccess(row, lo.arg2Access[:])
	aPtr := recomposePtr(arg2[0:4])
	bPtr := recomposePtr(arg2[4:8])
	air.EvalMemoryReadSlice(b, row, lo.aAccess[:], aPtr, shard, clk, isReal)
	air.EvalMemoryReadSlice(b, row, lo.bAccess[:], bPtr, shard, clk, isReal)

	b.ReceiveSyscall(air.SyscallTerm{
		Shard: shard,
		Clk:   clk,
		Nonce: row[lo.nonce],
		Code:  field.New(syscall.BN254ScalarMac.SyscallID()),
		Arg1:  row[lo.arg1Ptr],
		Arg2:  row[lo.arg2Ptr],
		Scope: air.ScopeGlobal,
	}, isReal)
}

// Fold four little endian bytes into the pointer they encode.
func recomposePtr(limbs []air.F) air.F {
	var ptr air.F
	for i := len(limbs) - 1; i >= 0; i-- {
		ptr = ptr.Mul(air.F(256)).Add(limbs[i])
	}
	return ptr
}
