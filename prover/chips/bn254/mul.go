/*
 * ZK32 - BN254 scalar multiply chip
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

type mulCols struct {
	isReal  int
	shard   int
	clk     int
	nonce   int
	pPtr    int
	qPtr    int
	pAccess [curve.NumWordsPerFE]air.MemoryWriteCols
	qAccess [curve.NumWordsPerFE]air.MemoryReadCols
	eval    fieldop.Cols
}

func newMulCols() (mulCols, int) {
	l := &air.Layout{}
	c := mulCols{
		isReal: l.Col(),
		shard:  l.Col(),
		clk:    l.Col(),
		nonce:  l.Col(),
		pPtr:   l.Col(),
		qPtr:   l.Col(),
	}
	for i := range c.pAccess {
		c.pAccess[i] = air.NewMemoryWriteCols(l)
	}
	for i := range c.qAccess {
		c.qAccess[i] = air.NewMemoryReadCols(l)
	}
	c.eval = fieldop.NewCols(l, fieldop.Bn254ScalarParams())
	return c, l.Width()
}

var mulLayout, mulWidth = newMulCols()

// MulChip proves p <- p*q mod r rows.
type MulChip struct {
	// Trace height as log2. Zero pads to the next power of two.
	FixedLog2Rows int
}

func NewMulChip() *MulChip {
	return &MulChip{}
}

func (c *MulChip) Name() string {
	return "Bn254ScalarMul"
}

func (c *MulChip) Width() int {
	return mulWidth
}

func (c *MulChip) Included(input *record.ExecutionRecord) bool {
	return len(input.GetPrecompileEvents(syscall.BN254ScalarMul.SyscallID())) != 0
}

func (c *MulChip) GenerateTrace(input, output *record.ExecutionRecord) *air.Matrix {
	events := input.GetPrecompileEvents(syscall.BN254ScalarMul.SyscallID())
	lo := mulLayout

	var rows [][]air.F
	for _, pe := range events {
		ev := pe.Bn254
		row := make([]air.F, mulWidth)

		p := ev.Arg1.PrevValue()
		q := ev.Arg2.Value()

		row[lo.isReal] = field.One
		row[lo.shard] = field.New(ev.Shard)
		row[lo.clk] = field.New(ev.Clk)
		row[lo.pPtr] = field.New(ev.Arg1.Ptr)
		row[lo.qPtr] = field.New(ev.Arg2.Ptr)

		if _, err := lo.eval.Populate(row, ev.Shard, p, q, fieldop.OpMul, output); err != nil {
			panic(err)
		}

		for i := range lo.pAccess {
			lo.pAccess[i].Populate(row, ev.Arg1.Records[i], output)
		}
		for i := range lo.qAccess {
			lo.qAccess[i].Populate(row, ev.Arg2.Records[i], output)
		}

		output.NonceLookup[ev.LookupID] = uint32(len(rows))
		rows = append(rows, row)
	}

	rows = air.PadRows(rows, c.FixedLog2Rows, func() []air.F {
		row := make([]air.F, mulWidth)
		zero := new(big.Int)
		if _, err := lo.eval.Populate(row, 0, zero, zero, fieldop.OpMul, nil); err != nil {
			panic(err)
		}
		return row
	})
	for i, row := range rows {
		row[lo.nonce] = field.New(uint32(i))
	}
	return air.NewMatrix(rows, mulWidth)
}

func (c *MulChip) Eval(b air.Builder, row []air.F) {
	lo := mulLayout
	isReal := row[lo.isReal]
	b.AssertBool(isReal)

	p := air.LimbsFromPrevAccess(row, lo.pAccess[:])
	q := air.LimbsFromReadAccess(row, lo.qAccess[:])

	lo.eval.Eval(b, row, p, q, fieldop.OpMul, isReal)

	// The written operand is exactly the reduced product.
	written := air.LimbsFromAccess(row, lo.pAccess[:])
	result := lo.eval.ResultLimbs(row)
	on := b.When(isReal)
	for i := range result {
		on.AssertEq(result[i], written[i])
	}

	shard := row[lo.shard]
	clk := row[lo.clk]
	air.EvalMemoryReadSlice(b, row, lo.qAccess[:], row[lo.qPtr], shard, clk, isReal)
	air.EvalMemoryWriteSlice(b, row, lo.pAccess[:], row[lo.pPtr], shard, clk.Add(field.One), isReal)

	b.ReceiveSyscall(air.SyscallTerm{
		Shard: shard,
		Clk:   clk,
		Nonce: row[lo.nonce],
		Code:  field.New(syscall.BN254ScalarMul.SyscallID()),
		Arg1:  row[lo.pPtr],
		Arg2:  row[lo.qPtr],
		Scope: air.ScopeGlobal,
	}, isReal)
}
