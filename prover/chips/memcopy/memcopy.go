/*
 * ZK32 - Memory copy chip
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

package memcopy

import (
	"fmt"

	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/emu/syscall"
	"github.com/rcornwell/ZK32/prover/air"
	"github.com/rcornwell/ZK32/prover/field"
)

type memCopyCols struct {
	isReal    int
	shard     int
	clk       int
	nonce     int
	srcPtr    int
	dstPtr    int
	srcAccess []air.MemoryReadCols
	dstAccess []air.MemoryWriteCols
}

func newMemCopyCols(words int) (memCopyCols, int) {
	l := &air.Layout{}
	c := memCopyCols{
		isReal: l.Col(),
		shard:  l.Col(),
		clk:    l.Col(),
		nonce:  l.Col(),
		srcPtr: l.Col(),
		dstPtr: l.Col(),
	}
	c.srcAccess = make([]air.MemoryReadCols, words)
	c.dstAccess = make([]air.MemoryWriteCols, words)
	for i := range c.srcAccess {
		c.srcAccess[i] = air.NewMemoryReadCols(l)
	}
	for i := range c.dstAccess {
		c.dstAccess[i] = air.NewMemoryWriteCols(l)
	}
	return c, l.Width()
}

// Chip proves one fixed length copy per row. Two instances exist, for 8 and
// 16 words; the word count fully determines the row layout.
type Chip struct {
	words         int
	code          syscall.Code
	layout        memCopyCols
	width         int
	FixedLog2Rows int
}

// New creates the chip for a word count of 8 or 16.
func New(words int) *Chip {
	var code syscall.Code
	switch words {
	case 8:
		code = syscall.Memcpy32
	case 16:
		code = syscall.Memcpy64
	default:
		panic(fmt.Sprintf("memcopy chip of %d words", words))
	}
	layout, width := newMemCopyCols(words)
	return &Chip{words: words, code: code, layout: layout, width: width}
}

func (c *Chip) Name() string {
	return fmt.Sprintf("MemCopy%d", c.words)
}

func (c *Chip) Width() int {
	return c.width
}

func (c *Chip) Included(input *record.ExecutionRecord) bool {
	return len(input.GetPrecompileEvents(c.code.SyscallID())) != 0
}

func (c *Chip) GenerateTrace(input, output *record.ExecutionRecord) *air.Matrix {
	events := input.GetPrecompileEvents(c.code.SyscallID())
	lo := c.layout

	var rows [][]air.F
	for _, pe := range events {
		ev := pe.MemCopy
		row := make([]air.F, c.width)

		row[lo.isReal] = field.One
		row[lo.shard] = field.New(ev.Shard)
		row[lo.clk] = field.New(ev.Clk)
		row[lo.srcPtr] = field.New(ev.SrcPtr)
		row[lo.dstPtr] = field.New(ev.DstPtr)

		for i := range lo.srcAccess {
			lo.srcAccess[i].Populate(row, ev.ReadRecords[i], output)
		}
		for i := range lo.dstAccess {
			lo.dstAccess[i].Populate(row, ev.WriteRecords[i], output)
		}

		output.NonceLookup[ev.LookupID] = uint32(len(rows))
		rows = append(rows, row)
	}

	rows = air.PadRows(rows, c.FixedLog2Rows, func() []air.F {
		return make([]air.F, c.width)
	})
	for i, row := range rows {
		row[lo.nonce] = field.New(uint32(i))
	}
	return air.NewMatrix(rows, c.width)
}

func (c *Chip) Eval(b air.Builder, row []air.F) {
	lo := c.layout
	isReal := row[lo.isReal]
	b.AssertBool(isReal)

	// Writes carry the read bytes: the copy moves values untouched.
	src := air.LimbsFromReadAccess(row, lo.srcAccess)
	dst := air.LimbsFromAccess(row, lo.dstAccess)
	on := b.When(isReal)
	for i := range src {
		on.AssertEq(src[i], dst[i])
	}

	shard := row[lo.shard]
	clk := row[lo.clk]
	air.EvalMemoryReadSlice(b, row, lo.srcAccess, row[lo.srcPtr], shard, clk, isReal)
	air.EvalMemoryWriteSlice(b, row, lo.dstAccess, row[lo.dstPtr], shard, clk.Add(field.One), isReal)

	b.ReceiveSyscall(air.SyscallTerm{
		Shard: shard,
		Clk:   clk,
		Nonce: row[lo.nonce],
		Code:  field.New(c.code.SyscallID()),
		Arg1:  row[lo.srcPtr],
		Arg2:  row[lo.dstPtr],
		Scope: air.ScopeGlobal,
	}, isReal)
}
