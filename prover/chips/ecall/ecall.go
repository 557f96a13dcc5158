/*
 * ZK32 - ECALL send chip
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

// Package ecall carries the CPU side of the syscall lookup: one row per
// dispatched ECALL emitting the send term the precompile chips receive. In
// the full machine these columns live in the CPU chip.
package ecall

import (
	"fmt"

	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/prover/air"
	"github.com/rcornwell/ZK32/prover/field"
)

type ecallCols struct {
	isReal int
	shard  int
	clk    int
	nonce  int
	code   int
	arg1   int
	arg2   int
}

func newEcallCols() (ecallCols, int) {
	l := &air.Layout{}
	c := ecallCols{
		isReal: l.Col(),
		shard:  l.Col(),
		clk:    l.Col(),
		nonce:  l.Col(),
		code:   l.Col(),
		arg1:   l.Col(),
		arg2:   l.Col(),
	}
	return c, l.Width()
}

var layout, width = newEcallCols()

type Chip struct {
	FixedLog2Rows int
}

func New() *Chip {
	return &Chip{}
}

func (c *Chip) Name() string {
	return "Ecall"
}

func (c *Chip) Width() int {
	return width
}

func (c *Chip) Included(input *record.ExecutionRecord) bool {
	return len(input.Syscalls) != 0
}

// GenerateTrace requires the precompile chips to have run first against the
// same output record: the nonce of each send is the row index its receiver
// was assigned there.
func (c *Chip) GenerateTrace(input, output *record.ExecutionRecord) *air.Matrix {
	var rows [][]air.F
	for _, ev := range input.Syscalls {
		nonce, ok := output.NonceLookup[ev.LookupID]
		if !ok {
			panic(fmt.Sprintf("no nonce for lookup id %d", ev.LookupID))
		}
		row := make([]air.F, width)
		row[layout.isReal] = field.One
		row[layout.shard] = field.New(ev.Shard)
		row[layout.clk] = field.New(ev.Clk)
		row[layout.nonce] = field.New(nonce)
		row[layout.code] = field.New(ev.Code)
		row[layout.arg1] = field.New(ev.Arg1)
		row[layout.arg2] = field.New(ev.Arg2)
		rows = append(rows, row)
	}
	rows = air.PadRows(rows, c.FixedLog2Rows, func() []air.F {
		return make([]air.F, width)
	})
	return air.NewMatrix(rows, width)
}

func (c *Chip) Eval(b air.Builder, row []air.F) {
	b.AssertBool(row[layout.isReal])
	b.SendSyscall(air.SyscallTerm{
		Shard: row[layout.shard],
		Clk:   row[layout.clk],
		Nonce: row[layout.nonce],
		Code:  row[layout.code],
		Arg1:  row[layout.arg1],
		Arg2:  row[layout.arg2],
		Scope: air.ScopeGlobal,
	}, row[layout.isReal])
}
