/*
 * ZK32 - AIR builder and chip interface
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

package air

import (
	"fmt"

	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/prover/field"
)

// F is the trace field.
type F = field.Element

// Scope of a lookup term. Global terms are visible across all shards merged
// into one proof.
type Scope int

const ScopeGlobal Scope = 1

// SyscallTerm is one tuple of the syscall multiset argument.
type SyscallTerm struct {
	Shard F
	Clk   F
	Nonce F
	Code  F
	Arg1  F
	Arg2  F
	Scope Scope
}

// Builder is the surface a chip's Eval sees. Assertions gated through When
// hold whenever the gate product is nonzero; lookup terms and range checks
// carry an explicit multiplicity.
type Builder interface {
	AssertZero(x F)
	AssertEq(a, b F)
	AssertBool(x F)
	When(c F) Builder
	U8Range(x F, mult F)
	SendSyscall(t SyscallTerm, mult F)
	ReceiveSyscall(t SyscallTerm, mult F)
}

// Chip pairs trace generation with constraints for one kind of operation.
// GenerateTrace must be a pure function of the input record; byte lookups
// and nonces go to output, the only mutable side channel.
type Chip interface {
	Name() string
	Width() int
	GenerateTrace(input, output *record.ExecutionRecord) *Matrix
	Eval(b Builder, row []F)
	Included(input *record.ExecutionRecord) bool
}

// Matrix is a row major trace of fixed width.
type Matrix struct {
	values []F
	width  int
}

func NewMatrix(rows [][]F, width int) *Matrix {
	m := &Matrix{values: make([]F, 0, len(rows)*width), width: width}
	for _, r := range rows {
		if len(r) != width {
			panic(fmt.Sprintf("row width %d expected %d", len(r), width))
		}
		m.values = append(m.values, r...)
	}
	return m
}

func (m *Matrix) Height() int {
	if m.width == 0 {
		return 0
	}
	return len(m.values) / m.width
}

func (m *Matrix) Width() int {
	return m.width
}

func (m *Matrix) Row(i int) []F {
	return m.values[i*m.width : (i+1)*m.width]
}

// Equal compares two matrices cell for cell.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.width != o.width || len(m.values) != len(o.values) {
		return false
	}
	for i, v := range m.values {
		if o.values[i] != v {
			return false
		}
	}
	return true
}

// Layout hands out column indices for a fixed width row.
type Layout struct {
	n int
}

func (l *Layout) Col() int {
	c := l.n
	l.n++
	return c
}

func (l *Layout) Width() int {
	return l.n
}

// PadRows pads to 2^fixedLog2 rows, or the next power of two when fixedLog2
// is zero. More real rows than the fixed height is a programming error.
func PadRows(rows [][]F, fixedLog2 int, pad func() []F) [][]F {
	target := 1
	if fixedLog2 > 0 {
		target = 1 << fixedLog2
		if len(rows) > target {
			panic(fmt.Sprintf("%d rows exceed fixed height %d", len(rows), target))
		}
	} else {
		for target < len(rows) {
			target *= 2
		}
	}
	for len(rows) < target {
		rows = append(rows, pad())
	}
	return rows
}

// CheckError is one failed constraint at a trace cell.
type CheckError struct {
	Chip string
	Row  int
	Msg  string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s row %d: %s", e.Chip, e.Row, e.Msg)
}

// RowChecker evaluates constraints numerically over one trace row. It is the
// Builder the constraint checking harness uses; a prover backend would
// substitute a symbolic builder over the same chip code.
type RowChecker struct {
	chip   string
	row    int
	gate   F
	errs   *[]error
	lookup *Lookup
}

func NewRowChecker(chip string, row int, lookup *Lookup, errs *[]error) *RowChecker {
	return &RowChecker{chip: chip, row: row, gate: field.One, errs: errs, lookup: lookup}
}

func (c *RowChecker) fail(format string, args ...any) {
	*c.errs = append(*c.errs, &CheckError{Chip: c.chip, Row: c.row, Msg: fmt.Sprintf(format, args...)})
}

func (c *RowChecker) AssertZero(x F) {
	if !c.gate.Mul(x).IsZero() {
		c.fail("expression not zero: %d (gate %d)", x, c.gate)
	}
}

func (c *RowChecker) AssertEq(a, b F) {
	c.AssertZero(a.Sub(b))
}

func (c *RowChecker) AssertBool(x F) {
	c.AssertZero(x.Mul(x.Sub(field.One)))
}

func (c *RowChecker) When(cond F) Builder {
	child := *c
	child.gate = c.gate.Mul(cond)
	return &child
}

func (c *RowChecker) U8Range(x F, mult F) {
	if c.gate.Mul(mult).IsZero() {
		return
	}
	if x.Uint32() >= 256 {
		c.fail("byte range check failed: %d", x)
	}
}

func (c *RowChecker) SendSyscall(t SyscallTerm, mult F) {
	if c.lookup != nil {
		c.lookup.Send(t, c.gate.Mul(mult))
	}
}

func (c *RowChecker) ReceiveSyscall(t SyscallTerm, mult F) {
	if c.lookup != nil {
		c.lookup.Receive(t, c.gate.Mul(mult))
	}
}
