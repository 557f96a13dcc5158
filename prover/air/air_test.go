/*
 * ZK32 - AIR builder tests
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
	"testing"

	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/prover/field"
)

// Gated assertions are vacuous when the gate is zero.
func TestRowChecker(t *testing.T) {
	var errs []error
	b := NewRowChecker("test", 0, nil, &errs)
	b.AssertZero(field.Zero)
	b.AssertEq(field.New(5), field.New(5))
	b.AssertBool(field.One)
	b.When(field.Zero).AssertZero(field.New(7))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs[0])
	}
	b.AssertBool(field.New(2))
	b.When(field.One).AssertEq(field.One, field.New(2))
	if len(errs) != 2 {
		t.Errorf("error count not correct got: %d expected: %d", len(errs), 2)
	}
}

func TestU8Range(t *testing.T) {
	var errs []error
	b := NewRowChecker("test", 0, nil, &errs)
	b.U8Range(field.New(255), field.One)
	b.U8Range(field.New(256), field.Zero)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs[0])
	}
	b.U8Range(field.New(256), field.One)
	if len(errs) != 1 {
		t.Errorf("error count not correct got: %d expected: %d", len(errs), 1)
	}
}

// Matching send and receive terms cancel; a mismatch leaves a residue.
func TestLookupBalance(t *testing.T) {
	term := SyscallTerm{
		Shard: 1, Clk: 5, Nonce: 0, Code: field.New(0x10190),
		Arg1: 0x400, Arg2: 0x500, Scope: ScopeGlobal,
	}
	lookup := NewLookup(field.New(0x1234567), field.New(0x89abcd))
	lookup.Send(term, field.One)
	lookup.Receive(term, field.One)
	if !lookup.Sum().IsZero() {
		t.Errorf("balanced lookup sum not correct got: %d expected: %d", lookup.Sum(), 0)
	}

	lookup.Send(term, field.One)
	if lookup.Sum().IsZero() {
		t.Errorf("unbalanced lookup sum is zero")
	}

	// A receive of a different tuple does not cancel the send.
	other := term
	other.Nonce = field.One
	lookup.Receive(other, field.One)
	if lookup.Sum().IsZero() {
		t.Errorf("mismatched tuples cancelled")
	}

	// Zero multiplicity contributes nothing.
	before := lookup.Sum()
	lookup.Send(term, field.Zero)
	if lookup.Sum() != before {
		t.Errorf("zero multiplicity changed the sum")
	}
}

// Memory access columns accept a well formed record and reject a broken
// ordering.
func TestMemoryAccessCols(t *testing.T) {
	l := &Layout{}
	cols := NewMemoryReadCols(l)
	row := make([]F, l.Width())

	rec := record.MemoryReadRecord{
		Addr: 0x404, Value: 0xa1b2c3d4,
		PrevShard: 1, PrevClk: 3, Shard: 1, Clk: 9,
	}
	cols.Populate(row, rec, nil)

	var errs []error
	b := NewRowChecker("mem", 0, nil, &errs)
	cols.Eval(b, row, field.New(0x404), field.One, field.New(9), field.One)
	if len(errs) != 0 {
		t.Fatalf("constraints failed: %v", errs[0])
	}

	// Wrong address.
	b = NewRowChecker("mem", 0, nil, &errs)
	cols.Eval(b, row, field.New(0x408), field.One, field.New(9), field.One)
	if len(errs) == 0 {
		t.Errorf("wrong address not detected")
	}

	// Claiming an earlier clock breaks the diff decomposition.
	errs = nil
	b = NewRowChecker("mem", 0, nil, &errs)
	cols.Eval(b, row, field.New(0x404), field.One, field.New(3), field.One)
	if len(errs) == 0 {
		t.Errorf("stale clock not detected")
	}
}

// Cross shard accesses compare shards instead of clocks.
func TestMemoryAccessCrossShard(t *testing.T) {
	l := &Layout{}
	cols := NewMemoryWriteCols(l)
	row := make([]F, l.Width())

	rec := record.MemoryWriteRecord{
		Addr: 0x80, Value: 5, PrevValue: 9,
		PrevShard: 0, PrevClk: 0, Shard: 2, Clk: 1,
	}
	cols.Populate(row, rec, nil)

	var errs []error
	b := NewRowChecker("mem", 0, nil, &errs)
	cols.Eval(b, row, field.New(0x80), field.New(2), field.One, field.One)
	if len(errs) != 0 {
		t.Fatalf("constraints failed: %v", errs[0])
	}
	if row[cols.Access.CompareClk] != field.Zero {
		t.Errorf("compare clk not correct got: %d expected: %d", row[cols.Access.CompareClk], 0)
	}
	if row[cols.PrevValue[0]] != field.New(9) {
		t.Errorf("prev value limb not correct got: %d expected: %d", row[cols.PrevValue[0]], 9)
	}
}

func TestPadRows(t *testing.T) {
	rows := [][]F{{1}, {2}, {3}}
	padded := PadRows(rows, 0, func() []F { return []F{0} })
	if len(padded) != 4 {
		t.Errorf("padded length not correct got: %d expected: %d", len(padded), 4)
	}
	padded = PadRows(padded, 3, func() []F { return []F{0} })
	if len(padded) != 8 {
		t.Errorf("padded length not correct got: %d expected: %d", len(padded), 8)
	}
}

func TestMatrixEqual(t *testing.T) {
	a := NewMatrix([][]F{{1, 2}, {3, 4}}, 2)
	b := NewMatrix([][]F{{1, 2}, {3, 4}}, 2)
	c := NewMatrix([][]F{{1, 2}, {3, 5}}, 2)
	if !a.Equal(b) {
		t.Errorf("equal matrices compare unequal")
	}
	if a.Equal(c) {
		t.Errorf("unequal matrices compare equal")
	}
	if a.Height() != 2 || a.Width() != 2 {
		t.Errorf("matrix shape not correct got: %dx%d expected: 2x2", a.Height(), a.Width())
	}
}
