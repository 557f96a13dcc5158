/*
 * ZK32 - Memory copy chip tests
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
	"testing"

	"github.com/rcornwell/ZK32/emu/core"
	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/emu/syscall"
	"github.com/rcornwell/ZK32/prover/air"
	"github.com/rcornwell/ZK32/prover/field"
)

func copyShard(t *testing.T, src, dst uint32) *core.Core {
	t.Helper()
	c := core.New(64)
	for i := range uint32(8) {
		if err := c.Deposit(src+i*4, i+1); err != nil {
			t.Fatalf("Deposit failed: %v", err)
		}
	}
	if err := c.Syscall(syscall.Memcpy32, src, dst); err != nil {
		t.Fatalf("Syscall failed: %v", err)
	}
	return c
}

func checkChip(t *testing.T, chip *Chip, trace *air.Matrix) {
	t.Helper()
	var errs []error
	for i := 0; i < trace.Height(); i++ {
		b := air.NewRowChecker(chip.Name(), i, nil, &errs)
		chip.Eval(b, trace.Row(i))
	}
	if len(errs) != 0 {
		t.Fatalf("constraints failed: %v", errs[0])
	}
}

// One copy, one row: source bytes equal destination bytes, destination
// written one tick after the source read.
func TestCopyTrace(t *testing.T) {
	c := copyShard(t, 0x400, 0x500)
	chip := New(8)
	trace := chip.GenerateTrace(c.Record(), record.NewExecutionRecord())

	if trace.Height() != 1 {
		t.Fatalf("trace height not correct got: %d expected: %d", trace.Height(), 1)
	}
	row := trace.Row(0)
	lo := chip.layout
	if row[lo.srcPtr] != field.New(0x400) || row[lo.dstPtr] != field.New(0x500) {
		t.Errorf("pointers not correct got: %x %x expected: 400 500",
			row[lo.srcPtr].Uint32(), row[lo.dstPtr].Uint32())
	}
	src := air.LimbsFromReadAccess(row, lo.srcAccess)
	dst := air.LimbsFromAccess(row, lo.dstAccess)
	for i := range src {
		if src[i] != dst[i] {
			t.Errorf("copied limb %d not correct got: %d expected: %d", i, dst[i], src[i])
		}
	}
	checkChip(t, chip, trace)
}

// Aliasing keeps the constraints satisfied: the write chains one tick after
// the read on every word.
func TestCopyAlias(t *testing.T) {
	c := copyShard(t, 0x400, 0x400)
	chip := New(8)
	trace := chip.GenerateTrace(c.Record(), record.NewExecutionRecord())
	checkChip(t, chip, trace)

	ev := c.Record().GetPrecompileEvents(syscall.Memcpy32.SyscallID())[0].MemCopy
	for i := range ev.WriteRecords {
		if ev.WriteRecords[i].Clk != ev.ReadRecords[i].Clk+1 {
			t.Errorf("write clk not correct got: %d expected: %d",
				ev.WriteRecords[i].Clk, ev.ReadRecords[i].Clk+1)
		}
	}
}

// The 16 word variant proves 64 byte copies.
func TestCopy64(t *testing.T) {
	c := core.New(64)
	for i := range uint32(16) {
		if err := c.Deposit(0x400+i*4, 0xa0+i); err != nil {
			t.Fatalf("Deposit failed: %v", err)
		}
	}
	if err := c.Syscall(syscall.Memcpy64, 0x400, 0x600); err != nil {
		t.Fatalf("Syscall failed: %v", err)
	}
	chip := New(16)
	trace := chip.GenerateTrace(c.Record(), record.NewExecutionRecord())
	if trace.Height() != 1 {
		t.Fatalf("trace height not correct got: %d expected: %d", trace.Height(), 1)
	}
	checkChip(t, chip, trace)

	words, err := c.Examine(0x600, 16)
	if err != nil {
		t.Fatalf("Examine failed: %v", err)
	}
	for i := range uint32(16) {
		if words[i] != 0xa0+i {
			t.Errorf("dst word %d not correct got: %x expected: %x", i, words[i], 0xa0+i)
		}
	}
}

// Trace generation is deterministic and padding carries no real rows.
func TestCopyIdempotentPadding(t *testing.T) {
	c := copyShard(t, 0x400, 0x500)
	chip := New(8)
	chip.FixedLog2Rows = 2
	first := chip.GenerateTrace(c.Record(), record.NewExecutionRecord())
	second := chip.GenerateTrace(c.Record(), record.NewExecutionRecord())
	if !first.Equal(second) {
		t.Errorf("traces differ between runs")
	}
	if first.Height() != 4 {
		t.Fatalf("trace height not correct got: %d expected: %d", first.Height(), 4)
	}
	lo := chip.layout
	for i := 1; i < first.Height(); i++ {
		if first.Row(i)[lo.isReal] != field.Zero {
			t.Errorf("padding row %d marked real", i)
		}
	}
	checkChip(t, chip, first)
}

// A tampered destination byte breaks the copy constraint.
func TestCopyTamper(t *testing.T) {
	c := copyShard(t, 0x400, 0x500)
	chip := New(8)
	trace := chip.GenerateTrace(c.Record(), record.NewExecutionRecord())
	row := trace.Row(0)
	lo := chip.layout
	row[lo.dstAccess[3].Access.Value[0]] = row[lo.dstAccess[3].Access.Value[0]].Add(field.One)

	var errs []error
	b := air.NewRowChecker(chip.Name(), 0, nil, &errs)
	chip.Eval(b, row)
	if len(errs) == 0 {
		t.Errorf("tampered copy not detected")
	}
}

// Only a word count of 8 or 16 is a valid chip.
func TestInvalidWords(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("invalid word count not rejected")
		}
	}()
	New(4)
}
