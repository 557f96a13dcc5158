/*
 * ZK32 - Machine tests
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

package machine

import (
	"testing"

	"github.com/rcornwell/ZK32/emu/core"
	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/emu/syscall"
	"github.com/rcornwell/ZK32/prover/air"
)

const (
	testAlpha air.F = 0x1234567
	testBeta  air.F = 0x89abcd
)

// A shard mixing memory copies and multiply accumulates.
func mixedShard(t *testing.T, copies, macs int) *core.Core {
	t.Helper()
	c := core.New(64)
	for i := range uint32(8) {
		if err := c.Deposit(0x400+i*4, i+1); err != nil {
			t.Fatalf("Deposit failed: %v", err)
		}
	}
	if err := c.Deposit(0x100, 1); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := c.Deposit(0x200, 2); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := c.Deposit(0x240, 3); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := c.Deposit(0x300, 0x200, 0x240); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	for range copies {
		if err := c.Syscall(syscall.Memcpy32, 0x400, 0x500); err != nil {
			t.Fatalf("Syscall failed: %v", err)
		}
	}
	for range macs {
		if err := c.Syscall(syscall.BN254ScalarMac, 0x100, 0x300); err != nil {
			t.Fatalf("Syscall failed: %v", err)
		}
	}
	return c
}

// Every send has its receive: the global multiset sums to zero.
func TestCrossChipBalance(t *testing.T) {
	c := mixedShard(t, 100, 50)
	m := New()
	lookup := air.NewLookup(testAlpha, testBeta)
	errs := m.CheckShard(c.Record(), lookup)
	if len(errs) != 0 {
		t.Fatalf("check failed: %v", errs[0])
	}
	sends, receives := lookup.Counts()
	if sends != 150 || receives != 150 {
		t.Errorf("term counts not correct got: %d %d expected: 150 150", sends, receives)
	}
	if !lookup.Sum().IsZero() {
		t.Errorf("lookup sum not correct got: %d expected: %d", lookup.Sum(), 0)
	}
}

// Dropping a CPU side emission leaves a residue the argument catches.
func TestImbalanceDetected(t *testing.T) {
	c := mixedShard(t, 3, 0)
	rec := c.Record()
	rec.Syscalls = rec.Syscalls[:len(rec.Syscalls)-1]

	m := New()
	lookup := air.NewLookup(testAlpha, testBeta)
	errs := m.CheckShard(rec, lookup)
	if len(errs) == 0 {
		t.Fatalf("imbalance not detected")
	}
	if lookup.Sum().IsZero() {
		t.Errorf("lookup sum is zero with a dropped send")
	}
}

// Traces only exist for chips with events, and the ECALL chip covers the
// whole shard.
func TestGenerateTraces(t *testing.T) {
	c := mixedShard(t, 2, 1)
	m := New()
	output := record.NewExecutionRecord()
	traces := m.GenerateTraces(c.Record(), output)

	if _, ok := traces["MemCopy8"]; !ok {
		t.Errorf("MemCopy8 trace missing")
	}
	if _, ok := traces["Bn254ScalarMac"]; !ok {
		t.Errorf("Bn254ScalarMac trace missing")
	}
	if _, ok := traces["Bn254ScalarMul"]; ok {
		t.Errorf("Bn254ScalarMul trace generated without events")
	}
	ecallTrace, ok := traces["Ecall"]
	if !ok {
		t.Fatalf("Ecall trace missing")
	}
	if ecallTrace.Height() != 4 {
		t.Errorf("ecall height not correct got: %d expected: %d", ecallTrace.Height(), 4)
	}
	if len(output.NonceLookup) != 3 {
		t.Errorf("nonce count not correct got: %d expected: %d", len(output.NonceLookup), 3)
	}
}

// The cumulative sum column telescopes to the chip total.
func TestLookupColumn(t *testing.T) {
	c := mixedShard(t, 3, 0)
	m := New()
	var copyChip air.Chip
	for _, chip := range m.Chips() {
		if chip.Name() == "MemCopy8" {
			copyChip = chip
		}
	}
	trace := copyChip.GenerateTrace(c.Record(), record.NewExecutionRecord())
	column := LookupColumn(copyChip, trace, testAlpha, testBeta)
	if len(column) != trace.Height() {
		t.Fatalf("column length not correct got: %d expected: %d", len(column), trace.Height())
	}
	// Every real row moves the sum, padding rows do not.
	if column[0].IsZero() {
		t.Errorf("first row contributed nothing")
	}
	for i := 3; i < len(column); i++ {
		if column[i] != column[2] {
			t.Errorf("padding row %d moved the sum", i)
		}
	}
}
