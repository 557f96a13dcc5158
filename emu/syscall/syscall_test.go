/*
 * ZK32 - Syscall handler tests
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
	"encoding/binary"
	"errors"
	"testing"

	"github.com/rcornwell/ZK32/emu/memory"
	"github.com/rcornwell/ZK32/emu/record"
)

// Little endian byte strings for the multiply vector.
var (
	mulP = []uint8{
		0x45, 0x2c, 0xbf, 0x00, 0x82, 0x94, 0xbc, 0xab, 0x3d, 0x2f, 0x53, 0x4e,
		0x98, 0x84, 0xc4, 0x48, 0xd1, 0x1d, 0x8c, 0xed, 0x7e, 0x4b, 0xdf, 0x3a,
		0x73, 0x8b, 0xeb, 0xec, 0xc8, 0x2f, 0x02, 0x1c,
	}
	mulQ = []uint8{
		0xa9, 0x01, 0x4c, 0xd8, 0xa3, 0x98, 0x7c, 0x85, 0x93, 0xea, 0x36, 0xf4,
		0xdc, 0x22, 0x5d, 0xe0, 0x93, 0x5a, 0x88, 0xe3, 0x01, 0x46, 0xd6, 0x82,
		0x8e, 0x77, 0x35, 0xcb, 0x10, 0xa0, 0x85, 0x2b,
	}
	mulWant = []uint8{
		0x2b, 0x84, 0xa7, 0x6d, 0x49, 0xaf, 0x2c, 0xa1, 0x98, 0x52, 0x14, 0x7e,
		0xad, 0x84, 0x09, 0x32, 0x70, 0xf2, 0xd9, 0x8d, 0x57, 0x32, 0x00, 0x40,
		0x4a, 0x69, 0x09, 0x7c, 0xa7, 0x25, 0x27, 0x25,
	}
)

func newTestContext() (*Context, *memory.Memory, *record.ExecutionRecord) {
	mem := memory.New(64)
	rec := record.NewExecutionRecord()
	ctx := NewContext(mem, rec, StampTable{}, 1, 0, 1, 1)
	return ctx, mem, rec
}

func depositBytes(mem *memory.Memory, addr uint32, data []uint8) {
	for i := 0; i < len(data); i += 4 {
		mem.SetMemory(addr+uint32(i), binary.LittleEndian.Uint32(data[i:]))
	}
}

func examineBytes(mem *memory.Memory, addr uint32, n int) []uint8 {
	data := make([]uint8, n)
	for i := 0; i < n; i += 4 {
		binary.LittleEndian.PutUint32(data[i:], mem.GetMemory(addr+uint32(i)))
	}
	return data
}

func runSyscall(t *testing.T, ctx *Context, code Code, arg1, arg2 uint32) {
	t.Helper()
	handler, ok := Lookup(code)
	if !ok {
		t.Fatalf("no handler for %v", code)
	}
	if _, _, err := handler.Execute(ctx, code, arg1, arg2); err != nil {
		t.Fatalf("%v failed: %v", code, err)
	}
}

// Multiply two known elements in place.
func TestBn254MulVector(t *testing.T) {
	ctx, mem, rec := newTestContext()
	depositBytes(mem, 0x100, mulP)
	depositBytes(mem, 0x140, mulQ)

	runSyscall(t, ctx, BN254ScalarMul, 0x100, 0x140)

	got := examineBytes(mem, 0x100, 32)
	for i, b := range mulWant {
		if got[i] != b {
			t.Fatalf("result byte %d not correct got: %02x expected: %02x", i, got[i], b)
		}
	}

	events := rec.GetPrecompileEvents(BN254ScalarMul.SyscallID())
	if len(events) != 1 {
		t.Fatalf("event count not correct got: %d expected: %d", len(events), 1)
	}
	ev := events[0].Bn254
	if ev.Op != record.OpMul || ev.Clk != 1 || ev.Shard != 1 {
		t.Errorf("event header not correct got: %v clk %d shard %d", ev.Op, ev.Clk, ev.Shard)
	}
	if ev.A != nil || ev.B != nil {
		t.Errorf("mul event carries operand accesses")
	}
	if len(ev.Arg1.Records) != 8 || len(ev.Arg2.Records) != 8 {
		t.Fatalf("access sizes not correct got: %d %d expected: 8 8",
			len(ev.Arg1.Records), len(ev.Arg2.Records))
	}
	for _, r := range ev.Arg2.Records {
		if r.Clk != 1 {
			t.Errorf("read clk not correct got: %d expected: %d", r.Clk, 1)
		}
	}
	for _, r := range ev.Arg1.Records {
		if r.Clk != 2 {
			t.Errorf("write clk not correct got: %d expected: %d", r.Clk, 2)
		}
	}
}

// Multiply accumulate 2*3 + 1.
func TestBn254MacSmall(t *testing.T) {
	ctx, mem, rec := newTestContext()
	mem.SetMemory(0x100, 1) // acc
	mem.SetMemory(0x200, 2) // a
	mem.SetMemory(0x240, 3) // b
	mem.SetMemory(0x300, 0x200)
	mem.SetMemory(0x304, 0x240)

	runSyscall(t, ctx, BN254ScalarMac, 0x100, 0x300)

	got := examineBytes(mem, 0x100, 32)
	if got[0] != 7 {
		t.Errorf("acc byte 0 not correct got: %02x expected: %02x", got[0], 7)
	}
	for i := 1; i < 32; i++ {
		if got[i] != 0 {
			t.Errorf("acc byte %d not correct got: %02x expected: %02x", i, got[i], 0)
		}
	}

	ev := rec.GetPrecompileEvents(BN254ScalarMac.SyscallID())[0].Bn254
	if ev.A == nil || ev.B == nil {
		t.Fatalf("mac event missing operand accesses")
	}
	if len(ev.Arg2.Records) != 2 {
		t.Errorf("descriptor size not correct got: %d expected: %d", len(ev.Arg2.Records), 2)
	}
	if ev.A.Ptr != 0x200 || ev.B.Ptr != 0x240 {
		t.Errorf("operand pointers not correct got: %x %x expected: %x %x",
			ev.A.Ptr, ev.B.Ptr, 0x200, 0x240)
	}
	if ev.A.Value().Int64() != 2 || ev.B.Value().Int64() != 3 {
		t.Errorf("operand values not correct got: %d %d expected: 2 3",
			ev.A.Value().Int64(), ev.B.Value().Int64())
	}
	if ev.Arg1.PrevValue().Int64() != 1 || ev.Arg1.Value().Int64() != 7 {
		t.Errorf("accumulate not correct got: %d -> %d expected: 1 -> 7",
			ev.Arg1.PrevValue().Int64(), ev.Arg1.Value().Int64())
	}
}

// Copy eight words.
func TestMemCopy32(t *testing.T) {
	ctx, mem, rec := newTestContext()
	for i := range uint32(8) {
		mem.SetMemory(0x400+i*4, i+1)
	}

	runSyscall(t, ctx, Memcpy32, 0x400, 0x500)

	for i := range uint32(8) {
		if mem.GetMemory(0x500+i*4) != i+1 {
			t.Errorf("dst word %d not correct got: %d expected: %d",
				i, mem.GetMemory(0x500+i*4), i+1)
		}
	}
	ev := rec.GetPrecompileEvents(Memcpy32.SyscallID())[0].MemCopy
	if len(ev.ReadRecords) != 8 || len(ev.WriteRecords) != 8 {
		t.Fatalf("record counts not correct got: %d %d expected: 8 8",
			len(ev.ReadRecords), len(ev.WriteRecords))
	}
	for i := range ev.ReadRecords {
		if ev.ReadRecords[i].Clk != ev.Clk {
			t.Errorf("read clk not correct got: %d expected: %d", ev.ReadRecords[i].Clk, ev.Clk)
		}
		if ev.WriteRecords[i].Clk != ev.Clk+1 {
			t.Errorf("write clk not correct got: %d expected: %d", ev.WriteRecords[i].Clk, ev.Clk+1)
		}
		if ev.WriteRecords[i].Value != ev.ReadRecords[i].Value {
			t.Errorf("copied value not correct got: %d expected: %d",
				ev.WriteRecords[i].Value, ev.ReadRecords[i].Value)
		}
	}
}

// Copy with src == dst leaves values alone but records both accesses.
func TestMemCopyAlias(t *testing.T) {
	ctx, mem, rec := newTestContext()
	for i := range uint32(8) {
		mem.SetMemory(0x400+i*4, 0x1000+i)
	}

	runSyscall(t, ctx, Memcpy32, 0x400, 0x400)

	ev := rec.GetPrecompileEvents(Memcpy32.SyscallID())[0].MemCopy
	for i := range uint32(8) {
		if mem.GetMemory(0x400+i*4) != 0x1000+i {
			t.Errorf("word %d changed got: %x expected: %x",
				i, mem.GetMemory(0x400+i*4), 0x1000+i)
		}
		read := ev.ReadRecords[i]
		write := ev.WriteRecords[i]
		if write.PrevClk != read.Clk || write.PrevShard != read.Shard {
			t.Errorf("write chain not correct got: (%d,%d) expected: (%d,%d)",
				write.PrevShard, write.PrevClk, read.Shard, read.Clk)
		}
		if write.Clk != read.Clk+1 {
			t.Errorf("write clk not correct got: %d expected: %d", write.Clk, read.Clk+1)
		}
	}
}

// Misaligned pointer fails before any record is appended.
func TestMisaligned(t *testing.T) {
	for _, code := range []Code{BN254ScalarMul, BN254ScalarMac, Memcpy32, Memcpy64} {
		ctx, _, rec := newTestContext()
		handler, _ := Lookup(code)
		_, _, err := handler.Execute(ctx, code, 0x1001, 0x140)
		if !errors.Is(err, ErrInvariant) {
			t.Errorf("%v error not correct got: %v expected: %v", code, err, ErrInvariant)
		}
		if len(rec.GetPrecompileEvents(code.SyscallID())) != 0 {
			t.Errorf("%v appended an event after invariant violation", code)
		}
	}
}

// Each access chains to the previous access of the same address.
func TestMemoryChain(t *testing.T) {
	ctx, mem, rec := newTestContext()
	for i := range uint32(8) {
		mem.SetMemory(0x400+i*4, i)
	}
	runSyscall(t, ctx, Memcpy32, 0x400, 0x500)

	ctx2 := NewContext(mem, rec, ctx.stamps, 1, 0, ctx.Clk+1, 2)
	runSyscall(t, ctx2, Memcpy32, 0x400, 0x600)

	events := rec.GetPrecompileEvents(Memcpy32.SyscallID())
	first := events[0].MemCopy
	second := events[1].MemCopy
	for i := range second.ReadRecords {
		if second.ReadRecords[i].PrevClk != first.ReadRecords[i].Clk {
			t.Errorf("chain not correct got: %d expected: %d",
				second.ReadRecords[i].PrevClk, first.ReadRecords[i].Clk)
		}
		if second.ReadRecords[i].PrevShard != 1 {
			t.Errorf("chain shard not correct got: %d expected: %d",
				second.ReadRecords[i].PrevShard, 1)
		}
	}
}

// Bystander events cover every touched address in first touch order.
func TestPostprocess(t *testing.T) {
	ctx, mem, _ := newTestContext()
	for i := range uint32(8) {
		mem.SetMemory(0x400+i*4, i+1)
	}
	runSyscall(t, ctx, Memcpy32, 0x400, 0x500)

	ev := ctx.Record().GetPrecompileEvents(Memcpy32.SyscallID())[0].MemCopy
	if len(ev.LocalMemAccess) != 16 {
		t.Fatalf("local event count not correct got: %d expected: %d", len(ev.LocalMemAccess), 16)
	}
	if ev.LocalMemAccess[0].Addr != 0x400 || ev.LocalMemAccess[8].Addr != 0x500 {
		t.Errorf("local event order not correct got: %x %x expected: %x %x",
			ev.LocalMemAccess[0].Addr, ev.LocalMemAccess[8].Addr, 0x400, 0x500)
	}
	dst := ev.LocalMemAccess[8]
	if dst.InitialValue != 0 || dst.FinalValue != 1 {
		t.Errorf("local values not correct got: %d %d expected: 0 1",
			dst.InitialValue, dst.FinalValue)
	}
}
