/*
 * ZK32 - Syscall context
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

	"github.com/rcornwell/ZK32/emu/memory"
	"github.com/rcornwell/ZK32/emu/record"
)

// Stamp is the (shard, clk) pair of the last access to an address.
type Stamp struct {
	Shard uint32
	Clk   uint32
}

// StampTable tracks the last access per address across a shard. Owned by the
// runtime, shared with every context it creates.
type StampTable map[uint32]Stamp

// Context is the narrow surface a precompile handler sees. One context lives
// for one syscall invocation. The runtime does not read Clk back out; it
// advances its own clock by one plus the handler's ExtraCycles.
type Context struct {
	// Current shard clock. Handlers that need an extra tick between
	// phases advance it directly.
	Clk uint32

	mem     *memory.Memory
	rec     *record.ExecutionRecord
	stamps  StampTable
	shard   uint32
	channel uint32
	lookup  record.LookupID

	localOrder []uint32
	local      map[uint32]*record.MemoryLocalEvent
}

// NewContext builds the context for one invocation. lookup must be fresh per
// invocation.
func NewContext(mem *memory.Memory, rec *record.ExecutionRecord, stamps StampTable,
	shard, channel, clk uint32, lookup record.LookupID) *Context {
	return &Context{
		Clk:     clk,
		mem:     mem,
		rec:     rec,
		stamps:  stamps,
		shard:   shard,
		channel: channel,
		lookup:  lookup,
		local:   map[uint32]*record.MemoryLocalEvent{},
	}
}

func (ctx *Context) CurrentShard() uint32 {
	return ctx.shard
}

func (ctx *Context) CurrentChannel() uint32 {
	return ctx.channel
}

// Record returns the shard event log for appending.
func (ctx *Context) Record() *record.ExecutionRecord {
	return ctx.rec
}

// LookupID is the nonce identifying this invocation.
func (ctx *Context) LookupID() record.LookupID {
	return ctx.lookup
}

func (ctx *Context) checkRange(addr uint32, words int) error {
	if !memory.Aligned(addr) {
		return fmt.Errorf("misaligned pointer %08x: %w", addr, ErrInvariant)
	}
	if !ctx.mem.CheckSlice(addr, words) {
		return fmt.Errorf("pointer %08x out of range: %w", addr, ErrInvariant)
	}
	return nil
}

func (ctx *Context) touch(addr, prevShard, prevClk, prevValue, value uint32) {
	ev, ok := ctx.local[addr]
	if !ok {
		ev = &record.MemoryLocalEvent{
			Addr:         addr,
			InitialShard: prevShard,
			InitialClk:   prevClk,
			InitialValue: prevValue,
		}
		ctx.local[addr] = ev
		ctx.localOrder = append(ctx.localOrder, addr)
	}
	ev.FinalShard = ctx.shard
	ev.FinalClk = ctx.Clk
	ev.FinalValue = value
}

// ReadWord reads one word and appends a read record.
func (ctx *Context) ReadWord(addr uint32) (record.MemoryReadRecord, uint32, error) {
	if err := ctx.checkRange(addr, 1); err != nil {
		return record.MemoryReadRecord{}, 0, err
	}
	prev := ctx.stamps[addr]
	value := ctx.mem.GetMemory(addr)
	rec := record.MemoryReadRecord{
		Addr:      addr,
		Value:     value,
		PrevShard: prev.Shard,
		PrevClk:   prev.Clk,
		Shard:     ctx.shard,
		Clk:       ctx.Clk,
	}
	ctx.stamps[addr] = Stamp{Shard: ctx.shard, Clk: ctx.Clk}
	ctx.touch(addr, prev.Shard, prev.Clk, value, value)
	return rec, value, nil
}

// ReadSlice reads n consecutive words.
func (ctx *Context) ReadSlice(addr uint32, n int) ([]record.MemoryReadRecord, []uint32, error) {
	if err := ctx.checkRange(addr, n); err != nil {
		return nil, nil, err
	}
	records := make([]record.MemoryReadRecord, n)
	values := make([]uint32, n)
	for i := range records {
		rec, value, err := ctx.ReadWord(addr + uint32(i)*memory.WordSize)
		if err != nil {
			return nil, nil, err
		}
		records[i] = rec
		values[i] = value
	}
	return records, values, nil
}

// WriteSlice writes the given words and appends write records.
func (ctx *Context) WriteSlice(addr uint32, values []uint32) ([]record.MemoryWriteRecord, error) {
	if err := ctx.checkRange(addr, len(values)); err != nil {
		return nil, err
	}
	records := make([]record.MemoryWriteRecord, len(values))
	for i, value := range values {
		wordAddr := addr + uint32(i)*memory.WordSize
		prev := ctx.stamps[wordAddr]
		prevValue := ctx.mem.GetMemory(wordAddr)
		records[i] = record.MemoryWriteRecord{
			Addr:      wordAddr,
			Value:     value,
			PrevValue: prevValue,
			PrevShard: prev.Shard,
			PrevClk:   prev.Clk,
			Shard:     ctx.shard,
			Clk:       ctx.Clk,
		}
		ctx.mem.SetMemory(wordAddr, value)
		ctx.stamps[wordAddr] = Stamp{Shard: ctx.shard, Clk: ctx.Clk}
		ctx.touch(wordAddr, prev.Shard, prev.Clk, prevValue, value)
	}
	return records, nil
}

// SliceUnsafe peeks n words without producing records. Used for the
// read-modify-write prologue before the writeback pass.
func (ctx *Context) SliceUnsafe(addr uint32, n int) ([]uint32, error) {
	if err := ctx.checkRange(addr, n); err != nil {
		return nil, err
	}
	values := make([]uint32, n)
	for i := range values {
		values[i] = ctx.mem.GetMemory(addr + uint32(i)*memory.WordSize)
	}
	return values, nil
}

// Postprocess returns the bystander memory events for this invocation, one
// per touched address in first touch order.
func (ctx *Context) Postprocess() []record.MemoryLocalEvent {
	events := make([]record.MemoryLocalEvent, 0, len(ctx.localOrder))
	for _, addr := range ctx.localOrder {
		events = append(events, *ctx.local[addr])
	}
	return events
}
