/*
 * ZK32 - Shard runtime
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

package core

import (
	"fmt"
	"log/slog"

	"github.com/rcornwell/ZK32/emu/memory"
	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/emu/syscall"
)

// RISC-V registers carrying the syscall ABI.
const (
	RegT0 = 5  // syscall code
	RegA0 = 10 // arg1, return value
	RegA1 = 11 // arg2
)

// Core is the per shard runtime: registers, clock and the dispatch entry.
// The full instruction interpreter lives outside this module; the core is
// single threaded per shard and a handler runs to completion before the next
// dispatch.
type Core struct {
	Reg [32]uint32 // General registers.
	Clk uint32     // Shard clock, monotone per shard.

	mem     *memory.Memory
	rec     *record.ExecutionRecord
	stamps  syscall.StampTable
	shard   uint32
	channel uint32
	nextID  record.LookupID
}

// New creates a runtime for one shard with memory of size in K. Zero takes
// the configured default.
func New(sizeK int) *Core {
	if sizeK <= 0 {
		sizeK = DefaultMemSizeK
	}
	return &Core{
		Clk:    1,
		mem:    memory.New(sizeK),
		rec:    record.NewExecutionRecord(),
		stamps: syscall.StampTable{},
		shard:  1,
	}
}

// Record returns the shard event log.
func (c *Core) Record() *record.ExecutionRecord {
	return c.rec
}

// Memory returns the guest memory.
func (c *Core) Memory() *memory.Memory {
	return c.mem
}

func (c *Core) CurrentShard() uint32 {
	return c.shard
}

// Ecall dispatches the syscall named by t0 with a0/a1 as arguments. Unknown
// codes and handler failures abort the shard.
func (c *Core) Ecall() error {
	code := syscall.Code(c.Reg[RegT0])
	arg1 := c.Reg[RegA0]
	arg2 := c.Reg[RegA1]

	handler, ok := syscall.Lookup(code)
	if !ok {
		return fmt.Errorf("unknown syscall %08x: %w", uint32(code), syscall.ErrInvariant)
	}

	startClk := c.Clk
	c.nextID++
	ctx := syscall.NewContext(c.mem, c.rec, c.stamps, c.shard, c.channel, startClk, c.nextID)

	ret, hasRet, err := handler.Execute(ctx, code, arg1, arg2)
	if err != nil {
		slog.Error("syscall aborted shard",
			slog.String("code", code.String()), slog.String("err", err.Error()))
		return err
	}
	if hasRet {
		c.Reg[RegA0] = ret
	}

	c.rec.AddSyscallEvent(record.SyscallEvent{
		Shard:    c.shard,
		Clk:      startClk,
		Code:     code.SyscallID(),
		Arg1:     arg1,
		Arg2:     arg2,
		LookupID: c.nextID,
	})

	c.Clk = startClk + 1 + handler.ExtraCycles()
	return nil
}

// Syscall loads the ABI registers and dispatches. Convenience for the
// monitor and tests.
func (c *Core) Syscall(code syscall.Code, arg1, arg2 uint32) error {
	c.Reg[RegT0] = uint32(code)
	c.Reg[RegA0] = arg1
	c.Reg[RegA1] = arg2
	return c.Ecall()
}

// Deposit stores words into guest memory without producing records. Used to
// stage program data before a shard runs.
func (c *Core) Deposit(addr uint32, values ...uint32) error {
	for i, v := range values {
		if over := c.mem.PutWord(addr+uint32(i)*memory.WordSize, v); over {
			return fmt.Errorf("deposit at %08x out of range: %w",
				addr+uint32(i)*memory.WordSize, syscall.ErrInvariant)
		}
	}
	return nil
}

// Examine fetches words from guest memory without producing records.
func (c *Core) Examine(addr uint32, n int) ([]uint32, error) {
	values := make([]uint32, n)
	for i := range values {
		v, over := c.mem.GetWord(addr + uint32(i)*memory.WordSize)
		if over {
			return nil, fmt.Errorf("examine at %08x out of range: %w",
				addr+uint32(i)*memory.WordSize, syscall.ErrInvariant)
		}
		values[i] = v
	}
	return values, nil
}
