/*
 * ZK32 - Memory copy syscalls
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

// Handler for the fixed length copies. words is 8 or 16.
type memCopySyscall struct {
	words int
}

func (s *memCopySyscall) ExtraCycles() uint32 {
	return 1
}

func (s *memCopySyscall) Execute(ctx *Context, code Code, src, dst uint32) (uint32, bool, error) {
	if s.words != 8 && s.words != 16 {
		return 0, false, fmt.Errorf("memcpy of %d words: %w", s.words, ErrInvariant)
	}
	if !memory.Aligned(src) {
		return 0, false, fmt.Errorf("src_ptr %08x misaligned: %w", src, ErrInvariant)
	}
	if !memory.Aligned(dst) {
		return 0, false, fmt.Errorf("dst_ptr %08x misaligned: %w", dst, ErrInvariant)
	}

	startClk := ctx.Clk
	read, readValues, err := ctx.ReadSlice(src, s.words)
	if err != nil {
		return 0, false, err
	}

	// dst == src is supported, even if it is actually a no-op.
	ctx.Clk++

	write, err := ctx.WriteSlice(dst, readValues)
	if err != nil {
		return 0, false, err
	}

	event := &record.MemCopyEvent{
		LookupID:       ctx.LookupID(),
		Shard:          ctx.CurrentShard(),
		Clk:            startClk,
		SrcPtr:         src,
		DstPtr:         dst,
		ReadRecords:    read,
		WriteRecords:   write,
		LocalMemAccess: ctx.Postprocess(),
	}
	ctx.Record().AddPrecompileEvent(code.SyscallID(), record.PrecompileEvent{
		Kind:    record.KindMemCopy,
		MemCopy: event,
	})
	return 0, false, nil
}
