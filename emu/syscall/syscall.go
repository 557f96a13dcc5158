/*
 * ZK32 - Syscall codes and dispatch
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
	"errors"
	"fmt"
)

// Code identifies a syscall. The packing matches the guest ABI:
// byte 2 holds the extra cycle count, byte 1 the send flag, byte 0 the
// table id. The full 32 bit value is what appears in lookup terms.
type Code uint32

const (
	BN254ScalarMul Code = 0x00010180 // p <- p*q mod r
	BN254ScalarMac Code = 0x00010181 // acc <- a*b + acc mod r
	Memcpy32       Code = 0x00010190 // copy 8 words
	Memcpy64       Code = 0x00010191 // copy 16 words
)

func (c Code) String() string {
	switch c {
	case BN254ScalarMul:
		return "BN254_SCALAR_MUL"
	case BN254ScalarMac:
		return "BN254_SCALAR_MAC"
	case Memcpy32:
		return "MEMCPY_32"
	case Memcpy64:
		return "MEMCPY_64"
	}
	return fmt.Sprintf("SYSCALL_%08x", uint32(c))
}

// SyscallID is the value used in send/receive lookup terms.
func (c Code) SyscallID() uint32 {
	return uint32(c)
}

// Errors in the precompile path are never recovered: an invariant violation
// aborts the shard.
var ErrInvariant = errors.New("invariant violated")

// Interface a precompile handler implements.
type Syscall interface {
	// Run the handler. Returns a value for a0 and whether one was
	// produced. Any error wraps ErrInvariant and aborts the shard.
	Execute(ctx *Context, code Code, arg1, arg2 uint32) (uint32, bool, error)

	// Clock cycles the handler consumes beyond the dispatch cycle.
	ExtraCycles() uint32
}

var handlers = map[Code]Syscall{}

// Register a handler for a syscall code. Called from init functions;
// registering a code twice is a programming error.
func Register(code Code, handler Syscall) {
	if _, ok := handlers[code]; ok {
		panic(fmt.Sprintf("syscall %v registered twice", code))
	}
	handlers[code] = handler
}

// Find the handler for a code.
func Lookup(code Code) (Syscall, bool) {
	h, ok := handlers[code]
	return h, ok
}

// Codes returns the registered syscall codes.
func Codes() []Code {
	codes := make([]Code, 0, len(handlers))
	for c := range handlers {
		codes = append(codes, c)
	}
	return codes
}

func init() {
	Register(BN254ScalarMul, &bn254ScalarSyscall{op: opMul})
	Register(BN254ScalarMac, &bn254ScalarSyscall{op: opMac})
	Register(Memcpy32, &memCopySyscall{words: 8})
	Register(Memcpy64, &memCopySyscall{words: 16})
}
