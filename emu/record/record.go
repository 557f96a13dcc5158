/*
 * ZK32 - Memory access records
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

package record

import (
	"encoding/binary"
	"math/big"
)

// LookupID is a fresh nonce handed to each syscall invocation. It ties the
// CPU side emission of a syscall to the precompile chip row that receives it.
type LookupID uint64

// One word read. The previous (shard, clk) pair points at the last access to
// the same address in program order; (Shard, Clk) must be lexicographically
// greater.
type MemoryReadRecord struct {
	Addr      uint32 `json:"addr"`
	Value     uint32 `json:"value"`
	PrevShard uint32 `json:"prevShard"`
	PrevClk   uint32 `json:"prevClk"`
	Shard     uint32 `json:"shard"`
	Clk       uint32 `json:"clk"`
}

// One word write. Value is what the handler wrote, PrevValue the word before.
type MemoryWriteRecord struct {
	Addr      uint32 `json:"addr"`
	Value     uint32 `json:"value"`
	PrevValue uint32 `json:"prevValue"`
	PrevShard uint32 `json:"prevShard"`
	PrevClk   uint32 `json:"prevClk"`
	Shard     uint32 `json:"shard"`
	Clk       uint32 `json:"clk"`
}

// Bystander summary for one address touched during a syscall: the state the
// address was found in and the state it was left in. The memory argument
// consumes these to stitch precompile accesses into the global access chain.
type MemoryLocalEvent struct {
	Addr         uint32 `json:"addr"`
	InitialShard uint32 `json:"initialShard"`
	InitialClk   uint32 `json:"initialClk"`
	InitialValue uint32 `json:"initialValue"`
	FinalShard   uint32 `json:"finalShard"`
	FinalClk     uint32 `json:"finalClk"`
	FinalValue   uint32 `json:"finalValue"`
}

// A group of word reads forming one operand plus the pointer it came from.
type FieldReadAccess struct {
	Ptr     uint32             `json:"ptr"`
	Records []MemoryReadRecord `json:"records"`
}

// A group of word writes forming one operand plus the pointer written to.
type FieldWriteAccess struct {
	Ptr     uint32              `json:"ptr"`
	Records []MemoryWriteRecord `json:"records"`
}

// Reassemble the operand as a little endian integer.
func (a *FieldReadAccess) Value() *big.Int {
	buf := make([]byte, 0, len(a.Records)*4)
	for _, r := range a.Records {
		buf = binary.LittleEndian.AppendUint32(buf, r.Value)
	}
	return leBytesToBig(buf)
}

// Reassemble the written operand as a little endian integer.
func (a *FieldWriteAccess) Value() *big.Int {
	buf := make([]byte, 0, len(a.Records)*4)
	for _, r := range a.Records {
		buf = binary.LittleEndian.AppendUint32(buf, r.Value)
	}
	return leBytesToBig(buf)
}

// Reassemble the operand as it was before the write.
func (a *FieldWriteAccess) PrevValue() *big.Int {
	buf := make([]byte, 0, len(a.Records)*4)
	for _, r := range a.Records {
		buf = binary.LittleEndian.AppendUint32(buf, r.PrevValue)
	}
	return leBytesToBig(buf)
}

// big.Int wants big endian bytes.
func leBytesToBig(le []byte) *big.Int {
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}
