/*
 * ZK32 - Precompile events and the shard execution record
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
	"encoding/json"
	"fmt"
)

// Bn254FieldOperation selects between the two scalar field syscalls. The tag
// values are part of the serialized form and must not change.
type Bn254FieldOperation int

const (
	OpMul Bn254FieldOperation = 2
	OpMac Bn254FieldOperation = 4
)

func (op Bn254FieldOperation) String() string {
	switch op {
	case OpMul:
		return "mul"
	case OpMac:
		return "mac"
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// One invocation of a BN254 scalar field syscall.
//
// For Mul, Arg2 reads the 8 word operand and A and B are nil.
// For Mac, Arg2 reads the 2 word descriptor {a_ptr, b_ptr} and A and B hold
// the 8 word operands read through those pointers.
type Bn254FieldArithEvent struct {
	LookupID       LookupID             `json:"lookupId"`
	Shard          uint32               `json:"shard"`
	Clk            uint32               `json:"clk"`
	Op             Bn254FieldOperation  `json:"op"`
	Arg1           FieldWriteAccess     `json:"arg1"`
	Arg2           FieldReadAccess      `json:"arg2"`
	A              *FieldReadAccess     `json:"a,omitempty"`
	B              *FieldReadAccess     `json:"b,omitempty"`
	LocalMemAccess []MemoryLocalEvent   `json:"localMemAccess,omitempty"`
}

// One invocation of a fixed length memory copy. Reads happen at Clk, writes
// one tick later. Src and dst may alias.
type MemCopyEvent struct {
	LookupID       LookupID            `json:"lookupId"`
	Shard          uint32              `json:"shard"`
	Clk            uint32              `json:"clk"`
	SrcPtr         uint32              `json:"srcPtr"`
	DstPtr         uint32              `json:"dstPtr"`
	ReadRecords    []MemoryReadRecord  `json:"readRecords"`
	WriteRecords   []MemoryWriteRecord `json:"writeRecords"`
	LocalMemAccess []MemoryLocalEvent  `json:"localMemAccess,omitempty"`
}

// Event kind tags for the serialized union.
const (
	KindBn254   = "bn254-scalar"
	KindMemCopy = "memcpy"
)

// PrecompileEvent is the tagged union stored in the per syscall event lists.
// Exactly one of the payload pointers is set, named by Kind.
type PrecompileEvent struct {
	Kind    string                `json:"kind"`
	Bn254   *Bn254FieldArithEvent `json:"bn254,omitempty"`
	MemCopy *MemCopyEvent         `json:"memcpy,omitempty"`
}

// The CPU side log of a dispatched syscall. The ECALL chip turns these into
// send_syscall lookup terms.
type SyscallEvent struct {
	Shard    uint32   `json:"shard"`
	Clk      uint32   `json:"clk"`
	Code     uint32   `json:"code"`
	Arg1     uint32   `json:"arg1"`
	Arg2     uint32   `json:"arg2"`
	LookupID LookupID `json:"lookupId"`
}

// ByteLookup is one U8 range check request keyed by shard.
type ByteLookup struct {
	Shard uint32
	Value uint8
}

// ByteRecord is the sink trace generation pushes byte range checks into.
type ByteRecord interface {
	AddU8Range(shard uint32, value uint8)
	AddU8RangeSlice(shard uint32, values []uint8)
}

// ExecutionRecord is the event log of one shard. Events are appended by
// syscall handlers during execution, strictly in clock order, and are
// immutable once appended. Chips read the record during trace generation and
// push byte lookups and nonces into a separate output record.
type ExecutionRecord struct {
	// Precompile events keyed by syscall code, in issue order per code.
	Precompile map[uint32][]PrecompileEvent `json:"precompile"`

	// One entry per dispatched syscall, in issue order.
	Syscalls []SyscallEvent `json:"syscalls"`

	// U8 range check counts. Side channel only, not serialized.
	ByteLookups map[ByteLookup]uint64 `json:"-"`

	// lookup id to trace row index, filled during precompile trace
	// generation and consumed by the ECALL chip. Not serialized.
	NonceLookup map[LookupID]uint32 `json:"-"`
}

func NewExecutionRecord() *ExecutionRecord {
	return &ExecutionRecord{
		Precompile:  map[uint32][]PrecompileEvent{},
		ByteLookups: map[ByteLookup]uint64{},
		NonceLookup: map[LookupID]uint32{},
	}
}

// Append one precompile event under its syscall code.
func (r *ExecutionRecord) AddPrecompileEvent(code uint32, ev PrecompileEvent) {
	r.Precompile[code] = append(r.Precompile[code], ev)
}

// All events for one syscall code, in issue order.
func (r *ExecutionRecord) GetPrecompileEvents(code uint32) []PrecompileEvent {
	return r.Precompile[code]
}

// Append one CPU side syscall event.
func (r *ExecutionRecord) AddSyscallEvent(ev SyscallEvent) {
	r.Syscalls = append(r.Syscalls, ev)
}

func (r *ExecutionRecord) AddU8Range(shard uint32, value uint8) {
	r.ByteLookups[ByteLookup{Shard: shard, Value: value}]++
}

func (r *ExecutionRecord) AddU8RangeSlice(shard uint32, values []uint8) {
	for _, v := range values {
		r.AddU8Range(shard, v)
	}
}

// Serialize the record. The union tags and the JSON field names are the
// stable wire format.
func (r *ExecutionRecord) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Deserialize a record produced by Marshal. The byte lookup and nonce side
// channels start empty.
func Unmarshal(data []byte) (*ExecutionRecord, error) {
	rec := NewExecutionRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("execution record: %w", err)
	}
	if rec.Precompile == nil {
		rec.Precompile = map[uint32][]PrecompileEvent{}
	}
	return rec, nil
}
