/*
 * ZK32 - Memory access columns
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
	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/prover/field"
)

// Word is four byte columns holding one guest word little endian.
type Word [4]int

func NewWord(l *Layout) Word {
	var w Word
	for i := range w {
		w[i] = l.Col()
	}
	return w
}

func (w Word) populate(row []F, value uint32, shard uint32, br record.ByteRecord) {
	for i := range w {
		b := uint8(value >> (8 * i))
		row[w[i]] = F(b)
		if br != nil {
			br.AddU8Range(shard, b)
		}
	}
}

// One access slot: address, value, and the (shard, clk) of the previous
// access to the same address with the range checked decomposition of the
// timestamp difference.
type MemoryAccessCols struct {
	Addr      int
	Value     Word
	PrevShard int
	PrevClk   int
	// 1 when the previous access is in the same shard, so clocks are
	// compared; 0 compares shards.
	CompareClk int
	// current - previous - 1 over the compared component, split into two
	// range checked bytes.
	DiffLow  int
	DiffHigh int
}

func NewMemoryAccess(l *Layout) MemoryAccessCols {
	return MemoryAccessCols{
		Addr:       l.Col(),
		Value:      NewWord(l),
		PrevShard:  l.Col(),
		PrevClk:    l.Col(),
		CompareClk: l.Col(),
		DiffLow:    l.Col(),
		DiffHigh:   l.Col(),
	}
}

func (c MemoryAccessCols) populate(row []F, addr, value, prevShard, prevClk, shard, clk uint32,
	br record.ByteRecord) {
	row[c.Addr] = field.New(addr)
	c.Value.populate(row, value, shard, br)
	row[c.PrevShard] = field.New(prevShard)
	row[c.PrevClk] = field.New(prevClk)

	var diff uint32
	if prevShard == shard {
		row[c.CompareClk] = field.One
		diff = clk - prevClk - 1
	} else {
		diff = shard - prevShard - 1
	}
	row[c.DiffLow] = F(diff & 0xff)
	row[c.DiffHigh] = F((diff >> 8) & 0xff)
	if br != nil {
		br.AddU8Range(shard, uint8(diff&0xff))
		br.AddU8Range(shard, uint8((diff>>8)&0xff))
	}
}

// eval enforces the ordering invariant: the compared component strictly
// increased, witnessed by the 16 bit difference decomposition.
func (c MemoryAccessCols) eval(b Builder, row []F, addr, shard, clk F, mult F) {
	b.AssertBool(row[c.CompareClk])

	on := b.When(mult)
	on.AssertEq(row[c.Addr], addr)

	cmp := row[c.CompareClk]
	notCmp := field.One.Sub(cmp)
	current := cmp.Mul(clk).Add(notCmp.Mul(shard))
	previous := cmp.Mul(row[c.PrevClk]).Add(notCmp.Mul(row[c.PrevShard]))
	diff := row[c.DiffLow].Add(F(256).Mul(row[c.DiffHigh]))
	on.AssertEq(current, previous.Add(field.One).Add(diff))

	// Same shard comparison only makes sense in this shard.
	on.When(cmp).AssertEq(row[c.PrevShard], shard)

	b.U8Range(row[c.DiffLow], mult)
	b.U8Range(row[c.DiffHigh], mult)
	for i := range c.Value {
		b.U8Range(row[c.Value[i]], mult)
	}
}

// Columns for one word read.
type MemoryReadCols struct {
	Access MemoryAccessCols
}

func NewMemoryReadCols(l *Layout) MemoryReadCols {
	return MemoryReadCols{Access: NewMemoryAccess(l)}
}

func (c MemoryReadCols) Populate(row []F, rec record.MemoryReadRecord, br record.ByteRecord) {
	c.Access.populate(row, rec.Addr, rec.Value, rec.PrevShard, rec.PrevClk, rec.Shard, rec.Clk, br)
}

func (c MemoryReadCols) Eval(b Builder, row []F, addr, shard, clk F, mult F) {
	c.Access.eval(b, row, addr, shard, clk, mult)
}

// Columns for one word write: the previous value rides along so constraints
// can reach the operand before the update.
type MemoryWriteCols struct {
	PrevValue Word
	Access    MemoryAccessCols
}

func NewMemoryWriteCols(l *Layout) MemoryWriteCols {
	return MemoryWriteCols{PrevValue: NewWord(l), Access: NewMemoryAccess(l)}
}

func (c MemoryWriteCols) Populate(row []F, rec record.MemoryWriteRecord, br record.ByteRecord) {
	c.PrevValue.populate(row, rec.PrevValue, rec.Shard, br)
	c.Access.populate(row, rec.Addr, rec.Value, rec.PrevShard, rec.PrevClk, rec.Shard, rec.Clk, br)
}

func (c MemoryWriteCols) Eval(b Builder, row []F, addr, shard, clk F, mult F) {
	for i := range c.PrevValue {
		b.U8Range(row[c.PrevValue[i]], mult)
	}
	c.Access.eval(b, row, addr, shard, clk, mult)
}

// EvalMemoryReadSlice constrains n consecutive word reads starting at ptr.
func EvalMemoryReadSlice(b Builder, row []F, cols []MemoryReadCols, ptr, shard, clk F, mult F) {
	for i, c := range cols {
		c.Eval(b, row, ptr.Add(F(4*i)), shard, clk, mult)
	}
}

// EvalMemoryWriteSlice constrains n consecutive word writes starting at ptr.
func EvalMemoryWriteSlice(b Builder, row []F, cols []MemoryWriteCols, ptr, shard, clk F, mult F) {
	for i, c := range cols {
		c.Eval(b, row, ptr.Add(F(4*i)), shard, clk, mult)
	}
}

// LimbsFromPrevAccess collects the pre write operand bytes of a write slice.
func LimbsFromPrevAccess(row []F, cols []MemoryWriteCols) []F {
	limbs := make([]F, 0, len(cols)*4)
	for _, c := range cols {
		for i := range c.PrevValue {
			limbs = append(limbs, row[c.PrevValue[i]])
		}
	}
	return limbs
}

// LimbsFromAccess collects the written value bytes of a write slice.
func LimbsFromAccess(row []F, cols []MemoryWriteCols) []F {
	limbs := make([]F, 0, len(cols)*4)
	for _, c := range cols {
		for i := range c.Access.Value {
			limbs = append(limbs, row[c.Access.Value[i]])
		}
	}
	return limbs
}

// LimbsFromReadAccess collects the value bytes of a read slice.
func LimbsFromReadAccess(row []F, cols []MemoryReadCols) []F {
	limbs := make([]F, 0, len(cols)*4)
	for _, c := range cols {
		for i := range c.Access.Value {
			limbs = append(limbs, row[c.Access.Value[i]])
		}
	}
	return limbs
}
