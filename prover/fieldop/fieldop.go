/*
 * ZK32 - Non-native field operation witness
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

// Package fieldop enforces a op b = result mod p for a prime p wider than the
// trace field. Operands are base 256 limb polynomials; correctness reduces to
// the vanishing polynomial op(a,b) - result - carry*p having 256 as a root,
// witnessed by its shifted root quotient so that byte range checks on
// individual limbs suffice.
package fieldop

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/rcornwell/ZK32/curves/bn254"
	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/prover/air"
	"github.com/rcornwell/ZK32/prover/field"
)

// Op is the field operation selector.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

// Div needs an inversion witness that does not exist yet.
var ErrNoDivWitness = errors.New("field op div: no inversion witness")

// Params describe the limb layout of one non-native prime field.
type Params struct {
	NumLimbs        int
	NumWitnessLimbs int
	WitnessOffset   int64
	Modulus         *big.Int
	modulusLimbs    []uint8
}

// Bn254ScalarParams is the BN254 scalar field layout.
func Bn254ScalarParams() *Params {
	return &Params{
		NumLimbs:        bn254.NumLimbs,
		NumWitnessLimbs: bn254.NumWitnessLimbs,
		WitnessOffset:   bn254.WitnessOffset,
		Modulus:         bn254.ScalarModulus(),
		modulusLimbs:    bn254.ScalarModulusLimbs(),
	}
}

// Cols is one field op witness block: the reduced result, the carry
// polynomial, and the two byte streams splitting the shifted root quotient.
type Cols struct {
	par         *Params
	Result      []int
	Carry       []int
	WitnessLow  []int
	WitnessHigh []int
}

func NewCols(l *air.Layout, par *Params) Cols {
	c := Cols{
		par:         par,
		Result:      make([]int, par.NumLimbs),
		Carry:       make([]int, par.NumLimbs),
		WitnessLow:  make([]int, par.NumWitnessLimbs),
		WitnessHigh: make([]int, par.NumWitnessLimbs),
	}
	for i := range c.Result {
		c.Result[i] = l.Col()
	}
	for i := range c.Carry {
		c.Carry[i] = l.Col()
	}
	for i := range c.WitnessLow {
		c.WitnessLow[i] = l.Col()
	}
	for i := range c.WitnessHigh {
		c.WitnessHigh[i] = l.Col()
	}
	return c
}

// Populate computes the witness for a op b and writes it into row, pushing a
// byte range check for every limb. Returns the reduced result.
func (c Cols) Populate(row []air.F, shard uint32, a, b *big.Int, op Op,
	br record.ByteRecord) (*big.Int, error) {
	p := c.par.Modulus
	result := new(big.Int)
	carry := new(big.Int)

	// The vanishing identity per op; Sub re-reads as result + b = a so the
	// carry stays nonnegative.
	var vx, vy *big.Int
	switch op {
	case OpAdd:
		result.Add(a, b)
		result.Mod(result, p)
		carry.Add(a, b)
		carry.Sub(carry, result)
		carry.Div(carry, p)
		vx, vy = a, b
	case OpSub:
		result.Sub(a, b)
		result.Mod(result, p)
		carry.Add(result, b)
		carry.Sub(carry, a)
		carry.Div(carry, p)
		vx, vy = result, b
	case OpMul:
		result.Mul(a, b)
		result.Mod(result, p)
		carry.Mul(a, b)
		carry.Sub(carry, result)
		carry.Div(carry, p)
		vx, vy = a, b
	case OpDiv:
		return nil, ErrNoDivWitness
	default:
		return nil, fmt.Errorf("field op %d not supported", op)
	}

	// For Sub the identity reads result + b = a, so the subtracted slot
	// holds a while the result columns still hold the reduced difference.
	target := result
	if op == OpSub {
		target = a
	}

	n := c.par.NumLimbs
	xL := limbsToInt64(bn254.BigToLimbsLE(vx, n))
	yL := limbsToInt64(bn254.BigToLimbsLE(vy, n))
	targetL := limbsToInt64(bn254.BigToLimbsLE(target, n))
	resL := limbsToInt64(bn254.BigToLimbsLE(result, n))
	carryL := limbsToInt64(bn254.BigToLimbsLE(carry, n))
	pL := limbsToInt64(c.par.modulusLimbs)

	// op(x, y) - target - carry*p as limb polynomial coefficients.
	vanish := make([]int64, 2*n-1)
	if op == OpMul {
		for i, x := range xL {
			for j, y := range yL {
				vanish[i+j] += x * y
			}
		}
	} else {
		for i := range xL {
			vanish[i] += xL[i] + yL[i]
		}
	}
	for i := range targetL {
		vanish[i] -= targetL[i]
	}
	for i, cv := range carryL {
		for j, pv := range pL {
			vanish[i+j] -= cv * pv
		}
	}

	// Root quotient at x = 256: vanish = (x - 256) * quotient.
	quot := make([]int64, c.par.NumWitnessLimbs)
	quot[len(quot)-1] = vanish[len(vanish)-1]
	for k := len(vanish) - 2; k >= 1; k-- {
		quot[k-1] = vanish[k] + 256*quot[k]
	}
	if vanish[0] != -256*quot[0] {
		return nil, fmt.Errorf("field op witness: vanishing polynomial has no root at 256")
	}

	for i, q := range quot {
		w := q + c.par.WitnessOffset
		if w < 0 || w >= 1<<16 {
			return nil, fmt.Errorf("field op witness limb %d out of range: %d", i, w)
		}
		row[c.WitnessLow[i]] = air.F(w & 0xff)
		row[c.WitnessHigh[i]] = air.F((w >> 8) & 0xff)
		if br != nil {
			br.AddU8Range(shard, uint8(w&0xff))
			br.AddU8Range(shard, uint8((w>>8)&0xff))
		}
	}
	for i, v := range resL {
		row[c.Result[i]] = air.F(v)
		if br != nil {
			br.AddU8Range(shard, uint8(v))
		}
	}
	for i, v := range carryL {
		row[c.Carry[i]] = air.F(v)
		if br != nil {
			br.AddU8Range(shard, uint8(v))
		}
	}
	return result, nil
}

// Eval imposes the vanishing equation and the byte range checks. The
// equation itself is asserted unconditionally so padding rows must carry a
// valid 0 op 0 witness; range checks are gated by isReal.
func (c Cols) Eval(b air.Builder, row []air.F, aLimbs, bLimbs []air.F, op Op, isReal air.F) {
	n := c.par.NumLimbs
	pRes := polyFromCols(row, c.Result)
	pCarry := polyFromCols(row, c.Carry)
	pMod := polyFromBytes(c.par.modulusLimbs)

	var vanish poly
	switch op {
	case OpAdd:
		vanish = polyAdd(polyFromLimbs(aLimbs), polyFromLimbs(bLimbs))
		vanish = polySub(vanish, pRes)
	case OpSub:
		// result + b = a.
		vanish = polyAdd(pRes, polyFromLimbs(bLimbs))
		vanish = polySub(vanish, polyFromLimbs(aLimbs))
	case OpMul:
		vanish = polyMul(polyFromLimbs(aLimbs), polyFromLimbs(bLimbs))
		vanish = polySub(vanish, pRes)
	default:
		panic(fmt.Sprintf("field op %d not supported", op))
	}
	vanish = polySub(vanish, polyMul(pCarry, pMod))
	vanish = polyPad(vanish, 2*n-1)

	// quotient(x) reconstructed from the byte streams.
	offset := field.NewU64(uint64(c.par.WitnessOffset))
	quot := make(poly, c.par.NumWitnessLimbs)
	for i := range quot {
		w := row[c.WitnessLow[i]].Add(air.F(256).Mul(row[c.WitnessHigh[i]]))
		quot[i] = w.Sub(offset)
	}

	// vanish == (x - 256) * quotient, coefficient for coefficient.
	for k := range vanish {
		var prev, cur air.F
		if k >= 1 && k-1 < len(quot) {
			prev = quot[k-1]
		}
		if k < len(quot) {
			cur = quot[k]
		}
		b.AssertZero(vanish[k].Sub(prev.Sub(air.F(256).Mul(cur))))
	}

	for _, col := range c.Result {
		b.U8Range(row[col], isReal)
	}
	for _, col := range c.Carry {
		b.U8Range(row[col], isReal)
	}
	for i := range c.WitnessLow {
		b.U8Range(row[c.WitnessLow[i]], isReal)
		b.U8Range(row[c.WitnessHigh[i]], isReal)
	}
}

// ResultLimbs returns the result limb values of a populated row.
func (c Cols) ResultLimbs(row []air.F) []air.F {
	limbs := make([]air.F, len(c.Result))
	for i, col := range c.Result {
		limbs[i] = row[col]
	}
	return limbs
}

func limbsToInt64(limbs []uint8) []int64 {
	out := make([]int64, len(limbs))
	for i, v := range limbs {
		out[i] = int64(v)
	}
	return out
}
