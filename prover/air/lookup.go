/*
 * ZK32 - Cross chip lookup argument
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
	"github.com/rcornwell/ZK32/prover/field"
)

// Lookup accumulates the syscall multiset argument. Every CPU side send
// contributes 1/(beta + sum alpha^i * v_i), every chip side receive the
// negation; the multisets match iff the total is zero. Alpha and beta are
// challenges sampled after the main trace commitment; the checking harness
// injects fixed values.
type Lookup struct {
	Alpha F
	Beta  F

	sum      F
	sends    int
	receives int
}

func NewLookup(alpha, beta F) *Lookup {
	return &Lookup{Alpha: alpha, Beta: beta}
}

// Fingerprint of one term: the random linear combination of its fields.
func (l *Lookup) Fingerprint(t SyscallTerm) F {
	vs := [...]F{F(t.Scope), t.Shard, t.Clk, t.Nonce, t.Code, t.Arg1, t.Arg2}
	fp := l.Beta
	power := field.One
	for _, v := range vs {
		fp = fp.Add(power.Mul(v))
		power = power.Mul(l.Alpha)
	}
	return fp
}

// Send adds a CPU side emission with the given multiplicity.
func (l *Lookup) Send(t SyscallTerm, mult F) {
	if mult.IsZero() {
		return
	}
	l.sum = l.sum.Add(mult.Mul(l.Fingerprint(t).Inv()))
	l.sends++
}

// Receive adds a chip side reception with the given multiplicity.
func (l *Lookup) Receive(t SyscallTerm, mult F) {
	if mult.IsZero() {
		return
	}
	l.sum = l.sum.Sub(mult.Mul(l.Fingerprint(t).Inv()))
	l.receives++
}

// Sum is the running total. Zero once every send has a matching receive.
func (l *Lookup) Sum() F {
	return l.sum
}

// Counts of nonzero multiplicity terms seen so far.
func (l *Lookup) Counts() (sends, receives int) {
	return l.sends, l.receives
}
