/*
 * ZK32 - Limb polynomials
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

package fieldop

import (
	"github.com/rcornwell/ZK32/prover/air"
)

// poly is a limb polynomial over the trace field, lowest coefficient first.
type poly []air.F

func polyFromLimbs(limbs []air.F) poly {
	return poly(limbs)
}

func polyFromCols(row []air.F, cols []int) poly {
	p := make(poly, len(cols))
	for i, c := range cols {
		p[i] = row[c]
	}
	return p
}

func polyFromBytes(limbs []uint8) poly {
	p := make(poly, len(limbs))
	for i, v := range limbs {
		p[i] = air.F(v)
	}
	return p
}

func polyAdd(a, b poly) poly {
	n := max(len(a), len(b))
	out := make(poly, n)
	for i := range out {
		var av, bv air.F
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = av.Add(bv)
	}
	return out
}

func polySub(a, b poly) poly {
	n := max(len(a), len(b))
	out := make(poly, n)
	for i := range out {
		var av, bv air.F
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = av.Sub(bv)
	}
	return out
}

func polyMul(a, b poly) poly {
	out := make(poly, len(a)+len(b)-1)
	for i, av := range a {
		if av.IsZero() {
			continue
		}
		for j, bv := range b {
			out[i+j] = out[i+j].Add(av.Mul(bv))
		}
	}
	return out
}

func polyPad(p poly, n int) poly {
	for len(p) < n {
		p = append(p, air.F(0))
	}
	return p
}
