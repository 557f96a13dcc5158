/*
 * ZK32 - BabyBear prime field
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

package field

// The STARK trace field. BabyBear is the 31-bit prime 2^31 - 2^27 + 1, small
// enough that a product of two reduced elements fits a uint64.
const Modulus uint32 = 2013265921

// Element is a BabyBear field element, always kept reduced mod Modulus.
type Element uint32

const (
	Zero Element = 0
	One  Element = 1
)

// New reduces an arbitrary uint32 into the field.
func New(v uint32) Element {
	return Element(v % Modulus)
}

// NewU64 reduces an arbitrary uint64 into the field.
func NewU64(v uint64) Element {
	return Element(v % uint64(Modulus))
}

// FromBool maps false to 0 and true to 1.
func FromBool(b bool) Element {
	if b {
		return One
	}
	return Zero
}

func (e Element) Add(o Element) Element {
	s := uint32(e) + uint32(o)
	if s >= Modulus {
		s -= Modulus
	}
	return Element(s)
}

func (e Element) Sub(o Element) Element {
	if e >= o {
		return e - o
	}
	return Element(uint32(e) + Modulus - uint32(o))
}

func (e Element) Neg() Element {
	if e == 0 {
		return 0
	}
	return Element(Modulus - uint32(e))
}

func (e Element) Mul(o Element) Element {
	return Element(uint64(e) * uint64(o) % uint64(Modulus))
}

// Pow raises the element to an arbitrary power by square and multiply.
func (e Element) Pow(n uint32) Element {
	result := One
	base := e
	for n != 0 {
		if n&1 != 0 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

// Inv returns the multiplicative inverse. Inverse of zero is zero.
func (e Element) Inv() Element {
	return e.Pow(Modulus - 2)
}

func (e Element) IsZero() bool {
	return e == 0
}

// Uint32 returns the canonical representative in [0, Modulus).
func (e Element) Uint32() uint32 {
	return uint32(e)
}
