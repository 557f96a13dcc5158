/*
 * ZK32 - BN254 scalar field parameters
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

// Package bn254 holds the limb layout of the BN254 scalar prime field as used
// by both the syscall handlers and the non-native field op chips.
package bn254

import (
	"encoding/binary"
	"math/big"
)

const (
	// Words per field element. Elements are serialized as 32 little
	// endian bytes.
	NumWordsPerFE = 8

	// Base 256 limbs per field element.
	NumLimbs = 32

	// Coefficients of the root quotient of the vanishing polynomial,
	// 2*NumLimbs - 2.
	NumWitnessLimbs = 2*NumLimbs - 2

	// Shift applied to quotient coefficients so both witness byte streams
	// are nonnegative.
	WitnessOffset = 1 << 14
)

// The BN254 scalar field prime r.
const scalarModulusDec = "21888242871839275222246405745257275088548364400416034343698204186575808495617"

var scalarModulus, _ = new(big.Int).SetString(scalarModulusDec, 10)

// ScalarModulus returns a copy of r.
func ScalarModulus() *big.Int {
	return new(big.Int).Set(scalarModulus)
}

// ScalarModulusLimbs returns r as NumLimbs base 256 little endian limbs.
func ScalarModulusLimbs() []uint8 {
	limbs := make([]uint8, NumLimbs)
	be := scalarModulus.Bytes()
	for i, b := range be {
		limbs[len(be)-1-i] = b
	}
	return limbs
}

// WordsToBytesLE flattens words into their little endian byte stream.
func WordsToBytesLE(words []uint32) []uint8 {
	buf := make([]uint8, 0, len(words)*4)
	for _, w := range words {
		buf = binary.LittleEndian.AppendUint32(buf, w)
	}
	return buf
}

// BigToWordsLE splits a reduced element into NumWordsPerFE little endian
// words.
func BigToWordsLE(v *big.Int) []uint32 {
	be := v.Bytes()
	le := make([]uint8, NumWordsPerFE*4)
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	words := make([]uint32, NumWordsPerFE)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(le[i*4:])
	}
	return words
}

// BigToLimbsLE splits a nonnegative integer into n base 256 little endian
// limbs.
func BigToLimbsLE(v *big.Int, n int) []uint8 {
	limbs := make([]uint8, n)
	be := v.Bytes()
	for i, b := range be {
		limbs[len(be)-1-i] = b
	}
	return limbs
}
