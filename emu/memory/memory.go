/*
 * ZK32 - Guest memory
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

package memory

// Word addressed guest memory. All precompile pointers are 4 byte aligned,
// addresses are byte addresses.

const (
	// Largest memory size in K.
	maxSizeK = 16 * 1024

	// WordSize is the guest word size in bytes.
	WordSize uint32 = 4
)

type Memory struct {
	mem  []uint32
	size uint32 // Size in bytes.
}

// Create memory of size in K, clamped to the maximum.
func New(k int) *Memory {
	if k > maxSizeK {
		k = maxSizeK
	}
	return &Memory{
		mem:  make([]uint32, (k*1024)/int(WordSize)),
		size: uint32(k * 1024),
	}
}

// Return size of memory in bytes.
func (m *Memory) GetSize() uint32 {
	return m.size
}

// Get memory value without range check.
func (m *Memory) GetMemory(addr uint32) uint32 {
	return m.mem[addr>>2]
}

// Set memory to a value, without range check.
func (m *Memory) SetMemory(addr, data uint32) {
	m.mem[addr>>2] = data
}

// Check if address is in range.
func (m *Memory) CheckAddr(addr uint32) bool {
	return addr < m.size
}

// Check if address is on a word boundary.
func Aligned(addr uint32) bool {
	return addr%WordSize == 0
}

// Get a word from memory.
func (m *Memory) GetWord(addr uint32) (uint32, bool) {
	if addr >= m.size {
		return 0, true
	}
	return m.mem[addr>>2], false
}

// Put a word to memory.
func (m *Memory) PutWord(addr, data uint32) bool {
	if addr >= m.size {
		return true
	}
	m.mem[addr>>2] = data
	return false
}

// Check that a run of words starting at addr stays in range.
func (m *Memory) CheckSlice(addr uint32, words int) bool {
	end := uint64(addr) + uint64(words)*uint64(WordSize)
	return end <= uint64(m.size)
}
