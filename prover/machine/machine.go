/*
 * ZK32 - Chip roster and shard checking
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

package machine

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	config "github.com/rcornwell/ZK32/config/configparser"
	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/prover/air"
	"github.com/rcornwell/ZK32/prover/chips/bn254"
	"github.com/rcornwell/ZK32/prover/chips/ecall"
	"github.com/rcornwell/ZK32/prover/chips/memcopy"
)

// Machine is the precompile chip roster for one proof. The ECALL chip runs
// last in trace generation so the nonce table the other chips fill is
// complete when its send terms are laid down.
type Machine struct {
	precompile []air.Chip
	ecall      *ecall.Chip
}

// New builds the default roster, applying any configured trace heights.
func New() *Machine {
	m := &Machine{
		precompile: []air.Chip{
			bn254.NewMulChip(),
			bn254.NewMacChip(),
			memcopy.New(8),
			memcopy.New(16),
		},
		ecall: ecall.New(),
	}
	for name, log2 := range configRows {
		if !m.setChipRows(name, log2) {
			slog.Warn("configured rows for unknown chip", slog.String("chip", name))
		}
	}
	return m
}

// Fixed log2 trace heights from the CHIP configuration lines.
var configRows = map[string]int{}

func init() {
	config.RegisterOptions("CHIP", func(name string, options []config.Option) error {
		for _, opt := range options {
			if opt.Name != "ROWS" {
				return fmt.Errorf("unknown chip option %s", opt.Name)
			}
			n, err := strconv.Atoi(opt.EqualOpt)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid chip rows %s", opt.EqualOpt)
			}
			configRows[name] = n
		}
		return nil
	})
}

func (m *Machine) setChipRows(name string, log2 int) bool {
	for _, chip := range m.Chips() {
		if !strings.EqualFold(chip.Name(), name) {
			continue
		}
		switch c := chip.(type) {
		case *bn254.MulChip:
			c.FixedLog2Rows = log2
		case *bn254.MacChip:
			c.FixedLog2Rows = log2
		case *memcopy.Chip:
			c.FixedLog2Rows = log2
		case *ecall.Chip:
			c.FixedLog2Rows = log2
		}
		return true
	}
	return false
}

// Chips returns every chip, ECALL last.
func (m *Machine) Chips() []air.Chip {
	chips := make([]air.Chip, 0, len(m.precompile)+1)
	chips = append(chips, m.precompile...)
	chips = append(chips, m.ecall)
	return chips
}

// GenerateTraces builds the trace of every included chip. Traces are pure
// functions of the frozen input record; byte lookups and nonces accumulate
// in output.
func (m *Machine) GenerateTraces(input, output *record.ExecutionRecord) map[string]*air.Matrix {
	traces := map[string]*air.Matrix{}
	for _, chip := range m.Chips() {
		if !chip.Included(input) {
			continue
		}
		trace := chip.GenerateTrace(input, output)
		slog.Debug("generated trace",
			slog.String("chip", chip.Name()),
			slog.Int("rows", trace.Height()),
			slog.Int("width", trace.Width()))
		traces[chip.Name()] = trace
	}
	return traces
}

// CheckShard generates all traces, evaluates every constraint on every row,
// and closes the lookup argument. Returns the per cell constraint failures;
// a nonzero lookup balance is appended as a final error.
func (m *Machine) CheckShard(input *record.ExecutionRecord, lookup *air.Lookup) []error {
	var errs []error
	output := record.NewExecutionRecord()
	for _, chip := range m.Chips() {
		if !chip.Included(input) {
			continue
		}
		trace := chip.GenerateTrace(input, output)
		for i := 0; i < trace.Height(); i++ {
			b := air.NewRowChecker(chip.Name(), i, lookup, &errs)
			chip.Eval(b, trace.Row(i))
		}
	}
	if !lookup.Sum().IsZero() {
		errs = append(errs, &air.CheckError{Chip: "lookup", Row: -1,
			Msg: "syscall multiset does not balance"})
	}
	return errs
}

// LookupColumn builds the cumulative sum column for one chip's trace: each
// cell holds the running total of the rows so far, so consecutive cells
// telescope to per row contributions and the last cell is the chip total.
func LookupColumn(chip air.Chip, trace *air.Matrix, alpha, beta air.F) []air.F {
	column := make([]air.F, trace.Height())
	lookup := air.NewLookup(alpha, beta)
	var discard []error
	for i := 0; i < trace.Height(); i++ {
		b := air.NewRowChecker(chip.Name(), i, lookup, &discard)
		chip.Eval(b, trace.Row(i))
		column[i] = lookup.Sum()
	}
	return column
}
