/*
 * ZK32 - Monitor commands
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

package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rcornwell/ZK32/emu/core"
	"github.com/rcornwell/ZK32/emu/record"
	"github.com/rcornwell/ZK32/emu/syscall"
	"github.com/rcornwell/ZK32/prover/air"
	"github.com/rcornwell/ZK32/prover/machine"
	"github.com/rcornwell/ZK32/util/hex"
)

// Challenges the monitor uses to close the lookup argument. A prover samples
// these from the transcript; fixed values are fine for inspection.
const (
	monitorAlpha air.F = 0x1234567
	monitorBeta  air.F = 0x89abcd
)

// examine addr [count] - dump memory words.
func examine(line *cmdLine, core *core.Core) (bool, error) {
	addr, err := line.getNumber()
	if err != nil {
		return false, err
	}
	count := uint32(8)
	if !line.isEOL() {
		if count, err = line.getNumber(); err != nil {
			return false, err
		}
	}
	words, err := core.Examine(addr, int(count))
	if err != nil {
		return false, err
	}
	fmt.Print(hex.DumpWords(addr, words))
	return false, nil
}

// deposit addr value... - store memory words.
func deposit(line *cmdLine, core *core.Core) (bool, error) {
	addr, err := line.getNumber()
	if err != nil {
		return false, err
	}
	values := []uint32{}
	for !line.isEOL() {
		v, err := line.getNumber()
		if err != nil {
			return false, err
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return false, errors.New("deposit needs at least one value")
	}
	return false, core.Deposit(addr, values...)
}

// syscall name arg1 arg2 - issue a precompile syscall.
func syscallCmd(line *cmdLine, core *core.Core) (bool, error) {
	name := line.getWord()
	if name == "" {
		return false, errors.New("syscall name expected")
	}
	var code syscall.Code
	found := false
	for _, c := range syscall.Codes() {
		if strings.EqualFold(c.String(), name) {
			code = c
			found = true
			break
		}
	}
	if !found {
		return false, errors.New("unknown syscall: " + name)
	}
	arg1, err := line.getNumber()
	if err != nil {
		return false, err
	}
	arg2, err := line.getNumber()
	if err != nil {
		return false, err
	}
	if err := core.Syscall(code, arg1, arg2); err != nil {
		return false, err
	}
	fmt.Printf("%s done, clk %d\n", code, core.Clk)
	return false, nil
}

// trace - generate all chip traces for the shard so far.
func trace(_ *cmdLine, core *core.Core) (bool, error) {
	m := machine.New()
	output := record.NewExecutionRecord()
	traces := m.GenerateTraces(core.Record(), output)
	if len(traces) == 0 {
		fmt.Println("no precompile events recorded")
		return false, nil
	}
	for _, chip := range m.Chips() {
		trace, ok := traces[chip.Name()]
		if !ok {
			continue
		}
		fmt.Printf("%-16s %5d rows x %d cols\n", chip.Name(), trace.Height(), trace.Width())
	}
	fmt.Printf("byte lookups: %d\n", len(output.ByteLookups))
	return false, nil
}

// balance - check every constraint and the lookup argument.
func balance(_ *cmdLine, core *core.Core) (bool, error) {
	m := machine.New()
	lookup := air.NewLookup(monitorAlpha, monitorBeta)
	errs := m.CheckShard(core.Record(), lookup)
	sends, receives := lookup.Counts()
	fmt.Printf("sends: %d receives: %d sum: %d\n", sends, receives, lookup.Sum())
	if len(errs) == 0 {
		fmt.Println("all constraints satisfied")
		return false, nil
	}
	for _, err := range errs {
		fmt.Println("Error: " + err.Error())
	}
	return false, nil
}

func quit(_ *cmdLine, _ *core.Core) (bool, error) {
	return true, nil
}

func help(_ *cmdLine, _ *core.Core) (bool, error) {
	fmt.Println("examine addr [count]      dump memory words")
	fmt.Println("deposit addr value...     store memory words")
	fmt.Println("syscall name arg1 arg2    issue a precompile syscall")
	fmt.Println("trace                     generate chip traces")
	fmt.Println("balance                   check constraints and lookup balance")
	fmt.Println("quit                      leave the monitor")
	return false, nil
}
