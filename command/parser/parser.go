/*
 * ZK32 - Monitor command parser
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
	"strconv"
	"strings"
	"unicode"

	"github.com/rcornwell/ZK32/emu/core"
)

type cmd struct {
	name    string // Command name.
	min     int    // Minimum match size.
	process func(*cmdLine, *core.Core) (bool, error)
}

type cmdLine struct {
	line string // Current command.
	pos  int    // Position in line.
}

var cmdList = []cmd{
	{name: "examine", min: 1, process: examine},
	{name: "deposit", min: 1, process: deposit},
	{name: "syscall", min: 2, process: syscallCmd},
	{name: "trace", min: 2, process: trace},
	{name: "balance", min: 2, process: balance},
	{name: "quit", min: 4, process: quit},
	{name: "help", min: 4, process: help},
}

// Execute the command line given.
func ProcessCommand(commandLine string, core *core.Core) (bool, error) {
	line := cmdLine{line: commandLine}
	command := line.getWord()
	if command == "" {
		return false, nil
	}

	match := matchList(command)
	if len(match) == 0 {
		return false, errors.New("command not found: " + command)
	}
	if len(match) > 1 {
		return false, errors.New("unique command not found: " + command)
	}

	return match[0].process(&line, core)
}

// Called to complete a command line, during line editing.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	matchList := matchList(name)
	matches := make([]string, len(matchList))
	for i, m := range matchList {
		matches[i] = m.name
	}
	return matches
}

// Check if command matches at least to minimum length.
func matchCommand(match cmd, command string) bool {
	if len(command) < match.min || len(command) > len(match.name) {
		return false
	}
	return strings.HasPrefix(match.name, strings.ToLower(command))
}

func matchList(command string) []cmd {
	matches := []cmd{}
	for _, m := range cmdList {
		if matchCommand(m, command) {
			matches = append(matches, m)
		}
	}
	return matches
}

// Collect next word from the line.
func (line *cmdLine) getWord() string {
	line.skipSpace()
	var word strings.Builder
	for line.pos < len(line.line) && !unicode.IsSpace(rune(line.line[line.pos])) {
		word.WriteByte(line.line[line.pos])
		line.pos++
	}
	return word.String()
}

func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *cmdLine) isEOL() bool {
	line.skipSpace()
	return line.pos >= len(line.line)
}

// Parse a hex number, with or without a 0x prefix.
func (line *cmdLine) getNumber() (uint32, error) {
	word := line.getWord()
	if word == "" {
		return 0, errors.New("number expected")
	}
	if strings.HasPrefix(word, "0x") || strings.HasPrefix(word, "0X") {
		word = word[2:]
	}
	v, err := strconv.ParseUint(word, 16, 32)
	if err != nil {
		return 0, errors.New("invalid number: " + word)
	}
	return uint32(v), nil
}
