/*
 * ZK32 - Configuration file parser
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

package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line> := <keyword> |
 *           <keyword> <whitespace> <value> *(<whitespace> <option>)
 * <keyword> ::= <string>
 * <value> ::= <string> | <number><K|M> | <quoted>
 * <option> ::= <string> | <string> '=' <value>
 * <quoted> ::= '"' *(<any character except '"' or '#'>) '"'
 * <string> ::= *(<letter> | <number> | '.' | '/' | '_')
 */

// Option after the keyword's first value.
type Option struct {
	Name     string // Name of option.
	EqualOpt string // Value of string after =.
}

// Kinds of registered keywords.
const (
	TypeSwitch  = 1 + iota // Keyword alone on the line.
	TypeOption             // Keyword followed by one value.
	TypeOptions            // Keyword followed by a value and options.
	TypeFile               // Keyword followed by a file name.
)

type keywordDef struct {
	create func(string, []Option) error
	ty     int
}

var keywords = map[string]keywordDef{}

var lineNumber int

// Register should be called from init functions.
func RegisterSwitch(name string, fn func(string, []Option) error) {
	register(name, TypeSwitch, fn)
}

// Register should be called from init functions.
func RegisterOption(name string, fn func(string, []Option) error) {
	register(name, TypeOption, fn)
}

// Register should be called from init functions.
func RegisterOptions(name string, fn func(string, []Option) error) {
	register(name, TypeOptions, fn)
}

// Register should be called from init functions.
func RegisterFile(name string, fn func(string, []Option) error) {
	register(name, TypeFile, fn)
}

func register(name string, ty int, fn func(string, []Option) error) {
	keywords[strings.ToUpper(name)] = keywordDef{create: fn, ty: ty}
}

// Current option line being parsed.
type optionLine struct {
	line string // Current option line.
	pos  int    // Current position in line.
}

// Load in a configuration file.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	lineNumber = 0
	reader := bufio.NewReader(file)
	for {
		var err error

		line := optionLine{}
		line.line, err = reader.ReadString('\n')
		lineNumber++
		if len(line.line) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err := line.parseLine(); err != nil {
			return err
		}
	}
	return nil
}

// Parse one line from file.
func (line *optionLine) parseLine() error {
	line.skipSpace()
	if line.isEOL() {
		return nil
	}
	keyword := strings.ToUpper(line.getWord(false))
	def, ok := keywords[keyword]
	if !ok {
		return fmt.Errorf("unknown keyword %s, line: %d", keyword, lineNumber)
	}

	switch def.ty {
	case TypeSwitch:
		line.skipSpace()
		if !line.isEOL() {
			return fmt.Errorf("switch %s followed by options, line: %d", keyword, lineNumber)
		}
		return def.create("", nil)

	case TypeOption, TypeFile:
		line.skipSpace()
		value := line.getWord(true)
		line.skipSpace()
		if value == "" || !line.isEOL() {
			return fmt.Errorf("%s takes one value, line: %d", keyword, lineNumber)
		}
		return def.create(value, nil)

	case TypeOptions:
		line.skipSpace()
		value := line.getWord(true)
		if value == "" {
			return fmt.Errorf("%s not followed by value, line: %d", keyword, lineNumber)
		}
		options, err := line.parseOptions()
		if err != nil {
			return err
		}
		return def.create(value, options)
	}
	return nil
}

// Parse remaining options of form name or name=value.
func (line *optionLine) parseOptions() ([]Option, error) {
	options := []Option{}
	for {
		line.skipSpace()
		if line.isEOL() {
			return options, nil
		}
		name := line.getWord(false)
		if name == "" {
			return nil, fmt.Errorf("invalid option, line: %d", lineNumber)
		}
		opt := Option{Name: strings.ToUpper(name)}
		if !line.isEOL() && line.line[line.pos] == '=' {
			line.pos++
			opt.EqualOpt = line.getWord(true)
			if opt.EqualOpt == "" {
				return nil, fmt.Errorf("option %s needs a value, line: %d", opt.Name, lineNumber)
			}
		}
		options = append(options, opt)
	}
}

// Skip forward over line until none whitespace character found.
func (line *optionLine) skipSpace() {
	for line.pos < len(line.line) {
		if !unicode.IsSpace(rune(line.line[line.pos])) {
			return
		}
		line.pos++
	}
}

// Check if at end of line.
func (line *optionLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

// Collect the next word. Quoted strings may hold spaces.
func (line *optionLine) getWord(quoteOK bool) string {
	var word strings.Builder
	if line.isEOL() {
		return ""
	}
	if quoteOK && line.line[line.pos] == '"' {
		line.pos++
		for !line.isEOL() && line.line[line.pos] != '"' {
			word.WriteByte(line.line[line.pos])
			line.pos++
		}
		if !line.isEOL() {
			line.pos++
		}
		return word.String()
	}
	for !line.isEOL() {
		by := rune(line.line[line.pos])
		if !unicode.IsLetter(by) && !unicode.IsNumber(by) && by != '.' && by != '/' && by != '_' {
			break
		}
		word.WriteByte(line.line[line.pos])
		line.pos++
	}
	return word.String()
}

// ParseSize parses a number with an optional K or M suffix.
func ParseSize(value string) (int, error) {
	mult := 1
	switch {
	case strings.HasSuffix(value, "K"), strings.HasSuffix(value, "k"):
		value = value[:len(value)-1]
	case strings.HasSuffix(value, "M"), strings.HasSuffix(value, "m"):
		value = value[:len(value)-1]
		mult = 1024
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid size %s, line: %d", value, lineNumber)
	}
	return n * mult, nil
}
