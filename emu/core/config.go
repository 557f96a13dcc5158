/*
 * ZK32 - Machine configuration options
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

package core

import (
	"fmt"

	config "github.com/rcornwell/ZK32/config/configparser"
)

// Defaults applied when the configuration does not say otherwise.
var (
	// Guest memory size in K.
	DefaultMemSizeK = 1024

	// Cycle budget of one shard before execution rolls to the next
	// proof segment.
	ShardCycleBudget = 1 << 20
)

func init() {
	config.RegisterOption("MEMORY", func(value string, _ []config.Option) error {
		size, err := config.ParseSize(value)
		if err != nil {
			return err
		}
		if size <= 0 {
			return fmt.Errorf("memory size must be positive: %s", value)
		}
		DefaultMemSizeK = size
		return nil
	})
	config.RegisterOption("SHARD", func(value string, _ []config.Option) error {
		size, err := config.ParseSize(value)
		if err != nil {
			return err
		}
		if size <= 0 {
			return fmt.Errorf("shard budget must be positive: %s", value)
		}
		ShardCycleBudget = size * 1024
		return nil
	})
}
