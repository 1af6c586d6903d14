// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedshare.
//
// go-seedshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jeremyhahn/go-seedshare/pkg/mnemonic"
)

// ErrNoInput is returned when stdin ends before a secret was read.
var ErrNoInput = errors.New("no input")

// readLine reads one line from r without its line ending.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" && errors.Is(err, io.EOF) {
		return "", ErrNoInput
	}
	return line, nil
}

// words splits a line of user input into lowercase words.
func words(line string) []string {
	return mnemonic.Fields(strings.ToLower(line))
}

// parseCountThreshold parses the <count> <threshold> arguments.
func parseCountThreshold(args []string) (count, threshold int, err error) {
	if count, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("invalid share count %q", args[0])
	}
	if threshold, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("invalid threshold %q", args[1])
	}
	if threshold > count {
		return 0, 0, fmt.Errorf("number of shares must be greater or equal to threshold")
	}
	return count, threshold, nil
}
