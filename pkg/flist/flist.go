// Package flist loads newline-delimited file-path lists.
package flist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads one path per line from the list at path, preserving order
// and duplicates. Blank lines and surrounding whitespace are dropped.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file list: %w", err)
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read file list %s: %w", path, err)
	}
	return paths, nil
}
