// Package wordlist loads the base dictionary: one word per line, blank
// lines skipped, every entry lowercased. File order is preserved because
// ranking ties break on dictionary order.
package wordlist

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// Load reads the word list at path. A missing or unreadable file is an
// error; callers treat it as a fatal configuration problem. Regular
// files are memory-mapped so large dictionaries load without double
// buffering.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat word list: %w", err)
	}

	// Empty and irregular files cannot be mapped; read them instead.
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return Parse(f)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return Parse(f)
	}
	defer func() { _ = data.Unmap() }()

	return parseBytes(data), nil
}

// Parse reads word-list entries from r, one per line.
func Parse(r io.Reader) ([]string, error) {
	var words []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if word := strings.TrimSpace(scanner.Text()); word != "" {
			words = append(words, strings.ToLower(word))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}

	return words, nil
}

// parseBytes splits mapped file contents into entries. Converting each
// line to a string copies it, so the mapping can be released afterwards.
func parseBytes(data []byte) []string {
	var words []string

	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}

		if word := bytes.TrimSpace(line); len(word) > 0 {
			words = append(words, strings.ToLower(string(word)))
		}
	}

	return words
}
