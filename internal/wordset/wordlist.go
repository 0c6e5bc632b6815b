// Package wordset loads spelling word sets from disk.
package wordset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadWords reads one word per line from the provided file path. Blank lines
// and lines starting with '#' are skipped.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	words = Clean(words)
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return words, nil
}

// LoadFile loads a catalog from a YAML file, or a single-set catalog from a
// plain word list named after the file.
func LoadFile(path string) (Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadCatalog(path)
	default:
		words, err := LoadWords(path)
		if err != nil {
			return Catalog{}, err
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return Catalog{Sets: []Set{{ID: id, Title: id, Words: words}}}, nil
	}
}
