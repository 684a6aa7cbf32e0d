// Package genfile manages the numbered generation files (<N>.db) that make
// up a store directory: listing which generations exist, opening one for
// append or random-access read, and deleting one once compaction has
// superseded it.
package genfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const suffix = ".db"

// Name returns the filename (not full path) for generation n.
func Name(n uint64) string {
	return strconv.FormatUint(n, 10) + suffix
}

// Path returns the full path for generation n inside dir.
func Path(dir string, n uint64) string {
	return filepath.Join(dir, Name(n))
}

// ListGenerations returns the generation numbers present in dir, sorted
// ascending. Filenames that do not match "<digits>.db" are ignored. It is
// not an error for dir to not contain any generation files.
func ListGenerations(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("genfile: list generations in %s: %w", dir, err)
	}

	var gens []uint64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimSuffix(name, suffix), 10, 64)
		if err != nil {
			continue
		}
		gens = append(gens, n)
	}

	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })
	return gens, nil
}

// OpenAppend opens (creating if necessary) generation n in dir for append
// and random-access read, positioned for writes at the end of the file.
func OpenAppend(dir string, n uint64) (*os.File, error) {
	f, err := os.OpenFile(Path(dir, n), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("genfile: open %s for append: %w", Name(n), err)
	}
	return f, nil
}

// OpenRead opens generation n in dir read-only, for random-access reads
// against a sealed generation.
func OpenRead(dir string, n uint64) (*os.File, error) {
	f, err := os.Open(Path(dir, n))
	if err != nil {
		return nil, fmt.Errorf("genfile: open %s for read: %w", Name(n), err)
	}
	return f, nil
}

// Delete removes generation n from dir.
func Delete(dir string, n uint64) error {
	if err := os.Remove(Path(dir, n)); err != nil {
		return fmt.Errorf("genfile: delete %s: %w", Name(n), err)
	}
	slog.Debug("genfile: deleted generation", "dir", dir, "generation", n)
	return nil
}

// EnsureDir creates dir (and any missing parents) if it does not exist.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("genfile: create store directory %s: %w", dir, err)
		}
		return nil
	} else if err != nil {
		return fmt.Errorf("genfile: stat store directory %s: %w", dir, err)
	}
	return nil
}
