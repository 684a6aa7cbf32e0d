// Package engine implements the Bitcask-style append-only log storage
// engine: the write path that keeps the in-memory keydir, the writer's byte
// offset, and the durable log in agreement; the random-access read path
// that decodes a single record at a precise offset; and online compaction.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sync"

	"github.com/arnavsurve/kvs/internal/genfile"
	"github.com/arnavsurve/kvs/internal/record"
)

// DefaultCompactionThreshold is the number of overwrites/removes that
// accumulate before compaction runs automatically.
const DefaultCompactionThreshold = 5000

// Engine is the capability set shared by every storage backend: the log
// engine below, and the embedded-engine adapter in internal/boltengine.
type Engine interface {
	Set(key, value string) error
	Get(key string) (*string, error)
	Remove(key string) error
	Close() error
}

// LogEngine is the append-only-log, in-memory-index storage engine.
type LogEngine struct {
	mu sync.Mutex

	path   string
	writer *genWriter
	keydir map[string]Pointer
	// readers holds an open read handle for every sealed generation, i.e.
	// every generation other than the current one.
	readers map[uint64]*os.File

	currentGen uint64

	compactionThreshold  uint64
	compactionCnt        uint64
	compactionInProgress bool
}

var _ Engine = (*LogEngine)(nil)

// Open loads or creates a log-structured store at path using the default
// compaction threshold.
func Open(path string) (*LogEngine, error) {
	return OpenWithThreshold(path, DefaultCompactionThreshold)
}

// OpenWithThreshold loads or creates a log-structured store at path,
// compacting automatically once compactionThreshold overwrites/removes have
// accumulated since the last compaction.
func OpenWithThreshold(path string, compactionThreshold uint64) (*LogEngine, error) {
	if err := genfile.EnsureDir(path); err != nil {
		return nil, err
	}

	gens, err := genfile.ListGenerations(path)
	if err != nil {
		return nil, err
	}

	e := &LogEngine{
		path:                path,
		keydir:              newKeydir(),
		readers:             make(map[uint64]*os.File),
		compactionThreshold: compactionThreshold,
	}

	if len(gens) == 0 {
		e.currentGen = 0
	} else {
		e.currentGen = gens[len(gens)-1] + 1
		for _, gen := range gens {
			rf, err := genfile.OpenRead(path, gen)
			if err != nil {
				return nil, err
			}
			if err := e.replayGeneration(gen, rf); err != nil {
				return nil, err
			}
			e.readers[gen] = rf
		}
	}

	f, err := genfile.OpenAppend(path, e.currentGen)
	if err != nil {
		return nil, err
	}
	w, err := newGenWriter(f)
	if err != nil {
		return nil, err
	}
	e.writer = w

	slog.Info("engine: opened store",
		"path", path,
		"current_generation", e.currentGen,
		"keys", len(e.keydir))
	return e, nil
}

// replayGeneration decodes every record in generation gen, read from f, and
// folds it into the keydir. A decode failure partway through the file is
// not fatal: it terminates replay of that file only, discarding the
// unreadable tail. f is left open and owned by the caller.
func (e *LogEngine) replayGeneration(gen uint64, f *os.File) error {
	dec := record.NewDecoder(f)
	count := 0
	for {
		offset, rec, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("engine: stopping replay at undecodable record",
				"generation", gen, "offset", offset, "error", err)
			break
		}

		switch rec.Kind {
		case record.KindSet:
			e.keydir[rec.Key] = Pointer{Generation: gen, Offset: offset}
		case record.KindRemove:
			delete(e.keydir, rec.Key)
		}
		count++
	}

	slog.Debug("engine: replayed generation", "generation", gen, "records", count)
	return nil
}

// Set stores key=value, appending a Set record to the current generation
// and pointing the keydir at it.
func (e *LogEngine) Set(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setLocked(key, value)
}

func (e *LogEngine) setLocked(key, value string) error {
	offset := e.writer.written
	_, overwrite := e.keydir[key]

	data, err := record.Encode(record.Set(key, value))
	if err != nil {
		return err
	}
	if _, err := e.writer.append(data); err != nil {
		return err
	}
	e.keydir[key] = Pointer{Generation: e.currentGen, Offset: offset}

	if overwrite && !e.compactionInProgress {
		if err := e.tryCompaction(); err != nil {
			return err
		}
	}

	if err := e.writer.flush(); err != nil {
		return err
	}

	slog.Debug("engine: set", "key", key, "generation", e.currentGen, "offset", offset)
	return nil
}

// Get returns the value stored for key, or (nil, nil) if the key is not
// present or has been removed.
func (e *LogEngine) Get(key string) (*string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.getLocked(key)
}

func (e *LogEngine) getLocked(key string) (*string, error) {
	ptr, ok := e.keydir[key]
	if !ok {
		return nil, nil
	}

	f, mustClose, err := e.fileForRead(ptr.Generation)
	if err != nil {
		return nil, err
	}
	if mustClose {
		defer f.Close()
	}

	section := io.NewSectionReader(f, ptr.Offset, math.MaxInt64-ptr.Offset)
	dec := record.NewDecoder(section)
	_, rec, err := dec.Next()
	if err != nil {
		return nil, fmt.Errorf("engine: decode record for key %q at generation %d offset %d: %w",
			key, ptr.Generation, ptr.Offset, err)
	}

	switch rec.Kind {
	case record.KindSet:
		value := rec.Value
		return &value, nil
	case record.KindRemove:
		return nil, fmt.Errorf("%w: found remove for key %q at generation %d offset %d", ErrCorruptRecord, key, ptr.Generation, ptr.Offset)
	default:
		return nil, fmt.Errorf("%w: unknown record kind %q", ErrCorruptRecord, rec.Kind)
	}
}

// fileForRead returns a handle positioned to read generation gen, and
// whether the caller is responsible for closing it. The current generation
// is flushed first and reopened read-only (a fresh handle the caller must
// close) so a concurrent append cannot race with the read; sealed
// generations reuse their already-open, engine-owned read handle instead.
func (e *LogEngine) fileForRead(gen uint64) (f *os.File, mustClose bool, err error) {
	if gen == e.currentGen {
		if err := e.writer.flush(); err != nil {
			return nil, false, err
		}
		f, err := genfile.OpenRead(e.path, gen)
		if err != nil {
			return nil, false, err
		}
		return f, true, nil
	}

	f, ok := e.readers[gen]
	if !ok {
		return nil, false, fmt.Errorf("engine: generation %d: %w", gen, ErrInvalidFileHandler)
	}
	return f, false, nil
}

// Remove erases key. It fails with ErrKeyNotFound if the key has no entry
// in the keydir.
func (e *LogEngine) Remove(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.keydir[key]; !ok {
		return fmt.Errorf("engine: remove %q: %w", key, ErrKeyNotFound)
	}
	delete(e.keydir, key)

	data, err := record.Encode(record.Remove(key))
	if err != nil {
		return err
	}
	if _, err := e.writer.append(data); err != nil {
		return err
	}

	if err := e.tryCompaction(); err != nil {
		return err
	}

	if err := e.writer.flush(); err != nil {
		return err
	}

	slog.Debug("engine: removed", "key", key)
	return nil
}

// Close flushes and releases every open file handle. The keydir and any
// unflushed state are discarded; files on disk are left in place.
func (e *LogEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	if e.writer != nil {
		if err := e.writer.close(); err != nil {
			errs = append(errs, err)
		}
	}
	for gen, f := range e.readers {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("engine: close generation %d: %w", gen, err))
		}
	}
	return errors.Join(errs...)
}

// KeydirSize returns the number of live keys currently tracked in memory.
func (e *LogEngine) KeydirSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.keydir)
}
