package engine

import (
	"fmt"
	"log/slog"

	"github.com/arnavsurve/kvs/internal/genfile"
)

// tryCompaction increments the overwrite/remove counter and runs a full
// compaction once it reaches the configured threshold.
func (e *LogEngine) tryCompaction() error {
	e.compactionCnt++
	if e.compactionCnt < e.compactionThreshold {
		return nil
	}
	e.compactionCnt = 0
	return e.compact()
}

// compact rewrites every live key into a fresh generation and deletes every
// generation that predates it. It is synchronous, single-threaded, and
// guarded against re-entry: the internal get/set helpers it calls never
// trigger tryCompaction themselves.
func (e *LogEngine) compact() error {
	if e.compactionInProgress {
		return nil
	}
	e.compactionInProgress = true
	defer func() { e.compactionInProgress = false }()

	preGens, err := genfile.ListGenerations(e.path)
	if err != nil {
		return err
	}

	if err := e.rollGeneration(); err != nil {
		return err
	}

	keys := make([]string, 0, len(e.keydir))
	for k := range e.keydir {
		keys = append(keys, k)
	}

	for _, key := range keys {
		value, err := e.getLocked(key)
		if err != nil {
			return fmt.Errorf("engine: compaction: read %q before rewrite: %w", key, err)
		}
		if value == nil {
			// Removed concurrently with the snapshot above; nothing to carry forward.
			continue
		}
		if err := e.setLocked(key, *value); err != nil {
			return fmt.Errorf("engine: compaction: rewrite %q: %w", key, err)
		}
	}

	for _, gen := range preGens {
		if f, ok := e.readers[gen]; ok {
			f.Close()
			delete(e.readers, gen)
		}
		if err := genfile.Delete(e.path, gen); err != nil {
			return err
		}
	}

	slog.Info("engine: compaction complete",
		"path", e.path, "new_generation", e.currentGen, "keys_rewritten", len(keys))
	return nil
}

// rollGeneration opens a new current generation, moving the previous
// writer's file into the sealed read-handle map under its own generation
// number so reads against the old offsets continue to resolve correctly
// until the old generation files are deleted.
func (e *LogEngine) rollGeneration() error {
	if err := e.writer.flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWriterBusy, err)
	}
	sealedGen := e.currentGen
	sealedFile := e.writer.file

	e.currentGen++
	f, err := genfile.OpenAppend(e.path, e.currentGen)
	if err != nil {
		return err
	}
	w, err := newGenWriter(f)
	if err != nil {
		return err
	}
	e.writer = w
	e.readers[sealedGen] = sealedFile

	slog.Debug("engine: rolled generation", "sealed", sealedGen, "new_current", e.currentGen)
	return nil
}
