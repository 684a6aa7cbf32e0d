package boltengine

import (
	"errors"
	"testing"

	"github.com/arnavsurve/kvs/internal/engine"
)

func TestSetThenGet(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	if err := e.Set("a", "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := e.Get("a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || *got != "1" {
		t.Fatalf("Get(a) = %v, want \"1\"", got)
	}
}

func TestSetThenGetSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := e.Set("a", "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	e2, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e2.Close()
	got, err := e2.Get("a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || *got != "1" {
		t.Fatalf("Get(a) after restart = %v, want \"1\"", got)
	}
}

func TestGetMissingKeyReturnsNilNoError(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	got, err := e.Get("missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Get(missing) = %v, want nil", got)
	}
}

func TestRemoveMissingKeyFailsWithErrKeyNotFound(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	if err := e.Remove("missing"); !errors.Is(err, engine.ErrKeyNotFound) {
		t.Fatalf("Remove() error = %v, want ErrKeyNotFound", err)
	}
}

func TestRemoveThenGetIsNil(t *testing.T) {
	dir := t.TempDir()
	e, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer e.Close()

	if err := e.Set("a", "1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := e.Remove("a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	got, err := e.Get("a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Get(a) after remove = %v, want nil", got)
	}
}
