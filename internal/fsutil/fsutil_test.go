package fsutil

import (
	"bytes"
	"errors"
	"io/fs"
	"testing"
)

func TestMemoryReadWrite(t *testing.T) {
	m := NewMemory()

	if err := m.WriteFile("out/canard.tap", []byte("M30\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := m.ReadFile("out/canard.tap")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(data, []byte("M30\n")) {
		t.Errorf("ReadFile = %q, want %q", data, "M30\n")
	}

	// Stored contents are isolated from caller mutation.
	data[0] = 'X'
	again, err := m.ReadFile("out/canard.tap")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if again[0] != 'M' {
		t.Error("stored file mutated through a returned slice")
	}
}

func TestMemoryMissingFile(t *testing.T) {
	m := NewMemory()
	_, err := m.ReadFile("nope")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile error = %v, want fs.ErrNotExist", err)
	}
}

func TestMemoryCleansPaths(t *testing.T) {
	m := NewMemory()
	if err := m.WriteFile("out//layouts/../nest.csv", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ReadFile("out/nest.csv"); err != nil {
		t.Errorf("cleaned path not readable: %v", err)
	}
	if !m.Exists("out/nest.csv") {
		t.Error("Exists false for written file")
	}
}

func TestMemoryMkdirAll(t *testing.T) {
	m := NewMemory()
	if err := m.MkdirAll("a/b/c", 0o755); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{"a", "a/b", "a/b/c"} {
		if !m.Exists(dir) {
			t.Errorf("Exists(%q) = false after MkdirAll", dir)
		}
	}
	if m.Exists("a/b/c/d") {
		t.Error("Exists true for never-created path")
	}
}

func TestMemoryFilesSorted(t *testing.T) {
	m := NewMemory()
	for _, name := range []string{"b.svg", "a.svg", "c.csv"} {
		if err := m.WriteFile(name, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got := m.Files()
	want := []string{"a.svg", "b.svg", "c.csv"}
	if len(got) != len(want) {
		t.Fatalf("Files() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Files() = %v, want %v", got, want)
		}
	}
}

func TestOSImplements(t *testing.T) {
	var _ FileSystem = OS{}
	var _ FileSystem = NewMemory()
}
