package secret

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	b, err := New(64)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer b.Close()

	if b.Len() != 64 {
		t.Errorf("Len() = %d, want 64", b.Len())
	}
	for i, v := range b.Bytes() {
		if v != 0 {
			t.Fatalf("byte %d = %d, want 0", i, v)
		}
	}
}

func TestNew_InvalidSize(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Errorf("New(%d) expected error, got nil", size)
		}
	}
}

func TestNewFromBytes_ZeroesSource(t *testing.T) {
	t.Parallel()

	source := []byte("AGE-SECRET-KEY-EXAMPLE")
	want := make([]byte, len(source))
	copy(want, source)

	b, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes() error = %v", err)
	}
	defer b.Close()

	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("Bytes() = %q, want %q", b.Bytes(), want)
	}
	for i, v := range source {
		if v != 0 {
			t.Fatalf("source byte %d = %d, want 0 after NewFromBytes", i, v)
		}
	}
}

func TestNewFromBytes_Empty(t *testing.T) {
	t.Parallel()

	if _, err := NewFromBytes(nil); err == nil {
		t.Error("NewFromBytes(nil) expected error, got nil")
	}
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	b, err := NewFromBytes([]byte("secret"))
	if err != nil {
		t.Fatalf("NewFromBytes() error = %v", err)
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestBytes_PanicsAfterClose(t *testing.T) {
	t.Parallel()

	b, err := NewFromBytes([]byte("secret"))
	if err != nil {
		t.Fatalf("NewFromBytes() error = %v", err)
	}
	b.Close()

	defer func() {
		if recover() == nil {
			t.Error("Bytes() after Close did not panic")
		}
	}()
	b.Bytes()
}

func TestZero(t *testing.T) {
	t.Parallel()

	data := []byte{1, 2, 3, 4}
	Zero(data)
	for i, v := range data {
		if v != 0 {
			t.Errorf("byte %d = %d, want 0", i, v)
		}
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "key.txt")
	content := "AGE-SECRET-KEY-EXAMPLE\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	b, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	defer b.Close()

	if string(b.Bytes()) != content {
		t.Errorf("Bytes() = %q, want %q", b.Bytes(), content)
	}
}

func TestReadFile_Empty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("  \n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := ReadFile(path); err == nil {
		t.Error("ReadFile() on empty file expected error, got nil")
	}
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ReadFile() on missing file expected error, got nil")
	}
}
