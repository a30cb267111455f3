package cache

import (
	"testing"
	"time"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := newTestCache(t)

	want := &Entry{Text: "Hello World", Backend: "tesseract", CreatedAt: time.Unix(1700000000, 0).UTC()}
	if err := c.Set("k", want, DefaultTTL); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get() found = false, want true")
	}
	if got.Text != want.Text || got.Backend != want.Backend {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestCache_Miss(t *testing.T) {
	c := newTestCache(t)
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) found = true")
	}
}

func TestCache_Delete(t *testing.T) {
	c := newTestCache(t)
	_ = c.Set("k", &Entry{Text: "x"}, 0)

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("Get() after Delete found = true")
	}
	if err := c.Delete("never-set"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestCache_OnDisk(t *testing.T) {
	dir := t.TempDir()

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Set("k", &Entry{Text: "persisted"}, time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	c, err = New(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer c.Close()

	got, ok := c.Get("k")
	if !ok || got.Text != "persisted" {
		t.Errorf("Get() after reopen = %v, %v", got, ok)
	}
}

func TestGenerateKey(t *testing.T) {
	a := GenerateKey("tesseract", "eng", "abc")
	b := GenerateKey("tesseract", "eng", "abc")
	c := GenerateKey("tesseract", "engabc")

	if a != b {
		t.Error("GenerateKey is not deterministic")
	}
	if a == c {
		t.Error("GenerateKey does not separate parts")
	}
	if len(a) != 64 {
		t.Errorf("len(key) = %d, want 64", len(a))
	}
}
