package scriptstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreSaveWritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	store.now = func() time.Time {
		return time.Date(2025, 3, 9, 14, 30, 5, 0, time.UTC)
	}

	script := "import rhinoscriptsyntax as rs\nrs.AddSphere((0, 0, 0), 5)\n"
	path, err := store.Save(context.Background(), script)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	wantName := "rhino_model_2025-03-09_02-30-05_PM.py"
	if filepath.Base(path) != wantName {
		t.Fatalf("unexpected file name %q, want %q", filepath.Base(path), wantName)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(content) != script {
		t.Fatalf("content mismatch: %q", string(content))
	}
}

func TestStoreSaveMorningUsesAMSuffix(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	store.now = func() time.Time {
		return time.Date(2025, 3, 9, 9, 5, 7, 0, time.UTC)
	}

	path, err := store.Save(context.Background(), "print('hi')")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "rhino_model_2025-03-09_09-05-07_AM.py" {
		t.Fatalf("unexpected file name %q", filepath.Base(path))
	}
}

func TestStoreSaveNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ts := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}

	first, err := store.Save(context.Background(), "a = 1")
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := store.Save(context.Background(), "a = 2")
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct files, both saves hit %q", first)
	}
	content, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read first: %v", err)
	}
	if string(content) != "a = 1" {
		t.Fatalf("first file was overwritten: %q", string(content))
	}
}

func TestStoreSaveCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "scripts")
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	path, err := store.Save(context.Background(), "x = 1")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
}

func TestNewStoreExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewStore("~/Desktop/RhinoScripts")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	want := filepath.Join(home, "Desktop", "RhinoScripts")
	if store.Dir() != want {
		t.Fatalf("expected dir %q, got %q", want, store.Dir())
	}
}

func TestNewStoreRejectsEmptyDir(t *testing.T) {
	if _, err := NewStore("   "); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}
