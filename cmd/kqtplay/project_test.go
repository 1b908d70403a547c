package main

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeHandle struct {
	got map[string][]byte
}

func (f *fakeHandle) SetData(key string, data []byte) error {
	if f.got == nil {
		f.got = make(map[string][]byte)
	}
	f.got[key] = append([]byte(nil), data...)
	return nil
}

func TestLoadProjectReadsNestedJSONKeys(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "p_manifest.json", `{}`)
	mustWrite(t, dir, "au_00/p_manifest.json", `{}`)
	mustWrite(t, dir, "au_00/proc_00/p_processor.json", `{"type":"add"}`)
	mustWrite(t, dir, "notes.txt", "ignored")

	project, err := loadProject(dir, newFileCache())
	if err != nil {
		t.Fatalf("loadProject: %v", err)
	}

	want := []string{"p_manifest.json", "au_00/p_manifest.json", "au_00/proc_00/p_processor.json"}
	for _, key := range want {
		if _, ok := project[key]; !ok {
			t.Errorf("missing key %q in loaded project", key)
		}
	}
	if _, ok := project["notes.txt"]; ok {
		t.Errorf("non-.json file should not have been loaded")
	}
}

func TestLoadProjectRejectsEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := loadProject(dir, newFileCache()); err == nil {
		t.Fatal("expected an error loading a directory with no .json files")
	}
}

func TestApplyProjectForwardsEveryKey(t *testing.T) {
	h := &fakeHandle{}
	project := map[string][]byte{
		"p_manifest.json":      []byte(`{}`),
		"au_00/p_manifest.json": []byte(`{}`),
	}
	if err := applyProject(h, project); err != nil {
		t.Fatalf("applyProject: %v", err)
	}
	for key, data := range project {
		if string(h.got[key]) != string(data) {
			t.Errorf("key %q: got %q, want %q", key, h.got[key], data)
		}
	}
}

func TestFileCacheServesUnchangedFileWithoutReread(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")
	mustWrite(t, dir, "x.json", `{"a":1}`)

	fc := newFileCache()
	first, err := fc.read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	second, err := fc.read(path)
	if err != nil {
		t.Fatalf("read (cached): %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("cached read mismatch: %q vs %q", first, second)
	}
}

func mustWrite(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}
