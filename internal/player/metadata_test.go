package player

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadMetadataFallsBackToFileName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Gong Bath.wav", "untagged.mp3"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
			t.Fatal(err)
		}
		m := ReadMetadata(path)
		want := name[:len(name)-len(filepath.Ext(name))]
		if m.Title != want || m.Artist != "" {
			t.Fatalf("ReadMetadata(%q) = %+v, want title %q", name, m, want)
		}
	}
}

func TestMetadataLabel(t *testing.T) {
	if got := (Metadata{Title: "Om"}).Label(); got != "Om" {
		t.Fatalf("Label() = %q", got)
	}
	if got := (Metadata{Title: "Om", Artist: "Bowls"}).Label(); got != "Bowls - Om" {
		t.Fatalf("Label() = %q", got)
	}
}
