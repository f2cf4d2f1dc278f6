package ui

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// snapshotName returns a collision-free file name for a PNG export.
func snapshotName() string {
	return "cymascope-" + uuid.NewString() + ".png"
}

// saveSnapshotCmd encodes img on a background goroutine. The image must
// already be a private copy of the frame.
func saveSnapshotCmd(img image.Image, dir string) tea.Cmd {
	return func() tea.Msg {
		path, size, err := writeSnapshot(img, dir)
		return snapshotSavedMsg{path: path, size: size, err: err}
	}
}

func writeSnapshot(img image.Image, dir string) (string, int64, error) {
	path := filepath.Join(dir, snapshotName())
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("creating snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", 0, fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("closing snapshot: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return path, 0, nil
	}
	return path, info.Size(), nil
}
