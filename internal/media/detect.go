// Package media classifies local files for playback.
package media

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Kind is what a path holds as far as playback is concerned.
type Kind int

const (
	KindUnsupported Kind = iota
	KindAudio
	KindPlaylist
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

var playlistExts = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".pls":  true,
}

// IsSupportedExt returns true if the extension is a playable audio format.
func IsSupportedExt(ext string) bool {
	return audioExts[strings.ToLower(ext)]
}

// IsPlaylistExt returns true if the extension is a supported playlist format.
func IsPlaylistExt(ext string) bool {
	return playlistExts[strings.ToLower(ext)]
}

// Classify reports the kind of path by its extension.
func Classify(path string) Kind {
	ext := filepath.Ext(path)
	switch {
	case IsSupportedExt(ext):
		return KindAudio
	case IsPlaylistExt(ext):
		return KindPlaylist
	default:
		return KindUnsupported
	}
}

// SupportedExtsList returns a human-readable list of playable formats.
func SupportedExtsList() string {
	exts := make([]string, 0, len(audioExts))
	for ext := range audioExts {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return strings.Join(exts, ", ")
}

// ListDir returns the names of playable files and playlists in dir, sorted.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || Classify(e.Name()) == KindUnsupported {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}
