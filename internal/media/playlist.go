package media

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ParseLocalPlaylist reads a .m3u/.m3u8/.pls file into local paths.
// Relative entries resolve against the playlist's directory.
func ParseLocalPlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("playlist is not valid UTF-8")
	}

	data = bytes.TrimPrefix(data, []byte("\uFEFF"))

	entry := m3uEntry
	if ext == ".pls" {
		entry = plsEntry
	}

	baseDir := filepath.Dir(abs)
	var paths []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		raw, ok := entry(strings.TrimSpace(scanner.Text()))
		if !ok {
			continue
		}
		p := filepath.Clean(raw)
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		paths = append(paths, p)
	}
	return paths, scanner.Err()
}

// FilterPlayable keeps existing regular files in a playable format.
func FilterPlayable(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || !IsSupportedExt(filepath.Ext(p)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func m3uEntry(line string) (string, bool) {
	return line, line != "" && !strings.HasPrefix(line, "#")
}

// plsEntry accepts FileN=path lines.
func plsEntry(line string) (string, bool) {
	key, val, ok := strings.Cut(line, "=")
	key, val = strings.TrimSpace(key), strings.TrimSpace(val)
	if !ok || val == "" {
		return "", false
	}
	if len(key) < 5 || !strings.EqualFold(key[:4], "file") {
		return "", false
	}
	if strings.Trim(key[4:], "0123456789") != "" {
		return "", false
	}
	return val, true
}
