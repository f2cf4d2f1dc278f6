package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/olivier-w/cymascope/internal/media"
	"github.com/olivier-w/cymascope/internal/player"
	"github.com/olivier-w/cymascope/internal/queue"
	"github.com/olivier-w/cymascope/internal/ui"
	"github.com/olivier-w/cymascope/internal/util"
)

var errEmptyPlaylist = errors.New("playlist contains no playable entries")

// buildPlaybackModel resolves path to a track or playlist and starts the
// first playable entry. Errors mean nothing at path can be played; a track
// that exists but fails to open only produces a notice.
func buildPlaybackModel(path string, opts ui.Options) (ui.Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ui.Model{}, err
	}
	if info.IsDir() {
		return ui.Model{}, fmt.Errorf("%s is a directory", path)
	}

	var q *queue.Queue
	switch media.Classify(path) {
	case media.KindPlaylist:
		entries, err := media.ParseLocalPlaylist(path)
		if err != nil {
			return ui.Model{}, err
		}
		playable := media.FilterPlayable(entries)
		if len(playable) == 0 {
			return ui.Model{}, errEmptyPlaylist
		}
		q = queue.FromPaths(playable)
	case media.KindAudio:
		if siblings, start := scanSiblings(path); len(siblings) > 1 {
			q = queue.FromPaths(siblings)
			q.SetCurrentIndex(start)
		}
	default:
		return ui.Model{}, fmt.Errorf("unsupported format %s (supported: %s)", filepath.Ext(path), media.SupportedExtsList())
	}

	open := opts.Open
	if open == nil {
		open = ui.OpenFile
	}
	opts.Queue = q

	if q == nil {
		audio, meta, err := open(path)
		if err != nil {
			slog.Error("cannot open audio", "path", path, "error", err)
			opts.Notice = fmt.Sprintf("Cannot play %s: %v", filepath.Base(path), err)
			opts.Metadata = player.Metadata{Title: filepath.Base(path)}
			return ui.New(opts), nil
		}
		opts.Audio, opts.Metadata = audio, meta
		return ui.New(opts), nil
	}

	// Skip entries that fail to open, as the player would on advance.
	for {
		t := q.Current()
		audio, meta, err := open(t.Path)
		if err == nil {
			opts.Audio, opts.Metadata = audio, meta
			return ui.New(opts), nil
		}
		slog.Error("cannot open track", "path", t.Path, "error", err)
		q.MarkFailed()
		opts.Notice = fmt.Sprintf("Cannot play %s: %v", t.Title, err)
		if !q.Advance(false) {
			opts.Metadata = player.Metadata{Title: t.Title}
			return ui.New(opts), nil
		}
	}
}

// buildTestSignalModel plays a sine at the tuning reference.
func buildTestSignalModel(opts ui.Options, ref float64) ui.Model {
	tone, err := player.NewTone(ref, player.DefaultToneGain)
	if err != nil {
		slog.Error("cannot start test signal", "error", err)
		opts.Notice = fmt.Sprintf("Audio unavailable: %v", err)
		return ui.New(opts)
	}
	opts.Audio = tone
	opts.Metadata = player.Metadata{Title: "Test signal " + util.FormatHz(ref)}
	return ui.New(opts)
}

// scanSiblings returns the playable audio files next to path and the index
// of path among them.
func scanSiblings(path string) ([]string, int) {
	dir := filepath.Dir(path)
	names, err := media.ListDir(dir)
	if err != nil {
		return nil, 0
	}

	var files []string
	start := 0
	for _, name := range names {
		if media.Classify(name) != media.KindAudio {
			continue
		}
		if name == filepath.Base(path) {
			start = len(files)
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, start
}
