// Package queue holds the ordered tracks of a playlist session.
package queue

import (
	"path/filepath"
	"strings"
)

// Track is one playable file.
type Track struct {
	Path   string
	Title  string
	Failed bool
}

// Queue manages an ordered list of tracks for playlist playback.
// It is only mutated from Bubbletea's single-threaded Update loop.
type Queue struct {
	tracks  []Track
	current int
}

// FromPaths builds a queue titled by file name.
func FromPaths(paths []string) *Queue {
	tracks := make([]Track, len(paths))
	for i, p := range paths {
		base := filepath.Base(p)
		tracks[i] = Track{Path: p, Title: strings.TrimSuffix(base, filepath.Ext(base))}
	}
	return &Queue{tracks: tracks}
}

// Current returns the current track, or nil if the queue is empty.
func (q *Queue) Current() *Track {
	return q.Track(q.current)
}

// Track returns the track at i, or nil if out of range.
func (q *Queue) Track(i int) *Track {
	if i < 0 || i >= len(q.tracks) {
		return nil
	}
	return &q.tracks[i]
}

// Advance moves to the next track. With wrap set the last track is followed
// by the first. Returns false when there is nowhere to go.
func (q *Queue) Advance(wrap bool) bool {
	switch {
	case q.current+1 < len(q.tracks):
		q.current++
	case wrap && len(q.tracks) > 0:
		q.current = 0
	default:
		return false
	}
	return true
}

// Previous moves back by one. Returns false if already at the start.
func (q *Queue) Previous() bool {
	if q.current <= 0 {
		return false
	}
	q.current--
	return true
}

// MarkFailed flags the current track so the UI can show it was skipped.
func (q *Queue) MarkFailed() {
	if t := q.Current(); t != nil {
		t.Failed = true
	}
}

// SetCurrentIndex jumps to track i. Out-of-range indices are ignored.
func (q *Queue) SetCurrentIndex(i int) bool {
	if i < 0 || i >= len(q.tracks) {
		return false
	}
	q.current = i
	return true
}

// Len returns the total number of tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// CurrentIndex returns the zero-based index of the current track.
func (q *Queue) CurrentIndex() int {
	return q.current
}
