// Package tuner names the musical note nearest to a frequency.
package tuner

import (
	"math"
	"strconv"
)

const (
	// AnchorOffset re-anchors semitones counted from the reference A to
	// the C that opens its octave.
	AnchorOffset = 9

	// ReferenceOctave is the octave of the reference pitch.
	ReferenceOctave = 4

	// NoiseThreshold is the byte magnitude a peak must exceed to be named.
	NoiseThreshold = 20

	// DefaultReference is concert pitch A4.
	DefaultReference = 440.0
)

// NoteNames is the chromatic scale of one octave, starting at C.
var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is a named pitch class with its octave.
type Note struct {
	Name   string
	Octave int
}

func (n Note) String() string {
	return n.Name + strconv.Itoa(n.Octave)
}

// FromFrequency returns the note nearest to freq for a tuning whose A4 is
// ref. It reports false when either frequency is not a positive finite
// number.
func FromFrequency(freq, ref float64) (Note, bool) {
	if !valid(freq) || !valid(ref) {
		return Note{}, false
	}
	semitones := int(math.Round(12 * math.Log2(freq/ref)))
	shifted := semitones + AnchorOffset
	octave := floorDiv(shifted, 12) + ReferenceOctave
	return Note{Name: NoteNames[mod(shifted, 12)], Octave: octave}, true
}

// Cents returns how far freq sits from its nearest equal-tempered note,
// in hundredths of a semitone within [-50, 50].
func Cents(freq, ref float64) (float64, bool) {
	if !valid(freq) || !valid(ref) {
		return 0, false
	}
	exact := 12 * math.Log2(freq/ref)
	return 100 * (exact - math.Round(exact)), true
}

// Audible reports whether a peak magnitude clears the noise threshold.
func Audible(magnitude float64) bool {
	return magnitude > NoiseThreshold
}

func valid(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
