package player

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestOscillatorWritesQuietStereoSine(t *testing.T) {
	osc := &oscillator{freq: DefaultToneFrequency, gain: DefaultToneGain}
	buf := make([]byte, OutputRate*outputFrame/10)

	n, err := osc.Read(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("Read() = %d, %v", n, err)
	}

	limit := int16(math.Round(DefaultToneGain * 32767))
	var peak int16
	crossings := 0
	prev := int16(0)
	for i := 0; i < n; i += outputFrame {
		left := int16(binary.LittleEndian.Uint16(buf[i:]))
		right := int16(binary.LittleEndian.Uint16(buf[i+sampleBytes:]))
		if left != right {
			t.Fatalf("frame %d: channels differ (%d, %d)", i/outputFrame, left, right)
		}
		if left > limit || left < -limit {
			t.Fatalf("frame %d: sample %d exceeds gain", i/outputFrame, left)
		}
		peak = max(peak, left)
		if prev < 0 && left >= 0 {
			crossings++
		}
		prev = left
	}

	if peak < limit-10 {
		t.Fatalf("peak %d, want close to %d", peak, limit)
	}
	// 0.1 s of 440 Hz.
	if crossings < 43 || crossings > 45 {
		t.Fatalf("got %d rising zero crossings, want 44", crossings)
	}
}

func TestOscillatorIgnoresPartialFrames(t *testing.T) {
	osc := &oscillator{freq: DefaultToneFrequency, gain: DefaultToneGain}
	n, err := osc.Read(make([]byte, outputFrame+3))
	if err != nil || n != outputFrame {
		t.Fatalf("Read() = %d, %v; want %d, nil", n, err, outputFrame)
	}
}

func TestOscillatorRetunes(t *testing.T) {
	osc := &oscillator{freq: DefaultToneFrequency, gain: DefaultToneGain}
	osc.setFrequency(880)
	if osc.freq != 880 {
		t.Fatalf("freq = %v, want 880", osc.freq)
	}
}
