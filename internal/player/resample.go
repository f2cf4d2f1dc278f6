package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const resampleChunkFrames = 2048

// resampler presents a 1- or 2-channel s16le decoder as a 48 kHz stereo
// stream. Samples between source frames are linearly interpolated; the last
// source frame is held once the source runs dry.
type resampler struct {
	src         audioDecoder
	passthrough bool
	rate        int64
	channels    int
	frameSize   int

	length int64 // output bytes
	pos    int64 // output bytes

	// Source position of the next output frame is srcIndex + phase/OutputRate.
	srcIndex int64
	phase    int64
	cur      [outputChannels]int16
	next     [outputChannels]int16
	primed   bool

	chunk  []byte
	in     []byte
	srcErr error
}

func newResampler(src audioDecoder) (*resampler, error) {
	rate := src.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", rate)
	}
	channels := src.ChannelCount()
	if channels < 1 || channels > outputChannels {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}

	r := &resampler{
		src:         src,
		passthrough: rate == OutputRate && channels == outputChannels,
		rate:        int64(rate),
		channels:    channels,
		frameSize:   channels * sampleBytes,
	}
	srcFrames := src.Length() / int64(r.frameSize)
	outFrames := srcFrames * OutputRate / r.rate
	if srcFrames > 0 && outFrames == 0 {
		outFrames = 1
	}
	r.length = outFrames * outputFrame
	if r.passthrough {
		r.length = src.Length()
	}
	r.chunk = make([]byte, resampleChunkFrames*r.frameSize)
	return r, nil
}

func (r *resampler) Length() int64     { return r.length }
func (r *resampler) SampleRate() int   { return OutputRate }
func (r *resampler) ChannelCount() int { return outputChannels }

func (r *resampler) Read(p []byte) (int, error) {
	if r.passthrough {
		n, err := r.src.Read(p)
		r.pos += int64(n)
		return n, err
	}

	frames := len(p) / outputFrame
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}

	written := 0
	for written < frames && r.pos < r.length {
		if !r.primed {
			if err := r.prime(); err != nil {
				if written > 0 {
					break
				}
				return 0, err
			}
		}
		for r.phase >= OutputRate {
			r.phase -= OutputRate
			r.srcIndex++
			r.cur = r.next
			if err := r.advance(); err != nil {
				if written > 0 {
					return written * outputFrame, nil
				}
				return 0, err
			}
		}

		off := written * outputFrame
		for ch := range outputChannels {
			s := lerp16(r.cur[ch], r.next[ch], r.phase)
			binary.LittleEndian.PutUint16(p[off+ch*sampleBytes:], uint16(s))
		}
		r.phase += r.rate
		r.pos += outputFrame
		written++
	}

	if written == 0 {
		return 0, io.EOF
	}
	return written * outputFrame, nil
}

func (r *resampler) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = r.pos + offset
	case io.SeekEnd:
		newPos = r.length + offset
	default:
		return r.pos, fmt.Errorf("invalid seek whence: %d", whence)
	}
	newPos = max(0, min(newPos, r.length))
	newPos -= newPos % outputFrame

	if r.passthrough {
		pos, err := r.src.Seek(newPos, io.SeekStart)
		if err != nil {
			return r.pos, err
		}
		r.pos = pos
		return pos, nil
	}

	num := newPos / outputFrame * r.rate
	srcIndex := num / OutputRate
	if _, err := r.src.Seek(srcIndex*int64(r.frameSize), io.SeekStart); err != nil {
		return r.pos, err
	}
	r.pos = newPos
	r.srcIndex = srcIndex
	r.phase = num % OutputRate
	r.primed = false
	r.in = nil
	r.srcErr = nil
	return newPos, nil
}

// prime loads the frame pair around the current source position.
func (r *resampler) prime() error {
	frame, err := r.readFrame()
	if err != nil {
		return err
	}
	r.cur = frame
	r.primed = true
	return r.advance()
}

// advance loads the frame after cur, holding cur at the end of the source.
func (r *resampler) advance() error {
	frame, err := r.readFrame()
	switch {
	case err == nil:
		r.next = frame
	case errors.Is(err, io.EOF):
		r.next = r.cur
	default:
		return err
	}
	return nil
}

func (r *resampler) readFrame() ([outputChannels]int16, error) {
	var frame [outputChannels]int16
	for len(r.in) < r.frameSize {
		if r.srcErr != nil {
			return frame, r.srcErr
		}
		kept := copy(r.chunk, r.in)
		n, err := r.src.Read(r.chunk[kept:])
		r.in = r.chunk[:kept+n]
		if err != nil {
			r.srcErr = err
		}
	}

	frame[0] = int16(binary.LittleEndian.Uint16(r.in))
	frame[1] = frame[0]
	if r.channels == 2 {
		frame[1] = int16(binary.LittleEndian.Uint16(r.in[sampleBytes:]))
	}
	r.in = r.in[r.frameSize:]
	return frame, nil
}

// lerp16 interpolates between a and b at phase/OutputRate, rounding half up.
func lerp16(a, b int16, phase int64) int16 {
	if phase == 0 || a == b {
		return a
	}
	diff := int64(b) - int64(a)
	return int16(int64(a) + (diff*phase+OutputRate/2)/OutputRate)
}
