package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupportedFormat is returned for files no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// audioDecoder is implemented by all format-specific decoders. Read yields
// interleaved s16le PCM; Length is the decoded size in bytes.
type audioDecoder interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// newDecoder picks a decoder by file extension.
func newDecoder(f *os.File) (audioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// pcmCursor tracks the output position of a decoder that produces PCM in
// blocks and hands it out through a leftover buffer.
type pcmCursor struct {
	pos        int64
	totalBytes int64
	frameBytes int64
	pending    []byte
}

// drain copies buffered PCM into p.
func (c *pcmCursor) drain(p []byte) int {
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	c.pos += int64(n)
	return n
}

// emit copies a freshly decoded block into p and keeps the remainder.
func (c *pcmCursor) emit(p, block []byte) int {
	n := copy(p, block)
	c.pending = block[n:]
	c.pos += int64(n)
	return n
}

// target resolves a seek request to a frame-aligned output byte offset.
func (c *pcmCursor) target(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = c.pos + offset
	case io.SeekEnd:
		newPos = c.totalBytes + offset
	default:
		return c.pos, fmt.Errorf("invalid seek whence: %d", whence)
	}
	newPos = max(0, min(newPos, c.totalBytes))
	return newPos - newPos%c.frameBytes, nil
}

func (c *pcmCursor) moved(newPos int64) {
	c.pending = nil
	c.pos = newPos
}

func (c *pcmCursor) Length() int64 { return c.totalBytes }

func clamp16(sample int) int16 {
	return int16(max(-32768, min(sample, 32767)))
}

// --- MP3 ---

// go-mp3 always decodes to 16-bit stereo.
type mp3Decoder struct {
	*mp3.Decoder
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	return &mp3Decoder{Decoder: dec}, nil
}

func (d *mp3Decoder) ChannelCount() int { return 2 }

// --- WAV ---

type wavDecoder struct {
	pcmCursor
	file        *os.File
	pcmStart    int64
	sampleRate  int
	channels    int
	srcBitDepth int
	srcFrame    int64
	scratch     []byte
	out         []byte
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth: %d", bitDepth)
	}
	srcFrame := int64(channels) * int64(bitDepth) / 8
	if srcFrame == 0 {
		return nil, errors.New("WAV file has no channels")
	}

	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("getting PCM start position: %w", err)
	}

	outFrame := int64(channels) * sampleBytes
	return &wavDecoder{
		pcmCursor: pcmCursor{
			totalBytes: dec.PCMLen() / srcFrame * outFrame,
			frameBytes: outFrame,
		},
		file:        f,
		pcmStart:    pcmStart,
		sampleRate:  int(dec.SampleRate),
		channels:    channels,
		srcBitDepth: bitDepth,
		srcFrame:    srcFrame,
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.drain(p), nil
	}

	srcSampleBytes := d.srcBitDepth / 8
	samples := max(len(p)/sampleBytes, 1)
	if cap(d.scratch) < samples*srcSampleBytes {
		d.scratch = make([]byte, samples*srcSampleBytes)
	}
	src := d.scratch[:samples*srcSampleBytes]
	n, err := io.ReadFull(d.file, src)
	samples = n / srcSampleBytes
	if samples == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return 0, err
	}

	if cap(d.out) < samples*sampleBytes {
		d.out = make([]byte, samples*sampleBytes)
	}
	out := d.out[:samples*sampleBytes]
	for i := range samples {
		b := src[i*srcSampleBytes:]
		var s int
		switch d.srcBitDepth {
		case 8:
			s = (int(b[0]) - 128) << 8
		case 16:
			s = int(int16(binary.LittleEndian.Uint16(b)))
		case 24:
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			s = int(v<<8>>16)
		case 32:
			s = int(int32(binary.LittleEndian.Uint32(b)) >> 16)
		}
		binary.LittleEndian.PutUint16(out[i*sampleBytes:], uint16(clamp16(s)))
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return d.emit(p, out), err
}

func (d *wavDecoder) Seek(offset int64, whence int) (int64, error) {
	newPos, err := d.target(offset, whence)
	if err != nil {
		return d.pos, err
	}
	srcPos := newPos / d.frameBytes * d.srcFrame
	if _, err := d.file.Seek(d.pcmStart+srcPos, io.SeekStart); err != nil {
		return d.pos, err
	}
	d.moved(newPos)
	return newPos, nil
}

func (d *wavDecoder) SampleRate() int   { return d.sampleRate }
func (d *wavDecoder) ChannelCount() int { return d.channels }

// --- FLAC ---

type flacDecoder struct {
	pcmCursor
	stream     *flac.Stream
	sampleRate int
	channels   int
	bps        int
	out        []byte
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	outFrame := int64(channels) * sampleBytes
	return &flacDecoder{
		pcmCursor: pcmCursor{
			totalBytes: int64(info.NSamples) * outFrame,
			frameBytes: outFrame,
		},
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   channels,
		bps:        int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.drain(p), nil
	}

	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}

	samples := int(frame.Subframes[0].NSamples)
	size := samples * d.channels * sampleBytes
	if cap(d.out) < size {
		d.out = make([]byte, size)
	}
	out := d.out[:size]
	for i := range samples {
		for ch := range d.channels {
			s := int(frame.Subframes[ch].Samples[i])
			if d.bps > 16 {
				s >>= d.bps - 16
			} else {
				s <<= 16 - d.bps
			}
			binary.LittleEndian.PutUint16(out[(i*d.channels+ch)*sampleBytes:], uint16(clamp16(s)))
		}
	}
	return d.emit(p, out), nil
}

func (d *flacDecoder) Seek(offset int64, whence int) (int64, error) {
	newPos, err := d.target(offset, whence)
	if err != nil {
		return d.pos, err
	}
	if _, err := d.stream.Seek(uint64(newPos / d.frameBytes)); err != nil {
		return d.pos, err
	}
	d.moved(newPos)
	return newPos, nil
}

func (d *flacDecoder) SampleRate() int   { return d.sampleRate }
func (d *flacDecoder) ChannelCount() int { return d.channels }

// --- OGG Vorbis ---

type oggDecoder struct {
	pcmCursor
	reader   *oggvorbis.Reader
	channels int
	floats   []float32
	out      []byte
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}

	channels := reader.Channels()
	outFrame := int64(channels) * sampleBytes
	return &oggDecoder{
		pcmCursor: pcmCursor{
			totalBytes: reader.Length() * outFrame,
			frameBytes: outFrame,
		},
		reader:   reader,
		channels: channels,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if len(d.pending) > 0 {
		return d.drain(p), nil
	}

	want := max(len(p)/sampleBytes, d.channels)
	if cap(d.floats) < want {
		d.floats = make([]float32, want)
	}
	n, err := d.reader.Read(d.floats[:want])
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	if cap(d.out) < n*sampleBytes {
		d.out = make([]byte, n*sampleBytes)
	}
	out := d.out[:n*sampleBytes]
	for i, s := range d.floats[:n] {
		s = max(-1, min(s, 1))
		binary.LittleEndian.PutUint16(out[i*sampleBytes:], uint16(int16(s*32767)))
	}
	return d.emit(p, out), err
}

func (d *oggDecoder) Seek(offset int64, whence int) (int64, error) {
	newPos, err := d.target(offset, whence)
	if err != nil {
		return d.pos, err
	}
	if err := d.reader.SetPosition(newPos / d.frameBytes); err != nil {
		return d.pos, err
	}
	d.moved(newPos)
	return newPos, nil
}

func (d *oggDecoder) SampleRate() int   { return d.reader.SampleRate() }
func (d *oggDecoder) ChannelCount() int { return d.channels }
