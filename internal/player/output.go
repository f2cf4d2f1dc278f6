package player

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Everything sent to the speakers is 48 kHz stereo s16le.
const (
	OutputRate     = 48000
	outputChannels = 2
	sampleBytes    = 2
	outputFrame    = outputChannels * sampleBytes
	bytesPerSec    = OutputRate * outputFrame
)

var (
	otoCtx     *oto.Context
	otoOnce    sync.Once
	otoInitErr error
)

// outputContext opens the process-wide oto context on first use. oto allows
// only one context per process, so a failure is permanent.
func outputContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   OutputRate,
			ChannelCount: outputChannels,
			Format:       oto.FormatSignedInt16LE,
		})
		if otoInitErr != nil {
			otoInitErr = fmt.Errorf("opening audio output: %w", otoInitErr)
			return
		}
		<-ready
	})
	return otoCtx, otoInitErr
}
