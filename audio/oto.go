//go:build !headless

// Package audio holds the output-device adapters the demo program picks
// between: oto (cross-platform), ALSA (cgo, Linux), and a headless
// no-op sink for environments with no audio device.
//
// oto.go is adapted from the teacher's audio_backend_oto.go: same
// lock-free atomic-pointer Read() path and pre-allocated sample buffer,
// now pulling interleaved stereo frames from a caller-supplied FillFunc
// instead of a fixed SoundChip, and configured for 2 channels instead
// of 1.
package audio

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// FillFunc fills buf with interleaved stereo float32 samples (left,
// right, left, right, ...); len(buf) is always even.
type FillFunc func(buf []float32)

// OtoPlayer drives playback through github.com/ebitengine/oto/v3.
type OtoPlayer struct {
	ctx       *oto.Context
	player    *oto.Player
	fill      atomic.Pointer[FillFunc] // atomic for lock-free Read()
	sampleBuf []float32
	started   bool
	mutex     sync.Mutex // only for setup/control operations
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoPlayer{ctx: ctx}, nil
}

func (op *OtoPlayer) SetupPlayer(fill FillFunc) {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	op.fill.Store(&fill)
	op.player = op.ctx.NewPlayer(op)
	op.sampleBuf = make([]float32, 4096)
}

func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	fillPtr := op.fill.Load()
	if fillPtr == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	numSamples := len(p) / 4
	if len(op.sampleBuf) < numSamples {
		op.sampleBuf = make([]float32, numSamples)
	}
	samples := op.sampleBuf[:numSamples]
	(*fillPtr)(samples)

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(p)])
	return len(p), nil
}

func (op *OtoPlayer) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if !op.started && op.player != nil {
		op.player.Play()
		op.started = true
	}
}

func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.started && op.player != nil {
		op.player.Close()
		op.started = false
	}
}

func (op *OtoPlayer) Close() {
	op.Stop()
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.player != nil {
		op.player.Close()
		op.player = nil
	}
}

func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}
