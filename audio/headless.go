//go:build headless

// headless.go is adapted from the teacher's audio_backend_headless.go:
// a no-op stand-in for environments with no audio device, selected by
// building with the headless tag.
package audio

type OtoPlayer struct {
	started bool
	fill    FillFunc
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

func (op *OtoPlayer) SetupPlayer(fill FillFunc) { op.fill = fill }
func (op *OtoPlayer) Start()                    { op.started = true }
func (op *OtoPlayer) Stop()                     { op.started = false }
func (op *OtoPlayer) Close()                    { op.started = false }
func (op *OtoPlayer) IsStarted() bool           { return op.started }

type ALSAPlayer struct {
	started bool
	samples []float32
}

func NewALSAPlayer(sampleRate int) (*ALSAPlayer, error) {
	return &ALSAPlayer{}, nil
}

func (ap *ALSAPlayer) Write(samples []float32) error { return nil }
func (ap *ALSAPlayer) Start()                        { ap.started = true }
func (ap *ALSAPlayer) Stop()                         { ap.started = false }
func (ap *ALSAPlayer) Close()                        { ap.started = false }
func (ap *ALSAPlayer) IsStarted() bool               { return ap.started }
