// Command synthdemo is a small external collaborator that wires one
// fixed one-voice patch (keyboard tracker -> quadrature oscillator ->
// envelope-swept ladder filter -> amplifier -> output sink), feeds it
// synthetic note events, and drives it through an audio backend. It is
// not part of the core package contract (spec §1): it exists to give
// package synth a caller and to exercise the oto backend end to end
// (the ALSA backend is not used here).
//
// Style grounded on the teacher's main.go: plain `flag` package knobs,
// `log` for diagnostics, and a goroutine-per-concern shape coordinated
// with golang.org/x/sync/errgroup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vasynth/core"
	"github.com/vasynth/core/audio"
)

const (
	sampleRate = 44100
	bufFrames  = 512 // frames per output buffer
)

// Slot layout for the one fixed voice. Slots 0-1 are the reserved
// stereo output latch (synth.ReservedSlots).
const (
	slotOscU = synth.ReservedSlots + iota
	slotOscV
	slotLadder0
	slotLadder1
	slotLadder2
	slotLadder3
	slotEnvCycle
	slotEnvOut
	slotKeyPitch
	slotKeyGate
	slotKeyAftertouch
	slotKeyVelocity
	slotAmpOut
	numSlots
)

func buildVoice() []synth.Module {
	keys := &synth.MonoKeyboardTracker{
		Channel:       0,
		PitchIdx:      slotKeyPitch,
		GateIdx:       slotKeyGate,
		AftertouchIdx: slotKeyAftertouch,
		VelocityIdx:   slotKeyVelocity,
	}

	osc := &synth.QuadratureOscillator{
		F0:         110,
		U:          slotOscU,
		V:          slotOscV,
		ExpControl: synth.StateProgram(slotKeyPitch),
		LinControl: synth.ConstProgram(0),
	}

	env := &synth.Envelope{
		Kind:        synth.AttackRelease,
		SignalIn:    synth.StateProgram(slotKeyGate),
		AttackIn:    synth.ConstProgram(0.01),
		DecayIn:     synth.ConstProgram(0.4),
		ShapeSelect: synth.ConstProgram(0.5),
		OutIndex:    slotEnvOut,
		CycleIndex:  slotEnvCycle,
	}

	// Envelope-to-cutoff modulation: pitch exponent = envelope * 4
	// octaves above the filter's 1kHz base.
	cutoffProg := &synth.Program{
		Instructions: []synth.Instruction{
			{Op: synth.OpLoadState, Index: slotEnvOut},
			{Op: synth.OpConst, Const: 4},
			{Op: synth.OpMultiply},
		},
		StackSize: 2,
	}

	filter := &synth.LadderFilter{
		F0:           1000,
		S:            [4]int{slotLadder0, slotLadder1, slotLadder2, slotLadder3},
		In:           synth.StateProgram(slotOscV),
		PitchControl: cutoffProg,
		Resonance:    synth.ConstProgram(0.3),
		Moog:         true,
	}

	amp := &synth.Amplifier{
		In:         synth.StateProgram(slotLadder3),
		LinControl: synth.ConstProgram(0),
		ExpControl: synth.StateProgram(slotEnvOut),
		OutIndex:   slotAmpOut,
	}

	sink := &synth.MonoOutputSink{SignalIndex: slotAmpOut}

	return []synth.Module{keys, osc, env, filter, amp, sink}
}

// noteProducer feeds a short repeating note sequence into the engine's
// event queue until ctx is cancelled.
func noteProducer(ctx context.Context, events *synth.EventQueue) error {
	pitches := []uint8{57, 60, 64, 67} // A3, C4, E4, G4
	ticker := time.NewTicker(400 * time.Millisecond)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			prev := pitches[i%len(pitches)]
			events.Push(synth.ControllerEvent{Kind: synth.NoteOff, Pitch: prev})
			i++
			next := pitches[i%len(pitches)]
			events.Push(synth.ControllerEvent{Kind: synth.NoteOn, Pitch: next, Velocity: 100})
		}
	}
}

func main() {
	voiceFlag := flag.String("voice", "lead", "voice patch to run (currently only \"lead\")")
	duration := flag.Duration("duration", 5*time.Second, "how long to run before exiting")
	quiet := flag.Bool("quiet", false, "disable the terminal level meter")
	flag.Parse()
	_ = *voiceFlag

	modules := buildVoice()
	engine := synth.NewEngine(numSlots, modules, synth.RK4Tableau, 8, 64)

	player, err := audio.NewOtoPlayer(sampleRate)
	if err != nil {
		log.Printf("oto backend unavailable (%v), falling back to headless", err)
	}

	dt := float32(1) / float32(sampleRate)
	fill := func(buf []float32) {
		for i := 0; i < len(buf); i += 2 {
			l, r := engine.Step(dt)
			buf[i] = l
			buf[i+1] = r
		}
	}

	if player != nil {
		player.SetupPlayer(fill)
		player.Start()
		defer player.Close()
	} else {
		// Headless fallback: drive the engine without producing audio.
		go func() {
			buf := make([]float32, bufFrames*2)
			for {
				fill(buf)
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt)
	defer stopSignals()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return noteProducer(gctx, engine.Events()) })

	if !*quiet && term.IsTerminal(int(os.Stdout.Fd())) {
		g.Go(func() error { return runLevelMeter(gctx, engine) })
	}

	if err := g.Wait(); err != nil && err != context.DeadlineExceeded && err != context.Canceled {
		log.Printf("synthdemo: %v", err)
	}
}

// runLevelMeter redraws a crude ASCII VU meter of the engine's stereo
// output on a fixed tick, using golang.org/x/term only to detect a
// real terminal (no raw-mode input is needed for this demo).
func runLevelMeter(ctx context.Context, engine *synth.Engine) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l, r := engine.State().OutputGet(synth.OutputLeft), engine.State().OutputGet(synth.OutputRight)
			fmt.Printf("\rL %6.3f  R %6.3f", l, r)
		}
	}
}
