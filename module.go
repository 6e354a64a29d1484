// module.go - the Module contract every DSP primitive satisfies (spec
// §4.3), and the controller-event tagged union modules consume via
// ProcessEvent (spec §3, §6).
//
// Grounded on the teacher's MusicPlayer-style capability interfaces
// (music_interfaces.go, now removed after adaptation - see DESIGN.md)
// and on original_source/synth-engine/src/midi/message.rs for the wire
// decode table.

package synth

// Module is the uniform interface every DSP primitive (oscillator,
// filter, envelope, ...) implements. The integrator drives all three
// methods; see spec §4.5 for call order and §5 for the single-threaded
// ownership rules.
type Module interface {
	// Simulate is a pure function of s: it must not mutate any module-
	// private state, and writes zero or more slot updates into k.
	Simulate(s *State, k *UpdateBuffer, scratch []float32)

	// ProcessEvent updates module-private latches (gate, CC value,
	// pressed-key set, ...) between integration steps. It must not
	// touch the state vector.
	ProcessEvent(ev ControllerEvent)

	// Finalize runs once per frame after the integrator has combined
	// the stage outputs into s. It may clamp/wrap/renormalize the
	// module's own slots, advance non-integrated internal state, and
	// write to the stereo output latch.
	Finalize(s *State, timeStep float32, scratch []float32)
}

// ControllerEventKind tags the variant of a ControllerEvent.
type ControllerEventKind uint8

const (
	NoteOn ControllerEventKind = iota
	NoteOff
	PolyAftertouch
	ChannelAftertouch
	ContinuousControl
	ProgramChange
	PitchWheel
)

// ControllerEvent is the tagged union of external controller messages
// the core accepts (spec §3). Channel is a 4-bit MIDI channel in
// [0,15]. Fields not meaningful to a given Kind are left zero.
type ControllerEvent struct {
	Kind     ControllerEventKind
	Channel  uint8
	Pitch    uint8 // NoteOn, NoteOff, PolyAftertouch
	Velocity uint8 // NoteOn, NoteOff
	Amount   uint8 // PolyAftertouch, ChannelAftertouch
	CC       uint8 // ContinuousControl
	Value    uint8 // ContinuousControl (7-bit)
	Program  uint8 // ProgramChange
	Bend     uint16 // PitchWheel, 14-bit
}

// DecodeMIDI decodes a 3-byte MIDI wire message (or 2-byte for program
// change / channel aftertouch) into a ControllerEvent, following the
// wire layout of spec §6: [0x8n,p,v] NoteOff, [0x9n,p,v] NoteOn,
// [0xAn,p,a] PolyAT, [0xBn,c,v] CC, [0xCn,p] ProgramChange, [0xDn,a]
// ChannelAT, [0xEn,lsb,msb] PitchWheel. Reports ok=false for anything
// else; the core itself never calls this - it is an adapter used by an
// external MIDI transport (spec §6 treats decoded events as opaque).
func DecodeMIDI(bytes []byte) (ev ControllerEvent, ok bool) {
	if len(bytes) == 0 {
		return ev, false
	}
	status := bytes[0]
	channel := status & 0x0F
	ev.Channel = channel

	switch status & 0xF0 {
	case 0x80:
		if len(bytes) < 3 {
			return ev, false
		}
		ev.Kind, ev.Pitch, ev.Velocity = NoteOff, bytes[1], bytes[2]
		return ev, true
	case 0x90:
		if len(bytes) < 3 {
			return ev, false
		}
		ev.Kind, ev.Pitch, ev.Velocity = NoteOn, bytes[1], bytes[2]
		return ev, true
	case 0xA0:
		if len(bytes) < 3 {
			return ev, false
		}
		ev.Kind, ev.Pitch, ev.Amount = PolyAftertouch, bytes[1], bytes[2]
		return ev, true
	case 0xB0:
		if len(bytes) < 3 {
			return ev, false
		}
		ev.Kind, ev.CC, ev.Value = ContinuousControl, bytes[1], bytes[2]
		return ev, true
	case 0xC0:
		if len(bytes) < 2 {
			return ev, false
		}
		ev.Kind, ev.Program = ProgramChange, bytes[1]
		return ev, true
	case 0xD0:
		if len(bytes) < 2 {
			return ev, false
		}
		ev.Kind, ev.Amount = ChannelAftertouch, bytes[1]
		return ev, true
	case 0xE0:
		if len(bytes) < 3 {
			return ev, false
		}
		lsb, msb := bytes[1], bytes[2]
		ev.Kind, ev.Bend = PitchWheel, uint16(msb)<<7|uint16(lsb)
		return ev, true
	default:
		return ev, false
	}
}
