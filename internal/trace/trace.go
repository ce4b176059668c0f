// Package trace serializes VM snapshot sequences. The CBOR encoding is
// canonical, so identical runs produce identical bytes and fingerprints.
package trace

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/xxh3"

	"codonvm/internal/genome/codon"
	"codonvm/internal/render"
	"codonvm/internal/vm"
)

// Version is written into every encoded trace
const Version = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("trace: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Trace is the wire form of a snapshot sequence
type Trace struct {
	Version int     `cbor:"1,keyasint"`
	Frames  []Frame `cbor:"2,keyasint"`
}

// Frame is the wire form of one vm.State
type Frame struct {
	IP           int        `cbor:"1,keyasint"`
	Opcode       string     `cbor:"2,keyasint,omitempty"`
	Codon        string     `cbor:"3,keyasint,omitempty"`
	Instructions int        `cbor:"4,keyasint"`
	X            float64    `cbor:"5,keyasint"`
	Y            float64    `cbor:"6,keyasint"`
	Rotation     float64    `cbor:"7,keyasint"`
	Scale        float64    `cbor:"8,keyasint"`
	Color        [3]float64 `cbor:"9,keyasint"`
	Stack        []int      `cbor:"10,keyasint,omitempty"`
	Saved        []Frame    `cbor:"11,keyasint,omitempty"`
	Seed         int64      `cbor:"12,keyasint"`
}

// FromState converts a snapshot to its wire form
func FromState(s vm.State) Frame {
	f := Frame{
		IP:           s.IP,
		Codon:        s.LastCodon,
		Instructions: s.InstructionCount,
		X:            s.Position.X,
		Y:            s.Position.Y,
		Rotation:     s.Rotation,
		Scale:        s.Scale,
		Color:        [3]float64{s.Color.H, s.Color.S, s.Color.L},
		Seed:         s.Seed,
	}
	if s.Executed() {
		f.Opcode = s.LastOpcode.String()
	}
	if len(s.Stack) > 0 {
		f.Stack = append([]int(nil), s.Stack...)
	}
	for _, saved := range s.StateStack {
		f.Saved = append(f.Saved, FromState(saved))
	}
	return f
}

// State converts a frame back into a snapshot
func (f Frame) State() (vm.State, error) {
	s := vm.State{
		Position:         vm.Point{X: f.X, Y: f.Y},
		Rotation:         f.Rotation,
		Scale:            f.Scale,
		Color:            render.Color{H: f.Color[0], S: f.Color[1], L: f.Color[2]},
		IP:               f.IP,
		InstructionCount: f.Instructions,
		Seed:             f.Seed,
		LastCodon:        f.Codon,
	}
	if f.Opcode != "" {
		op, ok := codon.ParseOpcode(f.Opcode)
		if !ok {
			return vm.State{}, fmt.Errorf("trace: unknown opcode %q at ip %d", f.Opcode, f.IP)
		}
		s.LastOpcode = op
	}
	if len(f.Stack) > 0 {
		s.Stack = append([]int(nil), f.Stack...)
	}
	for _, saved := range f.Saved {
		st, err := saved.State()
		if err != nil {
			return vm.State{}, err
		}
		s.StateStack = append(s.StateStack, st)
	}
	return s, nil
}

// Encode serializes states to canonical CBOR
func Encode(states []vm.State) ([]byte, error) {
	t := Trace{Version: Version, Frames: make([]Frame, 0, len(states))}
	for _, s := range states {
		t.Frames = append(t.Frames, FromState(s))
	}
	data, err := cborEncMode.Marshal(&t)
	if err != nil {
		return nil, fmt.Errorf("trace: marshal: %w", err)
	}
	return data, nil
}

// Decode parses a trace produced by Encode
func Decode(data []byte) ([]vm.State, error) {
	var t Trace
	if err := cbor.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("trace: unmarshal: %w", err)
	}
	if t.Version != Version {
		return nil, fmt.Errorf("trace: unsupported version %d", t.Version)
	}
	states := make([]vm.State, 0, len(t.Frames))
	for _, f := range t.Frames {
		s, err := f.State()
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, nil
}

// Fingerprint returns the hex xxh3-128 digest of the canonical encoding
func Fingerprint(states []vm.State) (string, error) {
	data, err := Encode(states)
	if err != nil {
		return "", err
	}
	return FingerprintBytes(data), nil
}

// FingerprintBytes digests an already encoded trace
func FingerprintBytes(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return hex.EncodeToString(sum[:])
}
