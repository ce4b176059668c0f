package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codonvm/internal/genome/codon"
	"codonvm/internal/genome/lexer"
	"codonvm/internal/render"
	"codonvm/internal/vm"
)

func runGenome(t *testing.T, src string) []vm.State {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	require.NoError(t, err)
	m, err := vm.New(render.NewRecorder(200, 200), vm.DefaultConfig())
	require.NoError(t, err)
	states, err := m.Run(toks)
	require.NoError(t, err)
	return states
}

const sample = "ATG TCA GAA AGG GGA GAA ACG AGA TCC GAA AAT ATA TAA"

func TestEncodeDecode(t *testing.T) {
	states := runGenome(t, sample)

	data, err := Encode(states)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, decoded, len(states))

	for i := range states {
		assert.Equal(t, states[i].IP, decoded[i].IP)
		assert.Equal(t, states[i].LastOpcode, decoded[i].LastOpcode)
		assert.Equal(t, states[i].InstructionCount, decoded[i].InstructionCount)
		assert.Equal(t, states[i].Position, decoded[i].Position)
		assert.Equal(t, states[i].Color, decoded[i].Color)
		assert.Equal(t, len(states[i].Stack), len(decoded[i].Stack))
		assert.Equal(t, len(states[i].StateStack), len(decoded[i].StateStack))
	}

	again, err := Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestEncodingIsDeterministic(t *testing.T) {
	a, err := Encode(runGenome(t, sample))
	require.NoError(t, err)
	b, err := Encode(runGenome(t, sample))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	fa, err := Fingerprint(runGenome(t, sample))
	require.NoError(t, err)
	assert.Len(t, fa, 32)
	assert.Equal(t, FingerprintBytes(a), fa)

	fb, err := Fingerprint(runGenome(t, "ATG GAA AGG GGC TAA"))
	require.NoError(t, err)
	fc, err := Fingerprint(runGenome(t, "ATG GAA AGG GGA TAA"))
	require.NoError(t, err)
	assert.NotEqual(t, fb, fc, "the codon text is part of the trace")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte{0xff, 0x00})
	assert.Error(t, err)

	data, err := cborEncMode.Marshal(Trace{Version: 99})
	require.NoError(t, err)
	_, err = Decode(data)
	assert.ErrorContains(t, err, "unsupported version")

	data, err = cborEncMode.Marshal(Trace{Version: Version, Frames: []Frame{{Opcode: "JUMP"}}})
	require.NoError(t, err)
	_, err = Decode(data)
	assert.ErrorContains(t, err, "unknown opcode")
}

func TestFrameKeepsSavedStates(t *testing.T) {
	s := vm.State{
		LastOpcode: codon.OpSaveState,
		LastCodon:  "TCA",
		Stack:      []int{1, 2},
		StateStack: []vm.State{{Stack: []int{1}}, {Scale: 2}},
	}
	f := FromState(s)
	assert.Equal(t, "SAVE_STATE", f.Opcode)
	require.Len(t, f.Saved, 2)

	back, err := f.State()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, back.StateStack[0].Stack)
	assert.Equal(t, 2.0, back.StateStack[1].Scale)

	f.Stack[0] = 9
	assert.Equal(t, 1, s.Stack[0])
}

func TestWriteTable(t *testing.T) {
	states := runGenome(t, "ATG GAA AGG GGA TAA")

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, states))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Contains(t, lines[1], "PUSH")
	assert.Contains(t, lines[1], "[10]")
	assert.Contains(t, lines[2], "CIRCLE")
	assert.Contains(t, lines[3], "STOP")
}

func TestFormatStack(t *testing.T) {
	assert.Equal(t, "[]", FormatStack(nil))
	assert.Equal(t, "[1 -2 63]", FormatStack([]int{1, -2, 63}))
}
