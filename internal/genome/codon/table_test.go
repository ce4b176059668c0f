package codon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAndStopCodons(t *testing.T) {
	assert.Equal(t, []string{StartCodon}, Synonyms(OpStart))
	assert.Equal(t, []string{"TAA", "TAG", "TGA"}, Synonyms(OpStop))
}

func TestTableCoversAllCodons(t *testing.T) {
	all := AllCodons()
	require.Len(t, all, 64)

	mapped := 0
	for _, family := range Families() {
		mapped += len(family)
	}
	unmapped := Unmapped()
	assert.NotEmpty(t, unmapped)
	assert.Equal(t, 64, mapped+len(unmapped))
	assert.Equal(t, []string{"GTC", "GTT", "TGC"}, unmapped)
}

func TestEveryOpcodeHasAFamily(t *testing.T) {
	families := Families()
	for _, op := range Opcodes() {
		family, ok := families[op]
		require.True(t, ok, "opcode %s has no codons", op)
		if op == OpStart || op == OpStop {
			continue
		}
		assert.GreaterOrEqual(t, len(family), 2, "family of %s", op)
		assert.LessOrEqual(t, len(family), 4, "family of %s", op)
	}
}

func TestFamiliesShareTheFirstTwoBases(t *testing.T) {
	for op, family := range Families() {
		if op == OpStop {
			continue
		}
		for _, c := range family[1:] {
			assert.Equal(t, family[0][:2], c[:2], "family of %s differs outside the wobble base", op)
		}
	}
}

func TestLookupIsCaseInsensitiveAndFoldsUracil(t *testing.T) {
	tests := []struct {
		codon string
		want  Opcode
	}{
		{"ATG", OpStart},
		{"atg", OpStart},
		{"AUG", OpStart},
		{"uaa", OpStop},
		{"GAA", OpPush},
		{"CAT", OpDiv},
		{"GGA", OpCircle},
	}
	for _, tt := range tests {
		t.Run(tt.codon, func(t *testing.T) {
			op, ok := Lookup(tt.codon)
			require.True(t, ok)
			assert.Equal(t, tt.want, op)
		})
	}

	_, ok := Lookup("GTC")
	assert.False(t, ok)
	_, ok = Lookup("XYZ")
	assert.False(t, ok)
}

func TestOpcodeNames(t *testing.T) {
	for _, op := range Opcodes() {
		name := op.String()
		assert.NotEqual(t, "UNKNOWN", name)
		parsed, ok := ParseOpcode(name)
		require.True(t, ok)
		assert.Equal(t, op, parsed)
	}
	assert.Equal(t, "UNKNOWN", Opcode(-1).String())
	assert.False(t, opcodeCount.Valid())
}

func TestDecodeLiteral(t *testing.T) {
	tests := []struct {
		codon string
		want  int
	}{
		{"AAA", 0},
		{"AAC", 1},
		{"AGG", 10},
		{"CAA", 16},
		{"TTT", 63},
		{"uuu", 63},
	}
	for _, tt := range tests {
		t.Run(tt.codon, func(t *testing.T) {
			got, err := DecodeLiteral(tt.codon)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeLiteral("AG")
	assert.ErrorIs(t, err, ErrInvalidLiteral)
	_, err = DecodeLiteral("AGX")
	assert.ErrorIs(t, err, ErrInvalidLiteral)
}

func TestEncodeLiteralInvertsDecode(t *testing.T) {
	for v := 0; v <= MaxLiteral; v++ {
		c, err := EncodeLiteral(v)
		require.NoError(t, err)
		got, err := DecodeLiteral(c)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := EncodeLiteral(64)
	assert.ErrorIs(t, err, ErrInvalidLiteral)
	_, err = EncodeLiteral(-1)
	assert.ErrorIs(t, err, ErrInvalidLiteral)
}
