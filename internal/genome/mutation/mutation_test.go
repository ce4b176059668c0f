package mutation

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codonvm/internal/genome/codon"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		from, to string
		want     Kind
	}{
		{"GGA", "GGA", Identical},
		{"gga", "GGA", Identical},
		{"GGA", "GGC", Silent},
		{"TAA", "TGA", Silent},
		{"GGA", "CGA", Missense},
		{"TAA", "TAC", Missense},
		{"TAC", "TAA", Nonsense},
		{"GGA", "UGA", Nonsense},
		{"GTA", "GTC", Unmapped},
		{"TGC", "TGG", Unmapped},
	}
	for _, tt := range tests {
		t.Run(tt.from+">"+tt.to, func(t *testing.T) {
			got, err := Classify(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyRejectsInvalidCodons(t *testing.T) {
	for _, c := range []string{"", "GG", "GGAA", "GXA"} {
		_, err := Classify(c, "GGA")
		var invalid *InvalidCodonError
		assert.ErrorAs(t, err, &invalid, c)
	}
	_, err := Classify("GGA", "NNN")
	assert.Error(t, err)
}

func TestClassifyAgreesWithFamilies(t *testing.T) {
	for op, family := range codon.Families() {
		for _, a := range family {
			for _, b := range family {
				if a == b {
					continue
				}
				kind, err := Classify(a, b)
				require.NoError(t, err)
				assert.Equal(t, Silent, kind, "%s %s->%s", op, a, b)
			}
		}
	}
}

func TestNeighbours(t *testing.T) {
	subs, err := Neighbours("gga")
	require.NoError(t, err)
	require.Len(t, subs, 9)

	seen := make(map[string]bool)
	for _, s := range subs {
		assert.Equal(t, "GGA", s.From)
		assert.NotEqual(t, s.From, s.To)
		assert.False(t, seen[s.To])
		seen[s.To] = true

		diff := 0
		for i := range s.From {
			if s.From[i] != s.To[i] {
				diff++
				assert.Equal(t, i, s.Position)
			}
		}
		assert.Equal(t, 1, diff)
	}

	// third-position changes of a four-codon family are all silent
	for _, s := range subs[6:] {
		assert.Equal(t, Silent, s.Kind, s.String())
	}
	assert.Equal(t, "GGA>TGA@1 nonsense", subs[2].String())

	_, err = Neighbours("GG")
	assert.Error(t, err)
}

func TestSpectrumAndRobustness(t *testing.T) {
	counts, err := Spectrum("GGA")
	require.NoError(t, err)
	assert.Equal(t, 3, counts[Silent])
	assert.Equal(t, 1, counts[Nonsense])

	r, err := Robustness("GGA")
	require.NoError(t, err)
	assert.InDelta(t, 3.0/9.0, r, 1e-9)

	r, err = Robustness("ATG")
	require.NoError(t, err)
	assert.Zero(t, r)
}

func TestSubstitute(t *testing.T) {
	in := []string{"ATG", "GAA", "AGG", "GGA", "TAA"}
	out, kind, err := Substitute(in, 3, "ggt")
	require.NoError(t, err)
	assert.Equal(t, Silent, kind)
	assert.Equal(t, "GGT", out[3])
	assert.Equal(t, "GGA", in[3])

	_, kind, err = Substitute(in, 3, "TGA")
	require.NoError(t, err)
	assert.Equal(t, Nonsense, kind)

	_, _, err = Substitute(in, 5, "GGA")
	assert.Error(t, err)
}

func TestKindString(t *testing.T) {
	names := make([]string, 0)
	for _, k := range Kinds() {
		names = append(names, k.String())
	}
	assert.Equal(t, []string{"identical", "silent", "missense", "nonsense", "unmapped"}, names)
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestGraph(t *testing.T) {
	g, err := Graph()
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, 64, order)

	// 64 codons * 9 neighbours, each undirected edge counted once
	size, err := g.Size()
	require.NoError(t, err)
	assert.Equal(t, 64*9/2, size)

	e, err := g.Edge("GGA", "GGC")
	require.NoError(t, err)
	assert.Equal(t, "silent", e.Properties.Attributes[AttrKind])

	e, err = g.Edge("TAC", "TAA")
	require.NoError(t, err)
	assert.Equal(t, "nonsense", e.Properties.Attributes[AttrKind])

	_, props, err := g.VertexWithProperties("GTC")
	require.NoError(t, err)
	assert.Equal(t, "none", props.Attributes[AttrOpcode])
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"dot", "svg", "png"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestRenderDot(t *testing.T) {
	g, err := Graph()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), g, FormatDot, &buf))
	out := buf.String()
	assert.Contains(t, out, "GGA")
	assert.Contains(t, out, "forestgreen")
	assert.Contains(t, out, "dotted")
}
