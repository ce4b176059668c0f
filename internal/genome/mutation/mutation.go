// Package mutation classifies single-codon substitutions against the codon
// table. Classification depends only on the table, never on execution.
package mutation

import (
	"fmt"

	"codonvm/internal/genome/codon"
)

// Kind is the effect of replacing one codon with another
type Kind int

const (
	Identical Kind = iota
	Silent         // same opcode
	Missense       // different opcode, not STOP
	Nonsense       // introduces STOP
	Unmapped       // either side has no table entry
)

var kindNames = [...]string{
	Identical: "identical",
	Silent:    "silent",
	Missense:  "missense",
	Nonsense:  "nonsense",
	Unmapped:  "unmapped",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every kind in declaration order
func Kinds() []Kind {
	return []Kind{Identical, Silent, Missense, Nonsense, Unmapped}
}

// InvalidCodonError reports text that is not three bases
type InvalidCodonError struct {
	Codon string
}

func (e *InvalidCodonError) Error() string {
	return fmt.Sprintf("invalid codon %q", e.Codon)
}

// normalize validates and canonicalizes a codon
func normalize(c string) (string, error) {
	n := codon.Normalize(c)
	if len(n) != codon.Length {
		return "", &InvalidCodonError{Codon: c}
	}
	for _, r := range n {
		if !codon.IsBase(r) {
			return "", &InvalidCodonError{Codon: c}
		}
	}
	return n, nil
}

// Classify reports the effect of replacing from with to
func Classify(from, to string) (Kind, error) {
	a, err := normalize(from)
	if err != nil {
		return 0, err
	}
	b, err := normalize(to)
	if err != nil {
		return 0, err
	}
	if a == b {
		return Identical, nil
	}
	return classify(a, b), nil
}

func classify(a, b string) Kind {
	opA, okA := codon.Lookup(a)
	opB, okB := codon.Lookup(b)
	switch {
	case !okA || !okB:
		return Unmapped
	case opA == opB:
		return Silent
	case opB == codon.OpStop:
		return Nonsense
	default:
		return Missense
	}
}

// Substitution is one single-base change of a codon
type Substitution struct {
	Position int // 0-indexed base position within the codon
	From     string
	To       string
	Kind     Kind
}

func (s Substitution) String() string {
	return fmt.Sprintf("%s>%s@%d %s", s.From, s.To, s.Position+1, s.Kind)
}

// Neighbours returns the nine single-base substitutions of c, by position
// then alphabet order
func Neighbours(c string) ([]Substitution, error) {
	from, err := normalize(c)
	if err != nil {
		return nil, err
	}

	subs := make([]Substitution, 0, codon.Length*(len(codon.Bases)-1))
	for pos := 0; pos < codon.Length; pos++ {
		for _, b := range codon.Bases {
			if from[pos] == byte(b) {
				continue
			}
			to := []byte(from)
			to[pos] = byte(b)
			subs = append(subs, Substitution{
				Position: pos,
				From:     from,
				To:       string(to),
				Kind:     classify(from, string(to)),
			})
		}
	}
	return subs, nil
}

// Spectrum counts the neighbour kinds of c
func Spectrum(c string) (map[Kind]int, error) {
	subs, err := Neighbours(c)
	if err != nil {
		return nil, err
	}
	counts := make(map[Kind]int)
	for _, s := range subs {
		counts[s.Kind]++
	}
	return counts, nil
}

// Robustness is the fraction of single-base substitutions of c that are silent
func Robustness(c string) (float64, error) {
	counts, err := Spectrum(c)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return float64(counts[Silent]) / float64(total), nil
}

// Substitute replaces the codon at index in codons and classifies the change
func Substitute(codons []string, index int, to string) ([]string, Kind, error) {
	if index < 0 || index >= len(codons) {
		return nil, 0, fmt.Errorf("index %d out of range [0,%d)", index, len(codons))
	}
	kind, err := Classify(codons[index], to)
	if err != nil {
		return nil, 0, err
	}
	out := make([]string, len(codons))
	copy(out, codons)
	out[index] = codon.Normalize(to)
	return out, kind, nil
}
