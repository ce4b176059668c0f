// Package codon holds the fixed codon table of the genome VM.
//
// Codons that differ only in their third (wobble) base usually share an
// opcode. Those synonymous families are what make a single-base substitution
// silent, missense or nonsense.
package codon

import (
	"sort"
	"strings"
)

// Base is one nucleotide letter of the canonical DNA alphabet
type Base byte

const (
	BaseA Base = 'A'
	BaseC Base = 'C'
	BaseG Base = 'G'
	BaseT Base = 'T'
)

// Bases lists the canonical alphabet in literal digit order (A=0 .. T=3)
var Bases = [4]Base{BaseA, BaseC, BaseG, BaseT}

// RNAUracil is accepted in source text and normalized to BaseT
const RNAUracil = 'U'

// Length is the fixed width of a codon
const Length = 3

// StartCodon is the only codon mapped to OpStart
const StartCodon = "ATG"

var table = map[string]Opcode{
	"ATG": OpStart,

	"TAA": OpStop,
	"TAG": OpStop,
	"TGA": OpStop,

	"GGA": OpCircle,
	"GGC": OpCircle,
	"GGG": OpCircle,
	"GGT": OpCircle,

	"CCA": OpRect,
	"CCC": OpRect,
	"CCG": OpRect,
	"CCT": OpRect,

	"AAA": OpLine,
	"AAC": OpLine,
	"AAG": OpLine,
	"AAT": OpLine,

	"GCA": OpTriangle,
	"GCC": OpTriangle,
	"GCG": OpTriangle,
	"GCT": OpTriangle,

	"GTA": OpEllipse,
	"GTG": OpEllipse,

	"CTC": OpNoise,
	"CTT": OpNoise,

	"ACA": OpTranslate,
	"ACG": OpTranslate,

	"AGA": OpRotate,
	"AGC": OpRotate,
	"AGG": OpRotate,
	"AGT": OpRotate,

	"CGA": OpScale,
	"CGG": OpScale,

	"TTA": OpColor,
	"TTG": OpColor,

	"GAA": OpPush,
	"GAG": OpPush,

	"ATA": OpDup,
	"ATC": OpDup,
	"ATT": OpDup,

	"TAC": OpPop,
	"TAT": OpPop,

	"TGG": OpSwap,
	"TGT": OpSwap,

	"CAA": OpAdd,
	"CAG": OpAdd,

	"GAC": OpSub,
	"GAT": OpSub,

	"CTA": OpMul,
	"CTG": OpMul,

	"CAC": OpDiv,
	"CAT": OpDiv,

	"CGC": OpEq,
	"CGT": OpEq,

	"ACC": OpLt,
	"ACT": OpLt,

	"TTC": OpLoop,
	"TTT": OpLoop,

	"TCA": OpSaveState,
	"TCG": OpSaveState,

	"TCC": OpRestoreState,
	"TCT": OpRestoreState,
}

// Normalize upper-cases a codon and folds U to T
func Normalize(codon string) string {
	return strings.ReplaceAll(strings.ToUpper(codon), string(RNAUracil), string(BaseT))
}

// Lookup returns the opcode for a codon. Codons without a table entry
// report false.
func Lookup(codon string) (Opcode, bool) {
	op, ok := table[Normalize(codon)]
	if !ok {
		return OpInvalid, false
	}
	return op, true
}

// IsStart reports whether codon maps to OpStart
func IsStart(codon string) bool {
	op, ok := Lookup(codon)
	return ok && op == OpStart
}

// IsStop reports whether codon maps to OpStop
func IsStop(codon string) bool {
	op, ok := Lookup(codon)
	return ok && op == OpStop
}

// AllCodons returns the 64 possible codons in alphabet order
func AllCodons() []string {
	codons := make([]string, 0, 64)
	for _, a := range Bases {
		for _, b := range Bases {
			for _, c := range Bases {
				codons = append(codons, string([]byte{byte(a), byte(b), byte(c)}))
			}
		}
	}
	return codons
}

// Synonyms returns the sorted codon family of op
func Synonyms(op Opcode) []string {
	var codons []string
	for c, o := range table {
		if o == op {
			codons = append(codons, c)
		}
	}
	sort.Strings(codons)
	return codons
}

// Families groups every mapped codon by opcode
func Families() map[Opcode][]string {
	families := make(map[Opcode][]string)
	for _, op := range Opcodes() {
		if syn := Synonyms(op); len(syn) > 0 {
			families[op] = syn
		}
	}
	return families
}

// Unmapped returns the codons with no table entry, in alphabet order
func Unmapped() []string {
	var codons []string
	for _, c := range AllCodons() {
		if _, ok := table[c]; !ok {
			codons = append(codons, c)
		}
	}
	return codons
}

// IsBase reports whether r is a base letter, accepting lower case and U
func IsBase(r rune) bool {
	switch r {
	case 'A', 'C', 'G', 'T', 'U', 'a', 'c', 'g', 't', 'u':
		return true
	}
	return false
}
