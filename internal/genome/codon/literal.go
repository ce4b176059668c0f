package codon

import (
	"errors"
	"fmt"
)

// MaxLiteral is the largest value a single codon literal can encode
const MaxLiteral = 63

// ErrInvalidLiteral is returned for codons that cannot be decoded as a number
var ErrInvalidLiteral = errors.New("invalid codon literal")

func digit(b byte) (int, bool) {
	switch b {
	case 'A':
		return 0, true
	case 'C':
		return 1, true
	case 'G':
		return 2, true
	case 'T':
		return 3, true
	}
	return 0, false
}

// DecodeLiteral reads a codon as a base-4 number with place values 16, 4, 1.
func DecodeLiteral(codon string) (int, error) {
	c := Normalize(codon)
	if len(c) != Length {
		return 0, fmt.Errorf("%w: %q is not %d bases", ErrInvalidLiteral, codon, Length)
	}
	value := 0
	for i := 0; i < Length; i++ {
		d, ok := digit(c[i])
		if !ok {
			return 0, fmt.Errorf("%w: %q has non-base %q", ErrInvalidLiteral, codon, c[i])
		}
		value = value*4 + d
	}
	return value, nil
}

// EncodeLiteral returns the codon that decodes to value
func EncodeLiteral(value int) (string, error) {
	if value < 0 || value > MaxLiteral {
		return "", fmt.Errorf("%w: %d outside 0..%d", ErrInvalidLiteral, value, MaxLiteral)
	}
	return string([]byte{
		byte(Bases[value/16]),
		byte(Bases[(value/4)%4]),
		byte(Bases[value%4]),
	}), nil
}
