package pauli

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLengthMismatch = errors.New("pauli z and x vectors differ in length")
	ErrEmptyLabel     = errors.New("pauli label is empty")
)

// Pauli is a tensor product of single-qubit Pauli factors in the symplectic
// representation: Z[q] marks a Z-type factor on qubit q, X[q] an X-type
// factor. Both set means Y, neither means identity on that qubit.
type Pauli struct {
	Z []bool
	X []bool
}

func New(z, x []bool) (Pauli, error) {
	if len(z) != len(x) {
		return Pauli{}, ErrLengthMismatch
	}
	return Pauli{Z: append([]bool(nil), z...), X: append([]bool(nil), x...)}, nil
}

// Identity returns the all-identity descriptor over n qubits.
func Identity(n int) Pauli {
	return Pauli{Z: make([]bool, n), X: make([]bool, n)}
}

// ParseLabel builds a descriptor from a string of I, X, Y, Z characters.
// The leftmost character acts on qubit 0.
func ParseLabel(label string) (Pauli, error) {
	if label == "" {
		return Pauli{}, ErrEmptyLabel
	}
	p := Identity(len(label))
	for i, c := range label {
		switch c {
		case 'I', 'i':
		case 'X', 'x':
			p.X[i] = true
		case 'Y', 'y':
			p.Z[i] = true
			p.X[i] = true
		case 'Z', 'z':
			p.Z[i] = true
		default:
			return Pauli{}, fmt.Errorf("invalid pauli label character %q in %q", c, label)
		}
	}
	return p, nil
}

func (p Pauli) NumQubits() int {
	return len(p.Z)
}

// Label renders the descriptor with qubit 0 leftmost, inverse of ParseLabel.
func (p Pauli) Label() string {
	var b strings.Builder
	b.Grow(len(p.Z))
	for q := range p.Z {
		switch {
		case p.Z[q] && p.X[q]:
			b.WriteByte('Y')
		case p.Z[q]:
			b.WriteByte('Z')
		case p.X[q]:
			b.WriteByte('X')
		default:
			b.WriteByte('I')
		}
	}
	return b.String()
}

// IsIdentity reports whether no qubit carries a Z or X factor.
func (p Pauli) IsIdentity() bool {
	for q := range p.Z {
		if p.Z[q] || p.X[q] {
			return false
		}
	}
	return true
}

func (p Pauli) Equal(other Pauli) bool {
	if len(p.Z) != len(other.Z) {
		return false
	}
	for q := range p.Z {
		if p.Z[q] != other.Z[q] || p.X[q] != other.X[q] {
			return false
		}
	}
	return true
}

// Clone returns a descriptor sharing no storage with p.
func (p Pauli) Clone() Pauli {
	return Pauli{Z: append([]bool(nil), p.Z...), X: append([]bool(nil), p.X...)}
}
