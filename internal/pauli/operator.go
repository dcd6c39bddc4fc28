package pauli

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
)

// Coefficients with magnitude below chopTolerance are removed during
// simplification.
const chopTolerance = 1e-12

var (
	ErrNonFiniteCoefficient = errors.New("term coefficient is not finite")
	ErrMixedQubitCounts     = errors.New("terms act on different qubit counts")
)

// Term is one weighted Pauli factor of a Hamiltonian sum.
type Term struct {
	Coeff complex128
	Pauli Pauli
}

// Operator is an ordered sum of weighted Pauli terms.
type Operator struct {
	Terms []Term
}

// NewOperator validates that all terms are finite and act on the same number
// of qubits.
func NewOperator(terms ...Term) (*Operator, error) {
	for _, t := range terms {
		if !isFinite(t.Coeff) {
			return nil, fmt.Errorf("%w: %v on %s", ErrNonFiniteCoefficient, t.Coeff, t.Pauli.Label())
		}
		if len(t.Pauli.Z) != len(t.Pauli.X) {
			return nil, ErrLengthMismatch
		}
		if t.Pauli.NumQubits() != terms[0].Pauli.NumQubits() {
			return nil, ErrMixedQubitCounts
		}
	}
	return &Operator{Terms: cloneTerms(terms)}, nil
}

func (o *Operator) NumQubits() int {
	if len(o.Terms) == 0 {
		return 0
	}
	return o.Terms[0].Pauli.NumQubits()
}

// Simplify merges terms with equal descriptors, summing their coefficients,
// and drops terms whose merged coefficient is negligible. First-occurrence
// order of the surviving descriptors is preserved.
func (o *Operator) Simplify() *Operator {
	index := make(map[string]int, len(o.Terms))
	merged := make([]Term, 0, len(o.Terms))
	for _, t := range o.Terms {
		key := t.Pauli.Label()
		if at, ok := index[key]; ok {
			merged[at].Coeff += t.Coeff
			continue
		}
		index[key] = len(merged)
		merged = append(merged, Term{Coeff: t.Coeff, Pauli: t.Pauli.Clone()})
	}
	kept := merged[:0]
	for _, t := range merged {
		if cmplx.Abs(t.Coeff) < chopTolerance {
			continue
		}
		kept = append(kept, t)
	}
	return &Operator{Terms: append([]Term(nil), kept...)}
}

// Add concatenates the term lists of two operators over the same qubit count.
// The result is not simplified.
func (o *Operator) Add(other *Operator) (*Operator, error) {
	if len(o.Terms) > 0 && len(other.Terms) > 0 && o.NumQubits() != other.NumQubits() {
		return nil, ErrMixedQubitCounts
	}
	terms := make([]Term, 0, len(o.Terms)+len(other.Terms))
	terms = append(terms, cloneTerms(o.Terms)...)
	terms = append(terms, cloneTerms(other.Terms)...)
	return &Operator{Terms: terms}, nil
}

// Scale multiplies every coefficient by c.
func (o *Operator) Scale(c complex128) *Operator {
	terms := cloneTerms(o.Terms)
	for i := range terms {
		terms[i].Coeff *= c
	}
	return &Operator{Terms: terms}
}

// Reorder returns the term list under the requested grouping. "default"
// preserves the stored order; "random" applies a permutation drawn from rng,
// used to average out systematic slicing error across repeated runs.
func (o *Operator) Reorder(grouping string, rng *rand.Rand) ([]Term, error) {
	switch grouping {
	case "default":
		return cloneTerms(o.Terms), nil
	case "random":
		if rng == nil {
			return nil, errors.New("random grouping requires a random source")
		}
		out := make([]Term, len(o.Terms))
		for i, j := range rng.Perm(len(o.Terms)) {
			out[j] = Term{Coeff: o.Terms[i].Coeff, Pauli: o.Terms[i].Pauli.Clone()}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported paulis grouping: %s", grouping)
	}
}

func cloneTerms(terms []Term) []Term {
	out := make([]Term, len(terms))
	for i, t := range terms {
		out[i] = Term{Coeff: t.Coeff, Pauli: t.Pauli.Clone()}
	}
	return out
}

func isFinite(c complex128) bool {
	for _, v := range []float64{real(c), imag(c)} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
