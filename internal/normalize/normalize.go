// Package normalize shifts and rescales a Hamiltonian so that all of its
// eigenvalues land in [0, 1), which makes the phase read off after an
// evolution of duration 2*pi a faithful encoding of the original eigenvalue.
package normalize

import (
	"errors"
	"math/cmplx"

	"eigenphase/internal/pauli"
)

var (
	// ErrZeroOperator marks an identically zero operator, for which the
	// estimate is undefined.
	ErrZeroOperator = errors.New("operator has zero norm")
	// ErrMultipleIdentity marks more than one identity term surviving
	// simplification. Correct simplification makes this unreachable, so it
	// is treated as a fatal invariant violation rather than recovered from.
	ErrMultipleIdentity = errors.New("multiple identity pauli terms are present")
)

// Context carries the affine parameters of one normalization. It is computed
// once per run and immutable afterwards; the decoder uses it to invert the
// mapping exactly.
type Context struct {
	Translation   float64
	Stretch       float64
	IdentityPhase float64
}

// Normalize returns the normalization context together with the transformed
// operator: translation = sum of coefficient magnitudes, stretch =
// 0.5/translation, and the transformed operator is (op + translation*I) *
// stretch. The identity component of the result, if present, is recorded as
// IdentityPhase so the assembler can apply it as a per-ancilla phase
// correction; identity terms do not entangle with the data register and are
// skipped by the evolution blocks.
func Normalize(op *pauli.Operator) (Context, *pauli.Operator, error) {
	simplified := op.Simplify()

	translation := 0.0
	for _, t := range simplified.Terms {
		translation += cmplx.Abs(t.Coeff)
	}
	if translation == 0 {
		return Context{}, nil, ErrZeroOperator
	}
	stretch := 0.5 / translation

	shift, err := pauli.NewOperator(pauli.Term{
		Coeff: complex(translation, 0),
		Pauli: pauli.Identity(simplified.NumQubits()),
	})
	if err != nil {
		return Context{}, nil, err
	}
	shifted, err := simplified.Add(shift)
	if err != nil {
		return Context{}, nil, err
	}
	normalized := shifted.Simplify().Scale(complex(stretch, 0))

	phase, err := IdentityPhase(normalized.Terms)
	if err != nil {
		return Context{}, nil, err
	}
	return Context{Translation: translation, Stretch: stretch, IdentityPhase: phase}, normalized, nil
}

// IdentityPhase scans a simplified term list for its identity component and
// returns the real part of its coefficient, or 0 when absent. A second
// identity term is reported as ErrMultipleIdentity.
func IdentityPhase(terms []pauli.Term) (float64, error) {
	phase := 0.0
	identities := 0
	for _, t := range terms {
		if !t.Pauli.IsIdentity() {
			continue
		}
		identities++
		if identities > 1 {
			return 0, ErrMultipleIdentity
		}
		phase = real(t.Coeff)
	}
	return phase, nil
}
