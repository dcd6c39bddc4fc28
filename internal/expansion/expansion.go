// Package expansion decomposes the time evolution of a Pauli-sum operator
// into an ordered list of elementary rotation terms, via first-order
// Trotter splitting or the recursive symmetric Suzuki construction.
package expansion

import (
	"errors"
	"fmt"
	"math"

	"eigenphase/internal/pauli"
)

const (
	ModeTrotter = "trotter"
	ModeSuzuki  = "suzuki"
)

var (
	ErrUnknownMode  = errors.New("unrecognized expansion mode")
	ErrInvalidOrder = errors.New("expansion order must be 1 or an even integer")
)

// Slice produces the term sequence for one repeatable evolution slice.
// Evolution of a single Pauli term is exact, so a one-term list is returned
// unchanged no matter which mode or order was requested.
func Slice(terms []pauli.Term, mode string, order int) ([]pauli.Term, error) {
	if len(terms) <= 1 {
		return scaleTerms(terms, 1), nil
	}
	switch mode {
	case ModeTrotter:
		return scaleTerms(terms, 1), nil
	case ModeSuzuki:
		if order < 1 || (order > 1 && order%2 != 0) {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidOrder, order)
		}
		return suzuki(terms, 1, order), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
}

// suzuki builds the symmetric product-formula decomposition of the given
// order for a total duration fraction lam. The recursion follows the
// standard pattern: order 2k nests five copies of the order 2k-2
// decomposition with fractions p, p, 1-4p, p, p, which sum to the full
// duration, and the palindromic layout gives the construction its
// time-reversal symmetry.
func suzuki(terms []pauli.Term, lam float64, order int) []pauli.Term {
	switch {
	case order == 1:
		return scaleTerms(terms, lam)
	case order == 2:
		half := scaleTerms(terms, lam/2)
		out := make([]pauli.Term, 0, 2*len(half))
		out = append(out, half...)
		for i := len(half) - 1; i >= 0; i-- {
			out = append(out, half[i])
		}
		return out
	default:
		k := order / 2
		p := 1 / (4 - math.Pow(4, 1/float64(2*k-1)))
		side := suzuki(terms, lam*p, order-2)
		middle := suzuki(terms, lam*(1-4*p), order-2)
		out := make([]pauli.Term, 0, 4*len(side)+len(middle))
		out = append(out, side...)
		out = append(out, side...)
		out = append(out, middle...)
		out = append(out, side...)
		out = append(out, side...)
		return out
	}
}

func scaleTerms(terms []pauli.Term, lam float64) []pauli.Term {
	out := make([]pauli.Term, len(terms))
	for i, t := range terms {
		out[i] = pauli.Term{Coeff: t.Coeff * complex(lam, 0), Pauli: t.Pauli.Clone()}
	}
	return out
}
