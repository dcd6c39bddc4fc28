package expansion

import (
	"errors"
	"math"
	"testing"

	"eigenphase/internal/pauli"
)

func testTerms(t *testing.T, coeffs map[string]float64, order []string) []pauli.Term {
	t.Helper()
	terms := make([]pauli.Term, 0, len(order))
	for _, label := range order {
		p, err := pauli.ParseLabel(label)
		if err != nil {
			t.Fatalf("parse %q: %v", label, err)
		}
		terms = append(terms, pauli.Term{Coeff: complex(coeffs[label], 0), Pauli: p})
	}
	return terms
}

func sumDurations(terms []pauli.Term) map[string]float64 {
	totals := make(map[string]float64)
	for _, t := range terms {
		totals[t.Pauli.Label()] += real(t.Coeff)
	}
	return totals
}

func TestSingleTermBypassesSplitting(t *testing.T) {
	terms := testTerms(t, map[string]float64{"ZZ": 0.75}, []string{"ZZ"})
	for _, mode := range []string{ModeTrotter, ModeSuzuki, "anything"} {
		got, err := Slice(terms, mode, 99)
		if err != nil {
			t.Fatalf("mode %s: %v", mode, err)
		}
		if len(got) != 1 || got[0].Pauli.Label() != "ZZ" || real(got[0].Coeff) != 0.75 {
			t.Fatalf("mode %s: single term was altered: %+v", mode, got)
		}
	}
}

func TestTrotterReturnsListUnchanged(t *testing.T) {
	terms := testTerms(t, map[string]float64{"ZI": 0.5, "IZ": -0.25, "XX": 0.125}, []string{"ZI", "IZ", "XX"})
	got, err := Slice(terms, ModeTrotter, 4)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if len(got) != len(terms) {
		t.Fatalf("trotter changed term count: %d", len(got))
	}
	for i := range terms {
		if got[i].Pauli.Label() != terms[i].Pauli.Label() || got[i].Coeff != terms[i].Coeff {
			t.Fatalf("term %d changed: %+v", i, got[i])
		}
	}
}

func TestSuzukiOrderOneEqualsPlainList(t *testing.T) {
	terms := testTerms(t, map[string]float64{"ZI": 0.5, "IZ": -0.25}, []string{"ZI", "IZ"})
	got, err := Slice(terms, ModeSuzuki, 1)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if len(got) != len(terms) {
		t.Fatalf("order 1 changed term count: %d", len(got))
	}
	for i := range terms {
		if got[i].Coeff != terms[i].Coeff || got[i].Pauli.Label() != terms[i].Pauli.Label() {
			t.Fatalf("order 1 altered term %d: %+v", i, got[i])
		}
	}
}

func TestSuzukiOrderTwoIsPalindromicHalves(t *testing.T) {
	terms := testTerms(t, map[string]float64{"ZI": 0.5, "IZ": -0.25, "XX": 1}, []string{"ZI", "IZ", "XX"})
	got, err := Slice(terms, ModeSuzuki, 2)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if len(got) != 2*len(terms) {
		t.Fatalf("expected %d terms, got %d", 2*len(terms), len(got))
	}
	for i := range got {
		mirror := got[len(got)-1-i]
		if got[i].Pauli.Label() != mirror.Pauli.Label() || got[i].Coeff != mirror.Coeff {
			t.Fatalf("decomposition not time symmetric at %d", i)
		}
	}
	for i, term := range terms {
		if got[i].Coeff != term.Coeff/2 {
			t.Fatalf("first half term %d not halved: %v", i, got[i].Coeff)
		}
	}
}

func TestSuzukiDurationsSumToTotal(t *testing.T) {
	coeffs := map[string]float64{"ZI": 0.5, "IZ": -0.25, "XX": 0.125}
	terms := testTerms(t, coeffs, []string{"ZI", "IZ", "XX"})
	for _, order := range []int{1, 2, 4, 6} {
		got, err := Slice(terms, ModeSuzuki, order)
		if err != nil {
			t.Fatalf("order %d: %v", order, err)
		}
		totals := sumDurations(got)
		for label, want := range coeffs {
			if math.Abs(totals[label]-want) > 1e-12 {
				t.Fatalf("order %d: duration of %s drifted: got %v, want %v", order, label, totals[label], want)
			}
		}
	}
}

func TestSuzukiRejectsOddOrders(t *testing.T) {
	terms := testTerms(t, map[string]float64{"ZI": 1, "IZ": 1}, []string{"ZI", "IZ"})
	for _, order := range []int{0, -1, 3, 5} {
		if _, err := Slice(terms, ModeSuzuki, order); !errors.Is(err, ErrInvalidOrder) {
			t.Fatalf("order %d: expected ErrInvalidOrder, got %v", order, err)
		}
	}
}

func TestUnknownModeFails(t *testing.T) {
	terms := testTerms(t, map[string]float64{"ZI": 1, "IZ": 1}, []string{"ZI", "IZ"})
	if _, err := Slice(terms, "magnus", 2); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}
