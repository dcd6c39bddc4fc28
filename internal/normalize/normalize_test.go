package normalize

import (
	"errors"
	"math"
	"testing"

	"eigenphase/internal/pauli"
)

func operatorFromLabels(t *testing.T, terms map[string]float64, order []string) *pauli.Operator {
	t.Helper()
	list := make([]pauli.Term, 0, len(order))
	for _, label := range order {
		p, err := pauli.ParseLabel(label)
		if err != nil {
			t.Fatalf("parse %q: %v", label, err)
		}
		list = append(list, pauli.Term{Coeff: complex(terms[label], 0), Pauli: p})
	}
	op, err := pauli.NewOperator(list...)
	if err != nil {
		t.Fatalf("new operator: %v", err)
	}
	return op
}

func TestNormalizeSingleZ(t *testing.T) {
	op := operatorFromLabels(t, map[string]float64{"Z": 1}, []string{"Z"})
	ctx, normalized, err := Normalize(op)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if ctx.Translation != 1 || ctx.Stretch != 0.5 {
		t.Fatalf("context mismatch: %+v", ctx)
	}
	if ctx.IdentityPhase != 0.5 {
		t.Fatalf("identity phase: got %v, want 0.5", ctx.IdentityPhase)
	}
	coeffs := map[string]float64{}
	for _, term := range normalized.Terms {
		coeffs[term.Pauli.Label()] = real(term.Coeff)
	}
	if coeffs["Z"] != 0.5 || coeffs["I"] != 0.5 {
		t.Fatalf("normalized coefficients mismatch: %v", coeffs)
	}
}

func TestNormalizeIdentityPlusZ(t *testing.T) {
	op := operatorFromLabels(t, map[string]float64{"I": 1, "Z": 1}, []string{"I", "Z"})
	ctx, normalized, err := Normalize(op)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if ctx.Translation != 2 || ctx.Stretch != 0.25 {
		t.Fatalf("context mismatch: %+v", ctx)
	}
	if ctx.IdentityPhase != 0.75 {
		t.Fatalf("identity phase: got %v, want 0.75", ctx.IdentityPhase)
	}
	if len(normalized.Terms) != 2 {
		t.Fatalf("expected identity to merge, got %d terms", len(normalized.Terms))
	}
}

func TestNormalizeStretchInverseLaw(t *testing.T) {
	ops := []*pauli.Operator{
		operatorFromLabels(t, map[string]float64{"ZI": 0.3, "IZ": -1.7, "XX": 0.4}, []string{"ZI", "IZ", "XX"}),
		operatorFromLabels(t, map[string]float64{"ZZ": 5}, []string{"ZZ"}),
		operatorFromLabels(t, map[string]float64{"Y": -0.125}, []string{"Y"}),
	}
	for i, op := range ops {
		ctx, _, err := Normalize(op)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got := ctx.Stretch * ctx.Translation; math.Abs(got-0.5) > 1e-15 {
			t.Fatalf("case %d: stretch*translation = %v, want 0.5", i, got)
		}
	}
}

func TestNormalizeNegativeCoefficientsUseMagnitudes(t *testing.T) {
	op := operatorFromLabels(t, map[string]float64{"ZI": -2, "IZ": 1}, []string{"ZI", "IZ"})
	ctx, _, err := Normalize(op)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if ctx.Translation != 3 {
		t.Fatalf("translation: got %v, want 3", ctx.Translation)
	}
}

func TestNormalizeZeroOperatorFails(t *testing.T) {
	zero := operatorFromLabels(t, map[string]float64{"ZZ": 0, "XX": 0}, []string{"ZZ", "XX"})
	if _, _, err := Normalize(zero); !errors.Is(err, ErrZeroOperator) {
		t.Fatalf("expected ErrZeroOperator, got %v", err)
	}

	cancelled := operatorFromLabels(t, map[string]float64{"ZZ": 0.5}, []string{"ZZ"})
	neg := operatorFromLabels(t, map[string]float64{"ZZ": -0.5}, []string{"ZZ"})
	sum, err := cancelled.Add(neg)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := Normalize(sum); !errors.Is(err, ErrZeroOperator) {
		t.Fatalf("expected ErrZeroOperator for cancelled operator, got %v", err)
	}
}

func TestIdentityPhaseRejectsDuplicates(t *testing.T) {
	terms := []pauli.Term{
		{Coeff: 0.25, Pauli: pauli.Identity(2)},
		{Coeff: 0.5, Pauli: pauli.Identity(2)},
	}
	if _, err := IdentityPhase(terms); !errors.Is(err, ErrMultipleIdentity) {
		t.Fatalf("expected ErrMultipleIdentity, got %v", err)
	}
}

func TestIdentityPhaseAbsentIsZero(t *testing.T) {
	p, err := pauli.ParseLabel("ZX")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	phase, err := IdentityPhase([]pauli.Term{{Coeff: 1, Pauli: p}})
	if err != nil {
		t.Fatalf("identity phase: %v", err)
	}
	if phase != 0 {
		t.Fatalf("phase: got %v, want 0", phase)
	}
}
