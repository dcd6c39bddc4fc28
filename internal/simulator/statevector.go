package simulator

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"

	"eigenphase/internal/circuit"
)

// statevector holds 2^n amplitudes; basis index bit q corresponds to qubit q.
type statevector struct {
	n    int
	amps []complex128
}

func newStatevector(n int) *statevector {
	amps := make([]complex128, 1<<uint(n))
	amps[0] = 1
	return &statevector{n: n, amps: amps}
}

func (s *statevector) apply(op circuit.Op) error {
	switch op.Name {
	case circuit.OpH:
		s.hadamard(op.Qubits[0])
	case circuit.OpX:
		s.flip(op.Qubits[0])
	case circuit.OpU1:
		s.phase(op.Params[0], op.Qubits[0])
	case circuit.OpCU1:
		s.controlledPhase(op.Params[0], op.Qubits[0], op.Qubits[1])
	case circuit.OpSwap:
		s.swap(op.Qubits[0], op.Qubits[1])
	case circuit.OpControlledPauli:
		s.controlledPauli(op.Params[0], op.Qubits[0], op.ZMask, op.XMask)
	case circuit.OpBarrier, circuit.OpMeasure:
		// Scheduling and read-out markers; nothing to do to the state.
	default:
		return fmt.Errorf("unsupported op %q", op.Name)
	}
	return nil
}

func (s *statevector) hadamard(q int) {
	bit := uint64(1) << uint(q)
	inv := complex(1/math.Sqrt2, 0)
	for i := uint64(0); i < uint64(len(s.amps)); i++ {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a, b := s.amps[i], s.amps[j]
		s.amps[i] = (a + b) * inv
		s.amps[j] = (a - b) * inv
	}
}

func (s *statevector) flip(q int) {
	bit := uint64(1) << uint(q)
	for i := uint64(0); i < uint64(len(s.amps)); i++ {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *statevector) phase(lambda float64, q int) {
	bit := uint64(1) << uint(q)
	factor := cmplx.Exp(complex(0, lambda))
	for i := uint64(0); i < uint64(len(s.amps)); i++ {
		if i&bit != 0 {
			s.amps[i] *= factor
		}
	}
}

func (s *statevector) controlledPhase(lambda float64, control, target int) {
	mask := uint64(1)<<uint(control) | uint64(1)<<uint(target)
	factor := cmplx.Exp(complex(0, lambda))
	for i := uint64(0); i < uint64(len(s.amps)); i++ {
		if i&mask == mask {
			s.amps[i] *= factor
		}
	}
}

func (s *statevector) swap(a, b int) {
	bitA := uint64(1) << uint(a)
	bitB := uint64(1) << uint(b)
	for i := uint64(0); i < uint64(len(s.amps)); i++ {
		if i&bitA != 0 && i&bitB == 0 {
			j := i &^ bitA | bitB
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// controlledPauli applies exp(-i*theta*P) to the subspace where the control
// qubit is 1. P squares to the identity, so the exponential reduces to
// cos(theta)*psi - i*sin(theta)*(P psi). For a basis state b, P|b> =
// c(b)|b ^ x> with c(b) = i^{ny} * (-1)^{popcount(b & z)}, ny the number of
// Y factors.
func (s *statevector) controlledPauli(theta float64, control int, zmask, xmask []bool) {
	ctl := uint64(1) << uint(control)
	var z, x uint64
	ny := 0
	for q := range zmask {
		if zmask[q] {
			z |= 1 << uint(q)
		}
		if xmask[q] {
			x |= 1 << uint(q)
		}
		if zmask[q] && xmask[q] {
			ny++
		}
	}

	cosT := complex(math.Cos(theta), 0)
	minusISinT := complex(0, -math.Sin(theta))
	var yFactor complex128
	switch ny % 4 {
	case 0:
		yFactor = 1
	case 1:
		yFactor = complex(0, 1)
	case 2:
		yFactor = -1
	case 3:
		yFactor = complex(0, -1)
	}
	coeff := func(b uint64) complex128 {
		if bits.OnesCount64(b&z)%2 == 1 {
			return -yFactor
		}
		return yFactor
	}

	if x == 0 {
		for i := uint64(0); i < uint64(len(s.amps)); i++ {
			if i&ctl != 0 {
				s.amps[i] *= cosT + minusISinT*coeff(i)
			}
		}
		return
	}

	pivot := x & (^x + 1)
	for i := uint64(0); i < uint64(len(s.amps)); i++ {
		if i&ctl == 0 || i&pivot != 0 {
			continue
		}
		j := i ^ x
		a, b := s.amps[i], s.amps[j]
		s.amps[i] = cosT*a + minusISinT*coeff(j)*b
		s.amps[j] = cosT*b + minusISinT*coeff(i)*a
	}
}

// marginal returns the probability of each outcome over the given qubits;
// outcome bit k corresponds to qubits[k].
func (s *statevector) marginal(qubits []int) []float64 {
	probs := make([]float64, 1<<uint(len(qubits)))
	for i, amp := range s.amps {
		p := real(amp)*real(amp) + imag(amp)*imag(amp)
		if p == 0 {
			continue
		}
		outcome := 0
		for k, q := range qubits {
			if uint64(i)&(1<<uint(q)) != 0 {
				outcome |= 1 << uint(k)
			}
		}
		probs[outcome] += p
	}
	return probs
}
