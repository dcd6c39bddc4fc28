// Package simulator provides a local statevector execution backend. It is
// exact up to floating point: measurement histograms are computed from the
// final ancilla marginal, either by deterministic rounding or by seeded
// multinomial sampling.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"eigenphase/internal/backend"
	"eigenphase/internal/circuit"
)

// Memory for the amplitudes grows as 2^qubits; 20 qubits is 16 MiB of
// complex128 and a sensible default ceiling for tests and small problems.
const defaultMaxQubits = 20

var ErrTooManyQubits = errors.New("circuit exceeds simulator qubit limit")

type Config struct {
	Name      string
	MaxQubits int
	// StatevectorOnly disables measurement support, which makes the
	// simulator report itself as incompatible with estimation runs.
	StatevectorOnly bool
	// Sampler, when set, draws shot outcomes from the marginal
	// distribution. When nil, counts are the rounded expectations,
	// which keeps tests deterministic.
	Sampler *rand.Rand
}

type Simulator struct {
	name            string
	maxQubits       int
	statevectorOnly bool
	sampler         *rand.Rand
}

func New(cfg Config) *Simulator {
	name := cfg.Name
	if name == "" {
		name = "local-statevector"
	}
	maxQubits := cfg.MaxQubits
	if maxQubits <= 0 {
		maxQubits = defaultMaxQubits
	}
	return &Simulator{
		name:            name,
		maxQubits:       maxQubits,
		statevectorOnly: cfg.StatevectorOnly,
		sampler:         cfg.Sampler,
	}
}

func (s *Simulator) Name() string {
	return s.name
}

func (s *Simulator) Capabilities() backend.Capabilities {
	return backend.Capabilities{MaxQubits: s.maxQubits, Measurement: !s.statevectorOnly}
}

// Statevector runs the circuit and returns the final amplitudes; basis
// index bit q corresponds to qubit q.
func (s *Simulator) Statevector(ctx context.Context, c *circuit.Circuit) ([]complex128, error) {
	state, _, err := s.run(ctx, c)
	if err != nil {
		return nil, err
	}
	return state.amps, nil
}

func (s *Simulator) Execute(ctx context.Context, c *circuit.Circuit, shots int) (map[string]int, error) {
	if s.statevectorOnly {
		return nil, fmt.Errorf("%w: %s", backend.ErrMeasurementUnsupported, s.name)
	}
	if shots < 1 {
		return nil, fmt.Errorf("shots must be >= 1, got %d", shots)
	}

	state, measured, err := s.run(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(measured) == 0 {
		return nil, errors.New("circuit has no measurements")
	}

	probs := state.marginal(measured)
	if s.sampler != nil {
		return sampleCounts(probs, shots, len(measured), s.sampler), nil
	}
	return roundedCounts(probs, shots, len(measured)), nil
}

func (s *Simulator) run(ctx context.Context, c *circuit.Circuit) (*statevector, []int, error) {
	if c.TotalQubits() > s.maxQubits {
		return nil, nil, fmt.Errorf("%w: %d > %d", ErrTooManyQubits, c.TotalQubits(), s.maxQubits)
	}

	state := newStatevector(c.TotalQubits())
	measured := make([]int, c.Classical)
	for i := range measured {
		measured[i] = -1
	}
	seen := 0
	for _, op := range c.Ops {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if op.Name == circuit.OpMeasure {
			clbit := op.Clbits[0]
			if clbit < 0 || clbit >= len(measured) {
				return nil, nil, fmt.Errorf("measurement into missing classical bit %d", clbit)
			}
			measured[clbit] = op.Qubits[0]
			seen++
		}
		if err := state.apply(op); err != nil {
			return nil, nil, err
		}
	}
	if seen == 0 {
		return state, nil, nil
	}
	for clbit, qubit := range measured {
		if qubit < 0 {
			return nil, nil, fmt.Errorf("classical bit %d is never written", clbit)
		}
	}
	return state, measured, nil
}

// roundedCounts deterministically converts the marginal to counts. Rounding
// can make the totals differ from shots by at most one per outcome.
func roundedCounts(probs []float64, shots, numBits int) map[string]int {
	counts := make(map[string]int)
	for outcome, p := range probs {
		n := int(math.Round(p * float64(shots)))
		if n == 0 {
			continue
		}
		counts[bitstring(outcome, numBits)] = n
	}
	return counts
}

func sampleCounts(probs []float64, shots, numBits int, rng *rand.Rand) map[string]int {
	cumulative := make([]float64, len(probs))
	total := 0.0
	for i, p := range probs {
		total += p
		cumulative[i] = total
	}

	counts := make(map[string]int)
	for shot := 0; shot < shots; shot++ {
		r := rng.Float64() * total
		outcome := sort.SearchFloat64s(cumulative, r)
		if outcome >= len(probs) {
			outcome = len(probs) - 1
		}
		counts[bitstring(outcome, numBits)]++
	}
	return counts
}

// bitstring renders an outcome with classical bit 0 at string index 0.
func bitstring(outcome, numBits int) string {
	b := make([]byte, numBits)
	for i := 0; i < numBits; i++ {
		if outcome&(1<<uint(i)) != 0 {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}
