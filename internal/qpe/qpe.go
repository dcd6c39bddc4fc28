// Package qpe estimates the smallest eigenvalue of a Pauli-sum Hamiltonian
// by phase estimation: the operator is normalized into [0, 1), evolved under
// a sliced exponential controlled by a register of ancilla qubits, read out
// through an inverse Fourier transform, and the winning bitstring mapped back
// to an energy.
package qpe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"eigenphase/internal/backend"
	"eigenphase/internal/circuit"
	"eigenphase/internal/expansion"
	"eigenphase/internal/model"
	"eigenphase/internal/normalize"
	"eigenphase/internal/pauli"
)

// evolutionTime is the duration of the base evolution block. With eigenvalues
// normalized into [0, 1), exp(-i*H*(-2*pi)) imprints exactly one turn of
// phase per unit of eigenvalue onto the ancilla register.
const evolutionTime = -2 * math.Pi

const (
	GroupingDefault = "default"
	GroupingRandom  = "random"

	DefaultNumTimeSlices  = 1
	DefaultPaulisGrouping = GroupingRandom
	DefaultExpansionMode  = expansion.ModeSuzuki
	DefaultExpansionOrder = 2
	DefaultNumAncillae    = 1
	DefaultShots          = 1024
)

var ErrInvalidConfiguration = errors.New("invalid estimator configuration")

// Config controls one estimation. Zero values for the numeric fields select
// the documented defaults, except NumTimeSlices where zero literally means
// no evolution blocks; Preparer defaults to the all-zeros state, IQFT to the
// standard inverse transform, and Logger to a no-op logger.
type Config struct {
	NumTimeSlices  int
	PaulisGrouping string
	ExpansionMode  string
	ExpansionOrder int
	NumAncillae    int
	Shots          int
	Seed           int64

	Preparer circuit.StatePreparer
	IQFT     circuit.InverseTransform
	Logger   *zap.Logger
}

// withDefaults fills unset fields. NumTimeSlices is left alone: zero is a
// meaningful value (no evolution blocks, phase correction only), so callers
// wanting the conventional default pass DefaultNumTimeSlices explicitly.
func (c Config) withDefaults() Config {
	if c.PaulisGrouping == "" {
		c.PaulisGrouping = DefaultPaulisGrouping
	}
	if c.ExpansionMode == "" {
		c.ExpansionMode = DefaultExpansionMode
	}
	if c.ExpansionOrder == 0 {
		c.ExpansionOrder = DefaultExpansionOrder
	}
	if c.NumAncillae == 0 {
		c.NumAncillae = DefaultNumAncillae
	}
	if c.Shots == 0 {
		c.Shots = DefaultShots
	}
	if c.Preparer == nil {
		c.Preparer = circuit.ZeroState{}
	}
	if c.IQFT == nil {
		c.IQFT = circuit.StandardInverseQFT{}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

func (c Config) validate() error {
	if c.NumTimeSlices < 0 {
		return fmt.Errorf("%w: num time slices must not be negative, got %d", ErrInvalidConfiguration, c.NumTimeSlices)
	}
	if c.PaulisGrouping != GroupingDefault && c.PaulisGrouping != GroupingRandom {
		return fmt.Errorf("%w: unknown paulis grouping %q", ErrInvalidConfiguration, c.PaulisGrouping)
	}
	if c.ExpansionMode != expansion.ModeTrotter && c.ExpansionMode != expansion.ModeSuzuki {
		return fmt.Errorf("%w: unknown expansion mode %q", ErrInvalidConfiguration, c.ExpansionMode)
	}
	if c.ExpansionOrder < 1 || (c.ExpansionOrder > 1 && c.ExpansionOrder%2 != 0) {
		return fmt.Errorf("%w: expansion order must be 1 or an even integer, got %d", ErrInvalidConfiguration, c.ExpansionOrder)
	}
	if c.NumAncillae < 1 {
		return fmt.Errorf("%w: at least one ancilla qubit is required, got %d", ErrInvalidConfiguration, c.NumAncillae)
	}
	if c.Shots < 1 {
		return fmt.Errorf("%w: at least one shot is required, got %d", ErrInvalidConfiguration, c.Shots)
	}
	return nil
}

// RunConfig returns the effective configuration as a storable snapshot.
func (c Config) RunConfig() model.RunConfig {
	c = c.withDefaults()
	return model.RunConfig{
		NumTimeSlices:  c.NumTimeSlices,
		PaulisGrouping: c.PaulisGrouping,
		ExpansionMode:  c.ExpansionMode,
		ExpansionOrder: c.ExpansionOrder,
		NumAncillae:    c.NumAncillae,
		Shots:          c.Shots,
		Seed:           c.Seed,
	}
}

// Estimator runs phase estimation for one operator. It is safe to reuse for
// repeated runs; every run replays the same seeded term ordering, so results
// on a deterministic backend are reproducible.
type Estimator struct {
	operator *pauli.Operator
	cfg      Config
}

func New(op *pauli.Operator, cfg Config) (*Estimator, error) {
	if op == nil || len(op.Terms) == 0 {
		return nil, fmt.Errorf("%w: operator must have at least one term", ErrInvalidConfiguration)
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Estimator{operator: op, cfg: cfg}, nil
}

// Config returns the effective configuration after default filling.
func (e *Estimator) Config() Config {
	return e.cfg
}

// Construct builds the full estimation circuit and the normalization context
// needed to decode its measurements.
func (e *Estimator) Construct() (*circuit.Circuit, normalize.Context, error) {
	nctx, normalized, err := normalize.Normalize(e.operator)
	if err != nil {
		return nil, normalize.Context{}, err
	}

	rng := rand.New(rand.NewSource(e.cfg.Seed))
	terms, err := normalized.Reorder(e.cfg.PaulisGrouping, rng)
	if err != nil {
		return nil, normalize.Context{}, err
	}
	slice, err := expansion.Slice(terms, e.cfg.ExpansionMode, e.cfg.ExpansionOrder)
	if err != nil {
		return nil, normalize.Context{}, err
	}

	c, err := e.assemble(nctx, normalized.NumQubits(), slice)
	if err != nil {
		return nil, normalize.Context{}, err
	}
	return c, nctx, nil
}

// assemble lays down the circuit: state preparation on the data register,
// Hadamards on the ancillae, per-ancilla controlled evolution with doubling
// duration plus the identity phase correction, the inverse transform, and
// finally ancilla measurement.
func (e *Estimator) assemble(nctx normalize.Context, dataQubits int, slice []pauli.Term) (*circuit.Circuit, error) {
	c := circuit.New(dataQubits, e.cfg.NumAncillae)

	prep, err := e.cfg.Preparer.Construct(c.Data())
	if err != nil {
		return nil, err
	}
	c.Append(prep...)

	anc := c.Ancilla()
	for i := 0; i < anc.Size; i++ {
		c.Append(circuit.H(anc.Qubit(i)))
	}

	for i := 0; i < anc.Size; i++ {
		power := math.Pow(2, float64(i))
		if e.cfg.NumTimeSlices > 0 {
			scale := evolutionTime * power / float64(e.cfg.NumTimeSlices)
			for rep := 0; rep < e.cfg.NumTimeSlices; rep++ {
				for _, t := range slice {
					if t.Pauli.IsIdentity() {
						continue
					}
					c.Append(circuit.ControlledPauli(real(t.Coeff)*scale, anc.Qubit(i), t.Pauli))
				}
			}
		}
		// Identity terms commute with everything, so their phase is applied
		// once per ancilla instead of once per slice.
		if nctx.IdentityPhase != 0 {
			c.Append(circuit.U1(2*math.Pi*nctx.IdentityPhase*power, anc.Qubit(i)))
		}
	}

	if err := e.cfg.IQFT.Apply(anc, c); err != nil {
		return nil, err
	}

	c.Classical = anc.Size
	ancillae := make([]int, anc.Size)
	for i := range ancillae {
		ancillae[i] = anc.Qubit(i)
	}
	c.Append(circuit.Barrier(ancillae...))
	for i := 0; i < anc.Size; i++ {
		c.Append(circuit.Measure(anc.Qubit(i), i))
	}
	return c, nil
}

// Run constructs the circuit, executes it on the backend, and decodes the
// measurement histogram into an energy estimate.
func (e *Estimator) Run(ctx context.Context, b backend.Backend) (model.Result, error) {
	if err := backend.CheckMeasurement(b); err != nil {
		return model.Result{}, err
	}

	c, nctx, err := e.Construct()
	if err != nil {
		return model.Result{}, err
	}
	if err := backend.CheckFit(b, c); err != nil {
		return model.Result{}, err
	}

	e.cfg.Logger.Info("assembled estimation circuit",
		zap.String("backend", b.Name()),
		zap.Int("data_qubits", c.DataQubits),
		zap.Int("ancilla_qubits", c.AncillaQubits),
		zap.Int("ops", len(c.Ops)),
		zap.Int("shots", e.cfg.Shots),
	)

	counts, err := b.Execute(ctx, c, e.cfg.Shots)
	if err != nil {
		return model.Result{}, fmt.Errorf("execute estimation circuit: %w", err)
	}

	result, err := Decode(counts, e.cfg.NumAncillae, nctx)
	if err != nil {
		return model.Result{}, err
	}
	e.cfg.Logger.Info("decoded estimation result",
		zap.String("top_label", result.TopLabel),
		zap.Float64("energy", result.Energy),
	)
	return result, nil
}
