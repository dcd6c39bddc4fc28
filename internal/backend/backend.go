// Package backend defines the execution boundary: anything that can turn a
// circuit description into a measurement count histogram is a Backend.
package backend

import (
	"context"
	"errors"
	"fmt"

	"eigenphase/internal/circuit"
)

// ErrMeasurementUnsupported marks a backend that only reports exact state
// vectors. Estimation requires sampled measurements, so such backends are
// rejected before anything is submitted.
var ErrMeasurementUnsupported = errors.New("backend does not support measurements")

type Capabilities struct {
	MaxQubits   int
	Measurement bool
}

// Backend executes circuits. Execute returns a histogram keyed by ancilla
// bitstring, with ancilla qubit 0 at string index 0. Submission blocks until
// the histogram is available or ctx is done; internal concurrency and
// retries are the backend's own business.
type Backend interface {
	Name() string
	Capabilities() Capabilities
	Execute(ctx context.Context, c *circuit.Circuit, shots int) (map[string]int, error)
}

// CheckMeasurement rejects statevector-only backends up front.
func CheckMeasurement(b Backend) error {
	if !b.Capabilities().Measurement {
		return fmt.Errorf("%w: %s", ErrMeasurementUnsupported, b.Name())
	}
	return nil
}

// CheckFit verifies the circuit fits on the backend.
func CheckFit(b Backend, c *circuit.Circuit) error {
	caps := b.Capabilities()
	if caps.MaxQubits > 0 && c.TotalQubits() > caps.MaxQubits {
		return fmt.Errorf("circuit needs %d qubits but backend %s supports %d",
			c.TotalQubits(), b.Name(), caps.MaxQubits)
	}
	return nil
}
