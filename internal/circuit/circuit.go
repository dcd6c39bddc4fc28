// Package circuit describes quantum circuits as ordered lists of named ops
// over a data register and an ancilla register, plus the narrow capability
// interfaces the estimation core uses so it never depends on one concrete
// circuit representation.
package circuit

import (
	"fmt"

	"eigenphase/internal/pauli"
)

// Op names understood by the execution backends.
const (
	OpH               = "h"
	OpX               = "x"
	OpU1              = "u1"
	OpCU1             = "cu1"
	OpSwap            = "swap"
	OpControlledPauli = "cpauli"
	OpBarrier         = "barrier"
	OpMeasure         = "measure"
)

// Op is one circuit instruction. For OpControlledPauli the masks describe
// the Pauli factor over the data register (data qubits occupy indices
// [0, len(mask))) and Qubits holds the single control qubit; Params[0] is
// the rotation angle theta of exp(-i*theta*P).
type Op struct {
	Name   string    `json:"name"`
	Qubits []int     `json:"qubits,omitempty"`
	Params []float64 `json:"params,omitempty"`
	ZMask  []bool    `json:"z_mask,omitempty"`
	XMask  []bool    `json:"x_mask,omitempty"`
	Clbits []int     `json:"clbits,omitempty"`
}

// Register is a contiguous block of qubits.
type Register struct {
	Offset int
	Size   int
}

// Qubit maps a register-local index to the circuit-wide qubit index.
func (r Register) Qubit(i int) int {
	if i < 0 || i >= r.Size {
		panic(fmt.Sprintf("register index %d out of range [0,%d)", i, r.Size))
	}
	return r.Offset + i
}

// Circuit lays out data qubits first, ancilla qubits after them, and a
// classical register for the measured ancilla bits.
type Circuit struct {
	DataQubits    int  `json:"data_qubits"`
	AncillaQubits int  `json:"ancilla_qubits"`
	Classical     int  `json:"classical_bits"`
	Ops           []Op `json:"ops"`
}

func New(dataQubits, ancillaQubits int) *Circuit {
	return &Circuit{DataQubits: dataQubits, AncillaQubits: ancillaQubits}
}

func (c *Circuit) TotalQubits() int {
	return c.DataQubits + c.AncillaQubits
}

func (c *Circuit) Data() Register {
	return Register{Offset: 0, Size: c.DataQubits}
}

func (c *Circuit) Ancilla() Register {
	return Register{Offset: c.DataQubits, Size: c.AncillaQubits}
}

func (c *Circuit) Append(ops ...Op) {
	c.Ops = append(c.Ops, ops...)
}

func H(qubit int) Op {
	return Op{Name: OpH, Qubits: []int{qubit}}
}

func X(qubit int) Op {
	return Op{Name: OpX, Qubits: []int{qubit}}
}

// U1 is the diagonal phase gate diag(1, e^{i*lambda}).
func U1(lambda float64, qubit int) Op {
	return Op{Name: OpU1, Qubits: []int{qubit}, Params: []float64{lambda}}
}

// CU1 applies the e^{i*lambda} phase when both qubits are 1.
func CU1(lambda float64, control, target int) Op {
	return Op{Name: OpCU1, Qubits: []int{control, target}, Params: []float64{lambda}}
}

func Swap(a, b int) Op {
	return Op{Name: OpSwap, Qubits: []int{a, b}}
}

// ControlledPauli applies exp(-i*theta*P) to the data register when the
// control qubit is 1.
func ControlledPauli(theta float64, control int, p pauli.Pauli) Op {
	return Op{
		Name:   OpControlledPauli,
		Qubits: []int{control},
		Params: []float64{theta},
		ZMask:  append([]bool(nil), p.Z...),
		XMask:  append([]bool(nil), p.X...),
	}
}

func Barrier(qubits ...int) Op {
	return Op{Name: OpBarrier, Qubits: qubits}
}

func Measure(qubit, clbit int) Op {
	return Op{Name: OpMeasure, Qubits: []int{qubit}, Clbits: []int{clbit}}
}

// StatePreparer initializes the data register. Implementations return a
// fragment that the assembler appends before anything else touches the data
// qubits.
type StatePreparer interface {
	Construct(data Register) ([]Op, error)
}

// InverseTransform extends the circuit with an inverse Fourier transform
// over the given register.
type InverseTransform interface {
	Apply(reg Register, c *Circuit) error
}
