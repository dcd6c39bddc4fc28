package circuit

import "math"

// StandardInverseQFT is the textbook inverse quantum Fourier transform:
// a reversal swap stage followed by the daggered rotation ladder. After it
// runs, ancilla qubit i holds phase bit i in the register's binary weighting
// (qubit i worth 2^i of the integer outcome).
type StandardInverseQFT struct{}

func (StandardInverseQFT) Apply(reg Register, c *Circuit) error {
	for i := 0; i < reg.Size/2; i++ {
		c.Append(Swap(reg.Qubit(i), reg.Qubit(reg.Size-1-i)))
	}
	for j := 0; j < reg.Size; j++ {
		for k := 0; k < j; k++ {
			lambda := -math.Pi / math.Pow(2, float64(j-k))
			c.Append(CU1(lambda, reg.Qubit(k), reg.Qubit(j)))
		}
		c.Append(H(reg.Qubit(j)))
	}
	return nil
}
