package circuit

import "fmt"

// ZeroState leaves the data register in |0...0>, the default initial state.
type ZeroState struct{}

func (ZeroState) Construct(Register) ([]Op, error) {
	return nil, nil
}

// BasisState prepares the computational basis state whose bit i (qubit i of
// the data register) is set in State.
type BasisState struct {
	State uint64
}

func (b BasisState) Construct(data Register) ([]Op, error) {
	if data.Size < 64 && b.State>>uint(data.Size) != 0 {
		return nil, fmt.Errorf("basis state %#x does not fit in %d qubits", b.State, data.Size)
	}
	var ops []Op
	for i := 0; i < data.Size; i++ {
		if b.State&(1<<uint(i)) != 0 {
			ops = append(ops, X(data.Qubit(i)))
		}
	}
	return ops, nil
}
