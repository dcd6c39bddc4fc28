package qpe

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"eigenphase/internal/model"
	"eigenphase/internal/normalize"
)

var ErrEmptyHistogram = errors.New("measurement histogram is empty")

// Decode maps a measurement histogram back to an energy. The most frequent
// bitstring wins, with ties broken toward the lexicographically smaller
// bitstring so decoding is deterministic. Histogram keys carry ancilla qubit
// 0 at index 0; reversing the winner yields the most significant phase bit
// first, and the resulting binary fraction is the normalized eigenvalue,
// inverted through the stored stretch and translation.
func Decode(counts map[string]int, numAncillae int, nctx normalize.Context) (model.Result, error) {
	if len(counts) == 0 {
		return model.Result{}, ErrEmptyHistogram
	}

	measurements := make([]model.Measurement, 0, len(counts))
	for bits, n := range counts {
		if len(bits) != numAncillae {
			return model.Result{}, fmt.Errorf("bitstring %q does not match ancilla count %d", bits, numAncillae)
		}
		measurements = append(measurements, model.Measurement{Count: n, Bitstring: bits})
	}
	sort.Slice(measurements, func(i, j int) bool {
		if measurements[i].Count != measurements[j].Count {
			return measurements[i].Count > measurements[j].Count
		}
		return measurements[i].Bitstring < measurements[j].Bitstring
	})

	label := reverse(measurements[0].Bitstring)
	decimal := 0.0
	for pos, bit := range label {
		switch bit {
		case '1':
			decimal += math.Pow(0.5, float64(pos+1))
		case '0':
		default:
			return model.Result{}, fmt.Errorf("bitstring %q contains non-binary digit %q", label, bit)
		}
	}

	return model.Result{
		Translation:  nctx.Translation,
		Stretch:      nctx.Stretch,
		Measurements: measurements,
		TopLabel:     label,
		TopDecimal:   decimal,
		Energy:       decimal/nctx.Stretch - nctx.Translation,
	}, nil
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
