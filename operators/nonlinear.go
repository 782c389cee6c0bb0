package operators

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// VGradScalar returns (v.grad)s in physical space. sFFT is the transform of s,
// when nil it is computed here.
func (op *Operators) VGradScalar(v [][]float64, s []float64, sFFT []complex128) (adv []float64) {
	var (
		tr = op.Tr
	)
	op.checkComponents(len(v))
	if sFFT == nil {
		if len(s) != tr.SizePhysLoc() {
			panic(fmt.Sprintf("physical field of length %d does not match the grid (%d)", len(s), tr.SizePhysLoc()))
		}
		sFFT = tr.FFT(s)
	}
	adv = tr.CreateArrayX()
	deriv := tr.CreateArrayX()
	for d := 0; d < op.Dim; d++ {
		tr.Inverse(deriv, op.mulIK(d, sFFT))
		floats.Mul(deriv, v[d])
		floats.Add(adv, deriv)
	}
	return
}

// VGradV returns (v.grad)v, one physical field per component. vFFT may be nil,
// or hold nil entries for the components whose transform is not at hand.
func (op *Operators) VGradV(v [][]float64, vFFT [][]complex128) (adv [][]float64) {
	op.checkComponents(len(v))
	adv = make([][]float64, len(v))
	for c := range v {
		var cFFT []complex128
		if vFFT != nil {
			cFFT = vFFT[c]
		}
		adv[c] = op.VGradScalar(v, v[c], cFFT)
	}
	return
}
