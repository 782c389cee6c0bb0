package operators

import (
	"fmt"

	"gonum.org/v1/gonum/cmplxs"
)

// Px returns the x derivative of a spectral field
func (op *Operators) Px(fFFT []complex128) []complex128 { return op.mulIK(0, fFFT) }

func (op *Operators) Py(fFFT []complex128) []complex128 { return op.mulIK(1, fFFT) }

func (op *Operators) Pz(fFFT []complex128) []complex128 { return op.mulIK(2, fFFT) }

// Gradient returns the spectral derivative along each axis, x first
func (op *Operators) Gradient(fFFT []complex128) (grad [][]complex128) {
	grad = make([][]complex128, op.Dim)
	for d := range grad {
		grad[d] = op.mulIK(d, fFFT)
	}
	return
}

// Divergence returns the spectral divergence of a vector with one component per axis
func (op *Operators) Divergence(vFFT [][]complex128) (div []complex128) {
	op.checkComponents(len(vFFT))
	div = op.mulIK(0, vFFT[0])
	for d := 1; d < op.Dim; d++ {
		cmplxs.Add(div, op.mulIK(d, vFFT[d]))
	}
	return
}

// Laplacian returns -K2 fFFT
func (op *Operators) Laplacian(fFFT []complex128) (lap []complex128) {
	checkLen(op.K2, fFFT)
	return cmplxs.MulTo(make([]complex128, len(fFFT)), op.minusK2, fFFT)
}

func (op *Operators) mulIK(axis int, fFFT []complex128) (d []complex128) {
	if axis >= op.Dim {
		panic(fmt.Sprintf("derivative along axis %d of a %dD grid", axis, op.Dim))
	}
	checkLen(op.K2, fFFT)
	return cmplxs.MulTo(make([]complex128, len(fFFT)), op.iK[axis], fFFT)
}
