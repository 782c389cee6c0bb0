package Burgers1D

import (
	"gonum.org/v1/gonum/cmplxs"

	"github.com/notargets/gospectral/operators"
	"github.com/notargets/gospectral/time_stepping"
	"github.com/notargets/gospectral/utils"
)

/*
Viscous Burgers equation on a periodic line:
				∂u/∂t + u ∂u/∂x = ν ∂²u/∂x² + f

In spectral space, with the nonlinear term computed in physical space:
				∂û/∂t = -FFT(u ∂u/∂x) - (ν₂ k² + ν₈ k⁸) û + f̂
*/
type Burgers1D struct {
	Op      *operators.Operators
	Forcing *operators.Forcing // nil without forcing
	diss    []float64
}

var Keys = []string{"u"}

func NewBurgers1D(op *operators.Operators, nu2, nu8 float64, forcing *operators.Forcing) (b *Burgers1D) {
	if op.Dim != 1 {
		panic("Burgers1D needs a 1D grid")
	}
	b = &Burgers1D{
		Op:      op,
		Forcing: forcing,
		diss:    utils.Dissipation(op.K2, nu2, nu8),
	}
	return
}

func (b *Burgers1D) Keys() []string { return Keys }

func (b *Burgers1D) Tendencies(y [][]complex128, t float64) (tend [][]complex128) {
	var (
		op   = b.Op
		uFFT = y[0]
	)
	u := op.IFFT(uFFT)
	nl := op.FFT(op.VGradScalar([][]float64{u}, u, uFFT))
	op.Dealiasing(nl)
	tendU := make([]complex128, len(uFFT))
	for i := range tendU {
		tendU[i] = -nl[i] - complex(b.diss[i], 0)*uFFT[i]
	}
	if b.Forcing != nil {
		cmplxs.Add(tendU, b.Forcing.Current(1)[0])
	}
	return [][]complex128{tendU}
}

// PrepareStep draws the forcing used by every stage of the next step
func (b *Burgers1D) PrepareStep(t, dt float64) {
	if b.Forcing != nil {
		b.Forcing.Next(1)
	}
}

// Estimators is empty, there are no waves to resolve
func (b *Burgers1D) Estimators() time_stepping.Estimators { return time_stepping.Estimators{} }
