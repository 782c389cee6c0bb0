package NS3D

import (
	"math"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/notargets/gospectral/operators"
	"github.com/notargets/gospectral/time_stepping"
	"github.com/notargets/gospectral/utils"
)

/*
Three dimensional incompressible Navier-Stokes equations. With a positive
Brunt-Vaisala frequency N the buoyancy b is added, gravity along z:
				∂v/∂t + (v·∇)v = -∇p + b ẑ + ν ∇²v + f
				∂b/∂t + v·∇b   = -N² vz + κ ∇²b
				∇·v = 0
*/
type NS3D struct {
	Op      *operators.Operators
	N       float64
	Forcing *operators.Forcing
	keys    []string
	dissV   []float64
	dissB   []float64
}

func NewNS3D(op *operators.Operators, N, nu2, nu8, kappa2 float64, forcing *operators.Forcing) (ns *NS3D) {
	if op.Dim != 3 {
		panic("NS3D needs a 3D grid")
	}
	ns = &NS3D{
		Op:      op,
		N:       N,
		Forcing: forcing,
		keys:    []string{"vx", "vy", "vz"},
		dissV:   utils.Dissipation(op.K2, nu2, nu8),
	}
	if ns.Buoyant() {
		ns.keys = append(ns.keys, "b")
		ns.dissB = utils.Dissipation(op.K2, kappa2, nu8)
	}
	return
}

func (ns *NS3D) Buoyant() bool { return ns.N > 0 }

func (ns *NS3D) Keys() []string { return ns.keys }

func (ns *NS3D) Tendencies(y [][]complex128, t float64) (tend [][]complex128) {
	var (
		op   = ns.Op
		vFFT = y[:3]
	)
	v := [][]float64{op.IFFT(vFFT[0]), op.IFFT(vFFT[1]), op.IFFT(vFFT[2])}
	adv := op.VGradV(v, vFFT)
	n := make([][]complex128, 3)
	for c := range n {
		n[c] = op.FFT(adv[c])
		cmplxs.Scale(-1, n[c])
	}
	if ns.Buoyant() {
		cmplxs.Add(n[2], y[3])
	}
	if ns.Forcing != nil {
		for c, f := range ns.Forcing.Current(3) {
			cmplxs.Add(n[c], f)
		}
	}
	tx, ty, tz := op.ProjectPerpK3D(n[0], n[1], n[2])
	tend = [][]complex128{tx, ty, tz}
	for c := range tend {
		for i := range tend[c] {
			tend[c][i] -= complex(ns.dissV[i], 0) * vFFT[c][i]
		}
	}
	if ns.Buoyant() {
		var (
			bFFT = y[3]
			N2   = complex(ns.N*ns.N, 0)
		)
		nb := op.FFT(op.VGradScalar(v, op.IFFT(bFFT), bFFT))
		tb := make([]complex128, len(bFFT))
		for i := range tb {
			tb[i] = -nb[i] - N2*vFFT[2][i] - complex(ns.dissB[i], 0)*bFFT[i]
		}
		tend = append(tend, tb)
	}
	op.Dealiasing(tend...)
	return
}

// PrepareStep draws the forcing used by every stage of the next step
func (ns *NS3D) PrepareStep(t, dt float64) {
	if ns.Forcing != nil {
		ns.Forcing.Next(3)
	}
}

// DispersionRelation is the frequency of internal waves, N kh / |k|
func (ns *NS3D) DispersionRelation() (omega []float64) {
	var (
		op = ns.Op
	)
	omega = make([]float64, len(op.K2))
	for i, kk := range op.K2NoZero {
		kh := math.Hypot(op.Kx[i], op.Ky[i])
		omega[i] = ns.N * kh / math.Sqrt(kk)
	}
	return
}

// Estimators only carries the dispersion relation of a buoyant flow
func (ns *NS3D) Estimators() (est time_stepping.Estimators) {
	if ns.Buoyant() {
		est.Dispersion = ns
	}
	return
}
