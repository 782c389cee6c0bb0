package NS2DStrat

import (
	"math"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/notargets/gospectral/operators"
	"github.com/notargets/gospectral/time_stepping"
	"github.com/notargets/gospectral/utils"
)

/*
Two dimensional stratified incompressible flow in the Boussinesq approximation,
y is the vertical axis and b the buoyancy:
				∂u/∂t + (u·∇)u = -∇p + b ŷ + ν ∇²u + f
				∂b/∂t + u·∇b   = -N² uy + κ ∇²b
				∇·u = 0

The pressure is removed by projecting the velocity tendency on divergence
free fields. Internal gravity waves follow ω = N |kx| / |k|.
*/
type NS2DStrat struct {
	Op        *operators.Operators
	N         float64 // Brunt-Vaisala frequency
	Forcing   *operators.Forcing
	dissU     []float64
	dissB     []float64
	KKNotZero []float64 // |k| with the zero mode regularized
}

var Keys = []string{"ux", "uy", "b"}

func NewNS2DStrat(op *operators.Operators, N, nu2, nu8, kappa2 float64, forcing *operators.Forcing) (ns *NS2DStrat) {
	if op.Dim != 2 {
		panic("NS2DStrat needs a 2D grid")
	}
	ns = &NS2DStrat{
		Op:        op,
		N:         N,
		Forcing:   forcing,
		dissU:     utils.Dissipation(op.K2, nu2, nu8),
		dissB:     utils.Dissipation(op.K2, kappa2, nu8),
		KKNotZero: make([]float64, len(op.K2)),
	}
	for i, kk := range op.K2NoZero {
		ns.KKNotZero[i] = math.Sqrt(kk)
	}
	return
}

func (ns *NS2DStrat) Keys() []string { return Keys }

func (ns *NS2DStrat) Tendencies(y [][]complex128, t float64) (tend [][]complex128) {
	var (
		op                 = ns.Op
		uxFFT, uyFFT, bFFT = y[0], y[1], y[2]
		N2                 = complex(ns.N*ns.N, 0)
	)
	v := [][]float64{op.IFFT(uxFFT), op.IFFT(uyFFT)}
	b := op.IFFT(bFFT)
	adv := op.VGradV(v, [][]complex128{uxFFT, uyFFT})
	nx, ny := op.FFT(adv[0]), op.FFT(adv[1])
	nb := op.FFT(op.VGradScalar(v, b, bFFT))
	cmplxs.Scale(-1, nx)
	cmplxs.Scale(-1, ny)
	cmplxs.Add(ny, bFFT)
	if ns.Forcing != nil {
		f := ns.Forcing.Current(2)
		cmplxs.Add(nx, f[0])
		cmplxs.Add(ny, f[1])
	}
	tx, ty := op.ProjectPerpK2D(nx, ny)
	tb := make([]complex128, len(bFFT))
	for i := range tb {
		tx[i] -= complex(ns.dissU[i], 0) * uxFFT[i]
		ty[i] -= complex(ns.dissU[i], 0) * uyFFT[i]
		tb[i] = -nb[i] - N2*uyFFT[i] - complex(ns.dissB[i], 0)*bFFT[i]
	}
	tend = [][]complex128{tx, ty, tb}
	op.Dealiasing(tend...)
	return
}

// PrepareStep draws the forcing used by every stage of the next step
func (ns *NS2DStrat) PrepareStep(t, dt float64) {
	if ns.Forcing != nil {
		ns.Forcing.Next(2)
	}
}

// DispersionRelation is the frequency of internal waves, N |kx| / |k|
func (ns *NS2DStrat) DispersionRelation() (omega []float64) {
	omega = make([]float64, len(ns.KKNotZero))
	for i, kk := range ns.KKNotZero {
		omega[i] = ns.N * math.Abs(ns.Op.Kx[i]) / kk
	}
	return
}

/*
GroupPhaseFrequencies bounds the transport by internal waves,
				freq_group = max|c_gx|/dx + max|c_gy|/dy
				freq_phase = max|c_p|/dx
with
				c_gx = (N/|k|) ky²/|k|²,   c_gy = -(N/|k|) kx ky/|k|²,   c_p = N kx/|k|²
*/
func (ns *NS2DStrat) GroupPhaseFrequencies() (freqGroup, freqPhase float64) {
	var (
		op             = ns.Op
		maxCgx, maxCgy float64
		maxCp          float64
	)
	for i, kk := range ns.KKNotZero {
		kx, ky := op.Kx[i], op.Ky[i]
		k3 := kk * kk * kk
		maxCgx = math.Max(maxCgx, math.Abs(ns.N*ky*ky/k3))
		maxCgy = math.Max(maxCgy, math.Abs(ns.N*kx*ky/k3))
		maxCp = math.Max(maxCp, math.Abs(ns.N*kx/(kk*kk)))
	}
	freqGroup = maxCgx/op.DeltaX + maxCgy/op.DeltaY
	freqPhase = maxCp / op.DeltaX
	return
}

func (ns *NS2DStrat) Estimators() (est time_stepping.Estimators) {
	return time_stepping.Estimators{Dispersion: ns, GroupPhase: ns}
}
