package operators

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/notargets/gospectral/utils"
)

/*
	Forcing injects random phase modes on a band of low wavenumbers,
	KMin <= |k|/dk <= KMax with dk the smallest wavenumber step of the grid.
	The kx = 0 and Nyquist planes are never forced, so the physical forcing
	stays real.

	Every rank draws the phases of all the forced modes of the domain in the
	same order and keeps its own, the generators stay in step without any
	communication.
*/
type Forcing struct {
	Rate       float64
	KMin, KMax float64
	Amplitude  float64
	NumModes   int
	op         *Operators
	local      []int // local spectral index of each forced mode, -1 when another rank holds it
	rng        *rand.Rand
	current    [][]complex128 // last draw, held for the whole time step
}

func NewForcing(op *Operators, rate, kMin, kMax float64, seed uint64) (fo *Forcing, err error) {
	var (
		tr   = op.Tr
		dk   = op.DeltaKx
		rank = tr.Comm().Rank()
	)
	if !(rate > 0) || kMin < 0 || kMax < kMin {
		err = fmt.Errorf("%w: forcing needs a positive rate and 0 <= KMin <= KMax, have %v, [%v, %v]",
			utils.ErrConfiguration, rate, kMin, kMax)
		return
	}
	if op.Dim > 1 {
		dk = math.Min(dk, op.DeltaKy)
	}
	if op.Dim > 2 {
		dk = math.Min(dk, op.DeltaKz)
	}
	fo = &Forcing{
		Rate: rate,
		KMin: kMin,
		KMax: kMax,
		op:   op,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	var k0, k1 []float64
	switch op.Dim {
	case 1:
		k0, k1 = []float64{0}, []float64{0}
	case 2:
		k0, k1 = op.KY, []float64{0}
	case 3:
		k0, k1 = op.KZ, op.KY
	}
	for i0 := 0; i0 < tr.N0; i0++ {
		for i1 := 0; i1 < tr.N1; i1++ {
			for kx := 1; kx < tr.Nkx-1; kx++ {
				kk := math.Sqrt(sq(float64(kx)*op.DeltaKx) + sq(k0[i0]) + sq(k1[i1]))
				if kk < kMin*dk || kk > kMax*dk {
					continue
				}
				local := -1
				if bn, kxMin, _ := tr.SpectMap.GetBucket(kx); bn == rank {
					local = op.Index(i0, i1, kx-kxMin)
				}
				fo.local = append(fo.local, local)
			}
		}
	}
	fo.NumModes = len(fo.local)
	if fo.NumModes == 0 {
		err = fmt.Errorf("%w: no wavenumber of the grid in the forcing band [%v, %v]",
			utils.ErrConfiguration, kMin, kMax)
		fo = nil
		return
	}
	kf := 0.5 * (kMin + kMax) * dk
	fo.Amplitude = math.Pow(rate, 2./3) * math.Cbrt(kf) / math.Sqrt(float64(fo.NumModes))
	return
}

// TimeScale is the characteristic time of the forcing, 1/rate^(1/3)
func (fo *Forcing) TimeScale() float64 { return 1. / math.Cbrt(fo.Rate) }

// Next draws a new spectral forcing with nComp components and keeps it as the
// current one. A vector with one component per axis is made divergence free.
func (fo *Forcing) Next(nComp int) (fFFT [][]complex128) {
	var (
		op = fo.op
	)
	fFFT = make([][]complex128, nComp)
	for c := range fFFT {
		fFFT[c] = op.Tr.CreateArrayK()
	}
	for _, ind := range fo.local {
		for c := 0; c < nComp; c++ {
			phase := 2 * math.Pi * fo.rng.Float64()
			if ind >= 0 {
				fFFT[c][ind] = cmplx.Rect(fo.Amplitude, phase)
			}
		}
	}
	if nComp == op.Dim && op.Dim > 1 {
		fFFT = op.Project(fFFT)
	}
	fo.current = fFFT
	return
}

// Current is the forcing of the ongoing time step, drawn on first use
func (fo *Forcing) Current(nComp int) [][]complex128 {
	if len(fo.current) != nComp {
		return fo.Next(nComp)
	}
	return fo.current
}

func sq(x float64) float64 { return x * x }
