package operators

import (
	"fmt"
	"math"
)

// SpectralSet is anything holding spectral fields that must be dealiased together
type SpectralSet interface {
	SpectralFields() [][]complex128
}

func (op *Operators) buildDealiasing() {
	var (
		coef = op.Par.CoefDealiasing
	)
	cutoff := func(n int, dk float64) float64 { return coef * dk * float64(n/2) }
	cx := cutoff(op.Par.NX, op.DeltaKx)
	cy := cutoff(op.Par.NY, op.DeltaKy)
	cz := cutoff(op.Par.NZ, op.DeltaKz)
	op.dealiasedMask = make([]bool, op.Tr.SizeSpectLoc())
	for i := range op.dealiasedMask {
		cond := math.Abs(op.Kx[i]) > cx
		if op.Dim > 1 {
			cond = cond || math.Abs(op.Ky[i]) > cy
		}
		if op.Dim > 2 {
			cond = cond || math.Abs(op.Kz[i]) > cz
		}
		op.dealiasedMask[i] = cond
	}
}

// NumDealiased is the number of local modes zeroed by the dealiasing
func (op *Operators) NumDealiased() (n int) {
	for _, m := range op.dealiasedMask {
		if m {
			n++
		}
	}
	return
}

// Dealiasing zeroes the modes outside the box kept after dealiasing, in place
func (op *Operators) Dealiasing(fields ...[]complex128) {
	for _, f := range fields {
		if len(f) != len(op.dealiasedMask) {
			panic(fmt.Sprintf("spectral field of length %d does not match the grid (%d)",
				len(f), len(op.dealiasedMask)))
		}
		for i, m := range op.dealiasedMask {
			if m {
				f[i] = 0
			}
		}
	}
}

func (op *Operators) DealiasingSet(set SpectralSet) {
	op.Dealiasing(set.SpectralFields()...)
}
