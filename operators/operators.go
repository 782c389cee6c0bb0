package operators

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gospectral/fft"
	"github.com/notargets/gospectral/utils"
)

type Params struct {
	NX, NY, NZ     int
	LX, LY, LZ     float64
	CoefDealiasing float64
	TypeFFT        string
}

/*
	Operators owns the wavenumber grid and the transform of one rank.

	Spectral arrays are stored as (n0, n1, nkLoc) with kx fastest, the same
	padded layout used by fft.Transform:
		3D: (nz, ny, nkx), Kz varies along axis 0, Ky along axis 1
		2D: (ny, 1, nkx),  Ky varies along axis 0
		1D: (1, 1, nkx)
	Everything here is read only once NewOperators returns.
*/
type Operators struct {
	Dim                       int
	Par                       Params
	Tr                        *fft.Transform
	DeltaX, DeltaY, DeltaZ    float64
	DeltaKx, DeltaKy, DeltaKz float64
	// Folded wavenumbers per axis, KX only covers the local kx slab
	KX, KY, KZ []float64
	// Fields with the local spectral shape, Ky and Kz are nil below 2D and 3D
	Kx, Ky, Kz    []float64
	K2, K2NoZero  []float64
	iK            [][]complex128 // i K per axis, x first
	minusK2       []complex128
	dealiasedMask []bool
	nkLoc         int
}

const K2Zero = 1.e-14

func NewOperators(dim int, par Params, comm utils.Communicator) (op *Operators, err error) {
	var (
		et    fft.EngineType
		shape []int
	)
	if dim < 1 || dim > 3 {
		err = fmt.Errorf("%w: dimension must be 1, 2 or 3, have %d", utils.ErrConfiguration, dim)
		return
	}
	ns := []int{par.NX, par.NY, par.NZ}[:dim]
	ls := []float64{par.LX, par.LY, par.LZ}[:dim]
	for i := range ns {
		if ns[i] <= 0 || ns[i]%2 != 0 {
			err = fmt.Errorf("%w: resolutions must be positive and even, have %v", utils.ErrConfiguration, ns)
			return
		}
		if !(ls[i] > 0) {
			err = fmt.Errorf("%w: domain lengths must be positive, have %v", utils.ErrConfiguration, ls)
			return
		}
	}
	if !(par.CoefDealiasing > 0 && par.CoefDealiasing <= 1) {
		err = fmt.Errorf("%w: dealiasing coefficient must be in (0, 1], have %v",
			utils.ErrConfiguration, par.CoefDealiasing)
		return
	}
	if et, err = fft.NewEngineType(par.TypeFFT); err != nil {
		err = fmt.Errorf("%w: %s", utils.ErrConfiguration, err.Error())
		return
	}
	// Physical shape, slowest axis first
	for i := dim - 1; i >= 0; i-- {
		shape = append(shape, ns[i])
	}
	op = &Operators{
		Dim: dim,
		Par: par,
	}
	if op.Tr, err = fft.NewTransform(shape, et, comm); err != nil {
		err = fmt.Errorf("%w: %s", utils.ErrConfiguration, err.Error())
		op = nil
		return
	}
	op.DeltaX, op.DeltaKx = par.LX/float64(par.NX), 2*math.Pi/par.LX
	kMin, kMax := op.Tr.SpectRange()
	op.nkLoc = kMax - kMin
	op.KX = make([]float64, op.nkLoc)
	for k := range op.KX {
		op.KX[k] = float64(kMin+k) * op.DeltaKx
	}
	if dim > 1 {
		op.DeltaY, op.DeltaKy = par.LY/float64(par.NY), 2*math.Pi/par.LY
		op.KY = Folded(par.NY, op.DeltaKy)
	}
	if dim > 2 {
		op.DeltaZ, op.DeltaKz = par.LZ/float64(par.NZ), 2*math.Pi/par.LZ
		op.KZ = Folded(par.NZ, op.DeltaKz)
	}
	op.buildFields(kMin == 0)
	op.buildDealiasing()
	return
}

// Folded returns the wavenumbers of a complex axis in transform order, [0..n/2, -n/2+1..-1]*dk
func Folded(n int, dk float64) (k []float64) {
	k = make([]float64, n)
	for i := range k {
		if i <= n/2 {
			k[i] = float64(i) * dk
		} else {
			k[i] = float64(i-n) * dk
		}
	}
	return
}

// Index of spectral element (i0, i1, k) in the local slab
func (op *Operators) Index(i0, i1, k int) int {
	return (i0*op.Tr.N1+i1)*op.nkLoc + k
}

func (op *Operators) buildFields(ownsZeroMode bool) {
	var (
		n  = op.Tr.SizeSpectLoc()
		N1 = op.Tr.N1
	)
	op.Kx = make([]float64, n)
	op.K2 = make([]float64, n)
	if op.Dim > 1 {
		op.Ky = make([]float64, n)
	}
	if op.Dim > 2 {
		op.Kz = make([]float64, n)
	}
	for i0 := 0; i0 < op.Tr.N0; i0++ {
		for i1 := 0; i1 < N1; i1++ {
			for k := 0; k < op.nkLoc; k++ {
				ind := op.Index(i0, i1, k)
				op.Kx[ind] = op.KX[k]
				switch op.Dim {
				case 2:
					op.Ky[ind] = op.KY[i0]
				case 3:
					op.Ky[ind] = op.KY[i1]
					op.Kz[ind] = op.KZ[i0]
				}
			}
		}
	}
	for _, K := range [][]float64{op.Kx, op.Ky, op.Kz} {
		for i, kk := range K {
			op.K2[i] += kk * kk
		}
	}
	op.iK = make([][]complex128, op.Dim)
	for d, K := range op.K() {
		op.iK[d] = make([]complex128, n)
		for i, kk := range K {
			op.iK[d][i] = complex(0, kk)
		}
	}
	op.minusK2 = make([]complex128, n)
	for i, kk := range op.K2 {
		op.minusK2[i] = complex(-kk, 0)
	}
	op.K2NoZero = make([]float64, n)
	copy(op.K2NoZero, op.K2)
	if ownsZeroMode {
		op.K2NoZero[0] = K2Zero
	}
}

// Comm is the communicator shared by the transform and the reductions
func (op *Operators) Comm() utils.Communicator { return op.Tr.Comm() }

func (op *Operators) FFT(f []float64) []complex128  { return op.Tr.FFT(f) }
func (op *Operators) IFFT(f []complex128) []float64 { return op.Tr.IFFT(f) }

// Deltas returns the grid spacing of each axis, x first
func (op *Operators) Deltas() []float64 {
	return []float64{op.DeltaX, op.DeltaY, op.DeltaZ}[:op.Dim]
}

// K returns the wavenumber fields of each axis, x first
func (op *Operators) K() [][]float64 {
	return [][]float64{op.Kx, op.Ky, op.Kz}[:op.Dim]
}

// XYZLoc returns the coordinates of every local physical point, x first
func (op *Operators) XYZLoc() (X [][]float64) {
	var (
		tr           = op.Tr
		i0Min, i0Max = tr.PhysRange()
		deltas       = op.Deltas()
	)
	X = make([][]float64, op.Dim)
	for d := range X {
		X[d] = make([]float64, tr.SizePhysLoc())
	}
	ind := 0
	for i0 := i0Min; i0 < i0Max; i0++ {
		for i1 := 0; i1 < tr.N1; i1++ {
			for ix := 0; ix < tr.N2; ix++ {
				X[0][ind] = float64(ix) * deltas[0]
				switch op.Dim {
				case 2:
					X[1][ind] = float64(i0) * deltas[1]
				case 3:
					X[1][ind] = float64(i1) * deltas[1]
					X[2][ind] = float64(i0) * deltas[2]
				}
				ind++
			}
		}
	}
	return
}

// MaxAbs is the global maximum of |f|, NaN when any rank holds a NaN
func (op *Operators) MaxAbs(f []float64) float64 {
	var local float64
	if len(f) != 0 {
		local = floats.Norm(f, math.Inf(1))
	}
	return op.Comm().AllReduceMax(local)
}

// MaxOf is the global maximum of f, -Inf for an empty field on every rank
func (op *Operators) MaxOf(f []float64) float64 {
	local := math.Inf(-1)
	if len(f) != 0 {
		local = floats.Max(f)
	}
	return op.Comm().AllReduceMax(local)
}

// MeanEnergy is the domain mean of |v|^2/2
func (op *Operators) MeanEnergy(v [][]float64) float64 {
	var local float64
	for _, vc := range v {
		local += 0.5 * floats.Dot(vc, vc)
	}
	return op.Comm().AllReduceSum(local) / float64(op.Tr.NumPoints())
}
