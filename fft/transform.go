package fft

import (
	"fmt"

	"gonum.org/v1/gonum/cmplxs"

	"github.com/notargets/gospectral/utils"
)

/*
	Real to complex transform for 1, 2 and 3 dimensional periodic fields.

	Physical arrays are row major with x fastest. Internally every problem is
	padded to three axes (n0, n1, n2) with n2 = nx:
		3D: (nz, ny, nx)
		2D: (ny, 1, nx)
		1D: (1, 1, nx)
	Spectral arrays are (n0, n1, nkx) with nkx = nx/2+1.

	With more than one rank, axis 0 of the physical array is split in slabs
	and the spectral array is split along kx. The forward transform runs the x
	and axis 1 passes on the local slab, transposes with an all to all exchange
	and finishes with the axis 0 pass, the inverse runs the same steps backward.

	Forward is normalized by the number of points (the zero mode is the mean),
	Inverse is a plain sum over modes.
*/
type Transform struct {
	Dim        int
	Engine     EngineType
	N0, N1, N2 int
	Nkx        int
	PhysMap    *utils.PartitionMap // Slabs of axis 0, one per rank
	SpectMap   *utils.PartitionMap // Slabs of kx, one per rank
	comm       utils.Communicator
	realX      RealLine
	line1      CmplxLine
	line0      CmplxLine
	// Scratch, owned by the rank
	work            []complex128
	lineIn, lineOut []complex128
}

func NewTransform(shape []int, et EngineType, comm utils.Communicator) (tr *Transform, err error) {
	var (
		NP = comm.NumProc()
	)
	tr = &Transform{
		Dim:    len(shape),
		Engine: et,
		comm:   comm,
	}
	switch tr.Dim {
	case 1:
		tr.N0, tr.N1, tr.N2 = 1, 1, shape[0]
	case 2:
		tr.N0, tr.N1, tr.N2 = shape[0], 1, shape[1]
	case 3:
		tr.N0, tr.N1, tr.N2 = shape[0], shape[1], shape[2]
	default:
		err = fmt.Errorf("transform dimension must be 1, 2 or 3, have %d", tr.Dim)
		return
	}
	for _, n := range shape {
		if n < 2 || n%2 != 0 {
			err = fmt.Errorf("transform sizes have to be even and positive, have %v", shape)
			return
		}
	}
	tr.Nkx = tr.N2/2 + 1
	if NP > 1 {
		if tr.Dim == 1 {
			err = fmt.Errorf("a 1D transform can not be distributed over %d ranks", NP)
			return
		}
		if NP > tr.N0 || NP > tr.Nkx {
			err = fmt.Errorf("too many ranks (%d) for a slab decomposition of shape %v", NP, shape)
			return
		}
	}
	tr.PhysMap = utils.NewPartitionMap(NP, tr.N0)
	tr.SpectMap = utils.NewPartitionMap(NP, tr.Nkx)
	tr.realX = NewRealLine(et, tr.N2)
	if tr.N1 > 1 {
		tr.line1 = NewCmplxLine(et, tr.N1)
	}
	if tr.N0 > 1 {
		tr.line0 = NewCmplxLine(et, tr.N0)
	}
	nmax := max(tr.N0, tr.N1)
	tr.lineIn = make([]complex128, nmax)
	tr.lineOut = make([]complex128, nmax)
	tr.work = make([]complex128, tr.PhysMap.GetBucketDimension(comm.Rank())*tr.N1*tr.Nkx)
	return
}

func (tr *Transform) Comm() utils.Communicator { return tr.comm }

// NumPoints is the global number of physical grid points
func (tr *Transform) NumPoints() int { return tr.N0 * tr.N1 * tr.N2 }

// PhysRange is the range of axis 0 held by this rank in physical space
func (tr *Transform) PhysRange() (i0Min, i0Max int) {
	return tr.PhysMap.GetBucketRange(tr.comm.Rank())
}

// SpectRange is the range of kx indices held by this rank in spectral space
func (tr *Transform) SpectRange() (kMin, kMax int) {
	return tr.SpectMap.GetBucketRange(tr.comm.Rank())
}

func (tr *Transform) SizePhysLoc() int {
	return tr.PhysMap.GetBucketDimension(tr.comm.Rank()) * tr.N1 * tr.N2
}

func (tr *Transform) SizeSpectLoc() int {
	return tr.N0 * tr.N1 * tr.SpectMap.GetBucketDimension(tr.comm.Rank())
}

// ShapePhysLoc is the local physical shape without the padding axes
func (tr *Transform) ShapePhysLoc() []int {
	n0 := tr.PhysMap.GetBucketDimension(tr.comm.Rank())
	return tr.trim(n0, tr.N1, tr.N2)
}

// ShapeSpectLoc is the local spectral shape without the padding axes
func (tr *Transform) ShapeSpectLoc() []int {
	return tr.trim(tr.N0, tr.N1, tr.SpectMap.GetBucketDimension(tr.comm.Rank()))
}

func (tr *Transform) trim(n0, n1, n2 int) []int {
	switch tr.Dim {
	case 1:
		return []int{n2}
	case 2:
		return []int{n0, n2}
	}
	return []int{n0, n1, n2}
}

func (tr *Transform) CreateArrayX() []float64    { return make([]float64, tr.SizePhysLoc()) }
func (tr *Transform) CreateArrayK() []complex128 { return make([]complex128, tr.SizeSpectLoc()) }

// FFT allocates and returns the spectral transform of a physical field
func (tr *Transform) FFT(src []float64) (dst []complex128) {
	dst = tr.CreateArrayK()
	tr.Forward(dst, src)
	return
}

// IFFT allocates and returns the physical field of a spectral field
func (tr *Transform) IFFT(src []complex128) (dst []float64) {
	dst = tr.CreateArrayX()
	tr.Inverse(dst, src)
	return
}

func (tr *Transform) Forward(dst []complex128, src []float64) {
	var (
		N1, N2, Nkx = tr.N1, tr.N2, tr.Nkx
		rank        = tr.comm.Rank()
		NP          = tr.comm.NumProc()
		n0Loc       = tr.PhysMap.GetBucketDimension(rank)
		A           = tr.work
	)
	tr.checkSizes(len(dst), len(src))
	// x pass, one real line per (i0, i1)
	for r := 0; r < n0Loc*N1; r++ {
		tr.realX.Forward(A[r*Nkx:(r+1)*Nkx], src[r*N2:(r+1)*N2])
	}
	// axis 1 pass, local to the slab
	if tr.line1 != nil {
		for i0 := 0; i0 < n0Loc; i0++ {
			base := i0 * N1 * Nkx
			for k := 0; k < Nkx; k++ {
				tr.strided(A, base+k, Nkx, N1, tr.line1.Forward)
			}
		}
	}
	// transpose: slabs of axis 0 become slabs of kx
	send := make([][]complex128, NP)
	for d := 0; d < NP; d++ {
		kMin, kMax := tr.SpectMap.GetBucketRange(d)
		nk := kMax - kMin
		blk := make([]complex128, n0Loc*N1*nk)
		for r := 0; r < n0Loc*N1; r++ {
			copy(blk[r*nk:(r+1)*nk], A[r*Nkx+kMin:r*Nkx+kMax])
		}
		send[d] = blk
	}
	recv := tr.comm.AllToAll(send)
	nkLoc := tr.SpectMap.GetBucketDimension(rank)
	for s := 0; s < NP; s++ {
		i0Min, i0Max := tr.PhysMap.GetBucketRange(s)
		blk := recv[s]
		copy(dst[i0Min*N1*nkLoc:i0Max*N1*nkLoc], blk)
	}
	// axis 0 pass, now local
	if tr.line0 != nil {
		for r := 0; r < N1*nkLoc; r++ {
			tr.strided(dst, r, N1*nkLoc, tr.N0, tr.line0.Forward)
		}
	}
	cmplxs.Scale(complex(1./float64(tr.NumPoints()), 0), dst)
}

func (tr *Transform) Inverse(dst []float64, src []complex128) {
	var (
		N1, N2, Nkx = tr.N1, tr.N2, tr.Nkx
		rank        = tr.comm.Rank()
		NP          = tr.comm.NumProc()
		n0Loc       = tr.PhysMap.GetBucketDimension(rank)
		nkLoc       = tr.SpectMap.GetBucketDimension(rank)
		A           = tr.work
	)
	tr.checkSizes(len(src), len(dst))
	B := make([]complex128, len(src))
	copy(B, src)
	// axis 0 pass
	if tr.line0 != nil {
		for r := 0; r < N1*nkLoc; r++ {
			tr.strided(B, r, N1*nkLoc, tr.N0, tr.line0.Inverse)
		}
	}
	// transpose back: slabs of kx become slabs of axis 0
	send := make([][]complex128, NP)
	for d := 0; d < NP; d++ {
		i0Min, i0Max := tr.PhysMap.GetBucketRange(d)
		send[d] = B[i0Min*N1*nkLoc : i0Max*N1*nkLoc]
	}
	recv := tr.comm.AllToAll(send)
	for s := 0; s < NP; s++ {
		kMin, kMax := tr.SpectMap.GetBucketRange(s)
		nk := kMax - kMin
		blk := recv[s]
		for r := 0; r < n0Loc*N1; r++ {
			copy(A[r*Nkx+kMin:r*Nkx+kMax], blk[r*nk:(r+1)*nk])
		}
	}
	// axis 1 pass
	if tr.line1 != nil {
		for i0 := 0; i0 < n0Loc; i0++ {
			base := i0 * N1 * Nkx
			for k := 0; k < Nkx; k++ {
				tr.strided(A, base+k, Nkx, N1, tr.line1.Inverse)
			}
		}
	}
	// x pass
	for r := 0; r < n0Loc*N1; r++ {
		tr.realX.Inverse(dst[r*N2:(r+1)*N2], A[r*Nkx:(r+1)*Nkx])
	}
}

// strided applies a line transform in place to n values of data starting at offset with the given stride
func (tr *Transform) strided(data []complex128, offset, stride, n int, apply func(dst, src []complex128)) {
	var (
		in, out = tr.lineIn[:n], tr.lineOut[:n]
	)
	for i := 0; i < n; i++ {
		in[i] = data[offset+i*stride]
	}
	apply(out, in)
	for i := 0; i < n; i++ {
		data[offset+i*stride] = out[i]
	}
}

func (tr *Transform) checkSizes(nSpect, nPhys int) {
	if nSpect != tr.SizeSpectLoc() || nPhys != tr.SizePhysLoc() {
		panic(fmt.Sprintf("array sizes (spectral %d, physical %d) do not match the transform (%d, %d)",
			nSpect, nPhys, tr.SizeSpectLoc(), tr.SizePhysLoc()))
	}
}
