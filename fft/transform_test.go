package fft

import (
	"math"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gospectral/utils"
)

func testField(shape []int) (f []float64) {
	var (
		n = 1
	)
	for _, s := range shape {
		n *= s
	}
	f = make([]float64, n)
	for i := range f {
		x := float64(i)
		f[i] = math.Sin(0.37*x) + 0.5*math.Cos(1.3*x+0.2) + 0.1*float64(i%7)
	}
	return
}

func TestTransformRoundTrip(t *testing.T) {
	shapes := [][]int{{16}, {8, 12}, {4, 6, 8}, {8, 8, 8}}
	for _, et := range []EngineType{Gonum, GoDSP} {
		for _, shape := range shapes {
			tr, err := NewTransform(shape, et, utils.NewSequential())
			require.NoError(t, err)
			f := testField(shape)
			fFFT := tr.FFT(f)
			back := tr.IFFT(fFFT)
			for i := range f {
				assert.InDeltaf(t, f[i], back[i], 1.e-12, "engine %s, shape %v, index %d", et.Print(), shape, i)
			}
		}
	}
}

func TestTransformModes(t *testing.T) {
	{ // The zero mode is the mean
		tr, err := NewTransform([]int{6, 8}, Gonum, utils.NewSequential())
		require.NoError(t, err)
		f := tr.CreateArrayX()
		for i := range f {
			f[i] = 3.5
		}
		fFFT := tr.FFT(f)
		assert.InDelta(t, 3.5, real(fFFT[0]), 1.e-14)
		for i := 1; i < len(fFFT); i++ {
			assert.InDelta(t, 0., cmplx.Abs(fFFT[i]), 1.e-14)
		}
	}
	{ // cos(x) puts one half in kx = 1
		nx := 16
		for _, et := range []EngineType{Gonum, GoDSP} {
			tr, err := NewTransform([]int{nx}, et, utils.NewSequential())
			require.NoError(t, err)
			f := tr.CreateArrayX()
			for i := range f {
				f[i] = math.Cos(2 * math.Pi * float64(i) / float64(nx))
			}
			fFFT := tr.FFT(f)
			assert.Equal(t, nx/2+1, len(fFFT))
			assert.InDelta(t, 0.5, real(fFFT[1]), 1.e-14)
			assert.InDelta(t, 0., imag(fFFT[1]), 1.e-14)
			assert.InDelta(t, 0., cmplx.Abs(fFFT[2]), 1.e-14)
		}
	}
	{ // sin(y) in 2D lands on ky = 1 and ky = -1
		ny, nx := 8, 4
		tr, err := NewTransform([]int{ny, nx}, Gonum, utils.NewSequential())
		require.NoError(t, err)
		f := tr.CreateArrayX()
		for iy := 0; iy < ny; iy++ {
			for ix := 0; ix < nx; ix++ {
				f[ix+iy*nx] = math.Sin(2 * math.Pi * float64(iy) / float64(ny))
			}
		}
		fFFT := tr.FFT(f)
		nkx := tr.Nkx
		assert.InDelta(t, -0.5, imag(fFFT[1*nkx]), 1.e-14)
		assert.InDelta(t, 0.5, imag(fFFT[(ny-1)*nkx]), 1.e-14)
	}
}

func TestTransformErrors(t *testing.T) {
	_, err := NewTransform([]int{7, 8}, Gonum, utils.NewSequential())
	assert.Error(t, err)
	_, err = NewTransform([]int{2, 4, 6, 8}, Gonum, utils.NewSequential())
	assert.Error(t, err)
	comms := utils.NewThreadGroup(2)
	_, err = NewTransform([]int{8}, Gonum, comms[0])
	assert.Error(t, err)
	comms = utils.NewThreadGroup(4)
	_, err = NewTransform([]int{8, 4}, Gonum, comms[0]) // only 3 kx modes
	assert.Error(t, err)
	_, err = NewEngineType("fftw")
	assert.Error(t, err)
	et, err := NewEngineType(" GoDSP ")
	assert.NoError(t, err)
	assert.Equal(t, GoDSP, et)
}

func TestTransformDistributed(t *testing.T) {
	for _, tc := range []struct {
		shape []int
		NP    int
	}{
		{[]int{8, 8}, 2},
		{[]int{12, 16}, 3},
		{[]int{8, 6, 8}, 2},
		{[]int{6, 4, 12}, 4},
	} {
		seq, err := NewTransform(tc.shape, Gonum, utils.NewSequential())
		require.NoError(t, err)
		f := testField(tc.shape)
		fFFT := seq.FFT(f)

		var (
			comms   = utils.NewThreadGroup(tc.NP)
			wg      sync.WaitGroup
			spectra = make([][]complex128, tc.NP)
			backs   = make([][]float64, tc.NP)
			trs     = make([]*Transform, tc.NP)
		)
		for np := 0; np < tc.NP; np++ {
			trs[np], err = NewTransform(tc.shape, Gonum, comms[np])
			require.NoError(t, err)
		}
		for np := 0; np < tc.NP; np++ {
			wg.Add(1)
			go func(np int) {
				defer wg.Done()
				tr := trs[np]
				i0Min, i0Max := tr.PhysRange()
				slabSize := tr.SizePhysLoc() / (i0Max - i0Min)
				spectra[np] = tr.FFT(f[i0Min*slabSize : i0Max*slabSize])
				backs[np] = tr.IFFT(spectra[np])
			}(np)
		}
		wg.Wait()
		nkx, n01 := seq.Nkx, seq.N0*seq.N1
		for np := 0; np < tc.NP; np++ {
			kMin, kMax := trs[np].SpectRange()
			nk := kMax - kMin
			for r := 0; r < n01; r++ {
				for k := 0; k < nk; k++ {
					assert.InDelta(t, 0., cmplx.Abs(fFFT[r*nkx+kMin+k]-spectra[np][r*nk+k]), 1.e-12)
				}
			}
			i0Min, i0Max := trs[np].PhysRange()
			slabSize := len(backs[np]) / (i0Max - i0Min)
			for i, v := range backs[np] {
				assert.InDelta(t, f[i0Min*slabSize+i], v, 1.e-12)
			}
		}
	}
}
