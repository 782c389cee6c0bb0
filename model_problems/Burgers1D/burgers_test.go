package Burgers1D

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gospectral/operators"
	"github.com/notargets/gospectral/time_stepping"
	"github.com/notargets/gospectral/utils"
)

func TestBurgers1D(t *testing.T) {
	op, err := operators.NewOperators(1,
		operators.Params{NX: 32, LX: 2 * math.Pi, CoefDealiasing: 2. / 3}, utils.NewSequential())
	require.NoError(t, err)
	b := NewBurgers1D(op, 0.1, 0, nil)
	assert.Equal(t, []string{"u"}, b.Keys())
	assert.Nil(t, b.Estimators().Dispersion)
	X := op.XYZLoc()
	u := make([]float64, len(X[0]))
	for i := range u {
		u[i] = 0.3 + math.Sin(X[0][i])
	}
	uFFT := op.FFT(u)
	tend := b.Tendencies([][]complex128{uFFT}, 0)[0]
	// The mean is conserved
	assert.InDelta(t, 0., cmplx.Abs(tend[0]), 1.e-15)
	// -u du/dx = -0.3 cos(x) - sin(2x)/2, diffusion -0.1 sin(x)
	expected := make([]float64, len(u))
	for i, x := range X[0] {
		expected[i] = -0.3*math.Cos(x) - 0.5*math.Sin(2*x) - 0.1*math.Sin(x)
	}
	for i, v := range op.IFFT(tend) {
		assert.InDelta(t, expected[i], v, 1.e-13)
	}
	assert.Panics(t, func() {
		op2, _ := operators.NewOperators(2, operators.Params{NX: 8, NY: 8, LX: 1, LY: 1, CoefDealiasing: 1}, utils.NewSequential())
		NewBurgers1D(op2, 0, 0, nil)
	})
}

func TestForcedStages(t *testing.T) {
	op, err := operators.NewOperators(1,
		operators.Params{NX: 32, LX: 2 * math.Pi, CoefDealiasing: 2. / 3}, utils.NewSequential())
	require.NoError(t, err)
	fo, err := operators.NewForcing(op, 1, 1, 3, 5)
	require.NoError(t, err)
	b := NewBurgers1D(op, 0, 0, fo)
	zero := [][]complex128{op.Tr.CreateArrayK()}

	b.PrepareStep(0, 0.1)
	first := b.Tendencies(zero, 0)[0]
	assert.NotEqual(t, complex128(0), first[1])
	// Every stage of the step sees the same forcing
	for _, tStage := range []float64{0.05, 0.05, 0.1} {
		assert.Equal(t, first, b.Tendencies(zero, tStage)[0])
	}
	b.PrepareStep(0.1, 0.1)
	assert.NotEqual(t, first, b.Tendencies(zero, 0.1)[0])

	{ // Through the integrator the draw happens once per step
		rk := time_stepping.NewRK4(b, op.Dealiasing)
		rk.PrepareStep(0.2, 0.1)
		f := fo.Current(1)[0]
		y1 := rk.Step(zero, 0.2, 0.1)
		assert.Equal(t, f, fo.Current(1)[0])
		assert.True(t, cmplx.Abs(y1[0][1]) > 0)
	}
}
