package time_stepping

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/cmplx"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gospectral/operators"
	"github.com/notargets/gospectral/state"
	"github.com/notargets/gospectral/utils"
)

type zeroSystem struct{}

func (zeroSystem) Tendencies(y [][]complex128, t float64) (tend [][]complex128) {
	tend = make([][]complex128, len(y))
	for i := range y {
		tend[i] = make([]complex128, len(y[i]))
	}
	return
}

type decaySystem struct{ lambda float64 }

func (ds decaySystem) Tendencies(y [][]complex128, t float64) (tend [][]complex128) {
	tend = make([][]complex128, len(y))
	for i := range y {
		tend[i] = make([]complex128, len(y[i]))
		for j := range y[i] {
			tend[i][j] = complex(-ds.lambda, 0) * y[i][j]
		}
	}
	return
}

// steppedSystem holds a value drawn once per step and records what each stage sees
type steppedSystem struct {
	zeroSystem
	draws  int
	value  float64
	stages []float64
}

func (ss *steppedSystem) PrepareStep(t, dt float64) {
	ss.draws++
	ss.value = t + 10*dt
}

func (ss *steppedSystem) Tendencies(y [][]complex128, t float64) [][]complex128 {
	ss.stages = append(ss.stages, ss.value)
	return ss.zeroSystem.Tendencies(y, t)
}

type fakeDispersion []float64

func (fd fakeDispersion) DispersionRelation() []float64 { return fd }

type fakeGroupPhase struct{ group, phase float64 }

func (fg fakeGroupPhase) GroupPhaseFrequencies() (float64, float64) { return fg.group, fg.phase }

func newState(t *testing.T, dim int, n int, L float64, keys ...string) *state.State {
	op, err := operators.NewOperators(dim,
		operators.Params{NX: n, NY: n, NZ: n, LX: L, LY: L, LZ: L, CoefDealiasing: 1},
		utils.NewSequential())
	require.NoError(t, err)
	return state.NewState(op, keys...)
}

func fill(f []float64, val float64) {
	for i := range f {
		f[i] = val
	}
}

func TestCFL(t *testing.T) {
	assert.Equal(t, 0.5, CFLDeltat(1, []float64{2, 0}, []float64{1, 1}, 0.2))
	assert.Equal(t, 0.2, CFLDeltat(1, []float64{0, 0}, []float64{1, 1}, 0.2))
	assert.InDelta(t, 0.125, CFLDeltat(0.5, []float64{1, 2, 2}, []float64{1, 1, 2}, 1), 1.e-15)

	st := newState(t, 2, 16, 16, "ux", "uy")
	fill(st.Get("ux"), 2)
	par := DefaultParams()
	par.DeltatMax = 1
	var log bytes.Buffer
	sc := NewStabilityController(par, st, &log)
	assert.Panics(t, func() { sc.Update(&StepControl{Deltat: 1, DeltatMax: 1}) })
	sc.Init(DetectCapabilities(st), Estimators{})
	assert.Equal(t, Ready, sc.State)
	assert.Equal(t, CFLTwoComponent, sc.Strategy)
	assert.Equal(t, Criteria{}, sc.Criteria)
	// Each missing estimator is reported once
	assert.Equal(t, 1, strings.Count(log.String(), "dispersion relation not available"))
	assert.Equal(t, 1, strings.Count(log.String(), "group and phase velocities not available"))

	ctl := &StepControl{Deltat: 1, DeltatMax: 1}
	sc.Update(ctl)
	assert.Equal(t, 0.5, ctl.Candidates.CFL)
	assert.Equal(t, FallbackDeltat, ctl.Candidates.Dispersion)
	assert.True(t, math.IsInf(ctl.Candidates.Forcing, 1))
	assert.Equal(t, 0.5, ctl.Deltat)
	{ // Hysteresis, a change of 2% or less is ignored
		ctl.Deltat = 0.509
		sc.Update(ctl)
		assert.Equal(t, 0.509, ctl.Deltat)
		ctl.Deltat = 0.492
		sc.Update(ctl)
		assert.Equal(t, 0.492, ctl.Deltat)
		ctl.Deltat = 0.511
		sc.Update(ctl)
		assert.Equal(t, 0.5, ctl.Deltat)
	}
}

func TestStepBound(t *testing.T) {
	st := newState(t, 3, 8, 2*math.Pi, "vx", "vy", "vz")
	par := DefaultParams()
	par.DeltatMax = 0.05
	sc := NewStabilityController(par, st, nil)
	sc.Init(DetectCapabilities(st), Estimators{})
	assert.Equal(t, CFLThreeComponent, sc.Strategy)
	ctl := &StepControl{Deltat: par.DeltatMax, DeltatMax: par.DeltatMax}
	for _, u := range []float64{0, 1.e-9, 1.e-3, 0.1, 1, 10, 1.e3, 1.e8, 2, 0} {
		fill(st.Get("vx"), u)
		fill(st.Get("vz"), -u/3)
		sc.Update(ctl)
		assert.True(t, ctl.Deltat <= par.DeltatMax, "deltat %v for u = %v", ctl.Deltat, u)
	}
	assert.Equal(t, par.DeltatMax, ctl.Deltat) // the field is at rest again
}

func TestCriteria(t *testing.T) {
	{ // Dispersion needs a buoyancy field
		st := newState(t, 2, 8, 1, "ux", "uy")
		sc := NewStabilityController(DefaultParams(), st, nil)
		sc.Init(DetectCapabilities(st), Estimators{Dispersion: fakeDispersion{1, 2}})
		assert.False(t, sc.Criteria.Dispersion)
	}
	st := newState(t, 2, 8, 1, "ux", "uy", "b")
	par := DefaultParams()
	par.CoefDispersion, par.CoefGroup, par.CoefPhase = 0.5, 0.2, 0.4
	par.ForcingEnabled, par.ForcingRate = true, 8
	par.DeltatMax = 10
	sc := NewStabilityController(par, st, nil)
	sc.Init(DetectCapabilities(st), Estimators{
		Dispersion: fakeDispersion{0, 2, 4},
		GroupPhase: fakeGroupPhase{group: 2, phase: 0},
	})
	assert.Equal(t, Criteria{Dispersion: true, GroupPhase: true, Forcing: true}, sc.Criteria)
	ctl := &StepControl{Deltat: 1, DeltatMax: par.DeltatMax}
	sc.Update(ctl)
	c := ctl.Candidates
	assert.InDelta(t, 0.5*2*math.Pi/4, c.Dispersion, 1.e-15)
	assert.InDelta(t, 0.1, c.Group, 1.e-15)
	assert.True(t, math.IsInf(c.Phase, 1)) // no phase velocity
	assert.InDelta(t, 0.5, c.Forcing, 1.e-15)
	assert.Equal(t, par.DeltatMax, c.CFL)
	assert.InDelta(t, 0.1, ctl.Deltat, 1.e-15)
	{ // Strategies follow the velocity components present
		st1 := newState(t, 1, 8, 1, "u")
		sc1 := NewStabilityController(par, st1, nil)
		sc1.Init(DetectCapabilities(st1), Estimators{})
		assert.Equal(t, CFLOneComponent, sc1.Strategy)
		stb := newState(t, 2, 8, 1, "b")
		scb := NewStabilityController(par, stb, nil)
		scb.Init(DetectCapabilities(stb), Estimators{})
		assert.Equal(t, CFLNone, scb.Strategy)
		ctl := &StepControl{Deltat: 1, DeltatMax: 10}
		scb.Update(ctl)
		assert.InDelta(t, 0.5, ctl.Deltat, 1.e-15) // forcing
	}
}

func TestControllerDistributed(t *testing.T) {
	var (
		NP     = 2
		comms  = utils.NewThreadGroup(NP)
		wg     sync.WaitGroup
		steps  = make([]float64, NP)
		par    = DefaultParams()
		opPars = operators.Params{NX: 16, NY: 16, LX: 16, LY: 16, CoefDealiasing: 1}
	)
	par.DeltatMax = 1
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			op, err := operators.NewOperators(2, opPars, comms[np])
			if err != nil {
				panic(err)
			}
			st := state.NewState(op, "ux", "uy")
			fill(st.Get("ux"), float64(np+1)) // rank 1 holds the fastest flow
			sc := NewStabilityController(par, st, nil)
			sc.Init(DetectCapabilities(st), Estimators{Dispersion: fakeDispersion{float64(np)}})
			ctl := &StepControl{Deltat: 1, DeltatMax: 1}
			sc.Update(ctl)
			steps[np] = ctl.Deltat
		}(np)
	}
	wg.Wait()
	assert.Equal(t, []float64{0.5, 0.5}, steps)
}

func TestTimeIntegrator(t *testing.T) {
	{ // Non finite values stop the run with the iteration and time of the failed step
		st := newState(t, 2, 8, 1, "ux", "uy")
		par := DefaultParams()
		par.UseCFL, par.UseTEnd, par.ItEnd, par.Deltat0 = false, false, 10, 0.1
		ts, err := NewTimeStepping(par, st, NewRK4(zeroSystem{}, st.Oper().Dealiasing), Estimators{}, nil, false)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			require.NoError(t, ts.Integrator.OneTimeStep())
		}
		st.GetFFT("uy")[5] = cmplx.Inf()
		err = ts.Start(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNumericalDivergence))
		var nde *NumericalDivergenceError
		require.True(t, errors.As(err, &nde))
		assert.Equal(t, 3, nde.It)
		assert.InDelta(t, 0.3, nde.T, 1.e-15)
		assert.Equal(t, 3, ts.It())
	}
	{ // No shear modes, the k0 = 0 row is removed and the rest is left alone
		st := newState(t, 2, 8, 2*math.Pi, "ux", "uy")
		X := st.Oper().XYZLoc()
		ux := make([]float64, len(X[0]))
		for i := range ux {
			ux[i] = math.Sin(X[1][i]) + math.Cos(X[0][i])
		}
		st.InitPhys(map[string][]float64{"ux": ux})
		ctl := &StepControl{Deltat: 0.1, DeltatMax: 0.1}
		ti := NewTimeIntegrator(st, NewRK4(zeroSystem{}, nil), true, ctl)
		require.NoError(t, ti.OneTimeStep())
		for i, v := range st.Get("ux") {
			assert.InDelta(t, math.Sin(X[1][i]), v, 1.e-14)
		}
		assert.Equal(t, 1, ctl.It)
	}
}

func TestStepPreparation(t *testing.T) {
	st := newState(t, 1, 8, 1, "u")
	sys := &steppedSystem{}
	ctl := &StepControl{Deltat: 0.1, DeltatMax: 0.1}
	ti := NewTimeIntegrator(st, NewRK4(sys, nil), false, ctl)
	require.NoError(t, ti.OneTimeStep())
	require.NoError(t, ti.OneTimeStep())
	// One draw per step, shared by the four stages
	assert.Equal(t, 2, sys.draws)
	require.Equal(t, 8, len(sys.stages))
	for i, v := range sys.stages {
		assert.InDelta(t, float64(i/4)*0.1+1, v, 1.e-15)
	}
	{ // Systems without per step data are stepped as before
		rk := NewRK4(zeroSystem{}, nil)
		assert.NotPanics(t, func() { rk.PrepareStep(0, 0.1) })
	}
}

func TestRK4Order(t *testing.T) {
	solve := func(dt float64) (e float64) {
		var (
			rk = NewRK4(decaySystem{lambda: 2}, nil)
			y  = [][]complex128{{1, 0.5}}
			n  = int(math.Round(1 / dt))
		)
		for i := 0; i < n; i++ {
			y = rk.Step(y, float64(i)*dt, dt)
		}
		assert.InDelta(t, 0., cmplx.Abs(2*y[0][1]-y[0][0]), 1.e-15)
		return cmplx.Abs(y[0][0] - complex(math.Exp(-2), 0))
	}
	e1, e2 := solve(0.05), solve(0.025)
	assert.InDelta(t, 4., math.Log2(e1/e2), 0.15)
	assert.True(t, e2 < 1.e-7)
}

func TestTimeStepping(t *testing.T) {
	{ // Clipped on the final time
		st := newState(t, 2, 8, 1, "ux", "uy")
		par := DefaultParams()
		par.UseCFL, par.UseTEnd, par.TEnd, par.Deltat0, par.PrintEvery = false, true, 1, 0.3, 1
		var log bytes.Buffer
		ts, err := NewTimeStepping(par, st, NewRK4(zeroSystem{}, nil), Estimators{}, &log, true)
		require.NoError(t, err)
		require.NoError(t, ts.Start(context.Background()))
		assert.Equal(t, 4, ts.It())
		assert.InDelta(t, 1., ts.T(), 1.e-14)
		assert.Equal(t, 0.3, ts.Deltat()) // the clipped step is not kept
		assert.Equal(t, 4, strings.Count(log.String(), "it = "))
		assert.Contains(t, log.String(), "Fixed time step")
	}
	{ // Adaptive steps never go above the maximum
		st := newState(t, 2, 16, 16, "ux", "uy")
		fill(st.Get("ux"), 2)
		st.SpectFromPhys()
		par := DefaultParams()
		par.UseTEnd, par.ItEnd, par.Deltat0, par.DeltatMax = false, 3, 5, 0.4
		ts, err := NewTimeStepping(par, st, NewRK4(zeroSystem{}, nil), Estimators{}, nil, false)
		require.NoError(t, err)
		assert.Equal(t, 0.4, ts.Deltat())
		require.NoError(t, ts.Start(context.Background()))
		assert.Equal(t, 3, ts.It())
		assert.InDelta(t, 1.2, ts.T(), 1.e-14)
	}
	{ // Cancelled between steps
		st := newState(t, 1, 8, 1, "u")
		ts, err := NewTimeStepping(DefaultParams(), st, NewRK4(zeroSystem{}, nil), Estimators{}, nil, false)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.True(t, errors.Is(ts.Start(ctx), context.Canceled))
		assert.Equal(t, 0, ts.It())
	}
	{ // Configuration errors
		st := newState(t, 1, 8, 1, "u")
		par := DefaultParams()
		par.NoShearModes = true
		_, err := NewTimeStepping(par, st, NewRK4(zeroSystem{}, nil), Estimators{}, nil, false)
		assert.True(t, errors.Is(err, utils.ErrConfiguration))
		for _, mod := range []func(p *Params){
			func(p *Params) { p.Deltat0 = 0 },
			func(p *Params) { p.DeltatMax = -1 },
			func(p *Params) { p.TEnd = 0 },
			func(p *Params) { p.CFL = 0 },
			func(p *Params) { p.Hysteresis = -0.1 },
			func(p *Params) { p.ForcingEnabled, p.ForcingRate = true, 0 },
		} {
			par := DefaultParams()
			mod(&par)
			assert.True(t, errors.Is(par.Validate(), utils.ErrConfiguration))
		}
	}
}
