package time_stepping

import (
	"gonum.org/v1/gonum/cmplxs"
)

// System supplies the time derivative of a spectral state
type System interface {
	Tendencies(stateFFT [][]complex128, t float64) (tendFFT [][]complex128)
}

// StepPreparer is implemented by systems holding data that stays fixed over a
// whole time step, like a random forcing. PrepareStep runs once before the stages.
type StepPreparer interface {
	PrepareStep(t, dt float64)
}

// Stepper advances a spectral state by dt and returns the new state
type Stepper interface {
	Step(stateFFT [][]complex128, t, dt float64) [][]complex128
}

// RK4 is the classical four stage Runge-Kutta scheme, every stage is dealiased
type RK4 struct {
	Sys     System
	Dealias func(fields ...[]complex128)
}

func NewRK4(sys System, dealias func(fields ...[]complex128)) *RK4 {
	if dealias == nil {
		dealias = func(...[]complex128) {}
	}
	return &RK4{Sys: sys, Dealias: dealias}
}

// PrepareStep forwards to the system when it needs it
func (rk *RK4) PrepareStep(t, dt float64) {
	if sp, ok := rk.Sys.(StepPreparer); ok {
		sp.PrepareStep(t, dt)
	}
}

func (rk *RK4) Step(y0 [][]complex128, t, dt float64) (y1 [][]complex128) {
	var (
		half  = complex(dt/2, 0)
		sixth = complex(dt/6, 0)
		third = complex(dt/3, 0)
	)
	stage := func(k [][]complex128, h complex128) (ys [][]complex128) {
		ys = make([][]complex128, len(y0))
		for i := range y0 {
			ys[i] = cmplxs.AddScaledTo(make([]complex128, len(y0[i])), y0[i], h, k[i])
		}
		rk.Dealias(ys...)
		return
	}
	k1 := rk.Sys.Tendencies(y0, t)
	k2 := rk.Sys.Tendencies(stage(k1, half), t+dt/2)
	k3 := rk.Sys.Tendencies(stage(k2, half), t+dt/2)
	k4 := rk.Sys.Tendencies(stage(k3, complex(dt, 0)), t+dt)
	y1 = make([][]complex128, len(y0))
	for i := range y0 {
		y1[i] = cmplxs.AddScaledTo(make([]complex128, len(y0[i])), y0[i], sixth, k1[i])
		cmplxs.AddScaled(y1[i], third, k2[i])
		cmplxs.AddScaled(y1[i], third, k3[i])
		cmplxs.AddScaled(y1[i], sixth, k4[i])
	}
	rk.Dealias(y1...)
	return
}
