package time_stepping

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/notargets/gospectral/state"
	"github.com/notargets/gospectral/utils"
)

type TimeStepping struct {
	Par        Params
	Ctl        StepControl
	Controller *StabilityController // nil with a fixed step size
	Integrator *TimeIntegrator
	St         *state.State
	Verbose    bool
	log        io.Writer
	velocity   []string
}

func NewTimeStepping(par Params, st *state.State, kernel Stepper, est Estimators,
	log io.Writer, verbose bool) (ts *TimeStepping, err error) {
	if err = par.Validate(); err != nil {
		return
	}
	if par.NoShearModes && st.Oper().Dim == 1 {
		err = fmt.Errorf("%w: no shear modes is meaningless in 1D", utils.ErrConfiguration)
		return
	}
	if log == nil {
		log = io.Discard
	}
	ts = &TimeStepping{
		Par:     par,
		St:      st,
		Verbose: verbose,
		log:     log,
		Ctl: StepControl{
			Deltat:    par.Deltat0,
			DeltatMax: par.DeltatMax,
		},
	}
	caps := DetectCapabilities(st)
	ts.velocity = caps.Velocity
	if par.UseCFL {
		ts.Ctl.Deltat = math.Min(par.Deltat0, par.DeltatMax)
		ts.Controller = NewStabilityController(par, st, log)
		ts.Controller.Init(caps, est)
	}
	ts.Integrator = NewTimeIntegrator(st, kernel, par.NoShearModes, &ts.Ctl)
	return
}

func (ts *TimeStepping) Deltat() float64 { return ts.Ctl.Deltat }
func (ts *TimeStepping) It() int         { return ts.Ctl.It }
func (ts *TimeStepping) T() float64      { return ts.Ctl.T }

func (ts *TimeStepping) finished() bool {
	if ts.Par.UseTEnd {
		return ts.Ctl.T >= ts.Par.TEnd*(1-1.e-12)
	}
	return ts.Ctl.It >= ts.Par.ItEnd
}

// Start runs steps until the end condition is met. Every rank must call it,
// a cancelled context is honoured between steps once all ranks agree on it.
func (ts *TimeStepping) Start(ctx context.Context) (err error) {
	var (
		comm  = ts.St.Oper().Comm()
		start = time.Now()
	)
	ts.PrintInitialization()
	for !ts.finished() {
		var stop float64
		if ctx.Err() != nil {
			stop = 1
		}
		if comm.AllReduceMax(stop) > 0 {
			if err = ctx.Err(); err == nil {
				err = context.Canceled
			}
			return
		}
		if ts.Controller != nil {
			ts.Controller.Update(&ts.Ctl)
		}
		// The last step is clipped on the final time, Deltat keeps the controller's value
		dt := ts.Ctl.Deltat
		if ts.Par.UseTEnd && ts.Ctl.T+dt > ts.Par.TEnd {
			ts.Ctl.Deltat = ts.Par.TEnd - ts.Ctl.T
		}
		err = ts.Integrator.OneTimeStep()
		ts.Ctl.Deltat = dt
		if err != nil {
			return
		}
		if ts.Par.PrintEvery > 0 && ts.Ctl.It%ts.Par.PrintEvery == 0 {
			ts.PrintUpdate()
		}
	}
	ts.PrintFinal(time.Since(start))
	return
}

func (ts *TimeStepping) PrintInitialization() {
	if !ts.Verbose {
		return
	}
	fmt.Fprintf(ts.log, "Time stepping with fields %v\n", ts.St.Keys)
	if ts.Controller == nil {
		fmt.Fprintf(ts.log, "Fixed time step, deltat = %g\n", ts.Ctl.Deltat)
	} else {
		c := ts.Controller
		fmt.Fprintf(ts.log, "Adaptive time step, CFL = %g (%s), deltat_max = %g\n",
			ts.Par.CFL, c.Strategy.Print(), ts.Ctl.DeltatMax)
		fmt.Fprintf(ts.log, "Criteria: dispersion = %v, group/phase = %v, forcing = %v\n",
			c.Criteria.Dispersion, c.Criteria.GroupPhase, c.Criteria.Forcing)
	}
	if ts.Par.UseTEnd {
		fmt.Fprintf(ts.log, "Final time = %g\n", ts.Par.TEnd)
	} else {
		fmt.Fprintf(ts.log, "Final iteration = %d\n", ts.Par.ItEnd)
	}
}

// PrintUpdate is collective, the energy is a global sum
func (ts *TimeStepping) PrintUpdate() {
	var (
		op = ts.St.Oper()
		v  = make([][]float64, len(ts.velocity))
	)
	for i, key := range ts.velocity {
		v[i] = ts.St.Get(key)
	}
	energy := op.MeanEnergy(v)
	if !ts.Verbose {
		return
	}
	fmt.Fprintf(ts.log, "it = %6d, t = %10.5f, deltat = %10.4e, energy = %12.6e\n",
		ts.Ctl.It, ts.Ctl.T, ts.Ctl.Deltat, energy)
}

func (ts *TimeStepping) PrintFinal(elapsed time.Duration) {
	if !ts.Verbose {
		return
	}
	fmt.Fprintf(ts.log, "Done after %d iterations, t = %.5f in %v, %s\n", ts.Ctl.It, ts.Ctl.T, elapsed, utils.GetMemUsage())
}
