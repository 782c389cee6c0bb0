package time_stepping

import (
	"github.com/notargets/gospectral/state"
)

// TimeIntegrator advances the state by one step of ctl.Deltat
type TimeIntegrator struct {
	St           *state.State
	Kernel       Stepper
	NoShearModes bool
	ctl          *StepControl
}

func NewTimeIntegrator(st *state.State, kernel Stepper, noShearModes bool, ctl *StepControl) *TimeIntegrator {
	return &TimeIntegrator{
		St:           st,
		Kernel:       kernel,
		NoShearModes: noShearModes,
		ctl:          ctl,
	}
}

func (ti *TimeIntegrator) OneTimeStep() (err error) {
	var (
		st  = ti.St
		op  = st.Oper()
		ctl = ti.ctl
	)
	if sp, ok := ti.Kernel.(StepPreparer); ok {
		sp.PrepareStep(ctl.T, ctl.Deltat)
	}
	st.SetSpectralFields(ti.Kernel.Step(st.SpectralFields(), ctl.T, ctl.Deltat))
	op.DealiasingSet(st)
	if ti.NoShearModes {
		// First row (2D) or plane (3D) of the spectral arrays, k0 = 0
		nRow := op.Tr.N1 * (op.Tr.SizeSpectLoc() / (op.Tr.N0 * op.Tr.N1))
		for _, f := range st.SpectralFields() {
			clear(f[:nRow])
		}
	}
	st.PhysFromSpect()
	if st.IsNonFinite() {
		return &NumericalDivergenceError{It: ctl.It, T: ctl.T}
	}
	ctl.It++
	ctl.T += ctl.Deltat
	return
}
