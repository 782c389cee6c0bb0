package time_stepping

import (
	"fmt"
	"io"
	"math"

	"github.com/notargets/gospectral/operators"
	"github.com/notargets/gospectral/state"
)

type CFLStrategy uint8

const (
	CFLNone CFLStrategy = iota
	CFLOneComponent
	CFLTwoComponent
	CFLThreeComponent
)

var CFLStrategyNames = map[CFLStrategy]string{
	CFLNone:           "none",
	CFLOneComponent:   "one component",
	CFLTwoComponent:   "two components",
	CFLThreeComponent: "three components",
}

func (cs CFLStrategy) Print() string {
	if name, ok := CFLStrategyNames[cs]; ok {
		return name
	}
	return "Unknown"
}

// DispersionRelation gives the wave frequency of every local spectral mode
type DispersionRelation interface {
	DispersionRelation() []float64
}

// GroupPhaseEstimator gives the local maxima of the group and phase velocity
// frequencies, |c|/dx summed over the axes
type GroupPhaseEstimator interface {
	GroupPhaseFrequencies() (freqGroup, freqPhase float64)
}

// Estimators are the optional collaborators of the controller, a nil entry
// turns the matching criterion into its fallback
type Estimators struct {
	Dispersion DispersionRelation
	GroupPhase GroupPhaseEstimator
}

// Capabilities describe the field set of a state
type Capabilities struct {
	Velocity []string // Stored keys of the velocity components, x first
	HasB     bool
}

func DetectCapabilities(st *state.State) (caps Capabilities) {
	for _, key := range []string{"ux", "uy", "uz"} {
		stored, ok := st.CanThisKeyBeObtained(key)
		if !ok {
			break
		}
		caps.Velocity = append(caps.Velocity, stored)
	}
	_, caps.HasB = st.CanThisKeyBeObtained("b")
	return
}

// Criteria is the set of rules selected at Init, fixed for the run
type Criteria struct {
	Dispersion bool
	GroupPhase bool
	Forcing    bool
}

type ControllerState uint8

const (
	Uninitialized ControllerState = iota
	Ready
)

const FallbackDeltat = 1.

type StabilityController struct {
	Par      Params
	State    ControllerState
	Strategy CFLStrategy
	Criteria Criteria
	st       *state.State
	op       *operators.Operators
	log      io.Writer
	velocity []string
	deltas   []float64
	// State independent candidates, computed at Init
	dtDispersion, dtGroup, dtPhase, dtForcing float64
}

func NewStabilityController(par Params, st *state.State, log io.Writer) *StabilityController {
	if log == nil {
		log = io.Discard
	}
	return &StabilityController{
		Par: par,
		st:  st,
		op:  st.Oper(),
		log: log,
	}
}

// Init selects the CFL strategy and the criteria. The estimators are evaluated
// here once, they do not depend on the state.
func (sc *StabilityController) Init(caps Capabilities, est Estimators) {
	var (
		comm = sc.op.Comm()
		par  = sc.Par
	)
	nVel := min(len(caps.Velocity), sc.op.Dim)
	sc.Strategy = CFLStrategy(nVel)
	sc.velocity = caps.Velocity[:nVel]
	sc.deltas = sc.op.Deltas()[:nVel]
	sc.Criteria = Criteria{Forcing: par.ForcingEnabled}
	sc.dtDispersion, sc.dtGroup, sc.dtPhase, sc.dtForcing =
		FallbackDeltat, FallbackDeltat, FallbackDeltat, math.Inf(1)

	switch {
	case est.Dispersion == nil:
		fmt.Fprintf(sc.log, "dispersion relation not available, using deltat = %g\n", FallbackDeltat)
	case !caps.HasB:
		fmt.Fprintf(sc.log, "dispersion relation needs a buoyancy field, using deltat = %g\n", FallbackDeltat)
	default:
		sc.Criteria.Dispersion = true
		sc.dtDispersion = DispersionDeltat(par.CoefDispersion,
			sc.op.MaxOf(est.Dispersion.DispersionRelation()))
	}
	if est.GroupPhase == nil {
		fmt.Fprintf(sc.log, "group and phase velocities not available, using deltat = %g\n", FallbackDeltat)
	} else {
		sc.Criteria.GroupPhase = true
		freqGroup, freqPhase := est.GroupPhase.GroupPhaseFrequencies()
		sc.dtGroup = freqDeltat(par.CoefGroup, comm.AllReduceMax(freqGroup))
		sc.dtPhase = freqDeltat(par.CoefPhase, comm.AllReduceMax(freqPhase))
	}
	if sc.Criteria.Forcing {
		sc.dtForcing = 1. / math.Cbrt(par.ForcingRate)
	}
	sc.State = Ready
}

// DispersionDeltat resolves the period of the fastest wave, coef*2pi/maxOmega
func DispersionDeltat(coef, maxOmega float64) float64 {
	if !(maxOmega > 0) {
		return math.Inf(1)
	}
	return coef * 2 * math.Pi / maxOmega
}

func freqDeltat(coef, freq float64) float64 {
	if !(freq > 0) {
		return math.Inf(1)
	}
	return coef / freq
}

// CFLDeltat is CFL / sum(maxU/dx), or deltatMax when nothing moves
func CFLDeltat(cfl float64, maxU, deltas []float64, deltatMax float64) float64 {
	var freq float64
	for i, u := range maxU {
		freq += u / deltas[i]
	}
	if freq > 0 {
		return cfl / freq
	}
	return deltatMax
}

// Update recomputes the candidates and replaces sc.Deltat when the new step
// size differs from it by more than the hysteresis
func (sc *StabilityController) Update(ctl *StepControl) {
	if sc.State != Ready {
		panic("stability controller used before Init")
	}
	maxU := make([]float64, len(sc.velocity))
	for i, key := range sc.velocity {
		maxU[i] = sc.op.MaxAbs(sc.st.Get(key))
	}
	c := Candidates{
		CFL:        math.Inf(1),
		Dispersion: sc.dtDispersion,
		Group:      sc.dtGroup,
		Phase:      sc.dtPhase,
		Forcing:    sc.dtForcing,
	}
	if sc.Strategy != CFLNone {
		c.CFL = CFLDeltat(sc.Par.CFL, maxU, sc.deltas, ctl.DeltatMax)
	}
	ctl.Candidates = c
	newDt := math.Min(ctl.DeltatMax, math.Min(c.CFL, math.Min(c.Dispersion,
		math.Min(c.Group, math.Min(c.Phase, c.Forcing)))))
	if math.Abs(ctl.Deltat-newDt)/newDt > sc.Par.Hysteresis {
		ctl.Deltat = newDt
	}
}
