package model_problems

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/notargets/gospectral/InputParameters"
	"github.com/notargets/gospectral/model_problems/Burgers1D"
	"github.com/notargets/gospectral/model_problems/NS2DStrat"
	"github.com/notargets/gospectral/model_problems/NS3D"
	"github.com/notargets/gospectral/operators"
	"github.com/notargets/gospectral/state"
	"github.com/notargets/gospectral/time_stepping"
	"github.com/notargets/gospectral/utils"
)

// Solver is what the time stepping needs from a set of equations
type Solver interface {
	time_stepping.System
	Keys() []string
	Estimators() time_stepping.Estimators
}

type SolverType uint8

const (
	BURGERS1D SolverType = iota
	NS2DSTRAT
	NS3DBOUSS
)

var (
	SolverNames = map[string]SolverType{
		"burgers1d":  BURGERS1D,
		"ns2d.strat": NS2DSTRAT,
		"ns2dstrat":  NS2DSTRAT,
		"ns3d":       NS3DBOUSS,
	}
	SolverPrintNames = []string{"Burgers 1D", "Stratified Navier-Stokes 2D", "Navier-Stokes 3D"}
	solverDims       = []int{1, 2, 3}
)

func (st SolverType) Print() string { return SolverPrintNames[st] }
func (st SolverType) Dim() int      { return solverDims[st] }

func NewSolverType(label string) (st SolverType, err error) {
	var (
		ok bool
	)
	label = strings.ToLower(strings.TrimSpace(label))
	if st, ok = SolverNames[label]; !ok {
		err = fmt.Errorf("%w: unable to use solver named [%s]", utils.ErrConfiguration, label)
	}
	return
}

// Simul is one rank of a simulation
type Simul struct {
	Params       *InputParameters.Parameters
	Type         SolverType
	Oper         *operators.Operators
	State        *state.State
	Solver       Solver
	TimeStepping *time_stepping.TimeStepping
	log          io.Writer
}

// NewSimul builds everything a rank needs from the parameters, only rank 0 writes to log
func NewSimul(ip *InputParameters.Parameters, comm utils.Communicator, log io.Writer) (sim *Simul, err error) {
	var (
		forcing *operators.Forcing
		it      InitType
	)
	if err = ip.Validate(); err != nil {
		return
	}
	if log == nil || comm.Rank() != 0 {
		log = io.Discard
	}
	sim = &Simul{
		Params: ip,
		log:    log,
	}
	if sim.Type, err = NewSolverType(ip.Solver); err != nil {
		return nil, err
	}
	if it, err = NewInitType(ip.InitFields.Type); err != nil {
		return nil, err
	}
	if sim.Oper, err = operators.NewOperators(sim.Type.Dim(), ip.OperatorParams(), comm); err != nil {
		return nil, err
	}
	if ip.Forcing.Enable {
		f := ip.Forcing
		if forcing, err = operators.NewForcing(sim.Oper, f.Rate, f.KMin, f.KMax, f.Seed); err != nil {
			return nil, err
		}
	}
	switch sim.Type {
	case BURGERS1D:
		sim.Solver = Burgers1D.NewBurgers1D(sim.Oper, ip.Nu2, ip.Nu8, forcing)
	case NS2DSTRAT:
		sim.Solver = NS2DStrat.NewNS2DStrat(sim.Oper, ip.N, ip.Nu2, ip.Nu8, ip.Kappa2, forcing)
	case NS3DBOUSS:
		sim.Solver = NS3D.NewNS3D(sim.Oper, ip.N, ip.Nu2, ip.Nu8, ip.Kappa2, forcing)
	}
	sim.State = state.NewState(sim.Oper, sim.Solver.Keys()...)
	if err = InitializeState(sim.State, it, ip.InitFields.Amplitude, ip.InitFields.Seed); err != nil {
		return nil, err
	}
	if ip.Verbose {
		fmt.Fprintf(log, "%s on %d rank(s), FFT %s\n", sim.Type.Print(), comm.NumProc(), sim.Oper.Tr.Engine.Print())
		fmt.Fprintf(log, "Local shapes: physical %v, spectral %v\n",
			sim.Oper.Tr.ShapePhysLoc(), sim.Oper.Tr.ShapeSpectLoc())
		fmt.Fprintf(log, "Initial fields: %s\n", it.Print())
	}
	sim.TimeStepping, err = time_stepping.NewTimeStepping(ip.TimeSteppingParams(), sim.State,
		time_stepping.NewRK4(sim.Solver, sim.Oper.Dealiasing), sim.Solver.Estimators(), log, ip.Verbose)
	if err != nil {
		return nil, err
	}
	return
}

func (sim *Simul) Run(ctx context.Context) (err error) {
	return sim.TimeStepping.Start(ctx)
}

// Energy is the domain mean kinetic energy
func (sim *Simul) Energy() float64 {
	var v [][]float64
	for _, key := range []string{"ux", "uy", "uz"} {
		if stored, ok := sim.State.CanThisKeyBeObtained(key); ok {
			v = append(v, sim.State.Get(stored))
		}
	}
	return sim.Oper.MeanEnergy(v)
}
