package InputParameters

import (
	"fmt"
	"io"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gospectral/fft"
	"github.com/notargets/gospectral/operators"
	"github.com/notargets/gospectral/time_stepping"
	"github.com/notargets/gospectral/utils"
)

type OperParams struct {
	NX             int     `json:"nx" yaml:"nx"`
	NY             int     `json:"ny" yaml:"ny"`
	NZ             int     `json:"nz" yaml:"nz"`
	LX             float64 `json:"Lx" yaml:"Lx"`
	LY             float64 `json:"Ly" yaml:"Ly"`
	LZ             float64 `json:"Lz" yaml:"Lz"`
	CoefDealiasing float64 `json:"coef_dealiasing" yaml:"coef_dealiasing"`
	TypeFFT        string  `json:"type_fft" yaml:"type_fft"`
}

type TimeSteppingParams struct {
	UseCFL         bool    `json:"USE_CFL" yaml:"USE_CFL"`
	Deltat0        float64 `json:"deltat0" yaml:"deltat0"`
	DeltatMax      float64 `json:"deltat_max" yaml:"deltat_max"`
	UseTEnd        bool    `json:"USE_T_END" yaml:"USE_T_END"`
	TEnd           float64 `json:"t_end" yaml:"t_end"`
	ItEnd          int     `json:"it_end" yaml:"it_end"`
	CFL            float64 `json:"CFL" yaml:"CFL"`
	CoefDispersion float64 `json:"coef_dispersion" yaml:"coef_dispersion"`
	CoefGroup      float64 `json:"coef_group" yaml:"coef_group"`
	CoefPhase      float64 `json:"coef_phase" yaml:"coef_phase"`
	Hysteresis     float64 `json:"hysteresis" yaml:"hysteresis"`
	PrintEvery     int     `json:"print_every" yaml:"print_every"`
}

type ForcingParams struct {
	Enable bool    `json:"enable" yaml:"enable"`
	Rate   float64 `json:"forcing_rate" yaml:"forcing_rate"`
	KMin   float64 `json:"kmin" yaml:"kmin"` // Band limits in units of the smallest wavenumber step
	KMax   float64 `json:"kmax" yaml:"kmax"`
	Seed   uint64  `json:"seed" yaml:"seed"`
}

type InitFieldsParams struct {
	Type      string  `json:"type" yaml:"type"`
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Seed      uint64  `json:"seed" yaml:"seed"`
}

// Parameters obtained from the YAML input file
type Parameters struct {
	Title          string             `json:"Title" yaml:"Title"`
	Solver         string             `json:"Solver" yaml:"Solver"`
	ParallelDegree int                `json:"ParallelDegree" yaml:"ParallelDegree"`
	Verbose        bool               `json:"Verbose" yaml:"Verbose"`
	Oper           OperParams         `json:"oper" yaml:"oper"`
	TimeStepping   TimeSteppingParams `json:"time_stepping" yaml:"time_stepping"`
	Forcing        ForcingParams      `json:"forcing" yaml:"forcing"`
	NoShearModes   bool               `json:"NO_SHEAR_MODES" yaml:"NO_SHEAR_MODES"`
	Nu2            float64            `json:"nu_2" yaml:"nu_2"`
	Nu8            float64            `json:"nu_8" yaml:"nu_8"`
	Kappa2         float64            `json:"kappa_2" yaml:"kappa_2"`
	N              float64            `json:"brunt_vaisala" yaml:"brunt_vaisala"` // Brunt-Vaisala frequency
	InitFields     InitFieldsParams   `json:"init_fields" yaml:"init_fields"`
}

const ExampleFile = `
########################################
Title: "Taylor-Green vortex"
Solver: ns2d.strat # Can be "burgers1d", "ns3d"
ParallelDegree: 1
Verbose: true
oper:
  nx: 64
  ny: 64
  Lx: 6.283185307179586
  Ly: 6.283185307179586
  coef_dealiasing: 0.6666666666666666
  type_fft: gonum # Can be "godsp"
time_stepping:
  USE_CFL: true
  deltat_max: 0.05
  USE_T_END: true
  t_end: 2
  print_every: 20
NO_SHEAR_MODES: false
nu_2: 0.001
kappa_2: 0.001
brunt_vaisala: 1
init_fields:
  type: taylor_green # Can be "zero", "noise", "blob"
  amplitude: 1
########################################
`

func NewParameters() (ip *Parameters) {
	tp := time_stepping.DefaultParams()
	ip = &Parameters{
		Title:          "Untitled",
		Solver:         "ns2d.strat",
		ParallelDegree: 1,
		Oper: OperParams{
			NX: 48, NY: 48, NZ: 48,
			LX: 8, LY: 8, LZ: 8,
			CoefDealiasing: 2. / 3,
			TypeFFT:        "gonum",
		},
		TimeStepping: TimeSteppingParams{
			UseCFL:         tp.UseCFL,
			Deltat0:        tp.Deltat0,
			DeltatMax:      tp.DeltatMax,
			UseTEnd:        tp.UseTEnd,
			TEnd:           tp.TEnd,
			ItEnd:          tp.ItEnd,
			CFL:            tp.CFL,
			CoefDispersion: tp.CoefDispersion,
			CoefGroup:      tp.CoefGroup,
			CoefPhase:      tp.CoefPhase,
			Hysteresis:     tp.Hysteresis,
			PrintEvery:     tp.PrintEvery,
		},
		Forcing: ForcingParams{
			Rate: 1,
			KMin: 2,
			KMax: 4,
		},
		InitFields: InitFieldsParams{
			Type:      "zero",
			Amplitude: 1,
		},
	}
	return
}

// Parse overwrites the defaults with the values present in data
func (ip *Parameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		err = fmt.Errorf("%w: %s", utils.ErrConfiguration, err.Error())
	}
	return
}

func (ip *Parameters) Marshal() ([]byte, error) { return yaml.Marshal(ip) }

func (ip *Parameters) Validate() (err error) {
	switch {
	case ip.ParallelDegree < 1:
		err = fmt.Errorf("parallel degree must be at least 1, have %d", ip.ParallelDegree)
	case ip.Nu2 < 0 || ip.Nu8 < 0 || ip.Kappa2 < 0:
		err = fmt.Errorf("diffusion coefficients can not be negative, have %v, %v, %v", ip.Nu2, ip.Nu8, ip.Kappa2)
	case ip.N < 0:
		err = fmt.Errorf("Brunt-Vaisala frequency can not be negative, have %v", ip.N)
	}
	if err != nil {
		return fmt.Errorf("%w: %s", utils.ErrConfiguration, err.Error())
	}
	if _, err = fft.NewEngineType(ip.Oper.TypeFFT); err != nil {
		return fmt.Errorf("%w: %s", utils.ErrConfiguration, err.Error())
	}
	return ip.TimeSteppingParams().Validate()
}

func (ip *Parameters) OperatorParams() operators.Params {
	o := ip.Oper
	return operators.Params{
		NX: o.NX, NY: o.NY, NZ: o.NZ,
		LX: o.LX, LY: o.LY, LZ: o.LZ,
		CoefDealiasing: o.CoefDealiasing,
		TypeFFT:        o.TypeFFT,
	}
}

func (ip *Parameters) TimeSteppingParams() time_stepping.Params {
	ts := ip.TimeStepping
	return time_stepping.Params{
		UseCFL:         ts.UseCFL,
		Deltat0:        ts.Deltat0,
		DeltatMax:      ts.DeltatMax,
		UseTEnd:        ts.UseTEnd,
		TEnd:           ts.TEnd,
		ItEnd:          ts.ItEnd,
		CFL:            ts.CFL,
		CoefDispersion: ts.CoefDispersion,
		CoefGroup:      ts.CoefGroup,
		CoefPhase:      ts.CoefPhase,
		Hysteresis:     ts.Hysteresis,
		NoShearModes:   ip.NoShearModes,
		ForcingEnabled: ip.Forcing.Enable,
		ForcingRate:    ip.Forcing.Rate,
		PrintEvery:     ts.PrintEvery,
	}
}

func (ip *Parameters) Print(w io.Writer) {
	var (
		o  = ip.Oper
		ts = ip.TimeStepping
	)
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%s]\t\t= Solver\n", strings.ToLower(ip.Solver))
	fmt.Fprintf(w, "[%d]\t\t\t= Parallel Degree\n", ip.ParallelDegree)
	fmt.Fprintf(w, "[%d x %d x %d]\t= Resolution (nx, ny, nz)\n", o.NX, o.NY, o.NZ)
	fmt.Fprintf(w, "[%g x %g x %g]\t= Lengths (Lx, Ly, Lz)\n", o.LX, o.LY, o.LZ)
	fmt.Fprintf(w, "%8.5f\t\t= Dealiasing Coefficient\n", o.CoefDealiasing)
	fmt.Fprintf(w, "[%s]\t\t= FFT\n", o.TypeFFT)
	if ts.UseCFL {
		fmt.Fprintf(w, "%8.5f\t\t= CFL, deltat_max = %g\n", ts.CFL, ts.DeltatMax)
	} else {
		fmt.Fprintf(w, "%8.5f\t\t= Fixed Time Step\n", ts.Deltat0)
	}
	if ts.UseTEnd {
		fmt.Fprintf(w, "%8.5f\t\t= Final Time\n", ts.TEnd)
	} else {
		fmt.Fprintf(w, "[%d]\t\t\t= Final Iteration\n", ts.ItEnd)
	}
	fmt.Fprintf(w, "nu_2 = %g, nu_8 = %g, kappa_2 = %g, N = %g\n", ip.Nu2, ip.Nu8, ip.Kappa2, ip.N)
	if ip.Forcing.Enable {
		fmt.Fprintf(w, "Forcing rate = %g on [%g, %g]\n", ip.Forcing.Rate, ip.Forcing.KMin, ip.Forcing.KMax)
	}
	fmt.Fprintf(w, "[%s]\t= Init Fields, amplitude %g\n", ip.InitFields.Type, ip.InitFields.Amplitude)
}
