package time_stepping

import (
	"fmt"

	"github.com/notargets/gospectral/utils"
)

type Params struct {
	UseCFL         bool
	Deltat0        float64
	DeltatMax      float64
	UseTEnd        bool
	TEnd           float64
	ItEnd          int
	CFL            float64
	CoefDispersion float64
	CoefGroup      float64
	CoefPhase      float64
	Hysteresis     float64 // Relative change needed before the step size is replaced
	NoShearModes   bool
	ForcingEnabled bool
	ForcingRate    float64
	PrintEvery     int
}

func DefaultParams() Params {
	return Params{
		UseCFL:         true,
		Deltat0:        0.2,
		DeltatMax:      0.2,
		UseTEnd:        true,
		TEnd:           10,
		ItEnd:          10,
		CFL:            1,
		CoefDispersion: 1,
		CoefGroup:      1,
		CoefPhase:      1,
		Hysteresis:     0.02,
		PrintEvery:     10,
	}
}

func (par Params) Validate() (err error) {
	switch {
	case !(par.Deltat0 > 0):
		err = fmt.Errorf("initial time step must be positive, have %v", par.Deltat0)
	case !(par.DeltatMax > 0):
		err = fmt.Errorf("maximum time step must be positive, have %v", par.DeltatMax)
	case par.UseTEnd && !(par.TEnd > 0):
		err = fmt.Errorf("final time must be positive, have %v", par.TEnd)
	case !par.UseTEnd && par.ItEnd < 0:
		err = fmt.Errorf("final iteration can not be negative, have %d", par.ItEnd)
	case par.UseCFL && !(par.CFL > 0):
		err = fmt.Errorf("CFL must be positive, have %v", par.CFL)
	case par.UseCFL && (par.CoefDispersion <= 0 || par.CoefGroup <= 0 || par.CoefPhase <= 0):
		err = fmt.Errorf("stability coefficients must be positive, have %v, %v, %v",
			par.CoefDispersion, par.CoefGroup, par.CoefPhase)
	case par.Hysteresis < 0:
		err = fmt.Errorf("hysteresis can not be negative, have %v", par.Hysteresis)
	case par.ForcingEnabled && !(par.ForcingRate > 0):
		err = fmt.Errorf("forcing rate must be positive, have %v", par.ForcingRate)
	}
	if err != nil {
		err = fmt.Errorf("%w: %s", utils.ErrConfiguration, err.Error())
	}
	return
}
