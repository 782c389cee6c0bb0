package time_stepping

import (
	"errors"
	"fmt"
)

// Candidates keeps the last step size proposed by each stability criterion,
// +Inf for an inactive criterion
type Candidates struct {
	CFL, Dispersion, Group, Phase, Forcing float64
}

type StepControl struct {
	Deltat     float64
	DeltatMax  float64
	T          float64
	It         int
	Candidates Candidates
}

var ErrNumericalDivergence = errors.New("numerical divergence")

// NumericalDivergenceError reports the iteration and time at the start of the failed step
type NumericalDivergenceError struct {
	It int
	T  float64
}

func (e *NumericalDivergenceError) Error() string {
	return fmt.Sprintf("%s: non finite value in the spectral state at it = %d, t = %.4f",
		ErrNumericalDivergence.Error(), e.It, e.T)
}

func (e *NumericalDivergenceError) Unwrap() error { return ErrNumericalDivergence }
