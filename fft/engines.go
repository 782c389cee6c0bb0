package fft

import (
	"fmt"
	"strings"

	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

type EngineType uint8

const (
	Gonum EngineType = iota
	GoDSP
)

var (
	EngineNames = map[string]EngineType{
		"":       Gonum,
		"gonum":  Gonum,
		"godsp":  GoDSP,
		"go-dsp": GoDSP,
	}
	EngineNamesRev = map[EngineType]string{
		Gonum: "gonum dsp/fourier",
		GoDSP: "go-dsp fft",
	}
)

func (et EngineType) Print() (txt string) {
	if val, ok := EngineNamesRev[et]; !ok {
		txt = "Unknown"
	} else {
		txt = val
	}
	return
}

func NewEngineType(label string) (et EngineType, err error) {
	var (
		ok bool
	)
	label = strings.ToLower(strings.TrimSpace(label))
	if et, ok = EngineNames[label]; !ok {
		err = fmt.Errorf("unable to use fft engine named [%s]", label)
	}
	return
}

// RealLine transforms one real line of length n to its n/2+1 non negative
// frequency coefficients and back. Neither direction is normalized.
type RealLine interface {
	Forward(dst []complex128, src []float64)
	Inverse(dst []float64, src []complex128)
}

// CmplxLine transforms one complex line of length n. Neither direction is normalized.
type CmplxLine interface {
	Forward(dst, src []complex128)
	Inverse(dst, src []complex128)
}

func NewRealLine(et EngineType, n int) RealLine {
	switch et {
	case GoDSP:
		return &dspReal{n: n, full: make([]complex128, n)}
	default:
		return &gonumReal{fourier.NewFFT(n)}
	}
}

func NewCmplxLine(et EngineType, n int) CmplxLine {
	switch et {
	case GoDSP:
		return &dspCmplx{n: n}
	default:
		return &gonumCmplx{fourier.NewCmplxFFT(n)}
	}
}

type gonumReal struct {
	plan *fourier.FFT
}

func (g *gonumReal) Forward(dst []complex128, src []float64) { g.plan.Coefficients(dst, src) }
func (g *gonumReal) Inverse(dst []float64, src []complex128) { g.plan.Sequence(dst, src) }

type gonumCmplx struct {
	plan *fourier.CmplxFFT
}

func (g *gonumCmplx) Forward(dst, src []complex128) { g.plan.Coefficients(dst, src) }
func (g *gonumCmplx) Inverse(dst, src []complex128) { g.plan.Sequence(dst, src) }

type dspReal struct {
	n    int
	full []complex128
}

func (d *dspReal) Forward(dst []complex128, src []float64) {
	copy(dst, dspfft.FFTReal(src)[:d.n/2+1])
}

func (d *dspReal) Inverse(dst []float64, src []complex128) {
	var (
		n    = d.n
		full = d.full
	)
	// Rebuild the Hermitian spectrum, the imaginary parts of the mean and Nyquist modes carry no information
	full[0] = complex(real(src[0]), 0)
	for k := 1; k < (n+1)/2; k++ {
		full[k] = src[k]
		full[n-k] = complex(real(src[k]), -imag(src[k]))
	}
	if n%2 == 0 && n > 1 {
		full[n/2] = complex(real(src[n/2]), 0)
	}
	// go-dsp scales its inverse by 1/n
	for i, c := range dspfft.IFFT(full) {
		dst[i] = real(c) * float64(n)
	}
}

type dspCmplx struct {
	n int
}

func (d *dspCmplx) Forward(dst, src []complex128) { copy(dst, dspfft.FFT(src)) }

func (d *dspCmplx) Inverse(dst, src []complex128) {
	var (
		scale = complex(float64(d.n), 0)
	)
	for i, c := range dspfft.IFFT(src) {
		dst[i] = c * scale
	}
}
