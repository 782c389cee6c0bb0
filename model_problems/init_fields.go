package model_problems

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/notargets/gospectral/state"
	"github.com/notargets/gospectral/utils"
)

type InitType uint8

const (
	ZERO InitType = iota
	NOISE
	TAYLOR_GREEN
	BLOB
)

var (
	InitNames = map[string]InitType{
		"":             ZERO,
		"zero":         ZERO,
		"noise":        NOISE,
		"taylor_green": TAYLOR_GREEN,
		"blob":         BLOB,
	}
	InitPrintNames = []string{"Fluid at Rest", "Random Noise", "Taylor-Green Vortex", "Buoyancy Blob"}
)

func (it InitType) Print() (txt string) {
	if int(it) >= len(InitPrintNames) {
		return "Unknown"
	}
	return InitPrintNames[it]
}

func NewInitType(label string) (it InitType, err error) {
	var (
		ok bool
	)
	label = strings.ToLower(strings.TrimSpace(label))
	if it, ok = InitNames[label]; !ok {
		err = fmt.Errorf("%w: unable to use init type named %s", utils.ErrConfiguration, label)
	}
	return
}

// InitializeState sets the fields of st and leaves both representations
// dealiased and consistent. Velocities made of noise are divergence free.
func InitializeState(st *state.State, it InitType, amplitude float64, seed uint64) (err error) {
	var (
		op     = st.Oper()
		X      = op.XYZLoc()
		fields = make(map[string][]float64)
		vel    []string
	)
	for _, key := range []string{"ux", "uy", "uz"}[:op.Dim] {
		if stored, ok := st.CanThisKeyBeObtained(key); ok {
			vel = append(vel, stored)
		}
	}
	// Fundamental wavenumber of each axis
	k0 := []float64{op.DeltaKx, op.DeltaKy, op.DeltaKz}
	switch it {
	case ZERO:
	case NOISE:
		rng := rand.New(rand.NewPCG(seed, 0))
		for _, key := range st.Keys {
			fields[key] = globalNoise(st, rng, amplitude)
		}
	case TAYLOR_GREEN:
		if len(vel) != op.Dim {
			return fmt.Errorf("%w: Taylor-Green vortex needs %d velocity components, have %v",
				utils.ErrConfiguration, op.Dim, st.Keys)
		}
		for _, key := range vel {
			fields[key] = op.Tr.CreateArrayX()
		}
		for i := range X[0] {
			sx, cx := math.Sincos(k0[0] * X[0][i])
			switch op.Dim {
			case 1:
				fields[vel[0]][i] = amplitude * sx
			case 2:
				sy, cy := math.Sincos(k0[1] * X[1][i])
				fields[vel[0]][i] = amplitude * sx * cy
				fields[vel[1]][i] = -amplitude * cx * sy
			case 3:
				sy, cy := math.Sincos(k0[1] * X[1][i])
				cz := math.Cos(k0[2] * X[2][i])
				fields[vel[0]][i] = amplitude * sx * cy * cz
				fields[vel[1]][i] = -amplitude * cx * sy * cz
			}
		}
	case BLOB:
		if !st.Has("b") {
			return fmt.Errorf("%w: a buoyancy blob needs a field b, have %v", utils.ErrConfiguration, st.Keys)
		}
		var (
			L     = []float64{op.Par.LX, op.Par.LY, op.Par.LZ}[:op.Dim]
			sigma = math.Inf(1)
			b     = op.Tr.CreateArrayX()
		)
		for _, l := range L {
			sigma = math.Min(sigma, l/10)
		}
		for i := range b {
			var r2 float64
			for d, l := range L {
				r2 += sq(X[d][i] - l/2)
			}
			b[i] = amplitude * math.Exp(-r2/(2*sigma*sigma))
		}
		fields["b"] = b
	default:
		return fmt.Errorf("%w: unknown init type %d", utils.ErrConfiguration, it)
	}
	st.InitPhys(fields)
	op.DealiasingSet(st)
	if it == NOISE && op.Dim > 1 && len(vel) == op.Dim {
		vFFT := make([][]complex128, op.Dim)
		for d, key := range vel {
			vFFT[d] = st.GetFFT(key)
		}
		for d, p := range op.Project(vFFT) {
			copy(vFFT[d], p)
		}
	}
	st.PhysFromSpect()
	return
}

// globalNoise draws the field of the whole domain and keeps the local slab, the
// result does not depend on the number of ranks
func globalNoise(st *state.State, rng *rand.Rand, amplitude float64) (f []float64) {
	var (
		tr           = st.Oper().Tr
		i0Min, i0Max = tr.PhysRange()
		slab         = tr.N1 * tr.N2
	)
	f = tr.CreateArrayX()
	for i := 0; i < tr.NumPoints(); i++ {
		val := amplitude * (2*rng.Float64() - 1)
		if i >= i0Min*slab && i < i0Max*slab {
			f[i-i0Min*slab] = val
		}
	}
	return
}

func sq(x float64) float64 { return x * x }
