package InputParameters

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gospectral/utils"
)

func TestParameters(t *testing.T) {
	{ // Example file
		ip := NewParameters()
		require.NoError(t, ip.Parse([]byte(ExampleFile)))
		assert.Equal(t, "Taylor-Green vortex", ip.Title)
		assert.Equal(t, 64, ip.Oper.NX)
		assert.Equal(t, 48, ip.Oper.NZ) // not in the file, default kept
		assert.InDelta(t, 2*math.Pi, ip.Oper.LY, 1.e-15)
		assert.True(t, ip.TimeStepping.UseCFL)
		assert.Equal(t, 0.05, ip.TimeStepping.DeltatMax)
		assert.Equal(t, 0.02, ip.TimeStepping.Hysteresis)
		assert.Equal(t, 1., ip.N)
		assert.Equal(t, "taylor_green", ip.InitFields.Type)
		require.NoError(t, ip.Validate())
		op := ip.OperatorParams()
		assert.Equal(t, 64, op.NY)
		tp := ip.TimeSteppingParams()
		assert.Equal(t, 2., tp.TEnd)
		assert.False(t, tp.ForcingEnabled)
		var buf bytes.Buffer
		ip.Print(&buf)
		assert.Contains(t, buf.String(), "[ns2d.strat]")
	}
	{ // The stratification is read from the file and written back under the same key
		ip := NewParameters()
		require.NoError(t, ip.Parse([]byte("Solver: ns3d\nbrunt_vaisala: 2\n")))
		assert.Equal(t, 2., ip.N)
		data, err := ip.Marshal()
		require.NoError(t, err)
		assert.Contains(t, string(data), "brunt_vaisala: 2")
	}
	{ // Round trip through YAML
		ip := NewParameters()
		ip.NoShearModes = true
		ip.Forcing.Enable = true
		data, err := ip.Marshal()
		require.NoError(t, err)
		assert.Contains(t, string(data), "NO_SHEAR_MODES: true")
		ip2 := &Parameters{}
		require.NoError(t, ip2.Parse(data))
		assert.Equal(t, ip, ip2)
	}
	{ // Invalid values
		for _, yml := range []string{
			"ParallelDegree: 0",
			"nu_2: -1",
			"brunt_vaisala: -2",
			"oper:\n  type_fft: fftw",
			"time_stepping:\n  deltat0: 0",
			"forcing:\n  enable: true\n  forcing_rate: 0",
		} {
			ip := NewParameters()
			require.NoError(t, ip.Parse([]byte(yml)))
			assert.True(t, errors.Is(ip.Validate(), utils.ErrConfiguration), yml)
		}
		assert.True(t, errors.Is(NewParameters().Parse([]byte("oper: [1, 2")), utils.ErrConfiguration))
	}
}
