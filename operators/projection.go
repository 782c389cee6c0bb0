package operators

import "fmt"

// ProjectPerpK2D removes the component of (ax, ay) parallel to the wavenumber.
// The zero mode passes through unchanged.
func (op *Operators) ProjectPerpK2D(ax, ay []complex128) (px, py []complex128) {
	var (
		Kx, Ky = op.Kx, op.Ky
	)
	if op.Dim != 2 {
		panic(fmt.Sprintf("2D projection on a %dD grid", op.Dim))
	}
	checkLen(Kx, ax)
	checkLen(Kx, ay)
	px = make([]complex128, len(ax))
	py = make([]complex128, len(ay))
	for i := range ax {
		q := (complex(Kx[i], 0)*ax[i] + complex(Ky[i], 0)*ay[i]) / complex(op.K2NoZero[i], 0)
		px[i] = ax[i] - complex(Kx[i], 0)*q
		py[i] = ay[i] - complex(Ky[i], 0)*q
	}
	return
}

// ProjectPerpK3D is the three component version of ProjectPerpK2D
func (op *Operators) ProjectPerpK3D(vx, vy, vz []complex128) (px, py, pz []complex128) {
	var (
		Kx, Ky, Kz = op.Kx, op.Ky, op.Kz
	)
	if op.Dim != 3 {
		panic(fmt.Sprintf("3D projection on a %dD grid", op.Dim))
	}
	checkLen(Kx, vx)
	checkLen(Kx, vy)
	checkLen(Kx, vz)
	px = make([]complex128, len(vx))
	py = make([]complex128, len(vy))
	pz = make([]complex128, len(vz))
	for i := range vx {
		q := (complex(Kx[i], 0)*vx[i] + complex(Ky[i], 0)*vy[i] + complex(Kz[i], 0)*vz[i]) /
			complex(op.K2NoZero[i], 0)
		px[i] = vx[i] - complex(Kx[i], 0)*q
		py[i] = vy[i] - complex(Ky[i], 0)*q
		pz[i] = vz[i] - complex(Kz[i], 0)*q
	}
	return
}

// Project picks the projection matching the dimension of the grid
func (op *Operators) Project(vFFT [][]complex128) (p [][]complex128) {
	op.checkComponents(len(vFFT))
	switch op.Dim {
	case 2:
		px, py := op.ProjectPerpK2D(vFFT[0], vFFT[1])
		p = [][]complex128{px, py}
	case 3:
		px, py, pz := op.ProjectPerpK3D(vFFT[0], vFFT[1], vFFT[2])
		p = [][]complex128{px, py, pz}
	default:
		panic("no divergence free projection in 1D")
	}
	return
}

func (op *Operators) checkComponents(n int) {
	if n != op.Dim {
		panic(fmt.Sprintf("vector with %d components on a %dD grid", n, op.Dim))
	}
}

func checkLen(K []float64, f []complex128) {
	if len(K) != len(f) {
		panic(fmt.Sprintf("spectral field of length %d does not match the grid (%d)", len(f), len(K)))
	}
}
