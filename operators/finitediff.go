package operators

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gospectral/utils"
)

/*
	Second order centered finite differences on a periodic grid, stored as
	sparse matrices acting on flattened physical arrays (x fastest). They are
	used to cross check the spectral derivatives.
*/
type FiniteDiff1DPeriodic struct {
	NX     int
	LX, DX float64
	Px     utils.CSR
	Pxx    utils.CSR
}

func NewFiniteDiff1DPeriodic(nx int, lx float64) (fd *FiniteDiff1DPeriodic, err error) {
	if nx < 3 || !(lx > 0) {
		err = fmt.Errorf("%w: finite differences need nx >= 3 and Lx > 0, have %d, %v",
			utils.ErrConfiguration, nx, lx)
		return
	}
	fd = &FiniteDiff1DPeriodic{
		NX: nx,
		LX: lx,
		DX: lx / float64(nx),
	}
	wrap := func(i int) int { return (i + nx) % nx }
	px, pxx := utils.NewDOK(nx, nx), utils.NewDOK(nx, nx)
	for i := 0; i < nx; i++ {
		px.AddAt(i, wrap(i+1), 1/(2*fd.DX))
		px.AddAt(i, wrap(i-1), -1/(2*fd.DX))
		pxx.AddAt(i, wrap(i+1), 1/(fd.DX*fd.DX))
		pxx.AddAt(i, i, -2/(fd.DX*fd.DX))
		pxx.AddAt(i, wrap(i-1), 1/(fd.DX*fd.DX))
	}
	px.SetReadOnly("Px")
	pxx.SetReadOnly("Pxx")
	fd.Px, fd.Pxx = px.ToCSR(), pxx.ToCSR()
	return
}

func (fd *FiniteDiff1DPeriodic) PX(f []float64) (d []float64) {
	d = make([]float64, fd.NX)
	fd.Px.MulVec(d, f)
	return
}

func (fd *FiniteDiff1DPeriodic) PXX(f []float64) (d []float64) {
	d = make([]float64, fd.NX)
	fd.Pxx.MulVec(d, f)
	return
}

// FiniteDiff2DPeriodic acts on (ny, nx) arrays
type FiniteDiff2DPeriodic struct {
	NX, NY int
	LX, LY float64
	DX, DY float64
	Px, Py utils.CSR
	Pxx    utils.CSR
	Pyy    utils.CSR
}

func NewFiniteDiff2DPeriodic(nx, ny int, lx, ly float64) (fd *FiniteDiff2DPeriodic, err error) {
	if nx < 3 || ny < 3 || !(lx > 0) || !(ly > 0) {
		err = fmt.Errorf("%w: finite differences need nx, ny >= 3 and positive lengths, have %dx%d, %vx%v",
			utils.ErrConfiguration, nx, ny, lx, ly)
		return
	}
	fd = &FiniteDiff2DPeriodic{
		NX: nx, NY: ny,
		LX: lx, LY: ly,
		DX: lx / float64(nx), DY: ly / float64(ny),
	}
	var (
		size     = nx * ny
		px, py   = utils.NewDOK(size, size), utils.NewDOK(size, size)
		pxx, pyy = utils.NewDOK(size, size), utils.NewDOK(size, size)
		dx2, dy2 = fd.DX * fd.DX, fd.DY * fd.DY
		ind      = func(iy, ix int) int { return ((iy+ny)%ny)*nx + (ix+nx)%nx }
	)
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			i := ind(iy, ix)
			px.AddAt(i, ind(iy, ix+1), 1/(2*fd.DX))
			px.AddAt(i, ind(iy, ix-1), -1/(2*fd.DX))
			py.AddAt(i, ind(iy+1, ix), 1/(2*fd.DY))
			py.AddAt(i, ind(iy-1, ix), -1/(2*fd.DY))
			pxx.AddAt(i, ind(iy, ix+1), 1/dx2)
			pxx.AddAt(i, i, -2/dx2)
			pxx.AddAt(i, ind(iy, ix-1), 1/dx2)
			pyy.AddAt(i, ind(iy+1, ix), 1/dy2)
			pyy.AddAt(i, i, -2/dy2)
			pyy.AddAt(i, ind(iy-1, ix), 1/dy2)
		}
	}
	px.SetReadOnly("Px")
	py.SetReadOnly("Py")
	pxx.SetReadOnly("Pxx")
	pyy.SetReadOnly("Pyy")
	fd.Px, fd.Py, fd.Pxx, fd.Pyy = px.ToCSR(), py.ToCSR(), pxx.ToCSR(), pyy.ToCSR()
	return
}

func (fd *FiniteDiff2DPeriodic) apply(m utils.CSR, f []float64) (d []float64) {
	d = make([]float64, fd.NX*fd.NY)
	m.MulVec(d, f)
	return
}

func (fd *FiniteDiff2DPeriodic) PX(f []float64) []float64  { return fd.apply(fd.Px, f) }
func (fd *FiniteDiff2DPeriodic) PY(f []float64) []float64  { return fd.apply(fd.Py, f) }
func (fd *FiniteDiff2DPeriodic) PXX(f []float64) []float64 { return fd.apply(fd.Pxx, f) }
func (fd *FiniteDiff2DPeriodic) PYY(f []float64) []float64 { return fd.apply(fd.Pyy, f) }

// Laplacian is the five point Laplacian
func (fd *FiniteDiff2DPeriodic) Laplacian(f []float64) (lap []float64) {
	lap = fd.PXX(f)
	floats.Add(lap, fd.PYY(f))
	return
}
