package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparse(t *testing.T) {
	A := NewDOK(3, 4)
	A.AddAt(0, 0, 1)
	A.AddAt(0, 0, 1) // accumulates
	A.AddAt(1, 3, -1)
	A.AddAt(2, 1, 0.5)
	A.SetReadOnly("A")
	assert.Panics(t, func() { A.AddAt(2, 2, 1) })
	assert.Equal(t, 2., A.At(0, 0))

	Acsr := A.ToCSR()
	assert.Equal(t, 3, Acsr.NNZ())
	r, c := Acsr.Dims()
	assert.Equal(t, [2]int{3, 4}, [2]int{r, c})
	dst := make([]float64, 3)
	Acsr.MulVec(dst, []float64{1, 2, 3, 4})
	assert.Equal(t, []float64{2, -4, 1}, dst)
	// dst is overwritten on reuse
	Acsr.MulVec(dst, []float64{1, 2, 3, 4})
	assert.Equal(t, []float64{2, -4, 1}, dst)
	assert.PanicsWithValue(t, "dimension mismatch in A: matrix 3x4, dst 3, x 3",
		func() { Acsr.MulVec(dst, []float64{1, 2, 3}) })
}
