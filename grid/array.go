package grid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Array is a dense NVar x Nk x Nj x Ni block of float64, i fastest.
type Array struct {
	NVar, Nk, Nj, Ni int
	Data             []float64
}

func NewArray(nvar, nk, nj, ni int) (a *Array) {
	if nvar < 1 || nk < 1 || nj < 1 || ni < 1 {
		panic(fmt.Errorf("invalid array dimensions [%d,%d,%d,%d]", nvar, nk, nj, ni))
	}
	a = &Array{
		NVar: nvar, Nk: nk, Nj: nj, Ni: ni,
		Data: make([]float64, nvar*nk*nj*ni),
	}
	return
}

func (a *Array) Index(n, k, j, i int) int {
	return ((n*a.Nk+k)*a.Nj+j)*a.Ni + i
}

func (a *Array) At(n, k, j, i int) float64 { return a.Data[a.Index(n, k, j, i)] }

func (a *Array) Set(n, k, j, i int, val float64) { a.Data[a.Index(n, k, j, i)] = val }

func (a *Array) Fill(val float64) {
	for i := range a.Data {
		a.Data[i] = val
	}
}

func (a *Array) Sum() float64 { return floats.Sum(a.Data) }

func (a *Array) SameShape(b *Array) bool {
	return a.NVar == b.NVar && a.Nk == b.Nk && a.Nj == b.Nj && a.Ni == b.Ni
}

func (a *Array) Equal(b *Array) bool {
	return a.SameShape(b) && floats.Equal(a.Data, b.Data)
}

func (a *Array) Copy() (b *Array) {
	b = NewArray(a.NVar, a.Nk, a.Nj, a.Ni)
	copy(b.Data, a.Data)
	return
}

func (a *Array) String() string {
	return fmt.Sprintf("Array[%d,%d,%d,%d]", a.NVar, a.Nk, a.Nj, a.Ni)
}
