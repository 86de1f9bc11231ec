package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes(t *testing.T) {
	{ // Opposite faces pair up even/odd and are involutive
		pairs := [][2]Direction{
			{InnerX1, OuterX1}, {InnerX2, OuterX2}, {InnerX3, OuterX3},
		}
		for _, p := range pairs {
			assert.Equal(t, p[1], p[0].Opposite())
			assert.Equal(t, p[0], p[1].Opposite())
			assert.Equal(t, p[0].Axis(), p[1].Axis())
			assert.True(t, p[0].IsInner())
			assert.False(t, p[1].IsInner())
		}
		for d := InnerX1; d < NumDirections; d++ {
			assert.Equal(t, d, d.Opposite().Opposite())
		}
	}
	{ // Direction labels
		for d := InnerX1; d < NumDirections; d++ {
			dd, err := ParseDirection(d.String())
			require.NoError(t, err)
			assert.Equal(t, d, dd)
		}
		_, err := ParseDirection("ix4")
		assert.Error(t, err)
		assert.False(t, Direction(6).Valid())
		assert.False(t, Direction(-1).Valid())
	}
	{ // Dimensionality
		assert.Equal(t, 2, ActiveDirections(1, 1))
		assert.Equal(t, 4, ActiveDirections(8, 1))
		assert.Equal(t, 6, ActiveDirections(8, 8))
	}
	{ // Boundary flags
		tokens := []string{"Reflecting", "outflow", " user ", "PERIODIC", "block", "wall"}
		flags := []BCFLAG{BC_Reflect, BC_Outflow, BC_User, BC_Periodic, BC_Block, BC_Reflect}
		for i, token := range tokens {
			bf, err := NewBCFLAG(token)
			require.NoError(t, err)
			assert.Equal(t, flags[i], bf)
			assert.True(t, bf.Valid())
		}
		_, err := NewBCFLAG("shock")
		assert.Error(t, err)
		assert.False(t, BCFLAG(7).Valid())
		assert.False(t, BC_None.Valid())
		assert.Equal(t, "BCFLAG(7)", BCFLAG(7).String())
	}
	{
		assert.Equal(t, "EMF", EMF.String())
		assert.Equal(t, "Hydro", Hydro.String())
	}
}
