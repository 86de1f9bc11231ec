package runner

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/blockmhd/bvals"
	"github.com/notargets/blockmhd/grid"
	"github.com/notargets/blockmhd/riemann"
	"github.com/notargets/blockmhd/types"
)

func periodicConfig(nx, bnx [3]int, ranks int, mhd bool) (cfg grid.MeshConfig) {
	cfg = grid.MeshConfig{
		Nx: nx, BlockNx: bnx,
		NGhost:         grid.NGhost,
		Ranks:          ranks,
		MagneticFields: mhd,
	}
	for d := range cfg.BCs {
		cfg.BCs[d] = types.BC_Periodic
	}
	return
}

func newSimulation(t *testing.T, cfg grid.MeshConfig, opts Options) *Simulation {
	m, err := grid.NewMesh(cfg)
	require.NoError(t, err)
	s, err := New(m, opts)
	require.NoError(t, err)
	return s
}

// hashField is distinct at every global index and variable.
func hashField(cycle int) GlobalField {
	return func(n, gi, gj, gk int) float64 {
		return float64(cycle*100000000 + n*1000000 + gk*10000 + gj*100 + gi)
	}
}

func TestExchange(t *testing.T) {
	var (
		ctx = context.Background()
	)
	for _, ranks := range []int{1, 2, 3} {
		{ // 2x2x2 periodic blocks, ghosts including edges and corners
			s := newSimulation(t, periodicConfig([3]int{8, 8, 8}, [3]int{4, 4, 4}, ranks, true), Options{})
			for cycle := 0; cycle < 2; cycle++ {
				s.Fill(hashField(cycle))
				assert.NotZero(t, s.CheckGhosts(hashField(cycle)))
				require.NoError(t, s.Exchange(ctx, cycle))
				assert.Zerof(t, s.CheckGhosts(hashField(cycle)), "ranks %d cycle %d", ranks, cycle)
			}
		}
		{ // 2D and 1D meshes
			for _, nx := range [][2][3]int{
				{{12, 8, 1}, {4, 4, 1}},
				{{32, 1, 1}, {8, 1, 1}},
			} {
				s := newSimulation(t, periodicConfig(nx[0], nx[1], ranks, false), Options{})
				s.Fill(hashField(1))
				require.NoError(t, s.Exchange(ctx, 17))
				assert.Zerof(t, s.CheckGhosts(hashField(1)), "ranks %d mesh %v", ranks, nx[0])
			}
		}
	}
	{ // A cancelled context stops before the cycle starts
		s := newSimulation(t, periodicConfig([3]int{16, 1, 1}, [3]int{8, 1, 1}, 2, false), Options{})
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.True(t, errors.Is(s.Exchange(cctx, 0), context.Canceled))
	}
	assert.Equal(t, 1, Flag(17))
	assert.Equal(t, 15, Flag(15))
}

func TestNew(t *testing.T) {
	{ // Invalid boundary flags surface from the boundary values
		cfg := periodicConfig([3]int{8, 1, 1}, [3]int{8, 1, 1}, 1, false)
		cfg.BCs[types.InnerX1], cfg.BCs[types.OuterX1] = types.BC_None, types.BC_Outflow
		m, err := grid.NewMesh(cfg)
		require.NoError(t, err)
		_, err = New(m, Options{})
		assert.True(t, errors.Is(err, bvals.ErrInvalidFlag))
	}
	{ // Debug output carries the cycle and the world id
		var (
			buf    bytes.Buffer
			logger = log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
			s      = newSimulation(t, periodicConfig([3]int{16, 1, 1}, [3]int{8, 1, 1}, 2, false),
				Options{Logger: logger})
		)
		require.NoError(t, s.Exchange(context.Background(), 3))
		assert.Contains(t, buf.String(), s.World.ID.String())
		assert.Contains(t, buf.String(), "cycle=3")
		assert.Contains(t, buf.String(), "rank=1")
	}
}

func TestFluxSweep(t *testing.T) {
	var (
		cfg = periodicConfig([3]int{16, 1, 1}, [3]int{8, 1, 1}, 2, false)
		cs  = 1.
	)
	{ // A uniform state gives the physical flux everywhere
		s := newSimulation(t, cfg, Options{Solver: riemann.NewExactIsothermal(riemann.Isothermal{Cs: cs})})
		s.Fill(func(n, gi, gj, gk int) float64 {
			return [4]float64{2, 1, 0, 0}[n]
		})
		require.NoError(t, s.Exchange(context.Background(), 0))
		for gid, flx := range s.FluxSweep() {
			pmb := s.Mesh.Block(gid)
			for i := pmb.Is; i <= pmb.Ie+1; i++ {
				assert.InDelta(t, 1., flx.At(grid.IDN, 0, 0, i), 1e-12)
				assert.InDelta(t, 0.5+2*cs*cs, flx.At(grid.IM1, 0, 0, i), 1e-12)
			}
		}
	}
	{ // Periodic donor cell updates conserve mass and momentum, for both solvers
		for _, ft := range []riemann.FluxType{riemann.FLUX_Exact, riemann.FLUX_LaxFriedrichs} {
			s := newSimulation(t, cfg, Options{Solver: riemann.NewSolver(ft, riemann.Isothermal{Cs: cs})})
			s.Fill(WAVE.Field(cfg.Nx))
			before := s.Totals()
			for cycle := 0; cycle < 10; cycle++ {
				require.NoError(t, s.Step(context.Background(), cycle, 0.2))
			}
			after := s.Totals()
			assert.Truef(t, floats.EqualApprox(before[:], after[:], 1e-12), "%s: %v != %v", ft.Print(), before, after)
			// The wave moves, the state is no longer the initial one
			pmb := s.Mesh.Block(0)
			assert.NotEqual(t, WAVE.Field(cfg.Nx)(grid.IDN, 0, 0, 0), pmb.U.At(grid.IDN, 0, 0, pmb.Is))
			assert.False(t, math.IsNaN(after[grid.IDN]))
		}
	}
}

func TestPhysicalBoundariesThroughRunner(t *testing.T) {
	cfg := periodicConfig([3]int{16, 1, 1}, [3]int{8, 1, 1}, 2, false)
	cfg.BCs[types.InnerX1], cfg.BCs[types.OuterX1] = types.BC_Reflect, types.BC_Reflect
	s := newSimulation(t, cfg, Options{})
	s.Fill(SHOCKTUBE.Field(cfg.Nx))
	before := s.Totals()
	for cycle := 0; cycle < 20; cycle++ {
		require.NoError(t, s.Step(context.Background(), cycle, 0.2))
	}
	after := s.Totals()
	// Reflecting walls keep the mass in the box
	assert.InDelta(t, before[grid.IDN], after[grid.IDN], 1e-12)
	require.NoError(t, s.Exchange(context.Background(), 20))
	first, last := s.Mesh.Block(0), s.Mesh.Block(1)
	assert.Equal(t, first.U.At(grid.IDN, 0, 0, first.Is), first.U.At(grid.IDN, 0, 0, first.Is-1))
	assert.Equal(t, -first.U.At(grid.IM1, 0, 0, first.Is), first.U.At(grid.IM1, 0, 0, first.Is-1))
	assert.Equal(t, last.U.At(grid.IDN, 0, 0, last.Ie), last.U.At(grid.IDN, 0, 0, last.Ie+1))
	{ // Ghosts between blocks still match, the walls are skipped
		s.Fill(hashField(2))
		require.NoError(t, s.Exchange(context.Background(), 21))
		assert.Zero(t, s.CheckGhosts(hashField(2)))
	}
}

func TestInitType(t *testing.T) {
	assert.Equal(t, WAVE, NewInitType("Wave"))
	assert.Equal(t, SHOCKTUBE, NewInitType("SHOCKTUBE"))
	assert.Equal(t, "Density Wave", WAVE.Print())
	assert.Panics(t, func() { NewInitType("vortex") })
	_, err := ParseInitType("")
	assert.Error(t, err)
	fn := SHOCKTUBE.Field([3]int{8, 1, 1})
	assert.Equal(t, 1., fn(grid.IDN, 0, 0, 0))
	assert.Equal(t, 0.125, fn(grid.IDN, 7, 0, 0))
	assert.Equal(t, 0., fn(grid.IM1, 7, 0, 0))
}
